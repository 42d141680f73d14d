package imagesrc

import (
	"reflect"
	"testing"
)

func TestCache_EvictsLeastRecentlyUsed(t *testing.T) {
	var evicted []string
	c := NewCache[*Source](2, func(key string, _ *Source) {
		evicted = append(evicted, key)
	})
	a, b, d := &Source{Format: "a"}, &Source{Format: "b"}, &Source{Format: "d"}

	c.Add("a", a)
	c.Add("b", b)
	if _, ok := c.Get("a"); !ok {
		t.Fatal("a missing before eviction")
	}
	c.Add("d", d)

	if _, ok := c.Get("b"); ok {
		t.Error("b should have been evicted as least recently used")
	}
	if got, ok := c.Get("a"); !ok || got != a {
		t.Error("a should still be cached")
	}
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}
	if !reflect.DeepEqual(evicted, []string{"b"}) {
		t.Errorf("evicted = %v, want [b]", evicted)
	}

	c.Purge()
	if c.Len() != 0 || len(evicted) != 3 {
		t.Errorf("after Purge: Len() = %d, evicted = %v", c.Len(), evicted)
	}
}

func TestCache_InvalidSizeFallsBack(t *testing.T) {
	c := NewCache[*Source](0, nil)
	c.Add("x", &Source{})
	if _, ok := c.Get("x"); !ok {
		t.Error("fallback cache did not store the source")
	}
	c.Remove("x")
	if c.Len() != 0 {
		t.Errorf("Len() = %d after Remove, want 0", c.Len())
	}
}

func TestCache_Resize(t *testing.T) {
	c := NewCache[int](4, nil)
	for i, k := range []string{"a", "b", "c", "d"} {
		c.Add(k, i)
	}
	c.Resize(2)
	if c.Len() != 2 {
		t.Fatalf("Len() = %d after shrinking, want 2", c.Len())
	}
	if _, ok := c.Get("a"); ok {
		t.Error("oldest value survived the shrink")
	}
	if v, ok := c.Get("d"); !ok || v != 3 {
		t.Errorf("Get(d) = %v, %v", v, ok)
	}
}
