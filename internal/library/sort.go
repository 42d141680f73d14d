package library

import (
	"fmt"
	"sort"
	"strings"

	"github.com/maruel/natural"
)

// SortMethod selects how library entries are ordered.
type SortMethod int

const (
	SortName       SortMethod = iota // Case-insensitive lexicographic by file name
	SortNatural                      // Natural order (e.g., img1, img2, img10)
	SortEntryOrder                   // Order returned by the directory or archive
)

var sortMethodNames = map[SortMethod]string{
	SortName:       "name",
	SortNatural:    "natural",
	SortEntryOrder: "entry",
}

func (m SortMethod) String() string {
	if name, ok := sortMethodNames[m]; ok {
		return name
	}
	return fmt.Sprintf("SortMethod(%d)", int(m))
}

// ParseSortMethod maps a configuration value to a SortMethod.
func ParseSortMethod(s string) (SortMethod, error) {
	for m, name := range sortMethodNames {
		if strings.EqualFold(strings.TrimSpace(s), name) {
			return m, nil
		}
	}
	return SortName, fmt.Errorf("unknown sort method %q", s)
}

// Next returns the method that follows m when cycling through all methods.
func (m SortMethod) Next() SortMethod {
	return (m + 1) % SortMethod(len(sortMethodNames))
}

// SortStrategy orders entries without modifying its input.
type SortStrategy interface {
	Sort(entries []Entry) []Entry
	Name() string
	Method() SortMethod
}

// NameSortStrategy compares file names ignoring case, falling back to the
// exact name and then the path so the order is total.
type NameSortStrategy struct{}

func (s *NameSortStrategy) Sort(entries []Entry) []Entry {
	result := cloneEntries(entries)
	sort.SliceStable(result, func(i, j int) bool {
		a, b := strings.ToLower(result[i].Name), strings.ToLower(result[j].Name)
		if a != b {
			return a < b
		}
		if result[i].Name != result[j].Name {
			return result[i].Name < result[j].Name
		}
		return result[i].Path < result[j].Path
	})
	return result
}

func (s *NameSortStrategy) Name() string       { return "Name" }
func (s *NameSortStrategy) Method() SortMethod { return SortName }

// NaturalSortStrategy implements natural sorting using maruel/natural
type NaturalSortStrategy struct{}

func (s *NaturalSortStrategy) Sort(entries []Entry) []Entry {
	result := cloneEntries(entries)
	sort.SliceStable(result, func(i, j int) bool {
		return natural.Less(strings.ToLower(result[i].Name), strings.ToLower(result[j].Name))
	})
	return result
}

func (s *NaturalSortStrategy) Name() string       { return "Natural" }
func (s *NaturalSortStrategy) Method() SortMethod { return SortNatural }

// EntryOrderSortStrategy preserves the scan order
type EntryOrderSortStrategy struct{}

func (s *EntryOrderSortStrategy) Sort(entries []Entry) []Entry {
	return cloneEntries(entries)
}

func (s *EntryOrderSortStrategy) Name() string       { return "Entry Order" }
func (s *EntryOrderSortStrategy) Method() SortMethod { return SortEntryOrder }

// GetSortStrategy returns the strategy for m, defaulting to name order.
func GetSortStrategy(m SortMethod) SortStrategy {
	switch m {
	case SortNatural:
		return &NaturalSortStrategy{}
	case SortEntryOrder:
		return &EntryOrderSortStrategy{}
	default:
		return &NameSortStrategy{}
	}
}

func cloneEntries(entries []Entry) []Entry {
	result := make([]Entry, len(entries))
	copy(result, entries)
	return result
}
