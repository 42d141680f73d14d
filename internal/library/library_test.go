package library

import (
	"archive/zip"
	"errors"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func touch(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("MkdirAll: %v", err)
		}
		if err := os.WriteFile(path, []byte(name), 0o644); err != nil {
			t.Fatalf("WriteFile %s: %v", name, err)
		}
	}
}

func names(entries []Entry) []string {
	var out []string
	for _, e := range entries {
		out = append(out, e.Name)
	}
	return out
}

func TestOpen_PreviousFollowsLexicographicOrder(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "a.png", "c.jpg", "b.gif")

	lib, err := Open(filepath.Join(dir, "c.jpg"), DefaultOptions())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if got := names(lib.Entries()); !reflect.DeepEqual(got, []string{"a.png", "b.gif", "c.jpg"}) {
		t.Fatalf("entries = %v, want [a.png b.gif c.jpg]", got)
	}

	e, ok := lib.Advance(Previous)
	if !ok {
		t.Fatal("Advance returned false on a non-empty library")
	}
	if e.Name != "b.gif" {
		t.Errorf("Advance(Previous) = %s, want b.gif", e.Name)
	}
}

func TestOpen_NextVisitsEveryEntryCyclically(t *testing.T) {
	dir := t.TempDir()
	files := []string{"d.png", "a.png", "e.bmp", "c.webp", "b.jpeg"}
	touch(t, dir, files...)
	sorted := []string{"a.png", "b.jpeg", "c.webp", "d.png", "e.bmp"}
	n := len(sorted)

	for i, start := range sorted {
		t.Run(start, func(t *testing.T) {
			lib, err := Open(filepath.Join(dir, start), DefaultOptions())
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			if lib.Index() != i {
				t.Fatalf("Index() = %d, want %d", lib.Index(), i)
			}
			for step := 1; step <= n; step++ {
				e, _ := lib.Advance(Next)
				want := sorted[(i+step)%n]
				if e.Name != want {
					t.Fatalf("step %d: got %s, want %s", step, e.Name, want)
				}
			}
		})
	}
}

func TestOpen_SortIsCaseInsensitive(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "B.png", "a.png", "c.PNG")

	lib, err := Open(filepath.Join(dir, "a.png"), DefaultOptions())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if got := names(lib.Entries()); !reflect.DeepEqual(got, []string{"a.png", "B.png", "c.PNG"}) {
		t.Errorf("entries = %v, want [a.png B.png c.PNG]", got)
	}
}

func TestOpen_FiltersNonImages(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "image1.jpg", "document.txt", "backup.bak", "photo.jpeg", "sub/nested.png")
	if err := os.Mkdir(filepath.Join(dir, "folder.png"), 0o755); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}

	lib, err := Open(filepath.Join(dir, "photo.jpeg"), DefaultOptions())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if got := names(lib.Entries()); !reflect.DeepEqual(got, []string{"image1.jpg", "photo.jpeg"}) {
		t.Errorf("entries = %v, want [image1.jpg photo.jpeg]", got)
	}
	if cur, _ := lib.Current(); cur.Name != "photo.jpeg" {
		t.Errorf("Current() = %s, want photo.jpeg", cur.Name)
	}
}

func TestOpen_Errors(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "notes.txt", "a.png")
	emptyDir := filepath.Join(dir, "empty")
	if err := os.Mkdir(emptyDir, 0o755); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}

	tests := []struct {
		name string
		path string
		want error
	}{
		{"Missing file", filepath.Join(dir, "missing.png"), ErrNotFound},
		{"Unsupported extension", filepath.Join(dir, "notes.txt"), ErrUnsupported},
		{"Directory without images", emptyDir, ErrEmptyLibrary},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lib, err := Open(tt.path, DefaultOptions())
			if !errors.Is(err, tt.want) {
				t.Fatalf("Open error = %v, want %v", err, tt.want)
			}
			if lib != nil {
				t.Errorf("Open returned a library alongside %v", err)
			}
		})
	}
}

func TestOpen_Directory(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "2.png", "1.png")

	lib, err := Open(dir, DefaultOptions())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if cur, _ := lib.Current(); cur.Name != "1.png" {
		t.Errorf("Current() = %s, want first entry 1.png", cur.Name)
	}
}

func TestAdvance_ClampWhenWrapDisabled(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "a.png", "b.png")

	lib, err := Open(filepath.Join(dir, "b.png"), Options{Sort: SortName, Wrap: false})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if e, _ := lib.Advance(Next); e.Name != "b.png" {
		t.Errorf("Advance(Next) at the end = %s, want b.png", e.Name)
	}
	lib.Advance(Previous)
	if e, _ := lib.Advance(Previous); e.Name != "a.png" {
		t.Errorf("Advance(Previous) at the start = %s, want a.png", e.Name)
	}
}

func TestAdvance_EmptyLibrary(t *testing.T) {
	var lib Library
	if _, ok := lib.Advance(Next); ok {
		t.Error("Advance on an empty library returned true")
	}
	if _, ok := lib.Current(); ok {
		t.Error("Current on an empty library returned true")
	}
}

func TestReload(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "b.png", "d.png")

	lib, err := Open(filepath.Join(dir, "d.png"), DefaultOptions())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	touch(t, dir, "a.png")
	if lib.Len() != 2 {
		t.Fatalf("library changed without a reload: Len() = %d", lib.Len())
	}
	if err := lib.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if cur, _ := lib.Current(); cur.Name != "d.png" {
		t.Errorf("Current() after reload = %s, want d.png", cur.Name)
	}
	if lib.Index() != 2 {
		t.Errorf("Index() = %d, want 2", lib.Index())
	}

	if err := os.Remove(filepath.Join(dir, "d.png")); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if err := lib.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if cur, _ := lib.Current(); cur.Name != "b.png" {
		t.Errorf("Current() after removing d.png = %s, want b.png", cur.Name)
	}
}

func TestReopen_SameDirectoryKeepsLibrary(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "a.png", "b.png", "c.png")
	other := t.TempDir()
	touch(t, other, "x.png")

	lib, err := Open(filepath.Join(dir, "a.png"), DefaultOptions())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	same, err := Reopen(lib, filepath.Join(dir, "c.png"), DefaultOptions())
	if err != nil {
		t.Fatalf("Reopen: %v", err)
	}
	if same != lib {
		t.Error("Reopen in the same directory rebuilt the library")
	}
	if cur, _ := same.Current(); cur.Name != "c.png" {
		t.Errorf("Current() = %s, want c.png", cur.Name)
	}

	moved, err := Reopen(lib, filepath.Join(other, "x.png"), DefaultOptions())
	if err != nil {
		t.Fatalf("Reopen: %v", err)
	}
	if moved == lib || moved.Dir() != other {
		t.Errorf("Reopen in another directory returned dir %s, want %s", moved.Dir(), other)
	}
}

func TestSetSort_KeepsCursor(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "img10.png", "img2.png", "img1.png")

	lib, err := Open(filepath.Join(dir, "img2.png"), DefaultOptions())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if got := names(lib.Entries()); !reflect.DeepEqual(got, []string{"img1.png", "img10.png", "img2.png"}) {
		t.Fatalf("name order = %v", got)
	}

	lib.SetSort(SortNatural)
	if got := names(lib.Entries()); !reflect.DeepEqual(got, []string{"img1.png", "img2.png", "img10.png"}) {
		t.Errorf("natural order = %v", got)
	}
	if cur, _ := lib.Current(); cur.Name != "img2.png" {
		t.Errorf("Current() after SetSort = %s, want img2.png", cur.Name)
	}
}

func writeZip(t *testing.T, path string, members ...string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer f.Close()
	w := zip.NewWriter(f)
	for _, m := range members {
		fw, err := w.Create(m)
		if err != nil {
			t.Fatalf("zip Create %s: %v", m, err)
		}
		if _, err := fw.Write([]byte("data:" + m)); err != nil {
			t.Fatalf("zip Write: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("zip Close: %v", err)
	}
}

func TestOpen_ZipArchive(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "book.zip")
	writeZip(t, archive, "p02.png", "readme.txt", "p01.jpg", "chapter/p03.png", "p01.jpg")

	lib, err := Open(archive, DefaultOptions())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if got := names(lib.Entries()); !reflect.DeepEqual(got, []string{"chapter/p03.png", "p01.jpg", "p02.png"}) {
		t.Fatalf("entries = %v", got)
	}

	e, _ := lib.Current()
	if !e.InArchive() || e.ArchivePath != archive {
		t.Fatalf("entry %+v is not an archive member of %s", e, archive)
	}
	rc, err := e.Open()
	if err != nil {
		t.Fatalf("Entry.Open: %v", err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(data) != "data:chapter/p03.png" {
		t.Errorf("member data = %q", data)
	}
}

func TestEntry_Changed(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "a.png")

	lib, err := Open(filepath.Join(dir, "a.png"), DefaultOptions())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	e, _ := lib.Current()
	if e.Changed() {
		t.Fatal("fresh entry reported as changed")
	}

	later := e.ModTime.Add(time.Hour)
	if err := os.Chtimes(e.Path, later, later); err != nil {
		t.Fatalf("Chtimes: %v", err)
	}
	if !e.Changed() {
		t.Error("entry not reported as changed after its modification time moved")
	}
	if e.Key() == (Entry{Path: e.Path, ModTime: later}).Key() {
		t.Error("Key did not change with the modification time")
	}
}

func TestIndexOf(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "a.png", "b.png", "c.png")

	lib, err := Open(filepath.Join(dir, "c.png"), DefaultOptions())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	tests := []struct {
		name string
		path string
		want int
	}{
		{"First", filepath.Join(dir, "a.png"), 0},
		{"Last", filepath.Join(dir, "c.png"), 2},
		{"Missing", filepath.Join(dir, "z.png"), -1},
		{"Other directory", "/elsewhere/a.png", -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := lib.IndexOf(tt.path); got != tt.want {
				t.Errorf("IndexOf(%q) = %d, want %d", tt.path, got, tt.want)
			}
		})
	}
	if lib.Index() != 2 {
		t.Errorf("IndexOf moved the cursor to %d", lib.Index())
	}
}
