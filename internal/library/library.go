// Package library builds the ordered set of sibling images around an opened
// file and tracks the cursor used to page through them.
package library

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"foxview/internal/imagesrc"
)

var (
	// ErrNotFound is returned when the opened path does not exist.
	ErrNotFound = errors.New("not found")
	// ErrUnsupported is returned when the opened file cannot be decoded.
	ErrUnsupported = errors.New("unsupported file type")
	// ErrEmptyLibrary is returned when a scan yields no images. Open still
	// returns a singular library holding the opened file when there is one.
	ErrEmptyLibrary = errors.New("no images in library")
)

// Direction is a step through the library.
type Direction int

const (
	Next Direction = iota
	Previous
)

// Options control ordering and what happens at either end of the library.
type Options struct {
	Sort SortMethod
	Wrap bool // wrap around at the ends instead of stopping
}

// DefaultOptions returns name ordering with wrap-around navigation.
func DefaultOptions() Options {
	return Options{Sort: SortName, Wrap: true}
}

// Library is an ordered, duplicate-free list of images with a cursor.
type Library struct {
	origin   string // the path that was opened
	dir      string // directory or archive the entries come from
	archive  bool
	singular bool

	scanned []Entry // scan order, kept for re-sorting
	entries []Entry
	index   int // -1 when empty
	opts    Options
}

// Open builds the library for path. A file opens its parent directory with
// the cursor on that file; a directory or archive opens with the cursor on
// the first image.
func Open(path string, opts Options) (*Library, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	l := &Library{origin: abs, opts: opts, index: -1}

	switch {
	case info.IsDir():
		l.dir = abs
		if err := l.scan(); err != nil {
			return nil, err
		}
		if len(l.entries) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrEmptyLibrary, abs)
		}
		l.index = 0
		return l, nil

	case IsArchiveExt(abs):
		l.dir = abs
		l.archive = true
		if err := l.scan(); err != nil {
			return nil, err
		}
		if len(l.entries) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrEmptyLibrary, abs)
		}
		l.index = 0
		return l, nil

	case !imagesrc.IsSupportedExt(abs):
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, path)
	}

	l.dir = filepath.Dir(abs)
	scanErr := l.scan()
	if scanErr != nil || len(l.entries) == 0 {
		l.makeSingular(fileEntry(abs, info))
		if scanErr == nil {
			scanErr = fmt.Errorf("%w: %s", ErrEmptyLibrary, l.dir)
		} else {
			scanErr = fmt.Errorf("%w: %v", ErrEmptyLibrary, scanErr)
		}
		return l, scanErr
	}

	l.index = l.locate(abs)
	return l, nil
}

// Reopen returns prev repositioned on path when path lives in the directory
// prev was built from; otherwise it builds a new library.
func Reopen(prev *Library, path string, opts Options) (*Library, error) {
	if prev == nil || prev.archive || prev.singular || prev.opts != opts {
		return Open(path, opts)
	}
	abs, err := filepath.Abs(path)
	if err != nil || filepath.Dir(abs) != prev.dir {
		return Open(path, opts)
	}
	for i, e := range prev.entries {
		if e.Path == abs {
			prev.index = i
			prev.origin = abs
			return prev, nil
		}
	}
	return Open(path, opts)
}

// Reload rescans the library's directory or archive. The cursor stays on the
// same entry when it still exists and otherwise on the nearest position.
func (l *Library) Reload() error {
	var current string
	if e, ok := l.Current(); ok {
		current = e.Path
	}
	prevIndex := l.index

	if l.singular {
		info, err := os.Stat(l.origin)
		if err != nil {
			l.setEntries(nil)
			l.index = -1
			return fmt.Errorf("%w: %s", ErrNotFound, l.origin)
		}
		if err := l.scan(); err != nil || len(l.entries) == 0 {
			l.makeSingular(fileEntry(l.origin, info))
			return fmt.Errorf("%w: %s", ErrEmptyLibrary, l.dir)
		}
		l.singular = false
	} else if err := l.scan(); err != nil {
		return err
	}

	if len(l.entries) == 0 {
		l.index = -1
		return fmt.Errorf("%w: %s", ErrEmptyLibrary, l.dir)
	}

	for i, e := range l.entries {
		if e.Path == current {
			l.index = i
			return nil
		}
	}
	l.index = min(max(prevIndex, 0), len(l.entries)-1)
	return nil
}

// Advance moves the cursor one step and returns the new current entry. It
// returns false only when the library is empty.
func (l *Library) Advance(dir Direction) (Entry, bool) {
	n := len(l.entries)
	if n == 0 {
		return Entry{}, false
	}

	switch dir {
	case Next:
		l.index++
		if l.index >= n {
			if l.opts.Wrap {
				l.index = 0
			} else {
				l.index = n - 1
			}
		}
	case Previous:
		l.index--
		if l.index < 0 {
			if l.opts.Wrap {
				l.index = n - 1
			} else {
				l.index = 0
			}
		}
	}
	return l.entries[l.index], true
}

// Jump moves the cursor to index i.
func (l *Library) Jump(i int) (Entry, bool) {
	if i < 0 || i >= len(l.entries) {
		return Entry{}, false
	}
	l.index = i
	return l.entries[i], true
}

// SetSort reorders the entries, keeping the cursor on the current entry.
func (l *Library) SetSort(m SortMethod) {
	current, ok := l.Current()
	l.opts.Sort = m
	l.entries = GetSortStrategy(m).Sort(l.scanned)
	if ok {
		l.index = l.locate(current.Path)
	}
}

// SetWrap switches between wrap-around and clamped navigation.
func (l *Library) SetWrap(wrap bool) {
	l.opts.Wrap = wrap
}

func (l *Library) Current() (Entry, bool) {
	if l.index < 0 || l.index >= len(l.entries) {
		return Entry{}, false
	}
	return l.entries[l.index], true
}

// IndexOf returns the position of the entry with path, or -1.
func (l *Library) IndexOf(path string) int {
	for i, e := range l.entries {
		if e.Path == path {
			return i
		}
	}
	return -1
}

// Index returns the cursor position, or -1 when the library is empty.
func (l *Library) Index() int { return l.index }

func (l *Library) Len() int { return len(l.entries) }

// Entries returns a copy of the ordered entries.
func (l *Library) Entries() []Entry { return cloneEntries(l.entries) }

// Dir returns the directory or archive the library was built from.
func (l *Library) Dir() string { return l.dir }

// Singular reports whether the library holds only the opened file because
// its directory could not provide any images.
func (l *Library) Singular() bool { return l.singular }

func (l *Library) Options() Options { return l.opts }

func (l *Library) scan() error {
	var (
		scanned []Entry
		err     error
	)
	if l.archive {
		scanned, err = scanArchive(l.dir)
	} else {
		scanned, err = scanDir(l.dir)
	}
	if err != nil {
		return err
	}
	l.setEntries(scanned)
	return nil
}

func (l *Library) setEntries(scanned []Entry) {
	l.scanned = dedupe(scanned)
	l.entries = GetSortStrategy(l.opts.Sort).Sort(l.scanned)
}

func (l *Library) makeSingular(e Entry) {
	l.singular = true
	l.setEntries([]Entry{e})
	l.index = 0
}

// locate returns the index of path, or the position it would take in the
// current order when it is missing.
func (l *Library) locate(path string) int {
	if i := l.IndexOf(path); i >= 0 {
		return i
	}
	target := Entry{Path: path, Name: filepath.Base(path)}
	ordered := GetSortStrategy(l.opts.Sort).Sort(append(cloneEntries(l.entries), target))
	for i, e := range ordered {
		if e.Path == path {
			return min(i, len(l.entries)-1)
		}
	}
	return 0
}

func fileEntry(path string, info fs.FileInfo) Entry {
	return Entry{Path: path, Name: filepath.Base(path), ModTime: info.ModTime()}
}

// scanDir lists the decodable regular files of dir in directory order.
func scanDir(dir string) ([]Entry, error) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read directory %s: %w", dir, err)
	}

	var entries []Entry
	for _, de := range dirEntries {
		if de.IsDir() || !imagesrc.IsSupportedExt(de.Name()) {
			continue
		}
		full := filepath.Join(dir, de.Name())

		// Stat follows symlinks so linked images are listed like regular files.
		info, err := os.Stat(full)
		if err != nil {
			slog.Warn("skipping unreadable file", "path", full, "err", err)
			continue
		}
		if !info.Mode().IsRegular() {
			continue
		}
		entries = append(entries, fileEntry(full, info))
	}
	return entries, nil
}

func dedupe(entries []Entry) []Entry {
	seen := make(map[string]bool, len(entries))
	result := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if seen[e.Path] {
			continue
		}
		seen[e.Path] = true
		result = append(result, e)
	}
	return result
}
