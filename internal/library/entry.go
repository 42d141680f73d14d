package library

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"time"
)

// Entry is one image of a library. It is never modified after construction.
type Entry struct {
	Path    string    // File path, or "archive:member" for archive members
	Name    string    // Sort key: base name, or member path inside an archive
	ModTime time.Time // Modification time of the file or its archive

	ArchivePath string // Empty for regular files
	EntryPath   string // Member path within ArchivePath
}

// InArchive reports whether the entry is an archive member.
func (e Entry) InArchive() bool {
	return e.ArchivePath != ""
}

// Key identifies the entry's content; it changes when the file is modified.
func (e Entry) Key() string {
	return fmt.Sprintf("%s@%d", e.Path, e.ModTime.UnixNano())
}

// Open returns a reader over the encoded image bytes.
func (e Entry) Open() (io.ReadCloser, error) {
	if !e.InArchive() {
		return os.Open(e.Path)
	}
	data, err := readArchiveMember(e.ArchivePath, e.EntryPath)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// Changed reports whether the backing file was modified or removed since the
// entry was scanned.
func (e Entry) Changed() bool {
	path := e.Path
	if e.InArchive() {
		path = e.ArchivePath
	}
	info, err := os.Stat(path)
	if err != nil {
		return true
	}
	return !info.ModTime().Equal(e.ModTime)
}
