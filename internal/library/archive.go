package library

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bodgit/sevenzip"
	"github.com/nwaples/rardecode"

	"foxview/internal/imagesrc"
)

// IsArchiveExt reports whether path names an archive that can back a library.
func IsArchiveExt(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".zip", ".rar", ".7z":
		return true
	default:
		return false
	}
}

func archiveEntry(archivePath, member string, modTime time.Time) Entry {
	return Entry{
		Path:        archivePath + ":" + member,
		Name:        member,
		ModTime:     modTime,
		ArchivePath: archivePath,
		EntryPath:   member,
	}
}

// scanArchive lists the image members of an archive in archive order.
func scanArchive(archivePath string) ([]Entry, error) {
	info, err := os.Stat(archivePath)
	if err != nil {
		return nil, err
	}
	modTime := info.ModTime()

	var entries []Entry
	err = walkArchive(archivePath, func(name string, _ func() (io.ReadCloser, error)) (bool, error) {
		if imagesrc.IsSupportedExt(name) {
			entries = append(entries, archiveEntry(archivePath, name, modTime))
		}
		return false, nil
	})
	if err != nil {
		return nil, fmt.Errorf("read archive %s: %w", archivePath, err)
	}
	return entries, nil
}

// readArchiveMember returns the bytes of one archive member.
func readArchiveMember(archivePath, member string) ([]byte, error) {
	var data []byte
	found := false
	err := walkArchive(archivePath, func(name string, open func() (io.ReadCloser, error)) (bool, error) {
		if name != member {
			return false, nil
		}
		rc, err := open()
		if err != nil {
			return true, err
		}
		defer rc.Close()
		data, err = io.ReadAll(rc)
		found = true
		return true, err
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: %s in %s", ErrNotFound, member, archivePath)
	}
	return data, nil
}

// memberFunc is called for each regular file of an archive, in archive
// order. open is only valid during the call. Returning true stops the walk.
type memberFunc func(name string, open func() (io.ReadCloser, error)) (bool, error)

func walkArchive(archivePath string, fn memberFunc) error {
	switch strings.ToLower(filepath.Ext(archivePath)) {
	case ".zip":
		return walkZip(archivePath, fn)
	case ".rar":
		return walkRar(archivePath, fn)
	case ".7z":
		return walk7z(archivePath, fn)
	default:
		return fmt.Errorf("%w: archive %s", ErrUnsupported, archivePath)
	}
}

func walkZip(archivePath string, fn memberFunc) error {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return err
	}
	defer r.Close()

	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		if stop, err := fn(f.Name, f.Open); stop || err != nil {
			return err
		}
	}
	return nil
}

// walkRar reads the archive as a stream; a member can only be opened while
// the reader is positioned on it.
func walkRar(archivePath string, fn memberFunc) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return err
	}
	defer f.Close()

	r, err := rardecode.NewReader(f, "")
	if err != nil {
		return err
	}
	current := func() (io.ReadCloser, error) { return io.NopCloser(r), nil }

	for {
		header, err := r.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if header.IsDir {
			continue
		}
		if stop, err := fn(header.Name, current); stop || err != nil {
			return err
		}
	}
}

func walk7z(archivePath string, fn memberFunc) error {
	r, err := sevenzip.OpenReader(archivePath)
	if err != nil {
		return err
	}
	defer r.Close()

	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		if stop, err := fn(f.Name, f.Open); stop || err != nil {
			return err
		}
	}
	return nil
}

