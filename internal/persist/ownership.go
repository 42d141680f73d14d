package persist

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
)

const lockFileName = "primary.lock"

// Token records whether a window owns the state file. The first window to
// claim a directory becomes primary and stays primary until it releases the
// token; every later window gets a secondary token.
type Token struct {
	mu       sync.Mutex
	path     string
	primary  bool
	released bool
}

// Primary reports whether the token holder may write the state file. A nil
// token is never primary.
func (t *Token) Primary() bool {
	if t == nil {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.primary && !t.released
}

// Release gives up primary ownership so the next window can take it. It is
// safe to call more than once and on secondary tokens.
func (t *Token) Release() error {
	if t == nil {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.primary || t.released {
		return nil
	}
	t.released = true

	pid, err := readLockPID(t.path)
	if err != nil || pid != os.Getpid() {
		// Another process has taken the lock over; leave it alone.
		return nil
	}
	if err := os.Remove(t.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: release lock: %v", ErrConfigIO, err)
	}
	return nil
}

// Claim decides ownership for a new window by arrival order. It creates an
// exclusive lock file holding this process id in dir; when the file exists
// and names a live process the caller is secondary. Locks left behind by
// dead processes are taken over. On I/O failure the returned token is
// secondary and the error wraps ErrConfigIO.
func Claim(dir string) (*Token, error) {
	path := filepath.Join(dir, lockFileName)
	tok := &Token{path: path}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return tok, fmt.Errorf("%w: create lock dir: %v", ErrConfigIO, err)
	}

	for attempt := 0; attempt < 2; attempt++ {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err == nil {
			_, werr := f.WriteString(strconv.Itoa(os.Getpid()))
			cerr := f.Close()
			if werr != nil || cerr != nil {
				_ = os.Remove(path)
				return tok, fmt.Errorf("%w: write lock: %v", ErrConfigIO, errors.Join(werr, cerr))
			}
			tok.primary = true
			return tok, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return tok, fmt.Errorf("%w: create lock: %v", ErrConfigIO, err)
		}

		content, stale := readLock(path)
		if !stale {
			return tok, nil
		}
		err = removeStaleLock(path, content)
		if errors.Is(err, errLockReplaced) {
			return tok, nil
		}
		if err != nil {
			return tok, err
		}
	}
	return tok, nil
}

// errLockReplaced means a live window re-created the lock while a stale one
// was being taken over.
var errLockReplaced = errors.New("lock replaced during takeover")

// readLock returns the lock's content and whether it names no live process.
func readLock(path string) (string, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", true
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return string(data), true
	}
	return string(data), pid <= 0 || !processAlive(pid)
}

// removeStaleLock moves the lock at path aside before deleting it. If the
// moved file no longer holds staleContent, another window took the lock over
// after it was read; that lock is put back and errLockReplaced returned.
func removeStaleLock(path, staleContent string) error {
	aside, err := os.CreateTemp(filepath.Dir(path), lockFileName+".*.stale")
	if err != nil {
		return fmt.Errorf("%w: remove stale lock: %v", ErrConfigIO, err)
	}
	asidePath := aside.Name()
	aside.Close()
	defer os.Remove(asidePath)

	if err := os.Rename(path, asidePath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// Someone else removed it first.
			return nil
		}
		return fmt.Errorf("%w: remove stale lock: %v", ErrConfigIO, err)
	}

	data, err := os.ReadFile(asidePath)
	if err != nil || string(data) == staleContent {
		return nil
	}
	if err := os.Link(asidePath, path); err != nil && !errors.Is(err, fs.ErrExist) {
		return fmt.Errorf("%w: restore lock: %v", ErrConfigIO, err)
	}
	return errLockReplaced
}

func readLockPID(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(data)))
}
