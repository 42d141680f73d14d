package persist

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

var (
	// ErrConfigIO wraps every failure to read or write the state file.
	ErrConfigIO = errors.New("config io")
	// ErrNotPrimary is returned by Save when a secondary window tries to write
	// while the single-writer flag is set.
	ErrNotPrimary = errors.New("not the primary window")
)

// Load status values
const (
	StatusOK      = "OK"
	StatusDefault = "Default" // no state file yet
	StatusWarning = "Warning" // file loaded, some values replaced
	StatusError   = "Error"   // file unreadable, defaults used
)

// LoadResult is a loaded state together with what happened while loading it.
type LoadResult struct {
	State    State
	Status   string
	Warnings []string
}

// Store reads and writes one state file.
type Store struct {
	Path   string
	Logger *slog.Logger
}

// NewStore returns a store for path, or for DefaultPath when path is empty.
func NewStore(path string, logger *slog.Logger) *Store {
	if path == "" {
		path = DefaultPath()
	}
	return &Store{Path: path, Logger: logger}
}

func (s *Store) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

// Load returns the stored state merged onto Defaults. It never fails: a
// missing or unreadable file yields the defaults.
func (s *Store) Load() State {
	return s.Read().State
}

// Read is Load with the load status and warnings attached.
func (s *Store) Read() LoadResult {
	result := LoadResult{State: Defaults(), Status: StatusOK}
	log := s.logger()

	data, err := os.ReadFile(s.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Debug("no state file, using defaults", "path", s.Path)
			result.Status = StatusDefault
			return result
		}
		log.Warn("cannot read state file, using defaults", "path", s.Path, "err", err)
		result.Status = StatusError
		result.Warnings = append(result.Warnings, fmt.Sprintf("%v: %v", ErrConfigIO, err))
		return result
	}

	st := Defaults()
	if err := toml.Unmarshal(data, &st); err != nil {
		log.Warn("invalid state file, using defaults", "path", s.Path, "err", err)
		result.Status = StatusError
		result.Warnings = append(result.Warnings, fmt.Sprintf("invalid state file: %v", err))
		return result
	}

	if warnings := st.normalize(); len(warnings) > 0 {
		for _, w := range warnings {
			log.Warn("state file value replaced", "path", s.Path, "problem", w)
		}
		result.Status = StatusWarning
		result.Warnings = warnings
	}
	result.State = st
	return result
}

// Save writes st atomically through a temporary file in the same directory.
// With st.SingleWriter set only the primary window's token may save. Errors
// are logged here; callers may ignore them.
func (s *Store) Save(tok *Token, st State) error {
	log := s.logger()
	if st.SingleWriter && !tok.Primary() {
		log.Debug("skipping state save from secondary window", "path", s.Path)
		return ErrNotPrimary
	}

	st = st.Clone()
	st.normalize()
	if err := s.write(st); err != nil {
		log.Warn("failed to save state", "path", s.Path, "err", err)
		return err
	}
	log.Debug("state saved", "path", s.Path)
	return nil
}

func (s *Store) write(st State) error {
	data, err := toml.Marshal(st)
	if err != nil {
		return fmt.Errorf("%w: marshal state: %v", ErrConfigIO, err)
	}

	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: create state dir: %v", ErrConfigIO, err)
	}

	f, err := os.CreateTemp(dir, "."+filepath.Base(s.Path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: open tmp: %v", ErrConfigIO, err)
	}
	tmp := f.Name()
	if _, err := f.Write(data); err != nil {
		f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("%w: write tmp: %v", ErrConfigIO, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("%w: close tmp: %v", ErrConfigIO, err)
	}
	if err := os.Rename(tmp, s.Path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("%w: rename tmp: %v", ErrConfigIO, err)
	}
	return nil
}
