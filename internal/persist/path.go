package persist

import (
	"os"
	"path/filepath"
	"runtime"
)

const (
	appName       = "foxview"
	stateFileName = "state.toml"
)

// DefaultDir returns the directory holding the state file and the primary
// window lock: the user config directory on Unix-likes and the executable's
// directory on Windows. It falls back to the working directory.
func DefaultDir() string {
	if runtime.GOOS == "windows" {
		if exe, err := os.Executable(); err == nil {
			return filepath.Dir(exe)
		}
		return "."
	}
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, appName)
	}
	return "."
}

// DefaultPath returns the platform location of the state file.
func DefaultPath() string {
	return filepath.Join(DefaultDir(), stateFileName)
}
