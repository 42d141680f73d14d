//go:build windows

package persist

import "os"

// processAlive reports whether a process handle can be opened for pid.
func processAlive(pid int) bool {
	p, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	_ = p.Release()
	return true
}
