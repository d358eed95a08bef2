package logging

import (
	"os"
	"path/filepath"
)

// DefaultLogDir returns ~/.nodeguard/logs, or a temp-dir equivalent when the
// home directory is unavailable.
func DefaultLogDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".nodeguard", "logs")
	}
	return filepath.Join(home, ".nodeguard", "logs")
}

// DefaultLogPath returns the node log path used by --debug.
func DefaultLogPath() string {
	return filepath.Join(DefaultLogDir(), "node.log")
}
