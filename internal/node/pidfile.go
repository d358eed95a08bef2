package node

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	nerrors "github.com/Aman-CERP/nodeguard/internal/errors"
)

// ErrPIDFileNotFound is returned by Read when the PID file does not exist.
var ErrPIDFileNotFound = errors.New("PID file not found")

// PIDFile records the PID of a serving node.
type PIDFile struct {
	path string
}

// NewPIDFile creates a PIDFile for path.
func NewPIDFile(path string) *PIDFile {
	return &PIDFile{path: path}
}

// Path returns the PID file path.
func (p *PIDFile) Path() string {
	return p.path
}

// Write records the current PID. It refuses to overwrite a file that names
// another live process.
func (p *PIDFile) Write() error {
	if pid, running := p.IsRunning(); running && pid != os.Getpid() {
		return nerrors.New(nerrors.ErrCodePIDFile,
			fmt.Sprintf("PID file %s belongs to running process %d", p.path, pid), nil)
	}

	if err := os.MkdirAll(filepath.Dir(p.path), 0o755); err != nil {
		return nerrors.New(nerrors.ErrCodePIDFile, "failed to create PID directory", err)
	}
	if err := os.WriteFile(p.path, []byte(strconv.Itoa(os.Getpid())+"\n"), 0o644); err != nil {
		return nerrors.New(nerrors.ErrCodePIDFile, "failed to write PID file", err)
	}
	return nil
}

// Read returns the recorded PID.
func (p *PIDFile) Read() (int, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, ErrPIDFileNotFound
		}
		return 0, fmt.Errorf("failed to read PID file: %w", err)
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("invalid PID in file: %w", err)
	}
	return pid, nil
}

// Remove deletes the PID file. A missing file is not an error.
func (p *PIDFile) Remove() error {
	if err := os.Remove(p.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove PID file: %w", err)
	}
	return nil
}

// IsRunning returns the recorded PID and whether that process is alive.
func (p *PIDFile) IsRunning() (int, bool) {
	pid, err := p.Read()
	if err != nil {
		return 0, false
	}
	return pid, processExists(pid)
}

func processExists(pid int) bool {
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	// FindProcess always succeeds on Unix; signal 0 probes for existence.
	return process.Signal(syscall.Signal(0)) == nil
}
