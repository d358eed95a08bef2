package node

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	nerrors "github.com/Aman-CERP/nodeguard/internal/errors"
)

// LockFileName is created inside the data path and held while the node runs.
const LockFileName = "node.lock"

// DataLock is an exclusive cross-process lock on a node data path.
type DataLock struct {
	path   string
	flock  *flock.Flock
	locked bool
}

// NewDataLock creates an unlocked DataLock for dataPath.
func NewDataLock(dataPath string) *DataLock {
	path := filepath.Join(dataPath, LockFileName)
	return &DataLock{path: path, flock: flock.New(path)}
}

// Acquire takes the lock without blocking. If another process holds it the
// error is a fatal ERR_203_NODE_LOCKED.
func (l *DataLock) Acquire() error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return nerrors.New(nerrors.ErrCodeFilePermission,
			fmt.Sprintf("failed to create data path %s", filepath.Dir(l.path)), err)
	}

	acquired, err := l.flock.TryLock()
	if err != nil {
		return nerrors.IOError("failed to lock data path", err).WithDetail("lock", l.path)
	}
	if !acquired {
		return nerrors.New(nerrors.ErrCodeNodeLocked,
			fmt.Sprintf("data path %s is in use by another node", filepath.Dir(l.path)), nil).
			WithDetail("lock", l.path).
			WithSuggestion("stop the other node or set node.data_path to a different directory")
	}

	l.locked = true
	return nil
}

// Release unlocks. It is safe to call on an unlocked DataLock.
func (l *DataLock) Release() error {
	if !l.locked {
		return nil
	}
	l.locked = false
	if err := l.flock.Unlock(); err != nil {
		return fmt.Errorf("failed to release lock: %w", err)
	}
	return nil
}

// Path returns the lock file path.
func (l *DataLock) Path() string {
	return l.path
}

// Locked reports whether this DataLock holds the lock.
func (l *DataLock) Locked() bool {
	return l.locked
}
