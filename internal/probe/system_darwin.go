//go:build darwin

package probe

import (
	"fmt"

	"golang.org/x/sys/unix"
)

func maxFileDescriptors() (int64, error) {
	var lim unix.Rlimit
	if err := unix.Getrlimit(unix.RLIMIT_NOFILE, &lim); err != nil {
		return Unknown, fmt.Errorf("getrlimit RLIMIT_NOFILE: %w", err)
	}
	return rlimToInt64(lim.Cur), nil
}

// darwin has no per-user thread rlimit.
func maxThreads() (int64, error) {
	return Unknown, nil
}

func maxVirtualMemory() (int64, error) {
	var lim unix.Rlimit
	if err := unix.Getrlimit(unix.RLIMIT_AS, &lim); err != nil {
		return UnknownVirtualMemory, fmt.Errorf("getrlimit RLIMIT_AS: %w", err)
	}
	return rlimToInt64(lim.Cur), nil
}

// RLIM_INFINITY is (1<<63)-1 on darwin.
func rlimInfinity() int64 {
	var inf uint64 = 1<<63 - 1
	return rlimToInt64(inf)
}

func memoryLocked(locked bool) (bool, error) {
	return locked, nil
}

func lockMemory() error {
	if err := unix.Mlockall(unix.MCL_CURRENT | unix.MCL_FUTURE); err != nil {
		return fmt.Errorf("mlockall: %w", err)
	}
	return nil
}
