//go:build linux

package probe

import (
	"fmt"

	"github.com/prometheus/procfs"
	"golang.org/x/sys/unix"
)

func maxFileDescriptors() (int64, error) {
	var lim unix.Rlimit
	if err := unix.Getrlimit(unix.RLIMIT_NOFILE, &lim); err != nil {
		return Unknown, fmt.Errorf("getrlimit RLIMIT_NOFILE: %w", err)
	}
	return rlimToInt64(lim.Cur), nil
}

func maxThreads() (int64, error) {
	var lim unix.Rlimit
	if err := unix.Getrlimit(unix.RLIMIT_NPROC, &lim); err != nil {
		return Unknown, fmt.Errorf("getrlimit RLIMIT_NPROC: %w", err)
	}
	return rlimToInt64(lim.Cur), nil
}

func maxVirtualMemory() (int64, error) {
	var lim unix.Rlimit
	if err := unix.Getrlimit(unix.RLIMIT_AS, &lim); err != nil {
		return UnknownVirtualMemory, fmt.Errorf("getrlimit RLIMIT_AS: %w", err)
	}
	return rlimToInt64(lim.Cur), nil
}

// RLIM_INFINITY is all ones on linux.
func rlimInfinity() int64 {
	var inf uint64 = ^uint64(0)
	return rlimToInt64(inf)
}

// memoryLocked trusts the kernel over our own bookkeeping: VmLck is the
// amount of locked memory for this process.
func memoryLocked(_ bool) (bool, error) {
	self, err := procfs.Self()
	if err != nil {
		return false, fmt.Errorf("open /proc/self: %w", err)
	}
	status, err := self.NewStatus()
	if err != nil {
		return false, fmt.Errorf("read /proc/self/status: %w", err)
	}
	return status.VmLck > 0, nil
}

func lockMemory() error {
	if err := unix.Mlockall(unix.MCL_CURRENT | unix.MCL_FUTURE); err != nil {
		return fmt.Errorf("mlockall: %w", err)
	}
	return nil
}
