package probe

import (
	"math"
	"os"
	"os/user"
	"runtime/debug"
	"sync/atomic"
)

// System reads live values from the operating system and Go runtime.
type System struct {
	initialHeap int64
	locked      atomic.Bool
}

// NewSystem returns a System probe. initialHeap is the configured initial
// heap size in bytes (0 if unset); the Go runtime has no fixed initial heap,
// so it is carried from configuration.
func NewSystem(initialHeap int64) *System {
	return &System{initialHeap: initialHeap}
}

// InitialHeapSize returns the configured initial heap size.
func (s *System) InitialHeapSize() (int64, error) {
	return s.initialHeap, nil
}

// MaxHeapSize returns the runtime soft memory limit, or 0 when no limit is set.
func (s *System) MaxHeapSize() (int64, error) {
	limit := debug.SetMemoryLimit(-1)
	if limit == math.MaxInt64 {
		return 0, nil
	}
	return limit, nil
}

// MaxFileDescriptors returns the soft open file limit.
func (s *System) MaxFileDescriptors() (int64, error) {
	return maxFileDescriptors()
}

// MemoryLocked reports whether process memory is locked.
func (s *System) MemoryLocked() (bool, error) {
	return memoryLocked(s.locked.Load())
}

// MaxThreads returns the soft per-user thread limit.
func (s *System) MaxThreads() (int64, error) {
	return maxThreads()
}

// MaxVirtualMemory returns the soft address space limit.
func (s *System) MaxVirtualMemory() (int64, error) {
	return maxVirtualMemory()
}

// RlimInfinity returns the platform's unlimited rlimit value.
func (s *System) RlimInfinity() int64 {
	return rlimInfinity()
}

// UserName returns the current user, falling back to $USER.
func (s *System) UserName() string {
	if u, err := user.Current(); err == nil {
		return u.Username
	}
	return os.Getenv("USER")
}

// LockMemory locks current and future process memory in RAM.
// A failure is not fatal: the memory lock check reports it if locking was requested.
func (s *System) LockMemory() error {
	if err := lockMemory(); err != nil {
		return err
	}
	s.locked.Store(true)
	return nil
}

// rlimToInt64 converts a raw rlimit value, preserving the bit pattern so
// that the platform's infinity compares equal to RlimInfinity.
func rlimToInt64(v uint64) int64 {
	return int64(v)
}
