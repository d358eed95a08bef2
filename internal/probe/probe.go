package probe

import "math"

const (
	// Unknown is returned for counts the platform cannot report.
	Unknown int64 = -1

	// UnknownVirtualMemory is returned when the virtual memory limit
	// cannot be read. -1 is a valid limit on some platforms, so a
	// separate sentinel is used.
	UnknownVirtualMemory int64 = math.MinInt64
)

// Probe is a read-only view of process resource limits.
// Every call re-reads the live value.
type Probe interface {
	// InitialHeapSize returns the configured initial heap size in bytes, 0 if unset.
	InitialHeapSize() (int64, error)
	// MaxHeapSize returns the configured maximum heap size in bytes, 0 if unset.
	MaxHeapSize() (int64, error)
	// MaxFileDescriptors returns the soft RLIMIT_NOFILE, or Unknown.
	MaxFileDescriptors() (int64, error)
	// MemoryLocked reports whether the process memory is locked in RAM.
	MemoryLocked() (bool, error)
	// MaxThreads returns the soft per-user thread limit, or Unknown.
	MaxThreads() (int64, error)
	// MaxVirtualMemory returns the soft RLIMIT_AS, or UnknownVirtualMemory.
	MaxVirtualMemory() (int64, error)
	// RlimInfinity returns the platform value for an unlimited resource limit.
	RlimInfinity() int64
	// UserName returns the name of the user running the process.
	UserName() string
}

// Static is a Probe with fixed values.
type Static struct {
	InitialHeap     int64
	MaxHeap         int64
	FileDescriptors int64
	Locked          bool
	Threads         int64
	VirtualMemory   int64
	Infinity        int64
	User            string

	// Err, when set, is returned by every accessor.
	Err error
}

// NewStatic returns a Static probe that reports every value as unknown
// and is therefore never in violation.
func NewStatic() *Static {
	return &Static{
		FileDescriptors: Unknown,
		Threads:         Unknown,
		VirtualMemory:   UnknownVirtualMemory,
		Infinity:        Unknown,
		User:            "nodeguard",
	}
}

func (s *Static) InitialHeapSize() (int64, error)    { return s.InitialHeap, s.Err }
func (s *Static) MaxHeapSize() (int64, error)        { return s.MaxHeap, s.Err }
func (s *Static) MaxFileDescriptors() (int64, error) { return s.FileDescriptors, s.Err }
func (s *Static) MemoryLocked() (bool, error)        { return s.Locked, s.Err }
func (s *Static) MaxThreads() (int64, error)         { return s.Threads, s.Err }
func (s *Static) MaxVirtualMemory() (int64, error)   { return s.VirtualMemory, s.Err }
func (s *Static) RlimInfinity() int64                { return s.Infinity }
func (s *Static) UserName() string                   { return s.User }
