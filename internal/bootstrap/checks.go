package bootstrap

import (
	"fmt"

	nerrors "github.com/Aman-CERP/nodeguard/internal/errors"
	"github.com/Aman-CERP/nodeguard/internal/probe"
)

const (
	// DefaultFileDescriptorLimit is the minimum open file limit on most platforms.
	DefaultFileDescriptorLimit int64 = 1 << 16

	// DarwinFileDescriptorLimit matches OPEN_MAX in <sys/syslimits.h>, the
	// effective per-process ceiling on BSD-derived kernels.
	DarwinFileDescriptorLimit int64 = 10240

	// MaxThreadsThreshold is the minimum per-user thread limit.
	MaxThreadsThreshold int64 = 1 << 11

	// MinimumMasterNodesSetting is the quorum setting key.
	MinimumMasterNodesSetting = "discovery.zen.minimum_master_nodes"
)

// HeapSizeCheck fails when the initial and maximum heap sizes differ.
type HeapSizeCheck struct {
	probe probe.Probe
}

// NewHeapSizeCheck creates a heap size parity check.
func NewHeapSizeCheck(p probe.Probe) *HeapSizeCheck {
	return &HeapSizeCheck{probe: p}
}

// Name implements Check.
func (c *HeapSizeCheck) Name() string { return "heap_size" }

// Check implements Check. Unset sizes never violate.
func (c *HeapSizeCheck) Check() (bool, error) {
	initial, err := c.probe.InitialHeapSize()
	if err != nil {
		return false, err
	}
	maxHeap, err := c.probe.MaxHeapSize()
	if err != nil {
		return false, err
	}
	return initial != 0 && maxHeap != 0 && initial != maxHeap, nil
}

// Message names both configured sizes.
func (c *HeapSizeCheck) Message() string {
	initial, _ := c.probe.InitialHeapSize()
	maxHeap, _ := c.probe.MaxHeapSize()
	return fmt.Sprintf(
		"initial heap size [%d] not equal to maximum heap size [%d]; "+
			"this can cause resize pauses and prevents memory locking from locking the entire heap",
		initial, maxHeap)
}

// FileDescriptorCheck fails when the open file limit is below a threshold.
type FileDescriptorCheck struct {
	probe probe.Probe
	limit int64
}

// NewFileDescriptorCheck creates a file descriptor check. limit must be positive.
func NewFileDescriptorCheck(p probe.Probe, limit int64) (*FileDescriptorCheck, error) {
	if limit <= 0 {
		return nil, nerrors.New(nerrors.ErrCodeCheckConfigInvalid,
			fmt.Sprintf("limit must be positive but was [%d]", limit), nil).
			WithDetail("check", "file_descriptors")
	}
	return &FileDescriptorCheck{probe: p, limit: limit}, nil
}

// Name implements Check.
func (c *FileDescriptorCheck) Name() string { return "file_descriptors" }

// Check implements Check. An unknown limit never violates.
func (c *FileDescriptorCheck) Check() (bool, error) {
	count, err := c.probe.MaxFileDescriptors()
	if err != nil {
		return false, err
	}
	return count != probe.Unknown && count < c.limit, nil
}

// Message reports the current limit and the required minimum.
func (c *FileDescriptorCheck) Message() string {
	count, _ := c.probe.MaxFileDescriptors()
	return fmt.Sprintf(
		"max file descriptors [%d] for nodeguard process likely too low, increase to at least [%d]",
		count, c.limit)
}

// MemoryLockCheck fails when memory locking was requested but did not take effect.
type MemoryLockCheck struct {
	probe     probe.Probe
	requested bool
}

// NewMemoryLockCheck creates a memory lock check.
func NewMemoryLockCheck(p probe.Probe, requested bool) *MemoryLockCheck {
	return &MemoryLockCheck{probe: p, requested: requested}
}

// Name implements Check.
func (c *MemoryLockCheck) Name() string { return "memory_lock" }

// Check implements Check. It violates only when locking was requested.
func (c *MemoryLockCheck) Check() (bool, error) {
	if !c.requested {
		return false, nil
	}
	locked, err := c.probe.MemoryLocked()
	if err != nil {
		return false, err
	}
	return !locked, nil
}

// Message is fixed; it does not read the probe.
func (c *MemoryLockCheck) Message() string {
	return "memory locking requested for nodeguard process but memory is not locked"
}

// MaxThreadsCheck fails when the per-user thread limit is below MaxThreadsThreshold.
type MaxThreadsCheck struct {
	probe probe.Probe
}

// NewMaxThreadsCheck creates a thread limit check.
func NewMaxThreadsCheck(p probe.Probe) *MaxThreadsCheck {
	return &MaxThreadsCheck{probe: p}
}

// Name implements Check.
func (c *MaxThreadsCheck) Name() string { return "max_threads" }

// Check implements Check. An unknown limit never violates.
func (c *MaxThreadsCheck) Check() (bool, error) {
	count, err := c.probe.MaxThreads()
	if err != nil {
		return false, err
	}
	return count != probe.Unknown && count < MaxThreadsThreshold, nil
}

// Message reports the current limit for the running user.
func (c *MaxThreadsCheck) Message() string {
	count, _ := c.probe.MaxThreads()
	return fmt.Sprintf(
		"max number of threads [%d] for user [%s] likely too low, increase to at least [%d]",
		count, c.probe.UserName(), MaxThreadsThreshold)
}

// MaxVirtualMemoryCheck fails when the address space limit is not unlimited.
type MaxVirtualMemoryCheck struct {
	probe probe.Probe
}

// NewMaxVirtualMemoryCheck creates a virtual memory limit check.
func NewMaxVirtualMemoryCheck(p probe.Probe) *MaxVirtualMemoryCheck {
	return &MaxVirtualMemoryCheck{probe: p}
}

// Name implements Check.
func (c *MaxVirtualMemoryCheck) Name() string { return "max_virtual_memory" }

// Check implements Check. Only RLIM_INFINITY passes; an unknown value never violates.
func (c *MaxVirtualMemoryCheck) Check() (bool, error) {
	size, err := c.probe.MaxVirtualMemory()
	if err != nil {
		return false, err
	}
	return size != probe.UnknownVirtualMemory && size != c.probe.RlimInfinity(), nil
}

// Message reports the current address space limit for the running user.
func (c *MaxVirtualMemoryCheck) Message() string {
	size, _ := c.probe.MaxVirtualMemory()
	return fmt.Sprintf(
		"max size virtual memory [%d] for user [%s] likely too low, increase to [unlimited]",
		size, c.probe.UserName())
}

// MinimumMasterNodesCheck fails when the quorum setting is absent.
type MinimumMasterNodesCheck struct {
	set bool
}

// NewMinimumMasterNodesCheck creates a quorum setting check.
func NewMinimumMasterNodesCheck(set bool) *MinimumMasterNodesCheck {
	return &MinimumMasterNodesCheck{set: set}
}

// Name implements Check.
func (c *MinimumMasterNodesCheck) Name() string { return "minimum_master_nodes" }

// Check implements Check. It violates when discovery.minimum_master_nodes is absent.
func (c *MinimumMasterNodesCheck) Check() (bool, error) {
	return !c.set, nil
}

// Message is fixed.
func (c *MinimumMasterNodesCheck) Message() string {
	return "please set [" + MinimumMasterNodesSetting +
		"] to a majority of the number of master eligible nodes in your cluster"
}
