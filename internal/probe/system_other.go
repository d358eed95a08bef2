//go:build !linux && !darwin

package probe

import "errors"

func maxFileDescriptors() (int64, error) { return Unknown, nil }

func maxThreads() (int64, error) { return Unknown, nil }

func maxVirtualMemory() (int64, error) { return UnknownVirtualMemory, nil }

func rlimInfinity() int64 { return Unknown }

func memoryLocked(locked bool) (bool, error) { return locked, nil }

func lockMemory() error {
	return errors.New("memory locking is not supported on this platform")
}
