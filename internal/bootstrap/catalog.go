package bootstrap

import (
	"runtime"

	"github.com/Aman-CERP/nodeguard/internal/probe"
)

// Platform is an operating system family as named by runtime.GOOS.
type Platform string

// CurrentPlatform returns the platform of the running process.
func CurrentPlatform() Platform {
	return Platform(runtime.GOOS)
}

// PlatformProfile describes which platform-dependent checks apply.
type PlatformProfile struct {
	// FileDescriptorLimit is the minimum open file limit.
	FileDescriptorLimit int64
	// ThreadLimit is true when the platform has a per-user thread rlimit.
	ThreadLimit bool
	// VirtualMemoryLimit is true when the platform has an address space rlimit.
	VirtualMemoryLimit bool
}

var defaultProfile = PlatformProfile{
	FileDescriptorLimit: DefaultFileDescriptorLimit,
}

var platforms = map[Platform]PlatformProfile{
	"linux": {
		FileDescriptorLimit: DefaultFileDescriptorLimit,
		ThreadLimit:         true,
		VirtualMemoryLimit:  true,
	},
	"darwin": {
		FileDescriptorLimit: DarwinFileDescriptorLimit,
		VirtualMemoryLimit:  true,
	},
}

// ProfileFor returns the check profile for a platform.
func ProfileFor(platform Platform) PlatformProfile {
	if p, ok := platforms[platform]; ok {
		return p
	}
	return defaultProfile
}

// Checks builds the ordered check catalog for the given settings and platform.
// It fails only when a check is constructed with an invalid parameter.
func Checks(settings Settings, platform Platform, p probe.Probe) ([]Check, error) {
	return checksForProfile(settings, ProfileFor(platform), p)
}

func checksForProfile(settings Settings, profile PlatformProfile, p probe.Probe) ([]Check, error) {
	fdCheck, err := NewFileDescriptorCheck(p, profile.FileDescriptorLimit)
	if err != nil {
		return nil, err
	}

	checks := []Check{
		NewHeapSizeCheck(p),
		fdCheck,
		NewMemoryLockCheck(p, settings.MemoryLock),
	}
	if profile.ThreadLimit {
		checks = append(checks, NewMaxThreadsCheck(p))
	}
	if profile.VirtualMemoryLimit {
		checks = append(checks, NewMaxVirtualMemoryCheck(p))
	}
	checks = append(checks, NewMinimumMasterNodesCheck(settings.MinimumMasterNodesSet))
	return checks, nil
}
