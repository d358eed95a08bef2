package bootstrap

import "net/netip"

// BoundAddress is the set of addresses a node listens on plus the single
// address it advertises to other nodes.
type BoundAddress struct {
	Bound   []netip.AddrPort
	Publish netip.AddrPort
}

// EnforceLimits reports whether failed checks must abort startup.
// Checks are only advisory when every bound address and the publish
// address are loopback or link-local.
func EnforceLimits(b BoundAddress) bool {
	for _, a := range b.Bound {
		if !isLoopbackOrLinkLocal(a.Addr()) {
			return true
		}
	}
	return !isLoopbackOrLinkLocal(b.Publish.Addr())
}

func isLoopbackOrLinkLocal(a netip.Addr) bool {
	a = a.Unmap()
	return a.IsLoopback() || a.IsLinkLocalUnicast()
}
