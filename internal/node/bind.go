package node

import (
	"context"
	"fmt"
	"net"
	"net/netip"
	"strconv"

	nerrors "github.com/Aman-CERP/nodeguard/internal/errors"
)

// Bind opens one TCP listener per host on port and returns the listeners
// with the addresses they actually bound. Port 0 picks a free port per
// listener. On error every listener already opened is closed.
func Bind(ctx context.Context, hosts []string, port int) ([]net.Listener, []netip.AddrPort, error) {
	var lc net.ListenConfig
	listeners := make([]net.Listener, 0, len(hosts))
	addrs := make([]netip.AddrPort, 0, len(hosts))

	for _, host := range hosts {
		addr := net.JoinHostPort(host, strconv.Itoa(port))
		l, err := lc.Listen(ctx, "tcp", addr)
		if err != nil {
			closeAll(listeners)
			return nil, nil, nerrors.NetworkError(fmt.Sprintf("failed to bind %s", addr), err).
				WithDetail("address", addr).
				WithSuggestion("check that the port is free and the host is a local address")
		}
		listeners = append(listeners, l)
		addrs = append(addrs, listenerAddr(l))
	}

	return listeners, addrs, nil
}

// PublishAddress resolves the address advertised to other nodes. An empty
// host publishes the first bound address; when that is a wildcard the first
// non-loopback interface address is used instead. The port is always the
// first bound port.
func PublishAddress(ctx context.Context, host string, bound []netip.AddrPort) (netip.AddrPort, error) {
	if len(bound) == 0 {
		return netip.AddrPort{}, nerrors.New(nerrors.ErrCodePublishAddress, "no bound address to publish", nil)
	}
	port := bound[0].Port()

	if host == "" {
		addr := bound[0].Addr()
		if addr.IsUnspecified() {
			if ifaceAddr, ok := firstInterfaceAddr(addr.Is4()); ok {
				addr = ifaceAddr
			}
		}
		return netip.AddrPortFrom(addr, port), nil
	}

	if addr, err := netip.ParseAddr(host); err == nil {
		return netip.AddrPortFrom(addr.Unmap(), port), nil
	}

	resolved, err := net.DefaultResolver.LookupNetIP(ctx, "ip", host)
	if err != nil || len(resolved) == 0 {
		return netip.AddrPort{}, nerrors.New(nerrors.ErrCodePublishAddress,
			fmt.Sprintf("failed to resolve publish host %s", host), err).
			WithSuggestion("set network.publish_host to an IP address")
	}
	return netip.AddrPortFrom(resolved[0].Unmap(), port), nil
}

func listenerAddr(l net.Listener) netip.AddrPort {
	if tcp, ok := l.Addr().(*net.TCPAddr); ok {
		ap := tcp.AddrPort()
		return netip.AddrPortFrom(ap.Addr().Unmap(), ap.Port())
	}
	ap, _ := netip.ParseAddrPort(l.Addr().String())
	return ap
}

// firstInterfaceAddr returns the first global unicast interface address of
// the requested family.
func firstInterfaceAddr(v4 bool) (netip.Addr, bool) {
	ifaceAddrs, err := net.InterfaceAddrs()
	if err != nil {
		return netip.Addr{}, false
	}
	for _, a := range ifaceAddrs {
		ipnet, ok := a.(*net.IPNet)
		if !ok {
			continue
		}
		addr, ok := netip.AddrFromSlice(ipnet.IP)
		if !ok {
			continue
		}
		addr = addr.Unmap()
		if addr.Is4() == v4 && addr.IsGlobalUnicast() {
			return addr, true
		}
	}
	return netip.Addr{}, false
}

func closeAll(listeners []net.Listener) {
	for _, l := range listeners {
		_ = l.Close()
	}
}

// Resolve returns the addresses Bind would report for hosts and port without
// opening listeners. Host names resolve to their first address. Port 0 is
// kept as 0.
func Resolve(ctx context.Context, hosts []string, port int) ([]netip.AddrPort, error) {
	addrs := make([]netip.AddrPort, 0, len(hosts))
	for _, host := range hosts {
		addr, err := netip.ParseAddr(host)
		if err != nil {
			resolved, lookupErr := net.DefaultResolver.LookupNetIP(ctx, "ip", host)
			if lookupErr != nil || len(resolved) == 0 {
				return nil, nerrors.NetworkError(fmt.Sprintf("failed to resolve bind host %s", host), lookupErr)
			}
			addr = resolved[0]
		}
		addrs = append(addrs, netip.AddrPortFrom(addr.Unmap(), uint16(port)))
	}
	return addrs, nil
}
