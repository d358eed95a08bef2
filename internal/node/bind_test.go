package node

import (
	"context"
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	nerrors "github.com/Aman-CERP/nodeguard/internal/errors"
)

func TestBind_EphemeralLoopback(t *testing.T) {
	listeners, addrs, err := Bind(context.Background(), []string{"127.0.0.1"}, 0)
	require.NoError(t, err)
	defer closeAll(listeners)

	require.Len(t, addrs, 1)
	assert.True(t, addrs[0].Addr().IsLoopback())
	assert.NotZero(t, addrs[0].Port())
}

func TestBind_PortInUse(t *testing.T) {
	// Given: a port already bound
	first, addrs, err := Bind(context.Background(), []string{"127.0.0.1"}, 0)
	require.NoError(t, err)
	defer closeAll(first)

	// When: binding it again
	_, _, err = Bind(context.Background(), []string{"127.0.0.1"}, int(addrs[0].Port()))

	// Then: a network error naming the address
	require.Error(t, err)
	assert.Equal(t, nerrors.ErrCodeBindFailed, nerrors.GetCode(err))
}

func TestPublishAddress(t *testing.T) {
	bound := []netip.AddrPort{netip.MustParseAddrPort("127.0.0.1:9300")}

	tests := []struct {
		name string
		host string
		want string
	}{
		{name: "default is first bound", host: "", want: "127.0.0.1:9300"},
		{name: "explicit ipv4", host: "192.0.2.10", want: "192.0.2.10:9300"},
		{name: "mapped ipv4 is unmapped", host: "::ffff:10.0.0.1", want: "10.0.0.1:9300"},
		{name: "ipv6", host: "fe80::1", want: "[fe80::1]:9300"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PublishAddress(context.Background(), tt.host, bound)

			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestPublishAddress_WildcardPicksInterface(t *testing.T) {
	bound := []netip.AddrPort{netip.MustParseAddrPort("0.0.0.0:9300")}

	got, err := PublishAddress(context.Background(), "", bound)

	require.NoError(t, err)
	assert.Equal(t, uint16(9300), got.Port())
	assert.False(t, got.Addr().IsLoopback())
}

func TestPublishAddress_NothingBound(t *testing.T) {
	_, err := PublishAddress(context.Background(), "", nil)

	require.Error(t, err)
	assert.Equal(t, nerrors.ErrCodePublishAddress, nerrors.GetCode(err))
}

func TestResolve_WithoutBinding(t *testing.T) {
	addrs, err := Resolve(context.Background(), []string{"127.0.0.1", "::1", "0.0.0.0"}, 9300)

	require.NoError(t, err)
	assert.Equal(t, []netip.AddrPort{
		netip.MustParseAddrPort("127.0.0.1:9300"),
		netip.MustParseAddrPort("[::1]:9300"),
		netip.MustParseAddrPort("0.0.0.0:9300"),
	}, addrs)
}
