package limiter

import (
	"net/netip"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestClientLimiter(t *testing.T) {
	r := require.New(t)
	l := New(Opts{Qps: 1, Burst: 2})
	defer l.Close()

	a := netip.MustParseAddr("192.0.2.1")
	r.True(l.Allow(a))
	r.True(l.Allow(a))
	r.False(l.Allow(a)) // burst spent

	// Neighbours in the /24 share the bucket.
	r.False(l.Allow(netip.MustParseAddr("192.0.2.77")))
	// A different subnet has its own bucket.
	r.True(l.Allow(netip.MustParseAddr("198.51.100.1")))

	// v6 masks to the /48.
	r.True(l.Allow(netip.MustParseAddr("2001:db8::1")))
	r.True(l.Allow(netip.MustParseAddr("2001:db8::2")))
	r.False(l.Allow(netip.MustParseAddr("2001:db8::3")))
	r.True(l.Allow(netip.MustParseAddr("2001:db9::1")))
}

func TestClientLimiterGC(t *testing.T) {
	r := require.New(t)
	l := New(Opts{Qps: 1})
	defer l.Close()

	r.True(l.Allow(netip.MustParseAddr("192.0.2.1")))
	r.Equal(1, l.m.Size())

	// Entries idle for longer than the ttl are collected.
	l.gc(time.Now().Add(entryTtl * 2))
	r.Equal(0, l.m.Size())
}
