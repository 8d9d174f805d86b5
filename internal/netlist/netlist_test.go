package netlist

import (
	"net/netip"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNetlist(t *testing.T) {
	add := func(r *require.Assertions, b *ListBuilder[int], start, end string, v int) {
		ok := b.Add(netip.MustParseAddr(start), netip.MustParseAddr(end), v)
		r.True(ok)
	}
	ipf := func(s string) Ipv6 {
		return addr2Ipv6(netip.MustParseAddr(s))
	}

	t.Run("rejects touching ranges", func(t *testing.T) {
		r := require.New(t)
		b := NewBuilder[int](0)
		add(r, b, "0.0.0.0", "0.0.0.4", 1)
		add(r, b, "0.0.0.4", "0.0.0.5", 1)
		l, err := b.Build()
		r.Nil(l)
		r.Error(err)
	})

	t.Run("rejects overlaps out of order", func(t *testing.T) {
		r := require.New(t)
		b := NewBuilder[int](0)
		add(r, b, "0.0.0.0", "0.0.0.1", 1)
		add(r, b, "0.0.0.100", "0.0.0.101", 1)
		add(r, b, "0.0.0.2", "0.0.0.5", 1)
		add(r, b, "0.0.0.95", "0.0.0.100", 1)
		l, err := b.Build()
		r.Nil(l)
		r.Error(err)
	})

	t.Run("rejects inverted range", func(t *testing.T) {
		r := require.New(t)
		b := NewBuilder[int](0)
		r.False(b.Add(netip.MustParseAddr("0.0.0.9"), netip.MustParseAddr("0.0.0.1"), 1))
	})

	t.Run("lookup", func(t *testing.T) {
		r := require.New(t)
		b := NewBuilder[int](0)
		add(r, b, "0.0.0.0", "0.0.0.4", 1)
		add(r, b, "0.0.0.5", "0.0.0.6", 2)
		add(r, b, "0.0.0.7", "0.0.0.8", 3)
		l, err := b.Build()
		r.NoError(err)
		r.Equal(3, l.Len())

		v, ok := l.Lookup(ipf("0.0.0.1"))
		r.True(ok)
		r.Equal(1, v)
		v, ok = l.Lookup(ipf("0.0.0.8"))
		r.True(ok)
		r.Equal(3, v)
		v, ok = l.Lookup(ipf("0.0.0.10"))
		r.False(ok)
		r.Equal(0, v)
	})
}

func TestNetlistPrefix(t *testing.T) {
	r := require.New(t)
	b := NewBuilder[struct{}](0)
	r.True(b.AddPrefix(netip.MustParsePrefix("192.0.2.0/24"), struct{}{}))
	r.True(b.AddPrefix(netip.MustParsePrefix("2001:db8::/48"), struct{}{}))
	r.True(b.AddPrefix(netip.MustParsePrefix("203.0.113.7/32"), struct{}{}))
	l, err := b.Build()
	r.NoError(err)

	lookup := func(s string) bool {
		_, ok := l.LookupAddr(netip.MustParseAddr(s))
		return ok
	}
	r.True(lookup("192.0.2.0"))
	r.True(lookup("192.0.2.255"))
	r.False(lookup("192.0.3.0"))
	r.False(lookup("192.0.1.255"))

	r.True(lookup("2001:db8::1"))
	r.True(lookup("2001:db8:0:ffff:ffff:ffff:ffff:ffff"))
	r.False(lookup("2001:db8:1::"))

	r.True(lookup("203.0.113.7"))
	r.False(lookup("203.0.113.8"))

	// A mapped v4 client lands in the v4 range.
	r.True(lookup("::ffff:192.0.2.77"))
}
