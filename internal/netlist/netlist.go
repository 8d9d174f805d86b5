package netlist

import (
	"fmt"
	"net/netip"
	"sort"
)

// List is an immutable sorted list of non overlapping address ranges,
// each carrying a value. Build one through a ListBuilder.
type List[V any] struct {
	e []ipRange[V]
}

func (l *List[V]) LookupAddr(addr netip.Addr) (_ V, ok bool) {
	if !addr.IsValid() {
		return
	}
	return l.Lookup(addr2Ipv6(addr))
}

func (l *List[V]) Lookup(ip Ipv6) (_ V, ok bool) {
	i := sort.Search(len(l.e), func(i int) bool {
		return ip.cmp(l.e[i].start) < 0
	})
	if i == 0 {
		return
	}
	return l.e[i-1].contains(ip)
}

func (l *List[V]) Len() int {
	return len(l.e)
}

type ListBuilder[V any] struct {
	b []ipRange[V]
}

func NewBuilder[V any](initCap int) *ListBuilder[V] {
	return &ListBuilder[V]{
		b: make([]ipRange[V], 0, initCap),
	}
}

// Add returns false if addrs are invalid or start is greater than end.
func (b *ListBuilder[V]) Add(start, end netip.Addr, v V) (ok bool) {
	if !start.IsValid() || !end.IsValid() {
		return false
	}
	r := ipRange[V]{
		start: addr2Ipv6(start),
		end:   addr2Ipv6(end),
		v:     v,
	}
	if r.start.cmp(r.end) > 0 {
		return false
	}
	b.b = append(b.b, r)
	return true
}

// AddPrefix adds the whole range of p. Returns false if p is invalid.
func (b *ListBuilder[V]) AddPrefix(p netip.Prefix, v V) (ok bool) {
	if !p.IsValid() {
		return false
	}
	addr := p.Masked().Addr()
	bits := p.Bits()
	if addr.Is4() {
		// The list stores v4 in the mapped v6 space.
		bits += 96
	}

	start := addr2Ipv6(addr)
	end := start
	host := 128 - bits
	if host >= 64 {
		end.l = ^uint64(0)
		end.h |= ^uint64(0) >> (128 - host)
	} else if host > 0 {
		end.l |= ^uint64(0) >> (64 - host)
	}
	b.b = append(b.b, ipRange[V]{start: start, end: end, v: v})
	return true
}

type ipRange[V any] struct {
	v V

	start Ipv6
	end   Ipv6
}

func (r *ipRange[V]) contains(ip Ipv6) (_ V, _ bool) {
	if r.start.cmp(ip) <= 0 && ip.cmp(r.end) <= 0 {
		return r.v, true
	}
	return
}

// Build the list. If no error, the returned List takes ownership of the
// builder memory, so Build should only be called once.
func (b *ListBuilder[V]) Build() (*List[V], error) {
	rs := b.b
	sort.Slice(rs, func(i, j int) bool {
		return rs[i].start.cmp(rs[j].start) < 0
	})

	// overlaps?
	for i := 0; i < len(rs)-1; i++ {
		if rs[i].end.cmp(rs[i+1].start) >= 0 {
			return nil, fmt.Errorf("overlapped ranges, %s-%s %s-%s",
				rs[i].start,
				rs[i].end,
				rs[i+1].start,
				rs[i+1].end,
			)
		}
	}
	return &List[V]{
		e: rs,
	}, nil
}
