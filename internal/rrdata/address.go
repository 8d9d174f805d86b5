package rrdata

import (
	"errors"
	"net/netip"

	"github.com/merlit/dnswire/internal/dnsmsg"
)

var (
	errNotIPv4 = errors.New("not an IPv4 address")
	errNotAddr = errors.New("not a valid IP address")
)

// A is an IPv4 host address.
type A struct {
	Addr netip.Addr
}

func (*A) Identity() dnsmsg.Ident {
	return dnsmsg.Ident{Type: dnsmsg.TypeA, Class: dnsmsg.ClassINET, Name: "A"}
}

func (r *A) String() string {
	return r.Addr.String()
}

var aFields = []dnsmsg.Field[A]{
	dnsmsg.Value[A]("address", dnsmsg.Fixed(4),
		func(r *A) ([]byte, error) {
			addr := r.Addr.Unmap()
			if !addr.Is4() {
				return nil, errNotIPv4
			}
			b := addr.As4()
			return b[:], nil
		},
		func(r *A, b []byte) error {
			r.Addr = netip.AddrFrom4([4]byte(b))
			return nil
		},
	),
}

// AAAA is an IPv6 host address.
type AAAA struct {
	Addr netip.Addr
}

func (*AAAA) Identity() dnsmsg.Ident {
	return dnsmsg.Ident{Type: dnsmsg.TypeAAAA, Class: dnsmsg.ClassINET, Name: "AAAA"}
}

func (r *AAAA) String() string {
	return r.Addr.String()
}

var aaaaFields = []dnsmsg.Field[AAAA]{
	dnsmsg.Value[AAAA]("address", dnsmsg.Fixed(16),
		func(r *AAAA) ([]byte, error) {
			if !r.Addr.IsValid() {
				return nil, errNotAddr
			}
			b := r.Addr.As16()
			return b[:], nil
		},
		func(r *AAAA, b []byte) error {
			r.Addr = netip.AddrFrom16([16]byte(b))
			return nil
		},
	),
}
