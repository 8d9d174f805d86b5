// Package rrdata holds the payload shapes of the common record types,
// their field tables, and a ready made registry containing all of them.
//
// Every shape is a plain struct with an explicit table describing its
// wire layout. The tables are compiled once, when they are registered,
// table mistakes panic at that point and never surface per message.
package rrdata

import (
	"sync"

	"github.com/merlit/dnswire/internal/dnsmsg"
)

var defaultRegistry = sync.OnceValue(func() *dnsmsg.Registry {
	r := dnsmsg.NewRegistry()
	RegisterAll(r)
	return r
})

// Default returns the shared registry with every shape of this package
// registered. Treat it as read only.
func Default() *dnsmsg.Registry {
	return defaultRegistry()
}

// RegisterAll adds every shape of this package to r.
func RegisterAll(r *dnsmsg.Registry) {
	// address.go
	dnsmsg.MustRegister[A](r, aFields)
	dnsmsg.MustRegister[AAAA](r, aaaaFields)

	// names.go
	dnsmsg.MustRegister[NS](r, nsFields)
	dnsmsg.MustRegister[CNAME](r, cnameFields)
	dnsmsg.MustRegister[PTR](r, ptrFields)
	dnsmsg.MustRegister[DNAME](r, dnameFields)
	dnsmsg.MustRegister[MB](r, mbFields)
	dnsmsg.MustRegister[MG](r, mgFields)
	dnsmsg.MustRegister[MR](r, mrFields)
	dnsmsg.MustRegister[MX](r, mxFields)
	dnsmsg.MustRegister[KX](r, kxFields)
	dnsmsg.MustRegister[RT](r, rtFields)
	dnsmsg.MustRegister[AFSDB](r, afsdbFields)
	dnsmsg.MustRegister[SRV](r, srvFields)
	dnsmsg.MustRegister[SOA](r, soaFields)
	dnsmsg.MustRegister[RP](r, rpFields)
	dnsmsg.MustRegister[MINFO](r, minfoFields)

	// text.go
	dnsmsg.MustRegister[TXT](r, txtFields)
	dnsmsg.MustRegister[SPF](r, spfFields)
	dnsmsg.MustRegister[HINFO](r, hinfoFields)
	dnsmsg.MustRegister[X25](r, x25Fields)
	dnsmsg.MustRegister[ISDN](r, isdnFields)
	dnsmsg.MustRegister[GPOS](r, gposFields)
	dnsmsg.MustRegister[NAPTR](r, naptrFields)
	dnsmsg.MustRegister[CAA](r, caaFields)
	dnsmsg.MustRegister[URI](r, uriFields)

	// sec.go
	dnsmsg.MustRegister[DS](r, dsFields)
	dnsmsg.MustRegister[SSHFP](r, sshfpFields)
	dnsmsg.MustRegister[TLSA](r, tlsaFields)
	dnsmsg.MustRegister[DNSKEY](r, dnskeyFields)
	dnsmsg.MustRegister[NSEC3](r, nsec3Fields)
	dnsmsg.MustRegister[IPSECKEY](r, ipseckeyFields)

	// misc.go
	dnsmsg.MustRegister[NULL](r, nullFields)
	dnsmsg.MustRegister[OPT](r, optFields)
}
