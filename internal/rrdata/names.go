package rrdata

import "github.com/merlit/dnswire/internal/dnsmsg"

// Several families of record types share one wire layout and differ
// only in their type code and field names. The builders below produce
// the shared part of their tables, a derived type appends its extra
// fields after the base ones, in wire order.

// singleName builds the table of a payload that is nothing but one
// domain name.
func singleName[T any](field string, acc func(*T) **dnsmsg.Name) []dnsmsg.Field[T] {
	return []dnsmsg.Field[T]{
		dnsmsg.NameField(field, acc),
	}
}

// prefAndName builds the table of the preference plus target family
// (MX and friends).
func prefAndName[T any](prefField string, pref func(*T) *uint16, nameField string, name func(*T) **dnsmsg.Name) []dnsmsg.Field[T] {
	return []dnsmsg.Field[T]{
		dnsmsg.Uint16(prefField, pref),
		dnsmsg.NameField(nameField, name),
	}
}

// namePair builds the table of the two mailbox name family (RP, MINFO).
func namePair[T any](f1 string, a1 func(*T) **dnsmsg.Name, f2 string, a2 func(*T) **dnsmsg.Name) []dnsmsg.Field[T] {
	return []dnsmsg.Field[T]{
		dnsmsg.NameField(f1, a1),
		dnsmsg.NameField(f2, a2),
	}
}

// prioWeight builds the leading priority and weight pair shared by SRV
// and URI.
func prioWeight[T any](prio func(*T) *uint16, weight func(*T) *uint16) []dnsmsg.Field[T] {
	return []dnsmsg.Field[T]{
		dnsmsg.Uint16("priority", prio),
		dnsmsg.Uint16("weight", weight),
	}
}

// NS names an authoritative server for the owner zone.
type NS struct {
	Host *dnsmsg.Name
}

func (*NS) Identity() dnsmsg.Ident {
	return dnsmsg.Ident{Type: dnsmsg.TypeNS, Class: dnsmsg.ClassINET, Name: "NS"}
}

var nsFields = singleName("host", func(r *NS) **dnsmsg.Name { return &r.Host })

// CNAME aliases the owner name to its canonical name.
type CNAME struct {
	Target *dnsmsg.Name
}

func (*CNAME) Identity() dnsmsg.Ident {
	return dnsmsg.Ident{Type: dnsmsg.TypeCNAME, Class: dnsmsg.ClassINET, Name: "CNAME"}
}

var cnameFields = singleName("target", func(r *CNAME) **dnsmsg.Name { return &r.Target })

// PTR points back from an address derived owner to a host name.
type PTR struct {
	Target *dnsmsg.Name
}

func (*PTR) Identity() dnsmsg.Ident {
	return dnsmsg.Ident{Type: dnsmsg.TypePTR, Class: dnsmsg.ClassINET, Name: "PTR"}
}

var ptrFields = singleName("target", func(r *PTR) **dnsmsg.Name { return &r.Target })

// DNAME aliases a whole subtree.
type DNAME struct {
	Target *dnsmsg.Name
}

func (*DNAME) Identity() dnsmsg.Ident {
	return dnsmsg.Ident{Type: dnsmsg.TypeDNAME, Class: dnsmsg.ClassINET, Name: "DNAME"}
}

var dnameFields = singleName("target", func(r *DNAME) **dnsmsg.Name { return &r.Target })

// MB names the host holding the owner mailbox.
type MB struct {
	Mailbox *dnsmsg.Name
}

func (*MB) Identity() dnsmsg.Ident {
	return dnsmsg.Ident{Type: dnsmsg.TypeMB, Class: dnsmsg.ClassINET, Name: "MB"}
}

var mbFields = singleName("mailbox", func(r *MB) **dnsmsg.Name { return &r.Mailbox })

// MG names a mailbox that is a member of the owner mail group.
type MG struct {
	Mailbox *dnsmsg.Name
}

func (*MG) Identity() dnsmsg.Ident {
	return dnsmsg.Ident{Type: dnsmsg.TypeMG, Class: dnsmsg.ClassINET, Name: "MG"}
}

var mgFields = singleName("mailbox", func(r *MG) **dnsmsg.Name { return &r.Mailbox })

// MR names the new mailbox of a renamed mailbox.
type MR struct {
	Mailbox *dnsmsg.Name
}

func (*MR) Identity() dnsmsg.Ident {
	return dnsmsg.Ident{Type: dnsmsg.TypeMR, Class: dnsmsg.ClassINET, Name: "MR"}
}

var mrFields = singleName("mailbox", func(r *MR) **dnsmsg.Name { return &r.Mailbox })

// MX names a mail exchange for the owner, lower preference wins.
type MX struct {
	Preference uint16
	Exchange   *dnsmsg.Name
}

func (*MX) Identity() dnsmsg.Ident {
	return dnsmsg.Ident{Type: dnsmsg.TypeMX, Class: dnsmsg.ClassINET, Name: "MX"}
}

var mxFields = prefAndName("preference", func(r *MX) *uint16 { return &r.Preference },
	"exchange", func(r *MX) **dnsmsg.Name { return &r.Exchange })

// KX names a key exchanger for the owner.
type KX struct {
	Preference uint16
	Exchanger  *dnsmsg.Name
}

func (*KX) Identity() dnsmsg.Ident {
	return dnsmsg.Ident{Type: dnsmsg.TypeKX, Class: dnsmsg.ClassINET, Name: "KX"}
}

var kxFields = prefAndName("preference", func(r *KX) *uint16 { return &r.Preference },
	"exchanger", func(r *KX) **dnsmsg.Name { return &r.Exchanger })

// RT names an intermediate route-through host.
type RT struct {
	Preference uint16
	Host       *dnsmsg.Name
}

func (*RT) Identity() dnsmsg.Ident {
	return dnsmsg.Ident{Type: dnsmsg.TypeRT, Class: dnsmsg.ClassINET, Name: "RT"}
}

var rtFields = prefAndName("preference", func(r *RT) *uint16 { return &r.Preference },
	"host", func(r *RT) **dnsmsg.Name { return &r.Host })

// AFSDB names an AFS database server. The subtype rides in the
// preference slot of the MX layout.
type AFSDB struct {
	Subtype  uint16
	Hostname *dnsmsg.Name
}

func (*AFSDB) Identity() dnsmsg.Ident {
	return dnsmsg.Ident{Type: dnsmsg.TypeAFSDB, Class: dnsmsg.ClassINET, Name: "AFSDB"}
}

var afsdbFields = prefAndName("subtype", func(r *AFSDB) *uint16 { return &r.Subtype },
	"hostname", func(r *AFSDB) **dnsmsg.Name { return &r.Hostname })

// SRV locates the server of a service. Its table extends the shared
// priority and weight prefix with a port and target.
type SRV struct {
	Priority uint16
	Weight   uint16
	Port     uint16
	Target   *dnsmsg.Name
}

func (*SRV) Identity() dnsmsg.Ident {
	return dnsmsg.Ident{Type: dnsmsg.TypeSRV, Class: dnsmsg.ClassINET, Name: "SRV"}
}

var srvFields = append(
	prioWeight(func(r *SRV) *uint16 { return &r.Priority }, func(r *SRV) *uint16 { return &r.Weight }),
	dnsmsg.Uint16("port", func(r *SRV) *uint16 { return &r.Port }),
	dnsmsg.NameField("target", func(r *SRV) **dnsmsg.Name { return &r.Target }),
)

// SOA marks the start of a zone of authority.
type SOA struct {
	NS      *dnsmsg.Name
	Mbox    *dnsmsg.Name
	Serial  uint32
	Refresh uint32
	Retry   uint32
	Expire  uint32
	MinTTL  uint32
}

func (*SOA) Identity() dnsmsg.Ident {
	return dnsmsg.Ident{Type: dnsmsg.TypeSOA, Class: dnsmsg.ClassINET, Name: "SOA"}
}

var soaFields = []dnsmsg.Field[SOA]{
	dnsmsg.NameField("ns", func(r *SOA) **dnsmsg.Name { return &r.NS }),
	dnsmsg.NameField("mbox", func(r *SOA) **dnsmsg.Name { return &r.Mbox }),
	dnsmsg.Uint32("serial", func(r *SOA) *uint32 { return &r.Serial }),
	dnsmsg.Uint32("refresh", func(r *SOA) *uint32 { return &r.Refresh }),
	dnsmsg.Uint32("retry", func(r *SOA) *uint32 { return &r.Retry }),
	dnsmsg.Uint32("expire", func(r *SOA) *uint32 { return &r.Expire }),
	dnsmsg.Uint32("minttl", func(r *SOA) *uint32 { return &r.MinTTL }),
}

// RP names the mailbox of the responsible person and a TXT location
// with more detail.
type RP struct {
	Mbox *dnsmsg.Name
	Txt  *dnsmsg.Name
}

func (*RP) Identity() dnsmsg.Ident {
	return dnsmsg.Ident{Type: dnsmsg.TypeRP, Class: dnsmsg.ClassINET, Name: "RP"}
}

var rpFields = namePair("mbox", func(r *RP) **dnsmsg.Name { return &r.Mbox },
	"txt", func(r *RP) **dnsmsg.Name { return &r.Txt })

// MINFO names the mailboxes responsible for a mailing list.
type MINFO struct {
	RMailbox *dnsmsg.Name
	EMailbox *dnsmsg.Name
}

func (*MINFO) Identity() dnsmsg.Ident {
	return dnsmsg.Ident{Type: dnsmsg.TypeMINFO, Class: dnsmsg.ClassINET, Name: "MINFO"}
}

var minfoFields = namePair("rmailbox", func(r *MINFO) **dnsmsg.Name { return &r.RMailbox },
	"emailbox", func(r *MINFO) **dnsmsg.Name { return &r.EMailbox })
