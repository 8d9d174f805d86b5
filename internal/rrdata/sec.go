package rrdata

import (
	"errors"
	"net/netip"

	"github.com/merlit/dnswire/internal/dnsmsg"
)

// DS delegates signing authority, it holds the digest of a child zone
// key.
type DS struct {
	KeyTag     uint16
	Algorithm  uint8
	DigestType uint8
	Digest     []byte
}

func (*DS) Identity() dnsmsg.Ident {
	return dnsmsg.Ident{Type: dnsmsg.TypeDS, Class: dnsmsg.ClassINET, Name: "DS"}
}

var dsFields = []dnsmsg.Field[DS]{
	dnsmsg.Uint16("key_tag", func(r *DS) *uint16 { return &r.KeyTag }),
	dnsmsg.Uint8("algorithm", func(r *DS) *uint8 { return &r.Algorithm }),
	dnsmsg.Uint8("digest_type", func(r *DS) *uint8 { return &r.DigestType }),
	dnsmsg.Bytes("digest", dnsmsg.Remaining(), func(r *DS) *[]byte { return &r.Digest }),
}

// SSHFP publishes an SSH host key fingerprint.
type SSHFP struct {
	Algorithm   uint8
	Type        uint8
	Fingerprint []byte
}

func (*SSHFP) Identity() dnsmsg.Ident {
	return dnsmsg.Ident{Type: dnsmsg.TypeSSHFP, Class: dnsmsg.ClassINET, Name: "SSHFP"}
}

var sshfpFields = []dnsmsg.Field[SSHFP]{
	dnsmsg.Uint8("algorithm", func(r *SSHFP) *uint8 { return &r.Algorithm }),
	dnsmsg.Uint8("type", func(r *SSHFP) *uint8 { return &r.Type }),
	dnsmsg.Bytes("fingerprint", dnsmsg.Remaining(), func(r *SSHFP) *[]byte { return &r.Fingerprint }),
}

// TLSA pins a TLS certificate or public key to the owner service name.
type TLSA struct {
	Usage        uint8
	Selector     uint8
	MatchingType uint8
	Certificate  []byte
}

func (*TLSA) Identity() dnsmsg.Ident {
	return dnsmsg.Ident{Type: dnsmsg.TypeTLSA, Class: dnsmsg.ClassINET, Name: "TLSA"}
}

var tlsaFields = []dnsmsg.Field[TLSA]{
	dnsmsg.Uint8("usage", func(r *TLSA) *uint8 { return &r.Usage }),
	dnsmsg.Uint8("selector", func(r *TLSA) *uint8 { return &r.Selector }),
	dnsmsg.Uint8("matching_type", func(r *TLSA) *uint8 { return &r.MatchingType }),
	dnsmsg.Bytes("certificate", dnsmsg.Remaining(), func(r *TLSA) *[]byte { return &r.Certificate }),
}

// DNSKEY is a zone signing key.
type DNSKEY struct {
	Flags     uint16
	Protocol  uint8
	Algorithm uint8
	PublicKey []byte
}

func (*DNSKEY) Identity() dnsmsg.Ident {
	return dnsmsg.Ident{Type: dnsmsg.TypeDNSKEY, Class: dnsmsg.ClassINET, Name: "DNSKEY"}
}

var dnskeyFields = []dnsmsg.Field[DNSKEY]{
	dnsmsg.Uint16("flags", func(r *DNSKEY) *uint16 { return &r.Flags }),
	dnsmsg.Uint8("protocol", func(r *DNSKEY) *uint8 { return &r.Protocol }),
	dnsmsg.Uint8("algorithm", func(r *DNSKEY) *uint8 { return &r.Algorithm }),
	dnsmsg.Bytes("public_key", dnsmsg.Remaining(), func(r *DNSKEY) *[]byte { return &r.PublicKey }),
}

// NSEC3 proves denial of existence through hashed owner names. The two
// inner windows carry their lengths in the preceding count fields, the
// counts are back-filled on encode, so callers never maintain them by
// hand.
type NSEC3 struct {
	HashAlgorithm uint8
	Flags         uint8
	Iterations    uint16
	SaltLength    uint8
	Salt          []byte
	HashLength    uint8
	NextHashed    []byte
	TypeBitmap    []byte
}

func (*NSEC3) Identity() dnsmsg.Ident {
	return dnsmsg.Ident{Type: dnsmsg.TypeNSEC3, Class: dnsmsg.ClassINET, Name: "NSEC3"}
}

var nsec3Fields = []dnsmsg.Field[NSEC3]{
	dnsmsg.Uint8("hash_algorithm", func(r *NSEC3) *uint8 { return &r.HashAlgorithm }),
	dnsmsg.Uint8("flags", func(r *NSEC3) *uint8 { return &r.Flags }),
	dnsmsg.Uint16("iterations", func(r *NSEC3) *uint16 { return &r.Iterations }),
	dnsmsg.Uint8("salt_length", func(r *NSEC3) *uint8 { return &r.SaltLength }),
	dnsmsg.Bytes("salt", dnsmsg.Sibling("salt_length"), func(r *NSEC3) *[]byte { return &r.Salt }),
	dnsmsg.Uint8("hash_length", func(r *NSEC3) *uint8 { return &r.HashLength }),
	dnsmsg.Bytes("next_hashed", dnsmsg.Sibling("hash_length"), func(r *NSEC3) *[]byte { return &r.NextHashed }),
	dnsmsg.Bytes("type_bitmap", dnsmsg.Remaining(), func(r *NSEC3) *[]byte { return &r.TypeBitmap }),
}

// IPSECKEY gateway type codes.
const (
	IPSECGatewayNone = 0
	IPSECGatewayIPv4 = 1
	IPSECGatewayIPv6 = 2
	IPSECGatewayName = 3
)

var errBadGateway = errors.New("gateway does not match the gateway type")

// IPSECKEY publishes an IPsec gateway and public key. Which gateway
// field is on the wire depends on GatewayType, the other two stay
// absent.
type IPSECKEY struct {
	Precedence  uint8
	GatewayType uint8
	Algorithm   uint8
	GatewayAddr netip.Addr   // gateway types 1 and 2
	GatewayName *dnsmsg.Name // gateway type 3
	PublicKey   []byte
}

func (*IPSECKEY) Identity() dnsmsg.Ident {
	return dnsmsg.Ident{Type: dnsmsg.TypeIPSECKEY, Class: dnsmsg.ClassINET, Name: "IPSECKEY"}
}

var ipseckeyFields = []dnsmsg.Field[IPSECKEY]{
	dnsmsg.Uint8("precedence", func(r *IPSECKEY) *uint8 { return &r.Precedence }),
	dnsmsg.Uint8("gateway_type", func(r *IPSECKEY) *uint8 { return &r.GatewayType }),
	dnsmsg.Uint8("algorithm", func(r *IPSECKEY) *uint8 { return &r.Algorithm }),
	dnsmsg.When(func(r *IPSECKEY) bool { return r.GatewayType == IPSECGatewayIPv4 },
		dnsmsg.Value[IPSECKEY]("gateway_v4", dnsmsg.Fixed(4),
			func(r *IPSECKEY) ([]byte, error) {
				addr := r.GatewayAddr.Unmap()
				if !addr.Is4() {
					return nil, errBadGateway
				}
				b := addr.As4()
				return b[:], nil
			},
			func(r *IPSECKEY, b []byte) error {
				r.GatewayAddr = netip.AddrFrom4([4]byte(b))
				return nil
			},
		)),
	dnsmsg.When(func(r *IPSECKEY) bool { return r.GatewayType == IPSECGatewayIPv6 },
		dnsmsg.Value[IPSECKEY]("gateway_v6", dnsmsg.Fixed(16),
			func(r *IPSECKEY) ([]byte, error) {
				if !r.GatewayAddr.Is6() {
					return nil, errBadGateway
				}
				b := r.GatewayAddr.As16()
				return b[:], nil
			},
			func(r *IPSECKEY, b []byte) error {
				r.GatewayAddr = netip.AddrFrom16([16]byte(b))
				return nil
			},
		)),
	dnsmsg.When(func(r *IPSECKEY) bool { return r.GatewayType == IPSECGatewayName },
		dnsmsg.NameField("gateway_name", func(r *IPSECKEY) **dnsmsg.Name { return &r.GatewayName })),
	dnsmsg.Bytes("public_key", dnsmsg.Remaining(), func(r *IPSECKEY) *[]byte { return &r.PublicKey }),
}
