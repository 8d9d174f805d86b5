package rrdata

import (
	"encoding/binary"

	"github.com/merlit/dnswire/internal/dnsmsg"
)

// NULL carries opaque bytes. Mostly seen in private experiments.
type NULL struct {
	Data []byte
}

func (*NULL) Identity() dnsmsg.Ident {
	return dnsmsg.Ident{Type: dnsmsg.TypeNULL, Class: dnsmsg.ClassINET, Name: "NULL"}
}

var nullFields = []dnsmsg.Field[NULL]{
	dnsmsg.Bytes("data", dnsmsg.Remaining(), func(r *NULL) *[]byte { return &r.Data }),
}

// OPT is the EDNS0 pseudo record. Its class octets carry the sender's
// UDP payload size and its ttl word carries the extended rcode, version
// and DO bit, so the shape registers class generic and leaves both to
// the record header. The options run is kept raw.
type OPT struct {
	Options []byte
}

func (*OPT) Identity() dnsmsg.Ident {
	return dnsmsg.Ident{Type: dnsmsg.TypeOPT, Name: "OPT"}
}

var optFields = []dnsmsg.Field[OPT]{
	dnsmsg.Bytes("options", dnsmsg.Remaining(), func(r *OPT) *[]byte { return &r.Options }),
}

// EDNSOption is one attribute value pair of an OPT payload.
type EDNSOption struct {
	Code uint16
	Data []byte
}

// AppendOption adds one option to the raw run.
func (r *OPT) AppendOption(code uint16, data []byte) {
	var hdr [4]byte
	binary.BigEndian.PutUint16(hdr[0:2], code)
	binary.BigEndian.PutUint16(hdr[2:4], uint16(len(data)))
	r.Options = append(r.Options, hdr[:]...)
	r.Options = append(r.Options, data...)
}

// ParsedOptions splits the raw option run. A truncated trailing option
// is reported through dnsmsg.ErrSmallBuffer.
func (r *OPT) ParsedOptions() ([]EDNSOption, error) {
	var out []EDNSOption
	b := r.Options
	for len(b) > 0 {
		if len(b) < 4 {
			return nil, dnsmsg.ErrSmallBuffer
		}
		code := binary.BigEndian.Uint16(b[0:2])
		l := int(binary.BigEndian.Uint16(b[2:4]))
		if len(b) < 4+l {
			return nil, dnsmsg.ErrSmallBuffer
		}
		out = append(out, EDNSOption{Code: code, Data: b[4 : 4+l]})
		b = b[4+l:]
	}
	return out, nil
}

// NewEDNS0 builds an OPT record announcing the given UDP payload size.
func NewEDNS0(udpSize uint16) *dnsmsg.Resource {
	rr := dnsmsg.NewResource(nil, 0, &OPT{})
	// OPT is class generic, SetClass cannot fail here.
	_ = rr.SetClass(dnsmsg.Class(udpSize))
	return rr
}

// EDNSUDPSize reads the UDP payload size an OPT record announces.
func EDNSUDPSize(rr *dnsmsg.Resource) uint16 {
	return uint16(rr.Class())
}

// EDNSExtRCode reads the upper rcode bits from the ttl word. Shift it
// left by four and or in the header rcode for the full code.
func EDNSExtRCode(rr *dnsmsg.Resource) uint8 {
	return uint8(rr.TTL >> 24)
}

// EDNSVersion reads the EDNS version from the ttl word.
func EDNSVersion(rr *dnsmsg.Resource) uint8 {
	return uint8(rr.TTL >> 16)
}

// EDNSDo reads the DNSSEC OK bit from the ttl word.
func EDNSDo(rr *dnsmsg.Resource) bool {
	return rr.TTL&(1<<15) != 0
}

// SetEDNSDo sets the DNSSEC OK bit in the ttl word.
func SetEDNSDo(rr *dnsmsg.Resource, v bool) {
	if v {
		rr.TTL |= 1 << 15
	} else {
		rr.TTL &^= 1 << 15
	}
}
