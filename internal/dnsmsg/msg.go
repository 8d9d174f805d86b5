package dnsmsg

import "math/rand/v2"

const (
	headerBitQR = 1 << 15 // query/response (response=1)
	headerBitAA = 1 << 10 // authoritative
	headerBitTC = 1 << 9  // truncated
	headerBitRD = 1 << 8  // recursion desired
	headerBitRA = 1 << 7  // recursion available
	headerBitAD = 1 << 5  // authentic data
	headerBitCD = 1 << 4  // checking disabled
)

// headerLen is the fixed size of the message header.
const headerLen = 12

// Header is the message id plus the packed flag word. The flag word is
// kept packed, the accessors mask their bits in place. Section counts
// are not stored anywhere, they are derived from the section slices at
// encode time.
type Header struct {
	ID    uint16
	Flags uint16
}

func (h *Header) setBit(mask uint16, v bool) {
	if v {
		h.Flags |= mask
	} else {
		h.Flags &^= mask
	}
}

func (h *Header) Response() bool      { return h.Flags&headerBitQR != 0 }
func (h *Header) SetResponse(v bool)  { h.setBit(headerBitQR, v) }
func (h *Header) Authoritative() bool { return h.Flags&headerBitAA != 0 }
func (h *Header) SetAuthoritative(v bool) {
	h.setBit(headerBitAA, v)
}
func (h *Header) Truncated() bool            { return h.Flags&headerBitTC != 0 }
func (h *Header) SetTruncated(v bool)        { h.setBit(headerBitTC, v) }
func (h *Header) RecursionDesired() bool     { return h.Flags&headerBitRD != 0 }
func (h *Header) SetRecursionDesired(v bool) { h.setBit(headerBitRD, v) }
func (h *Header) RecursionAvailable() bool   { return h.Flags&headerBitRA != 0 }
func (h *Header) SetRecursionAvailable(v bool) {
	h.setBit(headerBitRA, v)
}
func (h *Header) AuthenticData() bool        { return h.Flags&headerBitAD != 0 }
func (h *Header) SetAuthenticData(v bool)    { h.setBit(headerBitAD, v) }
func (h *Header) CheckingDisabled() bool     { return h.Flags&headerBitCD != 0 }
func (h *Header) SetCheckingDisabled(v bool) { h.setBit(headerBitCD, v) }

func (h *Header) OpCode() OpCode { return OpCode(h.Flags>>11) & 0xF }
func (h *Header) SetOpCode(op OpCode) {
	h.Flags = h.Flags&^(0xF<<11) | uint16(op&0xF)<<11
}

func (h *Header) RCode() RCode { return RCode(h.Flags & 0xF) }
func (h *Header) SetRCode(rc RCode) {
	h.Flags = h.Flags&^0xF | uint16(rc&0xF)
}

// Question asks for a record type by its presentation name. The numeric
// code is resolved through the codec's registry on both passes.
type Question struct {
	Name  *Name
	Type  string
	Class Class
}

// Resource is one record of a message section. The numeric type and
// class always mirror the payload's identity, SetData keeps them in
// sync. Only class generic payloads (identity class 0, the OPT style
// pseudo records) leave the class octets free, see SetClass.
type Resource struct {
	Name *Name
	TTL  uint32

	typ   Type
	class Class
	data  Rdata
}

// NewResource builds a record owning d. The record's type and class
// follow d's identity.
func NewResource(name *Name, ttl uint32, d Rdata) *Resource {
	rr := &Resource{Name: name, TTL: ttl}
	rr.SetData(d)
	return rr
}

func (rr *Resource) Type() Type   { return rr.typ }
func (rr *Resource) Class() Class { return rr.class }
func (rr *Resource) Data() Rdata  { return rr.data }

// SetData replaces the payload and re-derives the record's type and
// class from its identity.
func (rr *Resource) SetData(d Rdata) {
	rr.data = d
	if d == nil {
		rr.typ, rr.class = 0, 0
		return
	}
	id := d.Identity()
	rr.typ = id.Type
	if id.Class != 0 {
		rr.class = id.Class
	}
}

// SetClass sets the class octets of a record whose payload is class
// generic. For any other payload the class is pinned by the identity
// and SetClass fails.
func (rr *Resource) SetClass(c Class) error {
	if rr.data != nil && rr.data.Identity().Class != 0 {
		return errClassPinned
	}
	rr.class = c
	return nil
}

// Msg is one DNS message. The section slices are the only record
// storage, their lengths become the header counts at encode time.
type Msg struct {
	Header
	Questions   []*Question
	Answers     []*Resource
	Authorities []*Resource
	Additionals []*Resource
}

// NewQuery builds a recursion desired query for one name and type with
// a random transaction id.
func NewQuery(name *Name, qtype string) *Msg {
	m := new(Msg)
	m.ID = uint16(rand.Uint32())
	m.SetRecursionDesired(true)
	m.Questions = append(m.Questions, &Question{
		Name:  name,
		Type:  qtype,
		Class: ClassINET,
	})
	return m
}

// NewReply builds an empty response to q, mirroring its id, opcode,
// recursion desired bit and questions.
func NewReply(q *Msg) *Msg {
	m := new(Msg)
	m.ID = q.ID
	m.SetResponse(true)
	m.SetOpCode(q.OpCode())
	m.SetRecursionDesired(q.RecursionDesired())
	for _, qq := range q.Questions {
		cp := *qq
		m.Questions = append(m.Questions, &cp)
	}
	return m
}

// PopEDNS0 removes and returns the OPT record from the additional
// section, nil if there is none. Section order is kept.
func PopEDNS0(m *Msg) *Resource {
	for i, rr := range m.Additionals {
		if rr.typ == TypeOPT {
			m.Additionals = append(m.Additionals[:i], m.Additionals[i+1:]...)
			return rr
		}
	}
	return nil
}

// RemoveEDNS0 drops the OPT record from the additional section.
func RemoveEDNS0(m *Msg) {
	PopEDNS0(m)
}
