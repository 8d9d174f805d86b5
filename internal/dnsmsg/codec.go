package dnsmsg

import (
	"fmt"

	"github.com/merlit/dnswire/internal/pool"
)

// DefaultCapacity is the classic DNS over UDP message budget.
const DefaultCapacity = 512

var cursorPool = pool.NewSyncPool[Cursor](nil, (*Cursor).reset)

// Codec encodes and decodes messages against one registry within one
// fixed buffer capacity. A codec is stateless apart from its pools and
// safe for concurrent use.
type Codec struct {
	reg      *Registry
	capacity int
}

// NewCodec builds a codec over reg. capacity <= 0 selects
// DefaultCapacity.
func NewCodec(reg *Registry, capacity int) *Codec {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Codec{reg: reg, capacity: capacity}
}

func (c *Codec) Registry() *Registry { return c.reg }
func (c *Codec) Capacity() int       { return c.capacity }

// Encode packs m into a pooled buffer trimmed to the written length.
// The caller owns the buffer and should hand it back with
// pool.ReleaseBuf. A message that does not fit the capacity is a fault,
// nothing truncated is ever returned.
func (c *Codec) Encode(m *Msg) (*pool.Buffer, error) {
	buf := pool.GetBuf(c.capacity)
	cur := cursorPool.Get()
	cur.data = buf.B

	err := c.encode(cur, m)
	if err != nil {
		cursorPool.Release(cur)
		pool.ReleaseBuf(buf)
		return nil, err
	}
	buf.B = buf.B[:cur.pos]
	cursorPool.Release(cur)
	return buf, nil
}

func (c *Codec) encode(cur *Cursor, m *Msg) error {
	if len(m.Questions) > 0xFFFF {
		return errTooManyQuestions
	}
	if len(m.Answers) > 0xFFFF {
		return errTooManyAnswers
	}
	if len(m.Authorities) > 0xFFFF {
		return errTooManyAuthorities
	}
	if len(m.Additionals) > 0xFFFF {
		return errTooManyAdditionals
	}

	for _, v := range [...]uint16{
		m.ID,
		m.Flags,
		uint16(len(m.Questions)),
		uint16(len(m.Answers)),
		uint16(len(m.Authorities)),
		uint16(len(m.Additionals)),
	} {
		if err := cur.WriteUint16(v); err != nil {
			return newRecordErr("header", 0, nil, err)
		}
	}

	for i, q := range m.Questions {
		if err := c.encodeQuestion(cur, q); err != nil {
			return newRecordErr("question", i, q.Name, err)
		}
	}
	for _, sec := range [...]struct {
		name string
		rrs  []*Resource
	}{
		{"answer", m.Answers},
		{"authority", m.Authorities},
		{"additional", m.Additionals},
	} {
		for i, rr := range sec.rrs {
			if err := c.encodeResource(cur, rr); err != nil {
				return newRecordErr(sec.name, i, rr.Name, err)
			}
		}
	}
	return nil
}

func (c *Codec) encodeQuestion(cur *Cursor, q *Question) error {
	code, ok := c.reg.TypeCode(q.Type)
	if !ok {
		return fmt.Errorf("%w %q", ErrUnknownType, q.Type)
	}
	if err := cur.WriteName(q.Name); err != nil {
		return err
	}
	if err := cur.WriteUint16(uint16(code)); err != nil {
		return err
	}
	return cur.WriteUint16(uint16(q.Class))
}

// encodeResource writes the record prelude with a reserved length slot,
// runs the payload encoder, then patches the slot with the byte count
// the payload produced.
func (c *Codec) encodeResource(cur *Cursor, rr *Resource) error {
	if rr.data == nil {
		return errNilRData
	}
	e, err := c.reg.entryOf(rr.data)
	if err != nil {
		return err
	}

	if err := cur.WriteName(rr.Name); err != nil {
		return err
	}
	if err := cur.WriteUint16(uint16(rr.typ)); err != nil {
		return err
	}
	if err := cur.WriteUint16(uint16(rr.class)); err != nil {
		return err
	}
	if err := cur.WriteUint32(rr.TTL); err != nil {
		return err
	}
	patch, err := cur.Reserve16()
	if err != nil {
		return err
	}
	if err := cur.BeginRData(); err != nil {
		return err
	}
	if err := e.enc(cur, rr.data); err != nil {
		return err
	}
	n := cur.EndRData()
	if n > 0xFFFF {
		return errResTooLong
	}
	patch.Set(uint16(n))
	return nil
}

// Decode unpacks msg. The first fault aborts with an error naming the
// record and field it hit.
func (c *Codec) Decode(msg []byte) (*Msg, error) {
	m, _, err := c.decode(msg, false)
	return m, err
}

// DecodePartial unpacks msg, stepping over records whose payloads are
// broken or unregistered and reporting them in the fault list. Only a
// fault that breaks the record structure itself, so that later records
// cannot be located, stops the pass early. The returned message holds
// everything decoded up to that point.
func (c *Codec) DecodePartial(msg []byte) (*Msg, []*RecordError, error) {
	return c.decode(msg, true)
}

func (c *Codec) decode(msg []byte, partial bool) (*Msg, []*RecordError, error) {
	if len(msg) > c.capacity {
		return nil, nil, ErrOversize
	}
	cur := cursorPool.Get()
	defer cursorPool.Release(cur)
	cur.data = msg

	var hdr [6]uint16
	for i := range hdr {
		v, err := cur.ReadUint16()
		if err != nil {
			return nil, nil, newRecordErr("header", 0, nil, err)
		}
		hdr[i] = v
	}
	m := &Msg{Header: Header{ID: hdr[0], Flags: hdr[1]}}
	var faults []*RecordError

	for i := 0; i < int(hdr[2]); i++ {
		q, err := c.decodeQuestion(cur)
		if err != nil {
			var name *Name
			if q != nil {
				name = q.Name
			}
			re := newRecordErr("question", i, name, err)
			// A question with an unresolvable type was still read
			// whole, later entries stay reachable.
			if partial && q != nil {
				faults = append(faults, re)
				continue
			}
			if partial {
				return m, append(faults, re), nil
			}
			return nil, nil, re
		}
		m.Questions = append(m.Questions, q)
	}

	for _, sec := range [...]struct {
		name  string
		count uint16
		dst   *[]*Resource
	}{
		{"answer", hdr[3], &m.Answers},
		{"authority", hdr[4], &m.Authorities},
		{"additional", hdr[5], &m.Additionals},
	} {
		for i := 0; i < int(sec.count); i++ {
			rr, rerr := c.decodeResource(cur)
			if rerr != nil {
				re := newRecordErr(sec.name, i, rerr.name, rerr.err)
				if partial && rerr.skippable {
					faults = append(faults, re)
					continue
				}
				if partial {
					return m, append(faults, re), nil
				}
				return nil, nil, re
			}
			*sec.dst = append(*sec.dst, rr)
		}
	}
	return m, faults, nil
}

// decodeQuestion returns a non nil question alongside the error when the
// question bytes were consumed cleanly and only the type lookup failed.
func (c *Codec) decodeQuestion(cur *Cursor) (*Question, error) {
	name, err := cur.ReadName()
	if err != nil {
		return nil, err
	}
	code, err := cur.ReadUint16()
	if err != nil {
		return nil, err
	}
	class, err := cur.ReadUint16()
	if err != nil {
		return nil, err
	}
	typeName, ok := c.reg.TypeName(Type(code))
	if !ok {
		return &Question{Name: name, Class: Class(class)}, fmt.Errorf("%w %d", ErrUnknownType, code)
	}
	return &Question{Name: name, Type: typeName, Class: Class(class)}, nil
}

// resourceErr distinguishes payload faults, which a partial decode can
// step over because the record boundary is known, from structural ones.
type resourceErr struct {
	name      *Name
	err       error
	skippable bool
}

func (c *Codec) decodeResource(cur *Cursor) (*Resource, *resourceErr) {
	name, err := cur.ReadName()
	if err != nil {
		return nil, &resourceErr{err: err}
	}
	typ, err := cur.ReadUint16()
	if err != nil {
		return nil, &resourceErr{name: name, err: err}
	}
	class, err := cur.ReadUint16()
	if err != nil {
		return nil, &resourceErr{name: name, err: err}
	}
	ttl, err := cur.ReadUint32()
	if err != nil {
		return nil, &resourceErr{name: name, err: err}
	}
	rdlen, err := cur.ReadUint16()
	if err != nil {
		return nil, &resourceErr{name: name, err: err}
	}
	if err := cur.OpenRData(int(rdlen)); err != nil {
		return nil, &resourceErr{name: name, err: err}
	}

	e, ok := c.reg.lookup(Type(typ), Class(class))
	if !ok {
		cur.discardRData()
		return nil, &resourceErr{
			name:      name,
			err:       fmt.Errorf("%w %d/%d", ErrUnknownType, typ, class),
			skippable: true,
		}
	}
	d := e.newFn()
	if err := e.dec(cur, d); err != nil {
		cur.discardRData()
		return nil, &resourceErr{name: name, err: err, skippable: true}
	}
	if rem, _ := cur.RDataRemaining(); rem > 0 {
		cur.discardRData()
		return nil, &resourceErr{name: name, err: errRDataLeftover, skippable: true}
	}
	if err := cur.CloseRData(); err != nil {
		return nil, &resourceErr{name: name, err: err}
	}

	rr := &Resource{
		Name:  name,
		TTL:   ttl,
		typ:   Type(typ),
		class: Class(class),
		data:  d,
	}
	return rr, nil
}
