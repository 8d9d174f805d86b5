package dnsmsg

import "encoding/binary"

// maxPtrOff is the largest buffer offset a 14 bit compression pointer can
// address.
const maxPtrOff = 0x3FFF

// Cursor is a positioned window over one message buffer. It carries the
// compression bookkeeping for the whole message, so exactly one cursor is
// used per encode or decode pass.
//
// A cursor is not safe for concurrent use.
type Cursor struct {
	data []byte
	pos  int

	// nameOff maps a name suffix (presentation form) to the buffer offset
	// where its labels were emitted. Write side only.
	nameOff map[string]uint16
	// offName maps a buffer offset to the name suffix parsed there, so a
	// pointer target is decoded once. Read side only.
	offName map[int]*Name

	// The active record length context, at most one at a time.
	rdataOn    bool
	rdataStart int // write side, pos when the record was opened
	rdataLimit int // read side, absolute end of the record
}

func newWriteCursor(buf []byte) *Cursor {
	return &Cursor{data: buf}
}

func newReadCursor(msg []byte) *Cursor {
	return &Cursor{data: msg}
}

func (c *Cursor) reset() {
	c.data = nil
	c.pos = 0
	c.rdataOn = false
	c.rdataStart = 0
	c.rdataLimit = 0
	clear(c.nameOff)
	clear(c.offName)
}

// Pos returns the current offset from the start of the message.
func (c *Cursor) Pos() int {
	return c.pos
}

// Bytes returns the written window. Only meaningful on the write side.
func (c *Cursor) Bytes() []byte {
	return c.data[:c.pos]
}

func (c *Cursor) writable(n int) error {
	if c.pos+n > len(c.data) {
		return ErrSmallBuffer
	}
	return nil
}

func (c *Cursor) readable(n int) error {
	if c.pos+n > len(c.data) {
		return ErrSmallBuffer
	}
	if c.rdataOn && c.pos+n > c.rdataLimit {
		return errRDataOverrun
	}
	return nil
}

func (c *Cursor) WriteUint8(v uint8) error {
	if err := c.writable(1); err != nil {
		return err
	}
	c.data[c.pos] = v
	c.pos++
	return nil
}

func (c *Cursor) WriteUint16(v uint16) error {
	if err := c.writable(2); err != nil {
		return err
	}
	binary.BigEndian.PutUint16(c.data[c.pos:], v)
	c.pos += 2
	return nil
}

func (c *Cursor) WriteUint32(v uint32) error {
	if err := c.writable(4); err != nil {
		return err
	}
	binary.BigEndian.PutUint32(c.data[c.pos:], v)
	c.pos += 4
	return nil
}

func (c *Cursor) WriteBytes(p []byte) error {
	if err := c.writable(len(p)); err != nil {
		return err
	}
	c.pos += copy(c.data[c.pos:], p)
	return nil
}

func (c *Cursor) WriteString(s string) error {
	if err := c.writable(len(s)); err != nil {
		return err
	}
	c.pos += copy(c.data[c.pos:], s)
	return nil
}

// WriteName emits n, reusing an earlier occurrence of any suffix of n as
// a compression pointer. Every suffix emitted in full is recorded before
// its parent is written, so the longest match always wins.
func (c *Cursor) WriteName(n *Name) error {
	for cur := n; cur != nil; cur = cur.parent {
		if off, ok := c.nameOff[cur.str]; ok {
			return c.WriteUint16(0xC000 | off)
		}
		if c.pos <= maxPtrOff {
			if c.nameOff == nil {
				c.nameOff = make(map[string]uint16)
			}
			c.nameOff[cur.str] = uint16(c.pos)
		}
		if err := c.WriteUint8(uint8(len(cur.label))); err != nil {
			return err
		}
		if err := c.WriteString(cur.label); err != nil {
			return err
		}
	}
	return c.WriteUint8(0)
}

// Patch is a handle to a reserved 16 bit slot. The offset is absolute,
// so later writes do not disturb it.
type Patch struct {
	c   *Cursor
	off int
}

// Reserve16 writes a zero placeholder and returns a handle for patching
// its final value in place.
func (c *Cursor) Reserve16() (Patch, error) {
	off := c.pos
	if err := c.WriteUint16(0); err != nil {
		return Patch{}, err
	}
	return Patch{c: c, off: off}, nil
}

// Set patches the reserved slot. The cursor position is not touched.
func (p Patch) Set(v uint16) {
	binary.BigEndian.PutUint16(p.c.data[p.off:], v)
}

// BeginRData opens the write side record length context.
func (c *Cursor) BeginRData() error {
	if c.rdataOn {
		return errNestedLengthCtx
	}
	c.rdataOn = true
	c.rdataStart = c.pos
	return nil
}

// EndRData closes the context and returns the number of bytes the record
// body produced.
func (c *Cursor) EndRData() int {
	c.rdataOn = false
	return c.pos - c.rdataStart
}

// OpenRData opens the read side record length context spanning the next
// n bytes.
func (c *Cursor) OpenRData(n int) error {
	if c.rdataOn {
		return errNestedLengthCtx
	}
	if n < 0 || c.pos+n > len(c.data) {
		return ErrSmallBuffer
	}
	c.rdataOn = true
	c.rdataLimit = c.pos + n
	return nil
}

// CloseRData closes the context. The record must have been consumed
// exactly.
func (c *Cursor) CloseRData() error {
	if !c.rdataOn {
		return errNoLengthCtx
	}
	c.rdataOn = false
	if c.pos != c.rdataLimit {
		return errRDataLeftover
	}
	return nil
}

// discardRData closes the context and skips whatever the record still
// held. Used to step over a broken record body.
func (c *Cursor) discardRData() {
	c.rdataOn = false
	c.pos = c.rdataLimit
}

// InRData reports whether a record length context is active.
func (c *Cursor) InRData() bool {
	return c.rdataOn
}

// RDataRemaining returns the unconsumed byte count of the open record.
func (c *Cursor) RDataRemaining() (int, bool) {
	if !c.rdataOn {
		return 0, false
	}
	return c.rdataLimit - c.pos, true
}

func (c *Cursor) ReadUint8() (uint8, error) {
	if err := c.readable(1); err != nil {
		return 0, err
	}
	v := c.data[c.pos]
	c.pos++
	return v, nil
}

func (c *Cursor) ReadUint16() (uint16, error) {
	if err := c.readable(2); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint16(c.data[c.pos:])
	c.pos += 2
	return v, nil
}

func (c *Cursor) ReadUint32() (uint32, error) {
	if err := c.readable(4); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint32(c.data[c.pos:])
	c.pos += 4
	return v, nil
}

// ReadBytes returns a view into the message buffer. Callers keeping the
// bytes must copy them.
func (c *Cursor) ReadBytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, ErrSmallBuffer
	}
	if err := c.readable(n); err != nil {
		return nil, err
	}
	v := c.data[c.pos : c.pos+n]
	c.pos += n
	return v, nil
}

// ReadName parses a name at the current position. Compression pointers
// are followed without moving the position, only the bytes of the name
// itself count against the record budget.
func (c *Cursor) ReadName() (*Name, error) {
	n, next, err := c.readNameAt(c.pos)
	if err != nil {
		return nil, err
	}
	if c.rdataOn && next > c.rdataLimit {
		return nil, errRDataOverrun
	}
	c.pos = next
	return n, nil
}

// readNameAt parses the name starting at off without touching c.pos.
// A pointer must aim strictly before its own position. That rules out
// loops, keeps the walk bounded and lets every suffix be cached by the
// offset of its first label.
func (c *Cursor) readNameAt(off int) (*Name, int, error) {
	if off >= len(c.data) {
		return nil, 0, ErrSmallBuffer
	}
	b := c.data[off]
	switch b & 0xC0 {
	case 0x00:
		if b == 0 {
			return nil, off + 1, nil
		}
		end := off + 1 + int(b)
		if end > len(c.data) {
			return nil, 0, ErrSmallBuffer
		}
		parent, next, err := c.readNameAt(end)
		if err != nil {
			return nil, 0, err
		}
		n := parent.prepend(string(c.data[off+1 : end]))
		if n.wireLen() > maxNameWireLen {
			return nil, 0, errNameTooLong
		}
		if c.offName == nil {
			c.offName = make(map[int]*Name)
		}
		c.offName[off] = n
		return n, next, nil
	case 0xC0:
		if off+1 >= len(c.data) {
			return nil, 0, ErrSmallBuffer
		}
		target := int(b&0x3F)<<8 | int(c.data[off+1])
		if target >= off {
			return nil, 0, errInvalidPtr
		}
		n, ok := c.offName[target]
		if !ok {
			var err error
			n, _, err = c.readNameAt(target)
			if err != nil {
				return nil, 0, err
			}
		}
		return n, off + 2, nil
	default:
		// Prefixes 0x40 and 0x80 are reserved.
		return nil, 0, errReserved
	}
}
