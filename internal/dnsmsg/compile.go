package dnsmsg

import (
	"bytes"
	"encoding/hex"
	"strconv"
	"strings"
)

// hashMul is the multiplier folding field hashes together. Odd, so the
// fold never collapses to zero.
const hashMul = 31

// routines are the compiled codec functions of one payload type. They
// are built once at registration and never change afterwards.
type routines[T any] struct {
	encode func(*Cursor, *T) error
	decode func(*Cursor, *T) error
	clone  func(dst, src *T)
	equal  func(a, b *T) bool
	hash   func(*T) uint32
	show   func(*T) string
}

type step[T any] struct {
	name string
	when func(*T) bool
	enc  func(*Cursor, *T) error
	dec  func(*Cursor, *T) error
	// fix deep-copies reference fields after the shallow struct copy of
	// clone. Nil for fields the shallow copy already handles.
	fix  func(dst *T)
	eq   func(a, b *T) bool
	hash func(h uint32, v *T) uint32
	text func(v *T) string
}

// compileSchema validates the field table of T and builds its routines.
// Any inconsistency in the table is a registration time error, nothing
// is deferred to per message work.
func compileSchema[T any](typeName string, fields []Field[T]) (*routines[T], error) {
	steps := make([]step[T], len(fields))
	byName := make(map[string]int, len(fields))

	for i, f := range fields {
		if f.name == "" {
			return nil, schemaErr(typeName, "", "field "+strconv.Itoa(i)+" has no name")
		}
		if _, dup := byName[f.name]; dup {
			return nil, schemaErr(typeName, f.name, "duplicate field name")
		}
		byName[f.name] = i

		s, err := compileField(typeName, f)
		if err != nil {
			return nil, err
		}
		steps[i] = s
	}

	// Wire sibling framed fields to their length carriers.
	carriers := make(map[int]int) // carrier index -> dependent index
	for j := range fields {
		f := fields[j]
		if f.frame.Mode != FrameSibling {
			continue
		}
		i, ok := byName[f.frame.Sibling]
		if !ok || i >= j {
			return nil, schemaErr(typeName, f.name, "length sibling "+strconv.Quote(f.frame.Sibling)+" must be declared earlier")
		}
		if _, taken := carriers[i]; taken {
			return nil, schemaErr(typeName, f.name, "length sibling "+strconv.Quote(f.frame.Sibling)+" already carries another field")
		}
		carriers[i] = j
		if err := wireSibling(typeName, steps, fields, i, j); err != nil {
			return nil, err
		}
	}

	rt := &routines[T]{}
	rt.encode = func(c *Cursor, v *T) error {
		for i := range steps {
			s := &steps[i]
			if s.when != nil && !s.when(v) {
				continue
			}
			if err := s.enc(c, v); err != nil {
				return newFieldErr(s.name, err)
			}
		}
		return nil
	}
	rt.decode = func(c *Cursor, v *T) error {
		for i := range steps {
			s := &steps[i]
			if s.when != nil && !s.when(v) {
				continue
			}
			if err := s.dec(c, v); err != nil {
				return newFieldErr(s.name, err)
			}
		}
		return nil
	}
	rt.clone = func(dst, src *T) {
		*dst = *src
		for i := range steps {
			if fix := steps[i].fix; fix != nil {
				fix(dst)
			}
		}
	}
	rt.equal = func(a, b *T) bool {
		for i := range steps {
			s := &steps[i]
			if s.when != nil {
				wa, wb := s.when(a), s.when(b)
				if wa != wb {
					return false
				}
				if !wa {
					continue
				}
			}
			if !s.eq(a, b) {
				return false
			}
		}
		return true
	}
	rt.hash = func(v *T) uint32 {
		h := uint32(1)
		for i := range steps {
			s := &steps[i]
			if s.when != nil && !s.when(v) {
				// Absent fields fold as an empty slot so equal values,
				// whose active sets match, keep hashing equally.
				h = h * hashMul
				continue
			}
			h = s.hash(h, v)
		}
		return h
	}
	rt.show = func(v *T) string {
		var parts []string
		for i := range steps {
			s := &steps[i]
			if s.when != nil && !s.when(v) {
				continue
			}
			parts = append(parts, s.text(v))
		}
		return strings.Join(parts, " ")
	}
	return rt, nil
}

func compileField[T any](typeName string, f Field[T]) (step[T], error) {
	s := step[T]{name: f.name, when: f.when}

	switch f.kind {
	case KindUint8:
		if f.u8 == nil {
			return s, schemaErr(typeName, f.name, "nil accessor")
		}
		if f.frame.Mode != FrameNone {
			return s, schemaErr(typeName, f.name, "integer fields take no framing")
		}
		acc := f.u8
		s.enc = func(c *Cursor, v *T) error { return c.WriteUint8(*acc(v)) }
		s.dec = func(c *Cursor, v *T) error {
			x, err := c.ReadUint8()
			if err != nil {
				return err
			}
			*acc(v) = x
			return nil
		}
		s.eq = func(a, b *T) bool { return *acc(a) == *acc(b) }
		s.hash = func(h uint32, v *T) uint32 { return h*hashMul + uint32(*acc(v)) }
		s.text = func(v *T) string { return strconv.FormatUint(uint64(*acc(v)), 10) }

	case KindUint16:
		if f.u16 == nil {
			return s, schemaErr(typeName, f.name, "nil accessor")
		}
		if f.frame.Mode != FrameNone {
			return s, schemaErr(typeName, f.name, "integer fields take no framing")
		}
		acc := f.u16
		s.enc = func(c *Cursor, v *T) error { return c.WriteUint16(*acc(v)) }
		s.dec = func(c *Cursor, v *T) error {
			x, err := c.ReadUint16()
			if err != nil {
				return err
			}
			*acc(v) = x
			return nil
		}
		s.eq = func(a, b *T) bool { return *acc(a) == *acc(b) }
		s.hash = func(h uint32, v *T) uint32 { return h*hashMul + uint32(*acc(v)) }
		s.text = func(v *T) string { return strconv.FormatUint(uint64(*acc(v)), 10) }

	case KindUint32:
		if f.u32 == nil {
			return s, schemaErr(typeName, f.name, "nil accessor")
		}
		if f.frame.Mode != FrameNone {
			return s, schemaErr(typeName, f.name, "integer fields take no framing")
		}
		acc := f.u32
		s.enc = func(c *Cursor, v *T) error { return c.WriteUint32(*acc(v)) }
		s.dec = func(c *Cursor, v *T) error {
			x, err := c.ReadUint32()
			if err != nil {
				return err
			}
			*acc(v) = x
			return nil
		}
		s.eq = func(a, b *T) bool { return *acc(a) == *acc(b) }
		s.hash = func(h uint32, v *T) uint32 { return h*hashMul + uint32(*acc(v)) }
		s.text = func(v *T) string { return strconv.FormatUint(uint64(*acc(v)), 10) }

	case KindBytes:
		if f.bytes == nil {
			return s, schemaErr(typeName, f.name, "nil accessor")
		}
		acc := f.bytes
		encW, decW, err := windowFns(typeName, f.name, f.frame, false)
		if err != nil {
			return s, err
		}
		if f.frame.Mode == FrameSibling {
			// enc/dec are filled in by wireSibling.
			s.enc, s.dec = nil, nil
		} else {
			s.enc = func(c *Cursor, v *T) error {
				b := *acc(v)
				if err := encW(c, len(b)); err != nil {
					return err
				}
				return c.WriteBytes(b)
			}
			s.dec = func(c *Cursor, v *T) error {
				n, err := decW(c)
				if err != nil {
					return err
				}
				view, err := c.ReadBytes(n)
				if err != nil {
					return err
				}
				*acc(v) = append([]byte(nil), view...)
				return nil
			}
		}
		s.fix = func(dst *T) { *acc(dst) = append([]byte(nil), *acc(dst)...) }
		s.eq = func(a, b *T) bool { return bytes.Equal(*acc(a), *acc(b)) }
		s.hash = func(h uint32, v *T) uint32 { return hashFold(h, *acc(v)) }
		s.text = func(v *T) string { return hex.EncodeToString(*acc(v)) }

	case KindText:
		if f.text == nil {
			return s, schemaErr(typeName, f.name, "nil accessor")
		}
		acc := f.text
		encW, decW, err := windowFns(typeName, f.name, f.frame, true)
		if err != nil {
			return s, err
		}
		if f.frame.Mode == FrameSibling {
			s.enc, s.dec = nil, nil
		} else {
			s.enc = func(c *Cursor, v *T) error {
				str := *acc(v)
				if err := encW(c, len(str)); err != nil {
					return err
				}
				return c.WriteString(str)
			}
			s.dec = func(c *Cursor, v *T) error {
				n, err := decW(c)
				if err != nil {
					return err
				}
				view, err := c.ReadBytes(n)
				if err != nil {
					return err
				}
				*acc(v) = string(view)
				return nil
			}
		}
		s.eq = func(a, b *T) bool { return *acc(a) == *acc(b) }
		s.hash = func(h uint32, v *T) uint32 { return hashFoldString(h, *acc(v)) }
		s.text = func(v *T) string { return strconv.Quote(*acc(v)) }

	case KindTextList:
		if f.list == nil {
			return s, schemaErr(typeName, f.name, "nil accessor")
		}
		if f.frame.Mode != FrameNone {
			return s, schemaErr(typeName, f.name, "text lists frame themselves")
		}
		acc := f.list
		s.enc = func(c *Cursor, v *T) error {
			if !c.InRData() {
				return errNoLengthCtx
			}
			for _, str := range *acc(v) {
				if len(str) > 0xFF {
					return errStringTooLong
				}
				if err := c.WriteUint8(uint8(len(str))); err != nil {
					return err
				}
				if err := c.WriteString(str); err != nil {
					return err
				}
			}
			return nil
		}
		s.dec = func(c *Cursor, v *T) error {
			rem, ok := c.RDataRemaining()
			if !ok {
				return errNoLengthCtx
			}
			var out []string
			for rem > 0 {
				l, err := c.ReadUint8()
				if err != nil {
					return err
				}
				view, err := c.ReadBytes(int(l))
				if err != nil {
					return err
				}
				out = append(out, string(view))
				rem, _ = c.RDataRemaining()
			}
			*acc(v) = out
			return nil
		}
		s.fix = func(dst *T) { *acc(dst) = append([]string(nil), *acc(dst)...) }
		s.eq = func(a, b *T) bool {
			la, lb := *acc(a), *acc(b)
			if len(la) != len(lb) {
				return false
			}
			for i := range la {
				if la[i] != lb[i] {
					return false
				}
			}
			return true
		}
		s.hash = func(h uint32, v *T) uint32 {
			for _, str := range *acc(v) {
				h = h*hashMul + uint32(len(str))
				h = hashFoldString(h, str)
			}
			return h
		}
		s.text = func(v *T) string {
			quoted := make([]string, 0, len(*acc(v)))
			for _, str := range *acc(v) {
				quoted = append(quoted, strconv.Quote(str))
			}
			return strings.Join(quoted, " ")
		}

	case KindName:
		if f.dname == nil {
			return s, schemaErr(typeName, f.name, "nil accessor")
		}
		if f.frame.Mode != FrameNone {
			return s, schemaErr(typeName, f.name, "name fields take no framing")
		}
		acc := f.dname
		s.enc = func(c *Cursor, v *T) error { return c.WriteName(*acc(v)) }
		s.dec = func(c *Cursor, v *T) error {
			n, err := c.ReadName()
			if err != nil {
				return err
			}
			*acc(v) = n
			return nil
		}
		s.eq = func(a, b *T) bool { return (*acc(a)).Equal(*acc(b)) }
		s.hash = func(h uint32, v *T) uint32 {
			n := *acc(v)
			if n == nil {
				return h * hashMul
			}
			return hashFoldString(h, n.str)
		}
		s.text = func(v *T) string { return (*acc(v)).String() }

	case KindValue:
		if f.getRaw == nil || f.setRaw == nil {
			return s, schemaErr(typeName, f.name, "nil converter")
		}
		get, set := f.getRaw, f.setRaw
		encW, decW, err := windowFns(typeName, f.name, f.frame, false)
		if err != nil {
			return s, err
		}
		if f.frame.Mode == FrameSibling {
			return s, schemaErr(typeName, f.name, "value fields cannot borrow a sibling length")
		}
		s.enc = func(c *Cursor, v *T) error {
			b, err := get(v)
			if err != nil {
				return err
			}
			if err := encW(c, len(b)); err != nil {
				return err
			}
			return c.WriteBytes(b)
		}
		s.dec = func(c *Cursor, v *T) error {
			n, err := decW(c)
			if err != nil {
				return err
			}
			view, err := c.ReadBytes(n)
			if err != nil {
				return err
			}
			return set(v, view)
		}
		s.eq = func(a, b *T) bool {
			ba, ea := get(a)
			bb, eb := get(b)
			if ea != nil || eb != nil {
				return false
			}
			return bytes.Equal(ba, bb)
		}
		s.hash = func(h uint32, v *T) uint32 {
			b, err := get(v)
			if err != nil {
				return h * hashMul
			}
			return hashFold(h, b)
		}
		s.text = func(v *T) string {
			b, err := get(v)
			if err != nil {
				return "?"
			}
			return hex.EncodeToString(b)
		}

	default:
		return s, schemaErr(typeName, f.name, "invalid kind")
	}
	return s, nil
}

// windowFns resolves a framing into its count writer and count reader.
// The writer validates the size and emits any prefix, the reader derives
// the size of the window to consume.
func windowFns(typeName, fieldName string, frame Framing, isText bool) (func(*Cursor, int) error, func(*Cursor) (int, error), error) {
	tooLong := errFieldTooLong
	if isText {
		tooLong = errStringTooLong
	}
	switch frame.Mode {
	case FrameFixed:
		size := frame.Size
		if size <= 0 || size > 0xFFFF {
			return nil, nil, schemaErr(typeName, fieldName, "fixed size out of range: "+strconv.Itoa(size))
		}
		return func(c *Cursor, n int) error {
				if n != size {
					return errFixedSize
				}
				return nil
			}, func(c *Cursor) (int, error) {
				return size, nil
			}, nil
	case FrameRemaining:
		return func(c *Cursor, n int) error {
				if !c.InRData() {
					return errNoLengthCtx
				}
				return nil
			}, func(c *Cursor) (int, error) {
				rem, ok := c.RDataRemaining()
				if !ok {
					return 0, errNoLengthCtx
				}
				return rem, nil
			}, nil
	case FramePrefix8:
		return func(c *Cursor, n int) error {
				if n > 0xFF {
					return tooLong
				}
				return c.WriteUint8(uint8(n))
			}, func(c *Cursor) (int, error) {
				l, err := c.ReadUint8()
				return int(l), err
			}, nil
	case FramePrefix16:
		return func(c *Cursor, n int) error {
				if n > 0xFFFF {
					return tooLong
				}
				return c.WriteUint16(uint16(n))
			}, func(c *Cursor) (int, error) {
				l, err := c.ReadUint16()
				return int(l), err
			}, nil
	case FramePrefixBits8:
		return func(c *Cursor, n int) error {
				if n*8 > 0xFF {
					return tooLong
				}
				return c.WriteUint8(uint8(n * 8))
			}, func(c *Cursor) (int, error) {
				b, err := c.ReadUint8()
				if err != nil {
					return 0, err
				}
				if b%8 != 0 {
					return 0, errBitCount
				}
				return int(b / 8), nil
			}, nil
	case FrameSibling:
		// Resolved by wireSibling once the whole table is known.
		return nil, nil, nil
	default:
		return nil, nil, schemaErr(typeName, fieldName, frame.Mode.String()+" framing is not applicable here")
	}
}

// wireSibling fills in the enc/dec of the sibling framed field at dep and
// rewires the integer carrier at car to emit the computed count.
func wireSibling[T any](typeName string, steps []step[T], fields []Field[T], car, dep int) error {
	df := fields[dep]
	cf := fields[car]

	var depLen func(*T) int
	var write func(*Cursor, *T) error
	var count func(*T) int

	switch df.kind {
	case KindBytes:
		acc := df.bytes
		depLen = func(v *T) int { return len(*acc(v)) }
		write = func(c *Cursor, v *T) error { return c.WriteBytes(*acc(v)) }
	case KindText:
		acc := df.text
		depLen = func(v *T) int { return len(*acc(v)) }
		write = func(c *Cursor, v *T) error { return c.WriteString(*acc(v)) }
	default:
		return schemaErr(typeName, df.name, "kind "+df.kind.String()+" cannot borrow a sibling length")
	}
	if when := df.when; when != nil {
		full := depLen
		depLen = func(v *T) int {
			if !when(v) {
				return 0
			}
			return full(v)
		}
	}

	switch cf.kind {
	case KindUint8:
		acc := cf.u8
		steps[car].enc = func(c *Cursor, v *T) error {
			n := depLen(v)
			if n > 0xFF {
				return errFieldTooLong
			}
			*acc(v) = uint8(n)
			return c.WriteUint8(uint8(n))
		}
		count = func(v *T) int { return int(*acc(v)) }
	case KindUint16:
		acc := cf.u16
		steps[car].enc = func(c *Cursor, v *T) error {
			n := depLen(v)
			if n > 0xFFFF {
				return errFieldTooLong
			}
			*acc(v) = uint16(n)
			return c.WriteUint16(uint16(n))
		}
		count = func(v *T) int { return int(*acc(v)) }
	case KindUint32:
		acc := cf.u32
		steps[car].enc = func(c *Cursor, v *T) error {
			n := depLen(v)
			*acc(v) = uint32(n)
			return c.WriteUint32(uint32(n))
		}
		count = func(v *T) int { return int(*acc(v)) }
	default:
		return schemaErr(typeName, df.name, "length sibling must be an integer field")
	}

	switch df.kind {
	case KindBytes:
		acc := df.bytes
		steps[dep].enc = write
		steps[dep].dec = func(c *Cursor, v *T) error {
			view, err := c.ReadBytes(count(v))
			if err != nil {
				return err
			}
			*acc(v) = append([]byte(nil), view...)
			return nil
		}
	case KindText:
		acc := df.text
		steps[dep].enc = write
		steps[dep].dec = func(c *Cursor, v *T) error {
			view, err := c.ReadBytes(count(v))
			if err != nil {
				return err
			}
			*acc(v) = string(view)
			return nil
		}
	}
	return nil
}

func hashFold(h uint32, b []byte) uint32 {
	for _, x := range b {
		h = h*hashMul + uint32(x)
	}
	return h
}

func hashFoldString(h uint32, s string) uint32 {
	for i := 0; i < len(s); i++ {
		h = h*hashMul + uint32(s[i])
	}
	return h
}
