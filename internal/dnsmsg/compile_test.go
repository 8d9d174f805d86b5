package dnsmsg

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

// blob exercises every framing in one payload.
type blob struct {
	Tag    uint8
	Key    []byte
	Note   string
	Bits   []byte
	Pair   []byte
	SigLen uint8
	Sig    []byte
	Rest   []byte
}

var blobFields = []Field[blob]{
	Uint8("tag", func(v *blob) *uint8 { return &v.Tag }),
	Bytes("key", Prefix8(), func(v *blob) *[]byte { return &v.Key }),
	Text("note", Prefix16(), func(v *blob) *string { return &v.Note }),
	Bytes("bits", PrefixBits8(), func(v *blob) *[]byte { return &v.Bits }),
	Bytes("pair", Fixed(2), func(v *blob) *[]byte { return &v.Pair }),
	Uint8("sig_len", func(v *blob) *uint8 { return &v.SigLen }),
	Bytes("sig", Sibling("sig_len"), func(v *blob) *[]byte { return &v.Sig }),
	Bytes("rest", Remaining(), func(v *blob) *[]byte { return &v.Rest }),
}

func compileBlob(t *testing.T) *routines[blob] {
	rt, err := compileSchema[blob]("BLOB", blobFields)
	require.NoError(t, err)
	return rt
}

func TestCompileRoundTrip(t *testing.T) {
	r := require.New(t)
	rt := compileBlob(t)

	src := blob{
		Tag:  7,
		Key:  []byte{1, 2, 3},
		Note: "hi",
		Bits: []byte{0xAA, 0xBB},
		Pair: []byte{9, 9},
		// SigLen is stale on purpose, encode back-fills it.
		SigLen: 99,
		Sig:    []byte{4, 5, 6, 7},
		Rest:   []byte("tail"),
	}

	w := newWriteCursor(make([]byte, 64))
	r.NoError(w.BeginRData())
	r.NoError(rt.encode(w, &src))
	n := w.EndRData()
	r.Equal(1+(1+3)+(2+2)+(1+2)+2+1+4+4, n)
	r.EqualValues(4, src.SigLen)

	c := newReadCursor(w.Bytes())
	r.NoError(c.OpenRData(n))
	var got blob
	r.NoError(rt.decode(c, &got))
	r.NoError(c.CloseRData())
	r.Equal(src, got)

	r.True(rt.equal(&src, &got))
	r.Equal(rt.hash(&src), rt.hash(&got))
}

func TestCompileClone(t *testing.T) {
	r := require.New(t)
	rt := compileBlob(t)

	src := blob{Key: []byte{1, 2}, Note: "x", Pair: []byte{0, 0}, Rest: []byte{3}}
	var cp blob
	rt.clone(&cp, &src)
	r.Equal(src, cp)

	// The copy owns its reference fields.
	src.Key[0] = 0xFF
	src.Rest[0] = 0xFF
	r.Equal([]byte{1, 2}, cp.Key)
	r.Equal([]byte{3}, cp.Rest)
}

func TestCompileEqual(t *testing.T) {
	r := require.New(t)
	rt := compileBlob(t)

	a := blob{Key: []byte{1}, Note: "n", Sig: []byte{2}}
	b := blob{Key: []byte{1}, Note: "n", Sig: []byte{2}}
	r.True(rt.equal(&a, &b))

	b.Sig[0] = 3
	r.False(rt.equal(&a, &b))
}

func TestConditionalFields(t *testing.T) {
	r := require.New(t)

	type gw struct {
		Mode uint8
		V4   []byte
		Tail []byte
	}
	fields := []Field[gw]{
		Uint8("mode", func(v *gw) *uint8 { return &v.Mode }),
		When(func(v *gw) bool { return v.Mode == 1 },
			Bytes("v4", Fixed(4), func(v *gw) *[]byte { return &v.V4 })),
		Bytes("tail", Remaining(), func(v *gw) *[]byte { return &v.Tail }),
	}
	rt, err := compileSchema[gw]("GW", fields)
	r.NoError(err)

	testFn := func(src gw, wireLen int) {
		w := newWriteCursor(make([]byte, 32))
		r.NoError(w.BeginRData())
		r.NoError(rt.encode(w, &src))
		n := w.EndRData()
		r.Equal(wireLen, n)

		c := newReadCursor(w.Bytes())
		r.NoError(c.OpenRData(n))
		var got gw
		r.NoError(rt.decode(c, &got))
		r.NoError(c.CloseRData())
		r.Equal(src, got)
	}

	testFn(gw{Mode: 1, V4: []byte{10, 0, 0, 1}, Tail: []byte{7, 7}}, 7)
	// Guarded field absent from the wire.
	testFn(gw{Mode: 0, Tail: []byte{7, 7}}, 3)

	// Equality and hashing follow the active field set. Stale values
	// behind a false guard never separate two records.
	a := gw{Mode: 0, V4: []byte{1, 2, 3, 4}, Tail: []byte{7}}
	b := gw{Mode: 0, Tail: []byte{7}}
	r.True(rt.equal(&a, &b))
	r.Equal(rt.hash(&a), rt.hash(&b))

	a.Mode, b.Mode = 1, 1
	b.V4 = []byte{1, 2, 3, 4}
	r.True(rt.equal(&a, &b))
	b.V4 = []byte{9, 9, 9, 9}
	r.False(rt.equal(&a, &b))
}

func TestSiblingConditional(t *testing.T) {
	r := require.New(t)

	// A guarded dependent contributes zero to its carrier when absent.
	type opt struct {
		Has  uint8
		DLen uint8
		Data []byte
	}
	fields := []Field[opt]{
		Uint8("has", func(v *opt) *uint8 { return &v.Has }),
		Uint8("dlen", func(v *opt) *uint8 { return &v.DLen }),
		When(func(v *opt) bool { return v.Has == 1 },
			Bytes("data", Sibling("dlen"), func(v *opt) *[]byte { return &v.Data })),
	}
	rt, err := compileSchema[opt]("OPT", fields)
	r.NoError(err)

	src := opt{Has: 0, DLen: 42, Data: []byte{1, 2, 3}}
	w := newWriteCursor(make([]byte, 16))
	r.NoError(rt.encode(w, &src))
	r.Equal(2, w.Pos())
	r.EqualValues(0, src.DLen)
}

func TestFramingFaults(t *testing.T) {
	rt := compileBlob(t)

	encErr := func(t *testing.T, src blob) error {
		w := newWriteCursor(make([]byte, 1024))
		require.NoError(t, w.BeginRData())
		return rt.encode(w, &src)
	}
	base := blob{Pair: []byte{0, 0}}

	t.Run("prefix8 overflow", func(t *testing.T) {
		r := require.New(t)
		src := base
		src.Key = make([]byte, 256)
		err := encErr(t, src)
		r.ErrorIs(err, errFieldTooLong)
		fe := new(FieldError)
		r.ErrorAs(err, &fe)
		r.Equal("key", fe.Field)
	})

	t.Run("prefix8 text overflow", func(t *testing.T) {
		r := require.New(t)

		type big struct{ S string }
		fields := []Field[big]{
			Text("s", Prefix8(), func(v *big) *string { return &v.S }),
		}
		brt, err := compileSchema[big]("BIG", fields)
		r.NoError(err)

		w := newWriteCursor(make([]byte, 1024))
		err = brt.encode(w, &big{S: string(make([]byte, 256))})
		r.ErrorIs(err, errStringTooLong)
	})

	t.Run("fixed mismatch", func(t *testing.T) {
		r := require.New(t)
		src := base
		src.Pair = []byte{1, 2, 3}
		r.ErrorIs(encErr(t, src), errFixedSize)
	})

	t.Run("bits overflow", func(t *testing.T) {
		r := require.New(t)
		src := base
		src.Bits = make([]byte, 32)
		r.ErrorIs(encErr(t, src), errFieldTooLong)
	})

	t.Run("sibling u8 overflow", func(t *testing.T) {
		r := require.New(t)
		src := base
		src.Sig = make([]byte, 256)
		r.ErrorIs(encErr(t, src), errFieldTooLong)
	})

	t.Run("remaining needs context", func(t *testing.T) {
		r := require.New(t)
		w := newWriteCursor(make([]byte, 64))
		src := base
		r.ErrorIs(rt.encode(w, &src), errNoLengthCtx)
	})

	t.Run("odd bit count", func(t *testing.T) {
		r := require.New(t)

		type bits struct{ B []byte }
		fields := []Field[bits]{
			Bytes("b", PrefixBits8(), func(v *bits) *[]byte { return &v.B }),
		}
		brt, err := compileSchema[bits]("BITS", fields)
		r.NoError(err)

		c := newReadCursor([]byte{3, 0xAA})
		var got bits
		r.ErrorIs(brt.decode(c, &got), errBitCount)
	})
}

func TestSchemaFaults(t *testing.T) {
	type pair struct {
		N uint8
		A []byte
		B string
	}
	nAcc := func(v *pair) *uint8 { return &v.N }
	aAcc := func(v *pair) *[]byte { return &v.A }
	bAcc := func(v *pair) *string { return &v.B }

	testFn := func(name, msgPart string, fields []Field[pair]) {
		t.Run(name, func(t *testing.T) {
			r := require.New(t)
			_, err := compileSchema[pair]("PAIR", fields)
			se := new(SchemaError)
			r.ErrorAs(err, &se)
			r.Contains(se.Error(), msgPart)
		})
	}

	testFn("empty name", "has no name", []Field[pair]{
		Uint8("", nAcc),
	})
	testFn("duplicate name", "duplicate", []Field[pair]{
		Uint8("n", nAcc),
		Bytes("n", Prefix8(), aAcc),
	})
	testFn("nil accessor", "nil accessor", []Field[pair]{
		Uint8[pair]("n", nil),
	})
	testFn("bytes without framing", "not applicable", []Field[pair]{
		Bytes("a", Framing{}, aAcc),
	})
	testFn("fixed zero", "fixed size out of range", []Field[pair]{
		Bytes("a", Fixed(0), aAcc),
	})
	testFn("fixed oversize", "fixed size out of range", []Field[pair]{
		Bytes("a", Fixed(0x10000), aAcc),
	})
	testFn("sibling declared later", "must be declared earlier", []Field[pair]{
		Bytes("a", Sibling("n"), aAcc),
		Uint8("n", nAcc),
	})
	testFn("sibling missing", "must be declared earlier", []Field[pair]{
		Uint8("n", nAcc),
		Bytes("a", Sibling("ghost"), aAcc),
	})
	testFn("carrier taken twice", "already carries", []Field[pair]{
		Uint8("n", nAcc),
		Bytes("a", Sibling("n"), aAcc),
		Text("b", Sibling("n"), bAcc),
	})
	testFn("carrier not integer", "must be an integer", []Field[pair]{
		Text("b", Prefix8(), bAcc),
		Bytes("a", Sibling("b"), aAcc),
	})
	testFn("value borrows sibling", "cannot borrow", []Field[pair]{
		Uint8("n", nAcc),
		Value("a", Sibling("n"),
			func(v *pair) ([]byte, error) { return v.A, nil },
			func(v *pair, b []byte) error { v.A = append([]byte(nil), b...); return nil }),
	})
}

func TestCompiledShow(t *testing.T) {
	r := require.New(t)

	type rec struct {
		N uint16
		S string
		B []byte
		D *Name
		L []string
	}
	fields := []Field[rec]{
		Uint16("n", func(v *rec) *uint16 { return &v.N }),
		Text("s", Prefix8(), func(v *rec) *string { return &v.S }),
		Bytes("b", Prefix8(), func(v *rec) *[]byte { return &v.B }),
		NameField("d", func(v *rec) **Name { return &v.D }),
		TextList("l", func(v *rec) *[]string { return &v.L }),
	}
	rt, err := compileSchema[rec]("REC", fields)
	r.NoError(err)

	v := rec{
		N: 300,
		S: "hi",
		B: []byte{0xAB, 0xCD},
		D: MustParseName("example.com"),
		L: []string{"a", "b"},
	}
	r.Equal(`300 "hi" abcd example.com. "a" "b"`, rt.show(&v))
}

func TestValueField(t *testing.T) {
	r := require.New(t)

	type port struct{ P uint16 }
	fields := []Field[port]{
		Value("p", Fixed(2),
			func(v *port) ([]byte, error) {
				return []byte{byte(v.P >> 8), byte(v.P)}, nil
			},
			func(v *port, b []byte) error {
				v.P = uint16(b[0])<<8 | uint16(b[1])
				return nil
			}),
	}
	rt, err := compileSchema[port]("PORT", fields)
	r.NoError(err)

	src := port{P: 0x1234}
	w := newWriteCursor(make([]byte, 8))
	r.NoError(rt.encode(w, &src))
	r.Equal([]byte{0x12, 0x34}, w.Bytes())

	var got port
	c := newReadCursor(w.Bytes())
	r.NoError(rt.decode(c, &got))
	r.Equal(src, got)

	r.True(rt.equal(&src, &got))
	r.Equal(rt.hash(&src), rt.hash(&got))

	// A converter fault surfaces as a field error.
	bad := []Field[port]{
		Value("p", Fixed(2),
			func(v *port) ([]byte, error) { return nil, errors.New("boom") },
			func(v *port, b []byte) error { return nil }),
	}
	brt, err := compileSchema[port]("PORT", bad)
	r.NoError(err)
	err = brt.encode(newWriteCursor(make([]byte, 8)), &src)
	fe := new(FieldError)
	r.ErrorAs(err, &fe)
	r.Equal("p", fe.Field)
}
