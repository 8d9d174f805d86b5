package dnsmsg

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEqualQuestion(t *testing.T) {
	r := require.New(t)

	q := func(name, typ string) *Question {
		return &Question{Name: MustParseName(name), Type: typ, Class: ClassINET}
	}

	r.True(EqualQuestion(q("a.com", "A"), q("a.com", "A")))
	r.False(EqualQuestion(q("a.com", "A"), q("b.com", "A")))
	r.False(EqualQuestion(q("a.com", "A"), q("a.com", "MX")))
	// Octets are compared exactly, case is preserved.
	r.False(EqualQuestion(q("A.com", "A"), q("a.com", "A")))

	other := q("a.com", "A")
	other.Class = ClassCHAOS
	r.False(EqualQuestion(q("a.com", "A"), other))

	r.True(EqualQuestion(nil, nil))
	r.False(EqualQuestion(q("a.com", "A"), nil))
	r.False(EqualQuestion(nil, q("a.com", "A")))
}

func TestEqualRecord(t *testing.T) {
	r := require.New(t)
	c := testCodec()

	mk := func() *Resource {
		return NewResource(MustParseName("a.com"), 60, &testA{Addr: []byte{1, 2, 3, 4}})
	}

	r.True(c.EqualRecord(mk(), mk()))
	r.Equal(c.HashRecord(mk()), c.HashRecord(mk()))

	ttl := mk()
	ttl.TTL = 61
	r.False(c.EqualRecord(mk(), ttl))

	owner := mk()
	owner.Name = MustParseName("b.com")
	r.False(c.EqualRecord(mk(), owner))

	data := mk()
	data.SetData(&testA{Addr: []byte{1, 2, 3, 5}})
	r.False(c.EqualRecord(mk(), data))

	kind := mk()
	kind.SetData(&testNULL{Data: []byte{1, 2, 3, 4}})
	r.False(c.EqualRecord(mk(), kind))

	r.True(c.EqualRecord(nil, nil))
	r.False(c.EqualRecord(mk(), nil))

	root := NewResource(nil, 0, &testNULL{})
	r.True(c.EqualRecord(root, NewResource(nil, 0, &testNULL{})))
}

func TestCloneRecord(t *testing.T) {
	r := require.New(t)
	c := testCodec()

	src := NewResource(MustParseName("a.com"), 60, &testTXT{Text: []string{"x"}})
	cp, err := c.CloneRecord(src)
	r.NoError(err)
	r.True(c.EqualRecord(src, cp))
	r.False(src.Data() == cp.Data())

	src.Data().(*testTXT).Text[0] = "mutated"
	r.Equal("x", cp.Data().(*testTXT).Text[0])

	cp, err = c.CloneRecord(nil)
	r.NoError(err)
	r.Nil(cp)

	_, err = c.CloneRecord(NewResource(nil, 0, &testGhost{}))
	r.ErrorIs(err, ErrUnknownType)
}

func TestEqualMsg(t *testing.T) {
	r := require.New(t)
	c := testCodec()

	mk := func() *Msg {
		m := &Msg{Header: Header{ID: 9}}
		m.SetResponse(true)
		m.Questions = []*Question{
			{Name: MustParseName("a.com"), Type: "A", Class: ClassINET},
		}
		m.Answers = []*Resource{
			NewResource(MustParseName("a.com"), 60, &testA{Addr: []byte{1, 2, 3, 4}}),
			NewResource(MustParseName("a.com"), 60, &testNULL{Data: []byte{7}}),
		}
		return m
	}

	r.True(c.EqualMsg(mk(), mk()))
	r.Equal(c.HashMsg(mk()), c.HashMsg(mk()))
	r.True(c.EqualMsg(nil, nil))
	r.False(c.EqualMsg(mk(), nil))

	flags := mk()
	flags.SetTruncated(true)
	r.False(c.EqualMsg(mk(), flags))

	// Record order matters.
	swapped := mk()
	swapped.Answers[0], swapped.Answers[1] = swapped.Answers[1], swapped.Answers[0]
	r.False(c.EqualMsg(mk(), swapped))

	extra := mk()
	extra.Additionals = append(extra.Additionals, NewResource(nil, 0, &testNULL{}))
	r.False(c.EqualMsg(mk(), extra))
}

func TestCloneMsg(t *testing.T) {
	r := require.New(t)
	c := testCodec()

	src := &Msg{Header: Header{ID: 3}}
	src.Questions = []*Question{
		{Name: MustParseName("a.com"), Type: "A", Class: ClassINET},
	}
	src.Answers = []*Resource{
		NewResource(MustParseName("a.com"), 60, &testNULL{Data: []byte{1}}),
	}

	cp, err := c.CloneMsg(src)
	r.NoError(err)
	r.True(c.EqualMsg(src, cp))

	// The copy shares nothing mutable.
	src.Questions[0].Type = "MX"
	src.Answers[0].Data().(*testNULL).Data[0] = 9
	src.Answers[0].TTL = 1
	r.Equal("A", cp.Questions[0].Type)
	r.Equal([]byte{1}, cp.Answers[0].Data().(*testNULL).Data)
	r.Equal(uint32(60), cp.Answers[0].TTL)

	cp, err = c.CloneMsg(nil)
	r.NoError(err)
	r.Nil(cp)
}
