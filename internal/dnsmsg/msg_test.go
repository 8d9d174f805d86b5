package dnsmsg

import (
	"testing"

	"github.com/miekg/dns"
	"github.com/stretchr/testify/require"

	"github.com/merlit/dnswire/internal/pool"
)

func TestHeaderBits(t *testing.T) {
	r := require.New(t)
	c := testCodec()

	m := &Msg{Header: Header{ID: 0x0102}}
	m.SetResponse(true)
	m.SetAuthoritative(true)
	m.SetTruncated(true)
	m.SetRecursionDesired(true)
	m.SetRecursionAvailable(true)
	m.SetAuthenticData(true)
	m.SetCheckingDisabled(true)
	m.SetOpCode(OpCodeUpdate)
	m.SetRCode(RCodeRefused)

	r.True(m.Response())
	r.True(m.Authoritative())
	r.True(m.Truncated())
	r.True(m.RecursionDesired())
	r.True(m.RecursionAvailable())
	r.True(m.AuthenticData())
	r.True(m.CheckingDisabled())
	r.Equal(OpCodeUpdate, m.OpCode())
	r.Equal(RCodeRefused, m.RCode())

	// The nibbles mask in place, neighbours survive.
	m.SetOpCode(OpCodeQuery)
	r.Equal(RCodeRefused, m.RCode())
	r.True(m.Response())
	m.SetTruncated(false)
	r.False(m.Truncated())
	r.True(m.Authoritative())

	m.SetOpCode(OpCodeUpdate)
	m.SetTruncated(true)

	// The flag word lands on the wire where the reference library
	// expects every bit.
	b, err := c.Encode(m)
	r.NoError(err)
	defer pool.ReleaseBuf(b)

	ref := new(dns.Msg)
	r.NoError(ref.Unpack(b.B))
	r.True(ref.Response)
	r.True(ref.Authoritative)
	r.True(ref.Truncated)
	r.True(ref.RecursionDesired)
	r.True(ref.RecursionAvailable)
	r.True(ref.AuthenticatedData)
	r.True(ref.CheckingDisabled)
	r.Equal(dns.OpcodeUpdate, ref.Opcode)
	r.Equal(dns.RcodeRefused, ref.Rcode)
}

func TestHeaderBitsFromReference(t *testing.T) {
	r := require.New(t)
	c := testCodec()

	ref := new(dns.Msg)
	ref.Id = 7
	ref.Response = true
	ref.Opcode = dns.OpcodeNotify
	ref.CheckingDisabled = true
	ref.Rcode = dns.RcodeServerFailure
	wire, err := ref.Pack()
	r.NoError(err)

	m, err := c.Decode(wire)
	r.NoError(err)
	r.Equal(uint16(7), m.ID)
	r.True(m.Response())
	r.False(m.Authoritative())
	r.True(m.CheckingDisabled())
	r.Equal(OpCodeNotify, m.OpCode())
	r.Equal(RCodeServerFailure, m.RCode())
}

func TestNewQuery(t *testing.T) {
	r := require.New(t)

	q := NewQuery(MustParseName("example.com"), "AAAA")
	r.False(q.Response())
	r.True(q.RecursionDesired())
	r.Equal(OpCodeQuery, q.OpCode())
	r.Len(q.Questions, 1)
	r.Equal("example.com.", q.Questions[0].Name.String())
	r.Equal("AAAA", q.Questions[0].Type)
	r.Equal(ClassINET, q.Questions[0].Class)
	r.Empty(q.Answers)
}

func TestNewReply(t *testing.T) {
	r := require.New(t)

	q := NewQuery(MustParseName("example.com"), "A")
	q.ID = 0x4242

	m := NewReply(q)
	r.Equal(uint16(0x4242), m.ID)
	r.True(m.Response())
	r.True(m.RecursionDesired())
	r.Equal(q.OpCode(), m.OpCode())
	r.Len(m.Questions, 1)
	r.True(EqualQuestion(q.Questions[0], m.Questions[0]))

	// The questions are copies, not shared.
	m.Questions[0].Type = "MX"
	r.Equal("A", q.Questions[0].Type)
}

func TestPopEDNS0(t *testing.T) {
	r := require.New(t)

	null := func() *Resource {
		return NewResource(MustParseName("a.com"), 60, &testNULL{Data: []byte{1}})
	}
	opt := NewResource(nil, 0, &testPseudo{})
	r.Equal(TypeOPT, opt.Type())

	m := &Msg{Additionals: []*Resource{null(), opt, null()}}
	got := PopEDNS0(m)
	r.True(got == opt)
	r.Len(m.Additionals, 2)
	for _, rr := range m.Additionals {
		r.Equal(TypeNULL, rr.Type())
	}

	r.Nil(PopEDNS0(m))

	m2 := &Msg{Additionals: []*Resource{opt, null()}}
	RemoveEDNS0(m2)
	r.Len(m2.Additionals, 1)
	r.Equal(TypeNULL, m2.Additionals[0].Type())
}
