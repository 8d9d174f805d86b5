package dnsutils

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/merlit/dnswire/internal/dnsmsg"
	"github.com/merlit/dnswire/internal/rrdata"
)

type countingWriter struct {
	bytes.Buffer
	writes int
}

func (w *countingWriter) Write(p []byte) (int, error) {
	w.writes++
	return w.Buffer.Write(p)
}

func TestTCPRoundTrip(t *testing.T) {
	r := require.New(t)
	c := dnsmsg.NewCodec(rrdata.Default(), 4096)
	m := dnsmsg.NewQuery(dnsmsg.MustParseName("example.com"), "A")

	w := new(countingWriter)
	wn, err := WriteMsgTCP(w, c, m)
	r.NoError(err)
	r.Equal(w.Len(), wn)
	// Prefix and body leave in one segment.
	r.Equal(1, w.writes)

	got, rn, err := ReadMsgTCP(&w.Buffer, c)
	r.NoError(err)
	r.Equal(wn, rn)
	r.True(c.EqualMsg(m, got))
}

func TestTCPReadFaults(t *testing.T) {
	c := dnsmsg.NewCodec(rrdata.Default(), 512)

	t.Run("oversize refused unread", func(t *testing.T) {
		r := require.New(t)
		_, n, err := ReadMsgTCP(bytes.NewReader([]byte{0xFF, 0xFF}), c)
		r.ErrorIs(err, dnsmsg.ErrOversize)
		r.Equal(2, n)
	})

	t.Run("short prefix", func(t *testing.T) {
		r := require.New(t)
		_, _, err := ReadMsgTCP(bytes.NewReader([]byte{0x00}), c)
		r.ErrorIs(err, io.ErrUnexpectedEOF)
	})

	t.Run("short body", func(t *testing.T) {
		r := require.New(t)
		_, n, err := ReadMsgTCP(bytes.NewReader([]byte{0x00, 0x0A, 1, 2, 3, 4}), c)
		r.ErrorIs(err, io.ErrUnexpectedEOF)
		r.Equal(6, n)
	})
}

func TestTCPWriteSegmentLimit(t *testing.T) {
	r := require.New(t)
	c := dnsmsg.NewCodec(rrdata.Default(), 0x12000)

	m := &dnsmsg.Msg{}
	m.Answers = append(m.Answers, dnsmsg.NewResource(nil, 0, &rrdata.NULL{Data: make([]byte, 0xFFFF)}))
	_, err := WriteMsgTCP(io.Discard, c, m)
	r.ErrorIs(err, errSegTooBig)
}

func TestUDPRoundTrip(t *testing.T) {
	r := require.New(t)
	c := dnsmsg.NewCodec(rrdata.Default(), 4096)
	m := dnsmsg.NewQuery(dnsmsg.MustParseName("example.com"), "AAAA")

	var buf bytes.Buffer
	wn, err := WriteMsgUDP(&buf, c, m)
	r.NoError(err)
	r.Equal(buf.Len(), wn)

	got, rn, err := ReadMsgUDP(&buf, c)
	r.NoError(err)
	r.Equal(wn, rn)
	r.True(c.EqualMsg(m, got))
}
