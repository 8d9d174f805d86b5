package dnsutils

import (
	"encoding/binary"
	"errors"
	"io"

	"github.com/merlit/dnswire/internal/dnsmsg"
	"github.com/merlit/dnswire/internal/pool"
)

var errSegTooBig = errors.New("message does not fit a 16 bit length prefix")

// ReadMsgTCP reads one length prefixed message from r and decodes it
// with c. A message longer than the codec capacity is refused without
// being decoded.
//
// Note: r is read twice (header length and then body). Buffered reader
// is recommended.
func ReadMsgTCP(r io.Reader, c *dnsmsg.Codec) (*dnsmsg.Msg, int, error) {
	hdrBuf := pool.GetBuf(2)
	defer pool.ReleaseBuf(hdrBuf)
	var n int
	nr, err := io.ReadFull(r, hdrBuf.B)
	n += nr
	if err != nil {
		return nil, n, err
	}

	length := int(binary.BigEndian.Uint16(hdrBuf.B))
	if length > c.Capacity() {
		return nil, n, dnsmsg.ErrOversize
	}
	msgBuf := pool.GetBuf(length)
	defer pool.ReleaseBuf(msgBuf)
	nr, err = io.ReadFull(r, msgBuf.B)
	n += nr
	if err != nil {
		return nil, n, err
	}

	m, err := c.Decode(msgBuf.B)
	return m, n, err
}

// WriteMsgTCP encodes m and writes it with its two byte length prefix
// as a single segment, so small responses do not split into two
// packets.
func WriteMsgTCP(w io.Writer, c *dnsmsg.Codec, m *dnsmsg.Msg) (int, error) {
	buf, err := c.Encode(m)
	if err != nil {
		return 0, err
	}
	defer pool.ReleaseBuf(buf)

	l := len(buf.B)
	if l > 0xFFFF {
		return 0, errSegTooBig
	}
	seg := pool.GetBuf(2 + l)
	defer pool.ReleaseBuf(seg)
	binary.BigEndian.PutUint16(seg.B, uint16(l))
	copy(seg.B[2:], buf.B)
	return w.Write(seg.B)
}

// ReadMsgUDP reads one datagram of at most the codec capacity and
// decodes it.
func ReadMsgUDP(r io.Reader, c *dnsmsg.Codec) (*dnsmsg.Msg, int, error) {
	b := pool.GetBuf(c.Capacity())
	defer pool.ReleaseBuf(b)
	n, err := r.Read(b.B)
	if err != nil {
		return nil, n, err
	}
	m, err := c.Decode(b.B[:n])
	return m, n, err
}

// WriteMsgUDP encodes m and writes it as one datagram.
func WriteMsgUDP(w io.Writer, c *dnsmsg.Codec, m *dnsmsg.Msg) (int, error) {
	buf, err := c.Encode(m)
	if err != nil {
		return 0, err
	}
	defer pool.ReleaseBuf(buf)
	return w.Write(buf.B)
}
