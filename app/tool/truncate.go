package tool

import (
	"errors"

	"github.com/merlit/dnswire/internal/dnsmsg"
	"github.com/merlit/dnswire/internal/pool"
)

// truncateToFit encodes m within limit bytes. When the full message does
// not fit, trailing records are dropped section by section and the TC
// bit is raised. The caller owns the returned buffer. m itself is never
// modified.
func truncateToFit(c *dnsmsg.Codec, m *dnsmsg.Msg, limit int) (_ *pool.Buffer, truncated bool, _ error) {
	if limit > c.Capacity() {
		limit = c.Capacity()
	}
	b, err := c.Encode(m)
	if err == nil {
		if len(b.B) <= limit {
			return b, false, nil
		}
		pool.ReleaseBuf(b)
	} else if !errors.Is(err, dnsmsg.ErrSmallBuffer) {
		return nil, false, err
	}

	// Drop from a shallow copy so the caller's sections stay whole.
	cut := *m
	cut.SetTruncated(true)
	for {
		switch {
		case len(cut.Additionals) > 0:
			cut.Additionals = cut.Additionals[:len(cut.Additionals)-1]
		case len(cut.Authorities) > 0:
			cut.Authorities = cut.Authorities[:len(cut.Authorities)-1]
		case len(cut.Answers) > 0:
			cut.Answers = cut.Answers[:len(cut.Answers)-1]
		default:
			// Header and questions only, send whatever this comes to.
			b, err := c.Encode(&cut)
			return b, true, err
		}
		b, err := c.Encode(&cut)
		if err != nil {
			if errors.Is(err, dnsmsg.ErrSmallBuffer) {
				continue
			}
			return nil, false, err
		}
		if len(b.B) <= limit {
			return b, true, nil
		}
		pool.ReleaseBuf(b)
	}
}
