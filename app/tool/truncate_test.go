package tool

import (
	"strings"
	"testing"

	"github.com/merlit/dnswire/internal/dnsmsg"
	"github.com/merlit/dnswire/internal/pool"
	"github.com/merlit/dnswire/internal/rrdata"
	"github.com/stretchr/testify/require"
)

func TestTruncateToFit(t *testing.T) {
	r := require.New(t)
	c := newCodec(0xFFFF)

	q := dnsmsg.NewQuery(dnsmsg.MustParseName("example.com"), "TXT")
	resp := dnsmsg.NewReply(q)
	for i := 0; i < 8; i++ {
		resp.Answers = append(resp.Answers, dnsmsg.NewResource(
			dnsmsg.MustParseName("example.com"), 300,
			&rrdata.TXT{Text: []string{strings.Repeat("x", 100)}},
		))
	}

	full, err := c.Encode(resp)
	r.NoError(err)
	fullLen := len(full.B)
	pool.ReleaseBuf(full)

	t.Run("fits untouched", func(t *testing.T) {
		r := require.New(t)
		b, truncated, err := truncateToFit(c, resp, fullLen)
		r.NoError(err)
		r.False(truncated)
		r.Equal(fullLen, len(b.B))
		m, err := c.Decode(b.B)
		pool.ReleaseBuf(b)
		r.NoError(err)
		r.False(m.Truncated())
		r.Len(m.Answers, 8)
	})

	t.Run("drops answers and raises tc", func(t *testing.T) {
		r := require.New(t)
		b, truncated, err := truncateToFit(c, resp, 512)
		r.NoError(err)
		r.True(truncated)
		r.LessOrEqual(len(b.B), 512)
		m, err := c.Decode(b.B)
		pool.ReleaseBuf(b)
		r.NoError(err)
		r.True(m.Truncated())
		r.NotEmpty(m.Answers)
		r.Less(len(m.Answers), 8)
		// The caller's message stays whole.
		r.Len(resp.Answers, 8)
		r.False(resp.Truncated())
	})

	t.Run("question always survives", func(t *testing.T) {
		r := require.New(t)
		b, truncated, err := truncateToFit(c, resp, 1)
		r.NoError(err)
		r.True(truncated)
		m, err := c.Decode(b.B)
		pool.ReleaseBuf(b)
		r.NoError(err)
		r.True(m.Truncated())
		r.Empty(m.Answers)
		r.Len(m.Questions, 1)
	})
}
