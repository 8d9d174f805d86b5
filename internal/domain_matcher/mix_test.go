package domainmatcher

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMixMatcher_Match(t *testing.T) {
	r := require.New(t)

	m := NewMixMatcher()

	add := func(rule string) {
		err := m.Add(rule)
		r.NoError(err)
	}
	match := func(n string, expect bool) {
		res := m.Match(n)
		r.Equalf(expect, res, "match [%s]", n)
	}

	add("full:full.FULL.full")

	add("regexp:^full.reg.exp$")
	add("regexp:^reg.exp.prefix")

	add("domain:domain.SUFFIX")
	add("CAP.SUFFIX")

	match("full.full.full", true)
	match("full.full.full.", true)
	match("0.full.full.full", false)

	match("full.reg.exp", true)
	match("full0.reg.exp", false)
	match("reg.exp.prefix", true)
	match("reg.exp.prefix.1.2.3", true)

	match("domain.suffix", true)
	match("domain0.suffix", false)
	match("1.2.3.domain.suffix", true)
	match("123.cap.suffix", true)

	r.Error(m.Add("bogus:rule"))
}

func TestLoadMixMatcherFromReader(t *testing.T) {
	r := require.New(t)

	m := NewMixMatcher()
	rules := `
# comment
block.example.org   # trailing comment
full:exact.example.org

regexp:^ads\.
`
	err := LoadMixMatcherFromReader(m, strings.NewReader(rules))
	r.NoError(err)
	r.Equal(3, m.Len())

	r.True(m.Match("sub.block.example.org"))
	r.True(m.Match("exact.example.org"))
	r.False(m.Match("sub.exact.example.org"))
	r.True(m.Match("ads.example.com"))
	r.False(m.Match("example.com"))
}
