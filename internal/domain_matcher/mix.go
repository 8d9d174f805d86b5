package domainmatcher

import (
	"fmt"
	"strings"
)

type MixMatcher struct {
	full   *FullMatcher
	domain *DomainMatcher
	regexp *RegexpMatcher
}

func NewMixMatcher() *MixMatcher {
	return &MixMatcher{
		full:   NewFullMatcher(),
		domain: NewDomainMatcher(),
		regexp: NewRegexpMatcher(),
	}
}

// n is a domain name in presentation format. The trailing dot and
// ascii case do not affect the result.
func (m *MixMatcher) Match(n string) bool {
	return m.full.Match(n) || m.domain.Match(n) || m.regexp.Match(n)
}

// Add adds rule to the matcher.
// Rule format: <typ:><exp>
// <typ> can be  domain | full | regexp
// Default type is domain if <typ> is omitted.
// <exp> is a domain name, escaping is not supported.
// For regexp, <exp> is a regular expression for Non-fqdn, lower-case domains.
//
// E.g. "google.com", "regexp:google.com$"
func (m *MixMatcher) Add(rule string) error {
	var typ, exp string
	if i := strings.IndexByte(rule, ':'); i >= 0 {
		typ = rule[:i]
		exp = rule[i+1:]
	} else {
		exp = rule
	}

	switch typ {
	case "", "domain":
		m.domain.Add(exp)
		return nil
	case "full":
		m.full.Add(exp)
		return nil
	case "regexp":
		return m.regexp.Add(exp)
	default:
		return fmt.Errorf("invalid rule type [%s]", typ)
	}
}

func (m *MixMatcher) Len() int {
	l := 0
	l += m.full.Len()
	l += m.domain.Len()
	l += m.regexp.Len()
	return l
}
