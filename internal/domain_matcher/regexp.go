package domainmatcher

import "regexp"

// Note: regexp matcher will match a NON-FQDN.
type RegexpMatcher struct {
	m map[string]*regexp.Regexp
}

func NewRegexpMatcher() *RegexpMatcher {
	return &RegexpMatcher{m: make(map[string]*regexp.Regexp)}
}

func (m *RegexpMatcher) Match(n string) bool {
	if len(m.m) == 0 {
		return false
	}

	n = normDomain(n)
	for _, r := range m.m {
		if r.MatchString(n) {
			return true
		}
	}
	return false
}

func (m *RegexpMatcher) Len() int {
	return len(m.m)
}

func (m *RegexpMatcher) Add(exp string) error {
	_, dup := m.m[exp]
	if dup {
		return nil
	}
	r, err := regexp.Compile(exp)
	if err != nil {
		return err
	}
	m.m[exp] = r
	return nil
}
