package domainmatcher

import "strings"

// normDomain folds n for matching. The trailing dot is trimmed and
// ascii upper case is lowered. Escaping is not supported.
func normDomain(n string) string {
	n = strings.TrimSuffix(n, ".")
	return strings.ToLower(n)
}

type FullMatcher struct {
	m map[string]struct{}
}

func NewFullMatcher() *FullMatcher {
	return &FullMatcher{m: make(map[string]struct{})}
}

func (m *FullMatcher) Match(n string) bool {
	_, ok := m.m[normDomain(n)]
	return ok
}

func (m *FullMatcher) Len() int {
	return len(m.m)
}

func (m *FullMatcher) Add(n string) {
	m.m[normDomain(n)] = struct{}{}
}
