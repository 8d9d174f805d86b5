package domainmatcher

import "strings"

// DomainMatcher matches a domain and all of its subdomains.
type DomainMatcher struct {
	root        labelNode
	rootMatched bool // corner case that "."(root) should be matched
}

func NewDomainMatcher() *DomainMatcher {
	return &DomainMatcher{}
}

func (m *DomainMatcher) Match(n string) bool {
	if m.rootMatched {
		return true
	}

	labels := splitLabels(normDomain(n))
	currentNode := &m.root
	for i := len(labels) - 1; i >= 0; i-- {
		child := currentNode.GetChild(labels[i])
		if child == nil {
			return false
		}
		if child.leaf {
			return true
		}
		currentNode = child
	}
	return false
}

func (m *DomainMatcher) Len() int {
	if m.rootMatched {
		return 1
	}
	return m.root.Len()
}

// Add adds a domain to the matcher. Empty labels are ignored. Adding
// the root domain "." makes the matcher match everything. A domain
// that is already covered by a shorter rule is a noop, and adding a
// domain drops all rules under it.
func (m *DomainMatcher) Add(n string) {
	if m.rootMatched {
		return
	}

	labels := splitLabels(normDomain(n))
	if len(labels) == 0 {
		m.rootMatched = true
		m.root = labelNode{}
		return
	}

	currentNode := &m.root
	for i := len(labels) - 1; i >= 0; i-- {
		if currentNode.leaf {
			return
		}
		currentNode = currentNode.GetOrAddChild(labels[i])
	}
	currentNode.leaf = true
	currentNode.s = nil
	currentNode.l = nil
}

func splitLabels(n string) []string {
	parts := strings.Split(n, ".")
	labels := parts[:0]
	for _, p := range parts {
		if len(p) > 0 {
			labels = append(labels, p)
		}
	}
	return labels
}

// labelNode is one level of the label trie. Short labels are stored
// under fixed size keys to spare a string header per entry.
type labelNode struct {
	leaf bool // a rule ends here, the subtree below it was pruned

	// lazy init
	s map[[24]byte]*labelNode
	l map[string]*labelNode
}

func (n *labelNode) GetOrAddChild(label string) *labelNode {
	if len(label) <= 24 {
		var key [24]byte
		copy(key[:], label)
		if child := n.s[key]; child != nil {
			return child
		}
		if n.s == nil {
			n.s = make(map[[24]byte]*labelNode)
		}
		child := new(labelNode)
		n.s[key] = child
		return child
	}

	if child := n.l[label]; child != nil {
		return child
	}
	if n.l == nil {
		n.l = make(map[string]*labelNode)
	}
	child := new(labelNode)
	n.l[label] = child
	return child
}

func (n *labelNode) GetChild(label string) *labelNode {
	if len(label) <= 24 {
		var key [24]byte
		copy(key[:], label)
		return n.s[key]
	}
	return n.l[label]
}

func (n *labelNode) Len() int {
	l := 0
	if n.leaf {
		l++
	}
	for _, c := range n.s {
		l += c.Len()
	}
	for _, c := range n.l {
		l += c.Len()
	}
	return l
}
