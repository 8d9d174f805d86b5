package dnsmsg

import "strings"

// maxNameWireLen is the longest wire form of a name, counting every label
// length octet and the terminating zero octet.
const maxNameWireLen = 255

// Name is one label of a domain name plus the suffix that follows it.
// The root is the nil *Name. Values are immutable once built, so suffixes
// may be shared freely between names, records and messages.
type Name struct {
	label  string
	parent *Name
	str    string // escaped presentation text, fixed at construction
}

// Label returns the leading label. It is empty only for the root.
func (n *Name) Label() string {
	if n == nil {
		return ""
	}
	return n.label
}

// Parent returns the suffix after the leading label, nil at the apex.
func (n *Name) Parent() *Name {
	if n == nil {
		return nil
	}
	return n.parent
}

// String returns the dotted presentation form, "." for the root.
// Unprintable bytes are escaped as "\DDD", '.' and '\' as "\." and "\\".
func (n *Name) String() string {
	if n == nil {
		return "."
	}
	return n.str
}

// Equal reports whether the two names carry exactly the same labels.
// Comparison is byte exact. Callers that want case folded matching
// should lower both sides first, see ToLower.
func (n *Name) Equal(o *Name) bool {
	if n == o {
		return true
	}
	if n == nil || o == nil {
		return false
	}
	return n.str == o.str
}

// wireLen returns the encoded length of n without compression.
func (n *Name) wireLen() int {
	l := 1 // terminating zero octet
	for cur := n; cur != nil; cur = cur.parent {
		l += 1 + len(cur.label)
	}
	return l
}

// prepend builds the name label.n. The label must already be validated.
func (n *Name) prepend(label string) *Name {
	child := &Name{label: label, parent: n}
	if n == nil {
		child.str = escapeLabel(label) + "."
	} else {
		child.str = escapeLabel(label) + "." + n.str
	}
	return child
}

// ToLower returns the name with every ASCII letter lowered. The original
// is returned unchanged if it is already lower case.
func (n *Name) ToLower() *Name {
	needed := false
	for cur := n; cur != nil; cur = cur.parent {
		if cur.label != strings.ToLower(cur.label) {
			needed = true
			break
		}
	}
	if !needed {
		return n
	}
	var labels []string
	for cur := n; cur != nil; cur = cur.parent {
		labels = append(labels, strings.ToLower(cur.label))
	}
	var out *Name
	for i := len(labels) - 1; i >= 0; i-- {
		out = out.prepend(labels[i])
	}
	return out
}

// ParseName parses a dotted domain name. "" and "." are the root. A single
// trailing dot is accepted.
//
// Note: escaping ("\.", "\DDD" etc.) is not supported yet, a backslash is
// parsed as part of the label.
func ParseName(s string) (*Name, error) {
	s = strings.TrimSuffix(s, ".")
	if s == "" {
		return nil, nil
	}
	labels := strings.Split(s, ".")
	var n *Name
	for i := len(labels) - 1; i >= 0; i-- {
		var err error
		n, err = appendLabel(n, labels[i])
		if err != nil {
			return nil, err
		}
	}
	return n, nil
}

// NewName builds a name from labels in presentation order, so
// NewName("www", "example", "com") is www.example.com.
func NewName(labels ...string) (*Name, error) {
	var n *Name
	for i := len(labels) - 1; i >= 0; i-- {
		var err error
		n, err = appendLabel(n, labels[i])
		if err != nil {
			return nil, err
		}
	}
	return n, nil
}

// MustParseName is ParseName for static names, it panics on a bad input.
func MustParseName(s string) *Name {
	n, err := ParseName(s)
	if err != nil {
		panic(`dnsmsg: invalid name "` + s + `": ` + err.Error())
	}
	return n
}

func appendLabel(parent *Name, label string) (*Name, error) {
	if len(label) == 0 {
		return nil, errZeroSegLen
	}
	if len(label) > 63 {
		return nil, errSegTooLong
	}
	n := parent.prepend(label)
	if n.wireLen() > maxNameWireLen {
		return nil, errNameTooLong
	}
	return n, nil
}

func escapeLabel(label string) string {
	clean := true
	for i := 0; i < len(label); i++ {
		if !printableLabelChar(label[i]) {
			clean = false
			break
		}
	}
	if clean {
		return label
	}
	var sb strings.Builder
	sb.Grow(len(label) + 4)
	for i := 0; i < len(label); i++ {
		b := label[i]
		switch {
		case b == '.' || b == '\\':
			sb.WriteByte('\\')
			sb.WriteByte(b)
		case !printableLabelChar(b):
			sb.WriteByte('\\')
			sb.WriteByte('0' + b/100)
			sb.WriteByte('0' + b/10%10)
			sb.WriteByte('0' + b%10)
		default:
			sb.WriteByte(b)
		}
	}
	return sb.String()
}

func printableLabelChar(b byte) bool {
	return b >= '!' && b <= '~' && b != '.' && b != '\\'
}
