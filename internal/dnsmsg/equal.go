package dnsmsg

// EqualQuestion compares two questions structurally.
func EqualQuestion(a, b *Question) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return a.Type == b.Type && a.Class == b.Class && a.Name.Equal(b.Name)
}

// CloneQuestion returns an independent copy of q. Names are immutable
// and stay shared.
func CloneQuestion(q *Question) *Question {
	if q == nil {
		return nil
	}
	cp := *q
	return &cp
}

// EqualRecord compares two records structurally, owner name, type,
// class, ttl and every payload field.
func (c *Codec) EqualRecord(a, b *Resource) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return a.typ == b.typ && a.class == b.class && a.TTL == b.TTL &&
		a.Name.Equal(b.Name) && c.reg.Equal(a.data, b.data)
}

// HashRecord folds a record into one word, consistent with EqualRecord.
func (c *Codec) HashRecord(rr *Resource) uint32 {
	if rr == nil {
		return 0
	}
	h := uint32(1)
	if rr.Name != nil {
		h = hashFoldString(h, rr.Name.str)
	} else {
		h *= hashMul
	}
	h = h*hashMul + uint32(rr.typ)
	h = h*hashMul + uint32(rr.class)
	h = h*hashMul + rr.TTL
	h = h*hashMul + c.reg.Hash(rr.data)
	return h
}

func hashQuestion(q *Question) uint32 {
	h := uint32(1)
	if q.Name != nil {
		h = hashFoldString(h, q.Name.str)
	} else {
		h *= hashMul
	}
	h = hashFoldString(h, q.Type)
	h = h*hashMul + uint32(q.Class)
	return h
}

// CloneRecord deep copies rr, including its payload.
func (c *Codec) CloneRecord(rr *Resource) (*Resource, error) {
	if rr == nil {
		return nil, nil
	}
	d, err := c.reg.Clone(rr.data)
	if err != nil {
		return nil, err
	}
	return &Resource{
		Name:  rr.Name,
		TTL:   rr.TTL,
		typ:   rr.typ,
		class: rr.class,
		data:  d,
	}, nil
}

// EqualMsg compares two messages structurally. Section order matters,
// two messages with the same records in a different order differ.
func (c *Codec) EqualMsg(a, b *Msg) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	if a.Header != b.Header {
		return false
	}
	if len(a.Questions) != len(b.Questions) {
		return false
	}
	for i := range a.Questions {
		if !EqualQuestion(a.Questions[i], b.Questions[i]) {
			return false
		}
	}
	for _, sec := range [...]struct{ x, y []*Resource }{
		{a.Answers, b.Answers},
		{a.Authorities, b.Authorities},
		{a.Additionals, b.Additionals},
	} {
		if len(sec.x) != len(sec.y) {
			return false
		}
		for i := range sec.x {
			if !c.EqualRecord(sec.x[i], sec.y[i]) {
				return false
			}
		}
	}
	return true
}

// HashMsg folds a whole message into one word, consistent with
// EqualMsg.
func (c *Codec) HashMsg(m *Msg) uint32 {
	if m == nil {
		return 0
	}
	h := uint32(1)
	h = h*hashMul + uint32(m.ID)
	h = h*hashMul + uint32(m.Flags)
	for _, q := range m.Questions {
		h = h*hashMul + hashQuestion(q)
	}
	for _, sec := range [...][]*Resource{m.Answers, m.Authorities, m.Additionals} {
		for _, rr := range sec {
			h = h*hashMul + c.HashRecord(rr)
		}
	}
	return h
}

// CloneMsg deep copies m. The copy shares nothing mutable with the
// original.
func (c *Codec) CloneMsg(m *Msg) (*Msg, error) {
	if m == nil {
		return nil, nil
	}
	out := &Msg{Header: m.Header}
	for _, q := range m.Questions {
		out.Questions = append(out.Questions, CloneQuestion(q))
	}
	for _, sec := range [...]struct {
		src []*Resource
		dst *[]*Resource
	}{
		{m.Answers, &out.Answers},
		{m.Authorities, &out.Authorities},
		{m.Additionals, &out.Additionals},
	} {
		for _, rr := range sec.src {
			cp, err := c.CloneRecord(rr)
			if err != nil {
				return nil, err
			}
			*sec.dst = append(*sec.dst, cp)
		}
	}
	return out, nil
}
