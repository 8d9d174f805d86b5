package dnsmsg

import "fmt"

// Merge folds the questions and records of src into dst, skipping
// everything dst already holds. Presence is structural equality, see
// EqualRecord. Appended records are deep copies, dst never aliases src.
// Messages carrying different transaction ids do not belong together
// and merging them is a fault.
func (c *Codec) Merge(dst, src *Msg) error {
	if dst.ID != src.ID {
		return fmt.Errorf("%w: %d and %d", ErrIDMismatch, dst.ID, src.ID)
	}
	for _, q := range src.Questions {
		if !containsQuestion(dst.Questions, q) {
			dst.Questions = append(dst.Questions, CloneQuestion(q))
		}
	}
	for _, sec := range [...]struct {
		dst *[]*Resource
		src []*Resource
	}{
		{&dst.Answers, src.Answers},
		{&dst.Authorities, src.Authorities},
		{&dst.Additionals, src.Additionals},
	} {
		if err := c.mergeSection(sec.dst, sec.src); err != nil {
			return err
		}
	}
	return nil
}

// mergeSection appends the new records of src to dst. Records are
// bucketed by hash first so each candidate is compared against a
// handful of peers, not the whole section.
func (c *Codec) mergeSection(dst *[]*Resource, src []*Resource) error {
	if len(src) == 0 {
		return nil
	}
	index := make(map[uint32][]*Resource, len(*dst))
	for _, rr := range *dst {
		h := c.HashRecord(rr)
		index[h] = append(index[h], rr)
	}
	for _, rr := range src {
		h := c.HashRecord(rr)
		dup := false
		for _, have := range index[h] {
			if c.EqualRecord(have, rr) {
				dup = true
				break
			}
		}
		if dup {
			continue
		}
		cp, err := c.CloneRecord(rr)
		if err != nil {
			return err
		}
		*dst = append(*dst, cp)
		index[h] = append(index[h], cp)
	}
	return nil
}

func containsQuestion(qs []*Question, q *Question) bool {
	for _, have := range qs {
		if EqualQuestion(have, q) {
			return true
		}
	}
	return false
}
