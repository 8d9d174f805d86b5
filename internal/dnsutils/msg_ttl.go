package dnsutils

import "github.com/merlit/dnswire/internal/dnsmsg"

// MinimalTTL returns the smallest ttl of this msg.
func MinimalTTL(m *dnsmsg.Msg) (_ uint32, ok bool) {
	minTTL := ^uint32(0)
	hasRecord := false
	for _, sec := range [...][]*dnsmsg.Resource{m.Answers, m.Authorities, m.Additionals} {
		for _, rr := range sec {
			if rr.Type() == dnsmsg.TypeOPT {
				continue // opt record ttl is not ttl.
			}
			hasRecord = true
			if rr.TTL < minTTL {
				minTTL = rr.TTL
			}
		}
	}

	if !hasRecord { // no ttl applied
		return 0, false
	}
	return minTTL, true
}

// SubtractTTL subtracts delta from every record of m.
// If a record's ttl is smaller than delta, the ttl will be set to 1.
func SubtractTTL(m *dnsmsg.Msg, delta uint32) {
	for _, sec := range [...][]*dnsmsg.Resource{m.Answers, m.Authorities, m.Additionals} {
		for _, rr := range sec {
			if rr.Type() == dnsmsg.TypeOPT {
				continue // opt record ttl is not ttl.
			}
			if rr.TTL > delta {
				rr.TTL -= delta
			} else {
				rr.TTL = 1
			}
		}
	}
}
