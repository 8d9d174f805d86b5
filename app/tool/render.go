package tool

import (
	"fmt"
	"io"
	"strings"

	"github.com/merlit/dnswire/internal/dnsmsg"
	"github.com/merlit/dnswire/internal/rrdata"
)

var opCodeText = map[dnsmsg.OpCode]string{
	dnsmsg.OpCodeQuery:  "QUERY",
	dnsmsg.OpCodeStatus: "STATUS",
	dnsmsg.OpCodeNotify: "NOTIFY",
	dnsmsg.OpCodeUpdate: "UPDATE",
}

var rCodeText = map[dnsmsg.RCode]string{
	dnsmsg.RCodeSuccess:        "NOERROR",
	dnsmsg.RCodeFormatError:    "FORMERR",
	dnsmsg.RCodeServerFailure:  "SERVFAIL",
	dnsmsg.RCodeNameError:      "NXDOMAIN",
	dnsmsg.RCodeNotImplemented: "NOTIMP",
	dnsmsg.RCodeRefused:        "REFUSED",
}

var classesText = map[dnsmsg.Class]string{
	dnsmsg.ClassINET:   "IN",
	dnsmsg.ClassCSNET:  "CS",
	dnsmsg.ClassCHAOS:  "CH",
	dnsmsg.ClassHESIOD: "HS",
	dnsmsg.ClassANY:    "ANY",
}

func classText(c dnsmsg.Class) string {
	if s, ok := classesText[c]; ok {
		return s
	}
	return fmt.Sprintf("CLASS%d", uint16(c))
}

func opText(o dnsmsg.OpCode) string {
	if s, ok := opCodeText[o]; ok {
		return s
	}
	return fmt.Sprintf("OPCODE%d", uint16(o))
}

func rcodeText(rc dnsmsg.RCode) string {
	if s, ok := rCodeText[rc]; ok {
		return s
	}
	return fmt.Sprintf("RCODE%d", uint16(rc))
}

func flagsText(h dnsmsg.Header) string {
	var flags []string
	if h.Response() {
		flags = append(flags, "qr")
	}
	if h.Authoritative() {
		flags = append(flags, "aa")
	}
	if h.Truncated() {
		flags = append(flags, "tc")
	}
	if h.RecursionDesired() {
		flags = append(flags, "rd")
	}
	if h.RecursionAvailable() {
		flags = append(flags, "ra")
	}
	if h.AuthenticData() {
		flags = append(flags, "ad")
	}
	if h.CheckingDisabled() {
		flags = append(flags, "cd")
	}
	return strings.Join(flags, " ")
}

func typeText(c *dnsmsg.Codec, t dnsmsg.Type) string {
	if name, ok := c.Registry().TypeName(t); ok {
		return name
	}
	return fmt.Sprintf("TYPE%d", uint16(t))
}

// renderMsg prints m in the usual dig layout, one section at a time.
func renderMsg(w io.Writer, c *dnsmsg.Codec, m *dnsmsg.Msg) {
	fmt.Fprintf(w, ";; opcode: %s, status: %s, id: %d\n",
		opText(m.OpCode()), rcodeText(m.RCode()), m.ID)
	fmt.Fprintf(w, ";; flags: %s; QUERY: %d, ANSWER: %d, AUTHORITY: %d, ADDITIONAL: %d\n",
		flagsText(m.Header), len(m.Questions), len(m.Answers), len(m.Authorities), len(m.Additionals))

	if len(m.Questions) > 0 {
		fmt.Fprintf(w, "\n;; QUESTION SECTION:\n")
		for _, q := range m.Questions {
			fmt.Fprintf(w, ";%s\t\t%s\t%s\n", q.Name.String(), classText(q.Class), q.Type)
		}
	}
	renderSection(w, c, "ANSWER", m.Answers)
	renderSection(w, c, "AUTHORITY", m.Authorities)
	renderSection(w, c, "ADDITIONAL", m.Additionals)
}

func renderSection(w io.Writer, c *dnsmsg.Codec, name string, rrs []*dnsmsg.Resource) {
	if len(rrs) == 0 {
		return
	}
	fmt.Fprintf(w, "\n;; %s SECTION:\n", name)
	for _, rr := range rrs {
		renderRecord(w, c, rr)
	}
}

func renderRecord(w io.Writer, c *dnsmsg.Codec, rr *dnsmsg.Resource) {
	if rr.Type() == dnsmsg.TypeOPT {
		renderOPT(w, rr)
		return
	}
	fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\n",
		rr.Name.String(), rr.TTL, classText(rr.Class()), typeText(c, rr.Type()), c.Registry().Display(rr.Data()))
}

// The opt pseudo record reuses its class and ttl for edns fields, so the
// generic record line would mislead.
func renderOPT(w io.Writer, rr *dnsmsg.Resource) {
	fmt.Fprintf(w, ";; EDNS: version %d, udp %d", rrdata.EDNSVersion(rr), rrdata.EDNSUDPSize(rr))
	if rrdata.EDNSDo(rr) {
		fmt.Fprintf(w, ", do")
	}
	fmt.Fprintf(w, "\n")
}
