package rrdata

import "github.com/merlit/dnswire/internal/dnsmsg"

// TXT is free form text, stored as a run of character strings that
// fills the record.
type TXT struct {
	Text []string
}

func (*TXT) Identity() dnsmsg.Ident {
	return dnsmsg.Ident{Type: dnsmsg.TypeTXT, Class: dnsmsg.ClassINET, Name: "TXT"}
}

var txtFields = []dnsmsg.Field[TXT]{
	dnsmsg.TextList("text", func(r *TXT) *[]string { return &r.Text }),
}

// SPF carries sender policy text. Same layout as TXT under its own
// type code.
type SPF struct {
	Text []string
}

func (*SPF) Identity() dnsmsg.Ident {
	return dnsmsg.Ident{Type: dnsmsg.TypeSPF, Class: dnsmsg.ClassINET, Name: "SPF"}
}

var spfFields = []dnsmsg.Field[SPF]{
	dnsmsg.TextList("text", func(r *SPF) *[]string { return &r.Text }),
}

// HINFO describes host hardware and operating system.
type HINFO struct {
	CPU string
	OS  string
}

func (*HINFO) Identity() dnsmsg.Ident {
	return dnsmsg.Ident{Type: dnsmsg.TypeHINFO, Class: dnsmsg.ClassINET, Name: "HINFO"}
}

var hinfoFields = []dnsmsg.Field[HINFO]{
	dnsmsg.Text("cpu", dnsmsg.Prefix8(), func(r *HINFO) *string { return &r.CPU }),
	dnsmsg.Text("os", dnsmsg.Prefix8(), func(r *HINFO) *string { return &r.OS }),
}

// X25 holds a PSDN address.
type X25 struct {
	Address string
}

func (*X25) Identity() dnsmsg.Ident {
	return dnsmsg.Ident{Type: dnsmsg.TypeX25, Class: dnsmsg.ClassINET, Name: "X25"}
}

var x25Fields = []dnsmsg.Field[X25]{
	dnsmsg.Text("address", dnsmsg.Prefix8(), func(r *X25) *string { return &r.Address }),
}

// ISDN holds an ISDN address plus any trailing subaddress strings.
type ISDN struct {
	Address      string
	Subaddresses []string
}

func (*ISDN) Identity() dnsmsg.Ident {
	return dnsmsg.Ident{Type: dnsmsg.TypeISDN, Class: dnsmsg.ClassINET, Name: "ISDN"}
}

var isdnFields = []dnsmsg.Field[ISDN]{
	dnsmsg.Text("address", dnsmsg.Prefix8(), func(r *ISDN) *string { return &r.Address }),
	dnsmsg.TextList("subaddress", func(r *ISDN) *[]string { return &r.Subaddresses }),
}

// GPOS is the old style geographical position.
type GPOS struct {
	Longitude string
	Latitude  string
	Altitude  string
}

func (*GPOS) Identity() dnsmsg.Ident {
	return dnsmsg.Ident{Type: dnsmsg.TypeGPOS, Class: dnsmsg.ClassINET, Name: "GPOS"}
}

var gposFields = []dnsmsg.Field[GPOS]{
	dnsmsg.Text("longitude", dnsmsg.Prefix8(), func(r *GPOS) *string { return &r.Longitude }),
	dnsmsg.Text("latitude", dnsmsg.Prefix8(), func(r *GPOS) *string { return &r.Latitude }),
	dnsmsg.Text("altitude", dnsmsg.Prefix8(), func(r *GPOS) *string { return &r.Altitude }),
}

// NAPTR rewrites the owner name through a regular expression rule.
type NAPTR struct {
	Order       uint16
	Preference  uint16
	Flags       string
	Service     string
	Regexp      string
	Replacement *dnsmsg.Name
}

func (*NAPTR) Identity() dnsmsg.Ident {
	return dnsmsg.Ident{Type: dnsmsg.TypeNAPTR, Class: dnsmsg.ClassINET, Name: "NAPTR"}
}

var naptrFields = []dnsmsg.Field[NAPTR]{
	dnsmsg.Uint16("order", func(r *NAPTR) *uint16 { return &r.Order }),
	dnsmsg.Uint16("preference", func(r *NAPTR) *uint16 { return &r.Preference }),
	dnsmsg.Text("flags", dnsmsg.Prefix8(), func(r *NAPTR) *string { return &r.Flags }),
	dnsmsg.Text("service", dnsmsg.Prefix8(), func(r *NAPTR) *string { return &r.Service }),
	dnsmsg.Text("regexp", dnsmsg.Prefix8(), func(r *NAPTR) *string { return &r.Regexp }),
	dnsmsg.NameField("replacement", func(r *NAPTR) **dnsmsg.Name { return &r.Replacement }),
}

// CAA states which certificate authorities may issue for the owner.
type CAA struct {
	Flags uint8
	Tag   string
	Value string
}

func (*CAA) Identity() dnsmsg.Ident {
	return dnsmsg.Ident{Type: dnsmsg.TypeCAA, Class: dnsmsg.ClassINET, Name: "CAA"}
}

var caaFields = []dnsmsg.Field[CAA]{
	dnsmsg.Uint8("flags", func(r *CAA) *uint8 { return &r.Flags }),
	dnsmsg.Text("tag", dnsmsg.Prefix8(), func(r *CAA) *string { return &r.Tag }),
	dnsmsg.Text("value", dnsmsg.Remaining(), func(r *CAA) *string { return &r.Value }),
}

// URI maps the owner to a literal URI target. Its table extends the
// shared priority and weight prefix.
type URI struct {
	Priority uint16
	Weight   uint16
	Target   string
}

func (*URI) Identity() dnsmsg.Ident {
	return dnsmsg.Ident{Type: dnsmsg.TypeURI, Class: dnsmsg.ClassINET, Name: "URI"}
}

var uriFields = append(
	prioWeight(func(r *URI) *uint16 { return &r.Priority }, func(r *URI) *uint16 { return &r.Weight }),
	dnsmsg.Text("target", dnsmsg.Remaining(), func(r *URI) *string { return &r.Target }),
)
