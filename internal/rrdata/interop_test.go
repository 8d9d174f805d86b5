package rrdata

import (
	"encoding/base64"
	"net"
	"net/netip"
	"testing"

	"github.com/miekg/dns"
	"github.com/stretchr/testify/require"

	"github.com/merlit/dnswire/internal/dnsmsg"
	"github.com/merlit/dnswire/internal/pool"
)

// The reference implementation unpacks our wire bytes and must see the
// same field values we encoded.
func TestCatalogueAgainstReference(t *testing.T) {
	r := require.New(t)
	c := testCodec()

	owner := dnsmsg.MustParseName("example.com")
	host := dnsmsg.MustParseName("host.example.com")
	mbox := dnsmsg.MustParseName("hostmaster.example.com")
	key := []byte{1, 2, 3, 4}

	m := &dnsmsg.Msg{Header: dnsmsg.Header{ID: 7}}
	for _, d := range []dnsmsg.Rdata{
		&A{Addr: netip.MustParseAddr("192.0.2.1")},
		&AAAA{Addr: netip.MustParseAddr("2001:db8::1")},
		&NS{Host: host},
		&CNAME{Target: host},
		&PTR{Target: host},
		&DNAME{Target: host},
		&MB{Mailbox: mbox},
		&MG{Mailbox: mbox},
		&MR{Mailbox: mbox},
		&MX{Preference: 10, Exchange: host},
		&KX{Preference: 1, Exchanger: host},
		&RT{Preference: 2, Host: host},
		&AFSDB{Subtype: 1, Hostname: host},
		&SRV{Priority: 0, Weight: 5, Port: 443, Target: host},
		&SOA{NS: host, Mbox: mbox, Serial: 2024010101, Refresh: 7200, Retry: 3600, Expire: 1209600, MinTTL: 300},
		&RP{Mbox: mbox, Txt: host},
		&MINFO{RMailbox: mbox, EMailbox: mbox},
		&TXT{Text: []string{"hello", "world"}},
		&SPF{Text: []string{"v=spf1 -all"}},
		&HINFO{CPU: "RISCV64", OS: "LINUX"},
		&X25{Address: "311061700956"},
		&GPOS{Longitude: "-32.6882", Latitude: "116.8652", Altitude: "10.0"},
		&NAPTR{Order: 100, Preference: 50, Flags: "s", Service: "SIP+D2U", Regexp: "", Replacement: dnsmsg.MustParseName("_sip._udp.example.com")},
		&CAA{Flags: 128, Tag: "issue", Value: "ca.example.net"},
		&URI{Priority: 10, Weight: 1, Target: "https://example.com/"},
		&DS{KeyTag: 60485, Algorithm: 5, DigestType: 1, Digest: []byte{0x2B, 0xB1, 0x83, 0xAF}},
		&SSHFP{Algorithm: 2, Type: 1, Fingerprint: []byte{0x12, 0x34, 0x56}},
		&TLSA{Usage: 3, Selector: 1, MatchingType: 1, Certificate: []byte{0xAB, 0xCD}},
		&DNSKEY{Flags: 256, Protocol: 3, Algorithm: 8, PublicKey: key},
		&NSEC3{HashAlgorithm: 1, Flags: 1, Iterations: 12, Salt: []byte{0xAA, 0xBB}, NextHashed: make([]byte, 20), TypeBitmap: []byte{0, 2, 0x40, 0x01}},
	} {
		m.Answers = append(m.Answers, dnsmsg.NewResource(owner, 300, d))
	}

	b, err := c.Encode(m)
	r.NoError(err)
	defer pool.ReleaseBuf(b)

	ref := new(dns.Msg)
	r.NoError(ref.Unpack(b.B))
	r.Len(ref.Answer, len(m.Answers))
	for _, rr := range ref.Answer {
		r.Equal("example.com.", rr.Header().Name)
		r.EqualValues(300, rr.Header().Ttl)
	}

	a := ref.Answer
	r.Equal("192.0.2.1", a[0].(*dns.A).A.String())
	r.Equal("2001:db8::1", a[1].(*dns.AAAA).AAAA.String())
	r.Equal("host.example.com.", a[2].(*dns.NS).Ns)
	r.Equal("host.example.com.", a[3].(*dns.CNAME).Target)
	r.Equal("host.example.com.", a[4].(*dns.PTR).Ptr)
	r.Equal("host.example.com.", a[5].(*dns.DNAME).Target)
	r.Equal("hostmaster.example.com.", a[6].(*dns.MB).Mb)
	r.Equal("hostmaster.example.com.", a[7].(*dns.MG).Mg)
	r.Equal("hostmaster.example.com.", a[8].(*dns.MR).Mr)

	mx := a[9].(*dns.MX)
	r.EqualValues(10, mx.Preference)
	r.Equal("host.example.com.", mx.Mx)
	kx := a[10].(*dns.KX)
	r.EqualValues(1, kx.Preference)
	r.Equal("host.example.com.", kx.Exchanger)
	rt := a[11].(*dns.RT)
	r.EqualValues(2, rt.Preference)
	r.Equal("host.example.com.", rt.Host)
	afsdb := a[12].(*dns.AFSDB)
	r.EqualValues(1, afsdb.Subtype)
	r.Equal("host.example.com.", afsdb.Hostname)

	srv := a[13].(*dns.SRV)
	r.EqualValues(5, srv.Weight)
	r.EqualValues(443, srv.Port)
	r.Equal("host.example.com.", srv.Target)

	soa := a[14].(*dns.SOA)
	r.Equal("host.example.com.", soa.Ns)
	r.Equal("hostmaster.example.com.", soa.Mbox)
	r.EqualValues(2024010101, soa.Serial)
	r.EqualValues(7200, soa.Refresh)
	r.EqualValues(3600, soa.Retry)
	r.EqualValues(1209600, soa.Expire)
	r.EqualValues(300, soa.Minttl)

	rp := a[15].(*dns.RP)
	r.Equal("hostmaster.example.com.", rp.Mbox)
	r.Equal("host.example.com.", rp.Txt)
	minfo := a[16].(*dns.MINFO)
	r.Equal("hostmaster.example.com.", minfo.Rmail)
	r.Equal("hostmaster.example.com.", minfo.Email)

	r.Equal([]string{"hello", "world"}, a[17].(*dns.TXT).Txt)
	r.Equal([]string{"v=spf1 -all"}, a[18].(*dns.SPF).Txt)
	hinfo := a[19].(*dns.HINFO)
	r.Equal("RISCV64", hinfo.Cpu)
	r.Equal("LINUX", hinfo.Os)
	r.Equal("311061700956", a[20].(*dns.X25).PSDNAddress)
	gpos := a[21].(*dns.GPOS)
	r.Equal("-32.6882", gpos.Longitude)
	r.Equal("116.8652", gpos.Latitude)
	r.Equal("10.0", gpos.Altitude)

	naptr := a[22].(*dns.NAPTR)
	r.EqualValues(100, naptr.Order)
	r.EqualValues(50, naptr.Preference)
	r.Equal("s", naptr.Flags)
	r.Equal("SIP+D2U", naptr.Service)
	r.Equal("", naptr.Regexp)
	r.Equal("_sip._udp.example.com.", naptr.Replacement)

	caa := a[23].(*dns.CAA)
	r.EqualValues(128, caa.Flag)
	r.Equal("issue", caa.Tag)
	r.Equal("ca.example.net", caa.Value)

	uri := a[24].(*dns.URI)
	r.EqualValues(10, uri.Priority)
	r.EqualValues(1, uri.Weight)
	r.Equal("https://example.com/", uri.Target)

	ds := a[25].(*dns.DS)
	r.EqualValues(60485, ds.KeyTag)
	r.EqualValues(5, ds.Algorithm)
	r.EqualValues(1, ds.DigestType)
	r.Equal("2bb183af", ds.Digest)
	sshfp := a[26].(*dns.SSHFP)
	r.EqualValues(2, sshfp.Algorithm)
	r.EqualValues(1, sshfp.Type)
	r.Equal("123456", sshfp.FingerPrint)
	tlsa := a[27].(*dns.TLSA)
	r.EqualValues(3, tlsa.Usage)
	r.EqualValues(1, tlsa.Selector)
	r.EqualValues(1, tlsa.MatchingType)
	r.Equal("abcd", tlsa.Certificate)
	dnskey := a[28].(*dns.DNSKEY)
	r.EqualValues(256, dnskey.Flags)
	r.EqualValues(3, dnskey.Protocol)
	r.EqualValues(8, dnskey.Algorithm)
	r.Equal(base64.StdEncoding.EncodeToString(key), dnskey.PublicKey)

	n3 := a[29].(*dns.NSEC3)
	r.EqualValues(1, n3.Hash)
	r.EqualValues(1, n3.Flags)
	r.EqualValues(12, n3.Iterations)
	r.EqualValues(2, n3.SaltLength)
	r.Equal("aabb", n3.Salt)
	r.EqualValues(20, n3.HashLength)
	r.Equal([]uint16{dns.TypeA, dns.TypeMX}, n3.TypeBitMap)
}

// Bytes packed by the reference implementation, compression included,
// decode into our model.
func TestCatalogueFromReference(t *testing.T) {
	r := require.New(t)
	c := testCodec()

	hdr := func(typ uint16) dns.RR_Header {
		return dns.RR_Header{Name: "example.com.", Rrtype: typ, Class: dns.ClassINET, Ttl: 300}
	}
	ref := new(dns.Msg)
	ref.Id = 9
	ref.Question = []dns.Question{{Name: "example.com.", Qtype: dns.TypeSOA, Qclass: dns.ClassINET}}
	ref.Answer = []dns.RR{
		&dns.A{Hdr: hdr(dns.TypeA), A: net.ParseIP("192.0.2.7")},
		&dns.AAAA{Hdr: hdr(dns.TypeAAAA), AAAA: net.ParseIP("2001:db8::7")},
		&dns.MX{Hdr: hdr(dns.TypeMX), Preference: 5, Mx: "mx.example.com."},
		&dns.TXT{Hdr: hdr(dns.TypeTXT), Txt: []string{"a", "bb"}},
		&dns.SOA{Hdr: hdr(dns.TypeSOA), Ns: "ns1.example.com.", Mbox: "admin.example.com.", Serial: 1, Refresh: 2, Retry: 3, Expire: 4, Minttl: 5},
		&dns.SRV{Hdr: hdr(dns.TypeSRV), Priority: 1, Weight: 2, Port: 8080, Target: "svc.example.com."},
		&dns.NAPTR{Hdr: hdr(dns.TypeNAPTR), Order: 10, Preference: 20, Flags: "u", Service: "E2U+sip", Regexp: "!^.*$!sip:info@example.com!", Replacement: "."},
		&dns.CAA{Hdr: hdr(dns.TypeCAA), Flag: 0, Tag: "issuewild", Value: ";"},
		&dns.TLSA{Hdr: hdr(dns.TypeTLSA), Usage: 1, Selector: 0, MatchingType: 2, Certificate: "00ff"},
		&dns.HINFO{Hdr: hdr(dns.TypeHINFO), Cpu: "ARM64", Os: "PLAN9"},
		&dns.URI{Hdr: hdr(dns.TypeURI), Priority: 1, Weight: 2, Target: "ftp://ftp1.example.com/public"},
	}
	ref.Compress = true
	wire, err := ref.Pack()
	r.NoError(err)

	m, err := c.Decode(wire)
	r.NoError(err)
	r.EqualValues(9, m.ID)
	r.Len(m.Questions, 1)
	r.Equal("SOA", m.Questions[0].Type)
	r.Equal("example.com.", m.Questions[0].Name.String())
	r.Len(m.Answers, len(ref.Answer))
	for _, rr := range m.Answers {
		r.Equal("example.com.", rr.Name.String())
		r.EqualValues(300, rr.TTL)
	}

	r.Equal(netip.MustParseAddr("192.0.2.7"), m.Answers[0].Data().(*A).Addr)
	r.Equal(netip.MustParseAddr("2001:db8::7"), m.Answers[1].Data().(*AAAA).Addr)

	mx := m.Answers[2].Data().(*MX)
	r.EqualValues(5, mx.Preference)
	r.Equal("mx.example.com.", mx.Exchange.String())

	r.Equal([]string{"a", "bb"}, m.Answers[3].Data().(*TXT).Text)

	soa := m.Answers[4].Data().(*SOA)
	r.Equal("ns1.example.com.", soa.NS.String())
	r.Equal("admin.example.com.", soa.Mbox.String())
	r.EqualValues(1, soa.Serial)
	r.EqualValues(2, soa.Refresh)
	r.EqualValues(3, soa.Retry)
	r.EqualValues(4, soa.Expire)
	r.EqualValues(5, soa.MinTTL)

	srv := m.Answers[5].Data().(*SRV)
	r.EqualValues(1, srv.Priority)
	r.EqualValues(2, srv.Weight)
	r.EqualValues(8080, srv.Port)
	r.Equal("svc.example.com.", srv.Target.String())

	naptr := m.Answers[6].Data().(*NAPTR)
	r.EqualValues(10, naptr.Order)
	r.EqualValues(20, naptr.Preference)
	r.Equal("u", naptr.Flags)
	r.Equal("E2U+sip", naptr.Service)
	r.Equal("!^.*$!sip:info@example.com!", naptr.Regexp)
	r.Equal(".", naptr.Replacement.String())

	caa := m.Answers[7].Data().(*CAA)
	r.EqualValues(0, caa.Flags)
	r.Equal("issuewild", caa.Tag)
	r.Equal(";", caa.Value)

	tlsa := m.Answers[8].Data().(*TLSA)
	r.EqualValues(1, tlsa.Usage)
	r.EqualValues(0, tlsa.Selector)
	r.EqualValues(2, tlsa.MatchingType)
	r.Equal([]byte{0x00, 0xFF}, tlsa.Certificate)

	hinfo := m.Answers[9].Data().(*HINFO)
	r.Equal("ARM64", hinfo.CPU)
	r.Equal("PLAN9", hinfo.OS)

	uri := m.Answers[10].Data().(*URI)
	r.EqualValues(1, uri.Priority)
	r.EqualValues(2, uri.Weight)
	r.Equal("ftp://ftp1.example.com/public", uri.Target)
}

func BenchmarkCatalogueEncode(b *testing.B) {
	c := testCodec()
	owner := dnsmsg.MustParseName("example.com")
	m := &dnsmsg.Msg{Header: dnsmsg.Header{ID: 1}}
	m.Questions = append(m.Questions, &dnsmsg.Question{Name: owner, Type: "A", Class: dnsmsg.ClassINET})
	m.Answers = append(m.Answers,
		dnsmsg.NewResource(owner, 300, &A{Addr: netip.MustParseAddr("192.0.2.1")}),
		dnsmsg.NewResource(owner, 300, &A{Addr: netip.MustParseAddr("192.0.2.2")}),
		dnsmsg.NewResource(owner, 300, &AAAA{Addr: netip.MustParseAddr("2001:db8::1")}),
		dnsmsg.NewResource(owner, 300, &TXT{Text: []string{"v=spf1 -all"}}),
	)

	ref := new(dns.Msg)
	ref.SetQuestion("example.com.", dns.TypeA)
	ref.Compress = true
	hdr := dns.RR_Header{Name: "example.com.", Rrtype: dns.TypeA, Class: dns.ClassINET, Ttl: 300}
	ref.Answer = []dns.RR{
		&dns.A{Hdr: hdr, A: net.ParseIP("192.0.2.1")},
		&dns.A{Hdr: hdr, A: net.ParseIP("192.0.2.2")},
		&dns.AAAA{Hdr: dns.RR_Header{Name: "example.com.", Rrtype: dns.TypeAAAA, Class: dns.ClassINET, Ttl: 300}, AAAA: net.ParseIP("2001:db8::1")},
		&dns.TXT{Hdr: dns.RR_Header{Name: "example.com.", Rrtype: dns.TypeTXT, Class: dns.ClassINET, Ttl: 300}, Txt: []string{"v=spf1 -all"}},
	}

	b.Run("codec", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			buf, err := c.Encode(m)
			if err != nil {
				b.Fatal(err)
			}
			pool.ReleaseBuf(buf)
		}
	})
	b.Run("reference", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			if _, err := ref.Pack(); err != nil {
				b.Fatal(err)
			}
		}
	})
}

func BenchmarkCatalogueDecode(b *testing.B) {
	c := testCodec()
	ref := new(dns.Msg)
	ref.SetQuestion("example.com.", dns.TypeA)
	ref.Compress = true
	hdr := dns.RR_Header{Name: "example.com.", Rrtype: dns.TypeA, Class: dns.ClassINET, Ttl: 300}
	ref.Answer = []dns.RR{
		&dns.A{Hdr: hdr, A: net.ParseIP("192.0.2.1")},
		&dns.A{Hdr: hdr, A: net.ParseIP("192.0.2.2")},
	}
	wire, err := ref.Pack()
	if err != nil {
		b.Fatal(err)
	}

	b.Run("codec", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			if _, err := c.Decode(wire); err != nil {
				b.Fatal(err)
			}
		}
	})
	b.Run("reference", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			var m dns.Msg
			if err := m.Unpack(wire); err != nil {
				b.Fatal(err)
			}
		}
	})
}
