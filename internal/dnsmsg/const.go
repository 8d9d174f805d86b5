package dnsmsg

// An RCode is a DNS response status code.
type RCode uint16

const (
	RCodeSuccess        RCode = 0 // NoError
	RCodeFormatError    RCode = 1 // FormErr
	RCodeServerFailure  RCode = 2 // ServFail
	RCodeNameError      RCode = 3 // NXDomain
	RCodeNotImplemented RCode = 4 // NotImp
	RCodeRefused        RCode = 5 // Refused
)

// An OpCode is a DNS operation code.
type OpCode uint16

const (
	OpCodeQuery  OpCode = 0
	OpCodeStatus OpCode = 2
	OpCodeNotify OpCode = 4
	OpCodeUpdate OpCode = 5
)

type Class uint16

const (
	// Resource.Class and Question.Class
	ClassINET   Class = 1
	ClassCSNET  Class = 2
	ClassCHAOS  Class = 3
	ClassHESIOD Class = 4

	// Question.Class
	ClassANY Class = 255
)

// A Type is a numeric record type code as it appears on the wire.
type Type uint16

const (
	TypeA        Type = 1
	TypeNS       Type = 2
	TypeCNAME    Type = 5
	TypeSOA      Type = 6
	TypeMB       Type = 7
	TypeMG       Type = 8
	TypeMR       Type = 9
	TypeNULL     Type = 10
	TypePTR      Type = 12
	TypeHINFO    Type = 13
	TypeMINFO    Type = 14
	TypeMX       Type = 15
	TypeTXT      Type = 16
	TypeRP       Type = 17
	TypeAFSDB    Type = 18
	TypeX25      Type = 19
	TypeISDN     Type = 20
	TypeRT       Type = 21
	TypeGPOS     Type = 27
	TypeAAAA     Type = 28
	TypeSRV      Type = 33
	TypeNAPTR    Type = 35
	TypeKX       Type = 36
	TypeDNAME    Type = 39
	TypeOPT      Type = 41
	TypeDS       Type = 43
	TypeSSHFP    Type = 44
	TypeIPSECKEY Type = 45
	TypeDNSKEY   Type = 48
	TypeNSEC3    Type = 50
	TypeTLSA     Type = 52
	TypeSPF      Type = 99
	TypeURI      Type = 256
	TypeCAA      Type = 257

	// Question.Type only
	TypeAXFR Type = 252
	TypeALL  Type = 255
)
