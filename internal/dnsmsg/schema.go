package dnsmsg

// Kind tells how a schema field is stored in its payload struct.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindUint8
	KindUint16
	KindUint32
	KindBytes
	KindText
	KindTextList
	KindName
	KindValue // opaque value converted through a framed byte window
)

func (k Kind) String() string {
	switch k {
	case KindUint8:
		return "uint8"
	case KindUint16:
		return "uint16"
	case KindUint32:
		return "uint32"
	case KindBytes:
		return "bytes"
	case KindText:
		return "text"
	case KindTextList:
		return "text list"
	case KindName:
		return "name"
	case KindValue:
		return "value"
	default:
		return "invalid"
	}
}

// FrameMode tells how the byte window of a variable sized field is
// delimited on the wire.
type FrameMode uint8

const (
	// FrameNone is for fields whose size is implied by their kind.
	FrameNone FrameMode = iota
	// FrameFixed copies exactly Size bytes.
	FrameFixed
	// FrameRemaining runs to the end of the enclosing record. It needs an
	// active record length context.
	FrameRemaining
	// FramePrefix8 precedes the window with its byte count in one octet.
	FramePrefix8
	// FramePrefix16 precedes the window with its byte count in two octets.
	FramePrefix16
	// FramePrefixBits8 precedes the window with its bit count in one
	// octet. Counts that are not a whole number of octets are faults.
	FramePrefixBits8
	// FrameSibling reads the byte count from a named integer field that
	// appeared earlier in the same schema. On encode the sibling is
	// back-filled with the computed count.
	FrameSibling
)

func (m FrameMode) String() string {
	switch m {
	case FrameNone:
		return "none"
	case FrameFixed:
		return "fixed"
	case FrameRemaining:
		return "remaining"
	case FramePrefix8:
		return "prefix8"
	case FramePrefix16:
		return "prefix16"
	case FramePrefixBits8:
		return "prefix-bits8"
	case FrameSibling:
		return "sibling"
	default:
		return "invalid"
	}
}

// Framing pairs a FrameMode with its parameters.
type Framing struct {
	Mode    FrameMode
	Size    int    // FrameFixed
	Sibling string // FrameSibling
}

func Fixed(n int) Framing        { return Framing{Mode: FrameFixed, Size: n} }
func Remaining() Framing         { return Framing{Mode: FrameRemaining} }
func Prefix8() Framing           { return Framing{Mode: FramePrefix8} }
func Prefix16() Framing          { return Framing{Mode: FramePrefix16} }
func PrefixBits8() Framing       { return Framing{Mode: FramePrefixBits8} }
func Sibling(name string) Framing { return Framing{Mode: FrameSibling, Sibling: name} }

// Field describes one wire field of the payload type T. Fields are built
// with the constructors below and compiled into codec routines once, at
// registration.
type Field[T any] struct {
	name  string
	kind  Kind
	frame Framing
	when  func(*T) bool

	u8    func(*T) *uint8
	u16   func(*T) *uint16
	u32   func(*T) *uint32
	bytes func(*T) *[]byte
	text  func(*T) *string
	list  func(*T) *[]string
	dname func(*T) **Name

	getRaw func(*T) ([]byte, error)
	setRaw func(*T, []byte) error
}

// Name returns the field's schema name.
func (f Field[T]) Name() string {
	return f.name
}

// Uint8 declares a one octet integer field.
func Uint8[T any](name string, acc func(*T) *uint8) Field[T] {
	return Field[T]{name: name, kind: KindUint8, u8: acc}
}

// Uint16 declares a two octet big endian integer field.
func Uint16[T any](name string, acc func(*T) *uint16) Field[T] {
	return Field[T]{name: name, kind: KindUint16, u16: acc}
}

// Uint32 declares a four octet big endian integer field.
func Uint32[T any](name string, acc func(*T) *uint32) Field[T] {
	return Field[T]{name: name, kind: KindUint32, u32: acc}
}

// Bytes declares a raw byte field delimited by fr.
func Bytes[T any](name string, fr Framing, acc func(*T) *[]byte) Field[T] {
	return Field[T]{name: name, kind: KindBytes, frame: fr, bytes: acc}
}

// Text declares a character string field delimited by fr.
func Text[T any](name string, fr Framing, acc func(*T) *string) Field[T] {
	return Field[T]{name: name, kind: KindText, frame: fr, text: acc}
}

// TextList declares a run of one octet prefixed character strings that
// fills the rest of the record.
func TextList[T any](name string, acc func(*T) *[]string) Field[T] {
	return Field[T]{name: name, kind: KindTextList, list: acc}
}

// NameField declares a domain name field. Names take part in message
// compression on both passes.
func NameField[T any](name string, acc func(*T) **Name) Field[T] {
	return Field[T]{name: name, kind: KindName, dname: acc}
}

// Value declares a field whose typed value converts to and from a framed
// byte window. get produces the wire bytes, set parses them. The window
// passed to set is only valid during the call.
func Value[T any](name string, fr Framing, get func(*T) ([]byte, error), set func(*T, []byte) error) Field[T] {
	return Field[T]{name: name, kind: KindValue, frame: fr, getRaw: get, setRaw: set}
}

// When guards f with a predicate over sibling fields that were already
// decoded. A field whose predicate is false is absent from the wire and
// keeps its zero value on decode.
func When[T any](cond func(*T) bool, f Field[T]) Field[T] {
	f.when = cond
	return f
}
