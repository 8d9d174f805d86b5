package dnsmsg

import (
	"errors"
	"strconv"
)

var (
	// ErrSmallBuffer is returned when the cursor capacity is exceeded while
	// writing, or when the input ends before a read completes.
	ErrSmallBuffer = errors.New("buffer is too small")

	// ErrOversize is returned when an input is longer than the codec
	// capacity.
	ErrOversize = errors.New("message longer than the codec capacity")

	// ErrUnknownType is returned when a record type or class has no entry
	// in the registry.
	ErrUnknownType = errors.New("unregistered record type")

	// ErrIDMismatch is returned by Merge when the two messages do not carry
	// the same transaction id.
	ErrIDMismatch = errors.New("transaction id mismatch")

	errInvalidPtr      = errors.New("invalid compression pointer")
	errReserved        = errors.New("label prefix is reserved")
	errSegTooLong      = errors.New("label length too long (>63)")
	errNameTooLong     = errors.New("name too long")
	errZeroSegLen      = errors.New("zero length label")
	errStringTooLong   = errors.New("character string exceeds maximum length (255)")
	errBitCount        = errors.New("bit count is not a multiple of 8")
	errNoLengthCtx     = errors.New("no active record length context")
	errNestedLengthCtx = errors.New("record length context already active")
	errRDataLeftover   = errors.New("rdata decoder left bytes unconsumed")
	errRDataOverrun    = errors.New("rdata decoder read past the record boundary")
	errResTooLong      = errors.New("resource data too long (>65535)")
	errFieldTooLong    = errors.New("field value too long for its length prefix")
	errFixedSize       = errors.New("value size does not match fixed framing")
	errNilRData        = errors.New("resource has no data")
	errClassPinned     = errors.New("class is pinned by the data identity")

	errTooManyQuestions   = errors.New("too many Questions to pack (>65535)")
	errTooManyAnswers     = errors.New("too many Answers to pack (>65535)")
	errTooManyAuthorities = errors.New("too many Authorities to pack (>65535)")
	errTooManyAdditionals = errors.New("too many Additionals to pack (>65535)")
)

// RecordError scopes a fault to one record of one message section.
type RecordError struct {
	Section string
	Index   int
	Name    *Name // owner name, nil if the fault hit before it was read
	Err     error
}

func (e *RecordError) Error() string {
	s := e.Section + "[" + strconv.Itoa(e.Index) + "]"
	if e.Name != nil {
		s += " " + e.Name.String()
	}
	return s + ": " + e.Err.Error()
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

func newRecordErr(section string, idx int, name *Name, err error) *RecordError {
	return &RecordError{Section: section, Index: idx, Name: name, Err: err}
}

// FieldError scopes a fault to one schema field of a payload.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return "field " + e.Field + ": " + e.Err.Error()
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

func newFieldErr(field string, err error) error {
	if err == nil {
		return nil
	}
	return &FieldError{Field: field, Err: err}
}

// SchemaError reports an invalid field table or registration. It is a
// programming error and is raised once, when the type is compiled, never
// per message.
type SchemaError struct {
	Type  string // display name of the shape being registered, may be empty
	Field string // offending field, may be empty
	Msg   string
}

func (e *SchemaError) Error() string {
	s := "schema: "
	if e.Type != "" {
		s += e.Type + ": "
	}
	if e.Field != "" {
		s += "field " + e.Field + ": "
	}
	return s + e.Msg
}

func schemaErr(typ, field, msg string) *SchemaError {
	return &SchemaError{Type: typ, Field: field, Msg: msg}
}
