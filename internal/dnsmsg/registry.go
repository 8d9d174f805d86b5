package dnsmsg

import (
	"fmt"
	"sort"
)

// Ident is the wire identity of a payload shape. Class 0 registers the
// shape for every class, which is what pseudo records such as OPT need,
// their class octets carry other data.
type Ident struct {
	Type  Type
	Class Class
	Name  string // presentation name, e.g. "MX"
}

// Rdata is the typed payload of one resource record. Implementations
// declare their identity and register a field table describing their
// wire layout.
type Rdata interface {
	Identity() Ident
}

// RdataEqualer replaces the schema driven comparison of a shape.
type RdataEqualer interface {
	EqualRdata(other Rdata) bool
}

// RdataHasher replaces the schema driven hash of a shape. Shapes that
// implement RdataEqualer should implement this too, the pair must stay
// consistent.
type RdataHasher interface {
	HashRdata() uint32
}

type identKey struct {
	t Type
	c Class
}

type entry struct {
	ident Ident
	newFn func() Rdata
	enc   func(*Cursor, Rdata) error
	dec   func(*Cursor, Rdata) error
	clone func(Rdata) Rdata
	equal func(a, b Rdata) bool
	hash  func(Rdata) uint32
	show  func(Rdata) string
}

// Registry maps wire identities to compiled payload codecs. Fill it
// during startup, then treat it as read only. It is safe for concurrent
// readers once no more registrations happen.
type Registry struct {
	byKey  map[identKey]*entry
	byType map[Type]*entry
	byName map[string]*entry
}

func NewRegistry() *Registry {
	return &Registry{
		byKey:  make(map[identKey]*entry),
		byType: make(map[Type]*entry),
		byName: make(map[string]*entry),
	}
}

// Register compiles the field table of T and binds it to T's identity.
// Table mistakes and identity clashes are reported here, once, never
// during message work.
func Register[T any, PT interface {
	*T
	Rdata
}](r *Registry, fields []Field[T]) error {
	id := PT(new(T)).Identity()
	if id.Name == "" {
		return schemaErr("", "", fmt.Sprintf("type %d/%d has no presentation name", id.Type, id.Class))
	}
	if id.Type == 0 {
		return schemaErr(id.Name, "", "type code 0 is reserved")
	}

	key := identKey{id.Type, id.Class}
	if _, dup := r.byKey[key]; dup {
		return schemaErr(id.Name, "", fmt.Sprintf("type %d/%d registered twice", id.Type, id.Class))
	}
	if prev, ok := r.byType[id.Type]; ok && prev.ident.Name != id.Name {
		return schemaErr(id.Name, "", fmt.Sprintf("type %d already has presentation name %q", id.Type, prev.ident.Name))
	}
	if prev, ok := r.byName[id.Name]; ok && prev.ident.Type != id.Type {
		return schemaErr(id.Name, "", fmt.Sprintf("presentation name already taken by type %d", prev.ident.Type))
	}

	rt, err := compileSchema[T](id.Name, fields)
	if err != nil {
		return err
	}

	e := &entry{
		ident: id,
		newFn: func() Rdata { return PT(new(T)) },
		enc: func(c *Cursor, d Rdata) error {
			return rt.encode(c, (*T)(d.(PT)))
		},
		dec: func(c *Cursor, d Rdata) error {
			return rt.decode(c, (*T)(d.(PT)))
		},
		clone: func(d Rdata) Rdata {
			out := new(T)
			rt.clone(out, (*T)(d.(PT)))
			return PT(out)
		},
		equal: func(a, b Rdata) bool {
			ta, ok := a.(PT)
			if !ok {
				return false
			}
			tb, ok := b.(PT)
			if !ok {
				return false
			}
			return rt.equal((*T)(ta), (*T)(tb))
		},
		hash: func(d Rdata) uint32 {
			return rt.hash((*T)(d.(PT)))
		},
		show: func(d Rdata) string {
			return rt.show((*T)(d.(PT)))
		},
	}
	r.byKey[key] = e
	if _, ok := r.byType[id.Type]; !ok {
		r.byType[id.Type] = e
	}
	if _, ok := r.byName[id.Name]; !ok {
		r.byName[id.Name] = e
	}
	return nil
}

// MustRegister is Register for startup tables, it panics on error.
func MustRegister[T any, PT interface {
	*T
	Rdata
}](r *Registry, fields []Field[T]) {
	if err := Register[T, PT](r, fields); err != nil {
		panic(err)
	}
}

// lookup finds the entry decoding type t in class c, falling back to a
// class generic registration.
func (r *Registry) lookup(t Type, c Class) (*entry, bool) {
	if e, ok := r.byKey[identKey{t, c}]; ok {
		return e, true
	}
	e, ok := r.byKey[identKey{t, 0}]
	return e, ok
}

func (r *Registry) entryOf(d Rdata) (*entry, error) {
	id := d.Identity()
	e, ok := r.byKey[identKey{id.Type, id.Class}]
	if !ok {
		return nil, fmt.Errorf("%w %d/%d", ErrUnknownType, id.Type, id.Class)
	}
	return e, nil
}

// TypeName resolves a numeric type code to its presentation name.
func (r *Registry) TypeName(t Type) (string, bool) {
	e, ok := r.byType[t]
	if !ok {
		return "", false
	}
	return e.ident.Name, true
}

// TypeCode resolves a presentation name to its numeric type code.
func (r *Registry) TypeCode(name string) (Type, bool) {
	e, ok := r.byName[name]
	if !ok {
		return 0, false
	}
	return e.ident.Type, true
}

// Idents lists every registration, ordered by type code then class.
func (r *Registry) Idents() []Ident {
	out := make([]Ident, 0, len(r.byKey))
	for _, e := range r.byKey {
		out = append(out, e.ident)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Type != out[j].Type {
			return out[i].Type < out[j].Type
		}
		return out[i].Class < out[j].Class
	})
	return out
}

// Equal compares two payloads field by field. Payloads of different
// identities never compare equal. A shape implementing RdataEqualer
// takes over the comparison.
func (r *Registry) Equal(a, b Rdata) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if o, ok := a.(RdataEqualer); ok {
		return o.EqualRdata(b)
	}
	if a.Identity() != b.Identity() {
		return false
	}
	e, err := r.entryOf(a)
	if err != nil {
		return false
	}
	return e.equal(a, b)
}

// Hash folds every field of d into one word. Values that compare equal
// hash equal.
func (r *Registry) Hash(d Rdata) uint32 {
	if d == nil {
		return 0
	}
	if o, ok := d.(RdataHasher); ok {
		return o.HashRdata()
	}
	e, err := r.entryOf(d)
	if err != nil {
		return 0
	}
	return e.hash(d)
}

// Clone copies d deeply enough that the copy shares no mutable state
// with the original.
func (r *Registry) Clone(d Rdata) (Rdata, error) {
	if d == nil {
		return nil, nil
	}
	e, err := r.entryOf(d)
	if err != nil {
		return nil, err
	}
	return e.clone(d), nil
}

// Display renders d for humans, one field after another. A shape
// implementing fmt.Stringer takes over the rendering.
func (r *Registry) Display(d Rdata) string {
	if d == nil {
		return ""
	}
	if s, ok := d.(interface{ String() string }); ok {
		return s.String()
	}
	e, err := r.entryOf(d)
	if err != nil {
		return "?"
	}
	return e.show(d)
}
