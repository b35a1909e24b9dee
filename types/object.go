package types

import (
	"reflect"
)

// Object represents a GraphQL object type.
//
//	type Book implements Media {
//		id: ID!
//		title: String!
//	}
//
// https://spec.graphql.org/draft/#sec-Objects
type Object struct {
	Complex
	Interfaces []*Interface

	// IsTypeOf reports whether a resolved value belongs to this type. When nil,
	// GoType is used instead.
	IsTypeOf func(value interface{}) bool
	// GoType is the Go type of the values of this object, if known.
	GoType reflect.Type
}

// NewObject creates an empty object type.
func NewObject(name string) *Object {
	return &Object{Complex: newComplex(KindObject, name)}
}

func (*Object) Kind() string       { return KindObject }
func (t *Object) String() string   { return t.Name }
func (t *Object) TypeName() string { return t.Name }

// AddInterface declares that t implements iface.
func (t *Object) AddInterface(iface *Interface) {
	for _, i := range t.Interfaces {
		if i == iface {
			return
		}
	}
	t.Interfaces = append(t.Interfaces, iface)
	iface.addPossibleType(t)
}

// Implements reports whether t declares iface.
func (t *Object) Implements(iface *Interface) bool {
	for _, i := range t.Interfaces {
		if i == iface {
			return true
		}
	}
	return false
}

// Matches reports whether value is an instance of t.
func (t *Object) Matches(value interface{}) bool {
	if value == nil {
		return false
	}
	if t.IsTypeOf != nil {
		return t.IsTypeOf(value)
	}
	if t.GoType == nil {
		return false
	}
	vt := reflect.TypeOf(value)
	if vt == t.GoType {
		return true
	}
	if vt.Kind() == reflect.Ptr && vt.Elem() == t.GoType {
		return true
	}
	return t.GoType.Kind() == reflect.Ptr && t.GoType.Elem() == vt
}

// Clone creates a new object called name from t's fields. It fails with
// *errors.CloneNotSupportedError if any field type is already resolved.
// Interfaces and type matching are not copied.
func (t *Object) Clone(name string) (*Object, error) {
	c, err := t.Complex.clone(name)
	if err != nil {
		return nil, err
	}
	return &Object{Complex: c}, nil
}
