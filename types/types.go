/*
Package types holds the runtime type graph: wire type references, leaf and
composite named types, field and argument descriptors, and the resolver
contracts invoked by an execution engine.

The names of the Go types, whenever possible, match 1:1 with the names from
the GraphQL specification.
*/
package types

// Kinds as reported by Type.Kind. They match the introspection __TypeKind
// names, plus TYPE_REFERENCE for forward references.
const (
	KindScalar        = "SCALAR"
	KindObject        = "OBJECT"
	KindInterface     = "INTERFACE"
	KindUnion         = "UNION"
	KindEnum          = "ENUM"
	KindInputObject   = "INPUT_OBJECT"
	KindList          = "LIST"
	KindNonNull       = "NON_NULL"
	KindTypeReference = "TYPE_REFERENCE"
)

// Type is a wire type: a named type, a wrapper, or a forward reference.
type Type interface {
	// Kind returns one of the Kind constants.
	Kind() string
	// String serializes the type in SDL notation, e.g. [Book!]!.
	String() string
}

// NamedType is a Type with a name that can be registered in a schema.
type NamedType interface {
	Type
	TypeName() string
	Description() string
}

// List represents a GraphQL list type.
//
// http://spec.graphql.org/draft/#sec-List
type List struct {
	OfType Type
}

// NonNull represents a GraphQL non-null type.
//
// http://spec.graphql.org/draft/#sec-Non-Null
type NonNull struct {
	OfType Type
}

// TypeName is a forward reference to a named type that is resolved once the
// whole schema is known.
type TypeName struct {
	Name string
}

func (*List) Kind() string     { return KindList }
func (*NonNull) Kind() string  { return KindNonNull }
func (*TypeName) Kind() string { return KindTypeReference }

func (t *List) String() string     { return "[" + t.OfType.String() + "]" }
func (t *NonNull) String() string  { return t.OfType.String() + "!" }
func (t *TypeName) String() string { return t.Name }

// Unwrap strips every List and NonNull wrapper.
func Unwrap(t Type) Type {
	for {
		switch w := t.(type) {
		case *List:
			t = w.OfType
		case *NonNull:
			t = w.OfType
		default:
			return t
		}
	}
}

// UnwrapNonNull removes a top-level non-null wrapper. The second return value
// is true if one was removed.
func UnwrapNonNull(t Type) (Type, bool) {
	if nn, ok := t.(*NonNull); ok {
		return nn.OfType, true
	}
	return t, false
}

// IsNonNull reports whether t is wrapped in NonNull at the top level.
func IsNonNull(t Type) bool {
	_, ok := t.(*NonNull)
	return ok
}

// ListDepth counts the List wrappers of t.
func ListDepth(t Type) int {
	n := 0
	for {
		switch w := t.(type) {
		case *List:
			n++
			t = w.OfType
		case *NonNull:
			t = w.OfType
		default:
			return n
		}
	}
}

// IsReference reports whether t, once unwrapped, is still a forward reference.
func IsReference(t Type) bool {
	_, ok := Unwrap(t).(*TypeName)
	return ok
}

// IsInputType reports whether t may be used for arguments and input fields.
func IsInputType(t Type) bool {
	switch Unwrap(t).Kind() {
	case KindScalar, KindEnum, KindInputObject:
		return true
	}
	return false
}

// IsOutputType reports whether t may be used as the type of an output field.
func IsOutputType(t Type) bool {
	switch Unwrap(t).Kind() {
	case KindScalar, KindEnum, KindObject, KindInterface, KindUnion:
		return true
	}
	return false
}

// IsCompositeType reports whether t is an object, interface or union.
func IsCompositeType(t Type) bool {
	switch Unwrap(t).Kind() {
	case KindObject, KindInterface, KindUnion:
		return true
	}
	return false
}

// ResolveReferences replaces every forward reference inside t using resolve.
// It returns the name of the first reference that could not be resolved.
func ResolveReferences(t Type, resolve func(name string) NamedType) (Type, string) {
	switch t := t.(type) {
	case *List:
		ofType, missing := ResolveReferences(t.OfType, resolve)
		if missing != "" {
			return nil, missing
		}
		return &List{OfType: ofType}, ""
	case *NonNull:
		ofType, missing := ResolveReferences(t.OfType, resolve)
		if missing != "" {
			return nil, missing
		}
		return &NonNull{OfType: ofType}, ""
	case *TypeName:
		refT := resolve(t.Name)
		if refT == nil {
			return nil, t.Name
		}
		return refT, ""
	default:
		return t, ""
	}
}
