package types

// Scalar types represent primitive leaf values in a GraphQL type system.
//
// http://spec.graphql.org/draft/#sec-Scalars
type Scalar struct {
	Name string
	Desc string
}

// Enum defines a set of possible values.
//
// http://spec.graphql.org/draft/#sec-Enums
type Enum struct {
	Name   string
	Values []*EnumValue
	Desc   string
}

// EnumValue is one value of an Enum.
type EnumValue struct {
	Name              string
	Desc              string
	DeprecationReason string
}

// Union is an abstract type over a list of object types.
//
// http://spec.graphql.org/draft/#sec-Unions
type Union struct {
	Name          string
	PossibleTypes []*Object
	Desc          string
}

func (*Scalar) Kind() string { return KindScalar }
func (*Enum) Kind() string   { return KindEnum }
func (*Union) Kind() string  { return KindUnion }

func (t *Scalar) String() string { return t.Name }
func (t *Enum) String() string   { return t.Name }
func (t *Union) String() string  { return t.Name }

func (t *Scalar) TypeName() string { return t.Name }
func (t *Enum) TypeName() string   { return t.Name }
func (t *Union) TypeName() string  { return t.Name }

func (t *Scalar) Description() string { return t.Desc }
func (t *Enum) Description() string   { return t.Desc }
func (t *Union) Description() string  { return t.Desc }

// Has reports whether value is a member of the enum.
func (t *Enum) Has(value string) bool {
	for _, v := range t.Values {
		if v.Name == value {
			return true
		}
	}
	return false
}

// Contains reports whether o is one of the union members.
func (t *Union) Contains(o *Object) bool {
	for _, pt := range t.PossibleTypes {
		if pt == o {
			return true
		}
	}
	return false
}

// Built-in scalars.
var (
	Int     = &Scalar{Name: "Int", Desc: "The `Int` scalar type represents non-fractional signed whole numeric values."}
	Float   = &Scalar{Name: "Float", Desc: "The `Float` scalar type represents signed double-precision fractional values."}
	String  = &Scalar{Name: "String", Desc: "The `String` scalar type represents textual data."}
	Boolean = &Scalar{Name: "Boolean", Desc: "The `Boolean` scalar type represents `true` or `false`."}
	ID      = &Scalar{Name: "ID", Desc: "The `ID` scalar type represents a unique identifier."}
)

// BuiltinScalars lists the scalars every schema knows without registration.
func BuiltinScalars() []*Scalar {
	return []*Scalar{Int, Float, String, Boolean, ID}
}

// IDValue is the Go representation of the ID scalar.
type IDValue string
