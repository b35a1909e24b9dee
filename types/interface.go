package types

// Interface represents a list of named fields and their arguments.
//
// GraphQL objects can then implement these interfaces which requires that the object type will
// define all fields defined by those interfaces.
//
// http://spec.graphql.org/draft/#sec-Interfaces
type Interface struct {
	Complex
	PossibleTypes []*Object

	// ResolveType maps a value to its concrete object type. When nil, the
	// possible types are matched in declaration order.
	ResolveType func(value interface{}) *Object
}

// NewInterface creates an empty interface type.
func NewInterface(name string) *Interface {
	return &Interface{Complex: newComplex(KindInterface, name)}
}

func (*Interface) Kind() string       { return KindInterface }
func (t *Interface) String() string   { return t.Name }
func (t *Interface) TypeName() string { return t.Name }

func (t *Interface) addPossibleType(o *Object) {
	for _, pt := range t.PossibleTypes {
		if pt == o {
			return
		}
	}
	t.PossibleTypes = append(t.PossibleTypes, o)
}

// ConcreteType returns the implementing object type of value, or nil.
func (t *Interface) ConcreteType(value interface{}) *Object {
	if value == nil {
		return nil
	}
	if t.ResolveType != nil {
		if o := t.ResolveType(value); o != nil && o.Implements(t) {
			return o
		}
		return nil
	}
	for _, pt := range t.PossibleTypes {
		if pt.Matches(value) {
			return pt
		}
	}
	return nil
}

// Clone creates a new interface called name from t's fields, following the
// same rules as Object.Clone.
func (t *Interface) Clone(name string) (*Interface, error) {
	c, err := t.Complex.clone(name)
	if err != nil {
		return nil, err
	}
	return &Interface{Complex: c}, nil
}

// ToObject clones the interface's fields into a new object type. It is used
// for the interface-object federation pattern, where a subgraph exposes an
// interface of another subgraph as a plain object.
func (t *Interface) ToObject(name string) (*Object, error) {
	c, err := t.Complex.clone(name)
	if err != nil {
		return nil, err
	}
	c.kind = KindObject
	return &Object{Complex: c}, nil
}

// InputObject is an input object type: a set of input fields used as argument
// values.
//
// http://spec.graphql.org/draft/#sec-Input-Objects
type InputObject struct {
	Complex
}

// NewInputObject creates an empty input object type.
func NewInputObject(name string) *InputObject {
	return &InputObject{Complex: newComplex(KindInputObject, name)}
}

func (*InputObject) Kind() string       { return KindInputObject }
func (t *InputObject) String() string   { return t.Name }
func (t *InputObject) TypeName() string { return t.Name }

// Clone creates a new input object called name from t's fields.
func (t *InputObject) Clone(name string) (*InputObject, error) {
	c, err := t.Complex.clone(name)
	if err != nil {
		return nil, err
	}
	return &InputObject{Complex: c}, nil
}
