package types

import (
	"strings"

	"github.com/graph-gophers/typegraph/errors"
)

// Complex is the ordered, name-unique field registry shared by objects,
// interfaces and input objects. Every insertion goes through AddField so that
// an engine reading a registry never has to re-check its structure.
type Complex struct {
	Name              string
	Desc              string
	DeprecationReason string

	kind   string
	fields []*Field
}

func newComplex(kind, name string) Complex {
	return Complex{kind: kind, Name: name}
}

// TypeName returns the registry owner's name.
func (c *Complex) TypeName() string { return c.Name }

// Description returns the type description.
func (c *Complex) Description() string { return c.Desc }

// IsInput reports whether the registry belongs to an input object.
func (c *Complex) IsInput() bool { return c.kind == KindInputObject }

// Fields returns the fields in insertion order. The slice is a copy; the
// descriptors are shared.
func (c *Complex) Fields() []*Field {
	out := make([]*Field, len(c.fields))
	copy(out, c.fields)
	return out
}

// Len returns the number of fields.
func (c *Complex) Len() int { return len(c.fields) }

// HasField reports whether a field with exactly this name is registered.
// Blank names are never registered.
func (c *Complex) HasField(name string) bool {
	if strings.TrimSpace(name) == "" {
		return false
	}
	for _, f := range c.fields {
		if f.Name == name {
			return true
		}
	}
	return false
}

// GetField returns the first field called name, or nil.
func (c *Complex) GetField(name string) *Field {
	for _, f := range c.fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// AddField validates f and appends it. Violations are returned as
// *errors.SchemaConstructionError and must abort schema construction.
func (c *Complex) AddField(f *Field) (*Field, error) {
	if f == nil {
		return nil, errors.Constructionf(c.ownerName(), "", "field descriptor must not be nil")
	}
	if err := ValidateName(f.Name); err != nil {
		return nil, errors.Constructionf(c.ownerName(), f.Name, "invalid field name: %s", err)
	}

	if declared := f.WireType(); declared != nil && !IsReference(declared) {
		if err := c.checkKind(f.Name, declared); err != nil {
			return nil, err
		}
	}

	if c.HasField(f.Name) {
		return nil, errors.Constructionf(c.ownerName(), f.Name, "a field with the name %q is already registered", f.Name)
	}

	if f.ResolvedType == nil && f.Type == nil {
		return nil, errors.Constructionf(c.ownerName(), f.Name, "field requires a Type when no ResolvedType is provided")
	}

	c.fields = append(c.fields, f)
	return f, nil
}

// MustAddField is like AddField but panics on error. It is meant for
// statically declared types.
func (c *Complex) MustAddField(f *Field) *Field {
	f, err := c.AddField(f)
	if err != nil {
		panic(err)
	}
	return f
}

// checkKind enforces the input/output compatibility of a field type.
func (c *Complex) checkKind(fieldName string, t Type) error {
	if c.IsInput() {
		if !IsInputType(t) {
			return errors.Constructionf(c.ownerName(), fieldName,
				"input type can have fields only of input types: scalar, enum or input object; field has type %s of kind %s",
				t, Unwrap(t).Kind())
		}
		return nil
	}
	if !IsOutputType(t) {
		return errors.Constructionf(c.ownerName(), fieldName,
			"output type can have fields only of output types: scalar, object, interface, union or enum; field has type %s of kind %s",
			t, Unwrap(t).Kind())
	}
	return nil
}

// CheckResolved re-validates every field against its resolved type. It runs
// after forward references have been resolved.
func (c *Complex) CheckResolved() error {
	for _, f := range c.fields {
		if f.ResolvedType == nil {
			return errors.Constructionf(c.ownerName(), f.Name, "type %s was never resolved", f.Type)
		}
		if err := c.checkKind(f.Name, f.ResolvedType); err != nil {
			return err
		}
		for _, a := range f.Arguments {
			if at := a.WireType(); at != nil && !IsReference(at) && !IsInputType(at) {
				return errors.Constructionf(c.ownerName(), f.Name, "argument %q has non-input type %s", a.Name, at)
			}
		}
	}
	return nil
}

// clone copies every field of c. Fields whose type has already been resolved
// cannot be cloned because the copy would alias the resolved type graph.
func (c *Complex) clone(name string) (Complex, error) {
	out := newComplex(c.kind, name)
	out.Desc = c.Desc
	out.DeprecationReason = c.DeprecationReason

	for _, f := range c.fields {
		if f.ResolvedType != nil {
			return Complex{}, &errors.CloneNotSupportedError{Type: c.ownerName(), Field: f.Name}
		}
		field := &Field{
			Name:              f.Name,
			Description:       f.Description,
			DeprecationReason: f.DeprecationReason,
			Type:              f.Type,
			Resolver:          f.Resolver,
			StreamResolver:    f.StreamResolver,
			DefaultValue:      f.DefaultValue,
			HasDefault:        f.HasDefault,
		}
		f.CopyMetadataTo(field)
		if len(f.Arguments) > 0 {
			field.Arguments = make([]*Argument, len(f.Arguments))
			for i, a := range f.Arguments {
				field.Arguments[i] = a.Clone()
			}
		}
		if _, err := out.AddField(field); err != nil {
			return Complex{}, err
		}
	}
	return out, nil
}

func (c *Complex) ownerName() string {
	if c.Name == "" {
		return "<unnamed " + strings.ToLower(c.kind) + ">"
	}
	return c.Name
}
