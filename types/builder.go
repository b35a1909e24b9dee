package types

// FieldBuilder assembles a Field before it is added to a registry.
type FieldBuilder struct {
	owner *Complex
	field *Field
}

// Field starts a field called name of type t on c. Nothing is registered until
// Add is called.
func (c *Complex) Field(name string, t Type) *FieldBuilder {
	return &FieldBuilder{owner: c, field: &Field{Name: name, Type: t}}
}

func (b *FieldBuilder) Description(desc string) *FieldBuilder {
	b.field.Description = desc
	return b
}

func (b *FieldBuilder) Deprecated(reason string) *FieldBuilder {
	b.field.DeprecationReason = reason
	return b
}

func (b *FieldBuilder) DefaultValue(v interface{}) *FieldBuilder {
	b.field.DefaultValue = v
	b.field.HasDefault = true
	return b
}

// Argument appends a query argument.
func (b *FieldBuilder) Argument(name string, t Type) *FieldBuilder {
	b.field.Arguments = append(b.field.Arguments, &Argument{Name: name, Type: t})
	return b
}

// ArgumentWithDefault appends a query argument carrying a default value.
func (b *FieldBuilder) ArgumentWithDefault(name string, t Type, def interface{}) *FieldBuilder {
	b.field.Arguments = append(b.field.Arguments, &Argument{Name: name, Type: t, DefaultValue: def, HasDefault: true})
	return b
}

func (b *FieldBuilder) Resolve(r Resolver) *FieldBuilder {
	b.field.Resolver = r
	return b
}

func (b *FieldBuilder) ResolveFunc(fn func(rc *ResolveContext) (interface{}, error)) *FieldBuilder {
	b.field.Resolver = ResolverFunc(fn)
	return b
}

func (b *FieldBuilder) ResolveStream(r StreamResolver) *FieldBuilder {
	b.field.StreamResolver = r
	return b
}

func (b *FieldBuilder) Metadata(key string, value interface{}) *FieldBuilder {
	b.field.SetMetadata(key, value)
	return b
}

// Add registers the field on its owner.
func (b *FieldBuilder) Add() (*Field, error) {
	return b.owner.AddField(b.field)
}

// MustAdd registers the field and panics on error.
func (b *FieldBuilder) MustAdd() *Field {
	return b.owner.MustAddField(b.field)
}
