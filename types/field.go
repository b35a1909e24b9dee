package types

// BindingKind tells how a resolver parameter is filled.
type BindingKind int

const (
	// QueryArgument slots are surfaced to callers as field arguments.
	QueryArgument BindingKind = iota
	// FromSource slots receive the current resolution source.
	FromSource
	// FromService slots are looked up in the service provider at resolve time.
	FromService
	// FromValueConverter slots are computed by a registered converter.
	FromValueConverter
	// FromContext slots receive the request context.
	FromContext
)

func (k BindingKind) String() string {
	switch k {
	case QueryArgument:
		return "QueryArgument"
	case FromSource:
		return "FromSource"
	case FromService:
		return "FromService"
	case FromValueConverter:
		return "FromValueConverter"
	case FromContext:
		return "FromContext"
	}
	return "BindingKind(?)"
}

// Field describes one field of a composite type. It is owned by exactly one
// registry.
type Field struct {
	Name              string
	Description       string
	DeprecationReason string

	// Type is the declared type and may contain forward references.
	Type Type
	// ResolvedType is set once every reference in Type has been resolved.
	ResolvedType Type

	Arguments      []*Argument
	Resolver       Resolver
	StreamResolver StreamResolver

	DefaultValue interface{}
	HasDefault   bool

	Metadata map[string]interface{}
}

// WireType returns ResolvedType when set, Type otherwise.
func (f *Field) WireType() Type {
	if f.ResolvedType != nil {
		return f.ResolvedType
	}
	return f.Type
}

// Argument returns the argument called name.
func (f *Field) Argument(name string) *Argument {
	for _, a := range f.Arguments {
		if a.Name == name {
			return a
		}
	}
	return nil
}

// IsDeprecated reports whether a deprecation reason is set.
func (f *Field) IsDeprecated() bool { return f.DeprecationReason != "" }

func (f *Field) GetMetadata(key string) (interface{}, bool) {
	v, ok := f.Metadata[key]
	return v, ok
}

func (f *Field) SetMetadata(key string, value interface{}) {
	if f.Metadata == nil {
		f.Metadata = make(map[string]interface{})
	}
	f.Metadata[key] = value
}

// CopyMetadataTo copies every metadata entry of f onto dst.
func (f *Field) CopyMetadataTo(dst *Field) {
	for k, v := range f.Metadata {
		dst.SetMetadata(k, v)
	}
}

// Argument describes a field argument.
type Argument struct {
	Name              string
	Description       string
	DeprecationReason string
	Type              Type
	ResolvedType      Type
	DefaultValue      interface{}
	HasDefault        bool
	Binding           BindingKind
	Metadata          map[string]interface{}
}

// WireType returns ResolvedType when set, Type otherwise.
func (a *Argument) WireType() Type {
	if a.ResolvedType != nil {
		return a.ResolvedType
	}
	return a.Type
}

func (a *Argument) GetMetadata(key string) (interface{}, bool) {
	v, ok := a.Metadata[key]
	return v, ok
}

func (a *Argument) SetMetadata(key string, value interface{}) {
	if a.Metadata == nil {
		a.Metadata = make(map[string]interface{})
	}
	a.Metadata[key] = value
}

// Clone deep-copies the argument including its metadata.
func (a *Argument) Clone() *Argument {
	c := *a
	c.Metadata = nil
	for k, v := range a.Metadata {
		c.SetMetadata(k, v)
	}
	return &c
}
