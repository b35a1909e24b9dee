package autoreg

import (
	"reflect"

	"github.com/graph-gophers/typegraph/internal/typeinfo"
	"github.com/graph-gophers/typegraph/types"
)

// Options configures description and synthesis. The zero value is usable.
type Options struct {
	// Name overrides the type name used by AutoObject and friends.
	Name        string
	Description string

	// Mapper maps Go types to wire types. A fresh mapper is used when nil,
	// so cross references only work with a shared one.
	Mapper *typeinfo.Mapper

	// Services lists capability types that are always injected, even when
	// a parameter would otherwise be taken as the source or as arguments.
	Services []reflect.Type
	// Converters compute parameters of the given types.
	Converters map[reflect.Type]ValueConverter

	// UseFieldResolvers exposes struct fields next to methods.
	UseFieldResolvers bool
	// IgnoreMethods lists Go method names never exposed as fields.
	IgnoreMethods []string

	FieldVisitors    []FieldVisitor
	ArgumentVisitors []ArgumentVisitor
}

// DefaultOptions returns options exposing fields and methods, with the tag
// visitors installed and a new Mapper.
func DefaultOptions() *Options {
	return &Options{
		Mapper:            typeinfo.NewMapper(),
		UseFieldResolvers: true,
		FieldVisitors:     []FieldVisitor{DescriptionVisitor, DeprecationVisitor},
	}
}

// orDefault never returns nil and always carries a mapper. The caller's
// options are left untouched.
func (o *Options) orDefault() *Options {
	if o == nil {
		return DefaultOptions()
	}
	if o.Mapper != nil {
		return o
	}
	cp := *o
	cp.Mapper = typeinfo.NewMapper()
	return &cp
}

func (o *Options) converter(t reflect.Type) ValueConverter {
	if o == nil {
		return nil
	}
	return o.Converters[t]
}

func (o *Options) isService(t reflect.Type) bool {
	for _, s := range o.Services {
		if s == t {
			return true
		}
	}
	return false
}

var conventionalMethods = map[string]bool{
	"String":      true,
	"GoString":    true,
	"Error":       true,
	"MarshalJSON": true,
	"MarshalText": true,
}

func (o *Options) ignoresMethod(name string) bool {
	if conventionalMethods[name] {
		return true
	}
	for _, n := range o.IgnoreMethods {
		if n == name {
			return true
		}
	}
	return false
}

// FieldVisitor inspects a synthesized field before it is registered. It may
// mutate the field; returning false drops the field.
type FieldVisitor func(m *Member, f *types.Field) (keep bool, err error)

// ArgumentVisitor may rename, retype or change the default of a generated
// query argument before the field is frozen.
type ArgumentVisitor func(p *Parameter, a *types.Argument) error

// DescriptionVisitor copies the description of a member, or its description
// tag, onto the field.
func DescriptionVisitor(m *Member, f *types.Field) (bool, error) {
	if m.Description != "" {
		f.Description = m.Description
	} else if d, ok := m.Tag.Lookup("description"); ok {
		f.Description = d
	}
	return true, nil
}

// DeprecationVisitor copies the deprecation reason of a member, or its
// deprecated tag, onto the field.
func DeprecationVisitor(m *Member, f *types.Field) (bool, error) {
	if m.DeprecationReason != "" {
		f.DeprecationReason = m.DeprecationReason
	} else if r, ok := m.Tag.Lookup("deprecated"); ok {
		if r == "" {
			r = "No longer supported"
		}
		f.DeprecationReason = r
	}
	return true, nil
}

// Exclude returns a visitor dropping the named fields.
func Exclude(names ...string) FieldVisitor {
	return func(_ *Member, f *types.Field) (bool, error) {
		for _, n := range names {
			if f.Name == n {
				return false, nil
			}
		}
		return true, nil
	}
}
