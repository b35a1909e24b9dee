package autoreg

import (
	"reflect"
	"strings"

	"github.com/graph-gophers/typegraph/errors"
	"github.com/graph-gophers/typegraph/types"
)

// AutoObject builds an object type from the fields and methods of t. The Go
// type is bound to the object name in the mapper, so other types can refer
// to it before the schema is built.
func AutoObject(t reflect.Type, opts *Options) (*types.Object, error) {
	opts = opts.orDefault()
	name := typeName(t, opts)
	obj := types.NewObject(name)
	obj.Desc = opts.Description
	obj.GoType = t
	opts.Mapper.Bind(t, name)

	if err := addMembers(&obj.Complex, t, opts, true); err != nil {
		return nil, err
	}
	return obj, nil
}

// AutoInterface builds an interface type from t, which is usually a Go
// interface. Objects declaring it must be linked with Object.AddInterface.
func AutoInterface(t reflect.Type, opts *Options) (*types.Interface, error) {
	opts = opts.orDefault()
	name := typeName(t, opts)
	iface := types.NewInterface(name)
	iface.Desc = opts.Description
	opts.Mapper.Bind(t, name)

	if err := addMembers(&iface.Complex, t, opts, true); err != nil {
		return nil, err
	}
	return iface, nil
}

// AutoInputObject builds an input object from the fields of struct type t.
// Default tags become field defaults.
func AutoInputObject(t reflect.Type, opts *Options) (*types.InputObject, error) {
	opts = opts.orDefault()
	if derefType(t).Kind() != reflect.Struct {
		return nil, &errors.UnsupportedMemberKindError{Member: t.String(), Kind: t.Kind().String()}
	}
	name := typeName(t, opts)
	in := types.NewInputObject(name)
	in.Desc = opts.Description
	opts.Mapper.Bind(t, name)

	members, err := DescribeType(t, opts, false)
	if err != nil {
		return nil, err
	}
	for _, m := range members {
		info, err := describeWireType(m.Result, m.Path(), m.Tag.Get("graphql"), opts)
		if err != nil {
			return nil, err
		}
		f := &types.Field{Name: m.Name, Type: info}
		if lit, ok := m.Tag.Lookup("default"); ok {
			def, err := decodeDefault(lit, m.Result)
			if err != nil {
				return nil, errors.Constructionf(name, m.Name, "invalid default: %s", err)
			}
			f.DefaultValue = def
			f.HasDefault = true
		}
		keep, err := visitAll(opts, m, f)
		if err != nil {
			return nil, err
		}
		if !keep {
			continue
		}
		if _, err := in.AddField(f); err != nil {
			return nil, err
		}
	}
	return in, nil
}

func addMembers(c *types.Complex, t reflect.Type, opts *Options, withMethods bool) error {
	members, err := DescribeType(t, opts, withMethods)
	if err != nil {
		return err
	}
	for _, m := range members {
		f, err := Synthesize(m, opts)
		if err != nil {
			return err
		}
		if f == nil {
			continue
		}
		if _, err := c.AddField(f); err != nil {
			return err
		}
	}
	return nil
}

// AddFunc synthesizes an explicitly described member onto c.
func AddFunc(c *types.Complex, m *Member, opts *Options) (*types.Field, error) {
	f, err := Synthesize(m, opts)
	if err != nil || f == nil {
		return nil, err
	}
	return c.AddField(f)
}

func visitAll(opts *Options, m *Member, f *types.Field) (bool, error) {
	for _, visit := range opts.FieldVisitors {
		keep, err := visit(m, f)
		if err != nil || !keep {
			return false, err
		}
	}
	return true, nil
}

func typeName(t reflect.Type, opts *Options) string {
	if opts.Name != "" {
		return opts.Name
	}
	name := derefType(t).Name()
	// generic instantiations carry their type arguments
	if i := strings.IndexByte(name, '['); i >= 0 {
		name = name[:i]
	}
	return name
}
