package autoreg

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"gopkg.in/yaml.v3"

	"github.com/graph-gophers/typegraph/errors"
	"github.com/graph-gophers/typegraph/services"
	"github.com/graph-gophers/typegraph/types"
)

var (
	contextType        = reflect.TypeOf((*context.Context)(nil)).Elem()
	resolveContextType = reflect.TypeOf((*types.ResolveContext)(nil))
	errorType          = reflect.TypeOf((*error)(nil)).Elem()
)

// ValueConverter computes a parameter value from the resolution context.
type ValueConverter interface {
	Convert(rc *types.ResolveContext) (interface{}, error)
}

// ValueConverterFunc adapts a function to ValueConverter.
type ValueConverterFunc func(rc *types.ResolveContext) (interface{}, error)

func (f ValueConverterFunc) Convert(rc *types.ResolveContext) (interface{}, error) {
	return f(rc)
}

// classify describes the method parameter at position. Argument structs are
// expanded into one parameter per exported field.
func classify(m *Member, t reflect.Type, position int, opts *Options) ([]*Parameter, error) {
	p := &Parameter{Name: t.String(), GoType: t, Position: position}

	switch {
	case t == contextType || t == resolveContextType:
		p.Binding = types.FromContext
	case opts.converter(t) != nil:
		p.Binding = types.FromValueConverter
	case opts.isService(t):
		p.Binding = types.FromService
	case acceptsSource(t, m.Owner):
		p.Binding = types.FromSource
	case t.Kind() == reflect.Interface:
		p.Binding = types.FromService
	case derefType(t).Kind() == reflect.Struct:
		return expandArgs(m, t, position)
	default:
		return nil, errors.Constructionf(ownerName(m.Owner), m.Name,
			"parameter %d of type %v cannot be named; use an argument struct or describe the function explicitly", position, t)
	}
	return []*Parameter{p}, nil
}

func acceptsSource(t, source reflect.Type) bool {
	if source == nil {
		return false
	}
	return source.AssignableTo(t) || derefType(source) == derefType(t)
}

// expandArgs turns the fields of an argument struct into parameters. Field
// names come from the graphql tag or the lower-camel Go name; default tags
// hold YAML literals decoded into the field type.
func expandArgs(m *Member, t reflect.Type, position int) ([]*Parameter, error) {
	st := derefType(t)
	var params []*Parameter
	for _, sf := range reflect.VisibleFields(st) {
		if !sf.IsExported() || sf.Anonymous {
			continue
		}
		tag := sf.Tag.Get("graphql")
		if tag == "-" {
			continue
		}
		name := strings.Split(tag, ",")[0]
		if name == "" {
			name = lowerFirst(sf.Name)
		}
		p := &Parameter{
			Name:        name,
			GoType:      sf.Type,
			Binding:     types.QueryArgument,
			Description: sf.Tag.Get("description"),
			Tag:         tag,
			Position:    position,
			FieldIndex:  sf.Index,
		}
		switch inject := sf.Tag.Get("inject"); inject {
		case "":
		case "source":
			p.Binding = types.FromSource
		case "service":
			p.Binding = types.FromService
		case "context":
			p.Binding = types.FromContext
		default:
			return nil, errors.Constructionf(ownerName(m.Owner), m.Name, "argument %q has unknown inject tag %q", name, inject)
		}
		if lit, ok := sf.Tag.Lookup("default"); ok {
			def, err := decodeDefault(lit, sf.Type)
			if err != nil {
				return nil, errors.Constructionf(ownerName(m.Owner), m.Name, "invalid default for argument %q: %s", name, err)
			}
			p.Default = def
			p.HasDefault = true
		}
		params = append(params, p)
	}
	return params, nil
}

// decodeDefault parses a default tag literal into a value of type t.
func decodeDefault(lit string, t reflect.Type) (interface{}, error) {
	ptr := reflect.New(t)
	if err := yaml.Unmarshal([]byte(lit), ptr.Interface()); err != nil {
		return nil, err
	}
	return ptr.Elem().Interface(), nil
}

// binding is the compiled, request-time form of one call argument.
type binding struct {
	goType reflect.Type
	// single is set for plain parameters.
	single *boundParam
	// fields is set for argument structs.
	fields []*boundParam
}

type boundParam struct {
	param     *Parameter
	arg       *types.Argument
	converter ValueConverter
}

func (b *binding) value(rc *types.ResolveContext) (reflect.Value, error) {
	if b.single != nil {
		return b.single.value(rc, b.goType)
	}

	st := derefType(b.goType)
	sv := reflect.New(st).Elem()
	for _, f := range b.fields {
		fv, err := f.value(rc, f.param.GoType)
		if err != nil {
			return reflect.Value{}, err
		}
		dst, err := sv.FieldByIndexErr(f.param.FieldIndex)
		if err != nil {
			return reflect.Value{}, err
		}
		dst.Set(fv)
	}
	if b.goType.Kind() == reflect.Ptr {
		return sv.Addr(), nil
	}
	return sv, nil
}

func (b *boundParam) value(rc *types.ResolveContext, t reflect.Type) (reflect.Value, error) {
	switch b.param.Binding {
	case types.FromContext:
		if t == resolveContextType {
			return reflect.ValueOf(rc), nil
		}
		return reflect.ValueOf(rc.Ctx()), nil

	case types.FromSource:
		return convert(rc.Source, t)

	case types.FromService:
		v, ok := services.Lookup(rc.Ctx(), rc.Services, t)
		if !ok {
			return reflect.Value{}, &errors.ServiceResolutionError{Capability: t, Field: rc.Path()}
		}
		return convert(v, t)

	case types.FromValueConverter:
		v, err := b.converter.Convert(rc)
		if err != nil {
			return reflect.Value{}, err
		}
		return convert(v, t)
	}

	raw, ok := rc.Arg(b.arg.Name)
	if !ok && b.arg.HasDefault {
		raw = b.arg.DefaultValue
	}
	v, err := convert(raw, t)
	if err != nil {
		return reflect.Value{}, fmt.Errorf("argument %q: %w", b.arg.Name, err)
	}
	return v, nil
}

// convert turns a raw value into a value of type t. Assignable values pass
// through; everything else is decoded with mapstructure, which covers
// numeric conversions, pointers, slices and maps decoded into structs.
func convert(raw interface{}, t reflect.Type) (reflect.Value, error) {
	if raw == nil {
		return reflect.Zero(t), nil
	}
	rv := reflect.ValueOf(raw)
	if rv.Type().AssignableTo(t) {
		v := reflect.New(t).Elem()
		v.Set(rv)
		return v, nil
	}
	if t.Kind() == reflect.Ptr && rv.Type().AssignableTo(t.Elem()) {
		p := reflect.New(t.Elem())
		p.Elem().Set(rv)
		return p, nil
	}
	if t.Kind() != reflect.Ptr && rv.Kind() == reflect.Ptr && !rv.IsNil() && rv.Elem().Type().AssignableTo(t) {
		return rv.Elem(), nil
	}

	out := reflect.New(t)
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "graphql",
		Result:  out.Interface(),
	})
	if err != nil {
		return reflect.Value{}, err
	}
	if err := dec.Decode(raw); err != nil {
		return reflect.Value{}, fmt.Errorf("cannot use %T as %v: %w", raw, t, err)
	}
	return out.Elem(), nil
}

// compileBindings groups the parameters of m by call position and creates
// the query arguments. Argument visitors run on each argument before the
// duplicate check, so a rename is visible to it.
func compileBindings(m *Member, opts *Options, numIn int, paramType func(int) reflect.Type) ([]*binding, []*types.Argument, error) {
	bindings := make([]*binding, numIn)
	var args []*types.Argument
	seen := make(map[string]bool)

	for _, p := range m.Params {
		b := bindings[p.Position]
		if b == nil {
			b = &binding{goType: paramType(p.Position)}
			bindings[p.Position] = b
		}
		bp := &boundParam{param: p}

		switch p.Binding {
		case types.QueryArgument:
			arg, err := argumentFor(m, p, opts)
			if err != nil {
				return nil, nil, err
			}
			for _, visit := range opts.ArgumentVisitors {
				if err := visit(p, arg); err != nil {
					return nil, nil, err
				}
			}
			if seen[arg.Name] {
				return nil, nil, &errors.DuplicateArgumentError{Field: m.Name, Argument: arg.Name}
			}
			seen[arg.Name] = true
			bp.arg = arg
			args = append(args, arg)
		case types.FromValueConverter:
			bp.converter = opts.converter(p.GoType)
			if bp.converter == nil {
				return nil, nil, errors.Constructionf(ownerName(m.Owner), m.Name, "no value converter registered for %v", p.GoType)
			}
		}

		if p.FieldIndex == nil {
			b.single = bp
		} else {
			b.fields = append(b.fields, bp)
		}
	}

	for i, b := range bindings {
		if b != nil {
			continue
		}
		// an argument struct without bindable fields
		if t := paramType(i); derefType(t).Kind() == reflect.Struct {
			bindings[i] = &binding{goType: t}
			continue
		}
		return nil, nil, errors.Constructionf(ownerName(m.Owner), m.Name, "parameter %d is not bound", i)
	}
	return bindings, args, nil
}

func argumentFor(m *Member, p *Parameter, opts *Options) (*types.Argument, error) {
	arg := &types.Argument{
		Name:         p.Name,
		Description:  p.Description,
		DefaultValue: p.Default,
		HasDefault:   p.HasDefault,
		Binding:      types.QueryArgument,
	}
	if p.Override != nil {
		arg.Type = p.Override
		return arg, nil
	}
	t, err := describeWireType(p.GoType, m.Path()+"("+p.Name+")", p.Tag, opts)
	if err != nil {
		return nil, err
	}
	arg.Type = t
	return arg, nil
}
