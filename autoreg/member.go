// Package autoreg turns Go types, methods and functions into fields with
// synthesized resolvers.
//
// Registration runs in two phases. The describe phase produces plain Member
// and Parameter descriptors, either by reflection (DescribeType) or explicitly
// (FuncMember). The synthesize phase turns a Member into a *types.Field whose
// resolver is a closure built once and invoked for every request.
package autoreg

import (
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/graph-gophers/typegraph/errors"
	"github.com/graph-gophers/typegraph/internal/common"
	"github.com/graph-gophers/typegraph/internal/typeinfo"
	"github.com/graph-gophers/typegraph/types"
)

// MemberKind tells how a member produces its value.
type MemberKind int

const (
	// DataMember reads a struct field.
	DataMember MemberKind = iota
	// Method invokes a method on the source or on a service instance.
	Method
	// Func invokes a free function value.
	Func
)

func (k MemberKind) String() string {
	switch k {
	case DataMember:
		return "DataMember"
	case Method:
		return "Method"
	case Func:
		return "Func"
	}
	return fmt.Sprintf("MemberKind(%d)", int(k))
}

// Member is the phase-one description of one field.
type Member struct {
	// Name is the exposed field name.
	Name   string
	GoName string
	Kind   MemberKind

	// Owner is the type that declares the member: the struct type for data
	// members, the receiver type for methods, nil for funcs.
	Owner reflect.Type
	// Index is the struct field index of a data member.
	Index []int
	// Fn is the function value of a Func member. For methods it is the
	// method expression taking the receiver first.
	Fn reflect.Value
	// MethodIndex is the index of a method in Owner's method set.
	MethodIndex int

	Params []*Parameter

	// Result is the declared Go result without the trailing error.
	Result   reflect.Type
	HasError bool
	Async    bool
	Stream   bool

	Tag               reflect.StructTag
	Description       string
	DeprecationReason string

	// Override, when set, replaces the derived field type.
	Override types.Type
	// NonNull forces the nullability of the field type.
	NonNull *bool
}

// Path renders Owner.GoName for diagnostics.
func (m *Member) Path() string {
	if m.Owner != nil {
		return derefType(m.Owner).Name() + "." + m.GoName
	}
	return m.GoName
}

func (m *Member) typeOptions() typeinfo.Options {
	return typeinfo.Options{
		Member:   m.Path(),
		Override: m.Override,
		NonNull:  m.NonNull,
		Tag:      m.Tag.Get("graphql"),
	}
}

// Parameter is the phase-one description of one resolver input.
type Parameter struct {
	Name    string
	GoType  reflect.Type
	Binding types.BindingKind
	Default interface{}
	// HasDefault distinguishes an explicit nil default from no default.
	HasDefault  bool
	Description string
	Override    types.Type
	Tag         string

	// Position is the index of the call argument the parameter feeds.
	Position int
	// FieldIndex is set when the parameter is a field of an argument struct
	// passed at Position.
	FieldIndex []int
}

// Param describes a parameter of an explicitly described function.
type Param struct {
	Name       string
	Binding    types.BindingKind
	Default    interface{}
	HasDefault bool
	Override   types.Type
}

// Arg declares a query argument.
func Arg(name string) Param { return Param{Name: name, Binding: types.QueryArgument} }

// ArgDefault declares a query argument with a default value.
func ArgDefault(name string, def interface{}) Param {
	return Param{Name: name, Binding: types.QueryArgument, Default: def, HasDefault: true}
}

// Source declares a parameter bound to the resolution source.
func Source() Param { return Param{Binding: types.FromSource} }

// Service declares a parameter bound to a service instance.
func Service() Param { return Param{Binding: types.FromService} }

// Converted declares a parameter computed by a registered ValueConverter.
func Converted() Param { return Param{Binding: types.FromValueConverter} }

// FuncMember describes fn as the member name. Context parameters are detected by
// type; every other parameter is described by params, in order.
func FuncMember(name string, fn interface{}, params ...Param) (*Member, error) {
	fv := reflect.ValueOf(fn)
	if fv.Kind() != reflect.Func || fv.IsNil() {
		return nil, &errors.UnsupportedMemberKindError{Member: name, Kind: kindOf(fv)}
	}
	ft := fv.Type()
	m := &Member{Name: name, GoName: name, Kind: Func, Fn: fv}
	if err := m.describeResults(ft); err != nil {
		return nil, err
	}

	next := 0
	for i := 0; i < ft.NumIn(); i++ {
		in := ft.In(i)
		if in == contextType || in == resolveContextType {
			m.Params = append(m.Params, &Parameter{Name: in.String(), GoType: in, Binding: types.FromContext, Position: i})
			continue
		}
		if next >= len(params) {
			return nil, errors.Constructionf("", name, "parameter %d of type %v is not described", i, in)
		}
		p := params[next]
		next++
		param := &Parameter{
			Name:       p.Name,
			GoType:     in,
			Binding:    p.Binding,
			Default:    p.Default,
			HasDefault: p.HasDefault,
			Override:   p.Override,
			Position:   i,
		}
		if param.Binding == types.QueryArgument && param.Name == "" {
			return nil, errors.Constructionf("", name, "query argument %d has no name", i)
		}
		if param.Name == "" {
			param.Name = in.String()
		}
		m.Params = append(m.Params, param)
	}
	if next != len(params) {
		return nil, errors.Constructionf("", name, "%d parameters described but only %d can be bound", len(params), next)
	}
	return m, nil
}

// describeResults validates the result shape of a method or function type and
// records it. Accepted: T, (T, error), func() T, func() (T, error), <-chan T,
// each optionally followed by an error.
func (m *Member) describeResults(ft reflect.Type) error {
	switch ft.NumOut() {
	case 1:
		m.Result = ft.Out(0)
	case 2:
		if ft.Out(1) != errorType {
			return errors.Constructionf(ownerName(m.Owner), m.Name, `must have "error" as its second return value`)
		}
		m.Result = ft.Out(0)
		m.HasError = true
	default:
		return errors.Constructionf(ownerName(m.Owner), m.Name, "must return a value and optionally an error, got %d results", ft.NumOut())
	}
	if m.Result == errorType {
		return errors.Constructionf(ownerName(m.Owner), m.Name, "must return a value, not only an error")
	}

	if m.Result.Kind() == reflect.Chan {
		m.Stream = true
	} else if _, ok := typeinfo.ThunkResult(m.Result); ok {
		m.Async = true
	}
	return nil
}

// scan is the raw, option independent member list of a Go type.
type scan struct {
	fields  []reflect.StructField
	methods []reflect.Method
}

var scanCache common.Cache[reflect.Type, *scan]

func scanType(t reflect.Type) *scan {
	return scanCache.GetOrElseUpdate(t, func() *scan {
		s := &scan{}
		base := derefType(t)
		if base.Kind() == reflect.Struct {
			for _, sf := range reflect.VisibleFields(base) {
				if !sf.IsExported() || sf.Anonymous {
					continue
				}
				s.fields = append(s.fields, sf)
			}
		}
		mt := t
		if t.Kind() == reflect.Struct {
			mt = reflect.PtrTo(t)
		}
		for i := 0; i < mt.NumMethod(); i++ {
			s.methods = append(s.methods, mt.Method(i))
		}
		return s
	})
}

// DescribeType lists the members of t. Struct fields become data members
// unless skipped with graphql:"-"; exported methods with results become
// method members when withMethods is set.
func DescribeType(t reflect.Type, opts *Options, withMethods bool) ([]*Member, error) {
	opts = opts.orDefault()
	s := scanType(t)

	var members []*Member
	if opts.UseFieldResolvers || !withMethods {
		for _, sf := range s.fields {
			m, ok := describeField(derefType(t), sf)
			if ok {
				members = append(members, m)
			}
		}
	}
	if !withMethods {
		return members, nil
	}

	owner := t
	if t.Kind() == reflect.Struct {
		owner = reflect.PtrTo(t)
	}
	for _, method := range s.methods {
		if !producesValue(method.Type) || opts.ignoresMethod(method.Name) {
			continue
		}
		m, err := describeMethod(owner, method, opts)
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, nil
}

func describeField(owner reflect.Type, sf reflect.StructField) (*Member, bool) {
	tag := sf.Tag.Get("graphql")
	if tag == "-" {
		return nil, false
	}
	name := strings.Split(tag, ",")[0]
	if name == "" {
		name = lowerFirst(sf.Name)
	}
	return &Member{
		Name:   name,
		GoName: sf.Name,
		Kind:   DataMember,
		Owner:  owner,
		Index:  sf.Index,
		Result: sf.Type,
		Stream: sf.Type.Kind() == reflect.Chan,
		Tag:    sf.Tag,
	}, true
}

func describeMethod(owner reflect.Type, method reflect.Method, opts *Options) (*Member, error) {
	m := &Member{
		GoName:      method.Name,
		Kind:        Method,
		Owner:       owner,
		MethodIndex: method.Index,
		Fn:          method.Func,
	}
	m.Name = lowerFirst(method.Name)

	mt := method.Type
	first := 0
	if owner.Kind() != reflect.Interface {
		// receiver
		first = 1
	}
	if err := m.describeResults(mt); err != nil {
		return nil, err
	}
	if m.Async && len(method.Name) > len(asyncSuffix) && strings.HasSuffix(method.Name, asyncSuffix) {
		m.Name = lowerFirst(strings.TrimSuffix(method.Name, asyncSuffix))
	}

	for i := first; i < mt.NumIn(); i++ {
		params, err := classify(m, mt.In(i), i-first, opts)
		if err != nil {
			return nil, err
		}
		m.Params = append(m.Params, params...)
	}
	return m, nil
}

const asyncSuffix = "Async"

func producesValue(ft reflect.Type) bool {
	switch ft.NumOut() {
	case 0:
		return false
	case 1:
		return ft.Out(0) != errorType
	}
	return true
}

// lowerFirst lower-cases the leading capital run of a Go name, keeping the
// last capital of an acronym that starts the next word: ID -> id,
// HTMLBody -> htmlBody, Title -> title.
func lowerFirst(s string) string {
	runes := []rune(s)
	n := 0
	for n < len(runes) && unicode.IsUpper(runes[n]) {
		n++
	}
	switch {
	case n == 0:
		return s
	case n == len(runes):
		return strings.ToLower(s)
	case n > 1:
		n--
	}
	for i := 0; i < n; i++ {
		runes[i] = unicode.ToLower(runes[i])
	}
	return string(runes)
}

func derefType(t reflect.Type) reflect.Type {
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t
}

func ownerName(t reflect.Type) string {
	if t == nil {
		return ""
	}
	return derefType(t).Name()
}

func kindOf(v reflect.Value) string {
	if !v.IsValid() {
		return "invalid"
	}
	if v.Kind() == reflect.Func {
		return "nil func"
	}
	return v.Kind().String()
}
