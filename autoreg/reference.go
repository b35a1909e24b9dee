package autoreg

import (
	"context"
	"reflect"

	"github.com/graph-gophers/typegraph/errors"
	"github.com/graph-gophers/typegraph/federation"
	"github.com/graph-gophers/typegraph/services"
	"github.com/graph-gophers/typegraph/types"
)

// BuildReferenceResolver turns fn into a reference resolver. The
// representation fields act as the query arguments of fn: an argument struct
// receives the key fields by name, context parameters receive the request
// context, a federation.Representation parameter receives the whole
// representation and interface parameters are looked up in the request scope
// and then in root. Explicit params describe the parameters instead, as for
// FuncMember.
func BuildReferenceResolver(fn interface{}, root services.Provider, opts *Options, params ...Param) (federation.ReferenceResolver, error) {
	opts = opts.orDefault()

	var (
		m   *Member
		err error
	)
	if len(params) > 0 {
		m, err = FuncMember("resolveReference", fn, params...)
	} else {
		m, err = describeFunc("resolveReference", fn, opts)
	}
	if err != nil {
		return nil, err
	}
	if m.Stream {
		return nil, errors.Constructionf("", m.Name, "a reference resolver cannot return a channel")
	}
	inv, _, err := newInvoker(m, opts)
	if err != nil {
		return nil, err
	}
	r := &invokeResolver{inv: inv}

	return federation.ReferenceResolverFunc(func(ctx context.Context, rep federation.Representation) (interface{}, error) {
		return r.Resolve(&types.ResolveContext{
			Context:   ctx,
			Source:    rep,
			Args:      rep.Fields,
			FieldName: "_entities",
			Services:  root,
		})
	}), nil
}

var representationType = reflect.TypeOf(federation.Representation{})

// describeFunc classifies the parameters of fn by convention.
func describeFunc(name string, fn interface{}, opts *Options) (*Member, error) {
	fv := reflect.ValueOf(fn)
	if fv.Kind() != reflect.Func || fv.IsNil() {
		return nil, &errors.UnsupportedMemberKindError{Member: name, Kind: kindOf(fv)}
	}
	m := &Member{Name: name, GoName: name, Kind: Func, Fn: fv}
	ft := fv.Type()
	if err := m.describeResults(ft); err != nil {
		return nil, err
	}
	for i := 0; i < ft.NumIn(); i++ {
		if ft.In(i) == representationType {
			m.Params = append(m.Params, &Parameter{Name: "representation", GoType: representationType, Binding: types.FromSource, Position: i})
			continue
		}
		params, err := classify(m, ft.In(i), i, opts)
		if err != nil {
			return nil, err
		}
		m.Params = append(m.Params, params...)
	}
	return m, nil
}
