package autoreg

import (
	"fmt"
	"reflect"

	"github.com/graph-gophers/typegraph/errors"
	"github.com/graph-gophers/typegraph/internal/typeinfo"
	"github.com/graph-gophers/typegraph/services"
	"github.com/graph-gophers/typegraph/types"
)

// Synthesize builds the field of m with its resolver. A nil field and nil
// error mean a field visitor dropped the member.
func Synthesize(m *Member, opts *Options) (*types.Field, error) {
	opts = opts.orDefault()

	info, err := typeinfo.Describe(m.Result, m.typeOptions())
	if err != nil {
		return nil, err
	}
	t, err := info.Type(opts.Mapper)
	if err != nil {
		return nil, err
	}
	f := &types.Field{
		Name:              m.Name,
		Description:       m.Description,
		DeprecationReason: m.DeprecationReason,
		Type:              t,
	}

	if m.Kind == DataMember {
		if m.Stream {
			f.StreamResolver = &dataStream{member: m}
			f.Resolver = sourceResolver{}
		} else {
			f.Resolver = &dataResolver{member: m}
		}
	} else {
		inv, args, err := newInvoker(m, opts)
		if err != nil {
			return nil, err
		}
		f.Arguments = args
		if m.Stream {
			f.StreamResolver = &streamResolver{inv: inv}
			f.Resolver = sourceResolver{}
		} else {
			f.Resolver = &invokeResolver{inv: inv}
		}
	}

	keep, err := visitAll(opts, m, f)
	if err != nil || !keep {
		return nil, err
	}
	return f, nil
}

// BuildFieldResolver synthesizes the value resolver of m without field
// visitors. sourceType, when set, must be acceptable as the member owner.
func BuildFieldResolver(m *Member, sourceType reflect.Type, opts *Options) (types.Resolver, error) {
	if err := checkMember(m, sourceType); err != nil {
		return nil, err
	}
	if m.Kind == DataMember {
		return &dataResolver{member: m}, nil
	}
	inv, _, err := newInvoker(m, opts.orDefault())
	if err != nil {
		return nil, err
	}
	return &invokeResolver{inv: inv}, nil
}

func checkMember(m *Member, sourceType reflect.Type) error {
	switch m.Kind {
	case DataMember, Method, Func:
	default:
		return &errors.UnsupportedMemberKindError{Member: m.Path(), Kind: m.Kind.String()}
	}
	if sourceType != nil && m.Kind == DataMember && derefType(sourceType) != derefType(m.Owner) {
		return errors.Constructionf(ownerName(sourceType), m.Name, "source type %v does not declare %s", sourceType, m.Path())
	}
	return nil
}

func describeWireType(t reflect.Type, member, tag string, opts *Options) (types.Type, error) {
	info, err := typeinfo.Describe(t, typeinfo.Options{Member: member, Tag: tag})
	if err != nil {
		return nil, err
	}
	return info.Type(opts.Mapper)
}

// dataResolver reads a struct field of the source.
type dataResolver struct {
	member *Member
}

func (r *dataResolver) Resolve(rc *types.ResolveContext) (interface{}, error) {
	v, ok, err := r.field(rc.Source)
	if err != nil || !ok {
		return nil, err
	}
	return v.Interface(), nil
}

func (r *dataResolver) field(source interface{}) (reflect.Value, bool, error) {
	if source == nil {
		return reflect.Value{}, false, nil
	}
	v := reflect.ValueOf(source)
	for v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return reflect.Value{}, false, nil
		}
		v = v.Elem()
	}
	if v.Type() != r.member.Owner {
		return reflect.Value{}, false, fmt.Errorf("source of type %T has no field %s", source, r.member.Path())
	}
	f, err := v.FieldByIndexErr(r.member.Index)
	if err != nil {
		// nil embedded pointer
		return reflect.Value{}, false, nil
	}
	return f, true, nil
}

// sourceResolver returns the source itself. Stream fields use it so that
// every event becomes the value of the field.
type sourceResolver struct{}

func (sourceResolver) Resolve(rc *types.ResolveContext) (interface{}, error) {
	return rc.Source, nil
}

// invoker calls a method or function with its compiled bindings.
type invoker struct {
	member   *Member
	bindings []*binding
	// receiver is the receiver type of a method, nil otherwise.
	receiver reflect.Type
}

func newInvoker(m *Member, opts *Options) (*invoker, []*types.Argument, error) {
	inv := &invoker{member: m}
	var (
		numIn     int
		paramType func(int) reflect.Type
	)
	switch m.Kind {
	case Method:
		inv.receiver = m.Owner
		mt := methodType(m)
		first := mt.NumIn() - numParams(m, mt)
		numIn = mt.NumIn() - first
		paramType = func(i int) reflect.Type { return mt.In(i + first) }
	case Func:
		ft := m.Fn.Type()
		numIn = ft.NumIn()
		paramType = ft.In
	default:
		return nil, nil, &errors.UnsupportedMemberKindError{Member: m.Path(), Kind: m.Kind.String()}
	}

	bindings, args, err := compileBindings(m, opts, numIn, paramType)
	if err != nil {
		return nil, nil, err
	}
	inv.bindings = bindings
	return inv, args, nil
}

func methodType(m *Member) reflect.Type {
	return m.Owner.Method(m.MethodIndex).Type
}

// numParams counts the declared inputs without the receiver.
func numParams(m *Member, mt reflect.Type) int {
	if m.Owner.Kind() == reflect.Interface {
		return mt.NumIn()
	}
	return mt.NumIn() - 1
}

// call evaluates the bindings in parameter order and invokes the member. It
// returns the first result and the error result, if any.
func (inv *invoker) call(rc *types.ResolveContext) (reflect.Value, error) {
	in := make([]reflect.Value, len(inv.bindings))
	for i, b := range inv.bindings {
		v, err := b.value(rc)
		if err != nil {
			return reflect.Value{}, err
		}
		in[i] = v
	}

	var fn reflect.Value
	if inv.receiver != nil {
		recv, err := inv.receiverValue(rc)
		if err != nil {
			return reflect.Value{}, err
		}
		fn = recv.Method(inv.member.MethodIndex)
	} else {
		fn = inv.member.Fn
	}

	out := fn.Call(in)
	if inv.member.HasError && !out[1].IsNil() {
		return reflect.Value{}, out[1].Interface().(error)
	}
	return out[0], nil
}

// receiverValue returns the source as the receiver type, or an instance
// obtained from the services when the source is not compatible.
func (inv *invoker) receiverValue(rc *types.ResolveContext) (reflect.Value, error) {
	if rc.Source != nil {
		if v, ok := asReceiver(reflect.ValueOf(rc.Source), inv.receiver); ok {
			return v, nil
		}
	}
	svc, ok := services.Lookup(rc.Ctx(), rc.Services, inv.receiver)
	if ok {
		if v, ok := asReceiver(reflect.ValueOf(svc), inv.receiver); ok {
			return v, nil
		}
	}
	return reflect.Value{}, &errors.ServiceResolutionError{Capability: inv.receiver, Field: rc.Path()}
}

func asReceiver(v reflect.Value, recv reflect.Type) (reflect.Value, bool) {
	if v.Kind() == reflect.Ptr && v.IsNil() {
		return reflect.Value{}, false
	}
	if v.Type().AssignableTo(recv) {
		rv := reflect.New(recv).Elem()
		rv.Set(v)
		return rv, true
	}
	if recv.Kind() == reflect.Ptr && v.Type() == recv.Elem() {
		// copy the value so that pointer methods can be called
		p := reflect.New(v.Type())
		p.Elem().Set(v)
		return p, true
	}
	if v.Kind() == reflect.Ptr && v.Type().Elem() == recv {
		return v.Elem(), true
	}
	return reflect.Value{}, false
}

// invokeResolver is the resolver of methods and functions. Thunk results are
// awaited with cancellation.
type invokeResolver struct {
	inv *invoker
}

func (r *invokeResolver) Async() bool { return r.inv.member.Async }

func (r *invokeResolver) Resolve(rc *types.ResolveContext) (interface{}, error) {
	out, err := r.inv.call(rc)
	if err != nil {
		return nil, err
	}
	if !r.inv.member.Async {
		return valueOf(out), nil
	}
	return await(rc, out)
}

type completion struct {
	value interface{}
	err   error
}

// await runs a thunk and waits for it or for the request to be cancelled.
func await(rc *types.ResolveContext, thunk reflect.Value) (interface{}, error) {
	if thunk.IsNil() {
		return nil, nil
	}
	done := make(chan completion, 1)
	go func() {
		var c completion
		defer func() {
			if p := recover(); p != nil {
				c.err = fmt.Errorf("panic in %s: %v", rc.Path(), p)
			}
			done <- c
		}()
		out := thunk.Call(nil)
		if len(out) == 2 && !out[1].IsNil() {
			c.err = out[1].Interface().(error)
			return
		}
		c.value = valueOf(out[0])
	}()

	ctx := rc.Ctx()
	select {
	case c := <-done:
		return c.value, c.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// valueOf unwraps a result, turning typed nils into nil.
func valueOf(v reflect.Value) interface{} {
	if !v.IsValid() {
		return nil
	}
	switch v.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		if v.IsNil() {
			return nil
		}
	}
	return v.Interface()
}
