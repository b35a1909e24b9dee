package federation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/segmentio/ksuid"

	"github.com/graph-gophers/typegraph/errors"
	"github.com/graph-gophers/typegraph/log"
	"github.com/graph-gophers/typegraph/trace/noop"
	"github.com/graph-gophers/typegraph/trace/tracer"
	"github.com/graph-gophers/typegraph/types"
)

// DefaultMaxParallelism bounds the representations resolved at once when
// the dispatcher does not set its own limit.
const DefaultMaxParallelism = 10

// EntityResult is the outcome of one representation. Value is nil when the
// entity could not be resolved; Err then explains why, unless the reference
// resolver reported that the entity does not exist.
type EntityResult struct {
	Value interface{}
	// Type is the concrete object type of Value. It governs the selection
	// of the entity's fields and may differ from the requested typename.
	Type *types.Object
	Err  *errors.QueryError
}

// TypeLookup finds schema types by name.
type TypeLookup interface {
	Type(name string) types.NamedType
}

// Dispatcher resolves representations against a Registry.
type Dispatcher struct {
	Types    TypeLookup
	Registry *Registry

	Logger       log.Logger
	Tracer       tracer.Tracer
	PanicHandler errors.PanicHandler

	// MaxParallelism bounds the representations resolved concurrently.
	MaxParallelism int
	// Timeout bounds a whole batch when positive.
	Timeout time.Duration
}

// ResolveEntities resolves every representation independently. The result
// has the length and the order of reps. Once ctx is done, representations
// that have not started fail with the context error.
func (d *Dispatcher) ResolveEntities(ctx context.Context, reps []Representation) []EntityResult {
	results := make([]EntityResult, len(reps))
	if len(reps) == 0 {
		return results
	}

	batch := ksuid.New().String()
	ctx, finish := d.tracer().TraceEntities(ctx, batch, len(reps))
	if d.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.Timeout)
		defer cancel()
	}

	parallelism := d.MaxParallelism
	if parallelism <= 0 {
		parallelism = DefaultMaxParallelism
	}
	limiter := make(chan struct{}, parallelism)

	var wg sync.WaitGroup
	for i := range reps {
		select {
		case limiter <- struct{}{}:
		case <-ctx.Done():
			results[i] = d.fail(ctx, batch, i, reps[i].Typename, ctx.Err())
			continue
		}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer func() { <-limiter }()
			results[i] = d.resolveOne(ctx, batch, i, reps[i])
		}(i)
	}
	wg.Wait()

	var errs []*errors.QueryError
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, r.Err)
		}
	}
	finish(errs)
	return results
}

func (d *Dispatcher) resolveOne(ctx context.Context, batch string, index int, rep Representation) (res EntityResult) {
	ctx, finish := d.tracer().TraceEntity(ctx, batch, rep.Typename, index)
	defer func() { finish(res.Err) }()

	defer func() {
		if value := recover(); value != nil {
			d.logger().LogPanic(ctx, value)
			qe := d.panicHandler().MakePanicError(ctx, value)
			qe.Path = entityPath(index)
			res = EntityResult{Err: qe}
		}
	}()

	if err := ctx.Err(); err != nil {
		return d.fail(ctx, batch, index, rep.Typename, err)
	}
	if rep.Typename == "" {
		return d.fail(ctx, batch, index, "", &errors.InvalidRepresentationError{Index: index, Reason: "missing " + typenameField})
	}

	var (
		value interface{}
		obj   *types.Object
		err   error
	)
	switch t := d.lookup(rep.Typename).(type) {
	case *types.Object:
		value, obj, err = d.resolveObject(ctx, t, rep)
	case *types.Interface:
		value, obj, err = d.resolveInterface(ctx, t, rep)
	default:
		err = &errors.UnknownTypeError{Typename: rep.Typename}
	}
	if err != nil {
		return d.fail(ctx, batch, index, rep.Typename, err)
	}
	if value == nil {
		return EntityResult{}
	}
	return EntityResult{Value: value, Type: obj}
}

func (d *Dispatcher) resolveObject(ctx context.Context, obj *types.Object, rep Representation) (interface{}, *types.Object, error) {
	keys := d.Registry.Keys(obj.Name)
	if _, ok := matchKey(keys, rep.Fields); !ok {
		return nil, nil, invalidKey(rep, keys)
	}
	rr, ok := d.Registry.Resolver(obj.Name)
	if !ok {
		return nil, nil, fmt.Errorf("no reference resolver registered for %q", obj.Name)
	}
	v, err := rr.ResolveReference(ctx, rep)
	v = nilIfTyped(v)
	if err != nil || v == nil {
		return nil, nil, err
	}
	if (obj.IsTypeOf != nil || obj.GoType != nil) && !obj.Matches(v) {
		return nil, nil, fmt.Errorf("reference resolver of %q returned %T", obj.Name, v)
	}
	return v, obj, nil
}

// resolveInterface uses the interface's own reference resolver when one is
// registered. Otherwise the implementing entity types whose keys match are
// tried in declaration order and the first non-null result wins.
func (d *Dispatcher) resolveInterface(ctx context.Context, iface *types.Interface, rep Representation) (interface{}, *types.Object, error) {
	if rr, ok := d.Registry.Resolver(iface.Name); ok {
		keys := d.Registry.Keys(iface.Name)
		if _, ok := matchKey(keys, rep.Fields); !ok {
			return nil, nil, invalidKey(rep, keys)
		}
		v, err := rr.ResolveReference(ctx, rep)
		v = nilIfTyped(v)
		if err != nil || v == nil {
			return nil, nil, err
		}
		obj := iface.ConcreteType(v)
		if obj == nil {
			return nil, nil, fmt.Errorf("reference resolver of %q returned %T, which does not implement it", iface.Name, v)
		}
		return v, obj, nil
	}

	var (
		allKeys []*Key
		lastErr error
		tried   bool
	)
	for _, pt := range iface.PossibleTypes {
		keys := d.Registry.Keys(pt.Name)
		allKeys = append(allKeys, keys...)
		rr, ok := d.Registry.Resolver(pt.Name)
		if !ok {
			continue
		}
		if _, ok := matchKey(keys, rep.Fields); !ok {
			continue
		}
		tried = true
		v, err := rr.ResolveReference(ctx, rep)
		if err != nil {
			lastErr = err
			continue
		}
		if v = nilIfTyped(v); v == nil {
			continue
		}
		if obj := iface.ConcreteType(v); obj != nil {
			return v, obj, nil
		}
		if pt.IsTypeOf == nil && pt.GoType == nil {
			return v, pt, nil
		}
		lastErr = fmt.Errorf("reference resolver of %q returned %T, which does not implement %q", pt.Name, v, iface.Name)
	}
	if !tried {
		return nil, nil, invalidKey(rep, append(d.Registry.Keys(iface.Name), allKeys...))
	}
	return nil, nil, lastErr
}

func (d *Dispatcher) fail(ctx context.Context, batch string, index int, typename string, err error) EntityResult {
	if el, ok := d.logger().(log.EntityLogger); ok {
		el.LogEntityFailure(ctx, batch, index, typename, err)
	}
	return EntityResult{Err: errors.Wrap(err, entityPath(index)...)}
}

func invalidKey(rep Representation, keys []*Key) error {
	return &errors.InvalidKeyError{
		Typename: rep.Typename,
		Provided: fieldNames(rep.Fields),
		Keys:     resolvableKeys(keys),
	}
}

func entityPath(index int) []interface{} {
	return []interface{}{"_entities", index}
}

func (d *Dispatcher) lookup(name string) types.NamedType {
	if d.Types == nil {
		return nil
	}
	return d.Types.Type(name)
}

func (d *Dispatcher) tracer() tracer.Tracer {
	if d.Tracer == nil {
		return noop.Tracer{}
	}
	return d.Tracer
}

func (d *Dispatcher) logger() log.Logger {
	if d.Logger == nil {
		return defaultLogger
	}
	return d.Logger
}

func (d *Dispatcher) panicHandler() errors.PanicHandler {
	if d.PanicHandler == nil {
		return &errors.DefaultPanicHandler{}
	}
	return d.PanicHandler
}

var defaultLogger = &log.DefaultLogger{}
