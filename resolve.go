package typegraph

import (
	"context"

	"github.com/graph-gophers/typegraph/errors"
	"github.com/graph-gophers/typegraph/types"
)

// ResolveField runs the resolver of typeName.fieldName for one source value.
// It is the hook an execution engine calls per selected field. Resolver
// errors and panics come back as a QueryError at the field path; they never
// affect other fields. A value produced next to an error is kept, e.g. the
// partial list of _entities.
func (s *Schema) ResolveField(ctx context.Context, typeName, fieldName string, source interface{}, args map[string]interface{}) (value interface{}, qErr *errors.QueryError) {
	parent, f, qErr := s.lookupField(typeName, fieldName)
	if qErr != nil {
		return nil, qErr
	}

	resolver := f.Resolver
	trivial := resolver == nil
	if trivial {
		resolver = types.NameResolver(fieldName)
	}

	traceCtx, finish := s.tracer.TraceField(ctx, typeName+"."+fieldName, typeName, fieldName, trivial, args)
	defer func() {
		finish(qErr)
	}()
	defer func() {
		if p := recover(); p != nil {
			s.logger.LogPanic(traceCtx, p)
			qErr = s.panicHandler.MakePanicError(traceCtx, p)
			qErr.Path = []interface{}{fieldName}
			value = nil
		}
	}()

	v, err := resolver.Resolve(s.resolveContext(traceCtx, parent, fieldName, source, args))
	if err != nil {
		return v, errors.Wrap(err, fieldName)
	}
	return v, nil
}

func (s *Schema) lookupField(typeName, fieldName string) (types.NamedType, *types.Field, *errors.QueryError) {
	if !s.built {
		return nil, nil, errors.Errorf("schema is not built")
	}
	t := s.types[typeName]
	c := complexOf(t)
	if c == nil || c.IsInput() {
		return nil, nil, errors.Errorf("%q is not an object or interface type", typeName)
	}
	f := c.GetField(fieldName)
	if f == nil {
		return nil, nil, errors.Errorf("cannot query field %q on type %q", fieldName, typeName)
	}
	return t, f, nil
}

func (s *Schema) resolveContext(ctx context.Context, parent types.NamedType, fieldName string, source interface{}, args map[string]interface{}) *types.ResolveContext {
	return &types.ResolveContext{
		Context:    ctx,
		Source:     source,
		Args:       args,
		ParentType: parent,
		FieldName:  fieldName,
		Services:   s.rootServices,
	}
}
