package typegraph

import (
	"context"

	"github.com/graph-gophers/typegraph/errors"
)

// Subscribe opens the source stream of a stream field. Every event is then
// resolved as the source of the field's selection, see ResolveField. If the
// context gets cancelled, the channel is closed and no further events are
// delivered.
func (s *Schema) Subscribe(ctx context.Context, typeName, fieldName string, source interface{}, args map[string]interface{}) (events <-chan interface{}, qErr *errors.QueryError) {
	parent, f, qErr := s.lookupField(typeName, fieldName)
	if qErr != nil {
		return nil, qErr
	}
	if f.StreamResolver == nil {
		return nil, errors.Errorf("%s: %s.%s", "subscription unavailable for field", typeName, fieldName)
	}

	traceCtx, finish := s.tracer.TraceField(ctx, "subscribe "+typeName+"."+fieldName, typeName, fieldName, false, args)
	defer func() {
		finish(qErr)
	}()
	defer func() {
		if p := recover(); p != nil {
			s.logger.LogPanic(traceCtx, p)
			qErr = s.panicHandler.MakePanicError(traceCtx, p)
			qErr.Path = []interface{}{fieldName}
			events = nil
		}
	}()

	// the stream outlives the setup span
	ch, err := f.StreamResolver.Subscribe(s.resolveContext(ctx, parent, fieldName, source, args))
	if err != nil {
		return nil, errors.Wrap(err, fieldName)
	}
	return ch, nil
}
