// Package noop defines a no-op tracer implementation.
package noop

import (
	"context"

	"github.com/graph-gophers/typegraph/errors"
	"github.com/graph-gophers/typegraph/trace/tracer"
)

// Tracer is a no-op tracer that does nothing.
type Tracer struct{}

func (Tracer) TraceField(ctx context.Context, label, typeName, fieldName string, trivial bool, args map[string]interface{}) (context.Context, tracer.FieldFinishFunc) {
	return ctx, func(*errors.QueryError) {}
}

func (Tracer) TraceEntities(ctx context.Context, batch string, count int) (context.Context, tracer.BatchFinishFunc) {
	return ctx, func([]*errors.QueryError) {}
}

func (Tracer) TraceEntity(ctx context.Context, batch string, typename string, index int) (context.Context, tracer.EntityFinishFunc) {
	return ctx, func(*errors.QueryError) {}
}
