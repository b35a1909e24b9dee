package otel

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/graph-gophers/typegraph/errors"
	"github.com/graph-gophers/typegraph/trace/tracer"
)

// DefaultTracer creates a tracer using a default name.
func DefaultTracer() *Tracer {
	return &Tracer{
		Tracer: otel.Tracer("typegraph"),
	}
}

// Tracer is an OpenTelemetry implementation for typegraph. Set the Tracer
// property to your tracer instance as required.
type Tracer struct {
	Tracer oteltrace.Tracer
}

var _ tracer.Tracer = (*Tracer)(nil)

func (t *Tracer) TraceField(ctx context.Context, label, typeName, fieldName string, trivial bool, args map[string]interface{}) (context.Context, func(*errors.QueryError)) {
	if trivial {
		return ctx, func(*errors.QueryError) {}
	}

	var attributes []attribute.KeyValue

	spanCtx, span := t.Tracer.Start(ctx, fmt.Sprintf("Field: %v", label))
	attributes = append(attributes, attribute.String("graphql.type", typeName))
	attributes = append(attributes, attribute.String("graphql.field", fieldName))
	for name, value := range args {
		attributes = append(attributes, attribute.String("graphql.args."+name, fmt.Sprintf("%v", value)))
	}
	span.SetAttributes(attributes...)

	return spanCtx, func(err *errors.QueryError) {
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}
}

func (t *Tracer) TraceEntities(ctx context.Context, batch string, count int) (context.Context, func([]*errors.QueryError)) {
	spanCtx, span := t.Tracer.Start(ctx, "GraphQL Entities")
	span.SetAttributes(
		attribute.String("graphql.entities.batch", batch),
		attribute.Int("graphql.entities.count", count),
	)

	return spanCtx, func(errs []*errors.QueryError) {
		if len(errs) > 0 {
			msg := errs[0].Error()
			if len(errs) > 1 {
				msg += fmt.Sprintf(" (and %d more errors)", len(errs)-1)
			}
			span.SetStatus(codes.Error, msg)
		}
		span.End()
	}
}

func (t *Tracer) TraceEntity(ctx context.Context, batch string, typename string, index int) (context.Context, func(*errors.QueryError)) {
	spanCtx, span := t.Tracer.Start(ctx, "Entity: "+typename)
	span.SetAttributes(
		attribute.String("graphql.entities.batch", batch),
		attribute.String("graphql.entity.type", typename),
		attribute.Int("graphql.entity.index", index),
	)

	return spanCtx, func(err *errors.QueryError) {
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}
}
