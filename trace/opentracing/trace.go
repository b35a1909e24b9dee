package opentracing

import (
	"context"
	"fmt"

	opentracing "github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
	"github.com/opentracing/opentracing-go/log"

	"github.com/graph-gophers/typegraph/errors"
)

// Tracer implements the typegraph Tracer interface and creates OpenTracing spans.
type Tracer struct{}

func (Tracer) TraceField(ctx context.Context, label, typeName, fieldName string, trivial bool, args map[string]interface{}) (context.Context, func(*errors.QueryError)) {
	if trivial {
		return ctx, noop
	}

	span, spanCtx := opentracing.StartSpanFromContext(ctx, label)
	span.SetTag("graphql.type", typeName)
	span.SetTag("graphql.field", fieldName)
	for name, value := range args {
		span.SetTag("graphql.args."+name, value)
	}

	return spanCtx, func(err *errors.QueryError) {
		if err != nil {
			ext.Error.Set(span, true)
			span.SetTag("graphql.error", err.Error())
		}
		span.Finish()
	}
}

func (Tracer) TraceEntities(ctx context.Context, batch string, count int) (context.Context, func([]*errors.QueryError)) {
	span, spanCtx := opentracing.StartSpanFromContext(ctx, "GraphQL entities")
	span.SetTag("graphql.entities.batch", batch)
	span.LogFields(log.Int("graphql.entities.count", count))

	return spanCtx, func(errs []*errors.QueryError) {
		if len(errs) > 0 {
			msg := errs[0].Error()
			if len(errs) > 1 {
				msg += fmt.Sprintf(" (and %d more errors)", len(errs)-1)
			}
			ext.Error.Set(span, true)
			span.SetTag("graphql.error", msg)
		}
		span.Finish()
	}
}

func (Tracer) TraceEntity(ctx context.Context, batch string, typename string, index int) (context.Context, func(*errors.QueryError)) {
	span, spanCtx := opentracing.StartSpanFromContext(ctx, "GraphQL entity: "+typename)
	span.SetTag("graphql.entities.batch", batch)
	span.SetTag("graphql.entity.type", typename)
	span.SetTag("graphql.entity.index", index)

	return spanCtx, func(err *errors.QueryError) {
		if err != nil {
			ext.Error.Set(span, true)
			span.SetTag("graphql.error", err.Error())
		}
		span.Finish()
	}
}

func noop(*errors.QueryError) {}
