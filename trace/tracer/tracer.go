// The tracer package provides tracing functionality.
package tracer

import (
	"context"

	"github.com/graph-gophers/typegraph/errors"
)

type BatchFinishFunc = func([]*errors.QueryError)
type FieldFinishFunc = func(*errors.QueryError)
type EntityFinishFunc = func(*errors.QueryError)

// Tracer observes field resolution and entity resolution.
type Tracer interface {
	TraceField(ctx context.Context, label, typeName, fieldName string, trivial bool, args map[string]interface{}) (context.Context, FieldFinishFunc)
	TraceEntities(ctx context.Context, batch string, count int) (context.Context, BatchFinishFunc)
	TraceEntity(ctx context.Context, batch string, typename string, index int) (context.Context, EntityFinishFunc)
}
