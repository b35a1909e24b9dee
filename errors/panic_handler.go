package errors

import (
	"context"
)

// PanicHandler is the interface used to create custom panic errors that occur
// while a resolver or a reference resolver runs.
type PanicHandler interface {
	MakePanicError(ctx context.Context, value interface{}) *QueryError
}

// DefaultPanicHandler is the default PanicHandler.
type DefaultPanicHandler struct{}

// MakePanicError creates a new QueryError from a recovered panic value.
func (h *DefaultPanicHandler) MakePanicError(ctx context.Context, value interface{}) *QueryError {
	return Errorf("panic occurred: %v", value)
}
