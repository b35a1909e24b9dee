package errors

import (
	"fmt"
)

// QueryError is a request-time diagnostic attached to one field or one entity
// representation. It never aborts sibling units of work.
type QueryError struct {
	Err           error                  `json:"-"` // Err holds underlying if available
	Message       string                 `json:"message"`
	Path          []interface{}          `json:"path,omitempty"`
	Rule          string                 `json:"-"`
	ResolverError error                  `json:"-"`
	Extensions    map[string]interface{} `json:"extensions,omitempty"`
}

// Errorf formats a QueryError. The first error found in a is kept as the
// wrapped error so that errors.Is and errors.As see through it.
func Errorf(format string, a ...interface{}) *QueryError {
	// similar to fmt.Errorf, Errorf will wrap the last argument if it is an instance of error
	var err error
	if n := len(a); n > 0 {
		if v, ok := a[n-1].(error); ok {
			err = v
		}
	}

	return &QueryError{
		Err:     err,
		Message: fmt.Sprintf(format, a...),
	}
}

// Wrap turns a resolver error into a QueryError at the given path, keeping
// extensions the error may carry.
func Wrap(err error, path ...interface{}) *QueryError {
	if err == nil {
		return nil
	}
	if qe, ok := err.(*QueryError); ok {
		if qe.Path != nil {
			return qe
		}
		cp := *qe
		cp.Path = path
		return &cp
	}
	qe := Errorf("%s", err)
	qe.ResolverError = err
	qe.Path = path
	if ex, ok := err.(extensionser); ok {
		qe.Extensions = ex.Extensions()
	}
	return qe
}

type extensionser interface {
	Extensions() map[string]interface{}
}

func (err *QueryError) Error() string {
	if err == nil {
		return "<nil>"
	}
	return fmt.Sprintf("graphql: %s", err.Message)
}

func (err *QueryError) Unwrap() error {
	if err == nil {
		return nil
	}
	return err.Err
}

var _ error = &QueryError{}
