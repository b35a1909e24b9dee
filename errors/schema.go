package errors

import (
	"fmt"
	"reflect"
	"strings"
)

// SchemaConstructionError reports a structural problem found while a type
// graph is being built. It is always fatal: the schema must not be served.
type SchemaConstructionError struct {
	Type   string
	Field  string
	Reason string
}

func (e *SchemaConstructionError) Error() string {
	switch {
	case e.Type != "" && e.Field != "":
		return fmt.Sprintf("typegraph: %s.%s: %s", e.Type, e.Field, e.Reason)
	case e.Type != "":
		return fmt.Sprintf("typegraph: %s: %s", e.Type, e.Reason)
	}
	return "typegraph: " + e.Reason
}

// Constructionf builds a SchemaConstructionError for typeName.fieldName.
func Constructionf(typeName, fieldName, format string, a ...interface{}) *SchemaConstructionError {
	return &SchemaConstructionError{Type: typeName, Field: fieldName, Reason: fmt.Sprintf(format, a...)}
}

// TypeMappingError reports a Go type that cannot be expressed as a wire type.
type TypeMappingError struct {
	Member string
	GoType reflect.Type
	Reason string
}

func (e *TypeMappingError) Error() string {
	msg := fmt.Sprintf("typegraph: cannot map %v of member %q to a graph type", e.GoType, e.Member)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

// CloneNotSupportedError is returned when a registry holding an already
// resolved field type is used as a clone template.
type CloneNotSupportedError struct {
	Type  string
	Field string
}

func (e *CloneNotSupportedError) Error() string {
	return fmt.Sprintf("typegraph: cannot clone field %q of %q when its resolved type is set", e.Field, e.Type)
}

// UnsupportedMemberKindError is returned for members that are neither data
// accessors nor invokable.
type UnsupportedMemberKindError struct {
	Member string
	Kind   string
}

func (e *UnsupportedMemberKindError) Error() string {
	return fmt.Sprintf("typegraph: member %q of kind %s must be a field, a method or a func", e.Member, e.Kind)
}

// DuplicateArgumentError is returned when two generated arguments of one
// field share a name.
type DuplicateArgumentError struct {
	Field    string
	Argument string
}

func (e *DuplicateArgumentError) Error() string {
	return fmt.Sprintf("typegraph: argument %q is declared more than once on field %q", e.Argument, e.Field)
}

// ServiceResolutionError is a request-time failure to obtain an injected
// capability. It is surfaced as a field error.
type ServiceResolutionError struct {
	Capability reflect.Type
	Field      string
}

func (e *ServiceResolutionError) Error() string {
	return fmt.Sprintf("could not resolve an instance of %v to execute %s", e.Capability, e.Field)
}

// UnknownTypeError is the entity resolution failure for a __typename that
// names neither an object nor an interface of the schema.
type UnknownTypeError struct {
	Typename string
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("unknown entity type %q", e.Typename)
}

// InvalidKeyError is the entity resolution failure for a representation whose
// fields do not cover any resolvable key of the matched type.
type InvalidKeyError struct {
	Typename string
	Provided []string
	Keys     []string
}

func (e *InvalidKeyError) Error() string {
	return fmt.Sprintf("representation of %q with fields [%s] matches none of its resolvable keys [%s]",
		e.Typename, strings.Join(e.Provided, ", "), strings.Join(e.Keys, "; "))
}

// InvalidRepresentationError is returned for representations that are not
// objects or lack a __typename.
type InvalidRepresentationError struct {
	Index  int
	Reason string
}

func (e *InvalidRepresentationError) Error() string {
	return fmt.Sprintf("invalid representation at index %d: %s", e.Index, e.Reason)
}
