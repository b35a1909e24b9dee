// Package services is a minimal service locator used by synthesized resolvers.
//
// Resolvers look a capability up in the request scope carried by the context
// first and fall back to the process-wide root provider.
package services

import (
	"context"
	"reflect"
)

// Provider resolves an instance of a capability type.
type Provider interface {
	Service(t reflect.Type) (interface{}, bool)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(t reflect.Type) (interface{}, bool)

func (f ProviderFunc) Service(t reflect.Type) (interface{}, bool) {
	return f(t)
}

// Collection is a Provider backed by a map. It is filled before use and
// read-only afterwards.
type Collection map[reflect.Type]interface{}

// Service returns the instance registered for t. When t is an interface and no
// exact entry exists, the first registered instance implementing it is used.
func (c Collection) Service(t reflect.Type) (interface{}, bool) {
	if v, ok := c[t]; ok {
		return v, true
	}
	if t.Kind() != reflect.Interface {
		return nil, false
	}
	for rt, v := range c {
		if rt.Implements(t) {
			return v, true
		}
	}
	return nil, false
}

// Add registers v under the type T.
func Add[T any](c Collection, v T) {
	c[reflect.TypeOf((*T)(nil)).Elem()] = v
}

type scopeKeyType int

const scopeKey scopeKeyType = iota

// WithRequestScope attaches a request-scoped provider to ctx.
func WithRequestScope(ctx context.Context, p Provider) context.Context {
	return context.WithValue(ctx, scopeKey, p)
}

// RequestScope returns the provider attached by WithRequestScope.
func RequestScope(ctx context.Context) (Provider, bool) {
	if ctx == nil {
		return nil, false
	}
	p, ok := ctx.Value(scopeKey).(Provider)
	return p, ok && p != nil
}

// Lookup resolves t from the request scope of ctx, then from root.
func Lookup(ctx context.Context, root Provider, t reflect.Type) (interface{}, bool) {
	if p, ok := RequestScope(ctx); ok {
		if v, ok := p.Service(t); ok && v != nil {
			return v, true
		}
	}
	if root != nil {
		if v, ok := root.Service(t); ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

// Get is the typed form of Lookup.
func Get[T any](ctx context.Context, root Provider) (T, bool) {
	var zero T
	v, ok := Lookup(ctx, root, reflect.TypeOf((*T)(nil)).Elem())
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	return t, ok
}
