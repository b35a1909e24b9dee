package types

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/graph-gophers/typegraph/services"
)

// ResolveContext carries everything a resolver needs for one invocation. It
// is created per field per request and never shared between goroutines.
type ResolveContext struct {
	Context    context.Context
	Source     interface{}
	Args       map[string]interface{}
	ParentType NamedType
	FieldName  string
	// Services is the process-wide provider. The request scope travels on
	// Context, see services.WithRequestScope.
	Services services.Provider
}

// Arg returns the raw argument value and whether it was provided.
func (rc *ResolveContext) Arg(name string) (interface{}, bool) {
	v, ok := rc.Args[name]
	return v, ok
}

// GetArgument returns the argument value or def when it is absent.
func (rc *ResolveContext) GetArgument(name string, def interface{}) interface{} {
	if v, ok := rc.Args[name]; ok {
		return v
	}
	return def
}

// Path renders Parent.field for diagnostics.
func (rc *ResolveContext) Path() string {
	if rc.ParentType != nil {
		return rc.ParentType.TypeName() + "." + rc.FieldName
	}
	return rc.FieldName
}

// Ctx returns the request context, never nil.
func (rc *ResolveContext) Ctx() context.Context {
	if rc.Context == nil {
		return context.Background()
	}
	return rc.Context
}

// Resolver produces the value of a field.
type Resolver interface {
	Resolve(rc *ResolveContext) (interface{}, error)
}

// AsyncResolver is implemented by resolvers whose value completes
// asynchronously. Resolve still blocks until completion or cancellation, but
// an engine may schedule such fields on their own worker.
type AsyncResolver interface {
	Resolver
	Async() bool
}

// IsAsync reports whether r is an asynchronous resolver.
func IsAsync(r Resolver) bool {
	a, ok := r.(AsyncResolver)
	return ok && a.Async()
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(rc *ResolveContext) (interface{}, error)

func (f ResolverFunc) Resolve(rc *ResolveContext) (interface{}, error) {
	return f(rc)
}

// StreamResolver produces the source stream of a subscription field. The
// channel is closed when the stream ends or the context is cancelled.
type StreamResolver interface {
	Subscribe(rc *ResolveContext) (<-chan interface{}, error)
}

// StreamResolverFunc adapts a function to StreamResolver.
type StreamResolverFunc func(rc *ResolveContext) (<-chan interface{}, error)

func (f StreamResolverFunc) Subscribe(rc *ResolveContext) (<-chan interface{}, error) {
	return f(rc)
}

// NameResolver returns the default resolver for fields without an explicit
// one: it reads a struct field, a map entry or calls a nullary method whose
// name matches the field name.
func NameResolver(name string) Resolver {
	return ResolverFunc(func(rc *ResolveContext) (interface{}, error) {
		return resolveByName(rc.Source, name)
	})
}

func resolveByName(source interface{}, name string) (interface{}, error) {
	if source == nil {
		return nil, nil
	}
	if m, ok := source.(map[string]interface{}); ok {
		return m[name], nil
	}

	v := reflect.ValueOf(source)
	if v.Kind() == reflect.Ptr && v.IsNil() {
		return nil, nil
	}
	if m := findMethod(v, name); m.IsValid() {
		out := m.Call(nil)
		if len(out) == 2 && !out[1].IsNil() {
			return nil, out[1].Interface().(error)
		}
		return out[0].Interface(), nil
	}

	for v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil, nil
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil, fmt.Errorf("cannot read field %q from %s", name, v.Type())
	}
	if f := findField(v, name); f.IsValid() {
		return f.Interface(), nil
	}
	return nil, fmt.Errorf("%s has no member matching field %q", v.Type(), name)
}

func findMethod(v reflect.Value, name string) reflect.Value {
	t := v.Type()
	for i := 0; i < t.NumMethod(); i++ {
		m := t.Method(i)
		if !nameMatches(m.Name, name) {
			continue
		}
		mt := m.Type
		// receiver counts as the first input
		if mt.NumIn() != 1 || mt.NumOut() == 0 || mt.NumOut() > 2 {
			continue
		}
		if mt.NumOut() == 2 && mt.Out(1) != errorType {
			continue
		}
		return v.Method(i)
	}
	return reflect.Value{}
}

func findField(v reflect.Value, name string) reflect.Value {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		if tag, ok := sf.Tag.Lookup("graphql"); ok {
			if tagName := strings.Split(tag, ",")[0]; tagName != "" {
				if tagName == name {
					return v.Field(i)
				}
				continue
			}
		}
		if nameMatches(sf.Name, name) {
			return v.Field(i)
		}
	}
	return reflect.Value{}
}

func nameMatches(goName, fieldName string) bool {
	return strings.EqualFold(stripUnderscore(goName), stripUnderscore(fieldName))
}

func stripUnderscore(s string) string {
	return strings.Replace(s, "_", "", -1)
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()
