package federation

import (
	"context"

	"github.com/graph-gophers/typegraph/errors"
	"github.com/graph-gophers/typegraph/types"
)

// ReferenceResolver maps a representation to a live instance. A nil instance
// without error means the entity does not exist.
type ReferenceResolver interface {
	ResolveReference(ctx context.Context, rep Representation) (interface{}, error)
}

// ReferenceResolverFunc adapts a function to ReferenceResolver.
type ReferenceResolverFunc func(ctx context.Context, rep Representation) (interface{}, error)

func (f ReferenceResolverFunc) ResolveReference(ctx context.Context, rep Representation) (interface{}, error) {
	return f(ctx, rep)
}

// Registry holds the keys and reference resolvers of entity types, objects
// and interfaces alike. It is filled during schema construction, which is
// single-threaded, and frozen by Validate. Reads take no locks.
type Registry struct {
	keys      map[string][]*Key
	resolvers map[string]ReferenceResolver
	order     []string
	frozen    bool
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		keys:      make(map[string][]*Key),
		resolvers: make(map[string]ReferenceResolver),
	}
}

// Key declares a key of typeName. Keys are resolvable unless NonResolvable
// is given.
func (r *Registry) Key(typeName, fields string, opts ...KeyOption) (*Key, error) {
	fs, err := ParseFieldSet(fields)
	if err != nil {
		return nil, errors.Constructionf(typeName, "", "%s", err)
	}
	k := &Key{Owner: typeName, Fields: fs, Resolvable: true}
	for _, opt := range opts {
		opt(k)
	}

	if r.frozen {
		return nil, errors.Constructionf(typeName, "", "keys cannot be added once the registry is validated")
	}
	for _, existing := range r.keys[typeName] {
		if existing.String() == k.String() {
			return nil, errors.Constructionf(typeName, "", "key %q is declared twice", k)
		}
	}
	if _, ok := r.keys[typeName]; !ok {
		r.order = append(r.order, typeName)
	}
	r.keys[typeName] = append(r.keys[typeName], k)
	return k, nil
}

// MustKey is like Key but panics on error.
func (r *Registry) MustKey(typeName, fields string, opts ...KeyOption) *Key {
	k, err := r.Key(typeName, fields, opts...)
	if err != nil {
		panic(err)
	}
	return k
}

// ResolveReference registers the reference resolver of typeName, replacing
// any previous one.
func (r *Registry) ResolveReference(typeName string, rr ReferenceResolver) error {
	if r.frozen {
		return errors.Constructionf(typeName, "", "reference resolvers cannot be added once the registry is validated")
	}
	if rr == nil {
		return errors.Constructionf(typeName, "", "reference resolver must not be nil")
	}
	r.resolvers[typeName] = rr
	return nil
}

// Keys returns the keys of typeName in declaration order.
func (r *Registry) Keys(typeName string) []*Key {
	return r.keys[typeName]
}

// Resolver returns the reference resolver of typeName.
func (r *Registry) Resolver(typeName string) (ReferenceResolver, bool) {
	rr, ok := r.resolvers[typeName]
	return rr, ok
}

// IsEntity reports whether typeName has at least one resolvable key.
func (r *Registry) IsEntity(typeName string) bool {
	return len(resolvableKeys(r.Keys(typeName))) > 0
}

// Entities lists the keyed type names in declaration order.
func (r *Registry) Entities() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Validate checks every key and resolver against the schema types and
// freezes the registry.
func (r *Registry) Validate(lookup func(name string) types.NamedType) error {
	for _, name := range r.order {
		var c *types.Complex
		switch t := lookup(name).(type) {
		case *types.Object:
			c = &t.Complex
		case *types.Interface:
			c = &t.Complex
		case nil:
			return errors.Constructionf(name, "", "keyed type is not registered")
		default:
			return errors.Constructionf(name, "", "only objects and interfaces can declare keys, got %s", t.Kind())
		}
		for _, k := range r.keys[name] {
			if err := checkFieldSet(c, k.Fields, k); err != nil {
				return err
			}
		}
	}
	for name := range r.resolvers {
		if _, ok := r.keys[name]; !ok {
			return errors.Constructionf(name, "", "reference resolver registered without a key")
		}
	}
	r.frozen = true
	return nil
}

func checkFieldSet(c *types.Complex, fs FieldSet, k *Key) error {
	for _, kf := range fs {
		f := c.GetField(kf.Name)
		if f == nil {
			return errors.Constructionf(c.Name, kf.Name, "key %q selects a field that does not exist", k)
		}
		if len(kf.Selections) == 0 {
			continue
		}
		var nested *types.Complex
		switch t := types.Unwrap(f.WireType()).(type) {
		case *types.Object:
			nested = &t.Complex
		case *types.Interface:
			nested = &t.Complex
		case *types.TypeName:
			// unresolved, checked once the schema is built
			continue
		default:
			return errors.Constructionf(c.Name, kf.Name, "key %q selects sub-fields of a leaf field", k)
		}
		if err := checkFieldSet(nested, kf.Selections, k); err != nil {
			return err
		}
	}
	return nil
}
