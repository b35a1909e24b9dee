package federation

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/go-viper/mapstructure/v2"

	"github.com/graph-gophers/typegraph/errors"
)

const typenameField = "__typename"

// Representation is the wire input of entity resolution: a typename and the
// fields identifying one instance. Fields that are not part of a key are kept
// and ignored.
type Representation struct {
	Typename string
	Fields   map[string]interface{}
}

// Get returns a field value.
func (r Representation) Get(name string) (interface{}, bool) {
	v, ok := r.Fields[name]
	return v, ok
}

func (r *Representation) UnmarshalJSON(d []byte) error {
	var raw map[string]interface{}
	if err := json.Unmarshal(d, &raw); err != nil {
		return fmt.Errorf("failed to unmarshal representation: %w", err)
	}
	rep, err := fromMap(raw)
	if err != nil {
		return err
	}
	*r = rep
	return nil
}

func (r Representation) MarshalJSON() ([]byte, error) {
	m := make(map[string]interface{}, len(r.Fields)+1)
	for k, v := range r.Fields {
		m[k] = v
	}
	m[typenameField] = r.Typename
	return json.Marshal(m)
}

func fromMap(raw map[string]interface{}) (Representation, error) {
	if raw == nil {
		return Representation{}, fmt.Errorf("representation must be an object")
	}
	tn, ok := raw[typenameField].(string)
	if !ok || tn == "" {
		return Representation{}, fmt.Errorf("representation has no %s", typenameField)
	}
	fields := make(map[string]interface{}, len(raw)-1)
	for k, v := range raw {
		if k != typenameField {
			fields[k] = v
		}
	}
	return Representation{Typename: tn, Fields: fields}, nil
}

// ParseRepresentations converts the raw values of a representations argument.
// Each value must be an object, or a JSON string holding one.
func ParseRepresentations(raw []interface{}) ([]Representation, error) {
	reps := make([]Representation, len(raw))
	for i, v := range raw {
		rep, err := parseRepresentation(i, v)
		if err != nil {
			return nil, err
		}
		reps[i] = rep
	}
	return reps, nil
}

// parseEach parses every value on its own. A malformed value leaves an empty
// Representation and its error at the same index.
func parseEach(raw []interface{}) ([]Representation, []error) {
	reps := make([]Representation, len(raw))
	errs := make([]error, len(raw))
	for i, v := range raw {
		reps[i], errs[i] = parseRepresentation(i, v)
	}
	return reps, errs
}

func parseRepresentation(i int, v interface{}) (Representation, error) {
	var m map[string]interface{}
	switch v := v.(type) {
	case map[string]interface{}:
		m = v
	case string:
		if err := json.Unmarshal([]byte(v), &m); err != nil {
			return Representation{}, &errors.InvalidRepresentationError{Index: i, Reason: err.Error()}
		}
	case Representation:
		return v, nil
	default:
		return Representation{}, &errors.InvalidRepresentationError{Index: i, Reason: fmt.Sprintf("expected an object, got %T", v)}
	}
	rep, err := fromMap(m)
	if err != nil {
		return Representation{}, &errors.InvalidRepresentationError{Index: i, Reason: err.Error()}
	}
	return rep, nil
}

// Decode decodes the representation fields into out, matching graphql tags
// first and field names case-insensitively otherwise.
func (r Representation) Decode(out interface{}) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "graphql",
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(r.Fields)
}

// Typed adapts a function taking a decoded key to ReferenceResolver.
//
//	registry.ResolveReference("Book", federation.Typed(func(ctx context.Context, key struct{ ID string }) (*Book, error) {
//		return books.Get(ctx, key.ID)
//	}))
func Typed[K any, T any](fn func(ctx context.Context, key K) (T, error)) ReferenceResolver {
	return ReferenceResolverFunc(func(ctx context.Context, rep Representation) (interface{}, error) {
		var key K
		if err := rep.Decode(&key); err != nil {
			return nil, fmt.Errorf("cannot decode %s key: %w", rep.Typename, err)
		}
		v, err := fn(ctx, key)
		if err != nil {
			return nil, err
		}
		return nilIfTyped(v), nil
	})
}

func nilIfTyped(v interface{}) interface{} {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Invalid:
		return nil
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice:
		if rv.IsNil() {
			return nil
		}
	}
	return v
}
