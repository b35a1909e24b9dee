package federation

import (
	"strings"

	"github.com/graph-gophers/typegraph/errors"
	"github.com/graph-gophers/typegraph/types"
)

// Schema is what Extend needs from a schema under construction.
type Schema interface {
	TypeLookup
	RegisterType(t types.NamedType) error
	// Query returns the query root, creating it when needed.
	Query() *types.Object
}

// AnyScalar is the _Any scalar representations are passed as.
var AnyScalar = &types.Scalar{Name: "_Any", Desc: "A representation: an object with __typename and key fields."}

// EntityErrors is returned next to the data of _entities when some
// representations failed.
type EntityErrors []*errors.QueryError

func (e EntityErrors) Error() string {
	msgs := make([]string, len(e))
	for i, qe := range e {
		msgs[i] = qe.Error()
	}
	return strings.Join(msgs, "; ")
}

// Extend adds the federation surface to s: the _Any scalar, the _Entity
// union of keyed object types, the _Service type and the _entities and
// _service query fields. It must run before the schema is built.
func Extend(s Schema, d *Dispatcher, sdl string) error {
	if err := s.RegisterType(AnyScalar); err != nil {
		return err
	}

	entity := &types.Union{Name: "_Entity"}
	for _, name := range d.Registry.Entities() {
		if !d.Registry.IsEntity(name) {
			continue
		}
		switch t := s.Type(name).(type) {
		case *types.Object:
			addMember(entity, t)
		case *types.Interface:
			for _, pt := range t.PossibleTypes {
				addMember(entity, pt)
			}
		}
	}
	if len(entity.PossibleTypes) == 0 {
		return errors.Constructionf("_Entity", "", "no resolvable entity types are registered")
	}
	if err := s.RegisterType(entity); err != nil {
		return err
	}

	service := types.NewObject("_Service")
	service.Field("sdl", &types.NonNull{OfType: types.String}).
		Resolve(types.NameResolver("sdl")).
		MustAdd()
	if err := s.RegisterType(service); err != nil {
		return err
	}

	q := s.Query()
	if _, err := q.Field("_entities", &types.NonNull{OfType: &types.List{OfType: entity}}).
		Argument("representations", &types.NonNull{OfType: &types.List{OfType: &types.NonNull{OfType: AnyScalar}}}).
		ResolveFunc(entitiesResolver(d)).
		Add(); err != nil {
		return err
	}
	_, err := q.Field("_service", &types.NonNull{OfType: service}).
		ResolveFunc(func(*types.ResolveContext) (interface{}, error) {
			return map[string]interface{}{"sdl": sdl}, nil
		}).
		Add()
	return err
}

func addMember(u *types.Union, o *types.Object) {
	if !u.Contains(o) {
		u.PossibleTypes = append(u.PossibleTypes, o)
	}
}

func entitiesResolver(d *Dispatcher) func(rc *types.ResolveContext) (interface{}, error) {
	return func(rc *types.ResolveContext) (interface{}, error) {
		raw, _ := rc.Arg("representations")
		list, ok := raw.([]interface{})
		if !ok && raw != nil {
			return nil, &errors.InvalidRepresentationError{Index: -1, Reason: "representations must be a list"}
		}
		reps, invalid := parseEach(list)

		results := d.ResolveEntities(rc.Ctx(), reps)
		values := make([]interface{}, len(results))
		var errs EntityErrors
		for i, r := range results {
			if invalid[i] != nil {
				r = EntityResult{Err: errors.Wrap(invalid[i], entityPath(i)...)}
			}
			values[i] = r.Value
			if r.Err != nil {
				errs = append(errs, r.Err)
			}
		}
		if len(errs) > 0 {
			return values, errs
		}
		return values, nil
	}
}
