package typegraph_test

import (
	"context"
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/graph-gophers/typegraph"
	"github.com/graph-gophers/typegraph/config"
	"github.com/graph-gophers/typegraph/errors"
	"github.com/graph-gophers/typegraph/log"
	"github.com/graph-gophers/typegraph/types"
)

type pet struct {
	Name string
	Legs int
}

func petSchema(t *testing.T, opts ...typegraph.SchemaOpt) *typegraph.Schema {
	t.Helper()
	s := typegraph.New(opts...)

	petType := types.NewObject("Pet")
	petType.GoType = reflect.TypeOf(&pet{})
	petType.Field("name", &types.NonNull{OfType: &types.TypeName{Name: "String"}}).MustAdd()
	petType.Field("legs", types.Int).MustAdd()
	petType.Field("owner", &types.TypeName{Name: "Owner"}).
		ResolveFunc(func(rc *types.ResolveContext) (interface{}, error) {
			return nil, fmt.Errorf("%s has no owner", rc.Source.(*pet).Name)
		}).
		MustAdd()
	s.MustRegisterType(petType)

	owner := types.NewObject("Owner")
	owner.Field("name", types.String).MustAdd()
	s.MustRegisterType(owner)

	q := s.Query()
	q.Field("pet", petType).
		Argument("name", &types.TypeName{Name: "String"}).
		ResolveFunc(func(rc *types.ResolveContext) (interface{}, error) {
			name, _ := rc.Arg("name")
			return &pet{Name: fmt.Sprint(name), Legs: 4}, nil
		}).
		MustAdd()
	q.Field("explode", types.String).
		ResolveFunc(func(*types.ResolveContext) (interface{}, error) {
			panic("boom")
		}).
		MustAdd()
	q.Field("ticks", types.Int).
		ResolveStream(types.StreamResolverFunc(func(rc *types.ResolveContext) (<-chan interface{}, error) {
			ch := make(chan interface{}, 3)
			for i := 1; i <= 3; i++ {
				ch <- i
			}
			close(ch)
			return ch, nil
		})).
		MustAdd()
	return s
}

func TestRegisterType(t *testing.T) {
	s := typegraph.New()
	obj := types.NewObject("Pet")
	require.NoError(t, s.RegisterType(obj))
	assert.NoError(t, s.RegisterType(obj), "registering the same type twice is a no-op")

	var sce *errors.SchemaConstructionError
	assert.ErrorAs(t, s.RegisterType(types.NewObject("Pet")), &sce)
	assert.ErrorAs(t, s.RegisterType(types.NewObject("__Pet")), &sce)
	assert.ErrorAs(t, s.RegisterType(nil), &sce)
	assert.ErrorAs(t, s.RegisterType(&types.Scalar{Name: "String"}), &sce)

	assert.Same(t, obj, s.Type("Pet"))
	assert.Nil(t, s.Type("Owner"))

	var names []string
	for _, nt := range s.Types() {
		names = append(names, nt.TypeName())
	}
	assert.Equal(t, []string{"Int", "Float", "String", "Boolean", "ID", "Pet"}, names)
}

func TestQuery(t *testing.T) {
	s := typegraph.New()
	existing := types.NewObject("Query")
	s.MustRegisterType(existing)
	assert.Same(t, existing, s.Query())
	assert.Same(t, existing, s.Query())

	err := s.SetQuery(types.NewObject("Root"))
	var sce *errors.SchemaConstructionError
	assert.ErrorAs(t, err, &sce)

	s = typegraph.New()
	root := types.NewObject("Root")
	require.NoError(t, s.SetQuery(root))
	assert.Same(t, root, s.Query())
	assert.Same(t, root, s.Type("Root"))
}

func TestBuildResolvesReferences(t *testing.T) {
	s := petSchema(t)
	require.NoError(t, s.Build())
	assert.True(t, s.Built())

	petType := s.Type("Pet").(*types.Object)
	owner := petType.GetField("owner")
	assert.Same(t, s.Type("Owner"), owner.ResolvedType)
	assert.Equal(t, &types.NonNull{OfType: types.String}, petType.GetField("name").ResolvedType)

	arg := s.Query().GetField("pet").Argument("name")
	require.NotNil(t, arg)
	assert.Same(t, types.String, arg.ResolvedType)

	assert.NoError(t, s.Build(), "building twice is a no-op")
}

func TestBuildErrors(t *testing.T) {
	var sce *errors.SchemaConstructionError

	s := typegraph.New()
	assert.ErrorAs(t, s.Build(), &sce, "no query type")

	s = typegraph.New()
	s.Query().Field("ghost", &types.TypeName{Name: "Ghost"}).MustAdd()
	err := s.Build()
	require.ErrorAs(t, err, &sce)
	assert.Equal(t, "ghost", sce.Field)
	assert.ErrorContains(t, err, "Ghost")

	s = typegraph.New()
	s.Query().Field("find", types.String).Argument("by", &types.TypeName{Name: "Filter"}).MustAdd()
	assert.ErrorContains(t, s.Build(), "Filter")

	s = typegraph.New()
	named := types.NewInterface("Named")
	named.Field("name", types.String).MustAdd()
	s.MustRegisterType(named)
	nameless := types.NewObject("Nameless")
	nameless.AddInterface(named)
	s.MustRegisterType(nameless)
	s.Query().Field("nameless", nameless).MustAdd()
	err = s.Build()
	require.ErrorAs(t, err, &sce)
	assert.Equal(t, "Nameless", sce.Type)
	assert.Equal(t, "name", sce.Field)

	s = typegraph.New()
	stray := types.NewInterface("Stray")
	obj := types.NewObject("Obj")
	obj.AddInterface(stray)
	s.MustRegisterType(obj)
	s.Query().Field("obj", obj).MustAdd()
	assert.ErrorContains(t, s.Build(), "Stray")

	s = typegraph.New()
	u := &types.Union{Name: "Result", PossibleTypes: []*types.Object{types.NewObject("Loose")}}
	s.MustRegisterType(u)
	s.Query().Field("result", u).MustAdd()
	assert.ErrorContains(t, s.Build(), "Loose")

	s = typegraph.New()
	s.Query().Field("id", types.ID).MustAdd()
	s.Federation().MustKey("Unknown", "id")
	assert.ErrorContains(t, s.Build(), "Unknown")
}

func TestSchemaIsReadOnlyAfterBuild(t *testing.T) {
	s := petSchema(t)
	require.NoError(t, s.Build())

	var sce *errors.SchemaConstructionError
	assert.ErrorAs(t, s.RegisterType(types.NewObject("Late")), &sce)
	assert.Nil(t, s.Type("Late"))
	assert.ErrorAs(t, s.EnableFederation(""), &sce)

	_, err := s.Federation().Key("Pet", "name")
	assert.Error(t, err)
}

func TestTypeOf(t *testing.T) {
	s := petSchema(t)
	cat := types.NewObject("Cat")
	cat.GoType = reflect.TypeOf(&pet{})
	cat.IsTypeOf = func(v interface{}) bool {
		p, ok := v.(*pet)
		return ok && p.Legs == 4 && p.Name == "cat"
	}
	s.MustRegisterType(cat)

	assert.Same(t, cat, s.TypeOf(&pet{Name: "cat", Legs: 4}))
	assert.Same(t, s.Type("Pet"), s.TypeOf(&pet{Name: "bird", Legs: 2}))
	assert.Same(t, s.Type("Pet"), s.TypeOf(pet{Name: "dog", Legs: 4}))
	assert.Nil(t, s.TypeOf("not a pet"))
	assert.Nil(t, s.TypeOf(nil))
}

func TestResolveField(t *testing.T) {
	var panics []interface{}
	s := petSchema(t, typegraph.Logger(log.LoggerFunc(func(ctx context.Context, value interface{}) {
		panics = append(panics, value)
	})))
	ctx := context.Background()

	_, qErr := s.ResolveField(ctx, "Query", "pet", nil, nil)
	require.NotNil(t, qErr)
	assert.Contains(t, qErr.Message, "not built")

	require.NoError(t, s.Build())

	v, qErr := s.ResolveField(ctx, "Query", "pet", nil, map[string]interface{}{"name": "Rex"})
	require.Nil(t, qErr)
	require.Equal(t, &pet{Name: "Rex", Legs: 4}, v)

	legs, qErr := s.ResolveField(ctx, "Pet", "legs", v, nil)
	require.Nil(t, qErr)
	assert.Equal(t, 4, legs)

	_, qErr = s.ResolveField(ctx, "Pet", "owner", v, nil)
	require.NotNil(t, qErr)
	assert.Equal(t, "Rex has no owner", qErr.Message)
	assert.Equal(t, []interface{}{"owner"}, qErr.Path)
	assert.EqualError(t, qErr.ResolverError, "Rex has no owner")

	_, qErr = s.ResolveField(ctx, "Query", "explode", nil, nil)
	require.NotNil(t, qErr)
	assert.Equal(t, "panic occurred: boom", qErr.Message)
	assert.Equal(t, []interface{}{"explode"}, qErr.Path)
	assert.Equal(t, []interface{}{"boom"}, panics)

	_, qErr = s.ResolveField(ctx, "Pet", "color", v, nil)
	require.NotNil(t, qErr)
	assert.Contains(t, qErr.Message, "color")

	_, qErr = s.ResolveField(ctx, "String", "length", "abc", nil)
	require.NotNil(t, qErr)
	assert.Contains(t, qErr.Message, "not an object")
}

func TestSubscribe(t *testing.T) {
	s := petSchema(t)
	require.NoError(t, s.Build())

	events, qErr := s.Subscribe(context.Background(), "Query", "ticks", nil, nil)
	require.Nil(t, qErr)
	var got []interface{}
	for e := range events {
		got = append(got, e)
	}
	assert.Equal(t, []interface{}{1, 2, 3}, got)

	_, qErr = s.Subscribe(context.Background(), "Query", "pet", nil, nil)
	require.NotNil(t, qErr)
	assert.Contains(t, qErr.Message, "subscription unavailable")
}

type shelf struct {
	Label string
	Pets  []*pet
}

func (s *shelf) Count() int { return len(s.Pets) }

func TestAutoObjectCrossReference(t *testing.T) {
	s := typegraph.New(typegraph.UseFieldResolvers())
	s.BindType(reflect.TypeOf(&pet{}), "Animal")

	sh, err := s.AutoObject(reflect.TypeOf(&shelf{}), "Shelf")
	require.NoError(t, err)
	animal, err := s.AutoObject(reflect.TypeOf(&pet{}), "Animal")
	require.NoError(t, err)
	s.Query().Field("shelf", sh).
		ResolveFunc(func(*types.ResolveContext) (interface{}, error) {
			return &shelf{Label: "top", Pets: []*pet{{Name: "Rex"}}}, nil
		}).
		MustAdd()
	require.NoError(t, s.Build())

	pets := sh.GetField("pets")
	assert.Equal(t, "[Animal]", pets.Type.String())
	assert.Equal(t, &types.List{OfType: animal}, pets.ResolvedType)

	v, qErr := s.ResolveField(context.Background(), "Query", "shelf", nil, nil)
	require.Nil(t, qErr)
	count, qErr := s.ResolveField(context.Background(), "Shelf", "count", v, nil)
	require.Nil(t, qErr)
	assert.Equal(t, 1, count)

	_, err = s.AutoObject(reflect.TypeOf(&shelf{}), "Shelf")
	assert.Error(t, err)
}

func TestAutoInputObject(t *testing.T) {
	type petFilter struct {
		Name    *string
		MinLegs int `default:"2"`
	}
	s := typegraph.New()
	in, err := s.AutoInputObject(reflect.TypeOf(petFilter{}), "PetFilter")
	require.NoError(t, err)
	assert.Same(t, in, s.Type("PetFilter"))

	minLegs := in.GetField("minLegs")
	require.NotNil(t, minLegs)
	assert.True(t, minLegs.HasDefault)
	assert.Equal(t, 2, minLegs.DefaultValue)
}

func TestConfigOption(t *testing.T) {
	cfg := config.Default()
	cfg.MaxParallelism = 2
	cfg.EntityTimeout = time.Second
	cfg.UseFieldResolvers = false

	s := typegraph.New(typegraph.Config(cfg))
	assert.False(t, s.Options().UseFieldResolvers)

	s = typegraph.New(typegraph.Config(config.Default()))
	assert.True(t, s.Options().UseFieldResolvers)

	s = typegraph.New(typegraph.Config(nil))
	assert.False(t, s.Options().UseFieldResolvers)
}
