// Package typegraph holds a runtime type graph: named types registered by
// hand or derived from Go types, resolvers synthesized once per field, and
// federation entity resolution. An execution engine drives it through
// ResolveField, Subscribe and ResolveEntities once Build has succeeded.
package typegraph

import (
	"context"
	"os"
	"reflect"
	"time"

	"github.com/rs/zerolog"

	"github.com/graph-gophers/typegraph/autoreg"
	"github.com/graph-gophers/typegraph/config"
	"github.com/graph-gophers/typegraph/errors"
	"github.com/graph-gophers/typegraph/federation"
	"github.com/graph-gophers/typegraph/internal/typeinfo"
	"github.com/graph-gophers/typegraph/log"
	"github.com/graph-gophers/typegraph/services"
	"github.com/graph-gophers/typegraph/trace/noop"
	"github.com/graph-gophers/typegraph/trace/tracer"
	"github.com/graph-gophers/typegraph/types"
)

// Schema is a type graph under construction and, after Build, a read-only
// graph safe for concurrent use.
type Schema struct {
	types map[string]types.NamedType
	order []string
	query *types.Object

	mapper     *typeinfo.Mapper
	registry   *federation.Registry
	dispatcher *federation.Dispatcher

	maxParallelism    int
	entityTimeout     time.Duration
	useFieldResolvers bool
	rootServices      services.Provider
	tracer            tracer.Tracer
	logger            log.Logger
	panicHandler      errors.PanicHandler

	built bool
}

// SchemaOpt is an option applied by New.
type SchemaOpt func(*Schema)

// MaxParallelism bounds the representations resolved concurrently by
// ResolveEntities. The default is 10.
func MaxParallelism(n int) SchemaOpt {
	return func(s *Schema) {
		s.maxParallelism = n
	}
}

// EntityTimeout bounds one ResolveEntities batch.
func EntityTimeout(d time.Duration) SchemaOpt {
	return func(s *Schema) {
		s.entityTimeout = d
	}
}

// UseFieldResolvers exposes struct fields next to methods in the objects
// derived by AutoObject.
func UseFieldResolvers() SchemaOpt {
	return func(s *Schema) {
		s.useFieldResolvers = true
	}
}

// RootServices sets the process-wide provider used when a request scope
// cannot supply a service.
func RootServices(p services.Provider) SchemaOpt {
	return func(s *Schema) {
		s.rootServices = p
	}
}

// Tracer is used to trace fields and entity batches. Disabled by default.
func Tracer(t tracer.Tracer) SchemaOpt {
	return func(s *Schema) {
		s.tracer = t
	}
}

// Logger is used to log panics during resolution and failed entities.
func Logger(logger log.Logger) SchemaOpt {
	return func(s *Schema) {
		s.logger = logger
	}
}

// PanicHandler is used to customize the panic errors during resolution.
func PanicHandler(panicHandler errors.PanicHandler) SchemaOpt {
	return func(s *Schema) {
		s.panicHandler = panicHandler
	}
}

// Config applies a loaded configuration. Options given after it win.
func Config(cfg *config.Config) SchemaOpt {
	return func(s *Schema) {
		if cfg == nil {
			return
		}
		if cfg.MaxParallelism > 0 {
			s.maxParallelism = cfg.MaxParallelism
		}
		s.entityTimeout = cfg.EntityTimeout
		s.useFieldResolvers = cfg.UseFieldResolvers
		if cfg.LogLevel != "" {
			if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
				zl := zerolog.New(os.Stderr).Level(lvl).With().Timestamp().Logger()
				s.logger = log.NewZerologLogger(zl)
			}
		}
	}
}

// New creates an empty schema knowing the built-in scalars.
func New(opts ...SchemaOpt) *Schema {
	s := &Schema{
		types:          make(map[string]types.NamedType),
		mapper:         typeinfo.NewMapper(),
		registry:       federation.NewRegistry(),
		maxParallelism: federation.DefaultMaxParallelism,
		tracer:         noop.Tracer{},
		logger:         &log.DefaultLogger{},
		panicHandler:   &errors.DefaultPanicHandler{},
	}
	for _, opt := range opts {
		opt(s)
	}
	for _, sc := range types.BuiltinScalars() {
		s.types[sc.Name] = sc
		s.order = append(s.order, sc.Name)
	}
	s.dispatcher = &federation.Dispatcher{
		Types:          s,
		Registry:       s.registry,
		Logger:         s.logger,
		Tracer:         s.tracer,
		PanicHandler:   s.panicHandler,
		MaxParallelism: s.maxParallelism,
		Timeout:        s.entityTimeout,
	}
	return s
}

// RegisterType adds a named type. Names are unique; registration after
// Build is rejected.
func (s *Schema) RegisterType(t types.NamedType) error {
	if t == nil {
		return errors.Constructionf("", "", "type must not be nil")
	}
	name := t.TypeName()
	if s.built {
		return errors.Constructionf(name, "", "the schema is built and can no longer change")
	}
	if err := types.ValidateName(name); err != nil {
		return errors.Constructionf(name, "", "invalid type name: %s", err)
	}
	if existing, ok := s.types[name]; ok {
		if existing == t {
			return nil
		}
		return errors.Constructionf(name, "", "a type with the name %q is already registered", name)
	}
	s.types[name] = t
	s.order = append(s.order, name)

	if o, ok := t.(*types.Object); ok && o.GoType != nil && !s.mapper.Bound(o.GoType) {
		s.mapper.BindType(o.GoType, o)
	}
	return nil
}

// MustRegisterType is like RegisterType but panics on error.
func (s *Schema) MustRegisterType(t types.NamedType) {
	if err := s.RegisterType(t); err != nil {
		panic(err)
	}
}

// Type returns the type called name, or nil.
func (s *Schema) Type(name string) types.NamedType {
	return s.types[name]
}

// Types returns every registered type in registration order.
func (s *Schema) Types() []types.NamedType {
	out := make([]types.NamedType, len(s.order))
	for i, name := range s.order {
		out[i] = s.types[name]
	}
	return out
}

// Query returns the query root type. Before Build it adopts a registered
// Query object or creates and registers an empty one.
func (s *Schema) Query() *types.Object {
	if s.query == nil && !s.built {
		if existing, ok := s.types["Query"].(*types.Object); ok {
			s.query = existing
			return existing
		}
		q := types.NewObject("Query")
		if err := s.RegisterType(q); err == nil {
			s.query = q
		}
	}
	return s.query
}

// SetQuery sets and registers the query root type.
func (s *Schema) SetQuery(q *types.Object) error {
	if q == nil {
		return errors.Constructionf("", "", "query type must not be nil")
	}
	if s.query != nil && s.query != q {
		return errors.Constructionf(q.Name, "", "query type is already set to %q", s.query.Name)
	}
	if err := s.RegisterType(q); err != nil {
		return err
	}
	s.query = q
	return nil
}

// Federation returns the entity key registry.
func (s *Schema) Federation() *federation.Registry {
	return s.registry
}

// EnableFederation adds the _entities and _service surface. Keys and
// reference resolvers must be registered before.
func (s *Schema) EnableFederation(sdl string) error {
	if s.built {
		return errors.Constructionf("", "", "the schema is built and can no longer change")
	}
	return federation.Extend(s, s.dispatcher, sdl)
}

// Options returns autoreg options sharing the schema's type mapper, so that
// derived types can refer to each other before Build.
func (s *Schema) Options() *autoreg.Options {
	opts := autoreg.DefaultOptions()
	opts.Mapper = s.mapper
	opts.UseFieldResolvers = s.useFieldResolvers
	return opts
}

// BindType maps goType to the type called name ahead of its registration,
// for Go types that refer to each other.
func (s *Schema) BindType(goType reflect.Type, name string) {
	s.mapper.Bind(goType, name)
}

// AutoObject derives an object from goType and registers it. An empty name
// keeps the Go type name.
func (s *Schema) AutoObject(goType reflect.Type, name string) (*types.Object, error) {
	opts := s.Options()
	opts.Name = name
	obj, err := autoreg.AutoObject(goType, opts)
	if err != nil {
		return nil, err
	}
	if err := s.RegisterType(obj); err != nil {
		return nil, err
	}
	return obj, nil
}

// AutoInterface derives an interface from goType and registers it.
func (s *Schema) AutoInterface(goType reflect.Type, name string) (*types.Interface, error) {
	opts := s.Options()
	opts.Name = name
	iface, err := autoreg.AutoInterface(goType, opts)
	if err != nil {
		return nil, err
	}
	if err := s.RegisterType(iface); err != nil {
		return nil, err
	}
	return iface, nil
}

// AutoInputObject derives an input object from goType and registers it.
func (s *Schema) AutoInputObject(goType reflect.Type, name string) (*types.InputObject, error) {
	opts := s.Options()
	opts.Name = name
	in, err := autoreg.AutoInputObject(goType, opts)
	if err != nil {
		return nil, err
	}
	if err := s.RegisterType(in); err != nil {
		return nil, err
	}
	return in, nil
}

// Build resolves every forward reference, re-checks the fields against the
// resolved types, checks interface implementations and validates the
// federation keys. Afterwards the schema is read-only.
func (s *Schema) Build() error {
	if s.built {
		return nil
	}
	if s.query == nil {
		return errors.Constructionf("", "", "the schema has no query type")
	}

	for _, name := range s.order {
		c := complexOf(s.types[name])
		if c == nil {
			continue
		}
		if err := s.resolveFields(c); err != nil {
			return err
		}
	}
	for _, name := range s.order {
		switch t := s.types[name].(type) {
		case *types.Object:
			if err := s.checkImplements(t); err != nil {
				return err
			}
		case *types.Union:
			for _, pt := range t.PossibleTypes {
				if s.types[pt.Name] != pt {
					return errors.Constructionf(t.Name, "", "member %q is not registered", pt.Name)
				}
			}
		}
	}
	if err := s.registry.Validate(s.Type); err != nil {
		return err
	}
	s.built = true
	return nil
}

func (s *Schema) resolveFields(c *types.Complex) error {
	for _, f := range c.Fields() {
		if f.ResolvedType == nil {
			t, missing := types.ResolveReferences(f.Type, s.Type)
			if missing != "" {
				return errors.Constructionf(c.Name, f.Name, "unknown type %q", missing)
			}
			f.ResolvedType = t
		}
		for _, a := range f.Arguments {
			if a.ResolvedType != nil {
				continue
			}
			t, missing := types.ResolveReferences(a.Type, s.Type)
			if missing != "" {
				return errors.Constructionf(c.Name, f.Name, "argument %q has unknown type %q", a.Name, missing)
			}
			a.ResolvedType = t
		}
	}
	return c.CheckResolved()
}

func (s *Schema) checkImplements(o *types.Object) error {
	for _, iface := range o.Interfaces {
		if s.types[iface.Name] != iface {
			return errors.Constructionf(o.Name, "", "interface %q is not registered", iface.Name)
		}
		for _, f := range iface.Fields() {
			if !o.HasField(f.Name) {
				return errors.Constructionf(o.Name, f.Name, "field of interface %q is missing", iface.Name)
			}
		}
	}
	return nil
}

func complexOf(t types.NamedType) *types.Complex {
	switch t := t.(type) {
	case *types.Object:
		return &t.Complex
	case *types.Interface:
		return &t.Complex
	case *types.InputObject:
		return &t.Complex
	}
	return nil
}

// Built reports whether Build succeeded.
func (s *Schema) Built() bool { return s.built }

// TypeOf returns the object type of a resolved value. Objects with an
// IsTypeOf function are asked first, then the Go types are compared.
func (s *Schema) TypeOf(value interface{}) *types.Object {
	if value == nil {
		return nil
	}
	var byGoType *types.Object
	for _, name := range s.order {
		o, ok := s.types[name].(*types.Object)
		if !ok {
			continue
		}
		if o.IsTypeOf != nil {
			if o.IsTypeOf(value) {
				return o
			}
			continue
		}
		if byGoType == nil && o.Matches(value) {
			byGoType = o
		}
	}
	return byGoType
}

// ResolveEntities resolves representations through the federation
// dispatcher. The result has the length and order of reps.
func (s *Schema) ResolveEntities(ctx context.Context, reps []federation.Representation) []federation.EntityResult {
	return s.dispatcher.ResolveEntities(ctx, reps)
}
