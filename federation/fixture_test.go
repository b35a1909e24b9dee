package federation

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/graph-gophers/typegraph/types"
)

type bookEntity struct {
	ID    string
	Title string
}

type magazineEntity struct {
	ID    string
	Issue int
}

type typeMap map[string]types.NamedType

func (m typeMap) Type(name string) types.NamedType { return m[name] }

type library struct {
	media    *types.Interface
	book     *types.Object
	magazine *types.Object
	author   *types.Object
	types    typeMap

	books     map[string]*bookEntity
	magazines map[string]*magazineEntity
}

func newLibrary() *library {
	id := &types.NonNull{OfType: types.ID}

	media := types.NewInterface("Media")
	media.Field("id", id).MustAdd()

	book := types.NewObject("Book")
	book.GoType = reflect.TypeOf(&bookEntity{})
	book.Field("id", id).MustAdd()
	book.Field("title", &types.NonNull{OfType: types.String}).MustAdd()
	book.AddInterface(media)

	magazine := types.NewObject("Magazine")
	magazine.GoType = reflect.TypeOf(&magazineEntity{})
	magazine.Field("id", id).MustAdd()
	magazine.Field("issue", types.Int).MustAdd()
	magazine.AddInterface(media)

	author := types.NewObject("Author")
	author.Field("name", types.String).MustAdd()

	return &library{
		media:    media,
		book:     book,
		magazine: magazine,
		author:   author,
		types: typeMap{
			"Media":    media,
			"Book":     book,
			"Magazine": magazine,
			"Author":   author,
			"String":   types.String,
		},
		books: map[string]*bookEntity{
			"1": {ID: "1", Title: "Dune"},
			"2": {ID: "2", Title: "Emma"},
		},
		magazines: map[string]*magazineEntity{
			"m1": {ID: "m1", Issue: 12},
		},
	}
}

type idKey struct {
	ID string
}

func (l *library) bookResolver() ReferenceResolver {
	return Typed(func(ctx context.Context, key idKey) (*bookEntity, error) {
		return l.books[key.ID], nil
	})
}

func (l *library) magazineResolver() ReferenceResolver {
	return Typed(func(ctx context.Context, key idKey) (*magazineEntity, error) {
		return l.magazines[key.ID], nil
	})
}

// mediaResolver finds books and magazines by the prefix of their id.
func (l *library) mediaResolver() ReferenceResolver {
	return ReferenceResolverFunc(func(ctx context.Context, rep Representation) (interface{}, error) {
		id, _ := rep.Get("id")
		s := fmt.Sprint(id)
		if strings.HasPrefix(s, "m") {
			return nilIfTyped(l.magazines[s]), nil
		}
		return nilIfTyped(l.books[s]), nil
	})
}

// registry declares Book and Magazine by id, with resolvers.
func (l *library) registry() *Registry {
	r := NewRegistry()
	r.MustKey("Book", "id")
	r.MustKey("Magazine", "id")
	if err := r.ResolveReference("Book", l.bookResolver()); err != nil {
		panic(err)
	}
	if err := r.ResolveReference("Magazine", l.magazineResolver()); err != nil {
		panic(err)
	}
	return r
}

func (l *library) dispatcher(r *Registry) *Dispatcher {
	return &Dispatcher{Types: l.types, Registry: r, Logger: &recordingLogger{}}
}

func reps(values ...interface{}) []Representation {
	out := make([]Representation, 0, len(values)/2)
	for i := 0; i+1 < len(values); i += 2 {
		out = append(out, Representation{
			Typename: values[i].(string),
			Fields:   map[string]interface{}{"id": values[i+1]},
		})
	}
	return out
}

type entityFailure struct {
	index    int
	typename string
	err      error
}

type recordingLogger struct {
	mu       sync.Mutex
	panics   []interface{}
	failures []entityFailure
}

func (l *recordingLogger) LogPanic(ctx context.Context, value interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.panics = append(l.panics, value)
}

func (l *recordingLogger) LogEntityFailure(ctx context.Context, batch string, index int, typename string, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.failures = append(l.failures, entityFailure{index: index, typename: typename, err: err})
}
