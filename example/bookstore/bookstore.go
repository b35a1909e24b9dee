// Package bookstore is a small federated catalog of books and magazines. It
// derives its types from Go types and serves as the demo schema of the
// typegraph command.
package bookstore

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/graph-gophers/typegraph"
	"github.com/graph-gophers/typegraph/autoreg"
	"github.com/graph-gophers/typegraph/federation"
	"github.com/graph-gophers/typegraph/services"
	"github.com/graph-gophers/typegraph/types"
)

// SDL is the federated schema of the catalog as published by _service.
const SDL = `
	interface Media @key(fields: "id") {
		id: ID!
		title: String!
	}

	type Book implements Media @key(fields: "id") @key(fields: "isbn") {
		id: ID!
		title: String!
		isbn: String!
		year: Int!
		author: Author
	}

	type Magazine implements Media @key(fields: "id") {
		id: ID!
		title: String!
		issue: Int!
	}

	type Author {
		id: ID!
		name: String!
		books: [Book!]!
	}

	type Query {
		book(id: ID!): Book
		search(text: String!, limit: Int = 10): [Media!]!
	}
`

// Catalog is the data source the resolvers look up as a service.
type Catalog interface {
	BookByID(id string) (*Book, bool)
	BookByISBN(isbn string) (*Book, bool)
	MagazineByID(id string) (*Magazine, bool)
	AuthorByID(id string) (*Author, bool)
	AllMedia() []Media
}

// Media is implemented by everything the catalog lists.
type Media interface {
	ID() types.IDValue
	Title() string
}

type Book struct {
	id       string
	title    string
	isbn     string
	year     int
	authorID string
}

func (b *Book) ID() types.IDValue { return types.IDValue(b.id) }
func (b *Book) Title() string     { return b.title }
func (b *Book) ISBN() string      { return b.isbn }
func (b *Book) Year() int         { return b.year }

func (b *Book) Author(c Catalog) *Author {
	a, _ := c.AuthorByID(b.authorID)
	return a
}

type Magazine struct {
	id    string
	title string
	issue int
}

func (m *Magazine) ID() types.IDValue { return types.IDValue(m.id) }
func (m *Magazine) Title() string     { return m.title }
func (m *Magazine) Issue() int        { return m.issue }

type Author struct {
	id   string
	name string
}

func (a *Author) ID() types.IDValue { return types.IDValue(a.id) }
func (a *Author) Name() string      { return a.name }

func (a *Author) Books(c Catalog) []*Book {
	var books []*Book
	for _, m := range c.AllMedia() {
		if b, ok := m.(*Book); ok && b.authorID == a.id {
			books = append(books, b)
		}
	}
	return books
}

// Store is an in-memory Catalog.
type Store struct {
	books     map[string]*Book
	magazines map[string]*Magazine
	authors   map[string]*Author
}

// NewStore returns a store filled with sample data.
func NewStore() *Store {
	s := &Store{
		books:     make(map[string]*Book),
		magazines: make(map[string]*Magazine),
		authors:   make(map[string]*Author),
	}
	for _, a := range []*Author{
		{id: "a1", name: "Frank Herbert"},
		{id: "a2", name: "Jane Austen"},
	} {
		s.authors[a.id] = a
	}
	for _, b := range []*Book{
		{id: "1", title: "Dune", isbn: "9780441013593", year: 1965, authorID: "a1"},
		{id: "2", title: "Dune Messiah", isbn: "9780593098233", year: 1969, authorID: "a1"},
		{id: "3", title: "Emma", isbn: "9780141439587", year: 1815, authorID: "a2"},
	} {
		s.books[b.id] = b
	}
	for _, m := range []*Magazine{
		{id: "m1", title: "Locus", issue: 761},
		{id: "m2", title: "Analog", issue: 12},
	} {
		s.magazines[m.id] = m
	}
	return s
}

func (s *Store) BookByID(id string) (*Book, bool) {
	b, ok := s.books[id]
	return b, ok
}

func (s *Store) BookByISBN(isbn string) (*Book, bool) {
	for _, b := range s.books {
		if b.isbn == isbn {
			return b, true
		}
	}
	return nil, false
}

func (s *Store) MagazineByID(id string) (*Magazine, bool) {
	m, ok := s.magazines[id]
	return m, ok
}

func (s *Store) AuthorByID(id string) (*Author, bool) {
	a, ok := s.authors[id]
	return a, ok
}

// AllMedia lists books, then magazines, each ordered by id.
func (s *Store) AllMedia() []Media {
	var out []Media
	for _, id := range sortedKeys(s.books) {
		out = append(out, s.books[id])
	}
	for _, id := range sortedKeys(s.magazines) {
		out = append(out, s.magazines[id])
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

type bookKey struct {
	ID   *string
	ISBN *string `graphql:"isbn"`
}

// NewSchema builds the catalog schema around c. The catalog is the root
// service unless opts replace the root services.
func NewSchema(c Catalog, opts ...typegraph.SchemaOpt) (*typegraph.Schema, error) {
	root := services.Collection{}
	services.Add[Catalog](root, c)
	s := typegraph.New(append([]typegraph.SchemaOpt{typegraph.RootServices(root)}, opts...)...)

	s.BindType(reflect.TypeOf(&Author{}), "Author")
	media, err := s.AutoInterface(reflect.TypeOf((*Media)(nil)).Elem(), "Media")
	if err != nil {
		return nil, err
	}
	book, err := s.AutoObject(reflect.TypeOf(&Book{}), "Book")
	if err != nil {
		return nil, err
	}
	magazine, err := s.AutoObject(reflect.TypeOf(&Magazine{}), "Magazine")
	if err != nil {
		return nil, err
	}
	if _, err := s.AutoObject(reflect.TypeOf(&Author{}), "Author"); err != nil {
		return nil, err
	}
	book.AddInterface(media)
	magazine.AddInterface(media)

	if err := addQueryFields(s); err != nil {
		return nil, err
	}
	if err := addKeys(s, root); err != nil {
		return nil, err
	}
	if err := s.EnableFederation(SDL); err != nil {
		return nil, err
	}
	if err := s.Build(); err != nil {
		return nil, err
	}
	return s, nil
}

func addQueryFields(s *typegraph.Schema) error {
	q := s.Query()
	opts := s.Options()

	book, err := autoreg.FuncMember("book", func(c Catalog, id types.IDValue) *Book {
		b, _ := c.BookByID(string(id))
		return b
	}, autoreg.Service(), autoreg.Arg("id"))
	if err != nil {
		return err
	}
	if _, err := autoreg.AddFunc(&q.Complex, book, opts); err != nil {
		return err
	}

	search, err := autoreg.FuncMember("search", func(ctx context.Context, c Catalog, text string, limit int) ([]Media, error) {
		if limit < 0 {
			return nil, fmt.Errorf("limit must not be negative, got %d", limit)
		}
		var out []Media
		for _, m := range c.AllMedia() {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if len(out) == limit {
				break
			}
			if strings.Contains(strings.ToLower(m.Title()), strings.ToLower(text)) {
				out = append(out, m)
			}
		}
		return out, nil
	}, autoreg.Service(), autoreg.Arg("text"), autoreg.ArgDefault("limit", 10))
	if err != nil {
		return err
	}
	_, err = autoreg.AddFunc(&q.Complex, search, opts)
	return err
}

// addKeys declares the entity keys. Books resolve through a typed key that
// accepts either key, magazines through a plain function and the Media
// interface through its own resolver.
func addKeys(s *typegraph.Schema, root services.Provider) error {
	reg := s.Federation()
	for _, k := range []struct{ typ, fields string }{
		{"Book", "id"},
		{"Book", "isbn"},
		{"Magazine", "id"},
		{"Media", "id"},
	} {
		if _, err := reg.Key(k.typ, k.fields); err != nil {
			return err
		}
	}

	bookResolver, err := autoreg.BuildReferenceResolver(func(c Catalog, key bookKey) (*Book, error) {
		switch {
		case key.ID != nil:
			b, _ := c.BookByID(*key.ID)
			return b, nil
		case key.ISBN != nil:
			b, _ := c.BookByISBN(*key.ISBN)
			return b, nil
		}
		return nil, fmt.Errorf("no book key given")
	}, root, s.Options())
	if err != nil {
		return err
	}
	if err := reg.ResolveReference("Book", bookResolver); err != nil {
		return err
	}

	magazineResolver, err := autoreg.BuildReferenceResolver(func(c Catalog, id string) *Magazine {
		m, _ := c.MagazineByID(id)
		return m
	}, root, s.Options(), autoreg.Service(), autoreg.Arg("id"))
	if err != nil {
		return err
	}
	if err := reg.ResolveReference("Magazine", magazineResolver); err != nil {
		return err
	}

	return reg.ResolveReference("Media", federation.ReferenceResolverFunc(func(ctx context.Context, rep federation.Representation) (interface{}, error) {
		c, ok := services.Get[Catalog](ctx, root)
		if !ok {
			return nil, fmt.Errorf("no catalog available")
		}
		id, _ := rep.Get("id")
		key := fmt.Sprint(id)
		if b, ok := c.BookByID(key); ok {
			return b, nil
		}
		if m, ok := c.MagazineByID(key); ok {
			return m, nil
		}
		return nil, nil
	}))
}
