package autoreg

import (
	"context"
	stderrors "errors"
	"reflect"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/graph-gophers/typegraph/errors"
	"github.com/graph-gophers/typegraph/types"
)

type author struct {
	Name string
}

func (a author) Upper() string { return strings.ToUpper(a.Name) }

type book struct {
	ID     types.IDValue
	Title  string `description:"The title."`
	Author *author
	Tags   []string
	ISBN   string `deprecated:""`
	Secret string `graphql:"-"`
	Events <-chan int
}

type summaryArgs struct {
	Max    int    `default:"10" description:"Maximum length."`
	Suffix string `graphql:"ellipsis" default:"more"`
}

type rates interface {
	Rate(currency string) float64
}

type fixedRates map[string]float64

func (r fixedRates) Rate(currency string) float64 { return r[currency] }

var errInvalid = stderrors.New("invalid book")

func (b *book) Summary(args summaryArgs) string {
	if len(b.Title) <= args.Max {
		return b.Title
	}
	return b.Title[:args.Max] + " " + args.Suffix
}

func (b *book) ReviewsAsync(ctx context.Context) func() ([]string, error) {
	return func() ([]string, error) {
		return []string{"great", "long"}, nil
	}
}

func (b *book) Headline() string { return strings.ToUpper(b.Title) }

func (b *book) Price(r rates) float64 { return r.Rate("EUR") * 10 }

func (b *book) Updates(ctx context.Context) <-chan string {
	ch := make(chan string, 2)
	ch <- b.Title + " v1"
	ch <- b.Title + " v2"
	close(ch)
	return ch
}

func (b *book) CoAuthor() *author { return nil }

func (b *book) Validate() (bool, error) { return false, errInvalid }

func (b *book) Close() error { return nil }

func (b *book) String() string { return b.Title }

func bookOptions() *Options {
	opts := DefaultOptions()
	opts.Mapper.Bind(reflect.TypeOf(author{}), "Author")
	return opts
}

func memberNames(members []*Member) []string {
	names := make([]string, len(members))
	for i, m := range members {
		names[i] = m.Name
	}
	return names
}

func TestDescribeType(t *testing.T) {
	members, err := DescribeType(reflect.TypeOf(book{}), bookOptions(), true)
	require.NoError(t, err)

	want := []string{
		"id", "title", "author", "tags", "isbn", "events",
		"coAuthor", "headline", "price", "reviews", "summary", "updates", "validate",
	}
	if diff := cmp.Diff(want, memberNames(members)); diff != "" {
		t.Fatalf("members mismatch (-want +got):\n%s", diff)
	}

	byName := make(map[string]*Member)
	for _, m := range members {
		byName[m.Name] = m
	}
	assert.Equal(t, DataMember, byName["title"].Kind)
	assert.Equal(t, Method, byName["summary"].Kind)
	assert.True(t, byName["reviews"].Async)
	assert.Equal(t, "ReviewsAsync", byName["reviews"].GoName)
	assert.True(t, byName["updates"].Stream)
	assert.True(t, byName["events"].Stream)
	assert.True(t, byName["validate"].HasError)
	assert.Equal(t, "book.Summary", byName["summary"].Path())
}

func TestDescribeTypeWithoutFieldResolvers(t *testing.T) {
	members, err := DescribeType(reflect.TypeOf(book{}), &Options{}, true)
	require.NoError(t, err)
	for _, m := range members {
		assert.NotEqual(t, DataMember, m.Kind, m.Name)
	}

	members, err = DescribeType(reflect.TypeOf(book{}), &Options{}, false)
	require.NoError(t, err)
	assert.Len(t, members, 6)
}

func TestDescribeTypeIgnoreMethods(t *testing.T) {
	opts := bookOptions()
	opts.IgnoreMethods = []string{"Headline", "Validate"}
	members, err := DescribeType(reflect.TypeOf(book{}), opts, true)
	require.NoError(t, err)
	names := memberNames(members)
	assert.NotContains(t, names, "headline")
	assert.NotContains(t, names, "validate")
	assert.NotContains(t, names, "close")
	assert.NotContains(t, names, "string")
}

func TestClassifyParameters(t *testing.T) {
	members, err := DescribeType(reflect.TypeOf(book{}), bookOptions(), true)
	require.NoError(t, err)

	params := make(map[string][]*Parameter)
	for _, m := range members {
		params[m.Name] = m.Params
	}

	summary := params["summary"]
	require.Len(t, summary, 2)
	assert.Equal(t, "max", summary[0].Name)
	assert.Equal(t, types.QueryArgument, summary[0].Binding)
	assert.Equal(t, 10, summary[0].Default)
	assert.True(t, summary[0].HasDefault)
	assert.Equal(t, "Maximum length.", summary[0].Description)
	assert.Equal(t, "ellipsis", summary[1].Name)
	assert.Equal(t, "more", summary[1].Default)

	require.Len(t, params["reviews"], 1)
	assert.Equal(t, types.FromContext, params["reviews"][0].Binding)

	require.Len(t, params["price"], 1)
	assert.Equal(t, types.FromService, params["price"][0].Binding)
}

type locale string

type greeter struct{}

func (greeter) Greeting(l locale) string { return "hello " + string(l) }

func TestClassifyRejectsUnnamedParameters(t *testing.T) {
	_, err := DescribeType(reflect.TypeOf(greeter{}), DefaultOptions(), true)
	var sce *errors.SchemaConstructionError
	require.ErrorAs(t, err, &sce)
	assert.Equal(t, "greeting", sce.Field)
}

func TestClassifyInjectTags(t *testing.T) {
	type args struct {
		Book  *book           `inject:"source"`
		Rates rates           `inject:"service"`
		Ctx   context.Context `inject:"context"`
		Limit int
	}
	m := &Member{Name: "f", Owner: reflect.TypeOf(&book{})}
	params, err := expandArgs(m, reflect.TypeOf(args{}), 0)
	require.NoError(t, err)

	got := make([]types.BindingKind, len(params))
	for i, p := range params {
		got[i] = p.Binding
	}
	want := []types.BindingKind{types.FromSource, types.FromService, types.FromContext, types.QueryArgument}
	assert.Equal(t, want, got)

	type bad struct {
		X int `inject:"database"`
	}
	_, err = expandArgs(m, reflect.TypeOf(bad{}), 0)
	assert.Error(t, err)
}

func TestInvalidDefaultTag(t *testing.T) {
	type args struct {
		Max int `default:"ten"`
	}
	m := &Member{Name: "f"}
	_, err := expandArgs(m, reflect.TypeOf(args{}), 0)
	var sce *errors.SchemaConstructionError
	require.ErrorAs(t, err, &sce)
	assert.Contains(t, sce.Reason, "max")
}

func TestFuncMember(t *testing.T) {
	m, err := FuncMember("search", func(ctx context.Context, q string, limit int) ([]*book, error) {
		return nil, nil
	}, Arg("q"), ArgDefault("limit", 5))
	require.NoError(t, err)

	assert.Equal(t, Func, m.Kind)
	assert.True(t, m.HasError)
	require.Len(t, m.Params, 3)
	assert.Equal(t, types.FromContext, m.Params[0].Binding)
	assert.Equal(t, "q", m.Params[1].Name)
	assert.Equal(t, 1, m.Params[1].Position)
	assert.Equal(t, 5, m.Params[2].Default)
	assert.True(t, m.Params[2].HasDefault)
}

func TestFuncMemberErrors(t *testing.T) {
	tests := []struct {
		name   string
		fn     interface{}
		params []Param
	}{
		{name: "not a func", fn: 42},
		{name: "nil func", fn: (func() string)(nil)},
		{name: "undescribed parameter", fn: func(s string) string { return s }},
		{name: "unnamed argument", fn: func(s string) string { return s }, params: []Param{{Binding: types.QueryArgument}}},
		{name: "too many params", fn: func() string { return "" }, params: []Param{Arg("x")}},
		{name: "error only", fn: func() error { return nil }},
		{name: "no results", fn: func() {}},
		{name: "second result not error", fn: func() (string, string) { return "", "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FuncMember("f", tt.fn, tt.params...)
			assert.Error(t, err)
		})
	}

	_, err := FuncMember("f", 42)
	var umk *errors.UnsupportedMemberKindError
	require.ErrorAs(t, err, &umk)
	assert.Equal(t, "int", umk.Kind)
}

func TestLowerFirst(t *testing.T) {
	tests := map[string]string{
		"Title":    "title",
		"ID":       "id",
		"ISBN":     "isbn",
		"HTMLBody": "htmlBody",
		"CoAuthor": "coAuthor",
		"title":    "title",
		"":         "",
	}
	for in, want := range tests {
		assert.Equal(t, want, lowerFirst(in), in)
	}
}

func TestMemberKindString(t *testing.T) {
	assert.Equal(t, "DataMember", DataMember.String())
	assert.Equal(t, "Method", Method.String())
	assert.Equal(t, "Func", Func.String())
	assert.Equal(t, "MemberKind(7)", MemberKind(7).String())
}
