package types_test

import (
	"reflect"
	"testing"

	"github.com/graph-gophers/typegraph/types"
)

func reflectTypeOf(v interface{}) reflect.Type { return reflect.TypeOf(v) }

func TestTypeString(t *testing.T) {
	typ := &types.NonNull{OfType: &types.List{OfType: &types.NonNull{OfType: types.String}}}
	if got := typ.String(); got != "[String!]!" {
		t.Fatalf("got %q", got)
	}
	if d := types.ListDepth(typ); d != 1 {
		t.Fatalf("unexpected list depth %d", d)
	}
	if types.Unwrap(typ) != types.String {
		t.Fatal("unwrap must reach the named type")
	}
}

func TestResolveReferences(t *testing.T) {
	author := types.NewObject("Author")
	lookup := func(name string) types.NamedType {
		if name == "Author" {
			return author
		}
		return nil
	}

	got, missing := types.ResolveReferences(&types.List{OfType: &types.NonNull{OfType: &types.TypeName{Name: "Author"}}}, lookup)
	if missing != "" {
		t.Fatalf("unexpected missing %q", missing)
	}
	if types.Unwrap(got) != author {
		t.Fatalf("reference not replaced: %v", got)
	}

	_, missing = types.ResolveReferences(&types.TypeName{Name: "Ghost"}, lookup)
	if missing != "Ghost" {
		t.Fatalf("expected Ghost to be missing, got %q", missing)
	}
}

func TestNameResolver(t *testing.T) {
	type book struct {
		ID    string
		Title string `graphql:"name"`
	}
	rc := &types.ResolveContext{Source: &book{ID: "1", Title: "Go"}}

	tests := []struct {
		field string
		want  interface{}
	}{
		{"id", "1"},
		{"name", "Go"},
	}
	for _, tt := range tests {
		got, err := types.NameResolver(tt.field).Resolve(rc)
		if err != nil {
			t.Fatalf("%s: %v", tt.field, err)
		}
		if got != tt.want {
			t.Errorf("%s: got %v, want %v", tt.field, got, tt.want)
		}
	}

	if _, err := types.NameResolver("missing").Resolve(rc); err == nil {
		t.Error("expected an error for an unknown member")
	}

	got, err := types.NameResolver("a").Resolve(&types.ResolveContext{Source: map[string]interface{}{"a": 1}})
	if err != nil || got != 1 {
		t.Errorf("map source: got %v, %v", got, err)
	}

	var nilBook *book
	got, err = types.NameResolver("id").Resolve(&types.ResolveContext{Source: nilBook})
	if err != nil || got != nil {
		t.Errorf("nil source: got %v, %v", got, err)
	}
}
