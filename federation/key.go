// Package federation resolves entity representations by key.
//
// Entity types declare one or more keys, written in the selection syntax of
// the @key directive (e.g. "id", "sku package", "sku variation { id }"), and
// register a ReferenceResolver. A Dispatcher resolves a batch of
// representations against the registry, one independent result per
// representation.
package federation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
)

// KeyField is one selected field of a key, with its nested selections.
type KeyField struct {
	Name       string
	Selections FieldSet
}

// FieldSet is a parsed key selection.
type FieldSet []*KeyField

// ParseFieldSet parses the fields argument of a @key directive.
func ParseFieldSet(fields string) (FieldSet, error) {
	if strings.TrimSpace(fields) == "" {
		return nil, fmt.Errorf("key fields must not be empty")
	}
	doc, err := parser.ParseQuery(&ast.Source{Name: "key", Input: "{ " + fields + " }"})
	if err != nil {
		return nil, fmt.Errorf("invalid key fields %q: %w", fields, err)
	}
	if len(doc.Operations) != 1 || len(doc.Fragments) != 0 {
		return nil, fmt.Errorf("invalid key fields %q: expected a single selection", fields)
	}
	return fromSelectionSet(fields, doc.Operations[0].SelectionSet)
}

func fromSelectionSet(raw string, set ast.SelectionSet) (FieldSet, error) {
	var fs FieldSet
	seen := make(map[string]bool)
	for _, sel := range set {
		f, ok := sel.(*ast.Field)
		if !ok {
			return nil, fmt.Errorf("invalid key fields %q: fragments are not allowed", raw)
		}
		if f.Alias != "" && f.Alias != f.Name {
			return nil, fmt.Errorf("invalid key fields %q: alias %q is not allowed", raw, f.Alias)
		}
		if len(f.Arguments) > 0 || len(f.Directives) > 0 {
			return nil, fmt.Errorf("invalid key fields %q: field %q must not have arguments or directives", raw, f.Name)
		}
		if seen[f.Name] {
			return nil, fmt.Errorf("invalid key fields %q: field %q is selected twice", raw, f.Name)
		}
		seen[f.Name] = true

		kf := &KeyField{Name: f.Name}
		if len(f.SelectionSet) > 0 {
			nested, err := fromSelectionSet(raw, f.SelectionSet)
			if err != nil {
				return nil, err
			}
			kf.Selections = nested
		}
		fs = append(fs, kf)
	}
	return fs, nil
}

// Names returns the top-level field names.
func (fs FieldSet) Names() []string {
	names := make([]string, len(fs))
	for i, f := range fs {
		names[i] = f.Name
	}
	return names
}

// String renders the field set in selection syntax.
func (fs FieldSet) String() string {
	var sb strings.Builder
	for i, f := range fs {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(f.Name)
		if len(f.Selections) > 0 {
			sb.WriteString(" { ")
			sb.WriteString(f.Selections.String())
			sb.WriteString(" }")
		}
	}
	return sb.String()
}

// CoveredBy reports whether every selected field is present and non-null in
// fields. Nested selections must be covered by nested objects; for lists every
// element must cover them. Fields not in the set are ignored.
func (fs FieldSet) CoveredBy(fields map[string]interface{}) bool {
	for _, f := range fs {
		v, ok := fields[f.Name]
		if !ok || v == nil {
			return false
		}
		if len(f.Selections) > 0 && !f.Selections.coversValue(v) {
			return false
		}
	}
	return true
}

func (fs FieldSet) coversValue(v interface{}) bool {
	switch v := v.(type) {
	case map[string]interface{}:
		return fs.CoveredBy(v)
	case []interface{}:
		for _, e := range v {
			if !fs.coversValue(e) {
				return false
			}
		}
		return true
	}
	return false
}

// Key is one declared identity of an entity type.
type Key struct {
	Owner      string
	Fields     FieldSet
	Resolvable bool
}

func (k *Key) String() string {
	return k.Fields.String()
}

// KeyOption configures a key.
type KeyOption func(*Key)

// NonResolvable marks a key that is declared for reference only.
func NonResolvable() KeyOption {
	return func(k *Key) { k.Resolvable = false }
}

// matchKey returns the first resolvable key covered by fields.
func matchKey(keys []*Key, fields map[string]interface{}) (*Key, bool) {
	for _, k := range keys {
		if k.Resolvable && k.Fields.CoveredBy(fields) {
			return k, true
		}
	}
	return nil, false
}

func resolvableKeys(keys []*Key) []string {
	var out []string
	for _, k := range keys {
		if k.Resolvable {
			out = append(out, k.String())
		}
	}
	return out
}

func fieldNames(fields map[string]interface{}) []string {
	names := make([]string, 0, len(fields))
	for n := range fields {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
