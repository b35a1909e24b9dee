package typeinfo

import (
	"reflect"
	"time"

	"github.com/graph-gophers/typegraph/types"
)

// Mapper maps base Go types to named wire types. Registered types win over
// the built-in kind mapping. It is filled during schema construction and only
// read afterwards.
type Mapper struct {
	named map[reflect.Type]types.Type
}

// NewMapper returns a Mapper that knows the built-in scalars.
func NewMapper() *Mapper {
	m := &Mapper{named: make(map[reflect.Type]types.Type)}
	m.named[reflect.TypeOf(types.IDValue(""))] = types.ID
	m.named[byteSliceType] = types.String
	m.named[reflect.TypeOf(time.Time{})] = &types.TypeName{Name: "Time"}
	return m
}

// Bind maps t to the type called name. The name stays a forward reference
// until the schema is built.
func (m *Mapper) Bind(t reflect.Type, name string) {
	m.named[deref(t)] = &types.TypeName{Name: name}
}

// BindType maps t to an already constructed named type.
func (m *Mapper) BindType(t reflect.Type, nt types.NamedType) {
	m.named[deref(t)] = nt
}

// Lookup returns the named type for t.
func (m *Mapper) Lookup(t reflect.Type) (types.Type, bool) {
	if t == nil {
		return nil, false
	}
	if nt, ok := m.named[deref(t)]; ok {
		return nt, true
	}
	switch t.Kind() {
	case reflect.String:
		return types.String, true
	case reflect.Bool:
		return types.Boolean, true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return types.Int, true
	case reflect.Float32, reflect.Float64:
		return types.Float, true
	}
	return nil, false
}

// Bound reports whether t was registered explicitly.
func (m *Mapper) Bound(t reflect.Type) bool {
	_, ok := m.named[deref(t)]
	return ok
}

func deref(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t
}
