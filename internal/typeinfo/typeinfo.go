// Package typeinfo derives wire types from Go types.
//
// Describe records the list levels and nullability of a Go type together with
// any explicit overrides; Info.Type then maps the base type through a Mapper.
// Nullability is decided, highest priority first, by an explicit override, a
// tag annotation, the Go kind (value types are non-null), and finally
// defaults to nullable.
package typeinfo

import (
	"reflect"
	"strings"

	"github.com/graph-gophers/typegraph/errors"
	"github.com/graph-gophers/typegraph/types"
)

// Options carries the explicit signals for one member.
type Options struct {
	// Member names the described member in errors.
	Member string
	// Override replaces the derived type entirely.
	Override types.Type
	// NonNull forces the nullability of the outermost level.
	NonNull *bool
	// Tag holds the options of a graphql struct tag, e.g. "name,nullable".
	Tag string
}

// Info is the immutable description of one member's wire type.
type Info struct {
	Member string
	GoType reflect.Type
	// Base is the Go type left once pointers, lists, channels and thunks
	// have been removed.
	Base reflect.Type
	// NonNull has one entry per level, the outermost first and the base
	// last, so len(NonNull) == ListDepth+1.
	NonNull   []bool
	ListDepth int
	Override  types.Type

	// Stream is set for channel types, Async for func() T thunks.
	Stream bool
	Async  bool
}

var byteSliceType = reflect.TypeOf([]byte(nil))

// Describe builds the Info of t.
func Describe(t reflect.Type, opts Options) (*Info, error) {
	if t == nil {
		return nil, &errors.TypeMappingError{Member: opts.Member, Reason: "no type"}
	}
	info := &Info{Member: opts.Member, GoType: t, Override: opts.Override}

	if t.Kind() == reflect.Chan {
		if t.ChanDir() == reflect.SendDir {
			return nil, &errors.TypeMappingError{Member: opts.Member, GoType: t, Reason: "send-only channels cannot be read"}
		}
		info.Stream = true
		t = t.Elem()
	}
	if elem, ok := ThunkResult(t); ok {
		info.Async = true
		t = elem
	}

	for {
		nonNull := isValueKind(t.Kind())
		if t.Kind() == reflect.Ptr {
			t = t.Elem()
			nonNull = false
		}
		if isList(t) {
			info.NonNull = append(info.NonNull, nonNull)
			info.ListDepth++
			t = t.Elem()
			continue
		}
		info.NonNull = append(info.NonNull, nonNull)
		break
	}
	info.Base = t

	if tagNonNull, ok := tagNullability(opts.Tag); ok {
		info.NonNull[0] = tagNonNull
	}
	if opts.NonNull != nil {
		info.NonNull[0] = *opts.NonNull
	}
	return info, nil
}

// Type maps the description to a wire type.
func (i *Info) Type(m *Mapper) (types.Type, error) {
	if i.Override != nil {
		return i.Override, nil
	}
	base, ok := m.Lookup(i.Base)
	if !ok {
		return nil, &errors.TypeMappingError{Member: i.Member, GoType: i.GoType}
	}

	t := wrap(base, i.NonNull[i.ListDepth])
	for level := i.ListDepth - 1; level >= 0; level-- {
		t = wrap(&types.List{OfType: t}, i.NonNull[level])
	}
	return t, nil
}

// IsNonNull reports the nullability of the outermost level.
func (i *Info) IsNonNull() bool { return i.NonNull[0] }

func wrap(t types.Type, nonNull bool) types.Type {
	if nonNull {
		return &types.NonNull{OfType: t}
	}
	return t
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// ThunkResult reports whether t is func() T or func() (T, error) and returns
// T.
func ThunkResult(t reflect.Type) (reflect.Type, bool) {
	if t.Kind() != reflect.Func || t.NumIn() != 0 || t.IsVariadic() {
		return nil, false
	}
	switch t.NumOut() {
	case 1:
		if t.Out(0) == errorType {
			return nil, false
		}
		return t.Out(0), true
	case 2:
		if t.Out(1) != errorType {
			return nil, false
		}
		return t.Out(0), true
	}
	return nil, false
}

func isList(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Slice:
		return t.Elem().Kind() != reflect.Uint8
	case reflect.Array:
		return true
	}
	return false
}

func isValueKind(k reflect.Kind) bool {
	switch k {
	case reflect.Ptr, reflect.Slice, reflect.Map, reflect.Interface, reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return false
	}
	return true
}

// tagNullability reads the nullable/required options of a graphql tag.
func tagNullability(tag string) (nonNull bool, ok bool) {
	if tag == "" {
		return false, false
	}
	parts := strings.Split(tag, ",")
	for _, opt := range parts[1:] {
		switch strings.TrimSpace(opt) {
		case "nullable":
			return false, true
		case "required", "nonnull":
			return true, true
		}
	}
	return false, false
}
