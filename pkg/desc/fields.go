package desc

import (
	"encoding"
	"fmt"
	"reflect"
	"strings"
	"sync"
)

type arity int

const (
	arityScalar arity = iota
	arityOptional
	aritySequence
)

func (a arity) String() string {
	switch a {
	case arityOptional:
		return "optional"
	case aritySequence:
		return "sequence"
	default:
		return "scalar"
	}
}

// field describes how a single struct field maps onto a block.
type field struct {
	name  string
	key   string
	index int
	arity arity
	// omitEmpty is set for scalars tagged omitempty
	omitEmpty bool
}

func (f *field) required() bool {
	return f.arity == arityScalar && !f.omitEmpty
}

type structFields struct {
	list  []field
	byKey map[string]int
}

type cacheEntry struct {
	fields *structFields
	err    error
}

var fieldCache sync.Map // map[reflect.Type]cacheEntry

var (
	textMarshalerType   = reflect.TypeFor[encoding.TextMarshaler]()
	textUnmarshalerType = reflect.TypeFor[encoding.TextUnmarshaler]()
)

// cachedTypeFields returns the field table for t, building it on first
// use.
func cachedTypeFields(t reflect.Type) (*structFields, error) {
	if v, ok := fieldCache.Load(t); ok {
		e := v.(cacheEntry)
		return e.fields, e.err
	}
	fields, err := typeFields(t)
	v, _ := fieldCache.LoadOrStore(t, cacheEntry{fields: fields, err: err})
	e := v.(cacheEntry)
	return e.fields, e.err
}

func typeFields(t reflect.Type) (*structFields, error) {
	if t.Kind() != reflect.Struct {
		return nil, &UnsupportedTypeError{Type: t}
	}
	sf := &structFields{
		byKey: map[string]int{},
	}
	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		tag := f.Tag.Get("desc")
		if tag == "-" {
			continue
		}
		key, opts, _ := strings.Cut(tag, ",")
		if key == "" {
			key = f.Name
		}
		if strings.ContainsAny(key, "%\n") {
			return nil, &UnsupportedTypeError{Type: t, Field: f.Name, Reason: fmt.Sprintf("invalid key %q", key)}
		}
		if _, ok := sf.byKey[key]; ok {
			return nil, &UnsupportedTypeError{Type: t, Field: f.Name, Reason: fmt.Sprintf("duplicate key %q", key)}
		}
		a, ok := fieldArity(f.Type)
		if !ok {
			return nil, &UnsupportedTypeError{Type: t, Field: f.Name, Reason: fmt.Sprintf("unsupported field type %s", f.Type)}
		}
		omitEmpty := opts == "omitempty"
		if omitEmpty && a == arityScalar {
			a = arityOptional
		}
		sf.byKey[key] = len(sf.list)
		sf.list = append(sf.list, field{
			name:      f.Name,
			key:       key,
			index:     i,
			arity:     a,
			omitEmpty: omitEmpty,
		})
	}
	return sf, nil
}

func fieldArity(t reflect.Type) (arity, bool) {
	if isScalar(t) {
		return arityScalar, true
	}
	switch t.Kind() {
	case reflect.Pointer:
		if isScalar(t.Elem()) {
			return arityOptional, true
		}
	case reflect.Slice:
		if isScalar(t.Elem()) {
			return aritySequence, true
		}
	}
	return 0, false
}

// isText reports whether t can be converted to and from a single line
// using the encoding.Text* interfaces.
func isText(t reflect.Type) bool {
	pt := reflect.PointerTo(t)
	return pt.Implements(textUnmarshalerType) && (t.Implements(textMarshalerType) || pt.Implements(textMarshalerType))
}

func isScalar(t reflect.Type) bool {
	if t.Kind() == reflect.Pointer {
		return false
	}
	if isText(t) {
		return true
	}
	switch t.Kind() {
	case reflect.String, reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
