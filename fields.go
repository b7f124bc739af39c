package bytedata

import (
	"fmt"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"sync"
)

// tagKey is the struct tag that assigns a field its ordinal:
//
//	Name string `bytedata:"1"`
const tagKey = "bytedata"

// Field describes one serializable struct field.
type Field struct {
	Ordinal int
	Name    string
	Index   int
	Type    reflect.Type

	encodable bool
}

// Get returns the field of the struct value v.
func (f Field) Get(v reflect.Value) reflect.Value {
	return v.Field(f.Index)
}

// Set assigns x to the field of the struct value v.
func (f Field) Set(v, x reflect.Value) {
	v.Field(f.Index).Set(x)
}

type typeFields struct {
	// fields is every ordinal field, sorted by ordinal.
	fields []Field
	// positional is the subset with an encodable static type. Decoding
	// assigns members to these in order.
	positional []Field
	err        error
}

var descriptors sync.Map

var nodeType = reflect.TypeOf((**Node)(nil)).Elem()

// FieldsOf returns the ordinal fields of the struct type t (or of the struct
// t points to) sorted by ordinal. The result is computed once per type.
func FieldsOf(t reflect.Type) ([]Field, error) {
	tf := fieldsFor(t)
	if tf.err != nil {
		return nil, tf.err
	}
	return slices.Clone(tf.fields), nil
}

// Register builds and validates the descriptor table for T so that ordinal
// mistakes surface at registration rather than on first use.
func Register[T any]() error {
	_, err := FieldsOf(reflect.TypeOf((*T)(nil)).Elem())
	return err
}

// MustRegister is like Register but panics on error. It is intended for
// package level var blocks and init functions.
func MustRegister[T any]() {
	if err := Register[T](); err != nil {
		panic(err)
	}
}

func fieldsFor(t reflect.Type) *typeFields {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if cached, ok := descriptors.Load(t); ok {
		return cached.(*typeFields)
	}
	tf := analyze(t)
	actual, _ := descriptors.LoadOrStore(t, tf)
	return actual.(*typeFields)
}

func analyze(t reflect.Type) *typeFields {
	tf := &typeFields{}
	if t.Kind() != reflect.Struct {
		tf.err = fmt.Errorf("%w: %s is not a struct", ErrUnsupportedValueType, t)
		return tf
	}

	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		ordinal, ok, err := ordinalOf(sf)
		if err != nil {
			tf.err = fmt.Errorf("%s.%s: %w", t, sf.Name, err)
			return tf
		}
		if !ok {
			continue
		}
		tf.fields = append(tf.fields, Field{
			Ordinal:   ordinal,
			Name:      sf.Name,
			Index:     i,
			Type:      sf.Type,
			encodable: encodable(sf.Type),
		})
	}

	slices.SortStableFunc(tf.fields, func(a, b Field) int {
		return a.Ordinal - b.Ordinal
	})
	for i := 1; i < len(tf.fields); i++ {
		if tf.fields[i].Ordinal == tf.fields[i-1].Ordinal {
			tf.err = fmt.Errorf("%w: %d is used by %s.%s and %s.%s", ErrDuplicateOrdinal,
				tf.fields[i].Ordinal, t, tf.fields[i-1].Name, t, tf.fields[i].Name)
			return tf
		}
	}

	for _, f := range tf.fields {
		if f.encodable {
			tf.positional = append(tf.positional, f)
		}
	}
	return tf
}

func ordinalOf(sf reflect.StructField) (int, bool, error) {
	if !sf.IsExported() {
		return 0, false, nil
	}
	tag, ok := sf.Tag.Lookup(tagKey)
	if !ok || tag == "-" {
		return 0, false, nil
	}
	name, _, _ := strings.Cut(tag, ",")
	ordinal, err := strconv.Atoi(strings.TrimSpace(name))
	if err != nil || ordinal < 0 {
		return 0, false, fmt.Errorf("%w: %q", ErrInvalidOrdinal, tag)
	}
	return ordinal, true, nil
}

// hasOrdinalFields reports whether t declares at least one ordinal field
// without building its full table, so self-referencing types terminate.
func hasOrdinalFields(t reflect.Type) bool {
	for i := 0; i < t.NumField(); i++ {
		if _, ok, err := ordinalOf(t.Field(i)); ok || err != nil {
			return true
		}
	}
	return false
}

// encodable reports whether values of static type t have a wire mapping.
// Interfaces are accepted; their dynamic value is checked at encode time.
func encodable(t reflect.Type) bool {
	return encodableDepth(t, 0)
}

func encodableDepth(t reflect.Type, depth int) bool {
	// bounds types like `type list []list`
	if depth > MaxDepth {
		return false
	}
	if t == nodeType {
		return true
	}
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64,
		reflect.String, reflect.Interface:
		return true
	case reflect.Pointer, reflect.Slice, reflect.Array:
		return encodableDepth(t.Elem(), depth+1)
	case reflect.Struct:
		return hasOrdinalFields(t)
	default:
		return false
	}
}
