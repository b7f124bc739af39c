package bytedata

import (
	"errors"
	"fmt"
	"reflect"
)

type encoder struct {
	o *options
}

func (e *encoder) node(v reflect.Value, depth int) (*Node, error) {
	if depth > e.o.maxDepth {
		return nil, fmt.Errorf("%w: %d", ErrMaxDepth, e.o.maxDepth)
	}
	if !v.IsValid() {
		return Empty(), nil
	}
	if v.Type() == charType {
		return primitiveNode(Char(v.Uint()), e.o)
	}

	switch v.Kind() {
	case reflect.Pointer, reflect.Interface:
		if v.IsNil() {
			return Empty(), nil
		}
		if n, ok := v.Interface().(*Node); ok {
			return n, nil
		}
		return e.node(v.Elem(), depth)
	case reflect.Bool:
		return primitiveNode(v.Bool(), e.o)
	case reflect.Int8:
		return primitiveNode(int8(v.Int()), e.o)
	case reflect.Int16:
		return primitiveNode(int16(v.Int()), e.o)
	case reflect.Int32:
		return primitiveNode(int32(v.Int()), e.o)
	case reflect.Int, reflect.Int64:
		return primitiveNode(v.Int(), e.o)
	case reflect.Uint8:
		return primitiveNode(uint8(v.Uint()), e.o)
	case reflect.Uint16:
		return primitiveNode(uint16(v.Uint()), e.o)
	case reflect.Uint32:
		return primitiveNode(uint32(v.Uint()), e.o)
	case reflect.Uint, reflect.Uint64:
		return primitiveNode(v.Uint(), e.o)
	case reflect.Float32:
		return primitiveNode(float32(v.Float()), e.o)
	case reflect.Float64:
		return primitiveNode(v.Float(), e.o)
	case reflect.String:
		return stringNode(v.String(), e.o)
	case reflect.Struct:
		return e.composite(v, depth+1)
	case reflect.Slice:
		if v.IsNil() {
			return Empty(), nil
		}
		return e.sequence(v, depth+1)
	case reflect.Array:
		return e.sequence(v, depth+1)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedValueType, v.Type())
	}
}

func (e *encoder) composite(v reflect.Value, depth int) (*Node, error) {
	t := v.Type()
	tf := fieldsFor(t)
	if tf.err != nil {
		return nil, tf.err
	}
	if len(tf.fields) == 0 {
		return nil, fmt.Errorf("%w: %s has no ordinal fields", ErrUnsupportedValueType, t)
	}

	members := make([]*Node, 0, len(tf.fields))
	for _, f := range tf.fields {
		if !f.encodable {
			e.skip(t, f, fmt.Errorf("%w: %s", ErrUnsupportedValueType, f.Type))
			continue
		}
		n, err := e.node(f.Get(v), depth)
		if errors.Is(err, ErrUnsupportedValueType) {
			e.skip(t, f, err)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", f.Name, err)
		}
		members = append(members, n)
	}
	return Composite(members...), nil
}

// skip records a field left out of the output. Encoding is best effort: one
// field without a wire mapping does not fail the whole object.
func (e *encoder) skip(t reflect.Type, f Field, err error) {
	e.o.logger.Debug("bytedata: skipping field",
		"type", t.String(),
		"field", f.Name,
		"ordinal", f.Ordinal,
		"error", err,
	)
}

func (e *encoder) sequence(v reflect.Value, depth int) (*Node, error) {
	if !encodable(v.Type().Elem()) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedValueType, v.Type())
	}
	children := make([]*Node, v.Len())
	for i := range children {
		n, err := e.node(v.Index(i), depth)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		children[i] = n
	}
	return Concat(children...), nil
}
