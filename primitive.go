package bytedata

import (
	"fmt"
	"math"
	"reflect"
)

// Char is a UTF-16 code unit. It has its own wire tag, distinct from
// uint16 values which encode as UShort.
type Char uint16

var charType = reflect.TypeOf((*Char)(nil)).Elem()

// FromPrimitive maps a primitive Go value to a constant node. Strings encode
// as TagString, or as TagStringCached when a string cache option is given.
// A *Node is returned unchanged. Any other value fails with
// ErrUnsupportedValueType.
func FromPrimitive(value any, opts ...Option) (*Node, error) {
	return primitiveNode(value, newOptions(opts))
}

// ToPrimitive decodes a constant node into T. Empty yields the zero T.
func ToPrimitive[T any](n *Node, opts ...Option) (T, error) {
	var zero T
	v, err := n.Value(opts...)
	if err != nil {
		return zero, err
	}
	if v == nil {
		return zero, nil
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %s node holds %T, not %s", ErrUnsupportedValueType, n.tag, v, reflect.TypeOf((*T)(nil)).Elem())
	}
	return t, nil
}

func primitiveNode(value any, o *options) (*Node, error) {
	switch v := value.(type) {
	case nil:
		return Empty(), nil
	case *Node:
		return v, nil
	case bool:
		var b byte
		if v {
			b = 1
		}
		return fixedNode(TagByte, []byte{b}), nil
	case uint8:
		return fixedNode(TagByte, []byte{v}), nil
	case int8:
		return fixedNode(TagSByte, []byte{byte(v)}), nil
	case Char:
		return fixedNode(TagChar, byteOrder.AppendUint16(nil, uint16(v))), nil
	case int16:
		return fixedNode(TagShort, byteOrder.AppendUint16(nil, uint16(v))), nil
	case uint16:
		return fixedNode(TagUShort, byteOrder.AppendUint16(nil, v)), nil
	case int32:
		return fixedNode(TagInt, byteOrder.AppendUint32(nil, uint32(v))), nil
	case uint32:
		return fixedNode(TagUInt, byteOrder.AppendUint32(nil, v)), nil
	case int64:
		return fixedNode(TagLong, byteOrder.AppendUint64(nil, uint64(v))), nil
	case int:
		return fixedNode(TagLong, byteOrder.AppendUint64(nil, uint64(v))), nil
	case uint64:
		return fixedNode(TagULong, byteOrder.AppendUint64(nil, v)), nil
	case uint:
		return fixedNode(TagULong, byteOrder.AppendUint64(nil, uint64(v))), nil
	case float32:
		return fixedNode(TagFloat, byteOrder.AppendUint32(nil, math.Float32bits(v))), nil
	case float64:
		return fixedNode(TagDouble, byteOrder.AppendUint64(nil, math.Float64bits(v))), nil
	case string:
		return stringNode(v, o)
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedValueType, value)
	}
}

func fixedNode(tag Tag, body []byte) *Node {
	return newNode(&Node{tag: tag, body: body})
}

func stringNode(s string, o *options) (*Node, error) {
	if o.strings != nil {
		id := o.strings.Intern(s)
		return fixedNode(TagStringCached, byteOrder.AppendUint32(nil, uint32(id))), nil
	}
	text, err := o.encoding.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, fmt.Errorf("%w: encode string: %v", ErrUnsupportedValueType, err)
	}
	if int64(len(text)) > math.MaxInt32 {
		return nil, fmt.Errorf("%w: string of %d bytes", ErrInvalidLength, len(text))
	}
	return newNode(&Node{tag: TagString, body: text}), nil
}

// constantValue decodes the body of a constant tag into its natural Go type.
func constantValue(tag Tag, body []byte, o *options) (any, error) {
	switch tag {
	case TagEmpty:
		return nil, nil
	case TagByte:
		return body[0], nil
	case TagSByte:
		return int8(body[0]), nil
	case TagChar:
		return Char(byteOrder.Uint16(body)), nil
	case TagShort:
		return int16(byteOrder.Uint16(body)), nil
	case TagUShort:
		return byteOrder.Uint16(body), nil
	case TagInt:
		return int32(byteOrder.Uint32(body)), nil
	case TagUInt:
		return byteOrder.Uint32(body), nil
	case TagLong:
		return int64(byteOrder.Uint64(body)), nil
	case TagULong:
		return byteOrder.Uint64(body), nil
	case TagFloat:
		return math.Float32frombits(byteOrder.Uint32(body)), nil
	case TagDouble:
		return math.Float64frombits(byteOrder.Uint64(body)), nil
	case TagString:
		text, err := o.encoding.NewDecoder().Bytes(body)
		if err != nil {
			return nil, fmt.Errorf("decode string: %w", err)
		}
		return string(text), nil
	case TagStringCached:
		if o.strings == nil {
			return nil, ErrMissingStringCache
		}
		return o.strings.Lookup(int32(byteOrder.Uint32(body)))
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownTag, byte(tag))
	}
}
