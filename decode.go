package bytedata

import (
	"errors"
	"fmt"
	"io"
	"math"
	"reflect"
)

type decoder struct {
	o       *options
	scratch [8]byte
}

func readFull(r io.Reader, p []byte) error {
	_, err := io.ReadFull(r, p)
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}

// readTag reads one tag byte. A clean end of stream is returned as io.EOF.
func (d *decoder) readTag(r io.Reader) (Tag, error) {
	if _, err := io.ReadFull(r, d.scratch[:1]); err != nil {
		return 0, err
	}
	tag := Tag(d.scratch[0])
	if !tag.Valid() {
		return 0, fmt.Errorf("%w: %d", ErrUnknownTag, d.scratch[0])
	}
	return tag, nil
}

func (d *decoder) readInt32(r io.Reader) (int32, error) {
	if err := readFull(r, d.scratch[:lengthSize]); err != nil {
		return 0, err
	}
	return int32(byteOrder.Uint32(d.scratch[:lengthSize])), nil
}

// readLength reads a length prefix. Only lengths that size an allocation
// are bounded by maxDecodeSize; object and sequence bodies are consumed
// through a LimitedReader and may be any non-negative length.
func (d *decoder) readLength(r io.Reader, bounded bool) (int, error) {
	n, err := d.readInt32(r)
	if err != nil {
		return 0, fmt.Errorf("read length: %w", err)
	}
	if n < 0 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidLength, n)
	}
	if bounded && int64(n) > d.o.maxDecodeSize {
		return 0, fmt.Errorf("%w: %d (max %d)", ErrInvalidLength, n, d.o.maxDecodeSize)
	}
	return int(n), nil
}

// memberTag reads the tag of the next member of a length-prefixed body. The
// body running out is a count mismatch; the stream running out is truncation.
func (d *decoder) memberTag(body *io.LimitedReader, i, count int) (Tag, error) {
	tag, err := d.readTag(body)
	if errors.Is(err, io.EOF) {
		if body.N == 0 {
			return 0, fmt.Errorf("%w: body ended after %d of %d members", ErrMemberCountMismatch, i, count)
		}
		return 0, io.ErrUnexpectedEOF
	}
	return tag, err
}

func (d *decoder) objectHeader(r io.Reader, depth int) (*io.LimitedReader, int, error) {
	if depth > d.o.maxDepth {
		return nil, 0, fmt.Errorf("%w: %d", ErrMaxDepth, d.o.maxDepth)
	}
	n, err := d.readLength(r, false)
	if err != nil {
		return nil, 0, err
	}
	if n < lengthSize {
		return nil, 0, fmt.Errorf("%w: object body of %d bytes", ErrInvalidLength, n)
	}
	body := &io.LimitedReader{R: r, N: int64(n)}
	count, err := d.readInt32(body)
	if err != nil {
		return nil, 0, fmt.Errorf("read member count: %w", err)
	}
	if count < 0 {
		return nil, 0, fmt.Errorf("%w: negative count %d", ErrMemberCountMismatch, count)
	}
	return body, int(count), nil
}

func (d *decoder) sequenceHeader(r io.Reader, depth int) (*io.LimitedReader, error) {
	if depth > d.o.maxDepth {
		return nil, fmt.Errorf("%w: %d", ErrMaxDepth, d.o.maxDepth)
	}
	n, err := d.readLength(r, false)
	if err != nil {
		return nil, err
	}
	return &io.LimitedReader{R: r, N: int64(n)}, nil
}

func (d *decoder) decode(r io.Reader, v reflect.Value) error {
	tag, err := d.readTag(r)
	if err != nil {
		return err
	}
	return d.value(r, tag, v, 0)
}

func (d *decoder) value(r io.Reader, tag Tag, v reflect.Value, depth int) error {
	if v.Type() == nodeType {
		return d.rawNode(r, tag, v, depth)
	}
	switch tag {
	case TagObject:
		return d.object(r, v, depth+1)
	case TagConcatenated:
		return d.sequence(r, v, depth+1)
	case TagString:
		n, err := d.readLength(r, true)
		if err != nil {
			return err
		}
		body := make([]byte, n)
		if err := readFull(r, body); err != nil {
			return fmt.Errorf("read string: %w", err)
		}
		s, err := constantValue(TagString, body, d.o)
		if err != nil {
			return err
		}
		return assign(v, s)
	default:
		width, _, err := WidthOf(tag)
		if err != nil {
			return err
		}
		body := d.scratch[:width]
		if err := readFull(r, body); err != nil {
			return fmt.Errorf("read %s: %w", tag, err)
		}
		val, err := constantValue(tag, body, d.o)
		if err != nil {
			return err
		}
		return assign(v, val)
	}
}

// rawNode stores the undecoded node tree of the next value in a *Node
// target. Empty leaves the target nil, matching how a nil *Node encodes.
func (d *decoder) rawNode(r io.Reader, tag Tag, v reflect.Value, depth int) error {
	if tag == TagEmpty {
		v.SetZero()
		return nil
	}
	n, err := d.node(r, tag, depth)
	if err != nil {
		return err
	}
	v.Set(reflect.ValueOf(n))
	return nil
}

func (d *decoder) object(r io.Reader, v reflect.Value, depth int) error {
	body, count, err := d.objectHeader(r, depth)
	if err != nil {
		return err
	}
	return settle(v, func(target reflect.Value) error {
		if target.Kind() == reflect.Interface {
			return fmt.Errorf("%w: cannot construct an object for %s", ErrNoDefaultConstructor, target.Type())
		}
		if target.Kind() != reflect.Struct {
			return fmt.Errorf("%w: object into %s", ErrUnsupportedValueType, target.Type())
		}
		tf := fieldsFor(target.Type())
		if tf.err != nil {
			return tf.err
		}
		if len(tf.fields) == 0 {
			return fmt.Errorf("%w: %s has no ordinal fields", ErrUnsupportedValueType, target.Type())
		}
		if count > len(tf.positional) {
			return fmt.Errorf("%w: %d members for %d fields of %s", ErrMemberCountMismatch, count, len(tf.positional), target.Type())
		}
		for i := 0; i < count; i++ {
			f := tf.positional[i]
			tag, err := d.memberTag(body, i, count)
			if err != nil {
				return err
			}
			if err := d.value(body, tag, f.Get(target), depth); err != nil {
				return fmt.Errorf("field %s: %w", f.Name, err)
			}
		}
		if body.N != 0 {
			return fmt.Errorf("%w: %d bytes left after %d members", ErrMemberCountMismatch, body.N, count)
		}
		return nil
	})
}

func (d *decoder) sequence(r io.Reader, v reflect.Value, depth int) error {
	body, err := d.sequenceHeader(r, depth)
	if err != nil {
		return err
	}
	return settle(v, func(target reflect.Value) error {
		switch target.Kind() {
		case reflect.Slice:
			out := reflect.MakeSlice(target.Type(), 0, 0)
			for i := 0; body.N > 0; i++ {
				elem := reflect.New(target.Type().Elem()).Elem()
				if err := d.element(body, elem, i, depth); err != nil {
					return err
				}
				out = reflect.Append(out, elem)
			}
			target.Set(out)
			return nil
		case reflect.Array:
			i := 0
			for ; body.N > 0; i++ {
				if i >= target.Len() {
					return fmt.Errorf("%w: more than %d elements for %s", ErrMemberCountMismatch, target.Len(), target.Type())
				}
				if err := d.element(body, target.Index(i), i, depth); err != nil {
					return err
				}
			}
			if i != target.Len() {
				return fmt.Errorf("%w: %d elements for %s", ErrMemberCountMismatch, i, target.Type())
			}
			return nil
		case reflect.Interface:
			var out []any
			for i := 0; body.N > 0; i++ {
				var elem any
				if err := d.element(body, reflect.ValueOf(&elem).Elem(), i, depth); err != nil {
					return err
				}
				out = append(out, elem)
			}
			if out == nil {
				out = []any{}
			}
			return assignValue(target, reflect.ValueOf(out))
		default:
			return fmt.Errorf("%w: sequence into %s", ErrUnsupportedValueType, target.Type())
		}
	})
}

func (d *decoder) element(body *io.LimitedReader, elem reflect.Value, i, depth int) error {
	tag, err := d.readTag(body)
	if errors.Is(err, io.EOF) {
		err = io.ErrUnexpectedEOF
	}
	if err == nil {
		err = d.value(body, tag, elem, depth)
	}
	if err != nil {
		return fmt.Errorf("element %d: %w", i, err)
	}
	return nil
}

// settle runs fill against the value v ultimately stores. Pointers are always
// replaced by freshly allocated values, never written through, so a decode
// never mutates memory shared with the caller's previous value.
func settle(v reflect.Value, fill func(reflect.Value) error) error {
	if v.Kind() != reflect.Pointer {
		return fill(v)
	}
	fresh := reflect.New(v.Type().Elem())
	if err := settle(fresh.Elem(), fill); err != nil {
		return err
	}
	v.Set(fresh)
	return nil
}

// assign stores the natural Go value of a constant into v, converting
// between integer widths when the value fits.
func assign(v reflect.Value, val any) error {
	if val == nil {
		v.SetZero()
		return nil
	}
	return settle(v, func(target reflect.Value) error {
		mismatch := func() error {
			return fmt.Errorf("%w: cannot assign %T to %s", ErrUnsupportedValueType, val, target.Type())
		}
		switch target.Kind() {
		case reflect.Interface:
			return assignValue(target, reflect.ValueOf(val))
		case reflect.Bool:
			b, ok := val.(uint8)
			if !ok {
				return mismatch()
			}
			target.SetBool(b != 0)
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			i, ok := toInt64(val)
			if !ok || target.OverflowInt(i) {
				return mismatch()
			}
			target.SetInt(i)
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			u, ok := toUint64(val)
			if !ok || target.OverflowUint(u) {
				return mismatch()
			}
			target.SetUint(u)
		case reflect.Float32, reflect.Float64:
			var f float64
			switch x := val.(type) {
			case float32:
				f = float64(x)
			case float64:
				f = x
			default:
				return mismatch()
			}
			if target.OverflowFloat(f) {
				return mismatch()
			}
			target.SetFloat(f)
		case reflect.String:
			s, ok := val.(string)
			if !ok {
				return mismatch()
			}
			target.SetString(s)
		default:
			return mismatch()
		}
		return nil
	})
}

func assignValue(target, val reflect.Value) error {
	if !val.Type().AssignableTo(target.Type()) {
		return fmt.Errorf("%w: cannot assign %s to %s", ErrUnsupportedValueType, val.Type(), target.Type())
	}
	target.Set(val)
	return nil
}

func toInt64(val any) (int64, bool) {
	switch x := val.(type) {
	case int8:
		return int64(x), true
	case int16:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	case uint8:
		return int64(x), true
	case Char:
		return int64(x), true
	case uint16:
		return int64(x), true
	case uint32:
		return int64(x), true
	case uint64:
		if x > math.MaxInt64 {
			return 0, false
		}
		return int64(x), true
	}
	return 0, false
}

func toUint64(val any) (uint64, bool) {
	switch x := val.(type) {
	case uint8:
		return uint64(x), true
	case Char:
		return uint64(x), true
	case uint16:
		return uint64(x), true
	case uint32:
		return uint64(x), true
	case uint64:
		return x, true
	}
	if i, ok := toInt64(val); ok && i >= 0 {
		return uint64(i), true
	}
	return 0, false
}
