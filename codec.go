// Package bytedata is a self-describing tagged binary serializer. Structs
// opt in field by field with ordinal tags:
//
//	type Item struct {
//		Kind uint8  `bytedata:"0"`
//		Name string `bytedata:"1"`
//	}
//
// Every value on the wire starts with a one-byte Tag; strings, objects and
// sequences follow it with a little-endian int32 length.
package bytedata

import (
	"bytes"
	"fmt"
	"io"
	"reflect"
)

// Codec saves and loads values with a fixed set of options. A Codec holds
// no mutable state and is safe for concurrent use; thread safety of a
// configured StringCache is up to the cache.
type Codec struct {
	opts *options
}

var _ Encoder = &Codec{}

// New creates a codec configured by opts.
func New(opts ...Option) *Codec {
	return &Codec{opts: newOptions(opts)}
}

// Node builds the container node for v without writing it anywhere.
func (c *Codec) Node(v any) (*Node, error) {
	e := &encoder{o: c.opts}
	return e.node(reflect.ValueOf(v), 0)
}

// Save encodes v and writes it to w in one pass, then flushes w if it has a
// Flush method. w is never closed.
func (c *Codec) Save(w io.Writer, v any) error {
	if !writable(w) {
		return ErrStreamNotWritable
	}
	n, err := c.Node(v)
	if err != nil {
		return fmt.Errorf("bytedata: save %T: %w", v, err)
	}
	if _, err := n.WriteTo(w); err != nil {
		return fmt.Errorf("bytedata: write: %w", err)
	}
	if f, ok := w.(interface{ Flush() error }); ok {
		if err := f.Flush(); err != nil {
			return fmt.Errorf("bytedata: flush: %w", err)
		}
	}
	return nil
}

// Load decodes one value from r into the value v points to. The target is
// only modified when the whole value decodes; fields the stream does not
// carry keep their current value.
func (c *Codec) Load(r io.Reader, v any) error {
	if !readable(r) {
		return ErrStreamNotReadable
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("bytedata: load: %w: need a non-nil pointer, got %T", ErrUnsupportedValueType, v)
	}
	tmp := reflect.New(rv.Elem().Type())
	tmp.Elem().Set(rv.Elem())
	d := &decoder{o: c.opts}
	if err := d.decode(r, tmp.Elem()); err != nil {
		return fmt.Errorf("bytedata: load %T: %w", v, err)
	}
	rv.Elem().Set(tmp.Elem())
	return nil
}

// Encode returns the encoded bytes of v.
func (c *Codec) Encode(v any) ([]byte, error) {
	n, err := c.Node(v)
	if err != nil {
		return nil, fmt.Errorf("bytedata: encode %T: %w", v, err)
	}
	return n.Bytes(), nil
}

// Decode decodes data into v. data must hold exactly one value.
func (c *Codec) Decode(data []byte, v any) error {
	r := bytes.NewReader(data)
	if err := c.Load(r, v); err != nil {
		return err
	}
	if r.Len() != 0 {
		return fmt.Errorf("bytedata: decode %T: %d trailing bytes", v, r.Len())
	}
	return nil
}

// Save encodes v to w. See Codec.Save.
func Save(w io.Writer, v any, opts ...Option) error {
	return New(opts...).Save(w, v)
}

// Load decodes one value from r into v. See Codec.Load.
func Load(r io.Reader, v any, opts ...Option) error {
	return New(opts...).Load(r, v)
}

// FromStream decodes one value from r into a freshly constructed T.
func FromStream[T any](r io.Reader, opts ...Option) (T, error) {
	var out T
	if err := Load(r, &out, opts...); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

// Marshal returns the encoded bytes of v.
func Marshal(v any, opts ...Option) ([]byte, error) {
	return New(opts...).Encode(v)
}

// Unmarshal decodes data into v.
func Unmarshal(data []byte, v any, opts ...Option) error {
	return New(opts...).Decode(data, v)
}

func writable(w io.Writer) bool {
	if w == nil {
		return false
	}
	if c, ok := w.(interface{ CanWrite() bool }); ok {
		return c.CanWrite()
	}
	return true
}

func readable(r io.Reader) bool {
	if r == nil {
		return false
	}
	if c, ok := r.(interface{ CanRead() bool }); ok {
		return c.CanRead()
	}
	return true
}
