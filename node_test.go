package bytedata

import (
	"bytes"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestPrimitiveWidthExactness(t *testing.T) {
	values := []any{
		true, uint8(7), int8(-7), Char('x'), int16(-300), uint16(300),
		int32(-70000), uint32(70000), int64(-1 << 40), 42, uint64(1 << 63), uint(9),
		float32(1.5), 2.25,
	}

	for _, v := range values {
		n, err := FromPrimitive(v)
		if err != nil {
			t.Fatalf("FromPrimitive(%T) failed: %v", v, err)
		}
		width, fixed, _ := WidthOf(n.Tag())
		if !fixed {
			t.Fatalf("%T mapped to variable width tag %s", v, n.Tag())
		}
		if got := len(n.Bytes()); got != 1+width {
			t.Errorf("%T: expected %d bytes, got %d", v, 1+width, got)
		}
		if n.Size() != len(n.Bytes()) {
			t.Errorf("%T: Size() = %d, Bytes() has %d", v, n.Size(), len(n.Bytes()))
		}
	}
}

func TestNodeStringLayout(t *testing.T) {
	n, err := FromPrimitive("hi")
	if err != nil {
		t.Fatalf("FromPrimitive() failed: %v", err)
	}

	want := []byte{byte(TagString), 2, 0, 0, 0, 'h', 'i'}
	if diff := cmp.Diff(want, n.Bytes()); diff != "" {
		t.Errorf("bytes mismatch (-want +got):\n%s", diff)
	}
}

func TestNodeCompositeLayout(t *testing.T) {
	a, _ := FromPrimitive(uint8(7))
	b, _ := FromPrimitive("hi")
	n := Composite(a, b)

	want := []byte{
		byte(TagObject), 13, 0, 0, 0,
		2, 0, 0, 0,
		byte(TagByte), 7,
		byte(TagString), 2, 0, 0, 0, 'h', 'i',
	}
	if diff := cmp.Diff(want, n.Bytes()); diff != "" {
		t.Errorf("bytes mismatch (-want +got):\n%s", diff)
	}
	if n.Len() != 13 {
		t.Errorf("Expected Len() 13, got %d", n.Len())
	}
}

func TestNodeConcatLayout(t *testing.T) {
	a, _ := FromPrimitive(int16(1))
	n := Concat(a, Empty())

	want := []byte{byte(TagConcatenated), 4, 0, 0, 0, byte(TagShort), 1, 0, byte(TagEmpty)}
	if diff := cmp.Diff(want, n.Bytes()); diff != "" {
		t.Errorf("bytes mismatch (-want +got):\n%s", diff)
	}
}

func TestNodeWriteTo(t *testing.T) {
	a, _ := FromPrimitive(int32(5))
	n := Composite(a)

	var buf bytes.Buffer
	written, err := n.WriteTo(&buf)
	if err != nil {
		t.Fatalf("WriteTo() failed: %v", err)
	}
	if written != int64(n.Size()) {
		t.Errorf("Expected %d bytes written, got %d", n.Size(), written)
	}
	if !bytes.Equal(buf.Bytes(), n.Bytes()) {
		t.Error("WriteTo output differs from Bytes()")
	}
}

func TestConstantValidatesWidth(t *testing.T) {
	if _, err := Constant(TagInt, []byte{1, 2}); !errors.Is(err, ErrInvalidLength) {
		t.Errorf("Expected ErrInvalidLength, got %v", err)
	}
	if _, err := Constant(TagObject, nil); err == nil {
		t.Error("Expected error for object constant, got nil")
	}
	if _, err := Constant(Tag(99), nil); !errors.Is(err, ErrUnknownTag) {
		t.Errorf("Expected ErrUnknownTag, got %v", err)
	}
}

func TestNodeValueConcatenated(t *testing.T) {
	a, _ := FromPrimitive("x")
	b, _ := FromPrimitive(int64(3))
	got, err := Concat(a, b, Empty()).Value()
	if err != nil {
		t.Fatalf("Value() failed: %v", err)
	}

	want := []any{"x", int64(3), nil}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("value mismatch (-want +got):\n%s", diff)
	}
}

func TestNodeValueObject(t *testing.T) {
	if _, err := Composite().Value(); !errors.Is(err, ErrUnsupportedValueType) {
		t.Errorf("Expected ErrUnsupportedValueType, got %v", err)
	}
}
