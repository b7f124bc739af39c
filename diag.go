package bytedata

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ReadNode decodes one value from r into a raw node tree. No target type is
// needed, which makes it suitable for inspecting unknown streams.
func ReadNode(r io.Reader, opts ...Option) (*Node, error) {
	if !readable(r) {
		return nil, ErrStreamNotReadable
	}
	d := &decoder{o: newOptions(opts)}
	tag, err := d.readTag(r)
	if err != nil {
		return nil, err
	}
	return d.node(r, tag, 0)
}

func (d *decoder) node(r io.Reader, tag Tag, depth int) (*Node, error) {
	switch tag {
	case TagObject:
		body, count, err := d.objectHeader(r, depth+1)
		if err != nil {
			return nil, err
		}
		members := make([]*Node, 0, min(count, 64))
		for i := 0; i < count; i++ {
			t, err := d.memberTag(body, i, count)
			if err != nil {
				return nil, err
			}
			m, err := d.node(body, t, depth+1)
			if err != nil {
				return nil, fmt.Errorf("member %d: %w", i, err)
			}
			members = append(members, m)
		}
		if body.N != 0 {
			return nil, fmt.Errorf("%w: %d bytes left after %d members", ErrMemberCountMismatch, body.N, count)
		}
		return Composite(members...), nil
	case TagConcatenated:
		body, err := d.sequenceHeader(r, depth+1)
		if err != nil {
			return nil, err
		}
		var children []*Node
		for i := 0; body.N > 0; i++ {
			t, err := d.readTag(body)
			if errors.Is(err, io.EOF) {
				err = io.ErrUnexpectedEOF
			}
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			child, err := d.node(body, t, depth+1)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			children = append(children, child)
		}
		return Concat(children...), nil
	case TagString:
		n, err := d.readLength(r, true)
		if err != nil {
			return nil, err
		}
		body := make([]byte, n)
		if err := readFull(r, body); err != nil {
			return nil, fmt.Errorf("read string: %w", err)
		}
		return Constant(TagString, body)
	default:
		width, _, err := WidthOf(tag)
		if err != nil {
			return nil, err
		}
		body := make([]byte, width)
		if err := readFull(r, body); err != nil {
			return nil, fmt.Errorf("read %s: %w", tag, err)
		}
		return Constant(tag, body)
	}
}

// Diagnose renders every value in data in diagnostic notation, one line per
// top-level value, e.g.
//
//	Object{Byte(2), String("root object"), Empty}
func Diagnose(data []byte, opts ...Option) (string, error) {
	o := newOptions(opts)
	r := bytes.NewReader(data)
	var lines []string
	for r.Len() > 0 {
		offset := len(data) - r.Len()
		n, err := ReadNode(r, opts...)
		if err != nil {
			return strings.Join(lines, "\n"), fmt.Errorf("value at byte %d: %w", offset, err)
		}
		lines = append(lines, diagnose(n, o))
	}
	return strings.Join(lines, "\n"), nil
}

func diagnose(n *Node, o *options) string {
	var b strings.Builder
	writeDiagnostic(&b, n, o)
	return b.String()
}

func writeDiagnostic(b *strings.Builder, n *Node, o *options) {
	switch n.tag {
	case TagEmpty:
		b.WriteString("Empty")
	case TagObject, TagConcatenated:
		open, end := "{", "}"
		if n.tag == TagConcatenated {
			open, end = "[", "]"
		}
		b.WriteString(n.tag.String())
		b.WriteString(open)
		for i, m := range n.members {
			if i > 0 {
				b.WriteString(", ")
			}
			writeDiagnostic(b, m, o)
		}
		b.WriteString(end)
	case TagStringCached:
		id := int32(byteOrder.Uint32(n.body))
		if o.strings == nil {
			fmt.Fprintf(b, "StringCached(%d)", id)
			return
		}
		s, err := o.strings.Lookup(id)
		if err != nil {
			fmt.Fprintf(b, "StringCached(%d: ?)", id)
			return
		}
		fmt.Fprintf(b, "StringCached(%d: %q)", id, s)
	default:
		v, err := constantValue(n.tag, n.body, o)
		if err != nil {
			fmt.Fprintf(b, "%s(h'%x')", n.tag, n.body)
			return
		}
		switch x := v.(type) {
		case string:
			fmt.Fprintf(b, "%s(%q)", n.tag, x)
		case Char:
			fmt.Fprintf(b, "%s(%q)", n.tag, rune(x))
		default:
			fmt.Fprintf(b, "%s(%v)", n.tag, x)
		}
	}
}
