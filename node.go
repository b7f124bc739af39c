package bytedata

import (
	"fmt"
	"io"
)

// Node is the in-memory unit of encoding. A node is one of three variants:
// a constant holding a fixed byte body, a concatenation of child nodes, or
// a composite object whose body is a member count followed by its members.
//
// The serialized form of every node is
//
//	tag ++ [length prefix, variable width tags only] ++ header ++ body
//
// Nodes are immutable once built.
type Node struct {
	tag     Tag
	header  []byte
	body    []byte
	members []*Node
	length  int
	size    int
}

// Empty returns a node that encodes an absent value.
func Empty() *Node {
	return newNode(&Node{tag: TagEmpty})
}

// Constant returns a node carrying body verbatim. For fixed width tags body
// must match the tag's width; TagString accepts any length.
func Constant(tag Tag, body []byte) (*Node, error) {
	width, fixed, err := WidthOf(tag)
	if err != nil {
		return nil, err
	}
	if !fixed && tag != TagString {
		return nil, fmt.Errorf("bytedata: %s cannot be a constant", tag)
	}
	if fixed && len(body) != width {
		return nil, fmt.Errorf("%w: %s needs %d bytes, got %d", ErrInvalidLength, tag, width, len(body))
	}
	return newNode(&Node{tag: tag, body: body}), nil
}

// Concat returns a node whose body is the serialized children in order.
func Concat(children ...*Node) *Node {
	return newNode(&Node{tag: TagConcatenated, members: children})
}

// Composite returns an object node with the given members in order.
func Composite(members ...*Node) *Node {
	return newNode(&Node{tag: TagObject, members: members})
}

func newNode(n *Node) *Node {
	switch n.tag {
	case TagObject:
		n.length = lengthSize
		for _, m := range n.members {
			n.length += m.size
		}
	case TagConcatenated:
		for _, m := range n.members {
			n.length += m.size
		}
	default:
		n.length = len(n.body)
	}
	n.length += len(n.header)
	n.size = 1 + n.length
	if n.tag.Variable() {
		n.size += lengthSize
	}
	return n
}

// Tag returns the node's wire tag.
func (n *Node) Tag() Tag {
	return n.tag
}

// Header returns the reserved header bytes. Nodes built by this package
// never carry a header.
func (n *Node) Header() []byte {
	return n.header
}

// Body returns the raw body of a constant node, nil for other variants.
func (n *Node) Body() []byte {
	return n.body
}

// Members returns the children of a composite or concatenated node. The
// returned slice must not be modified.
func (n *Node) Members() []*Node {
	return n.members
}

// Len returns the value written in the length prefix: the byte length of
// header and body.
func (n *Node) Len() int {
	return n.length
}

// Size returns the number of bytes Bytes produces.
func (n *Node) Size() int {
	return n.size
}

// Bytes serializes the node and all of its descendants, depth first.
func (n *Node) Bytes() []byte {
	return n.AppendTo(make([]byte, 0, n.size))
}

// AppendTo appends the serialized node to dst.
func (n *Node) AppendTo(dst []byte) []byte {
	dst = append(dst, byte(n.tag))
	if n.tag.Variable() {
		dst = byteOrder.AppendUint32(dst, uint32(n.length))
	}
	dst = append(dst, n.header...)
	switch n.tag {
	case TagObject:
		dst = byteOrder.AppendUint32(dst, uint32(len(n.members)))
		fallthrough
	case TagConcatenated:
		for _, m := range n.members {
			dst = m.AppendTo(dst)
		}
	default:
		dst = append(dst, n.body...)
	}
	return dst
}

// WriteTo writes the serialized node to w in a single write.
func (n *Node) WriteTo(w io.Writer) (int64, error) {
	written, err := w.Write(n.Bytes())
	return int64(written), err
}

// Value returns the Go value held by a constant node. Empty yields nil and
// a concatenation yields a []any of its children's values.
func (n *Node) Value(opts ...Option) (any, error) {
	return n.value(newOptions(opts))
}

func (n *Node) value(o *options) (any, error) {
	switch n.tag {
	case TagObject:
		return nil, fmt.Errorf("%w: object node has no primitive value", ErrUnsupportedValueType)
	case TagConcatenated:
		values := make([]any, len(n.members))
		for i, m := range n.members {
			v, err := m.value(o)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			values[i] = v
		}
		return values, nil
	}
	return constantValue(n.tag, n.body, o)
}

func (n *Node) String() string {
	return diagnose(n, newOptions(nil))
}
