package bytedata

import (
	"encoding/binary"
	"fmt"
)

// Tag is the leading byte of every encoded value. It identifies the wire
// type and, for fixed width tags, the number of bytes that follow.
type Tag byte

const (
	TagEmpty        Tag = 0
	TagByte         Tag = 1
	TagSByte        Tag = 2
	TagChar         Tag = 3
	TagShort        Tag = 4
	TagUShort       Tag = 5
	TagInt          Tag = 6
	TagUInt         Tag = 7
	TagLong         Tag = 8
	TagULong        Tag = 9
	TagFloat        Tag = 10
	TagDouble       Tag = 11
	TagString       Tag = 14
	TagStringCached Tag = 15
	TagObject       Tag = 16
	TagConcatenated Tag = 63
)

// lengthSize is the width of every length prefix, member count and cached
// string id.
const lengthSize = 4

var byteOrder = binary.LittleEndian

var tagWidths = map[Tag]int{
	TagEmpty:        0,
	TagByte:         1,
	TagSByte:        1,
	TagChar:         2,
	TagShort:        2,
	TagUShort:       2,
	TagInt:          4,
	TagUInt:         4,
	TagLong:         8,
	TagULong:        8,
	TagFloat:        4,
	TagDouble:       8,
	TagStringCached: lengthSize,
	TagString:       -1,
	TagObject:       -1,
	TagConcatenated: -1,
}

var tagNames = map[Tag]string{
	TagEmpty:        "Empty",
	TagByte:         "Byte",
	TagSByte:        "SByte",
	TagChar:         "Char",
	TagShort:        "Short",
	TagUShort:       "UShort",
	TagInt:          "Int",
	TagUInt:         "UInt",
	TagLong:         "Long",
	TagULong:        "ULong",
	TagFloat:        "Float",
	TagDouble:       "Double",
	TagString:       "String",
	TagStringCached: "StringCached",
	TagObject:       "Object",
	TagConcatenated: "Concatenated",
}

// WidthOf returns the fixed body width of tag. fixed is false for String,
// Object and Concatenated, whose width comes from a 4-byte length prefix.
func WidthOf(tag Tag) (width int, fixed bool, err error) {
	w, ok := tagWidths[tag]
	if !ok {
		return 0, false, fmt.Errorf("%w: %d", ErrUnknownTag, byte(tag))
	}
	if w < 0 {
		return 0, false, nil
	}
	return w, true, nil
}

// Valid reports whether t is a registered tag.
func (t Tag) Valid() bool {
	_, ok := tagWidths[t]
	return ok
}

// Variable reports whether a length prefix follows the tag byte.
func (t Tag) Variable() bool {
	return tagWidths[t] < 0
}

func (t Tag) String() string {
	if name, ok := tagNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Tag(%d)", byte(t))
}
