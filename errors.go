package bytedata

import "errors"

var (
	// ErrStreamNotReadable is returned when Load or FromStream is given a
	// stream that cannot be read from.
	ErrStreamNotReadable = errors.New("stream not readable")

	// ErrStreamNotWritable is returned when Save is given a stream that
	// cannot be written to.
	ErrStreamNotWritable = errors.New("stream not writable")

	// ErrUnknownTag is returned when a tag byte is not part of the registry.
	// It indicates a corrupted or incompatible stream.
	ErrUnknownTag = errors.New("unknown tag")

	// ErrMemberCountMismatch is returned when the member count declared by an
	// object disagrees with the members actually present in its body.
	ErrMemberCountMismatch = errors.New("member count mismatch")

	// ErrUnsupportedValueType is returned when a value has no wire mapping.
	// Save recovers from it per field by skipping the field.
	ErrUnsupportedValueType = errors.New("unsupported value type")

	// ErrNoDefaultConstructor is returned when an object must be decoded
	// into a target that has no concrete type to construct.
	ErrNoDefaultConstructor = errors.New("no default constructor")

	// ErrMissingStringCache is returned when a cached string is encountered
	// without a string cache.
	ErrMissingStringCache = errors.New("missing string cache")

	// ErrUnknownStringId is returned when a string cache has no entry for an id.
	ErrUnknownStringId = errors.New("unknown string id")

	// ErrDuplicateOrdinal is returned when two fields of one type share an
	// ordinal.
	ErrDuplicateOrdinal = errors.New("duplicate ordinal")

	// ErrInvalidOrdinal is returned when an ordinal tag cannot be parsed.
	ErrInvalidOrdinal = errors.New("invalid ordinal")

	// ErrInvalidLength is returned when a declared length is negative or
	// larger than the configured maximum decode size.
	ErrInvalidLength = errors.New("invalid length")

	// ErrMaxDepth is returned when nesting exceeds the configured depth.
	ErrMaxDepth = errors.New("maximum depth exceeded")
)
