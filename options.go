package bytedata

import (
	"log/slog"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
)

// MaxDecodeSize bounds the byte length of a String value accepted while
// decoding. Object and sequence bodies are not limited by it.
var MaxDecodeSize = int64(1024 * 1024 * 5) // 5 MB

// MaxDepth bounds how deeply objects and sequences may nest.
var MaxDepth = 64

// Option configures a codec operation.
type Option func(*options)

type options struct {
	strings       StringCache
	encoding      encoding.Encoding
	logger        *slog.Logger
	maxDecodeSize int64
	maxDepth      int
}

func newOptions(opts []Option) *options {
	o := &options{
		encoding:      unicode.UTF8,
		maxDecodeSize: MaxDecodeSize,
		maxDepth:      MaxDepth,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return o
}

// WithStringCache makes strings encode as StringCached ids interned in
// cache, and lets cached ids be resolved on decode.
func WithStringCache(cache StringCache) Option {
	return func(o *options) {
		o.strings = cache
	}
}

// WithEncoding sets the text encoding used for String values. The default
// is UTF-8, which produces the same bytes as ASCII for ASCII text. Non-ASCII
// text differs: UTF-8 writes multi-byte sequences where an ASCII writer
// would substitute '?'. Streams shared with an ASCII producer should pass
// an ASCII-compatible encoding such as charmap.Windows1252 and keep their
// text within ASCII.
func WithEncoding(enc encoding.Encoding) Option {
	return func(o *options) {
		if enc != nil {
			o.encoding = enc
		}
	}
}

// WithLogger sets the logger that receives skipped-field reports.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMaxDecodeSize overrides MaxDecodeSize for one codec.
func WithMaxDecodeSize(size int64) Option {
	return func(o *options) {
		o.maxDecodeSize = size
	}
}

// WithMaxDepth overrides MaxDepth for one codec.
func WithMaxDepth(depth int) Option {
	return func(o *options) {
		o.maxDepth = depth
	}
}
