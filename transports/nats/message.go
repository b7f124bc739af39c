package nats

import (
	"io"

	"github.com/RobertWHurst/bytedata"
)

// Message is one received value. Its stream is only readable while the
// handler runs.
type Message struct {
	Subject string

	data io.Reader
	opts []bytedata.Option
	err  error
}

// Into loads the value into v. At most MaxDecodeSize bytes are read.
func (m *Message) Into(v any) error {
	if m.err != nil {
		return m.err
	}
	return bytedata.Load(io.LimitReader(m.data, bytedata.MaxDecodeSize), v, m.opts...)
}

// Read reads the raw encoded stream.
func (m *Message) Read(p []byte) (n int, err error) {
	if m.err != nil {
		return 0, m.err
	}
	return m.data.Read(p)
}
