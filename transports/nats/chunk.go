package nats

import (
	"errors"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

type publisher interface {
	Publish(subject string, data []byte) error
}

// chunkWriter splits a byte stream into Chunk frames of at most ChunkSize
// bytes published on one subject.
type chunkWriter struct {
	pub     publisher
	subject string
	buf     []byte
	index   int
	closed  bool
}

func newChunkWriter(pub publisher, subject string) *chunkWriter {
	return &chunkWriter{
		pub:     pub,
		subject: subject,
		buf:     make([]byte, 0, ChunkSize),
	}
}

func (w *chunkWriter) Write(p []byte) (int, error) {
	if w.closed {
		return 0, errors.New("write to closed chunk writer")
	}
	written := 0
	for len(p) > 0 {
		n := min(len(p), ChunkSize-len(w.buf))
		w.buf = append(w.buf, p[:n]...)
		p = p[n:]
		written += n
		if len(w.buf) == ChunkSize {
			if err := w.publish(&Chunk{Data: w.buf}); err != nil {
				return written, err
			}
		}
	}
	return written, nil
}

// Flush publishes any buffered bytes without ending the stream.
func (w *chunkWriter) Flush() error {
	if w.closed || len(w.buf) == 0 {
		return nil
	}
	return w.publish(&Chunk{Data: w.buf})
}

// Close publishes the remaining bytes in the final chunk.
func (w *chunkWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	return w.publish(&Chunk{Data: w.buf, IsEOF: true})
}

// Abort ends the stream with an error the receiver reports from Load.
func (w *chunkWriter) Abort(cause error) error {
	if w.closed {
		return nil
	}
	w.closed = true
	return w.publish(&Chunk{Error: cause.Error()})
}

func (w *chunkWriter) publish(chunk *Chunk) error {
	chunk.Index = w.index
	buf, err := msgpack.Marshal(chunk)
	if err != nil {
		return err
	}
	if err := w.pub.Publish(w.subject, buf); err != nil {
		return err
	}
	w.index++
	w.buf = w.buf[:0]
	return nil
}

// pumpChunks copies the payloads returned by next into pw until the final
// chunk, closing pw with the first error it meets.
func pumpChunks(pw interface {
	Write([]byte) (int, error)
	CloseWithError(error) error
}, next func() ([]byte, error)) {
	for index := 0; ; index++ {
		data, err := next()
		if err != nil {
			pw.CloseWithError(err)
			return
		}

		var chunk Chunk
		if err := msgpack.Unmarshal(data, &chunk); err != nil {
			pw.CloseWithError(err)
			return
		}
		if chunk.Index != index {
			pw.CloseWithError(fmt.Errorf("chunk %d arrived, expected %d", chunk.Index, index))
			return
		}
		if chunk.Error != "" {
			pw.CloseWithError(errors.New(chunk.Error))
			return
		}

		if len(chunk.Data) > 0 {
			if _, err := pw.Write(chunk.Data); err != nil {
				pw.CloseWithError(err)
				return
			}
		}

		if chunk.IsEOF {
			pw.CloseWithError(nil)
			return
		}
	}
}
