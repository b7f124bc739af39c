package nats

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/RobertWHurst/bytedata"
	"github.com/google/go-cmp/cmp"
	"github.com/vmihailenco/msgpack/v5"
)

type recordingPublisher struct {
	subjects []string
	frames   [][]byte
	err      error
}

func (p *recordingPublisher) Publish(subject string, data []byte) error {
	if p.err != nil {
		return p.err
	}
	p.subjects = append(p.subjects, subject)
	p.frames = append(p.frames, data)
	return nil
}

func (p *recordingPublisher) chunks(t *testing.T) []Chunk {
	t.Helper()
	chunks := make([]Chunk, len(p.frames))
	for i, frame := range p.frames {
		if err := msgpack.Unmarshal(frame, &chunks[i]); err != nil {
			t.Fatalf("Failed to unmarshal frame %d: %v", i, err)
		}
	}
	return chunks
}

// replay feeds recorded frames back in order.
func (p *recordingPublisher) replay() func() ([]byte, error) {
	i := 0
	return func() ([]byte, error) {
		if i >= len(p.frames) {
			return nil, io.ErrUnexpectedEOF
		}
		i++
		return p.frames[i-1], nil
	}
}

type record struct {
	ID    uint32   `bytedata:"0"`
	Name  string   `bytedata:"1"`
	Items []string `bytedata:"2"`
}

func TestChunkWriterSplitsPayload(t *testing.T) {
	pub := &recordingPublisher{}
	w := newChunkWriter(pub, "_INBOX.test")

	payload := bytes.Repeat([]byte{7}, ChunkSize*2+10)
	n, err := w.Write(payload)
	if err != nil {
		t.Fatalf("Write() failed: %v", err)
	}
	if n != len(payload) {
		t.Errorf("Expected %d bytes written, got %d", len(payload), n)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}

	chunks := pub.chunks(t)
	if len(chunks) != 3 {
		t.Fatalf("Expected 3 chunks, got %d", len(chunks))
	}
	for i, chunk := range chunks {
		if chunk.Index != i {
			t.Errorf("Expected chunk index %d, got %d", i, chunk.Index)
		}
		if chunk.IsEOF != (i == 2) {
			t.Errorf("Chunk %d: expected IsEOF %v, got %v", i, i == 2, chunk.IsEOF)
		}
		if pub.subjects[i] != "_INBOX.test" {
			t.Errorf("Expected subject '_INBOX.test', got '%s'", pub.subjects[i])
		}
	}
	if len(chunks[0].Data) != ChunkSize || len(chunks[2].Data) != 10 {
		t.Errorf("Expected chunk sizes %d and 10, got %d and %d", ChunkSize, len(chunks[0].Data), len(chunks[2].Data))
	}
}

func TestChunkWriterFlush(t *testing.T) {
	pub := &recordingPublisher{}
	w := newChunkWriter(pub, "data")

	if err := w.Flush(); err != nil {
		t.Fatalf("Flush() failed: %v", err)
	}
	if len(pub.frames) != 0 {
		t.Errorf("Expected no frame for empty flush, got %d", len(pub.frames))
	}

	_, _ = w.Write([]byte("abc"))
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush() failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}

	chunks := pub.chunks(t)
	if len(chunks) != 2 {
		t.Fatalf("Expected 2 chunks, got %d", len(chunks))
	}
	if string(chunks[0].Data) != "abc" || chunks[0].IsEOF {
		t.Errorf("Expected first chunk 'abc' without EOF, got %+v", chunks[0])
	}
	if len(chunks[1].Data) != 0 || !chunks[1].IsEOF {
		t.Errorf("Expected empty final chunk, got %+v", chunks[1])
	}

	if _, err := w.Write([]byte("late")); err == nil {
		t.Error("Expected error writing after Close, got nil")
	}
}

func TestChunkWriterPublishError(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("connection closed")}
	w := newChunkWriter(pub, "data")

	if _, err := w.Write(make([]byte, ChunkSize)); err == nil {
		t.Error("Expected publish error, got nil")
	}
}

func TestSaveThroughChunks(t *testing.T) {
	original := record{ID: 42, Name: "streamed", Items: []string{"a", "b", "c"}}

	pub := &recordingPublisher{}
	w := newChunkWriter(pub, "data")
	if err := bytedata.Save(w, original); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}

	pr, pw := io.Pipe()
	go pumpChunks(pw, pub.replay())

	msg := &Message{Subject: "records", data: pr}
	var decoded record
	if err := msg.Into(&decoded); err != nil {
		t.Fatalf("Into() failed: %v", err)
	}
	if diff := cmp.Diff(original, decoded); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestPumpChunksAbort(t *testing.T) {
	pub := &recordingPublisher{}
	w := newChunkWriter(pub, "data")
	_, _ = w.Write([]byte{byte(bytedata.TagObject)})
	_ = w.Flush()
	_ = w.Abort(errors.New("encoder failed"))

	pr, pw := io.Pipe()
	go pumpChunks(pw, pub.replay())

	_, err := io.ReadAll(pr)
	if err == nil || err.Error() != "encoder failed" {
		t.Errorf("Expected 'encoder failed', got %v", err)
	}
}

func TestPumpChunksOutOfOrder(t *testing.T) {
	frame, _ := msgpack.Marshal(&Chunk{Index: 1, Data: []byte{1}})

	pr, pw := io.Pipe()
	go pumpChunks(pw, func() ([]byte, error) { return frame, nil })

	if _, err := io.ReadAll(pr); err == nil {
		t.Error("Expected error for out of order chunk, got nil")
	}
}

func TestMessageError(t *testing.T) {
	msg := &Message{err: errors.New("handshake failed")}

	var v record
	if err := msg.Into(&v); err == nil {
		t.Error("Expected error from Into, got nil")
	}
	if _, err := msg.Read(make([]byte, 1)); err == nil {
		t.Error("Expected error from Read, got nil")
	}
}

func BenchmarkChunkWriter(b *testing.B) {
	payload := bytes.Repeat([]byte{1}, ChunkSize*4)
	pub := &recordingPublisher{}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		pub.frames = pub.frames[:0]
		pub.subjects = pub.subjects[:0]
		w := newChunkWriter(pub, "data")
		_, _ = w.Write(payload)
		_ = w.Close()
	}
}
