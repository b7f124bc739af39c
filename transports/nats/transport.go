// Package nats sends bytedata encoded values over NATS. The sender encodes a
// value in memory and publishes it in fixed size chunks; the receiver
// decodes from the chunk stream as it arrives.
package nats

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/RobertWHurst/bytedata"
	"github.com/nats-io/nats.go"
	"github.com/vmihailenco/msgpack/v5"
)

// SendTimeout is the maximum time to wait for a send acknowledgment.
const SendTimeout = 5 * time.Second

// ReceiveTimeout is the maximum time to wait for the next chunk of a stream.
const ReceiveTimeout = 5 * time.Minute

// ChunkSize is the largest payload carried by a single chunk.
const ChunkSize = 1024 * 16

// NatsTransport saves values onto NATS subjects and loads them back out on
// the receiving side. Options are applied to every Save and Load.
type NatsTransport struct {
	NatsConnection *nats.Conn

	opts          []bytedata.Option
	mu            sync.Mutex
	subscriptions []*nats.Subscription
}

// Send is the handshake that opens a stream.
type Send struct {
	Subject string `msgpack:"subject"`
}

// SendAck answers a Send with the inbox the chunks go to.
type SendAck struct {
	DataSubject string `msgpack:"dataSubject"`
}

// Chunk is one piece of a stream. The last chunk has IsEOF set; a chunk
// with Error set aborts the stream.
type Chunk struct {
	Index int    `msgpack:"index"`
	Data  []byte `msgpack:"data,omitempty"`
	Error string `msgpack:"error,omitempty"`
	IsEOF bool   `msgpack:"isEof,omitempty"`
}

// NewNatsTransport creates a transport over an established connection.
func NewNatsTransport(natsConnection *nats.Conn, opts ...bytedata.Option) *NatsTransport {
	return &NatsTransport{
		NatsConnection: natsConnection,
		opts:           opts,
	}
}

// Send encodes v and streams it to the handler of subject.
func (t *NatsTransport) Send(subject string, v any) error {
	sendBuf, err := msgpack.Marshal(&Send{Subject: subject})
	if err != nil {
		return err
	}

	sendAckMsg, err := t.NatsConnection.Request(namespace(subject), sendBuf, SendTimeout)
	if err != nil {
		return fmt.Errorf("send %s: %w", subject, err)
	}

	var sendAck SendAck
	if err := msgpack.Unmarshal(sendAckMsg.Data, &sendAck); err != nil {
		return fmt.Errorf("send %s: read ack: %w", subject, err)
	}

	w := newChunkWriter(t.NatsConnection, sendAck.DataSubject)
	if err := bytedata.Save(w, v, t.opts...); err != nil {
		_ = w.Abort(err)
		return err
	}
	return w.Close()
}

// Handle calls handler for every value sent to subject.
func (t *NatsTransport) Handle(subject string, handler func(*Message)) error {
	subscription, err := t.NatsConnection.Subscribe(namespace(subject), t.receive(handler))
	if err != nil {
		return err
	}
	t.track(subscription)
	return nil
}

// HandleQueue is like Handle but only one member of the queue group
// receives each value.
func (t *NatsTransport) HandleQueue(subject, queue string, handler func(*Message)) error {
	subscription, err := t.NatsConnection.QueueSubscribe(namespace(subject), queue, t.receive(handler))
	if err != nil {
		return err
	}
	t.track(subscription)
	return nil
}

// Close unsubscribes every handler.
func (t *NatsTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	var err error
	for _, subscription := range t.subscriptions {
		if e := subscription.Unsubscribe(); e != nil {
			err = e
		}
	}
	t.subscriptions = nil
	return err
}

func (t *NatsTransport) track(subscription *nats.Subscription) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.subscriptions = append(t.subscriptions, subscription)
}

func (t *NatsTransport) receive(handler func(*Message)) nats.MsgHandler {
	return func(natsMsg *nats.Msg) {
		var send Send
		if err := msgpack.Unmarshal(natsMsg.Data, &send); err != nil {
			handler(&Message{err: err})
			return
		}

		dataSubject := nats.NewInbox()
		ackBuf, err := msgpack.Marshal(&SendAck{DataSubject: dataSubject})
		if err != nil {
			handler(&Message{Subject: send.Subject, err: err})
			return
		}

		dataSubscription, err := t.NatsConnection.SubscribeSync(dataSubject)
		if err != nil {
			handler(&Message{Subject: send.Subject, err: err})
			return
		}

		if err := natsMsg.Respond(ackBuf); err != nil {
			_ = dataSubscription.Unsubscribe()
			handler(&Message{Subject: send.Subject, err: err})
			return
		}

		pr, pw := io.Pipe()
		go func() {
			defer dataSubscription.Unsubscribe()
			pumpChunks(pw, func() ([]byte, error) {
				msg, err := dataSubscription.NextMsg(ReceiveTimeout)
				if err != nil {
					return nil, err
				}
				return msg.Data, nil
			})
		}()

		handler(&Message{Subject: send.Subject, data: pr, opts: t.opts})
		pr.Close()
	}
}
