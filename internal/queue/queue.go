// Package queue provides the at-least-once message transport the index
// pipelines fan out over: send, receive with a visibility timeout,
// acknowledge, purge and depth introspection, with messages that exceed the
// receive limit parked on a dead-letter queue.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrEmptyType is returned when sending a message without a type.
var ErrEmptyType = errors.New("message type is required")

// Message is the unit of fan-out work.
type Message struct {
	Type       string            `json:"type"`
	Body       json.RawMessage   `json:"body,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
	SentAt     time.Time         `json:"sentAt"`
}

// NewMessage encodes body as the payload of a message of the given type.
func NewMessage(msgType string, body any) (Message, error) {
	msg := Message{Type: msgType}
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return Message{}, fmt.Errorf("marshal %s body: %w", msgType, err)
		}
		msg.Body = raw
	}
	return msg, nil
}

// Decode unmarshals the payload into v.
func (m Message) Decode(v any) error {
	if len(m.Body) == 0 {
		return fmt.Errorf("%s message has no body", m.Type)
	}
	if err := json.Unmarshal(m.Body, v); err != nil {
		return fmt.Errorf("unmarshal %s body: %w", m.Type, err)
	}
	return nil
}

// Delivery is a received message. It stays invisible to other receivers until
// acknowledged or until its visibility timeout lapses.
type Delivery struct {
	ID           string
	Message      Message
	ReceiveCount int
}

// Depth counts messages by state.
type Depth struct {
	Visible      int64
	InFlight     int64
	DeadLettered int64
}

// Queue is the transport contract consumed by the pipelines.
type Queue interface {
	Send(ctx context.Context, msg Message) (string, error)
	Receive(ctx context.Context, max int) ([]Delivery, error)
	Ack(ctx context.Context, id string) error
	Purge(ctx context.Context) error
	Depth(ctx context.Context) (Depth, error)
}

// Reaper is implemented by queues whose expired in-flight messages must be
// returned explicitly. Messages received maxReceives times go to the DLQ.
type Reaper interface {
	Requeue(ctx context.Context) (requeued, deadLettered int, err error)
}

// DeadLetters exposes dead-letter queue maintenance.
type DeadLetters interface {
	RetryDeadLetters(ctx context.Context) (int, error)
	PurgeDeadLetters(ctx context.Context) error
}

// Options tune redrive behaviour.
type Options struct {
	VisibilityTimeout time.Duration
	MaxReceives       int
}

func (o Options) withDefaults() Options {
	if o.VisibilityTimeout <= 0 {
		o.VisibilityTimeout = 60 * time.Second
	}
	if o.MaxReceives <= 0 {
		o.MaxReceives = 5
	}
	return o
}
