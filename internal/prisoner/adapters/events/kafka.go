// Package events publishes prisoner domain events and consumes inbound
// change events from upstream systems.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	"prisonersearch/internal/prisoner/models"
)

// Producer is the subset of *kgo.Client used to publish.
type Producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

// KafkaPublisher publishes domain events keyed by prisoner number so that
// events for one prisoner stay ordered within a partition.
type KafkaPublisher struct {
	producer Producer
	topic    string
	logger   *slog.Logger
}

func NewKafkaPublisher(producer Producer, topic string, logger *slog.Logger) *KafkaPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &KafkaPublisher{producer: producer, topic: topic, logger: logger}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event models.DomainEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", event.EventType, err)
	}
	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(event.PrisonerNumber),
		Value: payload,
		Headers: []kgo.RecordHeader{
			{Key: "eventType", Value: []byte(event.EventType)},
		},
		Timestamp: event.OccurredAt,
	}
	if err := p.producer.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce %s event: %w", event.EventType, err)
	}
	p.logger.DebugContext(ctx, "published domain event",
		"event_type", event.EventType,
		"prisoner_number", event.PrisonerNumber,
	)
	return nil
}

// Recorder keeps published events in memory and logs them. Used when no
// brokers are configured and in tests.
type Recorder struct {
	mu       sync.Mutex
	logger   *slog.Logger
	log      []models.DomainEvent
	failWith error
}

func NewRecorder(logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{logger: logger}
}

// FailWith makes subsequent publishes fail with err; nil restores success.
func (r *Recorder) FailWith(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failWith = err
}

func (r *Recorder) Publish(ctx context.Context, event models.DomainEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return r.failWith
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}
	r.log = append(r.log, event)
	r.logger.InfoContext(ctx, "domain event",
		"event_type", event.EventType,
		"prisoner_number", event.PrisonerNumber,
		"categories", event.CategoriesChanged,
	)
	return nil
}

// Events returns everything published so far.
func (r *Recorder) Events() []models.DomainEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.DomainEvent(nil), r.log...)
}

// Reset forgets recorded events.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.log = nil
}
