package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"prisonersearch/internal/prisoner/models"
)

type fakeProducer struct {
	records []*kgo.Record
	err     error
}

func (f *fakeProducer) ProduceSync(_ context.Context, rs ...*kgo.Record) kgo.ProduceResults {
	var out kgo.ProduceResults
	for _, r := range rs {
		f.records = append(f.records, r)
		out = append(out, kgo.ProduceResult{Record: r, Err: f.err})
	}
	return out
}

func TestKafkaPublisher(t *testing.T) {
	producer := &fakeProducer{}
	p := NewKafkaPublisher(producer, "prisoner-search.domain-events", nil)
	event := models.DomainEvent{
		EventType:         models.EventPrisonerUpdated,
		PrisonerNumber:    "A1234AA",
		OccurredAt:        time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		CategoriesChanged: []models.Category{models.CategoryIdentifiers},
	}

	require.NoError(t, p.Publish(context.Background(), event))
	require.Len(t, producer.records, 1)

	r := producer.records[0]
	assert.Equal(t, "prisoner-search.domain-events", r.Topic)
	assert.Equal(t, "A1234AA", string(r.Key))
	assert.Equal(t, "eventType", r.Headers[0].Key)
	assert.Equal(t, models.EventPrisonerUpdated, string(r.Headers[0].Value))

	var decoded models.DomainEvent
	require.NoError(t, json.Unmarshal(r.Value, &decoded))
	assert.Equal(t, event, decoded)
}

func TestKafkaPublisherSurfacesProduceError(t *testing.T) {
	boom := errors.New("not enough replicas")
	p := NewKafkaPublisher(&fakeProducer{err: boom}, "events", nil)

	err := p.Publish(context.Background(), models.DomainEvent{EventType: models.EventPrisonerCreated, PrisonerNumber: "A1234AA"})
	assert.ErrorIs(t, err, boom)
}
