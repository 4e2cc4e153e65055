package outbox

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"prisonersearch/internal/prisoner/models"
)

// InMemory keeps recorded domain events in process memory.
type InMemory struct {
	mu      sync.Mutex
	entries []models.OutboxEntry
}

func NewInMemory() *InMemory {
	return &InMemory{}
}

func (s *InMemory) Append(_ context.Context, entries ...models.OutboxEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entries...)
	return nil
}

// Pending returns up to limit unpublished entries in recording order. An
// empty prisonerNumber matches every prisoner.
func (s *InMemory) Pending(_ context.Context, prisonerNumber string, limit int) ([]models.OutboxEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.OutboxEntry
	for _, e := range s.entries {
		if len(out) == limit {
			break
		}
		if e.PublishedAt != nil {
			continue
		}
		if prisonerNumber != "" && e.Event.PrisonerNumber != prisonerNumber {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (s *InMemory) MarkPublished(_ context.Context, id uuid.UUID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.entries {
		if s.entries[i].ID == id {
			s.entries[i].PublishedAt = &at
			return nil
		}
	}
	return nil
}

// DeletePublishedBefore removes entries published before cutoff.
func (s *InMemory) DeletePublishedBefore(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.entries[:0]
	var removed int64
	for _, e := range s.entries {
		if e.PublishedAt != nil && e.PublishedAt.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	s.entries = kept
	return removed, nil
}

// Len counts entries, published or not.
func (s *InMemory) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
