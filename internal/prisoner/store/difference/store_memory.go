package difference

import (
	"context"
	"sort"
	"sync"
	"time"

	"prisonersearch/internal/prisoner/models"
)

// InMemory keeps audit records in process memory.
type InMemory struct {
	mu      sync.Mutex
	records []models.DifferenceRecord
}

func NewInMemory() *InMemory {
	return &InMemory{}
}

func (s *InMemory) Save(_ context.Context, record models.DifferenceRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, record)
	return nil
}

// ListByPrisoner returns the prisoner's records oldest first.
func (s *InMemory) ListByPrisoner(_ context.Context, prisonerNumber string) ([]models.DifferenceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.DifferenceRecord
	for _, r := range s.records {
		if r.PrisonerNumber == prisonerNumber {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// DeleteOlderThan removes records created before cutoff.
func (s *InMemory) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.records[:0]
	var removed int64
	for _, r := range s.records {
		if r.CreatedAt.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, r)
	}
	s.records = kept
	return removed, nil
}
