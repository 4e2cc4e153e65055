package status

import (
	"context"
	"sync"

	"prisonersearch/internal/index/models"
	"prisonersearch/pkg/platform/sentinel"
)

// InMemory keeps the status row in process memory. It provides the same
// compare-and-set contract as the Postgres store so the state machine behaves
// identically in tests and local runs.
type InMemory struct {
	mu     sync.Mutex
	status *models.IndexStatus
}

func NewInMemory() *InMemory {
	return &InMemory{}
}

func (s *InMemory) Get(_ context.Context) (models.IndexStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status == nil {
		return models.IndexStatus{}, sentinel.ErrNotFound
	}
	return *s.status, nil
}

func (s *InMemory) EnsureExists(_ context.Context) (models.IndexStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status == nil {
		initial := models.NewIndexStatus()
		s.status = &initial
	}
	return *s.status, nil
}

// CompareAndSwap stores next if the stored version still equals
// expectedVersion, returning the stored row with its new version.
func (s *InMemory) CompareAndSwap(_ context.Context, expectedVersion int64, next models.IndexStatus) (models.IndexStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status == nil {
		return models.IndexStatus{}, sentinel.ErrNotFound
	}
	if s.status.Version != expectedVersion {
		return models.IndexStatus{}, sentinel.ErrConflict
	}
	next.Version = expectedVersion + 1
	s.status = &next
	return next, nil
}
