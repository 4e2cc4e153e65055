package hash

import (
	"context"
	"sync"
	"time"
)

type key struct {
	prisonerNumber string
	entity         string
}

type entry struct {
	hash      string
	updatedAt time.Time
}

// InMemory is a process-local hash store with the same upsert contract as
// the Postgres store.
type InMemory struct {
	mu     sync.Mutex
	hashes map[key]entry
}

func NewInMemory() *InMemory {
	return &InMemory{hashes: make(map[key]entry)}
}

// UpsertIfChanged stores hash and returns 1, or returns 0 when the stored
// hash already matches.
func (s *InMemory) UpsertIfChanged(_ context.Context, prisonerNumber, entity, hash string, at time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := key{prisonerNumber, entity}
	if existing, ok := s.hashes[k]; ok && existing.hash == hash {
		return 0, nil
	}
	s.hashes[k] = entry{hash: hash, updatedAt: at}
	return 1, nil
}

// Clear drops every entity hash of the given prisoners.
func (s *InMemory) Clear(_ context.Context, prisonerNumbers ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	drop := make(map[string]struct{}, len(prisonerNumbers))
	for _, id := range prisonerNumbers {
		drop[id] = struct{}{}
	}
	for k := range s.hashes {
		if _, ok := drop[k.prisonerNumber]; ok {
			delete(s.hashes, k)
		}
	}
	return nil
}
