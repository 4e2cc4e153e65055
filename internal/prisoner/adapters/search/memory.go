package search

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	indexmodels "prisonersearch/internal/index/models"
	"prisonersearch/internal/prisoner/models"
	"prisonersearch/internal/prisoner/ports"
	"prisonersearch/pkg/platform/sentinel"
)

// InMemory is a DocumentStore for tests and local runs. Documents are copied
// on the way in and out.
type InMemory struct {
	mu      sync.RWMutex
	indices map[indexmodels.Slot]map[string]models.Prisoner
	alias   indexmodels.Slot
	scrolls map[string]*cursor
}

func NewInMemory() *InMemory {
	return &InMemory{
		indices: make(map[indexmodels.Slot]map[string]models.Prisoner),
		scrolls: make(map[string]*cursor),
	}
}

func (s *InMemory) Get(_ context.Context, slot indexmodels.Slot, prisonerNumber string) (*models.Prisoner, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.indices[slot][prisonerNumber]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &doc, nil
}

func (s *InMemory) Put(_ context.Context, slot indexmodels.Slot, prisoner *models.Prisoner) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	docs := s.index(slot)
	docs[prisoner.PrisonerNumber] = *prisoner
	return nil
}

func (s *InMemory) Delete(_ context.Context, slot indexmodels.Slot, prisonerNumber string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	docs, ok := s.indices[slot]
	if !ok {
		return false, nil
	}
	if _, ok := docs[prisonerNumber]; !ok {
		return false, nil
	}
	delete(docs, prisonerNumber)
	return true, nil
}

// Scroll snapshots the ids of slot in ascending order.
func (s *InMemory) Scroll(_ context.Context, slot indexmodels.Slot, batchSize int, _ time.Duration) (ports.ScrollPage, error) {
	if batchSize <= 0 {
		return ports.ScrollPage{}, fmt.Errorf("scroll batch size must be positive: %d", batchSize)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.indices[slot]))
	for id := range s.indices[slot] {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	c := &cursor{remaining: ids, batchSize: batchSize}
	id := uuid.NewString()
	s.scrolls[id] = c
	return ports.ScrollPage{ScrollID: id, IDs: c.next()}, nil
}

func (s *InMemory) ScrollNext(_ context.Context, scrollID string, _ time.Duration) (ports.ScrollPage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.scrolls[scrollID]
	if !ok {
		return ports.ScrollPage{}, fmt.Errorf("scroll %s: %w", scrollID, sentinel.ErrNotFound)
	}
	return ports.ScrollPage{ScrollID: scrollID, IDs: c.next()}, nil
}

func (s *InMemory) ClearScroll(_ context.Context, scrollID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.scrolls, scrollID)
	return nil
}

// OpenScrolls reports scrolls not yet cleared.
func (s *InMemory) OpenScrolls() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.scrolls)
}

func (s *InMemory) EnsureIndex(_ context.Context, slot indexmodels.Slot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.index(slot)
	return nil
}

func (s *InMemory) ResetIndex(_ context.Context, slot indexmodels.Slot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.indices[slot] = make(map[string]models.Prisoner)
	return nil
}

func (s *InMemory) SwitchAlias(_ context.Context, slot indexmodels.Slot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alias = slot
	return nil
}

// Alias reports the slot the alias points at, empty before the first switch.
func (s *InMemory) Alias() indexmodels.Slot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.alias
}

// Count reports documents in slot.
func (s *InMemory) Count(slot indexmodels.Slot) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.indices[slot])
}

func (s *InMemory) index(slot indexmodels.Slot) map[string]models.Prisoner {
	docs, ok := s.indices[slot]
	if !ok {
		docs = make(map[string]models.Prisoner)
		s.indices[slot] = docs
	}
	return docs
}

type cursor struct {
	remaining []string
	batchSize int
}

// next returns the following batch; an empty batch ends the scroll.
func (c *cursor) next() []string {
	n := min(c.batchSize, len(c.remaining))
	batch := c.remaining[:n]
	c.remaining = c.remaining[n:]
	return batch
}
