package models

import (
	"time"

	"github.com/google/uuid"
)

// Domain event types published to downstream consumers.
const (
	EventPrisonerCreated = "prisoner-offender-search.prisoner.created"
	EventPrisonerUpdated = "prisoner-offender-search.prisoner.updated"
	EventPrisonerRemoved = "prisoner-offender-search.prisoner.removed"
)

// DomainEvent announces a change to a search document. Updated events carry
// exactly one category and its differences.
type DomainEvent struct {
	EventType         string       `json:"eventType"`
	PrisonerNumber    string       `json:"prisonerNumber"`
	OccurredAt        time.Time    `json:"occurredAt"`
	CategoriesChanged []Category   `json:"categoriesChanged,omitempty"`
	Differences       []Difference `json:"differences,omitempty"`
}

// OutboxEntry is a recorded domain event awaiting publication.
type OutboxEntry struct {
	ID          uuid.UUID
	Event       DomainEvent
	CreatedAt   time.Time
	PublishedAt *time.Time
}
