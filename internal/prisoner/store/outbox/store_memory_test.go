package outbox

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prisonersearch/internal/prisoner/models"
)

func entry(prisonerNumber, eventType string, at time.Time) models.OutboxEntry {
	return models.OutboxEntry{
		ID:        uuid.New(),
		Event:     models.DomainEvent{EventType: eventType, PrisonerNumber: prisonerNumber, OccurredAt: at},
		CreatedAt: at,
	}
}

func TestPendingInRecordingOrder(t *testing.T) {
	ctx := context.Background()
	store := NewInMemory()
	now := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)

	require.NoError(t, store.Append(ctx,
		entry("A1234AA", models.EventPrisonerCreated, now),
		entry("A1234AB", models.EventPrisonerCreated, now),
		entry("A1234AA", models.EventPrisonerUpdated, now),
	))

	pending, err := store.Pending(ctx, "A1234AA", 10)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, models.EventPrisonerCreated, pending[0].Event.EventType)
	assert.Equal(t, models.EventPrisonerUpdated, pending[1].Event.EventType)

	all, err := store.Pending(ctx, "", 2)
	require.NoError(t, err)
	assert.Len(t, all, 2, "limit applies across prisoners")
}

func TestMarkPublishedAndPurge(t *testing.T) {
	ctx := context.Background()
	store := NewInMemory()
	now := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	first := entry("A1234AA", models.EventPrisonerCreated, now)
	second := entry("A1234AA", models.EventPrisonerUpdated, now)
	require.NoError(t, store.Append(ctx, first, second))

	require.NoError(t, store.MarkPublished(ctx, first.ID, now))
	pending, err := store.Pending(ctx, "A1234AA", 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, second.ID, pending[0].ID)

	removed, err := store.DeletePublishedBefore(ctx, now.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
	assert.Equal(t, 1, store.Len(), "unpublished entries are never purged")
}
