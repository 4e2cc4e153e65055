package difference

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prisonersearch/internal/prisoner/models"
)

func TestRetention(t *testing.T) {
	ctx := context.Background()
	store := NewInMemory()
	now := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

	for i, age := range []time.Duration{40 * 24 * time.Hour, 10 * 24 * time.Hour, time.Hour} {
		require.NoError(t, store.Save(ctx, models.DifferenceRecord{
			ID:             uuid.New(),
			PrisonerNumber: "A1234AA",
			Differences:    []models.Difference{{Property: "lastName", Category: models.CategoryPersonalDetails, NewValue: i}},
			CreatedAt:      now.Add(-age),
		}))
	}

	removed, err := store.DeleteOlderThan(ctx, now.Add(-30*24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	remaining, err := store.ListByPrisoner(ctx, "A1234AA")
	require.NoError(t, err)
	require.Len(t, remaining, 2)
	assert.True(t, remaining[0].CreatedAt.Before(remaining[1].CreatedAt))
}
