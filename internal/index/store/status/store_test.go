package status

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prisonersearch/internal/index/models"
	"prisonersearch/pkg/platform/sentinel"
)

type store interface {
	Get(ctx context.Context) (models.IndexStatus, error)
	EnsureExists(ctx context.Context) (models.IndexStatus, error)
	CompareAndSwap(ctx context.Context, expectedVersion int64, next models.IndexStatus) (models.IndexStatus, error)
}

// runStoreContract exercises the behaviour both status stores share. newStore
// must return an empty store.
func runStoreContract(t *testing.T, newStore func(t *testing.T) store) {
	t.Run("missing row is not found", func(t *testing.T) {
		_, err := newStore(t).Get(context.Background())
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("ensure exists creates the bootstrap row once", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		first, err := s.EnsureExists(ctx)
		require.NoError(t, err)
		assert.Equal(t, models.NewIndexStatus(), first)

		_, err = s.CompareAndSwap(ctx, first.Version, building(first))
		require.NoError(t, err)

		again, err := s.EnsureExists(ctx)
		require.NoError(t, err)
		assert.Equal(t, models.StateBuilding, again.OtherState, "existing row kept")
		assert.Equal(t, int64(1), again.Version)
	})

	t.Run("compare and swap bumps the version", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		initial, err := s.EnsureExists(ctx)
		require.NoError(t, err)

		next := building(initial)
		stored, err := s.CompareAndSwap(ctx, initial.Version, next)
		require.NoError(t, err)
		assert.Equal(t, initial.Version+1, stored.Version)

		got, err := s.Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, models.SlotA, got.CurrentSlot)
		assert.Equal(t, models.StateBuilding, got.OtherState)
		require.NotNil(t, got.OtherStartTime)
		assert.True(t, next.OtherStartTime.Equal(*got.OtherStartTime))
		assert.Nil(t, got.OtherEndTime)
		assert.Equal(t, stored.Version, got.Version)
	})

	t.Run("stale version is a conflict", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		initial, err := s.EnsureExists(ctx)
		require.NoError(t, err)
		_, err = s.CompareAndSwap(ctx, initial.Version, building(initial))
		require.NoError(t, err)

		_, err = s.CompareAndSwap(ctx, initial.Version, building(initial))
		assert.ErrorIs(t, err, sentinel.ErrConflict)
	})
}

func building(from models.IndexStatus) models.IndexStatus {
	start := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	next := from
	next.OtherState = models.StateBuilding
	next.OtherStartTime = &start
	return next
}

func TestInMemoryStore(t *testing.T) {
	runStoreContract(t, func(*testing.T) store { return NewInMemory() })
}

func TestInMemoryCompareAndSwapBeforeBootstrap(t *testing.T) {
	_, err := NewInMemory().CompareAndSwap(context.Background(), 0, models.NewIndexStatus())
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}
