package hash

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpsertIfChanged(t *testing.T) {
	ctx := context.Background()
	store := NewInMemory()
	now := time.Now()

	rows, err := store.UpsertIfChanged(ctx, "A1234AA", "prisoner", "h1", now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows, "first observation")

	rows, err = store.UpsertIfChanged(ctx, "A1234AA", "prisoner", "h1", now)
	require.NoError(t, err)
	assert.Zero(t, rows, "unchanged content")

	rows, err = store.UpsertIfChanged(ctx, "A1234AA", "incentive", "h1", now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows, "entities are independent")

	rows, err = store.UpsertIfChanged(ctx, "A1234AA", "prisoner", "h2", now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	store := NewInMemory()
	now := time.Now()
	for _, entity := range []string{"prisoner", "incentive"} {
		_, err := store.UpsertIfChanged(ctx, "A1234AA", entity, "h", now)
		require.NoError(t, err)
	}
	_, err := store.UpsertIfChanged(ctx, "A1234AB", "prisoner", "h", now)
	require.NoError(t, err)

	require.NoError(t, store.Clear(ctx, "A1234AA"))

	rows, err := store.UpsertIfChanged(ctx, "A1234AA", "prisoner", "h", now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows, "cleared")
	rows, err = store.UpsertIfChanged(ctx, "A1234AB", "prisoner", "h", now)
	require.NoError(t, err)
	assert.Zero(t, rows, "other prisoners untouched")
}
