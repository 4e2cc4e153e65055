package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	indexmodels "prisonersearch/internal/index/models"
	"prisonersearch/internal/prisoner/models"
	"prisonersearch/pkg/platform/sentinel"
)

func TestInMemorySlotsAreIndependent(t *testing.T) {
	ctx := context.Background()
	store := NewInMemory()

	require.NoError(t, store.Put(ctx, indexmodels.SlotA, &models.Prisoner{PrisonerNumber: "A1234AA", LastName: "SMITH"}))

	doc, err := store.Get(ctx, indexmodels.SlotA, "A1234AA")
	require.NoError(t, err)
	assert.Equal(t, "SMITH", doc.LastName)

	_, err = store.Get(ctx, indexmodels.SlotB, "A1234AA")
	assert.ErrorIs(t, err, sentinel.ErrNotFound)

	doc.LastName = "CHANGED"
	again, err := store.Get(ctx, indexmodels.SlotA, "A1234AA")
	require.NoError(t, err)
	assert.Equal(t, "SMITH", again.LastName, "stored documents are copies")
}

func TestInMemoryDeleteReportsRemoval(t *testing.T) {
	ctx := context.Background()
	store := NewInMemory()
	require.NoError(t, store.Put(ctx, indexmodels.SlotA, &models.Prisoner{PrisonerNumber: "A1234AA"}))

	removed, err := store.Delete(ctx, indexmodels.SlotA, "A1234AA")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = store.Delete(ctx, indexmodels.SlotA, "A1234AA")
	require.NoError(t, err)
	assert.False(t, removed)

	removed, err = store.Delete(ctx, indexmodels.SlotB, "A1234AA")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestInMemoryScrollReturnsEveryIDInBatches(t *testing.T) {
	ctx := context.Background()
	store := NewInMemory()
	for _, id := range []string{"C3", "A1", "B2", "E5", "D4"} {
		require.NoError(t, store.Put(ctx, indexmodels.SlotB, &models.Prisoner{PrisonerNumber: id}))
	}

	page, err := store.Scroll(ctx, indexmodels.SlotB, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"A1", "B2"}, page.IDs)

	page, err = store.ScrollNext(ctx, page.ScrollID, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"C3", "D4"}, page.IDs)

	page, err = store.ScrollNext(ctx, page.ScrollID, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"E5"}, page.IDs)

	page, err = store.ScrollNext(ctx, page.ScrollID, 0)
	require.NoError(t, err)
	assert.Empty(t, page.IDs)

	assert.Equal(t, 1, store.OpenScrolls())
	require.NoError(t, store.ClearScroll(ctx, page.ScrollID))
	assert.Zero(t, store.OpenScrolls())

	_, err = store.ScrollNext(ctx, page.ScrollID, 0)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestInMemoryResetAndAlias(t *testing.T) {
	ctx := context.Background()
	store := NewInMemory()
	require.NoError(t, store.Put(ctx, indexmodels.SlotB, &models.Prisoner{PrisonerNumber: "A1"}))
	require.NoError(t, store.EnsureIndex(ctx, indexmodels.SlotB))
	assert.Equal(t, 1, store.Count(indexmodels.SlotB), "ensure keeps existing documents")

	require.NoError(t, store.ResetIndex(ctx, indexmodels.SlotB))
	assert.Zero(t, store.Count(indexmodels.SlotB))

	assert.Empty(t, store.Alias())
	require.NoError(t, store.SwitchAlias(ctx, indexmodels.SlotB))
	assert.Equal(t, indexmodels.SlotB, store.Alias())
}
