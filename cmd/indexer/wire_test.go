package main

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	indexmodels "prisonersearch/internal/index/models"
	"prisonersearch/internal/platform/config"
	"prisonersearch/internal/queue"
	"prisonersearch/pkg/platform/tx"
)

func TestRefreshFallbackQueuesFullRefresh(t *testing.T) {
	q := queue.NewInMemory(queue.Options{})

	require.NoError(t, refreshFallback(q)(context.Background(), "A1234AA"))

	pending := q.Pending()
	require.Len(t, pending, 1)
	assert.Equal(t, indexmodels.MsgRefreshPrisoner, pending[0].Type)
	var body indexmodels.RefreshPrisonerRequest
	require.NoError(t, pending[0].Decode(&body))
	assert.Equal(t, "A1234AA", body.PrisonerNumber)
}

func TestEnrichersOnlyForConfiguredAPIs(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	none := enrichers(config.ClientsConfig{}, log)
	assert.Nil(t, none.Incentives)
	assert.Nil(t, none.RestrictedPatients)
	assert.Nil(t, none.Alerts)
	assert.Nil(t, none.Complexity)

	some := enrichers(config.ClientsConfig{
		AlertsAPIURL:           "http://alerts.local",
		ComplexityOfNeedAPIURL: "http://con.local",
	}, log)
	assert.Nil(t, some.Incentives)
	assert.Nil(t, some.RestrictedPatients)
	assert.NotNil(t, some.Alerts)
	assert.NotNil(t, some.Complexity)
}

func TestInMemoryFallbacks(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	documents, err := openDocuments(config.SearchConfig{}, log)
	require.NoError(t, err)
	require.NoError(t, documents.EnsureIndex(context.Background(), indexmodels.SlotA))

	stores, err := openStores(context.Background(), nil, log)
	require.NoError(t, err)
	assert.NotNil(t, stores.status)
	assert.NotNil(t, stores.hashes)
	assert.NotNil(t, stores.differences)
	assert.NotNil(t, stores.outbox)
	assert.IsType(t, &tx.Local{}, stores.tx)
}
