package search

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	indexmodels "prisonersearch/internal/index/models"
	"prisonersearch/internal/prisoner/models"
	"prisonersearch/pkg/platform/sentinel"
)

type recordedRequest struct {
	Method string
	Path   string
	Body   string
}

// fakeCluster answers the handful of REST calls the store makes.
type fakeCluster struct {
	mu       sync.Mutex
	requests []recordedRequest
	routes   map[string]func(w http.ResponseWriter)
}

func newFakeCluster(t *testing.T) (*fakeCluster, *OpenSearch) {
	t.Helper()
	fc := &fakeCluster{routes: make(map[string]func(http.ResponseWriter))}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		fc.mu.Lock()
		fc.requests = append(fc.requests, recordedRequest{Method: r.Method, Path: r.URL.Path, Body: string(body)})
		route, ok := fc.routes[r.Method+" "+r.URL.Path]
		fc.mu.Unlock()

		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"not found","status":404}`))
			return
		}
		route(w)
	}))
	t.Cleanup(srv.Close)

	client, err := NewClient([]string{srv.URL}, "", "")
	require.NoError(t, err)
	return fc, NewOpenSearch(client, "prisoner-search")
}

func (fc *fakeCluster) on(method, path string, status int, body string) {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	fc.routes[method+" "+path] = func(w http.ResponseWriter) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

func (fc *fakeCluster) last(method, path string) (recordedRequest, bool) {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	for i := len(fc.requests) - 1; i >= 0; i-- {
		if fc.requests[i].Method == method && fc.requests[i].Path == path {
			return fc.requests[i], true
		}
	}
	return recordedRequest{}, false
}

func TestOpenSearchGet(t *testing.T) {
	fc, store := newFakeCluster(t)
	fc.on(http.MethodGet, "/prisoner-search-a/_doc/A1234AA", http.StatusOK,
		`{"_id":"A1234AA","found":true,"_source":{"prisonerNumber":"A1234AA","lastName":"SMITH"}}`)

	doc, err := store.Get(context.Background(), indexmodels.SlotA, "A1234AA")
	require.NoError(t, err)
	assert.Equal(t, "SMITH", doc.LastName)

	_, err = store.Get(context.Background(), indexmodels.SlotB, "A1234AA")
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestOpenSearchPutWritesToSlotIndex(t *testing.T) {
	fc, store := newFakeCluster(t)
	fc.on(http.MethodPut, "/prisoner-search-b/_doc/A1234AA", http.StatusCreated, `{"result":"created"}`)

	err := store.Put(context.Background(), indexmodels.SlotB, &models.Prisoner{PrisonerNumber: "A1234AA", LastName: "SMITH"})
	require.NoError(t, err)

	req, ok := fc.last(http.MethodPut, "/prisoner-search-b/_doc/A1234AA")
	require.True(t, ok)
	var written models.Prisoner
	require.NoError(t, json.Unmarshal([]byte(req.Body), &written))
	assert.Equal(t, "SMITH", written.LastName)
}

func TestOpenSearchDeleteReportsRemoval(t *testing.T) {
	fc, store := newFakeCluster(t)
	fc.on(http.MethodDelete, "/prisoner-search-a/_doc/A1234AA", http.StatusOK, `{"result":"deleted"}`)

	removed, err := store.Delete(context.Background(), indexmodels.SlotA, "A1234AA")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = store.Delete(context.Background(), indexmodels.SlotA, "B1234BB")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestOpenSearchServerErrorIsReturned(t *testing.T) {
	fc, store := newFakeCluster(t)
	fc.on(http.MethodPut, "/prisoner-search-a/_doc/A1234AA", http.StatusBadRequest, `{"error":"mapper_parsing_exception"}`)

	err := store.Put(context.Background(), indexmodels.SlotA, &models.Prisoner{PrisonerNumber: "A1234AA"})
	var re *ResponseError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, http.StatusBadRequest, re.Status)
	assert.Contains(t, re.Body, "mapper_parsing_exception")
}

func TestOpenSearchSwitchAliasMovesAliasAtomically(t *testing.T) {
	fc, store := newFakeCluster(t)
	fc.on(http.MethodGet, "/_alias/prisoner-search", http.StatusOK,
		`{"prisoner-search-a":{"aliases":{"prisoner-search":{}}}}`)
	fc.on(http.MethodPost, "/_aliases", http.StatusOK, `{"acknowledged":true}`)

	require.NoError(t, store.SwitchAlias(context.Background(), indexmodels.SlotB))

	req, ok := fc.last(http.MethodPost, "/_aliases")
	require.True(t, ok)
	var body struct {
		Actions []map[string]map[string]string `json:"actions"`
	}
	require.NoError(t, json.Unmarshal([]byte(req.Body), &body))
	require.Len(t, body.Actions, 2)
	assert.Equal(t, "prisoner-search-a", body.Actions[0]["remove"]["index"])
	assert.Equal(t, "prisoner-search-b", body.Actions[1]["add"]["index"])
	assert.Equal(t, "prisoner-search", body.Actions[1]["add"]["alias"])
}

func TestOpenSearchSwitchAliasWithoutHolder(t *testing.T) {
	fc, store := newFakeCluster(t)
	fc.on(http.MethodPost, "/_aliases", http.StatusOK, `{"acknowledged":true}`)

	require.NoError(t, store.SwitchAlias(context.Background(), indexmodels.SlotA))

	req, ok := fc.last(http.MethodPost, "/_aliases")
	require.True(t, ok)
	assert.NotContains(t, req.Body, "remove")
}

func TestOpenSearchEnsureIndexCreatesMissingIndex(t *testing.T) {
	fc, store := newFakeCluster(t)
	fc.on(http.MethodPut, "/prisoner-search-a", http.StatusOK, `{"acknowledged":true}`)

	require.NoError(t, store.EnsureIndex(context.Background(), indexmodels.SlotA))

	req, ok := fc.last(http.MethodPut, "/prisoner-search-a")
	require.True(t, ok)
	assert.Contains(t, req.Body, `"prisonerNumber": {"type": "keyword"}`)
}

func TestOpenSearchCreatedIndexMapsIdentifiersExactly(t *testing.T) {
	fc, store := newFakeCluster(t)
	fc.on(http.MethodPut, "/prisoner-search-b", http.StatusOK, `{"acknowledged":true}`)

	require.NoError(t, store.EnsureIndex(context.Background(), indexmodels.SlotB))

	req, ok := fc.last(http.MethodPut, "/prisoner-search-b")
	require.True(t, ok)
	var body struct {
		Mappings struct {
			Properties map[string]struct {
				Type string `json:"type"`
			} `json:"properties"`
		} `json:"mappings"`
	}
	require.NoError(t, json.Unmarshal([]byte(req.Body), &body))

	props := body.Mappings.Properties
	for _, field := range []string{"prisonerNumber", "pncNumber", "croNumber", "bookingId", "prisonId"} {
		assert.Equal(t, "keyword", props[field].Type, field)
	}
	assert.Equal(t, "date", props["dateOfBirth"].Type)
	assert.Len(t, props, 6, "other fields are dynamically mapped")
}

func TestOpenSearchEnsureIndexKeepsExistingIndex(t *testing.T) {
	fc, store := newFakeCluster(t)
	fc.on(http.MethodHead, "/prisoner-search-a", http.StatusOK, ``)

	require.NoError(t, store.EnsureIndex(context.Background(), indexmodels.SlotA))

	_, created := fc.last(http.MethodPut, "/prisoner-search-a")
	assert.False(t, created)
}
