package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	elasticsearch "github.com/elastic/go-elasticsearch/v9"
	"github.com/elastic/go-elasticsearch/v9/esapi"

	indexmodels "prisonersearch/internal/index/models"
	"prisonersearch/internal/prisoner/models"
	"prisonersearch/internal/prisoner/ports"
	"prisonersearch/pkg/platform/sentinel"
)

// mapping keeps identifiers exact-match; the rest is dynamically mapped.
const mapping = `{
  "settings": {"number_of_shards": 1},
  "mappings": {
    "properties": {
      "prisonerNumber": {"type": "keyword"},
      "pncNumber": {"type": "keyword"},
      "croNumber": {"type": "keyword"},
      "bookingId": {"type": "keyword"},
      "prisonId": {"type": "keyword"},
      "dateOfBirth": {"type": "date", "ignore_malformed": true}
    }
  }
}`

// OpenSearch stores documents in two physical indices, one per slot, behind
// a single alias. The alias name is the prefix.
type OpenSearch struct {
	client *elasticsearch.Client
	prefix string
}

func NewOpenSearch(client *elasticsearch.Client, prefix string) *OpenSearch {
	return &OpenSearch{client: client, prefix: prefix}
}

// NewClient builds the REST client for addresses.
func NewClient(addresses []string, username, password string) (*elasticsearch.Client, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: addresses,
		Username:  username,
		Password:  password,
	})
	if err != nil {
		return nil, fmt.Errorf("create search client: %w", err)
	}
	return client, nil
}

func (s *OpenSearch) index(slot indexmodels.Slot) string {
	return slot.IndexName(s.prefix)
}

func (s *OpenSearch) Get(ctx context.Context, slot indexmodels.Slot, prisonerNumber string) (*models.Prisoner, error) {
	es := s.client
	res, err := es.Get(s.index(slot), prisonerNumber, es.Get.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", prisonerNumber, err)
	}
	defer res.Body.Close()
	if res.StatusCode == http.StatusNotFound {
		return nil, sentinel.ErrNotFound
	}
	if err := responseError(res, "get document"); err != nil {
		return nil, err
	}
	var body struct {
		Source models.Prisoner `json:"_source"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode document %s: %w", prisonerNumber, err)
	}
	return &body.Source, nil
}

func (s *OpenSearch) Put(ctx context.Context, slot indexmodels.Slot, prisoner *models.Prisoner) error {
	payload, err := json.Marshal(prisoner)
	if err != nil {
		return fmt.Errorf("encode document %s: %w", prisoner.PrisonerNumber, err)
	}
	es := s.client
	res, err := es.Index(s.index(slot), bytes.NewReader(payload),
		es.Index.WithDocumentID(prisoner.PrisonerNumber),
		es.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("index %s: %w", prisoner.PrisonerNumber, err)
	}
	defer res.Body.Close()
	return responseError(res, "index document")
}

func (s *OpenSearch) Delete(ctx context.Context, slot indexmodels.Slot, prisonerNumber string) (bool, error) {
	es := s.client
	res, err := es.Delete(s.index(slot), prisonerNumber, es.Delete.WithContext(ctx))
	if err != nil {
		return false, fmt.Errorf("delete %s: %w", prisonerNumber, err)
	}
	defer res.Body.Close()
	if res.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if err := responseError(res, "delete document"); err != nil {
		return false, err
	}
	return true, nil
}

type scrollResponse struct {
	ScrollID string `json:"_scroll_id"`
	Hits     struct {
		Hits []struct {
			ID string `json:"_id"`
		} `json:"hits"`
	} `json:"hits"`
}

func (r scrollResponse) page() ports.ScrollPage {
	ids := make([]string, 0, len(r.Hits.Hits))
	for _, h := range r.Hits.Hits {
		ids = append(ids, h.ID)
	}
	return ports.ScrollPage{ScrollID: r.ScrollID, IDs: ids}
}

// Scroll opens an id-only scroll over slot.
func (s *OpenSearch) Scroll(ctx context.Context, slot indexmodels.Slot, batchSize int, keepAlive time.Duration) (ports.ScrollPage, error) {
	query := fmt.Sprintf(`{"size": %d, "_source": false, "sort": ["_doc"], "query": {"match_all": {}}}`, batchSize)
	es := s.client
	res, err := es.Search(
		es.Search.WithContext(ctx),
		es.Search.WithIndex(s.index(slot)),
		es.Search.WithBody(bytes.NewReader([]byte(query))),
		es.Search.WithScroll(keepAlive),
	)
	if err != nil {
		return ports.ScrollPage{}, fmt.Errorf("open scroll on %s: %w", s.index(slot), err)
	}
	return decodeScroll(res, "open scroll")
}

func (s *OpenSearch) ScrollNext(ctx context.Context, scrollID string, keepAlive time.Duration) (ports.ScrollPage, error) {
	es := s.client
	res, err := es.Scroll(
		es.Scroll.WithContext(ctx),
		es.Scroll.WithScrollID(scrollID),
		es.Scroll.WithScroll(keepAlive),
	)
	if err != nil {
		return ports.ScrollPage{}, fmt.Errorf("continue scroll: %w", err)
	}
	return decodeScroll(res, "continue scroll")
}

func decodeScroll(res *esapi.Response, op string) (ports.ScrollPage, error) {
	defer res.Body.Close()
	if err := responseError(res, op); err != nil {
		return ports.ScrollPage{}, err
	}
	var body scrollResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return ports.ScrollPage{}, fmt.Errorf("%s: decode: %w", op, err)
	}
	return body.page(), nil
}

func (s *OpenSearch) ClearScroll(ctx context.Context, scrollID string) error {
	es := s.client
	res, err := es.ClearScroll(
		es.ClearScroll.WithContext(ctx),
		es.ClearScroll.WithScrollID(scrollID),
	)
	if err != nil {
		return fmt.Errorf("clear scroll: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode == http.StatusNotFound {
		return nil
	}
	return responseError(res, "clear scroll")
}

// EnsureIndex creates the slot's index if it is missing.
func (s *OpenSearch) EnsureIndex(ctx context.Context, slot indexmodels.Slot) error {
	es := s.client
	name := s.index(slot)
	res, err := es.Indices.Exists([]string{name}, es.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("check index %s: %w", name, err)
	}
	res.Body.Close()
	if res.StatusCode == http.StatusOK {
		return nil
	}
	if res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("check index %s: %s", name, res.Status())
	}
	return s.create(ctx, name)
}

// ResetIndex drops and recreates the slot's index ahead of a rebuild.
func (s *OpenSearch) ResetIndex(ctx context.Context, slot indexmodels.Slot) error {
	es := s.client
	name := s.index(slot)
	res, err := es.Indices.Delete([]string{name}, es.Indices.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("delete index %s: %w", name, err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusNotFound {
		if err := responseError(res, "delete index"); err != nil {
			return err
		}
	}
	return s.create(ctx, name)
}

func (s *OpenSearch) create(ctx context.Context, name string) error {
	es := s.client
	res, err := es.Indices.Create(name,
		es.Indices.Create.WithBody(bytes.NewReader([]byte(mapping))),
		es.Indices.Create.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("create index %s: %w", name, err)
	}
	defer res.Body.Close()
	return responseError(res, "create index")
}

type aliasAction map[string]map[string]string

// SwitchAlias points the alias at slot in a single atomic request, removing
// it from any other index that currently holds it.
func (s *OpenSearch) SwitchAlias(ctx context.Context, slot indexmodels.Slot) error {
	holders, err := s.aliasHolders(ctx)
	if err != nil {
		return err
	}
	target := s.index(slot)
	actions := []aliasAction{}
	for _, name := range holders {
		if name != target {
			actions = append(actions, aliasAction{"remove": {"index": name, "alias": s.prefix}})
		}
	}
	actions = append(actions, aliasAction{"add": {"index": target, "alias": s.prefix}})

	payload, err := json.Marshal(map[string]any{"actions": actions})
	if err != nil {
		return fmt.Errorf("encode alias actions: %w", err)
	}
	es := s.client
	res, err := es.Indices.UpdateAliases(bytes.NewReader(payload), es.Indices.UpdateAliases.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("switch alias to %s: %w", target, err)
	}
	defer res.Body.Close()
	return responseError(res, "switch alias")
}

func (s *OpenSearch) aliasHolders(ctx context.Context) ([]string, error) {
	es := s.client
	res, err := es.Indices.GetAlias(
		es.Indices.GetAlias.WithName(s.prefix),
		es.Indices.GetAlias.WithContext(ctx),
	)
	if err != nil {
		return nil, fmt.Errorf("read alias %s: %w", s.prefix, err)
	}
	defer res.Body.Close()
	if res.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if err := responseError(res, "read alias"); err != nil {
		return nil, err
	}
	var body map[string]json.RawMessage
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode alias %s: %w", s.prefix, err)
	}
	names := make([]string, 0, len(body))
	for name := range body {
		names = append(names, name)
	}
	return names, nil
}

// ResponseError carries a non-2xx search response.
type ResponseError struct {
	Op     string
	Status int
	Body   string
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("%s: status %d: %s", e.Op, e.Status, e.Body)
}

func responseError(res *esapi.Response, op string) error {
	if !res.IsError() {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
	return &ResponseError{Op: op, Status: res.StatusCode, Body: string(body)}
}
