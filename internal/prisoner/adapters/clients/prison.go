package clients

import (
	"context"
	"net/url"
	"strconv"

	indexmodels "prisonersearch/internal/index/models"
	"prisonersearch/internal/prisoner/models"
)

// PrisonAPI is the source of record. It serves prisoner records in document
// shape and enumerates prisoner numbers for the build and refresh
// pipelines.
type PrisonAPI struct {
	base
}

func NewPrisonAPI(cfg Config, opts ...Option) *PrisonAPI {
	return &PrisonAPI{base: newBase("prison-api", cfg, opts...)}
}

func (c *PrisonAPI) Get(ctx context.Context, prisonerNumber string) (*models.Prisoner, error) {
	var out models.Prisoner
	if err := c.getJSON(ctx, "/prisoner/"+url.PathEscape(prisonerNumber), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *PrisonAPI) Count(ctx context.Context) (int, error) {
	var out struct {
		Count int `json:"count"`
	}
	if err := c.getJSON(ctx, "/prisoners/count", nil, &out); err != nil {
		return 0, err
	}
	return out.Count, nil
}

type prisonerNumbers struct {
	PrisonerNumbers []string `json:"prisonerNumbers"`
}

func (c *PrisonAPI) PrisonerNumbers(ctx context.Context, offset, limit int) ([]string, error) {
	var out prisonerNumbers
	q := url.Values{
		"offset": {strconv.Itoa(offset)},
		"limit":  {strconv.Itoa(limit)},
	}
	if err := c.getJSON(ctx, "/prisoners/ids", q, &out); err != nil {
		return nil, err
	}
	return out.PrisonerNumbers, nil
}

// ActiveIDRanges splits the booking ids of active prisoners into ranges of
// roughly pageSize records.
func (c *PrisonAPI) ActiveIDRanges(ctx context.Context, pageSize int) ([]indexmodels.IDRangePage, error) {
	var out []indexmodels.IDRangePage
	q := url.Values{"size": {strconv.Itoa(pageSize)}}
	if err := c.getJSON(ctx, "/prisoners/active/ranges", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *PrisonAPI) ActivePrisonerNumbers(ctx context.Context, fromID, toID int64) ([]string, error) {
	var out prisonerNumbers
	q := url.Values{
		"fromId": {strconv.FormatInt(fromID, 10)},
		"toId":   {strconv.FormatInt(toID, 10)},
	}
	if err := c.getJSON(ctx, "/prisoners/active/ids", q, &out); err != nil {
		return nil, err
	}
	return out.PrisonerNumbers, nil
}
