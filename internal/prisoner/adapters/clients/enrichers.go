package clients

import (
	"context"
	"errors"
	"net/url"

	"prisonersearch/internal/prisoner/models"
	"prisonersearch/pkg/platform/sentinel"
)

// Enrichment services answer 404 when they hold nothing for a prisoner; that
// is an empty result, not a failure.

type IncentivesAPI struct {
	base
}

func NewIncentivesAPI(cfg Config, opts ...Option) *IncentivesAPI {
	return &IncentivesAPI{base: newBase("incentives-api", cfg, opts...)}
}

func (c *IncentivesAPI) CurrentIncentive(ctx context.Context, bookingID string) (*models.CurrentIncentive, error) {
	var out models.CurrentIncentive
	err := c.getJSON(ctx, "/incentive-reviews/booking/"+url.PathEscape(bookingID)+"/current", nil, &out)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

type RestrictedPatientsAPI struct {
	base
}

func NewRestrictedPatientsAPI(cfg Config, opts ...Option) *RestrictedPatientsAPI {
	return &RestrictedPatientsAPI{base: newBase("restricted-patients-api", cfg, opts...)}
}

func (c *RestrictedPatientsAPI) RestrictedPatient(ctx context.Context, prisonerNumber string) (*models.RestrictedPatient, error) {
	var out models.RestrictedPatient
	err := c.getJSON(ctx, "/restricted-patient/prison-number/"+url.PathEscape(prisonerNumber), nil, &out)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

type AlertsAPI struct {
	base
}

func NewAlertsAPI(cfg Config, opts ...Option) *AlertsAPI {
	return &AlertsAPI{base: newBase("alerts-api", cfg, opts...)}
}

func (c *AlertsAPI) Alerts(ctx context.Context, prisonerNumber string) ([]models.PrisonerAlert, error) {
	var out []models.PrisonerAlert
	err := c.getJSON(ctx, "/prisoners/"+url.PathEscape(prisonerNumber)+"/alerts", nil, &out)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, nil
	}
	return out, err
}

type ComplexityOfNeedAPI struct {
	base
}

func NewComplexityOfNeedAPI(cfg Config, opts ...Option) *ComplexityOfNeedAPI {
	return &ComplexityOfNeedAPI{base: newBase("complexity-of-need-api", cfg, opts...)}
}

func (c *ComplexityOfNeedAPI) ComplexityOfNeed(ctx context.Context, prisonerNumber string) (string, error) {
	var out struct {
		Level string `json:"level"`
	}
	err := c.getJSON(ctx, "/complexity-of-need/offender-no/"+url.PathEscape(prisonerNumber), nil, &out)
	if errors.Is(err, sentinel.ErrNotFound) {
		return "", nil
	}
	return out.Level, err
}
