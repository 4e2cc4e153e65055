package ports

import (
	"context"
	"time"

	indexmodels "prisonersearch/internal/index/models"
	"prisonersearch/internal/prisoner/models"
)

//go:generate mockgen -source=ports.go -destination=mocks/ports_mock.go -package=mocks

// PrisonSource reads the authoritative record. A missing record is
// sentinel.ErrNotFound.
type PrisonSource interface {
	Get(ctx context.Context, prisonerNumber string) (*models.Prisoner, error)
}

// PrisonerLister enumerates source ids by offset page.
type PrisonerLister interface {
	Count(ctx context.Context) (int, error)
	PrisonerNumbers(ctx context.Context, offset, limit int) ([]string, error)
}

// IncentiveClient returns nil when the booking has no incentive level.
type IncentiveClient interface {
	CurrentIncentive(ctx context.Context, bookingID string) (*models.CurrentIncentive, error)
}

// RestrictedPatientClient returns nil when the prisoner is not a restricted
// patient.
type RestrictedPatientClient interface {
	RestrictedPatient(ctx context.Context, prisonerNumber string) (*models.RestrictedPatient, error)
}

type AlertClient interface {
	Alerts(ctx context.Context, prisonerNumber string) ([]models.PrisonerAlert, error)
}

// ComplexityClient returns an empty level when none is recorded.
type ComplexityClient interface {
	ComplexityOfNeed(ctx context.Context, prisonerNumber string) (string, error)
}

// ScrollPage is one batch of a document scroll.
type ScrollPage struct {
	ScrollID string
	IDs      []string
}

// DocumentStore holds the search documents of both slots. Get returns
// sentinel.ErrNotFound for a missing document; Delete reports whether a
// document was removed.
type DocumentStore interface {
	Get(ctx context.Context, slot indexmodels.Slot, prisonerNumber string) (*models.Prisoner, error)
	Put(ctx context.Context, slot indexmodels.Slot, prisoner *models.Prisoner) error
	Delete(ctx context.Context, slot indexmodels.Slot, prisonerNumber string) (bool, error)
	Scroll(ctx context.Context, slot indexmodels.Slot, batchSize int, keepAlive time.Duration) (ScrollPage, error)
	ScrollNext(ctx context.Context, scrollID string, keepAlive time.Duration) (ScrollPage, error)
	ClearScroll(ctx context.Context, scrollID string) error
	EnsureIndex(ctx context.Context, slot indexmodels.Slot) error
	ResetIndex(ctx context.Context, slot indexmodels.Slot) error
	SwitchAlias(ctx context.Context, slot indexmodels.Slot) error
}

// EventPublisher delivers domain events. A failed publish must fail the
// synchronisation that produced it.
type EventPublisher interface {
	Publish(ctx context.Context, event models.DomainEvent) error
}
