package service

import (
	"context"

	"prisonersearch/internal/index/models"
	prisonermodels "prisonersearch/internal/prisoner/models"
	"prisonersearch/internal/queue"
)

//go:generate mockgen -source=ports.go -destination=mocks/ports_mock.go -package=mocks

// IndexQueue is the subset of the queue transport the pipelines fan out over.
type IndexQueue interface {
	Send(ctx context.Context, msg queue.Message) (string, error)
	Purge(ctx context.Context) error
	Depth(ctx context.Context) (queue.Depth, error)
}

// PrisonerSource enumerates ids in the source of record.
type PrisonerSource interface {
	Count(ctx context.Context) (int, error)
	PrisonerNumbers(ctx context.Context, offset, limit int) ([]string, error)
	ActiveIDRanges(ctx context.Context, pageSize int) ([]models.IDRangePage, error)
	ActivePrisonerNumbers(ctx context.Context, fromID, toID int64) ([]string, error)
}

// PrisonerSynchroniser writes individual records into slots. Synchronise
// reports a prisoner missing from the source of record with an error matching
// prisonermodels.ErrPrisonerNotFound.
type PrisonerSynchroniser interface {
	Synchronise(ctx context.Context, prisonerNumber string, slots []models.Slot) (*prisonermodels.Prisoner, error)
	Refresh(ctx context.Context, prisonerNumber string) error
	RemoveFromSlots(ctx context.Context, prisonerNumber string, slots []models.Slot) error
}

// IndexAdmin manages the physical indices behind the slots.
type IndexAdmin interface {
	ResetIndex(ctx context.Context, slot models.Slot) error
	SwitchAlias(ctx context.Context, slot models.Slot) error
}
