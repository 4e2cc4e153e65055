package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"prisonersearch/internal/index/models"
	prisonermodels "prisonersearch/internal/prisoner/models"
)

// Telemetry events raised by the build pipeline.
const (
	EventBuildingIndex          = "BUILDING_INDEX"
	EventCompletedBuildingIndex = "COMPLETED_BUILDING_INDEX"
	EventCancelledBuildingIndex = "CANCELLED_BUILDING_INDEX"
	EventPopulatePrisonerPages  = "POPULATE_PRISONER_PAGES"
)

// BuildService rebuilds the other slot from the source of record while the
// current slot keeps serving.
type BuildService struct {
	pipeline
	sync    PrisonerSynchroniser
	indices IndexAdmin
}

func NewBuildService(lifecycle *Lifecycle, q IndexQueue, source PrisonerSource, sync PrisonerSynchroniser, indices IndexAdmin, opts ...Option) *BuildService {
	return &BuildService{
		pipeline: newPipeline(lifecycle, q, source, opts),
		sync:     sync,
		indices:  indices,
	}
}

// PrepareForRebuild starts a build of the other slot. It is rejected without
// any state change while a build is running or while the index queue still
// holds messages from a previous run.
func (s *BuildService) PrepareForRebuild(ctx context.Context) (models.IndexStatus, error) {
	status, err := s.lifecycle.Status(ctx)
	if err != nil {
		return models.IndexStatus{}, err
	}
	if status.InProgress() {
		return status, s.conflict(ctx, models.NewConflict(models.BuildAlreadyInProgress, status))
	}
	qs, err := s.QueueStatus(ctx)
	if err != nil {
		return status, err
	}
	if qs.Active() {
		c := models.NewConflict(models.ActiveMessagesExist, status)
		c.Queue = &qs
		return status, s.conflict(ctx, c)
	}

	status, err = s.lifecycle.beginBuild(ctx)
	if err != nil {
		var c *models.LifecycleConflict
		if errors.As(err, &c) {
			return status, s.conflict(ctx, c)
		}
		return status, err
	}
	slot := status.OtherSlot()
	if err := s.indices.ResetIndex(ctx, slot); err != nil {
		return s.abandonBuild(ctx, status, fmt.Errorf("reset index for slot %s: %w", slot, err))
	}
	if err := s.send(ctx, models.MsgPopulateIndex, models.PopulateIndexRequest{Slot: slot}); err != nil {
		return s.abandonBuild(ctx, status, err)
	}
	s.tracker.Track(ctx, EventBuildingIndex, map[string]string{"slot": string(slot)})
	return status, nil
}

// abandonBuild cancels a build that could not be started so it does not sit
// BUILDING with nothing queued to populate it.
func (s *BuildService) abandonBuild(ctx context.Context, status models.IndexStatus, cause error) (models.IndexStatus, error) {
	cancelled, err := s.lifecycle.cancelBuild(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to cancel build that could not start",
			"slot", string(status.OtherSlot()),
			"error", err,
		)
		return status, cause
	}
	return cancelled, cause
}

// MarkIndexingComplete swaps the slots and points the live alias at the
// rebuilt slot. It is rejected while messages are still outstanding. When no
// build is running it still re-points the alias at a completed current slot,
// so retrying after a failed alias switch repairs the alias.
func (s *BuildService) MarkIndexingComplete(ctx context.Context) (models.IndexStatus, error) {
	status, err := s.lifecycle.Status(ctx)
	if err != nil {
		return models.IndexStatus{}, err
	}
	if !status.InProgress() {
		if err := s.convergeAlias(ctx, status); err != nil {
			return status, err
		}
		return status, s.conflict(ctx, models.NewConflict(models.BuildNotInProgress, status))
	}
	qs, err := s.QueueStatus(ctx)
	if err != nil {
		return status, err
	}
	if qs.Active() {
		c := models.NewConflict(models.ActiveMessagesExist, status)
		c.Queue = &qs
		return status, s.conflict(ctx, c)
	}

	status, err = s.lifecycle.completeBuild(ctx)
	if err != nil {
		var c *models.LifecycleConflict
		if errors.As(err, &c) {
			return status, s.conflict(ctx, c)
		}
		return status, err
	}
	if err := s.convergeAlias(ctx, status); err != nil {
		return status, err
	}
	s.tracker.Track(ctx, EventCompletedBuildingIndex, map[string]string{"slot": string(status.CurrentSlot)})
	return status, nil
}

// ConvergeAlias points the live alias at the current slot if that slot holds
// a completed build. Switching an alias already in place is a no-op.
func (s *BuildService) ConvergeAlias(ctx context.Context) (models.IndexStatus, error) {
	status, err := s.lifecycle.Status(ctx)
	if err != nil {
		return models.IndexStatus{}, err
	}
	return status, s.convergeAlias(ctx, status)
}

func (s *BuildService) convergeAlias(ctx context.Context, status models.IndexStatus) error {
	if status.CurrentState != models.StateCompleted {
		return nil
	}
	if err := s.indices.SwitchAlias(ctx, status.CurrentSlot); err != nil {
		return fmt.Errorf("switch alias to slot %s: %w", status.CurrentSlot, err)
	}
	return nil
}

// CancelIndexing abandons the running build and drops any queued work. The
// live slot is untouched.
func (s *BuildService) CancelIndexing(ctx context.Context) (models.IndexStatus, error) {
	status, err := s.lifecycle.cancelBuild(ctx)
	if err != nil {
		var c *models.LifecycleConflict
		if errors.As(err, &c) {
			return status, s.conflict(ctx, c)
		}
		return status, err
	}
	// Purge is best effort: consumers re-check the lifecycle before acting,
	// so leftover messages are dropped as stale.
	if err := s.queue.Purge(ctx); err != nil {
		s.logger.ErrorContext(ctx, "failed to purge index queue after cancel", "error", err)
	}
	s.tracker.Track(ctx, EventCancelledBuildingIndex, map[string]string{"slot": string(status.OtherSlot())})
	return status, nil
}

// PopulateIndex fans the build out into one message per page of source ids.
func (s *BuildService) PopulateIndex(ctx context.Context, slot models.Slot) (int, error) {
	if err := s.checkBuilding(ctx, slot); err != nil {
		return 0, err
	}
	pages, err := s.fanOutPages(ctx, "build", func(page models.RecordPage) (string, any) {
		return models.MsgPopulatePrisonerPage, models.PopulatePageRequest{Slot: slot, Page: page}
	})
	if err != nil {
		return 0, err
	}
	s.tracker.Track(ctx, EventPopulatePrisonerPages, map[string]string{
		"slot":  string(slot),
		"pages": strconv.Itoa(pages),
	})
	return pages, nil
}

// PopulatePage fans one page out into one message per prisoner.
func (s *BuildService) PopulatePage(ctx context.Context, slot models.Slot, page models.RecordPage) (int, error) {
	if err := s.checkBuilding(ctx, slot); err != nil {
		return 0, err
	}
	ids, err := s.source.PrisonerNumbers(ctx, page.Offset(), page.PageSize)
	if err != nil {
		return 0, fmt.Errorf("list prisoners for page %d: %w", page.Page, err)
	}
	for _, id := range ids {
		if err := s.send(ctx, models.MsgPopulatePrisoner, models.PopulatePrisonerRequest{Slot: slot, PrisonerNumber: id}); err != nil {
			return 0, err
		}
	}
	return len(ids), nil
}

// PopulatePrisoner writes one prisoner into the building slot, removing it
// from that slot if the source no longer has it.
func (s *BuildService) PopulatePrisoner(ctx context.Context, slot models.Slot, prisonerNumber string) error {
	if err := s.checkBuilding(ctx, slot); err != nil {
		return err
	}
	slots := []models.Slot{slot}
	_, err := s.sync.Synchronise(ctx, prisonerNumber, slots)
	if errors.Is(err, prisonermodels.ErrPrisonerNotFound) {
		s.logger.InfoContext(ctx, "prisoner not in source, removing from slot",
			"prisoner_number", prisonerNumber,
			"slot", string(slot),
		)
		return s.sync.RemoveFromSlots(ctx, prisonerNumber, slots)
	}
	return err
}

// checkBuilding rejects build work aimed at a slot that is no longer being
// built, which is how messages left over from a cancelled or completed
// build are neutralised.
func (s *BuildService) checkBuilding(ctx context.Context, slot models.Slot) error {
	status, err := s.lifecycle.Status(ctx)
	if err != nil {
		return err
	}
	if !status.InProgress() {
		s.metrics.IncrementStale()
		return models.NewConflict(models.BuildNotInProgress, status)
	}
	if status.OtherSlot() != slot {
		s.metrics.IncrementStale()
		c := models.NewConflict(models.WrongSlotRequested, status)
		c.Requested = slot
		return c
	}
	return nil
}
