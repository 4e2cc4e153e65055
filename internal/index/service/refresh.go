package service

import (
	"context"
	"fmt"

	"prisonersearch/internal/index/models"
)

const (
	EventRefreshIndex       = "REFRESH_INDEX"
	EventRefreshActiveIndex = "REFRESH_ACTIVE_INDEX"
)

// RefreshService re-synchronises records already in the live slots without
// a slot swap.
type RefreshService struct {
	pipeline
	sync PrisonerSynchroniser
}

func NewRefreshService(lifecycle *Lifecycle, q IndexQueue, source PrisonerSource, sync PrisonerSynchroniser, opts ...Option) *RefreshService {
	return &RefreshService{
		pipeline: newPipeline(lifecycle, q, source, opts),
		sync:     sync,
	}
}

// StartFullRefresh re-synchronises every record in the source of record.
func (s *RefreshService) StartFullRefresh(ctx context.Context) error {
	if err := s.checkRefreshable(ctx); err != nil {
		return err
	}
	if err := s.send(ctx, models.MsgRefreshIndex, nil); err != nil {
		return err
	}
	s.tracker.Track(ctx, EventRefreshIndex, nil)
	return nil
}

// StartActiveRefresh re-synchronises only records the source reports as
// active.
func (s *RefreshService) StartActiveRefresh(ctx context.Context) error {
	if err := s.checkRefreshable(ctx); err != nil {
		return err
	}
	if err := s.send(ctx, models.MsgRefreshActiveIndex, nil); err != nil {
		return err
	}
	s.tracker.Track(ctx, EventRefreshActiveIndex, nil)
	return nil
}

// RefreshIndex fans a full refresh out by page.
func (s *RefreshService) RefreshIndex(ctx context.Context) (int, error) {
	return s.fanOutPages(ctx, "refresh", func(page models.RecordPage) (string, any) {
		return models.MsgRefreshPrisonerPage, models.RefreshPageRequest{Page: page}
	})
}

// RefreshPage fans one page out into one refresh message per prisoner.
func (s *RefreshService) RefreshPage(ctx context.Context, page models.RecordPage) (int, error) {
	ids, err := s.source.PrisonerNumbers(ctx, page.Offset(), page.PageSize)
	if err != nil {
		return 0, fmt.Errorf("list prisoners for page %d: %w", page.Page, err)
	}
	return s.sendRefreshes(ctx, ids)
}

// RefreshActiveIndex fans an active refresh out by source id range.
func (s *RefreshService) RefreshActiveIndex(ctx context.Context) (int, error) {
	ranges, err := s.source.ActiveIDRanges(ctx, s.pageSize)
	if err != nil {
		return 0, fmt.Errorf("list active id ranges: %w", err)
	}
	for _, r := range ranges {
		if err := s.send(ctx, models.MsgRefreshActivePrisonerPage, models.RefreshActivePageRequest{Range: r}); err != nil {
			return 0, err
		}
	}
	s.metrics.AddPages("refresh_active", len(ranges))
	s.logger.InfoContext(ctx, "pages enqueued",
		"pipeline", "refresh_active",
		"pages", len(ranges),
	)
	return len(ranges), nil
}

// RefreshActivePage fans one id range out into one refresh message per
// prisoner.
func (s *RefreshService) RefreshActivePage(ctx context.Context, r models.IDRangePage) (int, error) {
	ids, err := s.source.ActivePrisonerNumbers(ctx, r.FromID, r.ToID)
	if err != nil {
		return 0, fmt.Errorf("list active prisoners %d-%d: %w", r.FromID, r.ToID, err)
	}
	return s.sendRefreshes(ctx, ids)
}

// RefreshPrisoner re-synchronises one prisoner into the active slots.
func (s *RefreshService) RefreshPrisoner(ctx context.Context, prisonerNumber string) error {
	return s.sync.Refresh(ctx, prisonerNumber)
}

func (s *RefreshService) sendRefreshes(ctx context.Context, ids []string) (int, error) {
	for _, id := range ids {
		if err := s.send(ctx, models.MsgRefreshPrisoner, models.RefreshPrisonerRequest{PrisonerNumber: id}); err != nil {
			return 0, err
		}
	}
	return len(ids), nil
}

func (s *RefreshService) checkRefreshable(ctx context.Context) error {
	status, err := s.lifecycle.Status(ctx)
	if err != nil {
		return err
	}
	if status.InProgress() {
		return s.conflict(ctx, models.NewConflict(models.BuildAlreadyInProgress, status))
	}
	if status.CurrentState != models.StateCompleted {
		return s.conflict(ctx, models.NewConflict(models.NoActiveSlots, status))
	}
	return nil
}
