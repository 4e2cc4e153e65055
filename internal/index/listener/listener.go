// Package listener consumes index queue messages and drives the build and
// refresh pipelines.
package listener

import (
	"context"
	"log/slog"

	"prisonersearch/internal/index/models"
	"prisonersearch/internal/queue"
)

// BuildPipeline is the build side of the index service.
type BuildPipeline interface {
	PopulateIndex(ctx context.Context, slot models.Slot) (int, error)
	PopulatePage(ctx context.Context, slot models.Slot, page models.RecordPage) (int, error)
	PopulatePrisoner(ctx context.Context, slot models.Slot, prisonerNumber string) error
}

// RefreshPipeline is the refresh side of the index service.
type RefreshPipeline interface {
	RefreshIndex(ctx context.Context) (int, error)
	RefreshPage(ctx context.Context, page models.RecordPage) (int, error)
	RefreshActiveIndex(ctx context.Context) (int, error)
	RefreshActivePage(ctx context.Context, r models.IDRangePage) (int, error)
	RefreshPrisoner(ctx context.Context, prisonerNumber string) error
}

type Listener struct {
	build   BuildPipeline
	refresh RefreshPipeline
	logger  *slog.Logger
}

func New(build BuildPipeline, refresh RefreshPipeline, logger *slog.Logger) *Listener {
	if logger == nil {
		logger = slog.Default()
	}
	return &Listener{build: build, refresh: refresh, logger: logger}
}

// Register binds a handler for every index message type.
func (l *Listener) Register(r *queue.Router) {
	r.Register(models.MsgPopulateIndex, queue.HandlerFunc(l.populateIndex))
	r.Register(models.MsgPopulatePrisonerPage, queue.HandlerFunc(l.populatePage))
	r.Register(models.MsgPopulatePrisoner, queue.HandlerFunc(l.populatePrisoner))
	r.Register(models.MsgRefreshIndex, queue.HandlerFunc(l.refreshIndex))
	r.Register(models.MsgRefreshPrisonerPage, queue.HandlerFunc(l.refreshPage))
	r.Register(models.MsgRefreshActiveIndex, queue.HandlerFunc(l.refreshActiveIndex))
	r.Register(models.MsgRefreshActivePrisonerPage, queue.HandlerFunc(l.refreshActivePage))
	r.Register(models.MsgRefreshPrisoner, queue.HandlerFunc(l.refreshPrisoner))
}

func (l *Listener) populateIndex(ctx context.Context, d queue.Delivery) error {
	var req models.PopulateIndexRequest
	if !l.decode(ctx, d, &req) {
		return nil
	}
	_, err := l.build.PopulateIndex(ctx, req.Slot)
	return l.settle(ctx, d, err)
}

func (l *Listener) populatePage(ctx context.Context, d queue.Delivery) error {
	var req models.PopulatePageRequest
	if !l.decode(ctx, d, &req) {
		return nil
	}
	_, err := l.build.PopulatePage(ctx, req.Slot, req.Page)
	return l.settle(ctx, d, err)
}

func (l *Listener) populatePrisoner(ctx context.Context, d queue.Delivery) error {
	var req models.PopulatePrisonerRequest
	if !l.decode(ctx, d, &req) {
		return nil
	}
	return l.settle(ctx, d, l.build.PopulatePrisoner(ctx, req.Slot, req.PrisonerNumber))
}

func (l *Listener) refreshIndex(ctx context.Context, d queue.Delivery) error {
	_, err := l.refresh.RefreshIndex(ctx)
	return l.settle(ctx, d, err)
}

func (l *Listener) refreshPage(ctx context.Context, d queue.Delivery) error {
	var req models.RefreshPageRequest
	if !l.decode(ctx, d, &req) {
		return nil
	}
	_, err := l.refresh.RefreshPage(ctx, req.Page)
	return l.settle(ctx, d, err)
}

func (l *Listener) refreshActiveIndex(ctx context.Context, d queue.Delivery) error {
	_, err := l.refresh.RefreshActiveIndex(ctx)
	return l.settle(ctx, d, err)
}

func (l *Listener) refreshActivePage(ctx context.Context, d queue.Delivery) error {
	var req models.RefreshActivePageRequest
	if !l.decode(ctx, d, &req) {
		return nil
	}
	_, err := l.refresh.RefreshActivePage(ctx, req.Range)
	return l.settle(ctx, d, err)
}

func (l *Listener) refreshPrisoner(ctx context.Context, d queue.Delivery) error {
	var req models.RefreshPrisonerRequest
	if !l.decode(ctx, d, &req) {
		return nil
	}
	return l.settle(ctx, d, l.refresh.RefreshPrisoner(ctx, req.PrisonerNumber))
}

// decode reports whether the body could be read. Malformed bodies are
// logged and acknowledged since redelivery cannot fix them.
func (l *Listener) decode(ctx context.Context, d queue.Delivery, v any) bool {
	if err := d.Message.Decode(v); err != nil {
		l.logger.ErrorContext(ctx, "dropping malformed index message",
			"message_type", d.Message.Type,
			"message_id", d.ID,
			"error", err,
		)
		return false
	}
	return true
}

// settle acknowledges lifecycle conflicts, since they mean the message
// belongs to a build that is no longer running. Other errors are returned so
// the queue redrives the message.
func (l *Listener) settle(ctx context.Context, d queue.Delivery, err error) error {
	if err == nil {
		return nil
	}
	if models.IsConflict(err) {
		l.logger.InfoContext(ctx, "ignoring stale index message",
			"message_type", d.Message.Type,
			"message_id", d.ID,
			"reason", err.Error(),
		)
		return nil
	}
	l.logger.ErrorContext(ctx, "index message failed",
		"message_type", d.Message.Type,
		"message_id", d.ID,
		"receive_count", d.ReceiveCount,
		"error", err,
	)
	return err
}
