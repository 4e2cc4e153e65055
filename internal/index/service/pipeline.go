package service

import (
	"context"
	"fmt"
	"log/slog"

	"prisonersearch/internal/index/metrics"
	"prisonersearch/internal/index/models"
	"prisonersearch/internal/platform/telemetry"
	"prisonersearch/internal/queue"
)

const defaultPageSize = 1000

// pipeline holds what the build and refresh fan-outs share.
type pipeline struct {
	lifecycle *Lifecycle
	queue     IndexQueue
	source    PrisonerSource
	pageSize  int
	logger    *slog.Logger
	metrics   *metrics.Metrics
	tracker   *telemetry.Tracker
}

type Option func(*pipeline)

func WithLogger(logger *slog.Logger) Option {
	return func(p *pipeline) {
		p.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(p *pipeline) {
		p.metrics = m
	}
}

func WithTelemetry(t *telemetry.Tracker) Option {
	return func(p *pipeline) {
		p.tracker = t
	}
}

func WithPageSize(n int) Option {
	return func(p *pipeline) {
		if n > 0 {
			p.pageSize = n
		}
	}
}

func newPipeline(lifecycle *Lifecycle, q IndexQueue, source PrisonerSource, opts []Option) pipeline {
	p := pipeline{
		lifecycle: lifecycle,
		queue:     q,
		source:    source,
		pageSize:  defaultPageSize,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

func (p *pipeline) send(ctx context.Context, msgType string, body any) error {
	msg, err := queue.NewMessage(msgType, body)
	if err != nil {
		return err
	}
	if _, err := p.queue.Send(ctx, msg); err != nil {
		return fmt.Errorf("send %s: %w", msgType, err)
	}
	p.metrics.IncrementSent(msgType)
	return nil
}

// QueueStatus reports the index queue depth.
func (p *pipeline) QueueStatus(ctx context.Context) (models.QueueStatus, error) {
	depth, err := p.queue.Depth(ctx)
	if err != nil {
		return models.QueueStatus{}, fmt.Errorf("index queue depth: %w", err)
	}
	return models.QueueStatus{
		Visible:      depth.Visible,
		InFlight:     depth.InFlight,
		DeadLettered: depth.DeadLettered,
	}, nil
}

// fanOutPages counts the source and sends one page message per page.
func (p *pipeline) fanOutPages(ctx context.Context, pipelineName string, pageMessage func(models.RecordPage) (string, any)) (int, error) {
	total, err := p.source.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count prisoners: %w", err)
	}
	pages := models.Pages(total, p.pageSize)
	for _, page := range pages {
		msgType, body := pageMessage(page)
		if err := p.send(ctx, msgType, body); err != nil {
			return 0, err
		}
	}
	p.metrics.AddPages(pipelineName, len(pages))
	p.logger.InfoContext(ctx, "pages enqueued",
		"pipeline", pipelineName,
		"records", total,
		"pages", len(pages),
	)
	return len(pages), nil
}

func (p *pipeline) conflict(ctx context.Context, c *models.LifecycleConflict) error {
	p.metrics.IncrementConflict(string(c.Reason))
	p.logger.WarnContext(ctx, "index operation rejected",
		"reason", string(c.Reason),
		"status", c.Status.String(),
	)
	return c
}
