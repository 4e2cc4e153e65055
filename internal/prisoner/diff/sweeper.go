package diff

import (
	"context"
	"log/slog"
	"time"
)

// RetentionSweeper purges expired audit records on a fixed interval.
type RetentionSweeper struct {
	engine    *Engine
	retention time.Duration
	interval  time.Duration
	logger    *slog.Logger
}

func NewRetentionSweeper(engine *Engine, retention, interval time.Duration, logger *slog.Logger) *RetentionSweeper {
	if logger == nil {
		logger = slog.Default()
	}
	return &RetentionSweeper{engine: engine, retention: retention, interval: interval, logger: logger}
}

// Run sweeps once immediately and then every interval until ctx ends.
func (s *RetentionSweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		s.sweep(ctx)
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (s *RetentionSweeper) sweep(ctx context.Context) {
	n, err := s.engine.PurgeDifferences(ctx, s.retention)
	if err != nil {
		if ctx.Err() == nil {
			s.logger.ErrorContext(ctx, "difference retention sweep failed", "error", err)
		}
		return
	}
	if n > 0 {
		s.logger.InfoContext(ctx, "purged expired difference records", "removed", n)
	}
}
