package diff

import (
	"context"
	"log/slog"
	"time"
)

const relayBatch = 200

// OutboxRelay publishes recorded events that the synchronisation which
// recorded them could not publish.
type OutboxRelay struct {
	engine   *Engine
	interval time.Duration
	logger   *slog.Logger
}

func NewOutboxRelay(engine *Engine, interval time.Duration, logger *slog.Logger) *OutboxRelay {
	if logger == nil {
		logger = slog.Default()
	}
	return &OutboxRelay{engine: engine, interval: interval, logger: logger}
}

// Run drains the outbox every interval until ctx ends.
func (r *OutboxRelay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			r.drain(ctx)
		}
	}
}

// drain publishes full batches until the outbox is empty or a publish fails.
func (r *OutboxRelay) drain(ctx context.Context) {
	total := 0
	for {
		n, err := r.engine.Relay(ctx, relayBatch)
		total += n
		if err != nil {
			if ctx.Err() == nil {
				r.logger.WarnContext(ctx, "outbox relay stopped", "published", total, "error", err)
			}
			return
		}
		if n < relayBatch {
			break
		}
	}
	if total > 0 {
		r.logger.InfoContext(ctx, "relayed recorded domain events", "published", total)
	}
}
