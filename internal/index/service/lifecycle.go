package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"prisonersearch/internal/index/metrics"
	"prisonersearch/internal/index/models"
	"prisonersearch/pkg/platform/sentinel"
)

//go:generate mockgen -source=lifecycle.go -destination=mocks/lifecycle_mock.go -package=mocks StatusStore

// StatusStore persists the singleton lifecycle row with optimistic
// concurrency on its version.
type StatusStore interface {
	Get(ctx context.Context) (models.IndexStatus, error)
	EnsureExists(ctx context.Context) (models.IndexStatus, error)
	CompareAndSwap(ctx context.Context, expectedVersion int64, next models.IndexStatus) (models.IndexStatus, error)
}

const defaultMaxAttempts = 5

// Lifecycle is the only writer of the index status row. Every transition is
// a read-modify-write resolved by compare-and-set; a lost race re-reads and
// re-evaluates the transition against the fresh row.
type Lifecycle struct {
	store       StatusStore
	logger      *slog.Logger
	metrics     *metrics.Metrics
	now         func() time.Time
	maxAttempts int
}

type LifecycleOption func(*Lifecycle)

func WithLifecycleLogger(logger *slog.Logger) LifecycleOption {
	return func(l *Lifecycle) {
		l.logger = logger
	}
}

func WithLifecycleMetrics(m *metrics.Metrics) LifecycleOption {
	return func(l *Lifecycle) {
		l.metrics = m
	}
}

// WithClock overrides the time source used to stamp transitions.
func WithClock(now func() time.Time) LifecycleOption {
	return func(l *Lifecycle) {
		l.now = now
	}
}

func WithMaxAttempts(n int) LifecycleOption {
	return func(l *Lifecycle) {
		if n > 0 {
			l.maxAttempts = n
		}
	}
}

func NewLifecycle(store StatusStore, opts ...LifecycleOption) *Lifecycle {
	l := &Lifecycle{
		store:       store,
		logger:      slog.Default(),
		now:         time.Now,
		maxAttempts: defaultMaxAttempts,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Bootstrap creates the status row if it does not exist yet.
func (l *Lifecycle) Bootstrap(ctx context.Context) (models.IndexStatus, error) {
	status, err := l.store.EnsureExists(ctx)
	if err != nil {
		return models.IndexStatus{}, fmt.Errorf("ensure index status: %w", err)
	}
	return status, nil
}

// Status returns the current lifecycle row, creating it on first use.
func (l *Lifecycle) Status(ctx context.Context) (models.IndexStatus, error) {
	status, err := l.store.Get(ctx)
	if errors.Is(err, sentinel.ErrNotFound) {
		return l.Bootstrap(ctx)
	}
	if err != nil {
		return models.IndexStatus{}, fmt.Errorf("load index status: %w", err)
	}
	return status, nil
}

// ActiveSlots returns the slots live updates are written to.
func (l *Lifecycle) ActiveSlots(ctx context.Context) ([]models.Slot, error) {
	status, err := l.Status(ctx)
	if err != nil {
		return nil, err
	}
	return status.ActiveSlots(), nil
}

// MarkBuildInProgress starts a build of the other slot. It is a no-op when a
// build is already running.
func (l *Lifecycle) MarkBuildInProgress(ctx context.Context) (models.IndexStatus, error) {
	return l.transition(ctx, "build_in_progress", func(s models.IndexStatus, now time.Time) (models.IndexStatus, bool, error) {
		if s.InProgress() {
			return s, false, nil
		}
		return s.ToBuildInProgress(now), true, nil
	})
}

// MarkBuildComplete swaps the slots. It is a no-op unless a build is running.
func (l *Lifecycle) MarkBuildComplete(ctx context.Context) (models.IndexStatus, error) {
	return l.transition(ctx, "build_complete", func(s models.IndexStatus, now time.Time) (models.IndexStatus, bool, error) {
		if !s.InProgress() {
			return s, false, nil
		}
		return s.ToBuildComplete(now), true, nil
	})
}

// MarkBuildCancelled abandons the running build. It is a no-op unless a
// build is running.
func (l *Lifecycle) MarkBuildCancelled(ctx context.Context) (models.IndexStatus, error) {
	return l.transition(ctx, "build_cancelled", func(s models.IndexStatus, now time.Time) (models.IndexStatus, bool, error) {
		if !s.InProgress() {
			return s, false, nil
		}
		return s.ToBuildCancelled(now), true, nil
	})
}

// beginBuild is MarkBuildInProgress for callers that must own the build: it
// fails with BuildAlreadyInProgress instead of being a no-op, so of two
// racing callers exactly one starts the pipeline.
func (l *Lifecycle) beginBuild(ctx context.Context) (models.IndexStatus, error) {
	return l.transition(ctx, "build_in_progress", func(s models.IndexStatus, now time.Time) (models.IndexStatus, bool, error) {
		if s.InProgress() {
			return s, false, models.NewConflict(models.BuildAlreadyInProgress, s)
		}
		return s.ToBuildInProgress(now), true, nil
	})
}

func (l *Lifecycle) completeBuild(ctx context.Context) (models.IndexStatus, error) {
	return l.transition(ctx, "build_complete", func(s models.IndexStatus, now time.Time) (models.IndexStatus, bool, error) {
		if !s.InProgress() {
			return s, false, models.NewConflict(models.BuildNotInProgress, s)
		}
		return s.ToBuildComplete(now), true, nil
	})
}

func (l *Lifecycle) cancelBuild(ctx context.Context) (models.IndexStatus, error) {
	return l.transition(ctx, "build_cancelled", func(s models.IndexStatus, now time.Time) (models.IndexStatus, bool, error) {
		if !s.InProgress() {
			return s, false, models.NewConflict(models.BuildNotInProgress, s)
		}
		return s.ToBuildCancelled(now), true, nil
	})
}

type transitionFunc func(current models.IndexStatus, now time.Time) (next models.IndexStatus, changed bool, err error)

func (l *Lifecycle) transition(ctx context.Context, name string, fn transitionFunc) (models.IndexStatus, error) {
	for attempt := 1; attempt <= l.maxAttempts; attempt++ {
		current, err := l.Status(ctx)
		if err != nil {
			return models.IndexStatus{}, err
		}
		next, changed, err := fn(current, l.now())
		if err != nil {
			return current, err
		}
		if !changed {
			l.metrics.IncrementTransition(name, "noop")
			return current, nil
		}
		if err := next.Validate(); err != nil {
			return models.IndexStatus{}, fmt.Errorf("%s produced invalid status: %w", name, err)
		}
		stored, err := l.store.CompareAndSwap(ctx, current.Version, next)
		if errors.Is(err, sentinel.ErrConflict) {
			l.logger.DebugContext(ctx, "index status changed concurrently, retrying",
				"transition", name,
				"attempt", attempt,
			)
			continue
		}
		if err != nil {
			return models.IndexStatus{}, fmt.Errorf("store index status: %w", err)
		}
		l.metrics.IncrementTransition(name, "applied")
		l.logger.InfoContext(ctx, "index status changed",
			"transition", name,
			"status", stored.String(),
		)
		return stored, nil
	}
	return models.IndexStatus{}, fmt.Errorf("%s: %d attempts lost the status race: %w", name, l.maxAttempts, sentinel.ErrConflict)
}
