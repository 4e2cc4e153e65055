// Package reconcile compares the ids in the live index with the ids the
// source of record holds. It only reports; nothing is written.
package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	indexmodels "prisonersearch/internal/index/models"
	"prisonersearch/internal/platform/telemetry"
	"prisonersearch/internal/prisoner/metrics"
	"prisonersearch/internal/prisoner/ports"
	pstrings "prisonersearch/pkg/platform/strings"
)

const (
	EventCompareIndexIDs = "COMPARE_INDEX_IDS"

	sampleSize = 10
)

// StatusReader exposes the lifecycle row to find the live slot.
type StatusReader interface {
	Status(ctx context.Context) (indexmodels.IndexStatus, error)
}

// Report is the symmetric difference between index and source ids, each
// side in ascending order.
type Report struct {
	Slot         indexmodels.Slot `json:"slot"`
	IndexCount   int              `json:"indexCount"`
	SourceCount  int              `json:"sourceCount"`
	OnlyInIndex  []string         `json:"onlyInIndex"`
	OnlyInSource []string         `json:"onlyInSource"`
}

// InSync reports whether both sides hold the same ids.
func (r Report) InSync() bool {
	return len(r.OnlyInIndex) == 0 && len(r.OnlyInSource) == 0
}

type Reconciler struct {
	documents ports.DocumentStore
	source    ports.PrisonerLister
	status    StatusReader
	batchSize int
	keepAlive time.Duration
	pageSize  int
	logger    *slog.Logger
	metrics   *metrics.Metrics
	tracker   *telemetry.Tracker
}

type Option func(*Reconciler)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Reconciler) {
		r.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Reconciler) {
		r.metrics = m
	}
}

func WithTelemetry(t *telemetry.Tracker) Option {
	return func(r *Reconciler) {
		r.tracker = t
	}
}

// WithScroll sets the index scroll batch size and cursor keep-alive.
func WithScroll(batchSize int, keepAlive time.Duration) Option {
	return func(r *Reconciler) {
		if batchSize > 0 {
			r.batchSize = batchSize
		}
		if keepAlive > 0 {
			r.keepAlive = keepAlive
		}
	}
}

// WithSourcePageSize sets the page size used to enumerate source ids.
func WithSourcePageSize(n int) Option {
	return func(r *Reconciler) {
		if n > 0 {
			r.pageSize = n
		}
	}
}

func New(documents ports.DocumentStore, source ports.PrisonerLister, status StatusReader, opts ...Option) *Reconciler {
	r := &Reconciler{
		documents: documents,
		source:    source,
		status:    status,
		batchSize: 2000,
		keepAlive: 2 * time.Minute,
		pageSize:  1000,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// CompareIndexToSource diffs the ids of the live slot against the source.
func (r *Reconciler) CompareIndexToSource(ctx context.Context) (Report, error) {
	status, err := r.status.Status(ctx)
	if err != nil {
		return Report{}, err
	}
	if status.CurrentState != indexmodels.StateCompleted {
		return Report{}, indexmodels.NewConflict(indexmodels.NoActiveSlots, status)
	}
	slot := status.CurrentSlot

	indexIDs, err := r.indexIDs(ctx, slot)
	if err != nil {
		return Report{}, err
	}
	sourceIDs, err := r.sourceIDs(ctx)
	if err != nil {
		return Report{}, err
	}

	report := Report{Slot: slot, IndexCount: len(indexIDs), SourceCount: len(sourceIDs)}
	report.OnlyInIndex, report.OnlyInSource = symmetricDifference(indexIDs, sourceIDs)

	r.metrics.SetDrift(len(report.OnlyInIndex), len(report.OnlyInSource))
	r.tracker.Track(ctx, EventCompareIndexIDs, map[string]string{
		"slot":               string(slot),
		"indexCount":         strconv.Itoa(report.IndexCount),
		"sourceCount":        strconv.Itoa(report.SourceCount),
		"onlyInIndex":        strconv.Itoa(len(report.OnlyInIndex)),
		"onlyInSource":       strconv.Itoa(len(report.OnlyInSource)),
		"onlyInIndexSample":  sample(report.OnlyInIndex),
		"onlyInSourceSample": sample(report.OnlyInSource),
	})
	r.logger.InfoContext(ctx, "index compared to source",
		"slot", slot,
		"index_count", report.IndexCount,
		"source_count", report.SourceCount,
		"only_in_index", len(report.OnlyInIndex),
		"only_in_source", len(report.OnlyInSource),
	)
	return report, nil
}

// indexIDs scrolls every id of slot. The cursor is always released.
func (r *Reconciler) indexIDs(ctx context.Context, slot indexmodels.Slot) ([]string, error) {
	page, err := r.documents.Scroll(ctx, slot, r.batchSize, r.keepAlive)
	if err != nil {
		return nil, fmt.Errorf("scroll slot %s: %w", slot, err)
	}
	scrollID := page.ScrollID
	defer func() {
		if scrollID == "" {
			return
		}
		if err := r.documents.ClearScroll(context.WithoutCancel(ctx), scrollID); err != nil {
			r.logger.WarnContext(ctx, "failed to clear scroll", "scroll_id", scrollID, "error", err)
		}
	}()

	var ids []string
	for len(page.IDs) > 0 {
		ids = append(ids, page.IDs...)
		page, err = r.documents.ScrollNext(ctx, scrollID, r.keepAlive)
		if err != nil {
			return nil, fmt.Errorf("continue scroll of slot %s: %w", slot, err)
		}
		if page.ScrollID != "" {
			scrollID = page.ScrollID
		}
	}
	return pstrings.NormaliseIDs(ids), nil
}

func (r *Reconciler) sourceIDs(ctx context.Context) ([]string, error) {
	total, err := r.source.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count source prisoners: %w", err)
	}
	ids := make([]string, 0, total)
	for _, page := range indexmodels.Pages(total, r.pageSize) {
		batch, err := r.source.PrisonerNumbers(ctx, page.Offset(), page.PageSize)
		if err != nil {
			return nil, fmt.Errorf("list source prisoners page %d: %w", page.Page, err)
		}
		ids = append(ids, batch...)
	}
	return pstrings.NormaliseIDs(ids), nil
}

// symmetricDifference walks two sorted id lists once.
func symmetricDifference(index, source []string) (onlyInIndex, onlyInSource []string) {
	onlyInIndex, onlyInSource = []string{}, []string{}
	i, j := 0, 0
	for i < len(index) && j < len(source) {
		switch strings.Compare(index[i], source[j]) {
		case 0:
			i++
			j++
		case -1:
			onlyInIndex = append(onlyInIndex, index[i])
			i++
		default:
			onlyInSource = append(onlyInSource, source[j])
			j++
		}
	}
	onlyInIndex = append(onlyInIndex, index[i:]...)
	onlyInSource = append(onlyInSource, source[j:]...)
	return onlyInIndex, onlyInSource
}

func sample(ids []string) string {
	return strings.Join(ids[:min(sampleSize, len(ids))], ",")
}
