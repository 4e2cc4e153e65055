// Package diff detects real changes to search documents and turns them into
// domain events, telemetry and an audit trail. Events are recorded in an
// outbox with the hash that detected them and published from there.
package diff

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"prisonersearch/internal/platform/telemetry"
	"prisonersearch/internal/prisoner/metrics"
	"prisonersearch/internal/prisoner/models"
	"prisonersearch/internal/prisoner/ports"
	"prisonersearch/pkg/platform/tx"
)

// Telemetry events raised by the engine.
const (
	EventNoChange        = "PRISONER_DATABASE_NO_CHANGE"
	EventCreated         = "PRISONER_CREATED"
	EventUpdated         = "PRISONER_UPDATED"
	EventRemoved         = "PRISONER_REMOVED"
	EventDifferencePurge = "PRISONER_DIFFERENCES_PURGED"
)

const (
	flushBatch   = 100
	drainTimeout = 30 * time.Second
)

// HashStore records the last observed content hash per prisoner and
// entity. UpsertIfChanged returns 0 when the stored hash already matches.
type HashStore interface {
	UpsertIfChanged(ctx context.Context, prisonerNumber, entity, hash string, at time.Time) (int64, error)
	Clear(ctx context.Context, prisonerNumbers ...string) error
}

// Outbox holds recorded domain events until they are published.
type Outbox interface {
	Append(ctx context.Context, entries ...models.OutboxEntry) error
	Pending(ctx context.Context, prisonerNumber string, limit int) ([]models.OutboxEntry, error)
	MarkPublished(ctx context.Context, id uuid.UUID, at time.Time) error
	DeletePublishedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// DifferenceStore is the audit trail of reported differences.
type DifferenceStore interface {
	Save(ctx context.Context, record models.DifferenceRecord) error
	ListByPrisoner(ctx context.Context, prisonerNumber string) ([]models.DifferenceRecord, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type Engine struct {
	hashes      HashStore
	differences DifferenceStore
	outbox      Outbox
	events      ports.EventPublisher
	tx          tx.Runner
	tracker     *telemetry.Tracker
	logger      *slog.Logger
	metrics     *metrics.Metrics
	now         func() time.Time
}

type Option func(*Engine)

func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

func WithTelemetry(t *telemetry.Tracker) Option {
	return func(e *Engine) {
		e.tracker = t
	}
}

// WithTransactions sets the runner that groups store writes. Stores must
// take part in the runner's transactions.
func WithTransactions(r tx.Runner) Option {
	return func(e *Engine) {
		e.tx = r
	}
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

func New(hashes HashStore, differences DifferenceStore, outbox Outbox, events ports.EventPublisher, opts ...Option) *Engine {
	e := &Engine{
		hashes:      hashes,
		differences: differences,
		outbox:      outbox,
		events:      events,
		tx:          tx.NewLocal(),
		logger:      slog.Default(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// HandleDifferences records the change from previous to current for a full
// synchronisation. previous is nil for a prisoner new to the slot. The
// content hash, the events announcing the change and the audit record are
// written in one transaction; Flush publishes the events.
func (e *Engine) HandleDifferences(ctx context.Context, prisonerNumber string, previous, current *models.Prisoner) error {
	var c change
	if previous == nil {
		c = e.created(prisonerNumber, current)
	} else {
		c = e.updated(prisonerNumber, Differences(previous, current))
	}
	return e.record(ctx, prisonerNumber, models.EntityPrisoner, current, c)
}

// HandleEntityDifferences records a change to one enrichment sub-object,
// hashing only that sub-object and reporting only its category.
func (e *Engine) HandleEntityDifferences(ctx context.Context, prisonerNumber, entity string, previous, current *models.Prisoner) error {
	category, content, err := entityContent(entity, current)
	if err != nil {
		return err
	}
	c := e.updated(prisonerNumber, InCategory(Differences(previous, current), category))
	return e.record(ctx, prisonerNumber, entity, content, c)
}

// ReportRemoval records that a prisoner left the live index and forgets its
// hashes, so a later return is reported as a creation.
func (e *Engine) ReportRemoval(ctx context.Context, prisonerNumber string) error {
	err := e.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := e.hashes.Clear(ctx, prisonerNumber); err != nil {
			return fmt.Errorf("clear hashes for %s: %w", prisonerNumber, err)
		}
		return e.append(ctx, models.DomainEvent{
			EventType:      models.EventPrisonerRemoved,
			PrisonerNumber: prisonerNumber,
			OccurredAt:     e.now(),
		})
	})
	if err != nil {
		return err
	}
	e.tracker.Track(ctx, EventRemoved, map[string]string{"prisonerNumber": prisonerNumber})
	return nil
}

// Flush publishes the prisoner's recorded events in recording order. It
// stops at the first failed publish; the rest stay recorded for the next
// Flush or Relay.
func (e *Engine) Flush(ctx context.Context, prisonerNumber string) error {
	_, err := e.drain(ctx, prisonerNumber, flushBatch)
	return err
}

// Relay publishes up to limit recorded events of any prisoner and reports
// how many were published.
func (e *Engine) Relay(ctx context.Context, limit int) (int, error) {
	return e.drain(ctx, "", limit)
}

// PurgeDifferences deletes audit records, and events published, before
// olderThan. It returns the number of audit records removed.
func (e *Engine) PurgeDifferences(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := e.now().Add(-olderThan)
	n, err := e.differences.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if _, err := e.outbox.DeletePublishedBefore(ctx, cutoff); err != nil {
		return 0, err
	}
	e.metrics.AddPurged(n)
	e.tracker.Track(ctx, EventDifferencePurge, map[string]string{
		"cutoff":  cutoff.UTC().Format(time.RFC3339),
		"removed": strconv.FormatInt(n, 10),
	})
	return n, nil
}

// History returns the audit records of one prisoner.
func (e *Engine) History(ctx context.Context, prisonerNumber string) ([]models.DifferenceRecord, error) {
	return e.differences.ListByPrisoner(ctx, prisonerNumber)
}

// change is what a detected change records besides its hash.
type change struct {
	events    []models.DomainEvent
	audit     []models.Difference
	telemetry string
	props     map[string]string
}

func (e *Engine) created(prisonerNumber string, current *models.Prisoner) change {
	return change{
		events: []models.DomainEvent{{
			EventType:      models.EventPrisonerCreated,
			PrisonerNumber: prisonerNumber,
			OccurredAt:     e.now(),
		}},
		audit:     Differences(nil, current),
		telemetry: EventCreated,
		props:     map[string]string{"prisonerNumber": prisonerNumber},
	}
}

// updated builds one event per changed category in taxonomy order.
func (e *Engine) updated(prisonerNumber string, diffs []models.Difference) change {
	groups := GroupByCategory(diffs)
	c := change{audit: diffs, telemetry: EventUpdated}
	categories := make([]string, 0, len(groups))
	for _, g := range groups {
		c.events = append(c.events, models.DomainEvent{
			EventType:         models.EventPrisonerUpdated,
			PrisonerNumber:    prisonerNumber,
			OccurredAt:        e.now(),
			CategoriesChanged: []models.Category{g.Category},
			Differences:       g.Differences,
		})
		categories = append(categories, string(g.Category))
	}
	c.props = map[string]string{
		"prisonerNumber":    prisonerNumber,
		"categoriesChanged": strings.Join(categories, ","),
	}
	return c
}

// record stores content's hash and, when it differs from the stored hash,
// the change's events and audit record in the same transaction.
func (e *Engine) record(ctx context.Context, prisonerNumber, entity string, content any, c change) error {
	hash, err := ContentHash(content)
	if err != nil {
		return err
	}
	changed := false
	err = e.tx.RunInTx(ctx, func(ctx context.Context) error {
		rows, err := e.hashes.UpsertIfChanged(ctx, prisonerNumber, entity, hash, e.now())
		if err != nil {
			return fmt.Errorf("record %s hash for %s: %w", entity, prisonerNumber, err)
		}
		if rows == 0 {
			return nil
		}
		changed = true
		if err := e.append(ctx, c.events...); err != nil {
			return err
		}
		return e.audit(ctx, prisonerNumber, c.audit)
	})
	if err != nil {
		return err
	}

	if !changed {
		e.metrics.IncrementNoChange()
		e.tracker.Track(ctx, EventNoChange, map[string]string{
			"prisonerNumber": prisonerNumber,
			"entity":         entity,
		})
		return nil
	}
	if len(c.events) == 0 {
		e.logger.DebugContext(ctx, "content changed without reportable differences",
			"prisoner_number", prisonerNumber,
			"entity", entity,
		)
		return nil
	}
	for _, event := range c.events {
		for _, category := range event.CategoriesChanged {
			e.metrics.IncrementCategory(string(category))
		}
	}
	e.tracker.Track(ctx, c.telemetry, c.props)
	return nil
}

func (e *Engine) append(ctx context.Context, events ...models.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}
	entries := make([]models.OutboxEntry, 0, len(events))
	for _, event := range events {
		entries = append(entries, models.OutboxEntry{ID: uuid.New(), Event: event, CreatedAt: e.now()})
	}
	if err := e.outbox.Append(ctx, entries...); err != nil {
		return fmt.Errorf("record events for %s: %w", events[0].PrisonerNumber, err)
	}
	return nil
}

func (e *Engine) audit(ctx context.Context, prisonerNumber string, diffs []models.Difference) error {
	if len(diffs) == 0 {
		return nil
	}
	record := models.DifferenceRecord{
		ID:             uuid.New(),
		PrisonerNumber: prisonerNumber,
		Differences:    diffs,
		CreatedAt:      e.now(),
	}
	if err := e.differences.Save(ctx, record); err != nil {
		return fmt.Errorf("save difference record for %s: %w", prisonerNumber, err)
	}
	return nil
}

// drain publishes pending entries inside one transaction so that concurrent
// drains skip each other's entries. Entries published before a failure are
// still marked, so the failure is returned only after the commit.
func (e *Engine) drain(ctx context.Context, prisonerNumber string, limit int) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, drainTimeout)
	defer cancel()

	var (
		published  int
		publishErr error
	)
	err := e.tx.RunInTx(ctx, func(ctx context.Context) error {
		published, publishErr = 0, nil
		pending, err := e.outbox.Pending(ctx, prisonerNumber, limit)
		if err != nil {
			return fmt.Errorf("read pending events: %w", err)
		}
		for _, entry := range pending {
			if err := e.publish(ctx, entry.Event); err != nil {
				publishErr = err
				return nil
			}
			if err := e.outbox.MarkPublished(ctx, entry.ID, e.now()); err != nil {
				return err
			}
			published++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return published, publishErr
}

func (e *Engine) publish(ctx context.Context, event models.DomainEvent) error {
	if err := e.events.Publish(ctx, event); err != nil {
		return fmt.Errorf("publish %s for %s: %w", event.EventType, event.PrisonerNumber, err)
	}
	e.metrics.IncrementEvent(event.EventType)
	return nil
}

func entityContent(entity string, p *models.Prisoner) (models.Category, any, error) {
	switch entity {
	case models.EntityIncentive:
		return models.CategoryIncentiveLevel, p.CurrentIncentive, nil
	case models.EntityAlerts:
		return models.CategoryAlerts, p.Alerts, nil
	default:
		return "", nil, fmt.Errorf("unknown hash entity %q", entity)
	}
}
