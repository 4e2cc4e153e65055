package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	indexmodels "prisonersearch/internal/index/models"
	"prisonersearch/internal/prisoner/enrichment"
	"prisonersearch/internal/prisoner/metrics"
	"prisonersearch/internal/prisoner/models"
	"prisonersearch/internal/prisoner/ports"
	"prisonersearch/pkg/platform/sentinel"
)

// ErrPrisonerNotFound means the source of record has no such prisoner.
var ErrPrisonerNotFound = models.ErrPrisonerNotFound

// Enrichment source names used in errors and metrics.
const (
	SourceIncentive         = "incentive"
	SourceRestrictedPatient = "restricted_patient"
	SourceAlerts            = "alerts"
	SourceComplexity        = "complexity_of_need"
)

// StatusReader exposes the lifecycle row so writes can target the active
// slots.
type StatusReader interface {
	Status(ctx context.Context) (indexmodels.IndexStatus, error)
}

// ChangeReporter records document changes as events before the documents
// are written, and publishes what it recorded afterwards.
type ChangeReporter interface {
	HandleDifferences(ctx context.Context, prisonerNumber string, previous, current *models.Prisoner) error
	HandleEntityDifferences(ctx context.Context, prisonerNumber, entity string, previous, current *models.Prisoner) error
	ReportRemoval(ctx context.Context, prisonerNumber string) error
	Flush(ctx context.Context, prisonerNumber string) error
}

// Enrichers groups the enrichment clients. A nil client leaves the
// document's existing value in place.
type Enrichers struct {
	Incentives         ports.IncentiveClient
	RestrictedPatients ports.RestrictedPatientClient
	Alerts             ports.AlertClient
	Complexity         ports.ComplexityClient
}

// Synchroniser fetches, enriches, writes and diffs single prisoner records.
type Synchroniser struct {
	source    ports.PrisonSource
	enrichers Enrichers
	documents ports.DocumentStore
	changes   ChangeReporter
	status    StatusReader
	logger    *slog.Logger
	metrics   *metrics.Metrics
	tracer    trace.Tracer
}

type Option func(*Synchroniser)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Synchroniser) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Synchroniser) {
		s.metrics = m
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(s *Synchroniser) {
		s.tracer = t
	}
}

func NewSynchroniser(source ports.PrisonSource, enrichers Enrichers, documents ports.DocumentStore, changes ChangeReporter, status StatusReader, opts ...Option) *Synchroniser {
	s := &Synchroniser{
		source:    source,
		enrichers: enrichers,
		documents: documents,
		changes:   changes,
		status:    status,
		logger:    slog.Default(),
		tracer:    otel.Tracer("prisonersearch/internal/prisoner/service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// fetched holds every enrichment outcome of one synchronisation.
type fetched struct {
	incentive  enrichment.Result[*models.CurrentIncentive]
	restricted enrichment.Result[*models.RestrictedPatient]
	alerts     enrichment.Result[[]models.PrisonerAlert]
	complexity enrichment.Result[string]
}

// Synchronise writes the current state of one prisoner into slots and
// reports the change. The change is recorded before the write, so a retry
// after any failure still publishes it. Enrichment failures do not prevent
// the write; they are returned as an *enrichment.Error afterwards. A change
// reporting error takes precedence.
func (s *Synchroniser) Synchronise(ctx context.Context, prisonerNumber string, slots []indexmodels.Slot) (*models.Prisoner, error) {
	ctx, span := s.tracer.Start(ctx, "prisoner.synchronise", trace.WithAttributes(
		attribute.String("prisoner.number", prisonerNumber),
		attribute.Int("slots", len(slots)),
	))
	defer span.End()
	start := time.Now()

	doc, err := s.synchronise(ctx, prisonerNumber, slots)
	outcome := "ok"
	switch {
	case err == nil:
	case errors.Is(err, ErrPrisonerNotFound):
		outcome = "not_found"
	case enrichment.IsEnrichmentError(err):
		outcome = "degraded"
	default:
		outcome = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, "synchronise failed")
	}
	s.metrics.ObserveSync(outcome, time.Since(start))
	return doc, err
}

func (s *Synchroniser) synchronise(ctx context.Context, prisonerNumber string, slots []indexmodels.Slot) (*models.Prisoner, error) {
	if len(slots) == 0 {
		return nil, fmt.Errorf("synchronise %s: no target slots", prisonerNumber)
	}
	record, err := s.source.Get(ctx, prisonerNumber)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", prisonerNumber, ErrPrisonerNotFound)
		}
		return nil, fmt.Errorf("fetch prisoner %s: %w", prisonerNumber, err)
	}

	results := s.fetchEnrichments(ctx, record)

	previous, err := s.documents.Get(ctx, slots[0], prisonerNumber)
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return nil, fmt.Errorf("read existing document %s: %w", prisonerNumber, err)
	}

	doc := merge(record, previous, results)
	if err := s.changes.HandleDifferences(ctx, prisonerNumber, previous, doc); err != nil {
		return nil, err
	}
	if err := s.write(ctx, slots, doc); err != nil {
		return nil, err
	}
	if err := s.changes.Flush(ctx, prisonerNumber); err != nil {
		return doc, err
	}

	var failures enrichment.Collector
	enrichment.Add(&failures, SourceIncentive, results.incentive)
	enrichment.Add(&failures, SourceRestrictedPatient, results.restricted)
	enrichment.Add(&failures, SourceAlerts, results.alerts)
	enrichment.Add(&failures, SourceComplexity, results.complexity)
	if err := failures.Err(prisonerNumber); err != nil {
		var ee *enrichment.Error
		if errors.As(err, &ee) {
			for _, source := range ee.Sources() {
				s.metrics.IncrementEnrichmentFailure(source)
			}
		}
		s.logger.WarnContext(ctx, "prisoner written with stale enrichments",
			"prisoner_number", prisonerNumber,
			"error", err,
		)
		return doc, err
	}
	return doc, nil
}

// fetchEnrichments runs every applicable enrichment concurrently. Each
// outcome is captured so that one failing source never cancels the others.
func (s *Synchroniser) fetchEnrichments(ctx context.Context, record *models.Prisoner) fetched {
	out := fetched{
		incentive:  enrichment.Missing[*models.CurrentIncentive](),
		restricted: enrichment.Missing[*models.RestrictedPatient](),
		alerts:     enrichment.Missing[[]models.PrisonerAlert](),
		complexity: enrichment.Missing[string](),
	}
	var g errgroup.Group

	if c := s.enrichers.Incentives; c != nil {
		if record.BookingID == "" {
			out.incentive = enrichment.Skip[*models.CurrentIncentive]()
		} else {
			g.Go(func() error {
				out.incentive = enrichment.Fetch(ctx, func(ctx context.Context) (*models.CurrentIncentive, error) {
					return c.CurrentIncentive(ctx, record.BookingID)
				})
				return nil
			})
		}
	}
	if c := s.enrichers.RestrictedPatients; c != nil {
		if !record.IsOutside() {
			out.restricted = enrichment.Skip[*models.RestrictedPatient]()
		} else {
			g.Go(func() error {
				out.restricted = enrichment.Fetch(ctx, func(ctx context.Context) (*models.RestrictedPatient, error) {
					return c.RestrictedPatient(ctx, record.PrisonerNumber)
				})
				return nil
			})
		}
	}
	if c := s.enrichers.Alerts; c != nil {
		g.Go(func() error {
			out.alerts = enrichment.Fetch(ctx, func(ctx context.Context) ([]models.PrisonerAlert, error) {
				return c.Alerts(ctx, record.PrisonerNumber)
			})
			return nil
		})
	}
	if c := s.enrichers.Complexity; c != nil {
		g.Go(func() error {
			out.complexity = enrichment.Fetch(ctx, func(ctx context.Context) (string, error) {
				return c.ComplexityOfNeed(ctx, record.PrisonerNumber)
			})
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// merge builds the document from the source record and the enrichment
// outcomes. Enrichments that failed keep the previous document's values.
func merge(record, previous *models.Prisoner, r fetched) *models.Prisoner {
	if previous == nil {
		previous = &models.Prisoner{}
	}
	doc := *record
	doc.CurrentIncentive = r.incentive.Resolve(previous.CurrentIncentive)
	doc.Alerts = r.alerts.Resolve(previous.Alerts)
	doc.ComplexityOfNeedLevel = r.complexity.Resolve(previous.ComplexityOfNeedLevel)

	previousRP := restrictedPatientOf(previous)
	rp := r.restricted.Resolve(previousRP)
	doc.RestrictedPatient = rp != nil
	doc.SupportingPrisonID, doc.DischargedHospitalID, doc.DischargedHospitalDescription, doc.DischargeDate = "", "", "", ""
	if rp != nil {
		doc.SupportingPrisonID = rp.SupportingPrisonID
		doc.DischargedHospitalID = rp.DischargedHospitalID
		doc.DischargedHospitalDescription = rp.DischargedHospitalDescription
		doc.DischargeDate = rp.DischargeDate
	}
	return &doc
}

func restrictedPatientOf(p *models.Prisoner) *models.RestrictedPatient {
	if !p.RestrictedPatient {
		return nil
	}
	return &models.RestrictedPatient{
		SupportingPrisonID:            p.SupportingPrisonID,
		DischargedHospitalID:          p.DischargedHospitalID,
		DischargedHospitalDescription: p.DischargedHospitalDescription,
		DischargeDate:                 p.DischargeDate,
	}
}

// IndexPrisoner synchronises one prisoner into the active slots. A prisoner
// the source no longer has is removed from the index and the not-found
// error is returned.
func (s *Synchroniser) IndexPrisoner(ctx context.Context, prisonerNumber string) (*models.Prisoner, error) {
	slots, err := s.activeSlots(ctx)
	if err != nil {
		return nil, err
	}
	doc, err := s.Synchronise(ctx, prisonerNumber, slots)
	if errors.Is(err, ErrPrisonerNotFound) {
		if removeErr := s.removeFromLive(ctx, prisonerNumber, slots); removeErr != nil {
			return nil, removeErr
		}
		return nil, err
	}
	return doc, err
}

// Refresh synchronises one prisoner into the active slots on a best effort
// basis: a prisoner missing from the source is skipped, never deleted.
func (s *Synchroniser) Refresh(ctx context.Context, prisonerNumber string) error {
	slots, err := s.activeSlots(ctx)
	if err != nil {
		if indexmodels.IsConflict(err, indexmodels.NoActiveSlots) {
			s.logger.InfoContext(ctx, "no active slots, refresh skipped", "prisoner_number", prisonerNumber)
			return nil
		}
		return err
	}
	_, err = s.Synchronise(ctx, prisonerNumber, slots)
	if errors.Is(err, ErrPrisonerNotFound) {
		s.logger.DebugContext(ctx, "prisoner not in source, refresh skipped", "prisoner_number", prisonerNumber)
		return nil
	}
	return err
}

// RemoveFromSlots deletes a prisoner from slots that are not live. No event
// is raised since nothing serving traffic changed.
func (s *Synchroniser) RemoveFromSlots(ctx context.Context, prisonerNumber string, slots []indexmodels.Slot) error {
	for _, slot := range slots {
		if _, err := s.documents.Delete(ctx, slot, prisonerNumber); err != nil {
			return fmt.Errorf("delete %s from slot %s: %w", prisonerNumber, slot, err)
		}
	}
	return nil
}

// SyncIncentive re-fetches only the incentive sub-object.
func (s *Synchroniser) SyncIncentive(ctx context.Context, prisonerNumber string) error {
	if s.enrichers.Incentives == nil {
		return s.Refresh(ctx, prisonerNumber)
	}
	return s.syncEntity(ctx, prisonerNumber, models.EntityIncentive, func(ctx context.Context, doc *models.Prisoner) error {
		if doc.BookingID == "" {
			doc.CurrentIncentive = nil
			return nil
		}
		incentive, err := s.enrichers.Incentives.CurrentIncentive(ctx, doc.BookingID)
		if err != nil {
			s.metrics.IncrementEnrichmentFailure(SourceIncentive)
			return fmt.Errorf("fetch incentive for %s: %w", prisonerNumber, err)
		}
		doc.CurrentIncentive = incentive
		return nil
	})
}

// SyncAlerts re-fetches only the alerts.
func (s *Synchroniser) SyncAlerts(ctx context.Context, prisonerNumber string) error {
	if s.enrichers.Alerts == nil {
		return s.Refresh(ctx, prisonerNumber)
	}
	return s.syncEntity(ctx, prisonerNumber, models.EntityAlerts, func(ctx context.Context, doc *models.Prisoner) error {
		alerts, err := s.enrichers.Alerts.Alerts(ctx, prisonerNumber)
		if err != nil {
			s.metrics.IncrementEnrichmentFailure(SourceAlerts)
			return fmt.Errorf("fetch alerts for %s: %w", prisonerNumber, err)
		}
		doc.Alerts = alerts
		return nil
	})
}

// syncEntity applies update to the indexed document and writes it back to
// the active slots. A prisoner not yet indexed gets a full refresh instead.
func (s *Synchroniser) syncEntity(ctx context.Context, prisonerNumber, entity string, update func(context.Context, *models.Prisoner) error) error {
	ctx, span := s.tracer.Start(ctx, "prisoner.sync_entity", trace.WithAttributes(
		attribute.String("prisoner.number", prisonerNumber),
		attribute.String("entity", entity),
	))
	defer span.End()

	slots, err := s.activeSlots(ctx)
	if err != nil {
		if indexmodels.IsConflict(err, indexmodels.NoActiveSlots) {
			return nil
		}
		return err
	}
	previous, err := s.documents.Get(ctx, slots[0], prisonerNumber)
	if errors.Is(err, sentinel.ErrNotFound) {
		return s.Refresh(ctx, prisonerNumber)
	}
	if err != nil {
		return fmt.Errorf("read existing document %s: %w", prisonerNumber, err)
	}

	doc := *previous
	if err := update(ctx, &doc); err != nil {
		span.RecordError(err)
		return err
	}
	if err := s.changes.HandleEntityDifferences(ctx, prisonerNumber, entity, previous, &doc); err != nil {
		return err
	}
	if err := s.write(ctx, slots, &doc); err != nil {
		return err
	}
	return s.changes.Flush(ctx, prisonerNumber)
}

func (s *Synchroniser) write(ctx context.Context, slots []indexmodels.Slot, doc *models.Prisoner) error {
	for _, slot := range slots {
		if err := s.documents.Put(ctx, slot, doc); err != nil {
			return fmt.Errorf("write %s to slot %s: %w", doc.PrisonerNumber, slot, err)
		}
	}
	return nil
}

func (s *Synchroniser) activeSlots(ctx context.Context) ([]indexmodels.Slot, error) {
	status, err := s.status.Status(ctx)
	if err != nil {
		return nil, err
	}
	slots := status.ActiveSlots()
	if len(slots) == 0 {
		return nil, indexmodels.NewConflict(indexmodels.NoActiveSlots, status)
	}
	return slots, nil
}

// removeFromLive deletes the prisoner from the active slots. The removal is
// recorded first when any slot still holds the document.
func (s *Synchroniser) removeFromLive(ctx context.Context, prisonerNumber string, slots []indexmodels.Slot) error {
	indexed, err := s.indexedIn(ctx, prisonerNumber, slots)
	if err != nil || !indexed {
		return err
	}
	if err := s.changes.ReportRemoval(ctx, prisonerNumber); err != nil {
		return err
	}
	for _, slot := range slots {
		if _, err := s.documents.Delete(ctx, slot, prisonerNumber); err != nil {
			return fmt.Errorf("delete %s from slot %s: %w", prisonerNumber, slot, err)
		}
	}
	s.logger.InfoContext(ctx, "prisoner removed from index", "prisoner_number", prisonerNumber)
	return s.changes.Flush(ctx, prisonerNumber)
}

func (s *Synchroniser) indexedIn(ctx context.Context, prisonerNumber string, slots []indexmodels.Slot) (bool, error) {
	for _, slot := range slots {
		_, err := s.documents.Get(ctx, slot, prisonerNumber)
		if err == nil {
			return true, nil
		}
		if !errors.Is(err, sentinel.ErrNotFound) {
			return false, fmt.Errorf("read existing document %s: %w", prisonerNumber, err)
		}
	}
	return false, nil
}
