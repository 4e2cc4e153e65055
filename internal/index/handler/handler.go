package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"prisonersearch/internal/index/models"
	"prisonersearch/internal/prisoner/enrichment"
	prisonermodels "prisonersearch/internal/prisoner/models"
	"prisonersearch/internal/prisoner/reconcile"
	dErrors "prisonersearch/pkg/domain-errors"
	"prisonersearch/pkg/platform/httputil"
	"prisonersearch/pkg/platform/sentinel"
)

// Builder drives full rebuilds.
type Builder interface {
	PrepareForRebuild(ctx context.Context) (models.IndexStatus, error)
	MarkIndexingComplete(ctx context.Context) (models.IndexStatus, error)
	CancelIndexing(ctx context.Context) (models.IndexStatus, error)
	QueueStatus(ctx context.Context) (models.QueueStatus, error)
}

type Refresher interface {
	StartFullRefresh(ctx context.Context) error
	StartActiveRefresh(ctx context.Context) error
}

type StatusReader interface {
	Status(ctx context.Context) (models.IndexStatus, error)
}

type PrisonerIndexer interface {
	IndexPrisoner(ctx context.Context, prisonerNumber string) (*prisonermodels.Prisoner, error)
}

type Reconciler interface {
	CompareIndexToSource(ctx context.Context) (reconcile.Report, error)
}

type DeadLetters interface {
	RetryDeadLetters(ctx context.Context) (int, error)
	PurgeDeadLetters(ctx context.Context) error
}

type DifferenceHistory interface {
	History(ctx context.Context, prisonerNumber string) ([]prisonermodels.DifferenceRecord, error)
}

// HealthCheck reports whether one dependency is reachable.
type HealthCheck func(ctx context.Context) error

// Services groups the operations the admin surface exposes.
type Services struct {
	Builder     Builder
	Refresher   Refresher
	Status      StatusReader
	Indexer     PrisonerIndexer
	Reconciler  Reconciler
	DeadLetters DeadLetters
	History     DifferenceHistory
}

type Handler struct {
	svc    Services
	checks map[string]HealthCheck
	logger *slog.Logger
}

func New(svc Services, checks map[string]HealthCheck, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, checks: checks, logger: logger}
}

// Register mounts the administration endpoints. Callers wrap r with the role
// middleware.
func (h *Handler) Register(r chi.Router) {
	r.Put("/maintain-index/build", h.HandleBuild)
	r.Put("/maintain-index/mark-complete", h.HandleMarkComplete)
	r.Put("/maintain-index/cancel", h.HandleCancel)
	r.Put("/maintain-index/index-prisoner/{prisonerNumber}", h.HandleIndexPrisoner)
	r.Put("/refresh-index", h.HandleRefresh)
	r.Put("/refresh-index/active", h.HandleActiveRefresh)
	r.Get("/compare-index/ids", h.HandleCompare)
	r.Put("/queue-admin/retry-dlq", h.HandleRetryDLQ)
	r.Put("/queue-admin/purge-dlq", h.HandlePurgeDLQ)
	r.Get("/prisoner-differences/{prisonerNumber}", h.HandleDifferences)
}

// RegisterPublic mounts the unauthenticated status and health endpoints.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Get("/status", h.HandleStatus)
	r.Get("/health", h.HandleHealth)
}

// HandleBuild handles PUT /maintain-index/build.
func (h *Handler) HandleBuild(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "build requested", http.StatusAccepted, h.svc.Builder.PrepareForRebuild)
}

// HandleMarkComplete handles PUT /maintain-index/mark-complete.
func (h *Handler) HandleMarkComplete(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "build marked complete", http.StatusOK, h.svc.Builder.MarkIndexingComplete)
}

// HandleCancel handles PUT /maintain-index/cancel.
func (h *Handler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "build cancelled", http.StatusOK, h.svc.Builder.CancelIndexing)
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, msg string, status int, op func(context.Context) (models.IndexStatus, error)) {
	ctx := r.Context()
	result, err := op(ctx)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.logger.InfoContext(ctx, msg,
		"request_id", middleware.GetReqID(ctx),
		"status", result.String(),
	)
	httputil.WriteJSON(w, status, FromStatus(result))
}

// HandleIndexPrisoner handles PUT /maintain-index/index-prisoner/{prisonerNumber}.
func (h *Handler) HandleIndexPrisoner(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	prisonerNumber := chi.URLParam(r, "prisonerNumber")
	doc, err := h.svc.Indexer.IndexPrisoner(ctx, prisonerNumber)

	var ee *enrichment.Error
	if errors.As(err, &ee) && doc != nil {
		h.logger.WarnContext(ctx, "prisoner indexed with stale enrichments",
			"request_id", middleware.GetReqID(ctx),
			"prisoner_number", prisonerNumber,
			"sources", ee.Sources(),
		)
		httputil.WriteJSON(w, http.StatusOK, IndexPrisonerResponse{Prisoner: doc, EnrichmentFailures: ee.Sources()})
		return
	}
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, IndexPrisonerResponse{Prisoner: doc})
}

// HandleRefresh handles PUT /refresh-index.
func (h *Handler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Refresher.StartFullRefresh(r.Context()); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// HandleActiveRefresh handles PUT /refresh-index/active.
func (h *Handler) HandleActiveRefresh(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Refresher.StartActiveRefresh(r.Context()); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// HandleCompare handles GET /compare-index/ids.
func (h *Handler) HandleCompare(w http.ResponseWriter, r *http.Request) {
	report, err := h.svc.Reconciler.CompareIndexToSource(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, report)
}

// HandleRetryDLQ handles PUT /queue-admin/retry-dlq.
func (h *Handler) HandleRetryDLQ(w http.ResponseWriter, r *http.Request) {
	if h.svc.DeadLetters == nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnavailable, "queue has no dead letter support"))
		return
	}
	n, err := h.svc.DeadLetters.RetryDeadLetters(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, RetryDLQResponse{Retried: n})
}

// HandlePurgeDLQ handles PUT /queue-admin/purge-dlq.
func (h *Handler) HandlePurgeDLQ(w http.ResponseWriter, r *http.Request) {
	if h.svc.DeadLetters == nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnavailable, "queue has no dead letter support"))
		return
	}
	if err := h.svc.DeadLetters.PurgeDeadLetters(r.Context()); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleDifferences handles GET /prisoner-differences/{prisonerNumber}.
func (h *Handler) HandleDifferences(w http.ResponseWriter, r *http.Request) {
	records, err := h.svc.History.History(r.Context(), chi.URLParam(r, "prisonerNumber"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if records == nil {
		records = []prisonermodels.DifferenceRecord{}
	}
	httputil.WriteJSON(w, http.StatusOK, records)
}

// HandleStatus handles GET /status.
func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	status, err := h.svc.Status.Status(ctx)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	resp := StatusResponse{Index: FromStatus(status)}
	if q, err := h.svc.Builder.QueueStatus(ctx); err != nil {
		h.logger.WarnContext(ctx, "queue status unavailable", "error", err)
	} else {
		qs := FromQueueStatus(q)
		resp.Queue = &qs
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

// HandleHealth handles GET /health.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	results := make(map[string]string, len(h.checks))
	healthy := true
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			healthy = false
			results[name] = "DOWN"
			h.logger.WarnContext(ctx, "health check failed", "component", name, "error", err)
			continue
		}
		results[name] = "UP"
	}
	status := http.StatusOK
	if !healthy {
		status = http.StatusServiceUnavailable
	}
	httputil.WriteJSON(w, status, results)
}

// writeError maps service errors onto the error body. Lifecycle conflicts
// carry the state that caused them.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	var lc *models.LifecycleConflict
	if errors.As(err, &lc) {
		h.logger.InfoContext(ctx, "request conflicts with index lifecycle",
			"request_id", middleware.GetReqID(ctx),
			"reason", lc.Reason,
		)
		resp := ConflictResponse{
			Error:            string(dErrors.CodeConflict),
			ErrorDescription: lc.Error(),
			Reason:           lc.Reason,
			Status:           FromStatus(lc.Status),
		}
		if lc.Queue != nil {
			qs := FromQueueStatus(*lc.Queue)
			resp.Queue = &qs
		}
		httputil.WriteJSON(w, http.StatusConflict, resp)
		return
	}

	if errors.Is(err, sentinel.ErrNotFound) {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeNotFound, "not found"))
		return
	}
	h.logger.ErrorContext(ctx, "admin request failed",
		"request_id", middleware.GetReqID(ctx),
		"path", r.URL.Path,
		"error", err,
	)
	httputil.WriteError(w, err)
}
