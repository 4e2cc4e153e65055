package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/suite"

	"prisonersearch/internal/index/models"
	"prisonersearch/internal/index/service"
	"prisonersearch/internal/index/store/status"
	"prisonersearch/internal/platform/middleware"
	"prisonersearch/internal/prisoner/adapters/search"
	"prisonersearch/internal/prisoner/enrichment"
	prisonermodels "prisonersearch/internal/prisoner/models"
	"prisonersearch/internal/prisoner/reconcile"
	"prisonersearch/internal/queue"
	"prisonersearch/pkg/platform/sentinel"
)

const signingKey = "handler-test-key"

type noSource struct{}

func (noSource) Count(context.Context) (int, error) {
	return 0, nil
}

func (noSource) PrisonerNumbers(context.Context, int, int) ([]string, error) {
	return nil, nil
}

func (noSource) ActiveIDRanges(context.Context, int) ([]models.IDRangePage, error) {
	return nil, nil
}

func (noSource) ActivePrisonerNumbers(context.Context, int64, int64) ([]string, error) {
	return nil, nil
}

type noSync struct{}

func (noSync) Synchronise(context.Context, string, []models.Slot) (*prisonermodels.Prisoner, error) {
	return nil, nil
}

func (noSync) Refresh(context.Context, string) error                        { return nil }
func (noSync) RemoveFromSlots(context.Context, string, []models.Slot) error { return nil }

type stubIndexer struct {
	doc *prisonermodels.Prisoner
	err error
}

func (s stubIndexer) IndexPrisoner(context.Context, string) (*prisonermodels.Prisoner, error) {
	return s.doc, s.err
}

type stubReconciler struct{ report reconcile.Report }

func (s stubReconciler) CompareIndexToSource(context.Context) (reconcile.Report, error) {
	return s.report, nil
}

type stubHistory struct{}

func (stubHistory) History(context.Context, string) ([]prisonermodels.DifferenceRecord, error) {
	return nil, nil
}

type HandlerSuite struct {
	suite.Suite
	queue   *queue.InMemory
	docs    *search.InMemory
	indexer *stubIndexer
	healthy bool
	router  http.Handler
	token   string
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.queue = queue.NewInMemory(queue.Options{})
	s.docs = search.NewInMemory()
	s.indexer = &stubIndexer{}
	s.healthy = true

	lifecycle := service.NewLifecycle(status.NewInMemory(), service.WithLifecycleLogger(logger))
	_, err := lifecycle.Bootstrap(ctx)
	s.Require().NoError(err)
	builder := service.NewBuildService(lifecycle, s.queue, noSource{}, noSync{}, s.docs, service.WithLogger(logger))
	refresher := service.NewRefreshService(lifecycle, s.queue, noSource{}, noSync{}, service.WithLogger(logger))

	h := New(Services{
		Builder:     builder,
		Refresher:   refresher,
		Status:      lifecycle,
		Indexer:     s.indexer,
		Reconciler:  stubReconciler{report: reconcile.Report{Slot: models.SlotA, OnlyInIndex: []string{"A1"}, OnlyInSource: []string{}}},
		DeadLetters: s.queue,
		History:     stubHistory{},
	}, map[string]HealthCheck{
		"queue": func(context.Context) error {
			if s.healthy {
				return nil
			}
			return errors.New("connection refused")
		},
	}, logger)

	r := chi.NewRouter()
	h.RegisterPublic(r)
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireRole(middleware.NewTokenValidator(signingKey, ""), middleware.RoleIndexAdmin, logger))
		h.Register(r)
	})
	s.router = r

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, middleware.Claims{
		Authorities: []string{middleware.RoleIndexAdmin},
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "admin",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte(signingKey))
	s.Require().NoError(err)
	s.token = token
}

func (s *HandlerSuite) do(method, path string, authorised bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if authorised {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *HandlerSuite) decode(rec *httptest.ResponseRecorder, v any) {
	s.Require().NoError(json.NewDecoder(rec.Body).Decode(v))
}

func (s *HandlerSuite) TestAdminRoutesRequireToken() {
	rec := s.do(http.MethodPut, "/maintain-index/build", false)
	s.Equal(http.StatusUnauthorized, rec.Code)
	s.Empty(s.queue.Pending(), "nothing was started")
}

func (s *HandlerSuite) TestBuildLifecycleOverHTTP() {
	rec := s.do(http.MethodPut, "/maintain-index/build", true)
	s.Require().Equal(http.StatusAccepted, rec.Code)
	var started IndexStatusResponse
	s.decode(rec, &started)
	s.Equal(models.StateBuilding, started.OtherState)
	s.Equal(models.SlotB, started.OtherSlot)

	rec = s.do(http.MethodPut, "/maintain-index/build", true)
	s.Require().Equal(http.StatusConflict, rec.Code)
	var conflict ConflictResponse
	s.decode(rec, &conflict)
	s.Equal("conflict", conflict.Error)
	s.Equal(models.BuildAlreadyInProgress, conflict.Reason)
	s.Equal(models.StateBuilding, conflict.Status.OtherState)

	rec = s.do(http.MethodPut, "/maintain-index/mark-complete", true)
	s.Require().Equal(http.StatusConflict, rec.Code)
	s.decode(rec, &conflict)
	s.Equal(models.ActiveMessagesExist, conflict.Reason)
	s.Require().NotNil(conflict.Queue)
	s.Equal(int64(1), conflict.Queue.Visible)

	rec = s.do(http.MethodPut, "/maintain-index/cancel", true)
	s.Require().Equal(http.StatusOK, rec.Code)
	var cancelled IndexStatusResponse
	s.decode(rec, &cancelled)
	s.Equal(models.StateCancelled, cancelled.OtherState)
	s.Empty(s.queue.Pending(), "cancel purges the queue")
}

func (s *HandlerSuite) TestStatusIsPublic() {
	rec := s.do(http.MethodGet, "/status", false)
	s.Require().Equal(http.StatusOK, rec.Code)
	var body StatusResponse
	s.decode(rec, &body)
	s.Equal(models.SlotA, body.Index.CurrentSlot)
	s.Equal(models.StateAbsent, body.Index.CurrentState)
	s.Require().NotNil(body.Queue)
	s.False(body.Queue.Active)
}

func (s *HandlerSuite) TestRefreshRejectedBeforeFirstBuild() {
	rec := s.do(http.MethodPut, "/refresh-index", true)
	s.Require().Equal(http.StatusConflict, rec.Code)
	var conflict ConflictResponse
	s.decode(rec, &conflict)
	s.Equal(models.NoActiveSlots, conflict.Reason)
}

func (s *HandlerSuite) TestIndexPrisoner() {
	s.indexer.doc = &prisonermodels.Prisoner{PrisonerNumber: "A1234AA"}
	rec := s.do(http.MethodPut, "/maintain-index/index-prisoner/A1234AA", true)
	s.Require().Equal(http.StatusOK, rec.Code)
	var body IndexPrisonerResponse
	s.decode(rec, &body)
	s.Equal("A1234AA", body.Prisoner.PrisonerNumber)
	s.Empty(body.EnrichmentFailures)
}

func (s *HandlerSuite) TestIndexPrisonerWithStaleEnrichments() {
	s.indexer.doc = &prisonermodels.Prisoner{PrisonerNumber: "A1234AA"}
	s.indexer.err = &enrichment.Error{PrisonerNumber: "A1234AA", Failures: map[string]error{"alerts": errors.New("timeout")}}

	rec := s.do(http.MethodPut, "/maintain-index/index-prisoner/A1234AA", true)
	s.Require().Equal(http.StatusOK, rec.Code)
	var body IndexPrisonerResponse
	s.decode(rec, &body)
	s.Equal([]string{"alerts"}, body.EnrichmentFailures)
}

func (s *HandlerSuite) TestIndexPrisonerNotFound() {
	s.indexer.err = sentinel.ErrNotFound
	rec := s.do(http.MethodPut, "/maintain-index/index-prisoner/Z9999ZZ", true)
	s.Equal(http.StatusNotFound, rec.Code)
}

func (s *HandlerSuite) TestIndexPrisonerFailureHidesDetail() {
	s.indexer.err = errors.New("dial tcp 10.0.0.1:443: connection refused")
	rec := s.do(http.MethodPut, "/maintain-index/index-prisoner/A1234AA", true)
	s.Require().Equal(http.StatusInternalServerError, rec.Code)
	s.NotContains(rec.Body.String(), "10.0.0.1")
}

func (s *HandlerSuite) TestCompare() {
	rec := s.do(http.MethodGet, "/compare-index/ids", true)
	s.Require().Equal(http.StatusOK, rec.Code)
	var report reconcile.Report
	s.decode(rec, &report)
	s.Equal([]string{"A1"}, report.OnlyInIndex)
}

func (s *HandlerSuite) TestDeadLetterAdmin() {
	rec := s.do(http.MethodPut, "/queue-admin/retry-dlq", true)
	s.Require().Equal(http.StatusOK, rec.Code)
	var body RetryDLQResponse
	s.decode(rec, &body)
	s.Zero(body.Retried)

	rec = s.do(http.MethodPut, "/queue-admin/purge-dlq", true)
	s.Equal(http.StatusNoContent, rec.Code)
}

func (s *HandlerSuite) TestDifferencesDefaultsToEmptyList() {
	rec := s.do(http.MethodGet, "/prisoner-differences/A1234AA", true)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.JSONEq(`[]`, rec.Body.String())
}

func (s *HandlerSuite) TestHealth() {
	rec := s.do(http.MethodGet, "/health", false)
	s.Equal(http.StatusOK, rec.Code)
	s.JSONEq(`{"queue":"UP"}`, rec.Body.String())

	s.healthy = false
	rec = s.do(http.MethodGet, "/health", false)
	s.Equal(http.StatusServiceUnavailable, rec.Code)
	s.JSONEq(`{"queue":"DOWN"}`, rec.Body.String())
}
