package clients

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	indexmodels "prisonersearch/internal/index/models"
	"prisonersearch/pkg/platform/circuit"
	"prisonersearch/pkg/platform/sentinel"
)

func serve(t *testing.T, routes map[string]func(w http.ResponseWriter, r *http.Request)) Config {
	t.Helper()
	mux := http.NewServeMux()
	for pattern, h := range routes {
		mux.HandleFunc(pattern, h)
	}
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return Config{BaseURL: srv.URL + "/", Timeout: time.Second, Token: "token-1"}
}

func respond(status int, body string) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}
}

func quiet() Option {
	return WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestPrisonAPIGet(t *testing.T) {
	cfg := serve(t, map[string]func(http.ResponseWriter, *http.Request){
		"GET /prisoner/A1234AA": func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer token-1", r.Header.Get("Authorization"))
			respond(http.StatusOK, `{"prisonerNumber":"A1234AA","bookingId":"1200","lastName":"SMITH"}`)(w, r)
		},
	})
	api := NewPrisonAPI(cfg, quiet())

	p, err := api.Get(context.Background(), "A1234AA")
	require.NoError(t, err)
	assert.Equal(t, "1200", p.BookingID)
	assert.Equal(t, "SMITH", p.LastName)

	_, err = api.Get(context.Background(), "Z9999ZZ")
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestPrisonAPIEnumeration(t *testing.T) {
	cfg := serve(t, map[string]func(http.ResponseWriter, *http.Request){
		"GET /prisoners/count": respond(http.StatusOK, `{"count":25}`),
		"GET /prisoners/ids": func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "20", r.URL.Query().Get("offset"))
			assert.Equal(t, "10", r.URL.Query().Get("limit"))
			respond(http.StatusOK, `{"prisonerNumbers":["A1","B2"]}`)(w, r)
		},
		"GET /prisoners/active/ranges": func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "500", r.URL.Query().Get("size"))
			respond(http.StatusOK, `[{"fromId":1,"toId":500},{"fromId":501,"toId":900}]`)(w, r)
		},
		"GET /prisoners/active/ids": func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "501", r.URL.Query().Get("fromId"))
			assert.Equal(t, "900", r.URL.Query().Get("toId"))
			respond(http.StatusOK, `{"prisonerNumbers":["C3"]}`)(w, r)
		},
	})
	api := NewPrisonAPI(cfg, quiet())
	ctx := context.Background()

	total, err := api.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 25, total)

	ids, err := api.PrisonerNumbers(ctx, 20, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"A1", "B2"}, ids)

	ranges, err := api.ActiveIDRanges(ctx, 500)
	require.NoError(t, err)
	assert.Equal(t, []indexmodels.IDRangePage{{FromID: 1, ToID: 500}, {FromID: 501, ToID: 900}}, ranges)

	ids, err = api.ActivePrisonerNumbers(ctx, 501, 900)
	require.NoError(t, err)
	assert.Equal(t, []string{"C3"}, ids)
}

func TestUpstreamFailuresAreCategorised(t *testing.T) {
	cfg := serve(t, map[string]func(http.ResponseWriter, *http.Request){
		"GET /prisoner/UNAUTH": respond(http.StatusForbidden, `{}`),
		"GET /prisoner/DOWN":   respond(http.StatusBadGateway, `{}`),
		"GET /prisoner/GARBLE": respond(http.StatusOK, `{"prisonerNumber":`),
	})
	api := NewPrisonAPI(cfg, quiet())
	ctx := context.Background()

	var ce *Error
	_, err := api.Get(ctx, "UNAUTH")
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, CategoryAuth, ce.Category)
	assert.False(t, IsRetryable(err))

	_, err = api.Get(ctx, "DOWN")
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, CategoryOutage, ce.Category)
	assert.Equal(t, http.StatusBadGateway, ce.Status)
	assert.True(t, IsRetryable(err))

	_, err = api.Get(ctx, "GARBLE")
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, CategoryBadData, ce.Category)
}

func TestBreakerShortCircuitsAfterRepeatedOutages(t *testing.T) {
	var calls atomic.Int32
	cfg := serve(t, map[string]func(http.ResponseWriter, *http.Request){
		"GET /prisoners/A1/alerts": func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			respond(http.StatusServiceUnavailable, `{}`)(w, r)
		},
	})
	breaker := circuit.New("alerts-api", circuit.WithFailureThreshold(2), circuit.WithCooldown(time.Hour))
	api := NewAlertsAPI(cfg, quiet(), WithBreaker(breaker))
	ctx := context.Background()

	for range 2 {
		_, err := api.Alerts(ctx, "A1")
		require.Error(t, err)
	}
	assert.True(t, breaker.IsOpen())

	_, err := api.Alerts(ctx, "A1")
	var ce *Error
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "circuit open", ce.Message)
	assert.Equal(t, int32(2), calls.Load())
}

func TestEnrichmentNotFoundIsEmpty(t *testing.T) {
	cfg := serve(t, nil)
	ctx := context.Background()

	incentive, err := NewIncentivesAPI(cfg, quiet()).CurrentIncentive(ctx, "1200")
	require.NoError(t, err)
	assert.Nil(t, incentive)

	rp, err := NewRestrictedPatientsAPI(cfg, quiet()).RestrictedPatient(ctx, "A1")
	require.NoError(t, err)
	assert.Nil(t, rp)

	alerts, err := NewAlertsAPI(cfg, quiet()).Alerts(ctx, "A1")
	require.NoError(t, err)
	assert.Empty(t, alerts)

	level, err := NewComplexityOfNeedAPI(cfg, quiet()).ComplexityOfNeed(ctx, "A1")
	require.NoError(t, err)
	assert.Empty(t, level)
}

func TestEnrichmentPayloads(t *testing.T) {
	cfg := serve(t, map[string]func(http.ResponseWriter, *http.Request){
		"GET /incentive-reviews/booking/1200/current": respond(http.StatusOK,
			`{"level":{"code":"ENH","description":"Enhanced"},"dateTime":"2026-01-10T10:00:00Z","nextReviewDate":"2027-01-10"}`),
		"GET /restricted-patient/prison-number/A1": respond(http.StatusOK,
			`{"supportingPrisonId":"MDI","dischargedHospitalId":"HAZLWD","dischargedHospitalDescription":"Hazelwood House","dischargeDate":"2026-02-01"}`),
		"GET /prisoners/A1/alerts": respond(http.StatusOK,
			`[{"alertType":"X","alertCode":"XA","active":true,"expired":false}]`),
		"GET /complexity-of-need/offender-no/A1": respond(http.StatusOK, `{"level":"high"}`),
	})
	ctx := context.Background()

	incentive, err := NewIncentivesAPI(cfg, quiet()).CurrentIncentive(ctx, "1200")
	require.NoError(t, err)
	assert.Equal(t, "ENH", incentive.Level.Code)
	assert.Equal(t, time.Date(2026, 1, 10, 10, 0, 0, 0, time.UTC), incentive.DateTime.UTC())

	rp, err := NewRestrictedPatientsAPI(cfg, quiet()).RestrictedPatient(ctx, "A1")
	require.NoError(t, err)
	assert.Equal(t, "HAZLWD", rp.DischargedHospitalID)

	alerts, err := NewAlertsAPI(cfg, quiet()).Alerts(ctx, "A1")
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.True(t, alerts[0].Active)

	level, err := NewComplexityOfNeedAPI(cfg, quiet()).ComplexityOfNeed(ctx, "A1")
	require.NoError(t, err)
	assert.Equal(t, "high", level)
}
