package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for prisoner synchronisation.
type Metrics struct {
	// Synchronisation latency by outcome
	SyncLatency *prometheus.HistogramVec

	// Enrichment fetch failures by source
	EnrichmentFailures *prometheus.CounterVec

	// Synchronisations whose content hash was unchanged
	NoChange prometheus.Counter

	// Categories reported as changed
	CategoriesChanged *prometheus.CounterVec

	// Domain events published by type
	EventsPublished *prometheus.CounterVec

	// Audit rows removed by the retention sweep
	DifferencesPurged prometheus.Counter

	// Last reconciliation drift by direction
	ReconcileDrift *prometheus.GaugeVec
}

// New creates a Metrics instance with all prisoner metrics registered.
func New() *Metrics {
	return &Metrics{
		SyncLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "prisoner_sync_duration_seconds",
			Help:    "Duration of a single prisoner synchronisation by outcome",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"outcome"}), // outcome: "ok", "not_found", "degraded", "error"

		EnrichmentFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "prisoner_enrichment_failures_total",
			Help: "Enrichment fetch failures by source",
		}, []string{"source"}),

		NoChange: promauto.NewCounter(prometheus.CounterOpts{
			Name: "prisoner_sync_no_change_total",
			Help: "Synchronisations skipped because content was unchanged",
		}),

		CategoriesChanged: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "prisoner_categories_changed_total",
			Help: "Changed difference categories",
		}, []string{"category"}),

		EventsPublished: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "prisoner_domain_events_total",
			Help: "Domain events published by type",
		}, []string{"type"}),

		DifferencesPurged: promauto.NewCounter(prometheus.CounterOpts{
			Name: "prisoner_differences_purged_total",
			Help: "Audit difference records removed by retention",
		}),

		ReconcileDrift: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "prisoner_reconcile_drift",
			Help: "Ids found on one side only at the last reconciliation",
		}, []string{"side"}), // side: "index", "source"
	}
}

func (m *Metrics) ObserveSync(outcome string, d time.Duration) {
	if m != nil {
		m.SyncLatency.WithLabelValues(outcome).Observe(d.Seconds())
	}
}

func (m *Metrics) IncrementEnrichmentFailure(source string) {
	if m != nil {
		m.EnrichmentFailures.WithLabelValues(source).Inc()
	}
}

func (m *Metrics) IncrementNoChange() {
	if m != nil {
		m.NoChange.Inc()
	}
}

func (m *Metrics) IncrementCategory(category string) {
	if m != nil {
		m.CategoriesChanged.WithLabelValues(category).Inc()
	}
}

func (m *Metrics) IncrementEvent(eventType string) {
	if m != nil {
		m.EventsPublished.WithLabelValues(eventType).Inc()
	}
}

func (m *Metrics) AddPurged(n int64) {
	if m != nil {
		m.DifferencesPurged.Add(float64(n))
	}
}

func (m *Metrics) SetDrift(onlyInIndex, onlyInSource int) {
	if m != nil {
		m.ReconcileDrift.WithLabelValues("index").Set(float64(onlyInIndex))
		m.ReconcileDrift.WithLabelValues("source").Set(float64(onlyInSource))
	}
}
