package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the index lifecycle and pipelines.
type Metrics struct {
	// Lifecycle transitions by name and outcome (applied, noop)
	Transitions *prometheus.CounterVec

	// Operations rejected by the lifecycle, by reason
	Conflicts *prometheus.CounterVec

	// Fan-out messages sent by message type
	MessagesSent *prometheus.CounterVec

	// Pages produced by a count/range fan-out, by pipeline
	PagesEnqueued *prometheus.CounterVec

	// Build and refresh messages skipped by the stale-slot guard
	StaleMessages prometheus.Counter
}

// New creates a Metrics instance with all index metrics registered.
func New() *Metrics {
	return &Metrics{
		Transitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "prisoner_index_lifecycle_transitions_total",
			Help: "Lifecycle transitions by name and outcome",
		}, []string{"transition", "outcome"}),

		Conflicts: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "prisoner_index_lifecycle_conflicts_total",
			Help: "Lifecycle operations rejected by reason",
		}, []string{"reason"}),

		MessagesSent: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "prisoner_index_messages_sent_total",
			Help: "Index queue messages sent by type",
		}, []string{"type"}),

		PagesEnqueued: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "prisoner_index_pages_enqueued_total",
			Help: "Pages produced by fan-out, by pipeline",
		}, []string{"pipeline"}), // pipeline: "build", "refresh", "refresh_active"

		StaleMessages: promauto.NewCounter(prometheus.CounterOpts{
			Name: "prisoner_index_stale_messages_total",
			Help: "Build messages dropped because the targeted slot is no longer building",
		}),
	}
}

func (m *Metrics) IncrementTransition(transition, outcome string) {
	if m != nil {
		m.Transitions.WithLabelValues(transition, outcome).Inc()
	}
}

func (m *Metrics) IncrementConflict(reason string) {
	if m != nil {
		m.Conflicts.WithLabelValues(reason).Inc()
	}
}

func (m *Metrics) IncrementSent(msgType string) {
	if m != nil {
		m.MessagesSent.WithLabelValues(msgType).Inc()
	}
}

func (m *Metrics) AddPages(pipeline string, n int) {
	if m != nil {
		m.PagesEnqueued.WithLabelValues(pipeline).Add(float64(n))
	}
}

func (m *Metrics) IncrementStale() {
	if m != nil {
		m.StaleMessages.Inc()
	}
}
