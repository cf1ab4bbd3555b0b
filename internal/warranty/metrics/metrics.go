package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the warranty module.
type Metrics struct {
	// Issuance outcomes: success, unresolved, rejected, unavailable, conflict, persistence_failed
	IssuanceOutcome *prometheus.CounterVec

	// Which recovery strategy produced the token id
	RecoveryStrategy *prometheus.CounterVec

	// Which source answered a validity check
	ValidationSource *prometheus.CounterVec

	// Which source answered a serial to token id lookup
	ResolutionSource *prometheus.CounterVec

	IssueLatency prometheus.Histogram
}

// New registers the warranty metrics with the default registry.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer registers the metrics with reg. Tests pass a fresh
// prometheus.NewRegistry to avoid duplicate registration.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		IssuanceOutcome: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "warranty_issuance_outcomes_total",
			Help: "Total issuance attempts by outcome",
		}, []string{"outcome"}),

		RecoveryStrategy: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "warranty_token_recovery_total",
			Help: "Token id recovery results by strategy",
		}, []string{"strategy"}),

		ValidationSource: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "warranty_validation_source_total",
			Help: "Validity answers by source",
		}, []string{"source"}),

		ResolutionSource: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "warranty_resolution_source_total",
			Help: "Serial to token id resolutions by source",
		}, []string{"source"}),

		IssueLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "warranty_issue_duration_seconds",
			Help:    "Duration of full issuance including ledger inclusion",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
	}
}

func (m *Metrics) IncrementIssuance(outcome string) {
	if m != nil {
		m.IssuanceOutcome.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) IncrementRecovery(strategy string) {
	if m != nil {
		m.RecoveryStrategy.WithLabelValues(strategy).Inc()
	}
}

func (m *Metrics) IncrementValidation(source string) {
	if m != nil {
		m.ValidationSource.WithLabelValues(source).Inc()
	}
}

func (m *Metrics) IncrementResolution(source string) {
	if m != nil {
		m.ResolutionSource.WithLabelValues(source).Inc()
	}
}

func (m *Metrics) ObserveIssueLatency(d time.Duration) {
	if m != nil {
		m.IssueLatency.Observe(d.Seconds())
	}
}
