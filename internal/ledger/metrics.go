package ledger

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics records ledger RPC latency and breaker transitions.
type Metrics struct {
	CallDuration       *prometheus.HistogramVec
	BreakerTransitions *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	return NewMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func NewMetricsWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		CallDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "warranty_ledger_call_duration_seconds",
			Help:    "Duration of ledger RPC operations",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"op", "outcome"}),
		BreakerTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "warranty_ledger_breaker_transitions_total",
			Help: "Ledger read breaker state transitions",
		}, []string{"state"}),
	}
}

func (m *Metrics) observeCall(op string, start time.Time, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = string(GetCategory(err))
	}
	m.CallDuration.WithLabelValues(op, outcome).Observe(time.Since(start).Seconds())
}

func (m *Metrics) breakerTransition(state string) {
	if m == nil {
		return
	}
	m.BreakerTransitions.WithLabelValues(state).Inc()
}
