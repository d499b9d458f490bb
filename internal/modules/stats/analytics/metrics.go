package analytics

import "github.com/prometheus/client_golang/prometheus"

// Batch outcomes for the batches counter.
const (
	batchAccepted = "accepted"
	batchInvalid  = "invalid"
	batchTooLarge = "too_large"
	batchFailed   = "failed"
)

// Metrics holds the collector counters.
type Metrics struct {
	Events  *prometheus.CounterVec
	Batches *prometheus.CounterVec
}

// NewMetrics creates the counters and registers them on reg when non-nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "folio_analytics_events_total",
			Help: "Analytics events accepted by the collector",
		}, []string{"type"}),
		Batches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "folio_analytics_batches_total",
			Help: "Analytics batches received, by outcome",
		}, []string{"status"}),
	}
	if reg != nil {
		reg.MustRegister(m.Events, m.Batches)
	}
	return m
}
