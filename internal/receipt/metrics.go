package receipt

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels
const (
	outcomeAccepted = "accepted"
	outcomeRejected = "rejected"
	outcomeError    = "error"
	outcomeFound    = "found"
	outcomeNotFound = "not_found"
)

// Metrics holds the Prometheus metrics for receipt processing.
// A nil *Metrics records nothing.
type Metrics struct {
	Receipts *prometheus.CounterVec
	Points   prometheus.Histogram
	Lookups  *prometheus.CounterVec
}

// NewMetrics creates the receipt metrics and registers them with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Receipts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "receipt_processor_receipts_total",
			Help: "Receipts submitted for processing by outcome",
		}, []string{"outcome"}), // accepted, rejected, error

		Points: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "receipt_processor_points",
			Help:    "Points awarded per accepted receipt",
			Buckets: []float64{0, 10, 25, 50, 75, 100, 150, 250, 500},
		}),

		Lookups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "receipt_processor_lookups_total",
			Help: "Points lookups by outcome",
		}, []string{"outcome"}), // found, not_found, error
	}
}

// ObserveAccepted records an accepted receipt and the points it earned
func (m *Metrics) ObserveAccepted(points int) {
	if m != nil {
		m.Receipts.WithLabelValues(outcomeAccepted).Inc()
		m.Points.Observe(float64(points))
	}
}

// IncrementReceipts records a receipt that was not accepted
func (m *Metrics) IncrementReceipts(outcome string) {
	if m != nil {
		m.Receipts.WithLabelValues(outcome).Inc()
	}
}

// IncrementLookups records a points lookup
func (m *Metrics) IncrementLookups(outcome string) {
	if m != nil {
		m.Lookups.WithLabelValues(outcome).Inc()
	}
}
