package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks document extraction and identity verification.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	ExtractionDuration *prometheus.HistogramVec
	Extractions        *prometheus.CounterVec
	Verifications      *prometheus.CounterVec
}

// New registers all metrics with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		ExtractionDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "kyc_extraction_duration_seconds",
			Help:    "Duration of ProcessDocument by strategy (normalize, OCR and oracle call)",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40, 80, 160},
		}, []string{"strategy"}),
		Extractions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "kyc_extractions_total",
			Help: "Document extractions by strategy and outcome",
		}, []string{"strategy", "outcome"}),
		Verifications: f.NewCounterVec(prometheus.CounterOpts{
			Name: "kyc_verifications_total",
			Help: "Identity comparisons by outcome (verified, rejected, error)",
		}, []string{"outcome"}),
	}
}

// ObserveExtraction records the duration and outcome of one ProcessDocument call.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveExtraction(strategy, outcome string, start time.Time) {
	if m == nil {
		return
	}
	m.ExtractionDuration.WithLabelValues(strategy).Observe(time.Since(start).Seconds())
	m.Extractions.WithLabelValues(strategy, outcome).Inc()
}

func (m *Metrics) IncrementVerification(outcome string) {
	if m == nil {
		return
	}
	m.Verifications.WithLabelValues(outcome).Inc()
}
