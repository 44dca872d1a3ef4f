package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder collects invoicing metrics. A nil *Recorder is a no-op.
type Recorder struct {
	created        prometheus.Counter
	clarifications *prometheus.CounterVec
	failures       *prometheus.CounterVec
	extraction     *prometheus.HistogramVec
	numberRetries  prometheus.Counter
}

// New registers the invoicing collectors on registerer
func New(registerer prometheus.Registerer) *Recorder {
	factory := promauto.With(registerer)
	return &Recorder{
		created: factory.NewCounter(prometheus.CounterOpts{
			Name: "invoices_created_total",
			Help: "Invoices persisted.",
		}),
		clarifications: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "invoice_clarifications_total",
			Help: "Requests answered with a clarification instead of an invoice.",
		}, []string{"reason"}),
		failures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "invoice_failures_total",
			Help: "Invoice requests that failed.",
		}, []string{"kind"}),
		extraction: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "llm_extraction_duration_seconds",
			Help:    "Time spent waiting on the language model.",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 30},
		}, []string{"provider"}),
		numberRetries: factory.NewCounter(prometheus.CounterOpts{
			Name: "invoice_number_retries_total",
			Help: "Invoice number collisions that forced a re-read.",
		}),
	}
}

func (r *Recorder) InvoiceCreated() {
	if r == nil {
		return
	}
	r.created.Inc()
}

func (r *Recorder) Clarification(reason string) {
	if r == nil {
		return
	}
	r.clarifications.WithLabelValues(reason).Inc()
}

func (r *Recorder) Failure(kind string) {
	if r == nil {
		return
	}
	r.failures.WithLabelValues(kind).Inc()
}

func (r *Recorder) ExtractionDuration(provider string, d time.Duration) {
	if r == nil {
		return
	}
	r.extraction.WithLabelValues(provider).Observe(d.Seconds())
}

func (r *Recorder) NumberRetry() {
	if r == nil {
		return
	}
	r.numberRetries.Inc()
}
