// Package metrics provides observability for the response module.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks submission outcomes and the submit critical path.
type Metrics struct {
	ResponsesSubmitted  prometheus.Counter
	SubmissionsRejected *prometheus.CounterVec
	SubmitDuration      prometheus.Histogram
}

// New creates a Metrics instance with all response module metrics registered.
func New() *Metrics {
	return &Metrics{
		ResponsesSubmitted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "canvass_responses_submitted_total",
			Help: "Total number of responses accepted",
		}),
		SubmissionsRejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "canvass_submissions_rejected_total",
			Help: "Total number of submissions rejected, by reason",
		}, []string{"reason"}),
		SubmitDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "canvass_response_submit_duration_seconds",
			Help:    "Duration of Submit operations (public critical path)",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// IncrementSubmitted records an accepted submission.
func (m *Metrics) IncrementSubmitted() {
	if m == nil {
		return
	}
	m.ResponsesSubmitted.Inc()
}

// IncrementRejected records a rejected submission with its reason.
func (m *Metrics) IncrementRejected(reason string) {
	if m == nil {
		return
	}
	m.SubmissionsRejected.WithLabelValues(reason).Inc()
}

// ObserveSubmit records the duration of a Submit operation. Call with
// time.Now() at the start of the operation.
func (m *Metrics) ObserveSubmit(start time.Time) {
	if m == nil {
		return
	}
	m.SubmitDuration.Observe(time.Since(start).Seconds())
}
