// Package metrics provides observability for the questionnaire module.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks questionnaire lifecycle counts and critical path durations.
type Metrics struct {
	QuestionnairesCreated   prometheus.Counter
	QuestionnairesPublished prometheus.Counter
	PublishDuration         prometheus.Histogram
	LookupDuration          prometheus.Histogram
}

// New creates a Metrics instance with all questionnaire module metrics
// registered.
func New() *Metrics {
	return &Metrics{
		QuestionnairesCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "canvass_questionnaires_created_total",
			Help: "Total number of questionnaires created",
		}),
		QuestionnairesPublished: promauto.NewCounter(prometheus.CounterOpts{
			Name: "canvass_questionnaires_published_total",
			Help: "Total number of questionnaires published",
		}),
		PublishDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "canvass_questionnaire_publish_duration_seconds",
			Help:    "Duration of Publish operations",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		LookupDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "canvass_questionnaire_lookup_duration_seconds",
			Help:    "Duration of questionnaire lookups (public submission path)",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// IncrementCreated records a successful questionnaire creation.
func (m *Metrics) IncrementCreated() {
	if m == nil {
		return
	}
	m.QuestionnairesCreated.Inc()
}

// IncrementPublished records a successful publish.
func (m *Metrics) IncrementPublished() {
	if m == nil {
		return
	}
	m.QuestionnairesPublished.Inc()
}

// ObservePublish records the duration of a Publish operation. Call with
// time.Now() at the start of the operation.
func (m *Metrics) ObservePublish(start time.Time) {
	if m == nil {
		return
	}
	m.PublishDuration.Observe(time.Since(start).Seconds())
}

// ObserveLookup records the duration of a questionnaire lookup.
func (m *Metrics) ObserveLookup(start time.Time) {
	if m == nil {
		return
	}
	m.LookupDuration.Observe(time.Since(start).Seconds())
}
