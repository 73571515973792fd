package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values.
const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Mapper metrics
	Assignments        *prometheus.CounterVec
	ValidationFailures *prometheus.CounterVec

	// Store metrics
	Saves        *prometheus.CounterVec
	SaveDuration *prometheus.HistogramVec
}

// New creates the metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		Assignments: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "moneyfield_assignments_total",
				Help: "Monetized field assignments by input kind and outcome",
			},
			[]string{"model", "field", "input", "outcome"},
		),
		ValidationFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "moneyfield_validation_failures_total",
				Help: "Column validation failures on save",
			},
			[]string{"model", "column"},
		),
		Saves: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "moneyfield_saves_total",
				Help: "Record saves by store and outcome",
			},
			[]string{"store", "outcome"},
		),
		SaveDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "moneyfield_save_duration_seconds",
				Help:    "Duration of record saves",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"store"},
		),
	}
}

// ObserveAssignment counts a field assignment.
func (m *Metrics) ObserveAssignment(model, field, input string, err error) {
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeRejected
	}
	m.Assignments.WithLabelValues(model, field, input, outcome).Inc()
}

// ObserveValidationFailure counts a failed column validation.
func (m *Metrics) ObserveValidationFailure(model, column string) {
	m.ValidationFailures.WithLabelValues(model, column).Inc()
}

// ObserveSave records the outcome and duration of a store save.
func (m *Metrics) ObserveSave(store string, started time.Time, err error) {
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeError
	}
	m.Saves.WithLabelValues(store, outcome).Inc()
	m.SaveDuration.WithLabelValues(store).Observe(time.Since(started).Seconds())
}
