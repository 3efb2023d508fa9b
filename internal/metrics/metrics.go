// Package metrics holds the Prometheus collectors shared by the selector, the
// servers and the controller.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/anvil-platform/autoconfig/internal/sorter"
)

const (
	resultOK    = "ok"
	resultCycle = "cycle"
	resultError = "error"
)

// Recorder is nil-safe: every method on a nil *Recorder is a no-op.
type Recorder struct {
	sortTotal          *prometheus.CounterVec
	sortDuration       prometheus.Histogram
	candidatesTotal    prometheus.Counter
	importsTotal       prometheus.Counter
	unmatchedTotal     prometheus.Counter
	metadataLoadsTotal *prometheus.CounterVec
}

func NewRecorder() *Recorder {
	return &Recorder{
		sortTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "autoconfig_sort_total",
				Help: "Number of sort invocations by result.",
			},
			[]string{"result"},
		),
		sortDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "autoconfig_sort_duration_seconds",
				Help:    "Time taken to order auto-configuration candidates.",
				Buckets: prometheus.DefBuckets,
			},
		),
		candidatesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "autoconfig_selection_candidates_total",
				Help: "Total number of candidates considered by import selection.",
			},
		),
		importsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "autoconfig_selection_imports_total",
				Help: "Total number of candidates imported by import selection.",
			},
		),
		unmatchedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "autoconfig_selection_unmatched_total",
				Help: "Total number of candidates dropped because their conditions did not match.",
			},
		),
		metadataLoadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "autoconfig_metadata_loads_total",
				Help: "Number of metadata catalog loads by source and result.",
			},
			[]string{"source", "result"},
		),
	}
}

// MustRegister registers every collector on reg.
func (r *Recorder) MustRegister(reg prometheus.Registerer) {
	if r == nil {
		return
	}
	reg.MustRegister(
		r.sortTotal,
		r.sortDuration,
		r.candidatesTotal,
		r.importsTotal,
		r.unmatchedTotal,
		r.metadataLoadsTotal,
	)
}

func (r *Recorder) ObserveSort(elapsed time.Duration, err error) {
	if r == nil {
		return
	}
	r.sortDuration.Observe(elapsed.Seconds())
	switch {
	case err == nil:
		r.sortTotal.WithLabelValues(resultOK).Inc()
	case errors.Is(err, sorter.ErrCycle):
		r.sortTotal.WithLabelValues(resultCycle).Inc()
	default:
		r.sortTotal.WithLabelValues(resultError).Inc()
	}
}

func (r *Recorder) ObserveSelection(candidates, imports, unmatched int) {
	if r == nil {
		return
	}
	r.candidatesTotal.Add(float64(candidates))
	r.importsTotal.Add(float64(imports))
	r.unmatchedTotal.Add(float64(unmatched))
}

func (r *Recorder) ObserveMetadataLoad(source string, err error) {
	if r == nil {
		return
	}
	result := resultOK
	if err != nil {
		result = resultError
	}
	r.metadataLoadsTotal.WithLabelValues(source, result).Inc()
}
