package controllers

import (
	"github.com/prometheus/client_golang/prometheus"
	"sigs.k8s.io/controller-runtime/pkg/metrics"

	autoconfigmetrics "github.com/anvil-platform/autoconfig/internal/metrics"
)

var (
	autoconfigControllerReconcileTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autoconfig_controller_reconcile_total",
			Help: "Number of reconciliations by controller.",
		},
		[]string{"controller"},
	)
	autoconfigControllerReconcileErrorTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autoconfig_controller_reconcile_error_total",
			Help: "Number of reconciliation errors by controller.",
		},
		[]string{"controller"},
	)

	configurationPlanImports = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "autoconfig_configurationplan_imports",
			Help: "Number of auto-configurations imported by the last reconcile of each ConfigurationPlan.",
		},
		[]string{"namespace", "plan"},
	)

	configurationPlanResolutionDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "autoconfig_configurationplan_resolution_duration_seconds",
			Help:    "Time taken to select and order auto-configurations for a plan.",
			Buckets: prometheus.DefBuckets,
		},
	)

	// SelectionMetrics is shared with the selector so sort and selection
	// counters land on the manager's registry.
	SelectionMetrics = autoconfigmetrics.NewRecorder()
)

func init() {
	metrics.Registry.MustRegister(
		autoconfigControllerReconcileTotal,
		autoconfigControllerReconcileErrorTotal,
		configurationPlanImports,
		configurationPlanResolutionDuration,
	)
	SelectionMetrics.MustRegister(metrics.Registry)
}
