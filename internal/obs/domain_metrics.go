package obs

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// EvaluationsTotal counts pricing evaluations by trigger and payload shape outcome.
	EvaluationsTotal *prometheus.CounterVec
	// EvaluationDuration records pricing evaluation latency in milliseconds.
	EvaluationDuration prometheus.Histogram
	// NormalizeWarningsTotal counts normalization warnings emitted during evaluations.
	NormalizeWarningsTotal prometheus.Counter
	// RecomputeTasksTotal counts background recompute task outcomes.
	RecomputeTasksTotal *prometheus.CounterVec
	// TotalsCacheTotal counts totals cache lookups by outcome.
	TotalsCacheTotal *prometheus.CounterVec
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		EvaluationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "evaluations_total",
			Help:      "Count of budget pricing evaluations by trigger.",
		}, []string{"trigger"})
		EvaluationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "evaluation_duration_ms",
			Help:      "Latency of budget pricing evaluations in milliseconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25},
		})
		NormalizeWarningsTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "normalize_warnings_total",
			Help:      "Number of normalization warnings emitted while evaluating payloads.",
		})
		RecomputeTasksTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recompute_tasks_total",
			Help:      "Count of background totals recompute tasks by outcome.",
		}, []string{"result"})
		TotalsCacheTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "totals_cache_total",
			Help:      "Count of totals cache lookups by outcome.",
		}, []string{"result"})
		reg.MustRegister(EvaluationsTotal, EvaluationDuration, NormalizeWarningsTotal, RecomputeTasksTotal, TotalsCacheTotal)
	})
}
