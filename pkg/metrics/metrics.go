package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Problem-shape gauges, set once per solve
	ProblemCarersTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "homeplan_problem_carers_total",
			Help: "Number of carers in the loaded problem",
		},
	)

	ProblemVisitsTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "homeplan_problem_visits_total",
			Help: "Number of visits in the loaded problem",
		},
	)

	// Location cache metrics
	LocationCacheHits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "homeplan_location_cache_hits_total",
			Help: "Total number of travel-time lookups served from the cache",
		},
	)

	LocationCacheMisses = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "homeplan_location_cache_misses_total",
			Help: "Total number of travel-time lookups that required a routing-engine call",
		},
	)

	RoutingEngineFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "homeplan_routing_engine_failures_total",
			Help: "Total number of routing-engine calls that returned no route (treated as infinite distance)",
		},
	)

	// Solve-stage metrics
	StageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "homeplan_stage_duration_seconds",
			Help:    "Wall-clock duration of a pipeline stage",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"stage"},
	)

	SolveRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "homeplan_solve_runs_total",
			Help: "Total number of solve invocations by outcome",
		},
		[]string{"outcome"},
	)

	DroppedVisits = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "homeplan_dropped_visits",
			Help: "Number of dropped visits in the best solution found, by stage",
		},
		[]string{"stage"},
	)

	ObjectiveCost = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "homeplan_objective_cost",
			Help: "Objective value of the best solution found, by stage",
		},
		[]string{"stage"},
	)

	SearchLimitTriggered = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "homeplan_search_limit_triggered_total",
			Help: "Total number of times a search limit aborted a stage, by limit kind",
		},
		[]string{"kind"},
	)

	SearchSolutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "homeplan_search_solutions_total",
			Help: "Total number of improving solutions a solve visited, by stage",
		},
		[]string{"stage"},
	)

	// Validator metrics
	ValidationErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "homeplan_validation_errors_total",
			Help: "Total number of validation errors found by kind, across repair-loop iterations",
		},
		[]string{"kind"},
	)

	RepairIterations = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "homeplan_repair_iterations",
			Help:    "Number of repair-loop iterations needed to reach a clean warm start",
			Buckets: []float64{0, 1, 2, 3, 5, 8, 13, 21},
		},
	)

	// Warm-start store metrics
	WarmStartHits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "homeplan_warmstart_hits_total",
			Help: "Total number of solves that found a usable persisted solution",
		},
	)

	WarmStartStores = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "homeplan_warmstart_stores_total",
			Help: "Total number of improving solutions persisted to the warm-start store",
		},
	)
)

func init() {
	prometheus.MustRegister(
		ProblemCarersTotal,
		ProblemVisitsTotal,
		LocationCacheHits,
		LocationCacheMisses,
		RoutingEngineFailures,
		StageDuration,
		SolveRunsTotal,
		DroppedVisits,
		ObjectiveCost,
		SearchLimitTriggered,
		SearchSolutionsTotal,
		ValidationErrorsTotal,
		RepairIterations,
		WarmStartHits,
		WarmStartStores,
	)
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer is a helper for timing operations.
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration records the duration to a histogram.
func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	histogram.Observe(time.Since(t.start).Seconds())
}

// ObserveDurationVec records the duration to a histogram vec with labels.
func (t *Timer) ObserveDurationVec(histogram prometheus.ObserverVec, labels ...string) {
	histogram.WithLabelValues(labels...).Observe(time.Since(t.start).Seconds())
}

// Duration returns the elapsed time since the timer started.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
