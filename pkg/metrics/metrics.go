package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	reelforge = "reelforge"

	// Orchestrator metrics
	jobsByStage            = "jobs_by_stage"
	stageDurationSeconds   = "stage_duration_seconds"
	stageFailuresTotal     = "stage_failures_total"
	schedulerDispatchTotal = "scheduler_dispatch_total"
	publishOutcomesTotal   = "publish_outcomes_total"

	// Labels
	stageLabel    = "stage"
	classLabel    = "class"
	platformLabel = "platform"
	statusLabel   = "status"
)

/**
* Metrics definition
**/
var jobsByStageMetric = prometheus.NewGaugeVec(
	prometheus.GaugeOpts{
		Subsystem: reelforge,
		Name:      jobsByStage,
		Help:      "number of jobs currently sitting in each pipeline stage",
	},
	[]string{stageLabel},
)

var stageDurationMetric = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Subsystem: reelforge,
		Name:      stageDurationSeconds,
		Help:      "wall time spent executing one pipeline stage",
		Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
	},
	[]string{stageLabel},
)

var stageFailuresMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: reelforge,
		Name:      stageFailuresTotal,
		Help:      "number of stage executions that ended in error, by classification",
	},
	[]string{stageLabel, classLabel},
)

var schedulerDispatchMetric = prometheus.NewCounter(
	prometheus.CounterOpts{
		Subsystem: reelforge,
		Name:      schedulerDispatchTotal,
		Help:      "number of stage executions dispatched by the scheduler loop",
	},
)

var publishOutcomesMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: reelforge,
		Name:      publishOutcomesTotal,
		Help:      "per platform publish outcomes",
	},
	[]string{platformLabel, statusLabel},
)

func UpdateJobsByStageMetric(stage string, count int) {
	jobsByStageMetric.With(prometheus.Labels{stageLabel: stage}).Set(float64(count))
}

func ObserveStageDuration(stage string, d time.Duration) {
	stageDurationMetric.With(prometheus.Labels{stageLabel: stage}).Observe(d.Seconds())
}

func IncreaseStageFailuresMetric(stage, class string) {
	stageFailuresMetric.With(prometheus.Labels{stageLabel: stage, classLabel: class}).Inc()
}

func IncreaseSchedulerDispatchMetric() {
	schedulerDispatchMetric.Inc()
}

func IncreasePublishOutcomesMetric(platform, status string) {
	publishOutcomesMetric.With(prometheus.Labels{platformLabel: platform, statusLabel: status}).Inc()
}

func init() {
	registerMetrics()
}

func registerMetrics() {
	prometheus.MustRegister(jobsByStageMetric)
	prometheus.MustRegister(stageDurationMetric)
	prometheus.MustRegister(stageFailuresMetric)
	prometheus.MustRegister(schedulerDispatchMetric)
	prometheus.MustRegister(publishOutcomesMetric)
}
