package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	questionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "macrolog_questions_total",
		Help: "Total number of answered questions by routing method.",
	}, []string{"method"})

	validationRejectionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "macrolog_validation_rejections_total",
		Help: "Total number of generated queries rejected by the validator.",
	})

	generationFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "macrolog_generation_failures_total",
		Help: "Total number of failed SQL generation attempts.",
	})

	queryDurationMs = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "macrolog_query_duration_ms",
		Help:    "Structured query execution latency in milliseconds.",
		Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	})

	exportRunsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "macrolog_export_runs_total",
		Help: "Total number of completed log exports.",
	})

	exportRecordsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "macrolog_export_records_total",
		Help: "Total number of food entries written to export objects.",
	})
)

func ObserveQuestion(method string) {
	questionsTotal.WithLabelValues(method).Inc()
}

func IncrementValidationRejection() {
	validationRejectionsTotal.Inc()
}

func IncrementGenerationFailure() {
	generationFailuresTotal.Inc()
}

func ObserveQueryDuration(elapsed time.Duration) {
	queryDurationMs.Observe(float64(elapsed.Milliseconds()))
}

func ObserveExport(records int64) {
	exportRunsTotal.Inc()
	if records > 0 {
		exportRecordsTotal.Add(float64(records))
	}
}
