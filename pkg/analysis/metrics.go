package analysis

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the analysis pipeline.
var (
	analysesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "diviz_analyses_total",
		Help: "Total number of transcript analyses, by feedback result.",
	}, []string{"result"})

	feedbackDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "diviz_feedback_duration_seconds",
		Help:    "Latency of feedback generation calls.",
		Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
	})
)
