package review

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "diviz_analysis_cache_hits_total",
		Help: "Review requests served from a cached analysis.",
	})

	cacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "diviz_analysis_cache_misses_total",
		Help: "Review requests that required a fresh analysis.",
	})
)
