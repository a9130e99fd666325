package search

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// searchFailures tracks vendor searches absorbed as empty result sets.
	searchFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vendor_search_failures_total",
		Help: "Total number of vendor searches that failed and yielded empty results",
	}, []string{"vendor"})

	// searchDuration tracks per-vendor search latency.
	searchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "vendor_search_duration_seconds",
		Help:    "Vendor search latency by vendor",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"vendor"})

	// supersededResults tracks responses discarded because a newer
	// request for the same vendor already landed.
	supersededResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vendor_search_superseded_total",
		Help: "Total number of vendor responses discarded as superseded",
	}, []string{"vendor"})
)
