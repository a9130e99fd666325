package rates

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// refreshFailures tracks failed rate table refresh attempts.
	refreshFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rates_refresh_failures_total",
		Help: "Total number of failed exchange-rate refresh attempts",
	})

	// staleServed tracks how often a stale cached table was served as a fallback.
	staleServed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rates_stale_table_served_total",
		Help: "Total number of times a stale cached rate table was served",
	})

	// conversionFallbacks tracks identity conversions caused by unknown currency codes.
	conversionFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rates_conversion_fallbacks_total",
		Help: "Total number of identity conversions due to unknown currency codes",
	}, []string{"currency"})
)
