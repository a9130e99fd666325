package watchlist

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// triggerTransitions counts waiting-to-triggered transitions across all
// evaluation passes.
var triggerTransitions = promauto.NewCounter(prometheus.CounterOpts{
	Name: "watchlist_trigger_transitions_total",
	Help: "Total number of watches transitioning from waiting to triggered",
})
