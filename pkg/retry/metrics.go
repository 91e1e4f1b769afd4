package retry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for retry scheduling.
var (
	retriesPending = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "errkit_retries_pending",
		Help: "Number of retry timers currently armed",
	})

	retryCallbacksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "errkit_retry_callbacks_total",
		Help: "Total number of retry callbacks run by outcome",
	}, []string{"outcome"}) // "success", "failure", "panic"

	retryCancellationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "errkit_retry_cancellations_total",
		Help: "Total number of armed retry timers cancelled by reason",
	}, []string{"reason"}) // "replaced", "reset", "clear"
)
