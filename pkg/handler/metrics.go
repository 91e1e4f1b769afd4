package handler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for error handling.
var (
	errorsClassifiedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "errkit_errors_classified_total",
		Help: "Total number of handled errors by type and severity",
	}, []string{"type", "severity"})

	retriesScheduledTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "errkit_retries_scheduled_total",
		Help: "Total number of retries scheduled by error type",
	}, []string{"type"})

	retryDelaySeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "errkit_retry_delay_seconds",
		Help:    "Delay of scheduled retries by error type",
		Buckets: []float64{1, 2, 4, 8, 16, 30},
	}, []string{"type"})

	retryExhaustedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "errkit_retry_exhausted_total",
		Help: "Total number of retryable errors refused because max retries was reached",
	}, []string{"type"})

	hookPanicsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "errkit_hook_panics_total",
		Help: "Total number of panics recovered from hooks and collaborators",
	}, []string{"hook"})
)
