// Package metrics provides the Prometheus registry and HTTP handler for errkit.
// All metrics are defined in their respective packages (handler, retry,
// connectivity, credentials) to maintain modularity and avoid circular
// dependencies.
//
// This package provides documentation and reference for all available metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the default Prometheus registry used by errkit.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Names lists every metric errkit registers.
var Names = []string{
	"errkit_errors_classified_total",
	"errkit_retries_scheduled_total",
	"errkit_retry_delay_seconds",
	"errkit_retry_exhausted_total",
	"errkit_hook_panics_total",
	"errkit_retries_pending",
	"errkit_retry_callbacks_total",
	"errkit_retry_cancellations_total",
	"errkit_connectivity_checks_total",
	"errkit_credential_clears_total",
}

// Handler returns the HTTP handler exposing the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Metrics Documentation
//
// Error Handling Metrics (pkg/handler):
//   - errkit_errors_classified_total{type, severity} (Counter): Handled errors by type and severity
//   - errkit_retries_scheduled_total{type} (Counter): Retries scheduled by error type
//   - errkit_retry_delay_seconds{type} (Histogram): Delay of scheduled retries
//   - errkit_retry_exhausted_total{type} (Counter): Retryable errors refused at max retries
//   - errkit_hook_panics_total{hook} (Counter): Panics recovered from hooks and collaborators
//
// Retry Scheduler Metrics (pkg/retry):
//   - errkit_retries_pending (Gauge): Retry timers currently armed
//   - errkit_retry_callbacks_total{outcome} (Counter): Retry callbacks by outcome (success, failure, panic)
//   - errkit_retry_cancellations_total{reason} (Counter): Cancelled timers by reason (replaced, reset, clear)
//
// Adapter Metrics (pkg/connectivity, pkg/credentials):
//   - errkit_connectivity_checks_total{result} (Counter): Probe checks (online, offline, cached)
//   - errkit_credential_clears_total{result} (Counter): Credential clears (success, error)
//
// Example Prometheus Queries:
//
//   # Error rate by type
//   sum by (type) (rate(errkit_errors_classified_total[5m]))
//
//   # Critical errors
//   rate(errkit_errors_classified_total{severity="critical"}[5m])
//
//   # Retry success ratio
//   sum(rate(errkit_retry_callbacks_total{outcome="success"}[5m])) /
//   sum(rate(errkit_retry_callbacks_total[5m]))
//
//   # P95 retry delay
//   histogram_quantile(0.95, rate(errkit_retry_delay_seconds_bucket[5m]))
