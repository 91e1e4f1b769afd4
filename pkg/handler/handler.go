// Package handler orchestrates error handling: it classifies an error, logs
// it, dispatches side effects and notifications, and schedules a retry when
// the classification allows one.
//
// A Handler owns its retry state. Create one per runtime (or per test),
// inject it where errors are handled, and Close it at teardown.
package handler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Sternrassler/errkit/pkg/classify"
	"github.com/Sternrassler/errkit/pkg/logging"
	"github.com/Sternrassler/errkit/pkg/retry"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

// Config holds the handler's collaborators. Nil collaborators are skipped.
type Config struct {
	// Logger receives loggable errors (default: zerolog Recorder).
	Logger Logger

	// Notifier presents errors to the user.
	Notifier Notifier

	// Probe is consulted for network errors. Without it the runtime is
	// assumed online.
	Probe ConnectivityProbe

	// Credentials is cleared when an account is locked or disabled.
	Credentials CredentialStore

	// Clock arms retry timers (default: real clock).
	Clock clockwork.Clock

	// Diagnostics receives the handler's own logs.
	Diagnostics zerolog.Logger
}

// DefaultConfig returns a configuration that records errors through zerolog
// and has no notifier, probe or credential store.
func DefaultConfig() Config {
	diag := logging.NewLogger("error-handler")
	return Config{
		Logger:      logging.NewRecorder(diag),
		Clock:       clockwork.NewRealClock(),
		Diagnostics: diag,
	}
}

// Result is returned by HandleError.
type Result struct {
	Classification classify.Classification `json:"classification"`
	Handled        bool                    `json:"handled"`
	ShouldRetry    bool                    `json:"shouldRetry"`

	// RetryDelay is the delay of the scheduled retry (0 when none).
	RetryDelay time.Duration `json:"-"`
}

// Handler classifies errors and coordinates retries.
type Handler struct {
	logger      Logger
	notifier    Notifier
	probe       ConnectivityProbe
	credentials CredentialStore
	diag        zerolog.Logger
	scheduler   *retry.Scheduler
}

// New creates a Handler.
func New(cfg Config) *Handler {
	h := &Handler{
		logger:      cfg.Logger,
		notifier:    cfg.Notifier,
		probe:       cfg.Probe,
		credentials: cfg.Credentials,
		diag:        cfg.Diagnostics,
	}
	h.scheduler = retry.NewScheduler(retry.SchedulerConfig{
		Clock:     cfg.Clock,
		Logger:    cfg.Diagnostics.With().Str("component", "retry-scheduler").Logger(),
		OnFailure: h.retryFailed,
	})
	return h
}

// RetryKey scopes retry state to a call-site context and an error type.
func RetryKey(errContext string, t classify.ErrorType) string {
	return errContext + ":" + string(t)
}

// HandleError classifies err, runs the configured side effects and, when
// allowed, schedules the retry operation. It never panics and always
// returns a handled Result.
func (h *Handler) HandleError(ctx context.Context, err any, opts ...Option) Result {
	o := newOptions(opts)

	c := classify.Classify(err)
	errorsClassifiedTotal.WithLabelValues(string(c.Type), string(c.Severity)).Inc()

	h.logGate(ctx, c, err, o)

	h.dispatchHooks(ctx, c, o)
	st := h.react(ctx, c, o)

	if o.showNotification {
		h.notify(ctx, c, st, o)
	}

	res := Result{Classification: c, Handled: true}
	if !o.enableRetry || o.onRetry == nil || !c.CanRetry {
		return res
	}

	key := RetryKey(o.context, c.Type)
	attempt, delay, scheduled, serr := h.scheduler.ScheduleNext(key, func(attempt int) (time.Duration, bool) {
		if !retry.ShouldRetry(c, attempt) {
			return 0, false
		}
		return retry.RetryDelay(c, attempt), true
	}, o.onRetry)
	if serr != nil {
		h.diag.Warn().
			Err(serr).
			Str("retry_key", key).
			Msg("Failed to schedule retry")
		return res
	}
	if !scheduled {
		retryExhaustedTotal.WithLabelValues(string(c.Type)).Inc()
		h.diag.Debug().
			Str("retry_key", key).
			Int("attempt", attempt).
			Msg("Max retries reached")
		return res
	}

	retriesScheduledTotal.WithLabelValues(string(c.Type)).Inc()
	retryDelaySeconds.WithLabelValues(string(c.Type)).Observe(delay.Seconds())

	res.ShouldRetry = true
	res.RetryDelay = delay
	return res
}

// retryFailed routes a failed retry callback through the Logger. The key
// keeps its attempt count; the next HandleError call decides whether to
// schedule again.
func (h *Handler) retryFailed(key string, err error) {
	errContext := key
	if i := strings.LastIndex(key, ":"); i >= 0 {
		errContext = key[:i]
	}
	c := classify.Classify(err)
	h.record(context.Background(), logging.NewRecord(c, err, errContext, map[string]any{
		"retry_key": key,
		"phase":     "retry",
	}))
}

// recordPanic logs a panic recovered from a hook or collaborator.
func (h *Handler) recordPanic(ctx context.Context, hook string, r any, errContext string) {
	hookPanicsTotal.WithLabelValues(hook).Inc()
	err := fmt.Errorf("%s panicked: %v", hook, r)
	h.diag.Error().
		Str("hook", hook).
		Str("context", errContext).
		Interface("panic", r).
		Msg("Recovered panic in error handler")
	h.record(ctx, logging.NewRecord(classify.Classify(err), err, errContext, map[string]any{
		"hook": hook,
	}))
}

// ResetRetryAttempts cancels and forgets every retry key starting with
// prefix. Pass a context followed by ":" to reset one call site.
func (h *Handler) ResetRetryAttempts(prefix string) int {
	return h.scheduler.Reset(prefix)
}

// ClearAll cancels every pending retry and forgets all attempts.
func (h *Handler) ClearAll() {
	h.scheduler.ClearAll()
}

// RetryStatus reports attempts and pending timers for keys starting with
// prefix.
func (h *Handler) RetryStatus(prefix string) retry.Status {
	return h.scheduler.Status(prefix)
}

// Close cancels all retries and releases the scheduler.
func (h *Handler) Close() {
	h.scheduler.Close()
}
