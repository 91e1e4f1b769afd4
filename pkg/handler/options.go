package handler

import (
	"context"

	"github.com/Sternrassler/errkit/pkg/retry"
)

// DefaultContext is used when a call does not name its context.
const DefaultContext = "unknown"

// Option customizes a single HandleError call.
type Option func(*options)

type options struct {
	context           string
	showNotification  bool
	enableRetry       bool
	onRetry           retry.Func
	onAuthRequired    func(ctx context.Context)
	onRefreshRequired func(ctx context.Context)
	metadata          map[string]any
}

func newOptions(opts []Option) *options {
	o := &options{
		context:          DefaultContext,
		showNotification: true,
		enableRetry:      true,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}

// WithContext names the call site. Retry state is scoped by context and
// error type.
func WithContext(name string) Option {
	return func(o *options) {
		if name != "" {
			o.context = name
		}
	}
}

// WithoutNotification suppresses the user notification.
func WithoutNotification() Option {
	return func(o *options) {
		o.showNotification = false
	}
}

// WithoutRetry disables retry scheduling for this call.
func WithoutRetry() Option {
	return func(o *options) {
		o.enableRetry = false
	}
}

// WithRetry sets the operation to re-run when the error is retryable.
// Without it nothing is scheduled.
func WithRetry(fn retry.Func) Option {
	return func(o *options) {
		o.onRetry = fn
	}
}

// WithAuthRequired sets the hook called when the error requires the user to
// authenticate again.
func WithAuthRequired(fn func(ctx context.Context)) Option {
	return func(o *options) {
		o.onAuthRequired = fn
	}
}

// WithRefreshRequired sets the hook called when the session should be
// refreshed. It takes precedence over WithAuthRequired.
func WithRefreshRequired(fn func(ctx context.Context)) Option {
	return func(o *options) {
		o.onRefreshRequired = fn
	}
}

// WithMetadata attaches fields forwarded to the Logger.
func WithMetadata(md map[string]any) Option {
	return func(o *options) {
		o.metadata = md
	}
}
