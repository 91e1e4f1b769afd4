package handler

import (
	"context"

	"github.com/Sternrassler/errkit/pkg/classify"
	"github.com/Sternrassler/errkit/pkg/logging"
)

// Logger receives the errors whose classification asks to be logged, plus
// failures raised inside retry callbacks and hooks.
type Logger interface {
	Record(ctx context.Context, rec logging.Record)
}

// LoggerFunc adapts a function to Logger.
type LoggerFunc func(ctx context.Context, rec logging.Record)

// Record implements Logger.
func (f LoggerFunc) Record(ctx context.Context, rec logging.Record) {
	f(ctx, rec)
}

// Notifier presents classifications to the user. Each method is one
// notification variant.
type Notifier interface {
	Offline(ctx context.Context)
	SessionExpired(ctx context.Context)
	RateLimited(ctx context.Context, retryAfter int)
	ServerError(ctx context.Context, c classify.Classification)
	Generic(ctx context.Context, c classify.Classification)
}

// ConnectivityProbe reports whether the runtime currently has connectivity.
type ConnectivityProbe interface {
	Online(ctx context.Context) bool
}

// ProbeFunc adapts a function to ConnectivityProbe.
type ProbeFunc func(ctx context.Context) bool

// Online implements ConnectivityProbe.
func (f ProbeFunc) Online(ctx context.Context) bool {
	return f(ctx)
}

// CredentialStore holds cached credentials that must be dropped when an
// account is locked or disabled.
type CredentialStore interface {
	Clear(ctx context.Context) error
}
