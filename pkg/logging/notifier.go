package logging

import (
	"context"

	"github.com/Sternrassler/errkit/pkg/classify"
	"github.com/rs/zerolog"
)

// Notification kinds emitted by LogNotifier.
const (
	NotificationOffline        = "offline"
	NotificationSessionExpired = "session_expired"
	NotificationRateLimited    = "rate_limited"
	NotificationServerError    = "server_error"
	NotificationGeneric        = "generic"
)

// LogNotifier is a Notifier for processes without a UI: every notification
// becomes a structured log line carrying the display copy.
type LogNotifier struct {
	logger zerolog.Logger
}

// NewLogNotifier creates a LogNotifier.
func NewLogNotifier(logger zerolog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Offline logs the lost-connection notice.
func (n *LogNotifier) Offline(_ context.Context) {
	n.logger.Info().
		Str("notification", NotificationOffline).
		Msg("You appear to be offline. We'll retry when your connection is back.")
}

// SessionExpired logs the sign-in-again notice.
func (n *LogNotifier) SessionExpired(_ context.Context) {
	n.logger.Info().
		Str("notification", NotificationSessionExpired).
		Msg(classify.DefaultUserMessage(classify.TypeSessionExpired))
}

// RateLimited logs the slow-down notice with the wait in seconds.
func (n *LogNotifier) RateLimited(_ context.Context, retryAfter int) {
	n.logger.Info().
		Str("notification", NotificationRateLimited).
		Int("retry_after", retryAfter).
		Msg(classify.DefaultUserMessage(classify.TypeRateLimitExceeded))
}

// ServerError logs the user message of a server side failure.
func (n *LogNotifier) ServerError(_ context.Context, c classify.Classification) {
	n.logger.Info().
		Str("notification", NotificationServerError).
		Str("error_type", string(c.Type)).
		Msg(c.UserMessage)
}

// Generic logs the user message at a level derived from the severity.
func (n *LogNotifier) Generic(_ context.Context, c classify.Classification) {
	n.logger.WithLevel(notificationLevel(c.Severity)).
		Str("notification", NotificationGeneric).
		Str("error_type", string(c.Type)).
		Str("severity", string(c.Severity)).
		Msg(c.UserMessage)
}

func notificationLevel(s classify.Severity) zerolog.Level {
	if s == classify.SeverityCritical {
		return zerolog.WarnLevel
	}
	return zerolog.InfoLevel
}
