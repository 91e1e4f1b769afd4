package retry

import (
	"time"

	"github.com/Sternrassler/errkit/pkg/classify"
)

const (
	// DefaultBaseDelay applies when a classification carries no RetryDelay.
	DefaultBaseDelay = 1 * time.Second

	// MaxDelay caps the exponential growth of every retry delay.
	MaxDelay = 30 * time.Second
)

// ShouldRetry reports whether another retry may be scheduled after attempt
// retries have already been scheduled.
func ShouldRetry(c classify.Classification, attempt int) bool {
	if !c.CanRetry {
		return false
	}
	if c.MaxRetries != nil && attempt >= *c.MaxRetries {
		return false
	}
	return true
}

// RetryDelay returns min(MaxDelay, base * 2^attempt). There is no jitter, so
// the same inputs always give the same delay.
func RetryDelay(c classify.Classification, attempt int) time.Duration {
	return BackoffFor(c).Delay(attempt)
}

// BackoffFor returns the capped exponential backoff for a classification.
func BackoffFor(c classify.Classification) Backoff {
	base := c.RetryDelay
	if base <= 0 {
		base = DefaultBaseDelay
	}
	return WithCap(MaxDelay, Exponential(base))
}
