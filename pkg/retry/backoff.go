package retry

import (
	"math"
	"time"
)

// Backoff calculates the delay before a retry.
type Backoff interface {
	Delay(attempt int) time.Duration
}

// BackoffFunc is an adapter that allows a function to be used as a Backoff.
type BackoffFunc func(attempt int) time.Duration

// Delay implements Backoff.
func (f BackoffFunc) Delay(attempt int) time.Duration {
	return f(attempt)
}

// Exponential returns a backoff that doubles with each attempt.
// delay = base * 2^attempt, with attempt counted from zero.
func Exponential(base time.Duration) Backoff {
	return BackoffFunc(func(attempt int) time.Duration {
		if attempt <= 0 {
			return base
		}
		if base <= 0 {
			return 0
		}
		// Prevent overflow
		if attempt >= 62 || base > time.Duration(math.MaxInt64>>uint(attempt)) {
			return time.Duration(math.MaxInt64)
		}
		return base << uint(attempt)
	})
}

// WithCap wraps a backoff and caps the delay at a maximum value.
func WithCap(max time.Duration, b Backoff) Backoff {
	return BackoffFunc(func(attempt int) time.Duration {
		d := b.Delay(attempt)
		if d > max {
			return max
		}
		return d
	})
}
