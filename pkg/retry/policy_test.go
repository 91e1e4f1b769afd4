package retry

import (
	"math"
	"testing"
	"time"

	"github.com/Sternrassler/errkit/pkg/classify"
)

func maxRetries(n int) *int { return &n }

func TestShouldRetry(t *testing.T) {
	tests := []struct {
		name     string
		c        classify.Classification
		attempt  int
		expected bool
	}{
		{
			name:     "not retryable",
			c:        classify.Classification{CanRetry: false},
			attempt:  0,
			expected: false,
		},
		{
			name:     "not retryable ignores max",
			c:        classify.Classification{CanRetry: false, MaxRetries: maxRetries(5)},
			attempt:  0,
			expected: false,
		},
		{
			name:     "below max",
			c:        classify.Classification{CanRetry: true, MaxRetries: maxRetries(2)},
			attempt:  1,
			expected: true,
		},
		{
			name:     "at max",
			c:        classify.Classification{CanRetry: true, MaxRetries: maxRetries(2)},
			attempt:  2,
			expected: false,
		},
		{
			name:     "above max",
			c:        classify.Classification{CanRetry: true, MaxRetries: maxRetries(2)},
			attempt:  7,
			expected: false,
		},
		{
			name:     "zero max never retries",
			c:        classify.Classification{CanRetry: true, MaxRetries: maxRetries(0)},
			attempt:  0,
			expected: false,
		},
		{
			name:     "unbounded",
			c:        classify.Classification{CanRetry: true},
			attempt:  1000,
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShouldRetry(tt.c, tt.attempt); got != tt.expected {
				t.Errorf("ShouldRetry(attempt=%d) = %v, want %v", tt.attempt, got, tt.expected)
			}
		})
	}
}

func TestShouldRetry_NonRetryableForAllAttempts(t *testing.T) {
	for _, typ := range classify.AllTypes {
		c := classify.Classify(classify.New(typ, "x"))
		if c.CanRetry {
			continue
		}
		for n := 0; n < 50; n++ {
			if ShouldRetry(c, n) {
				t.Fatalf("%s: ShouldRetry(%d) = true for non-retryable classification", typ, n)
			}
		}
	}
}

func TestShouldRetry_MaxRetriesBoundary(t *testing.T) {
	for _, typ := range classify.AllTypes {
		c := classify.Classify(classify.New(typ, "x"))
		if !c.CanRetry || c.MaxRetries == nil {
			continue
		}
		m := *c.MaxRetries
		for n := 0; n < m+5; n++ {
			if got, want := ShouldRetry(c, n), n < m; got != want {
				t.Errorf("%s: ShouldRetry(%d) = %v, want %v", typ, n, got, want)
			}
		}
	}
}

func TestRetryDelay(t *testing.T) {
	tests := []struct {
		name     string
		base     time.Duration
		attempt  int
		expected time.Duration
	}{
		{"default base attempt 0", 0, 0, 1 * time.Second},
		{"default base attempt 1", 0, 1, 2 * time.Second},
		{"default base attempt 3", 0, 3, 8 * time.Second},
		{"network attempt 0", 2 * time.Second, 0, 2 * time.Second},
		{"network attempt 2", 2 * time.Second, 2, 8 * time.Second},
		{"server attempt 2", 5 * time.Second, 2, 20 * time.Second},
		{"server attempt 3 capped", 5 * time.Second, 3, 30 * time.Second},
		{"rate limit capped from start", 60 * time.Second, 0, 30 * time.Second},
		{"huge attempt capped", 1 * time.Second, 500, 30 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := classify.Classification{CanRetry: true, RetryDelay: tt.base}
			if got := RetryDelay(c, tt.attempt); got != tt.expected {
				t.Errorf("RetryDelay(%d) = %v, want %v", tt.attempt, got, tt.expected)
			}
		})
	}
}

func TestRetryDelay_MonotonicAndBounded(t *testing.T) {
	bases := []time.Duration{0, time.Millisecond, 2 * time.Second, 3 * time.Second, 10 * time.Second, 60 * time.Second}

	for _, base := range bases {
		c := classify.Classification{CanRetry: true, RetryDelay: base}
		prev := time.Duration(0)
		for n := 0; n < 100; n++ {
			d := RetryDelay(c, n)
			if d < prev {
				t.Fatalf("base %v: RetryDelay(%d) = %v < previous %v", base, n, d, prev)
			}
			if d > MaxDelay {
				t.Fatalf("base %v: RetryDelay(%d) = %v exceeds %v", base, n, d, MaxDelay)
			}
			prev = d
		}
	}
}

func TestExponential_Overflow(t *testing.T) {
	b := Exponential(time.Hour)
	if got := b.Delay(40); got != time.Duration(math.MaxInt64) {
		t.Errorf("Delay(40) = %v, want saturation", got)
	}
	if got := b.Delay(-1); got != time.Hour {
		t.Errorf("Delay(-1) = %v, want base", got)
	}
}

func TestBackoffFunc(t *testing.T) {
	b := BackoffFunc(func(attempt int) time.Duration {
		return time.Duration(attempt) * time.Second
	})
	if got := WithCap(2*time.Second, b).Delay(5); got != 2*time.Second {
		t.Errorf("capped delay = %v, want 2s", got)
	}
}
