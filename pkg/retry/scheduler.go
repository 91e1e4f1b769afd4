// Package retry implements the retry policy (eligibility and backoff) and the
// per-key retry scheduler.
//
// A Scheduler owns one state entry per retry key: the number of retries
// scheduled so far and at most one armed one-shot timer. Scheduling a key
// that already has an armed timer cancels that timer first, so only the
// latest retry for a key can ever fire.
package retry

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ErrSchedulerClosed is returned when scheduling on a closed Scheduler.
var ErrSchedulerClosed = errors.New("retry scheduler closed")

// Func is a retry callback. A nil return means the retry succeeded.
type Func func(ctx context.Context) error

// SchedulerConfig holds the configuration for a Scheduler.
type SchedulerConfig struct {
	// Clock arms the retry timers (default: real clock).
	Clock clockwork.Clock

	// Logger receives scheduler diagnostics.
	Logger zerolog.Logger

	// OnFailure is called after a retry callback fails or panics. The key's
	// state is kept so the next error for it continues counting.
	OnFailure func(key string, err error)
}

// DefaultSchedulerConfig returns a configuration using the real clock and
// the global logger.
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		Clock:  clockwork.NewRealClock(),
		Logger: log.With().Str("component", "retry-scheduler").Logger(),
	}
}

// Scheduler tracks retry attempts and timers per key.
type Scheduler struct {
	mu        sync.Mutex
	clock     clockwork.Clock
	logger    zerolog.Logger
	onFailure func(key string, err error)
	states    map[string]*state
	ctx       context.Context
	cancel    context.CancelFunc
	closed    bool
}

type state struct {
	attempts int
	timer    *timerHandle
}

// timerHandle is one armed timer. done is set once it fired or was
// cancelled, and is only read or written under Scheduler.mu.
type timerHandle struct {
	timer clockwork.Timer
	done  bool
}

// NewScheduler creates a Scheduler. Call Close when it is no longer needed.
func NewScheduler(cfg SchedulerConfig) *Scheduler {
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		clock:     cfg.Clock,
		logger:    cfg.Logger,
		onFailure: cfg.OnFailure,
		states:    make(map[string]*state),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Attempts returns the number of retries scheduled for key so far.
func (s *Scheduler) Attempts(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if st, ok := s.states[key]; ok {
		return st.attempts
	}
	return 0
}

// Schedule records attempts for key and arms a one-shot timer that runs fn
// after delay. Any timer already armed for key is cancelled first.
func (s *Scheduler) Schedule(key string, attempts int, delay time.Duration, fn Func) error {
	if fn == nil {
		return fmt.Errorf("schedule %s: nil retry func", key)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSchedulerClosed
	}
	s.armLocked(key, attempts, delay, fn)
	return nil
}

// Decision is asked, under the scheduler lock, whether attempt (the number
// of retries already scheduled for a key) may be followed by another one,
// and after which delay.
type Decision func(attempt int) (delay time.Duration, ok bool)

// ScheduleNext reads the attempt count of key, asks decide, and when it
// agrees arms fn as attempt+1, all under one lock. Concurrent callers for
// the same key therefore see each other's increments. It returns the
// attempt count decide saw and whether a retry was armed.
func (s *Scheduler) ScheduleNext(key string, decide Decision, fn Func) (attempt int, delay time.Duration, scheduled bool, err error) {
	if fn == nil {
		return 0, 0, false, fmt.Errorf("schedule %s: nil retry func", key)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, 0, false, ErrSchedulerClosed
	}
	if st, ok := s.states[key]; ok {
		attempt = st.attempts
	}

	delay, ok := decide(attempt)
	if !ok {
		return attempt, 0, false, nil
	}
	s.armLocked(key, attempt+1, delay, fn)
	return attempt, delay, true, nil
}

// armLocked replaces the timer of key. s.mu must be held.
func (s *Scheduler) armLocked(key string, attempts int, delay time.Duration, fn Func) {
	st, ok := s.states[key]
	if !ok {
		st = &state{}
		s.states[key] = st
	}
	if s.stopLocked(st.timer) {
		retryCancellationsTotal.WithLabelValues("replaced").Inc()
		s.logger.Debug().
			Str("retry_key", key).
			Msg("Replaced pending retry")
	}

	h := &timerHandle{}
	st.attempts = attempts
	st.timer = h
	h.timer = s.clock.AfterFunc(delay, func() {
		s.fire(key, h, fn)
	})
	retriesPending.Inc()

	s.logger.Debug().
		Str("retry_key", key).
		Int("attempt", attempts).
		Dur("delay", delay).
		Msg("Retry scheduled")
}

// stopLocked cancels h if it is still armed. It reports whether a live
// timer was cancelled.
func (s *Scheduler) stopLocked(h *timerHandle) bool {
	if h == nil || h.done {
		return false
	}
	h.done = true
	if h.timer != nil {
		h.timer.Stop()
	}
	retriesPending.Dec()
	return true
}

func (s *Scheduler) fire(key string, h *timerHandle, fn Func) {
	s.mu.Lock()
	if h.done {
		// Cancelled after the timer had already fired.
		s.mu.Unlock()
		return
	}
	h.done = true
	retriesPending.Dec()
	ctx := s.ctx
	s.mu.Unlock()

	err := invoke(ctx, fn)

	if err == nil {
		s.mu.Lock()
		if st, ok := s.states[key]; ok && st.timer == h {
			delete(s.states, key)
		}
		s.mu.Unlock()

		retryCallbacksTotal.WithLabelValues("success").Inc()
		s.logger.Info().
			Str("retry_key", key).
			Msg("Retry succeeded")
		return
	}

	var pe *panicError
	if errors.As(err, &pe) {
		retryCallbacksTotal.WithLabelValues("panic").Inc()
	} else {
		retryCallbacksTotal.WithLabelValues("failure").Inc()
	}
	s.logger.Warn().
		Err(err).
		Str("retry_key", key).
		Msg("Retry failed")

	if s.onFailure != nil {
		s.onFailure(key, err)
	}
}

type panicError struct {
	value any
}

func (e *panicError) Error() string {
	return fmt.Sprintf("retry callback panicked: %v", e.value)
}

func invoke(ctx context.Context, fn Func) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &panicError{value: r}
		}
	}()
	return fn(ctx)
}

// Reset cancels and removes every key starting with prefix. It returns the
// number of keys removed.
func (s *Scheduler) Reset(prefix string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, st := range s.states {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		if s.stopLocked(st.timer) {
			retryCancellationsTotal.WithLabelValues("reset").Inc()
		}
		delete(s.states, key)
		removed++
	}

	if removed > 0 {
		s.logger.Debug().
			Str("prefix", prefix).
			Int("keys", removed).
			Msg("Retry attempts reset")
	}
	return removed
}

// ClearAll cancels every timer and empties the state.
func (s *Scheduler) ClearAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLocked()
}

func (s *Scheduler) clearLocked() {
	for _, st := range s.states {
		if s.stopLocked(st.timer) {
			retryCancellationsTotal.WithLabelValues("clear").Inc()
		}
	}
	s.states = make(map[string]*state)
}

// Close clears all state, cancels the context passed to running callbacks
// and rejects further scheduling.
func (s *Scheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.clearLocked()
	s.closed = true
	s.cancel()
}

// KeyStatus is the retry state of one key.
type KeyStatus struct {
	Key      string `json:"key"`
	Attempts int    `json:"attempts"`
	Pending  bool   `json:"pending"`
}

// Status aggregates the retry state of the keys matching a prefix.
type Status struct {
	Keys          []KeyStatus `json:"keys"`
	TotalAttempts int         `json:"totalAttempts"`
	Pending       int         `json:"pending"`
}

// HasPending reports whether any matching key has an armed timer.
func (st Status) HasPending() bool {
	return st.Pending > 0
}

// Status returns a snapshot of every key starting with prefix, sorted by key.
func (s *Scheduler) Status(prefix string) Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := Status{Keys: []KeyStatus{}}
	for key, st := range s.states {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		pending := st.timer != nil && !st.timer.done
		out.Keys = append(out.Keys, KeyStatus{Key: key, Attempts: st.attempts, Pending: pending})
		out.TotalAttempts += st.attempts
		if pending {
			out.Pending++
		}
	}
	slices.SortFunc(out.Keys, func(a, b KeyStatus) int {
		return strings.Compare(a.Key, b.Key)
	})
	return out
}
