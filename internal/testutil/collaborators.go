package testutil

import (
	"context"
	"sync"

	"github.com/Sternrassler/errkit/pkg/classify"
	"github.com/Sternrassler/errkit/pkg/logging"
)

// RecordingLogger collects every record it receives.
type RecordingLogger struct {
	mu      sync.Mutex
	records []logging.Record
}

// Record implements the handler Logger.
func (l *RecordingLogger) Record(_ context.Context, rec logging.Record) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = append(l.records, rec)
}

// Records returns a copy of the received records.
func (l *RecordingLogger) Records() []logging.Record {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]logging.Record(nil), l.records...)
}

// Len returns the number of received records.
func (l *RecordingLogger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.records)
}

// Notification is one call received by RecordingNotifier.
type Notification struct {
	Kind       string
	Type       classify.ErrorType
	RetryAfter int
}

// RecordingNotifier collects every notification it receives.
type RecordingNotifier struct {
	mu    sync.Mutex
	calls []Notification
}

func (n *RecordingNotifier) add(call Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, call)
}

func (n *RecordingNotifier) Offline(context.Context) {
	n.add(Notification{Kind: logging.NotificationOffline})
}

func (n *RecordingNotifier) SessionExpired(context.Context) {
	n.add(Notification{Kind: logging.NotificationSessionExpired, Type: classify.TypeSessionExpired})
}

func (n *RecordingNotifier) RateLimited(_ context.Context, retryAfter int) {
	n.add(Notification{Kind: logging.NotificationRateLimited, Type: classify.TypeRateLimitExceeded, RetryAfter: retryAfter})
}

func (n *RecordingNotifier) ServerError(_ context.Context, c classify.Classification) {
	n.add(Notification{Kind: logging.NotificationServerError, Type: c.Type})
}

func (n *RecordingNotifier) Generic(_ context.Context, c classify.Classification) {
	n.add(Notification{Kind: logging.NotificationGeneric, Type: c.Type})
}

// Calls returns a copy of the received notifications.
func (n *RecordingNotifier) Calls() []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Notification(nil), n.calls...)
}

// StaticProbe reports a fixed connectivity state and counts checks.
type StaticProbe struct {
	mu     sync.Mutex
	online bool
	checks int
}

// NewStaticProbe creates a probe that always answers online.
func NewStaticProbe(online bool) *StaticProbe {
	return &StaticProbe{online: online}
}

// Online implements the handler ConnectivityProbe.
func (p *StaticProbe) Online(context.Context) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.checks++
	return p.online
}

// Checks returns how many times Online was called.
func (p *StaticProbe) Checks() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.checks
}

// FakeCredentialStore counts Clear calls and can be made to fail.
type FakeCredentialStore struct {
	mu      sync.Mutex
	clears  int
	ClearFn func() error
}

// Clear implements the handler CredentialStore.
func (s *FakeCredentialStore) Clear(context.Context) error {
	s.mu.Lock()
	s.clears++
	fn := s.ClearFn
	s.mu.Unlock()
	if fn != nil {
		return fn()
	}
	return nil
}

// Clears returns how many times Clear was called.
func (s *FakeCredentialStore) Clears() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clears
}
