package connectivity

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/Sternrassler/errkit/internal/testutil"
	"github.com/jonboulle/clockwork"
)

func newTestProbe(t *testing.T, url string, ttl time.Duration, clock clockwork.Clock) *HTTPProbe {
	t.Helper()
	cfg := DefaultConfig(url)
	cfg.CacheTTL = ttl
	cfg.Clock = clock
	p, err := NewHTTPProbe(cfg)
	if err != nil {
		t.Fatalf("NewHTTPProbe() error = %v", err)
	}
	return p
}

func TestNewHTTPProbe_RequiresURL(t *testing.T) {
	if _, err := NewHTTPProbe(Config{}); err == nil {
		t.Error("expected error for empty URL")
	}
}

func TestHTTPProbe_Online(t *testing.T) {
	tests := []struct {
		name     string
		response testutil.MockResponse
	}{
		{"ok", testutil.MockResponse{StatusCode: http.StatusOK}},
		{"server error still reachable", testutil.NewServerErrorResponse()},
		{"unavailable still reachable", testutil.NewUnavailableResponse()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := testutil.NewMockUpstream()
			defer mock.Close()
			mock.SetResponse("/health", tt.response)

			p := newTestProbe(t, mock.URL()+"/health", 0, clockwork.NewFakeClock())

			if !p.Online(context.Background()) {
				t.Error("expected online")
			}
			if got := mock.LastMethod(); got != http.MethodHead {
				t.Errorf("method = %s, want HEAD", got)
			}
		})
	}
}

func TestHTTPProbe_Offline(t *testing.T) {
	mock := testutil.NewMockUpstream()
	url := mock.URL() + "/health"
	mock.Close()

	p := newTestProbe(t, url, 0, clockwork.NewFakeClock())

	if p.Online(context.Background()) {
		t.Error("expected offline for closed server")
	}
}

func TestHTTPProbe_Timeout(t *testing.T) {
	mock := testutil.NewMockUpstream()
	defer mock.Close()
	mock.SetResponse("/slow", testutil.MockResponse{StatusCode: http.StatusOK, Delay: 200 * time.Millisecond})

	cfg := DefaultConfig(mock.URL() + "/slow")
	cfg.Timeout = 20 * time.Millisecond
	cfg.CacheTTL = 0
	p, err := NewHTTPProbe(cfg)
	if err != nil {
		t.Fatalf("NewHTTPProbe() error = %v", err)
	}

	if p.Online(context.Background()) {
		t.Error("expected offline after timeout")
	}
}

func TestHTTPProbe_CachesResult(t *testing.T) {
	mock := testutil.NewMockUpstream()
	defer mock.Close()

	clock := clockwork.NewFakeClock()
	p := newTestProbe(t, mock.URL()+"/health", 5*time.Second, clock)

	for i := 0; i < 3; i++ {
		if !p.Online(context.Background()) {
			t.Fatalf("check %d: expected online", i)
		}
	}
	if got := mock.RequestCount(); got != 1 {
		t.Errorf("RequestCount() = %d, want 1 while cached", got)
	}

	clock.Advance(5 * time.Second)
	p.Online(context.Background())
	if got := mock.RequestCount(); got != 2 {
		t.Errorf("RequestCount() = %d, want 2 after TTL", got)
	}

	p.Invalidate()
	p.Online(context.Background())
	if got := mock.RequestCount(); got != 3 {
		t.Errorf("RequestCount() = %d, want 3 after Invalidate", got)
	}
}

func TestHTTPProbe_CanceledContext(t *testing.T) {
	mock := testutil.NewMockUpstream()
	defer mock.Close()

	p := newTestProbe(t, mock.URL()+"/health", 0, clockwork.NewFakeClock())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if p.Online(ctx) {
		t.Error("expected offline for canceled context")
	}
}
