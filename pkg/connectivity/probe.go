// Package connectivity reports whether the runtime can reach the network.
//
// HTTPProbe sends a HEAD request to a health URL. Any HTTP response counts
// as online, since the question is reachability and not service health.
// Transport errors and timeouts count as offline.
package connectivity

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

var connectivityChecksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "errkit_connectivity_checks_total",
	Help: "Total number of connectivity checks by result (online, offline, cached)",
}, []string{"result"})

// Config holds the probe configuration.
type Config struct {
	// URL is requested with HEAD on every check.
	URL string

	// Timeout bounds a single check (default: 3s).
	Timeout time.Duration

	// CacheTTL reuses the last result for this long. Zero disables caching.
	CacheTTL time.Duration

	// HTTPClient sends the requests (default: http.Client with Timeout).
	HTTPClient *http.Client

	// Clock drives the result cache (default: real clock).
	Clock clockwork.Clock

	// Logger receives probe diagnostics.
	Logger zerolog.Logger
}

// DefaultConfig returns a configuration for url with a 3s timeout and a
// 5s result cache.
func DefaultConfig(url string) Config {
	return Config{
		URL:      url,
		Timeout:  3 * time.Second,
		CacheTTL: 5 * time.Second,
		Clock:    clockwork.NewRealClock(),
		Logger:   zerolog.Nop(),
	}
}

// HTTPProbe checks connectivity with an HTTP request.
type HTTPProbe struct {
	url     string
	timeout time.Duration
	ttl     time.Duration
	client  *http.Client
	clock   clockwork.Clock
	logger  zerolog.Logger

	mu        sync.Mutex
	checkedAt time.Time
	online    bool
	cached    bool
}

// NewHTTPProbe creates a probe. It fails when no URL is configured.
func NewHTTPProbe(cfg Config) (*HTTPProbe, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("connectivity probe: URL is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 3 * time.Second
	}
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &HTTPProbe{
		url:     cfg.URL,
		timeout: cfg.Timeout,
		ttl:     cfg.CacheTTL,
		client:  cfg.HTTPClient,
		clock:   cfg.Clock,
		logger:  cfg.Logger,
	}, nil
}

// Online reports whether the probe URL answered.
func (p *HTTPProbe) Online(ctx context.Context) bool {
	if online, ok := p.fromCache(); ok {
		connectivityChecksTotal.WithLabelValues("cached").Inc()
		return online
	}

	online := p.check(ctx)

	p.mu.Lock()
	p.online = online
	p.checkedAt = p.clock.Now()
	p.cached = true
	p.mu.Unlock()

	if online {
		connectivityChecksTotal.WithLabelValues("online").Inc()
	} else {
		connectivityChecksTotal.WithLabelValues("offline").Inc()
	}
	return online
}

func (p *HTTPProbe) fromCache() (bool, bool) {
	if p.ttl <= 0 {
		return false, false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.cached || p.clock.Since(p.checkedAt) >= p.ttl {
		return false, false
	}
	return p.online, true
}

func (p *HTTPProbe) check(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, p.url, nil)
	if err != nil {
		p.logger.Warn().Err(err).Str("url", p.url).Msg("Invalid connectivity probe request")
		return false
	}

	resp, err := p.client.Do(req)
	if err != nil {
		p.logger.Debug().Err(err).Str("url", p.url).Msg("Connectivity probe failed")
		return false
	}
	resp.Body.Close()

	p.logger.Debug().
		Str("url", p.url).
		Int("status", resp.StatusCode).
		Msg("Connectivity probe answered")
	return true
}

// Invalidate drops the cached result so the next check hits the network.
func (p *HTTPProbe) Invalidate() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cached = false
}
