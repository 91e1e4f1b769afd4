// Command errkit-server exposes error classification and retry state over
// HTTP.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Sternrassler/errkit/pkg/classify"
	"github.com/Sternrassler/errkit/pkg/connectivity"
	"github.com/Sternrassler/errkit/pkg/credentials"
	"github.com/Sternrassler/errkit/pkg/handler"
	"github.com/Sternrassler/errkit/pkg/logging"
	"github.com/Sternrassler/errkit/pkg/metrics"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg := loadConfig()

	logger := logging.Setup(logging.Config{
		Level:  logging.LogLevel(cfg.LogLevel),
		Pretty: cfg.LogPretty,
		Output: os.Stdout,
	}).With().Str("component", "errkit-server").Logger()

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr: cfg.RedisURL,
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logger.Fatal().Err(err).Str("redis_url", cfg.RedisURL).Msg("Failed to connect to Redis")
		}
		defer redisClient.Close()
		logger.Info().Str("redis_url", cfg.RedisURL).Msg("Connected to Redis")
	}

	h, err := newHandler(cfg, redisClient, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create error handler")
	}
	defer h.Close()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           newMux(h, redisClient, newReporter(h, cfg, logger)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().Str("addr", srv.Addr).Msg("Starting errkit server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("Server failed")
		return
	}
	logger.Info().Msg("Server stopped")
}

// newHandler wires the collaborators enabled by cfg.
func newHandler(cfg Config, redisClient *redis.Client, logger zerolog.Logger) (*handler.Handler, error) {
	hcfg := handler.DefaultConfig()
	hcfg.Notifier = logging.NewLogNotifier(logging.NewLogger("notifier"))
	hcfg.Diagnostics = logger

	if cfg.ProbeURL != "" {
		pcfg := connectivity.DefaultConfig(cfg.ProbeURL)
		pcfg.Logger = logging.NewLogger("connectivity")
		probe, err := connectivity.NewHTTPProbe(pcfg)
		if err != nil {
			return nil, err
		}
		hcfg.Probe = probe
	}

	if redisClient != nil && cfg.SessionSubject != "" {
		store, err := credentials.NewRedisStore(redisClient, cfg.SessionSubject, logging.NewLogger("credentials"))
		if err != nil {
			return nil, err
		}
		hcfg.Credentials = store
	}

	return handler.New(hcfg), nil
}

func newMux(h *handler.Handler, redisClient *redis.Client, rp *reporter) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", healthHandler)
	mux.HandleFunc("GET /ready", readyHandler(redisClient))
	mux.Handle("GET /metrics", metrics.Handler())
	mux.HandleFunc("POST /v1/classify", classifyHandler)
	mux.HandleFunc("POST /v1/report", rp.handleReport)
	mux.HandleFunc("GET /v1/retry/status", retryStatusHandler(h))
	mux.HandleFunc("DELETE /v1/retry", retryResetHandler(h))
	return mux
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "OK")
}

func readyHandler(redisClient *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if redisClient != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := redisClient.Ping(ctx).Err(); err != nil {
				http.Error(w, fmt.Sprintf("Redis unavailable: %v", err), http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK")
	}
}

// classifyHandler classifies the posted error without side effects. The
// body is a JSON object with any of message, status, retryAfter and type.
func classifyHandler(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&body); err != nil {
		http.Error(w, fmt.Sprintf("invalid JSON body: %v", err), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, classify.Classify(body))
}

func retryStatusHandler(h *handler.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, h.RetryStatus(r.URL.Query().Get("prefix")))
	}
}

func retryResetHandler(h *handler.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		removed := h.ResetRetryAttempts(r.URL.Query().Get("prefix"))
		writeJSON(w, http.StatusOK, map[string]int{"removed": removed})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
