package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/Sternrassler/errkit/pkg/classify"
	"github.com/Sternrassler/errkit/pkg/handler"
	"github.com/Sternrassler/errkit/pkg/retry"
	"github.com/rs/zerolog"
)

// reportRequest is the body of POST /v1/report.
type reportRequest struct {
	Error       map[string]any `json:"error"`
	Context     string         `json:"context"`
	CallbackURL string         `json:"callbackUrl"`
	Notify      *bool          `json:"notify"`
}

type reportResponse struct {
	Classification classify.Classification `json:"classification"`
	ShouldRetry    bool                    `json:"shouldRetry"`
	RetryDelayMs   int64                   `json:"retryDelayMs,omitempty"`
}

// reporter runs reported errors through the handler. A report that names a
// callback URL is retried by re-checking that URL.
type reporter struct {
	h        *handler.Handler
	client   *http.Client
	prefixes []string
	logger   zerolog.Logger
}

func newReporter(h *handler.Handler, cfg Config, logger zerolog.Logger) *reporter {
	return &reporter{
		h:        h,
		client:   &http.Client{Timeout: cfg.CallbackTimeout},
		prefixes: cfg.CallbackPrefixes,
		logger:   logger,
	}
}

// allowed reports whether raw is an http(s) URL under a configured prefix.
func (rp *reporter) allowed(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return false
	}
	for _, p := range rp.prefixes {
		if p != "" && strings.HasPrefix(raw, p) {
			return true
		}
	}
	return false
}

func (rp *reporter) handleReport(w http.ResponseWriter, r *http.Request) {
	var req reportRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("invalid JSON body: %v", err), http.StatusBadRequest)
		return
	}
	if req.Error == nil {
		http.Error(w, "error is required", http.StatusBadRequest)
		return
	}

	opts := []handler.Option{handler.WithContext(req.Context)}
	if req.Notify != nil && !*req.Notify {
		opts = append(opts, handler.WithoutNotification())
	}
	if req.CallbackURL == "" {
		opts = append(opts, handler.WithoutRetry())
	} else {
		if !rp.allowed(req.CallbackURL) {
			http.Error(w, "callbackUrl is not allowed", http.StatusBadRequest)
			return
		}
		opts = append(opts,
			handler.WithMetadata(map[string]any{"callbackUrl": req.CallbackURL}),
			handler.WithRetry(rp.recheck(req.CallbackURL, req.Context)),
		)
	}

	res := rp.h.HandleError(r.Context(), req.Error, opts...)

	writeJSON(w, http.StatusOK, reportResponse{
		Classification: res.Classification,
		ShouldRetry:    res.ShouldRetry,
		RetryDelayMs:   res.RetryDelay.Milliseconds(),
	})
}

// recheck returns the retry operation for a callback. A failed re-check is
// reported again, which records it and arms the next attempt. Once retries
// are exhausted the failure is returned to the scheduler.
func (rp *reporter) recheck(callbackURL, errContext string) retry.Func {
	var fn retry.Func
	fn = func(ctx context.Context) error {
		err := rp.fetch(ctx, callbackURL)
		if err == nil {
			rp.logger.Info().Str("callback_url", callbackURL).Msg("Callback recovered")
			return nil
		}

		res := rp.h.HandleError(ctx, err,
			handler.WithContext(errContext),
			handler.WithoutNotification(),
			handler.WithMetadata(map[string]any{"callbackUrl": callbackURL}),
			handler.WithRetry(fn),
		)
		if res.ShouldRetry {
			return nil
		}
		return err
	}
	return fn
}

func (rp *reporter) fetch(ctx context.Context, callbackURL string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, callbackURL, nil)
	if err != nil {
		return err
	}
	resp, err := rp.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 400 {
		return classify.ResponseError(resp)
	}
	return nil
}
