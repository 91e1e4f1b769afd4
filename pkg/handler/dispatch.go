package handler

import (
	"context"

	"github.com/Sternrassler/errkit/pkg/classify"
)

// reactionState carries what the type reactions learned to the
// notification step.
type reactionState struct {
	offline bool
}

type reaction func(h *Handler, ctx context.Context, c classify.Classification, o *options, st *reactionState)

// reactions are the fixed per-type side effects, run after the hooks.
var reactions = map[classify.ErrorType]reaction{
	classify.TypeAccountLocked:   clearCredentials,
	classify.TypeAccountDisabled: clearCredentials,
	classify.TypeNetworkError:    checkConnectivity,
	classify.TypeConnectionError: checkConnectivity,
}

// dispatchHooks calls the caller's hooks. Refresh wins over auth when the
// classification asks for both.
func (h *Handler) dispatchHooks(ctx context.Context, c classify.Classification, o *options) {
	switch {
	case c.RequiresRefresh && o.onRefreshRequired != nil:
		h.safely(ctx, "refresh_required", o.context, func() {
			o.onRefreshRequired(ctx)
		})
	case c.RequiresAuth && o.onAuthRequired != nil:
		h.safely(ctx, "auth_required", o.context, func() {
			o.onAuthRequired(ctx)
		})
	}
}

func (h *Handler) react(ctx context.Context, c classify.Classification, o *options) *reactionState {
	st := &reactionState{}
	if fn, ok := reactions[c.Type]; ok {
		h.safely(ctx, "reaction", o.context, func() {
			fn(h, ctx, c, o, st)
		})
	}
	return st
}

func clearCredentials(h *Handler, ctx context.Context, c classify.Classification, o *options, _ *reactionState) {
	if h.credentials == nil {
		return
	}
	if err := h.credentials.Clear(ctx); err != nil {
		h.diag.Warn().
			Err(err).
			Str("context", o.context).
			Str("error_type", string(c.Type)).
			Msg("Failed to clear cached credentials")
		return
	}
	h.diag.Info().
		Str("context", o.context).
		Str("error_type", string(c.Type)).
		Msg("Cleared cached credentials")
}

func checkConnectivity(h *Handler, ctx context.Context, _ classify.Classification, o *options, st *reactionState) {
	if h.probe == nil {
		return
	}
	st.offline = !h.probe.Online(ctx)
	if st.offline {
		h.diag.Debug().
			Str("context", o.context).
			Msg("Connectivity probe reports offline")
	}
}

// notify picks the notification variant for c.
func (h *Handler) notify(ctx context.Context, c classify.Classification, st *reactionState, o *options) {
	if h.notifier == nil {
		return
	}
	h.safely(ctx, "notifier", o.context, func() {
		switch {
		case st.offline:
			h.notifier.Offline(ctx)
		case c.Type == classify.TypeSessionExpired:
			h.notifier.SessionExpired(ctx)
		case c.Type == classify.TypeRateLimitExceeded || c.Type == classify.TypeTooManyRequests:
			if ra, ok := c.RetryAfter(); ok {
				h.notifier.RateLimited(ctx, ra)
				return
			}
			h.notifier.Generic(ctx, c)
		case c.Type == classify.TypeServerError || c.Type == classify.TypeServiceUnavailable:
			h.notifier.ServerError(ctx, c)
		default:
			h.notifier.Generic(ctx, c)
		}
	})
}

// safely runs fn, recovering and recording any panic.
func (h *Handler) safely(ctx context.Context, hook, errContext string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			h.recordPanic(ctx, hook, r, errContext)
		}
	}()
	fn()
}
