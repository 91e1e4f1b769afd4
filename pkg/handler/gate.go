package handler

import (
	"context"

	"github.com/Sternrassler/errkit/pkg/classify"
	"github.com/Sternrassler/errkit/pkg/logging"
)

// logGate forwards the error to the Logger when its classification asks
// for it.
func (h *Handler) logGate(ctx context.Context, c classify.Classification, original any, o *options) {
	if !c.ShouldLog {
		return
	}
	h.record(ctx, logging.NewRecord(c, original, o.context, o.metadata))
}

// record hands rec to the Logger. A panicking Logger is reported on the
// diagnostics logger only, never back through itself.
func (h *Handler) record(ctx context.Context, rec logging.Record) {
	if h.logger == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			hookPanicsTotal.WithLabelValues("logger").Inc()
			h.diag.Error().
				Interface("panic", r).
				Str("error_id", rec.ID).
				Msg("Logger panicked while recording error")
		}
	}()
	h.logger.Record(ctx, rec)
}
