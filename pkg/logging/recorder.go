package logging

import (
	"context"
	"fmt"
	"time"

	"github.com/Sternrassler/errkit/pkg/classify"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Record is one error forwarded to the logging collaborator.
type Record struct {
	ID             string
	Time           time.Time
	Classification classify.Classification
	OriginalError  any
	Context        string
	Metadata       map[string]any
}

// NewRecord builds a Record with a fresh ID.
func NewRecord(c classify.Classification, original any, errContext string, metadata map[string]any) Record {
	return Record{
		ID:             uuid.NewString(),
		Time:           time.Now(),
		Classification: c,
		OriginalError:  original,
		Context:        errContext,
		Metadata:       metadata,
	}
}

// Recorder writes error records to a zerolog logger, at a level chosen by
// severity.
type Recorder struct {
	logger zerolog.Logger
}

// NewRecorder creates a Recorder.
func NewRecorder(logger zerolog.Logger) *Recorder {
	return &Recorder{logger: logger}
}

// Record implements the handler's Logger collaborator.
func (r *Recorder) Record(_ context.Context, rec Record) {
	c := rec.Classification

	ev := r.logger.WithLevel(SeverityLevel(c.Severity)).
		Str("error_id", rec.ID).
		Str("context", rec.Context).
		Str("error_type", string(c.Type)).
		Str("severity", string(c.Severity)).
		Bool("can_retry", c.CanRetry)

	if status, ok := c.Metadata[classify.MetaStatus]; ok {
		ev = ev.Interface("status", status)
	}
	if ra, ok := c.RetryAfter(); ok {
		ev = ev.Int("retry_after", ra)
	}
	if rec.OriginalError != nil {
		if err, ok := rec.OriginalError.(error); ok {
			ev = ev.Err(err)
		} else {
			ev = ev.Str("original", fmt.Sprintf("%v", rec.OriginalError))
		}
	}
	if len(rec.Metadata) > 0 {
		ev = ev.Fields(rec.Metadata)
	}

	ev.Msg(c.Message)
}

// SeverityLevel maps a classification severity to a log level.
func SeverityLevel(s classify.Severity) zerolog.Level {
	switch s {
	case classify.SeverityLow:
		return zerolog.InfoLevel
	case classify.SeverityMedium:
		return zerolog.WarnLevel
	case classify.SeverityHigh, classify.SeverityCritical:
		return zerolog.ErrorLevel
	default:
		return zerolog.WarnLevel
	}
}
