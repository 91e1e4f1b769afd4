package logging

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/Sternrassler/errkit/pkg/classify"
	"github.com/rs/zerolog"
)

// restoreGlobal resets the package-global zerolog state that Setup mutates.
func restoreGlobal(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	})
}

func TestSetup_JSONFields(t *testing.T) {
	restoreGlobal(t)
	buf := &bytes.Buffer{}

	logger := Setup(Config{Level: LevelInfo, Output: buf})
	logger.Info().Str("retry_key", "exams:SERVER_ERROR").Msg("Retry scheduled")

	lines := decodeLines(t, buf)
	if len(lines) != 1 {
		t.Fatalf("expected 1 log line, got %d", len(lines))
	}
	line := lines[0]
	if line["message"] != "Retry scheduled" {
		t.Errorf("message = %v", line["message"])
	}
	if line["retry_key"] != "exams:SERVER_ERROR" {
		t.Errorf("retry_key = %v", line["retry_key"])
	}
	if _, ok := line["time"]; !ok {
		t.Error("expected a time field")
	}
}

func TestSetup_PrettyIsNotJSON(t *testing.T) {
	restoreGlobal(t)
	buf := &bytes.Buffer{}

	logger := Setup(Config{Level: LevelInfo, Pretty: true, Output: buf})
	logger.Info().Msg("console line")

	out := buf.String()
	if !strings.Contains(out, "console line") {
		t.Errorf("output %q lacks message", out)
	}
	if strings.HasPrefix(strings.TrimSpace(out), "{") {
		t.Errorf("pretty output should not be JSON: %q", out)
	}
}

func TestSetup_NilOutput(t *testing.T) {
	restoreGlobal(t)

	Setup(Config{Level: LevelError})
	if zerolog.GlobalLevel() != zerolog.ErrorLevel {
		t.Errorf("global level = %v, want error", zerolog.GlobalLevel())
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input LogLevel
		want  zerolog.Level
	}{
		{LevelDebug, zerolog.DebugLevel},
		{LevelError, zerolog.ErrorLevel},
		{"WARN", zerolog.WarnLevel},
		{"Warning", zerolog.WarnLevel},
		{"", zerolog.InfoLevel},
		{"trace", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(string(tt.input), func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestNewLogger_ComponentField(t *testing.T) {
	restoreGlobal(t)
	buf := &bytes.Buffer{}
	Setup(Config{Level: LevelDebug, Output: buf})

	logger := NewLogger("retry-scheduler")
	logger.Debug().Int("attempt", 2).Msg("Retry scheduled")

	lines := decodeLines(t, buf)
	if len(lines) != 1 {
		t.Fatalf("expected 1 log line, got %d", len(lines))
	}
	if lines[0]["component"] != "retry-scheduler" {
		t.Errorf("component = %v, want retry-scheduler", lines[0]["component"])
	}
	if lines[0]["attempt"] != float64(2) {
		t.Errorf("attempt = %v, want 2", lines[0]["attempt"])
	}
}

// A warn-level setup drops low-severity records and keeps the rest.
func TestSetup_FiltersRecordsBySeverity(t *testing.T) {
	restoreGlobal(t)
	buf := &bytes.Buffer{}
	Setup(Config{Level: LevelWarn, Output: buf})
	rec := NewRecorder(NewLogger("error-handler"))

	for _, typ := range []classify.ErrorType{
		classify.TypeNotFound,      // low
		classify.TypeTimeoutError,  // medium
		classify.TypeServerError,   // high
		classify.TypeAccountLocked, // critical
	} {
		c := classify.ClassifyInfo(classify.ErrorInfo{Type: typ})
		rec.Record(context.Background(), NewRecord(c, nil, "exams", nil))
	}

	lines := decodeLines(t, buf)
	if len(lines) != 3 {
		t.Fatalf("expected 3 records above warn, got %d", len(lines))
	}
	for _, line := range lines {
		if line["error_type"] == string(classify.TypeNotFound) {
			t.Error("low severity record should be filtered")
		}
		if line["component"] != "error-handler" {
			t.Errorf("component = %v, want error-handler", line["component"])
		}
	}
}
