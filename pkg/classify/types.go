package classify

import (
	"encoding/json"
	"time"
)

// ErrorType identifies a category in the error taxonomy.
type ErrorType string

const (
	// Network and transport failures.
	TypeNetworkError    ErrorType = "NETWORK_ERROR"
	TypeTimeoutError    ErrorType = "TIMEOUT_ERROR"
	TypeConnectionError ErrorType = "CONNECTION_ERROR"

	// Authentication failures.
	TypeInvalidCredentials ErrorType = "INVALID_CREDENTIALS"
	TypeSessionExpired     ErrorType = "SESSION_EXPIRED"
	TypeTokenInvalid       ErrorType = "TOKEN_INVALID"
	TypeAccountLocked      ErrorType = "ACCOUNT_LOCKED"
	TypeAccountDisabled    ErrorType = "ACCOUNT_DISABLED"

	// Authorization failures.
	TypeInsufficientPermissions ErrorType = "INSUFFICIENT_PERMISSIONS"
	TypeResourceForbidden       ErrorType = "RESOURCE_FORBIDDEN"

	// Input validation failures.
	TypeValidationError      ErrorType = "VALIDATION_ERROR"
	TypeMissingRequiredField ErrorType = "MISSING_REQUIRED_FIELD"
	TypeInvalidFormat        ErrorType = "INVALID_FORMAT"

	// Throttling.
	TypeRateLimitExceeded ErrorType = "RATE_LIMIT_EXCEEDED"
	TypeTooManyRequests   ErrorType = "TOO_MANY_REQUESTS"

	// Server side failures.
	TypeServerError        ErrorType = "SERVER_ERROR"
	TypeServiceUnavailable ErrorType = "SERVICE_UNAVAILABLE"
	TypeDatabaseError      ErrorType = "DATABASE_ERROR"

	// Request level failures.
	TypeBadRequest ErrorType = "BAD_REQUEST"
	TypeNotFound   ErrorType = "NOT_FOUND"
	TypeConflict   ErrorType = "CONFLICT"

	TypeUnknownError ErrorType = "UNKNOWN_ERROR"
)

// AllTypes lists every ErrorType in declaration order.
var AllTypes = []ErrorType{
	TypeNetworkError, TypeTimeoutError, TypeConnectionError,
	TypeInvalidCredentials, TypeSessionExpired, TypeTokenInvalid, TypeAccountLocked, TypeAccountDisabled,
	TypeInsufficientPermissions, TypeResourceForbidden,
	TypeValidationError, TypeMissingRequiredField, TypeInvalidFormat,
	TypeRateLimitExceeded, TypeTooManyRequests,
	TypeServerError, TypeServiceUnavailable, TypeDatabaseError,
	TypeBadRequest, TypeNotFound, TypeConflict,
	TypeUnknownError,
}

// Valid reports whether t is part of the taxonomy.
func (t ErrorType) Valid() bool {
	_, ok := profiles[t]
	return ok
}

// Severity drives logging and notification styling. It is independent of
// retry eligibility.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Cause is a transport-level hint recovered from Go error values that carry
// no useful message text (context.DeadlineExceeded, net.Error).
type Cause int

const (
	CauseNone Cause = iota
	CauseTimeout
	CauseNetwork
)

// ErrorInfo is the normalized shape of a raised value. Nil pointers mean the
// field was not present on the original value.
type ErrorInfo struct {
	Message    *string `json:"message,omitempty"`
	Status     *int    `json:"status,omitempty"`
	RetryAfter *int    `json:"retryAfter,omitempty"`

	// Type is set when the value declared its own taxonomy type.
	Type ErrorType `json:"type,omitempty"`

	Cause Cause `json:"-"`
}

// IsZero reports whether nothing could be extracted.
func (i ErrorInfo) IsZero() bool {
	return i.Message == nil && i.Status == nil && i.RetryAfter == nil && i.Type == "" && i.Cause == CauseNone
}

// Classification is the verdict for one raised value. It is built fresh for
// every call and must be treated as read-only.
type Classification struct {
	Type            ErrorType      `json:"type"`
	Severity        Severity       `json:"severity"`
	Message         string         `json:"message"`
	UserMessage     string         `json:"userMessage"`
	CanRetry        bool           `json:"canRetry"`
	RetryDelay      time.Duration  `json:"-"`
	MaxRetries      *int           `json:"maxRetries,omitempty"`
	RequiresAuth    bool           `json:"requiresAuth,omitempty"`
	RequiresRefresh bool           `json:"requiresRefresh,omitempty"`
	ShouldLog       bool           `json:"shouldLog"`
	Metadata        map[string]any `json:"metadata,omitempty"`
}

// MarshalJSON emits RetryDelay as retryDelayMs.
func (c Classification) MarshalJSON() ([]byte, error) {
	type alias Classification
	out := struct {
		alias
		RetryDelayMs *int64 `json:"retryDelayMs,omitempty"`
	}{alias: alias(c)}
	if c.RetryDelay > 0 {
		ms := c.RetryDelay.Milliseconds()
		out.RetryDelayMs = &ms
	}
	return json.Marshal(out)
}

// RetryAfter returns metadata.retryAfter in seconds, if present.
func (c Classification) RetryAfter() (int, bool) {
	v, ok := c.Metadata[MetaRetryAfter]
	if !ok {
		return 0, false
	}
	n, ok := v.(int)
	return n, ok
}

// Metadata keys set by the classifier.
const (
	MetaRetryAfter = "retryAfter"
	MetaStatus     = "status"
)

// UserMessage returns the display-ready message for c.
func UserMessage(c Classification) string {
	return c.UserMessage
}
