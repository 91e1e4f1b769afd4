package classify

import "time"

// profile holds the fixed attributes of an ErrorType.
type profile struct {
	severity        Severity
	canRetry        bool
	retryDelay      time.Duration
	maxRetries      int // 0 = unbounded
	requiresAuth    bool
	requiresRefresh bool
	shouldLog       bool
	message         string
	userMessage     string
}

var profiles = map[ErrorType]profile{
	TypeNetworkError: {
		severity:    SeverityMedium,
		canRetry:    true,
		retryDelay:  2000 * time.Millisecond,
		maxRetries:  3,
		shouldLog:   true,
		message:     "network request failed",
		userMessage: "We couldn't reach the server. Please check your internet connection and try again.",
	},
	TypeTimeoutError: {
		severity:    SeverityMedium,
		canRetry:    true,
		retryDelay:  3000 * time.Millisecond,
		maxRetries:  2,
		shouldLog:   true,
		message:     "request timed out",
		userMessage: "The request took too long to complete. Please try again.",
	},
	TypeConnectionError: {
		severity:    SeverityMedium,
		canRetry:    true,
		retryDelay:  2000 * time.Millisecond,
		maxRetries:  3,
		shouldLog:   true,
		message:     "connection failed",
		userMessage: "The connection was interrupted. Please check your internet connection and try again.",
	},
	TypeInvalidCredentials: {
		severity:     SeverityMedium,
		requiresAuth: true,
		shouldLog:    true,
		message:      "invalid credentials",
		userMessage:  "The email or password you entered is incorrect.",
	},
	TypeSessionExpired: {
		severity:        SeverityMedium,
		requiresAuth:    true,
		requiresRefresh: true,
		shouldLog:       true,
		message:         "session expired",
		userMessage:     "Your session has expired. Please sign in again.",
	},
	TypeTokenInvalid: {
		severity:     SeverityMedium,
		requiresAuth: true,
		shouldLog:    true,
		message:      "invalid token",
		userMessage:  "Your sign-in is no longer valid. Please sign in again.",
	},
	TypeAccountLocked: {
		severity:    SeverityCritical,
		shouldLog:   true,
		message:     "account locked",
		userMessage: "Your account has been locked. Please contact support.",
	},
	TypeAccountDisabled: {
		severity:    SeverityCritical,
		shouldLog:   true,
		message:     "account disabled",
		userMessage: "Your account has been disabled. Please contact support.",
	},
	TypeInsufficientPermissions: {
		severity:    SeverityMedium,
		shouldLog:   true,
		message:     "insufficient permissions",
		userMessage: "You don't have permission to perform this action.",
	},
	TypeResourceForbidden: {
		severity:    SeverityMedium,
		shouldLog:   true,
		message:     "resource forbidden",
		userMessage: "You don't have access to this resource.",
	},
	TypeValidationError: {
		severity:    SeverityLow,
		message:     "validation failed",
		userMessage: "Some of the information you entered is invalid. Please review it and try again.",
	},
	TypeMissingRequiredField: {
		severity:    SeverityLow,
		message:     "missing required field",
		userMessage: "Please fill in all required fields.",
	},
	TypeInvalidFormat: {
		severity:    SeverityLow,
		message:     "invalid format",
		userMessage: "Some of the information you entered has an invalid format.",
	},
	TypeRateLimitExceeded: {
		severity:    SeverityMedium,
		canRetry:    true,
		retryDelay:  60000 * time.Millisecond,
		maxRetries:  1,
		shouldLog:   true,
		message:     "rate limit exceeded",
		userMessage: "Too many requests. Please wait a moment before trying again.",
	},
	TypeTooManyRequests: {
		severity:    SeverityMedium,
		canRetry:    true,
		retryDelay:  60000 * time.Millisecond,
		maxRetries:  1,
		shouldLog:   true,
		message:     "too many requests",
		userMessage: "Too many requests. Please wait a moment before trying again.",
	},
	TypeServerError: {
		severity:    SeverityHigh,
		canRetry:    true,
		retryDelay:  5000 * time.Millisecond,
		maxRetries:  2,
		shouldLog:   true,
		message:     "internal server error",
		userMessage: "Something went wrong on our end. We're retrying, please bear with us.",
	},
	TypeServiceUnavailable: {
		severity:    SeverityHigh,
		canRetry:    true,
		retryDelay:  10000 * time.Millisecond,
		maxRetries:  3,
		shouldLog:   true,
		message:     "service unavailable",
		userMessage: "The service is temporarily unavailable. Please try again shortly.",
	},
	TypeDatabaseError: {
		severity:    SeverityHigh,
		canRetry:    true,
		retryDelay:  5000 * time.Millisecond,
		maxRetries:  2,
		shouldLog:   true,
		message:     "database error",
		userMessage: "We couldn't save or load your data. Please try again.",
	},
	TypeBadRequest: {
		severity:    SeverityLow,
		shouldLog:   true,
		message:     "bad request",
		userMessage: "The request could not be processed. Please check your input.",
	},
	TypeNotFound: {
		severity:    SeverityLow,
		message:     "not found",
		userMessage: "The requested item could not be found.",
	},
	TypeConflict: {
		severity:    SeverityMedium,
		shouldLog:   true,
		message:     "conflict",
		userMessage: "This item was changed by someone else. Please refresh and try again.",
	},
	TypeUnknownError: {
		severity:    SeverityMedium,
		canRetry:    true,
		shouldLog:   true,
		message:     "unknown error",
		userMessage: "An unexpected error occurred. Please try again.",
	},
}

// statusTypes maps HTTP status codes to their ErrorType.
var statusTypes = map[int]ErrorType{
	400: TypeBadRequest,
	401: TypeInvalidCredentials,
	403: TypeInsufficientPermissions,
	404: TypeNotFound,
	409: TypeConflict,
	429: TypeRateLimitExceeded,
	500: TypeServerError,
	502: TypeServiceUnavailable,
	503: TypeServiceUnavailable,
	504: TypeServiceUnavailable,
}

// DefaultUserMessage returns the display copy for t, falling back to the
// UNKNOWN_ERROR copy.
func DefaultUserMessage(t ErrorType) string {
	p, ok := profiles[t]
	if !ok {
		p = profiles[TypeUnknownError]
	}
	return p.userMessage
}
