// Package classify turns arbitrary raised values into a typed error
// taxonomy.
//
// Normalize reduces a value to an ErrorInfo, and ClassifyInfo maps that
// ErrorInfo to a Classification through ordered, overriding passes:
//
//  1. message heuristics (network, timeout)
//  2. the HTTP status table
//  3. semantic phrases (session expired, account locked, validation)
//
// Values that declare their own type (HasType) skip the passes. Anything
// not matched falls back to UNKNOWN_ERROR.
package classify

import (
	"strings"
)

var (
	networkPhrases    = []string{"network", "fetch", "connection"}
	timeoutPhrases    = []string{"timeout", "aborted"}
	sessionPhrases    = []string{"session expired", "token expired"}
	accountPhrases    = []string{"account locked", "account disabled"}
	validationPhrases = []string{"validation", "invalid format"}
)

// Classify normalizes v and classifies the result.
func Classify(v any) Classification {
	return ClassifyInfo(Normalize(v))
}

// ClassifyInfo maps a normalized ErrorInfo to a Classification. It is pure
// and deterministic.
func ClassifyInfo(info ErrorInfo) Classification {
	return build(resolveType(info), info)
}

func resolveType(info ErrorInfo) ErrorType {
	if info.Type.Valid() {
		return info.Type
	}

	msg := ""
	if info.Message != nil {
		msg = strings.ToLower(*info.Message)
	}

	t := TypeUnknownError

	// Pass 1: message heuristics.
	switch {
	case containsAny(msg, networkPhrases) || info.Cause == CauseNetwork:
		t = TypeNetworkError
	case containsAny(msg, timeoutPhrases) || info.Cause == CauseTimeout:
		t = TypeTimeoutError
	}

	// Pass 2: status table.
	if info.Status != nil {
		if st, ok := statusTypes[*info.Status]; ok {
			t = st
		}
	}

	// Pass 3: semantic phrases. Only the message separates an expired
	// session from bad credentials on the same 401.
	switch {
	case containsAny(msg, sessionPhrases):
		t = TypeSessionExpired
	case containsAny(msg, accountPhrases):
		t = TypeAccountLocked
	case containsAny(msg, validationPhrases):
		t = TypeValidationError
	}

	return t
}

func build(t ErrorType, info ErrorInfo) Classification {
	p := profiles[t]

	c := Classification{
		Type:            t,
		Severity:        p.severity,
		Message:         p.message,
		UserMessage:     p.userMessage,
		CanRetry:        p.canRetry,
		RetryDelay:      p.retryDelay,
		RequiresAuth:    p.requiresAuth,
		RequiresRefresh: p.requiresRefresh,
		ShouldLog:       p.shouldLog,
	}
	if info.Message != nil && *info.Message != "" {
		c.Message = *info.Message
	}
	if p.maxRetries > 0 {
		m := p.maxRetries
		c.MaxRetries = &m
	}

	if info.Status != nil || info.RetryAfter != nil {
		c.Metadata = make(map[string]any, 2)
		if info.Status != nil {
			c.Metadata[MetaStatus] = *info.Status
		}
		if info.RetryAfter != nil {
			c.Metadata[MetaRetryAfter] = *info.RetryAfter
		}
	}
	return c
}

func containsAny(s string, patterns []string) bool {
	if s == "" {
		return false
	}
	for _, p := range patterns {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}
