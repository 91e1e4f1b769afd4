package classify

import (
	"fmt"
	"net/http"
)

// HasStatus is implemented by errors that carry an HTTP status code.
type HasStatus interface {
	HTTPStatus() int
}

// HasRetryAfter is implemented by errors that carry a Retry-After value in
// seconds.
type HasRetryAfter interface {
	RetryAfterSeconds() int
}

// HasType is implemented by errors that declare their own taxonomy type.
type HasType interface {
	ErrorType() ErrorType
}

// HTTPError is an error produced by an HTTP call, with the context needed
// for classification.
type HTTPError struct {
	StatusCode int
	Message    string

	// RetryAfter is the server supplied Retry-After in seconds (0 = absent).
	RetryAfter int

	// Type overrides classification when set.
	Type ErrorType

	Err error
}

// ResponseError builds an HTTPError from a failed response, copying the
// status line and a Retry-After header when present.
func ResponseError(resp *http.Response) *HTTPError {
	if resp == nil {
		return nil
	}
	e := &HTTPError{StatusCode: resp.StatusCode, Message: resp.Status}
	if ra, ok := parseRetryAfter(resp.Header.Get("Retry-After")); ok {
		e.RetryAfter = ra
	}
	return e
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("http error (status %d): %s: %v", e.StatusCode, e.Message, e.Err)
	}
	return fmt.Sprintf("http error (status %d): %s", e.StatusCode, e.Message)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *HTTPError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// HTTPStatus implements HasStatus.
func (e *HTTPError) HTTPStatus() int {
	if e == nil {
		return 0
	}
	return e.StatusCode
}

// RetryAfterSeconds implements HasRetryAfter.
func (e *HTTPError) RetryAfterSeconds() int {
	if e == nil {
		return 0
	}
	return e.RetryAfter
}

// ErrorType implements HasType.
func (e *HTTPError) ErrorType() ErrorType {
	if e == nil {
		return ""
	}
	return e.Type
}

// Error is a plain error tagged with a taxonomy type, for call sites that
// already know what went wrong (e.g. a repository reporting DATABASE_ERROR).
type Error struct {
	Kind ErrorType
	Msg  string
	Err  error
}

// New returns an error of the given type.
func New(kind ErrorType, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Wrap returns an error of the given type wrapping err.
func Wrap(kind ErrorType, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ErrorType implements HasType.
func (e *Error) ErrorType() ErrorType {
	if e == nil {
		return ""
	}
	return e.Kind
}
