package classify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cast"
	"github.com/tidwall/gjson"
)

// Normalize converts any raised value into an ErrorInfo. It never panics:
// values it cannot understand yield an empty ErrorInfo.
func Normalize(v any) (info ErrorInfo) {
	defer func() {
		if r := recover(); r != nil {
			info = ErrorInfo{}
		}
	}()

	switch x := v.(type) {
	case nil:
		return ErrorInfo{}
	case ErrorInfo:
		return x
	case *ErrorInfo:
		if x == nil {
			return ErrorInfo{}
		}
		return *x
	case *http.Response:
		return fromResponse(x)
	case map[string]any:
		return fromMap(x)
	case json.RawMessage:
		return fromBody(x)
	case []byte:
		return fromBody(x)
	case string:
		if x == "" {
			return ErrorInfo{}
		}
		return ErrorInfo{Message: &x}
	case error:
		return fromError(x)
	case fmt.Stringer:
		s := x.String()
		return ErrorInfo{Message: &s}
	default:
		return ErrorInfo{}
	}
}

func fromResponse(resp *http.Response) ErrorInfo {
	if resp == nil {
		return ErrorInfo{}
	}
	var info ErrorInfo
	if resp.StatusCode > 0 {
		status := resp.StatusCode
		info.Status = &status
	}
	if resp.Status != "" {
		msg := resp.Status
		info.Message = &msg
	}
	if ra, ok := parseRetryAfter(resp.Header.Get("Retry-After")); ok {
		info.RetryAfter = &ra
	}
	return info
}

// parseRetryAfter accepts delta-seconds or an HTTP-date.
func parseRetryAfter(v string) (int, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, false
	}
	if secs, err := strconv.Atoi(v); err == nil && secs >= 0 {
		return secs, true
	}
	if t, err := http.ParseTime(v); err == nil {
		secs := int(time.Until(t).Round(time.Second) / time.Second)
		if secs < 0 {
			secs = 0
		}
		return secs, true
	}
	return 0, false
}

func fromMap(m map[string]any) ErrorInfo {
	var info ErrorInfo
	for _, key := range []string{"message", "error"} {
		if raw, ok := m[key]; ok && raw != nil {
			if s, err := cast.ToStringE(raw); err == nil && s != "" {
				info.Message = &s
				break
			}
		}
	}
	for _, key := range []string{"status", "statusCode"} {
		if raw, ok := m[key]; ok && raw != nil {
			if n, err := cast.ToIntE(raw); err == nil && n > 0 {
				info.Status = &n
				break
			}
		}
	}
	if raw, ok := m["retryAfter"]; ok && raw != nil {
		if n, err := cast.ToIntE(raw); err == nil && n >= 0 {
			info.RetryAfter = &n
		}
	}
	if raw, ok := m["type"]; ok && raw != nil {
		if s, err := cast.ToStringE(raw); err == nil && ErrorType(s).Valid() {
			info.Type = ErrorType(s)
		}
	}
	return info
}

// fromBody reads an HTTP error body. JSON objects are probed for the usual
// error fields; anything else becomes the message.
func fromBody(body []byte) ErrorInfo {
	if len(body) == 0 {
		return ErrorInfo{}
	}
	if !gjson.ValidBytes(body) || !gjson.ParseBytes(body).IsObject() {
		msg := strings.TrimSpace(string(body))
		if msg == "" {
			return ErrorInfo{}
		}
		return ErrorInfo{Message: &msg}
	}

	doc := gjson.ParseBytes(body)
	var info ErrorInfo
	for _, path := range []string{"message", "error.message", "error", "detail"} {
		if r := doc.Get(path); r.Type == gjson.String && r.Str != "" {
			msg := r.Str
			info.Message = &msg
			break
		}
	}
	for _, path := range []string{"status", "statusCode", "error.status"} {
		if r := doc.Get(path); r.Type == gjson.Number && r.Int() > 0 {
			status := int(r.Int())
			info.Status = &status
			break
		}
	}
	for _, path := range []string{"retryAfter", "retry_after"} {
		if r := doc.Get(path); r.Type == gjson.Number && r.Int() >= 0 {
			ra := int(r.Int())
			info.RetryAfter = &ra
			break
		}
	}
	if t := ErrorType(doc.Get("type").Str); t.Valid() {
		info.Type = t
	}
	return info
}

func fromError(err error) ErrorInfo {
	var info ErrorInfo
	if msg := err.Error(); msg != "" {
		info.Message = &msg
	}

	walk(err, func(e error) {
		if info.Status == nil {
			if hs, ok := e.(HasStatus); ok {
				if s := hs.HTTPStatus(); s > 0 {
					info.Status = &s
				}
			}
		}
		if info.RetryAfter == nil {
			if hr, ok := e.(HasRetryAfter); ok {
				if ra := hr.RetryAfterSeconds(); ra > 0 {
					info.RetryAfter = &ra
				}
			}
		}
		if info.Type == "" {
			if ht, ok := e.(HasType); ok {
				if t := ht.ErrorType(); t.Valid() {
					info.Type = t
				}
			}
		}
	})

	info.Cause = causeOf(err)
	return info
}

func causeOf(err error) (cause Cause) {
	defer func() {
		if recover() != nil {
			cause = CauseNone
		}
	}()

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return CauseTimeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return CauseTimeout
	}

	var (
		opErr  *net.OpError
		urlErr *url.Error
		dnsErr *net.DNSError
	)
	if errors.As(err, &opErr) || errors.As(err, &urlErr) || errors.As(err, &dnsErr) {
		return CauseNetwork
	}
	return CauseNone
}

// walk visits err and every error in its Unwrap tree, depth first. A
// panicking error method stops the descent below that node only, keeping
// what earlier visits collected.
func walk(err error, visit func(error)) {
	if err == nil {
		return
	}
	var children []error
	ok := func() (ok bool) {
		defer func() {
			if recover() != nil {
				ok = false
			}
		}()
		visit(err)
		switch u := err.(type) {
		case interface{ Unwrap() error }:
			children = []error{u.Unwrap()}
		case interface{ Unwrap() []error }:
			children = u.Unwrap()
		}
		return true
	}()
	if !ok {
		return
	}
	for _, e := range children {
		walk(e, visit)
	}
}
