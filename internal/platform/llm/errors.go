package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/meannnn/MindM/internal/platform/httpx"
)

type ErrorKind string

const (
	KindTimeout  ErrorKind = "timeout"
	KindNetwork  ErrorKind = "network"
	KindProvider ErrorKind = "provider"
	KindDecode   ErrorKind = "decode"
	KindCanceled ErrorKind = "canceled"
)

// GenerationError is returned by every Client call that fails. Timeouts and
// transport failures are retryable; a well-formed provider error is not.
type GenerationError struct {
	Kind       ErrorKind
	StatusCode int
	Code       string
	Message    string
	RequestID  string
	Retryable  bool
	// RetryAfter is the provider's Retry-After hint, zero when absent.
	RetryAfter time.Duration
	Err        error
}

func (e *GenerationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "generation %s error", e.Kind)
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " (http %d", e.StatusCode)
		if e.Code != "" {
			fmt.Fprintf(&b, ", %s", e.Code)
		}
		b.WriteString(")")
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	return b.String()
}

func (e *GenerationError) Unwrap() error { return e.Err }

func (e *GenerationError) IsRetryable() bool { return e != nil && e.Retryable }

func (e *GenerationError) RetryDelay() time.Duration {
	if e == nil {
		return 0
	}
	return e.RetryAfter
}

func transportError(err error) *GenerationError {
	ge := &GenerationError{Kind: KindNetwork, Message: err.Error(), Err: err}
	var ne net.Error
	switch {
	case errors.Is(err, context.Canceled):
		ge.Kind = KindCanceled
		return ge
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &ne) && ne.Timeout():
		ge.Kind = KindTimeout
		ge.Retryable = true
		return ge
	}
	ge.Retryable = httpx.IsTransientNetworkError(err)
	return ge
}

type providerErrorBody struct {
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    any    `json:"code"`
	} `json:"error"`
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
	ID        string `json:"id"`
}

// providerError decodes a non-2xx response. A body in the provider's error
// envelope is a business error; anything else is treated as a transient gateway failure
// when the status suggests so.
func providerError(status int, raw []byte, header http.Header) *GenerationError {
	ge := &GenerationError{
		Kind:       KindProvider,
		StatusCode: status,
		RequestID:  header.Get("X-Request-Id"),
		RetryAfter: httpx.RetryAfter(header),
	}
	var body providerErrorBody
	if err := json.Unmarshal(raw, &body); err == nil && (body.Error != nil || body.Message != "") {
		if body.Error != nil {
			ge.Message = body.Error.Message
			ge.Code = body.Error.Type
			if c, ok := body.Error.Code.(string); ok && c != "" {
				ge.Code = c
			}
		} else {
			ge.Message = body.Message
			ge.Code = body.Code
		}
		if body.RequestID != "" {
			ge.RequestID = body.RequestID
		} else if body.ID != "" && ge.RequestID == "" {
			ge.RequestID = body.ID
		}
		return ge
	}
	ge.Message = truncate(strings.TrimSpace(string(raw)), 300)
	ge.Retryable = httpx.IsRetryableHTTPStatus(status)
	return ge
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
