package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ErrorKind classifies why a provider call produced no usable text.
type ErrorKind string

const (
	KindUnavailable ErrorKind = "unavailable"
	KindTransport   ErrorKind = "transport"
	KindRateLimited ErrorKind = "rate_limited"
	KindQuota       ErrorKind = "quota"
	KindAuth        ErrorKind = "auth"
	KindTimeout     ErrorKind = "timeout"
	KindEmpty       ErrorKind = "empty"
	KindMalformed   ErrorKind = "malformed"
)

// GenerationError is the error variant returned by TextGenerator implementations.
type GenerationError struct {
	Kind     ErrorKind
	Provider string
	Err      error
}

func (e *GenerationError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s provider: %s", e.Provider, e.Kind)
	}
	return fmt.Sprintf("%s provider: %s: %v", e.Provider, e.Kind, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// Retryable reports whether a later attempt could succeed.
func (e *GenerationError) Retryable() bool {
	switch e.Kind {
	case KindTransport, KindRateLimited, KindTimeout, KindEmpty, KindMalformed:
		return true
	}
	return false
}

// IsRetryable reports whether a later attempt could succeed. Errors that
// are not a GenerationError, such as storage failures, are treated as
// transient.
func IsRetryable(err error) bool {
	var ge *GenerationError
	if errors.As(err, &ge) {
		return ge.Retryable()
	}
	return err != nil
}

// KindOf returns the ErrorKind of err, or KindTransport for foreign errors.
func KindOf(err error) ErrorKind {
	var ge *GenerationError
	if errors.As(err, &ge) {
		return ge.Kind
	}
	return KindTransport
}

// newGenerationError classifies a raw SDK error. statusCode is 0 when the
// SDK error carried none.
func newGenerationError(provider string, statusCode int, err error) *GenerationError {
	ge := &GenerationError{Provider: provider, Err: err}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		ge.Kind = KindTimeout
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		ge.Kind = KindAuth
	case IsQuotaError(err):
		ge.Kind = KindQuota
	case statusCode == http.StatusTooManyRequests || IsRateLimitError(err):
		ge.Kind = KindRateLimited
	default:
		ge.Kind = KindTransport
	}
	return ge
}

// APIError holds details parsed from a provider error payload.
type APIError struct {
	Message     string
	Type        string
	Code        string
	StatusCode  int
	RetryAfter  *time.Duration
	IsPermanent bool // quota exhaustion, as opposed to a transient rate limit
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (status %d, type %s): %s", e.StatusCode, e.Type, e.Message)
}

// IsRateLimitError reports whether err looks like a transient rate limit.
func IsRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusTooManyRequests && !apiErr.IsPermanent
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "too many requests") ||
		strings.Contains(msg, "resource_exhausted")
}

// IsQuotaError reports whether err looks like quota or billing exhaustion.
func IsQuotaError(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.IsPermanent || apiErr.Code == "insufficient_quota"
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "insufficient_quota") ||
		strings.Contains(msg, "quota") ||
		strings.Contains(msg, "billing")
}

// ExtractAPIError parses a 429 error message carrying a JSON body into an
// APIError. It returns nil for anything else.
func ExtractAPIError(err error) *APIError {
	if err == nil {
		return nil
	}
	msg := err.Error()
	if !strings.Contains(msg, "429") {
		return nil
	}

	apiErr := &APIError{StatusCode: http.StatusTooManyRequests, Message: msg, Type: "rate_limit_error"}
	if start, end := strings.Index(msg, "{"), strings.LastIndex(msg, "}"); start != -1 && end > start {
		var body struct {
			Message string `json:"message"`
			Type    string `json:"type"`
			Code    string `json:"code"`
		}
		if json.Unmarshal([]byte(msg[start:end+1]), &body) == nil {
			apiErr.Message = body.Message
			apiErr.Type = body.Type
			apiErr.Code = body.Code
			apiErr.IsPermanent = body.Code == "insufficient_quota"
		}
	}

	retryAfter := 60 * time.Second
	if apiErr.IsPermanent {
		retryAfter = time.Hour
	}
	apiErr.RetryAfter = &retryAfter
	return apiErr
}

// GetRetryDelay returns an exponential backoff delay for attempt (0-based)
// scaled by the kind of failure.
func GetRetryDelay(err error, attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if attempt > 10 {
		attempt = 10
	}
	factor := time.Duration(1) << uint(attempt)

	switch {
	case IsQuotaError(err) || KindOf(err) == KindQuota:
		return minDuration(time.Hour*factor, 24*time.Hour)
	case IsRateLimitError(err) || KindOf(err) == KindRateLimited:
		delay := minDuration(60*time.Second*factor, 15*time.Minute)
		if apiErr := ExtractAPIError(err); apiErr != nil && apiErr.RetryAfter != nil && *apiErr.RetryAfter > delay {
			delay = *apiErr.RetryAfter
		}
		return delay
	default:
		return minDuration(5*time.Second*factor, 5*time.Minute)
	}
}

func minDuration(a, b time.Duration) time.Duration {
	if a < b {
		return a
	}
	return b
}
