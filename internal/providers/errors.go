package providers

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies why a provider call failed
type Kind string

const (
	KindMalformedResponse Kind = "malformed_response"
	KindUnreachable       Kind = "unreachable"
	KindRateLimited       Kind = "rate_limited"
)

// Error is a failed call to an upstream data provider
type Error struct {
	Provider   string
	Kind       Kind
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %s (status %d): %v", e.Provider, e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Provider, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Retryable reports whether another attempt could succeed
func (e *Error) Retryable() bool {
	return e.Kind == KindUnreachable || e.Kind == KindRateLimited
}

// Malformed wraps a decode or schema failure
func Malformed(provider string, err error) *Error {
	return &Error{Provider: provider, Kind: KindMalformedResponse, Err: err}
}

// Unreachable wraps a transport failure
func Unreachable(provider string, err error) *Error {
	return &Error{Provider: provider, Kind: KindUnreachable, Err: err}
}

// FromStatus classifies a non-200 response
func FromStatus(provider string, status int, body []byte) *Error {
	e := &Error{Provider: provider, StatusCode: status, Err: fmt.Errorf("API error: %s", truncate(body, 200))}
	switch {
	case status == http.StatusTooManyRequests:
		e.Kind = KindRateLimited
	case status >= 500, status == http.StatusRequestTimeout:
		e.Kind = KindUnreachable
	default:
		e.Kind = KindMalformedResponse
	}
	return e
}

// KindOf extracts the Kind from anywhere in err's chain
func KindOf(err error) (Kind, bool) {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind, true
	}
	return "", false
}

func truncate(body []byte, n int) string {
	if len(body) <= n {
		return string(body)
	}
	return string(body[:n]) + "..."
}
