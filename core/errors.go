// Package core provides shared types and utilities for the Alert Center SDK.
//
// This package contains:
//   - Error types for dispatch failures (401, 429, other 4xx, 5xx, timeouts)
//   - Error types for binding failures raised before any network call
//   - Timestamp parsing and transformation utilities
//   - Logging utilities
//
// Error types can be used with errors.As to handle specific cases:
//
//	alert, err := client.GetAlert(ctx, "abc123", nil)
//	if err != nil {
//	    var serverErr *core.ServerError
//	    if errors.As(err, &serverErr) {
//	        // Safe to retry
//	    }
//	}
package core

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
)

// AlertcenterError is the base error type for all dispatch failures.
//
// ServerError, ClientError and AuthorizationError embed this type. Body holds
// the raw error response; its shape is not interpreted.
type AlertcenterError struct {
	Message    string `json:"message"`
	StatusCode int    `json:"statusCode"`
	Method     string `json:"method,omitempty"`
	URL        string `json:"url,omitempty"`
	Body       []byte `json:"-"`
	Cause      error  `json:"-"`
}

func (e *AlertcenterError) Error() string {
	if e.Method != "" && e.URL != "" {
		return fmt.Sprintf("%s %s: %s (status: %d)", e.Method, e.URL, e.Message, e.StatusCode)
	}
	return fmt.Sprintf("%s (status: %d)", e.Message, e.StatusCode)
}

func (e *AlertcenterError) Unwrap() error {
	return e.Cause
}

// ServerError is returned for server errors (HTTP 5xx). The request can be retried.
type ServerError struct {
	AlertcenterError
}

// NewServerError creates a new ServerError.
func NewServerError(statusCode int, message string) *ServerError {
	return &ServerError{
		AlertcenterError: AlertcenterError{
			Message:    message,
			StatusCode: statusCode,
		},
	}
}

// ClientError is returned when the request is invalid (HTTP 4xx other than 401).
// It should not be retried without modification.
type ClientError struct {
	AlertcenterError
}

// NewClientError creates a new ClientError.
func NewClientError(statusCode int, message string) *ClientError {
	return &ClientError{
		AlertcenterError: AlertcenterError{
			Message:    message,
			StatusCode: statusCode,
		},
	}
}

// AuthorizationError is returned when credentials are missing, invalid or expired (HTTP 401).
type AuthorizationError struct {
	AlertcenterError
}

// NewAuthorizationError creates a new AuthorizationError.
func NewAuthorizationError(message string) *AuthorizationError {
	return &AuthorizationError{
		AlertcenterError: AlertcenterError{
			Message:    message,
			StatusCode: http.StatusUnauthorized,
		},
	}
}

// RateLimitError is returned when the API returns HTTP 429.
//
// It is a ClientError for errors.As purposes, but unlike other client
// errors it is safe to retry after RetryAfter seconds.
type RateLimitError struct {
	ClientError
	RetryAfter int `json:"retryAfter,omitempty"`
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited, retry after %d seconds", e.RetryAfter)
	}
	return "rate limited"
}

// As lets errors.As match a RateLimitError against a *ClientError target.
func (e *RateLimitError) As(target any) bool {
	if t, ok := target.(**ClientError); ok {
		*t = &e.ClientError
		return true
	}
	return false
}

// NewRateLimitError creates a new RateLimitError.
func NewRateLimitError(retryAfter int, message string) *RateLimitError {
	if message == "" {
		message = "Too Many Requests"
	}
	return &RateLimitError{
		ClientError: ClientError{
			AlertcenterError: AlertcenterError{
				Message:    message,
				StatusCode: http.StatusTooManyRequests,
			},
		},
		RetryAfter: retryAfter,
	}
}

// TimeoutError is returned when a request exceeds its deadline.
type TimeoutError struct {
	AlertcenterError
	TimeoutMs int `json:"timeoutMs"`
}

func (e *TimeoutError) Error() string {
	if e.TimeoutMs > 0 {
		return fmt.Sprintf("request timed out after %dms", e.TimeoutMs)
	}
	return "request timed out"
}

// NewTimeoutError creates a new TimeoutError.
func NewTimeoutError(timeoutMs int, cause error) *TimeoutError {
	return &TimeoutError{
		AlertcenterError: AlertcenterError{
			Message: "request timed out",
			Cause:   cause,
		},
		TimeoutMs: timeoutMs,
	}
}

// ParseErrorResponse classifies a non-2xx HTTP response.
//
// The response body is read and kept verbatim on the returned error. If
// reading fails, the partial body is kept and the read error becomes Cause.
// 5xx maps to ServerError, 401 to AuthorizationError, 429 to RateLimitError
// and every other status to ClientError.
func ParseErrorResponse(resp *http.Response, method, requestURL string) error {
	body, readErr := io.ReadAll(resp.Body)

	message := http.StatusText(resp.StatusCode)
	if message == "" {
		message = resp.Status
	}

	base := AlertcenterError{
		Message:    message,
		StatusCode: resp.StatusCode,
		Method:     method,
		URL:        requestURL,
		Body:       body,
	}
	if readErr != nil {
		base.Cause = fmt.Errorf("reading error body: %w", readErr)
	}

	switch {
	case resp.StatusCode >= 500:
		return &ServerError{AlertcenterError: base}
	case resp.StatusCode == http.StatusUnauthorized:
		return &AuthorizationError{AlertcenterError: base}
	case resp.StatusCode == http.StatusTooManyRequests:
		retryAfter := 0
		if ra := resp.Header.Get("Retry-After"); ra != "" {
			retryAfter, _ = strconv.Atoi(ra)
		}
		return &RateLimitError{ClientError: ClientError{AlertcenterError: base}, RetryAfter: retryAfter}
	default:
		return &ClientError{AlertcenterError: base}
	}
}

// IsRetryableError returns true if the error should trigger a retry.
func IsRetryableError(err error) bool {
	var serverErr *ServerError
	var rateErr *RateLimitError
	var timeoutErr *TimeoutError
	return errors.As(err, &serverErr) || errors.As(err, &rateErr) || errors.As(err, &timeoutErr)
}

// MissingRequiredParameterError is returned when a required parameter has no value.
// No network call has been made.
type MissingRequiredParameterError struct {
	Operation string `json:"operation"`
	Parameter string `json:"parameter"`
}

func (e *MissingRequiredParameterError) Error() string {
	return fmt.Sprintf("%s: missing required parameter %q", e.Operation, e.Parameter)
}

// InvalidParameterError is returned when a parameter value cannot be bound.
// No network call has been made.
type InvalidParameterError struct {
	Operation string `json:"operation"`
	Parameter string `json:"parameter"`
	Reason    string `json:"reason"`
	Cause     error  `json:"-"`
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("%s: invalid parameter %q: %s", e.Operation, e.Parameter, e.Reason)
}

func (e *InvalidParameterError) Unwrap() error {
	return e.Cause
}

// UnsupportedOperationError is returned when a command is used in a way its
// template does not allow, such as attaching a body to a GET.
type UnsupportedOperationError struct {
	Operation string `json:"operation"`
	Reason    string `json:"reason"`
}

func (e *UnsupportedOperationError) Error() string {
	return fmt.Sprintf("%s: unsupported: %s", e.Operation, e.Reason)
}

// OperationNotFoundError is returned when a registry has no template by that name.
type OperationNotFoundError struct {
	Operation string `json:"operation"`
}

func (e *OperationNotFoundError) Error() string {
	return fmt.Sprintf("operation %q not found", e.Operation)
}

// IsBindingError reports whether err was raised before dispatch.
func IsBindingError(err error) bool {
	var missing *MissingRequiredParameterError
	var invalid *InvalidParameterError
	var unsupported *UnsupportedOperationError
	var notFound *OperationNotFoundError
	return errors.As(err, &missing) || errors.As(err, &invalid) ||
		errors.As(err, &unsupported) || errors.As(err, &notFound)
}
