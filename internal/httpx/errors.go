package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// APIError is the base error type for every error raised by the client.
// Concrete kinds embed it, so errors.As(err, &*APIError) matches all of them.
type APIError struct {
	// Title is the short description of the failure.
	Title string `json:"title,omitempty"`
	// Message is the message reported by the server, if any.
	Message string `json:"message,omitempty"`
	// Status is the envelope status value, if one was decoded.
	Status string `json:"status,omitempty"`
	// StatusCode is the HTTP status code, 0 when no response was received.
	StatusCode int `json:"status_code,omitempty"`
	// RequestID is the X-Request-Id response header.
	RequestID string `json:"request_id,omitempty"`
	// RawBody is the raw response body.
	RawBody []byte `json:"-"`
	// Err is the underlying error, if any.
	Err error `json:"-"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	msg := e.Title
	if e.Message != "" && e.Message != e.Title {
		if msg != "" {
			msg += ": " + e.Message
		} else {
			msg = e.Message
		}
	}
	if msg == "" {
		msg = "unknown error"
	}
	if e.StatusCode >= http.StatusBadRequest {
		return fmt.Sprintf("[%d] %s", e.StatusCode, msg)
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *APIError) Unwrap() error {
	return e.Err
}

// UnknownMethodError is returned when a method name is absent from the method table.
type UnknownMethodError struct {
	*APIError
	Method string
}

// Unwrap returns the underlying API error.
func (e *UnknownMethodError) Unwrap() error { return e.APIError }

// UnsupportedParamsError is returned when params are neither a string nor a mapping.
type UnsupportedParamsError struct {
	*APIError
	Params any
}

// Unwrap returns the underlying API error.
func (e *UnsupportedParamsError) Unwrap() error { return e.APIError }

// InvalidFormatError is returned for a format other than json or jl on a non-raw request.
type InvalidFormatError struct {
	*APIError
	Format string
}

// Unwrap returns the underlying API error.
func (e *InvalidFormatError) Unwrap() error { return e.APIError }

// MissingStatusError is returned when a payload carries no status field or record.
type MissingStatusError struct{ *APIError }

// Unwrap returns the underlying API error.
func (e *MissingStatusError) Unwrap() error { return e.APIError }

// UnknownStatusError is returned when the status value is not recognized.
type UnknownStatusError struct{ *APIError }

// Unwrap returns the underlying API error.
func (e *UnknownStatusError) Unwrap() error { return e.APIError }

// StatusError is a server-reported failure: status "error" or "badrequest".
type StatusError struct{ *APIError }

// Unwrap returns the underlying API error.
func (e *StatusError) Unwrap() error { return e.APIError }

// HTTPError is returned for a non-2xx response whose body carries no envelope.
type HTTPError struct{ *APIError }

// Unwrap returns the underlying API error.
func (e *HTTPError) Unwrap() error { return e.APIError }

// NetworkError represents a network-level failure.
type NetworkError struct{ *APIError }

// Unwrap returns the underlying API error.
func (e *NetworkError) Unwrap() error { return e.APIError }

// TimeoutError is returned when the request context or client timeout expires.
type TimeoutError struct {
	*APIError
	Timeout time.Duration
}

// Unwrap returns the underlying API error.
func (e *TimeoutError) Unwrap() error { return e.APIError }

// NewUnknownMethodError creates an UnknownMethodError.
func NewUnknownMethodError(method string) *UnknownMethodError {
	return &UnknownMethodError{
		APIError: &APIError{Title: "Unknown method : " + method},
		Method:   method,
	}
}

// NewUnsupportedParamsError creates an UnsupportedParamsError.
func NewUnsupportedParamsError(params any) *UnsupportedParamsError {
	return &UnsupportedParamsError{
		APIError: &APIError{Title: fmt.Sprintf("unsupported params format %T", params)},
		Params:   params,
	}
}

// NewInvalidFormatError creates an InvalidFormatError.
func NewInvalidFormatError(format string) *InvalidFormatError {
	return &InvalidFormatError{
		APIError: &APIError{Title: fmt.Sprintf("format must be either json or jl, got %q", format)},
		Format:   format,
	}
}

// NewMissingStatusError creates a MissingStatusError.
func NewMissingStatusError(statusCode int, body []byte) *MissingStatusError {
	return &MissingStatusError{&APIError{
		Title:      "JSON response does not contain status",
		StatusCode: statusCode,
		RawBody:    body,
	}}
}

// NewUnknownStatusError creates an UnknownStatusError.
func NewUnknownStatusError(status, message string, statusCode int) *UnknownStatusError {
	return &UnknownStatusError{&APIError{
		Title:      "Unknown response status: " + status,
		Message:    message,
		Status:     status,
		StatusCode: statusCode,
	}}
}

// NewStatusError creates a StatusError from a decoded envelope.
func NewStatusError(status, message string, statusCode int, body []byte) *StatusError {
	return &StatusError{&APIError{
		Title:      message,
		Message:    message,
		Status:     status,
		StatusCode: statusCode,
		RawBody:    body,
	}}
}

// NewNetworkError creates a new network error.
func NewNetworkError(err error) *NetworkError {
	return &NetworkError{&APIError{
		Title:   "network error",
		Message: err.Error(),
		Err:     err,
	}}
}

// NewTimeoutError creates a new timeout error.
func NewTimeoutError(timeout time.Duration, err error) *TimeoutError {
	return &TimeoutError{
		APIError: &APIError{
			Title: fmt.Sprintf("request timed out after %v", timeout),
			Err:   err,
		},
		Timeout: timeout,
	}
}

// ParseHTTPError builds an HTTPError for a non-2xx response. The message is
// taken from a JSON body when one is present.
func ParseHTTPError(statusCode int, body []byte, headers http.Header) *HTTPError {
	base := &APIError{
		Title:      http.StatusText(statusCode),
		StatusCode: statusCode,
		RequestID:  headers.Get("X-Request-Id"),
		RawBody:    body,
	}
	if len(body) > 0 {
		var env struct {
			Status  string `json:"status"`
			Message string `json:"message"`
			Error   string `json:"error"`
		}
		if json.Unmarshal(body, &env) == nil {
			base.Status = env.Status
			base.Message = env.Message
			if base.Message == "" {
				base.Message = env.Error
			}
		}
	}
	return &HTTPError{base}
}

// IsUnknownMethodError reports whether err is an UnknownMethodError.
func IsUnknownMethodError(err error) bool {
	var target *UnknownMethodError
	return errors.As(err, &target)
}

// IsUnsupportedParamsError reports whether err is an UnsupportedParamsError.
func IsUnsupportedParamsError(err error) bool {
	var target *UnsupportedParamsError
	return errors.As(err, &target)
}

// IsInvalidFormatError reports whether err is an InvalidFormatError.
func IsInvalidFormatError(err error) bool {
	var target *InvalidFormatError
	return errors.As(err, &target)
}

// IsMissingStatusError reports whether err is a MissingStatusError.
func IsMissingStatusError(err error) bool {
	var target *MissingStatusError
	return errors.As(err, &target)
}

// IsUnknownStatusError reports whether err is an UnknownStatusError.
func IsUnknownStatusError(err error) bool {
	var target *UnknownStatusError
	return errors.As(err, &target)
}

// IsStatusError reports whether err is a server-reported StatusError.
func IsStatusError(err error) bool {
	var target *StatusError
	return errors.As(err, &target)
}

// IsHTTPError reports whether err is an HTTPError.
func IsHTTPError(err error) bool {
	var target *HTTPError
	return errors.As(err, &target)
}

// AsAPIError extracts the underlying API error.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
