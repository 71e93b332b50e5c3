package scrapinghub

import (
	"fmt"
	"regexp"

	"github.com/pkg/errors"

	"github.com/davidxi/scrapinghub-go/internal/httpx"
)

// Error types. All of them embed *APIError.
type (
	// APIError is the base error type for all client errors.
	APIError = httpx.APIError
	// UnknownMethodError is returned for a method name absent from the method table.
	UnknownMethodError = httpx.UnknownMethodError
	// UnsupportedParamsError is returned for params that are neither a string nor a mapping.
	UnsupportedParamsError = httpx.UnsupportedParamsError
	// InvalidFormatError is returned for a format other than json or jl on a non-raw request.
	InvalidFormatError = httpx.InvalidFormatError
	// MissingStatusError is returned when a response carries no status field or record.
	MissingStatusError = httpx.MissingStatusError
	// UnknownStatusError is returned for an unrecognized status value.
	UnknownStatusError = httpx.UnknownStatusError
	// StatusError is a failure reported by the server with status "error" or "badrequest".
	StatusError = httpx.StatusError
	// HTTPError is a non-2xx response without a usable envelope.
	HTTPError = httpx.HTTPError
	// NetworkError is a network-level failure.
	NetworkError = httpx.NetworkError
	// TimeoutError is returned when a request times out.
	TimeoutError = httpx.TimeoutError
)

// Sentinel errors for common conditions
var (
	// ErrNoAPIKey is returned when no API key is configured or found in $SH_APIKEY.
	ErrNoAPIKey = errors.New("no API key provided and SH_APIKEY environment variable not set")

	// ErrAPIKeyIsURL is returned when a URL is passed where the API key belongs.
	ErrAPIKeyIsURL = errors.New("a URL was given as API key: pass the endpoint with WithBaseURL")

	// ErrPasswordUnsupported is returned when a password is configured.
	ErrPasswordUnsupported = errors.New("authentication with user:pass is not supported, use your apikey instead")

	// ErrNotImplemented is returned by a Scope that has no request proxy.
	ErrNotImplemented = errors.New("request proxy not implemented")

	// ErrRetriesExhausted matches an ItemsError raised after the last attempt failed.
	ErrRetriesExhausted = errors.New("retries exhausted")
)

var urlLike = regexp.MustCompile(`(?i)^http`)

// ValidateAPIKey checks that key is usable as a credential.
func ValidateAPIKey(key string) error {
	if key == "" {
		return ErrNoAPIKey
	}
	if urlLike.MatchString(key) {
		return ErrAPIKeyIsURL
	}
	return nil
}

// ItemsError is returned by Job.Items when no attempt finished cleanly.
// Items read before the failure are kept in Partial; they are never
// returned as the call's result.
type ItemsError struct {
	JobID       string
	Attempts    int
	MaxAttempts int
	// Offset and Count describe where the next attempt would have resumed.
	Offset  int
	Count   *int
	Partial []Item
	Err     error
}

// Error implements the error interface.
func (e *ItemsError) Error() string {
	return fmt.Sprintf("failed %d times reading items from %s, last error was: %v", e.Attempts, e.JobID, e.Err)
}

// Unwrap returns the last attempt's error.
func (e *ItemsError) Unwrap() error {
	return e.Err
}

// Is matches ErrRetriesExhausted when every attempt was used.
func (e *ItemsError) Is(target error) bool {
	return target == ErrRetriesExhausted && e.Attempts >= e.MaxAttempts
}

// IsUnknownMethodError returns true if err is an UnknownMethodError.
func IsUnknownMethodError(err error) bool { return httpx.IsUnknownMethodError(err) }

// IsUnsupportedParamsError returns true if err is an UnsupportedParamsError.
func IsUnsupportedParamsError(err error) bool { return httpx.IsUnsupportedParamsError(err) }

// IsInvalidFormatError returns true if err is an InvalidFormatError.
func IsInvalidFormatError(err error) bool { return httpx.IsInvalidFormatError(err) }

// IsMissingStatusError returns true if err is a MissingStatusError.
func IsMissingStatusError(err error) bool { return httpx.IsMissingStatusError(err) }

// IsUnknownStatusError returns true if err is an UnknownStatusError.
func IsUnknownStatusError(err error) bool { return httpx.IsUnknownStatusError(err) }

// IsStatusError returns true if err was reported by the server through the status envelope.
func IsStatusError(err error) bool { return httpx.IsStatusError(err) }

// IsHTTPError returns true if err is an HTTPError.
func IsHTTPError(err error) bool { return httpx.IsHTTPError(err) }

// AsAPIError attempts to convert an error to an APIError.
func AsAPIError(err error) (*APIError, bool) { return httpx.AsAPIError(err) }
