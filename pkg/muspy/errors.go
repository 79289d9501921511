package muspy

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
)

// Error categories. Match them with errors.Is against any error returned by
// this package.
var (
	// ErrAuthenticationFailed is reported for HTTP 401 and 403 responses.
	ErrAuthenticationFailed = errors.New("muspy: authentication failed")

	// ErrNotFound is reported for HTTP 404 responses. The service answers 404
	// for syntactically invalid identifiers.
	ErrNotFound = errors.New("muspy: not found")

	// ErrGone is reported for HTTP 410 responses: the identifier is valid but
	// the resource does not exist (anymore).
	ErrGone = errors.New("muspy: gone")

	// ErrRemote is reported for every other non-2xx response.
	ErrRemote = errors.New("muspy: remote error")

	// ErrValidation is reported when a request is rejected locally before
	// any network call.
	ErrValidation = errors.New("muspy: validation failed")

	// ErrNoCredentials is returned when an operation requires authentication
	// but the client was built without Email and Password.
	ErrNoCredentials = fmt.Errorf("%w: credentials required", ErrValidation)

	// ErrDuplicateSubscription is returned when adding an artist that is
	// already part of an ArtistList.
	ErrDuplicateSubscription = errors.New("muspy: artist already subscribed")

	// ErrNotSubscribed is returned when removing an artist that is not part
	// of an ArtistList.
	ErrNotSubscribed = errors.New("muspy: artist not subscribed")

	// ErrIdentityMismatch is returned when the service answers with a
	// profile that does not belong to the supplied credentials.
	ErrIdentityMismatch = errors.New("muspy: profile does not match credentials")
)

// APIError represents a non-2xx response from the muspy API.
type APIError struct {
	StatusCode int    // HTTP status code
	Method     string // HTTP method of the failed request
	Path       string // API path of the failed request
	Body       string // Diagnostic text returned by the service, if any
}

// Error returns the error message.
func (e *APIError) Error() string {
	msg := fmt.Sprintf("muspy: %s %s: status %d", e.Method, e.Path, e.StatusCode)
	if body := strings.TrimSpace(e.Body); body != "" {
		msg += ": " + body
	}
	return msg
}

// Kind returns the category sentinel for the status code.
func (e *APIError) Kind() error {
	switch e.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrAuthenticationFailed
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusGone:
		return ErrGone
	default:
		return ErrRemote
	}
}

// Is reports whether target is the category of e, or an *APIError with the
// same status code.
func (e *APIError) Is(target error) bool {
	if t, ok := target.(*APIError); ok {
		return e.StatusCode == t.StatusCode
	}
	return target == e.Kind()
}

// TransportError represents a connection-level failure: DNS, refused or
// reset connections, timeouts. No response was received.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

// Error returns the error message.
func (e *TransportError) Error() string {
	return fmt.Sprintf("muspy: %s %s: %v", e.Method, e.URL, e.Err)
}

// Unwrap returns the underlying network error.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the failure was a timeout.
func (e *TransportError) Timeout() bool {
	var netErr net.Error
	if errors.As(e.Err, &netErr) {
		return netErr.Timeout()
	}
	return false
}

// ValidationError is a local pre-flight rejection. Field names the offending
// input when there is exactly one.
type ValidationError struct {
	Field string
	Err   error
}

// Error returns the error message.
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("muspy: invalid %s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("muspy: invalid request: %v", e.Err)
}

// Unwrap returns the underlying validation failure.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Is makes every ValidationError match ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
