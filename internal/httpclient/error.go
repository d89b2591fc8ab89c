package httpclient

import (
	"fmt"

	ierr "github.com/flexprice/recurring/internal/errors"
)

// Error represents a non-2xx response from a remote service
type Error struct {
	StatusCode int
	Response   []byte
}

func (e *Error) Error() string {
	return fmt.Sprintf("http client error: status %d", e.StatusCode)
}

// IsServerError reports whether the remote side failed rather than rejecting the request
func (e *Error) IsServerError() bool {
	return e.StatusCode >= 500 || e.StatusCode == 429
}

// NewError creates a new HTTP client error marked as ErrHTTPClient
func NewError(statusCode int, response []byte) error {
	return ierr.WithError(&Error{StatusCode: statusCode, Response: response}).
		WithHintf("Remote service responded with %d %s", statusCode, StatusText(statusCode)).
		Mark(ierr.ErrHTTPClient)
}

// IsHTTPError checks if an error is an HTTP client error
func IsHTTPError(err error) (*Error, bool) {
	var httpErr *Error
	if ierr.As(err, &httpErr) {
		return httpErr, true
	}
	return nil, false
}
