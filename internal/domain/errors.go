package domain

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrAuthentication means the session handshake with upstream failed or
	// has not happened yet.
	ErrAuthentication = errors.New("authentication failed")

	// ErrNotFound means the requested community or user does not exist.
	ErrNotFound = errors.New("not found")

	ErrInvalidSort  = errors.New("invalid sort")
	ErrInvalidScope = errors.New("invalid scope")
)

// UpstreamError is a non-2xx response from the Discuit API. The status and
// body are kept so they can be forwarded to the requester unchanged.
type UpstreamError struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream error (status %d): %s", e.StatusCode, string(e.Body))
}

// Is reports a 404 from upstream as ErrNotFound.
func (e *UpstreamError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}
