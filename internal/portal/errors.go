package portal

import (
	"errors"
	"fmt"
)

// ErrUnknownEndpoint is returned when a script name is not in the CGI catalog.
var ErrUnknownEndpoint = errors.New("unknown marshal endpoint")

// ErrNoSpectrum is returned by spectra calls when the portal answers with its
// "No spectrum" sentinel body instead of a tarball.
var ErrNoSpectrum = errors.New("no spectrum available")

// statusMessages documents the portal's known failure codes.
var statusMessages = map[int]string{
	304: "Not Modified: There was no new data to return",
	400: "Bad Request: The request was invalid",
	403: "Forbidden: The request is understood, but it has been refused",
	404: "Not Found: The URI requested is invalid or the resource does not exist",
	500: "Internal Server Error: Something is broken",
	503: "Service Unavailable",
}

// StatusError is a non-200 answer from the portal. It is a value the caller
// inspects, never a panic.
type StatusError struct {
	Endpoint string
	Code     int
	Body     string
}

func (e *StatusError) Error() string {
	msg, ok := statusMessages[e.Code]
	if !ok {
		msg = "Undocumented error"
	}
	return fmt.Sprintf("%s: error %d: %s", e.Endpoint, e.Code, msg)
}

// ConnectError wraps a transport-level failure that survived all retries.
type ConnectError struct {
	Endpoint string
	Attempts int
	Err      error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("%s: connection failed after %d attempts: %v", e.Endpoint, e.Attempts, e.Err)
}

func (e *ConnectError) Unwrap() error {
	return e.Err
}

// ParseError wraps a malformed portal response body.
type ParseError struct {
	Endpoint string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: cannot parse response: %v", e.Endpoint, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
