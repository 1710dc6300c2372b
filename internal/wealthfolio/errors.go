package wealthfolio

import (
	"errors"
	"fmt"
	"net/http"
)

// UpstreamError reports a non-2xx response, or a 2xx response whose body
// could not be decoded.
type UpstreamError struct {
	StatusCode int
	Path       string
	Message    string
}

func (e *UpstreamError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("HTTP %d from %s", e.StatusCode, e.Path)
	}
	return fmt.Sprintf("HTTP %d from %s: %s", e.StatusCode, e.Path, e.Message)
}

// TransportError reports a request that never produced a usable HTTP
// response (DNS, refused connection, timeout, truncated body).
type TransportError struct {
	Path string
	Err  error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("requesting %s: %v", e.Path, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// StatusCode returns the upstream HTTP status carried by err, if any.
func StatusCode(err error) (int, bool) {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue.StatusCode, true
	}
	return 0, false
}

// IsNotFound reports whether err is an upstream 404.
func IsNotFound(err error) bool {
	status, ok := StatusCode(err)
	return ok && status == http.StatusNotFound
}
