package gateway

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrDecode marks a 2xx response whose body could not be decoded.
	ErrDecode    = errors.New("decode response")
	ErrReaderNil = errors.New("upload reader is nil")
)

// APIError is returned when the backend answers with a non-2xx status.
type APIError struct {
	Method  string
	Path    string
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Status, e.Message)
}

// NetworkError is returned when no response was received at all.
type NetworkError struct {
	Method string
	Path   string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// StatusCode returns the HTTP status carried by err, or 0 when err is not an APIError.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}

// IsNetwork reports whether err means the request never completed.
func IsNetwork(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr)
}
