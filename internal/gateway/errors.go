package gateway

import (
	"context"
	"errors"
	"fmt"
)

// FallbackMessage is used when a failed response carries no readable message.
const FallbackMessage = "Request failed"

// ErrMalformedResponse marks a 2xx response whose body does not match the
// expected shape. It is reported as an APIError with FallbackMessage.
var ErrMalformedResponse = errors.New("malformed response")

// APIError is a response outside the 2xx range, or a malformed 2xx body.
type APIError struct {
	// Status is the HTTP status code.
	Status int

	// Message is the server-supplied error text or FallbackMessage.
	Message string

	// Err is set for malformed responses.
	Err error
}

func (e *APIError) Error() string {
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// NetworkError means the request never produced a response.
type NetworkError struct {
	Method string
	URL    string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %s %s: %v", e.Method, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Message returns the human-readable text for err, suitable for showing in
// the scope that triggered the request.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	switch {
	case errors.Is(err, context.Canceled):
		return "request cancelled"
	case errors.Is(err, context.DeadlineExceeded):
		return "request timed out"
	}
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return "network error: cannot reach " + netErr.URL
	}
	return err.Error()
}

// IsNetwork reports whether err is a transport-level failure.
func IsNetwork(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr)
}

// StatusCode returns the HTTP status of an APIError, or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}
