package client

import (
	"fmt"
	"net/http"

	"github.com/sheriffhq/sheriff/internal/errors"
)

// APIError reports a failed request. Status is zero when the request never
// produced a response.
type APIError struct {
	Method string
	URL    string
	Status int
	Body   string

	cause error
}

func (e *APIError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("NetworkError on %s %s", e.Method, e.URL)
	}
	return fmt.Sprintf("Request failed (%d) on %s %s", e.Status, e.Method, e.URL)
}

// Unwrap returns the transport error of a network failure
func (e *APIError) Unwrap() error {
	return e.cause
}

func newNetworkError(method, url string, cause error) *APIError {
	return &APIError{Method: method, URL: url, Body: cause.Error(), cause: cause}
}

func newStatusError(method, url string, status int, body string) *APIError {
	return &APIError{Method: method, URL: url, Status: status, Body: body}
}

// StatusOf returns the HTTP status carried by err, or 0
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// IsNotFound reports whether err is a 404 from the backend
func IsNotFound(err error) bool {
	return StatusOf(err) == http.StatusNotFound
}
