package api

import (
	"net/http"
	"time"
)

// HTTPClient is the transport used to execute requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// NewHTTPClient creates the default transport with the given per-request
// timeout.
func NewHTTPClient(timeout time.Duration) HTTPClient {
	return &http.Client{
		Timeout: timeout,
	}
}
