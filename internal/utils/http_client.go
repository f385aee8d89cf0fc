package utils

import (
	"time"

	"github.com/go-resty/resty/v2"
)

// HTTPClient wraps resty.Client so the adapter can be extended without
// touching the upstream type.
type HTTPClient struct {
	*resty.Client
}

// NewHTTPClient returns a client bound to baseURL. A non-positive timeout
// leaves resty's default (no timeout).
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetHeader("User-Agent", "bookmark-sync-client")
	if timeout > 0 {
		client.SetTimeout(timeout)
	}

	return &HTTPClient{Client: client}
}
