// Package httpc holds the HTTP client go-vigil uses for outbound
// requests. http.DefaultClient has no timeout; this one does.
package httpc

import (
	"net"
	"net/http"
	"time"
)

const (
	requestTimeout = 10 * time.Second
	dialTimeout    = 5 * time.Second
)

// Client is the shared outbound HTTP client.
var Client = NewClient(requestTimeout)

// Get performs a GET with the shared client.
func Get(url string) (*http.Response, error) {
	return Client.Get(url)
}

// NewClient builds a client with a custom overall timeout but the
// shared transport settings.
func NewClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   dialTimeout,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConnsPerHost: 4,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: dialTimeout,
		},
	}
}
