package analyzer

import (
	"net/http"
	"time"
)

// newModelHTTPClient returns the HTTP client used for model calls.
// Deadlines come from the request context, so the client itself has no Timeout.
// Requests are never retried.
func newModelHTTPClient() *http.Client {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,

		// A handful of long-lived connections to a single API host
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 4,
		IdleConnTimeout:     90 * time.Second,

		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ForceAttemptHTTP2:     true,

		MaxResponseHeaderBytes: 64 << 10,
	}

	return &http.Client{
		Transport: transport,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			// Redirects would replay a multi-megabyte base64 body
			return http.ErrUseLastResponse
		},
	}
}
