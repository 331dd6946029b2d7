package httpclient

import (
	"net/http"

	"neurobik/pkg/logging"
)

// Driver provides the HTTP client used for direct artifact downloads.
type Driver interface {
	// Client returns a configured HTTP client with connect and header
	// timeouts applied
	Client() *http.Client
}

// WithLogging wraps a Driver so that every HTTP request logs the URL at Debug level.
func WithLogging(d Driver) Driver {
	return &loggingDriver{inner: d}
}

type loggingDriver struct {
	inner Driver
}

func (d *loggingDriver) Client() *http.Client {
	c := d.inner.Client()
	base := c.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	clone := *c
	clone.Transport = &loggingTransport{base: base}
	return &clone
}

type loggingTransport struct {
	base http.RoundTripper
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	logger := logging.GetLogger(req.Context())
	logger.Debug("http request", "method", req.Method, "url", req.URL.String())
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		logger.Debug("http request failed", "url", req.URL.String(), "error", err)
		return nil, err
	}
	logger.Debug("http response", "url", req.URL.String(), "status", resp.StatusCode, "length", resp.ContentLength)
	return resp, nil
}

// Static adapts an existing client to the Driver interface.
type Static struct {
	C *http.Client
}

func (s Static) Client() *http.Client {
	if s.C == nil {
		return http.DefaultClient
	}
	return s.C
}
