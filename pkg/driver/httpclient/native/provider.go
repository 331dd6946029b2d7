package native

import (
	"crypto/tls"
	"net"
	"net/http"
	"sync"
	"time"
)

// DefaultTimeout bounds connecting, the TLS handshake and waiting for
// response headers. The body itself is bounded by the fetcher's idle timeout.
const DefaultTimeout = 30 * time.Second

type Driver struct {
	Timeout time.Duration

	once   sync.Once
	client *http.Client
}

func New() *Driver {
	return &Driver{Timeout: DefaultTimeout}
}

func (d *Driver) Client() *http.Client {
	d.once.Do(func() {
		timeout := d.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		dialer := &net.Dialer{
			Timeout:       timeout,
			KeepAlive:     30 * time.Second,
			FallbackDelay: 300 * time.Millisecond,
		}

		// No http.Client.Timeout: it would cap the whole transfer, and model
		// files take far longer than any sane ceiling.
		d.client = &http.Client{
			Transport: &http.Transport{
				Proxy:       http.ProxyFromEnvironment,
				DialContext: dialer.DialContext,

				// Nil RootCAs means the system pool, which honors SSL_CERT_FILE
				// and SSL_CERT_DIR.
				TLSClientConfig:       &tls.Config{MinVersion: tls.VersionTLS12},
				ForceAttemptHTTP2:     true,
				MaxIdleConns:          10,
				IdleConnTimeout:       90 * time.Second,
				TLSHandshakeTimeout:   10 * time.Second,
				ResponseHeaderTimeout: timeout,
				ExpectContinueTimeout: 1 * time.Second,
			},
		}
	})
	return d.client
}
