package native

import (
	"crypto/tls"
	"net/http"
	"testing"
)

func TestClientAppliesTimeouts(t *testing.T) {
	d := New()
	c := d.Client()
	if c != d.Client() {
		t.Fatal("client should be built once")
	}
	if c.Timeout != 0 {
		t.Errorf("whole-request timeout must stay unset, got %s", c.Timeout)
	}
	tr, ok := c.Transport.(*http.Transport)
	if !ok {
		t.Fatalf("unexpected transport %T", c.Transport)
	}
	if tr.ResponseHeaderTimeout != DefaultTimeout {
		t.Errorf("ResponseHeaderTimeout = %s, want %s", tr.ResponseHeaderTimeout, DefaultTimeout)
	}
	if tr.TLSClientConfig == nil || tr.TLSClientConfig.RootCAs != nil {
		t.Error("TLS must verify against the system pool")
	}
	if tr.TLSClientConfig.MinVersion != tls.VersionTLS12 {
		t.Errorf("MinVersion = %x, want TLS 1.2", tr.TLSClientConfig.MinVersion)
	}
}
