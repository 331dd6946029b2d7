package fetch

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"neurobik/pkg/apperr"
	fetchurldriver "neurobik/pkg/driver/fetchurl"
	"neurobik/pkg/driver/fetchurl/fetchurl"
	"neurobik/pkg/driver/httpclient"
)

func sha(b []byte) string {
	s := sha256.Sum256(b)
	return hex.EncodeToString(s[:])
}

func newServer(t *testing.T, body []byte) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/model.gguf":
			w.Header().Set("Content-Length", strconv.Itoa(len(body)))
			w.Write(body)
		case "/stall":
			w.Header().Set("Content-Length", "100")
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("partial"))
			w.(http.Flusher).Flush()
			<-r.Context().Done()
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPFetch(t *testing.T) {
	t.Parallel()

	body := bytes.Repeat([]byte("weights"), 20000)
	srv := newServer(t, body)
	dest := filepath.Join(t.TempDir(), "nested", "model.gguf")

	var progress bytes.Buffer
	f := &HTTPFetcher{Client: httpclient.Static{C: srv.Client()}, Progress: &progress}
	if err := f.Fetch(context.Background(), srv.URL+"/model.gguf", dest, sha(body)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, body) {
		t.Errorf("downloaded %d bytes, want %d", len(got), len(body))
	}
	if !strings.Contains(progress.String(), "model.gguf") {
		t.Errorf("progress output missing file name: %q", progress.String())
	}
}

func TestHTTPFetchChecksumMismatchKeepsFile(t *testing.T) {
	t.Parallel()

	srv := newServer(t, []byte("actual content"))
	dest := filepath.Join(t.TempDir(), "model.gguf")

	f := &HTTPFetcher{Client: httpclient.Static{C: srv.Client()}}
	err := f.Fetch(context.Background(), srv.URL+"/model.gguf", dest, sha([]byte("other content")))
	if !errors.Is(err, apperr.ErrIntegrity) {
		t.Fatalf("expected integrity error, got %v", err)
	}
	if _, statErr := os.Stat(dest); statErr != nil {
		t.Errorf("destination should be kept for inspection: %v", statErr)
	}
}

func TestHTTPFetchErrorStatus(t *testing.T) {
	t.Parallel()

	srv := newServer(t, nil)
	dest := filepath.Join(t.TempDir(), "missing.gguf")

	f := &HTTPFetcher{Client: httpclient.Static{C: srv.Client()}}
	err := f.Fetch(context.Background(), srv.URL+"/missing.gguf", dest, "")
	if !errors.Is(err, apperr.ErrNetwork) {
		t.Fatalf("expected network error, got %v", err)
	}
	if !strings.Contains(err.Error(), "404") {
		t.Errorf("error should carry the status: %v", err)
	}
	if _, statErr := os.Stat(dest); !os.IsNotExist(statErr) {
		t.Errorf("no destination file expected on error status")
	}
}

func TestHTTPFetchStalledBody(t *testing.T) {
	t.Parallel()

	srv := newServer(t, nil)
	dest := filepath.Join(t.TempDir(), "stall.gguf")

	f := &HTTPFetcher{Client: httpclient.Static{C: srv.Client()}, IdleTimeout: 100 * time.Millisecond}
	err := f.Fetch(context.Background(), srv.URL+"/stall", dest, "")
	if !errors.Is(err, apperr.ErrNetwork) {
		t.Fatalf("expected network error, got %v", err)
	}
	if !strings.Contains(err.Error(), "stalled") {
		t.Errorf("expected stall error, got %v", err)
	}
}

type fakeMirror struct {
	content []byte
	err     error
	calls   int
}

func (m *fakeMirror) Fetch(ctx context.Context, opts fetchurldriver.FetchOptions) error {
	m.calls++
	if m.err != nil {
		io.WriteString(opts.Out, "garbage")
		return m.err
	}
	_, err := opts.Out.Write(m.content)
	return err
}

func TestHTTPFetchUsesMirrorForChecksummedFiles(t *testing.T) {
	t.Parallel()

	body := []byte("mirrored")
	mirror := &fakeMirror{content: body}
	dest := filepath.Join(t.TempDir(), "model.gguf")

	f := &HTTPFetcher{Client: httpclient.Static{}, Mirror: mirror}
	if err := f.Fetch(context.Background(), "http://unreachable.invalid/model.gguf", dest, sha(body)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mirror.calls != 1 {
		t.Errorf("mirror calls = %d, want 1", mirror.calls)
	}
}

func TestHTTPFetchFallsBackWhenMirrorFails(t *testing.T) {
	t.Parallel()

	body := []byte("direct")
	srv := newServer(t, body)
	mirror := &fakeMirror{err: errors.New("no mirror has it")}
	dest := filepath.Join(t.TempDir(), "model.gguf")

	f := &HTTPFetcher{Client: httpclient.Static{C: srv.Client()}, Mirror: mirror}
	if err := f.Fetch(context.Background(), srv.URL+"/model.gguf", dest, sha(body)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ := os.ReadFile(dest)
	if !bytes.Equal(got, body) {
		t.Errorf("fallback did not overwrite mirror output: %q", got)
	}

	// Without a checksum the mirror is never consulted.
	mirror.calls = 0
	if err := f.Fetch(context.Background(), srv.URL+"/model.gguf", dest, ""); err != nil {
		t.Fatal(err)
	}
	if mirror.calls != 0 {
		t.Errorf("mirror used without checksum")
	}
}

func TestHTTPFetchMirrorStallFallsBackToDirect(t *testing.T) {
	t.Setenv("FETCHURL_SERVER", "")

	body := []byte("direct weights")
	origin := newServer(t, body)
	stalling := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "100")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("partial"))
		w.(http.Flusher).Flush()
		<-r.Context().Done()
	}))
	t.Cleanup(stalling.Close)
	dest := filepath.Join(t.TempDir(), "model.gguf")

	f := &HTTPFetcher{
		Client:      httpclient.Static{C: origin.Client()},
		Mirror:      fetchurl.New(stalling.Client(), []string{stalling.URL}),
		IdleTimeout: 100 * time.Millisecond,
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	start := time.Now()
	if err := f.Fetch(ctx, origin.URL+"/model.gguf", dest, sha(body)); err != nil {
		t.Fatalf("unexpected error after %s: %v", time.Since(start), err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("stalled mirror held the download for %s", elapsed)
	}
	got, _ := os.ReadFile(dest)
	if !bytes.Equal(got, body) {
		t.Errorf("got %q, want %q", got, body)
	}
}
