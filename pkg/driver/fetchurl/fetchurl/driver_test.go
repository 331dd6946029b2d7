package fetchurl

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	fetchurldriver "neurobik/pkg/driver/fetchurl"
)

func TestServersFromEnv(t *testing.T) {
	t.Setenv(ServersEnv, " https://a.example.com ,,https://b.example.com")
	got := ServersFromEnv()
	want := []string{"https://a.example.com", "https://b.example.com"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ServersFromEnv() = %v, want %v", got, want)
	}

	t.Setenv(ServersEnv, "")
	if got := ServersFromEnv(); got != nil {
		t.Errorf("expected nil, got %v", got)
	}
}

func TestNewMergesLibraryServers(t *testing.T) {
	t.Setenv("FETCHURL_SERVER", "https://lib.example.com")
	d := New(nil, []string{"https://a.example.com", "https://lib.example.com"})
	want := []string{"https://lib.example.com", "https://a.example.com"}
	if got := d.Servers(); !reflect.DeepEqual(got, want) {
		t.Errorf("Servers() = %v, want %v", got, want)
	}
}

func TestFetchFromMirror(t *testing.T) {
	t.Setenv("FETCHURL_SERVER", "")

	body := []byte("mirrored weights")
	sum := sha256.Sum256(body)
	hash := hex.EncodeToString(sum[:])

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/fetchurl/sha256/"+hash {
			http.NotFound(w, r)
			return
		}
		w.Write(body)
	}))
	defer srv.Close()

	d := New(srv.Client(), []string{srv.URL})
	var out bytes.Buffer
	err := d.Fetch(context.Background(), fetchurldriver.FetchOptions{
		URLs: []string{"http://origin.invalid/model.gguf"},
		Algo: "sha256",
		Hash: hash,
		Out:  &out,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(out.Bytes(), body) {
		t.Errorf("got %q, want %q", out.Bytes(), body)
	}
}

func TestFetchRejectsIncompleteOptions(t *testing.T) {
	d := New(nil, nil)
	if err := d.Fetch(context.Background(), fetchurldriver.FetchOptions{}); err == nil {
		t.Error("expected error without URLs")
	}
	if err := d.Fetch(context.Background(), fetchurldriver.FetchOptions{URLs: []string{"http://x"}}); err == nil {
		t.Error("expected error without output writer")
	}
}
