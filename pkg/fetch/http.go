package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/schollz/progressbar/v3"

	"neurobik/pkg/apperr"
	"neurobik/pkg/checksum"
	fetchurldriver "neurobik/pkg/driver/fetchurl"
	"neurobik/pkg/driver/httpclient"
	"neurobik/pkg/logging"
)

const (
	chunkSize = 32 * 1024
	// DefaultIdleTimeout aborts a transfer whose body stops producing bytes.
	DefaultIdleTimeout = 30 * time.Second
)

// HTTPFetcher downloads single files over HTTP, streaming them to disk.
type HTTPFetcher struct {
	Client httpclient.Driver
	// Mirror, when set, is tried first for downloads with a known checksum.
	Mirror fetchurldriver.Driver
	// Progress receives the byte progress bar. Nil disables it.
	Progress    io.Writer
	IdleTimeout time.Duration
}

// Fetch writes url to dest. With a non-empty expected checksum the file is
// verified afterwards; a mismatch leaves dest in place and returns
// apperr.ErrIntegrity.
func (f *HTTPFetcher) Fetch(ctx context.Context, url, dest, expected string) error {
	logger := logging.GetLogger(ctx)
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("%w: failed to create %s: %v", apperr.ErrFilesystem, filepath.Dir(dest), err)
	}

	downloaded := false
	if expected != "" && f.Mirror != nil {
		logger.Debug("downloading with fetchurl", "url", url, "hash", expected)
		if err := f.fetchMirror(ctx, url, dest, expected); err == nil {
			downloaded = true
		} else {
			logger.Debug("fetchurl failed, falling back", "error", err)
		}
	}

	if !downloaded {
		logger.Debug("downloading directly", "url", url, "dest", dest)
		if err := f.fetchDirect(ctx, url, dest); err != nil {
			return err
		}
	}

	if expected == "" {
		return nil
	}
	ok, err := checksum.Verify(dest, expected)
	if err != nil {
		return fmt.Errorf("%w: failed to read %s for verification: %v", apperr.ErrFilesystem, dest, err)
	}
	if !ok {
		return fmt.Errorf("%w: checksum mismatch for %s", apperr.ErrIntegrity, dest)
	}
	logger.Debug("checksum verified", "dest", dest)
	return nil
}

func (f *HTTPFetcher) fetchMirror(ctx context.Context, url, dest, expected string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	idle := f.idleTimeout()
	w := &idleWriter{w: out, idle: newIdleTimer(idle, cancel)}
	defer w.idle.stop()

	err = f.Mirror.Fetch(ctx, fetchurldriver.FetchOptions{
		URLs: []string{url},
		Algo: "sha256",
		Hash: expected,
		Out:  w,
	})
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil && w.idle.timedOut.Load() {
		return fmt.Errorf("mirror download of %s stalled for %s: %w", url, idle, err)
	}
	return err
}

func (f *HTTPFetcher) idleTimeout() time.Duration {
	if f.IdleTimeout > 0 {
		return f.IdleTimeout
	}
	return DefaultIdleTimeout
}

func (f *HTTPFetcher) fetchDirect(ctx context.Context, url, dest string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%w: invalid url %s: %v", apperr.ErrNetwork, url, err)
	}
	var client *http.Client
	if f.Client != nil {
		client = f.Client.Client()
	} else {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: request to %s failed: %v", apperr.ErrNetwork, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: download of %s failed: %s", apperr.ErrNetwork, url, resp.Status)
	}

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("%w: failed to create %s: %v", apperr.ErrFilesystem, dest, err)
	}

	idle := f.idleTimeout()
	body := &idleReader{r: resp.Body, idle: newIdleTimer(idle, cancel)}
	defer body.idle.stop()

	file := &errWriter{w: out}
	dst := io.Writer(file)
	var bar *progressbar.ProgressBar
	if f.Progress != nil {
		bar = newBar(f.Progress, resp.ContentLength, filepath.Base(dest))
		dst = io.MultiWriter(file, bar)
	}

	_, copyErr := io.CopyBuffer(dst, body, make([]byte, chunkSize))
	closeErr := out.Close()
	if bar != nil && copyErr == nil {
		_ = bar.Finish()
	}

	switch {
	case file.err != nil:
		return fmt.Errorf("%w: failed to write %s: %v", apperr.ErrFilesystem, dest, file.err)
	case body.idle.timedOut.Load():
		return fmt.Errorf("%w: download of %s stalled for %s", apperr.ErrNetwork, url, idle)
	case copyErr != nil:
		return fmt.Errorf("%w: download of %s interrupted: %v", apperr.ErrNetwork, url, copyErr)
	case closeErr != nil:
		return fmt.Errorf("%w: failed to close %s: %v", apperr.ErrFilesystem, dest, closeErr)
	}
	return nil
}

func newBar(w io.Writer, total int64, name string) *progressbar.ProgressBar {
	return progressbar.NewOptions64(
		total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetWidth(30),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetDescription(fmt.Sprintf("Downloading %s", name)),
		progressbar.OptionThrottle(80*time.Millisecond),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(w)
		}),
	)
}

// errWriter remembers write errors so they can be told apart from read
// errors after io.Copy.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	n, err := e.w.Write(p)
	if err != nil {
		e.err = err
	}
	return n, err
}

// idleTimer cancels a transfer when touch is not called for the given period.
type idleTimer struct {
	d        time.Duration
	timer    *time.Timer
	timedOut atomic.Bool
}

func newIdleTimer(d time.Duration, cancel context.CancelFunc) *idleTimer {
	it := &idleTimer{d: d}
	it.timer = time.AfterFunc(d, func() {
		it.timedOut.Store(true)
		cancel()
	})
	return it
}

func (it *idleTimer) touch() {
	it.timer.Reset(it.d)
}

func (it *idleTimer) stop() {
	it.timer.Stop()
}

type idleReader struct {
	r    io.Reader
	idle *idleTimer
}

func (ir *idleReader) Read(p []byte) (int, error) {
	n, err := ir.r.Read(p)
	if n > 0 {
		ir.idle.touch()
	}
	return n, err
}

// idleWriter is the write-side counterpart, for transfers whose body is read
// by someone else.
type idleWriter struct {
	w    io.Writer
	idle *idleTimer
}

func (iw *idleWriter) Write(p []byte) (int, error) {
	n, err := iw.w.Write(p)
	if n > 0 {
		iw.idle.touch()
	}
	return n, err
}
