package fetchurl

import (
	"context"
	"io"
)

// FetchOptions describes one content-addressed download. Hash is the
// lowercase hex digest the bytes written to Out must match.
type FetchOptions struct {
	URLs []string
	Algo string
	Hash string
	Out  io.Writer
}

// Driver fetches checksummed model files, asking mirror servers by hash
// before falling back to the source URLs.
type Driver interface {
	Fetch(ctx context.Context, opts FetchOptions) error
}
