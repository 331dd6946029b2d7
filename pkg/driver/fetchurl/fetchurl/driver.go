package fetchurl

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"slices"
	"strings"

	"github.com/lucasew/fetchurl"
	fetchurldriver "neurobik/pkg/driver/fetchurl"
)

// ServersEnv lists extra mirror servers, comma-separated. Servers from the
// library's own FETCHURL_SERVER variable are kept and tried first.
const ServersEnv = "FETCHURL_SERVERS"

type Driver struct {
	fetcher *fetchurl.Fetcher
}

// New returns a driver backed by FETCHURL_SERVER plus the given mirror
// servers. A nil client falls back to http.DefaultClient.
func New(client *http.Client, servers []string) *Driver {
	f := fetchurl.NewFetcher(client)
	for _, s := range servers {
		if !slices.Contains(f.Servers, s) {
			f.Servers = append(f.Servers, s)
		}
	}
	return &Driver{fetcher: f}
}

// Servers returns the mirrors tried before the source URLs.
func (d *Driver) Servers() []string {
	return slices.Clone(d.fetcher.Servers)
}

func (d *Driver) Fetch(ctx context.Context, opts fetchurldriver.FetchOptions) error {
	if len(opts.URLs) == 0 {
		return fmt.Errorf("no URLs provided")
	}
	if opts.Out == nil {
		return fmt.Errorf("no output writer provided")
	}

	return d.fetcher.Fetch(ctx, fetchurl.FetchOptions{
		URLs: opts.URLs,
		Algo: opts.Algo,
		Hash: opts.Hash,
		Out:  opts.Out,
	})
}

// ServersFromEnv reads FETCHURL_SERVERS, e.g.
// FETCHURL_SERVERS=https://mirror1.example.com,https://mirror2.example.com
func ServersFromEnv() []string {
	env := os.Getenv(ServersEnv)
	if env == "" {
		return nil
	}

	var servers []string
	for _, s := range strings.Split(env, ",") {
		if s = strings.TrimSpace(s); s != "" {
			servers = append(servers, s)
		}
	}
	return servers
}
