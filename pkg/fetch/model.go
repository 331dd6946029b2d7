package fetch

import (
	"context"

	"neurobik/pkg/config"
	"neurobik/pkg/logging"
)

// ModelFetcher downloads models directly when they carry a URL and hands
// them to the model-repository CLI otherwise.
type ModelFetcher struct {
	HTTP   *HTTPFetcher
	Puller *ModelPuller
}

func (m *ModelFetcher) Fetch(ctx context.Context, a config.Artifact) error {
	if a.URL != "" {
		return m.HTTP.Fetch(ctx, a.URL, a.Destination, a.Checksum)
	}
	if a.Checksum != "" {
		logging.GetLogger(ctx).Debug("checksum not verified for delegated pull", "model", a.Name)
	}
	return m.Puller.Pull(ctx, a)
}

// Tool names the external tool a model needs, or "" for direct downloads.
func (m *ModelFetcher) Tool(a config.Artifact) string {
	if a.URL != "" {
		return ""
	}
	return m.Puller.tool()
}
