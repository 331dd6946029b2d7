package config

import (
	"fmt"
	"path/filepath"
	"slices"

	"neurobik/pkg/apperr"
	"neurobik/pkg/confirm"
)

var (
	ModelProviders = []string{"ollama", "llama.cpp", "ramalama"}
	OCIProviders   = []string{"podman", "docker"}
)

const DefaultOCIProvider = "podman"

type ModelItem struct {
	RepoName         string `json:"repo_name" yaml:"repo_name" toml:"repo_name"`
	ModelName        string `json:"model_name" yaml:"model_name" toml:"model_name"`
	Location         string `json:"location" yaml:"location" toml:"location"`
	ConfirmationFile string `json:"confirmation_file" yaml:"confirmation_file" toml:"confirmation_file"`
	Checksum         string `json:"checksum,omitempty" yaml:"checksum,omitempty" toml:"checksum,omitempty"`
	// URL switches the model from a delegated pull to a direct HTTP download.
	URL string `json:"url,omitempty" yaml:"url,omitempty" toml:"url,omitempty"`
}

type OCIItem struct {
	Image            string   `json:"image" yaml:"image" toml:"image"`
	ConfirmationFile string   `json:"confirmation_file" yaml:"confirmation_file" toml:"confirmation_file"`
	Containerfile    string   `json:"containerfile,omitempty" yaml:"containerfile,omitempty" toml:"containerfile,omitempty"`
	BuildArgs        []string `json:"build_args,omitempty" yaml:"build_args,omitempty" toml:"build_args,omitempty"`
}

// Config is the validated configuration. Zero values mean "unspecified".
type Config struct {
	ModelProvider string      `json:"model_provider,omitempty" yaml:"model_provider,omitempty" toml:"model_provider,omitempty"`
	OCIProvider   string      `json:"oci_provider,omitempty" yaml:"oci_provider,omitempty" toml:"oci_provider,omitempty"`
	DefaultGGUF   string      `json:"default_gguf,omitempty" yaml:"default_gguf,omitempty" toml:"default_gguf,omitempty"`
	Models        []ModelItem `json:"models,omitempty" yaml:"models,omitempty" toml:"models,omitempty"`
	OCI           []OCIItem   `json:"oci,omitempty" yaml:"oci,omitempty" toml:"oci,omitempty"`
}

// Validate checks values and cross-field relationships.
func (c *Config) Validate() error {
	if c.OCIProvider == "" {
		c.OCIProvider = DefaultOCIProvider
	}
	if c.ModelProvider != "" && len(c.Models) > 0 && !slices.Contains(ModelProviders, c.ModelProvider) {
		return fmt.Errorf("%w: unsupported model_provider: %s", apperr.ErrConfiguration, c.ModelProvider)
	}
	if len(c.OCI) > 0 && !slices.Contains(OCIProviders, c.OCIProvider) {
		return fmt.Errorf("%w: unsupported oci_provider: %s", apperr.ErrConfiguration, c.OCIProvider)
	}

	seen := map[string]bool{}
	for i, m := range c.Models {
		if seen[m.ModelName] {
			return fmt.Errorf("%w: duplicate model_name %q", apperr.ErrConfiguration, m.ModelName)
		}
		seen[m.ModelName] = true
		if filepath.Clean(m.Location) == filepath.Clean(m.ConfirmationFile) {
			return fmt.Errorf("%w: models[%d]: confirmation_file must differ from location (%s)", apperr.ErrConfiguration, i, m.Location)
		}
	}
	images := map[string]bool{}
	for _, o := range c.OCI {
		if images[o.Image] {
			return fmt.Errorf("%w: duplicate oci image %q", apperr.ErrConfiguration, o.Image)
		}
		images[o.Image] = true
	}

	if c.DefaultGGUF != "" && len(c.Models) > 0 && !seen[c.DefaultGGUF] {
		return fmt.Errorf("%w: default_gguf '%s' not found in configured models", apperr.ErrConfiguration, c.DefaultGGUF)
	}
	return nil
}

// ModelArtifacts returns the configured models as artifacts, in configuration order.
func (c *Config) ModelArtifacts() []Artifact {
	out := make([]Artifact, 0, len(c.Models))
	for _, m := range c.Models {
		out = append(out, Artifact{
			Kind:         KindModel,
			Name:         m.ModelName,
			Repo:         m.RepoName,
			Destination:  m.Location,
			Confirmation: confirm.New(m.ModelName, m.ConfirmationFile),
			Checksum:     m.Checksum,
			URL:          m.URL,
		})
	}
	return out
}

// ImageArtifacts returns the configured images, in configuration order.
func (c *Config) ImageArtifacts() []Artifact {
	out := make([]Artifact, 0, len(c.OCI))
	for _, o := range c.OCI {
		a := Artifact{
			Kind:         KindImage,
			Name:         o.Image,
			Confirmation: confirm.New(o.Image, o.ConfirmationFile),
		}
		if o.Containerfile != "" {
			a.Build = &BuildSpec{
				Containerfile: o.Containerfile,
				Args:          slices.Clone(o.BuildArgs),
			}
		}
		out = append(out, a)
	}
	return out
}

// DefaultModel picks the model the default link points at: default_gguf
// when set, else the first configured model.
func (c *Config) DefaultModel() (Artifact, bool) {
	models := c.ModelArtifacts()
	if len(models) == 0 {
		return Artifact{}, false
	}
	if c.DefaultGGUF != "" {
		for _, m := range models {
			if m.Name == c.DefaultGGUF {
				return m, true
			}
		}
	}
	return models[0], true
}

// ProviderReady is the marker written next to the first model's
// confirmation file once any model was fetched.
func (c *Config) ProviderReady() (confirm.Marker, bool) {
	if len(c.Models) == 0 {
		return confirm.Marker{}, false
	}
	return confirm.ProviderReady(filepath.Dir(c.Models[0].ConfirmationFile)), true
}
