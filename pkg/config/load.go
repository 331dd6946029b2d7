package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"neurobik/pkg/apperr"
)

//go:embed schema.json
var schemaJSON string

// Load reads, schema-checks, expands and validates a configuration file.
// Supports: .yaml/.yml, .toml, .json
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: empty config path", apperr.ErrConfiguration)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrConfiguration, err)
	}
	return Parse(b, filepath.Ext(path))
}

// Parse decodes data according to ext (".yaml", ".toml", ...). The document
// is checked against the schema before it is decoded into a Config, so shape
// errors are reported by field name.
func Parse(data []byte, ext string) (*Config, error) {
	var raw any
	var decode func(*Config) error

	switch ext = strings.ToLower(ext); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("%w: invalid yaml: %v", apperr.ErrConfiguration, err)
		}
		decode = func(cfg *Config) error { return yaml.Unmarshal(data, cfg) }
	case ".toml":
		doc := map[string]any{}
		if _, err := toml.Decode(string(data), &doc); err != nil {
			return nil, fmt.Errorf("%w: invalid toml: %v", apperr.ErrConfiguration, err)
		}
		if len(doc) > 0 {
			raw = doc
		}
		decode = func(cfg *Config) error {
			_, err := toml.Decode(string(data), cfg)
			return err
		}
	case ".json":
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("%w: invalid json: %v", apperr.ErrConfiguration, err)
		}
		decode = func(cfg *Config) error { return json.Unmarshal(data, cfg) }
	default:
		return nil, fmt.Errorf("%w: unsupported config extension: %s", apperr.ErrConfiguration, ext)
	}

	if raw == nil {
		return nil, fmt.Errorf("%w: config file is empty", apperr.ErrConfiguration)
	}
	if err := validateSchema(raw); err != nil {
		return nil, err
	}

	var cfg Config
	if err := decode(&cfg); err != nil {
		return nil, fmt.Errorf("%w: invalid config: %v", apperr.ErrConfiguration, err)
	}
	cfg.ExpandVars()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validateSchema(doc any) error {
	// Round-trip through JSON so YAML and TOML specific types (dates,
	// int64) reach the validator as plain JSON values.
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(doc); err != nil {
		return fmt.Errorf("%w: config is not representable as JSON: %v", apperr.ErrConfiguration, err)
	}
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(schemaJSON),
		gojsonschema.NewBytesLoader(buf.Bytes()),
	)
	if err != nil {
		return fmt.Errorf("%w: failed to validate config: %v", apperr.ErrConfiguration, err)
	}
	if !result.Valid() {
		descs := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			descs = append(descs, desc.String())
		}
		return fmt.Errorf("%w: invalid config: %s", apperr.ErrConfiguration, strings.Join(descs, "; "))
	}
	return nil
}

// ExpandVars expands $VAR and ${VAR} in every path field. Unset variables
// are left as written.
func (c *Config) ExpandVars() {
	for i := range c.Models {
		c.Models[i].Location = expand(c.Models[i].Location)
		c.Models[i].ConfirmationFile = expand(c.Models[i].ConfirmationFile)
	}
	for i := range c.OCI {
		c.OCI[i].ConfirmationFile = expand(c.OCI[i].ConfirmationFile)
		c.OCI[i].Containerfile = expand(c.OCI[i].Containerfile)
	}
}

func expand(s string) string {
	return os.Expand(s, func(name string) string {
		if v, ok := os.LookupEnv(name); ok {
			return v
		}
		return "${" + name + "}"
	})
}
