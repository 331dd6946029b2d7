// Package confirm records which artifacts were fully obtained. A marker is a
// zero-byte file; its existence is the only signal that an artifact is done.
package confirm

import (
	"fmt"
	"os"
	"path/filepath"

	"neurobik/pkg/apperr"
)

// ProviderReadyName is the marker written next to the first model's
// confirmation file once any model was fetched.
const ProviderReadyName = ".neurobik-ready"

// Marker binds an artifact identity to its confirmation file.
type Marker struct {
	identity string
	path     string
}

func New(identity, path string) Marker {
	return Marker{identity: identity, path: path}
}

// ProviderReady returns the provider marker living in dir.
func ProviderReady(dir string) Marker {
	return Marker{identity: ProviderReadyName, path: filepath.Join(dir, ProviderReadyName)}
}

func (m Marker) Identity() string { return m.identity }
func (m Marker) Path() string     { return m.path }
func (m Marker) Dir() string      { return filepath.Dir(m.path) }

func (m Marker) String() string {
	return fmt.Sprintf("%s (%s)", m.identity, m.path)
}

// Exists reports whether the confirmation file is present. A dangling
// symlink at the path counts as present.
func (m Marker) Exists() bool {
	if m.path == "" {
		return false
	}
	_, err := os.Lstat(m.path)
	return err == nil
}

// Create makes the parent directory and an empty confirmation file. An
// existing file is left untouched.
func (m Marker) Create() error {
	if m.path == "" {
		return fmt.Errorf("%w: empty confirmation path for %s", apperr.ErrFilesystem, m.identity)
	}
	if err := os.MkdirAll(filepath.Dir(m.path), 0755); err != nil {
		return fmt.Errorf("%w: failed to create directory for %s: %v", apperr.ErrFilesystem, m.path, err)
	}
	f, err := os.OpenFile(m.path, os.O_WRONLY|os.O_CREATE, 0644)
	if err != nil {
		return fmt.Errorf("%w: failed to create confirmation file %s: %v", apperr.ErrFilesystem, m.path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: failed to close confirmation file %s: %v", apperr.ErrFilesystem, m.path, err)
	}
	return nil
}
