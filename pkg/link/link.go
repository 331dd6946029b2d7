// Package link maintains the default-model symlink.
package link

import (
	"fmt"
	"os"
	"path/filepath"

	"neurobik/pkg/apperr"
)

// FileName is the fixed name of the default-model symlink.
const FileName = "default-model.gguf"

// EnsureDefault points dir/default-model.gguf at target using a path
// relative to dir. Anything already at the link path, including a dangling
// link, is removed first; if that fails the old entry is kept and nothing
// is created.
func EnsureDefault(dir, target string) (string, error) {
	linkPath := filepath.Join(dir, FileName)

	rel, err := filepath.Rel(absOrSelf(dir), absOrSelf(target))
	if err != nil {
		return "", fmt.Errorf("%w: cannot express %s relative to %s: %v", apperr.ErrFilesystem, target, dir, err)
	}

	if _, err := os.Lstat(linkPath); err == nil {
		if err := os.Remove(linkPath); err != nil {
			return "", fmt.Errorf("%w: failed to remove existing symlink %s: %v", apperr.ErrFilesystem, linkPath, err)
		}
	}

	if err := os.Symlink(rel, linkPath); err != nil {
		return "", fmt.Errorf("%w: failed to create symlink %s -> %s: %v", apperr.ErrFilesystem, linkPath, rel, err)
	}
	return linkPath, nil
}

// Resolve returns the absolute path linkPath points at, without requiring
// the target to exist.
func Resolve(linkPath string) (string, error) {
	target, err := os.Readlink(linkPath)
	if err != nil {
		return "", err
	}
	if filepath.IsAbs(target) {
		return filepath.Clean(target), nil
	}
	return filepath.Join(filepath.Dir(absOrSelf(linkPath)), target), nil
}

func absOrSelf(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}
