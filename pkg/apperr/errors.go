// Package apperr holds the error kinds every neurobik failure is classified
// under. Wrap them with fmt.Errorf("%w: ...") and test with errors.Is.
package apperr

import "errors"

var (
	// ErrConfiguration marks an invalid or inconsistent configuration.
	// It is always raised before any network or process activity.
	ErrConfiguration = errors.New("configuration error")

	// ErrNetwork marks a failed HTTP request or a non-success status.
	ErrNetwork = errors.New("network error")

	// ErrIntegrity marks a downloaded file whose checksum did not match.
	ErrIntegrity = errors.New("checksum verification failed")

	// ErrExternalTool marks a delegated fetch whose tool exited non-zero
	// or could not be found.
	ErrExternalTool = errors.New("external tool error")

	// ErrFilesystem marks a failure to create or remove a symlink or a
	// confirmation file.
	ErrFilesystem = errors.New("filesystem error")
)

// Kind returns the sentinel err wraps, or nil when it is unclassified.
func Kind(err error) error {
	for _, k := range []error{ErrConfiguration, ErrNetwork, ErrIntegrity, ErrExternalTool, ErrFilesystem} {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}
