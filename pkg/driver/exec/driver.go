package exec

import "context"

// Runner is the capability to invoke external tools. Fetchers depend on it
// instead of os/exec so tests can record argument vectors.
type Runner interface {
	// Run executes argv[0] with argv[1:] and blocks until it exits. A
	// non-zero exit is returned as an error.
	Run(ctx context.Context, argv []string) error
	// LookPath resolves a tool name on PATH.
	LookPath(name string) (string, error)
}
