package native

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"neurobik/pkg/logging"
)

// Driver runs tools as child processes attached to the terminal.
type Driver struct {
	Stdout io.Writer
	Stderr io.Writer
	Env    []string
}

func New() *Driver {
	return &Driver{Stdout: os.Stdout, Stderr: os.Stderr}
}

func (d *Driver) Run(ctx context.Context, argv []string) error {
	if len(argv) == 0 {
		return fmt.Errorf("empty command")
	}
	logging.GetLogger(ctx).Debug("running command", "argv", strings.Join(argv, " "))

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = d.Stdout
	cmd.Stderr = d.Stderr
	if len(d.Env) > 0 {
		cmd.Env = append(os.Environ(), d.Env...)
	}
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return fmt.Errorf("%s exited with status %d: %w", argv[0], exitErr.ExitCode(), err)
		}
		return fmt.Errorf("failed to run %s: %w", argv[0], err)
	}
	return nil
}

func (d *Driver) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}
