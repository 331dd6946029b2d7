package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"neurobik/cmd/neurobik/download"
	"neurobik/cmd/neurobik/history"
	"neurobik/cmd/neurobik/status"
	"neurobik/pkg/apperr"
	"neurobik/pkg/logging"
	"neurobik/pkg/registry"
	"neurobik/pkg/version"

	"github.com/spf13/cobra"
)

var Registry registry.CommandRegistry

func init() {
	Registry.Register(func(c *cobra.Command) {
		c.AddCommand(download.GetCommand())
		c.AddCommand(status.GetCommand())
		c.AddCommand(history.GetCommand())
	})
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	var verbose bool
	var logFile string
	closeLog := func() error { return nil }

	cmd := &cobra.Command{
		Use:           "neurobik",
		Short:         "neurobik - download AI models and container images from a config file",
		Version:       version.GetBuildID(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(c *cobra.Command, args []string) error {
			if logFile == "" {
				logFile = os.Getenv("NEUROBIK_LOG_FILE")
			}
			logger, closeFn, err := logging.New(logging.Options{
				Verbose: verbose,
				Stderr:  c.ErrOrStderr(),
				File:    logFile,
			})
			if err != nil {
				return err
			}
			closeLog = closeFn
			slog.SetDefault(logger)
			c.SetContext(logging.WithLogger(c.Context(), logger))
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Also write JSON logs to this file (or set NEUROBIK_LOG_FILE)")
	Registry.FillCommands(cmd)
	cmd.SetArgs(args)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := cmd.ExecuteContext(ctx)
	defer closeLog()
	if err != nil {
		slog.Error("error", "kind", errorKind(err), "err", err)
		return 1
	}
	return 0
}

func errorKind(err error) string {
	if k := apperr.Kind(err); k != nil {
		return k.Error()
	}
	return "unclassified"
}
