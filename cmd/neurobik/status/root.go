package status

import (
	"fmt"
	"io"
	"path/filepath"
	"text/tabwriter"

	"neurobik/pkg/config"
	"neurobik/pkg/link"

	"github.com/spf13/cobra"
)

func GetCommand() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show which configured artifacts are confirmed and where the default link points",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			return Print(cmd.OutOrStdout(), cfg)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to YAML, TOML or JSON config file")
	_ = cmd.MarkFlagRequired("config")
	return cmd
}

// Print writes the status table for cfg.
func Print(w io.Writer, cfg *config.Config) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "KIND\tNAME\tCONFIRMED\tCONFIRMATION FILE")
	artifacts := append(cfg.ModelArtifacts(), cfg.ImageArtifacts()...)
	for _, a := range artifacts {
		confirmed := "no"
		if a.Confirmed() {
			confirmed = "yes"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", a.Kind, a.Name, confirmed, a.Confirmation.Path())
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	def, ok := cfg.DefaultModel()
	if !ok {
		return nil
	}
	linkPath := filepath.Join(def.Confirmation.Dir(), link.FileName)
	target, err := link.Resolve(linkPath)
	if err != nil {
		fmt.Fprintf(w, "\nDefault link: %s (missing)\n", linkPath)
		return nil
	}
	fmt.Fprintf(w, "\nDefault link: %s -> %s\n", linkPath, target)
	return nil
}
