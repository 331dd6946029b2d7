package main

import (
	"fmt"

	"neurobik/pkg/apperr"
	"neurobik/pkg/checksum"

	"github.com/spf13/cobra"
)

func init() {
	Registry.Register(func(c *cobra.Command) {
		c.AddCommand(&cobra.Command{
			Use:   "verify <file> [sha256]",
			Short: "Print or check the SHA-256 of a downloaded file",
			Example: `  neurobik verify ~/models/Qwen3-0.6B-Q6_K.gguf
  neurobik verify ~/models/Qwen3-0.6B-Q6_K.gguf 3f1c...`,
			Args: cobra.RangeArgs(1, 2),
			RunE: func(cmd *cobra.Command, args []string) error {
				if len(args) == 1 {
					sum, err := checksum.SumFile(args[0])
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", sum, args[0])
					return nil
				}
				ok, err := checksum.Verify(args[0], args[1])
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("%w: checksum mismatch for %s", apperr.ErrIntegrity, args[0])
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: OK\n", args[0])
				return nil
			},
		})
	})
}
