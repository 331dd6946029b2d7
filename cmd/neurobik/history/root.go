package history

import (
	"fmt"
	"text/tabwriter"
	"time"

	"neurobik/pkg/history"

	"github.com/spf13/cobra"
)

func GetCommand() *cobra.Command {
	var dbPath string
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded fetch attempts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dbPath == "" {
				var err error
				if dbPath, err = history.DefaultPath(); err != nil {
					return err
				}
			}
			journal, err := history.Open(dbPath)
			if err != nil {
				return err
			}
			defer journal.Close()

			entries, err := journal.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No fetches recorded.")
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "TIME\tKIND\tNAME\tOUTCOME\tDURATION\tERROR")
			for _, e := range entries {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
					e.StartedAt.Format("2006-01-02 15:04:05"), e.Kind, e.Name, e.Outcome,
					e.Duration.Round(time.Second), e.Error)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&dbPath, "history-db", "", "Download journal location (defaults to $XDG_STATE_HOME/neurobik/history.db)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of entries, 0 for all")
	return cmd
}
