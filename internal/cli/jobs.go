package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/qbridge-labs/qbridge/internal/config"
	"github.com/qbridge-labs/qbridge/internal/state"
)

func newJobsCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "List recently recorded jobs from the history store",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cfg.State.Path == "" {
				return fmt.Errorf("no job history configured: set state.path in %s", config.ConfigFileName)
			}

			store := state.NewSQLiteStore(logger)
			if err := store.Open(cfg.State.Path); err != nil {
				return fmt.Errorf("failed to open job history store: %w", err)
			}
			defer store.Close()

			records, err := store.ListRecent(limit)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tSTATE\tSHOTS\tERROR\tFINISHED")
			for _, r := range records {
				errCol := "-"
				if r.ErrorKind != "" {
					errCol = string(r.ErrorKind)
				}
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n",
					r.ID, r.State, r.Shots, errCol, r.FinishedAt.Format("2006-01-02 15:04:05"))
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of jobs to list")
	return cmd
}
