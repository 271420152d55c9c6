package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/cuemby/cloudio/pkg/storage"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded deploys",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dataDir, _ := cmd.Flags().GetString("data-dir")
		limit, _ := cmd.Flags().GetInt("limit")

		store, err := storage.NewBoltStore(dataDir)
		if err != nil {
			return err
		}
		defer store.Close()

		records, err := store.ListRecords()
		if err != nil {
			return err
		}
		if limit > 0 && len(records) > limit {
			records = records[:limit]
		}

		out := cmd.OutOrStdout()
		if len(records) == 0 {
			fmt.Fprintln(out, "No deploys recorded")
			return nil
		}

		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "STARTED\tDEPLOYMENT\tSERVICE\tPATH\tOUTCOME\tDURATION\tERROR")
		for _, r := range records {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				r.StartedAt.Format(time.RFC3339),
				r.Deployment,
				r.Service,
				r.Path,
				r.Outcome,
				r.FinishedAt.Sub(r.StartedAt).Round(time.Second),
				r.Error,
			)
		}
		return w.Flush()
	},
}

func init() {
	historyCmd.Flags().String("data-dir", defaultDataDir(), "Directory for deploy history")
	historyCmd.Flags().Int("limit", 20, "Maximum number of records to show (0 for all)")
}
