package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"ejmap/internal/format"
	"ejmap/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List saved viewport snapshots",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if cfg.Store.Path == "" {
			return eris.New("history: store.path is not set")
		}
		indicator, _ := cmd.Flags().GetString("indicator")
		limit, _ := cmd.Flags().GetInt("limit")

		ctx := cmd.Context()
		st, err := store.Open(ctx, cfg.Store.Path)
		if err != nil {
			return err
		}
		defer st.Close()

		snaps, err := st.Recent(ctx, indicator, limit)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(snaps) == 0 {
			fmt.Fprintln(out, "no snapshots")
			return nil
		}
		for _, s := range snaps {
			pop := "-"
			if s.Available {
				pop = format.Commas(s.TotalPopulation)
			}
			fmt.Fprintf(out, "%s  %s  %-12s z%.1f  pop %s  groups %d  range %s-%s\n",
				s.ID.String()[:8], s.TakenAt.Format("2006-01-02 15:04:05"), s.Indicator, s.Zoom,
				pop, s.DistinctFeatures, format.Compact(s.Range.Low), format.Compact(s.Range.High))
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().String("indicator", "", "only show this indicator")
	historyCmd.Flags().Int("limit", 20, "maximum snapshots to list")
	rootCmd.AddCommand(historyCmd)
}
