package main

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ejmap/internal/metrics"
	"ejmap/internal/store"
	"ejmap/internal/tui"
)

var viewCmd = &cobra.Command{
	Use:   "view [dataset]",
	Short: "Open the interactive map",
	Long:  "Opens the terminal map on a dataset file or directory (GeoJSON, CSV, KML, shapefile).",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		style, err := styleArg(args)
		if err != nil {
			return err
		}
		indicator, _ := cmd.Flags().GetString("indicator")
		if indicator == "" {
			indicator = cfg.Indicator
		}

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()
		metrics.Serve(ctx, cfg.Metrics.Addr)

		var st *store.Store
		if cfg.Store.Path != "" {
			st, err = store.Open(ctx, cfg.Store.Path)
			if err != nil {
				return err
			}
			defer st.Close()
		}

		m, err := tui.New(tui.Options{
			Map:       newMap(cfg),
			Indicator: indicator,
			Style:     style,
			Bounds:    bounds(cfg.Map.Bounds),
			Settle:    cfg.UI.Settle,
			PanStep:   cfg.Map.PanStep,
			ZoomStep:  cfg.Map.ZoomStep,
			Store:     st,
		})
		if err != nil {
			return err
		}
		zap.L().Info("starting viewer", zap.String("style", style), zap.String("indicator", indicator))
		if _, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion()).Run(); err != nil {
			return eris.Wrap(err, "view: run")
		}
		return nil
	},
}

func init() {
	viewCmd.Flags().String("indicator", "", "initial indicator (pm2.5, resp, ozone, floodfactor)")
	rootCmd.AddCommand(viewCmd)
}
