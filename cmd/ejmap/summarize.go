package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ejmap/internal/format"
	"ejmap/internal/render"
	"ejmap/internal/store"
	"ejmap/internal/viewport"
)

type summarizeFlags struct {
	indicator string
	zoom      float64
	lon       float64
	lat       float64
	low       float64
	high      float64
	asJSON    bool
	save      bool
}

var sumFlags summarizeFlags

var summarizeCmd = &cobra.Command{
	Use:   "summarize [dataset]",
	Short: "Summarise one viewport without the UI",
	Long:  "Loads a dataset, positions the map, and prints the population total, block group count and indicator histogram for the area in view.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		style, err := styleArg(args)
		if err != nil {
			return err
		}
		f := sumFlags
		if f.indicator == "" {
			f.indicator = cfg.Indicator
		}
		flags := cmd.Flags()

		mp := newMap(cfg)
		ctrl, err := viewport.New(mp, viewport.Options{Table: mp.Table(), Indicator: f.indicator})
		if err != nil {
			return err
		}
		defer ctrl.Close()

		ctx := cmd.Context()
		if err := ctrl.SetStyle(ctx, style); err != nil {
			return err
		}
		bb := bounds(cfg.Map.Bounds)
		if !bb.Valid() {
			bb = mp.DataBounds()
		}
		mp.FitBounds(bb)
		if flags.Changed("zoom") {
			mp.SetZoom(f.zoom)
		}
		if flags.Changed("lon") || flags.Changed("lat") {
			lon, lat := mp.Center()
			if flags.Changed("lon") {
				lon = f.lon
			}
			if flags.Changed("lat") {
				lat = f.lat
			}
			mp.SetCenter(lon, lat)
		}
		ctrl.HandleLoad()
		if flags.Changed("low") || flags.Changed("high") {
			sel := ctrl.Range().Range()
			if flags.Changed("low") {
				sel.Low = f.low
			}
			if flags.Changed("high") {
				sel.High = f.high
			}
			ctrl.Range().Set(sel.Low, sel.High)
		}
		ctrl.HandleMoveEnd()
		ctrl.HandleIdle()
		v := ctrl.View()

		if f.save {
			if cfg.Store.Path == "" {
				return eris.New("summarize: --save needs store.path")
			}
			st, err := store.Open(ctx, cfg.Store.Path)
			if err != nil {
				return err
			}
			defer st.Close()
			lon, lat := mp.Center()
			id, err := st.Save(ctx, store.FromView(v, lon, lat, time.Now()))
			if err != nil {
				return err
			}
			zap.L().Info("snapshot saved", zap.String("id", id.String()))
		}

		out := cmd.OutOrStdout()
		if f.asJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return eris.Wrap(enc.Encode(v), "summarize: encode")
		}
		printSummary(out, v, mp)
		return nil
	},
}

func printSummary(w io.Writer, v viewport.View, mp *render.Map) {
	lon, lat := mp.Center()
	fmt.Fprintf(w, "%s (%s)\n", v.Label, v.Field)
	fmt.Fprintf(w, "view: zoom %.2f at %.5f, %.5f\n", v.Zoom, lon, lat)
	fmt.Fprintf(w, "range: %s - %s\n", format.Compact(v.Range.Low), format.Compact(v.Range.High))
	if !v.Available() {
		fmt.Fprintln(w, "summary unavailable below zoom 9")
		return
	}
	s := v.Summary
	fmt.Fprintf(w, "population: %s\n", format.Commas(s.TotalPopulation))
	fmt.Fprintf(w, "block groups: %s\n", format.Commas(float64(s.DistinctFeatureCount)))
	if med, ok := s.Median(); ok {
		fmt.Fprintf(w, "median: %s\n", format.Compact(med))
	}
	for _, b := range v.Bins {
		fmt.Fprintf(w, "  %8s - %-8s %d\n", format.Compact(b.X0), format.Compact(b.X1), b.Count)
	}
}

func init() {
	fl := summarizeCmd.Flags()
	fl.StringVar(&sumFlags.indicator, "indicator", "", "indicator to summarise (default from config)")
	fl.Float64Var(&sumFlags.zoom, "zoom", 0, "zoom level (default fits the bounds)")
	fl.Float64Var(&sumFlags.lon, "lon", 0, "centre longitude")
	fl.Float64Var(&sumFlags.lat, "lat", 0, "centre latitude")
	fl.Float64Var(&sumFlags.low, "low", 0, "range filter lower bound")
	fl.Float64Var(&sumFlags.high, "high", 0, "range filter upper bound")
	fl.BoolVar(&sumFlags.asJSON, "json", false, "print the view as JSON")
	fl.BoolVar(&sumFlags.save, "save", false, "record the summary in the snapshot store")
	rootCmd.AddCommand(summarizeCmd)
}
