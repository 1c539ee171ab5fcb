package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ejmap/internal/config"
	"ejmap/internal/geom"
	"ejmap/internal/layers"
	"ejmap/internal/render"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "ejmap",
	Short: "Environmental justice map explorer",
	Long:  "Browses environmental indicator layers over census block groups and summarises population and indicator distribution for the area in view.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return eris.Wrap(err, "load config")
		}
		if err := c.Validate(); err != nil {
			return err
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return eris.Wrap(err, "init logger")
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newMap builds the map from the loaded config.
func newMap(c *config.Config) *render.Map {
	return render.New(layers.Default(), render.Options{
		Width:   c.Map.Width,
		Height:  c.Map.Height,
		MinZoom: c.Map.MinZoom,
		MaxZoom: c.Map.MaxZoom,
	})
}

// bounds turns a [west, south, east, north] slice into a box; anything
// else yields an invalid box.
func bounds(v []float64) geom.BBox {
	if len(v) != 4 {
		return geom.EmptyBBox
	}
	return geom.BBox{MinX: v[0], MinY: v[1], MaxX: v[2], MaxY: v[3]}
}

// styleArg prefers the positional argument over data.style.
func styleArg(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if cfg.Data.Style != "" {
		return cfg.Data.Style, nil
	}
	return "", eris.New("no dataset: pass a path or set data.style")
}
