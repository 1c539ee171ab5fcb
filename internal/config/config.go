package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Log       LogConfig     `yaml:"log" mapstructure:"log"`
	Map       MapConfig     `yaml:"map" mapstructure:"map"`
	UI        UIConfig      `yaml:"ui" mapstructure:"ui"`
	Data      DataConfig    `yaml:"data" mapstructure:"data"`
	Store     StoreConfig   `yaml:"store" mapstructure:"store"`
	Metrics   MetricsConfig `yaml:"metrics" mapstructure:"metrics"`
	Indicator string        `yaml:"indicator" mapstructure:"indicator"`
}

// LogConfig configures logging. File redirects output away from the
// terminal, which the TUI needs.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
	File   string `yaml:"file" mapstructure:"file"`
}

// MapConfig configures the viewport.
type MapConfig struct {
	MinZoom  float64   `yaml:"min_zoom" mapstructure:"min_zoom"`
	MaxZoom  float64   `yaml:"max_zoom" mapstructure:"max_zoom"`
	Width    int       `yaml:"width" mapstructure:"width"`
	Height   int       `yaml:"height" mapstructure:"height"`
	Bounds   []float64 `yaml:"bounds" mapstructure:"bounds"`
	PanStep  float64   `yaml:"pan_step" mapstructure:"pan_step"`
	ZoomStep float64   `yaml:"zoom_step" mapstructure:"zoom_step"`
}

// UIConfig configures the terminal front end.
type UIConfig struct {
	Settle time.Duration `yaml:"settle" mapstructure:"settle"`
}

// DataConfig names the dataset loaded as the map style.
type DataConfig struct {
	Style string `yaml:"style" mapstructure:"style"`
}

// StoreConfig configures the snapshot database. An empty path disables it.
type StoreConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// MetricsConfig configures the prometheus listener. Empty disables it.
type MetricsConfig struct {
	Addr string `yaml:"addr" mapstructure:"addr"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("EJMAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.file", "")
	v.SetDefault("map.min_zoom", 4.0)
	v.SetDefault("map.max_zoom", 17.0)
	v.SetDefault("map.width", 1024)
	v.SetDefault("map.height", 768)
	v.SetDefault("map.bounds", []float64{-127.18, 31.05, -111.62, 43.13})
	v.SetDefault("map.pan_step", 64.0)
	v.SetDefault("map.zoom_step", 0.5)
	v.SetDefault("ui.settle", 250*time.Millisecond)
	v.SetDefault("data.style", "")
	v.SetDefault("store.path", "")
	v.SetDefault("metrics.addr", "")
	v.SetDefault("indicator", "pm2.5")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings a command depends on.
func (c *Config) Validate() error {
	var errs []string
	if c.Map.MinZoom < 0 || c.Map.MaxZoom > 22 || c.Map.MinZoom > c.Map.MaxZoom {
		errs = append(errs, "map.min_zoom/max_zoom must satisfy 0 <= min <= max <= 22")
	}
	if c.Map.Width <= 0 || c.Map.Height <= 0 {
		errs = append(errs, "map.width and map.height must be positive")
	}
	if len(c.Map.Bounds) != 0 && len(c.Map.Bounds) != 4 {
		errs = append(errs, "map.bounds must be [west, south, east, north]")
	}
	if c.UI.Settle < 0 {
		errs = append(errs, "ui.settle must not be negative")
	}
	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	if cfg.File != "" {
		zapCfg.OutputPaths = []string{cfg.File}
		zapCfg.ErrorOutputPaths = []string{cfg.File}
	}

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
