package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/benoitkugler/svggeom/svgdom"
	"github.com/benoitkugler/svggeom/svgparse"
	"github.com/benoitkugler/svggeom/svgunit"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Config is read from svggeom.yaml, SVGGEOM_* variables and flags.
type Config struct {
	Viewport  ViewportConfig `mapstructure:"viewport"`
	ErrorMode string         `mapstructure:"error_mode"`
	Logger    LoggerConfig   `mapstructure:"logger"`
}

// ViewportConfig is the rendering context of the documents.
type ViewportConfig struct {
	Width    float64 `mapstructure:"width"`
	Height   float64 `mapstructure:"height"`
	FontSize float64 `mapstructure:"font_size"`
}

type LoggerConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // console or json
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("viewport.width", 300)
	v.SetDefault("viewport.height", 150)
	v.SetDefault("viewport.font_size", svgunit.DefaultFontSize)
	v.SetDefault("error_mode", "warn")
	v.SetDefault("logger.level", "warn")
	v.SetDefault("logger.format", "console")
}

// loadConfig reads the config file, if any, and the environment.
// An explicit cfgFile must exist.
func loadConfig(v *viper.Viper, cfgFile string) (Config, error) {
	setDefaults(v)
	if cfgFile != "" {
		if _, err := os.Stat(cfgFile); err != nil {
			return Config{}, fmt.Errorf("error reading config file: %w", err)
		}
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("svggeom")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("SVGGEOM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("error reading config file: %w", err)
		}
		// proceed with defaults and env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}

// parseOptions returns the options used to read the documents.
func (cfg Config) parseOptions(logger *zap.Logger) (svgparse.Options, error) {
	mode, err := svgparse.ParseErrorMode(cfg.ErrorMode)
	if err != nil {
		return svgparse.Options{}, err
	}
	return svgparse.Options{
		Mode: mode,
		Context: svgdom.Context{Viewport: svgunit.Frame{
			Width:    cfg.Viewport.Width,
			Height:   cfg.Viewport.Height,
			FontSize: cfg.Viewport.FontSize,
		}},
		Logger: logger,
	}, nil
}

// newLogger builds a development (console) or production (json)
// logger writing to stderr.
func newLogger(cfg LoggerConfig) (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	var zc zap.Config
	switch cfg.Format {
	case "json":
		zc = zap.NewProductionConfig()
	case "console", "":
		zc = zap.NewDevelopmentConfig()
	default:
		return nil, fmt.Errorf("invalid log format %q", cfg.Format)
	}
	zc.Level = level
	zc.OutputPaths = []string{"stderr"}
	zc.ErrorOutputPaths = []string{"stderr"}
	return zc.Build()
}
