// Package config reads server settings from the environment.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/ironsheep/pixelart-mcp/internal/artifact"
	"github.com/ironsheep/pixelart-mcp/internal/palettes"
)

// Environment variables read by Load.
const (
	EnvResultsDir     = "PIXELART_RESULTS_DIR"
	EnvThumbnailSize  = "PIXELART_THUMBNAIL_SIZE"
	EnvOutputFormat   = "PIXELART_OUTPUT_FORMAT"
	EnvWriteGrid      = "PIXELART_WRITE_GRID"
	EnvLogLevel       = "PIXELART_LOG_LEVEL"
	EnvDefaultPalette = "PIXELART_DEFAULT_PALETTE"
)

// DefaultResultsDir is where artifacts go when EnvResultsDir is unset.
const DefaultResultsDir = "./images/results"

// Config holds the server settings.
type Config struct {
	ResultsDir     string
	ThumbnailSize  int
	OutputFormat   artifact.Format
	WriteGrid      bool
	LogLevel       slog.Level
	DefaultPalette string
}

// Default returns the settings used when no variables are set.
func Default() *Config {
	return &Config{
		ResultsDir:     DefaultResultsDir,
		ThumbnailSize:  artifact.DefaultThumbnailSize,
		OutputFormat:   artifact.FormatPNG,
		LogLevel:       slog.LevelInfo,
		DefaultPalette: palettes.DefaultID,
	}
}

// Load reads the configuration from the process environment.
func Load() (*Config, error) {
	return LoadFrom(os.Getenv)
}

// LoadFrom reads the configuration through getenv. Unset or empty
// variables keep their defaults; malformed values are errors.
func LoadFrom(getenv func(string) string) (*Config, error) {
	cfg := Default()

	if v := strings.TrimSpace(getenv(EnvResultsDir)); v != "" {
		cfg.ResultsDir = v
	}

	if v := strings.TrimSpace(getenv(EnvThumbnailSize)); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid %s %q: must be a positive integer", EnvThumbnailSize, v)
		}
		cfg.ThumbnailSize = n
	}

	if v := getenv(EnvOutputFormat); v != "" {
		f, err := artifact.ParseFormat(v)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvOutputFormat, err)
		}
		cfg.OutputFormat = f
	}

	if v := strings.TrimSpace(getenv(EnvWriteGrid)); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", EnvWriteGrid, v, err)
		}
		cfg.WriteGrid = b
	}

	if v := strings.TrimSpace(getenv(EnvLogLevel)); v != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(v)); err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", EnvLogLevel, v, err)
		}
	}

	if v := strings.TrimSpace(getenv(EnvDefaultPalette)); v != "" {
		cfg.DefaultPalette = strings.ToLower(v)
	}

	return cfg, nil
}
