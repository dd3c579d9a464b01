package config

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/pixelart-mcp/internal/artifact"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(envMap(nil))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, "./images/results", cfg.ResultsDir)
	assert.Equal(t, 150, cfg.ThumbnailSize)
	assert.Equal(t, artifact.FormatPNG, cfg.OutputFormat)
	assert.False(t, cfg.WriteGrid)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, "gameboy", cfg.DefaultPalette)
}

func TestLoadFrom_Overrides(t *testing.T) {
	cfg, err := LoadFrom(envMap(map[string]string{
		EnvResultsDir:     "/tmp/out",
		EnvThumbnailSize:  "64",
		EnvOutputFormat:   "QOI",
		EnvWriteGrid:      "true",
		EnvLogLevel:       "debug",
		EnvDefaultPalette: "PICO8",
	}))
	require.NoError(t, err)

	assert.Equal(t, "/tmp/out", cfg.ResultsDir)
	assert.Equal(t, 64, cfg.ThumbnailSize)
	assert.Equal(t, artifact.FormatQOI, cfg.OutputFormat)
	assert.True(t, cfg.WriteGrid)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, "pico8", cfg.DefaultPalette)
}

func TestLoadFrom_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"thumbnail not a number", EnvThumbnailSize, "big"},
		{"thumbnail zero", EnvThumbnailSize, "0"},
		{"format", EnvOutputFormat, "jpeg"},
		{"grid flag", EnvWriteGrid, "sometimes"},
		{"log level", EnvLogLevel, "loud"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFrom(envMap(map[string]string{tt.key: tt.val}))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}

func TestLoad_ReadsProcessEnvironment(t *testing.T) {
	t.Setenv(EnvResultsDir, t.TempDir())
	t.Setenv(EnvLogLevel, "warn")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, cfg.LogLevel)
	assert.NotEqual(t, DefaultResultsDir, cfg.ResultsDir)
}
