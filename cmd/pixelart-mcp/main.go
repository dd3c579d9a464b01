package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ironsheep/pixelart-mcp/internal/artifact"
	"github.com/ironsheep/pixelart-mcp/internal/config"
	"github.com/ironsheep/pixelart-mcp/internal/palettes"
	"github.com/ironsheep/pixelart-mcp/internal/pixelart"
	"github.com/ironsheep/pixelart-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = server.Version
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) > 0 {
		switch args[0] {
		case "--version", "-v", "version":
			fmt.Fprintf(stdout, "pixelart-mcp %s\n", Version)
			fmt.Fprintf(stdout, "  Build time: %s\n", BuildTime)
			fmt.Fprintf(stdout, "  Git commit: %s\n", GitCommit)
			return 0
		case "--help", "-h", "help":
			printHelp(stdout)
			return 0
		case "convert":
			return runConvert(args[1:], stdout, stderr)
		default:
			fmt.Fprintf(stderr, "unknown command %q, see --help\n", args[0])
			return 2
		}
	}
	return runServer(stderr)
}

func printHelp(w io.Writer) {
	fmt.Fprintln(w, "pixelart-mcp - MCP server that converts images into pixel art")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  pixelart-mcp                 Serve MCP over stdin/stdout")
	fmt.Fprintln(w, "  pixelart-mcp convert [flags] Convert one image and print the result as JSON")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Options:")
	fmt.Fprintln(w, "  --version, -v    Print version information")
	fmt.Fprintln(w, "  --help, -h       Print this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment variables:")
	fmt.Fprintf(w, "  %s       Output directory (default %s)\n", config.EnvResultsDir, config.DefaultResultsDir)
	fmt.Fprintf(w, "  %s    Thumbnail longer edge in pixels (default %d)\n", config.EnvThumbnailSize, artifact.DefaultThumbnailSize)
	fmt.Fprintf(w, "  %s     png or qoi (default png)\n", config.EnvOutputFormat)
	fmt.Fprintf(w, "  %s        Also write a .pxg.zst grid sidecar (default false)\n", config.EnvWriteGrid)
	fmt.Fprintf(w, "  %s         debug, info, warn or error (default info)\n", config.EnvLogLevel)
	fmt.Fprintf(w, "  %s   Palette used when a request names none (default %s)\n", config.EnvDefaultPalette, palettes.DefaultID)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Configure the server in your MCP client (e.g., Claude Desktop).")
}

// setup loads the configuration, applies override and builds the shared
// pieces. Logs go to stderr because stdout carries the MCP protocol.
func setup(stderr io.Writer, override func(*config.Config) error) (*config.Config, *slog.Logger, *artifact.Writer, *palettes.Catalog, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, nil, err
	}
	if override != nil {
		if err := override(cfg); err != nil {
			return nil, nil, nil, nil, err
		}
	}

	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	catalog := palettes.Default()
	if _, ok := catalog.Lookup(cfg.DefaultPalette); !ok {
		return nil, nil, nil, nil, fmt.Errorf("%s: %w: %s", config.EnvDefaultPalette, palettes.ErrUnknownPalette, cfg.DefaultPalette)
	}

	store, err := artifact.NewWriter(cfg.ResultsDir,
		artifact.WithFormat(cfg.OutputFormat),
		artifact.WithThumbnailSize(cfg.ThumbnailSize),
		artifact.WithGrid(cfg.WriteGrid),
		artifact.WithLogger(logger),
	)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	return cfg, logger, store, catalog, nil
}

func runServer(stderr io.Writer) int {
	cfg, logger, store, catalog, err := setup(stderr, nil)
	if err != nil {
		fmt.Fprintf(stderr, "pixelart-mcp: %v\n", err)
		return 1
	}

	logger.Debug("starting pixelart-mcp",
		"version", Version, "build_time", BuildTime, "commit", GitCommit,
		"results_dir", cfg.ResultsDir, "format", cfg.OutputFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(store, catalog,
		server.WithLogger(logger),
		server.WithDefaultPalette(cfg.DefaultPalette),
	)
	if err := srv.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("server error", "error", err)
		return 1
	}
	return 0
}

func runConvert(args []string, stdout, stderr io.Writer) int {
	defaults := pixelart.DefaultSettings()

	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	fs.SetOutput(stderr)
	in := fs.String("in", "", "source image `path` (required)")
	paletteID := fs.String("palette", "", "built-in palette id (default from "+config.EnvDefaultPalette+")")
	colors := fs.String("colors", "", "comma-separated hex colors; overrides -palette")
	block := fs.Int("block", defaults.PixelBlockSize, "pixel block size")
	contrast := fs.Int("contrast", defaults.ContrastLevel, "contrast level 0-100, 50 is unchanged")
	sharpness := fs.Int("sharpness", defaults.SharpnessLevel, "sharpness level 0-100, 50 is unchanged")
	out := fs.String("out", "", "results `dir` (default from "+config.EnvResultsDir+")")
	format := fs.String("format", "", "png or qoi (default from "+config.EnvOutputFormat+")")
	grid := fs.Bool("grid", false, "also write a grid sidecar")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *in == "" {
		fmt.Fprintln(stderr, "convert: -in is required")
		fs.Usage()
		return 2
	}

	cfg, logger, store, catalog, err := setup(stderr, func(c *config.Config) error {
		if *out != "" {
			c.ResultsDir = *out
		}
		if *format != "" {
			f, err := artifact.ParseFormat(*format)
			if err != nil {
				return err
			}
			c.OutputFormat = f
		}
		if *grid {
			c.WriteGrid = true
		}
		return nil
	})
	if err != nil {
		fmt.Fprintf(stderr, "pixelart-mcp: %v\n", err)
		return 1
	}

	var list []string
	if *colors != "" {
		for _, c := range strings.Split(*colors, ",") {
			list = append(list, strings.TrimSpace(c))
		}
	} else {
		id := *paletteID
		if id == "" {
			id = cfg.DefaultPalette
		}
		if list, err = catalog.Colors(id); err != nil {
			fmt.Fprintf(stderr, "convert: %v\n", err)
			return 1
		}
	}

	s := defaults
	s.PixelBlockSize = *block
	s.ContrastLevel = *contrast
	s.SharpnessLevel = *sharpness

	engine := pixelart.NewEngine(store, pixelart.WithLogger(logger))
	res, err := engine.ConvertFile(context.Background(), *in, list, s)
	if err != nil {
		fmt.Fprintf(stderr, "convert: %v\n", err)
		return 1
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		fmt.Fprintf(stderr, "convert: %v\n", err)
		return 1
	}
	if res.Degraded {
		return 3
	}
	return 0
}
