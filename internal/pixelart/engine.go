package pixelart

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"

	"github.com/ironsheep/pixelart-mcp/internal/artifact"
	pximaging "github.com/ironsheep/pixelart-mcp/internal/imaging"
)

// ArtifactStore persists the final raster. *artifact.Writer implements it.
type ArtifactStore interface {
	Write(ctx context.Context, req artifact.Request) (*artifact.Artifact, error)

	// GridEnabled reports whether Write stores a grid sidecar. The engine
	// only builds the grid when it does.
	GridEnabled() bool
}

// Result is the outcome of a successful conversion.
type Result struct {
	Artifact *artifact.Artifact `json:"artifact"`

	// Grid is the logical pixel-art resolution; it matches Artifact.Width
	// and Artifact.Height.
	Grid GridSize `json:"grid"`

	// Degraded is set when palette quantization failed and the stored
	// raster is the pixelated image without palette mapping.
	Degraded       bool   `json:"degraded"`
	DegradedReason string `json:"degraded_reason,omitempty"`

	// Usage reports how much of the stored raster each palette color covers.
	Usage *UsageReport `json:"usage,omitempty"`
}

// Engine runs conversions. Create one with NewEngine.
type Engine struct {
	store     ArtifactStore
	quantizer Quantizer
	logger    *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithQuantizer replaces the default PaletteQuantizer.
func WithQuantizer(q Quantizer) EngineOption {
	return func(e *Engine) {
		if q != nil {
			e.quantizer = q
		}
	}
}

// WithLogger sets the logger used for stage events.
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewEngine returns an Engine that stores artifacts in store.
func NewEngine(store ArtifactStore, opts ...EngineOption) *Engine {
	e := &Engine{
		store:     store,
		quantizer: PaletteQuantizer{},
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Convert turns src into pixel art restricted to colors and stores it.
//
// Settings and every palette entry are validated before any pixel work. The
// stages then run in order: tone adjustment, pixelation, palette quantization
// and artifact writing. ctx is checked between stages.
//
// If quantization fails, the pixelated raster is stored instead and the
// returned Result has Degraded set; this is not an error.
//
// # Errors
//
// Fatal failures are returned as *StageError wrapping ErrDecode,
// ErrInvalidSettings, ErrInvalidColorFormat or ErrStorageWrite. A cancelled
// context is returned as a *StageError wrapping ctx.Err(). No artifact files
// remain after a failed write.
func (e *Engine) Convert(ctx context.Context, src image.Image, colors []string, s Settings) (*Result, error) {
	if src == nil || src.Bounds().Empty() {
		return nil, stageErr(StageDecode, fmt.Errorf("%w: image has no pixels", ErrDecode))
	}
	if err := s.Validate(); err != nil {
		return nil, stageErr(StageValidate, err)
	}
	palette, err := ParsePalette(colors)
	if err != nil {
		return nil, stageErr(StageValidate, err)
	}

	log := e.logger.With("block", s.PixelBlockSize, "palette_size", len(palette))
	b := src.Bounds()
	log.Debug("conversion started", "width", b.Dx(), "height", b.Dy(),
		"contrast", s.ContrastLevel, "sharpness", s.SharpnessLevel)

	if err := ctx.Err(); err != nil {
		return nil, stageErr(StageTone, err)
	}
	toned := AdjustTone(src, s.ContrastLevel, s.SharpnessLevel)

	if err := ctx.Err(); err != nil {
		return nil, stageErr(StagePixelate, err)
	}
	pixelated, grid := Pixelate(toned, s.PixelBlockSize)

	if err := ctx.Err(); err != nil {
		return nil, stageErr(StageQuantize, err)
	}
	res := &Result{Grid: grid}
	final, err := e.quantize(pixelated, palette)
	if err != nil {
		log.Warn("palette quantization failed, keeping pixelated image", "error", err)
		final = pixelated
		res.Degraded = true
		res.DegradedReason = err.Error()
	}

	req := artifact.Request{Image: final, Width: grid.W, Height: grid.H}
	if !res.Degraded && len(palette) <= artifact.MaxGridPalette && e.store.GridEnabled() {
		if req.Grid, err = BuildGrid(final, palette, s.PixelBlockSize); err != nil {
			log.Warn("failed to build grid, storing without sidecar", "error", err)
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, stageErr(StageWrite, err)
	}
	a, err := e.store.Write(ctx, req)
	if err != nil {
		if !errors.Is(err, ErrStorageWrite) {
			err = fmt.Errorf("%w: %v", ErrStorageWrite, err)
		}
		return nil, stageErr(StageWrite, err)
	}
	res.Artifact = a
	res.Usage = MeasureUsage(final, palette)

	log.Info("conversion complete", "image", a.ImagePath,
		"grid_width", grid.W, "grid_height", grid.H, "degraded", res.Degraded)
	return res, nil
}

// ConvertFile decodes the image at path and converts it.
func (e *Engine) ConvertFile(ctx context.Context, path string, colors []string, s Settings) (*Result, error) {
	img, err := pximaging.DecodeFile(path)
	if err != nil {
		return nil, stageErr(StageDecode, err)
	}
	return e.Convert(ctx, img, colors, s)
}

// ConvertBytes decodes an encoded image and converts it.
func (e *Engine) ConvertBytes(ctx context.Context, data []byte, colors []string, s Settings) (*Result, error) {
	img, err := pximaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, stageErr(StageDecode, err)
	}
	return e.Convert(ctx, img, colors, s)
}

// quantize runs the configured Quantizer and normalizes every failure,
// including a panic in a custom implementation, to ErrPaletteApplication.
func (e *Engine) quantize(img *image.NRGBA, p Palette) (out *image.NRGBA, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("%w: %v", ErrPaletteApplication, r)
		}
	}()

	out, err = e.quantizer.Quantize(img, p)
	if err != nil {
		if !errors.Is(err, ErrPaletteApplication) {
			err = fmt.Errorf("%w: %v", ErrPaletteApplication, err)
		}
		return nil, err
	}
	if out == nil || out.Rect.Dx() != img.Rect.Dx() || out.Rect.Dy() != img.Rect.Dy() {
		return nil, fmt.Errorf("%w: quantizer returned a raster of the wrong size", ErrPaletteApplication)
	}
	return out, nil
}

// BuildGrid samples the center pixel of every block (see GridOf) and records
// the palette index of each, or artifact.GridTransparent for cells below the
// alpha threshold. img need not be pixelated already.
func BuildGrid(img image.Image, p Palette, blockSize int) (*artifact.Grid, error) {
	switch {
	case len(p) == 0 || len(p) > artifact.MaxGridPalette:
		return nil, fmt.Errorf("%w: grid palette must have 1-%d colors, got %d", ErrInvalidSettings, artifact.MaxGridPalette, len(p))
	case blockSize < 1:
		return nil, fmt.Errorf("%w: pixel block size must be >= 1, got %d", ErrInvalidSettings, blockSize)
	case img == nil || img.Bounds().Empty():
		return nil, fmt.Errorf("%w: image has no pixels", ErrDecode)
	}

	cells := GridOf(toNRGBA(img), blockSize)
	g := &artifact.Grid{
		Width:   cells.Rect.Dx(),
		Height:  cells.Rect.Dy(),
		Palette: make([][3]uint8, len(p)),
		Cells:   IndexMap(cells, p),
	}
	for i, c := range p {
		g.Palette[i] = [3]uint8{c.R, c.G, c.B}
	}
	return g, nil
}
