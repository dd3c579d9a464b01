// Package artifact persists converted pixel-art rasters.
//
// A Writer stores the full-resolution raster, a thumbnail and, optionally, a
// compressed grid sidecar in a results directory, and returns an Artifact
// record describing them. Files are written to temporary names and renamed
// into place; if any file fails, everything written for that artifact is
// removed before the error is returned, so a returned Artifact always refers
// to complete files.
package artifact

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/xfmoulet/qoi"
)

// ErrStorageWrite reports an encoding or file write failure.
var ErrStorageWrite = errors.New("storage write error")

// DefaultThumbnailSize bounds the longer edge of a thumbnail, in pixels.
const DefaultThumbnailSize = 150

// Format is a lossless output encoding.
type Format string

const (
	FormatPNG Format = "png"
	FormatQOI Format = "qoi"
)

// ParseFormat accepts "png" or "qoi" (case-insensitive). An empty string
// selects PNG.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatPNG:
		return FormatPNG, nil
	case FormatQOI:
		return FormatQOI, nil
	default:
		return "", fmt.Errorf("unsupported output format: %s", s)
	}
}

// Artifact describes the stored output of one conversion.
type Artifact struct {
	ImagePath     string `json:"image_path"`
	ThumbnailPath string `json:"thumbnail_path"`
	GridPath      string `json:"grid_path,omitempty"`

	// Width and Height are the logical pixel-art grid dimensions, not the
	// dimensions of the stored raster.
	Width  int `json:"width"`
	Height int `json:"height"`

	// Format is the encoding used. A QOI writer stores rasters with
	// translucent pixels as PNG.
	Format Format `json:"format"`
}

// Request is the input to Writer.Write.
type Request struct {
	// Image is the full-resolution raster to store.
	Image *image.NRGBA

	// Width and Height are the logical grid dimensions reported back.
	Width  int
	Height int

	// Grid is written as a sidecar when the Writer has grids enabled.
	// It may be nil.
	Grid *Grid
}

// Writer stores artifacts in a directory. A Writer is safe for concurrent
// use: every artifact gets its own UUID-derived file names.
type Writer struct {
	dir       string
	format    Format
	thumbSize int
	withGrid  bool
	newID     func() string
	logger    *slog.Logger
}

// Option configures a Writer.
type Option func(*Writer)

// WithFormat selects the output encoding.
func WithFormat(f Format) Option {
	return func(w *Writer) { w.format = f }
}

// WithThumbnailSize sets the thumbnail bound. Values below 1 are ignored.
func WithThumbnailSize(n int) Option {
	return func(w *Writer) {
		if n >= 1 {
			w.thumbSize = n
		}
	}
}

// WithGrid enables the grid sidecar.
func WithGrid(enabled bool) Option {
	return func(w *Writer) { w.withGrid = enabled }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(w *Writer) {
		if l != nil {
			w.logger = l
		}
	}
}

// NewWriter creates a Writer for dir, creating the directory if needed.
func NewWriter(dir string, opts ...Option) (*Writer, error) {
	if dir == "" {
		return nil, fmt.Errorf("results directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create results directory: %w", err)
	}

	w := &Writer{
		dir:       dir,
		format:    FormatPNG,
		thumbSize: DefaultThumbnailSize,
		newID:     uuid.NewString,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Dir returns the results directory.
func (w *Writer) Dir() string {
	return w.dir
}

// Write stores the raster, its thumbnail and, if enabled and supplied, the
// grid sidecar. The thumbnail is scaled with nearest-neighbor sampling so its
// longer edge is at most the configured bound; smaller images are stored
// unscaled.
//
// # Errors
//
// Every failure wraps ErrStorageWrite. Files already written for the
// artifact are removed before returning.
func (w *Writer) Write(ctx context.Context, req Request) (*Artifact, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageWrite, err)
	}
	if req.Image == nil || req.Image.Rect.Empty() {
		return nil, fmt.Errorf("%w: empty raster", ErrStorageWrite)
	}

	format := w.formatFor(req.Image)
	id := w.newID()
	ext := "." + string(format)
	a := &Artifact{
		ImagePath:     filepath.Join(w.dir, "pixelart_"+id+ext),
		ThumbnailPath: filepath.Join(w.dir, "thumb_"+id+ext),
		Width:         req.Width,
		Height:        req.Height,
		Format:        format,
	}

	var written []string
	fail := func(err error) (*Artifact, error) {
		for _, p := range written {
			if rmErr := os.Remove(p); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
				w.logger.Warn("failed to remove partial artifact file", "path", p, "error", rmErr)
			}
		}
		return nil, fmt.Errorf("%w: %v", ErrStorageWrite, err)
	}

	if err := w.writeFile(a.ImagePath, func(out io.Writer) error {
		return encode(out, req.Image, format)
	}); err != nil {
		return fail(fmt.Errorf("image: %w", err))
	}
	written = append(written, a.ImagePath)

	thumb := imaging.Fit(req.Image, w.thumbSize, w.thumbSize, imaging.NearestNeighbor)
	if err := w.writeFile(a.ThumbnailPath, func(out io.Writer) error {
		return encode(out, thumb, format)
	}); err != nil {
		return fail(fmt.Errorf("thumbnail: %w", err))
	}
	written = append(written, a.ThumbnailPath)

	if w.withGrid && req.Grid != nil {
		gridPath := filepath.Join(w.dir, "grid_"+id+GridExt)
		if err := w.writeFile(gridPath, func(out io.Writer) error {
			return EncodeGrid(out, req.Grid)
		}); err != nil {
			return fail(fmt.Errorf("grid: %w", err))
		}
		written = append(written, gridPath)
		a.GridPath = gridPath
	}

	w.logger.Debug("artifact written",
		"image", a.ImagePath, "thumbnail", a.ThumbnailPath, "grid", a.GridPath,
		"width", a.Width, "height", a.Height)
	return a, nil
}

// GridEnabled reports whether Write stores grid sidecars.
func (w *Writer) GridEnabled() bool {
	return w.withGrid
}

// Remove deletes an artifact's files. Missing files are not an error.
func (w *Writer) Remove(a *Artifact) error {
	if a == nil {
		return nil
	}
	var errs []error
	for _, p := range []string{a.ImagePath, a.ThumbnailPath, a.GridPath} {
		if p == "" {
			continue
		}
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// formatFor returns the configured format, or PNG when the format is QOI and
// img has translucent pixels: the qoi encoder stores premultiplied color, so
// only alpha 0 and 255 survive it exactly.
func (w *Writer) formatFor(img *image.NRGBA) Format {
	if w.format != FormatQOI || !hasTranslucent(img) {
		return w.format
	}
	w.logger.Debug("translucent raster stored as png instead of qoi")
	return FormatPNG
}

func hasTranslucent(img *image.NRGBA) bool {
	b := img.Rect
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := img.Pix[img.PixOffset(b.Min.X, y):img.PixOffset(b.Max.X, y)]
		for i := 3; i < len(row); i += 4 {
			if a := row[i]; a != 0 && a != 0xFF {
				return true
			}
		}
	}
	return false
}

func encode(out io.Writer, img image.Image, format Format) error {
	switch format {
	case FormatQOI:
		return qoi.Encode(out, img)
	default:
		return imaging.Encode(out, img, imaging.PNG)
	}
}

// writeFile writes through a temporary file in the target directory and
// renames it into place. The temporary file is removed on every error path.
func (w *Writer) writeFile(path string, fill func(io.Writer) error) (err error) {
	tmp, err := os.CreateTemp(w.dir, ".partial-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmpName)
		}
	}()

	if err = fill(tmp); err != nil {
		return fmt.Errorf("failed to encode: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err = os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}
