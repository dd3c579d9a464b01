package pixelart

import (
	"fmt"
	"image"
	"sync"

	"github.com/anthonynsimon/bild/parallel"

	"github.com/ironsheep/pixelart-mcp/internal/artifact"
)

// AlphaThreshold is the alpha value below which a pixel is emitted as fully
// transparent instead of being mapped to the palette.
const AlphaThreshold = 128

// Quantizer maps a raster onto a palette.
type Quantizer interface {
	Quantize(img *image.NRGBA, p Palette) (*image.NRGBA, error)
}

// PaletteQuantizer is the default Quantizer: nearest color by squared RGB
// distance, binary transparency at AlphaThreshold.
type PaletteQuantizer struct{}

// Quantize maps every pixel of img to the palette and returns a new raster.
//
// For each pixel:
//   - alpha < AlphaThreshold: the output is (0,0,0,0).
//   - otherwise: the RGB is replaced by the nearest palette color (first
//     entry wins on equal distance) and the alpha is copied unchanged.
//
// Rows are processed in parallel; the result does not depend on scheduling.
//
// # Errors
//
// Returns an error wrapping ErrPaletteApplication when the palette is empty,
// the raster is nil, or a worker faults part way through. No partial raster
// is returned in that case.
func (PaletteQuantizer) Quantize(img *image.NRGBA, p Palette) (*image.NRGBA, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: nil raster", ErrPaletteApplication)
	}
	if len(p) == 0 {
		return nil, fmt.Errorf("%w: empty palette", ErrPaletteApplication)
	}

	w, h := img.Rect.Dx(), img.Rect.Dy()
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))

	var (
		mu    sync.Mutex
		fault error
	)

	parallel.Line(h, func(start, end int) {
		defer func() {
			if r := recover(); r != nil {
				mu.Lock()
				if fault == nil {
					fault = fmt.Errorf("%w: rows %d-%d: %v", ErrPaletteApplication, start, end, r)
				}
				mu.Unlock()
			}
		}()

		// Pixelated rows repeat the same color for a whole block, so
		// remembering the last lookup skips most palette scans.
		var (
			last    RGB
			lastOut RGB
			primed  bool
		)
		for y := start; y < end; y++ {
			src := img.Pix[img.PixOffset(img.Rect.Min.X, img.Rect.Min.Y+y):]
			row := dst.Pix[y*dst.Stride : y*dst.Stride+w*4]
			for i := 0; i < len(row); i += 4 {
				a := src[i+3]
				if a < AlphaThreshold {
					row[i+0], row[i+1], row[i+2], row[i+3] = 0, 0, 0, 0
					continue
				}
				c := RGB{R: src[i+0], G: src[i+1], B: src[i+2]}
				if !primed || c != last {
					last, lastOut, primed = c, p[p.Nearest(c)], true
				}
				row[i+0], row[i+1], row[i+2], row[i+3] = lastOut.R, lastOut.G, lastOut.B, a
			}
		}
	})

	if fault != nil {
		return nil, fault
	}
	return dst, nil
}

// Quantize runs the default PaletteQuantizer.
func Quantize(img *image.NRGBA, p Palette) (*image.NRGBA, error) {
	return PaletteQuantizer{}.Quantize(img, p)
}

// TransparentIndex marks a transparent cell in an index map.
const TransparentIndex = artifact.GridTransparent

// IndexMap returns, for each pixel of img in row-major order, the index of
// its nearest palette entry, or TransparentIndex when alpha is below
// AlphaThreshold. The palette must hold fewer than 256 entries.
func IndexMap(img *image.NRGBA, p Palette) []uint8 {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	out := make([]uint8, 0, w*h)
	for y := 0; y < h; y++ {
		src := img.Pix[img.PixOffset(img.Rect.Min.X, img.Rect.Min.Y+y):]
		for x := 0; x < w; x++ {
			i := x * 4
			if src[i+3] < AlphaThreshold {
				out = append(out, TransparentIndex)
				continue
			}
			out = append(out, uint8(p.Nearest(RGB{R: src[i+0], G: src[i+1], B: src[i+2]})))
		}
	}
	return out
}
