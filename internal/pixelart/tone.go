package pixelart

import (
	"image"
	"math"

	"github.com/anthonynsimon/bild/adjust"
	"github.com/anthonynsimon/bild/convolution"
	"github.com/anthonynsimon/bild/parallel"
	"github.com/disintegration/imaging"
)

// smoothKernel is the 3x3 smoothing filter whose output is the "blurred"
// reference for the sharpness blend.
var smoothKernel = func() convolution.Matrix {
	k := convolution.NewKernel(3, 3)
	copy(k.Matrix, []float64{
		1, 1, 1,
		1, 5, 1,
		1, 1, 1,
	})
	return k.Normalized()
}()

// AdjustTone applies contrast and then sharpness enhancement to img and
// returns a new raster. The input is not modified.
//
// Levels use a 0-100 scale where 50 is neutral; the enhancement factor is
// level/50, so 0 maps to 0.0, 50 to 1.0 and 100 to 2.0:
//
//   - Contrast scales every channel's distance from mid-gray by the factor.
//     A factor of 0 yields flat gray.
//   - Sharpness blends between a smoothed copy (factor 0), the original
//     (factor 1) and an unsharp-masked extrapolation (factor > 1).
//
// A factor of exactly 1.0 skips the step, so neutral levels return a
// bit-identical copy. Channel values are clamped to [0, 255] after each step
// and alpha is never changed.
func AdjustTone(img image.Image, contrastLevel, sharpnessLevel int) *image.NRGBA {
	out := imaging.Clone(img)

	if f := float64(contrastLevel) / NeutralLevel; f != 1.0 {
		out = enhanceContrast(out, f)
	}
	if f := float64(sharpnessLevel) / NeutralLevel; f != 1.0 {
		out = enhanceSharpness(out, f)
	}
	return out
}

// enhanceContrast delegates to bild's lookup-table contrast, whose change
// parameter is the factor minus one.
func enhanceContrast(img *image.NRGBA, factor float64) *image.NRGBA {
	return asNRGBA(adjust.Contrast(asStraightRGBA(img), factor-1))
}

func enhanceSharpness(img *image.NRGBA, factor float64) *image.NRGBA {
	// Bias 0.5 turns bild's truncating conversion into rounding.
	smooth := asNRGBA(convolution.Convolve(asStraightRGBA(img), smoothKernel, &convolution.Options{
		Bias:      0.5,
		KeepAlpha: true,
	}))

	w, h := img.Rect.Dx(), img.Rect.Dy()
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))

	parallel.Line(h, func(start, end int) {
		for y := start; y < end; y++ {
			o := img.Pix[y*img.Stride : y*img.Stride+w*4]
			s := smooth.Pix[y*smooth.Stride : y*smooth.Stride+w*4]
			d := dst.Pix[y*dst.Stride : y*dst.Stride+w*4]
			for i := 0; i < len(o); i += 4 {
				d[i+0] = blendChannel(s[i+0], o[i+0], factor)
				d[i+1] = blendChannel(s[i+1], o[i+1], factor)
				d[i+2] = blendChannel(s[i+2], o[i+2], factor)
				d[i+3] = o[i+3]
			}
		}
	})
	return dst
}

// blendChannel interpolates (or extrapolates) from the degenerate value toward
// the original by factor and clamps the result.
func blendChannel(degenerate, original uint8, factor float64) uint8 {
	v := float64(degenerate) + factor*(float64(original)-float64(degenerate))
	return clampChannel(v)
}

func clampChannel(v float64) uint8 {
	v = math.Round(v)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// asStraightRGBA reinterprets an NRGBA buffer as *image.RGBA without
// premultiplying. bild filters copy RGBA sources byte for byte and treat each
// channel independently, so they operate on the straight values directly.
func asStraightRGBA(img *image.NRGBA) *image.RGBA {
	return &image.RGBA{Pix: img.Pix, Stride: img.Stride, Rect: img.Rect}
}

// asNRGBA is the inverse of asStraightRGBA.
func asNRGBA(img *image.RGBA) *image.NRGBA {
	return &image.NRGBA{Pix: img.Pix, Stride: img.Stride, Rect: img.Rect}
}
