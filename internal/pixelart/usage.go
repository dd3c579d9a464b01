package pixelart

import (
	"image"
	"sort"

	"github.com/disintegration/imaging"
)

// ColorUsage is the share of opaque-enough pixels mapped to one palette entry.
type ColorUsage struct {
	Index      int     `json:"index"`
	Hex        string  `json:"hex"`
	Pixels     int     `json:"pixels"`
	Percentage float64 `json:"percentage"`
}

// UsageReport summarizes how an image covers a palette.
type UsageReport struct {
	// Colors lists every palette entry, most used first. Entries with equal
	// counts keep palette order.
	Colors []ColorUsage `json:"colors"`

	TransparentPixels     int     `json:"transparent_pixels"`
	TransparentPercentage float64 `json:"transparent_percentage"`
	TotalPixels           int     `json:"total_pixels"`
}

// MeasureUsage counts, for every pixel of img, the palette entry it maps to
// under the quantizer's rules: alpha below AlphaThreshold counts as
// transparent, everything else as its nearest palette color. Percentages are
// of the total pixel count. p must not be empty.
func MeasureUsage(img image.Image, p Palette) *UsageReport {
	src := toNRGBA(img)
	counts := make([]int, len(p))
	report := &UsageReport{}

	w, h := src.Rect.Dx(), src.Rect.Dy()
	for y := 0; y < h; y++ {
		row := src.Pix[src.PixOffset(src.Rect.Min.X, src.Rect.Min.Y+y):]
		for x := 0; x < w; x++ {
			px := row[x*4 : x*4+4]
			report.TotalPixels++
			if px[3] < AlphaThreshold {
				report.TransparentPixels++
				continue
			}
			counts[p.Nearest(RGB{R: px[0], G: px[1], B: px[2]})]++
		}
	}

	report.Colors = make([]ColorUsage, len(p))
	for i, c := range p {
		report.Colors[i] = ColorUsage{
			Index:      i,
			Hex:        c.Hex(),
			Pixels:     counts[i],
			Percentage: percent(counts[i], report.TotalPixels),
		}
	}
	sort.SliceStable(report.Colors, func(i, j int) bool {
		return report.Colors[i].Pixels > report.Colors[j].Pixels
	})
	report.TransparentPercentage = percent(report.TransparentPixels, report.TotalPixels)
	return report
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}

func toNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok {
		return n
	}
	return imaging.Clone(img)
}
