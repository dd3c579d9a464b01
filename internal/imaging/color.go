package imaging

import (
	"fmt"
	"image"
	"sort"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// RGBColor represents an RGB color with 8-bit components.
type RGBColor struct {
	R uint8 `json:"r"` // Red component (0-255)
	G uint8 `json:"g"` // Green component (0-255)
	B uint8 `json:"b"` // Blue component (0-255)
}

// HSLColor represents a color in HSL (Hue, Saturation, Lightness) color space.
type HSLColor struct {
	H int `json:"h"` // Hue: 0-360 degrees (0=red, 120=green, 240=blue)
	S int `json:"s"` // Saturation: 0-100 percent (0=gray, 100=vivid)
	L int `json:"l"` // Lightness: 0-100 percent (0=black, 50=normal, 100=white)
}

// ColorFrequency represents a color and its occurrence frequency in an image.
type ColorFrequency struct {
	Hex        string   `json:"hex"`        // Hex color "#rrggbb" (bucketed)
	Percentage float64  `json:"percentage"` // Percentage of counted pixels (0-100)
	RGB        RGBColor `json:"rgb"`        // RGB components (bucketed)
	HSL        HSLColor `json:"hsl"`        // HSL representation
}

// DominantColorsResult contains the most frequently occurring colors in an
// image, most common first.
type DominantColorsResult struct {
	Colors []ColorFrequency `json:"colors"`

	// DistinctColors is the number of distinct buckets found.
	DistinctColors int `json:"distinct_colors"`
}

// DominantColors returns the count most common colors of img. It is used to
// suggest a palette before conversion and to inspect converted output.
//
// # Bucketing
//
// Each 8-bit component is rounded down to a multiple of bucket before
// counting:
//
//	bucketed = (original / bucket) * bucket
//
// A bucket of 1 counts exact colors, which is what pixel-art output needs; a
// bucket of 16 groups near colors in photographs.
//
// # Transparency
//
// Pixels with alpha below 128 are not counted, matching the threshold the
// quantizer uses. Percentages are of the counted pixels.
func DominantColors(img image.Image, count, bucket int) (*DominantColorsResult, error) {
	if count < 1 {
		return nil, fmt.Errorf("count must be >= 1, got %d", count)
	}
	if bucket < 1 || bucket > 128 {
		return nil, fmt.Errorf("bucket must be 1-128, got %d", bucket)
	}

	bounds := img.Bounds()
	colorCounts := make(map[RGBColor]int)
	totalPixels := 0

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, a := img.At(x, y).RGBA()
			if a>>8 < 128 {
				continue
			}
			// Un-premultiply before bucketing so translucent pixels keep
			// their hue.
			r8, g8, b8 := unpremultiply(r, a), unpremultiply(g, a), unpremultiply(b, a)
			key := RGBColor{
				R: r8 / uint8(bucket) * uint8(bucket),
				G: g8 / uint8(bucket) * uint8(bucket),
				B: b8 / uint8(bucket) * uint8(bucket),
			}
			colorCounts[key]++
			totalPixels++
		}
	}

	colors := make([]ColorFrequency, 0, len(colorCounts))
	for rgb, cnt := range colorCounts {
		c := colorful.Color{R: float64(rgb.R) / 255, G: float64(rgb.G) / 255, B: float64(rgb.B) / 255}
		colors = append(colors, ColorFrequency{
			Hex:        c.Hex(),
			Percentage: float64(cnt) / float64(totalPixels) * 100,
			RGB:        rgb,
			HSL:        toHSL(c),
		})
	}

	sort.Slice(colors, func(i, j int) bool {
		if colors[i].Percentage != colors[j].Percentage {
			return colors[i].Percentage > colors[j].Percentage
		}
		return colors[i].Hex < colors[j].Hex
	})

	distinct := len(colors)
	if len(colors) > count {
		colors = colors[:count]
	}

	return &DominantColorsResult{Colors: colors, DistinctColors: distinct}, nil
}

func unpremultiply(v, a uint32) uint8 {
	if a == 0 {
		return 0
	}
	return uint8((v * 0xffff / a) >> 8)
}

func toHSL(c colorful.Color) HSLColor {
	h, s, l := c.Hsl()
	return HSLColor{
		H: int(h),
		S: int(s * 100),
		L: int(l * 100),
	}
}
