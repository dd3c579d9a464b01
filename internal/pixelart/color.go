package pixelart

import (
	"fmt"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// RGB is a palette color with 8-bit components. It carries no alpha; alpha is
// decided per pixel by the quantizer.
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// Hex formats the color as lower-case "#rrggbb".
func (c RGB) Hex() string {
	return colorful.Color{
		R: float64(c.R) / 255.0,
		G: float64(c.G) / 255.0,
		B: float64(c.B) / 255.0,
	}.Hex()
}

// Palette is an ordered, non-empty list of colors. Order only matters when two
// entries are equally close to a pixel: the earlier entry wins.
type Palette []RGB

// Hex returns the palette entries formatted as "#rrggbb" strings.
func (p Palette) Hex() []string {
	out := make([]string, len(p))
	for i, c := range p {
		out[i] = c.Hex()
	}
	return out
}

// HexToRGB parses a 6-digit hexadecimal color. A single leading '#' is
// optional and digits are case-insensitive.
//
// # Errors
//
// Returns an error wrapping ErrInvalidColorFormat when the string (after the
// optional '#') is not exactly six hexadecimal digits. Shorthand forms such as
// "#fff" and forms carrying alpha such as "#ffffff80" are rejected.
func HexToRGB(s string) (RGB, error) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 || !isHexDigits(hex) {
		return RGB{}, fmt.Errorf("%w: %q is not a 6-digit hex color", ErrInvalidColorFormat, s)
	}

	c, err := colorful.Hex("#" + strings.ToLower(hex))
	if err != nil {
		return RGB{}, fmt.Errorf("%w: %q: %v", ErrInvalidColorFormat, s, err)
	}
	r, g, b := c.RGB255()
	return RGB{R: r, G: g, B: b}, nil
}

func isHexDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case ch >= '0' && ch <= '9':
		case ch >= 'a' && ch <= 'f':
		case ch >= 'A' && ch <= 'F':
		default:
			return false
		}
	}
	return true
}

// ParsePalette converts hex strings into a Palette, preserving order.
//
// Every entry is parsed before the palette is returned, so a malformed color
// is reported before any pixel processing starts. An empty list is rejected
// with ErrInvalidSettings; a malformed entry with ErrInvalidColorFormat and its
// index.
func ParsePalette(colors []string) (Palette, error) {
	if len(colors) == 0 {
		return nil, fmt.Errorf("%w: palette is empty", ErrInvalidSettings)
	}
	p := make(Palette, len(colors))
	for i, s := range colors {
		c, err := HexToRGB(s)
		if err != nil {
			return nil, fmt.Errorf("palette entry %d: %w", i, err)
		}
		p[i] = c
	}
	return p, nil
}

// DistanceSquared returns the sum of squared per-channel differences between
// two colors. No square root and no perceptual weighting are applied; the
// value is only used to order candidates.
func DistanceSquared(a, b RGB) int {
	dr := int(a.R) - int(b.R)
	dg := int(a.G) - int(b.G)
	db := int(a.B) - int(b.B)
	return dr*dr + dg*dg + db*db
}

// Nearest returns the index of the palette entry closest to c. Ties resolve to
// the entry that appears first. Nearest panics on an empty palette.
func (p Palette) Nearest(c RGB) int {
	best := 0
	bestDist := DistanceSquared(c, p[0])
	for i := 1; i < len(p); i++ {
		if d := DistanceSquared(c, p[i]); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}
