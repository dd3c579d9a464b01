package imaging

import (
	"fmt"
	"image"
	"image/color"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
	colorful "github.com/lucasb-eyer/go-colorful"
)

// minLabelSpacing is the smallest distance, in pixels, between two cell
// labels.
const minLabelSpacing = 24

// GridOverlayResult contains the image with grid overlay
type GridOverlayResult struct {
	EncodedImage
	BlockSize int `json:"block_size"`
	Columns   int `json:"columns"`
	Rows      int `json:"rows"`
}

// GridOverlay draws block boundaries over a pixelated image. Lines fall on
// the first pixel of every block after the first, so each outlined cell is
// one pixel-art pixel. When showCoordinates is set, cells are labeled with
// their column,row index; labels are thinned so they stay at least
// minLabelSpacing pixels apart. An unparsable gridColorHex falls back to
// semi-transparent red.
func GridOverlay(img image.Image, blockSize int, showCoordinates bool, gridColorHex string) (*GridOverlayResult, error) {
	if blockSize < 1 {
		return nil, fmt.Errorf("block size must be >= 1, got %d", blockSize)
	}

	result := imaging.Clone(img)
	width, height := result.Rect.Dx(), result.Rect.Dy()

	gridColor, err := parseHexColor(gridColorHex)
	if err != nil {
		gridColor = color.NRGBA{255, 0, 0, 128}
	}

	for x := blockSize; x < width; x += blockSize {
		for y := 0; y < height; y++ {
			blend(result, x, y, gridColor)
		}
	}
	for y := blockSize; y < height; y += blockSize {
		for x := 0; x < width; x++ {
			if x%blockSize != 0 || x == 0 {
				blend(result, x, y, gridColor)
			}
		}
	}

	columns := max(1, width/blockSize)
	rows := max(1, height/blockSize)

	if showCoordinates {
		labelColor := color.NRGBA{255, 255, 255, 255}
		bgColor := color.NRGBA{0, 0, 0, 180}
		step := (minLabelSpacing + blockSize - 1) / blockSize

		for gy := 0; gy < rows; gy += step {
			for gx := 0; gx < columns; gx += step {
				drawLabel(result, gx*blockSize+2, gy*blockSize+2, fmt.Sprintf("%d,%d", gx, gy), labelColor, bgColor)
			}
		}
	}

	encoded, err := EncodeBase64PNG(result)
	if err != nil {
		return nil, err
	}

	return &GridOverlayResult{
		EncodedImage: EncodedImage{
			Width:       width,
			Height:      height,
			ImageBase64: encoded,
			MimeType:    "image/png",
		},
		BlockSize: blockSize,
		Columns:   columns,
		Rows:      rows,
	}, nil
}

// blend composites c over the pixel at (x, y) and keeps the result opaque
// where the line is drawn.
func blend(img *image.NRGBA, x, y int, c color.NRGBA) {
	i := img.PixOffset(x, y)
	p := img.Pix[i : i+4]
	a := int(c.A)
	p[0] = uint8((int(c.R)*a + int(p[0])*(255-a)) / 255)
	p[1] = uint8((int(c.G)*a + int(p[1])*(255-a)) / 255)
	p[2] = uint8((int(c.B)*a + int(p[2])*(255-a)) / 255)
	p[3] = uint8(max(int(p[3]), a))
}

// parseHexColor parses a hex color string like "#FF0000" or "#FF000080"
func parseHexColor(hex string) (color.NRGBA, error) {
	hex = strings.TrimPrefix(hex, "#")

	var alpha uint8 = 255
	switch len(hex) {
	case 6:
	case 8:
		a, err := strconv.ParseUint(hex[6:], 16, 8)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("invalid alpha: %w", err)
		}
		alpha = uint8(a)
		hex = hex[:6]
	default:
		return color.NRGBA{}, fmt.Errorf("invalid hex color length")
	}

	if _, err := strconv.ParseUint(hex, 16, 32); err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid hex color: %w", err)
	}
	c, err := colorful.Hex("#" + strings.ToLower(hex))
	if err != nil {
		return color.NRGBA{}, err
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: alpha}, nil
}

// drawLabel draws a text label using a 3x5 pixel font.
func drawLabel(img *image.NRGBA, x, y int, text string, fg, bg color.NRGBA) {
	glyphs := map[rune][]string{
		'0': {"111", "101", "101", "101", "111"},
		'1': {"010", "110", "010", "010", "111"},
		'2': {"111", "001", "111", "100", "111"},
		'3': {"111", "001", "111", "001", "111"},
		'4': {"101", "101", "111", "001", "001"},
		'5': {"111", "100", "111", "001", "111"},
		'6': {"111", "100", "111", "101", "111"},
		'7': {"111", "001", "001", "001", "001"},
		'8': {"111", "101", "111", "101", "111"},
		'9': {"111", "101", "111", "001", "111"},
		',': {"000", "000", "000", "010", "010"},
	}

	bounds := img.Bounds()
	charWidth := 4
	labelWidth := len(text) * charWidth
	labelHeight := 7

	// Draw background
	for dy := -1; dy < labelHeight; dy++ {
		for dx := -1; dx < labelWidth; dx++ {
			px, py := x+dx, y+dy
			if px >= bounds.Min.X && px < bounds.Max.X && py >= bounds.Min.Y && py < bounds.Max.Y {
				img.Set(px, py, bg)
			}
		}
	}

	// Draw text
	cx := x
	for _, ch := range text {
		glyph, ok := glyphs[ch]
		if !ok {
			cx += charWidth
			continue
		}
		for row, line := range glyph {
			for col, pixel := range line {
				if pixel == '1' {
					px, py := cx+col, y+row
					if px >= bounds.Min.X && px < bounds.Max.X && py >= bounds.Min.Y && py < bounds.Max.Y {
						img.Set(px, py, fg)
					}
				}
			}
		}
		cx += charWidth
	}
}
