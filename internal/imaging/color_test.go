package imaging

import (
	"image"
	"image/color"
	"testing"
)

// createInMemoryImage creates an in-memory test image
func createInMemoryImage(width, height int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// createPatternImage creates an image with different colors in each quadrant
func createPatternImage(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var c color.Color
			if x < width/2 && y < height/2 {
				c = color.RGBA{255, 0, 0, 255} // Red top-left
			} else if x >= width/2 && y < height/2 {
				c = color.RGBA{0, 255, 0, 255} // Green top-right
			} else if x < width/2 && y >= height/2 {
				c = color.RGBA{0, 0, 255, 255} // Blue bottom-left
			} else {
				c = color.RGBA{255, 255, 255, 255} // White bottom-right
			}
			img.Set(x, y, c)
		}
	}
	return img
}

func TestDominantColors_SingleColor(t *testing.T) {
	img := createInMemoryImage(10, 10, color.RGBA{0x0f, 0x38, 0x0f, 255})

	result, err := DominantColors(img, 5, 1)
	if err != nil {
		t.Fatalf("DominantColors failed: %v", err)
	}

	if len(result.Colors) != 1 {
		t.Fatalf("expected 1 color, got %d", len(result.Colors))
	}
	if result.Colors[0].Hex != "#0f380f" {
		t.Errorf("Hex: got %s, want #0f380f", result.Colors[0].Hex)
	}
	if result.Colors[0].Percentage != 100 {
		t.Errorf("Percentage: got %f, want 100", result.Colors[0].Percentage)
	}
	if result.DistinctColors != 1 {
		t.Errorf("DistinctColors: got %d, want 1", result.DistinctColors)
	}
}

func TestDominantColors_Quadrants(t *testing.T) {
	img := createPatternImage(100, 100)

	result, err := DominantColors(img, 10, 1)
	if err != nil {
		t.Fatalf("DominantColors failed: %v", err)
	}

	if len(result.Colors) != 4 {
		t.Fatalf("expected 4 colors, got %d", len(result.Colors))
	}
	for _, c := range result.Colors {
		if c.Percentage != 25 {
			t.Errorf("%s: got %f%%, want 25%%", c.Hex, c.Percentage)
		}
	}
	// Equal shares are ordered by hex.
	if result.Colors[0].Hex != "#0000ff" {
		t.Errorf("first color: got %s, want #0000ff", result.Colors[0].Hex)
	}
}

func TestDominantColors_CountLimit(t *testing.T) {
	img := createPatternImage(100, 100)

	result, err := DominantColors(img, 2, 1)
	if err != nil {
		t.Fatalf("DominantColors failed: %v", err)
	}
	if len(result.Colors) != 2 {
		t.Errorf("expected 2 colors, got %d", len(result.Colors))
	}
	if result.DistinctColors != 4 {
		t.Errorf("DistinctColors: got %d, want 4", result.DistinctColors)
	}
}

func TestDominantColors_Bucketing(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 1))
	img.Set(0, 0, color.RGBA{0xf0, 0xf0, 0xf0, 255})
	img.Set(1, 0, color.RGBA{0xfa, 0xfa, 0xfa, 255})

	result, err := DominantColors(img, 5, 16)
	if err != nil {
		t.Fatalf("DominantColors failed: %v", err)
	}
	if len(result.Colors) != 1 || result.Colors[0].Hex != "#f0f0f0" {
		t.Errorf("expected single bucket #f0f0f0, got %+v", result.Colors)
	}
}

func TestDominantColors_SkipsTransparent(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 1))
	img.SetNRGBA(0, 0, color.NRGBA{255, 0, 0, 255})
	img.SetNRGBA(1, 0, color.NRGBA{0, 255, 0, 100})
	img.SetNRGBA(2, 0, color.NRGBA{0, 255, 0, 0})
	img.SetNRGBA(3, 0, color.NRGBA{255, 0, 0, 128})

	result, err := DominantColors(img, 5, 1)
	if err != nil {
		t.Fatalf("DominantColors failed: %v", err)
	}
	if len(result.Colors) != 1 {
		t.Fatalf("expected 1 color, got %+v", result.Colors)
	}
	if result.Colors[0].Hex != "#ff0000" || result.Colors[0].Percentage != 100 {
		t.Errorf("got %+v, want #ff0000 at 100%%", result.Colors[0])
	}
}

func TestDominantColors_HSL(t *testing.T) {
	tests := []struct {
		name string
		c    color.RGBA
		want HSLColor
	}{
		{"red", color.RGBA{255, 0, 0, 255}, HSLColor{H: 0, S: 100, L: 50}},
		{"green", color.RGBA{0, 255, 0, 255}, HSLColor{H: 120, S: 100, L: 50}},
		{"blue", color.RGBA{0, 0, 255, 255}, HSLColor{H: 240, S: 100, L: 50}},
		{"white", color.RGBA{255, 255, 255, 255}, HSLColor{H: 0, S: 0, L: 100}},
		{"black", color.RGBA{0, 0, 0, 255}, HSLColor{H: 0, S: 0, L: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := DominantColors(createInMemoryImage(2, 2, tt.c), 1, 1)
			if err != nil {
				t.Fatalf("DominantColors failed: %v", err)
			}
			if got := result.Colors[0].HSL; got != tt.want {
				t.Errorf("HSL: got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestDominantColors_InvalidArgs(t *testing.T) {
	img := createInMemoryImage(2, 2, color.Black)

	if _, err := DominantColors(img, 0, 1); err == nil {
		t.Error("expected error for count 0")
	}
	if _, err := DominantColors(img, 1, 0); err == nil {
		t.Error("expected error for bucket 0")
	}
}
