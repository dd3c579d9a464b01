package pixelart

import "fmt"

// BackgroundMode selects how the background of a conversion is treated.
// Only BackgroundTransparent has an effect at this layer: the output keeps its
// alpha channel. The other modes are carried for callers that composite later.
type BackgroundMode string

const (
	BackgroundTransparent BackgroundMode = "transparent"
	BackgroundSolid       BackgroundMode = "solid"
	BackgroundGradient    BackgroundMode = "gradient"
	BackgroundPattern     BackgroundMode = "pattern"
)

// AnimationMode is accepted and passed through; no animation is rendered.
type AnimationMode string

const (
	AnimationNone       AnimationMode = "none"
	AnimationBreathing  AnimationMode = "breathing"
	AnimationFlickering AnimationMode = "flickering"
	AnimationFloating   AnimationMode = "floating"
)

// Style is the pixel-art style label chosen by the user. It does not change
// the conversion.
type Style string

const (
	StyleRetro      Style = "retro"
	StyleModern     Style = "modern"
	StyleMinimalist Style = "minimalist"
	StyleDithered   Style = "dithered"
	StyleIsometric  Style = "isometric"
)

const (
	// NeutralLevel is the contrast/sharpness level that leaves the image unchanged.
	NeutralLevel = 50

	// MaxLevel is the highest accepted contrast/sharpness level.
	MaxLevel = 100
)

// Settings control a single conversion.
type Settings struct {
	// PixelBlockSize is the edge length, in source pixels, of one pixel-art block.
	PixelBlockSize int `json:"pixel_block_size"`

	// ContrastLevel and SharpnessLevel range 0-100; 50 means no change.
	ContrastLevel  int `json:"contrast_level"`
	SharpnessLevel int `json:"sharpness_level"`

	Background BackgroundMode `json:"background"`
	Animation  AnimationMode  `json:"animation"`
	Style      Style          `json:"style"`
}

// DefaultSettings returns the settings used when a caller supplies none.
func DefaultSettings() Settings {
	return Settings{
		PixelBlockSize: 8,
		ContrastLevel:  NeutralLevel,
		SharpnessLevel: 70,
		Background:     BackgroundTransparent,
		Animation:      AnimationNone,
		Style:          StyleRetro,
	}
}

// Validate checks the settings. Empty enum fields are accepted and read as
// their defaults; values are never coerced.
func (s Settings) Validate() error {
	if s.PixelBlockSize < 1 {
		return fmt.Errorf("%w: pixel block size must be >= 1, got %d", ErrInvalidSettings, s.PixelBlockSize)
	}
	if s.ContrastLevel < 0 || s.ContrastLevel > MaxLevel {
		return fmt.Errorf("%w: contrast level must be 0-%d, got %d", ErrInvalidSettings, MaxLevel, s.ContrastLevel)
	}
	if s.SharpnessLevel < 0 || s.SharpnessLevel > MaxLevel {
		return fmt.Errorf("%w: sharpness level must be 0-%d, got %d", ErrInvalidSettings, MaxLevel, s.SharpnessLevel)
	}

	switch s.Background {
	case "", BackgroundTransparent, BackgroundSolid, BackgroundGradient, BackgroundPattern:
	default:
		return fmt.Errorf("%w: unknown background mode %q", ErrInvalidSettings, s.Background)
	}
	switch s.Animation {
	case "", AnimationNone, AnimationBreathing, AnimationFlickering, AnimationFloating:
	default:
		return fmt.Errorf("%w: unknown animation mode %q", ErrInvalidSettings, s.Animation)
	}
	switch s.Style {
	case "", StyleRetro, StyleModern, StyleMinimalist, StyleDithered, StyleIsometric:
	default:
		return fmt.Errorf("%w: unknown style %q", ErrInvalidSettings, s.Style)
	}
	return nil
}

// ContrastFactor returns ContrastLevel/50.
func (s Settings) ContrastFactor() float64 {
	return float64(s.ContrastLevel) / NeutralLevel
}

// SharpnessFactor returns SharpnessLevel/50.
func (s Settings) SharpnessFactor() float64 {
	return float64(s.SharpnessLevel) / NeutralLevel
}
