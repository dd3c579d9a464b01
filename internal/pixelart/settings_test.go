package pixelart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()

	require.NoError(t, s.Validate())
	assert.Equal(t, 8, s.PixelBlockSize)
	assert.Equal(t, 50, s.ContrastLevel)
	assert.Equal(t, 70, s.SharpnessLevel)
	assert.Equal(t, BackgroundTransparent, s.Background)
	assert.Equal(t, AnimationNone, s.Animation)
	assert.Equal(t, StyleRetro, s.Style)
}

func TestSettings_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Settings)
		wantErr bool
	}{
		{"defaults", func(*Settings) {}, false},
		{"block size 1", func(s *Settings) { s.PixelBlockSize = 1 }, false},
		{"huge block size", func(s *Settings) { s.PixelBlockSize = 10000 }, false},
		{"levels at bounds", func(s *Settings) { s.ContrastLevel, s.SharpnessLevel = 0, 100 }, false},
		{"empty enums", func(s *Settings) { s.Background, s.Animation, s.Style = "", "", "" }, false},
		{"inert modes", func(s *Settings) {
			s.Background, s.Animation, s.Style = BackgroundPattern, AnimationFloating, StyleIsometric
		}, false},
		{"block size zero", func(s *Settings) { s.PixelBlockSize = 0 }, true},
		{"negative block size", func(s *Settings) { s.PixelBlockSize = -4 }, true},
		{"contrast below range", func(s *Settings) { s.ContrastLevel = -1 }, true},
		{"contrast above range", func(s *Settings) { s.ContrastLevel = 101 }, true},
		{"sharpness above range", func(s *Settings) { s.SharpnessLevel = 250 }, true},
		{"unknown background", func(s *Settings) { s.Background = "plaid" }, true},
		{"unknown animation", func(s *Settings) { s.Animation = "spinning" }, true},
		{"unknown style", func(s *Settings) { s.Style = "cubist" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			tt.mutate(&s)
			err := s.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidSettings)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSettings_Factors(t *testing.T) {
	s := Settings{ContrastLevel: 0, SharpnessLevel: 100}
	assert.Equal(t, 0.0, s.ContrastFactor())
	assert.Equal(t, 2.0, s.SharpnessFactor())

	s = Settings{ContrastLevel: 50, SharpnessLevel: 25}
	assert.Equal(t, 1.0, s.ContrastFactor())
	assert.Equal(t, 0.5, s.SharpnessFactor())
}
