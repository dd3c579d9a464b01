package palettes

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/pixelart-mcp/internal/pixelart"
)

func TestDefault_Builtins(t *testing.T) {
	c := Default()

	ids := make([]string, 0)
	for _, p := range c.List() {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []string{"cga", "gameboy", "moody", "nes", "pico8"}, ids)

	gb, ok := c.Lookup(DefaultID)
	require.True(t, ok)
	assert.Equal(t, "Game Boy", gb.Name)
	assert.Equal(t, []string{"#0f380f", "#306230", "#8bac0f", "#9bbc0f"}, gb.Colors)
}

func TestBuiltin_AllParse(t *testing.T) {
	for _, p := range Builtin() {
		t.Run(p.ID, func(t *testing.T) {
			parsed, err := p.Parse()
			require.NoError(t, err)
			assert.Len(t, parsed, len(p.Colors))
		})
	}
}

func TestBuiltin_Colors(t *testing.T) {
	want := map[string][]string{
		"gameboy": {"#0f380f", "#306230", "#8bac0f", "#9bbc0f"},
		"nes":     {"#000000", "#fcfcfc", "#f8f8f8", "#bcbcbc"},
		"cga":     {"#000000", "#555555", "#aaaaaa", "#ffffff"},
		"pico8":   {"#000000", "#1D2B53", "#7E2553", "#008751"},
		"moody":   {"#5e315b", "#8c3f5d", "#ba6156", "#f2a65a"},
	}

	builtin := Builtin()
	require.Len(t, builtin, len(want))
	for _, p := range builtin {
		assert.Equal(t, want[p.ID], p.Colors, p.ID)
	}
}

func TestLookup_CaseInsensitive(t *testing.T) {
	c := Default()

	p, ok := c.Lookup("  PICO8 ")
	require.True(t, ok)
	assert.Equal(t, "pico8", p.ID)

	_, ok = c.Lookup("does-not-exist")
	assert.False(t, ok)
}

func TestLookup_ReturnsCopy(t *testing.T) {
	c := Default()

	p, _ := c.Lookup("gameboy")
	p.Colors[0] = "#ffffff"

	again, _ := c.Lookup("gameboy")
	assert.Equal(t, "#0f380f", again.Colors[0])
}

func TestRegister(t *testing.T) {
	c := NewCatalog()

	require.NoError(t, c.Register(Palette{ID: "Mono", Colors: []string{"#000000", "#ffffff"}}))

	p, ok := c.Lookup("mono")
	require.True(t, ok)
	assert.Equal(t, "mono", p.Name, "name defaults to id")

	require.NoError(t, c.Register(Palette{ID: "mono", Name: "Mono", Colors: []string{"#111111"}}))
	p, _ = c.Lookup("mono")
	assert.Equal(t, []string{"#111111"}, p.Colors, "register replaces")
	assert.Len(t, c.List(), 1)
}

func TestRegister_Invalid(t *testing.T) {
	c := NewCatalog()

	tests := []struct {
		name    string
		palette Palette
		target  error
	}{
		{"bad color", Palette{ID: "x", Colors: []string{"notacolor"}}, pixelart.ErrInvalidColorFormat},
		{"no colors", Palette{ID: "x"}, pixelart.ErrInvalidSettings},
		{"no id", Palette{Colors: []string{"#000000"}}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := c.Register(tt.palette)
			require.Error(t, err)
			if tt.target != nil {
				assert.ErrorIs(t, err, tt.target)
			}
		})
	}
	assert.Empty(t, c.List())
}

func TestColors_Unknown(t *testing.T) {
	_, err := Default().Colors("nope")
	assert.True(t, errors.Is(err, ErrUnknownPalette))
}
