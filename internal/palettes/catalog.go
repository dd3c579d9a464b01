// Package palettes holds named color palettes that callers can pick by id
// instead of listing hex colors.
package palettes

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/ironsheep/pixelart-mcp/internal/pixelart"
)

// ErrUnknownPalette reports a lookup for an id that is not registered.
var ErrUnknownPalette = errors.New("unknown palette")

// Palette is a named, ordered list of hex colors.
type Palette struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Colors []string `json:"colors"`
}

// Parse converts the palette's colors for the conversion engine.
func (p Palette) Parse() (pixelart.Palette, error) {
	return pixelart.ParsePalette(p.Colors)
}

// Builtin returns the palettes every Catalog from Default starts with.
func Builtin() []Palette {
	return []Palette{
		{ID: "gameboy", Name: "Game Boy", Colors: []string{"#0f380f", "#306230", "#8bac0f", "#9bbc0f"}},
		{ID: "nes", Name: "NES", Colors: []string{"#000000", "#fcfcfc", "#f8f8f8", "#bcbcbc"}},
		{ID: "cga", Name: "CGA", Colors: []string{"#000000", "#555555", "#aaaaaa", "#ffffff"}},
		{ID: "pico8", Name: "PICO-8", Colors: []string{"#000000", "#1D2B53", "#7E2553", "#008751"}},
		{ID: "moody", Name: "Moody Purple", Colors: []string{"#5e315b", "#8c3f5d", "#ba6156", "#f2a65a"}},
	}
}

// DefaultID is the palette used when a request names none.
const DefaultID = "gameboy"

// Catalog is a set of palettes keyed by lower-case id. It is safe for
// concurrent use.
type Catalog struct {
	mu   sync.RWMutex
	byID map[string]Palette
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{byID: make(map[string]Palette)}
}

// Default returns a catalog holding the built-in palettes.
func Default() *Catalog {
	c := NewCatalog()
	for _, p := range Builtin() {
		if err := c.Register(p); err != nil {
			panic(fmt.Sprintf("builtin palette %s: %v", p.ID, err))
		}
	}
	return c
}

// Register adds p, replacing any palette with the same id. Every color is
// validated first.
func (c *Catalog) Register(p Palette) error {
	id := strings.ToLower(strings.TrimSpace(p.ID))
	if id == "" {
		return fmt.Errorf("palette id is required")
	}
	if _, err := p.Parse(); err != nil {
		return fmt.Errorf("palette %s: %w", id, err)
	}

	p.ID = id
	if p.Name == "" {
		p.Name = id
	}
	p.Colors = append([]string(nil), p.Colors...)

	c.mu.Lock()
	c.byID[id] = p
	c.mu.Unlock()
	return nil
}

// Lookup returns the palette with the given id, ignoring case.
func (c *Catalog) Lookup(id string) (Palette, bool) {
	c.mu.RLock()
	p, ok := c.byID[strings.ToLower(strings.TrimSpace(id))]
	c.mu.RUnlock()
	if !ok {
		return Palette{}, false
	}
	p.Colors = append([]string(nil), p.Colors...)
	return p, true
}

// Colors returns the hex colors of the palette with the given id.
func (c *Catalog) Colors(id string) ([]string, error) {
	p, ok := c.Lookup(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPalette, id)
	}
	return p.Colors, nil
}

// List returns all palettes sorted by id.
func (c *Catalog) List() []Palette {
	c.mu.RLock()
	out := make([]Palette, 0, len(c.byID))
	for _, p := range c.byID {
		p.Colors = append([]string(nil), p.Colors...)
		out = append(out, p)
	}
	c.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
