package vector

import (
	"bytes"
	"encoding/xml"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/pixelart-mcp/internal/artifact"
)

const none = artifact.GridTransparent

// twoTone is a 4x2 grid:
//
//	0 0 1 -
//	1 1 1 0
func twoTone() *artifact.Grid {
	return &artifact.Grid{
		Width:   4,
		Height:  2,
		Palette: [][3]uint8{{0x0f, 0x38, 0x0f}, {0x9b, 0xbc, 0x0f}, {0xff, 0x00, 0x00}},
		Cells:   []uint8{0, 0, 1, none, 1, 1, 1, 0},
	}
}

type svgDoc struct {
	Width  string `xml:"width,attr"`
	Height string `xml:"height,attr"`
	Rects  []struct {
		X      int    `xml:"x,attr"`
		Y      int    `xml:"y,attr"`
		Width  int    `xml:"width,attr"`
		Height int    `xml:"height,attr"`
		Style  string `xml:"style,attr"`
	} `xml:"rect"`
	Groups []struct {
		Style string `xml:"style,attr"`
		Paths []struct {
			D string `xml:"d,attr"`
		} `xml:"path"`
	} `xml:"g"`
}

func parse(t *testing.T, b []byte) svgDoc {
	t.Helper()
	var doc svgDoc
	require.NoError(t, xml.Unmarshal(b, &doc), string(b))
	return doc
}

func TestRects(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Rects(&buf, twoTone(), 10))

	doc := parse(t, buf.Bytes())
	assert.Equal(t, "40", doc.Width)
	assert.Equal(t, "20", doc.Height)
	require.Len(t, doc.Rects, 4)

	// Row 0: run of two dark cells, one light cell, transparent skipped.
	assert.Equal(t, 0, doc.Rects[0].X)
	assert.Equal(t, 20, doc.Rects[0].Width)
	assert.Equal(t, "fill:#0f380f", doc.Rects[0].Style)
	assert.Equal(t, 20, doc.Rects[1].X)
	assert.Equal(t, "fill:#9bbc0f", doc.Rects[1].Style)

	// Row 1: a run of three light cells then one dark cell.
	assert.Equal(t, 10, doc.Rects[2].Y)
	assert.Equal(t, 30, doc.Rects[2].Width)
	assert.Equal(t, 30, doc.Rects[3].X)
	assert.Equal(t, 10, doc.Rects[3].Height)

	assert.NotContains(t, buf.String(), "#ff0000", "unused palette colors are not drawn")
}

func TestRects_AllTransparent(t *testing.T) {
	g := &artifact.Grid{Width: 2, Height: 2, Palette: [][3]uint8{{0, 0, 0}}, Cells: []uint8{none, none, none, none}}

	var buf bytes.Buffer
	require.NoError(t, Rects(&buf, g, 1))

	assert.Empty(t, parse(t, buf.Bytes()).Rects)
}

func TestTrace(t *testing.T) {
	g := &artifact.Grid{
		Width:   4,
		Height:  4,
		Palette: [][3]uint8{{0, 0, 0}, {255, 255, 255}, {255, 0, 0}},
		Cells: []uint8{
			0, 0, 1, 1,
			0, 0, 1, 1,
			1, 1, 1, 1,
			1, 1, 1, none,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, Trace(&buf, g, 8))

	doc := parse(t, buf.Bytes())
	assert.Equal(t, "32", doc.Width)
	require.Len(t, doc.Groups, 2, "one group per used color")
	assert.Equal(t, "fill:#000000", doc.Groups[0].Style)
	assert.Equal(t, "fill:#ffffff", doc.Groups[1].Style)
	for _, grp := range doc.Groups {
		assert.NotEmpty(t, grp.Paths)
	}
}

func TestExport_Modes(t *testing.T) {
	for _, mode := range []Mode{"", ModeRects, ModeTraced} {
		var buf bytes.Buffer
		require.NoError(t, Export(&buf, twoTone(), mode, 4), mode)
		assert.True(t, strings.Contains(buf.String(), "<svg"), mode)
	}

	var buf bytes.Buffer
	assert.ErrorIs(t, Export(&buf, twoTone(), "mosaic", 4), ErrInvalidExport)
}

func TestExport_InvalidArgs(t *testing.T) {
	tests := []struct {
		name  string
		g     *artifact.Grid
		scale int
	}{
		{"nil grid", nil, 1},
		{"cell mismatch", &artifact.Grid{Width: 2, Height: 2, Palette: [][3]uint8{{}}, Cells: []uint8{0}}, 1},
		{"scale zero", twoTone(), 0},
		{"scale too large", twoTone(), MaxScale + 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			assert.ErrorIs(t, Rects(&buf, tt.g, tt.scale), ErrInvalidExport)
			assert.ErrorIs(t, Trace(&buf, tt.g, tt.scale), ErrInvalidExport)
			assert.Zero(t, buf.Len())
		})
	}
}

func TestExtractPaths(t *testing.T) {
	doc := `<?xml version="1.0" standalone="no"?>
<svg xmlns="http://www.w3.org/2000/svg" width="10" height="10">
<path d="M0 0 L1 1 z"/>
<g transform="translate(0,10)"><g transform="scale(0.1,-0.1)"><path d="M5 5 z"/></g></g>
<path d=""/>
</svg>`

	paths, err := extractPaths(strings.NewReader(doc))
	require.NoError(t, err)

	assert.Equal(t, []tracedPath{
		{d: "M0 0 L1 1 z"},
		{d: "M5 5 z", transform: "translate(0,10) scale(0.1,-0.1)"},
	}, paths)

	_, err = extractPaths(strings.NewReader("<svg><path"))
	assert.Error(t, err)
}

func TestLayerMask(t *testing.T) {
	mask, used := layerMask(twoTone(), 1, 2)

	assert.True(t, used)
	assert.Equal(t, 8, mask.Rect.Dx())
	assert.Equal(t, 4, mask.Rect.Dy())
	assert.Equal(t, uint8(0), mask.GrayAt(4, 0).Y)
	assert.Equal(t, uint8(0xFF), mask.GrayAt(0, 0).Y)

	_, used = layerMask(twoTone(), 2, 1)
	assert.False(t, used)
}
