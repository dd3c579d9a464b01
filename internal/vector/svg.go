// Package vector exports pixel-art grids as SVG.
//
// Two renderings are offered. Rects draws every cell as an exact square,
// merging horizontal runs of the same color. Trace runs each palette color
// through potrace and draws the smoothed outlines, which suits logos and
// sprites that are meant to be scaled up.
package vector

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"strings"

	svg "github.com/ajstarks/svgo"
	"github.com/gotranspile/gotrace"

	"github.com/ironsheep/pixelart-mcp/internal/artifact"
)

// Mode selects an SVG rendering.
type Mode string

const (
	ModeRects  Mode = "rects"
	ModeTraced Mode = "traced"
)

// MaxScale bounds the per-cell size of an export.
const MaxScale = 64

// ErrInvalidExport reports bad export arguments.
var ErrInvalidExport = errors.New("invalid export")

// Export writes g as SVG using mode. Each cell becomes scale x scale user
// units.
func Export(w io.Writer, g *artifact.Grid, mode Mode, scale int) error {
	switch mode {
	case "", ModeRects:
		return Rects(w, g, scale)
	case ModeTraced:
		return Trace(w, g, scale)
	default:
		return fmt.Errorf("%w: unknown mode %q", ErrInvalidExport, mode)
	}
}

func checkArgs(g *artifact.Grid, scale int) error {
	if g == nil || g.Width < 1 || g.Height < 1 || len(g.Cells) != g.Width*g.Height {
		return fmt.Errorf("%w: empty or malformed grid", ErrInvalidExport)
	}
	if scale < 1 || scale > MaxScale {
		return fmt.Errorf("%w: scale must be 1-%d, got %d", ErrInvalidExport, MaxScale, scale)
	}
	return nil
}

func fill(c [3]uint8) string {
	return fmt.Sprintf("fill:#%02x%02x%02x", c[0], c[1], c[2])
}

// Rects writes one <rect> per horizontal run of equal cells. Transparent
// cells are left empty.
func Rects(w io.Writer, g *artifact.Grid, scale int) error {
	if err := checkArgs(g, scale); err != nil {
		return err
	}

	canvas := svg.New(w)
	canvas.Start(g.Width*scale, g.Height*scale, `shape-rendering="crispEdges"`)
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; {
			idx := g.At(x, y)
			run := 1
			for x+run < g.Width && g.At(x+run, y) == idx {
				run++
			}
			if idx != artifact.GridTransparent {
				canvas.Rect(x*scale, y*scale, run*scale, scale, fill(g.Palette[idx]))
			}
			x += run
		}
	}
	canvas.End()
	return nil
}

// Trace writes one group of traced outlines per palette color that appears
// in the grid. The grid is expanded to scale pixels per cell before tracing
// so single cells survive potrace's speckle filter.
func Trace(w io.Writer, g *artifact.Grid, scale int) error {
	if err := checkArgs(g, scale); err != nil {
		return err
	}

	canvas := svg.New(w)
	canvas.Start(g.Width*scale, g.Height*scale)
	for idx, c := range g.Palette {
		mask, used := layerMask(g, uint8(idx), scale)
		if !used {
			continue
		}
		paths, err := tracePaths(mask)
		if err != nil {
			return fmt.Errorf("failed to trace color %d: %w", idx, err)
		}
		canvas.Gstyle(fill(c))
		for _, p := range paths {
			if p.transform != "" {
				canvas.Path(p.d, `transform="`+p.transform+`"`)
			} else {
				canvas.Path(p.d)
			}
		}
		canvas.Gend()
	}
	canvas.End()
	return nil
}

// layerMask returns a black-on-white mask of the cells holding idx.
func layerMask(g *artifact.Grid, idx uint8, scale int) (*image.Gray, bool) {
	mask := image.NewGray(image.Rect(0, 0, g.Width*scale, g.Height*scale))
	for i := range mask.Pix {
		mask.Pix[i] = 0xFF
	}

	used := false
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			if g.At(x, y) != idx {
				continue
			}
			used = true
			for py := y * scale; py < (y+1)*scale; py++ {
				for px := x * scale; px < (x+1)*scale; px++ {
					mask.SetGray(px, py, color.Gray{Y: 0})
				}
			}
		}
	}
	return mask, used
}

type tracedPath struct {
	d         string
	transform string
}

// tracePaths runs potrace over mask and returns the path data of the
// rendered SVG together with the transforms of its enclosing groups.
func tracePaths(mask *image.Gray) ([]tracedPath, error) {
	bm := gotrace.BitmapFromGray(mask, nil)
	paths, err := gotrace.Trace(bm, nil)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	sz := mask.Bounds().Size()
	if err := gotrace.Render("svg", nil, &buf, paths, sz.X, sz.Y); err != nil {
		return nil, err
	}
	return extractPaths(&buf)
}

// extractPaths collects every <path> of an SVG document along with the
// transforms of the groups around it, outermost first.
func extractPaths(r io.Reader) ([]tracedPath, error) {
	dec := xml.NewDecoder(r)
	var (
		stack []string
		out   []tracedPath
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse traced svg: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			tr := attr(t, "transform")
			stack = append(stack, tr)
			if t.Name.Local == "path" {
				if d := attr(t, "d"); d != "" {
					out = append(out, tracedPath{d: d, transform: joinTransforms(stack)})
				}
			}
		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		}
	}
}

func attr(e xml.StartElement, name string) string {
	for _, a := range e.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

func joinTransforms(stack []string) string {
	var parts []string
	for _, t := range stack {
		if t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}
