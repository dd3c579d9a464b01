package artifact

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
)

// GridExt is the file extension of grid sidecars.
const GridExt = ".pxg.zst"

// GridTransparent marks a transparent cell.
const GridTransparent = 0xFF

// MaxGridPalette is the largest palette a grid sidecar can index.
const MaxGridPalette = 255

var gridMagic = [4]byte{'P', 'X', 'G', '1'}

// ErrInvalidGrid reports a malformed grid or grid file.
var ErrInvalidGrid = errors.New("invalid grid")

// Grid is the logical pixel-art image: one palette index per block, row-major.
type Grid struct {
	Width   int
	Height  int
	Palette [][3]uint8
	Cells   []uint8
}

// At returns the palette index of cell (x, y).
func (g *Grid) At(x, y int) uint8 {
	return g.Cells[y*g.Width+x]
}

func (g *Grid) validate() error {
	switch {
	case g.Width < 1 || g.Height < 1 || g.Width > 0xFFFF || g.Height > 0xFFFF:
		return fmt.Errorf("%w: dimensions %dx%d", ErrInvalidGrid, g.Width, g.Height)
	case len(g.Palette) == 0 || len(g.Palette) > MaxGridPalette:
		return fmt.Errorf("%w: palette size %d", ErrInvalidGrid, len(g.Palette))
	case len(g.Cells) != g.Width*g.Height:
		return fmt.Errorf("%w: %d cells for %dx%d", ErrInvalidGrid, len(g.Cells), g.Width, g.Height)
	}
	for i, c := range g.Cells {
		if c != GridTransparent && int(c) >= len(g.Palette) {
			return fmt.Errorf("%w: cell %d indexes %d of %d colors", ErrInvalidGrid, i, c, len(g.Palette))
		}
	}
	return nil
}

// EncodeGrid writes g to w as a zstd-compressed PXG1 stream:
//
//	"PXG1" | width uint16 | height uint16 | n uint8 | n x (r,g,b) | width*height cells
//
// Integers are big-endian. A cell is a palette index or GridTransparent.
func EncodeGrid(w io.Writer, g *Grid) error {
	if err := g.validate(); err != nil {
		return err
	}

	var buf bytes.Buffer
	buf.Grow(9 + 3*len(g.Palette) + len(g.Cells))
	buf.Write(gridMagic[:])
	binary.Write(&buf, binary.BigEndian, uint16(g.Width))
	binary.Write(&buf, binary.BigEndian, uint16(g.Height))
	buf.WriteByte(uint8(len(g.Palette)))
	for _, c := range g.Palette {
		buf.Write(c[:])
	}
	buf.Write(g.Cells)

	enc, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("failed to create zstd writer: %w", err)
	}
	if _, err := enc.Write(buf.Bytes()); err != nil {
		enc.Close()
		return fmt.Errorf("failed to compress grid: %w", err)
	}
	return enc.Close()
}

// DecodeGrid reads a grid written by EncodeGrid.
func DecodeGrid(r io.Reader) (*Grid, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidGrid, err)
	}
	defer dec.Close()

	data, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decompress: %v", ErrInvalidGrid, err)
	}

	if len(data) < 9 || !bytes.Equal(data[:4], gridMagic[:]) {
		return nil, fmt.Errorf("%w: bad header", ErrInvalidGrid)
	}
	g := &Grid{
		Width:  int(binary.BigEndian.Uint16(data[4:6])),
		Height: int(binary.BigEndian.Uint16(data[6:8])),
	}
	n := int(data[8])
	data = data[9:]
	if len(data) < 3*n {
		return nil, fmt.Errorf("%w: truncated palette", ErrInvalidGrid)
	}
	g.Palette = make([][3]uint8, n)
	for i := range g.Palette {
		copy(g.Palette[i][:], data[i*3:i*3+3])
	}
	g.Cells = append([]uint8(nil), data[3*n:]...)

	if err := g.validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// ReadGrid loads a grid sidecar from disk.
func ReadGrid(path string) (*Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open grid: %w", err)
	}
	defer f.Close()
	return DecodeGrid(f)
}
