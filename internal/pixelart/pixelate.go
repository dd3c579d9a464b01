package pixelart

import (
	"image"

	"github.com/anthonynsimon/bild/parallel"
	"github.com/disintegration/imaging"
)

// GridSize is the logical pixel-art resolution: the number of blocks across
// and down.
type GridSize struct {
	W int `json:"width"`
	H int `json:"height"`
}

// GridFor returns the block grid for a width x height image:
// max(1, width/blockSize) by max(1, height/blockSize).
// blockSize must be >= 1.
func GridFor(width, height, blockSize int) GridSize {
	return GridSize{
		W: max(1, width/blockSize),
		H: max(1, height/blockSize),
	}
}

// Pixelate gives img its blocky look and returns the result along with the
// logical grid size. The input is not modified.
//
// The image is first reduced to the grid size with nearest-neighbor sampling,
// which picks one source pixel per block instead of averaging and so keeps
// hard edges. The grid is then expanded back to the source size: output pixel
// (x, y) takes grid cell (x/blockSize, y/blockSize), clamped to the last cell.
// Every block of blockSize x blockSize pixels is one flat color; when the
// size is not a multiple of blockSize the leftover right and bottom pixels
// join the last block.
//
// blockSize must be >= 1; Engine validates this before calling.
func Pixelate(img image.Image, blockSize int) (*image.NRGBA, GridSize) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	grid := GridFor(w, h, blockSize)

	small := Downsample(img, grid)
	return expandBlocks(small, w, h, blockSize), grid
}

// Downsample reduces img to grid.W x grid.H using nearest-neighbor sampling.
func Downsample(img image.Image, grid GridSize) *image.NRGBA {
	return imaging.Resize(img, grid.W, grid.H, imaging.NearestNeighbor)
}

// GridOf extracts the logical grid from a raster by sampling the center pixel
// of every block, with the last block in each direction running to the edge
// as in Pixelate. On a pixelated raster every block is flat, so this returns
// the cells it was expanded from.
func GridOf(img *image.NRGBA, blockSize int) *image.NRGBA {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	grid := GridFor(w, h, blockSize)
	dst := image.NewNRGBA(image.Rect(0, 0, grid.W, grid.H))

	for gy := 0; gy < grid.H; gy++ {
		y := blockCenter(gy, grid.H, h, blockSize)
		for gx := 0; gx < grid.W; gx++ {
			x := blockCenter(gx, grid.W, w, blockSize)
			so := img.PixOffset(img.Rect.Min.X+x, img.Rect.Min.Y+y)
			do := dst.PixOffset(gx, gy)
			copy(dst.Pix[do:do+4], img.Pix[so:so+4])
		}
	}
	return dst
}

// blockCenter returns the middle coordinate of block i of n along an axis of
// the given size.
func blockCenter(i, n, size, blockSize int) int {
	lo, hi := i*blockSize, (i+1)*blockSize
	if i == n-1 {
		hi = size
	}
	return (lo + hi) / 2
}

// expandBlocks paints each grid cell of small over its block in a new
// width x height raster.
func expandBlocks(small *image.NRGBA, width, height, blockSize int) *image.NRGBA {
	gridW, gridH := small.Rect.Dx(), small.Rect.Dy()
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))

	parallel.Line(height, func(start, end int) {
		for y := start; y < end; y++ {
			gy := min(y/blockSize, gridH-1)
			srcRow := small.Pix[gy*small.Stride:]
			dstRow := dst.Pix[y*dst.Stride:]
			for x := 0; x < width; x++ {
				gx := min(x/blockSize, gridW-1)
				copy(dstRow[x*4:x*4+4], srcRow[gx*4:gx*4+4])
			}
		}
	})
	return dst
}
