// Package pixelart implements the image-to-pixel-art conversion engine.
//
// A conversion runs four stages in order, each consuming and returning its own
// *image.NRGBA raster:
//
//  1. Tone adjustment: contrast, then sharpness (AdjustTone).
//  2. Pixelation: nearest-neighbor downsample to the block grid, then block
//     expansion back to the source size (Pixelate).
//  3. Palette quantization: every pixel is mapped to its nearest palette color
//     by squared RGB distance; pixels with alpha below 128 become fully
//     transparent (Quantize).
//  4. Artifact writing: the raster and its thumbnail are persisted by an
//     ArtifactStore (see package artifact).
//
// The Engine type orchestrates the stages. Settings and palettes are validated
// before any pixel work begins, so malformed input fails fast.
//
// # Rasters
//
// All stages work on non-premultiplied *image.NRGBA buffers so the alpha
// channel can be passed through exactly. Stages never mutate their input.
//
// # Errors
//
// Fatal failures are returned as *StageError values wrapping one of the
// sentinel errors (ErrDecode, ErrInvalidSettings, ErrInvalidColorFormat,
// ErrStorageWrite). ErrPaletteApplication is the one recoverable condition:
// the Engine falls back to the pixelated raster and reports Result.Degraded.
//
// # Thread Safety
//
// An Engine holds no per-request state and may be used by concurrent
// conversions as long as each one supplies its own source image. Inner pixel
// loops are split across goroutines by row; results are deterministic.
package pixelart
