// Package imaging provides source-image loading and preview helpers for the
// pixel-art server.
//
// This package decodes input images from files, bytes or base64 strings,
// caches decoded sources, reports image metadata, and renders previews: block
// grid overlays, nearest-neighbor zooms and dominant-color summaries. The
// conversion itself lives in package pixelart; nothing here depends on it.
//
// # Supported Formats
//
// Decoding covers PNG, JPEG, GIF, BMP, TIFF, WebP and QOI. Formats are detected
// from file contents, not extensions, and EXIF orientation is applied.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based with (0,0) at the top-left
// corner, X increasing rightward and Y increasing downward. Grid cells are
// addressed by column,row.
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. The other functions are
// stateless and never modify their input images.
//
// # Error Handling
//
// Decode failures wrap ErrDecode so callers can classify them with errors.Is.
// Preview functions return errors for invalid arguments such as a block size
// below one or an out-of-range zoom.
package imaging
