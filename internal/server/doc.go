// Package server implements the MCP (Model Context Protocol) server for pixel-art conversion.
//
// This package provides a JSON-RPC 2.0 server that exposes the conversion engine
// in package pixelart, the palette catalog and a few inspection helpers through
// the MCP protocol.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Source Inspection:
//   - image_load: Load image and get metadata
//   - image_dimensions: Get width and height
//   - image_dominant_colors: Most common colors, for picking a palette
//
// Conversion:
//   - pixelart_convert: Tone adjust, pixelate, quantize and store an image
//   - pixelart_palettes: List built-in palettes
//   - pixelart_delete: Remove the files of a stored conversion
//
// Previews:
//   - pixelart_preview: Nearest-neighbor zoom as base64 PNG
//   - pixelart_grid_preview: Block grid overlay as base64 PNG
//   - pixelart_palette_usage: Per palette color coverage
//   - pixelart_grid_read: Decode a grid sidecar
//
// Export:
//   - pixelart_export_svg: Grid as SVG, exact squares or traced outlines
//
// # Image Caching
//
// Source images loaded by path are cached and reused across tool calls.
// pixelart_delete evicts the deleted files.
//
// # Error Handling
//
// Tool errors are returned as JSON-RPC error responses:
//   - code -32602: bad arguments, invalid settings, malformed colors, unknown palette
//   - code -32000: decode, storage and other execution failures
//   - data: the Go error string
//
// A conversion whose palette mapping failed is not an error; its result has
// degraded set and carries the reason.
//
// # Usage
//
//	store, err := artifact.NewWriter(dir)
//	if err != nil {
//	    return err
//	}
//	srv := server.New(store, palettes.Default())
//	return srv.Run(ctx)
package server
