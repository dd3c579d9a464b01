package server

import (
	"github.com/ironsheep/pixelart-mcp/internal/imaging"
	"github.com/ironsheep/pixelart-mcp/internal/pixelart"
	"github.com/ironsheep/pixelart-mcp/internal/vector"
)

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// paletteProperties are shared by tools that accept either a palette id or
// explicit colors.
func paletteProperties() map[string]interface{} {
	return map[string]interface{}{
		"palette": map[string]interface{}{
			"type":        "string",
			"description": "Built-in palette id (see pixelart_palettes). Ignored when colors is given. Defaults to the server's default palette.",
		},
		"colors": map[string]interface{}{
			"type":        "array",
			"items":       map[string]interface{}{"type": "string"},
			"description": "Explicit palette as 6-digit hex colors (\"#rrggbb\"). Order decides ties: the first equally-near color wins.",
		},
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	defaults := pixelart.DefaultSettings()

	convertProps := map[string]interface{}{
		"path": map[string]interface{}{
			"type":        "string",
			"description": "Absolute path to the source image. Either path or image_base64 is required.",
		},
		"image_base64": map[string]interface{}{
			"type":        "string",
			"description": "Base64-encoded source image; a data URL prefix is accepted.",
		},
		"pixel_block_size": map[string]interface{}{
			"type":        "integer",
			"description": "Edge length in source pixels of one pixel-art pixel",
			"minimum":     1,
			"default":     defaults.PixelBlockSize,
		},
		"contrast_level": map[string]interface{}{
			"type":        "integer",
			"description": "Contrast 0-100, 50 leaves the image unchanged",
			"minimum":     0,
			"maximum":     pixelart.MaxLevel,
			"default":     defaults.ContrastLevel,
		},
		"sharpness_level": map[string]interface{}{
			"type":        "integer",
			"description": "Sharpness 0-100, 50 leaves the image unchanged",
			"minimum":     0,
			"maximum":     pixelart.MaxLevel,
			"default":     defaults.SharpnessLevel,
		},
		"background": map[string]interface{}{
			"type":    "string",
			"enum":    []string{"transparent", "solid", "gradient", "pattern"},
			"default": string(defaults.Background),
		},
		"animation": map[string]interface{}{
			"type":        "string",
			"enum":        []string{"none", "breathing", "flickering", "floating"},
			"description": "Recorded with the request; output is always a still image",
			"default":     string(defaults.Animation),
		},
		"style": map[string]interface{}{
			"type":    "string",
			"enum":    []string{"retro", "modern", "minimalist", "dithered", "isometric"},
			"default": string(defaults.Style),
		},
	}
	for k, v := range paletteProperties() {
		convertProps[k] = v
	}

	usageProps := map[string]interface{}{
		"path": map[string]interface{}{
			"type":        "string",
			"description": "Absolute path to the image file",
		},
	}
	for k, v := range paletteProperties() {
		usageProps[k] = v
	}

	exportProps := map[string]interface{}{
		"path": map[string]interface{}{
			"type":        "string",
			"description": "Absolute path to a converted image. Either path or grid_path is required.",
		},
		"grid_path": map[string]interface{}{
			"type":        "string",
			"description": "Absolute path to a grid sidecar (.pxg.zst); palette arguments are ignored",
		},
		"pixel_block_size": map[string]interface{}{
			"type":        "integer",
			"description": "Block size the image was converted with",
			"minimum":     1,
			"default":     defaults.PixelBlockSize,
		},
		"mode": map[string]interface{}{
			"type":        "string",
			"enum":        []string{string(vector.ModeRects), string(vector.ModeTraced)},
			"description": "rects draws exact square cells; traced draws smoothed outlines",
			"default":     string(vector.ModeRects),
		},
		"scale": map[string]interface{}{
			"type":        "integer",
			"description": "SVG units per cell",
			"minimum":     1,
			"maximum":     vector.MaxScale,
			"default":     defaultExportScale,
		},
	}
	for k, v := range paletteProperties() {
		exportProps[k] = v
	}

	return []Tool{
		// Source Inspection
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions, format, color depth and alpha presence.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_dimensions",
			Description: "Get the width and height of an image file.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_dominant_colors",
			Description: "Return the most common colors of an image. Useful for choosing a palette before converting or for checking a converted image.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
					"count": map[string]interface{}{
						"type":        "integer",
						"description": "Number of colors to return (default 8)",
						"default":     8,
					},
					"bucket": map[string]interface{}{
						"type":        "integer",
						"description": "Group channel values into buckets of this size; 1 counts exact colors (default 1)",
						"default":     1,
					},
				},
				"required": []string{"path"},
			},
		},

		// Conversion
		{
			Name:        "pixelart_convert",
			Description: "Convert an image into pixel art: adjust contrast and sharpness, reduce it to a block grid, map every pixel to the palette and save the result with a thumbnail. Returns the stored file paths and the grid size. If palette mapping fails the unmapped pixelated image is saved and degraded is true.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": convertProps,
			},
		},
		{
			Name:        "pixelart_palettes",
			Description: "List the built-in palettes with their ids and colors.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
		{
			Name:        "pixelart_delete",
			Description: "Delete the files of a stored conversion. Only files inside the results directory can be removed.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"image_path":     map[string]interface{}{"type": "string"},
					"thumbnail_path": map[string]interface{}{"type": "string"},
					"grid_path":      map[string]interface{}{"type": "string"},
				},
				"required": []string{"image_path"},
			},
		},

		// Previews
		{
			Name:        "pixelart_preview",
			Description: "Enlarge an image with nearest-neighbor scaling so each pixel becomes a sharp square, returned as base64 PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
					"scale": map[string]interface{}{
						"type":        "integer",
						"description": "Zoom factor",
						"minimum":     1,
						"maximum":     imaging.MaxPreviewScale,
						"default":     4,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "pixelart_grid_preview",
			Description: "Draw block boundaries over a pixel-art image so individual cells can be inspected, returned as base64 PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
					"pixel_block_size": map[string]interface{}{
						"type":        "integer",
						"description": "Block size the image was converted with",
						"default":     defaults.PixelBlockSize,
					},
					"show_coordinates": map[string]interface{}{
						"type":        "boolean",
						"description": "Label cells with column,row",
						"default":     false,
					},
					"grid_color": map[string]interface{}{
						"type":        "string",
						"description": "Line color as #RRGGBB or #RRGGBBAA (default #FF000080)",
						"default":     "#FF000080",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "pixelart_palette_usage",
			Description: "Report how much of an image each palette color covers, using the same nearest-color and transparency rules as conversion.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": usageProps,
				"required":   []string{"path"},
			},
		},
		{
			Name:        "pixelart_grid_read",
			Description: "Read a grid sidecar (.pxg.zst) written with a conversion and return the palette and per-cell color indices (-1 for transparent).",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the grid file",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "pixelart_export_svg",
			Description: "Export a converted image or grid sidecar as SVG text, one shape per run of same-colored cells or traced outlines per color.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": exportProps,
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
