package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"path/filepath"
	"strings"

	"github.com/ironsheep/pixelart-mcp/internal/artifact"
	"github.com/ironsheep/pixelart-mcp/internal/imaging"
	"github.com/ironsheep/pixelart-mcp/internal/palettes"
	"github.com/ironsheep/pixelart-mcp/internal/pixelart"
	"github.com/ironsheep/pixelart-mcp/internal/vector"
)

// errInvalidArgs reports tool arguments that are missing or contradictory.
var errInvalidArgs = errors.New("invalid arguments")

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "pixelart_convert").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Argument and settings errors return a JSON-RPC error with code -32602; other
// tool failures use -32000.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		s.logger.Debug("tool failed", "tool", params.Name, "error", err)
		if isInvalidParams(err) {
			return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
		}
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

func isInvalidParams(err error) bool {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	return errors.Is(err, errInvalidArgs) ||
		errors.Is(err, vector.ErrInvalidExport) ||
		errors.Is(err, pixelart.ErrInvalidSettings) ||
		errors.Is(err, pixelart.ErrInvalidColorFormat) ||
		errors.Is(err, palettes.ErrUnknownPalette) ||
		errors.As(err, &syntaxErr) ||
		errors.As(err, &typeErr)
}

// executeTool dispatches tool execution to the appropriate handler function.
//
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Applies default values for optional parameters
//  3. Loads images from cache as needed
//  4. Calls the appropriate imaging/pixelart function
//  5. Returns the result or error
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}

	switch name {
	// Source Inspection
	case "image_load":
		return s.handleImageLoad(args)
	case "image_dimensions":
		return s.handleImageDimensions(args)
	case "image_dominant_colors":
		return s.handleImageDominantColors(args)

	// Conversion
	case "pixelart_convert":
		return s.handleConvert(ctx, args)
	case "pixelart_palettes":
		return s.handlePalettes()
	case "pixelart_delete":
		return s.handleDelete(args)

	// Previews
	case "pixelart_preview":
		return s.handlePreview(args)
	case "pixelart_grid_preview":
		return s.handleGridPreview(args)
	case "pixelart_palette_usage":
		return s.handlePaletteUsage(args)
	case "pixelart_grid_read":
		return s.handleGridRead(args)
	case "pixelart_export_svg":
		return s.handleExportSVG(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// resolveColors picks the explicit colors if any, else the named palette,
// else the server default.
func (s *Server) resolveColors(paletteID string, colors []string) (string, []string, error) {
	if len(colors) > 0 {
		return "", colors, nil
	}
	if paletteID == "" {
		paletteID = s.defaultPalette
	}
	resolved, err := s.catalog.Colors(paletteID)
	if err != nil {
		return "", nil, err
	}
	return strings.ToLower(paletteID), resolved, nil
}

// === Source Inspection Handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

func (s *Server) handleImageDimensions(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.GetDimensions(s.cache, a.Path)
}

type imageDominantColorsArgs struct {
	Path   string `json:"path"`
	Count  int    `json:"count"`
	Bucket int    `json:"bucket"`
}

func (s *Server) handleImageDominantColors(args json.RawMessage) (interface{}, error) {
	var a imageDominantColorsArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Count == 0 {
		a.Count = 8
	}
	if a.Bucket == 0 {
		a.Bucket = 1
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return imaging.DominantColors(img, a.Count, a.Bucket)
}

// === Conversion Handlers ===

type convertArgs struct {
	Path           string   `json:"path"`
	ImageBase64    string   `json:"image_base64"`
	Palette        string   `json:"palette"`
	Colors         []string `json:"colors"`
	PixelBlockSize *int     `json:"pixel_block_size"`
	ContrastLevel  *int     `json:"contrast_level"`
	SharpnessLevel *int     `json:"sharpness_level"`
	Background     string   `json:"background"`
	Animation      string   `json:"animation"`
	Style          string   `json:"style"`
}

// settings applies the arguments over the defaults. Pointers distinguish an
// explicit 0 from an omitted field.
func (a *convertArgs) settings() pixelart.Settings {
	st := pixelart.DefaultSettings()
	if a.PixelBlockSize != nil {
		st.PixelBlockSize = *a.PixelBlockSize
	}
	if a.ContrastLevel != nil {
		st.ContrastLevel = *a.ContrastLevel
	}
	if a.SharpnessLevel != nil {
		st.SharpnessLevel = *a.SharpnessLevel
	}
	if a.Background != "" {
		st.Background = pixelart.BackgroundMode(a.Background)
	}
	if a.Animation != "" {
		st.Animation = pixelart.AnimationMode(a.Animation)
	}
	if a.Style != "" {
		st.Style = pixelart.Style(a.Style)
	}
	return st
}

// ConvertResult is returned by pixelart_convert.
type ConvertResult struct {
	*pixelart.Result
	PaletteID string            `json:"palette_id,omitempty"`
	Colors    []string          `json:"colors"`
	Settings  pixelart.Settings `json:"settings"`
}

func (s *Server) handleConvert(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a convertArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	var (
		src image.Image
		err error
	)
	switch {
	case a.Path != "" && a.ImageBase64 != "":
		return nil, fmt.Errorf("%w: give either path or image_base64, not both", errInvalidArgs)
	case a.Path != "":
		src, err = s.cache.Load(a.Path)
	case a.ImageBase64 != "":
		src, err = imaging.DecodeBase64(a.ImageBase64)
	default:
		return nil, fmt.Errorf("%w: path or image_base64 is required", errInvalidArgs)
	}
	if err != nil {
		return nil, err
	}

	paletteID, colors, err := s.resolveColors(a.Palette, a.Colors)
	if err != nil {
		return nil, err
	}

	st := a.settings()
	res, err := s.engine.Convert(ctx, src, colors, st)
	if err != nil {
		return nil, err
	}
	return &ConvertResult{Result: res, PaletteID: paletteID, Colors: colors, Settings: st}, nil
}

// PalettesResult is returned by pixelart_palettes.
type PalettesResult struct {
	Default  string             `json:"default"`
	Palettes []palettes.Palette `json:"palettes"`
}

func (s *Server) handlePalettes() (interface{}, error) {
	return &PalettesResult{Default: s.defaultPalette, Palettes: s.catalog.List()}, nil
}

type deleteArgs struct {
	ImagePath     string `json:"image_path"`
	ThumbnailPath string `json:"thumbnail_path"`
	GridPath      string `json:"grid_path"`
}

func (s *Server) handleDelete(args json.RawMessage) (interface{}, error) {
	var a deleteArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.ImagePath == "" {
		return nil, fmt.Errorf("%w: image_path is required", errInvalidArgs)
	}

	target := &artifact.Artifact{}
	for _, f := range []struct {
		in  string
		out *string
	}{
		{a.ImagePath, &target.ImagePath},
		{a.ThumbnailPath, &target.ThumbnailPath},
		{a.GridPath, &target.GridPath},
	} {
		if f.in == "" {
			continue
		}
		p, err := s.resultPath(f.in)
		if err != nil {
			return nil, err
		}
		*f.out = p
	}

	if err := s.store.Remove(target); err != nil {
		return nil, fmt.Errorf("failed to delete artifact: %w", err)
	}
	s.cache.Evict(a.ImagePath)
	s.cache.Evict(a.ThumbnailPath)

	return map[string]interface{}{"deleted": true}, nil
}

// resultPath rejects paths outside the results directory.
func (s *Server) resultPath(p string) (string, error) {
	dir, err := filepath.Abs(s.store.Dir())
	if err != nil {
		return "", err
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(dir, abs)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") || strings.ContainsRune(rel, filepath.Separator) {
		return "", fmt.Errorf("%w: %s is not in the results directory", errInvalidArgs, p)
	}
	return abs, nil
}

// === Preview Handlers ===

type previewArgs struct {
	Path  string `json:"path"`
	Scale int    `json:"scale"`
}

func (s *Server) handlePreview(args json.RawMessage) (interface{}, error) {
	var a previewArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Scale == 0 {
		a.Scale = 4
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return imaging.EncodePreview(img, a.Scale)
}

type gridPreviewArgs struct {
	Path            string `json:"path"`
	PixelBlockSize  int    `json:"pixel_block_size"`
	ShowCoordinates bool   `json:"show_coordinates"`
	GridColor       string `json:"grid_color"`
}

func (s *Server) handleGridPreview(args json.RawMessage) (interface{}, error) {
	var a gridPreviewArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.PixelBlockSize == 0 {
		a.PixelBlockSize = pixelart.DefaultSettings().PixelBlockSize
	}
	if a.GridColor == "" {
		a.GridColor = "#FF000080"
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return imaging.GridOverlay(img, a.PixelBlockSize, a.ShowCoordinates, a.GridColor)
}

type paletteUsageArgs struct {
	Path    string   `json:"path"`
	Palette string   `json:"palette"`
	Colors  []string `json:"colors"`
}

func (s *Server) handlePaletteUsage(args json.RawMessage) (interface{}, error) {
	var a paletteUsageArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	_, colors, err := s.resolveColors(a.Palette, a.Colors)
	if err != nil {
		return nil, err
	}
	p, err := pixelart.ParsePalette(colors)
	if err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return pixelart.MeasureUsage(img, p), nil
}

// GridReadResult is returned by pixelart_grid_read.
type GridReadResult struct {
	Width   int      `json:"width"`
	Height  int      `json:"height"`
	Palette []string `json:"palette"`
	// Cells holds one row per grid row; -1 marks a transparent cell.
	Cells [][]int `json:"cells"`
}

type gridReadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleGridRead(args json.RawMessage) (interface{}, error) {
	var a gridReadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	g, err := artifact.ReadGrid(a.Path)
	if err != nil {
		return nil, err
	}

	out := &GridReadResult{
		Width:   g.Width,
		Height:  g.Height,
		Palette: make([]string, len(g.Palette)),
		Cells:   make([][]int, g.Height),
	}
	for i, c := range g.Palette {
		out.Palette[i] = pixelart.RGB{R: c[0], G: c[1], B: c[2]}.Hex()
	}
	for y := 0; y < g.Height; y++ {
		row := make([]int, g.Width)
		for x := range row {
			if v := g.At(x, y); v == artifact.GridTransparent {
				row[x] = -1
			} else {
				row[x] = int(v)
			}
		}
		out.Cells[y] = row
	}
	return out, nil
}

const defaultExportScale = 8

type exportSVGArgs struct {
	Path           string   `json:"path"`
	GridPath       string   `json:"grid_path"`
	PixelBlockSize int      `json:"pixel_block_size"`
	Palette        string   `json:"palette"`
	Colors         []string `json:"colors"`
	Mode           string   `json:"mode"`
	Scale          int      `json:"scale"`
}

// ExportSVGResult is returned by pixelart_export_svg.
type ExportSVGResult struct {
	Mode    vector.Mode `json:"mode"`
	Columns int         `json:"columns"`
	Rows    int         `json:"rows"`
	Width   int         `json:"width"`
	Height  int         `json:"height"`
	SVG     string      `json:"svg"`
}

func (s *Server) handleExportSVG(args json.RawMessage) (interface{}, error) {
	var a exportSVGArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Scale == 0 {
		a.Scale = defaultExportScale
	}
	if a.Mode == "" {
		a.Mode = string(vector.ModeRects)
	}

	var (
		g   *artifact.Grid
		err error
	)
	switch {
	case a.Path != "" && a.GridPath != "":
		return nil, fmt.Errorf("%w: give either path or grid_path, not both", errInvalidArgs)
	case a.GridPath != "":
		g, err = artifact.ReadGrid(a.GridPath)
	case a.Path != "":
		g, err = s.gridFromImage(a)
	default:
		return nil, fmt.Errorf("%w: path or grid_path is required", errInvalidArgs)
	}
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := vector.Export(&buf, g, vector.Mode(a.Mode), a.Scale); err != nil {
		return nil, err
	}
	return &ExportSVGResult{
		Mode:    vector.Mode(a.Mode),
		Columns: g.Width,
		Rows:    g.Height,
		Width:   g.Width * a.Scale,
		Height:  g.Height * a.Scale,
		SVG:     buf.String(),
	}, nil
}

func (s *Server) gridFromImage(a exportSVGArgs) (*artifact.Grid, error) {
	if a.PixelBlockSize == 0 {
		a.PixelBlockSize = pixelart.DefaultSettings().PixelBlockSize
	}
	_, colors, err := s.resolveColors(a.Palette, a.Colors)
	if err != nil {
		return nil, err
	}
	p, err := pixelart.ParsePalette(colors)
	if err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return pixelart.BuildGrid(img, p, a.PixelBlockSize)
}
