package server

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ironsheep/outfit-analyzer/internal/catalog"
	"github.com/ironsheep/outfit-analyzer/internal/garment"
	"github.com/ironsheep/outfit-analyzer/internal/imaging"
	"github.com/ironsheep/outfit-analyzer/internal/palette"
	"github.com/ironsheep/outfit-analyzer/internal/style"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "outfit_analyze").
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
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		s.logger.Warn("tool failed", "tool", params.Name, "error", err)
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

// executeTool dispatches tool execution to the appropriate handler function.
//
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Applies default values for optional parameters
//  3. Loads images from cache as needed
//  4. Calls the appropriate palette/style/garment/outfit function
//  5. Returns the result or error
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}

	switch name {
	case "outfit_analyze":
		return s.handleAnalyze(ctx, args)

	case "outfit_dominant_colors":
		return s.handleDominantColors(args)
	case "outfit_name_color":
		return s.handleNameColor(args)
	case "outfit_style_features":
		return s.handleStyleFeatures(args)
	case "outfit_detect_category":
		return s.handleDetectCategory(args)

	case "outfit_search_products":
		return s.handleSearchProducts(ctx, args)

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
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// loadImage resolves a path argument through the cache.
func (s *Server) loadImage(path string) (*imaging.Decoded, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("path is required")
	}
	return s.cache.Load(path)
}

// === Full Pipeline Handler ===

type analyzeArgs struct {
	Path   string `json:"path"`
	Gender string `json:"gender"`
}

func (s *Server) handleAnalyze(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a analyzeArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	gender, err := garment.ParseGender(a.Gender)
	if err != nil {
		return nil, err
	}
	img, err := s.loadImage(a.Path)
	if err != nil {
		return nil, err
	}
	return s.analyzer.AnalyzeImage(ctx, img.Image, gender)
}

// === Feature Extraction Handlers ===

type dominantColorsArgs struct {
	Path  string `json:"path"`
	Count int    `json:"count"`
}

// DominantColorsResult is returned by outfit_dominant_colors.
type DominantColorsResult struct {
	Colors []string `json:"colors"`
}

func (s *Server) handleDominantColors(args json.RawMessage) (interface{}, error) {
	var a dominantColorsArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Count == 0 {
		a.Count = s.numColors
	}
	if a.Count < 1 || a.Count > palette.MaxColorCount {
		return nil, fmt.Errorf("count must be between 1 and %d, got %d", palette.MaxColorCount, a.Count)
	}
	img, err := s.loadImage(a.Path)
	if err != nil {
		return nil, err
	}

	colors, err := s.quantizer.DominantColors(img.Image, a.Count)
	if err != nil {
		return nil, err
	}
	return &DominantColorsResult{Colors: colors}, nil
}

type nameColorArgs struct {
	Hex string `json:"hex"`
}

// NameColorResult is returned by outfit_name_color.
type NameColorResult struct {
	Hex    string             `json:"hex"`
	Name   palette.NamedColor `json:"name"`
	Swatch string             `json:"swatch"`
}

func (s *Server) handleNameColor(args json.RawMessage) (interface{}, error) {
	var a nameColorArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	rgb, err := imaging.ParseHex(a.Hex)
	if err != nil {
		return nil, err
	}

	name := s.namer.NameOf(rgb)
	return &NameColorResult{
		Hex:    rgb.Hex(),
		Name:   name,
		Swatch: palette.DisplayHex(name),
	}, nil
}

type imagePathArgs struct {
	Path string `json:"path"`
}

// StyleFeaturesResult is returned by outfit_style_features.
type StyleFeaturesResult struct {
	style.Features
	Texture style.Texture `json:"texture"`
}

func (s *Server) handleStyleFeatures(args json.RawMessage) (interface{}, error) {
	var a imagePathArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, err := s.loadImage(a.Path)
	if err != nil {
		return nil, err
	}

	f, err := s.style.Analyze(img.Image)
	if err != nil {
		return nil, err
	}
	return &StyleFeaturesResult{Features: f, Texture: f.Texture()}, nil
}

// DetectCategoryResult is returned by outfit_detect_category.
type DetectCategoryResult struct {
	Category    garment.Category `json:"category"`
	Width       int              `json:"width"`
	Height      int              `json:"height"`
	AspectRatio float64          `json:"aspect_ratio"`
}

func (s *Server) handleDetectCategory(args json.RawMessage) (interface{}, error) {
	var a imagePathArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, err := s.loadImage(a.Path)
	if err != nil {
		return nil, err
	}

	w, h := img.Width(), img.Height()
	return &DetectCategoryResult{
		Category:    garment.ClassifyAspect(w, h),
		Width:       w,
		Height:      h,
		AspectRatio: float64(h) / float64(w),
	}, nil
}

// === Catalog Handlers ===

type searchProductsArgs struct {
	Category string `json:"category"`
	Color    string `json:"color"`
	Gender   string `json:"gender"`
	Limit    int    `json:"limit"`
}

// SearchProductsResult is returned by outfit_search_products.
type SearchProductsResult struct {
	Products []catalog.Product `json:"products"`
}

func (s *Server) handleSearchProducts(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a searchProductsArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	category, err := garment.ParseCategory(a.Category)
	if err != nil {
		return nil, err
	}
	gender, err := garment.ParseGender(a.Gender)
	if err != nil {
		return nil, err
	}
	color := strings.ToLower(strings.TrimSpace(a.Color))
	if color == "" {
		return nil, fmt.Errorf("color is required")
	}
	if a.Limit < 0 {
		return nil, fmt.Errorf("limit must be positive, got %d", a.Limit)
	}

	q := catalog.Query{
		Category: category,
		Color:    palette.NamedColor(color),
		Gender:   gender,
		Limit:    a.Limit,
	}
	products, err := s.searcher.Search(ctx, q)
	if err != nil {
		return nil, err
	}
	return &SearchProductsResult{Products: products}, nil
}
