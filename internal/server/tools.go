package server

import "github.com/ironsheep/outfit-analyzer/internal/palette"

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

var pathProperty = map[string]interface{}{
	"type":        "string",
	"description": "Absolute path to the image file",
}

var genderProperty = map[string]interface{}{
	"type":        "string",
	"enum":        []string{"women", "men"},
	"description": "Whose wear to recommend. Default women",
	"default":     "women",
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Full pipeline
		{
			Name:        "outfit_analyze",
			Description: "Analyze a garment photo: dominant colors, style features, detected category and outfit recommendations built from product search.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":   pathProperty,
					"gender": genderProperty,
				},
				"required": []string{"path"},
			},
		},

		// Feature extraction
		{
			Name:        "outfit_dominant_colors",
			Description: "Extract the dominant colors of an image as lowercase hex strings, most vivid first.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
					"count": map[string]interface{}{
						"type":        "integer",
						"description": "Number of colors to extract. Default 5",
						"default":     5,
						"minimum":     1,
						"maximum":     palette.MaxColorCount,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "outfit_name_color",
			Description: "Map a hex color to its coarse color name and display swatch.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"hex": map[string]interface{}{
						"type":        "string",
						"description": "Color as #rrggbb",
					},
				},
				"required": []string{"hex"},
			},
		},
		{
			Name:        "outfit_style_features",
			Description: "Compute edge-based style features (pattern density, stripes, solid) and a texture name.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "outfit_detect_category",
			Description: "Infer the garment category from the image aspect ratio.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
				},
				"required": []string{"path"},
			},
		},

		// Catalog
		{
			Name:        "outfit_search_products",
			Description: "Search the product catalog for a category in a named color.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"category": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"tops", "bottoms", "dresses", "outerwear", "shoes"},
						"description": "Garment category",
					},
					"color": map[string]interface{}{
						"type":        "string",
						"description": "Color name, e.g. red or navy",
					},
					"gender": genderProperty,
					"limit": map[string]interface{}{
						"type":        "integer",
						"description": "Maximum number of products. Default 4",
						"default":     4,
						"minimum":     1,
					},
				},
				"required": []string{"category", "color"},
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
