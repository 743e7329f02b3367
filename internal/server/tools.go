package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the image file",
	}
}

func pointsProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "array",
		"description": description,
		"minItems":    4,
		"maxItems":    4,
		"items": map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"x": map[string]interface{}{"type": "number"},
				"y": map[string]interface{}{"type": "number"},
			},
			"required": []string{"x", "y"},
		},
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions and format. The image stays cached until it is scanned or observed.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},

		// Document operations
		{
			Name:        "document_scan",
			Description: "Find the document in a stored photo, order its corners and return the perspective-corrected page as base64 PNG. Fails with not_found when no four-cornered outline is visible.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"include_image": map[string]interface{}{
						"type":        "boolean",
						"description": "Return the rectified page. Default true",
						"default":     true,
					},
					"overlay": map[string]interface{}{
						"type":        "boolean",
						"description": "Also return the input with the detected outline drawn on it. Default false",
						"default":     false,
					},
					"overlay_color": map[string]interface{}{
						"type":        "string",
						"description": "Outline colour as hex. Default #00ff00",
						"default":     "#00ff00",
					},
					"max_dimension": map[string]interface{}{
						"type":        "integer",
						"description": "Shrink returned images to fit this many pixels. 0 keeps full size. Default 1600",
						"default":     1600,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "document_order_corners",
			Description: "Assign four points to the top-left, bottom-left, bottom-right and top-right roles of a width x height frame, and report the height/width ratio.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"points": pointsProperty("The four vertices in any order"),
					"width": map[string]interface{}{
						"type":        "integer",
						"description": "Frame width in pixels",
					},
					"height": map[string]interface{}{
						"type":        "integer",
						"description": "Frame height in pixels",
					},
					"strict": map[string]interface{}{
						"type":        "boolean",
						"description": "Use every point exactly once. Defaults to the server configuration",
					},
				},
				"required": []string{"points", "width", "height"},
			},
		},
		{
			Name:        "document_destination",
			Description: "Size the output rectangle for a document. Give either the height/width ratio or four ordered corners.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"ratio": map[string]interface{}{
						"type":        "number",
						"description": "Document height divided by width",
					},
					"corners": pointsProperty("Corners ordered top-left, bottom-left, bottom-right, top-right"),
					"width": map[string]interface{}{
						"type":        "integer",
						"description": "Reference frame width in pixels",
					},
					"height": map[string]interface{}{
						"type":        "integer",
						"description": "Reference frame height in pixels",
					},
				},
				"required": []string{"width", "height"},
			},
		},

		// Stability operations
		{
			Name:        "stability_observe",
			Description: "Feed one frame to the capture trigger. Returns idle, accumulating or trigger with the current stable count.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "stability_reset",
			Description: "Forget the previous frame and all counters of the capture trigger.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
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
