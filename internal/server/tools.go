package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

var boxSchema = map[string]interface{}{
	"type":        "array",
	"description": "Box as [[left, top], [right, bottom]] in image pixels",
	"items": map[string]interface{}{
		"type":     "array",
		"items":    map[string]interface{}{"type": "number"},
		"minItems": 2,
		"maxItems": 2,
	},
	"minItems": 2,
	"maxItems": 2,
}

var strategySchema = map[string]interface{}{
	"type":        "string",
	"enum":        []string{"greedy", "hierarchical"},
	"description": "Grouping strategy. Defaults to the configured one",
}

var overridesSchema = map[string]interface{}{
	"type":        "object",
	"description": "Per-call changes to the grouping configuration. Omitted fields keep the configured value",
	"properties": map[string]interface{}{
		"horizontal_ratio":   map[string]interface{}{"type": "number", "description": "Word spacing as a fraction of the median token height"},
		"vertical_ratio":     map[string]interface{}{"type": "number", "description": "Line spacing as a fraction of the median token height"},
		"height_diff_ratio":  map[string]interface{}{"type": "number", "description": "Same-line bottom edge tolerance as a fraction of the median token height"},
		"round_thresholds":   map[string]interface{}{"type": "boolean"},
		"horizontal_weight":  map[string]interface{}{"type": "number", "description": "Hierarchical x distance weight"},
		"vertical_weight":    map[string]interface{}{"type": "number", "description": "Hierarchical y distance weight"},
		"distance_threshold": map[string]interface{}{"type": "number", "description": "Hierarchical cut distance"},
		"artifact_denylist":  map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}},
		"max_digit_count":    map[string]interface{}{"type": "integer"},
		"track_labels":       map[string]interface{}{"type": "boolean"},
		"skip_header":        map[string]interface{}{"type": "boolean"},
		"converge":           map[string]interface{}{"type": "boolean", "description": "Repeat grouping until nothing more merges"},
	},
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Grouping
		{
			Name:        "flashcards_group",
			Description: "Run OCR on a page image and group the recognized words into flashcard regions. Returns one box and one label per flashcard, in reading order. With save=true the result is recorded in the catalog under the image's file name.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
					"caption": map[string]interface{}{
						"type":        "string",
						"description": "Optional caption stored with the catalog record",
					},
					"strategy": strategySchema,
					"save": map[string]interface{}{
						"type":        "boolean",
						"description": "Record the result in the catalog. Default false",
						"default":     false,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "flashcards_group_annotations",
			Description: "Group text annotations that were already recognized elsewhere. Each annotation has text and four vertices; the first one is taken as the whole-page aggregate and skipped unless the server is configured otherwise.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"annotations": map[string]interface{}{
						"type":        "array",
						"description": "Recognized text records in reading order",
						"items": map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"text": map[string]interface{}{"type": "string"},
								"vertices": map[string]interface{}{
									"type": "array",
									"items": map[string]interface{}{
										"type": "object",
										"properties": map[string]interface{}{
											"x": map[string]interface{}{"type": "integer"},
											"y": map[string]interface{}{"type": "integer"},
										},
									},
								},
							},
							"required": []string{"text", "vertices"},
						},
					},
					"strategy":  strategySchema,
					"overrides": overridesSchema,
				},
				"required": []string{"annotations"},
			},
		},

		// Rendering
		{
			Name:        "flashcards_render",
			Description: "Draw flashcard boxes on the page and return it as base64-encoded PNG. Boxes default to the catalog record for the image.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
					"boxes": map[string]interface{}{
						"type":        "array",
						"description": "Optional boxes to draw instead of the catalog record",
						"items":       boxSchema,
					},
					"labels": map[string]interface{}{
						"type":        "array",
						"description": "Optional label per box",
						"items":       map[string]interface{}{"type": "string"},
					},
					"show_labels": map[string]interface{}{
						"type":        "boolean",
						"description": "Draw each label above its box. Default false",
						"default":     false,
					},
					"color": map[string]interface{}{
						"type":        "string",
						"description": "Hex stroke color such as #FF0000. Default: a distinct color per box",
					},
					"line_width": map[string]interface{}{
						"type":        "number",
						"description": "Stroke width in pixels. Default 2",
						"default":     2,
					},
					"fill_opacity": map[string]interface{}{
						"type":        "number",
						"description": "Tint inside each box, 0 to 1. Default 0",
						"default":     0,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "flashcards_crop",
			Description: "Cut one flashcard out of a catalogued page and return it as base64-encoded PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
					"index": map[string]interface{}{
						"type":        "integer",
						"description": "Zero-based flashcard index in the catalog record",
					},
					"padding": map[string]interface{}{
						"type":        "integer",
						"description": "Pixels added around the box. Default 4",
						"default":     4,
					},
					"scale": map[string]interface{}{
						"type":        "number",
						"description": "Optional scale factor (e.g., 2.0 to double size). Default 1.0",
						"default":     1.0,
					},
				},
				"required": []string{"path", "index"},
			},
		},

		// Catalog
		{
			Name:        "flashcards_list",
			Description: "List every catalogued page with its caption and flashcard boxes.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
		{
			Name:        "flashcards_get",
			Description: "Get the catalog record of one page.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"filename": map[string]interface{}{
						"type":        "string",
						"description": "File name the page was saved under",
					},
				},
				"required": []string{"filename"},
			},
		},
		{
			Name:        "flashcards_delete",
			Description: "Remove a page from the catalog. The image file itself is left alone.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"filename": map[string]interface{}{
						"type":        "string",
						"description": "File name the page was saved under",
					},
				},
				"required": []string{"filename"},
			},
		},

		// Basic Image Information
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions. The decoded image is cached for later render and crop calls.",
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
