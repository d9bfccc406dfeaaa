package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/ironsheep/flashcards-mcp/internal/catalog"
	"github.com/ironsheep/flashcards-mcp/internal/grouping"
	"github.com/ironsheep/flashcards-mcp/internal/imaging"
)

var (
	errNoRecognizer = errors.New("no OCR engine configured")
	errNoCatalog    = errors.New("no catalog configured")
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "flashcards_group").
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
		return s.errorResponse(req.ID, codeInvalidParams, "Invalid params", err.Error())
	}
	if len(params.Arguments) == 0 {
		params.Arguments = json.RawMessage("{}")
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		s.log.Warn("tool failed", "tool", params.Name, "error", err)
		return s.errorResponse(req.ID, codeToolFailed, "Tool execution failed", err.Error())
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
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Grouping
	case "flashcards_group":
		return s.handleGroup(ctx, args)
	case "flashcards_group_annotations":
		return s.handleGroupAnnotations(args)

	// Rendering
	case "flashcards_render":
		return s.handleRender(ctx, args)
	case "flashcards_crop":
		return s.handleCrop(ctx, args)

	// Catalog
	case "flashcards_list":
		return s.handleList(ctx)
	case "flashcards_get":
		return s.handleGet(ctx, args)
	case "flashcards_delete":
		return s.handleDelete(ctx, args)

	// Basic Image Information
	case "image_load":
		return s.handleImageLoad(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// engineFor returns the configured engine with overrides applied, then the
// strategy argument if one is given.
func (s *Server) engineFor(strategy string, o *grouping.Overrides) (*grouping.Engine, error) {
	engine := s.engine
	if o != nil {
		var err error
		if engine, err = engine.With(*o); err != nil {
			return nil, err
		}
	}
	return engine.WithStrategy(strategy)
}

// catalogKey is the name a page is recorded under.
func catalogKey(path string) string {
	return filepath.Base(path)
}

// === Grouping Handlers ===

type groupArgs struct {
	Path     string `json:"path"`
	Caption  string `json:"caption"`
	Strategy string `json:"strategy"`
	Save     bool   `json:"save"`
}

type groupResult struct {
	Filename string `json:"filename"`
	Caption  string `json:"caption,omitempty"`
	*grouping.Result
	Saved bool `json:"saved"`
}

func (s *Server) handleGroup(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a groupArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, errors.New("path is required")
	}
	if s.recognizer == nil {
		return nil, errNoRecognizer
	}
	if a.Save && s.catalog == nil {
		return nil, errNoCatalog
	}

	engine, err := s.engineFor(a.Strategy, nil)
	if err != nil {
		return nil, err
	}

	annotations, err := s.recognizer.Recognize(ctx, a.Path)
	if err != nil {
		return nil, err
	}
	result := engine.Group(annotations)

	out := &groupResult{Filename: catalogKey(a.Path), Caption: a.Caption, Result: result}
	if a.Save {
		if err := s.saveRecord(ctx, out); err != nil {
			return nil, err
		}
		out.Saved = true
	}

	s.log.Info("grouped page", "path", a.Path, "strategy", result.Strategy, "flashcards", len(result.Boxes))
	return out, nil
}

// saveRecord adds the page to the catalog, replacing an earlier record of the
// same file.
func (s *Server) saveRecord(ctx context.Context, g *groupResult) error {
	rec := catalog.Record{
		Filename:     g.Filename,
		Caption:      g.Caption,
		GroupedBoxes: g.Boxes,
		Labels:       g.Labels,
		Strategy:     g.Strategy,
	}
	err := s.catalog.Add(ctx, rec)
	if errors.Is(err, catalog.ErrDuplicate) {
		return s.catalog.Update(ctx, rec)
	}
	return err
}

type groupAnnotationsArgs struct {
	Annotations []grouping.Annotation `json:"annotations"`
	Strategy    string                `json:"strategy"`
	Overrides   *grouping.Overrides   `json:"overrides"`
}

func (s *Server) handleGroupAnnotations(args json.RawMessage) (interface{}, error) {
	var a groupAnnotationsArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	engine, err := s.engineFor(a.Strategy, a.Overrides)
	if err != nil {
		return nil, err
	}
	return engine.Group(a.Annotations), nil
}

// === Rendering Handlers ===

type renderArgs struct {
	Path        string         `json:"path"`
	Boxes       []grouping.Box `json:"boxes"`
	Labels      []string       `json:"labels"`
	ShowLabels  bool           `json:"show_labels"`
	Color       string         `json:"color"`
	LineWidth   float64        `json:"line_width"`
	FillOpacity float64        `json:"fill_opacity"`
}

func (s *Server) handleRender(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a renderArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	if a.Boxes == nil {
		rec, err := s.record(ctx, a.Path)
		if err != nil {
			return nil, err
		}
		a.Boxes = rec.GroupedBoxes
		if a.Labels == nil {
			a.Labels = rec.Labels
		}
	}

	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return imaging.RenderBoxes(img, a.Boxes, a.Labels, imaging.RenderOptions{
		LineWidth:   a.LineWidth,
		Color:       a.Color,
		ShowLabels:  a.ShowLabels,
		FillOpacity: a.FillOpacity,
	})
}

type cropArgs struct {
	Path    string  `json:"path"`
	Index   int     `json:"index"`
	Padding *int    `json:"padding"`
	Scale   float64 `json:"scale"`
}

func (s *Server) handleCrop(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a cropArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	padding := 4
	if a.Padding != nil {
		padding = *a.Padding
	}
	if a.Scale == 0 {
		a.Scale = 1.0
	}

	rec, err := s.record(ctx, a.Path)
	if err != nil {
		return nil, err
	}
	if a.Index < 0 || a.Index >= len(rec.GroupedBoxes) {
		return nil, fmt.Errorf("index %d out of range: %s has %d flashcards", a.Index, rec.Filename, len(rec.GroupedBoxes))
	}

	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return imaging.CropBox(img, rec.GroupedBoxes[a.Index], padding, a.Scale)
}

func (s *Server) record(ctx context.Context, path string) (*catalog.Record, error) {
	if path == "" {
		return nil, errors.New("path is required")
	}
	if s.catalog == nil {
		return nil, errNoCatalog
	}
	return s.catalog.Get(ctx, catalogKey(path))
}

// === Catalog Handlers ===

type filenameArgs struct {
	Filename string `json:"filename"`
}

func (s *Server) handleList(ctx context.Context) (interface{}, error) {
	if s.catalog == nil {
		return nil, errNoCatalog
	}
	records, err := s.catalog.List(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"records": records, "count": len(records)}, nil
}

func (s *Server) handleGet(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a filenameArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if s.catalog == nil {
		return nil, errNoCatalog
	}
	return s.catalog.Get(ctx, a.Filename)
}

func (s *Server) handleDelete(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a filenameArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if s.catalog == nil {
		return nil, errNoCatalog
	}
	if err := s.catalog.Delete(ctx, a.Filename); err != nil {
		return nil, err
	}
	return map[string]interface{}{"deleted": a.Filename}, nil
}

// === Basic Image Information Handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.GetDimensions(s.cache, a.Path)
}
