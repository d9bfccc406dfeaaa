package server

import (
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/ironsheep/flashcards-mcp/internal/catalog"
	"github.com/ironsheep/flashcards-mcp/internal/grouping"
)

// createTestImageFile creates a test image file and returns its path
func createTestImageFile(t *testing.T, width, height int, c color.Color) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}

	path := filepath.Join(t.TempDir(), "heart.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}

	return path
}

// fakeRecognizer returns canned annotations.
type fakeRecognizer struct {
	annotations []grouping.Annotation
	err         error
	paths       []string
}

func (f *fakeRecognizer) Recognize(ctx context.Context, imagePath string) ([]grouping.Annotation, error) {
	f.paths = append(f.paths, imagePath)
	return f.annotations, f.err
}

func rectAnnotation(text string, l, t, r, b int) grouping.Annotation {
	return grouping.Annotation{
		Text:     text,
		Vertices: []grouping.Vertex{{X: l, Y: t}, {X: r, Y: t}, {X: r, Y: b}, {X: l, Y: b}},
	}
}

// pageAnnotations is a page with two flashcards: "Left atrium" on one line
// and "Aorta" well below it.
func pageAnnotations() []grouping.Annotation {
	return []grouping.Annotation{
		rectAnnotation("Left atrium\nAorta", 10, 10, 110, 120),
		rectAnnotation("Left", 10, 10, 50, 30),
		rectAnnotation("atrium", 55, 10, 110, 30),
		rectAnnotation("Aorta", 10, 100, 60, 120),
	}
}

type testServer struct {
	*Server
	recognizer *fakeRecognizer
	catalog    *catalog.Catalog
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	engine, err := grouping.NewEngine(grouping.DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	rec := &fakeRecognizer{annotations: pageAnnotations()}
	cat := catalog.New(catalog.NewFileBackend(filepath.Join(t.TempDir(), "catalog.json")), nil)

	s := New(Options{Engine: engine, Recognizer: rec, Catalog: cat, Version: "test"})
	return &testServer{Server: s, recognizer: rec, catalog: cat}
}

// callTool runs a tools/call request and returns the decoded tool result or
// the JSON-RPC error.
func callTool(t *testing.T, s *Server, name string, args interface{}) (map[string]interface{}, *MCPError) {
	t.Helper()

	params, err := json.Marshal(map[string]interface{}{"name": name, "arguments": args})
	if err != nil {
		t.Fatalf("failed to marshal params: %v", err)
	}
	resp := s.handleRequest(context.Background(), &MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  params,
	})
	if resp == nil {
		t.Fatal("handleRequest returned nil")
	}
	if resp.Error != nil {
		return nil, resp.Error
	}

	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatalf("Result should be a map, got %T", resp.Result)
	}
	content, ok := result["content"].([]map[string]interface{})
	if !ok || len(content) != 1 {
		t.Fatalf("content should hold one item, got %v", result["content"])
	}
	if content[0]["type"] != "text" {
		t.Errorf("content type: got %v, want text", content[0]["type"])
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal([]byte(content[0]["text"].(string)), &decoded); err != nil {
		t.Fatalf("tool result is not a JSON object: %v", err)
	}
	return decoded, nil
}
