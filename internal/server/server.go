package server

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/ironsheep/flashcards-mcp/internal/catalog"
	"github.com/ironsheep/flashcards-mcp/internal/grouping"
	"github.com/ironsheep/flashcards-mcp/internal/imaging"
	"github.com/ironsheep/flashcards-mcp/internal/ocr"
)

// maxRequestSize bounds one JSON-RPC line. Annotation lists for a dense page
// run to a few megabytes.
const maxRequestSize = 16 * 1024 * 1024

// Options wires a Server to its collaborators.
type Options struct {
	// Engine groups tokens with the configured strategy. Required.
	Engine *grouping.Engine

	// Recognizer reads tokens off images. Without it flashcards_group fails
	// and only flashcards_group_annotations can group.
	Recognizer ocr.Recognizer

	// Catalog records processed pages. Without it the catalog tools fail.
	Catalog *catalog.Catalog

	// Cache is shared with the recognizer when set; a new one is created
	// otherwise.
	Cache *imaging.ImageCache

	Logger  *slog.Logger
	Version string
}

// Server handles MCP protocol communication
type Server struct {
	cache      *imaging.ImageCache
	engine     *grouping.Engine
	recognizer ocr.Recognizer
	catalog    *catalog.Catalog
	log        *slog.Logger
	version    string
}

// MCPRequest represents an incoming JSON-RPC request
type MCPRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// MCPResponse represents an outgoing JSON-RPC response
type MCPResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *MCPError   `json:"error,omitempty"`
}

// MCPError represents a JSON-RPC error
type MCPError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// JSON-RPC error codes.
const (
	codeParseError     = -32700
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeToolFailed     = -32000
)

// New creates a new MCP server instance
func New(opts Options) *Server {
	s := &Server{
		cache:      opts.Cache,
		engine:     opts.Engine,
		recognizer: opts.Recognizer,
		catalog:    opts.Catalog,
		log:        opts.Logger,
		version:    opts.Version,
	}
	if s.cache == nil {
		s.cache = imaging.NewImageCache()
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	if s.version == "" {
		s.version = "dev"
	}
	return s
}

// Run serves MCP requests from stdin until EOF or ctx is done, writing
// responses to stdout.
func (s *Server) Run(ctx context.Context) error {
	return s.Serve(ctx, os.Stdin, os.Stdout)
}

// Serve reads one JSON-RPC request per line from r and writes one response
// per line to w. Notifications get no response.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, maxRequestSize)

	encoder := json.NewEncoder(w)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var resp *MCPResponse
		var req MCPRequest
		if err := json.Unmarshal(line, &req); err != nil {
			s.log.Warn("failed to parse request", "error", err)
			resp = s.errorResponse(nil, codeParseError, "Parse error", err.Error())
		} else {
			resp = s.handleRequest(ctx, &req)
		}

		if resp != nil {
			if err := encoder.Encode(resp); err != nil {
				return fmt.Errorf("failed to encode response: %w", err)
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scanner error: %w", err)
	}

	return nil
}

// handleRequest routes requests to appropriate handlers
func (s *Server) handleRequest(ctx context.Context, req *MCPRequest) *MCPResponse {
	s.log.Debug("request", "method", req.Method, "id", req.ID)

	switch {
	case req.Method == "initialize":
		return s.handleInitialize(req)
	case strings.HasPrefix(req.Method, "notifications/"):
		// Client acknowledgments, no response needed
		return nil
	case req.Method == "tools/list":
		return s.handleToolsList(req)
	case req.Method == "tools/call":
		return s.handleToolsCall(ctx, req)
	case req.Method == "ping":
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result:  map[string]interface{}{},
		}
	default:
		return s.errorResponse(req.ID, codeMethodNotFound, fmt.Sprintf("Method not found: %s", req.Method), "")
	}
}

// handleInitialize responds to the initialize request
func (s *Server) handleInitialize(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"protocolVersion": "2024-11-05",
			"capabilities": map[string]interface{}{
				"tools": map[string]interface{}{},
			},
			"serverInfo": map[string]interface{}{
				"name":    "flashcards-mcp",
				"version": s.version,
			},
		},
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	e := &MCPError{Code: code, Message: message}
	if data != "" {
		e.Data = data
	}
	return &MCPResponse{JSONRPC: "2.0", ID: id, Error: e}
}
