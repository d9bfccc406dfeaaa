// Package server implements the MCP (Model Context Protocol) server for
// flashcard extraction.
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
// Grouping:
//   - flashcards_group: OCR a page and group its words into flashcards
//   - flashcards_group_annotations: group annotations recognized elsewhere
//
// Rendering:
//   - flashcards_render: draw flashcard boxes on the page
//   - flashcards_crop: cut out one flashcard
//
// Catalog:
//   - flashcards_list, flashcards_get, flashcards_delete
//
// Basic Image Information:
//   - image_load: Load image and get dimensions
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: the Go error string
//
// Nothing but protocol messages is written to stdout; logs go to the
// configured slog handler.
package server
