// Package imaging loads page images and draws or cuts out grouped flashcards.
//
// All coordinates use the raster convention: (0,0) is the top-left corner,
// X increases rightward and Y increases downward. Boxes come from the grouping
// package in the same pixel space the recognizer reported.
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. The rendering and cropping functions
// never modify their source image.
//
// # Output Encoding
//
// Functions that produce images return them as base64-encoded PNG so they can
// travel inside MCP JSON responses.
package imaging
