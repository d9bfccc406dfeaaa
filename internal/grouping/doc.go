// Package grouping turns per-token OCR bounding boxes into merged text regions
// ("flashcards").
//
// The package is pure geometry. It never performs recognition or I/O; token
// input is produced by the ocr package and the resulting boxes are consumed by
// the imaging, catalog and server packages.
//
// # Pipeline
//
//  1. Normalize: raw annotations become Tokens. The leading whole-image record
//     is skipped, malformed records become ValidationErrors, artifact text
//     (watermarks, long digit runs) is filtered out.
//  2. Strategy: GreedyMerge (default) or HierarchicalCluster turns the tokens
//     into Regions, each owning the IDs of the tokens it covers.
//  3. Project: Regions become Boxes plus optional label text.
//
// # Coordinate System
//
// Pixel space with the origin at the top-left corner, X increasing rightward
// and Y increasing downward. A Box is emitted as [[left, top], [right, bottom]].
//
// # Concurrency
//
// An Engine is immutable after construction and may be shared. Each Group call
// builds and owns its working set of regions, so concurrent calls never observe
// each other's partially merged state.
package grouping
