// Package catalog stores the grouping results of processed pages.
//
// The catalog is a single JSON document holding a list of records, one per
// image filename, each with the caption it was uploaded with and the
// flashcard boxes found on it. Where the document lives is up to a Backend:
// a local file or an object in a Cloud Storage bucket.
package catalog
