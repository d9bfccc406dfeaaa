package ocr

import (
	"context"
	"fmt"

	"github.com/ironsheep/flashcards-mcp/internal/grouping"
)

// Engine names accepted by Options.Engine.
const (
	EngineTesseract = "tesseract"
	EngineVision    = "vision"
)

// Recognizer extracts word annotations from an image file.
type Recognizer interface {
	Recognize(ctx context.Context, imagePath string) ([]grouping.Annotation, error)
}

// RetrievalError reports that a recognizer could not produce annotations.
type RetrievalError struct {
	Engine string
	Path   string
	Err    error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("%s text detection failed for %s: %v", e.Engine, e.Path, e.Err)
}

func (e *RetrievalError) Unwrap() error { return e.Err }
