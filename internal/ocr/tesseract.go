package ocr

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"os"

	"github.com/otiai10/gosseract/v2"

	"github.com/ironsheep/flashcards-mcp/internal/grouping"
	"github.com/ironsheep/flashcards-mcp/internal/imaging"
)

// TesseractRecognizer recognizes words with a local Tesseract installation.
type TesseractRecognizer struct {
	// Language is a Tesseract language code such as "eng" or "pol".
	Language string

	// Preprocess converts the image to high-contrast grayscale before OCR.
	// It helps with photographed pages and tinted backgrounds.
	Preprocess bool

	// Cache, when set, is used to load images for preprocessing.
	Cache *imaging.ImageCache
}

// Recognize implements Recognizer.
//
// The returned slice starts with a synthetic annotation that carries the full
// page text and spans every word, followed by one annotation per non-empty
// word at Tesseract's RIL_WORD level.
//
// Tesseract calls are not cancellable; ctx is only checked before OCR starts.
func (r *TesseractRecognizer) Recognize(ctx context.Context, imagePath string) ([]grouping.Annotation, error) {
	if err := ctx.Err(); err != nil {
		return nil, r.fail(imagePath, err)
	}

	path := imagePath
	if r.Preprocess {
		tmpPath, err := r.preprocessed(imagePath)
		if err != nil {
			return nil, r.fail(imagePath, err)
		}
		defer os.Remove(tmpPath)
		path = tmpPath
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(r.language()); err != nil {
		return nil, r.fail(imagePath, fmt.Errorf("failed to set language: %w", err))
	}
	if err := client.SetImage(path); err != nil {
		return nil, r.fail(imagePath, fmt.Errorf("failed to set image: %w", err))
	}

	text, err := client.Text()
	if err != nil {
		return nil, r.fail(imagePath, fmt.Errorf("OCR failed: %w", err))
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, r.fail(imagePath, fmt.Errorf("failed to get word boxes: %w", err))
	}

	return annotationsFromBoxes(text, boxes), nil
}

func (r *TesseractRecognizer) language() string {
	if r.Language == "" {
		return "eng"
	}
	return r.Language
}

func (r *TesseractRecognizer) fail(path string, err error) error {
	return &RetrievalError{Engine: EngineTesseract, Path: path, Err: err}
}

// preprocessed writes a cleaned-up copy of the image to a temporary PNG and
// returns its path. The caller removes the file.
func (r *TesseractRecognizer) preprocessed(imagePath string) (string, error) {
	var (
		img image.Image
		err error
	)
	if r.Cache != nil {
		img, err = r.Cache.Load(imagePath)
	} else {
		img, err = imaging.Open(imagePath)
	}
	if err != nil {
		return "", err
	}

	tmpFile, err := os.CreateTemp("", "ocr-preprocessed-*.png")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	if err := png.Encode(tmpFile, imaging.Preprocess(img)); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return "", fmt.Errorf("failed to encode temp image: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("failed to write temp image: %w", err)
	}
	return tmpPath, nil
}

// annotationsFromBoxes converts Tesseract word boxes into clockwise quads and
// prepends the whole-page annotation.
func annotationsFromBoxes(fullText string, boxes []gosseract.BoundingBox) []grouping.Annotation {
	words := make([]grouping.Annotation, 0, len(boxes))
	var span image.Rectangle
	for _, box := range boxes {
		if box.Word == "" {
			continue
		}
		words = append(words, grouping.Annotation{Text: box.Word, Vertices: quad(box.Box)})
		if span.Empty() {
			span = box.Box
		} else {
			span = span.Union(box.Box)
		}
	}
	if len(words) == 0 {
		return nil
	}

	out := make([]grouping.Annotation, 0, len(words)+1)
	out = append(out, grouping.Annotation{Text: fullText, Vertices: quad(span)})
	return append(out, words...)
}

func quad(r image.Rectangle) []grouping.Vertex {
	return []grouping.Vertex{
		{X: r.Min.X, Y: r.Min.Y},
		{X: r.Max.X, Y: r.Min.Y},
		{X: r.Max.X, Y: r.Max.Y},
		{X: r.Min.X, Y: r.Max.Y},
	}
}
