package ocr

import (
	"context"
	"fmt"
	"time"

	"github.com/ironsheep/flashcards-mcp/internal/imaging"
)

// Options selects and configures a recognizer.
type Options struct {
	Engine          string        `toml:"engine"`
	Language        string        `toml:"language"`
	LanguageHints   []string      `toml:"language_hints"`
	CredentialsFile string        `toml:"credentials_file"`
	Preprocess      bool          `toml:"preprocess"`
	MaxRetries      uint64        `toml:"max_retries"`
	Backoff         time.Duration `toml:"backoff"`
}

// New builds the recognizer named by opts.Engine. The returned close function
// releases any client connection and is never nil.
func New(ctx context.Context, opts Options, cache *imaging.ImageCache) (Recognizer, func() error, error) {
	noop := func() error { return nil }

	switch opts.Engine {
	case EngineTesseract, "":
		return &TesseractRecognizer{
			Language:   opts.Language,
			Preprocess: opts.Preprocess,
			Cache:      cache,
		}, noop, nil
	case EngineVision:
		client, err := NewVisionClient(ctx, opts.CredentialsFile)
		if err != nil {
			return nil, noop, err
		}
		return &VisionRecognizer{
			Client:          client,
			LanguageHints:   opts.LanguageHints,
			MaxRetries:      opts.MaxRetries,
			BackoffDuration: opts.Backoff,
		}, client.Close, nil
	default:
		return nil, noop, fmt.Errorf("unknown OCR engine: %q", opts.Engine)
	}
}
