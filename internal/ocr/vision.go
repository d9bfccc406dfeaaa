package ocr

import (
	"context"
	"fmt"
	"os"
	"time"

	vision "cloud.google.com/go/vision/v2/apiv1"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"github.com/cenkalti/backoff/v4"
	gax "github.com/googleapis/gax-go/v2"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/ironsheep/flashcards-mcp/internal/grouping"
)

// VisionClient is the subset of vision.ImageAnnotatorClient used here.
// Ref: https://pkg.go.dev/cloud.google.com/go/vision/v2/apiv1
// Tests substitute a fake.
type VisionClient interface {
	DetectTexts(ctx context.Context, img *visionpb.Image, ictx *visionpb.ImageContext, maxResults int, opts ...gax.CallOption) ([]*visionpb.EntityAnnotation, error)
}

// NewVisionClient creates an annotator client. An empty credentialsFile falls
// back to Application Default Credentials.
func NewVisionClient(ctx context.Context, credentialsFile string) (*vision.ImageAnnotatorClient, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := vision.NewImageAnnotatorClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create vision client: %w", err)
	}
	return client, nil
}

// VisionRecognizer recognizes words with Google Cloud Vision text detection.
type VisionRecognizer struct {
	Client VisionClient

	// LanguageHints are passed to the API, e.g. []string{"en", "pl"}.
	LanguageHints []string

	// MaxRetries bounds retries of transient failures.
	MaxRetries uint64

	// BackoffDuration is the constant delay between retries.
	BackoffDuration time.Duration
}

// Recognize implements Recognizer. Annotations are returned in the order the
// API reports them, the whole text block first.
func (r *VisionRecognizer) Recognize(ctx context.Context, imagePath string) ([]grouping.Annotation, error) {
	content, err := os.ReadFile(imagePath)
	if err != nil {
		return nil, r.fail(imagePath, fmt.Errorf("failed to read image: %w", err))
	}

	img := &visionpb.Image{Content: content}
	var ictx *visionpb.ImageContext
	if len(r.LanguageHints) > 0 {
		ictx = &visionpb.ImageContext{LanguageHints: r.LanguageHints}
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(r.BackoffDuration), r.MaxRetries),
		ctx,
	)
	entities, err := backoff.RetryWithData(func() ([]*visionpb.EntityAnnotation, error) {
		entities, err := r.Client.DetectTexts(ctx, img, ictx, 0)
		if err != nil && !retryable(err) {
			return nil, backoff.Permanent(err)
		}
		return entities, err
	}, policy)
	if err != nil {
		return nil, r.fail(imagePath, err)
	}

	return annotationsFromEntities(entities), nil
}

func (r *VisionRecognizer) fail(path string, err error) error {
	return &RetrievalError{Engine: EngineVision, Path: path, Err: err}
}

// retryable reports whether err is a transient gRPC failure.
func retryable(err error) bool {
	switch status.Code(err) {
	case codes.Unavailable, codes.DeadlineExceeded, codes.ResourceExhausted, codes.Aborted, codes.Internal:
		return true
	default:
		return false
	}
}

// annotationsFromEntities copies API entities into annotations. Vertex counts
// are kept as reported so malformed polygons reach the normalizer.
func annotationsFromEntities(entities []*visionpb.EntityAnnotation) []grouping.Annotation {
	out := make([]grouping.Annotation, 0, len(entities))
	for _, e := range entities {
		vertices := e.GetBoundingPoly().GetVertices()
		a := grouping.Annotation{
			Text:     e.GetDescription(),
			Vertices: make([]grouping.Vertex, len(vertices)),
		}
		for i, v := range vertices {
			a.Vertices[i] = grouping.Vertex{X: int(v.GetX()), Y: int(v.GetY())}
		}
		out = append(out, a)
	}
	return out
}
