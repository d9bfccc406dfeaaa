package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
)

// GCSBackend keeps the catalog as one object in a Cloud Storage bucket.
type GCSBackend struct {
	client *storage.Client
	bucket string
	object string
}

// NewGCSBackend returns a backend for gs://bucket/object.
func NewGCSBackend(client *storage.Client, bucket, object string) *GCSBackend {
	return &GCSBackend{client: client, bucket: bucket, object: object}
}

func (b *GCSBackend) handle() *storage.ObjectHandle {
	return b.client.Bucket(b.bucket).Object(b.object)
}

// Read returns the object content, or nil when the object does not exist.
func (b *GCSBackend) Read(ctx context.Context) ([]byte, error) {
	r, err := b.handle().NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open gs://%s/%s: %w", b.bucket, b.object, err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read gs://%s/%s: %w", b.bucket, b.object, err)
	}
	return data, nil
}

// Write uploads data, replacing the object.
func (b *GCSBackend) Write(ctx context.Context, data []byte) error {
	w := b.handle().NewWriter(ctx)
	w.ContentType = "application/json"

	if _, err := w.Write(data); err != nil {
		w.Close()
		return fmt.Errorf("failed to write to GCS: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close GCS writer: %w", err)
	}
	return nil
}
