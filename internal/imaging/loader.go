package imaging

import (
	"fmt"
	"image"
	"path/filepath"
	"sync"

	"github.com/disintegration/imaging"
)

// ImageCache keeps decoded page images keyed by their cleaned absolute path so
// rendering and cropping after a grouping call do not decode the file again.
//
// ImageCache is safe for concurrent use.
type ImageCache struct {
	mu     sync.RWMutex
	images map[string]image.Image
}

// NewImageCache creates an empty cache.
func NewImageCache() *ImageCache {
	return &ImageCache{images: make(map[string]image.Image)}
}

// Load returns the decoded image at path, reading it from disk on first use.
func (c *ImageCache) Load(path string) (image.Image, error) {
	key := cacheKey(path)

	c.mu.RLock()
	img, ok := c.images[key]
	c.mu.RUnlock()
	if ok {
		return img, nil
	}

	img, err := Open(path)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.images[key] = img
	c.mu.Unlock()
	return img, nil
}

// Evict drops path from the cache. Callers evict after replacing a file on
// disk under the same name.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.images, cacheKey(path))
	c.mu.Unlock()
}

// Len returns the number of cached images.
func (c *ImageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.images)
}

func cacheKey(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}

// Open decodes an image file and applies its EXIF orientation, so photographed
// pages come out upright in the same orientation the recognizer sees them.
func Open(path string) (image.Image, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	return img, nil
}

// DimensionsResult contains the width and height of an image.
type DimensionsResult struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// GetDimensions loads path through cache and reports its size.
func GetDimensions(cache *ImageCache, path string) (*DimensionsResult, error) {
	img, err := cache.Load(path)
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	return &DimensionsResult{Width: b.Dx(), Height: b.Dy()}, nil
}
