package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ironsheep/flashcards-mcp/internal/grouping"
)

var (
	// ErrNotFound is returned when no record has the requested filename.
	ErrNotFound = errors.New("catalog: record not found")

	// ErrDuplicate is returned by Add when a record with the same filename
	// already exists.
	ErrDuplicate = errors.New("catalog: record already exists")
)

// Record is one processed page.
type Record struct {
	Filename     string         `json:"filename"`
	Caption      string         `json:"caption"`
	GroupedBoxes []grouping.Box `json:"grouped_boxes"`
	Labels       []string       `json:"labels,omitempty"`
	Strategy     string         `json:"strategy,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}

// Backend reads and writes the raw catalog document.
//
// Read returns nil data and no error when the document does not exist yet.
type Backend interface {
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, data []byte) error
}

// Catalog is the list of records kept by a Backend. Every operation reads the
// document fresh, so edits made by another process are picked up.
//
// Catalog is safe for concurrent use.
type Catalog struct {
	mu      sync.Mutex
	backend Backend
	log     *slog.Logger
	now     func() time.Time
}

// New returns a catalog over backend. A nil logger falls back to slog.Default.
func New(backend Backend, logger *slog.Logger) *Catalog {
	if logger == nil {
		logger = slog.Default()
	}
	return &Catalog{backend: backend, log: logger, now: time.Now}
}

// List returns all records in stored order.
func (c *Catalog) List(ctx context.Context) ([]Record, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.load(ctx)
}

// Get returns the record for filename.
func (c *Catalog) Get(ctx context.Context, filename string) (*Record, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	records, err := c.load(ctx)
	if err != nil {
		return nil, err
	}
	i := indexOf(records, filename)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, filename)
	}
	return &records[i], nil
}

// Add appends rec. A zero CreatedAt is set to the current time.
func (c *Catalog) Add(ctx context.Context, rec Record) error {
	if rec.Filename == "" {
		return errors.New("catalog: record has no filename")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	records, err := c.load(ctx)
	if err != nil {
		return err
	}
	if indexOf(records, rec.Filename) >= 0 {
		return fmt.Errorf("%w: %s", ErrDuplicate, rec.Filename)
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = c.now().UTC()
	}
	return c.store(ctx, append(records, rec))
}

// Update replaces the record with the same filename, keeping its position and
// creation time.
func (c *Catalog) Update(ctx context.Context, rec Record) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	records, err := c.load(ctx)
	if err != nil {
		return err
	}
	i := indexOf(records, rec.Filename)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, rec.Filename)
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = records[i].CreatedAt
	}
	records[i] = rec
	return c.store(ctx, records)
}

// Delete removes the record for filename.
func (c *Catalog) Delete(ctx context.Context, filename string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	records, err := c.load(ctx)
	if err != nil {
		return err
	}
	i := indexOf(records, filename)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, filename)
	}
	return c.store(ctx, append(records[:i], records[i+1:]...))
}

// load decodes the document. Content that is not a record list is treated as
// an empty catalog and overwritten on the next write.
func (c *Catalog) load(ctx context.Context) ([]Record, error) {
	data, err := c.backend.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	if len(data) == 0 {
		return []Record{}, nil
	}

	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		c.log.Warn("catalog content is malformed, starting empty", "error", err)
		return []Record{}, nil
	}
	if records == nil {
		records = []Record{}
	}
	return records, nil
}

func (c *Catalog) store(ctx context.Context, records []Record) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode catalog: %w", err)
	}
	if err := c.backend.Write(ctx, data); err != nil {
		return fmt.Errorf("failed to write catalog: %w", err)
	}
	return nil
}

func indexOf(records []Record, filename string) int {
	for i := range records {
		if records[i].Filename == filename {
			return i
		}
	}
	return -1
}
