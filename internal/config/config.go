// Package config loads the flashcards-mcp configuration.
//
// Settings come from three layers, later ones winning: built-in defaults, a
// TOML file (by default $XDG_CONFIG_HOME/flashcards-mcp/config.toml), and
// FLASHCARDS_* variables taken from the process environment or a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/adrg/xdg"

	"github.com/ironsheep/flashcards-mcp/internal/grouping"
	"github.com/ironsheep/flashcards-mcp/internal/logger"
	"github.com/ironsheep/flashcards-mcp/internal/ocr"
)

const appName = "flashcards-mcp"

// Catalog backends.
const (
	BackendFile = "file"
	BackendGCS  = "gcs"
)

// Config is the complete application configuration.
type Config struct {
	Grouping grouping.Config `toml:"grouping"`
	OCR      ocr.Options     `toml:"ocr"`
	Catalog  CatalogConfig   `toml:"catalog"`
	Log      LogConfig       `toml:"log"`
}

// CatalogConfig selects where processed pages are recorded.
type CatalogConfig struct {
	// Backend is "file" or "gcs".
	Backend string `toml:"backend"`

	// Path is the JSON file used by the file backend.
	Path string `toml:"path"`

	// Bucket and Object locate the document for the gcs backend.
	Bucket string `toml:"bucket"`
	Object string `toml:"object"`
}

type LogConfig struct {
	Level string `toml:"level"`

	// File is the log file; empty logs to stderr.
	File string `toml:"file"`
}

// NewDefaultConfig returns the configuration used when nothing is set.
func NewDefaultConfig() *Config {
	return &Config{
		Grouping: grouping.DefaultConfig(),
		OCR: ocr.Options{
			Engine:     ocr.EngineTesseract,
			Language:   "eng",
			MaxRetries: 3,
			Backoff:    2 * time.Second,
		},
		Catalog: CatalogConfig{
			Backend: BackendFile,
			Path:    filepath.Join(xdg.DataHome, appName, "uploaded_images.json"),
			Object:  "uploaded_images.json",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// DefaultPath is the config file read when no path is given.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, appName, "config.toml")
}

// Load reads the config file at path over the defaults, then applies env.
//
// An empty path means DefaultPath, which may be absent. An explicit path must
// exist. Keys the file sets that no field knows are an error, so typos do not
// pass silently.
func Load(path string, env Env) (*Config, error) {
	config := NewDefaultConfig()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	err := config.decodeFile(path)
	switch {
	case err == nil:
	case !explicit && errors.Is(err, fs.ErrNotExist):
		// no config file, keep defaults
	default:
		return nil, err
	}

	if err := config.applyEnv(env); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) decodeFile(path string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}

	md, err := toml.DecodeFile(path, c)
	if err != nil {
		return fmt.Errorf("failed to decode TOML config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("unknown config keys in %s: %v", path, undecoded)
	}
	return nil
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := c.Grouping.Validate(); err != nil {
		return err
	}

	switch c.OCR.Engine {
	case ocr.EngineTesseract, ocr.EngineVision:
	default:
		return fmt.Errorf("invalid ocr.engine %q: want %q or %q", c.OCR.Engine, ocr.EngineTesseract, ocr.EngineVision)
	}
	if c.OCR.Backoff < 0 {
		return fmt.Errorf("invalid ocr.backoff %v: must not be negative", c.OCR.Backoff)
	}

	switch c.Catalog.Backend {
	case BackendFile:
		if c.Catalog.Path == "" {
			return errors.New("catalog.path is required for the file backend")
		}
	case BackendGCS:
		if c.Catalog.Bucket == "" || c.Catalog.Object == "" {
			return errors.New("catalog.bucket and catalog.object are required for the gcs backend")
		}
	default:
		return fmt.Errorf("invalid catalog.backend %q: want %q or %q", c.Catalog.Backend, BackendFile, BackendGCS)
	}

	if !logger.ValidLevel(c.Log.Level) {
		return fmt.Errorf("invalid log.level %q", c.Log.Level)
	}
	return nil
}
