package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Environment variables read by Load.
const (
	EnvStrategy        = "FLASHCARDS_STRATEGY"
	EnvOCREngine       = "FLASHCARDS_OCR_ENGINE"
	EnvOCRLanguage     = "FLASHCARDS_OCR_LANGUAGE"
	EnvOCRPreprocess   = "FLASHCARDS_OCR_PREPROCESS"
	EnvOCRMaxRetries   = "FLASHCARDS_OCR_MAX_RETRIES"
	EnvOCRBackoff      = "FLASHCARDS_OCR_BACKOFF"
	EnvCatalogBackend  = "FLASHCARDS_CATALOG_BACKEND"
	EnvCatalogPath     = "FLASHCARDS_CATALOG_PATH"
	EnvCatalogBucket   = "FLASHCARDS_CATALOG_BUCKET"
	EnvCatalogObject   = "FLASHCARDS_CATALOG_OBJECT"
	EnvLogLevel        = "FLASHCARDS_LOG_LEVEL"
	EnvLogFile         = "FLASHCARDS_LOG_FILE"
	EnvCredentialsFile = "GOOGLE_APPLICATION_CREDENTIALS"
)

// Env is a snapshot of environment variables.
type Env map[string]string

// LoadEnv reads the given .env files, missing ones skipped, and overlays the
// process environment so real variables win over file entries. Nothing is
// written back to the process environment; credentials found here reach the
// cloud clients only as explicit options.
func LoadEnv(dotenvFiles ...string) (Env, error) {
	env := Env{}
	for _, name := range dotenvFiles {
		values, err := godotenv.Read(name)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
		for k, v := range values {
			if _, seen := env[k]; !seen {
				env[k] = v
			}
		}
	}

	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[k] = v
		}
	}
	return env, nil
}

func (e Env) lookup(name string) (string, bool) {
	v, ok := e[name]
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return strings.TrimSpace(v), true
}

func (c *Config) applyEnv(env Env) error {
	overrides := []struct {
		name string
		dst  *string
	}{
		{EnvStrategy, &c.Grouping.Strategy},
		{EnvOCREngine, &c.OCR.Engine},
		{EnvOCRLanguage, &c.OCR.Language},
		{EnvCatalogBackend, &c.Catalog.Backend},
		{EnvCatalogPath, &c.Catalog.Path},
		{EnvCatalogBucket, &c.Catalog.Bucket},
		{EnvCatalogObject, &c.Catalog.Object},
		{EnvLogLevel, &c.Log.Level},
		{EnvLogFile, &c.Log.File},
	}
	for _, s := range overrides {
		if v, ok := env.lookup(s.name); ok {
			*s.dst = v
		}
	}

	if v, ok := env.lookup(EnvOCRPreprocess); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvOCRPreprocess, err)
		}
		c.OCR.Preprocess = b
	}
	if v, ok := env.lookup(EnvOCRMaxRetries); ok {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvOCRMaxRetries, err)
		}
		c.OCR.MaxRetries = n
	}
	if v, ok := env.lookup(EnvOCRBackoff); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvOCRBackoff, err)
		}
		c.OCR.Backoff = d
	}

	// The config file wins over the ambient credentials variable.
	if c.OCR.CredentialsFile == "" {
		if v, ok := env.lookup(EnvCredentialsFile); ok {
			c.OCR.CredentialsFile = v
		}
	}
	return nil
}
