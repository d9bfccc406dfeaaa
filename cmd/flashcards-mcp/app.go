package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"cloud.google.com/go/storage"
	"github.com/ridge/must/v2"
	"google.golang.org/api/option"

	"github.com/ironsheep/flashcards-mcp/internal/catalog"
	"github.com/ironsheep/flashcards-mcp/internal/config"
	"github.com/ironsheep/flashcards-mcp/internal/grouping"
	"github.com/ironsheep/flashcards-mcp/internal/imaging"
	"github.com/ironsheep/flashcards-mcp/internal/logger"
	"github.com/ironsheep/flashcards-mcp/internal/ocr"
)

// app holds what every command needs once configuration is loaded.
type app struct {
	cfg     *config.Config
	log     *slog.Logger
	cache   *imaging.ImageCache
	engine  *grouping.Engine
	closers []func() error
}

func newApp(flags *globalFlags) (*app, error) {
	env, err := config.LoadEnv(flags.envFile)
	if err != nil {
		return nil, err
	}
	if flags.logLevel != "" {
		env[config.EnvLogLevel] = flags.logLevel
	}

	cfg, err := config.Load(flags.configPath, env)
	if err != nil {
		return nil, err
	}

	log, closeLog, err := logger.Init(cfg.Log.File, cfg.Log.Level)
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:   cfg,
		log:   log,
		cache: imaging.NewImageCache(),
		// config.Load validated the grouping section.
		engine:  must.OK1(grouping.NewEngine(cfg.Grouping, log)),
		closers: []func() error{closeLog},
	}, nil
}

// Recognizer builds the configured OCR engine.
func (a *app) Recognizer(ctx context.Context) (ocr.Recognizer, error) {
	rec, closeFn, err := ocr.New(ctx, a.cfg.OCR, a.cache)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, closeFn)
	return rec, nil
}

// Catalog opens the configured catalog backend.
func (a *app) Catalog(ctx context.Context) (*catalog.Catalog, error) {
	switch a.cfg.Catalog.Backend {
	case config.BackendGCS:
		var opts []option.ClientOption
		if a.cfg.OCR.CredentialsFile != "" {
			opts = append(opts, option.WithCredentialsFile(a.cfg.OCR.CredentialsFile))
		}
		client, err := storage.NewClient(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create storage client: %w", err)
		}
		a.closers = append(a.closers, client.Close)
		backend := catalog.NewGCSBackend(client, a.cfg.Catalog.Bucket, a.cfg.Catalog.Object)
		return catalog.New(backend, a.log), nil
	default:
		return catalog.New(catalog.NewFileBackend(a.cfg.Catalog.Path), a.log), nil
	}
}

// Close releases clients in reverse order of creation, the log file last.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
