package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/specialistvlad/actionref/internal/ctxlog"
	"github.com/specialistvlad/actionref/internal/fsutil"
	"github.com/specialistvlad/actionref/internal/registry"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	errW     io.Writer
	logger   *slog.Logger
	registry *registry.Registry
	config   *Config
}

// NewApp is the constructor for the main application. Command output goes to
// outW; logs and diagnostics go to errW. Every module is registered and the
// registry is loaded and validated. Without modules, the core modules are
// used.
//
// A registry that fails validation is a programmer error and panics; a broken
// user schema directory is reported as an error.
func NewApp(outW, errW io.Writer, cfg *Config, modules ...registry.Module) (*App, error) {
	logger := newLogger(cfg, errW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules
	}
	for _, mod := range modules {
		mod.Register(reg)
	}
	logger.Debug("All Go modules registered.", "count", len(modules))

	schemasPath, err := fsutil.ExpandPath(cfg.SchemasPath)
	if err != nil {
		return nil, err
	}
	if err := reg.LoadManifests(ctx, schemasPath); err != nil {
		return nil, fmt.Errorf("failed to load schema manifests: %w", err)
	}

	if err := reg.ValidateRegistry(ctx); err != nil {
		// This is a programmer error (mismatch between code and manifests), so we panic.
		panic(err)
	}
	logger.Debug("Registry validation passed.")

	return &App{
		outW:     outW,
		errW:     errW,
		logger:   logger,
		registry: reg,
		config:   cfg,
	}, nil
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// withLogger attaches the app's logger to ctx.
func (a *App) withLogger(ctx context.Context) context.Context {
	return ctxlog.WithLogger(ctx, a.logger)
}
