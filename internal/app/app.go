package app

import (
	"context"
	"io"
	"log/slog"

	"github.com/cockroachdb/errors"
	"github.com/hashicorp/hcl/v2"
	"github.com/vk/plugdef/internal/compiler"
	"github.com/vk/plugdef/internal/config"
	"github.com/vk/plugdef/internal/ctxlog"
	"github.com/vk/plugdef/internal/introspect"
	"github.com/vk/plugdef/internal/registry"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	config   *Config
	registry *registry.Registry
	model    *config.Model
	catalog  *compiler.Catalog
	plugins  *introspect.Registry
}

// NewApp is the constructor for the main application. It loads and compiles
// every definition under cfg.Paths. Reports go to outW and logs to logW.
// Without modules, the modules compiled into the binary are used.
func NewApp(ctx context.Context, outW, logW io.Writer, cfg *Config, loader config.Loader, modules ...registry.Module) (*App, error) {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	ctx = ctxlog.WithLogger(ctx, logger)
	logger.Debug("Logger configured successfully.")

	model, converter, err := loader.Load(ctx, cfg.Paths...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load definitions")
	}
	if len(model.Definitions) == 0 {
		logger.Warn("No plugin definitions found.", "paths", cfg.Paths)
	}
	logger.Debug("Definitions loaded.", "plugins", len(model.Definitions), "warnings", len(model.Warnings))

	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules
	}
	for _, mod := range modules {
		mod.Register(reg)
	}
	logger.Debug("All Go modules registered.", "count", len(modules))

	if err := reg.Validate(ctx); err != nil {
		return nil, err
	}

	catalog, err := compiler.New(reg, converter).CompileAll(ctx, model.Definitions)
	if err != nil {
		return nil, err
	}

	plugins := introspect.New()
	for _, p := range catalog.Plugins() {
		plugins.Register(p)
	}
	logger.Debug("Plugins compiled.", "count", plugins.Len())

	return &App{
		outW:     outW,
		logger:   logger,
		config:   cfg,
		registry: reg,
		model:    model,
		catalog:  catalog,
		plugins:  plugins,
	}, nil
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Catalog returns the compiled plugins.
func (a *App) Catalog() *compiler.Catalog {
	return a.catalog
}

// Plugins returns the metadata catalog of the compiled plugins.
func (a *App) Plugins() *introspect.Registry {
	return a.plugins
}

// Warnings returns the non-fatal diagnostics produced while loading.
func (a *App) Warnings() hcl.Diagnostics {
	return a.model.Warnings
}

func (a *App) withLogger(ctx context.Context) context.Context {
	return ctxlog.WithLogger(ctx, a.logger)
}
