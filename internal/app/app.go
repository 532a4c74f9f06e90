package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/vk/usdcheck/internal/compliance"
	"github.com/vk/usdcheck/internal/ctxlog"
	"github.com/vk/usdcheck/internal/engine"
	"github.com/vk/usdcheck/internal/profile"
	"github.com/vk/usdcheck/internal/usd"
	"github.com/vk/usdcheck/internal/validate"
)

// ToolName prefixes every per-file verdict line.
const ToolName = "usdcheck"

// App encapsulates the tool's dependencies, configuration and lifecycle.
type App struct {
	outW     io.Writer
	diagW    io.Writer
	logger   *slog.Logger
	config   *Config
	registry *engine.Registry
	checker  engine.Checker
}

// NewApp constructs a fully wired application instance with its own
// isolated logger. A broken profile or checker configuration is a fatal
// startup error and panics; the entrypoint recovers it into a clean exit.
func NewApp(outW, diagW io.Writer, cfg *Config) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, diagW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	checkerCfg := compliance.DefaultConfig()
	checkerCfg.Verbose = cfg.Verbose
	if cfg.ProfilePath != "" {
		loaded, err := profile.Load(ctx, cfg.ProfilePath, checkerCfg)
		if err != nil {
			panic(fmt.Errorf("failed to load checker profile: %w", err))
		}
		checkerCfg = loaded
	}
	checker, err := compliance.New(checkerCfg)
	if err != nil {
		panic(fmt.Errorf("failed to configure compliance checker: %w", err))
	}
	logger.Debug("Compliance checker configured.", "arkit", checkerCfg.ARKit)

	registry := engine.NewRegistry()
	registry.Register(usd.KindMesh, validate.Mesh)
	registry.Register(usd.KindMaterial, validate.Material)
	logger.Debug("Structural validators registered.", "count", registry.Len())

	return &App{
		outW:     outW,
		diagW:    diagW,
		logger:   logger,
		config:   cfg,
		registry: registry,
		checker:  checker,
	}
}

// Registry returns the application's validator registry, primarily for tests.
func (a *App) Registry() *engine.Registry {
	return a.registry
}
