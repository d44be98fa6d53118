package app

import (
	"context"
	"io"
	"log/slog"

	"github.com/specialistvlad/stapes/internal/config"
	"github.com/specialistvlad/stapes/internal/ctxlog"
	"github.com/specialistvlad/stapes/internal/registry"
)

// App encapsulates the application's dependencies and configuration.
type App struct {
	logger   *slog.Logger
	loader   config.Loader
	families *registry.Families
}

// NewApp creates an App with its own isolated logger writing to logW.
func NewApp(logW io.Writer, cfg *Config, loader config.Loader) (*App, error) {
	logger, err := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	if err != nil {
		return nil, err
	}

	families := registry.Default()
	if cfg.MinPositiveMean > 0 || cfg.Floor > 0 {
		minPos, floor := families.MinPositiveMean(), families.Floor()
		if cfg.MinPositiveMean > 0 {
			minPos = cfg.MinPositiveMean
		}
		if cfg.Floor > 0 {
			floor = cfg.Floor
		}
		families = families.WithClamps(minPos, floor)
	}
	logger.Debug("App configured.", "families", families.Names(), "min_positive_mean", families.MinPositiveMean(), "floor", families.Floor())

	return &App{logger: logger, loader: loader, families: families}, nil
}

// Context attaches the app's logger to ctx.
func (a *App) Context(ctx context.Context) context.Context {
	return ctxlog.WithLogger(ctx, a.logger)
}

// Families is the distribution family table the app forecasts with.
func (a *App) Families() *registry.Families {
	return a.families
}
