package app

import (
	"io"
	"log/slog"

	"github.com/vk/mdprune/internal/action"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW   io.Writer
	logger *slog.Logger
	config *Config
	trash  action.Trasher
}

// Option customizes an App.
type Option func(*App)

// WithTrash replaces the platform recycle bin.
func WithTrash(t action.Trasher) Option {
	return func(a *App) { a.trash = t }
}

// NewApp is the constructor for the main application. Report lines go to
// outW and log records to logW.
func NewApp(outW, logW io.Writer, cfg *Config, opts ...Option) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	logger.Debug("Logger configured successfully.")

	a := &App{
		outW:   outW,
		logger: logger,
		config: cfg,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}
