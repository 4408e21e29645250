package internal

import "log/slog"

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config   *Config
	notebook string
	logger   *slog.Logger
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithNotebook overrides the configured notebook with a path to a .json file.
func WithNotebook(path string) Option {
	return func(a *application) {
		a.notebook = path
	}
}

// WithLogger replaces the default JSON logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *application) {
		a.logger = logger
	}
}
