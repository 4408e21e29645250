package internal

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

var notebookFileRe = regexp.MustCompile(`\.json$`)

// Config represents the application configuration.
type Config struct {
	App      ApplicationConfig `yaml:"app"`
	Notebook NotebookConfig    `yaml:"notebook"`
	Auth     AuthConfig        `yaml:"auth"`
	Watch    WatchConfig       `yaml:"watch"`
	Events   EventsConfig      `yaml:"events"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Notebook.Validate(); err != nil {
		return err
	}
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	if err := c.Watch.Validate(); err != nil {
		return err
	}
	return c.Events.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// NotebookConfig locates the notebook documents.
//
// Dir is the directory the open/save pickers are restricted to; Default is
// the document opened at startup, relative to Dir.
type NotebookConfig struct {
	Dir     string `yaml:"dir"`
	Default string `yaml:"default"`
}

// Validate validates the notebook configuration.
func (c *NotebookConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Dir, validation.Required),
		validation.Field(&c.Default, validation.Required,
			validation.Match(notebookFileRe).Error("must be a .json file")),
	)
}

// Resolve returns the notebook directory and the document path inside it.
// A non-empty override is a path to a notebook file and takes precedence
// over the configured directory and default.
func (c *NotebookConfig) Resolve(override string) (dir, name string, err error) {
	if override == "" {
		return c.Dir, filepath.ToSlash(c.Default), nil
	}
	abs, err := filepath.Abs(override)
	if err != nil {
		return "", "", fmt.Errorf("notebook: resolve %s: %w", override, err)
	}
	if !notebookFileRe.MatchString(abs) {
		return "", "", fmt.Errorf("notebook: %s is not a .json file", override)
	}
	return filepath.Dir(abs), filepath.Base(abs), nil
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local use.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// WatchConfig controls reloading the notebook when its file changes on disk.
type WatchConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Debounce time.Duration `yaml:"debounce"`
}

// Validate validates the watch configuration.
func (c *WatchConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Debounce, validation.Min(time.Duration(0)), validation.Max(time.Minute)),
	)
}

// EventsConfig tunes the Server-Sent Events stream.
type EventsConfig struct {
	RefreshThrottle time.Duration `yaml:"refresh_throttle"`
}

// Validate validates the events configuration.
func (c *EventsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.RefreshThrottle, validation.Min(time.Duration(0))),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Notebook: NotebookConfig{
			Dir:     "./notebooks",
			Default: "notebook.json",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
		Watch: WatchConfig{
			Enabled:  true,
			Debounce: 200 * time.Millisecond,
		},
		Events: EventsConfig{
			RefreshThrottle: 2 * time.Second,
		},
	}
}
