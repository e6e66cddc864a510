// Package app provides the application context and dependency management
// for the rankmap CLI. It centralizes configuration, logging and the shared
// client so commands only depend on appcontext.Interface.
package app

import (
	"context"
	"os"
	"sync"

	"github.com/rs/zerolog"

	"github.com/agentstation/rankmap"
	"github.com/agentstation/rankmap/internal/appcontext"
	"github.com/agentstation/rankmap/internal/server"
	"github.com/agentstation/rankmap/pkg/errors"
)

// Compile-time interface check to ensure proper implementation.
var _ appcontext.Interface = (*App)(nil)

// App represents the rankmap application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	config *Config
	logger *zerolog.Logger

	// Client instance (lazy-initialized, singleton)
	mu     sync.RWMutex
	client rankmap.Client
}

// New creates a new App instance with the given version information.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
	}

	config, err := LoadConfig("")
	if err != nil {
		return nil, errors.WrapResource("load", "config", "", err)
	}
	app.config = config

	logger := NewLogger(config)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string {
	return a.builtBy
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// OutputFormat returns the --format flag or configured format.
func (a *App) OutputFormat() string {
	return a.config.Format
}

// Paths returns the configured file locations.
func (a *App) Paths() appcontext.Paths {
	return appcontext.Paths{
		Manifest: a.config.ManifestPath,
		Artifact: a.config.ArtifactPath,
		SQLite:   a.config.SQLitePath,
	}
}

// ServerConfig returns the configured server settings.
func (a *App) ServerConfig() server.Config {
	return a.config.Server
}

// Client returns the shared client, creating it lazily. It serves the
// configured artifact and never rebuilds on its own.
func (a *App) Client() (rankmap.Client, error) {
	a.mu.RLock()
	if a.client != nil {
		c := a.client
		a.mu.RUnlock()
		return c, nil
	}
	a.mu.RUnlock()

	a.mu.Lock()
	defer a.mu.Unlock()

	// Double-check after acquiring write lock
	if a.client != nil {
		return a.client, nil
	}

	opts := []rankmap.Option{
		rankmap.WithArtifactPath(a.config.ArtifactPath),
		rankmap.WithCoverage(a.config.Coverage),
	}
	// The manifest only contributes the exam registry here, so a missing
	// one is not an error.
	if _, err := os.Stat(a.config.ManifestPath); err == nil {
		opts = append(opts, rankmap.WithManifestPath(a.config.ManifestPath))
	}

	c, err := rankmap.New(opts...)
	if err != nil {
		return nil, errors.WrapResource("create", "client", "", err)
	}

	a.client = c
	return c, nil
}

// ClientWithOptions returns a new client configured from the manifest and
// coverage settings, followed by opts.
func (a *App) ClientWithOptions(opts ...rankmap.Option) (rankmap.Client, error) {
	base := []rankmap.Option{
		rankmap.WithManifestPath(a.config.ManifestPath),
		rankmap.WithCoverage(a.config.Coverage),
		rankmap.WithAutoRebuildInterval(a.config.AutoRebuildInterval),
	}
	c, err := rankmap.New(append(base, opts...)...)
	if err != nil {
		return nil, errors.WrapResource("create", "client", "with custom options", err)
	}
	return c, nil
}

// Shutdown stops background work on the shared client.
func (a *App) Shutdown(_ context.Context) error {
	a.mu.RLock()
	c := a.client
	a.mu.RUnlock()

	if c != nil {
		if err := c.AutoRebuildOff(); err != nil {
			a.logger.Error().Err(err).Msg("Failed to stop auto-rebuild during shutdown")
		}
	}
	return nil
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

// WithClient sets a custom client instance (useful for testing).
func WithClient(c rankmap.Client) Option {
	return func(a *App) error {
		a.client = c
		return nil
	}
}
