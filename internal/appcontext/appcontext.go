// Package appcontext provides the shared application context interface
// used by all commands. Commands accept this interface rather than the
// concrete App so they can be tested with Mock.
package appcontext

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/rankmap"
	"github.com/agentstation/rankmap/internal/server"
)

// Paths are the configured file locations.
type Paths struct {
	// Manifest is the YAML source manifest read by builds.
	Manifest string
	// Artifact is the JSON or YAML document written by builds and read by
	// query and serve when no rebuild is requested.
	Artifact string
	// SQLite is the export database.
	SQLite string
}

// Interface defines the application context that commands need.
type Interface interface {
	// Client returns a client that loads the configured artifact without
	// rebuilding. It is created lazily and shared.
	Client() (rankmap.Client, error)

	// ClientWithOptions creates a new client with the configured manifest and
	// coverage settings followed by opts.
	ClientWithOptions(opts ...rankmap.Option) (rankmap.Client, error)

	// Logger returns the configured logger instance.
	Logger() *zerolog.Logger

	// OutputFormat returns the configured output format (table, json, yaml).
	OutputFormat() string

	// Paths returns the configured file locations.
	Paths() Paths

	// ServerConfig returns server settings from config files and environment.
	// Command flags override them.
	ServerConfig() server.Config

	// Version information.
	Version() string
	Commit() string
	Date() string
	BuiltBy() string
}
