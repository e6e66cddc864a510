package appcontext

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/rankmap"
	"github.com/agentstation/rankmap/internal/server"
)

// Compile-time interface check to ensure proper implementation.
var _ Interface = (*Mock)(nil)

// Mock provides a mock implementation of Interface for testing.
// Each method can be customized by setting the corresponding field.
// A nil function field returns a zero value.
//
// Example Usage:
//
//	mock := &appcontext.Mock{
//	    ClientFunc: func() (rankmap.Client, error) {
//	        return testClient, nil
//	    },
//	    Format: "json",
//	}
//	cmd := query.NewCommand(mock)
type Mock struct {
	ClientFunc            func() (rankmap.Client, error)
	ClientWithOptionsFunc func(opts ...rankmap.Option) (rankmap.Client, error)
	LoggerFunc            func() *zerolog.Logger
	Format                string
	PathsValue            Paths
	Server                *server.Config
	VersionValue          string
}

// Client returns a client using the mock function or nil.
func (m *Mock) Client() (rankmap.Client, error) {
	if m.ClientFunc != nil {
		return m.ClientFunc()
	}
	return nil, nil
}

// ClientWithOptions returns a client using the mock function or a fresh
// client built from opts.
func (m *Mock) ClientWithOptions(opts ...rankmap.Option) (rankmap.Client, error) {
	if m.ClientWithOptionsFunc != nil {
		return m.ClientWithOptionsFunc(opts...)
	}
	return rankmap.New(opts...)
}

// Logger returns a logger using the mock function or a no-op logger.
func (m *Mock) Logger() *zerolog.Logger {
	if m.LoggerFunc != nil {
		return m.LoggerFunc()
	}
	logger := zerolog.Nop()
	return &logger
}

// OutputFormat returns the configured format.
func (m *Mock) OutputFormat() string {
	return m.Format
}

// Paths returns the configured paths.
func (m *Mock) Paths() Paths {
	return m.PathsValue
}

// ServerConfig returns the configured server settings or the defaults.
func (m *Mock) ServerConfig() server.Config {
	if m.Server != nil {
		return *m.Server
	}
	return server.DefaultConfig()
}

// Version returns the configured version or "test".
func (m *Mock) Version() string {
	if m.VersionValue != "" {
		return m.VersionValue
	}
	return "test"
}

// Commit returns a fixed value.
func (m *Mock) Commit() string { return "none" }

// Date returns a fixed value.
func (m *Mock) Date() string { return "unknown" }

// BuiltBy returns a fixed value.
func (m *Mock) BuiltBy() string { return "test" }
