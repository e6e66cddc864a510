// Package server provides the HTTP binding for the rankmap query API.
//
// The server is a thin layer over rankmap.Client: it parses requests, runs
// eligibility queries against the current snapshot and caches responses
// until the next snapshot is published.
package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/rankmap"
	"github.com/agentstation/rankmap/internal/metrics"
	"github.com/agentstation/rankmap/internal/server/cache"
)

// Server holds the HTTP server state and dependencies.
type Server struct {
	client    rankmap.Client
	cache     *cache.Cache
	metrics   *metrics.Metrics
	logger    *zerolog.Logger
	config    Config
	startTime time.Time
	http      *http.Server
}

// New creates a new server instance. m may be nil, in which case /metrics is
// not served even when MetricsEnabled is set.
func New(client rankmap.Client, m *metrics.Metrics, logger *zerolog.Logger, cfg Config) (*Server, error) {
	if client == nil {
		return nil, fmt.Errorf("server: client is required")
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	if cfg.PathPrefix == "" {
		cfg.PathPrefix = DefaultConfig().PathPrefix
	}
	if !cfg.MetricsEnabled {
		m = nil
	}

	s := &Server{
		client:    client,
		cache:     cache.New(cfg.CacheTTL, cfg.CacheTTL*2),
		metrics:   m,
		logger:    logger,
		config:    cfg,
		startTime: time.Now(),
	}
	s.connectHooks()

	logger.Debug().
		Str("prefix", cfg.PathPrefix).
		Int("rate_limit", cfg.RateLimit).
		Dur("cache_ttl", cfg.CacheTTL).
		Msg("Server instance created")
	return s, nil
}

// connectHooks flushes cached query responses whenever a new snapshot is
// published, so a cached answer never outlives the catalog it came from.
func (s *Server) connectHooks() {
	s.client.OnSnapshotPublished(func(_, next *rankmap.Snapshot) {
		s.cache.Clear()
		s.logger.Info().
			Str("build_id", next.BuildID).
			Int("colleges", next.Catalog.Len()).
			Msg("Snapshot published, query cache cleared")
	})
	s.client.OnRebuildFailed(func(err error) {
		s.logger.Warn().Err(err).Msg("Rebuild failed, keeping current snapshot")
	})
}

// Handler returns the configured http.Handler with middleware chain applied.
func (s *Server) Handler() http.Handler {
	return s.setupRouter()
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return net.JoinHostPort(s.config.Host, strconv.Itoa(s.config.Port))
}

// ListenAndServe serves until ctx is done, then shuts down gracefully within
// shutdownTimeout.
func (s *Server) ListenAndServe(ctx context.Context, shutdownTimeout time.Duration) error {
	s.http = &http.Server{
		Addr:         s.Addr(),
		Handler:      s.Handler(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.http.Addr).Msg("HTTP server listening")
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info().Msg("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	return <-errCh
}

// Cache returns the server's cache instance.
func (s *Server) Cache() *cache.Cache {
	return s.cache
}

// StartTime returns the server start time for uptime calculations.
func (s *Server) StartTime() time.Time {
	return s.startTime
}
