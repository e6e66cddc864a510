// Package handlers provides HTTP request handlers for the rankmap API.
package handlers

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/rankmap"
	"github.com/agentstation/rankmap/internal/metrics"
	"github.com/agentstation/rankmap/internal/server/cache"
)

// Handlers provides access to all HTTP handlers.
type Handlers struct {
	client    rankmap.Client
	cache     *cache.Cache
	metrics   *metrics.Metrics
	logger    *zerolog.Logger
	startTime time.Time
}

// New creates a new Handlers instance. m may be nil when metrics are disabled.
func New(
	client rankmap.Client,
	cache *cache.Cache,
	m *metrics.Metrics,
	logger *zerolog.Logger,
	startTime time.Time,
) *Handlers {
	return &Handlers{
		client:    client,
		cache:     cache,
		metrics:   m,
		logger:    logger,
		startTime: startTime,
	}
}
