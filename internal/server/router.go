package server

import (
	"net/http"

	"github.com/agentstation/rankmap/internal/server/handlers"
	"github.com/agentstation/rankmap/internal/server/middleware"
)

// setupRouter creates the HTTP handler with routes and middleware.
func (s *Server) setupRouter() http.Handler {
	mux := http.NewServeMux()
	h := handlers.New(s.client, s.cache, s.metrics, s.logger, s.startTime)

	s.registerRoutes(mux, h)

	return s.applyMiddleware(mux)
}

// registerRoutes registers all HTTP routes.
func (s *Server) registerRoutes(mux *http.ServeMux, h *handlers.Handlers) {
	prefix := s.config.PathPrefix

	mux.HandleFunc("GET /favicon.ico", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	// Public health endpoints
	mux.HandleFunc("GET /health", h.HandleHealth)
	mux.HandleFunc("GET "+prefix+"/health", h.HandleHealth)
	mux.HandleFunc("GET "+prefix+"/ready", h.HandleReady)

	// Query endpoints. The literal "eligible" segment wins over {key}.
	mux.HandleFunc("GET "+prefix+"/colleges/eligible", h.HandleEligible)
	mux.HandleFunc("GET "+prefix+"/colleges/{key}", h.HandleGetCollege)
	mux.HandleFunc("GET "+prefix+"/exams", h.HandleExams)

	// Admin endpoints
	mux.HandleFunc("GET "+prefix+"/stats", h.HandleStats)
	mux.HandleFunc("POST "+prefix+"/rebuild", h.HandleRebuild)

	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics.Handler())
	}
}

// applyMiddleware wraps handler with middleware chain.
func (s *Server) applyMiddleware(handler http.Handler) http.Handler {
	cfg := s.config

	if cfg.RateLimit > 0 {
		rl := middleware.NewRateLimiter(cfg.RateLimit, s.logger).OnLimit(s.metrics.ObserveRateLimited)
		handler = middleware.RateLimit(rl)(handler)
	}

	if cfg.AuthEnabled {
		authConfig := middleware.DefaultAuthConfig()
		authConfig.Enabled = true
		authConfig.APIKey = cfg.APIKey
		if cfg.AuthHeader != "" {
			authConfig.HeaderName = cfg.AuthHeader
		}
		authConfig.PublicPaths = []string{"/health", "/metrics", cfg.PathPrefix + "/health", cfg.PathPrefix + "/ready"}
		if !cfg.AuthAll {
			authConfig.ProtectedPaths = []string{cfg.PathPrefix + "/rebuild"}
		}
		handler = middleware.Auth(authConfig, s.logger)(handler)
	}

	if cfg.CORSEnabled {
		corsConfig := middleware.DefaultCORSConfig()
		if len(cfg.CORSOrigins) > 0 {
			corsConfig.AllowedOrigins = cfg.CORSOrigins
		} else {
			corsConfig.AllowAll = true
		}
		handler = middleware.CORS(corsConfig)(handler)
	}

	return middleware.Chain(
		middleware.Recovery(s.logger),
		middleware.Logger(s.logger),
		middleware.Instrument(s.metrics),
	)(handler)
}
