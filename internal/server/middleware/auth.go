package middleware

import (
	"crypto/subtle"
	"net/http"
	"slices"
	"strings"

	"github.com/rs/zerolog"

	"github.com/agentstation/rankmap/internal/server/response"
)

// AuthConfig holds authentication configuration.
//
// When ProtectedPaths is non-empty only those paths require a key. Otherwise
// every path except PublicPaths does.
type AuthConfig struct {
	Enabled        bool
	APIKey         string
	HeaderName     string
	PublicPaths    []string
	ProtectedPaths []string
}

// DefaultAuthConfig returns default authentication configuration.
func DefaultAuthConfig() AuthConfig {
	return AuthConfig{
		HeaderName:  "X-API-Key",
		PublicPaths: []string{"/health", "/metrics", "/api/v1/health", "/api/v1/ready"},
	}
}

// Auth middleware validates API keys for protected endpoints.
func Auth(config AuthConfig, logger *zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !config.Enabled || !requiresKey(r.URL.Path, config) {
				next.ServeHTTP(w, r)
				return
			}

			apiKey := extractAPIKey(r, config)
			if apiKey == "" || config.APIKey == "" ||
				subtle.ConstantTimeCompare([]byte(apiKey), []byte(config.APIKey)) != 1 {
				logger.Warn().
					Str("path", r.URL.Path).
					Str("remote_addr", r.RemoteAddr).
					Bool("key_provided", apiKey != "").
					Msg("Authentication failed")

				response.Unauthorized(w, "Invalid or missing API key",
					"Provide a valid API key in the "+config.HeaderName+" header")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func requiresKey(path string, config AuthConfig) bool {
	if len(config.ProtectedPaths) > 0 {
		return slices.Contains(config.ProtectedPaths, path)
	}
	return !slices.Contains(config.PublicPaths, path)
}

// extractAPIKey reads the configured header, then falls back to Authorization
// with or without a Bearer prefix.
func extractAPIKey(r *http.Request, config AuthConfig) string {
	if apiKey := r.Header.Get(config.HeaderName); apiKey != "" {
		return apiKey
	}
	auth := r.Header.Get("Authorization")
	if after, ok := strings.CutPrefix(auth, "Bearer "); ok {
		return after
	}
	return auth
}
