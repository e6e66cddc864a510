// Package serve provides the HTTP API server command.
package serve

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/agentstation/rankmap"
	"github.com/agentstation/rankmap/internal/appcontext"
	"github.com/agentstation/rankmap/internal/metrics"
	"github.com/agentstation/rankmap/internal/server"
	"github.com/agentstation/rankmap/pkg/constants"
)

// NewCommand creates the serve command using app context.
func NewCommand(app appcontext.Interface) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "serve",
		Aliases: []string{"server"},
		Short:   "Start the REST API server",
		Long: `Start the REST API server for rank-eligibility queries.

Features:
  - Eligibility queries (/api/v1/colleges/eligible)
  - College and exam lookups, catalog statistics
  - Rebuild endpoint (POST /api/v1/rebuild), optionally key-protected
  - In-memory result caching, flushed whenever a new snapshot is published
  - Rate limiting (requests per minute per IP)
  - Prometheus metrics (/metrics)
  - Graceful shutdown with connection draining

Settings come from the config file and RANKMAP_SERVER_* environment
variables; flags override both. The API key is only read from
configuration (server.api_key or RANKMAP_API_KEY).`,
		Example: `  # Serve the built artifact on the default port
  rankmap serve

  # Rebuild on start and every 6 hours
  rankmap serve --rebuild --auto-rebuild --auto-rebuild-interval 6h

  # Protect the rebuild endpoint
  RANKMAP_API_KEY=secret rankmap serve --auth`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, app)
		},
	}

	d := server.DefaultConfig()

	// Server configuration flags
	cmd.Flags().Int("port", d.Port, "Server port")
	cmd.Flags().String("host", d.Host, "Bind address")
	cmd.Flags().String("prefix", d.PathPrefix, "API path prefix")

	// CORS flags
	cmd.Flags().Bool("cors", d.CORSEnabled, "Enable CORS for all origins")
	cmd.Flags().StringSlice("cors-origins", d.CORSOrigins, "Allowed CORS origins (comma-separated)")

	// Authentication flags
	cmd.Flags().Bool("auth", d.AuthEnabled, "Require an API key for the rebuild endpoint")
	cmd.Flags().Bool("auth-all", d.AuthAll, "Require an API key for every endpoint")
	cmd.Flags().String("auth-header", d.AuthHeader, "Authentication header name")

	// Performance flags
	cmd.Flags().Int("rate-limit", d.RateLimit, "Requests per minute per IP (0 to disable)")
	cmd.Flags().Duration("cache-ttl", d.CacheTTL, "Query cache TTL")

	// Timeout flags
	cmd.Flags().Duration("read-timeout", d.ReadTimeout, "HTTP read timeout")
	cmd.Flags().Duration("write-timeout", d.WriteTimeout, "HTTP write timeout")
	cmd.Flags().Duration("idle-timeout", d.IdleTimeout, "HTTP idle timeout")

	// Features flags
	cmd.Flags().Bool("metrics", d.MetricsEnabled, "Enable metrics endpoint")

	// Snapshot flags
	cmd.Flags().Bool("rebuild", false, "Rebuild from the manifest before serving")
	cmd.Flags().Bool("auto-rebuild", false, "Rebuild periodically while serving")
	cmd.Flags().Duration("auto-rebuild-interval", constants.DefaultRebuildInterval, "Interval between automatic rebuilds")

	return cmd
}

func run(cmd *cobra.Command, app appcontext.Interface) error {
	cfg, err := parseConfig(cmd.Flags(), app.ServerConfig())
	if err != nil {
		return err
	}
	logger := app.Logger()

	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		m = metrics.New()
	}

	client, err := newClient(cmd, app, m)
	if err != nil {
		return err
	}
	defer func() { _ = client.AutoRebuildOff() }()

	snap := client.Snapshot()
	logger.Info().
		Int("port", cfg.Port).
		Str("host", cfg.Host).
		Str("prefix", cfg.PathPrefix).
		Bool("cors", cfg.CORSEnabled).
		Bool("auth", cfg.AuthEnabled).
		Int("rate_limit", cfg.RateLimit).
		Dur("cache_ttl", cfg.CacheTTL).
		Int("colleges", snap.Catalog.Len()).
		Str("build_id", snap.BuildID).
		Msg("Starting API server")

	if cfg.AuthEnabled && cfg.APIKey == "" {
		logger.Warn().Msg("Authentication enabled without an API key; protected endpoints will reject every request")
	}

	srv, err := server.New(client, m, logger, cfg)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	// cmd.Context() carries signal handling from main.go.
	return srv.ListenAndServe(cmd.Context(), constants.ShutdownTimeout)
}

func newClient(cmd *cobra.Command, app appcontext.Interface, m *metrics.Metrics) (rankmap.Client, error) {
	flags := cmd.Flags()
	rebuild, _ := flags.GetBool("rebuild")
	auto, _ := flags.GetBool("auto-rebuild")

	opts := []rankmap.Option{
		rankmap.WithArtifactPath(app.Paths().Artifact),
		rankmap.WithRebuildOnStart(rebuild),
	}
	if flags.Changed("auto-rebuild-interval") {
		interval, _ := flags.GetDuration("auto-rebuild-interval")
		opts = append(opts, rankmap.WithAutoRebuildInterval(interval))
	}
	if m != nil {
		opts = append(opts, rankmap.WithObserver(m))
	}
	// Auto-rebuild is enabled last so the observer sees every build.
	opts = append(opts, rankmap.WithAutoRebuild(auto))

	return app.ClientWithOptions(opts...)
}

// parseConfig overrides base with every flag set on the command line.
func parseConfig(flags *pflag.FlagSet, base server.Config) (server.Config, error) {
	cfg := base

	if flags.Changed("port") {
		cfg.Port, _ = flags.GetInt("port")
	}
	if flags.Changed("host") {
		cfg.Host, _ = flags.GetString("host")
	}
	if flags.Changed("prefix") {
		cfg.PathPrefix, _ = flags.GetString("prefix")
	}
	if flags.Changed("cors") {
		cfg.CORSEnabled, _ = flags.GetBool("cors")
	}
	if flags.Changed("cors-origins") {
		cfg.CORSOrigins, _ = flags.GetStringSlice("cors-origins")
		cfg.CORSEnabled = true
	}
	if flags.Changed("auth") {
		cfg.AuthEnabled, _ = flags.GetBool("auth")
	}
	if flags.Changed("auth-all") {
		cfg.AuthAll, _ = flags.GetBool("auth-all")
		if cfg.AuthAll {
			cfg.AuthEnabled = true
		}
	}
	if flags.Changed("auth-header") {
		cfg.AuthHeader, _ = flags.GetString("auth-header")
	}
	if flags.Changed("rate-limit") {
		cfg.RateLimit, _ = flags.GetInt("rate-limit")
	}
	if flags.Changed("cache-ttl") {
		cfg.CacheTTL, _ = flags.GetDuration("cache-ttl")
	}
	if flags.Changed("read-timeout") {
		cfg.ReadTimeout, _ = flags.GetDuration("read-timeout")
	}
	if flags.Changed("write-timeout") {
		cfg.WriteTimeout, _ = flags.GetDuration("write-timeout")
	}
	if flags.Changed("idle-timeout") {
		cfg.IdleTimeout, _ = flags.GetDuration("idle-timeout")
	}
	if flags.Changed("metrics") {
		cfg.MetricsEnabled, _ = flags.GetBool("metrics")
	}

	if cfg.Port < 1 || cfg.Port > 65535 {
		return cfg, fmt.Errorf("port out of range: %d", cfg.Port)
	}
	if cfg.RateLimit < 0 {
		return cfg, fmt.Errorf("invalid rate limit %d: must not be negative", cfg.RateLimit)
	}
	if cfg.CacheTTL < 0 || cfg.ReadTimeout < 0 || cfg.WriteTimeout < 0 || cfg.IdleTimeout < 0 {
		return cfg, fmt.Errorf("durations must not be negative")
	}
	return cfg, nil
}
