package app

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/agentstation/rankmap/internal/server"
	"github.com/agentstation/rankmap/pkg/constants"
)

// Default file locations, relative to the working directory.
const (
	DefaultManifestPath = "rankmap.yaml"
	DefaultArtifactPath = "colleges.json"
	DefaultSQLitePath   = "rankmap.db"
)

// envPrefix namespaces environment variables (RANKMAP_MANIFEST, RANKMAP_SERVER_PORT).
const envPrefix = "RANKMAP"

// Config holds the application configuration loaded from various sources
// including config files, environment variables, and .env files.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Format  string

	// Config file
	ConfigFile string

	// Paths
	ManifestPath string
	ArtifactPath string
	SQLitePath   string

	// Build settings
	Coverage            bool
	AutoRebuild         bool
	AutoRebuildInterval time.Duration

	// Server settings; serve flags override them.
	Server server.Config

	// Logging configuration. LogLevel holds the --log-level flag and
	// EnvLogLevel the LOG_LEVEL environment variable.
	LogLevel    string
	EnvLogLevel string
	LogFormat   string
	LogOutput   string
}

// LoadConfig loads configuration from all sources in order of precedence:
// 1. Command-line flags (handled by cobra)
// 2. Environment variables
// 3. .env files
// 4. Config file (configFile, or ~/.rankmap.yaml and ./.rankmap.yaml)
// 5. Defaults
func LoadConfig(configFile string) (*Config, error) {
	// Load .env files first (before Viper env binding)
	loadEnvFiles()

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	// Conventional unprefixed names used by container platforms.
	_ = v.BindEnv("server.host", envPrefix+"_SERVER_HOST", "HTTP_HOST")
	_ = v.BindEnv("server.port", envPrefix+"_SERVER_PORT", "HTTP_PORT", "PORT")
	_ = v.BindEnv("server.api_key", envPrefix+"_SERVER_API_KEY", envPrefix+"_API_KEY")

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(".rankmap")
		// Read config file (ignore error if not found)
		_ = v.ReadInConfig()
	}

	config := &Config{
		Format:     v.GetString("format"),
		ConfigFile: v.ConfigFileUsed(),

		ManifestPath: v.GetString("manifest"),
		ArtifactPath: v.GetString("artifact"),
		SQLitePath:   v.GetString("sqlite"),

		Coverage:            v.GetBool("coverage"),
		AutoRebuild:         v.GetBool("auto_rebuild"),
		AutoRebuildInterval: v.GetDuration("auto_rebuild_interval"),

		Server: server.Config{
			Host:           v.GetString("server.host"),
			Port:           v.GetInt("server.port"),
			PathPrefix:     v.GetString("server.prefix"),
			CORSEnabled:    v.GetBool("server.cors"),
			CORSOrigins:    v.GetStringSlice("server.cors_origins"),
			AuthEnabled:    v.GetBool("server.auth"),
			AuthHeader:     v.GetString("server.auth_header"),
			APIKey:         v.GetString("server.api_key"),
			AuthAll:        v.GetBool("server.auth_all"),
			RateLimit:      v.GetInt("server.rate_limit"),
			CacheTTL:       v.GetDuration("server.cache_ttl"),
			ReadTimeout:    v.GetDuration("server.read_timeout"),
			WriteTimeout:   v.GetDuration("server.write_timeout"),
			IdleTimeout:    v.GetDuration("server.idle_timeout"),
			MetricsEnabled: v.GetBool("server.metrics"),
		},

		EnvLogLevel: getEnvOrDefault("LOG_LEVEL", v.GetString("log.level")),
		LogFormat:   getEnvOrDefault("LOG_FORMAT", v.GetString("log.format")),
		LogOutput:   getEnvOrDefault("LOG_OUTPUT", v.GetString("log.output")),
	}

	if config.AutoRebuildInterval <= 0 {
		config.AutoRebuildInterval = constants.DefaultRebuildInterval
	}

	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("manifest", DefaultManifestPath)
	v.SetDefault("artifact", DefaultArtifactPath)
	v.SetDefault("sqlite", DefaultSQLitePath)
	v.SetDefault("coverage", true)
	v.SetDefault("auto_rebuild", false)
	v.SetDefault("auto_rebuild_interval", constants.DefaultRebuildInterval)

	d := server.DefaultConfig()
	v.SetDefault("server.host", d.Host)
	v.SetDefault("server.port", d.Port)
	v.SetDefault("server.prefix", d.PathPrefix)
	v.SetDefault("server.cors", d.CORSEnabled)
	v.SetDefault("server.cors_origins", d.CORSOrigins)
	v.SetDefault("server.auth", d.AuthEnabled)
	v.SetDefault("server.auth_header", d.AuthHeader)
	v.SetDefault("server.auth_all", d.AuthAll)
	v.SetDefault("server.rate_limit", d.RateLimit)
	v.SetDefault("server.cache_ttl", d.CacheTTL)
	v.SetDefault("server.read_timeout", d.ReadTimeout)
	v.SetDefault("server.write_timeout", d.WriteTimeout)
	v.SetDefault("server.idle_timeout", d.IdleTimeout)
	v.SetDefault("server.metrics", d.MetricsEnabled)

	v.SetDefault("log.format", "auto")
	v.SetDefault("log.output", "stderr")
}

// UpdateFromFlags updates config values from parsed command flags.
// This should be called after cobra parses flags to ensure flag
// values take precedence over config file and env vars.
func (c *Config) UpdateFromFlags(verbose, quiet, noColor bool, format, logLevel string) {
	c.Verbose = verbose
	c.Quiet = quiet
	c.NoColor = noColor
	if format != "" {
		c.Format = format
	}
	c.LogLevel = logLevel
}

// loadEnvFiles loads environment variables from .env files.
// .env.local does not override values already set by .env or the shell.
func loadEnvFiles() {
	for _, envFile := range []string{".env", ".env.local"} {
		_ = godotenv.Load(envFile)
	}
}

// getEnvOrDefault returns the environment variable value or the default if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
