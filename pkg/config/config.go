package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/platinummonkey/axle/pkg/observability"
)

// Config holds all daemon configuration.
type Config struct {
	// Server configuration
	Server ServerConfig

	// Corpus source configuration
	Corpus CorpusConfig

	// Run history storage configuration
	History HistoryConfig

	// Outcome cache configuration
	Cache CacheConfig

	// Observability configuration
	Observability ObservabilityConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// Health/metrics server (separate port for k8s probes)
	HealthPort string
}

// CorpusConfig describes where the corpus lives and how it is checked.
type CorpusConfig struct {
	// SourceType selects the corpus backend: "directory" or "s3".
	SourceType string

	// Directory source
	InterfacesDir  string
	DiagnosticsDir string

	// S3 source
	S3Bucket       string
	S3Prefix       string
	S3Region       string
	S3Endpoint     string
	S3AccessKey    string
	S3SecretKey    string
	S3UsePathStyle bool

	// Concurrency bounds the parallel document evaluations per run.
	Concurrency int

	// RevalidateSchedule is a cron expression for periodic corpus checks.
	// Empty disables the schedule.
	RevalidateSchedule string
}

// HistoryConfig holds run-history storage configuration.
type HistoryConfig struct {
	// Driver is "sqlite3" or "postgres".
	Driver string
	// DSN is the driver-specific connection string.
	DSN string
	// RetentionDays prunes runs older than this many days. Zero keeps
	// everything.
	RetentionDays int
}

// CacheConfig holds document-outcome cache configuration.
type CacheConfig struct {
	Enabled bool

	// RedisAddr switches the cache from in-process memory to Redis when
	// set, so multiple replicas share outcomes.
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// MemoryEntries bounds the in-process cache.
	MemoryEntries int
	TTL           time.Duration
}

// ObservabilityConfig holds observability settings.
type ObservabilityConfig struct {
	// Logging
	LogLevel observability.LogLevel

	// Metrics
	MetricsEnabled bool

	// OpenTelemetry
	OTelEnabled        bool
	OTelEndpoint       string
	OTelServiceName    string
	OTelServiceVersion string
	OTelInsecure       bool // Use insecure gRPC connection
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Server:        loadServerConfig(),
		Corpus:        loadCorpusConfig(),
		History:       loadHistoryConfig(),
		Cache:         loadCacheConfig(),
		Observability: loadObservabilityConfig(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadServerConfig loads server configuration from environment.
func loadServerConfig() ServerConfig {
	return ServerConfig{
		Host:            getEnv("AXLE_HOST", "0.0.0.0"),
		Port:            getEnv("AXLE_PORT", "8080"),
		ReadTimeout:     getEnvDuration("AXLE_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:    getEnvDuration("AXLE_WRITE_TIMEOUT", 30*time.Second),
		IdleTimeout:     getEnvDuration("AXLE_IDLE_TIMEOUT", 60*time.Second),
		ShutdownTimeout: getEnvDuration("AXLE_SHUTDOWN_TIMEOUT", 30*time.Second),
		HealthPort:      getEnv("AXLE_HEALTH_PORT", "9090"),
	}
}

// loadCorpusConfig loads corpus source configuration from environment.
func loadCorpusConfig() CorpusConfig {
	return CorpusConfig{
		SourceType:         getEnv("AXLE_SOURCE_TYPE", "directory"),
		InterfacesDir:      getEnv("AXLE_INTERFACES_DIR", "./someip"),
		DiagnosticsDir:     getEnv("AXLE_DIAGNOSTICS_DIR", "./diag"),
		S3Bucket:           getEnv("AXLE_S3_BUCKET", ""),
		S3Prefix:           getEnv("AXLE_S3_PREFIX", ""),
		S3Region:           getEnv("AXLE_S3_REGION", "us-east-1"),
		S3Endpoint:         getEnv("AXLE_S3_ENDPOINT", ""),
		S3AccessKey:        getEnv("AXLE_S3_ACCESS_KEY", ""),
		S3SecretKey:        getEnv("AXLE_S3_SECRET_KEY", ""),
		S3UsePathStyle:     getEnvBool("AXLE_S3_USE_PATH_STYLE", false),
		Concurrency:        getEnvInt("AXLE_CONCURRENCY", 4),
		RevalidateSchedule: getEnv("AXLE_REVALIDATE_SCHEDULE", "@every 5m"),
	}
}

// loadHistoryConfig loads run-history configuration from environment.
func loadHistoryConfig() HistoryConfig {
	return HistoryConfig{
		Driver:        getEnv("AXLE_HISTORY_DRIVER", "sqlite3"),
		DSN:           getEnv("AXLE_HISTORY_DSN", "axle.db"),
		RetentionDays: getEnvInt("AXLE_HISTORY_RETENTION_DAYS", 30),
	}
}

// loadCacheConfig loads cache configuration from environment.
func loadCacheConfig() CacheConfig {
	return CacheConfig{
		Enabled:       getEnvBool("AXLE_CACHE_ENABLED", true),
		RedisAddr:     getEnv("AXLE_REDIS_ADDR", ""),
		RedisPassword: getEnv("AXLE_REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("AXLE_REDIS_DB", 0),
		MemoryEntries: getEnvInt("AXLE_CACHE_ENTRIES", 1024),
		TTL:           getEnvDuration("AXLE_CACHE_TTL", time.Hour),
	}
}

// loadObservabilityConfig loads observability configuration from environment.
func loadObservabilityConfig() ObservabilityConfig {
	return ObservabilityConfig{
		LogLevel:           observability.ParseLogLevel(getEnv("AXLE_LOG_LEVEL", "info")),
		MetricsEnabled:     getEnvBool("AXLE_METRICS_ENABLED", true),
		OTelEnabled:        getEnvBool("AXLE_OTEL_ENABLED", false),
		OTelEndpoint:       getEnv("AXLE_OTEL_ENDPOINT", "localhost:4317"),
		OTelServiceName:    getEnv("AXLE_OTEL_SERVICE_NAME", "axle-checker"),
		OTelServiceVersion: getEnv("AXLE_OTEL_SERVICE_VERSION", ""),
		OTelInsecure:       getEnvBool("AXLE_OTEL_INSECURE", true),
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	// Validate server config
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Server.HealthPort == "" {
		return fmt.Errorf("health port is required")
	}
	if c.Server.Port == c.Server.HealthPort {
		return fmt.Errorf("server port and health port must be different")
	}

	// Validate corpus config based on source type
	switch c.Corpus.SourceType {
	case "directory":
		if c.Corpus.InterfacesDir == "" && c.Corpus.DiagnosticsDir == "" {
			return fmt.Errorf("at least one of interfaces dir and diagnostics dir is required for directory corpus")
		}
	case "s3":
		if c.Corpus.S3Bucket == "" {
			return fmt.Errorf("S3 bucket is required for s3 corpus")
		}
		if c.Corpus.S3Region == "" {
			return fmt.Errorf("S3 region is required for s3 corpus")
		}
	default:
		return fmt.Errorf("invalid corpus source type: %s (must be directory or s3)", c.Corpus.SourceType)
	}
	if c.Corpus.Concurrency <= 0 {
		return fmt.Errorf("corpus concurrency must be positive")
	}

	// Validate history config
	switch c.History.Driver {
	case "sqlite3", "postgres":
	default:
		return fmt.Errorf("invalid history driver: %s (must be sqlite3 or postgres)", c.History.Driver)
	}
	if c.History.DSN == "" {
		return fmt.Errorf("history DSN is required")
	}
	if c.History.RetentionDays < 0 {
		return fmt.Errorf("history retention days must not be negative")
	}

	// Validate cache config
	if c.Cache.Enabled && c.Cache.TTL <= 0 {
		return fmt.Errorf("cache TTL must be positive when the cache is enabled")
	}

	// Validate OpenTelemetry config
	if c.Observability.OTelEnabled {
		if c.Observability.OTelEndpoint == "" {
			return fmt.Errorf("OpenTelemetry endpoint is required when OTel is enabled")
		}
		if c.Observability.OTelServiceName == "" {
			return fmt.Errorf("OpenTelemetry service name is required when OTel is enabled")
		}
	}

	return nil
}

// getEnv returns an environment variable value or a default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
