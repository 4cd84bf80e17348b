// Package config centralizes the server's tunable settings.
// Flag-driven options (config file, www root, tick period, state file)
// stay on the command line; everything environment-driven lives here.
package config

import (
	"net"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"
)

// =============================================================================
// HTTP SERVER
// =============================================================================

// ServerConfig holds the public listener settings.
type ServerConfig struct {
	Address         string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// DefaultServer returns the default server configuration.
func DefaultServer() ServerConfig {
	return ServerConfig{
		Address:         "0.0.0.0",
		Port:            8080,
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    30 * time.Second,
		IdleTimeout:     60 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

// ServerFromEnv returns server configuration with environment overrides.
func ServerFromEnv() ServerConfig {
	cfg := DefaultServer()

	if addr := os.Getenv("SERVER_ADDRESS"); addr != "" {
		cfg.Address = addr
	}
	if p := getEnvInt("SERVER_PORT", 0); p > 0 {
		cfg.Port = p
	}
	if s := getEnvInt("SERVER_READ_TIMEOUT", 0); s > 0 {
		cfg.ReadTimeout = time.Duration(s) * time.Second
	}
	if s := getEnvInt("SERVER_WRITE_TIMEOUT", 0); s > 0 {
		cfg.WriteTimeout = time.Duration(s) * time.Second
	}
	if s := getEnvInt("SERVER_SHUTDOWN_TIMEOUT", 0); s > 0 {
		cfg.ShutdownTimeout = time.Duration(s) * time.Second
	}

	return cfg
}

// Addr renders the listen address as host:port.
func (c ServerConfig) Addr() string {
	return net.JoinHostPort(c.Address, strconv.Itoa(c.Port))
}

// =============================================================================
// DEBUG / OBSERVABILITY
// =============================================================================

// DebugConfig holds the localhost debug server settings.
type DebugConfig struct {
	Enabled       bool
	Address       string
	BasicAuthUser string
	BasicAuthPass string
}

// DefaultDebug returns the default debug configuration.
func DefaultDebug() DebugConfig {
	return DebugConfig{
		Enabled: true,
		Address: "127.0.0.1:6060",
	}
}

// DebugFromEnv returns debug configuration with environment overrides.
func DebugFromEnv() DebugConfig {
	cfg := DefaultDebug()

	if getEnvBool("DEBUG_DISABLED", false) {
		cfg.Enabled = false
	}
	if addr := os.Getenv("DEBUG_ADDRESS"); addr != "" {
		cfg.Address = addr
	}
	cfg.BasicAuthUser = os.Getenv("DEBUG_AUTH_USER")
	cfg.BasicAuthPass = os.Getenv("DEBUG_AUTH_PASS")

	return cfg
}

// =============================================================================
// RATE LIMITING
// =============================================================================

// RateLimitConfig holds the per-IP API limiter settings.
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// DefaultRateLimit returns the default rate limit configuration.
func DefaultRateLimit() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerSecond: 100,
		Burst:             200,
	}
}

// RateLimitFromEnv returns rate limit configuration with environment overrides.
func RateLimitFromEnv() RateLimitConfig {
	cfg := DefaultRateLimit()

	if rps := getEnvFloat("RATE_LIMIT_RPS", 0); rps > 0 {
		cfg.RequestsPerSecond = rps
	}
	if b := getEnvInt("RATE_LIMIT_BURST", 0); b > 0 {
		cfg.Burst = b
	}

	return cfg
}

// =============================================================================
// STATE FEED
// =============================================================================

// FeedConfig holds the websocket state feed limits.
type FeedConfig struct {
	MaxConnections int
	MaxPerIP       int
	AllowedOrigins []string
}

// DefaultFeed returns the default feed configuration.
func DefaultFeed() FeedConfig {
	return FeedConfig{
		MaxConnections: 500,
		MaxPerIP:       10,
	}
}

// FeedFromEnv returns feed configuration with environment overrides.
func FeedFromEnv() FeedConfig {
	cfg := DefaultFeed()

	if n := getEnvInt("FEED_MAX_CONNECTIONS", 0); n > 0 {
		cfg.MaxConnections = n
	}
	if n := getEnvInt("FEED_MAX_PER_IP", 0); n > 0 {
		cfg.MaxPerIP = n
	}
	if origins := os.Getenv("FEED_ALLOWED_ORIGINS"); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
			}
		}
	}

	return cfg
}

// =============================================================================
// DATABASE
// =============================================================================

// DatabaseConfig holds the scoreboard database settings. URL comes from
// BOOKYPEDIA_DB_URL and has no default: the server refuses to start
// without a database.
type DatabaseConfig struct {
	URL            string
	MaxConnections int
}

// DatabaseEnvVar names the required connection URL variable.
const DatabaseEnvVar = "BOOKYPEDIA_DB_URL"

// DefaultDatabase returns the default database configuration.
func DefaultDatabase() DatabaseConfig {
	return DatabaseConfig{
		MaxConnections: runtime.NumCPU(),
	}
}

// DatabaseFromEnv returns database configuration with environment overrides.
func DatabaseFromEnv() DatabaseConfig {
	cfg := DefaultDatabase()

	cfg.URL = os.Getenv(DatabaseEnvVar)
	if n := getEnvInt("DB_MAX_CONNECTIONS", 0); n > 0 {
		cfg.MaxConnections = n
	}

	return cfg
}

// =============================================================================
// SCORE WRITER
// =============================================================================

// ScoresConfig holds the asynchronous score writer settings.
type ScoresConfig struct {
	QueueSize int // retirement records buffered before drops start
	Workers   int // concurrent insert workers
}

// DefaultScores returns the default score writer configuration.
func DefaultScores() ScoresConfig {
	return ScoresConfig{
		QueueSize: 256,
		Workers:   2,
	}
}

// ScoresFromEnv returns score writer configuration with environment overrides.
func ScoresFromEnv() ScoresConfig {
	cfg := DefaultScores()

	if n := getEnvInt("SCORE_QUEUE_SIZE", 0); n > 0 {
		cfg.QueueSize = n
	}
	if n := getEnvInt("SCORE_WORKERS", 0); n > 0 {
		cfg.Workers = n
	}

	return cfg
}

// =============================================================================
// COMPLETE APP CONFIGURATION
// =============================================================================

// AppConfig holds the complete environment-driven configuration.
type AppConfig struct {
	Server    ServerConfig
	Debug     DebugConfig
	RateLimit RateLimitConfig
	Feed      FeedConfig
	Database  DatabaseConfig
	Scores    ScoresConfig
}

// Load returns the complete configuration with environment overrides.
func Load() AppConfig {
	return AppConfig{
		Server:    ServerFromEnv(),
		Debug:     DebugFromEnv(),
		RateLimit: RateLimitFromEnv(),
		Feed:      FeedFromEnv(),
		Database:  DatabaseFromEnv(),
		Scores:    ScoresFromEnv(),
	}
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultVal
}
