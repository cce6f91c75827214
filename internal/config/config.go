// Package config provides centralized configuration for the job service and CLI.
// It loads settings from environment variables with defaults and validates
// them on startup to fail fast on misconfiguration.
package config

import (
	"net"
	"strconv"
	"time"
)

// Source types accepted by FILE_SOURCE.
const (
	SourceLocal = "local"
	SourceS3    = "s3"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Source   SourceConfig
	Load     LoadConfig
	Rate     RateLimitConfig
	Logging  LoggingConfig
	AWS      AWSConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading a request (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is 0 by default; load-all can outlast any fixed write deadline.
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"0s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// TrustedProxies is a comma-separated list of proxy CIDRs whose
	// X-Real-IP / X-Forwarded-For headers are honored. Empty trusts nobody.
	TrustedProxies string `env:"TRUSTED_PROXIES"`

	// ShutdownTimeout bounds graceful shutdown, including in-flight loads (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`
}

// DatabaseConfig holds database connection settings.
// Either URL or SecretID must be set.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string.
	// Supports both DATABASE_URL and DB_URL env vars for compatibility
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	// SecretID names an AWS Secrets Manager secret holding RDS-style credentials.
	// Used only when URL is empty.
	SecretID string `env:"DB_SECRET_ID"`

	// MaxConns is the maximum number of connections in the pool (default: 5)
	MaxConns int `env:"DB_MAX_CONNS" default:"5"`

	// MinConns is the minimum number of connections to keep open (default: 1)
	MinConns int `env:"DB_MIN_CONNS" default:"1"`

	// MaxConnLifetime is the maximum lifetime of a connection (default: 1h)
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`

	// MaxConnIdleTime is the maximum idle time before a connection is closed (default: 30m)
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
}

// SourceConfig selects and configures the file source.
type SourceConfig struct {
	// Type is local or s3 (default: local)
	Type string `env:"FILE_SOURCE" default:"local"`

	// Dir is the directory scanned by the local source (default: /data/pif_files)
	Dir string `env:"FILE_DIR" default:"/data/pif_files"`

	// Prefix is the fixed file name prefix before MM-DD (default: CED)
	Prefix string `env:"FILE_PREFIX" default:"CED"`

	// S3Bucket is required when Type is s3.
	S3Bucket string `env:"S3_BUCKET"`

	// S3Prefix is the key prefix under which files live (default: pip/)
	S3Prefix string `env:"S3_PREFIX" default:"pip/"`

	// S3Region overrides the AWS region for S3 only.
	S3Region string `env:"S3_REGION"`

	// S3Endpoint points the client at an S3-compatible store (MinIO, LocalStack).
	S3Endpoint string `env:"S3_ENDPOINT"`
}

// LoadConfig holds load execution settings.
type LoadConfig struct {
	// Timeout is the maximum duration of one job, all files included (default: 10m)
	Timeout time.Duration `env:"LOAD_TIMEOUT" default:"10m"`

	// LockWait is how long a job waits for a running load of the same kind (default: 5s)
	LockWait time.Duration `env:"LOAD_LOCK_WAIT" default:"5s"`
}

// RateLimitConfig throttles job submissions per client IP.
type RateLimitConfig struct {
	// Enabled turns rate limiting on/off (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the job submissions allowed per IP per minute (default: 30)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"30"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// AWSConfig holds settings shared by every AWS client.
// Credentials come from the default chain, so AWS_PROFILE and SSO profiles work.
type AWSConfig struct {
	Region string `env:"AWS_REGION"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
