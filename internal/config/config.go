// Package config provides centralized configuration management for pdftables.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"strconv"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables; the CLI may
// override individual values with flags after loading.
type Config struct {
	Server   ServerConfig
	Security SecurityConfig
	Database DatabaseConfig
	Batch    BatchConfig
	Extract  ExtractConfig
	Convert  ConvertConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading request body (default: 30s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"30s"`

	// WriteTimeout is the maximum duration for writing response (default: 2m)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"2m"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 2m)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"2m"`
}

// SecurityConfig holds settings for the HTTP API surface.
type SecurityConfig struct {
	// RequireAPIKey enables X-API-Key checks on /api routes (default: false)
	RequireAPIKey bool `env:"REQUIRE_API_KEY" default:"false"`

	// APIKeys is the comma-separated list of accepted keys
	APIKeys []string `env:"API_KEYS"`

	// TrustedProxies lists CIDRs whose X-Real-IP / X-Forwarded-For headers are honored
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// RateLimit is the number of requests allowed per client IP per minute;
	// 0 disables rate limiting (default: 120)
	RateLimit int `env:"RATE_LIMIT_PER_MINUTE" default:"120"`
}

// DatabaseConfig holds settings for the optional run history store.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string. History is disabled when empty.
	// Supports both DATABASE_URL and DB_URL env vars for compatibility
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	// MaxConns is the maximum number of connections in the pool (default: 4)
	MaxConns int `env:"DB_MAX_CONNS" default:"4"`

	// MinConns is the minimum number of connections to keep open (default: 0)
	MinConns int `env:"DB_MIN_CONNS" default:"0"`

	// MaxConnLifetime is the maximum lifetime of a connection (default: 1h)
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`
}

// Enabled reports whether a history database is configured.
func (c *DatabaseConfig) Enabled() bool {
	return c.URL != ""
}

// BatchConfig holds folder conversion settings.
type BatchConfig struct {
	// InputDir is the folder scanned for source documents (default: pdfs)
	InputDir string `env:"PDFTABLES_INPUT_DIR" default:"pdfs"`

	// OutputDir receives one spreadsheet per input file (default: output_tables)
	OutputDir string `env:"PDFTABLES_OUTPUT_DIR" default:"output_tables"`

	// Format is the output format: xlsx or csv (default: xlsx)
	Format string `env:"PDFTABLES_FORMAT" default:"xlsx"`

	// Layout is combined (one sheet per extraction family) or per-table (default: combined)
	Layout string `env:"PDFTABLES_LAYOUT" default:"combined"`

	// Workers is the number of files processed in parallel (default: 4)
	Workers int `env:"PDFTABLES_WORKERS" default:"4"`

	// FileTimeout bounds the processing of a single file (default: 5m)
	FileTimeout time.Duration `env:"PDFTABLES_FILE_TIMEOUT" default:"5m"`
}

// ExtractConfig holds table extraction tuning.
type ExtractConfig struct {
	// RowTolerance is the vertical distance in points within which text runs
	// share a row (default: 2)
	RowTolerance float64 `env:"EXTRACT_ROW_TOLERANCE" default:"2"`

	// ColumnGap is the horizontal gap in points that starts a new cell (default: 10)
	ColumnGap float64 `env:"EXTRACT_COLUMN_GAP" default:"10"`

	// MinColumns is the minimum number of cells for a row to belong to a table (default: 2)
	MinColumns int `env:"EXTRACT_MIN_COLUMNS" default:"2"`

	// OCRLanguage is the Tesseract language list, e.g. "eng+rus" (default: eng)
	OCRLanguage string `env:"OCR_LANGUAGE" default:"eng"`

	// OCRPageSegMode is the Tesseract page segmentation mode: 3, 4, 6 or 11 (default: 6)
	OCRPageSegMode int `env:"OCR_PAGE_SEG_MODE" default:"6"`
}

// ConvertConfig holds settings for conversions served over HTTP.
type ConvertConfig struct {
	// MaxFileSize is the maximum allowed upload size in bytes (default: 50MB)
	MaxFileSize int64 `env:"CONVERT_MAX_FILE_SIZE" default:"52428800"`

	// MaxConcurrent is the maximum number of parallel conversions (default: 2)
	MaxConcurrent int `env:"CONVERT_MAX_CONCURRENT" default:"2"`

	// MaxWaitTime is how long to wait for a conversion slot (default: 30s)
	MaxWaitTime time.Duration `env:"CONVERT_MAX_WAIT_TIME" default:"30s"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}
