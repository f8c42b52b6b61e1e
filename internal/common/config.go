package common

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment string           `toml:"environment"` // "development" or "production"
	Server      ServerConfig     `toml:"server"`
	Storage     StorageConfig    `toml:"storage"`
	Logging     LoggingConfig    `toml:"logging"`
	Retrieval   RetrievalConfig  `toml:"retrieval"`
	Scheduler   SchedulerConfig  `toml:"scheduler"`
	Assessment  AssessmentConfig `toml:"assessment"`
	Upload      UploadConfig     `toml:"upload"`
}

type ServerConfig struct {
	Port int    `toml:"port" validate:"gte=0,lte=65535"`
	Host string `toml:"host"`
}

type StorageConfig struct {
	Badger     BadgerConfig     `toml:"badger"`
	Filesystem FilesystemConfig `toml:"filesystem"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path"`             // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"` // Delete database on startup for clean test runs
}

// FilesystemConfig configures the blob directory for uploaded files
type FilesystemConfig struct {
	Blobs string `toml:"blobs"`
}

type LoggingConfig struct {
	Level  string   `toml:"level"`  // "debug", "info", "warn", "error"
	Output []string `toml:"output"` // "stdout", "file"
}

// RetrievalConfig contains configuration for the hosted semantic search service
type RetrievalConfig struct {
	APIKey    string `toml:"api_key"`    // Google API key for File Search retrieval
	Model     string `toml:"model"`      // Model used to answer retrieval queries
	Timeout   string `toml:"timeout"`    // Per-call timeout as duration string
	RateLimit string `toml:"rate_limit"` // Minimum interval between retrieval calls
}

// SchedulerConfig controls the collections snapshot refresh
type SchedulerConfig struct {
	Enabled  bool   `toml:"enabled"`
	Schedule string `toml:"schedule"` // Cron schedule format
}

// AssessmentConfig contains tunables for the assessment pipeline
type AssessmentConfig struct {
	MaxConcurrentCalls int `toml:"max_concurrent_calls" validate:"gte=1"` // Parallel retrieval calls per stage
	CitationMaxRunes   int `toml:"citation_max_runes" validate:"gte=100"` // Citation content bound in rendered reports
}

// UploadConfig contains limits for document uploads
type UploadConfig struct {
	MaxSizeBytes int64 `toml:"max_size_bytes" validate:"gte=0"`
}

// NewDefaultConfig creates a configuration with default values.
// Technical parameters are hardcoded here for production stability;
// only user-facing settings should be exposed in regula.toml.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8080,
			Host: "localhost",
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./data",
			},
			Filesystem: FilesystemConfig{
				Blobs: "./data/blobs",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout", "file"},
		},
		Retrieval: RetrievalConfig{
			Model:     "gemini-2.5-flash",
			Timeout:   "60s",
			RateLimit: "4s", // 15 RPM
		},
		Scheduler: SchedulerConfig{
			Enabled:  true,
			Schedule: "*/5 * * * *", // Every 5 minutes
		},
		Assessment: AssessmentConfig{
			MaxConcurrentCalls: 3,
			CitationMaxRunes:   1200,
		},
		Upload: UploadConfig{
			MaxSizeBytes: 25 * 1024 * 1024, // 25MB
		},
	}
}

// LoadFromFile loads configuration from a single TOML file
func LoadFromFile(path string) (*Config, error) {
	return LoadFromFiles(path)
}

// LoadFromFiles loads configuration by merging defaults, config files
// (later files override earlier ones), and environment variables.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	if err := validator.New().Struct(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// applyEnvOverrides applies REGULA_* environment variables on top of file config
func applyEnvOverrides(config *Config) {
	if v := os.Getenv("REGULA_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			config.Server.Port = port
		}
	}
	if v := os.Getenv("REGULA_SERVER_HOST"); v != "" {
		config.Server.Host = v
	}
	if v := os.Getenv("REGULA_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}
	if v := os.Getenv("REGULA_STORAGE_PATH"); v != "" {
		config.Storage.Badger.Path = v
	}
	if v := os.Getenv("REGULA_RETRIEVAL_API_KEY"); v != "" {
		config.Retrieval.APIKey = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" && config.Retrieval.APIKey == "" {
		config.Retrieval.APIKey = v
	}
}

// ApplyFlagOverrides applies command-line flag values (highest priority)
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// RetrievalTimeout parses the retrieval timeout duration, falling back to 60s
func (c *Config) RetrievalTimeout() time.Duration {
	d, err := time.ParseDuration(c.Retrieval.Timeout)
	if err != nil || d <= 0 {
		return 60 * time.Second
	}
	return d
}

// RetrievalRateLimit parses the retrieval rate limit interval, falling back to 4s
func (c *Config) RetrievalRateLimit() time.Duration {
	d, err := time.ParseDuration(c.Retrieval.RateLimit)
	if err != nil || d <= 0 {
		return 4 * time.Second
	}
	return d
}

// IsProduction returns true when running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
