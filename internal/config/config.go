package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	img2pdf "github.com/alnah/go-img2pdf"
	"github.com/alnah/go-img2pdf/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrInvalidValue    = errors.New("invalid config value")
)

// Upper bounds for tunables. The library enforces its own floors; these
// keep a config file from asking for something absurd.
const (
	MaxConcurrency    = 500  // simultaneous downloads
	MaxWorkers        = 64   // conversion pool size
	MaxBatchSize      = 5000 // items resident per batch
	MaxRetries        = 10   // retry attempts per download
	MaxTimeoutSeconds = 600  // per-request deadline
	MaxHostRate       = 1000 // requests/second against one host
	MaxPayloadMB      = 1024 // single response body
	MaxCacheTTLHours  = 720  // 30 days
	MaxURLLength      = 2048 // destination and redis URLs
	MaxUserAgentLen   = 200
)

// Config holds all configuration for a conversion run. The zero value
// of every field means "use the library default"; Retries uses -1 for
// that because zero legitimately disables retrying.
type Config struct {
	Output   OutputConfig   `yaml:"output"`
	Download DownloadConfig `yaml:"download"`
	Convert  ConvertConfig  `yaml:"convert"`
	Cache    CacheConfig    `yaml:"cache"`
	Log      LogConfig      `yaml:"log"`
}

// OutputConfig defines where artifacts land.
type OutputConfig struct {
	Destination string `yaml:"destination"` // directory or blob URL (file://, s3://, gs://)
	KeepImages  bool   `yaml:"keepImages"`  // also store the raw downloads
}

// DownloadConfig tunes the HTTP fetch stage.
type DownloadConfig struct {
	Concurrency    int     `yaml:"concurrency"`    // simultaneous downloads
	TimeoutSeconds int     `yaml:"timeoutSeconds"` // per-request deadline
	Retries        int     `yaml:"retries"`        // -1 = default, 0 = disabled
	HostRate       float64 `yaml:"hostRate"`       // requests/second per host, 0 = unlimited
	UserAgent      string  `yaml:"userAgent"`
	MaxPayloadMB   int     `yaml:"maxPayloadMB"` // response body cap
}

// ConvertConfig tunes the rendering stage.
type ConvertConfig struct {
	DPI       int  `yaml:"dpi"`       // page size derivation, 18-1200
	Workers   int  `yaml:"workers"`   // conversion pool size, 0 = auto
	BatchSize int  `yaml:"batchSize"` // items per resident batch
	Combine   bool `yaml:"combine"`   // one document instead of one per image
}

// CacheConfig enables the shared payload cache.
type CacheConfig struct {
	Enabled  bool   `yaml:"enabled"`
	RedisURL string `yaml:"redisURL"` // e.g. redis://localhost:6379/0
	TTLHours int    `yaml:"ttlHours"` // 0 = 24h
}

// LogConfig controls diagnostic output.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Pretty bool   `yaml:"pretty"` // console format instead of JSON
	File   string `yaml:"file"`   // also append logs here
}

// Validate bounds every tunable. Called automatically by LoadConfig,
// but available for consumers that construct Config manually.
func (c *Config) Validate() error {
	if err := validateRange("download.concurrency", c.Download.Concurrency, 0, MaxConcurrency); err != nil {
		return err
	}
	if err := validateRange("download.timeoutSeconds", c.Download.TimeoutSeconds, 0, MaxTimeoutSeconds); err != nil {
		return err
	}
	if err := validateRange("download.retries", c.Download.Retries, -1, MaxRetries); err != nil {
		return err
	}
	if c.Download.HostRate < 0 || c.Download.HostRate > MaxHostRate {
		return fmt.Errorf("%w: download.hostRate %.1f (must be 0-%d)", ErrInvalidValue, c.Download.HostRate, MaxHostRate)
	}
	if len(c.Download.UserAgent) > MaxUserAgentLen {
		return fmt.Errorf("%w: download.userAgent exceeds %d chars", ErrInvalidValue, MaxUserAgentLen)
	}
	if err := validateRange("download.maxPayloadMB", c.Download.MaxPayloadMB, 0, MaxPayloadMB); err != nil {
		return err
	}

	if c.Convert.DPI != 0 {
		if c.Convert.DPI < img2pdf.MinDPI || c.Convert.DPI > img2pdf.MaxDPI {
			return fmt.Errorf("%w: convert.dpi %d (must be %d-%d)",
				ErrInvalidValue, c.Convert.DPI, img2pdf.MinDPI, img2pdf.MaxDPI)
		}
	}
	if err := validateRange("convert.workers", c.Convert.Workers, 0, MaxWorkers); err != nil {
		return err
	}
	if err := validateRange("convert.batchSize", c.Convert.BatchSize, 0, MaxBatchSize); err != nil {
		return err
	}

	if c.Cache.Enabled && c.Cache.RedisURL == "" {
		return fmt.Errorf("%w: cache.redisURL required when cache is enabled", ErrInvalidValue)
	}
	if len(c.Cache.RedisURL) > MaxURLLength {
		return fmt.Errorf("%w: cache.redisURL exceeds %d chars", ErrInvalidValue, MaxURLLength)
	}
	if err := validateRange("cache.ttlHours", c.Cache.TTLHours, 0, MaxCacheTTLHours); err != nil {
		return err
	}

	if len(c.Output.Destination) > MaxURLLength {
		return fmt.Errorf("%w: output.destination exceeds %d chars", ErrInvalidValue, MaxURLLength)
	}

	if c.Log.Level != "" {
		switch strings.ToLower(c.Log.Level) {
		case "debug", "info", "warn", "warning", "error":
			// valid
		default:
			return fmt.Errorf("%w: log.level %q (must be debug, info, warn, or error)", ErrInvalidValue, c.Log.Level)
		}
	}

	return nil
}

// validateRange checks an integer tunable against its bounds.
func validateRange(field string, value, low, high int) error {
	if value < low || value > high {
		return fmt.Errorf("%w: %s %d (must be %d-%d)", ErrInvalidValue, field, value, low, high)
	}
	return nil
}

// DefaultConfig returns a configuration that defers every tunable to
// the library defaults.
func DefaultConfig() *Config {
	return &Config{
		Download: DownloadConfig{Retries: -1},
		Cache:    CacheConfig{Enabled: false},
	}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard
// locations. Returns an error if the file is not found (no silent
// fallback). Fields absent from the file keep their defaults.
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if isFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yamlutil.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// isFilePath returns true if the string looks like a file path.
func isFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}

// resolveConfigPath searches for a config file by name in standard locations.
// Tries extensions in order: .yaml, .yml
// Tries locations in order: current directory, ~/.config/go-img2pdf/
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	triedPaths := make([]string, 0, len(extensions)*2) // 2 locations

	// Try current directory first (both extensions)
	for _, ext := range extensions {
		localPath := name + ext
		if fileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	// Try user config directory (both extensions)
	userConfigDir, err := os.UserConfigDir()
	if err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(userConfigDir, "go-img2pdf", name+ext)
			if fileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(triedPaths, ", "))
}

// fileExists returns true if the path exists and is a regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
