package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/alnah/go-img2pdf/internal/config"
)

// envConfig holds configuration from environment variables.
// Provides CI/CD-friendly overrides without requiring YAML files.
// Precedence: flags > environment > config file > defaults.
type envConfig struct {
	ConfigPath  string        // IMG2PDF_CONFIG: config file name or path
	Output      string        // IMG2PDF_OUTPUT: destination directory or bucket URL
	CacheURL    string        // IMG2PDF_CACHE_URL: redis URL for the payload cache
	UserAgent   string        // IMG2PDF_USER_AGENT: User-Agent header
	LogLevel    string        // IMG2PDF_LOG_LEVEL: debug, info, warn, error
	Concurrency int           // IMG2PDF_CONCURRENCY: max downloads in flight
	Workers     int           // IMG2PDF_WORKERS: conversion pool size
	Timeout     time.Duration // IMG2PDF_TIMEOUT: per-request deadline
}

// knownEnvVars lists valid IMG2PDF_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"IMG2PDF_CONFIG":      true,
	"IMG2PDF_OUTPUT":      true,
	"IMG2PDF_CACHE_URL":   true,
	"IMG2PDF_USER_AGENT":  true,
	"IMG2PDF_LOG_LEVEL":   true,
	"IMG2PDF_CONCURRENCY": true,
	"IMG2PDF_WORKERS":     true,
	"IMG2PDF_TIMEOUT":     true,
}

// loadEnvConfig reads configuration from environment variables.
// Unparseable numeric or duration values are reported on warnOut and
// ignored rather than failing the run.
func loadEnvConfig(warnOut io.Writer) *envConfig {
	ec := &envConfig{
		ConfigPath: os.Getenv("IMG2PDF_CONFIG"),
		Output:     os.Getenv("IMG2PDF_OUTPUT"),
		CacheURL:   os.Getenv("IMG2PDF_CACHE_URL"),
		UserAgent:  os.Getenv("IMG2PDF_USER_AGENT"),
		LogLevel:   os.Getenv("IMG2PDF_LOG_LEVEL"),
	}

	ec.Concurrency = envInt(warnOut, "IMG2PDF_CONCURRENCY")
	ec.Workers = envInt(warnOut, "IMG2PDF_WORKERS")

	if v := os.Getenv("IMG2PDF_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			fmt.Fprintf(warnOut, "Warning: ignoring IMG2PDF_TIMEOUT=%q (want a duration like 30s)\n", v)
		} else {
			ec.Timeout = d
		}
	}

	return ec
}

// envInt parses a positive integer environment variable; 0 means unset.
func envInt(warnOut io.Writer, name string) int {
	v := os.Getenv(name)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		fmt.Fprintf(warnOut, "Warning: ignoring %s=%q (want a non-negative integer)\n", name, v)
		return 0
	}
	return n
}

// applyEnvConfig overlays environment values onto cfg. Only set values
// override; the caller applies command-line flags on top afterwards.
func applyEnvConfig(cfg *config.Config, ec *envConfig) {
	if ec.Output != "" {
		cfg.Output.Destination = ec.Output
	}
	if ec.CacheURL != "" {
		cfg.Cache.RedisURL = ec.CacheURL
		cfg.Cache.Enabled = true
	}
	if ec.UserAgent != "" {
		cfg.Download.UserAgent = ec.UserAgent
	}
	if ec.LogLevel != "" {
		cfg.Log.Level = ec.LogLevel
	}
	if ec.Concurrency > 0 {
		cfg.Download.Concurrency = ec.Concurrency
	}
	if ec.Workers > 0 {
		cfg.Convert.Workers = ec.Workers
	}
	if ec.Timeout > 0 {
		cfg.Download.TimeoutSeconds = int(ec.Timeout / time.Second)
	}
}

// warnUnknownEnvVars reports IMG2PDF_* variables that look like typos.
func warnUnknownEnvVars(warnOut io.Writer) {
	for _, kv := range os.Environ() {
		name, _, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, "IMG2PDF_") {
			continue
		}
		if !knownEnvVars[name] {
			fmt.Fprintf(warnOut, "Warning: unknown environment variable %s\n", name)
		}
	}
}
