// Package config reads the tool's process-level settings from the
// environment. Command line flags may override individual fields.
package config

import (
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	// Report output
	NoColor bool
	Verbose bool
	Width   int

	// Safety limit on the decompressed size of any package part.
	MaxPartBytes int64
}

func Load() Config {
	cfg := Config{
		NoColor: envBool("KDPFMT_NO_COLOR", false) || os.Getenv("NO_COLOR") != "",
		Verbose: envBool("KDPFMT_VERBOSE", false),
		Width:   envInt("KDPFMT_WIDTH", 80),

		MaxPartBytes: envInt64("KDPFMT_MAX_PART_BYTES", 1<<28), // 256MB
	}

	if cfg.Width <= 0 {
		cfg.Width = 80
	}
	if cfg.MaxPartBytes <= 0 {
		cfg.MaxPartBytes = 1 << 28
	}

	return cfg
}

func (c Config) Validate() error {
	if c.Width < 40 {
		return fmt.Errorf("KDPFMT_WIDTH must be at least 40")
	}
	if c.MaxPartBytes <= 0 {
		return fmt.Errorf("KDPFMT_MAX_PART_BYTES must be positive")
	}
	return nil
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
