// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// EnvironmentVariable names the variable Load reads the config path
// from.
const EnvironmentVariable = "DPI_UART_CONFIG"

// Config is the bridge configuration.
type Config struct {
	// Input names the stream bytes are read from. Only "stdin" is
	// supported; the key is reserved for file-backed input.
	Input string `yaml:"input"`

	// Output names the stream bytes are written to: "stdout" or
	// "stderr".
	Output string `yaml:"output"`

	// TerminalMode is how an interactive input terminal is
	// reconfigured: "cbreak" (no line buffering, no echo), "raw", or
	// "none".
	// Default: cbreak
	TerminalMode string `yaml:"terminal_mode"`

	// WriteTimeout bounds how long a single output byte may wait for a
	// full terminal to drain.
	// Default: 1s
	WriteTimeout string `yaml:"write_timeout"`

	// Log configures structured logging to stderr.
	Log LogConfig `yaml:"log"`

	// Trace configures the optional byte trace.
	Trace TraceConfig `yaml:"trace"`

	// Driver configures the standalone host driver (uartbridge run).
	// The DPI library ignores it: the simulator drives the clock.
	Driver DriverConfig `yaml:"driver"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is debug, info, warn, or error.
	// Default: info
	Level string `yaml:"level"`

	// Format is "text", "json", or "auto" (text when stderr is a
	// terminal, JSON otherwise).
	// Default: auto
	Format string `yaml:"format"`
}

// TraceConfig configures the byte trace.
type TraceConfig struct {
	// Path is the trace file. Empty disables tracing.
	Path string `yaml:"path"`

	// Compression is none, zstd, or lz4. Empty infers it from the
	// extension of Path.
	Compression string `yaml:"compression"`
}

// DriverConfig configures the standalone host driver.
type DriverConfig struct {
	// Tick is the polling interval of the simulated clock.
	// Default: 1ms
	Tick string `yaml:"tick"`

	// Loopback echoes every received byte back to the output, standing
	// in for a UART model that echoes.
	Loopback bool `yaml:"loopback"`

	// EscapeByte ends the run when received. -1 disables it.
	// Default: 29 (Ctrl-])
	EscapeByte int `yaml:"escape_byte"`
}

// Default returns the default configuration. Loaded files are merged
// over it.
func Default() *Config {
	return &Config{
		Input:        "stdin",
		Output:       "stdout",
		TerminalMode: "cbreak",
		WriteTimeout: "1s",
		Log: LogConfig{
			Level:  "info",
			Format: "auto",
		},
		Driver: DriverConfig{
			Tick:       "1ms",
			EscapeByte: 0x1d,
		},
	}
}

// Load loads configuration from the file named by DPI_UART_CONFIG.
// There is no fallback: if the variable is not set, Load fails.
func Load() (*Config, error) {
	configPath := os.Getenv(EnvironmentVariable)
	if configPath == "" {
		return nil, fmt.Errorf("%s environment variable not set; "+
			"set it to the path of your config file, or use --config flag", EnvironmentVariable)
	}

	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path, merges it
// over Default, expands variables, and validates the result.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}

	cfg.expandVariables()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// loadFile decodes a single file into c. JSON and JSONC files are
// stripped of comments first; YAML is a superset of JSON, so one
// decoder handles both.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		data = jsonc.ToJSON(data)
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	return nil
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in paths.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"HOME": os.Getenv("HOME"),
	}
	c.Trace.Path = expandVars(c.Trace.Path, vars)
}

// varPattern matches ${VAR} and ${VAR:-default}.
var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		// Check provided vars first, then environment.
		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.Input != "" && c.Input != "stdin" {
		errs = append(errs, fmt.Errorf("input %q: only stdin is supported (file-backed streams are not implemented)", c.Input))
	}
	if c.Output != "" && c.Output != "stdout" && c.Output != "stderr" {
		errs = append(errs, fmt.Errorf("output %q: only stdout and stderr are supported (file-backed streams are not implemented)", c.Output))
	}

	if !slices.Contains([]string{"", "cbreak", "raw", "none"}, c.TerminalMode) {
		errs = append(errs, fmt.Errorf("terminal_mode must be one of: cbreak, raw, none"))
	}

	if _, err := c.WriteTimeoutDuration(); err != nil {
		errs = append(errs, err)
	}

	if _, err := c.LogLevel(); err != nil {
		errs = append(errs, err)
	}
	if !slices.Contains([]string{"", "auto", "text", "json"}, c.Log.Format) {
		errs = append(errs, fmt.Errorf("log.format must be one of: auto, text, json"))
	}

	if !slices.Contains([]string{"", "none", "zstd", "lz4"}, c.Trace.Compression) {
		errs = append(errs, fmt.Errorf("trace.compression must be one of: none, zstd, lz4"))
	}

	if _, err := c.TickDuration(); err != nil {
		errs = append(errs, err)
	}
	if c.Driver.EscapeByte < -1 || c.Driver.EscapeByte > 255 {
		errs = append(errs, fmt.Errorf("driver.escape_byte must be -1 or 0..255, got %d", c.Driver.EscapeByte))
	}

	return errors.Join(errs...)
}

// WriteTimeoutDuration parses WriteTimeout. Empty means zero (the
// bridge default).
func (c *Config) WriteTimeoutDuration() (time.Duration, error) {
	return parsePositiveDuration("write_timeout", c.WriteTimeout)
}

// TickDuration parses Driver.Tick. Empty means one millisecond.
func (c *Config) TickDuration() (time.Duration, error) {
	if c.Driver.Tick == "" {
		return time.Millisecond, nil
	}
	return parsePositiveDuration("driver.tick", c.Driver.Tick)
}

func parsePositiveDuration(key, value string) (time.Duration, error) {
	if value == "" {
		return 0, nil
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if duration <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", key, value)
	}
	return duration, nil
}

// LogLevel parses Log.Level. Empty means info.
func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if c.Log.Level == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}
