// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Input != "stdin" || cfg.Output != "stdout" {
		t.Errorf("expected stdin/stdout, got %s/%s", cfg.Input, cfg.Output)
	}
	if cfg.TerminalMode != "cbreak" {
		t.Errorf("expected terminal_mode=cbreak, got %s", cfg.TerminalMode)
	}
	if cfg.Driver.EscapeByte != 0x1d {
		t.Errorf("expected escape_byte=29, got %d", cfg.Driver.EscapeByte)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config does not validate: %v", err)
	}
}

func TestLoad_RequiresEnvironmentVariable(t *testing.T) {
	t.Setenv(EnvironmentVariable, "")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error when DPI_UART_CONFIG not set, got nil")
	}
	if !strings.HasPrefix(err.Error(), "DPI_UART_CONFIG environment variable not set") {
		t.Errorf("unexpected error message: %q", err.Error())
	}
}

func TestLoad_WithEnvironmentVariable(t *testing.T) {
	path := writeConfig(t, "uart.yaml", `
terminal_mode: raw
write_timeout: 250ms
driver:
  loopback: true
`)
	t.Setenv(EnvironmentVariable, path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.TerminalMode != "raw" {
		t.Errorf("expected terminal_mode=raw, got %s", cfg.TerminalMode)
	}
	timeout, err := cfg.WriteTimeoutDuration()
	if err != nil || timeout != 250*time.Millisecond {
		t.Errorf("WriteTimeoutDuration() = %v, %v; want 250ms", timeout, err)
	}
	if !cfg.Driver.Loopback {
		t.Error("expected driver.loopback=true")
	}
	// Unset keys keep their defaults.
	if cfg.Log.Format != "auto" {
		t.Errorf("expected log.format=auto, got %s", cfg.Log.Format)
	}
}

func TestLoadFile_JSONC(t *testing.T) {
	path := writeConfig(t, "uart.jsonc", `{
  // Full raw mode for binary protocols.
  "terminal_mode": "raw",
  "log": {"level": "debug", "format": "json",},
  /* trace everything */
  "trace": {"path": "/tmp/session.trace.zst"},
}`)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if cfg.TerminalMode != "raw" {
		t.Errorf("expected terminal_mode=raw, got %s", cfg.TerminalMode)
	}
	level, err := cfg.LogLevel()
	if err != nil || level != slog.LevelDebug {
		t.Errorf("LogLevel() = %v, %v; want debug", level, err)
	}
	if cfg.Trace.Path != "/tmp/session.trace.zst" {
		t.Errorf("expected trace.path=/tmp/session.trace.zst, got %s", cfg.Trace.Path)
	}
}

func TestLoadFile_Empty(t *testing.T) {
	path := writeConfig(t, "empty.yaml", "")
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile on an empty file: %v", err)
	}
	if cfg.TerminalMode != "cbreak" {
		t.Errorf("expected default terminal_mode, got %s", cfg.TerminalMode)
	}
}

func TestLoadFile_UnknownKey(t *testing.T) {
	path := writeConfig(t, "uart.yaml", "terminal_mdoe: raw\n")
	if _, err := LoadFile(path); err == nil {
		t.Fatal("expected error for misspelled key")
	}
}

func TestLoadFile_Missing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestExpandVars(t *testing.T) {
	t.Setenv("UART_TEST_TRACE_DIR", "/var/traces")
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"no vars", "/plain/path", "/plain/path"},
		{"home", "${HOME}/trace", os.Getenv("HOME") + "/trace"},
		{"environment", "${UART_TEST_TRACE_DIR}/run.trace", "/var/traces/run.trace"},
		{"default used", "${UART_TEST_UNSET:-/tmp}/run.trace", "/tmp/run.trace"},
		{"default ignored", "${UART_TEST_TRACE_DIR:-/tmp}/run.trace", "/var/traces/run.trace"},
	}

	vars := map[string]string{"HOME": os.Getenv("HOME")}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := expandVars(tt.input, vars)
			if result != tt.expected {
				t.Errorf("expandVars(%q) = %q, expected %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{
			name:   "valid default",
			modify: func(c *Config) {},
		},
		{
			name:    "file-backed input",
			modify:  func(c *Config) { c.Input = "/tmp/keys.txt" },
			wantErr: "only stdin is supported",
		},
		{
			name:   "stderr output",
			modify: func(c *Config) { c.Output = "stderr" },
		},
		{
			name:    "file-backed output",
			modify:  func(c *Config) { c.Output = "/tmp/uart.log" },
			wantErr: "only stdout and stderr",
		},
		{
			name:    "unknown terminal mode",
			modify:  func(c *Config) { c.TerminalMode = "cooked" },
			wantErr: "terminal_mode",
		},
		{
			name:    "bad write timeout",
			modify:  func(c *Config) { c.WriteTimeout = "soon" },
			wantErr: "write_timeout",
		},
		{
			name:    "negative tick",
			modify:  func(c *Config) { c.Driver.Tick = "-1ms" },
			wantErr: "driver.tick must be positive",
		},
		{
			name:    "bad log level",
			modify:  func(c *Config) { c.Log.Level = "loud" },
			wantErr: "log.level",
		},
		{
			name:    "bad log format",
			modify:  func(c *Config) { c.Log.Format = "xml" },
			wantErr: "log.format",
		},
		{
			name:    "bad trace compression",
			modify:  func(c *Config) { c.Trace.Compression = "gzip" },
			wantErr: "trace.compression",
		},
		{
			name:   "escape disabled",
			modify: func(c *Config) { c.Driver.EscapeByte = -1 },
		},
		{
			name:    "escape out of range",
			modify:  func(c *Config) { c.Driver.EscapeByte = 256 },
			wantErr: "escape_byte",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}
