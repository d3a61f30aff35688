// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package session turns a loaded configuration into a started bridge
// with its optional trace attached. Both the host driver and the DPI
// library open their bridge through here so they interpret the
// configuration identically.
package session

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/bureau-foundation/uartbridge/bridge"
	"github.com/bureau-foundation/uartbridge/lib/config"
	"github.com/bureau-foundation/uartbridge/lib/trace"
)

// Session is a started bridge plus the resources that must be released
// with it.
type Session struct {
	// Bridge is the started bridge.
	Bridge *bridge.Bridge

	// Trace is the trace writer, or nil when tracing is off.
	Trace *trace.Writer

	logger *slog.Logger
}

// Options replaces parts of the configured wiring. Zero values use the
// configuration.
type Options struct {
	// Input and Output override the configured standard streams.
	Input  *os.File
	Output *os.File

	// Source and Sink substitute in-memory channels.
	Source bridge.Source
	Sink   bridge.Sink
}

// Open validates cfg, creates the trace file if one is configured, and
// starts the bridge.
//
// If the bridge reports a configuration error (see bridge.Bridge.Start)
// Open returns the usable session together with that error; callers
// decide whether to carry on output-only. Any other error returns a
// nil session and leaves the terminal untouched.
func Open(cfg *config.Config, options Options, logger *slog.Logger) (*Session, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	mode, err := bridge.ParseMode(cfg.TerminalMode)
	if err != nil {
		return nil, err
	}
	writeTimeout, err := cfg.WriteTimeoutDuration()
	if err != nil {
		return nil, err
	}

	output := options.Output
	if output == nil && cfg.Output == "stderr" {
		output = os.Stderr
	}

	b := &bridge.Bridge{
		Input:        options.Input,
		Output:       output,
		Source:       options.Source,
		Sink:         options.Sink,
		Mode:         mode,
		WriteTimeout: writeTimeout,
		Logger:       logger,
	}
	s := &Session{Bridge: b, logger: logger}

	if cfg.Trace.Path != "" {
		compression, err := trace.ParseCompression(cfg.Trace.Compression)
		if err != nil {
			return nil, err
		}
		writer, err := trace.Create(cfg.Trace.Path, compression, logger)
		if err != nil {
			return nil, err
		}
		s.Trace = writer
		b.Recorder = writer
		logger.Info("tracing uart traffic", "path", cfg.Trace.Path)
	}

	if err := b.Start(); err != nil {
		if bridge.IsKind(err, bridge.KindConfiguration) {
			return s, err
		}
		s.Close()
		return nil, err
	}
	return s, nil
}

// Close restores the terminal and finishes the trace. It is safe to
// call more than once.
func (s *Session) Close() error {
	var errs []error
	if err := s.Bridge.Stop(); err != nil {
		errs = append(errs, err)
	}
	if s.Trace != nil {
		if err := s.Trace.Close(); err != nil {
			errs = append(errs, err)
		}
		s.logger.Info("uart trace closed", "events", s.Trace.Count())
		s.Trace = nil
	}
	return errors.Join(errs...)
}
