// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestNewLoggerFormats(t *testing.T) {
	tests := []struct {
		name        string
		interactive bool
		format      string
		wantJSON    bool
	}{
		{name: "auto on terminal", interactive: true, format: "auto", wantJSON: false},
		{name: "auto when piped", interactive: false, format: "auto", wantJSON: true},
		{name: "empty when piped", interactive: false, format: "", wantJSON: true},
		{name: "forced text", interactive: false, format: "text", wantJSON: false},
		{name: "forced json", interactive: true, format: "json", wantJSON: true},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var output bytes.Buffer
			logger, err := newLogger(&output, test.interactive, slog.LevelInfo, test.format)
			if err != nil {
				t.Fatalf("newLogger: %v", err)
			}
			logger.Info("uart bridge started", "mode", "cbreak")
			isJSON := strings.HasPrefix(output.String(), "{")
			if isJSON != test.wantJSON {
				t.Errorf("output %q: JSON = %v, want %v", output.String(), isJSON, test.wantJSON)
			}
		})
	}
}

func TestNewLoggerLevel(t *testing.T) {
	var output bytes.Buffer
	logger, err := newLogger(&output, false, slog.LevelWarn, "json")
	if err != nil {
		t.Fatalf("newLogger: %v", err)
	}
	logger.Info("hidden")
	if output.Len() != 0 {
		t.Errorf("info message logged at warn level: %q", output.String())
	}
}

func TestNewLoggerUnknownFormat(t *testing.T) {
	if _, err := newLogger(&bytes.Buffer{}, false, slog.LevelInfo, "xml"); err == nil {
		t.Error("expected error for unknown format")
	}
}
