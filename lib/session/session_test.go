// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/bureau-foundation/uartbridge/bridge"
	"github.com/bureau-foundation/uartbridge/lib/config"
	"github.com/bureau-foundation/uartbridge/lib/trace"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestOpenWithTrace(t *testing.T) {
	cfg := config.Default()
	cfg.Trace.Path = filepath.Join(t.TempDir(), "session.trace.zst")

	var output bytes.Buffer
	s, err := Open(cfg, Options{Source: bytes.NewReader([]byte("ok")), Sink: &output}, discardLogger())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	for {
		available, err := s.Bridge.Poll()
		if err != nil {
			t.Fatalf("Poll: %v", err)
		}
		if !available {
			break
		}
		if err := s.Bridge.Deliver(s.Bridge.Staged()); err != nil {
			t.Fatalf("Deliver: %v", err)
		}
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
	if output.String() != "ok" {
		t.Errorf("output = %q, want %q", output.String(), "ok")
	}

	reader, err := trace.Open(cfg.Trace.Path)
	if err != nil {
		t.Fatalf("trace.Open: %v", err)
	}
	defer reader.Close()
	events, err := reader.All()
	if err != nil {
		t.Fatalf("reading trace: %v", err)
	}
	want := []trace.Event{
		{Sequence: 0, Direction: trace.Input, Value: 'o'},
		{Sequence: 1, Direction: trace.Output, Value: 'o'},
		{Sequence: 2, Direction: trace.Input, Value: 'k'},
		{Sequence: 3, Direction: trace.Output, Value: 'k'},
	}
	if len(events) != len(want) {
		t.Fatalf("trace has %d events, want %d: %+v", len(events), len(want), events)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Errorf("event %d = %+v, want %+v", i, events[i], want[i])
		}
	}
}

func TestOpenRejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Input = "/tmp/keystrokes"
	if _, err := Open(cfg, Options{}, discardLogger()); err == nil {
		t.Fatal("Open accepted a file-backed input")
	}
}

func TestOpenUnwritableTrace(t *testing.T) {
	cfg := config.Default()
	cfg.Trace.Path = filepath.Join(t.TempDir(), "missing", "session.trace")
	_, err := Open(cfg, Options{Source: bytes.NewReader(nil), Sink: &bytes.Buffer{}}, discardLogger())
	if err == nil {
		t.Fatal("Open succeeded with an unwritable trace path")
	}
}

func TestOpenConfigurationErrorKeepsSession(t *testing.T) {
	inputReader, inputWriter, err := os.Pipe()
	if err != nil {
		t.Fatalf("creating pipe: %v", err)
	}
	inputWriter.Close()
	inputReader.Close()

	var output bytes.Buffer
	s, err := Open(config.Default(), Options{Input: inputReader, Sink: &output}, discardLogger())
	if !bridge.IsKind(err, bridge.KindConfiguration) {
		t.Fatalf("Open error = %v, want configuration error", err)
	}
	if s == nil {
		t.Fatal("Open returned no session alongside a configuration error")
	}
	defer s.Close()

	if err := s.Bridge.Deliver('y'); err != nil {
		t.Fatalf("Deliver: %v", err)
	}
	if output.String() != "y" {
		t.Errorf("output = %q, want %q", output.String(), "y")
	}
}
