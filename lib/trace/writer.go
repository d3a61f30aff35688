// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package trace

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/bureau-foundation/uartbridge/lib/codec"
)

// Writer streams events to a trace. It implements bridge.Recorder.
// Events are recorded from the goroutine that drives the bridge; Close
// may run concurrently from a signal handler, after which further
// events are dropped.
type Writer struct {
	mu         sync.Mutex
	closed     bool
	buffered   *bufio.Writer
	compressor io.WriteCloser
	file       io.Closer
	encoder    *codec.Encoder
	logger     *slog.Logger

	sequence uint64
	err      error
}

// Create opens path for writing (truncating it) and returns a Writer.
// An empty compression is inferred from the file extension.
func Create(path string, compression Compression, logger *slog.Logger) (*Writer, error) {
	if compression == "" {
		compression = CompressionForPath(path)
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating trace file: %w", err)
	}
	writer, err := NewWriter(file, compression, logger)
	if err != nil {
		file.Close()
		return nil, err
	}
	writer.file = file
	return writer, nil
}

// NewWriter returns a Writer that streams to w. Close flushes the
// stream but does not close w.
func NewWriter(w io.Writer, compression Compression, logger *slog.Logger) (*Writer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	writer := &Writer{logger: logger}

	switch compression {
	case "", CompressionNone:
		writer.buffered = bufio.NewWriter(w)
	case CompressionZstd:
		encoder, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedFastest))
		if err != nil {
			return nil, fmt.Errorf("creating zstd encoder: %w", err)
		}
		writer.compressor = encoder
		writer.buffered = bufio.NewWriter(encoder)
	case CompressionLZ4:
		encoder := lz4.NewWriter(w)
		writer.compressor = encoder
		writer.buffered = bufio.NewWriter(encoder)
	default:
		return nil, fmt.Errorf("unsupported trace compression %q", compression)
	}

	writer.encoder = codec.NewEncoder(writer.buffered)
	return writer, nil
}

// RecordInput records a byte staged from the host.
func (w *Writer) RecordInput(value byte) { w.record(Input, value) }

// RecordOutput records a byte delivered to the host.
func (w *Writer) RecordOutput(value byte) { w.record(Output, value) }

func (w *Writer) record(direction Direction, value byte) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil || w.closed {
		return
	}
	event := Event{Sequence: w.sequence, Direction: direction, Value: value}
	w.sequence++
	if err := w.encoder.Encode(event); err != nil {
		w.err = err
		w.logger.Error("trace recording disabled", "sequence", event.Sequence, "error", err)
	}
}

// Count returns the number of events recorded so far.
func (w *Writer) Count() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.sequence
}

// Err returns the error that disabled recording, if any.
func (w *Writer) Err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.err
}

// Close flushes buffered events, finishes the compression frame, and
// closes the file if the Writer opened it. Calls after the first do
// nothing.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true

	var errs []error
	if err := w.buffered.Flush(); err != nil {
		errs = append(errs, fmt.Errorf("flushing trace: %w", err))
	}
	if w.compressor != nil {
		if err := w.compressor.Close(); err != nil {
			errs = append(errs, fmt.Errorf("finishing trace compression: %w", err))
		}
	}
	if w.file != nil {
		if err := w.file.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing trace file: %w", err))
		}
	}
	return errors.Join(errs...)
}
