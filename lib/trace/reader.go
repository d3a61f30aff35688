// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package trace

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/bureau-foundation/uartbridge/lib/codec"
)

// Reader decodes events from a trace.
type Reader struct {
	decoder     *codec.Decoder
	compression Compression
	closers     []io.Closer
}

// Open opens a trace file, detecting its compression.
func Open(path string) (*Reader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening trace file: %w", err)
	}
	reader, err := NewReader(file)
	if err != nil {
		file.Close()
		return nil, err
	}
	reader.closers = append(reader.closers, file)
	return reader, nil
}

// NewReader returns a Reader over r, detecting zstd or lz4 framing from
// the first bytes. Close releases decompressor state but does not close
// r.
func NewReader(r io.Reader) (*Reader, error) {
	buffered := bufio.NewReader(r)
	magic, err := buffered.Peek(4)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("reading trace header: %w", err)
	}

	reader := &Reader{compression: CompressionNone}
	var stream io.Reader = buffered
	switch {
	case bytes.Equal(magic, zstdMagic):
		decoder, err := zstd.NewReader(buffered)
		if err != nil {
			return nil, fmt.Errorf("creating zstd decoder: %w", err)
		}
		readCloser := decoder.IOReadCloser()
		reader.closers = append(reader.closers, readCloser)
		reader.compression = CompressionZstd
		stream = readCloser
	case bytes.Equal(magic, lz4Magic):
		reader.compression = CompressionLZ4
		stream = lz4.NewReader(buffered)
	}

	reader.decoder = codec.NewDecoder(stream)
	return reader, nil
}

// Compression reports the detected framing.
func (r *Reader) Compression() Compression { return r.compression }

// Next returns the next event, or io.EOF at the end of the trace. A
// trace truncated mid-record returns io.ErrUnexpectedEOF.
func (r *Reader) Next() (Event, error) {
	var event Event
	if err := r.decoder.Decode(&event); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return Event{}, err
		}
		return Event{}, fmt.Errorf("decoding trace event: %w", err)
	}
	return event, nil
}

// All reads every remaining event.
func (r *Reader) All() ([]Event, error) {
	var events []Event
	for {
		event, err := r.Next()
		if errors.Is(err, io.EOF) {
			return events, nil
		}
		if err != nil {
			return events, err
		}
		events = append(events, event)
	}
}

// Close releases the decompressor and the file opened by Open.
func (r *Reader) Close() error {
	var errs []error
	for _, closer := range r.closers {
		if err := closer.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
