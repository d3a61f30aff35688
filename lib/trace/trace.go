// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package trace

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Direction identifies which data path a byte travelled.
type Direction uint8

const (
	// Input is a byte read from the host and staged for the hardware
	// model.
	Input Direction = 1

	// Output is a byte delivered by the hardware model to the host.
	Output Direction = 2
)

func (d Direction) String() string {
	switch d {
	case Input:
		return "in"
	case Output:
		return "out"
	default:
		return fmt.Sprintf("Direction(%d)", uint8(d))
	}
}

// Event is one byte crossing the bridge. Integer keys keep each record
// at a handful of bytes.
type Event struct {
	// Sequence numbers events from zero across both directions.
	Sequence uint64 `cbor:"1,keyasint"`

	// Direction is the data path.
	Direction Direction `cbor:"2,keyasint"`

	// Value is the byte.
	Value byte `cbor:"3,keyasint"`
}

// Compression selects the framing around the CBOR stream.
type Compression string

const (
	CompressionNone Compression = "none"
	CompressionZstd Compression = "zstd"
	CompressionLZ4  Compression = "lz4"
)

// ParseCompression parses a configured compression name. The empty
// string is returned unchanged and means "infer from the path".
func ParseCompression(name string) (Compression, error) {
	switch Compression(name) {
	case "", CompressionNone, CompressionZstd, CompressionLZ4:
		return Compression(name), nil
	default:
		return "", fmt.Errorf("unknown trace compression %q (want none, zstd, or lz4)", name)
	}
}

// CompressionForPath infers compression from a trace file's extension.
func CompressionForPath(path string) Compression {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".zst", ".zstd":
		return CompressionZstd
	case ".lz4":
		return CompressionLZ4
	default:
		return CompressionNone
	}
}

// Frame magic numbers used by Open to detect compression.
var (
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
	lz4Magic  = []byte{0x04, 0x22, 0x4d, 0x18}
)
