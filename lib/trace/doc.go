// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package trace records the bytes that cross a UART bridge.
//
// A trace is a CBOR sequence of [Event] records, one per staged input
// byte or delivered output byte, numbered in the order they crossed.
// It is an observation log for scripted regression runs, not a channel
// the bridge reads from or writes to: recording failures are logged
// once, disable further recording, and never affect the data paths.
//
// Traces may be compressed with zstd or lz4 framing. [Create] picks the
// compression from the file extension when none is configured
// (".zst" and ".lz4"); [Open] detects it from the frame magic, so
// readers never need to be told.
//
//	writer, err := trace.Create("session.trace.zst", "", logger)
//	b := &bridge.Bridge{Recorder: writer}
//	...
//	writer.Close()
//
//	reader, err := trace.Open("session.trace.zst")
//	for {
//	    event, err := reader.Next()
//	    if errors.Is(err, io.EOF) { break }
//	}
package trace
