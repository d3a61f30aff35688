// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides the module's CBOR encoding configuration.
//
// CBOR is used for the on-disk trace format (see lib/trace): a stream
// of small fixed-shape records written once per byte that crosses the
// bridge. The encoder uses Core Deterministic Encoding (RFC 8949 §4.2)
// so the same traffic always produces identical trace bytes, which
// lets regression runs compare traces with cmp(1).
//
// For stream-oriented use:
//
//	encoder := codec.NewEncoder(file)
//	decoder := codec.NewDecoder(file)
//
// Types serialized here carry `cbor` struct tags with integer keys
// (`cbor:"1,keyasint"`) to keep per-byte records small.
package codec
