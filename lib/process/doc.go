// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package process provides binary entrypoint helpers. These functions
// centralize the raw I/O that happens before the structured logger
// exists: fatal error reporting to stderr and process exit.
//
// The DPI library never calls into this package. A shared library
// loaded by a simulator must not exit the host process; it logs and
// carries on instead.
package process
