// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers.
//
// [OpenPTY] allocates a pseudo-terminal pair through the Linux devpts
// interface so terminal-mode behavior can be tested against a real
// line discipline instead of a pipe. Tests that need it skip when
// /dev/ptmx is unavailable (containers without devpts).
//
// [RequireReceive] and [RequireClosed] encapsulate the timeout safety
// valve pattern (select with time.After fallback). They are how tests
// assert that something does not block: run it in a goroutine and
// require its completion signal within a generous timeout, rather than
// measuring elapsed time.
//
// All helpers call t.Fatalf on failure rather than returning errors,
// since test setup failures are not recoverable.
//
// This package has no internal dependencies.
package testutil
