// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bridge

import (
	"errors"
	"fmt"
)

// Kind classifies bridge failures so drivers can decide whether the
// simulation can keep running without inspecting error text.
type Kind string

const (
	// KindConfiguration indicates the input channel could not be put
	// into non-blocking or terminal mode during Start. Output keeps
	// working; input may be disabled.
	KindConfiguration Kind = "configuration"

	// KindRead indicates a non-transient read fault on the input
	// channel. Transient conditions (no data, interrupted call, end of
	// stream) are never reported as errors.
	KindRead Kind = "read"

	// KindWrite indicates the output channel rejected a byte: broken
	// pipe, closed terminal, or a write that could not complete within
	// the write timeout.
	KindWrite Kind = "write"
)

// ErrNoData is returned by a [Source] when no byte is currently
// available. Poll treats it as a normal "nothing yet" result.
var ErrNoData = errors.New("no data available")

// ErrNotStarted is wrapped by Deliver when called before Start.
var ErrNotStarted = errors.New("bridge not started")

// Error is a categorized bridge error. It wraps the underlying cause so
// errors.Is and errors.As see the full chain (for example
// syscall.EPIPE from a closed output pipe).
type Error struct {
	// Kind classifies the failure.
	Kind Kind

	// Op names the bridge operation that failed.
	Op string

	// Err is the underlying cause.
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("uart bridge: %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// IsKind reports whether err is a bridge [Error] of the given kind.
func IsKind(err error, kind Kind) bool {
	var bridgeError *Error
	return errors.As(err, &bridgeError) && bridgeError.Kind == kind
}
