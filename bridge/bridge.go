// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bridge

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"
)

// DefaultWriteTimeout bounds how long Deliver waits for a full terminal
// output queue to drain.
const DefaultWriteTimeout = time.Second

// State is the input path's staging state.
type State int

const (
	// StateEmpty means no byte is staged; Staged returns a stale value.
	StateEmpty State = iota

	// StateStaged means the last Poll staged a byte that has not been
	// consumed yet.
	StateStaged
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateStaged:
		return "staged"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Recorder observes every byte that crosses the bridge. Implementations
// must not block; see lib/trace.
type Recorder interface {
	RecordInput(value byte)
	RecordOutput(value byte)
}

// Bridge joins a simulated UART to one host input channel and one host
// output channel. Configure the exported fields, call Start once, and
// pair it with Stop.
//
// Poll, Staged, and Deliver are meant to be called from the single
// goroutine that drives the simulation clock. Stop may be called from
// any goroutine.
type Bridge struct {
	// Input is the input stream. If nil, os.Stdin is used. Ignored when
	// Source is set.
	Input *os.File

	// Output is the output stream. If nil, os.Stdout is used. Ignored
	// when Sink is set.
	Output *os.File

	// Source replaces Input with an in-memory or custom channel. No
	// terminal configuration is performed for it.
	Source Source

	// Sink replaces Output with an in-memory or custom channel.
	Sink Sink

	// Mode selects the terminal reconfiguration for interactive input.
	Mode Mode

	// WriteTimeout bounds how long Deliver waits on a full terminal.
	// Zero means DefaultWriteTimeout.
	WriteTimeout time.Duration

	// Recorder, if set, is told about every staged and delivered byte.
	Recorder Recorder

	// Logger receives structured log output. If nil, slog.Default() is
	// used. Lifecycle events are logged at Info; nothing is logged per
	// byte.
	Logger *slog.Logger

	source   Source
	sink     Sink
	terminal *terminalState
	started  bool

	staged byte
	state  State

	stopOnce sync.Once
	stopErr  error
}

// logger returns the configured logger or the default.
func (b *Bridge) logger() *slog.Logger {
	if b.Logger != nil {
		return b.Logger
	}
	return slog.Default()
}

// Start binds the channels and configures the input for non-blocking
// reads, switching an interactive terminal into the configured mode.
//
// A returned error has Kind KindConfiguration. The bridge stays usable
// after a configuration error: Deliver always works, and Poll either
// works (if only the terminal mode failed) or reports no data forever
// (if the descriptor could not be made non-blocking). Poll never
// blocks in either case.
func (b *Bridge) Start() error {
	if b.started {
		return &Error{Kind: KindConfiguration, Op: "start", Err: errors.New("already started")}
	}
	b.started = true

	b.sink = b.Sink
	if b.sink == nil {
		output := b.Output
		if output == nil {
			output = os.Stdout
		}
		b.sink = newFileSink(output, b.writeTimeout())
	}

	if b.Source != nil {
		b.source = b.Source
		b.logger().Info("uart bridge started", "input", "custom", "mode", b.Mode)
		return nil
	}

	input := b.Input
	if input == nil {
		input = os.Stdin
	}
	// Fd puts a pollable *os.File back into blocking mode, so it has to
	// be read before the descriptor is switched to non-blocking.
	fd := int(input.Fd())
	terminal, err := acquireTerminal(fd, b.Mode)
	b.terminal = terminal
	if terminal != nil {
		b.source = newFileSource(input, fd)
	}
	if err != nil {
		b.logger().Warn("uart bridge input configuration failed",
			"input", input.Name(),
			"input_enabled", b.source != nil,
			"error", err,
		)
		return &Error{Kind: KindConfiguration, Op: "configure input", Err: err}
	}

	b.logger().Info("uart bridge started",
		"input", input.Name(),
		"interactive", terminal.interactive(),
		"mode", b.Mode,
	)
	return nil
}

func (b *Bridge) writeTimeout() time.Duration {
	if b.WriteTimeout > 0 {
		return b.WriteTimeout
	}
	return DefaultWriteTimeout
}

// Poll makes one non-blocking attempt to read a byte into the staging
// buffer and reports whether one was staged. "No data", an interrupted
// read, and end of input all return (false, nil). A non-transient read
// fault returns (false, *Error) with Kind KindRead; the caller may keep
// polling.
func (b *Bridge) Poll() (bool, error) {
	if b.source == nil {
		return false, nil
	}
	value, err := b.source.ReadByte()
	if err != nil {
		if errors.Is(err, ErrNoData) || errors.Is(err, io.EOF) {
			return false, nil
		}
		return false, &Error{Kind: KindRead, Op: "poll", Err: err}
	}
	b.staged = value
	b.state = StateStaged
	if b.Recorder != nil {
		b.Recorder.RecordInput(value)
	}
	return true, nil
}

// Staged returns the byte staged by the last successful Poll and marks
// it consumed. The content is not changed: calling Staged again, or
// without a preceding successful Poll, returns the same stale byte.
func (b *Bridge) Staged() byte {
	b.state = StateEmpty
	return b.staged
}

// State reports whether a byte is staged and not yet consumed.
func (b *Bridge) State() State {
	return b.state
}

// Interactive reports whether Start reconfigured a terminal.
func (b *Bridge) Interactive() bool {
	return b.terminal != nil && b.terminal.interactive()
}

// Deliver writes one byte to the output channel and flushes it. Write
// failures are returned with Kind KindWrite and never terminate the
// process.
func (b *Bridge) Deliver(c byte) error {
	if b.sink == nil {
		return &Error{Kind: KindWrite, Op: "deliver", Err: ErrNotStarted}
	}
	if err := b.sink.WriteByte(c); err != nil {
		return &Error{Kind: KindWrite, Op: "deliver", Err: err}
	}
	if buffered, ok := b.sink.(flusher); ok {
		if err := buffered.Flush(); err != nil {
			return &Error{Kind: KindWrite, Op: "flush", Err: err}
		}
	}
	if b.Recorder != nil {
		b.Recorder.RecordOutput(c)
	}
	return nil
}

// Stop restores the input terminal's settings and blocking flag. It is
// safe to call more than once and from a different goroutine than the
// one polling; only the first call does any work. The bridge's channels
// are not closed.
func (b *Bridge) Stop() error {
	b.stopOnce.Do(func() {
		if b.terminal == nil {
			return
		}
		b.stopErr = b.terminal.restore()
		if b.stopErr != nil {
			b.logger().Warn("uart bridge terminal restore failed", "error", b.stopErr)
			return
		}
		b.logger().Info("uart bridge stopped", "interactive", b.terminal.interactive())
	})
	return b.stopErr
}
