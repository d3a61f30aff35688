// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package bridge connects a simulated UART peripheral to the host's
// terminal or to a redirected stream.
//
// A [Bridge] owns exactly one input channel and one output channel. On
// [Bridge.Start] the input descriptor is switched to non-blocking mode
// and, when it is an interactive terminal, its line discipline is
// reconfigured so keystrokes arrive one byte at a time without echo.
// The hardware model then drives three calls, once per simulated clock
// tick or at whatever cadence it polls:
//
//   - [Bridge.Poll] attempts to read one byte into the staging buffer
//     and reports whether it did. It never blocks.
//   - [Bridge.Staged] returns the staged byte. It is valid only after a
//     Poll that returned true.
//   - [Bridge.Deliver] writes one byte produced by the hardware model to
//     the output channel and flushes it before returning.
//
// The input path is a two-state machine:
//
//	Empty --Poll ok--> Staged --Staged()--> Empty
//
// The output path is stateless.
//
// [Bridge.Stop] restores the terminal settings and the descriptor's
// blocking flag. Drivers pair it with Start via defer and from signal
// handlers, so an interactive shell is never left in cbreak or raw mode.
//
// Tests and embedders can substitute in-memory channels through the
// Source and Sink fields: any [io.ByteReader] works as a source
// ([io.EOF] and [ErrNoData] both mean "nothing yet") and any
// [io.ByteWriter] works as a sink (if it also has a Flush method, it is
// flushed after every byte).
//
// Bridge values are independent. The package holds no global state;
// process-wide singletons belong to the binary that exports the
// simulator call contract (see cmd/dpi-uart).
package bridge
