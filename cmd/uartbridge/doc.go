// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// uartbridge drives the UART terminal bridge from a host clock, without
// a hardware simulator attached. It is the quickest way to check how a
// terminal behaves under the bridge (cbreak vs raw, echo, Ctrl-C) and
// to record traffic for regression runs:
//
//	uartbridge run --loopback                 # type and see bytes echoed once
//	uartbridge run --mode raw --trace s.trace.zst
//	uartbridge trace dump s.trace.zst
//
// Logs go to stderr; stdout carries only bytes delivered by the
// (stand-in) UART.
package main
