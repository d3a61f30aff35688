// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time source for the host
// driver's tick loop.
//
// Production code takes a [Clock] instead of calling time.NewTicker
// directly; [Real] wraps the time package. Tests use [Fake], whose
// tickers fire only when [FakeClock.Advance] moves time forward, so a
// test can step the simulated UART one tick at a time.
//
//	c := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	go driver.Run(ctx, c)
//	c.WaitForTickers(1) // wait for the loop to create its ticker
//	c.Advance(time.Millisecond)
package clock
