// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/bureau-foundation/uartbridge/bridge"
	"github.com/bureau-foundation/uartbridge/lib/clock"
)

// driver stands in for the hardware simulation: on every tick it makes
// one Poll call, exactly as a testbench calls into the bridge once per
// simulated clock edge.
type driver struct {
	bridge *bridge.Bridge
	clock  clock.Clock
	tick   time.Duration

	// loopback echoes each staged byte back through Deliver.
	loopback bool

	// escape ends the run when received; -1 disables it.
	escape int

	logger *slog.Logger
}

// driverStats summarizes a run.
type driverStats struct {
	Ticks       uint64
	Received    uint64
	Delivered   uint64
	ReadFaults  uint64
	WriteFaults uint64
}

// run polls until ctx is cancelled or the escape byte arrives. Bridge
// faults are counted and logged on the first occurrence of each streak,
// never returned: the simulated hardware keeps running when the
// terminal misbehaves.
func (d *driver) run(ctx context.Context) driverStats {
	ticker := d.clock.NewTicker(d.tick)
	defer ticker.Stop()

	var stats driverStats
	readFailing, writeFailing := false, false
	for {
		select {
		case <-ctx.Done():
			return stats
		case <-ticker.C:
		}
		stats.Ticks++

		available, err := d.bridge.Poll()
		if err != nil {
			stats.ReadFaults++
			if !readFailing {
				d.logger.Warn("uart input fault", "tick", stats.Ticks, "error", err)
			}
			readFailing = true
			continue
		}
		readFailing = false
		if !available {
			continue
		}

		value := d.bridge.Staged()
		stats.Received++
		d.logger.Debug("uart byte received", "tick", stats.Ticks, "value", value)
		if d.escape >= 0 && int(value) == d.escape {
			d.logger.Info("escape byte received, stopping", "tick", stats.Ticks)
			return stats
		}
		if !d.loopback {
			continue
		}

		if err := d.bridge.Deliver(value); err != nil {
			stats.WriteFaults++
			if !writeFailing {
				d.logger.Warn("uart output fault", "tick", stats.Ticks, "error", err)
			}
			writeFailing = true
			continue
		}
		writeFailing = false
		stats.Delivered++
	}
}
