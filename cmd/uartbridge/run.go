// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/uartbridge/lib/clock"
	"github.com/bureau-foundation/uartbridge/lib/config"
	"github.com/bureau-foundation/uartbridge/lib/logging"
	"github.com/bureau-foundation/uartbridge/lib/session"
)

// runFlags holds the run command's flag values. Flags that were set on
// the command line override the configuration file.
type runFlags struct {
	configPath string
	mode       string
	tick       time.Duration
	tracePath  string
	loopback   bool
	escape     int
	verbose    bool
}

func runCommand() *command {
	var flags runFlags
	var flagSet *pflag.FlagSet

	return &command{
		name:    "run",
		summary: "Drive the bridge from a host clock",
		description: `Start the UART bridge on this process's stdin and stdout and poll it
once per tick, the way a simulated UART does once per clock edge.

With --loopback every received byte is sent straight back, which makes
the terminal behave like a board whose firmware echoes. Without it the
run only consumes input (use --trace to record it).

The run ends on SIGINT, SIGTERM, or the escape byte (Ctrl-] by
default). The terminal is restored on every exit path.`,
		usage: "uartbridge run [flags]",
		flags: func() *pflag.FlagSet {
			flagSet = pflag.NewFlagSet("run", pflag.ContinueOnError)
			flagSet.StringVar(&flags.configPath, "config", "", "config file (default: $"+config.EnvironmentVariable+" if set)")
			flagSet.StringVar(&flags.mode, "mode", "cbreak", "terminal mode: cbreak, raw, or none")
			flagSet.DurationVar(&flags.tick, "tick", time.Millisecond, "simulated clock period")
			flagSet.StringVar(&flags.tracePath, "trace", "", "record traffic to this file (.zst or .lz4 to compress)")
			flagSet.BoolVar(&flags.loopback, "loopback", false, "echo received bytes back to the output")
			flagSet.IntVar(&flags.escape, "escape", 0x1d, "byte value that ends the run (-1 to disable)")
			flagSet.BoolVarP(&flags.verbose, "verbose", "v", false, "log every byte at debug level")
			return flagSet
		},
		run: func(ctx context.Context, args []string) error {
			if len(args) > 0 {
				return usageError("unexpected argument: %s", args[0])
			}
			cfg, err := loadRunConfig(flags, flagSet)
			if err != nil {
				return err
			}
			return runBridge(ctx, cfg)
		},
	}
}

// loadRunConfig loads the configuration file (if any) and applies the
// flags the user set explicitly.
func loadRunConfig(flags runFlags, flagSet *pflag.FlagSet) (*config.Config, error) {
	var cfg *config.Config
	var err error
	switch {
	case flags.configPath != "":
		cfg, err = config.LoadFile(flags.configPath)
	case os.Getenv(config.EnvironmentVariable) != "":
		cfg, err = config.Load()
	default:
		cfg = config.Default()
	}
	if err != nil {
		return nil, err
	}

	if flagSet.Changed("mode") {
		cfg.TerminalMode = flags.mode
	}
	if flagSet.Changed("tick") {
		cfg.Driver.Tick = flags.tick.String()
	}
	if flagSet.Changed("trace") {
		cfg.Trace.Path = flags.tracePath
	}
	if flagSet.Changed("loopback") {
		cfg.Driver.Loopback = flags.loopback
	}
	if flagSet.Changed("escape") {
		cfg.Driver.EscapeByte = flags.escape
	}
	if flags.verbose {
		cfg.Log.Level = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return nil, usageError("%v", err)
	}
	return cfg, nil
}

func runBridge(ctx context.Context, cfg *config.Config) error {
	level, err := cfg.LogLevel()
	if err != nil {
		return err
	}
	logger, err := logging.New(level, cfg.Log.Format)
	if err != nil {
		return err
	}
	tick, err := cfg.TickDuration()
	if err != nil {
		return err
	}

	s, err := session.Open(cfg, session.Options{}, logger)
	if s == nil {
		return err
	}
	if err != nil {
		logger.Warn("continuing without full input configuration", "error", err)
	}
	defer s.Close()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer stop()

	d := &driver{
		bridge:   s.Bridge,
		clock:    clock.Real(),
		tick:     tick,
		loopback: cfg.Driver.Loopback,
		escape:   cfg.Driver.EscapeByte,
		logger:   logger,
	}
	if d.bridge.Interactive() && d.escape >= 0 {
		logger.Info("interactive session", "escape_byte", d.escape, "mode", d.bridge.Mode)
	}

	stats := d.run(ctx)
	logger.Info("uart bridge run finished",
		"ticks", stats.Ticks,
		"received", stats.Received,
		"delivered", stats.Delivered,
		"read_faults", stats.ReadFaults,
		"write_faults", stats.WriteFaults,
	)
	if stats.WriteFaults > 0 {
		return &exitError{code: 2}
	}
	return nil
}
