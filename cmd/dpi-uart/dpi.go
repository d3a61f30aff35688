// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"

	"github.com/bureau-foundation/uartbridge/lib/config"
	"github.com/bureau-foundation/uartbridge/lib/logging"
	"github.com/bureau-foundation/uartbridge/lib/session"
)

// The simulator's call contract has no handle argument, so the library
// keeps exactly one session per process. Every call arrives on the
// simulator's thread; only the signal goroutine runs concurrently. It
// takes the session out of active before closing it, and both
// Bridge.Stop and the trace writer tolerate a close that races with an
// in-flight call.
var (
	active atomic.Pointer[session.Session]
	logger = slog.Default()

	// Fault streak tracking: log the first failure of a streak only,
	// since the simulator polls every clock cycle.
	readFailing    bool
	writeFailing   bool
	warnedUnopened bool

	// stopSignalHandler undoes closeOnSignal; nil when not installed.
	stopSignalHandler func()

	exitHookRegistered bool
)

// raise re-delivers a signal after the handler has been removed.
var raise = func(number syscall.Signal) {
	syscall.Kill(syscall.Getpid(), number)
}

// openSession is replaced in tests to use in-memory channels.
var openSession = func(cfg *config.Config, logger *slog.Logger) (*session.Session, error) {
	return session.Open(cfg, session.Options{}, logger)
}

// initialize implements uart_init.
func initialize() {
	if active.Load() != nil {
		logger.Warn("uart_init called more than once; ignoring")
		return
	}

	cfg := loadConfig()
	level, err := cfg.LogLevel()
	if err == nil {
		if configured, err := logging.New(level, cfg.Log.Format); err == nil {
			logger = configured
		}
	}

	s, err := openSession(cfg, logger)
	if s == nil && cfg.Trace.Path != "" {
		logger.Error("uart trace unavailable, continuing without it", "path", cfg.Trace.Path, "error", err)
		cfg.Trace.Path = ""
		s, err = openSession(cfg, logger)
	}
	if s == nil {
		logger.Error("uart bridge unavailable; input disabled and output dropped", "error", err)
		return
	}
	if err != nil {
		logger.Warn("uart bridge input not fully configured", "error", err)
	}

	readFailing, writeFailing, warnedUnopened = false, false, false
	active.Store(s)

	if !exitHookRegistered {
		registerExitHook()
		exitHookRegistered = true
	}
	if s.Bridge.Interactive() || s.Trace != nil {
		stopSignalHandler = closeOnSignal()
	}
}

// loadConfig reads DPI_UART_CONFIG if set. A broken file is logged and
// replaced by defaults: the simulation must still start.
func loadConfig() *config.Config {
	if os.Getenv(config.EnvironmentVariable) == "" {
		return config.Default()
	}
	cfg, err := config.Load()
	if err != nil {
		logger.Error("uart config unusable, using defaults", "error", err)
		return config.Default()
	}
	return cfg
}

// pollInput implements uart_tx_is_data_available.
func pollInput() bool {
	s := active.Load()
	if s == nil {
		return false
	}
	available, err := s.Bridge.Poll()
	if err != nil {
		if !readFailing {
			logger.Warn("uart input fault", "error", err)
		}
		readFailing = true
		return false
	}
	readFailing = false
	return available
}

// stagedInput implements uart_tx_get_data.
func stagedInput() byte {
	s := active.Load()
	if s == nil {
		return 0
	}
	return s.Bridge.Staged()
}

// deliverOutput implements uart_rx_new_data.
func deliverOutput(value byte) {
	s := active.Load()
	if s == nil {
		if !warnedUnopened {
			logger.Warn("uart_rx_new_data called without an open bridge; dropping output")
			warnedUnopened = true
		}
		return
	}
	if err := s.Bridge.Deliver(value); err != nil {
		if !writeFailing {
			logger.Warn("uart output fault", "error", err)
		}
		writeFailing = true
		return
	}
	writeFailing = false
}

// shutdown implements uart_close. It also runs from the exit hook.
func shutdown() {
	if stopSignalHandler != nil {
		stopSignalHandler()
		stopSignalHandler = nil
	}
	s := active.Swap(nil)
	if s == nil {
		return
	}
	if err := s.Close(); err != nil {
		logger.Warn("uart bridge close failed", "error", err)
	}
}

// closeOnSignal closes the active session (restoring the terminal and
// finishing the trace) when the simulator is interrupted, then hands
// the signal back to its default disposition. The returned function
// uninstalls the handler.
func closeOnSignal() func() {
	signals := make(chan os.Signal, 1)
	done := make(chan struct{})
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	go func() {
		select {
		case <-done:
			return
		case received := <-signals:
			if s := active.Swap(nil); s != nil {
				if err := s.Close(); err != nil {
					logger.Warn("uart bridge close on signal failed", "signal", received, "error", err)
				}
			}
			signal.Reset(syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
			if number, ok := received.(syscall.Signal); ok {
				raise(number)
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			signal.Stop(signals)
			close(done)
		})
	}
}
