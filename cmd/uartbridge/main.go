// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/bureau-foundation/uartbridge/lib/process"
	"github.com/bureau-foundation/uartbridge/lib/version"
)

func main() {
	if err := rootCommand().execute(context.Background(), os.Args[1:], os.Stderr); err != nil {
		process.Fatal(err)
	}
}

func rootCommand() *command {
	return &command{
		name:    "uartbridge",
		summary: "Bridge a simulated UART to this terminal",
		description: `uartbridge exercises the UART terminal bridge without a hardware
simulator: it polls the bridge on a host clock the way a testbench does
once per clock edge, and inspects recorded traffic.`,
		subcommands: []*command{
			runCommand(),
			traceCommand(),
			versionCommand(),
		},
	}
}

func versionCommand() *command {
	return &command{
		name:    "version",
		summary: "Print version information",
		run: func(context.Context, []string) error {
			fmt.Printf("uartbridge %s\n", version.Full())
			return nil
		},
	}
}

// usageError reports invalid command-line input.
func usageError(format string, args ...any) error {
	return fmt.Errorf(format, args...)
}

// exitError signals a non-zero exit code after the command has already
// reported the problem through the logger.
type exitError struct {
	code int
}

func (e *exitError) Error() string { return fmt.Sprintf("exit code %d", e.code) }

func (e *exitError) ExitCode() int { return e.code }
