// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/bureau-foundation/uartbridge/lib/codec"
	"github.com/bureau-foundation/uartbridge/lib/trace"
)

func traceCommand() *command {
	return &command{
		name:        "trace",
		summary:     "Inspect recorded UART traffic",
		subcommands: []*command{traceDumpCommand(os.Stdout), traceDigestCommand(os.Stdout)},
	}
}

func traceDumpCommand(output io.Writer) *command {
	var diagnose bool
	var direction string

	return &command{
		name:    "dump",
		summary: "Print the events in a trace file",
		description: `Print one line per recorded byte: sequence number, direction, hex
value, and the character when printable. Compressed traces (zstd, lz4)
are detected automatically.

With --diagnose each event is printed in CBOR diagnostic notation
instead, which is what the file actually contains.`,
		usage: "uartbridge trace dump [flags] <file>",
		flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("dump", pflag.ContinueOnError)
			flagSet.BoolVar(&diagnose, "diagnose", false, "print events in CBOR diagnostic notation")
			flagSet.StringVar(&direction, "direction", "", "only print \"in\" or \"out\" events")
			return flagSet
		},
		run: func(_ context.Context, args []string) error {
			if len(args) != 1 {
				return usageError("exactly one trace file required")
			}
			if direction != "" && direction != "in" && direction != "out" {
				return usageError("--direction must be \"in\" or \"out\"")
			}
			return dumpTrace(output, args[0], direction, diagnose)
		},
	}
}

func dumpTrace(output io.Writer, path, direction string, diagnose bool) error {
	reader, err := trace.Open(path)
	if err != nil {
		return err
	}
	defer reader.Close()

	colored := isTerminal(output)
	for {
		event, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		if direction != "" && event.Direction.String() != direction {
			continue
		}

		if diagnose {
			data, err := codec.Marshal(event)
			if err != nil {
				return err
			}
			notation, err := codec.Diagnose(data)
			if err != nil {
				return err
			}
			fmt.Fprintln(output, notation)
			continue
		}
		label := fmt.Sprintf("%-3s", event.Direction)
		if colored {
			label = directionStyles[event.Direction].Render(label)
		}
		fmt.Fprintf(output, "%8d %s 0x%02x %s\n",
			event.Sequence, label, event.Value, printable(event.Value))
	}
}

var directionStyles = map[trace.Direction]lipgloss.Style{
	trace.Input:  lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
	trace.Output: lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true),
}

func isTerminal(output io.Writer) bool {
	file, ok := output.(*os.File)
	return ok && term.IsTerminal(int(file.Fd()))
}

func traceDigestCommand(output io.Writer) *command {
	var direction string

	return &command{
		name:    "digest",
		summary: "Print BLAKE3 digests of the traffic in a trace file",
		description: `Hash each direction's byte stream separately. Timing and interleaving
are ignored, so the output digest of a firmware run can be compared
against a golden value even when the host fed input on different
cycles.`,
		usage: "uartbridge trace digest [flags] <file>",
		flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("digest", pflag.ContinueOnError)
			flagSet.StringVar(&direction, "direction", "", "only print the \"in\" or \"out\" digest")
			return flagSet
		},
		run: func(_ context.Context, args []string) error {
			if len(args) != 1 {
				return usageError("exactly one trace file required")
			}
			reader, err := trace.Open(args[0])
			if err != nil {
				return err
			}
			defer reader.Close()
			digest, err := trace.Summarize(reader)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			switch direction {
			case "":
				fmt.Fprintf(output, "in  %s %d\n", digest.Input, digest.InputCount)
				fmt.Fprintf(output, "out %s %d\n", digest.Output, digest.OutputCount)
			case "in":
				fmt.Fprintln(output, digest.Input)
			case "out":
				fmt.Fprintln(output, digest.Output)
			default:
				return usageError("--direction must be \"in\" or \"out\"")
			}
			return nil
		},
	}
}

// printable renders a byte for the dump: the character itself when
// printable ASCII, otherwise its Go escape.
func printable(value byte) string {
	if value >= 0x20 && value < 0x7f {
		return string(rune(value))
	}
	quoted := strconv.QuoteToASCII(string([]byte{value}))
	return quoted[1 : len(quoted)-1]
}
