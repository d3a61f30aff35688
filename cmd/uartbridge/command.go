// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/pflag"
)

// command is a CLI command or subcommand.
type command struct {
	// name is the command name as typed by the user.
	name string

	// summary is a one-line description shown in the parent's help.
	summary string

	// description is the detailed help text.
	description string

	// usage is the usage line. If empty, it is synthesized.
	usage string

	// flags returns a configured *pflag.FlagSet. If nil, the command
	// accepts no flags.
	flags func() *pflag.FlagSet

	// subcommands are dispatched by the first positional argument.
	subcommands []*command

	// run executes the command with the arguments left after flag
	// parsing.
	run func(ctx context.Context, args []string) error

	// parent is set during dispatch to build the command path for help.
	parent *command
}

// execute parses args and dispatches to a subcommand or run. Help goes
// to helpOutput.
func (c *command) execute(ctx context.Context, args []string, helpOutput io.Writer) error {
	if len(args) > 0 && isHelpFlag(args[0]) {
		c.printHelp(helpOutput)
		return nil
	}

	if len(c.subcommands) > 0 && len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		for _, sub := range c.subcommands {
			if sub.name == args[0] {
				sub.parent = c
				return sub.execute(ctx, args[1:], helpOutput)
			}
		}
		return fmt.Errorf("unknown command %q\n\nRun '%s --help' for usage.", args[0], c.fullName())
	}

	if len(c.subcommands) > 0 && c.run == nil {
		c.printHelp(helpOutput)
		return fmt.Errorf("subcommand required")
	}

	if c.flags != nil {
		flagSet := c.flags()
		flagSet.SetOutput(io.Discard)
		if err := flagSet.Parse(args); err != nil {
			return fmt.Errorf("%s\n\nRun '%s --help' for usage.", err, c.fullName())
		}
		args = flagSet.Args()
	}

	if c.run == nil {
		c.printHelp(helpOutput)
		return fmt.Errorf("no action defined for %q", c.fullName())
	}
	return c.run(ctx, args)
}

// printHelp writes structured help output to w.
func (c *command) printHelp(w io.Writer) {
	name := c.fullName()

	if c.description != "" {
		fmt.Fprintf(w, "%s\n\n", c.description)
	} else if c.summary != "" {
		fmt.Fprintf(w, "%s\n\n", c.summary)
	}

	switch {
	case c.usage != "":
		fmt.Fprintf(w, "Usage:\n  %s\n", c.usage)
	case len(c.subcommands) > 0:
		fmt.Fprintf(w, "Usage:\n  %s <command> [flags]\n", name)
	default:
		fmt.Fprintf(w, "Usage:\n  %s [flags]\n", name)
	}

	if len(c.subcommands) > 0 {
		fmt.Fprintf(w, "\nCommands:\n")
		tw := tabwriter.NewWriter(w, 2, 0, 3, ' ', 0)
		for _, sub := range c.subcommands {
			fmt.Fprintf(tw, "  %s\t%s\n", sub.name, sub.summary)
		}
		tw.Flush()
	}

	if c.flags != nil {
		var flagHelp strings.Builder
		flagSet := c.flags()
		flagSet.SetOutput(&flagHelp)
		flagSet.PrintDefaults()
		if flagHelp.Len() > 0 {
			fmt.Fprintf(w, "\nFlags:\n%s", flagHelp.String())
		}
	}
}

// fullName returns the complete command path (e.g., "uartbridge trace dump").
func (c *command) fullName() string {
	if c.parent == nil {
		return c.name
	}
	return c.parent.fullName() + " " + c.name
}

func isHelpFlag(arg string) bool {
	return arg == "-h" || arg == "--help" || arg == "help"
}
