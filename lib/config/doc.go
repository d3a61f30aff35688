// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration loading for the UART bridge
// binaries.
//
// Configuration is loaded from a single file specified by either the
// DPI_UART_CONFIG environment variable (via [Load]) or a --config flag
// (via [LoadFile]). There are no fallbacks and no automatic file
// search. The DPI library, whose initialization entry point takes no
// arguments, uses [Default] when DPI_UART_CONFIG is unset.
//
// Files ending in .json or .jsonc are read as JSON with comments and
// trailing commas; everything else is YAML. Unknown keys are errors, so
// a misspelled option fails loudly instead of being ignored.
//
// The input and output keys are a reserved hook for file-backed
// streams. Today only the process's standard streams are accepted;
// [Config.Validate] rejects anything else.
//
// ${HOME} and ${VAR:-default} patterns are expanded in trace.path.
//
// This package depends on no other packages in this module.
package config
