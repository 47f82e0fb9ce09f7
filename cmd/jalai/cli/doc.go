// Copyright 2026 The JALAI Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli provides the command-line framework for the jalai CLI.
//
// The central type is [Command], which represents a named subcommand with
// optional nested [Command.Subcommands], a [pflag.FlagSet] factory, and a
// Run function. Commands are assembled into a tree in cmd/jalai/commands
// and dispatched via [Command.Execute], which handles flag parsing,
// subcommand routing, and structured help output with examples.
//
// Flags are declared as tagged struct fields and bound with
// [FlagsFromParams]; a field may also name an environment variable
// that supplies its default.
//
// Errors returned by commands carry an [ErrorCategory] through
// [ToolError]. [ExitCode] maps the category to the process exit status
// so scripts can tell bad input from an unreachable backend.
//
// When a user types an unknown subcommand or flag, the framework
// suggests the closest known name by edit distance.
package cli
