// Copyright 2026 The JALAI Authors
// SPDX-License-Identifier: Apache-2.0

// Jalai is the command-line client for the JALAI marketplace and
// donation platform. Run "jalai --help" for the command list.
package main

import (
	"context"
	"os"
	"os/signal"
	"slices"
	"syscall"

	"github.com/jalai-group/jalai/cmd/jalai/cli"
	"github.com/jalai-group/jalai/cmd/jalai/commands"
	"github.com/jalai-group/jalai/lib/process"
)

func main() {
	if err := run(); err != nil {
		// Commands that already printed their own output (a denied
		// dashboard, an aborted wizard) exit without an error line.
		if cli.Silent(err) {
			os.Exit(cli.ExitCode(err))
		}
		process.Fatal(err)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	args := os.Args[1:]
	// The logger exists before flag parsing, so --verbose is detected
	// here; the commands also declare it so it parses cleanly.
	verbose := slices.Contains(args, "-v") || slices.Contains(args, "--verbose")
	return commands.Root().Execute(ctx, args, cli.NewCommandLogger(verbose))
}
