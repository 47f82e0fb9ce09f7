// Copyright 2026 The JALAI Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the jalai CLI command tree. Every command
// opens an [App] (configuration, persisted session, API client and
// response cache), runs, and maps failures to categorized exit codes
// through [Classify].
package commands

import (
	"context"
	"log/slog"

	"github.com/spf13/pflag"

	"github.com/jalai-group/jalai/cmd/jalai/cli"
)

// Root builds the command tree over the process streams.
func Root() *cli.Command {
	return NewRoot(StandardStreams())
}

// NewRoot builds the command tree over streams.
func NewRoot(streams Streams) *cli.Command {
	return &cli.Command{
		Name: "jalai",
		Description: `jalai: client for the JALAI secondhand marketplace and donation platform.

Sign in as a client, orphanage or administrator, browse the public
catalog, submit donations, and manage donations from your dashboard.`,
		HelpOutput: streams.Err,
		Subcommands: []*cli.Command{
			loginCommand(streams),
			registerCommand(streams),
			logoutCommand(streams),
			whoamiCommand(streams),
			dashboardCommand(streams),
			donateCommand(streams),
			donationCommand(streams),
			orphanageCommand(streams),
			productCommand(streams),
			orderCommand(streams),
			reviewCommand(streams),
			paymentCommand(streams),
			notificationCommand(streams),
			adminCommand(streams),
			uploadCommand(streams),
			debugCommand(streams),
			versionCommand(streams),
		},
	}
}

// runFunc is a command body that needs an opened App.
type runFunc func(ctx context.Context, app *App, args []string) error

// withApp opens an App from globals for the duration of run and
// classifies the error it returns.
func withApp(streams Streams, globals *Globals, run runFunc) func(context.Context, []string, *slog.Logger) error {
	return func(ctx context.Context, args []string, logger *slog.Logger) error {
		app, err := Open(*globals, streams, logger)
		if err != nil {
			return err
		}
		defer app.Close()
		return Classify(run(ctx, app, args))
	}
}

// flags returns a Flags func bound to params.
func flags(name string, params any) func() *pflag.FlagSet {
	return func() *pflag.FlagSet { return cli.FlagsFromParams(name, params) }
}

// exactArgs checks the positional argument count.
func exactArgs(args []string, names ...string) error {
	if len(args) == len(names) {
		return nil
	}
	if len(args) < len(names) {
		return cli.Validation("missing argument <%s>", names[len(args)])
	}
	return cli.Validation("unexpected argument %q", args[len(names)])
}
