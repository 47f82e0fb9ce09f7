// Copyright 2026 The JALAI Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"

	"github.com/jalai-group/jalai/cmd/jalai/cli"
	"github.com/jalai-group/jalai/lib/tui"
	"github.com/jalai-group/jalai/lib/version"
	"github.com/jalai-group/jalai/session"
)

func debugCommand(streams Streams) *cli.Command {
	return &cli.Command{
		Name:    "debug",
		Summary: "Inspect client diagnostics",
		Subcommands: []*cli.Command{
			debugLogCommand(streams),
		},
	}
}

type debugLogParams struct {
	Globals
	cli.JSONOutput
	Clear bool `flag:"clear" desc:"discard the retained entries"`
}

func debugLogCommand(streams Streams) *cli.Command {
	var params debugLogParams
	return &cli.Command{
		Name:    "log",
		Summary: "Show recent authentication events",
		Description: fmt.Sprintf(`Show the last %d authentication events (logins, token refreshes,
session expiry, logouts). The log lives under paths.runtime and does
not survive a reboot.`, session.DebugLogCapacity),
		Usage: "jalai debug log [--clear] [--json]",
		Flags: flags("log", &params),
		Run: withApp(streams, &params.Globals, func(_ context.Context, app *App, args []string) error {
			if err := exactArgs(args); err != nil {
				return err
			}
			if params.Clear {
				if err := app.DebugLog.Clear(); err != nil {
					return cli.Internal("clearing auth log: %w", err)
				}
				app.Println("Auth log cleared.")
				return nil
			}
			entries, err := app.DebugLog.Entries()
			if err != nil {
				return cli.Internal("%w", err)
			}
			params.Output = streams.Out
			if done, err := params.EmitJSON(entries); done {
				return err
			}
			if len(entries) == 0 {
				app.Println("No auth events recorded.")
				return nil
			}
			theme := tui.DefaultTheme
			for _, entry := range entries {
				level := entry.Level
				if level == slog.LevelWarn.String() || level == slog.LevelError.String() {
					level = theme.Error(level)
				}
				line := fmt.Sprintf("%s  %-5s  %s", entry.Time.Local().Format("15:04:05"), level, entry.Message)
				if len(entry.Data) > 0 {
					line += "  " + theme.Faint(formatData(entry.Data))
				}
				app.Println(line)
			}
			return nil
		}),
	}
}

func formatData(data map[string]any) string {
	parts := make([]string, 0, len(data))
	for _, key := range slices.Sorted(maps.Keys(data)) {
		parts = append(parts, fmt.Sprintf("%s=%v", key, data[key]))
	}
	return strings.Join(parts, " ")
}

type versionParams struct {
	cli.JSONOutput
}

func versionCommand(streams Streams) *cli.Command {
	var params versionParams
	return &cli.Command{
		Name:    "version",
		Summary: "Print version information",
		Flags:   flags("version", &params),
		Run: func(_ context.Context, args []string, _ *slog.Logger) error {
			if err := exactArgs(args); err != nil {
				return err
			}
			params.Output = streams.Out
			if done, err := params.EmitJSON(version.Current()); done {
				return err
			}
			fmt.Fprintf(streams.Out, "jalai %s\n", version.Full())
			return nil
		},
	}
}
