// Copyright 2026 The JALAI Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"

	"github.com/jalai-group/jalai/api"
	"github.com/jalai-group/jalai/cmd/jalai/cli"
	"github.com/jalai-group/jalai/view"
)

type dashboardParams struct {
	Globals
	cli.JSONOutput
}

// dashboardResult is the --json form of a dashboard.
type dashboardResult struct {
	State    string    `json:"state"`
	Reason   string    `json:"reason,omitempty"`
	Redirect string    `json:"redirect,omitempty"`
	User     *api.User `json:"user,omitempty"`
	Data     any       `json:"data,omitempty"`
}

func newDashboardResult(decision view.Decision, data any) dashboardResult {
	result := dashboardResult{
		State:    decision.State.String(),
		Reason:   decision.Reason,
		Redirect: decision.Redirect,
		Data:     data,
	}
	if decision.User.ID != "" {
		user := decision.User
		result.User = &user
	}
	return result
}

func dashboardCommand(streams Streams) *cli.Command {
	var params dashboardParams
	return &cli.Command{
		Name:    "dashboard",
		Summary: "Show the dashboard for the signed-in role",
		Description: `Show the administrator, client or orphanage dashboard, chosen by the
role of the signed-in user.

Administrators see platform statistics, orphanages awaiting approval
and recent donations. Clients see their donations, orders and
notifications. Orphanages see incoming donations and the cash total;
an orphanage that has not been approved yet sees a pending-approval
notice instead.`,
		Flags: flags("dashboard", &params),
		Run: withApp(streams, &params.Globals, func(ctx context.Context, app *App, args []string) error {
			if err := exactArgs(args); err != nil {
				return err
			}
			params.Output = streams.Out
			renderer := app.Renderer()

			user, ok := app.Session.User()
			if !ok {
				decision, err := app.gate(view.ClientGate)
				if done, jsonErr := params.EmitJSON(newDashboardResult(decision, nil)); done {
					if jsonErr != nil {
						return jsonErr
					}
				} else {
					app.Println(renderer.Decision(decision))
				}
				return &cli.ExitError{Code: cli.ExitCode(err)}
			}

			var (
				decision view.Decision
				data     any
				text     string
			)
			switch user.UserType {
			case api.RoleAdmin:
				loaded, err := (&view.AdminDashboard{Session: app.Session, API: app.Client}).Load(ctx)
				if err != nil {
					return err
				}
				decision, text = loaded.Decision, renderer.Admin(loaded)
				if loaded.Data != nil {
					data = loaded.Data
				}
			case api.RoleClient:
				loaded, err := (&view.ClientDashboard{Session: app.Session, API: app.Client}).Load(ctx)
				if err != nil {
					return err
				}
				decision, text = loaded.Decision, renderer.Client(loaded)
				if loaded.Data != nil {
					data = loaded.Data
				}
			case api.RoleOrphanage:
				loaded, err := (&view.OrphanageDashboard{Session: app.Session, API: app.Client}).Load(ctx)
				if err != nil {
					return err
				}
				decision, text = loaded.Decision, renderer.Orphanage(loaded)
				if loaded.Data != nil {
					data = loaded.Data
				}
			default:
				return cli.Forbidden("no dashboard for role %q", user.UserType)
			}

			if done, err := params.EmitJSON(newDashboardResult(decision, data)); done {
				return err
			}
			app.Println(text)
			return nil
		}),
	}
}
