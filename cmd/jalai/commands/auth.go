// Copyright 2026 The JALAI Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"errors"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/jalai-group/jalai/api"
	"github.com/jalai-group/jalai/cmd/jalai/cli"
	"github.com/jalai-group/jalai/form"
	"github.com/jalai-group/jalai/lib/tui"
	"github.com/jalai-group/jalai/lib/wizardui"
)

type loginParams struct {
	Globals
	cli.JSONOutput
	PasswordFile string `flag:"password-file" desc:"read the password from a file instead of prompting (\"-\" prompts)"`
}

func loginCommand(streams Streams) *cli.Command {
	var params loginParams
	return &cli.Command{
		Name:    "login",
		Summary: "Sign in and persist the session",
		Description: `Sign in with an email address and password. The session (tokens and
user record) is stored under paths.state, sealed with an age identity
unless session.seal is false. Expired access tokens are refreshed
automatically on the next request.`,
		Usage: "jalai login [<email>] [--password-file <path>]",
		Examples: []cli.Example{
			{Description: "Sign in interactively", Command: "jalai login client@jalai.org"},
			{Description: "Sign in from a script", Command: "jalai login hope@jalai.org --password-file ~/.jalai-password"},
		},
		Flags: flags("login", &params),
		Run: withApp(streams, &params.Globals, func(ctx context.Context, app *App, args []string) error {
			if len(args) > 1 {
				return cli.Validation("unexpected argument %q", args[1])
			}
			email := ""
			if len(args) == 1 {
				email = args[0]
			} else {
				prompted, err := cli.Prompt(streams.In, streams.Err, "Email: ")
				if err != nil {
					return err
				}
				email = prompted
			}
			if email == "" {
				return cli.Validation("email is required")
			}

			password, err := cli.ReadPassword(params.PasswordFile, "Password: ")
			if err != nil {
				return err
			}
			defer password.Close()

			user, err := app.Session.Login(ctx, email, password.String())
			if err != nil {
				return err
			}
			params.Output = streams.Out
			if done, err := params.EmitJSON(user); done {
				return err
			}
			app.Printf("Logged in as %s <%s> (%s)\n", user.Name, user.Email, user.UserType)
			if user.UserType == api.RoleOrphanage && !user.IsActive {
				app.Println("Your orphanage account is awaiting administrator approval.")
			}
			return nil
		}),
	}
}

type registerParams struct {
	Globals
	cli.JSONOutput
	Draft        string `flag:"draft"         desc:"submit field values from a JSONC file instead of the interactive wizard"`
	PasswordFile string `flag:"password-file" desc:"read the password from a file (overrides the draft)"`
}

func registerCommand(streams Streams) *cli.Command {
	var params registerParams
	return &cli.Command{
		Name:    "register",
		Summary: "Create a client or orphanage account",
		Description: `Create an account with the signup wizard and sign in. Orphanage
accounts start inactive: the dashboard shows a pending-approval notice
until an administrator approves the registration.

With --draft, the wizard is driven from a JSONC file whose keys are the
wizard fields (name, email, password, confirmPassword, phone, location,
contactPerson, description, agreeToTerms).`,
		Usage: "jalai register <client|orphanage> [--draft <file>] [--password-file <path>]",
		Examples: []cli.Example{
			{Description: "Register a client interactively", Command: "jalai register client"},
			{Description: "Register an orphanage from a draft", Command: "jalai register orphanage --draft orphanage.jsonc"},
		},
		Flags: flags("register", &params),
		Run: withApp(streams, &params.Globals, func(ctx context.Context, app *App, args []string) error {
			if err := exactArgs(args, "role"); err != nil {
				return err
			}
			role, ok := api.ParseRole(args[0])
			if !ok || role == api.RoleAdmin {
				return cli.Validation("role must be client or orphanage, got %q", args[0])
			}
			steps, err := form.SignupSteps(role)
			if err != nil {
				return cli.Validation("%w", err)
			}

			var registered api.User
			engine, err := form.New(steps, form.SignupDefaults(), func(ctx context.Context, values form.Values) error {
				user, err := app.Session.Register(ctx, role, form.SignupFields(values, role))
				registered = user
				return err
			})
			if err != nil {
				return cli.Internal("%w", err)
			}

			if params.Draft != "" {
				values, err := form.LoadDraft(params.Draft)
				if err != nil {
					return cli.Validation("%w", err)
				}
				if params.PasswordFile != "" {
					password, err := cli.ReadPassword(params.PasswordFile, "")
					if err != nil {
						return err
					}
					values[form.FieldPassword] = password.String()
					values[form.FieldConfirmPassword] = password.String()
					password.Close()
				}
				err = submitDraft(ctx, engine, values)
			} else {
				err = runWizard(ctx, app, "Create a "+role.PathSegment()+" account", engine, wizardui.SignupSpecs(role))
			}
			if err != nil {
				return err
			}

			params.Output = streams.Out
			if done, err := params.EmitJSON(registered); done {
				return err
			}
			app.Printf("Registered %s <%s> as %s\n", registered.Name, registered.Email, registered.UserType)
			if role == api.RoleOrphanage && !registered.IsActive {
				app.Println("Your orphanage account is awaiting administrator approval.")
			}
			return nil
		}),
	}
}

// submitDraft loads values into engine, advances through every step
// and submits. The first failing step is returned as a
// *form.ValidationError.
func submitDraft(ctx context.Context, engine *form.Engine, values form.Values) error {
	engine.Load(values)
	for {
		state := engine.State()
		if state.CurrentStep == state.Steps {
			break
		}
		if _, err := engine.Next(); err != nil {
			return err
		}
	}
	return engine.Submit(ctx)
}

// runWizard shows the interactive wizard for engine.
func runWizard(ctx context.Context, app *App, title string, engine *form.Engine, specs map[string]wizardui.FieldSpec) error {
	if !cli.IsTerminal(app.Streams.In) || !cli.IsTerminal(app.Streams.Out) {
		return cli.Validation("the interactive wizard needs a terminal (use --draft)")
	}
	model := wizardui.New(ctx, title, engine, specs, tui.DefaultTheme).WithStatus(app.Status)
	return wizardui.Run(ctx, model)
}

type logoutParams struct {
	Globals
}

func logoutCommand(streams Streams) *cli.Command {
	var params logoutParams
	return &cli.Command{
		Name:    "logout",
		Summary: "Sign out and clear the stored session",
		Description: `Revoke the session on the server when possible and clear the stored
tokens and user record. Local state is cleared even when the server
cannot be reached. Logging out without a session is not an error.`,
		Flags: flags("logout", &params),
		Run: withApp(streams, &params.Globals, func(ctx context.Context, app *App, args []string) error {
			if err := exactArgs(args); err != nil {
				return err
			}
			if err := app.Session.Logout(ctx); err != nil {
				return err
			}
			app.Println("Logged out.")
			return nil
		}),
	}
}

type whoamiParams struct {
	Globals
	cli.JSONOutput
}

// whoamiResult is the whoami output.
type whoamiResult struct {
	User           api.User   `json:"user"`
	TokenExpiresAt *time.Time `json:"tokenExpiresAt,omitempty"`
	TokenExpired   bool       `json:"tokenExpired"`
}

func whoamiCommand(streams Streams) *cli.Command {
	var params whoamiParams
	return &cli.Command{
		Name:    "whoami",
		Summary: "Show the signed-in user",
		Description: `Show the stored session user and when the access token expires. The
expiry is read from the token's claims without contacting the server.`,
		Flags: flags("whoami", &params),
		Run: withApp(streams, &params.Globals, func(_ context.Context, app *App, args []string) error {
			if err := exactArgs(args); err != nil {
				return err
			}
			user, err := app.requireUser()
			if err != nil {
				return err
			}

			result := whoamiResult{User: user}
			claims, err := api.InspectToken(app.Client.Tokens().AccessToken())
			switch {
			case errors.Is(err, api.ErrOpaqueToken):
				app.Logger.Debug("access token carries no readable claims", "error", err)
			case err != nil:
				app.Logger.Debug("inspecting access token", "error", err)
			case !claims.ExpiresAt.IsZero():
				expires := claims.ExpiresAt
				result.TokenExpiresAt = &expires
				result.TokenExpired = claims.Expired(time.Now())
			}

			params.Output = streams.Out
			if done, err := params.EmitJSON(result); done {
				return err
			}
			status := "active"
			if !user.IsActive {
				status = "pending approval"
			}
			app.Printf("%s <%s>\n", user.Name, user.Email)
			app.Printf("  id:     %s\n", user.ID)
			app.Printf("  role:   %s\n", user.UserType)
			app.Printf("  status: %s\n", status)
			if result.TokenExpiresAt != nil {
				verb := "expires"
				if result.TokenExpired {
					verb = "expired"
				}
				app.Printf("  access token %s %s (refreshed automatically)\n", verb, humanize.Time(*result.TokenExpiresAt))
			}
			return nil
		}),
	}
}
