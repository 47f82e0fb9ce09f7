// Copyright 2026 The JALAI Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/jalai-group/jalai/api"
	"github.com/jalai-group/jalai/cmd/jalai/cli"
	"github.com/jalai-group/jalai/form"
	"github.com/jalai-group/jalai/lib/tui"
	"github.com/jalai-group/jalai/lib/wizardui"
	"github.com/jalai-group/jalai/view"
)

// orphanagePickerSize bounds the orphanages offered by the donation
// wizard's picker.
const orphanagePickerSize = 100

type donateParams struct {
	Globals
	cli.JSONOutput
	Draft string `flag:"draft" desc:"submit field values from a JSONC file instead of the interactive wizard"`
}

func donateCommand(streams Streams) *cli.Command {
	var params donateParams
	return &cli.Command{
		Name:    "donate",
		Summary: "Submit a donation to an orphanage",
		Description: `Walk through the four-step donation wizard: donor information,
donation details (money or items), orphanage and logistics, and review.
Each step is validated before the next is shown. Only client accounts
can donate.

With --draft, the wizard is driven from a JSONC file whose keys are the
wizard fields (donorName, donorEmail, donorPhone, donationType,
monetaryAmount, itemCategory, itemDescription, orphanageId, ...). The
donor name and email default to the signed-in user.`,
		Usage: "jalai donate [--draft <file>] [--json]",
		Examples: []cli.Example{
			{Description: "Donate interactively", Command: "jalai donate"},
			{Description: "Donate from a saved draft", Command: "jalai donate --draft donation.jsonc"},
		},
		Flags: flags("donate", &params),
		Run: withApp(streams, &params.Globals, func(ctx context.Context, app *App, args []string) error {
			if err := exactArgs(args); err != nil {
				return err
			}
			decision, err := app.gate(view.ClientGate)
			if err != nil {
				return err
			}
			user := decision.User

			defaults := form.DonationDefaults()
			defaults[form.FieldDonorName] = user.Name
			defaults[form.FieldDonorEmail] = user.Email

			var created *api.Donation
			engine, err := form.New(form.DonationSteps(), defaults, func(ctx context.Context, values form.Values) error {
				if err := app.recheck(view.ClientGate, user); err != nil {
					return err
				}
				request, err := form.DonationRequest(values, user.ID)
				if err != nil {
					return err
				}
				donation, err := app.Client.CreateDonation(ctx, request)
				if err != nil {
					return err
				}
				created = donation
				return nil
			})
			if err != nil {
				return cli.Internal("%w", err)
			}

			if params.Draft != "" {
				values, err := form.LoadDraft(params.Draft)
				if err != nil {
					return cli.Validation("%w", err)
				}
				err = submitDraft(ctx, engine, values)
				if err != nil {
					return err
				}
			} else {
				orphanages, err := app.Client.PublicOrphanages(ctx, api.PageRequest{Size: orphanagePickerSize})
				if err != nil {
					return err
				}
				err = runWizard(ctx, app, "Make a donation", engine, wizardui.DonationSpecs(orphanages.Content))
				if err != nil {
					return err
				}
			}

			params.Output = streams.Out
			if done, err := params.EmitJSON(created); done {
				return err
			}
			app.Printf("Donation %s submitted (%s). The orphanage will confirm it from their dashboard.\n",
				created.ID, created.Status)
			return nil
		}),
	}
}

func donationCommand(streams Streams) *cli.Command {
	return &cli.Command{
		Name:    "donation",
		Summary: "List and manage donations",
		Description: `List the donations visible to the signed-in role and move them
through their lifecycle.

Orphanages confirm or reject pending donations and complete confirmed
ones. Clients cancel their own pending or confirmed donations.
Administrators may do all of these.`,
		Subcommands: []*cli.Command{
			donationListCommand(streams),
			donationShowCommand(streams),
			donationTransitionCommand(streams, api.ActionConfirm, "Confirm a pending donation"),
			donationTransitionCommand(streams, api.ActionReject, "Reject a pending donation"),
			donationTransitionCommand(streams, api.ActionComplete, "Mark a confirmed donation as received"),
			donationTransitionCommand(streams, api.ActionCancel, "Cancel one of your donations"),
		},
	}
}

type donationListParams struct {
	Globals
	cli.JSONOutput
	Page int `flag:"page" desc:"zero-based page (administrators)" default:"0"`
	Size int `flag:"size" desc:"page size (administrators)" default:"20"`
}

func donationListCommand(streams Streams) *cli.Command {
	var params donationListParams
	return &cli.Command{
		Name:    "list",
		Summary: "List donations for the signed-in role",
		Description: `List donations. Clients see donations they made, orphanages see
donations they received, and administrators see every donation, one
page at a time.`,
		Flags: flags("list", &params),
		Run: withApp(streams, &params.Globals, func(ctx context.Context, app *App, args []string) error {
			if err := exactArgs(args); err != nil {
				return err
			}
			user, err := app.requireUser()
			if err != nil {
				return err
			}

			var donations []api.Donation
			footer := ""
			switch user.UserType {
			case api.RoleAdmin:
				page, err := app.Client.ListDonations(ctx, api.PageRequest{Page: params.Page, Size: params.Size})
				if err != nil {
					return err
				}
				donations = page.Content
				footer = pageFooter(page.Number, page.TotalPages, page.TotalElements)
			case api.RoleClient:
				donations, err = app.Client.DonationsByClient(ctx, user.ID)
			case api.RoleOrphanage:
				if _, err := app.gate(view.OrphanageGate); err != nil {
					return err
				}
				donations, err = app.Client.DonationsByOrphanage(ctx, user.ID)
			}
			if err != nil {
				return err
			}

			params.Output = streams.Out
			if done, err := params.EmitJSON(donations); done {
				return err
			}
			if len(donations) == 0 {
				app.Println("No donations.")
				return nil
			}
			writeDonationTable(streams.Out, donations)
			if footer != "" {
				app.Println(footer)
			}
			return nil
		}),
	}
}

type donationShowParams struct {
	Globals
	cli.JSONOutput
}

func donationShowCommand(streams Streams) *cli.Command {
	var params donationShowParams
	return &cli.Command{
		Name:    "show",
		Summary: "Show one donation",
		Usage:   "jalai donation show <id> [--json]",
		Flags:   flags("show", &params),
		Run: withApp(streams, &params.Globals, func(ctx context.Context, app *App, args []string) error {
			if err := exactArgs(args, "id"); err != nil {
				return err
			}
			if _, err := app.requireUser(); err != nil {
				return err
			}
			donation, err := app.Client.GetDonation(ctx, args[0])
			if err != nil {
				return err
			}
			params.Output = streams.Out
			if done, err := params.EmitJSON(donation); done {
				return err
			}
			writeDonationDetail(app, *donation)
			return nil
		}),
	}
}

type donationTransitionParams struct {
	Globals
	cli.JSONOutput
}

func donationTransitionCommand(streams Streams, action api.DonationAction, summary string) *cli.Command {
	var params donationTransitionParams
	name := string(action)
	return &cli.Command{
		Name:    name,
		Summary: summary,
		Usage:   fmt.Sprintf("jalai donation %s <id> [--json]", name),
		Flags:   flags(name, &params),
		Run: withApp(streams, &params.Globals, func(ctx context.Context, app *App, args []string) error {
			if err := exactArgs(args, "id"); err != nil {
				return err
			}
			donation, err := transitionDonation(ctx, app, args[0], action)
			if err != nil {
				return err
			}
			params.Output = streams.Out
			if done, err := params.EmitJSON(donation); done {
				return err
			}
			app.Printf("Donation %s is now %s\n", donation.ID, donation.Status)
			return nil
		}),
	}
}

// transitionDonation routes action through the dashboard of the
// signed-in role so the same gate applies as on screen.
func transitionDonation(ctx context.Context, app *App, id string, action api.DonationAction) (*api.Donation, error) {
	user, err := app.requireUser()
	if err != nil {
		return nil, err
	}
	if user.UserType == api.RoleAdmin {
		if _, err := app.gate(view.AdminGate); err != nil {
			return nil, err
		}
		return app.Client.TransitionDonation(ctx, id, action)
	}

	if action == api.ActionCancel {
		return (&view.ClientDashboard{Session: app.Session, API: app.Client}).CancelDonation(ctx, id)
	}
	dashboard := &view.OrphanageDashboard{Session: app.Session, API: app.Client}
	switch action {
	case api.ActionConfirm:
		return dashboard.Confirm(ctx, id)
	case api.ActionReject:
		return dashboard.Reject(ctx, id)
	default:
		return dashboard.Complete(ctx, id)
	}
}

func writeDonationTable(w io.Writer, donations []api.Donation) {
	table := tabwriter.NewWriter(w, 2, 0, 2, ' ', 0)
	fmt.Fprintln(table, "ID\tSTATUS\tTYPE\tDONATION\tPARTY\tDATE")
	for _, donation := range donations {
		party := donation.OrphanageName
		if party == "" {
			party = donation.DonorName
		}
		date := donation.AppointmentDate
		if date == "" && donation.CreatedAt != nil {
			date = donation.CreatedAt.Format("2006-01-02")
		}
		fmt.Fprintf(table, "%s\t%s\t%s\t%s\t%s\t%s\n",
			donation.ID, donation.Status, donation.DonationType,
			tui.Truncate(donationWhat(donation), 40), party, date)
	}
	table.Flush()
}

func writeDonationDetail(app *App, donation api.Donation) {
	app.Printf("Donation %s\n", donation.ID)
	app.Printf("  status:     %s\n", donation.Status)
	app.Printf("  type:       %s\n", donation.DonationType)
	app.Printf("  donation:   %s\n", donationWhat(donation))
	if donation.DonorName != "" {
		app.Printf("  donor:      %s\n", donation.DonorName)
	}
	app.Printf("  orphanage:  %s\n", firstNonEmpty(donation.OrphanageName, donation.OrphanageID))
	if donation.AppointmentDate != "" {
		app.Printf("  date:       %s\n", donation.AppointmentDate)
	}
	if donation.CreatedAt != nil {
		app.Printf("  created:    %s\n", donation.CreatedAt.Format("2006-01-02 15:04"))
	}
}

func donationWhat(donation api.Donation) string {
	switch {
	case donation.CashAmount != nil && donation.ItemDescription != "":
		return view.Amount(*donation.CashAmount) + " + " + donation.ItemDescription
	case donation.CashAmount != nil:
		return view.Amount(*donation.CashAmount)
	default:
		return donation.ItemDescription
	}
}

func pageFooter(number, totalPages, totalElements int) string {
	return fmt.Sprintf("Page %d of %d (%d total)", number+1, max(totalPages, 1), totalElements)
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}
