// Copyright 2026 The JALAI Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"github.com/jalai-group/jalai/api"
	"github.com/jalai-group/jalai/cmd/jalai/cli"
	"github.com/jalai-group/jalai/lib/tui"
	"github.com/jalai-group/jalai/view"
)

func orphanageCommand(streams Streams) *cli.Command {
	return &cli.Command{
		Name:    "orphanage",
		Summary: "Browse and moderate orphanages",
		Subcommands: []*cli.Command{
			orphanageListCommand(streams),
			orphanageShowCommand(streams),
			orphanageModerateCommand(streams, true),
			orphanageModerateCommand(streams, false),
		},
	}
}

// PageFlags selects a page of a list endpoint.
type PageFlags struct {
	Page int `flag:"page" desc:"zero-based page" default:"0"`
	Size int `flag:"size" desc:"page size" default:"20"`
}

func (p PageFlags) request() api.PageRequest {
	return api.PageRequest{Page: p.Page, Size: p.Size}
}

type orphanageListParams struct {
	Globals
	cli.JSONOutput
	PageFlags
	All bool `flag:"all" desc:"include orphanages awaiting approval (administrators)"`
}

func orphanageListCommand(streams Streams) *cli.Command {
	var params orphanageListParams
	return &cli.Command{
		Name:    "list",
		Summary: "List approved orphanages",
		Description: `List the approved orphanages that accept donations. Administrators
can pass --all to include registrations awaiting approval.`,
		Flags: flags("list", &params),
		Run: withApp(streams, &params.Globals, func(ctx context.Context, app *App, args []string) error {
			if err := exactArgs(args); err != nil {
				return err
			}
			var page *api.Page[api.Orphanage]
			var err error
			if params.All {
				if _, err := app.gate(view.AdminGate); err != nil {
					return err
				}
				page, err = app.Client.AllOrphanages(ctx, params.request())
			} else {
				page, err = app.Client.PublicOrphanages(ctx, params.request())
			}
			if err != nil {
				return err
			}

			params.Output = streams.Out
			if done, err := params.EmitJSON(page.Content); done {
				return err
			}
			if len(page.Content) == 0 {
				app.Println("No orphanages.")
				return nil
			}
			writeOrphanageTable(streams.Out, page.Content)
			app.Println(pageFooter(page.Number, page.TotalPages, page.TotalElements))
			return nil
		}),
	}
}

type orphanageShowParams struct {
	Globals
	cli.JSONOutput
}

func orphanageShowCommand(streams Streams) *cli.Command {
	var params orphanageShowParams
	return &cli.Command{
		Name:    "show",
		Summary: "Show an orphanage profile",
		Description: `Show an orphanage profile with its description. Signed-in users read
the full profile; without a session only approved orphanages from the
public list are shown.`,
		Usage: "jalai orphanage show <id> [--json]",
		Flags: flags("show", &params),
		Run: withApp(streams, &params.Globals, func(ctx context.Context, app *App, args []string) error {
			if err := exactArgs(args, "id"); err != nil {
				return err
			}
			orphanage, err := findOrphanage(ctx, app, args[0])
			if err != nil {
				return err
			}
			params.Output = streams.Out
			if done, err := params.EmitJSON(orphanage); done {
				return err
			}
			app.Println(app.Renderer().OrphanageProfile(*orphanage, app.Color))
			if orphanage.TotalDonationsReceived > 0 {
				app.Printf("Donations received: %s\n", view.Amount(orphanage.TotalDonationsReceived))
			}
			return nil
		}),
	}
}

func findOrphanage(ctx context.Context, app *App, id string) (*api.Orphanage, error) {
	if app.Session.IsAuthenticated() {
		return app.Client.GetOrphanage(ctx, id)
	}
	for page := 0; ; page++ {
		listing, err := app.Client.PublicOrphanages(ctx, api.PageRequest{Page: page, Size: orphanagePickerSize})
		if err != nil {
			return nil, err
		}
		for _, orphanage := range listing.Content {
			if orphanage.ID == id {
				return &orphanage, nil
			}
		}
		if listing.Last || len(listing.Content) == 0 {
			return nil, cli.NotFound("orphanage %q not found among approved orphanages (log in to see others)", id)
		}
	}
}

type moderateParams struct {
	Globals
}

func orphanageModerateCommand(streams Streams, approve bool) *cli.Command {
	var params moderateParams
	name, summary := "approve", "Approve an orphanage registration"
	if !approve {
		name, summary = "reject", "Reject an orphanage registration"
	}
	return &cli.Command{
		Name:    name,
		Summary: summary,
		Usage:   fmt.Sprintf("jalai orphanage %s <id>", name),
		Flags:   flags(name, &params),
		Run: withApp(streams, &params.Globals, func(ctx context.Context, app *App, args []string) error {
			if err := exactArgs(args, "id"); err != nil {
				return err
			}
			dashboard := &view.AdminDashboard{Session: app.Session, API: app.Client}
			if err := dashboard.ModerateOrphanage(ctx, args[0], approve); err != nil {
				if errors.Is(err, view.ErrDenied) && !app.Session.IsAuthenticated() {
					return cli.Unauthorized("not logged in (run 'jalai login')")
				}
				return err
			}
			app.Printf("Orphanage %s %sd\n", args[0], name)
			return nil
		}),
	}
}

func writeOrphanageTable(w io.Writer, orphanages []api.Orphanage) {
	table := tabwriter.NewWriter(w, 2, 0, 2, ' ', 0)
	fmt.Fprintln(table, "ID\tNAME\tLOCATION\tCHILDREN\tSTATUS\tRECEIVED")
	for _, orphanage := range orphanages {
		status := "active"
		if !orphanage.IsActive {
			status = "pending"
		}
		children := "-"
		if orphanage.NumberOfChildren > 0 {
			children = humanize.Comma(int64(orphanage.NumberOfChildren))
		}
		fmt.Fprintf(table, "%s\t%s\t%s\t%s\t%s\t%s\n",
			orphanage.ID, tui.Truncate(orphanage.Name, 32), orphanage.Location,
			children, status, view.Amount(orphanage.TotalDonationsReceived))
	}
	table.Flush()
}

func productCommand(streams Streams) *cli.Command {
	return &cli.Command{
		Name:    "product",
		Summary: "Browse and moderate the secondhand catalog",
		Subcommands: []*cli.Command{
			productListCommand(streams),
			productSearchCommand(streams),
			productShowCommand(streams),
			productModerateCommand(streams, true),
			productModerateCommand(streams, false),
		},
	}
}

type productListParams struct {
	Globals
	cli.JSONOutput
	PageFlags
	Category string `flag:"category" desc:"only products in this category (by name)"`
}

func productListCommand(streams Streams) *cli.Command {
	var params productListParams
	return &cli.Command{
		Name:    "list",
		Summary: "List approved products",
		Description: `List approved products, optionally restricted to one category.
Results are served from the response cache while fresh.`,
		Flags: flags("list", &params),
		Run: withApp(streams, &params.Globals, func(ctx context.Context, app *App, args []string) error {
			if err := exactArgs(args); err != nil {
				return err
			}
			var page *api.Page[api.Product]
			var err error
			if params.Category != "" {
				page, err = app.Client.ProductsByCategory(ctx, params.Category, params.request())
			} else {
				page, err = app.Client.ApprovedProducts(ctx, params.request())
			}
			if err != nil {
				return err
			}
			return emitProducts(app, &params.JSONOutput, page)
		}),
	}
}

type productSearchParams struct {
	Globals
	cli.JSONOutput
	PageFlags
}

func productSearchCommand(streams Streams) *cli.Command {
	var params productSearchParams
	return &cli.Command{
		Name:    "search",
		Summary: "Search approved products by keyword",
		Usage:   "jalai product search <keyword> [flags]",
		Flags:   flags("search", &params),
		Run: withApp(streams, &params.Globals, func(ctx context.Context, app *App, args []string) error {
			if len(args) == 0 {
				return cli.Validation("missing argument <keyword>")
			}
			page, err := app.Client.SearchProducts(ctx, strings.Join(args, " "), params.request())
			if err != nil {
				return err
			}
			return emitProducts(app, &params.JSONOutput, page)
		}),
	}
}

func emitProducts(app *App, output *cli.JSONOutput, page *api.Page[api.Product]) error {
	output.Output = app.Streams.Out
	if done, err := output.EmitJSON(page.Content); done {
		return err
	}
	if len(page.Content) == 0 {
		app.Println("No products.")
		return nil
	}
	table := tabwriter.NewWriter(app.Streams.Out, 2, 0, 2, ' ', 0)
	fmt.Fprintln(table, "ID\tNAME\tPRICE\tCATEGORY\tSELLER")
	for _, product := range page.Content {
		fmt.Fprintf(table, "%s\t%s\t%s\t%s\t%s\n",
			product.ID, tui.Truncate(product.Name, 32), view.Amount(product.Price),
			product.CategoryName, product.SellerName)
	}
	table.Flush()
	app.Println(pageFooter(page.Number, page.TotalPages, page.TotalElements))
	return nil
}

type productShowParams struct {
	Globals
	cli.JSONOutput
}

func productShowCommand(streams Streams) *cli.Command {
	var params productShowParams
	return &cli.Command{
		Name:    "show",
		Summary: "Show one product",
		Usage:   "jalai product show <id> [--json]",
		Flags:   flags("show", &params),
		Run: withApp(streams, &params.Globals, func(ctx context.Context, app *App, args []string) error {
			if err := exactArgs(args, "id"); err != nil {
				return err
			}
			product, err := app.Client.GetProduct(ctx, args[0])
			if err != nil {
				return err
			}
			params.Output = streams.Out
			if done, err := params.EmitJSON(product); done {
				return err
			}
			theme := tui.DefaultTheme
			app.Printf("%s  %s\n", theme.Header(product.Name), view.Amount(product.Price))
			status := firstNonEmpty(product.Status, "APPROVED")
			app.Printf("%s  %s\n", theme.Badge(status, theme.StatusColor(status)), theme.Faint(product.CategoryName))
			if product.SellerName != "" {
				app.Printf("Sold by %s\n", product.SellerName)
			}
			if description := tui.RenderMarkdown(product.Description, theme, app.Width, app.Color); description != "" {
				app.Printf("\n%s\n", description)
			}
			if product.ImageURL != "" {
				app.Printf("\nImage: %s\n", product.ImageURL)
			}
			return nil
		}),
	}
}

type productModerateParams struct {
	Globals
	Reason string `flag:"reason" desc:"reason shown to the seller (reject only)"`
}

func productModerateCommand(streams Streams, approve bool) *cli.Command {
	var params productModerateParams
	name, summary := "approve", "Approve a pending product listing"
	if !approve {
		name, summary = "reject", "Reject a pending product listing"
	}
	return &cli.Command{
		Name:    name,
		Summary: summary,
		Usage:   fmt.Sprintf("jalai product %s <id>", name),
		Flags:   flags(name, &params),
		Run: withApp(streams, &params.Globals, func(ctx context.Context, app *App, args []string) error {
			if err := exactArgs(args, "id"); err != nil {
				return err
			}
			if _, err := app.gate(view.AdminGate); err != nil {
				return err
			}
			if err := app.Client.ModerateProduct(ctx, args[0], approve, params.Reason); err != nil {
				return err
			}
			app.Printf("Product %s %sd\n", args[0], name)
			return nil
		}),
	}
}

type uploadParams struct {
	Globals
	cli.JSONOutput
}

func uploadCommand(streams Streams) *cli.Command {
	var params uploadParams
	return &cli.Command{
		Name:    "upload",
		Summary: "Upload a product or profile image",
		Description: fmt.Sprintf(`Upload an image (at most %s). The returned image ID can be used
when listing a product.`, humanize.IBytes(api.MaxImageSize)),
		Usage: "jalai upload <image> [--json]",
		Flags: flags("upload", &params),
		Run: withApp(streams, &params.Globals, func(ctx context.Context, app *App, args []string) error {
			if err := exactArgs(args, "image"); err != nil {
				return err
			}
			if _, err := app.requireUser(); err != nil {
				return err
			}
			file, err := os.Open(args[0])
			if err != nil {
				return cli.Validation("%w", err)
			}
			defer file.Close()

			upload, err := app.Client.UploadImage(ctx, filepath.Base(args[0]), file)
			if err != nil {
				return err
			}
			params.Output = streams.Out
			if done, err := params.EmitJSON(upload); done {
				return err
			}
			app.Printf("Uploaded %s (%s, %s)\n", upload.ImageID, upload.ContentType, humanize.IBytes(uint64(upload.Size)))
			app.Printf("  url:    %s\n", app.Client.ImageURL(upload.ImageID))
			app.Printf("  blake3: %s\n", upload.Digest)
			return nil
		}),
	}
}
