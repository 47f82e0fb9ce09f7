// Copyright 2026 The JALAI Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/jalai-group/jalai/api"
	"github.com/jalai-group/jalai/cmd/jalai/cli"
	"github.com/jalai-group/jalai/lib/tui"
	"github.com/jalai-group/jalai/view"
)

func orderCommand(streams Streams) *cli.Command {
	return &cli.Command{
		Name:    "order",
		Summary: "List orders and move them through fulfilment",
		Description: `Clients list and inspect their own orders. Administrators list
every order and set an order's status.`,
		Subcommands: []*cli.Command{
			orderListCommand(streams),
			orderShowCommand(streams),
			orderStatusCommand(streams),
		},
	}
}

type orderListParams struct {
	Globals
	cli.JSONOutput
	PageFlags
}

func orderListCommand(streams Streams) *cli.Command {
	var params orderListParams
	return &cli.Command{
		Name:    "list",
		Summary: "List orders for the signed-in role",
		Description: `List orders one page at a time. Clients see their own orders and
administrators see every order.`,
		Flags: flags("list", &params),
		Run: withApp(streams, &params.Globals, func(ctx context.Context, app *App, args []string) error {
			if err := exactArgs(args); err != nil {
				return err
			}
			user, err := app.requireUser()
			if err != nil {
				return err
			}
			var page *api.Page[api.Order]
			if user.UserType == api.RoleAdmin {
				if _, err := app.gate(view.AdminGate); err != nil {
					return err
				}
				page, err = app.Client.ListOrders(ctx, params.request())
			} else {
				if _, err := app.gate(view.ClientGate); err != nil {
					return err
				}
				page, err = app.Client.OrdersByClient(ctx, user.ID, params.request())
			}
			if err != nil {
				return err
			}

			params.Output = streams.Out
			if done, err := params.EmitJSON(page.Content); done {
				return err
			}
			if len(page.Content) == 0 {
				app.Println("No orders.")
				return nil
			}
			writeOrderTable(streams.Out, page.Content)
			app.Println(pageFooter(page.Number, page.TotalPages, page.TotalElements))
			return nil
		}),
	}
}

type orderShowParams struct {
	Globals
	cli.JSONOutput
}

func orderShowCommand(streams Streams) *cli.Command {
	var params orderShowParams
	return &cli.Command{
		Name:    "show",
		Summary: "Show one order",
		Usage:   "jalai order show <id> [--json]",
		Flags:   flags("show", &params),
		Run: withApp(streams, &params.Globals, func(ctx context.Context, app *App, args []string) error {
			if err := exactArgs(args, "id"); err != nil {
				return err
			}
			if _, err := app.requireUser(); err != nil {
				return err
			}
			order, err := app.Client.GetOrder(ctx, args[0])
			if err != nil {
				return err
			}
			params.Output = streams.Out
			if done, err := params.EmitJSON(order); done {
				return err
			}
			writeOrderDetail(app, *order)
			return nil
		}),
	}
}

type orderStatusParams struct {
	Globals
	cli.JSONOutput
}

func orderStatusCommand(streams Streams) *cli.Command {
	var params orderStatusParams
	return &cli.Command{
		Name:    "status",
		Summary: "Set an order's status (administrators)",
		Description: fmt.Sprintf(`Move an order to a new status. The status is one of %s.`,
			joinEnum(api.OrderStatuses)),
		Usage: "jalai order status <id> <status> [--json]",
		Examples: []cli.Example{
			{Description: "Mark an order shipped", Command: "jalai order status ord-1 shipped"},
		},
		Flags: flags("status", &params),
		Run: withApp(streams, &params.Globals, func(ctx context.Context, app *App, args []string) error {
			if err := exactArgs(args, "id", "status"); err != nil {
				return err
			}
			status := api.OrderStatus(strings.ToUpper(args[1]))
			if !slices.Contains(api.OrderStatuses, status) {
				return cli.Validation("unknown order status %q (want one of %s)", args[1], joinEnum(api.OrderStatuses))
			}
			if _, err := app.gate(view.AdminGate); err != nil {
				return err
			}
			if err := app.Client.UpdateOrderStatus(ctx, args[0], status); err != nil {
				return err
			}
			order, err := app.Client.GetOrder(ctx, args[0])
			if err != nil {
				return err
			}
			params.Output = streams.Out
			if done, err := params.EmitJSON(order); done {
				return err
			}
			app.Printf("Order %s is now %s\n", order.OrderID, order.Status)
			return nil
		}),
	}
}

func writeOrderTable(w io.Writer, orders []api.Order) {
	table := tabwriter.NewWriter(w, 2, 0, 2, ' ', 0)
	fmt.Fprintln(table, "ID\tSTATUS\tTOTAL\tCLIENT\tDATE")
	for _, order := range orders {
		date := ""
		if order.CreatedAt != nil {
			date = order.CreatedAt.Format("2006-01-02")
		}
		fmt.Fprintf(table, "%s\t%s\t%s\t%s\t%s\n",
			order.OrderID, order.Status, view.Amount(order.TotalAmount), order.ClientID, date)
	}
	table.Flush()
}

func writeOrderDetail(app *App, order api.Order) {
	app.Printf("Order %s\n", order.OrderID)
	app.Printf("  status:    %s\n", order.Status)
	app.Printf("  total:     %s\n", view.Amount(order.TotalAmount))
	if order.ClientID != "" {
		app.Printf("  client:    %s\n", order.ClientID)
	}
	if order.DeliveryDate != "" {
		app.Printf("  delivery:  %s\n", order.DeliveryDate)
	}
	if order.CreatedAt != nil {
		app.Printf("  created:   %s\n", order.CreatedAt.Format("2006-01-02 15:04"))
	}
}

func reviewCommand(streams Streams) *cli.Command {
	return &cli.Command{
		Name:    "review",
		Summary: "Write and moderate product reviews",
		Description: `Clients review products. Reviews wait for an administrator to
approve or reject them before they are published.`,
		Subcommands: []*cli.Command{
			reviewListCommand(streams),
			reviewAddCommand(streams),
			reviewModerateCommand(streams, true),
			reviewModerateCommand(streams, false),
		},
	}
}

type reviewListParams struct {
	Globals
	cli.JSONOutput
	PageFlags
}

func reviewListCommand(streams Streams) *cli.Command {
	var params reviewListParams
	return &cli.Command{
		Name:    "list",
		Summary: "List reviews awaiting moderation (administrators)",
		Flags:   flags("list", &params),
		Run: withApp(streams, &params.Globals, func(ctx context.Context, app *App, args []string) error {
			if err := exactArgs(args); err != nil {
				return err
			}
			if _, err := app.gate(view.AdminGate); err != nil {
				return err
			}
			page, err := app.Client.ListReviews(ctx, params.request())
			if err != nil {
				return err
			}

			params.Output = streams.Out
			if done, err := params.EmitJSON(page.Content); done {
				return err
			}
			if len(page.Content) == 0 {
				app.Println("No reviews.")
				return nil
			}
			table := tabwriter.NewWriter(streams.Out, 2, 0, 2, ' ', 0)
			fmt.Fprintln(table, "ID\tSTATUS\tPRODUCT\tRATING\tCOMMENT")
			for _, review := range page.Content {
				fmt.Fprintf(table, "%s\t%s\t%s\t%d/5\t%s\n",
					review.ReviewID, review.Status, review.ProductID, review.Rating, tui.Truncate(review.Comment, 50))
			}
			table.Flush()
			app.Println(pageFooter(page.Number, page.TotalPages, page.TotalElements))
			return nil
		}),
	}
}

type reviewAddParams struct {
	Globals
	cli.JSONOutput
	Product string `flag:"product" desc:"ID of the product being reviewed"`
	Rating  int    `flag:"rating" desc:"rating from 1 to 5"`
	Comment string `flag:"comment" desc:"review text"`
}

func reviewAddCommand(streams Streams) *cli.Command {
	var params reviewAddParams
	return &cli.Command{
		Name:    "add",
		Summary: "Review a product",
		Usage:   "jalai review add --product <id> --rating <1-5> [--comment <text>] [--json]",
		Examples: []cli.Example{
			{Description: "Rate a product", Command: `jalai review add --product prod-1 --rating 5 --comment "Warm and well made"`},
		},
		Flags: flags("add", &params),
		Run: withApp(streams, &params.Globals, func(ctx context.Context, app *App, args []string) error {
			if err := exactArgs(args); err != nil {
				return err
			}
			if params.Product == "" {
				return cli.Validation("--product is required")
			}
			if params.Rating < 1 || params.Rating > 5 {
				return cli.Validation("--rating must be between 1 and 5, got %d", params.Rating)
			}
			decision, err := app.gate(view.ClientGate)
			if err != nil {
				return err
			}
			review, err := app.Client.CreateReview(ctx, api.Review{
				ClientID:  decision.User.ID,
				ProductID: params.Product,
				Rating:    params.Rating,
				Comment:   strings.TrimSpace(params.Comment),
			})
			if err != nil {
				return err
			}
			params.Output = streams.Out
			if done, err := params.EmitJSON(review); done {
				return err
			}
			app.Printf("Review %s submitted (%s). It is published once an administrator approves it.\n",
				review.ReviewID, review.Status)
			return nil
		}),
	}
}

type reviewModerateParams struct {
	Globals
	cli.JSONOutput
}

func reviewModerateCommand(streams Streams, approve bool) *cli.Command {
	var params reviewModerateParams
	name, summary, status := "reject", "Reject a review", "REJECTED"
	if approve {
		name, summary, status = "approve", "Approve a review for publication", "APPROVED"
	}
	return &cli.Command{
		Name:    name,
		Summary: summary + " (administrators)",
		Usage:   fmt.Sprintf("jalai review %s <id> [--json]", name),
		Flags:   flags(name, &params),
		Run: withApp(streams, &params.Globals, func(ctx context.Context, app *App, args []string) error {
			if err := exactArgs(args, "id"); err != nil {
				return err
			}
			if _, err := app.gate(view.AdminGate); err != nil {
				return err
			}
			if err := app.Client.ModerateReview(ctx, args[0], approve); err != nil {
				return err
			}
			params.Output = streams.Out
			if done, err := params.EmitJSON(map[string]string{"reviewId": args[0], "status": status}); done {
				return err
			}
			app.Printf("Review %s is now %s\n", args[0], status)
			return nil
		}),
	}
}

func paymentCommand(streams Streams) *cli.Command {
	return &cli.Command{
		Name:    "payment",
		Summary: "Record and list payments",
		Subcommands: []*cli.Command{
			paymentListCommand(streams),
			paymentAddCommand(streams),
		},
	}
}

type paymentListParams struct {
	Globals
	cli.JSONOutput
	PageFlags
}

func paymentListCommand(streams Streams) *cli.Command {
	var params paymentListParams
	return &cli.Command{
		Name:    "list",
		Summary: "List payments (administrators)",
		Flags:   flags("list", &params),
		Run: withApp(streams, &params.Globals, func(ctx context.Context, app *App, args []string) error {
			if err := exactArgs(args); err != nil {
				return err
			}
			if _, err := app.gate(view.AdminGate); err != nil {
				return err
			}
			page, err := app.Client.ListPayments(ctx, params.request())
			if err != nil {
				return err
			}

			params.Output = streams.Out
			if done, err := params.EmitJSON(page.Content); done {
				return err
			}
			if len(page.Content) == 0 {
				app.Println("No payments.")
				return nil
			}
			table := tabwriter.NewWriter(streams.Out, 2, 0, 2, ' ', 0)
			fmt.Fprintln(table, "ID\tSTATUS\tAMOUNT\tMETHOD\tCUSTOMER\tTRANSACTION")
			for _, payment := range page.Content {
				fmt.Fprintf(table, "%s\t%s\t%s\t%s\t%s\t%s\n",
					payment.PaymentID, payment.Status, view.Amount(payment.Amount),
					payment.PaymentMethod, payment.CustomerID, payment.TransactionID)
			}
			table.Flush()
			app.Println(pageFooter(page.Number, page.TotalPages, page.TotalElements))
			return nil
		}),
	}
}

type paymentAddParams struct {
	Globals
	cli.JSONOutput
	Amount      float64 `flag:"amount" desc:"amount in XAF"`
	Method      string  `flag:"method" desc:"payment method" default:"MOBILE_PAYMENT"`
	Order       string  `flag:"order" desc:"order the payment settles"`
	Description string  `flag:"description" desc:"free-text note"`
}

func paymentAddCommand(streams Streams) *cli.Command {
	var params paymentAddParams
	return &cli.Command{
		Name:    "add",
		Summary: "Record a payment",
		Description: fmt.Sprintf(`Record a payment from the signed-in client. The method is one of
%s.`, joinEnum(api.PaymentMethods)),
		Usage: "jalai payment add --amount <xaf> [--method <method>] [--order <id>] [--json]",
		Examples: []cli.Example{
			{Description: "Pay for an order by mobile money", Command: "jalai payment add --amount 5000 --order ord-1"},
		},
		Flags: flags("add", &params),
		Run: withApp(streams, &params.Globals, func(ctx context.Context, app *App, args []string) error {
			if err := exactArgs(args); err != nil {
				return err
			}
			if params.Amount <= 0 {
				return cli.Validation("--amount must be positive")
			}
			method := api.PaymentMethod(strings.ToUpper(params.Method))
			if !slices.Contains(api.PaymentMethods, method) {
				return cli.Validation("unknown payment method %q (want one of %s)", params.Method, joinEnum(api.PaymentMethods))
			}
			decision, err := app.gate(view.ClientGate)
			if err != nil {
				return err
			}
			payment, err := app.Client.CreatePayment(ctx, api.Payment{
				CustomerID:    decision.User.ID,
				OrderID:       params.Order,
				PaymentMethod: method,
				Amount:        params.Amount,
				Description:   params.Description,
			})
			if err != nil {
				return err
			}
			params.Output = streams.Out
			if done, err := params.EmitJSON(payment); done {
				return err
			}
			app.Printf("Payment %s %s (%s, transaction %s)\n",
				payment.PaymentID, strings.ToLower(payment.Status), view.Amount(payment.Amount), payment.TransactionID)
			return nil
		}),
	}
}

func adminCommand(streams Streams) *cli.Command {
	return &cli.Command{
		Name:    "admin",
		Summary: "Administrator tools",
		Subcommands: []*cli.Command{
			adminClientsCommand(streams),
		},
	}
}

type adminClientsParams struct {
	Globals
	cli.JSONOutput
	PageFlags
}

func adminClientsCommand(streams Streams) *cli.Command {
	var params adminClientsParams
	return &cli.Command{
		Name:    "clients",
		Summary: "List client accounts with their order totals",
		Flags:   flags("clients", &params),
		Run: withApp(streams, &params.Globals, func(ctx context.Context, app *App, args []string) error {
			if err := exactArgs(args); err != nil {
				return err
			}
			if _, err := app.gate(view.AdminGate); err != nil {
				return err
			}
			page, err := app.Client.Clients(ctx, params.request())
			if err != nil {
				return err
			}

			params.Output = streams.Out
			if done, err := params.EmitJSON(page.Content); done {
				return err
			}
			if len(page.Content) == 0 {
				app.Println("No clients.")
				return nil
			}
			table := tabwriter.NewWriter(streams.Out, 2, 0, 2, ' ', 0)
			fmt.Fprintln(table, "ID\tNAME\tEMAIL\tACTIVE\tORDERS\tSPENT")
			for _, client := range page.Content {
				fmt.Fprintf(table, "%s\t%s\t%s\t%t\t%d\t%s\n",
					client.ID, client.Name, client.Email, client.IsActive, client.TotalOrders, view.Amount(client.TotalSpent))
			}
			table.Flush()
			app.Println(pageFooter(page.Number, page.TotalPages, page.TotalElements))
			return nil
		}),
	}
}

func notificationCommand(streams Streams) *cli.Command {
	return &cli.Command{
		Name:    "notification",
		Summary: "Read your notifications",
		Subcommands: []*cli.Command{
			notificationListCommand(streams),
			notificationReadCommand(streams),
		},
	}
}

type notificationListParams struct {
	Globals
	cli.JSONOutput
	Unread bool `flag:"unread" desc:"only show unread notifications"`
}

func notificationListCommand(streams Streams) *cli.Command {
	var params notificationListParams
	return &cli.Command{
		Name:    "list",
		Summary: "List your notifications",
		Flags:   flags("list", &params),
		Run: withApp(streams, &params.Globals, func(ctx context.Context, app *App, args []string) error {
			if err := exactArgs(args); err != nil {
				return err
			}
			decision, err := app.gate(view.ClientGate)
			if err != nil {
				return err
			}
			notifications, err := app.Client.NotificationsByClient(ctx, decision.User.ID)
			if err != nil {
				return err
			}
			if params.Unread {
				notifications = slices.DeleteFunc(notifications, func(n api.Notification) bool { return n.IsRead })
			}

			params.Output = streams.Out
			if done, err := params.EmitJSON(notifications); done {
				return err
			}
			if len(notifications) == 0 {
				app.Println("No notifications.")
				return nil
			}
			table := tabwriter.NewWriter(streams.Out, 2, 0, 2, ' ', 0)
			fmt.Fprintln(table, "ID\t\tTITLE\tMESSAGE")
			for _, notification := range notifications {
				marker := "*"
				if notification.IsRead {
					marker = ""
				}
				fmt.Fprintf(table, "%s\t%s\t%s\t%s\n",
					notification.ID, marker, notification.Title, tui.Truncate(notification.Message, 50))
			}
			table.Flush()
			unread, err := app.Client.UnreadNotificationCount(ctx, decision.User.ID)
			if err != nil {
				return err
			}
			app.Printf("%d unread\n", unread)
			return nil
		}),
	}
}

type notificationReadParams struct {
	Globals
}

func notificationReadCommand(streams Streams) *cli.Command {
	var params notificationReadParams
	return &cli.Command{
		Name:    "read",
		Summary: "Mark a notification read",
		Usage:   "jalai notification read <id>",
		Flags:   flags("read", &params),
		Run: withApp(streams, &params.Globals, func(ctx context.Context, app *App, args []string) error {
			if err := exactArgs(args, "id"); err != nil {
				return err
			}
			if _, err := app.gate(view.ClientGate); err != nil {
				return err
			}
			if err := app.Client.MarkNotificationRead(ctx, args[0]); err != nil {
				return err
			}
			app.Printf("Notification %s marked read\n", args[0])
			return nil
		}),
	}
}

// joinEnum renders wire enum values for help and error text.
func joinEnum[T ~string](values []T) string {
	names := make([]string, len(values))
	for i, value := range values {
		names[i] = string(value)
	}
	return strings.Join(names, ", ")
}
