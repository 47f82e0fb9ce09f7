// Copyright 2026 The JALAI Authors
// SPDX-License-Identifier: Apache-2.0

package view

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/jalai-group/jalai/api"
	"github.com/jalai-group/jalai/lib/tui"
)

// Currency is the suffix for monetary amounts.
const Currency = "FCFA"

// Renderer turns loaded views into terminal text.
type Renderer struct {
	Theme tui.Theme
	Width int
	// Now anchors relative times; zero means time.Now.
	Now time.Time
}

func (r Renderer) now() time.Time {
	if r.Now.IsZero() {
		return time.Now()
	}
	return r.Now
}

// Amount formats a monetary value with thousands separators.
func Amount(value float64) string {
	return humanize.CommafWithDigits(value, 2) + " " + Currency
}

// Decision renders the non-authorized states.
func (r Renderer) Decision(decision Decision) string {
	switch decision.State {
	case StateLoading:
		return r.Theme.Faint("Loading session…")
	case StateDenied:
		hint := "Run `jalai login` to sign in."
		if decision.Redirect == RedirectDashboard {
			hint = "Run `jalai dashboard` to open your own dashboard."
		}
		return r.Theme.Panel("Access Denied", r.Theme.Error(decision.Reason)+"\n"+r.Theme.Faint(hint), r.Width)
	case StatePendingApproval:
		body := decision.Reason + "\n" +
			r.Theme.Faint("Donation management unlocks once an administrator approves "+decision.User.Name+".")
		return r.Theme.Panel("Pending Approval", r.Theme.Badge("⏳ PENDING", r.Theme.StatusPending)+"  "+body, r.Width)
	default:
		return ""
	}
}

func (r Renderer) greeting(user api.User) string {
	role := r.Theme.Badge(string(user.UserType), r.Theme.RoleColor(string(user.UserType)))
	return fmt.Sprintf("%s  %s %s", role, r.Theme.Header(user.Name), r.Theme.Faint("<"+user.Email+">"))
}

// Admin renders the admin dashboard.
func (r Renderer) Admin(v *AdminView) string {
	if v.Decision.State != StateAuthorized || v.Data == nil {
		return r.Decision(v.Decision)
	}
	stats := v.Data.Stats
	var sections []string
	sections = append(sections, r.greeting(v.Decision.User))
	sections = append(sections, r.Theme.Panel("Platform", strings.Join([]string{
		fmt.Sprintf("Clients     %s", humanize.Comma(int64(stats.TotalClients))),
		fmt.Sprintf("Products    %s", humanize.Comma(int64(stats.TotalProducts))),
		fmt.Sprintf("Orders      %s", humanize.Comma(int64(stats.TotalOrders))),
		fmt.Sprintf("Orphanages  %s", humanize.Comma(int64(stats.TotalOrphanages))),
		fmt.Sprintf("Donations   %s", humanize.Comma(int64(stats.TotalDonations))),
		fmt.Sprintf("Revenue     %s", Amount(stats.TotalRevenue)),
	}, "\n"), r.Width))

	var pending []string
	for _, orphanage := range v.Data.PendingOrphanages {
		pending = append(pending, fmt.Sprintf("%s  %s %s",
			r.Theme.Badge("PENDING", r.Theme.StatusPending),
			orphanage.Name,
			r.Theme.Faint(orphanage.Location+" · "+orphanage.ID)))
	}
	if len(pending) == 0 {
		pending = append(pending, r.Theme.Faint("No orphanages awaiting approval."))
	}
	sections = append(sections, r.Theme.Panel("Awaiting approval", strings.Join(pending, "\n"), r.Width))
	sections = append(sections, r.Theme.Panel("Recent donations", r.donations(v.Data.RecentDonations), r.Width))
	return strings.Join(sections, "\n")
}

// Client renders the client dashboard.
func (r Renderer) Client(v *ClientView) string {
	if v.Decision.State != StateAuthorized || v.Data == nil {
		return r.Decision(v.Decision)
	}
	var sections []string
	sections = append(sections, r.greeting(v.Decision.User))
	sections = append(sections, r.Theme.Panel(
		fmt.Sprintf("My donations (%s given)", Amount(v.Data.TotalGiven)),
		r.donations(v.Data.Donations), r.Width))

	var orders []string
	for _, order := range v.Data.Orders {
		orders = append(orders, fmt.Sprintf("%s  %s  %s",
			r.status(string(order.Status)),
			tui.Truncate(order.OrderID, 12),
			Amount(order.TotalAmount)))
	}
	if len(orders) == 0 {
		orders = append(orders, r.Theme.Faint("No orders yet."))
	}
	sections = append(sections, r.Theme.Panel("Recent orders", strings.Join(orders, "\n"), r.Width))

	var notifications []string
	for _, notification := range v.Data.Notifications {
		marker := "  "
		if !notification.IsRead {
			marker = r.Theme.Badge("● ", r.Theme.Accent)
		}
		line := marker + notification.Title
		if notification.CreatedAt != nil {
			line += " " + r.Theme.Faint(humanize.RelTime(*notification.CreatedAt, r.now(), "ago", "from now"))
		}
		notifications = append(notifications, line)
	}
	if len(notifications) == 0 {
		notifications = append(notifications, r.Theme.Faint("No notifications."))
	}
	sections = append(sections, r.Theme.Panel(
		fmt.Sprintf("Notifications (%d unread)", v.Data.Unread),
		strings.Join(notifications, "\n"), r.Width))
	return strings.Join(sections, "\n")
}

// Orphanage renders the orphanage dashboard.
func (r Renderer) Orphanage(v *OrphanageView) string {
	if v.Decision.State != StateAuthorized || v.Data == nil {
		return r.Decision(v.Decision)
	}
	var sections []string
	sections = append(sections, r.greeting(v.Decision.User))
	sections = append(sections, r.Theme.Panel("Cash received", Amount(v.Data.TotalCash), r.Width))
	sections = append(sections, r.Theme.Panel(
		fmt.Sprintf("Awaiting confirmation (%d)", len(v.Data.Pending)),
		r.donations(v.Data.Pending), r.Width))
	sections = append(sections, r.Theme.Panel("All donations", r.donations(v.Data.Donations), r.Width))
	return strings.Join(sections, "\n")
}

// OrphanageProfile renders a public orphanage profile with its
// markdown description.
func (r Renderer) OrphanageProfile(orphanage api.Orphanage, color bool) string {
	lines := []string{
		r.Theme.Header(orphanage.Name) + "  " + r.Theme.Faint(orphanage.Location),
	}
	if orphanage.ContactPerson != "" || orphanage.PhoneNumber != "" {
		lines = append(lines, r.Theme.Faint(strings.TrimSpace("Contact: "+orphanage.ContactPerson+" "+orphanage.PhoneNumber)))
	}
	if orphanage.NumberOfChildren > 0 {
		lines = append(lines, fmt.Sprintf("%d children", orphanage.NumberOfChildren))
	}
	if description := tui.RenderMarkdown(orphanage.Description, r.Theme, r.Width-4, color); description != "" {
		lines = append(lines, "", description)
	}
	return r.Theme.Panel("", strings.Join(lines, "\n"), r.Width)
}

func (r Renderer) donations(donations []api.Donation) string {
	if len(donations) == 0 {
		return r.Theme.Faint("No donations.")
	}
	lines := make([]string, 0, len(donations))
	for _, donation := range donations {
		lines = append(lines, r.donationLine(donation))
	}
	return strings.Join(lines, "\n")
}

func (r Renderer) donationLine(donation api.Donation) string {
	what := donation.ItemDescription
	if donation.CashAmount != nil {
		what = Amount(*donation.CashAmount)
	}
	party := donation.OrphanageName
	if party == "" {
		party = donation.DonorName
	}
	line := fmt.Sprintf("%s  %s  %s  %s",
		r.status(string(donation.Status)),
		tui.Truncate(donation.ID, 12),
		string(donation.DonationType),
		what)
	if party != "" {
		line += "  " + r.Theme.Faint(party)
	}
	return tui.Truncate(line, max(r.Width-4, 20))
}

func (r Renderer) status(status string) string {
	return tui.PadRight(r.Theme.Badge(status, r.Theme.StatusColor(status)), 11)
}
