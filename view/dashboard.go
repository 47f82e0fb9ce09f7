// Copyright 2026 The JALAI Authors
// SPDX-License-Identifier: Apache-2.0

package view

import (
	"context"
	"fmt"
	"slices"

	"github.com/jalai-group/jalai/api"
	"github.com/jalai-group/jalai/session"
)

// RecentLimit bounds the recent-item lists on dashboards.
const RecentLimit = 5

// AdminAPI is what the admin dashboard calls.
type AdminAPI interface {
	DashboardStats(ctx context.Context) (*api.DashboardStats, error)
	AllOrphanages(ctx context.Context, page api.PageRequest) (*api.Page[api.Orphanage], error)
	ListDonations(ctx context.Context, page api.PageRequest) (*api.Page[api.Donation], error)
	ModerateOrphanage(ctx context.Context, id string, approve bool) error
}

// ClientAPI is what the client dashboard calls.
type ClientAPI interface {
	DonationsByClient(ctx context.Context, clientID string) ([]api.Donation, error)
	OrdersByClient(ctx context.Context, clientID string, page api.PageRequest) (*api.Page[api.Order], error)
	NotificationsByClient(ctx context.Context, clientID string) ([]api.Notification, error)
	TransitionDonation(ctx context.Context, id string, action api.DonationAction) (*api.Donation, error)
}

// OrphanageAPI is what the orphanage dashboard calls.
type OrphanageAPI interface {
	DonationsByOrphanage(ctx context.Context, orphanageID string) ([]api.Donation, error)
	TotalCashForOrphanage(ctx context.Context, orphanageID string) (float64, error)
	TransitionDonation(ctx context.Context, id string, action api.DonationAction) (*api.Donation, error)
}

// AdminData is the admin dashboard content.
type AdminData struct {
	Stats             api.DashboardStats
	PendingOrphanages []api.Orphanage
	RecentDonations   []api.Donation
}

// AdminView is a loaded admin dashboard. Data is nil unless the
// decision is Authorized.
type AdminView struct {
	Decision Decision
	Data     *AdminData
}

// AdminDashboard serves administrators.
type AdminDashboard struct {
	Session session.Reader
	API     AdminAPI
}

// Load evaluates the gate and, when authorized, fetches the content.
func (d *AdminDashboard) Load(ctx context.Context) (*AdminView, error) {
	decision := AdminGate.Evaluate(d.Session)
	if decision.State != StateAuthorized {
		return &AdminView{Decision: decision}, nil
	}

	stats, err := d.API.DashboardStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading statistics: %w", err)
	}
	pending, err := d.pendingOrphanages(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading orphanages: %w", err)
	}
	donations, err := d.API.ListDonations(ctx, api.PageRequest{Size: RecentLimit})
	if err != nil {
		return nil, fmt.Errorf("loading donations: %w", err)
	}

	data := &AdminData{
		Stats:             *stats,
		PendingOrphanages: pending,
		RecentDonations:   firstN(donations.Content, RecentLimit),
	}
	return &AdminView{Decision: decision, Data: data}, nil
}

// orphanagePageSize is the page size used to walk every orphanage.
const orphanagePageSize = 100

// pendingOrphanages pages through every orphanage and keeps the ones
// awaiting approval.
func (d *AdminDashboard) pendingOrphanages(ctx context.Context) ([]api.Orphanage, error) {
	var pending []api.Orphanage
	for number := 0; ; number++ {
		page, err := d.API.AllOrphanages(ctx, api.PageRequest{Page: number, Size: orphanagePageSize})
		if err != nil {
			return nil, err
		}
		for _, orphanage := range page.Content {
			if !orphanage.IsActive {
				pending = append(pending, orphanage)
			}
		}
		if page.Last || number+1 >= page.TotalPages || len(page.Content) < orphanagePageSize {
			return pending, nil
		}
	}
}

// ModerateOrphanage approves or rejects an orphanage registration.
func (d *AdminDashboard) ModerateOrphanage(ctx context.Context, id string, approve bool) error {
	if err := AdminGate.Evaluate(d.Session).Err(); err != nil {
		return err
	}
	return d.API.ModerateOrphanage(ctx, id, approve)
}

// ClientData is the client dashboard content.
type ClientData struct {
	Donations     []api.Donation
	Orders        []api.Order
	Notifications []api.Notification
	Unread        int
	TotalGiven    float64
}

// ClientView is a loaded client dashboard.
type ClientView struct {
	Decision Decision
	Data     *ClientData
}

// ClientDashboard serves clients.
type ClientDashboard struct {
	Session session.Reader
	API     ClientAPI
}

// Load evaluates the gate and, when authorized, fetches the content.
func (d *ClientDashboard) Load(ctx context.Context) (*ClientView, error) {
	decision := ClientGate.Evaluate(d.Session)
	if decision.State != StateAuthorized {
		return &ClientView{Decision: decision}, nil
	}
	clientID := decision.User.ID

	donations, err := d.API.DonationsByClient(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("loading donations: %w", err)
	}
	orders, err := d.API.OrdersByClient(ctx, clientID, api.PageRequest{Size: RecentLimit})
	if err != nil {
		return nil, fmt.Errorf("loading orders: %w", err)
	}
	notifications, err := d.API.NotificationsByClient(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("loading notifications: %w", err)
	}

	data := &ClientData{
		Donations:     donations,
		Orders:        firstN(orders.Content, RecentLimit),
		Notifications: notifications,
	}
	for _, notification := range notifications {
		if !notification.IsRead {
			data.Unread++
		}
	}
	for _, donation := range donations {
		if donation.CashAmount != nil && donation.Status != api.DonationCancelled {
			data.TotalGiven += *donation.CashAmount
		}
	}
	return &ClientView{Decision: decision, Data: data}, nil
}

// CancelDonation cancels one of the client's pending donations.
func (d *ClientDashboard) CancelDonation(ctx context.Context, id string) (*api.Donation, error) {
	if err := ClientGate.Evaluate(d.Session).Err(); err != nil {
		return nil, err
	}
	return d.API.TransitionDonation(ctx, id, api.ActionCancel)
}

// OrphanageData is the orphanage dashboard content.
type OrphanageData struct {
	Donations []api.Donation
	// Pending are donations awaiting confirmation.
	Pending   []api.Donation
	TotalCash float64
}

// OrphanageView is a loaded orphanage dashboard.
type OrphanageView struct {
	Decision Decision
	Data     *OrphanageData
}

// OrphanageDashboard serves orphanages. Inactive orphanages see the
// pending-approval notice and may not manage donations.
type OrphanageDashboard struct {
	Session session.Reader
	API     OrphanageAPI
}

// Load evaluates the gate and, when authorized, fetches the content.
func (d *OrphanageDashboard) Load(ctx context.Context) (*OrphanageView, error) {
	decision := OrphanageGate.Evaluate(d.Session)
	if decision.State != StateAuthorized {
		return &OrphanageView{Decision: decision}, nil
	}
	orphanageID := decision.User.ID

	donations, err := d.API.DonationsByOrphanage(ctx, orphanageID)
	if err != nil {
		return nil, fmt.Errorf("loading donations: %w", err)
	}
	total, err := d.API.TotalCashForOrphanage(ctx, orphanageID)
	if err != nil {
		return nil, fmt.Errorf("loading donation total: %w", err)
	}
	data := &OrphanageData{Donations: donations, TotalCash: total}
	for _, donation := range donations {
		if donation.Status == api.DonationPending {
			data.Pending = append(data.Pending, donation)
		}
	}
	return &OrphanageView{Decision: decision, Data: data}, nil
}

// Confirm accepts a pending donation.
func (d *OrphanageDashboard) Confirm(ctx context.Context, id string) (*api.Donation, error) {
	return d.transition(ctx, id, api.ActionConfirm)
}

// Reject declines a pending donation.
func (d *OrphanageDashboard) Reject(ctx context.Context, id string) (*api.Donation, error) {
	return d.transition(ctx, id, api.ActionReject)
}

// Complete marks a confirmed donation as received.
func (d *OrphanageDashboard) Complete(ctx context.Context, id string) (*api.Donation, error) {
	return d.transition(ctx, id, api.ActionComplete)
}

func (d *OrphanageDashboard) transition(ctx context.Context, id string, action api.DonationAction) (*api.Donation, error) {
	if err := OrphanageGate.Evaluate(d.Session).Err(); err != nil {
		return nil, err
	}
	return d.API.TransitionDonation(ctx, id, action)
}

func firstN[T any](items []T, n int) []T {
	if len(items) > n {
		return slices.Clone(items[:n])
	}
	return items
}
