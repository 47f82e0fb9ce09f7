// Copyright 2026 The JALAI Authors
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
)

// ListOrders lists all orders (admin).
func (c *Client) ListOrders(ctx context.Context, page PageRequest) (*Page[Order], error) {
	var result Page[Order]
	if err := c.Do(ctx, http.MethodGet, withQuery("/orders", page.query()), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// OrdersByClient lists a client's orders.
func (c *Client) OrdersByClient(ctx context.Context, clientID string, page PageRequest) (*Page[Order], error) {
	var result Page[Order]
	if err := c.Do(ctx, http.MethodGet, withQuery("/orders/client/"+url.PathEscape(clientID), page.query()), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetOrder fetches one order.
func (c *Client) GetOrder(ctx context.Context, id string) (*Order, error) {
	var order Order
	if err := c.Do(ctx, http.MethodGet, "/orders/"+url.PathEscape(id), nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// UpdateOrderStatus moves an order to status.
func (c *Client) UpdateOrderStatus(ctx context.Context, id string, status OrderStatus) error {
	path := withQuery("/orders/"+url.PathEscape(id)+"/status", url.Values{"status": {string(status)}})
	return c.Do(ctx, http.MethodPut, path, nil, nil)
}

// ListReviews lists reviews (admin moderation queue).
func (c *Client) ListReviews(ctx context.Context, page PageRequest) (*Page[Review], error) {
	var result Page[Review]
	if err := c.Do(ctx, http.MethodGet, withQuery("/reviews", page.query()), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CreateReview posts a product review.
func (c *Client) CreateReview(ctx context.Context, review Review) (*Review, error) {
	var created Review
	if err := c.Do(ctx, http.MethodPost, "/reviews", review, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// ModerateReview approves or rejects a review (admin).
func (c *Client) ModerateReview(ctx context.Context, id string, approve bool) error {
	action := "reject"
	if approve {
		action = "approve"
	}
	return c.Do(ctx, http.MethodPost, "/reviews/"+url.PathEscape(id)+"/"+action, nil, nil)
}

// ListPayments lists payments (admin).
func (c *Client) ListPayments(ctx context.Context, page PageRequest) (*Page[Payment], error) {
	var result Page[Payment]
	if err := c.Do(ctx, http.MethodGet, withQuery("/payments", page.query()), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CreatePayment records a payment.
func (c *Client) CreatePayment(ctx context.Context, payment Payment) (*Payment, error) {
	var created Payment
	if err := c.Do(ctx, http.MethodPost, "/payments", payment, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// Clients lists client accounts (admin).
func (c *Client) Clients(ctx context.Context, page PageRequest) (*Page[ClientSummary], error) {
	var result Page[ClientSummary]
	if err := c.Do(ctx, http.MethodGet, withQuery("/admin/clients", page.query()), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// DashboardStats returns the admin overview counters.
func (c *Client) DashboardStats(ctx context.Context) (*DashboardStats, error) {
	var stats DashboardStats
	if err := c.Do(ctx, http.MethodGet, "/admin/dashboard/stats", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// NotificationsByClient lists a client's notifications.
func (c *Client) NotificationsByClient(ctx context.Context, clientID string) ([]Notification, error) {
	var notifications []Notification
	if err := c.Do(ctx, http.MethodGet, "/notifications/client/"+url.PathEscape(clientID), nil, &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}

// UnreadNotificationCount returns the client's unread count.
func (c *Client) UnreadNotificationCount(ctx context.Context, clientID string) (int, error) {
	var raw json.RawMessage
	if err := c.Do(ctx, http.MethodGet, "/notifications/client/"+url.PathEscape(clientID)+"/unread/count", nil, &raw); err != nil {
		return 0, err
	}
	count, err := decodeAmount(raw)
	if err != nil {
		var wrapped struct {
			Count int `json:"count"`
		}
		if json.Unmarshal(raw, &wrapped) == nil {
			return wrapped.Count, nil
		}
		return 0, err
	}
	return int(count), nil
}

// MarkNotificationRead marks one notification read.
func (c *Client) MarkNotificationRead(ctx context.Context, id string) error {
	return c.Do(ctx, http.MethodPut, "/notifications/"+url.PathEscape(id)+"/read", nil, nil)
}
