// Copyright 2026 The JALAI Authors
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// CreateDonation submits a donation.
func (c *Client) CreateDonation(ctx context.Context, donation CreateDonationRequest) (*Donation, error) {
	var created Donation
	if err := c.Do(ctx, http.MethodPost, "/donations", donation, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// GetDonation fetches one donation.
func (c *Client) GetDonation(ctx context.Context, id string) (*Donation, error) {
	var donation Donation
	if err := c.Do(ctx, http.MethodGet, "/donations/"+url.PathEscape(id), nil, &donation); err != nil {
		return nil, err
	}
	return &donation, nil
}

// ListDonations lists all donations (admin).
func (c *Client) ListDonations(ctx context.Context, page PageRequest) (*Page[Donation], error) {
	var result Page[Donation]
	if err := c.Do(ctx, http.MethodGet, withQuery("/donations", page.query()), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// DonationsByClient lists the donations a client made.
func (c *Client) DonationsByClient(ctx context.Context, clientID string) ([]Donation, error) {
	return c.donationList(ctx, "/donations/client/"+url.PathEscape(clientID))
}

// DonationsByOrphanage lists the donations addressed to an orphanage.
func (c *Client) DonationsByOrphanage(ctx context.Context, orphanageID string) ([]Donation, error) {
	return c.donationList(ctx, "/donations/orphanage/"+url.PathEscape(orphanageID))
}

// donationList accepts either a bare array or a page envelope; the
// backend returns both depending on the endpoint.
func (c *Client) donationList(ctx context.Context, path string) ([]Donation, error) {
	var raw json.RawMessage
	if err := c.Do(ctx, http.MethodGet, path, nil, &raw); err != nil {
		return nil, err
	}
	var list []Donation
	if json.Unmarshal(raw, &list) == nil {
		return list, nil
	}
	var page Page[Donation]
	if err := json.Unmarshal(raw, &page); err != nil {
		return nil, &DecodeError{Method: http.MethodGet, Path: path, Reason: "expected donation list or page", Err: err}
	}
	return page.Content, nil
}

// DonationAction is a server-side transition of a donation.
type DonationAction string

const (
	ActionConfirm  DonationAction = "confirm"
	ActionReject   DonationAction = "reject"
	ActionComplete DonationAction = "complete"
	ActionCancel   DonationAction = "cancel"
)

// ParseDonationAction validates an action name.
func ParseDonationAction(name string) (DonationAction, error) {
	switch action := DonationAction(name); action {
	case ActionConfirm, ActionReject, ActionComplete, ActionCancel:
		return action, nil
	}
	return "", fmt.Errorf("unknown donation action %q (want confirm, reject, complete, or cancel)", name)
}

// TransitionDonation runs POST /donations/{id}/{action}.
func (c *Client) TransitionDonation(ctx context.Context, id string, action DonationAction) (*Donation, error) {
	var donation Donation
	path := "/donations/" + url.PathEscape(id) + "/" + string(action)
	var raw *RawResponse
	if err := c.Do(ctx, http.MethodPost, path, nil, &raw); err != nil {
		return nil, err
	}
	if len(raw.Body) == 0 || json.Unmarshal(raw.Body, &donation) != nil {
		// Some transitions answer with a plain message.
		return &Donation{ID: id}, nil
	}
	return &donation, nil
}

// TotalCashForOrphanage returns the sum of cash donations received.
func (c *Client) TotalCashForOrphanage(ctx context.Context, orphanageID string) (float64, error) {
	var raw json.RawMessage
	if err := c.Do(ctx, http.MethodGet, "/donations/total-cash/orphanage/"+url.PathEscape(orphanageID), nil, &raw); err != nil {
		return 0, err
	}
	return decodeAmount(raw)
}

// decodeAmount accepts a bare number, a numeric string, or an object
// with a total field.
func decodeAmount(raw json.RawMessage) (float64, error) {
	var number float64
	if json.Unmarshal(raw, &number) == nil {
		return number, nil
	}
	var text string
	if json.Unmarshal(raw, &text) == nil {
		return strconv.ParseFloat(text, 64)
	}
	var wrapped struct {
		Total *float64 `json:"total"`
	}
	if json.Unmarshal(raw, &wrapped) == nil && wrapped.Total != nil {
		return *wrapped.Total, nil
	}
	return 0, &DecodeError{Reason: "expected a numeric total"}
}
