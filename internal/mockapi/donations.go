// Copyright 2026 The JALAI Authors
// SPDX-License-Identifier: Apache-2.0

package mockapi

import (
	"cmp"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/jalai-group/jalai/api"
)

func (s *Server) donationRoutes(r *mux.Router) {
	r.HandleFunc("/donations", s.protect(s.handleCreateDonation, api.RoleClient)).Methods(http.MethodPost)
	r.HandleFunc("/donations", s.protect(s.handleListDonations, api.RoleAdmin)).Methods(http.MethodGet)
	r.HandleFunc("/donations/client/{id}", s.protect(s.handleClientDonations)).Methods(http.MethodGet)
	r.HandleFunc("/donations/orphanage/{id}", s.protect(s.handleOrphanageDonations)).Methods(http.MethodGet)
	r.HandleFunc("/donations/total-cash/orphanage/{id}", s.protect(s.handleTotalCash)).Methods(http.MethodGet)
	r.HandleFunc("/donations/{id}", s.protect(s.handleGetDonation)).Methods(http.MethodGet)
	r.HandleFunc("/donations/{id}/{action:confirm|reject|complete|cancel}", s.protect(s.handleTransitionDonation)).Methods(http.MethodPost)
}

// newestFirst orders donations by creation time, newest first.
func newestFirst(donations []api.Donation) []api.Donation {
	slices.SortStableFunc(donations, func(a, b api.Donation) int {
		var at, bt time.Time
		if a.CreatedAt != nil {
			at = *a.CreatedAt
		}
		if b.CreatedAt != nil {
			bt = *b.CreatedAt
		}
		return cmp.Or(bt.Compare(at), cmp.Compare(a.ID, b.ID))
	})
	return donations
}

// donationsWhere returns matching donations, newest first. Caller holds mu.
func (s *Server) donationsWhere(keep func(*api.Donation) bool) []api.Donation {
	result := []api.Donation{}
	for _, donation := range s.store.donations {
		if keep(donation) {
			result = append(result, *donation)
		}
	}
	return newestFirst(result)
}

func (s *Server) handleCreateDonation(w http.ResponseWriter, r *http.Request, caller api.User) {
	var body api.CreateDonationRequest
	if !decodeBody(w, r, &body) {
		return
	}
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	failures := map[string]string{}
	if body.ClientID != "" && body.ClientID != caller.ID {
		failures["clientId"] = "Donations can only be made on your own behalf"
	}
	target, ok := s.store.accounts[body.OrphanageID]
	if !ok || target.orphanage == nil {
		failures["orphanageId"] = "Unknown orphanage"
	} else if !target.orphanage.IsActive {
		failures["orphanageId"] = "Orphanage is not accepting donations"
	}
	switch body.DonationType {
	case api.DonationCash:
		if body.CashAmount == nil || *body.CashAmount <= 0 {
			failures["cashAmount"] = "Cash amount must be positive"
		}
	case api.DonationKind:
		if strings.TrimSpace(body.ItemDescription) == "" {
			failures["itemDescription"] = "Item description is required"
		}
	case api.DonationBoth:
		if body.CashAmount == nil || *body.CashAmount <= 0 {
			failures["cashAmount"] = "Cash amount must be positive"
		}
		if strings.TrimSpace(body.ItemDescription) == "" {
			failures["itemDescription"] = "Item description is required"
		}
	default:
		failures["donationType"] = "Donation type must be CASH, KIND or BOTH"
	}
	if body.AppointmentDate != "" {
		if _, err := time.Parse(time.DateOnly, body.AppointmentDate); err != nil {
			failures["appointmentDate"] = "Appointment date must be YYYY-MM-DD"
		}
	}
	if len(failures) > 0 {
		writeValidation(w, r, failures)
		return
	}

	now := s.clock.Now()
	donation := &api.Donation{
		ID:              newID(),
		UserID:          caller.ID,
		DonorName:       caller.Name,
		OrphanageID:     body.OrphanageID,
		OrphanageName:   target.orphanage.Name,
		DonationType:    body.DonationType,
		Status:          api.DonationPending,
		CashAmount:      body.CashAmount,
		ItemDescription: body.ItemDescription,
		AppointmentDate: body.AppointmentDate,
		CreatedAt:       &now,
	}
	s.store.donations[donation.ID] = donation
	s.notify(caller.ID, "Donation submitted", fmt.Sprintf("Your donation to %s is awaiting confirmation.", donation.OrphanageName))
	s.logger.Info("donation created", "id", donation.ID, "orphanage", donation.OrphanageID, "type", donation.DonationType)
	writeJSON(w, http.StatusCreated, donation)
}

func (s *Server) handleListDonations(w http.ResponseWriter, r *http.Request, _ api.User) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	writeJSON(w, http.StatusOK, paginate(r, s.donationsWhere(func(*api.Donation) bool { return true })))
}

func (s *Server) handleClientDonations(w http.ResponseWriter, r *http.Request, caller api.User) {
	id := mux.Vars(r)["id"]
	if !selfOrAdmin(caller, id) {
		writeError(w, r, http.StatusForbidden, "Access denied")
		return
	}
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	writeJSON(w, http.StatusOK, s.donationsWhere(func(d *api.Donation) bool { return d.UserID == id }))
}

func (s *Server) handleOrphanageDonations(w http.ResponseWriter, r *http.Request, caller api.User) {
	id := mux.Vars(r)["id"]
	if !selfOrAdmin(caller, id) {
		writeError(w, r, http.StatusForbidden, "Access denied")
		return
	}
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	writeJSON(w, http.StatusOK, s.donationsWhere(func(d *api.Donation) bool { return d.OrphanageID == id }))
}

// handleTotalCash answers with a bare number.
func (s *Server) handleTotalCash(w http.ResponseWriter, r *http.Request, caller api.User) {
	id := mux.Vars(r)["id"]
	if !selfOrAdmin(caller, id) {
		writeError(w, r, http.StatusForbidden, "Access denied")
		return
	}
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	writeJSON(w, http.StatusOK, s.store.cashTotal(id))
}

func (s *Server) handleGetDonation(w http.ResponseWriter, r *http.Request, caller api.User) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	donation, ok := s.store.donations[mux.Vars(r)["id"]]
	if !ok {
		writeError(w, r, http.StatusNotFound, "Donation not found")
		return
	}
	if !selfOrAdmin(caller, donation.UserID) && caller.ID != donation.OrphanageID {
		writeError(w, r, http.StatusForbidden, "Access denied")
		return
	}
	writeJSON(w, http.StatusOK, donation)
}

// donationTransitions maps an action to the statuses it may start
// from and the status it produces.
var donationTransitions = map[api.DonationAction]struct {
	from []api.DonationStatus
	to   api.DonationStatus
}{
	api.ActionConfirm:  {from: []api.DonationStatus{api.DonationPending}, to: api.DonationConfirmed},
	api.ActionReject:   {from: []api.DonationStatus{api.DonationPending}, to: api.DonationCancelled},
	api.ActionComplete: {from: []api.DonationStatus{api.DonationConfirmed, api.DonationInProgress}, to: api.DonationCompleted},
	api.ActionCancel:   {from: []api.DonationStatus{api.DonationPending, api.DonationConfirmed}, to: api.DonationCancelled},
}

// handleTransitionDonation applies confirm, reject and complete for
// the receiving orphanage (which must be active) and cancel for the
// donor. Administrators may apply any action.
func (s *Server) handleTransitionDonation(w http.ResponseWriter, r *http.Request, caller api.User) {
	vars := mux.Vars(r)
	action := api.DonationAction(vars["action"])

	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	donation, ok := s.store.donations[vars["id"]]
	if !ok {
		writeError(w, r, http.StatusNotFound, "Donation not found")
		return
	}

	switch {
	case caller.UserType == api.RoleAdmin:
	case action == api.ActionCancel:
		if caller.ID != donation.UserID {
			writeError(w, r, http.StatusForbidden, "Only the donor can cancel a donation")
			return
		}
	default:
		if caller.UserType != api.RoleOrphanage || caller.ID != donation.OrphanageID {
			writeError(w, r, http.StatusForbidden, "Only the receiving orphanage can "+string(action)+" a donation")
			return
		}
		if !caller.IsActive {
			writeError(w, r, http.StatusForbidden, "Orphanage account is pending approval")
			return
		}
	}

	transition := donationTransitions[action]
	if !slices.Contains(transition.from, donation.Status) {
		writeError(w, r, http.StatusConflict, fmt.Sprintf("Cannot %s a donation that is %s", action, donation.Status))
		return
	}
	donation.Status = transition.to
	if action == api.ActionConfirm {
		donation.IsConfirmed = true
	}
	s.notify(donation.UserID, "Donation "+strings.ToLower(string(donation.Status)),
		fmt.Sprintf("Your donation to %s is now %s.", donation.OrphanageName, strings.ToLower(string(donation.Status))))
	s.logger.Info("donation transitioned", "id", donation.ID, "action", action, "status", donation.Status)
	writeJSON(w, http.StatusOK, donation)
}

// notify adds an unread notification for clientID. Caller holds mu.
func (s *Server) notify(clientID, title, message string) {
	now := s.clock.Now()
	id := newID()
	s.store.notifications[id] = &notificationRecord{clientID: clientID, Notification: api.Notification{
		ID: id, Title: title, Message: message, Type: "DONATION", CreatedAt: &now,
	}}
}
