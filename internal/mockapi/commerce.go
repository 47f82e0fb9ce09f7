// Copyright 2026 The JALAI Authors
// SPDX-License-Identifier: Apache-2.0

package mockapi

import (
	"cmp"
	"net/http"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/jalai-group/jalai/api"
)

func (s *Server) commerceRoutes(r *mux.Router) {
	r.HandleFunc("/orders", s.protect(s.handleListOrders, api.RoleAdmin)).Methods(http.MethodGet)
	r.HandleFunc("/orders/client/{id}", s.protect(s.handleClientOrders)).Methods(http.MethodGet)
	r.HandleFunc("/orders/{id}", s.protect(s.handleGetOrder)).Methods(http.MethodGet)
	r.HandleFunc("/orders/{id}/status", s.protect(s.handleOrderStatus, api.RoleAdmin)).Methods(http.MethodPut)

	r.HandleFunc("/reviews", s.protect(s.handleListReviews, api.RoleAdmin)).Methods(http.MethodGet)
	r.HandleFunc("/reviews", s.protect(s.handleCreateReview, api.RoleClient)).Methods(http.MethodPost)
	r.HandleFunc("/reviews/{id}/{action:approve|reject}", s.protect(s.handleModerateReview, api.RoleAdmin)).Methods(http.MethodPost)

	r.HandleFunc("/payments", s.protect(s.handleListPayments, api.RoleAdmin)).Methods(http.MethodGet)
	r.HandleFunc("/payments", s.protect(s.handleCreatePayment, api.RoleClient)).Methods(http.MethodPost)

	r.HandleFunc("/admin/clients", s.protect(s.handleClients, api.RoleAdmin)).Methods(http.MethodGet)
	r.HandleFunc("/admin/dashboard/stats", s.protect(s.handleStats, api.RoleAdmin)).Methods(http.MethodGet)

	r.HandleFunc("/notifications/client/{id}", s.protect(s.handleNotifications)).Methods(http.MethodGet)
	r.HandleFunc("/notifications/client/{id}/unread/count", s.protect(s.handleUnreadCount)).Methods(http.MethodGet)
	r.HandleFunc("/notifications/{id}/read", s.protect(s.handleMarkRead)).Methods(http.MethodPut)
}

func (s *Server) orders(keep func(*api.Order) bool) []api.Order {
	result := []api.Order{}
	for _, order := range sortedValues(s.store.orders, func(o *api.Order) string { return o.OrderID }) {
		if keep(&order) {
			result = append(result, order)
		}
	}
	return result
}

func (s *Server) handleListOrders(w http.ResponseWriter, r *http.Request, _ api.User) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	writeJSON(w, http.StatusOK, paginate(r, s.orders(func(*api.Order) bool { return true })))
}

func (s *Server) handleClientOrders(w http.ResponseWriter, r *http.Request, caller api.User) {
	id := mux.Vars(r)["id"]
	if !selfOrAdmin(caller, id) {
		writeError(w, r, http.StatusForbidden, "Access denied")
		return
	}
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	writeJSON(w, http.StatusOK, paginate(r, s.orders(func(o *api.Order) bool { return o.ClientID == id })))
}

func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request, caller api.User) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	order, ok := s.store.orders[mux.Vars(r)["id"]]
	if !ok {
		writeError(w, r, http.StatusNotFound, "Order not found")
		return
	}
	if !selfOrAdmin(caller, order.ClientID) {
		writeError(w, r, http.StatusForbidden, "Access denied")
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (s *Server) handleOrderStatus(w http.ResponseWriter, r *http.Request, _ api.User) {
	status := api.OrderStatus(strings.ToUpper(r.URL.Query().Get("status")))
	if !slices.Contains(api.OrderStatuses, status) {
		writeValidation(w, r, map[string]string{"status": "Unknown order status"})
		return
	}
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	order, ok := s.store.orders[mux.Vars(r)["id"]]
	if !ok {
		writeError(w, r, http.StatusNotFound, "Order not found")
		return
	}
	order.Status = status
	writeJSON(w, http.StatusOK, order)
}

func (s *Server) handleListReviews(w http.ResponseWriter, r *http.Request, _ api.User) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	writeJSON(w, http.StatusOK, paginate(r, sortedValues(s.store.reviews, func(v *api.Review) string { return v.ReviewID })))
}

func (s *Server) handleCreateReview(w http.ResponseWriter, r *http.Request, caller api.User) {
	var body api.Review
	if !decodeBody(w, r, &body) {
		return
	}
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	failures := map[string]string{}
	if body.Rating < 1 || body.Rating > 5 {
		failures["rating"] = "Rating must be between 1 and 5"
	}
	if _, ok := s.store.products[body.ProductID]; !ok {
		failures["productId"] = "Unknown product"
	}
	if len(failures) > 0 {
		writeValidation(w, r, failures)
		return
	}
	review := &api.Review{
		ReviewID:  newID(),
		ClientID:  caller.ID,
		ProductID: body.ProductID,
		Rating:    body.Rating,
		Comment:   body.Comment,
		Status:    "PENDING",
	}
	s.store.reviews[review.ReviewID] = review
	writeJSON(w, http.StatusCreated, review)
}

func (s *Server) handleModerateReview(w http.ResponseWriter, r *http.Request, _ api.User) {
	vars := mux.Vars(r)
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	review, ok := s.store.reviews[vars["id"]]
	if !ok {
		writeError(w, r, http.StatusNotFound, "Review not found")
		return
	}
	review.Status = "REJECTED"
	if vars["action"] == "approve" {
		review.Status = "APPROVED"
	}
	writeJSON(w, http.StatusOK, review)
}

func (s *Server) handleListPayments(w http.ResponseWriter, r *http.Request, _ api.User) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	writeJSON(w, http.StatusOK, paginate(r, sortedValues(s.store.payments, func(p *api.Payment) string { return p.PaymentID })))
}

// handleCreatePayment settles immediately; there is no processor.
func (s *Server) handleCreatePayment(w http.ResponseWriter, r *http.Request, caller api.User) {
	var body api.Payment
	if !decodeBody(w, r, &body) {
		return
	}
	failures := map[string]string{}
	if body.Amount <= 0 {
		failures["amount"] = "Amount must be positive"
	}
	if !slices.Contains(api.PaymentMethods, body.PaymentMethod) {
		failures["paymentMethod"] = "Unknown payment method"
	}
	if len(failures) > 0 {
		writeValidation(w, r, failures)
		return
	}
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	payment := body
	payment.PaymentID = newID()
	payment.CustomerID = caller.ID
	payment.Status = "COMPLETED"
	payment.TransactionID = "TXN-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:12])
	s.store.payments[payment.PaymentID] = &payment
	writeJSON(w, http.StatusCreated, payment)
}

func (s *Server) handleClients(w http.ResponseWriter, r *http.Request, _ api.User) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	var clients []api.ClientSummary
	for _, record := range s.store.accounts {
		if record.user.UserType != api.RoleClient {
			continue
		}
		summary := api.ClientSummary{
			ID:       record.user.ID,
			Name:     record.user.Name,
			Email:    record.user.Email,
			Phone:    record.phone,
			Location: record.location,
			IsActive: record.user.IsActive,
		}
		for _, order := range s.store.orders {
			if order.ClientID == summary.ID {
				summary.TotalOrders++
				summary.TotalSpent += order.TotalAmount
			}
		}
		clients = append(clients, summary)
	}
	slices.SortFunc(clients, func(a, b api.ClientSummary) int { return cmp.Compare(a.ID, b.ID) })
	writeJSON(w, http.StatusOK, paginate(r, clients))
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request, _ api.User) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	var stats api.DashboardStats
	for _, record := range s.store.accounts {
		switch record.user.UserType {
		case api.RoleClient:
			stats.TotalClients++
		case api.RoleOrphanage:
			stats.TotalOrphanages++
		}
	}
	stats.TotalProducts = len(s.store.products)
	stats.TotalOrders = len(s.store.orders)
	stats.TotalDonations = len(s.store.donations)
	for _, order := range s.store.orders {
		if order.Status != api.OrderCancelled && order.Status != api.OrderRefunded {
			stats.TotalRevenue += order.TotalAmount
		}
	}
	writeJSON(w, http.StatusOK, stats)
}

// clientNotifications returns a client's notifications, newest first.
// Caller holds mu.
func (s *Server) clientNotifications(clientID string) []api.Notification {
	result := []api.Notification{}
	for _, record := range s.store.notifications {
		if record.clientID == clientID {
			result = append(result, record.Notification)
		}
	}
	slices.SortFunc(result, func(a, b api.Notification) int {
		if a.CreatedAt != nil && b.CreatedAt != nil {
			if order := b.CreatedAt.Compare(*a.CreatedAt); order != 0 {
				return order
			}
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return result
}

func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request, caller api.User) {
	id := mux.Vars(r)["id"]
	if !selfOrAdmin(caller, id) {
		writeError(w, r, http.StatusForbidden, "Access denied")
		return
	}
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	writeJSON(w, http.StatusOK, s.clientNotifications(id))
}

func (s *Server) handleUnreadCount(w http.ResponseWriter, r *http.Request, caller api.User) {
	id := mux.Vars(r)["id"]
	if !selfOrAdmin(caller, id) {
		writeError(w, r, http.StatusForbidden, "Access denied")
		return
	}
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	count := 0
	for _, notification := range s.clientNotifications(id) {
		if !notification.IsRead {
			count++
		}
	}
	writeJSON(w, http.StatusOK, map[string]int{"count": count})
}

func (s *Server) handleMarkRead(w http.ResponseWriter, r *http.Request, caller api.User) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	record, ok := s.store.notifications[mux.Vars(r)["id"]]
	if !ok || !selfOrAdmin(caller, record.clientID) {
		writeError(w, r, http.StatusNotFound, "Notification not found")
		return
	}
	record.IsRead = true
	writeJSON(w, http.StatusOK, record.Notification)
}
