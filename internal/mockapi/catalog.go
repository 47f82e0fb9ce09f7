// Copyright 2026 The JALAI Authors
// SPDX-License-Identifier: Apache-2.0

package mockapi

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/jalai-group/jalai/api"
)

func (s *Server) catalogRoutes(r *mux.Router) {
	r.HandleFunc("/categories/public", s.handleCategories).Methods(http.MethodGet)

	// Fixed paths register before /products/{id} so they win.
	r.HandleFunc("/products/approved", s.handleApprovedProducts).Methods(http.MethodGet)
	r.HandleFunc("/products/search", s.handleSearchProducts).Methods(http.MethodGet)
	r.HandleFunc("/products/approved/category/{name}", s.handleProductsByCategory).Methods(http.MethodGet)
	r.HandleFunc("/products/{id}", s.handleGetProduct).Methods(http.MethodGet)
	r.HandleFunc("/products", s.protect(s.handleCreateProduct, api.RoleClient, api.RoleAdmin)).Methods(http.MethodPost)
	r.HandleFunc("/products/{id}/{action:approve|reject}", s.protect(s.handleModerateProduct, api.RoleAdmin)).Methods(http.MethodPut)

	r.HandleFunc("/orphanages/public", s.handlePublicOrphanages).Methods(http.MethodGet)
	r.HandleFunc("/orphanages", s.protect(s.handleAllOrphanages, api.RoleAdmin)).Methods(http.MethodGet)
	r.HandleFunc("/orphanages/{id}", s.protect(s.handleGetOrphanage)).Methods(http.MethodGet)
	r.HandleFunc("/orphanages/{id}/{action:approve|reject}", s.protect(s.handleModerateOrphanage, api.RoleAdmin)).Methods(http.MethodPost)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	categories := []api.Category{}
	for _, category := range s.store.categories {
		if category.IsActive {
			categories = append(categories, category)
		}
	}
	writeJSON(w, http.StatusOK, categories)
}

// approvedProducts returns listed products matching keep. Caller holds mu.
func (s *Server) approvedProducts(keep func(*api.Product) bool) []api.Product {
	var result []api.Product
	for _, product := range sortedValues(s.store.products, func(p *api.Product) string { return p.ID }) {
		if product.IsApproved && product.IsAvailable && keep(&product) {
			result = append(result, product)
		}
	}
	return result
}

func (s *Server) handleApprovedProducts(w http.ResponseWriter, r *http.Request) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	writeJSON(w, http.StatusOK, paginate(r, s.approvedProducts(func(*api.Product) bool { return true })))
}

func (s *Server) handleSearchProducts(w http.ResponseWriter, r *http.Request) {
	keyword := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("keyword")))
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	writeJSON(w, http.StatusOK, paginate(r, s.approvedProducts(func(p *api.Product) bool {
		return strings.Contains(strings.ToLower(p.Name), keyword) ||
			strings.Contains(strings.ToLower(p.Description), keyword)
	})))
}

func (s *Server) handleProductsByCategory(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	writeJSON(w, http.StatusOK, paginate(r, s.approvedProducts(func(p *api.Product) bool {
		return strings.EqualFold(p.CategoryName, name)
	})))
}

func (s *Server) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	product, ok := s.store.products[mux.Vars(r)["id"]]
	if !ok {
		writeError(w, r, http.StatusNotFound, "Product not found")
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (s *Server) handleCreateProduct(w http.ResponseWriter, r *http.Request, caller api.User) {
	var body api.CreateProductRequest
	if !decodeBody(w, r, &body) {
		return
	}
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	failures := map[string]string{}
	if strings.TrimSpace(body.Name) == "" {
		failures["name"] = "Name is required"
	}
	if body.Price <= 0 {
		failures["price"] = "Price must be positive"
	}
	categoryName := s.store.categoryName(body.CategoryID)
	if categoryName == "" {
		failures["categoryId"] = "Unknown category"
	}
	if body.ImageID != "" {
		if _, ok := s.store.images[body.ImageID]; !ok {
			failures["imageId"] = "Unknown image"
		}
	}
	if len(failures) > 0 {
		writeValidation(w, r, failures)
		return
	}

	product := &api.Product{
		ID:           newID(),
		Name:         strings.TrimSpace(body.Name),
		Description:  body.Description,
		Price:        body.Price,
		CategoryID:   body.CategoryID,
		CategoryName: categoryName,
		SellerID:     caller.ID,
		SellerName:   caller.Name,
		IsAvailable:  true,
		Status:       "PENDING",
	}
	if body.ImageID != "" {
		product.ImageURL = "/api/images/" + body.ImageID
	}
	s.store.products[product.ID] = product
	writeJSON(w, http.StatusCreated, product)
}

func (s *Server) handleModerateProduct(w http.ResponseWriter, r *http.Request, _ api.User) {
	vars := mux.Vars(r)
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	product, ok := s.store.products[vars["id"]]
	if !ok {
		writeError(w, r, http.StatusNotFound, "Product not found")
		return
	}
	if vars["action"] == "approve" {
		product.IsApproved, product.Status = true, "APPROVED"
	} else {
		product.IsApproved, product.Status = false, "REJECTED"
	}
	writeJSON(w, http.StatusOK, product)
}

func (s *Server) handlePublicOrphanages(w http.ResponseWriter, r *http.Request) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	writeJSON(w, http.StatusOK, paginate(r, s.store.orphanages(false)))
}

func (s *Server) handleAllOrphanages(w http.ResponseWriter, r *http.Request, _ api.User) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	writeJSON(w, http.StatusOK, paginate(r, s.store.orphanages(true)))
}

// handleGetOrphanage hides inactive profiles from everyone except
// administrators and the orphanage itself.
func (s *Server) handleGetOrphanage(w http.ResponseWriter, r *http.Request, caller api.User) {
	id := mux.Vars(r)["id"]
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	record, ok := s.store.accounts[id]
	if !ok || record.orphanage == nil || (!record.orphanage.IsActive && !selfOrAdmin(caller, id)) {
		writeError(w, r, http.StatusNotFound, "Orphanage not found")
		return
	}
	profile := *record.orphanage
	profile.TotalDonationsReceived = s.store.cashTotal(id)
	writeJSON(w, http.StatusOK, profile)
}

// handleModerateOrphanage activates or deactivates an orphanage
// account together with its profile.
func (s *Server) handleModerateOrphanage(w http.ResponseWriter, r *http.Request, _ api.User) {
	vars := mux.Vars(r)
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	record, ok := s.store.accounts[vars["id"]]
	if !ok || record.orphanage == nil {
		writeError(w, r, http.StatusNotFound, "Orphanage not found")
		return
	}
	active := vars["action"] == "approve"
	record.user.IsActive = active
	record.orphanage.IsActive = active
	s.logger.Info("orphanage moderated", "id", record.user.ID, "active", active)
	if active {
		writeMessage(w, "Orphanage approved")
		return
	}
	writeMessage(w, "Orphanage rejected")
}
