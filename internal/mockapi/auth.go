// Copyright 2026 The JALAI Authors
// SPDX-License-Identifier: Apache-2.0

package mockapi

import (
	"fmt"
	"net/http"
	"net/mail"
	"strings"

	"github.com/gorilla/mux"

	"github.com/jalai-group/jalai/api"
)

type authResponse struct {
	AccessToken  string   `json:"accessToken"`
	RefreshToken string   `json:"refreshToken"`
	TokenType    string   `json:"tokenType"`
	ExpiresIn    int64    `json:"expiresIn"`
	User         api.User `json:"user"`
}

type refreshResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	TokenType    string `json:"tokenType"`
	ExpiresIn    int64  `json:"expiresIn"`
}

func (s *Server) authRoutes(r *mux.Router) {
	r.HandleFunc("/auth/login", s.handleLogin).Methods(http.MethodPost)
	r.HandleFunc("/auth/register/{role}", s.handleRegister).Methods(http.MethodPost)
	r.HandleFunc("/auth/refresh", s.handleRefresh).Methods(http.MethodPost)
	r.HandleFunc("/auth/logout", s.handleLogout).Methods(http.MethodPost)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	failures := map[string]string{}
	if strings.TrimSpace(body.Email) == "" {
		failures["email"] = "Email is required"
	}
	if body.Password == "" {
		failures["password"] = "Password is required"
	}
	if len(failures) > 0 {
		writeValidation(w, r, failures)
		return
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	record, ok := s.store.authenticate(strings.TrimSpace(body.Email), body.Password)
	if !ok {
		s.logger.Warn("login rejected", "email", body.Email)
		writeError(w, r, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	s.respondAuth(w, r, http.StatusOK, record.user)
}

func (s *Server) respondAuth(w http.ResponseWriter, r *http.Request, status int, user api.User) {
	credentials, err := s.credentials(user)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, status, authResponse{
		AccessToken:  credentials.AccessToken,
		RefreshToken: credentials.RefreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    s.expiresIn(),
		User:         user,
	})
}

// handleRegister creates a client or orphanage account. Orphanages
// start inactive until an administrator approves them.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	role, ok := api.ParseRole(mux.Vars(r)["role"])
	if !ok || role == api.RoleAdmin {
		writeError(w, r, http.StatusBadRequest, "Registration is only open to clients and orphanages")
		return
	}
	var fields map[string]any
	if !decodeBody(w, r, &fields) {
		return
	}
	text := func(key string) string {
		value, _ := fields[key].(string)
		return strings.TrimSpace(value)
	}

	failures := map[string]string{}
	if text("name") == "" {
		failures["name"] = "Name is required"
	}
	if _, err := mail.ParseAddress(text("email")); err != nil {
		failures["email"] = "A valid email is required"
	}
	if password, _ := fields["password"].(string); len(password) < 8 {
		failures["password"] = "Password must be at least 8 characters"
	}
	if role == api.RoleOrphanage && text("location") == "" {
		failures["location"] = "Location is required"
	}
	if len(failures) > 0 {
		writeValidation(w, r, failures)
		return
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	if _, exists := s.store.byEmail[strings.ToLower(text("email"))]; exists {
		writeError(w, r, http.StatusConflict, fmt.Sprintf("Email %s is already registered", text("email")))
		return
	}

	user := api.User{
		ID:       newID(),
		Name:     text("name"),
		Email:    text("email"),
		UserType: role,
		IsActive: role == api.RoleClient,
	}
	password, _ := fields["password"].(string)
	record, err := s.store.addAccount(user, password)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	record.location = text("location")
	switch role {
	case api.RoleClient:
		record.phone = text("phone")
	case api.RoleOrphanage:
		record.phone = text("phoneNumber")
		record.orphanage = &api.Orphanage{
			ID:            user.ID,
			Name:          user.Name,
			Email:         user.Email,
			Description:   text("description"),
			Location:      record.location,
			PhoneNumber:   record.phone,
			ContactPerson: text("contactPerson"),
		}
	}
	s.logger.Info("account registered", "id", user.ID, "role", role)
	s.respondAuth(w, r, http.StatusCreated, user)
}

// handleRefresh rotates the refresh token: the presented token is
// consumed and a new pair is issued.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var body struct {
		RefreshToken string `json:"refreshToken"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	grant, ok := s.store.refresh[body.RefreshToken]
	if !ok || !s.clock.Now().Before(grant.expires) {
		delete(s.store.refresh, body.RefreshToken)
		writeError(w, r, http.StatusUnauthorized, "Invalid or expired refresh token")
		return
	}
	delete(s.store.refresh, body.RefreshToken)
	record, ok := s.store.accounts[grant.userID]
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "Account no longer exists")
		return
	}
	credentials, err := s.credentials(record.user)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, refreshResponse{
		AccessToken:  credentials.AccessToken,
		RefreshToken: credentials.RefreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    s.expiresIn(),
	})
}

// handleLogout revokes the caller's refresh tokens when the bearer
// token is valid. It succeeds either way.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if caller, err := s.caller(r); err == nil {
		s.store.mu.Lock()
		s.revokeRefresh(caller.ID)
		s.store.mu.Unlock()
	}
	writeMessage(w, "Logged out successfully")
}
