// Copyright 2026 The JALAI Authors
// SPDX-License-Identifier: Apache-2.0

package mockapi

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"golang.org/x/crypto/bcrypt"

	"github.com/jalai-group/jalai/api"
	"github.com/jalai-group/jalai/lib/clock"
)

// Options configures a Server. The zero value is usable.
type Options struct {
	Logger *slog.Logger
	Clock  clock.Clock

	// Secret signs access tokens. A random key is generated when nil.
	Secret []byte

	// AccessTTL defaults to 15 minutes, RefreshTTL to 7 days.
	AccessTTL  time.Duration
	RefreshTTL time.Duration

	// HashCost is the bcrypt cost for passwords. Tests use
	// bcrypt.MinCost. Defaults to bcrypt.DefaultCost.
	HashCost int

	// Empty skips the demo data set.
	Empty bool
}

// Server is the mock backend.
type Server struct {
	logger     *slog.Logger
	clock      clock.Clock
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	store      *store
	handler    http.Handler

	requestsMu sync.Mutex
	requests   []string
}

// New returns a seeded Server.
func New(options Options) (*Server, error) {
	server := &Server{
		logger:     options.Logger,
		clock:      options.Clock,
		secret:     options.Secret,
		accessTTL:  options.AccessTTL,
		refreshTTL: options.RefreshTTL,
	}
	if server.logger == nil {
		server.logger = slog.New(slog.DiscardHandler)
	}
	if server.clock == nil {
		server.clock = clock.Real()
	}
	if server.accessTTL <= 0 {
		server.accessTTL = 15 * time.Minute
	}
	if server.refreshTTL <= 0 {
		server.refreshTTL = 7 * 24 * time.Hour
	}
	if len(server.secret) == 0 {
		server.secret = make([]byte, 32)
		if _, err := rand.Read(server.secret); err != nil {
			return nil, fmt.Errorf("generating signing key: %w", err)
		}
	}
	cost := options.HashCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	server.store = newStore(cost)
	if !options.Empty {
		if err := server.store.seed(server.clock.Now()); err != nil {
			return nil, fmt.Errorf("seeding mock data: %w", err)
		}
	}
	server.handler = server.routes()
	return server, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// Requests returns "METHOD /path" for every request served so far.
func (s *Server) Requests() []string {
	s.requestsMu.Lock()
	defer s.requestsMu.Unlock()
	return slices.Clone(s.requests)
}

// ResetRequests clears the request log.
func (s *Server) ResetRequests() {
	s.requestsMu.Lock()
	defer s.requestsMu.Unlock()
	s.requests = nil
}

func (s *Server) routes() http.Handler {
	router := mux.NewRouter()
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, "No handler for "+r.Method+" "+r.URL.Path)
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusMethodNotAllowed, "Method "+r.Method+" not allowed")
	})

	apiRouter := router.PathPrefix("/api").Subrouter()
	s.authRoutes(apiRouter)
	s.catalogRoutes(apiRouter)
	s.donationRoutes(apiRouter)
	s.commerceRoutes(apiRouter)
	s.imageRoutes(apiRouter)

	return s.logRequests(router)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// logRequests records and logs every request with its X-Request-ID.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)

		s.requestsMu.Lock()
		s.requests = append(s.requests, r.Method+" "+r.URL.Path)
		s.requestsMu.Unlock()

		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(recorder, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", recorder.status,
			"duration", time.Since(start),
			"request_id", requestID,
		)
	})
}

// authedHandler receives the verified caller.
type authedHandler func(w http.ResponseWriter, r *http.Request, caller api.User)

// protect requires a valid bearer token and, when roles are given, one
// of those roles.
func (s *Server) protect(handler authedHandler, roles ...api.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, err := s.caller(r)
		if err != nil {
			writeError(w, r, http.StatusUnauthorized, "Authentication required: "+err.Error())
			return
		}
		if len(roles) > 0 && !slices.Contains(roles, caller.UserType) {
			writeError(w, r, http.StatusForbidden, "Access denied for role "+string(caller.UserType))
			return
		}
		handler(w, r, caller)
	}
}

// caller resolves the bearer token to the current account state.
func (s *Server) caller(r *http.Request) (api.User, error) {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return api.User{}, errors.New("missing bearer token")
	}
	claims, err := s.verifyAccess(token)
	if err != nil {
		return api.User{}, errInvalidToken
	}
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	record, ok := s.store.accounts[claims.Subject]
	if !ok {
		return api.User{}, errors.New("account no longer exists")
	}
	return record.user, nil
}

// errorBody mirrors the backend's error response.
type errorBody struct {
	Status           int               `json:"status"`
	Error            string            `json:"error"`
	Message          string            `json:"message"`
	Path             string            `json:"path"`
	ErrorCode        string            `json:"errorCode,omitempty"`
	ValidationErrors map[string]string `json:"validationErrors,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(value)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	writeJSON(w, status, errorBody{
		Status:  status,
		Error:   http.StatusText(status),
		Message: message,
		Path:    r.URL.Path,
	})
}

func writeValidation(w http.ResponseWriter, r *http.Request, failures map[string]string) {
	writeJSON(w, http.StatusBadRequest, errorBody{
		Status:           http.StatusBadRequest,
		Error:            http.StatusText(http.StatusBadRequest),
		Message:          "Validation failed",
		Path:             r.URL.Path,
		ErrorCode:        "VALIDATION_ERROR",
		ValidationErrors: failures,
	})
}

func writeMessage(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusOK, map[string]string{"message": message})
}

// decodeBody reads a JSON body into target, answering 400 on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, target any) bool {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	if err := decoder.Decode(target); err != nil {
		writeError(w, r, http.StatusBadRequest, "Malformed JSON body: "+err.Error())
		return false
	}
	return true
}

// paginate slices items by the page and size query parameters.
func paginate[T any](r *http.Request, items []T) api.Page[T] {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	size, _ := strconv.Atoi(r.URL.Query().Get("size"))
	page = max(page, 0)
	if size <= 0 {
		size = api.DefaultPageSize
	}
	total := len(items)
	totalPages := (total + size - 1) / size
	start := min(page*size, total)
	end := min(start+size, total)
	content := items[start:end]
	if content == nil {
		content = []T{}
	}
	return api.Page[T]{
		Content:       content,
		TotalElements: total,
		TotalPages:    totalPages,
		Number:        page,
		Size:          size,
		First:         page == 0,
		Last:          page >= totalPages-1,
	}
}

// selfOrAdmin reports whether caller may read resources owned by id.
func selfOrAdmin(caller api.User, id string) bool {
	return caller.UserType == api.RoleAdmin || caller.ID == id
}
