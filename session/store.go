// Copyright 2026 The JALAI Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jalai-group/jalai/api"
)

// ErrCorruptSession is returned by Initialize and Resync when the
// persisted user could not be decoded. All auth keys have been wiped.
var ErrCorruptSession = errors.New("persisted session is corrupt and was cleared")

// Authenticator is the part of api.Client the store drives.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (api.AuthPayload, error)
	Register(ctx context.Context, role api.Role, fields map[string]any) (api.AuthPayload, error)
	Logout(ctx context.Context) error
}

// Reader is the read-only view of a Store used by role-gated views.
type Reader interface {
	Initialized() bool
	User() (api.User, bool)
}

// Store is the session state container. Safe for concurrent use;
// overlapping Login/Register calls are not serialized and the last one
// to complete wins.
type Store struct {
	auth    Authenticator
	storage Storage
	logger  *slog.Logger

	mu          sync.Mutex
	initialized bool
	user        *api.User
	lastError   string
	inFlight    int
	onChange    []func(*api.User)
}

// NewStore returns an uninitialized store.
func NewStore(auth Authenticator, storage Storage, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{auth: auth, storage: storage, logger: logger}
}

// OnChange registers fn to run after every change of the session user
// (nil after logout). Callbacks run without the store lock held.
func (s *Store) OnChange(fn func(*api.User)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = append(s.onChange, fn)
}

// Initialize restores the persisted session. It runs once; later calls
// return nil without touching storage.
func (s *Store) Initialize() error {
	s.mu.Lock()
	if s.initialized {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	user, err := s.load()

	s.mu.Lock()
	if s.initialized {
		s.mu.Unlock()
		return nil
	}
	s.initialized = true
	s.user = user
	s.mu.Unlock()

	s.notify(user)
	return err
}

// Resync re-reads storage, picking up logins and logouts made by other
// processes. It applies the same corrupt-data policy as Initialize.
func (s *Store) Resync() error {
	user, err := s.load()
	s.mu.Lock()
	s.initialized = true
	s.user = user
	s.mu.Unlock()
	s.notify(user)
	return err
}

// load reads userData and accessToken. A session exists only when both
// are present. Unreadable data wipes every auth key.
func (s *Store) load() (*api.User, error) {
	token, hasToken, tokenErr := s.storage.Get(KeyAccessToken)
	userData, hasUser, userErr := s.storage.Get(KeyUserData)
	if err := errors.Join(tokenErr, userErr); err != nil {
		if !errors.Is(err, ErrCorruptStorage) {
			return nil, fmt.Errorf("reading session: %w", err)
		}
		return nil, s.wipe(err)
	}
	if !hasToken || token == "" || !hasUser {
		return nil, nil
	}

	var user api.User
	if err := json.Unmarshal([]byte(userData), &user); err != nil {
		return nil, s.wipe(err)
	}
	if user.ID == "" || user.UserType == "" {
		return nil, s.wipe(errors.New("userData lacks id or userType"))
	}
	return &user, nil
}

func (s *Store) wipe(cause error) error {
	s.logger.Warn("clearing corrupt session", slog.String(api.LogScopeKey, api.LogScopeAuth), "error", cause)
	if err := s.storage.Remove(AuthKeys...); err != nil {
		return fmt.Errorf("%w (wipe failed: %v): %v", ErrCorruptSession, err, cause)
	}
	return fmt.Errorf("%w: %v", ErrCorruptSession, cause)
}

// Login authenticates and persists the session. On failure the
// human-readable message is available from Error and the error is
// returned.
func (s *Store) Login(ctx context.Context, email, password string) (api.User, error) {
	s.begin()
	payload, err := s.auth.Login(ctx, email, password)
	if err != nil {
		s.fail(err)
		return api.User{}, err
	}
	return s.establish(payload)
}

// Register creates an account for role and signs it in.
func (s *Store) Register(ctx context.Context, role api.Role, fields map[string]any) (api.User, error) {
	s.begin()
	payload, err := s.auth.Register(ctx, role, fields)
	if err != nil {
		s.fail(err)
		return api.User{}, err
	}
	return s.establish(payload)
}

func (s *Store) begin() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight++
	s.lastError = ""
}

func (s *Store) fail(err error) {
	s.mu.Lock()
	s.inFlight--
	s.lastError = Describe(err)
	s.mu.Unlock()
}

func (s *Store) establish(payload api.AuthPayload) (api.User, error) {
	user := payload.User
	persistErr := s.persistPayload(payload)

	s.mu.Lock()
	s.inFlight--
	s.initialized = true
	s.user = &user
	if persistErr != nil {
		s.lastError = Describe(persistErr)
	}
	s.mu.Unlock()

	s.notify(&user)
	if persistErr != nil {
		return user, fmt.Errorf("signed in but could not save the session: %w", persistErr)
	}
	return user, nil
}

// persistPayload saves the signed-in user. A bare user comes without
// tokens, so any tokens still stored belong to an earlier session and
// are removed; the user then does not survive a restart.
func (s *Store) persistPayload(payload api.AuthPayload) error {
	if payload.Kind != api.AuthEnvelope {
		if err := s.storage.Remove(KeyAccessToken, KeyRefreshToken); err != nil {
			return err
		}
	}
	return s.persistUser(payload.User)
}

func (s *Store) persistUser(user api.User) error {
	encoded, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return s.storage.Set(KeyUserData, string(encoded))
}

// Logout invalidates the server session when possible and always
// clears the local one. It never fails because of the server and is a
// no-op beyond clearing when nobody is signed in.
func (s *Store) Logout(ctx context.Context) error {
	if err := s.auth.Logout(ctx); err != nil {
		s.logger.Warn("server logout failed; local session cleared anyway",
			slog.String(api.LogScopeKey, api.LogScopeAuth), "error", err)
	}
	removeErr := s.storage.Remove(AuthKeys...)

	s.mu.Lock()
	s.initialized = true
	s.user = nil
	s.lastError = ""
	s.mu.Unlock()

	s.notify(nil)
	if removeErr != nil {
		return fmt.Errorf("clearing local session: %w", removeErr)
	}
	return nil
}

// HandleSessionExpired drops the in-memory session after the API
// client has cleared the stored credentials.
func (s *Store) HandleSessionExpired() {
	s.mu.Lock()
	s.user = nil
	s.lastError = api.ErrSessionExpired.Error()
	s.mu.Unlock()
	s.notify(nil)
}

// UpdateUser replaces and persists the session user.
func (s *Store) UpdateUser(user api.User) error {
	if err := s.persistUser(user); err != nil {
		return fmt.Errorf("saving user: %w", err)
	}
	s.mu.Lock()
	s.user = &user
	s.mu.Unlock()
	s.notify(&user)
	return nil
}

// ClearError forgets the last error message.
func (s *Store) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastError = ""
}

// Error returns the message of the last failed operation, or "".
func (s *Store) Error() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastError
}

// Initialized reports whether Initialize (or a login) has completed.
func (s *Store) Initialized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initialized
}

// Loading reports whether a Login or Register call is in flight.
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inFlight > 0
}

// User returns a copy of the session user.
func (s *Store) User() (api.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return api.User{}, false
	}
	return *s.user, true
}

func (s *Store) IsAuthenticated() bool {
	_, ok := s.User()
	return ok
}

func (s *Store) IsAdmin() bool     { return s.hasRole(api.RoleAdmin) }
func (s *Store) IsClient() bool    { return s.hasRole(api.RoleClient) }
func (s *Store) IsOrphanage() bool { return s.hasRole(api.RoleOrphanage) }

func (s *Store) hasRole(role api.Role) bool {
	user, ok := s.User()
	return ok && user.UserType == role
}

func (s *Store) notify(user *api.User) {
	s.mu.Lock()
	callbacks := append([]func(*api.User)(nil), s.onChange...)
	s.mu.Unlock()
	for _, callback := range callbacks {
		if user == nil {
			callback(nil)
			continue
		}
		copied := *user
		callback(&copied)
	}
}

// Describe turns an error from the API or storage into the one-line
// message shown to users.
func Describe(err error) string {
	var apiError *api.Error
	switch {
	case err == nil:
		return ""
	case errors.Is(err, api.ErrSessionExpired):
		return api.ErrSessionExpired.Error()
	case errors.Is(err, api.ErrNetwork):
		return "Unable to connect to server. Please check that the backend is running."
	case errors.As(err, &apiError):
		return apiError.Error()
	default:
		return err.Error()
	}
}
