// Copyright 2026 The JALAI Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/jalai-group/jalai/api"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeAuth stands in for api.Client. It writes tokens into storage the
// way the real client does through Credentials.
type fakeAuth struct {
	credentials *Credentials
	user        api.User
	loginErr    error
	logoutErr   error
	logouts     int
}

func (f *fakeAuth) Login(_ context.Context, email, _ string) (api.AuthPayload, error) {
	if f.loginErr != nil {
		return api.AuthPayload{}, f.loginErr
	}
	if err := f.credentials.SetTokens(api.Credentials{AccessToken: "access-" + email, RefreshToken: "refresh"}); err != nil {
		return api.AuthPayload{}, err
	}
	return api.AuthPayload{Kind: api.AuthEnvelope, User: f.user}, nil
}

func (f *fakeAuth) Register(_ context.Context, role api.Role, fields map[string]any) (api.AuthPayload, error) {
	user := api.User{ID: "new", Email: fields["email"].(string), UserType: role}
	return api.AuthPayload{Kind: api.AuthBareUser, User: user}, nil
}

func (f *fakeAuth) Logout(context.Context) error {
	f.logouts++
	if err := f.credentials.Clear(); err != nil {
		return err
	}
	return f.logoutErr
}

func newFakeStore(storage Storage, user api.User) (*Store, *fakeAuth) {
	auth := &fakeAuth{credentials: NewCredentials(storage, quietLogger()), user: user}
	return NewStore(auth, storage, quietLogger()), auth
}

var client1 = api.User{ID: "c1", Name: "Amina", Email: "amina@example.com", UserType: api.RoleClient, IsActive: true}

func TestInitializeEmpty(t *testing.T) {
	store, _ := newFakeStore(NewMemoryStorage(), client1)
	if store.Initialized() {
		t.Fatal("initialized before Initialize")
	}
	if err := store.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if !store.Initialized() || store.IsAuthenticated() {
		t.Errorf("Initialized=%v IsAuthenticated=%v", store.Initialized(), store.IsAuthenticated())
	}
}

func TestLoginPersistsAcrossStores(t *testing.T) {
	storage := NewFileStorage(filepath.Join(t.TempDir(), "session.json"))
	store, _ := newFakeStore(storage, client1)
	if err := store.Initialize(); err != nil {
		t.Fatal(err)
	}
	user, err := store.Login(context.Background(), "amina@example.com", "pw")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if user.ID != "c1" || !store.IsClient() || store.IsAdmin() || store.IsOrphanage() {
		t.Errorf("unexpected session: %+v", user)
	}

	restored, _ := newFakeStore(NewFileStorage(storage.Path()), client1)
	if err := restored.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	got, ok := restored.User()
	if !ok || got != client1 {
		t.Errorf("restored user = %+v, %v; want %+v", got, ok, client1)
	}
}

func TestInitializeRequiresToken(t *testing.T) {
	storage := NewMemoryStorage()
	encoded, _ := json.Marshal(client1)
	storage.Set(KeyUserData, string(encoded))

	store, _ := newFakeStore(storage, client1)
	if err := store.Initialize(); err != nil {
		t.Fatal(err)
	}
	if store.IsAuthenticated() {
		t.Error("user without access token should not be authenticated")
	}
}

func TestInitializeWipesCorruptUser(t *testing.T) {
	storage := NewMemoryStorage()
	storage.Set(KeyAccessToken, "a")
	storage.Set(KeyRefreshToken, "r")
	storage.Set(KeyUserData, "{not json")

	store, _ := newFakeStore(storage, client1)
	err := store.Initialize()
	if !errors.Is(err, ErrCorruptSession) {
		t.Fatalf("err = %v, want ErrCorruptSession", err)
	}
	if store.IsAuthenticated() {
		t.Error("corrupt session should leave no user")
	}
	for _, key := range AuthKeys {
		if _, ok, _ := storage.Get(key); ok {
			t.Errorf("%s survived the wipe", key)
		}
	}
}

func TestInitializeWipesCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	if err := writeAtomic(path, []byte("garbage")); err != nil {
		t.Fatal(err)
	}
	storage := NewFileStorage(path)
	store, _ := newFakeStore(storage, client1)
	if err := store.Initialize(); !errors.Is(err, ErrCorruptSession) {
		t.Fatalf("err = %v, want ErrCorruptSession", err)
	}
	if _, ok, err := storage.Get(KeyAccessToken); ok || err != nil {
		t.Errorf("after wipe: ok=%v err=%v", ok, err)
	}
}

func TestInitializeRunsOnce(t *testing.T) {
	storage := NewMemoryStorage()
	store, _ := newFakeStore(storage, client1)
	store.Initialize()

	storage.Set(KeyAccessToken, "a")
	encoded, _ := json.Marshal(client1)
	storage.Set(KeyUserData, string(encoded))
	store.Initialize()
	if store.IsAuthenticated() {
		t.Error("second Initialize should not re-read storage")
	}
	if err := store.Resync(); err != nil {
		t.Fatal(err)
	}
	if !store.IsClient() {
		t.Error("Resync should pick up the stored session")
	}
}

func TestLoginFailureSetsError(t *testing.T) {
	store, _ := newFakeStore(NewMemoryStorage(), client1)
	store.Initialize()
	auth := store.auth.(*fakeAuth)
	auth.loginErr = &api.Error{StatusCode: http.StatusUnauthorized, Message: "Invalid email or password"}

	if _, err := store.Login(context.Background(), "amina@example.com", "wrong"); err == nil {
		t.Fatal("expected error")
	}
	if store.Error() != "Invalid email or password" {
		t.Errorf("Error() = %q", store.Error())
	}
	if store.IsAuthenticated() || store.Loading() {
		t.Error("failed login should leave no session and no loading flag")
	}
	store.ClearError()
	if store.Error() != "" {
		t.Errorf("Error() after ClearError = %q", store.Error())
	}
}

func TestLogoutIdempotent(t *testing.T) {
	storage := NewMemoryStorage()
	store, auth := newFakeStore(storage, client1)
	store.Initialize()
	if _, err := store.Login(context.Background(), "amina@example.com", "pw"); err != nil {
		t.Fatal(err)
	}

	auth.logoutErr = errors.New("server down")
	if err := store.Logout(context.Background()); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if err := store.Logout(context.Background()); err != nil {
		t.Fatalf("second Logout: %v", err)
	}
	if store.IsAuthenticated() {
		t.Error("still authenticated after logout")
	}
	for _, key := range AuthKeys {
		if _, ok, _ := storage.Get(key); ok {
			t.Errorf("%s survived logout", key)
		}
	}
}

func TestUpdateUserPersists(t *testing.T) {
	storage := NewMemoryStorage()
	store, _ := newFakeStore(storage, client1)
	store.Initialize()
	store.Login(context.Background(), "amina@example.com", "pw")

	var seen []string
	store.OnChange(func(user *api.User) {
		if user != nil {
			seen = append(seen, user.Name)
		}
	})
	updated := client1
	updated.Name = "Amina K."
	if err := store.UpdateUser(updated); err != nil {
		t.Fatal(err)
	}
	raw, _, _ := storage.Get(KeyUserData)
	var persisted api.User
	json.Unmarshal([]byte(raw), &persisted)
	if persisted.Name != "Amina K." {
		t.Errorf("persisted name = %q", persisted.Name)
	}
	if len(seen) != 1 || seen[0] != "Amina K." {
		t.Errorf("OnChange saw %v", seen)
	}
}

func TestHandleSessionExpired(t *testing.T) {
	store, _ := newFakeStore(NewMemoryStorage(), client1)
	store.Initialize()
	store.Login(context.Background(), "amina@example.com", "pw")
	store.HandleSessionExpired()
	if store.IsAuthenticated() {
		t.Error("session should be dropped")
	}
	if store.Error() == "" {
		t.Error("expected an expiry message")
	}
}

func TestDescribe(t *testing.T) {
	wrapped := errors.Join(errors.New("context"), api.ErrNetwork)
	if got := Describe(wrapped); got != "Unable to connect to server. Please check that the backend is running." {
		t.Errorf("Describe(network) = %q", got)
	}
	if got := Describe(&api.Error{StatusCode: 500}); got == "" {
		t.Error("Describe(api error) is empty")
	}
	if Describe(nil) != "" {
		t.Error("Describe(nil) should be empty")
	}
}

// TestStoreWithClient drives a real api.Client against a test server:
// an admin signs in and the tokens land in the shared storage.
func TestStoreWithClient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/login":
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]any{
				"accessToken":  "admin-access",
				"refreshToken": "admin-refresh",
				"user":         map[string]any{"id": "a1", "email": "admin@jalai.org", "userType": "ADMIN", "isActive": true},
			})
		case "/api/auth/logout":
			w.WriteHeader(http.StatusNoContent)
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	storage := NewMemoryStorage()
	credentials := NewCredentials(storage, quietLogger())
	client, err := api.NewClient(api.ClientConfig{BaseURL: server.URL + "/api", Tokens: credentials, Logger: quietLogger()})
	if err != nil {
		t.Fatal(err)
	}
	store := NewStore(client, storage, quietLogger())
	if err := store.Initialize(); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Login(context.Background(), "admin@jalai.org", "admin123"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if !store.IsAdmin() {
		t.Error("expected admin session")
	}
	if token, _, _ := storage.Get(KeyAccessToken); token != "admin-access" {
		t.Errorf("stored access token = %q", token)
	}
	if err := store.Logout(context.Background()); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := storage.Get(KeyRefreshToken); ok {
		t.Error("refresh token survived logout")
	}
}

func TestResyncWipesCorruptUser(t *testing.T) {
	storage := NewMemoryStorage()
	store, _ := newFakeStore(storage, client1)
	store.Initialize()
	if _, err := store.Login(context.Background(), "amina@example.com", "pw"); err != nil {
		t.Fatal(err)
	}

	storage.Set(KeyUserData, `{"id": 7`)
	err := store.Resync()
	if !errors.Is(err, ErrCorruptSession) {
		t.Fatalf("err = %v, want ErrCorruptSession", err)
	}
	if _, ok := store.User(); ok {
		t.Error("corrupt session should leave no user")
	}
	for _, key := range AuthKeys {
		if _, ok, _ := storage.Get(key); ok {
			t.Errorf("%s survived the wipe", key)
		}
	}
}

// TestRegisterBareUserDropsEarlierTokens signs an admin in, then
// registers an account whose response carries no tokens. The admin's
// tokens must not end up paired with the new user.
func TestRegisterBareUserDropsEarlierTokens(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/auth/login":
			json.NewEncoder(w).Encode(map[string]any{
				"accessToken":  "admin-access",
				"refreshToken": "admin-refresh",
				"user":         map[string]any{"id": "a1", "email": "admin@jalai.org", "userType": "ADMIN", "isActive": true},
			})
		case "/api/auth/register/orphanage":
			json.NewEncoder(w).Encode(map[string]any{
				"id": "o9", "email": "new@jalai.org", "userType": "ORPHANAGE", "isActive": false,
			})
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	storage := NewMemoryStorage()
	client, err := api.NewClient(api.ClientConfig{
		BaseURL: server.URL + "/api",
		Tokens:  NewCredentials(storage, quietLogger()),
		Logger:  quietLogger(),
	})
	if err != nil {
		t.Fatal(err)
	}
	store := NewStore(client, storage, quietLogger())
	store.Initialize()
	if _, err := store.Login(context.Background(), "admin@jalai.org", "admin123"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	registered, err := store.Register(context.Background(), api.RoleOrphanage, map[string]any{"email": "new@jalai.org"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if registered.ID != "o9" {
		t.Fatalf("registered = %+v", registered)
	}
	for _, key := range []string{KeyAccessToken, KeyRefreshToken} {
		if value, ok, _ := storage.Get(key); ok {
			t.Errorf("%s = %q survived a tokenless registration", key, value)
		}
	}

	restored := NewStore(client, storage, quietLogger())
	if err := restored.Initialize(); err != nil {
		t.Fatal(err)
	}
	if user, ok := restored.User(); ok {
		t.Errorf("restored %+v without credentials", user)
	}
}
