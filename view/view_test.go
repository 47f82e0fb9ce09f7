// Copyright 2026 The JALAI Authors
// SPDX-License-Identifier: Apache-2.0

package view

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jalai-group/jalai/api"
	"github.com/jalai-group/jalai/lib/tui"
	"github.com/jalai-group/jalai/session"
)

type fakeReader struct {
	initialized bool
	user        *api.User
}

func (f fakeReader) Initialized() bool { return f.initialized }

func (f fakeReader) User() (api.User, bool) {
	if f.user == nil {
		return api.User{}, false
	}
	return *f.user, true
}

var (
	admin            = api.User{ID: "a1", Name: "Root", Email: "admin@jalai.org", UserType: api.RoleAdmin, IsActive: true}
	client           = api.User{ID: "c1", Name: "Amina", Email: "amina@example.com", UserType: api.RoleClient, IsActive: true}
	activeOrphanage  = api.User{ID: "o1", Name: "Hope House", Email: "hope@example.org", UserType: api.RoleOrphanage, IsActive: true}
	pendingOrphanage = api.User{ID: "o2", Name: "New Dawn", Email: "dawn@example.org", UserType: api.RoleOrphanage, IsActive: false}
)

func TestGateEvaluate(t *testing.T) {
	tests := []struct {
		name     string
		gate     Gate
		reader   fakeReader
		want     State
		redirect string
	}{
		{"loading", AdminGate, fakeReader{}, StateLoading, ""},
		{"anonymous", AdminGate, fakeReader{initialized: true}, StateDenied, RedirectLogin},
		{"admin on admin", AdminGate, fakeReader{true, &admin}, StateAuthorized, ""},
		{"client on admin", AdminGate, fakeReader{true, &client}, StateDenied, RedirectDashboard},
		{"client on client", ClientGate, fakeReader{true, &client}, StateAuthorized, ""},
		{"active orphanage", OrphanageGate, fakeReader{true, &activeOrphanage}, StateAuthorized, ""},
		{"inactive orphanage", OrphanageGate, fakeReader{true, &pendingOrphanage}, StatePendingApproval, ""},
		{"inactive orphanage on client", ClientGate, fakeReader{true, &pendingOrphanage}, StateDenied, RedirectDashboard},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			decision := test.gate.Evaluate(test.reader)
			if decision.State != test.want || decision.Redirect != test.redirect {
				t.Errorf("decision = %+v, want %v redirect %q", decision, test.want, test.redirect)
			}
		})
	}
}

func TestDecisionErr(t *testing.T) {
	if (Decision{State: StateAuthorized}).Err() != nil {
		t.Error("authorized decision should have no error")
	}
	if !errors.Is(Decision{State: StatePendingApproval}.Err(), ErrPendingApproval) {
		t.Error("pending decision should map to ErrPendingApproval")
	}
	if !errors.Is(Decision{State: StateDenied, Reason: "no"}.Err(), ErrDenied) {
		t.Error("denied decision should map to ErrDenied")
	}
	if !errors.Is(Decision{State: StateLoading}.Err(), ErrNotReady) {
		t.Error("loading decision should map to ErrNotReady")
	}
}

// countingOrphanageAPI fails the test if a donation-management call is
// made while it is armed.
type countingOrphanageAPI struct {
	calls atomic.Int32
}

func (c *countingOrphanageAPI) DonationsByOrphanage(context.Context, string) ([]api.Donation, error) {
	c.calls.Add(1)
	amount := 5000.0
	return []api.Donation{
		{ID: "d1", Status: api.DonationPending, DonationType: api.DonationCash, CashAmount: &amount, DonorName: "Amina"},
		{ID: "d2", Status: api.DonationCompleted, DonationType: api.DonationKind, ItemDescription: "books"},
	}, nil
}

func (c *countingOrphanageAPI) TotalCashForOrphanage(context.Context, string) (float64, error) {
	c.calls.Add(1)
	return 5000, nil
}

func (c *countingOrphanageAPI) TransitionDonation(_ context.Context, id string, _ api.DonationAction) (*api.Donation, error) {
	c.calls.Add(1)
	return &api.Donation{ID: id, Status: api.DonationConfirmed}, nil
}

func TestPendingOrphanageMakesNoCalls(t *testing.T) {
	fake := &countingOrphanageAPI{}
	dashboard := &OrphanageDashboard{Session: fakeReader{true, &pendingOrphanage}, API: fake}

	loaded, err := dashboard.Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Decision.State != StatePendingApproval || loaded.Data != nil {
		t.Fatalf("view = %+v", loaded)
	}
	for name, action := range map[string]func(context.Context, string) (*api.Donation, error){
		"confirm":  dashboard.Confirm,
		"reject":   dashboard.Reject,
		"complete": dashboard.Complete,
	} {
		if _, err := action(context.Background(), "d1"); !errors.Is(err, ErrPendingApproval) {
			t.Errorf("%s: err = %v", name, err)
		}
	}
	if calls := fake.calls.Load(); calls != 0 {
		t.Errorf("API calls = %d, want 0", calls)
	}

	rendered := tui.Strip(Renderer{Theme: tui.DefaultTheme, Width: 80}.Orphanage(loaded))
	if !strings.Contains(rendered, "Pending Approval") {
		t.Errorf("render = %q", rendered)
	}
}

func TestActiveOrphanageDashboard(t *testing.T) {
	fake := &countingOrphanageAPI{}
	dashboard := &OrphanageDashboard{Session: fakeReader{true, &activeOrphanage}, API: fake}
	loaded, err := dashboard.Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Decision.State != StateAuthorized || len(loaded.Data.Pending) != 1 || loaded.Data.TotalCash != 5000 {
		t.Fatalf("view = %+v", loaded)
	}
	donation, err := dashboard.Confirm(context.Background(), "d1")
	if err != nil || donation.Status != api.DonationConfirmed {
		t.Fatalf("Confirm = %+v, %v", donation, err)
	}
	rendered := tui.Strip(Renderer{Theme: tui.DefaultTheme, Width: 100}.Orphanage(loaded))
	if !strings.Contains(rendered, "5,000 FCFA") || !strings.Contains(rendered, "Awaiting confirmation (1)") {
		t.Errorf("render = %s", rendered)
	}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestAdminDashboardAfterLogin signs in through a real client and
// store, then opens the admin dashboard as the admin and as a client.
func TestAdminDashboardAfterLogin(t *testing.T) {
	var statsCalls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		var body map[string]string
		switch r.URL.Path {
		case "/api/auth/login":
			json.NewDecoder(r.Body).Decode(&body)
			user := map[string]any{"id": "a1", "name": "Root", "email": body["email"], "userType": "ADMIN", "isActive": true}
			if body["email"] != "admin@jalai.org" {
				user = map[string]any{"id": "c1", "name": "Amina", "email": body["email"], "userType": "CLIENT", "isActive": true}
			}
			json.NewEncoder(w).Encode(map[string]any{"accessToken": "t-" + body["email"], "refreshToken": "r", "user": user})
		case "/api/admin/dashboard/stats":
			statsCalls.Add(1)
			json.NewEncoder(w).Encode(api.DashboardStats{TotalClients: 1200, TotalDonations: 3, TotalRevenue: 150000})
		case "/api/orphanages":
			json.NewEncoder(w).Encode(api.Page[api.Orphanage]{Content: []api.Orphanage{
				{ID: "o1", Name: "Hope House", IsActive: true},
				{ID: "o2", Name: "New Dawn", Location: "Bamenda", IsActive: false},
			}})
		case "/api/donations":
			json.NewEncoder(w).Encode(api.Page[api.Donation]{})
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	open := func(email string) *AdminView {
		t.Helper()
		storage := session.NewMemoryStorage()
		client, err := api.NewClient(api.ClientConfig{
			BaseURL: server.URL + "/api",
			Tokens:  session.NewCredentials(storage, quietLogger()),
			Logger:  quietLogger(),
		})
		if err != nil {
			t.Fatal(err)
		}
		store := session.NewStore(client, storage, quietLogger())
		store.Initialize()
		if _, err := store.Login(context.Background(), email, "pw"); err != nil {
			t.Fatalf("Login: %v", err)
		}
		loaded, err := (&AdminDashboard{Session: store, API: client}).Load(context.Background())
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		return loaded
	}

	adminView := open("admin@jalai.org")
	if adminView.Decision.State != StateAuthorized {
		t.Fatalf("admin decision = %+v", adminView.Decision)
	}
	if len(adminView.Data.PendingOrphanages) != 1 || adminView.Data.PendingOrphanages[0].ID != "o2" {
		t.Errorf("pending = %+v", adminView.Data.PendingOrphanages)
	}
	rendered := tui.Strip(Renderer{Theme: tui.DefaultTheme, Width: 100, Now: time.Now()}.Admin(adminView))
	for _, want := range []string{"1,200", "150,000 FCFA", "New Dawn"} {
		if !strings.Contains(rendered, want) {
			t.Errorf("render missing %q:\n%s", want, rendered)
		}
	}

	clientView := open("amina@example.com")
	if clientView.Decision.State != StateDenied || clientView.Data != nil {
		t.Fatalf("client decision = %+v", clientView.Decision)
	}
	if statsCalls.Load() != 1 {
		t.Errorf("stats calls = %d, want 1", statsCalls.Load())
	}
	if !strings.Contains(tui.Strip(Renderer{Theme: tui.DefaultTheme, Width: 80}.Admin(clientView)), "Access Denied") {
		t.Error("denied view should render Access Denied")
	}
}

func TestAmount(t *testing.T) {
	if got := Amount(1234567.5); got != "1,234,567.5 FCFA" {
		t.Errorf("Amount = %q", got)
	}
}

// pagedAdminAPI serves a fixed orphanage list in pages.
type pagedAdminAPI struct {
	orphanages []api.Orphanage
	pages      []int
}

func (p *pagedAdminAPI) DashboardStats(context.Context) (*api.DashboardStats, error) {
	return &api.DashboardStats{}, nil
}

func (p *pagedAdminAPI) AllOrphanages(_ context.Context, request api.PageRequest) (*api.Page[api.Orphanage], error) {
	p.pages = append(p.pages, request.Page)
	start := min(request.Page*request.Size, len(p.orphanages))
	end := min(start+request.Size, len(p.orphanages))
	totalPages := (len(p.orphanages) + request.Size - 1) / request.Size
	return &api.Page[api.Orphanage]{
		Content:       p.orphanages[start:end],
		TotalElements: len(p.orphanages),
		TotalPages:    totalPages,
		Number:        request.Page,
		Size:          request.Size,
		Last:          request.Page >= totalPages-1,
	}, nil
}

func (p *pagedAdminAPI) ListDonations(context.Context, api.PageRequest) (*api.Page[api.Donation], error) {
	return &api.Page[api.Donation]{}, nil
}

func (p *pagedAdminAPI) ModerateOrphanage(context.Context, string, bool) error { return nil }

func TestAdminDashboardPagesPendingOrphanages(t *testing.T) {
	fake := &pagedAdminAPI{}
	for index := range 250 {
		fake.orphanages = append(fake.orphanages, api.Orphanage{
			ID:       fmt.Sprintf("o%d", index),
			IsActive: index%60 != 59,
		})
	}

	loaded, err := (&AdminDashboard{Session: fakeReader{true, &admin}, API: fake}).Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	var ids []string
	for _, orphanage := range loaded.Data.PendingOrphanages {
		ids = append(ids, orphanage.ID)
	}
	if want := []string{"o59", "o119", "o179", "o239"}; strings.Join(ids, ",") != strings.Join(want, ",") {
		t.Errorf("pending = %v, want %v", ids, want)
	}
	if len(fake.pages) != 3 || fake.pages[2] != 2 {
		t.Errorf("pages requested = %v, want [0 1 2]", fake.pages)
	}
}
