// Copyright 2026 The JALAI Authors
// SPDX-License-Identifier: Apache-2.0

package mockapi

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/jalai-group/jalai/api"
	"github.com/jalai-group/jalai/lib/clock"
)

type harness struct {
	server *Server
	clock  *clock.FakeClock
	url    string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	fake := clock.Fake(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	server, err := New(Options{
		Clock:     fake,
		Secret:    []byte("test-signing-key-test-signing-key"),
		AccessTTL: 15 * time.Minute,
		HashCost:  bcrypt.MinCost,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	httpServer := httptest.NewServer(server)
	t.Cleanup(httpServer.Close)
	return &harness{server: server, clock: fake, url: httpServer.URL + "/api"}
}

// client returns an api.Client logged in as email, or anonymous when
// email is empty.
func (h *harness) client(t *testing.T, email string) (*api.Client, *api.MemoryTokens) {
	t.Helper()
	tokens := &api.MemoryTokens{}
	client, err := api.NewClient(api.ClientConfig{BaseURL: h.url, Tokens: tokens})
	if err != nil {
		t.Fatal(err)
	}
	if email != "" {
		if _, err := client.Login(context.Background(), email, SeedPassword); err != nil {
			t.Fatalf("Login(%s): %v", email, err)
		}
	}
	return client, tokens
}

func TestLoginIssuesVerifiableToken(t *testing.T) {
	h := newHarness(t)
	client, tokens := h.client(t, "")

	payload, err := client.Login(context.Background(), SeedOrphanageEmail, SeedPassword)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if payload.Kind != api.AuthEnvelope || payload.User.ID != SeedOrphanageID || payload.User.UserType != api.RoleOrphanage {
		t.Errorf("payload = %+v", payload)
	}
	if payload.ExpiresIn != int64((15 * time.Minute).Seconds()) {
		t.Errorf("ExpiresIn = %d", payload.ExpiresIn)
	}

	claims, err := api.InspectToken(tokens.AccessToken())
	if err != nil {
		t.Fatalf("InspectToken: %v", err)
	}
	if claims.Subject != SeedOrphanageID || claims.Role != api.RoleOrphanage || claims.Email != SeedOrphanageEmail {
		t.Errorf("claims = %+v", claims)
	}
	if want := h.clock.Now().Add(15 * time.Minute); !claims.ExpiresAt.Equal(want) {
		t.Errorf("ExpiresAt = %v, want %v", claims.ExpiresAt, want)
	}
}

func TestLoginRejectsBadPassword(t *testing.T) {
	h := newHarness(t)
	client, _ := h.client(t, "")

	_, err := client.Login(context.Background(), SeedClientEmail, "wrong-password")
	var apiError *api.Error
	if !errors.As(err, &apiError) || apiError.StatusCode != http.StatusUnauthorized {
		t.Fatalf("err = %v, want 401 *api.Error", err)
	}
	if apiError.Message != "Invalid email or password" {
		t.Errorf("Message = %q", apiError.Message)
	}
}

func TestExpiredAccessTokenRefreshesAndRotates(t *testing.T) {
	h := newHarness(t)
	client, tokens := h.client(t, SeedClientEmail)
	staleRefresh := tokens.RefreshToken()

	h.clock.Advance(16 * time.Minute)
	h.server.ResetRequests()

	donations, err := client.DonationsByClient(context.Background(), SeedClientID)
	if err != nil {
		t.Fatalf("DonationsByClient after expiry: %v", err)
	}
	if len(donations) != 2 {
		t.Errorf("got %d donations, want 2", len(donations))
	}
	want := []string{
		"GET /api/donations/client/" + SeedClientID,
		"POST /api/auth/refresh",
		"GET /api/donations/client/" + SeedClientID,
	}
	if got := h.server.Requests(); !slices.Equal(got, want) {
		t.Errorf("requests = %q, want %q", got, want)
	}
	if tokens.RefreshToken() == staleRefresh {
		t.Error("refresh token was not rotated")
	}

	// The consumed refresh token is single-use.
	stale := &api.MemoryTokens{}
	stale.SetTokens(api.Credentials{AccessToken: "expired", RefreshToken: staleRefresh})
	replay, err := api.NewClient(api.ClientConfig{BaseURL: h.url, Tokens: stale})
	if err != nil {
		t.Fatal(err)
	}
	if err := replay.Refresh(context.Background()); err == nil {
		t.Error("replayed refresh token was accepted")
	}
}

func TestLogoutRevokesRefreshTokens(t *testing.T) {
	h := newHarness(t)
	client, tokens := h.client(t, SeedClientEmail)
	refresh := tokens.RefreshToken()

	if err := client.Logout(context.Background()); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	h.server.store.mu.Lock()
	_, live := h.server.store.refresh[refresh]
	h.server.store.mu.Unlock()
	if live {
		t.Error("refresh token survived logout")
	}
}

func TestRoleEnforcement(t *testing.T) {
	h := newHarness(t)
	client, _ := h.client(t, SeedClientEmail)

	if _, err := client.DashboardStats(context.Background()); !errors.Is(err, api.ErrForbidden) {
		t.Errorf("client DashboardStats err = %v, want ErrForbidden", err)
	}
	if _, err := client.DonationsByOrphanage(context.Background(), SeedOrphanageID); !errors.Is(err, api.ErrForbidden) {
		t.Errorf("client reading orphanage donations err = %v, want ErrForbidden", err)
	}

	admin, _ := h.client(t, SeedAdminEmail)
	stats, err := admin.DashboardStats(context.Background())
	if err != nil {
		t.Fatalf("admin DashboardStats: %v", err)
	}
	if stats.TotalClients != 1 || stats.TotalOrphanages != 2 || stats.TotalDonations != 2 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestRegisteredOrphanageAwaitsApproval(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	client, _ := h.client(t, "")

	payload, err := client.Register(ctx, api.RoleOrphanage, map[string]any{
		"name":          "Little Stars",
		"email":         "stars@example.org",
		"password":      "Stars2026",
		"phoneNumber":   "+237 600 000 000",
		"location":      "Buea",
		"contactPerson": "Grace",
		"description":   "A new home",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if payload.User.IsActive {
		t.Error("new orphanage is active before approval")
	}
	orphanageID := payload.User.ID

	// Not yet visible to donors.
	public, err := client.PublicOrphanages(ctx, api.PageRequest{})
	if err != nil {
		t.Fatal(err)
	}
	for _, orphanage := range public.Content {
		if orphanage.ID == orphanageID {
			t.Error("pending orphanage listed publicly")
		}
	}

	// Its own profile is readable.
	profile, err := client.GetOrphanage(ctx, orphanageID)
	if err != nil {
		t.Fatalf("GetOrphanage(self): %v", err)
	}
	if profile.ContactPerson != "Grace" || profile.Location != "Buea" {
		t.Errorf("profile = %+v", profile)
	}

	admin, _ := h.client(t, SeedAdminEmail)
	if err := admin.ModerateOrphanage(ctx, orphanageID, true); err != nil {
		t.Fatalf("ModerateOrphanage: %v", err)
	}
	again, err := client.Login(ctx, "stars@example.org", "Stars2026")
	if err != nil {
		t.Fatal(err)
	}
	if !again.User.IsActive {
		t.Error("orphanage still inactive after approval")
	}
}

func TestRegisterValidation(t *testing.T) {
	h := newHarness(t)
	client, _ := h.client(t, "")

	_, err := client.Register(context.Background(), api.RoleClient, map[string]any{
		"name": "", "email": "not-an-email", "password": "short",
	})
	var apiError *api.Error
	if !errors.As(err, &apiError) || apiError.StatusCode != http.StatusBadRequest {
		t.Fatalf("err = %v, want 400", err)
	}
	for _, field := range []string{"name", "email", "password"} {
		if apiError.ValidationErrors[field] == "" {
			t.Errorf("missing validation error for %s: %v", field, apiError.ValidationErrors)
		}
	}

	_, err = client.Register(context.Background(), api.RoleClient, map[string]any{
		"name": "Dup", "email": SeedClientEmail, "password": "Password123",
	})
	if !errors.Is(err, api.ErrConflict) {
		t.Errorf("duplicate email err = %v, want ErrConflict", err)
	}
}

func TestDonationLifecycle(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	donor, _ := h.client(t, SeedClientEmail)
	orphanage, _ := h.client(t, SeedOrphanageEmail)

	amount := 5000.0
	created, err := donor.CreateDonation(ctx, api.CreateDonationRequest{
		ClientID:     SeedClientID,
		OrphanageID:  SeedOrphanageID,
		DonationType: api.DonationCash,
		CashAmount:   &amount,
	})
	if err != nil {
		t.Fatalf("CreateDonation: %v", err)
	}
	if created.Status != api.DonationPending || created.OrphanageName != "Hope Children's Home" {
		t.Errorf("created = %+v", created)
	}

	if _, err := orphanage.TransitionDonation(ctx, created.ID, api.ActionComplete); !errors.Is(err, api.ErrConflict) {
		t.Errorf("complete before confirm err = %v, want ErrConflict", err)
	}
	if _, err := donor.TransitionDonation(ctx, created.ID, api.ActionConfirm); !errors.Is(err, api.ErrForbidden) {
		t.Errorf("donor confirm err = %v, want ErrForbidden", err)
	}

	confirmed, err := orphanage.TransitionDonation(ctx, created.ID, api.ActionConfirm)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if confirmed.Status != api.DonationConfirmed || !confirmed.IsConfirmed {
		t.Errorf("confirmed = %+v", confirmed)
	}
	if _, err := orphanage.TransitionDonation(ctx, created.ID, api.ActionComplete); err != nil {
		t.Fatalf("complete: %v", err)
	}

	total, err := orphanage.TotalCashForOrphanage(ctx, SeedOrphanageID)
	if err != nil {
		t.Fatalf("TotalCashForOrphanage: %v", err)
	}
	if total != 15000 {
		t.Errorf("total = %v, want 15000", total)
	}

	unread, err := donor.UnreadNotificationCount(ctx, SeedClientID)
	if err != nil {
		t.Fatal(err)
	}
	// Welcome, submitted, confirmed, completed.
	if unread != 4 {
		t.Errorf("unread = %d, want 4", unread)
	}
}

func TestInactiveOrphanageCannotTransition(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	pending, _ := h.client(t, SeedPendingEmail)

	h.server.store.mu.Lock()
	h.server.store.donations["don-pending"] = &api.Donation{
		ID: "don-pending", UserID: SeedClientID, OrphanageID: SeedPendingOrphanageID,
		DonationType: api.DonationKind, Status: api.DonationPending, ItemDescription: "books",
	}
	h.server.store.mu.Unlock()

	_, err := pending.TransitionDonation(ctx, "don-pending", api.ActionConfirm)
	var apiError *api.Error
	if !errors.As(err, &apiError) || apiError.StatusCode != http.StatusForbidden {
		t.Fatalf("err = %v, want 403", err)
	}
	if !strings.Contains(apiError.Message, "pending approval") {
		t.Errorf("Message = %q", apiError.Message)
	}
}

func TestDonationValidation(t *testing.T) {
	h := newHarness(t)
	donor, _ := h.client(t, SeedClientEmail)

	_, err := donor.CreateDonation(context.Background(), api.CreateDonationRequest{
		OrphanageID:  SeedPendingOrphanageID,
		DonationType: api.DonationKind,
	})
	var apiError *api.Error
	if !errors.As(err, &apiError) || apiError.StatusCode != http.StatusBadRequest {
		t.Fatalf("err = %v, want 400", err)
	}
	if apiError.ValidationErrors["orphanageId"] == "" || apiError.ValidationErrors["itemDescription"] == "" {
		t.Errorf("validation = %v", apiError.ValidationErrors)
	}
}

func TestPublicCatalog(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	client, _ := h.client(t, "")

	approved, err := client.ApprovedProducts(ctx, api.PageRequest{Size: 2})
	if err != nil {
		t.Fatalf("ApprovedProducts: %v", err)
	}
	if approved.TotalElements != 3 || approved.TotalPages != 2 || len(approved.Content) != 2 || approved.Last {
		t.Errorf("page = %+v", approved)
	}

	found, err := client.SearchProducts(ctx, "COAT", api.PageRequest{})
	if err != nil {
		t.Fatal(err)
	}
	if len(found.Content) != 1 || found.Content[0].ID != "prod-1" {
		t.Errorf("search = %+v", found.Content)
	}

	clothing, err := client.ProductsByCategory(ctx, "clothing", api.PageRequest{})
	if err != nil {
		t.Fatal(err)
	}
	// The rain jacket is still pending moderation.
	if len(clothing.Content) != 1 {
		t.Errorf("clothing = %+v", clothing.Content)
	}

	categories, err := client.Categories(ctx)
	if err != nil || len(categories) != 3 {
		t.Errorf("Categories = %v, %v", categories, err)
	}

	if _, err := client.GetProduct(ctx, "missing"); !errors.Is(err, api.ErrNotFound) {
		t.Errorf("GetProduct(missing) err = %v", err)
	}
}

func TestProductModeration(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	seller, _ := h.client(t, SeedClientEmail)
	admin, _ := h.client(t, SeedAdminEmail)

	product, err := seller.CreateProduct(ctx, api.CreateProductRequest{
		Name: "Board game", Description: "Complete set", Price: 4000, CategoryID: "cat-3",
	})
	if err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}
	if product.IsApproved || product.CategoryName != "Toys" {
		t.Errorf("product = %+v", product)
	}
	if err := admin.ModerateProduct(ctx, product.ID, true, ""); err != nil {
		t.Fatalf("ModerateProduct: %v", err)
	}
	found, err := seller.SearchProducts(ctx, "board", api.PageRequest{})
	if err != nil || len(found.Content) != 1 {
		t.Errorf("approved product not searchable: %v %v", found, err)
	}
}

func TestUploadImage(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	client, _ := h.client(t, SeedClientEmail)

	var encoded bytes.Buffer
	picture := image.NewRGBA(image.Rect(0, 0, 4, 4))
	picture.Set(1, 1, color.RGBA{R: 255, A: 255})
	if err := png.Encode(&encoded, picture); err != nil {
		t.Fatal(err)
	}
	upload, err := client.UploadImage(ctx, "dot.png", bytes.NewReader(encoded.Bytes()))
	if err != nil {
		t.Fatalf("UploadImage: %v", err)
	}
	if upload.ContentType != "image/png" || upload.Size != int64(encoded.Len()) || upload.Filename != "dot.png" {
		t.Errorf("upload = %+v", upload)
	}

	response, err := http.Get(client.ImageURL(upload.ImageID))
	if err != nil {
		t.Fatal(err)
	}
	defer response.Body.Close()
	body, _ := io.ReadAll(response.Body)
	if response.StatusCode != http.StatusOK || !bytes.Equal(body, encoded.Bytes()) {
		t.Errorf("GET image: status %d, %d bytes", response.StatusCode, len(body))
	}
}

func TestUnauthenticatedRequestsGet401JSON(t *testing.T) {
	h := newHarness(t)
	response, err := http.Get(h.url + "/admin/dashboard/stats")
	if err != nil {
		t.Fatal(err)
	}
	defer response.Body.Close()
	if response.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d", response.StatusCode)
	}
	if contentType := response.Header.Get("Content-Type"); contentType != "application/json" {
		t.Errorf("Content-Type = %q", contentType)
	}
	if response.Header.Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID")
	}
}
