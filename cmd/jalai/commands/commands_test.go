// Copyright 2026 The JALAI Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/jalai-group/jalai/api"
	"github.com/jalai-group/jalai/cmd/jalai/cli"
	"github.com/jalai-group/jalai/form"
	"github.com/jalai-group/jalai/internal/mockapi"
	"github.com/jalai-group/jalai/lib/sealed"
	"github.com/jalai-group/jalai/lib/testutil"
	"github.com/jalai-group/jalai/lib/version"
	"github.com/jalai-group/jalai/lib/wizardui"
	"github.com/jalai-group/jalai/session"
	"github.com/jalai-group/jalai/view"
)

// harness runs CLI commands against a mock backend with state in a
// temporary directory.
type harness struct {
	t            *testing.T
	backend      *testutil.Backend
	dir          string
	passwordFile string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	backend := testutil.MockBackend(t)
	dir := t.TempDir()

	configPath := filepath.Join(dir, "jalai.yaml")
	configuration := fmt.Sprintf(`environment: development
api:
  base_url: %s
  timeout: 10s
paths:
  state: %s
  cache: %s
  runtime: %s
session:
  seal: true
cache:
  ttl: 5m
`, backend.URL, filepath.Join(dir, "state"), filepath.Join(dir, "cache"), filepath.Join(dir, "runtime"))
	if err := os.WriteFile(configPath, []byte(configuration), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("JALAI_CONFIG", configPath)
	t.Setenv("JALAI_API_URL", "")
	t.Setenv("JALAI_ENV", "")
	t.Setenv("JALAI_ENV_FILE", "")

	passwordFile := filepath.Join(dir, "password")
	if err := os.WriteFile(passwordFile, []byte(mockapi.SeedPassword+"\n"), 0600); err != nil {
		t.Fatal(err)
	}
	return &harness{t: t, backend: backend, dir: dir, passwordFile: passwordFile}
}

// run executes one command line and returns stdout.
func (h *harness) run(args ...string) (string, error) {
	h.t.Helper()
	var stdout, stderr bytes.Buffer
	root := NewRoot(Streams{In: strings.NewReader(""), Out: &stdout, Err: &stderr})
	err := root.Execute(context.Background(), args, slog.New(slog.DiscardHandler))
	return stdout.String(), err
}

// mustRun executes a command line that must succeed.
func (h *harness) mustRun(args ...string) string {
	h.t.Helper()
	output, err := h.run(args...)
	if err != nil {
		h.t.Fatalf("jalai %s: %v", strings.Join(args, " "), err)
	}
	return output
}

func (h *harness) login(email string) {
	h.t.Helper()
	h.mustRun("login", email, "--password-file", h.passwordFile)
}

// writeFile writes content under the harness directory.
func (h *harness) writeFile(name, content string) string {
	h.t.Helper()
	path := filepath.Join(h.dir, name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		h.t.Fatal(err)
	}
	return path
}

func decodeJSON[T any](t *testing.T, output string) T {
	t.Helper()
	var value T
	if err := json.Unmarshal([]byte(output), &value); err != nil {
		t.Fatalf("decoding %q: %v", output, err)
	}
	return value
}

func requireCategory(t *testing.T, err error, want cli.ErrorCategory) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected a %s error, got nil", want)
	}
	if got := cli.Category(err); got != want {
		t.Fatalf("category = %s, want %s (error: %v)", got, want, err)
	}
}

const donationDraft = `{
	// Donor name and email come from the signed-in account.
	"donorPhone": "+237 600 000 000",
	"donationType": "monetary",
	"monetaryAmount": 5000,
	"orphanageId": "orphanage-1",
	"preferredDate": "2026-03-15",
	"agreeToTerms": true,
}`

func TestLoginWhoamiLogout(t *testing.T) {
	h := newHarness(t)

	output := h.mustRun("login", "client@jalai.org", "--password-file", h.passwordFile)
	if !strings.Contains(output, "Logged in as") || !strings.Contains(output, "CLIENT") {
		t.Errorf("login output = %q", output)
	}

	data, err := os.ReadFile(filepath.Join(h.dir, "state", "session.json"))
	if err != nil {
		t.Fatalf("reading session file: %v", err)
	}
	if !sealed.IsSealed(data) {
		t.Error("session file is not sealed")
	}
	if bytes.Contains(data, []byte("client@jalai.org")) {
		t.Error("session file leaks the email in plaintext")
	}

	result := decodeJSON[whoamiResult](t, h.mustRun("whoami", "--json"))
	if result.User.ID != mockapi.SeedClientID || result.User.UserType != api.RoleClient {
		t.Errorf("whoami user = %+v", result.User)
	}
	if result.TokenExpiresAt == nil {
		t.Error("whoami did not report the token expiry")
	}

	if output := h.mustRun("logout"); !strings.Contains(output, "Logged out") {
		t.Errorf("logout output = %q", output)
	}
	_, err = h.run("whoami")
	requireCategory(t, err, cli.CategoryUnauthorized)
	if code := cli.ExitCode(err); code != 3 {
		t.Errorf("exit code = %d, want 3", code)
	}

	// Logging out twice is not an error.
	h.mustRun("logout")
}

func TestLoginBadPassword(t *testing.T) {
	h := newHarness(t)
	wrong := h.writeFile("wrong", "not-the-password")
	_, err := h.run("login", "client@jalai.org", "--password-file", wrong)
	requireCategory(t, err, cli.CategoryUnauthorized)
	if !strings.Contains(err.Error(), "Invalid email or password") {
		t.Errorf("error = %v", err)
	}
}

func TestDashboardRequiresLogin(t *testing.T) {
	h := newHarness(t)
	output, err := h.run("dashboard")
	if !cli.Silent(err) {
		t.Fatalf("expected a silent exit, got %v", err)
	}
	if code := cli.ExitCode(err); code != 3 {
		t.Errorf("exit code = %d, want 3", code)
	}
	if !strings.Contains(output, "Access Denied") || !strings.Contains(output, "jalai login") {
		t.Errorf("dashboard output = %q", output)
	}

	output, _ = h.run("dashboard", "--json")
	result := decodeJSON[dashboardResult](t, output)
	if result.State != view.StateDenied.String() || result.Redirect != view.RedirectLogin {
		t.Errorf("result = %+v", result)
	}
}

func TestDonateAndConfirm(t *testing.T) {
	h := newHarness(t)
	h.login("client@jalai.org")

	draft := h.writeFile("donation.jsonc", donationDraft)
	created := decodeJSON[api.Donation](t, h.mustRun("donate", "--draft", draft, "--json"))
	if created.Status != api.DonationPending || created.DonationType != api.DonationCash {
		t.Fatalf("created = %+v", created)
	}
	if created.CashAmount == nil || *created.CashAmount != 5000 {
		t.Errorf("cash amount = %v", created.CashAmount)
	}

	listed := decodeJSON[[]api.Donation](t, h.mustRun("donation", "list", "--json"))
	if !slices.ContainsFunc(listed, func(d api.Donation) bool { return d.ID == created.ID }) {
		t.Errorf("client donation list is missing %s", created.ID)
	}

	// Clients cannot manage donations they made, only cancel them.
	_, err := h.run("donation", "confirm", created.ID)
	requireCategory(t, err, cli.CategoryForbidden)

	h.login("hope@jalai.org")
	if output := h.mustRun("donation", "confirm", created.ID); !strings.Contains(output, "CONFIRMED") {
		t.Errorf("confirm output = %q", output)
	}
	if output := h.mustRun("donation", "complete", created.ID); !strings.Contains(output, "COMPLETED") {
		t.Errorf("complete output = %q", output)
	}
	_, err = h.run("donation", "confirm", created.ID)
	requireCategory(t, err, cli.CategoryConflict)

	result := decodeJSON[dashboardResult](t, h.mustRun("dashboard", "--json"))
	if result.State != view.StateAuthorized.String() || result.User == nil || result.User.ID != mockapi.SeedOrphanageID {
		t.Errorf("orphanage dashboard = %+v", result)
	}
}

func TestDonateRequiresClient(t *testing.T) {
	h := newHarness(t)
	draft := h.writeFile("donation.jsonc", donationDraft)

	_, err := h.run("donate", "--draft", draft)
	requireCategory(t, err, cli.CategoryUnauthorized)

	h.login("admin@jalai.org")
	_, err = h.run("donate", "--draft", draft)
	requireCategory(t, err, cli.CategoryForbidden)
}

func TestDonateDraftValidation(t *testing.T) {
	h := newHarness(t)
	h.login("client@jalai.org")

	draft := h.writeFile("incomplete.jsonc", `{
		"donorPhone": "+237 600 000 000",
		"donationType": "monetary",
	}`)
	_, err := h.run("donate", "--draft", draft)
	requireCategory(t, err, cli.CategoryValidation)
	var validation *form.ValidationError
	if !errors.As(err, &validation) || validation.Step != 2 {
		t.Fatalf("expected step 2 validation error, got %v", err)
	}
	if validation.Errors[form.FieldMonetaryAmount] == "" {
		t.Errorf("errors = %v", validation.Errors)
	}
}

func TestOrphanageRegistrationApproval(t *testing.T) {
	h := newHarness(t)

	email := testutil.UniqueEmail("bright")
	draft := h.writeFile("orphanage.jsonc", `{
		"name": "Bright Future Home",
		"email": "`+email+`",
		"phone": "+237 611 111 111",
		"location": "Douala",
		"contactPerson": "Marie Ndongo",
		"description": "A home for **twenty** children.",
		"agreeToTerms": true,
	}`)
	output := h.mustRun("register", "orphanage", "--draft", draft, "--password-file", h.passwordFile, "--json")
	registered := decodeJSON[api.User](t, output)
	if registered.UserType != api.RoleOrphanage || registered.IsActive {
		t.Fatalf("registered = %+v", registered)
	}

	// The pending orphanage sees the notice and cannot
	// manage donations.
	if output := h.mustRun("dashboard"); !strings.Contains(output, "Pending Approval") {
		t.Errorf("dashboard output = %q", output)
	}
	before := len(h.backend.Server.Requests())
	_, err := h.run("donation", "confirm", "don-1")
	requireCategory(t, err, cli.CategoryForbidden)
	if !errors.Is(err, view.ErrPendingApproval) {
		t.Errorf("error = %v, want ErrPendingApproval", err)
	}
	if after := len(h.backend.Server.Requests()); after != before {
		t.Errorf("pending orphanage made %d API calls", after-before)
	}

	h.login("admin@jalai.org")
	all := decodeJSON[[]api.Orphanage](t, h.mustRun("orphanage", "list", "--all", "--json"))
	if !slices.ContainsFunc(all, func(o api.Orphanage) bool { return o.ID == registered.ID && !o.IsActive }) {
		t.Fatalf("admin list is missing pending %s: %+v", registered.ID, all)
	}
	h.mustRun("orphanage", "approve", registered.ID)

	h.login(email)
	result := decodeJSON[dashboardResult](t, h.mustRun("dashboard", "--json"))
	if result.State != view.StateAuthorized.String() {
		t.Errorf("dashboard after approval = %+v", result)
	}
}

func TestRegisterRejectsAdmin(t *testing.T) {
	h := newHarness(t)
	_, err := h.run("register", "admin")
	requireCategory(t, err, cli.CategoryValidation)
}

func TestAdminDashboardAndLists(t *testing.T) {
	h := newHarness(t)
	h.login("admin@jalai.org")

	output := h.mustRun("dashboard")
	for _, want := range []string{"Platform", "Sunrise", "Awaiting approval"} {
		if !strings.Contains(output, want) {
			t.Errorf("admin dashboard missing %q:\n%s", want, output)
		}
	}

	output = h.mustRun("donation", "list")
	if !strings.Contains(output, "don-1") || !strings.Contains(output, "Page 1 of 1") {
		t.Errorf("donation list = %q", output)
	}

	h.mustRun("product", "approve", "prod-4")
	products := decodeJSON[[]api.Product](t, h.mustRun("product", "list", "--json"))
	if len(products) != 4 {
		t.Errorf("approved products = %d, want 4", len(products))
	}
}

func TestPublicCatalogUsesCache(t *testing.T) {
	h := newHarness(t)

	first := decodeJSON[[]api.Product](t, h.mustRun("product", "list", "--json"))
	second := decodeJSON[[]api.Product](t, h.mustRun("product", "list", "--json"))
	if len(first) != 3 || len(second) != 3 {
		t.Fatalf("products = %d then %d, want 3", len(first), len(second))
	}
	count := 0
	for _, request := range h.backend.Server.Requests() {
		if request == "GET /api/products/approved" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("backend served %d product listings, want 1 (second from the cache snapshot)", count)
	}

	search := decodeJSON[[]api.Product](t, h.mustRun("product", "search", "jacket", "--json"))
	if len(search) != 0 {
		t.Errorf("search returned unapproved products: %+v", search)
	}

	output := h.mustRun("orphanage", "show", mockapi.SeedOrphanageID)
	if !strings.Contains(output, "Hope") {
		t.Errorf("profile = %q", output)
	}
	_, err := h.run("orphanage", "show", mockapi.SeedPendingOrphanageID)
	requireCategory(t, err, cli.CategoryNotFound)
}

func TestExpiredTokenRefreshesTransparently(t *testing.T) {
	h := newHarness(t)
	h.login("client@jalai.org")
	h.backend.Server.ResetRequests()
	h.backend.Clock.Advance(20 * time.Minute)

	h.mustRun("dashboard")
	if !slices.Contains(h.backend.Server.Requests(), "POST /api/auth/refresh") {
		t.Errorf("requests = %v, want a refresh", h.backend.Server.Requests())
	}

	entries := decodeJSON[[]session.DebugEntry](t, h.mustRun("debug", "log", "--json"))
	messages := make([]string, 0, len(entries))
	for _, entry := range entries {
		messages = append(messages, entry.Message)
	}
	for _, want := range []string{"login succeeded", "refreshing access token"} {
		if !slices.Contains(messages, want) {
			t.Errorf("auth log %v is missing %q", messages, want)
		}
	}

	h.mustRun("debug", "log", "--clear")
	if output := h.mustRun("debug", "log"); !strings.Contains(output, "No auth events") {
		t.Errorf("after clear: %q", output)
	}
}

func TestUpload(t *testing.T) {
	h := newHarness(t)

	picture := image.NewRGBA(image.Rect(0, 0, 4, 4))
	picture.Set(1, 1, color.RGBA{R: 200, A: 255})
	var encoded bytes.Buffer
	if err := png.Encode(&encoded, picture); err != nil {
		t.Fatal(err)
	}
	path := h.writeFile("toy.png", encoded.String())

	_, err := h.run("upload", path)
	requireCategory(t, err, cli.CategoryUnauthorized)

	h.login("client@jalai.org")
	upload := decodeJSON[api.Upload](t, h.mustRun("upload", path, "--json"))
	if upload.ImageID == "" || upload.ContentType != "image/png" {
		t.Errorf("upload = %+v", upload)
	}

	notImage := h.writeFile("notes.txt", "plain text")
	_, err = h.run("upload", notImage)
	requireCategory(t, err, cli.CategoryValidation)
}

func TestUnknownCommandSuggests(t *testing.T) {
	h := newHarness(t)
	_, err := h.run("donat")
	requireCategory(t, err, cli.CategoryValidation)
	if !strings.Contains(err.Error(), `"donate"`) {
		t.Errorf("error = %v", err)
	}
}

func TestVersion(t *testing.T) {
	h := newHarness(t)
	info := decodeJSON[version.BuildInfo](t, h.mustRun("version", "--json"))
	if info.Version != version.Version {
		t.Errorf("version = %+v", info)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want cli.ErrorCategory
	}{
		{"network", fmt.Errorf("%w: dial tcp: refused", api.ErrNetwork), cli.CategoryTransient},
		{"expired", api.ErrSessionExpired, cli.CategoryUnauthorized},
		{"bad request", &api.Error{StatusCode: 400, Message: "Validation failed"}, cli.CategoryValidation},
		{"not found", &api.Error{StatusCode: 404}, cli.CategoryNotFound},
		{"conflict", &api.Error{StatusCode: 409}, cli.CategoryConflict},
		{"server", &api.Error{StatusCode: 503}, cli.CategoryTransient},
		{"pending", view.ErrPendingApproval, cli.CategoryForbidden},
		{"denied", fmt.Errorf("%w: not for you", view.ErrDenied), cli.CategoryForbidden},
		{"form", &form.ValidationError{Step: 1, Errors: map[string]string{"email": "required"}}, cli.CategoryValidation},
		{"other", errors.New("boom"), cli.CategoryInternal},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			requireCategory(t, Classify(test.err), test.want)
		})
	}

	if code := cli.ExitCode(Classify(wizardui.ErrAborted)); code != 130 {
		t.Errorf("aborted wizard exit code = %d, want 130", code)
	}
	if Classify(nil) != nil {
		t.Error("Classify(nil) != nil")
	}

	detailed := Classify(&api.Error{StatusCode: 400, Message: "Validation failed",
		ValidationErrors: map[string]string{"cashAmount": "must be positive"}})
	if !strings.Contains(detailed.Error(), "cashAmount: must be positive") {
		t.Errorf("validation detail missing: %v", detailed)
	}
	var apiError *api.Error
	if !errors.As(detailed, &apiError) {
		t.Error("classified error lost the *api.Error")
	}
}

// TestDonationRechecksSession covers a wizard left open while another
// jalai process changes who is signed in.
func TestDonationRechecksSession(t *testing.T) {
	h := newHarness(t)
	h.login(mockapi.SeedClientEmail)

	app, err := Open(Globals{}, Streams{In: strings.NewReader(""), Out: io.Discard, Err: io.Discard}, slog.New(slog.DiscardHandler))
	if err != nil {
		t.Fatal(err)
	}
	defer app.Close()
	donor, ok := app.Session.User()
	if !ok {
		t.Fatal("no session after login")
	}
	if err := app.recheck(view.ClientGate, donor); err != nil {
		t.Fatalf("unchanged session: %v", err)
	}

	h.login(mockapi.SeedAdminEmail)
	requireCategory(t, app.recheck(view.ClientGate, donor), cli.CategoryForbidden)

	h.mustRun("logout")
	requireCategory(t, app.recheck(view.ClientGate, donor), cli.CategoryUnauthorized)

	draft := h.writeFile("client.jsonc", `{
		"name": "Paul Biya Jr",
		"email": "`+testutil.UniqueEmail("paul")+`",
		"phone": "+237 622 222 222",
		"location": "Yaoundé",
		"agreeToTerms": true,
	}`)
	h.mustRun("register", "client", "--draft", draft, "--password-file", h.passwordFile)
	requireCategory(t, app.recheck(view.ClientGate, donor), cli.CategoryConflict)
}

func TestWhoamiLogsUnreadableToken(t *testing.T) {
	h := newHarness(t)
	h.login(mockapi.SeedClientEmail)

	app, err := Open(Globals{}, Streams{In: strings.NewReader(""), Out: io.Discard, Err: io.Discard}, slog.New(slog.DiscardHandler))
	if err != nil {
		t.Fatal(err)
	}
	if err := app.Client.Tokens().SetTokens(api.Credentials{AccessToken: "opaque-session-handle"}); err != nil {
		t.Fatal(err)
	}
	app.Close()

	var stdout, logs bytes.Buffer
	root := NewRoot(Streams{In: strings.NewReader(""), Out: &stdout, Err: io.Discard})
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	if err := root.Execute(context.Background(), []string{"whoami", "--json"}, logger); err != nil {
		t.Fatalf("whoami: %v", err)
	}
	result := decodeJSON[whoamiResult](t, stdout.String())
	if result.User.Email != mockapi.SeedClientEmail || result.TokenExpiresAt != nil {
		t.Errorf("result = %+v", result)
	}
	if !strings.Contains(logs.String(), "access token carries no readable claims") {
		t.Errorf("token inspection failure not logged:\n%s", logs.String())
	}
}

func TestOrderCommands(t *testing.T) {
	h := newHarness(t)
	h.login(mockapi.SeedClientEmail)

	orders := decodeJSON[[]api.Order](t, h.mustRun("order", "list", "--json"))
	if len(orders) != 1 || orders[0].OrderID != "ord-1" {
		t.Fatalf("client orders = %+v", orders)
	}
	output := h.mustRun("order", "show", "ord-1")
	if !strings.Contains(output, "DELIVERED") {
		t.Errorf("order show = %q", output)
	}
	_, err := h.run("order", "status", "ord-1", "refunded")
	requireCategory(t, err, cli.CategoryForbidden)

	h.login(mockapi.SeedAdminEmail)
	_, err = h.run("order", "status", "ord-1", "lost")
	requireCategory(t, err, cli.CategoryValidation)

	updated := decodeJSON[api.Order](t, h.mustRun("order", "status", "ord-1", "refunded", "--json"))
	if updated.Status != api.OrderRefunded {
		t.Errorf("status = %s, want REFUNDED", updated.Status)
	}
	output = h.mustRun("order", "list")
	if !strings.Contains(output, "REFUNDED") || !strings.Contains(output, "Page 1 of 1") {
		t.Errorf("admin order list = %q", output)
	}
	_, err = h.run("order", "show", "ord-404")
	requireCategory(t, err, cli.CategoryNotFound)
}

func TestReviewModeration(t *testing.T) {
	h := newHarness(t)
	h.login(mockapi.SeedClientEmail)

	_, err := h.run("review", "add", "--product", "prod-1", "--rating", "6")
	requireCategory(t, err, cli.CategoryValidation)
	_, err = h.run("review", "add", "--product", "prod-missing", "--rating", "4")
	requireCategory(t, err, cli.CategoryValidation)

	review := decodeJSON[api.Review](t, h.mustRun("review", "add",
		"--product", "prod-1", "--rating", "5", "--comment", "Warm and well made", "--json"))
	if review.Status != "PENDING" || review.ClientID != mockapi.SeedClientID {
		t.Fatalf("created review = %+v", review)
	}
	_, err = h.run("review", "approve", review.ReviewID)
	requireCategory(t, err, cli.CategoryForbidden)

	h.login(mockapi.SeedAdminEmail)
	_, err = h.run("review", "add", "--product", "prod-1", "--rating", "3")
	requireCategory(t, err, cli.CategoryForbidden)

	h.mustRun("review", "approve", review.ReviewID)
	reviews := decodeJSON[[]api.Review](t, h.mustRun("review", "list", "--json"))
	if len(reviews) != 1 || reviews[0].Status != "APPROVED" {
		t.Fatalf("reviews after approval = %+v", reviews)
	}
	h.mustRun("review", "reject", review.ReviewID)
	reviews = decodeJSON[[]api.Review](t, h.mustRun("review", "list", "--json"))
	if reviews[0].Status != "REJECTED" {
		t.Errorf("status after rejection = %s", reviews[0].Status)
	}
	_, err = h.run("review", "approve", "rev-404")
	requireCategory(t, err, cli.CategoryNotFound)
}

func TestPaymentsAndClientList(t *testing.T) {
	h := newHarness(t)
	h.login(mockapi.SeedClientEmail)

	_, err := h.run("payment", "add", "--amount", "5000", "--method", "barter")
	requireCategory(t, err, cli.CategoryValidation)
	_, err = h.run("payment", "add", "--amount", "0")
	requireCategory(t, err, cli.CategoryValidation)
	_, err = h.run("payment", "list")
	requireCategory(t, err, cli.CategoryForbidden)

	payment := decodeJSON[api.Payment](t, h.mustRun("payment", "add",
		"--amount", "5000", "--method", "paypal", "--order", "ord-1", "--json"))
	if payment.Status != "COMPLETED" || payment.PaymentMethod != api.PaymentPayPal ||
		!strings.HasPrefix(payment.TransactionID, "TXN-") {
		t.Fatalf("payment = %+v", payment)
	}
	_, err = h.run("admin", "clients")
	requireCategory(t, err, cli.CategoryForbidden)

	h.login(mockapi.SeedAdminEmail)
	payments := decodeJSON[[]api.Payment](t, h.mustRun("payment", "list", "--json"))
	if len(payments) != 1 || payments[0].CustomerID != mockapi.SeedClientID {
		t.Errorf("payments = %+v", payments)
	}

	clients := decodeJSON[[]api.ClientSummary](t, h.mustRun("admin", "clients", "--json"))
	index := slices.IndexFunc(clients, func(c api.ClientSummary) bool { return c.ID == mockapi.SeedClientID })
	if index < 0 {
		t.Fatalf("seed client missing from %+v", clients)
	}
	if clients[index].TotalOrders != 1 || clients[index].TotalSpent != 5000 {
		t.Errorf("seed client totals = %+v", clients[index])
	}
	output := h.mustRun("admin", "clients")
	if !strings.Contains(output, mockapi.SeedClientEmail) {
		t.Errorf("client table = %q", output)
	}
}

func TestNotificationRead(t *testing.T) {
	h := newHarness(t)
	h.login(mockapi.SeedClientEmail)

	output := h.mustRun("notification", "list")
	if !strings.Contains(output, "Welcome to JALAI") || !strings.Contains(output, "1 unread") {
		t.Fatalf("notification list = %q", output)
	}
	h.mustRun("notification", "read", "note-1")
	unread := decodeJSON[[]api.Notification](t, h.mustRun("notification", "list", "--unread", "--json"))
	if len(unread) != 0 {
		t.Errorf("unread after marking = %+v", unread)
	}
	_, err := h.run("notification", "read", "note-404")
	requireCategory(t, err, cli.CategoryNotFound)

	h.login(mockapi.SeedOrphanageEmail)
	_, err = h.run("notification", "list")
	requireCategory(t, err, cli.CategoryForbidden)
}
