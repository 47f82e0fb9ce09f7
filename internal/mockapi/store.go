// Copyright 2026 The JALAI Authors
// SPDX-License-Identifier: Apache-2.0

package mockapi

import (
	"cmp"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jalai-group/jalai/api"
)

// Seeded identities. Passwords for all of them are SeedPassword.
const (
	SeedPassword = "Password123"

	SeedAdminID            = "admin-1"
	SeedAdminEmail         = "admin@jalai.org"
	SeedClientID           = "client-1"
	SeedClientEmail        = "client@jalai.org"
	SeedOrphanageID        = "orphanage-1"
	SeedOrphanageEmail     = "hope@jalai.org"
	SeedPendingOrphanageID = "orphanage-2"
	SeedPendingEmail       = "sunrise@jalai.org"
)

// account is a registered user. For orphanages the profile shares the
// account ID.
type account struct {
	user         api.User
	passwordHash []byte
	phone        string
	location     string
	orphanage    *api.Orphanage
}

type image struct {
	upload api.Upload
	data   []byte
}

// store is the backend state. All fields are guarded by mu.
type store struct {
	mu sync.Mutex

	accounts      map[string]*account
	byEmail       map[string]string
	refresh       map[string]refreshGrant
	categories    []api.Category
	products      map[string]*api.Product
	donations     map[string]*api.Donation
	orders        map[string]*api.Order
	reviews       map[string]*api.Review
	payments      map[string]*api.Payment
	notifications map[string]*notificationRecord
	images        map[string]*image

	hashCost int
}

type refreshGrant struct {
	userID  string
	expires time.Time
}

type notificationRecord struct {
	clientID string
	api.Notification
}

func newStore(hashCost int) *store {
	return &store{
		accounts:      make(map[string]*account),
		byEmail:       make(map[string]string),
		refresh:       make(map[string]refreshGrant),
		products:      make(map[string]*api.Product),
		donations:     make(map[string]*api.Donation),
		orders:        make(map[string]*api.Order),
		reviews:       make(map[string]*api.Review),
		payments:      make(map[string]*api.Payment),
		notifications: make(map[string]*notificationRecord),
		images:        make(map[string]*image),
		hashCost:      hashCost,
	}
}

// addAccount hashes password and registers the account. Caller holds mu.
func (s *store) addAccount(user api.User, password string) (*account, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return nil, err
	}
	record := &account{user: user, passwordHash: hash}
	s.accounts[user.ID] = record
	s.byEmail[strings.ToLower(user.Email)] = user.ID
	return record, nil
}

// authenticate returns the account when email and password match.
// Caller holds mu.
func (s *store) authenticate(email, password string) (*account, bool) {
	id, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		// Burn a comparison so unknown emails take as long as bad
		// passwords.
		bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return nil, false
	}
	record := s.accounts[id]
	if bcrypt.CompareHashAndPassword(record.passwordHash, []byte(password)) != nil {
		return nil, false
	}
	return record, true
}

var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-password"), bcrypt.MinCost)

func newID() string { return uuid.NewString() }

// seed installs the fixed demo data set.
func (s *store) seed(now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.addAccount(api.User{ID: SeedAdminID, Name: "JALAI Admin", Email: SeedAdminEmail, UserType: api.RoleAdmin, IsActive: true}, SeedPassword); err != nil {
		return err
	}
	client, err := s.addAccount(api.User{ID: SeedClientID, Name: "Amina Njoya", Email: SeedClientEmail, UserType: api.RoleClient, IsActive: true}, SeedPassword)
	if err != nil {
		return err
	}
	client.phone, client.location = "+237 650 000 001", "Yaoundé"

	hope, err := s.addAccount(api.User{ID: SeedOrphanageID, Name: "Hope Children's Home", Email: SeedOrphanageEmail, UserType: api.RoleOrphanage, IsActive: true}, SeedPassword)
	if err != nil {
		return err
	}
	hope.location = "Douala"
	hope.orphanage = &api.Orphanage{
		ID: SeedOrphanageID, Name: hope.user.Name, Email: SeedOrphanageEmail,
		Description:   "A home for **42 children** in Douala.\n\nWe welcome:\n\n- school supplies\n- clothing\n- food",
		Location:      "Douala", PhoneNumber: "+237 650 000 010", ContactPerson: "Marie Ekane",
		NumberOfChildren: 42, IsActive: true,
	}

	sunrise, err := s.addAccount(api.User{ID: SeedPendingOrphanageID, Name: "Sunrise Orphanage", Email: SeedPendingEmail, UserType: api.RoleOrphanage, IsActive: false}, SeedPassword)
	if err != nil {
		return err
	}
	sunrise.location = "Bamenda"
	sunrise.orphanage = &api.Orphanage{
		ID: SeedPendingOrphanageID, Name: sunrise.user.Name, Email: SeedPendingEmail,
		Description: "Awaiting verification.", Location: "Bamenda",
		PhoneNumber: "+237 650 000 020", ContactPerson: "Paul Tanyi",
	}

	s.categories = []api.Category{
		{ID: "cat-1", Name: "Clothing", Description: "Secondhand clothing", IsActive: true},
		{ID: "cat-2", Name: "Books", Description: "School and leisure books", IsActive: true},
		{ID: "cat-3", Name: "Toys", Description: "Toys and games", IsActive: true},
	}
	for _, product := range []api.Product{
		{ID: "prod-1", Name: "Winter coat", Description: "Warm wool coat, size M", Price: 15000, CategoryID: "cat-1", IsApproved: true, IsAvailable: true},
		{ID: "prod-2", Name: "Children's atlas", Description: "Illustrated world atlas", Price: 5000, CategoryID: "cat-2", IsApproved: true, IsAvailable: true},
		{ID: "prod-3", Name: "Wooden puzzle", Description: "24-piece puzzle", Price: 3500, CategoryID: "cat-3", IsApproved: true, IsAvailable: true},
		{ID: "prod-4", Name: "Rain jacket", Description: "Lightweight rain jacket", Price: 8000, CategoryID: "cat-1", IsApproved: false, IsAvailable: true, Status: "PENDING"},
	} {
		product.SellerID, product.SellerName = SeedClientID, client.user.Name
		product.CategoryName = s.categoryName(product.CategoryID)
		if product.Status == "" {
			product.Status = "APPROVED"
		}
		s.products[product.ID] = &product
	}

	amount := 25000.0
	created := now.Add(-48 * time.Hour)
	s.donations["don-1"] = &api.Donation{
		ID: "don-1", UserID: SeedClientID, DonorName: client.user.Name,
		OrphanageID: SeedOrphanageID, OrphanageName: hope.user.Name,
		DonationType: api.DonationCash, Status: api.DonationPending, CashAmount: &amount,
		CreatedAt: &created,
	}
	completedAmount := 10000.0
	completedAt := now.Add(-240 * time.Hour)
	s.donations["don-2"] = &api.Donation{
		ID: "don-2", UserID: SeedClientID, DonorName: client.user.Name,
		OrphanageID: SeedOrphanageID, OrphanageName: hope.user.Name,
		DonationType: api.DonationCash, Status: api.DonationCompleted, CashAmount: &completedAmount,
		IsConfirmed: true, CreatedAt: &completedAt,
	}

	orderedAt := now.Add(-72 * time.Hour)
	s.orders["ord-1"] = &api.Order{OrderID: "ord-1", ClientID: SeedClientID, Status: api.OrderDelivered, TotalAmount: 5000, CreatedAt: &orderedAt}

	noticeAt := now.Add(-time.Hour)
	s.notifications["note-1"] = &notificationRecord{clientID: SeedClientID, Notification: api.Notification{
		ID: "note-1", Title: "Welcome to JALAI", Message: "Thank you for joining.", Type: "INFO", CreatedAt: &noticeAt,
	}}
	return nil
}

// categoryName resolves a category ID. Caller holds mu.
func (s *store) categoryName(id string) string {
	for _, category := range s.categories {
		if category.ID == id {
			return category.Name
		}
	}
	return ""
}

// sortedValues returns the map values ordered by key.
func sortedValues[T any](m map[string]*T, key func(*T) string) []T {
	values := make([]*T, 0, len(m))
	for _, value := range m {
		values = append(values, value)
	}
	slices.SortFunc(values, func(a, b *T) int { return cmp.Compare(key(a), key(b)) })
	result := make([]T, len(values))
	for i, value := range values {
		result[i] = *value
	}
	return result
}

func (s *store) orphanages(includeInactive bool) []api.Orphanage {
	var result []api.Orphanage
	for _, record := range s.accounts {
		if record.orphanage == nil || (!includeInactive && !record.orphanage.IsActive) {
			continue
		}
		profile := *record.orphanage
		profile.TotalDonationsReceived = s.cashTotal(profile.ID)
		result = append(result, profile)
	}
	slices.SortFunc(result, func(a, b api.Orphanage) int { return cmp.Compare(a.ID, b.ID) })
	return result
}

// cashTotal sums completed cash donations to orphanageID.
func (s *store) cashTotal(orphanageID string) float64 {
	var total float64
	for _, donation := range s.donations {
		if donation.OrphanageID == orphanageID && donation.Status == api.DonationCompleted && donation.CashAmount != nil {
			total += *donation.CashAmount
		}
	}
	return total
}
