// Copyright 2026 The JALAI Authors
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"net/url"
	"strconv"
	"time"
)

// Role is the account type carried in User.UserType.
type Role string

const (
	RoleAdmin     Role = "ADMIN"
	RoleClient    Role = "CLIENT"
	RoleOrphanage Role = "ORPHANAGE"
)

// ParseRole accepts the wire value or its lowercase path form.
func ParseRole(value string) (Role, bool) {
	switch value {
	case "ADMIN", "admin":
		return RoleAdmin, true
	case "CLIENT", "client":
		return RoleClient, true
	case "ORPHANAGE", "orphanage":
		return RoleOrphanage, true
	}
	return "", false
}

// PathSegment is the lowercase form used in /auth/register/{role}.
func (r Role) PathSegment() string {
	switch r {
	case RoleClient:
		return "client"
	case RoleOrphanage:
		return "orphanage"
	case RoleAdmin:
		return "admin"
	}
	return ""
}

// User is the authenticated identity (the session value).
type User struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	UserType Role   `json:"userType"`
	IsActive bool   `json:"isActive"`
}

// Credentials is the token pair issued at login and refresh.
type Credentials struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// PageRequest selects a page of a list endpoint. Page is zero-based.
type PageRequest struct {
	Page int
	Size int
}

// DefaultPageSize is used when PageRequest.Size is zero.
const DefaultPageSize = 10

func (p PageRequest) query() url.Values {
	size := p.Size
	if size <= 0 {
		size = DefaultPageSize
	}
	page := max(p.Page, 0)
	return url.Values{"page": {strconv.Itoa(page)}, "size": {strconv.Itoa(size)}}
}

// Page is the backend's paginated list envelope.
type Page[T any] struct {
	Content       []T  `json:"content"`
	TotalElements int  `json:"totalElements"`
	TotalPages    int  `json:"totalPages"`
	Number        int  `json:"number"`
	Size          int  `json:"size"`
	First         bool `json:"first"`
	Last          bool `json:"last"`
}

// DonationType is the wire enum for donations.
type DonationType string

const (
	DonationCash DonationType = "CASH"
	DonationKind DonationType = "KIND"
	DonationBoth DonationType = "BOTH"
)

// DonationStatus is the server-side lifecycle state of a donation.
type DonationStatus string

const (
	DonationPending    DonationStatus = "PENDING"
	DonationConfirmed  DonationStatus = "CONFIRMED"
	DonationInProgress DonationStatus = "IN_PROGRESS"
	DonationCompleted  DonationStatus = "COMPLETED"
	DonationCancelled  DonationStatus = "CANCELLED"
)

// Donation is a donation record as returned by the backend.
type Donation struct {
	ID              string         `json:"id"`
	UserID          string         `json:"userId,omitempty"`
	OrphanageID     string         `json:"orphanageId"`
	OrphanageName   string         `json:"orphanageName,omitempty"`
	DonorName       string         `json:"donorName,omitempty"`
	DonationType    DonationType   `json:"donationType"`
	Status          DonationStatus `json:"status"`
	CashAmount      *float64       `json:"cashAmount,omitempty"`
	ItemDescription string         `json:"itemDescription,omitempty"`
	AppointmentDate string         `json:"appointmentDate,omitempty"`
	IsConfirmed     bool           `json:"isConfirmed"`
	CreatedAt       *time.Time     `json:"createdAt,omitempty"`
}

// CreateDonationRequest is the body of POST /donations.
type CreateDonationRequest struct {
	ClientID        string       `json:"clientId,omitempty"`
	OrphanageID     string       `json:"orphanageId"`
	DonationType    DonationType `json:"donationType"`
	AppointmentDate string       `json:"appointmentDate,omitempty"`
	CashAmount      *float64     `json:"cashAmount,omitempty"`
	ItemDescription string       `json:"itemDescription,omitempty"`
}

// Orphanage is an orphanage profile.
type Orphanage struct {
	ID                     string  `json:"id"`
	Name                   string  `json:"name"`
	Email                  string  `json:"email,omitempty"`
	Description            string  `json:"description,omitempty"`
	Location               string  `json:"location"`
	PhoneNumber            string  `json:"phoneNumber,omitempty"`
	ContactPerson          string  `json:"contactPerson,omitempty"`
	NumberOfChildren       int     `json:"numberOfChildren,omitempty"`
	ImageURL               string  `json:"imageUrl,omitempty"`
	IsActive               bool    `json:"isActive"`
	TotalDonationsReceived float64 `json:"totalDonationsReceived,omitempty"`
}

// Category is a product category.
type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	IsActive    bool   `json:"isActive"`
}

// Product is a secondhand item listed for sale.
type Product struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	Price        float64 `json:"price"`
	ImageURL     string  `json:"imageUrl,omitempty"`
	CategoryID   string  `json:"categoryId,omitempty"`
	CategoryName string  `json:"categoryName,omitempty"`
	SellerID     string  `json:"sellerId,omitempty"`
	SellerName   string  `json:"sellerName,omitempty"`
	IsApproved   bool    `json:"isApproved"`
	IsAvailable  bool    `json:"isAvailable"`
	Status       string  `json:"status,omitempty"`
}

// CreateProductRequest is the body of POST /products.
type CreateProductRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	CategoryID  string  `json:"categoryId"`
	ImageID     string  `json:"imageId,omitempty"`
}

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderPending    OrderStatus = "PENDING"
	OrderConfirmed  OrderStatus = "CONFIRMED"
	OrderProcessing OrderStatus = "PROCESSING"
	OrderShipped    OrderStatus = "SHIPPED"
	OrderDelivered  OrderStatus = "DELIVERED"
	OrderCancelled  OrderStatus = "CANCELLED"
	OrderRefunded   OrderStatus = "REFUNDED"
)

// OrderStatuses lists every order status in lifecycle order.
var OrderStatuses = []OrderStatus{
	OrderPending, OrderConfirmed, OrderProcessing, OrderShipped,
	OrderDelivered, OrderCancelled, OrderRefunded,
}

// Order is a purchase.
type Order struct {
	OrderID      string      `json:"orderId"`
	ClientID     string      `json:"clientId,omitempty"`
	Status       OrderStatus `json:"status"`
	TotalAmount  float64     `json:"totalAmount"`
	DeliveryDate string      `json:"deliveryDate,omitempty"`
	CreatedAt    *time.Time  `json:"createdAt,omitempty"`
}

// Review is a product review awaiting or past moderation.
type Review struct {
	ReviewID  string `json:"reviewId,omitempty"`
	ClientID  string `json:"clientId"`
	ProductID string `json:"productId"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
	Status    string `json:"status,omitempty"`
}

// PaymentMethod is the wire enum for payments.
type PaymentMethod string

const (
	PaymentCreditCard    PaymentMethod = "CREDIT_CARD"
	PaymentDebitCard     PaymentMethod = "DEBIT_CARD"
	PaymentPayPal        PaymentMethod = "PAYPAL"
	PaymentBankTransfer  PaymentMethod = "BANK_TRANSFER"
	PaymentCash          PaymentMethod = "CASH"
	PaymentMobilePayment PaymentMethod = "MOBILE_PAYMENT"
)

// PaymentMethods lists every accepted payment method.
var PaymentMethods = []PaymentMethod{
	PaymentCreditCard, PaymentDebitCard, PaymentPayPal,
	PaymentBankTransfer, PaymentCash, PaymentMobilePayment,
}

// Payment records money moving for an order.
type Payment struct {
	PaymentID     string        `json:"paymentId,omitempty"`
	CustomerID    string        `json:"customerId"`
	OrderID       string        `json:"orderId,omitempty"`
	PaymentMethod PaymentMethod `json:"paymentMethod"`
	Amount        float64       `json:"amount"`
	Status        string        `json:"status,omitempty"`
	TransactionID string        `json:"transactionId,omitempty"`
	Description   string        `json:"description,omitempty"`
}

// Notification is a message addressed to a client.
type Notification struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Message   string     `json:"message"`
	Type      string     `json:"type,omitempty"`
	IsRead    bool       `json:"isRead"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

// DashboardStats is the admin overview.
type DashboardStats struct {
	TotalClients    int     `json:"totalClients"`
	TotalProducts   int     `json:"totalProducts"`
	TotalOrders     int     `json:"totalOrders"`
	TotalOrphanages int     `json:"totalOrphanages"`
	TotalDonations  int     `json:"totalDonations"`
	TotalRevenue    float64 `json:"totalRevenue"`
}

// ClientSummary is a row of the admin client list.
type ClientSummary struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Email       string  `json:"email"`
	Phone       string  `json:"phone,omitempty"`
	Location    string  `json:"location,omitempty"`
	IsActive    bool    `json:"isActive"`
	TotalOrders int     `json:"totalOrders"`
	TotalSpent  float64 `json:"totalSpent"`
}
