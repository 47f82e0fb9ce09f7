// Copyright 2026 The JALAI Authors
// SPDX-License-Identifier: Apache-2.0

package form

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jalai-group/jalai/api"
)

// Donation wizard fields.
const (
	FieldDonorName       = "donorName"
	FieldDonorEmail      = "donorEmail"
	FieldDonorPhone      = "donorPhone"
	FieldDonorAddress    = "donorAddress"
	FieldDonationType    = "donationType"
	FieldMonetaryAmount  = "monetaryAmount"
	FieldItemCategory    = "itemCategory"
	FieldItemDescription = "itemDescription"
	FieldItemQuantity    = "itemQuantity"
	FieldItemCondition   = "itemCondition"
	FieldOrphanageID     = "orphanageId"
	FieldOrphanageName   = "orphanageName"
	FieldLocation        = "location"
	FieldUrgencyLevel    = "urgencyLevel"
	FieldDeliveryMethod  = "deliveryMethod"
	FieldPreferredDate   = "preferredDate"
	FieldMessage         = "message"
	FieldAgreeToTerms    = "agreeToTerms"
	FieldAllowContact    = "allowContact"
	FieldIsAnonymous     = "isAnonymous"
)

// Donation types as chosen in the wizard.
const (
	DonationMonetary = "monetary"
	DonationItems    = "items"
)

var (
	// UrgencyLevels are the accepted urgencyLevel values.
	UrgencyLevels = []string{"low", "medium", "high", "urgent"}
	// DeliveryMethods are the accepted deliveryMethod values.
	DeliveryMethods = []string{"pickup", "dropoff", "courier"}
	// ItemCategories are the accepted itemCategory values.
	ItemCategories = []string{"clothing", "food", "books", "toys", "furniture", "electronics", "medical", "other"}
)

// DonationSteps is the four-step donation wizard: donor, donation,
// orphanage and logistics, review.
func DonationSteps() []Step {
	monetary := FieldEquals(FieldDonationType, DonationMonetary)
	items := FieldEquals(FieldDonationType, DonationItems)
	return []Step{
		{
			Title:  "Donor information",
			Fields: []string{FieldDonorName, FieldDonorEmail, FieldDonorPhone, FieldDonorAddress},
			Rules: []Rule{
				{Field: FieldDonorName, Check: Required, Message: "Full name is required"},
				{Field: FieldDonorEmail, Check: Required, Message: "Email is required"},
				{Field: FieldDonorEmail, Check: Email, Message: "Please enter a valid email address"},
				{Field: FieldDonorPhone, Check: Required, Message: "Phone number is required"},
			},
		},
		{
			Title:  "Donation details",
			Fields: []string{FieldDonationType, FieldMonetaryAmount, FieldItemCategory, FieldItemDescription, FieldItemQuantity, FieldItemCondition},
			Rules: []Rule{
				{Field: FieldDonationType, Check: OneOf(DonationMonetary, DonationItems), Message: "Please select a donation type"},
				{Field: FieldMonetaryAmount, Check: Required, Message: "Please enter a donation amount", When: monetary},
				{Field: FieldMonetaryAmount, Check: PositiveNumber, Message: "Amount must be a positive number", When: monetary},
				{Field: FieldItemCategory, Check: OneOf(ItemCategories...), Message: "Please select an item category", When: items},
				{Field: FieldItemDescription, Check: Required, Message: "Please describe the items", When: items},
				{Field: FieldItemQuantity, Check: Optional(PositiveNumber), Message: "Quantity must be a positive number", When: items},
			},
		},
		{
			Title:  "Orphanage and logistics",
			Fields: []string{FieldOrphanageID, FieldLocation, FieldUrgencyLevel, FieldDeliveryMethod, FieldPreferredDate, FieldMessage},
			Rules: []Rule{
				{Field: FieldOrphanageID, Check: Required, Message: "Please select an orphanage"},
				{Field: FieldUrgencyLevel, Check: Optional(OneOf(UrgencyLevels...)), Message: "Unknown urgency level"},
				{Field: FieldDeliveryMethod, Check: Optional(OneOf(DeliveryMethods...)), Message: "Unknown delivery method"},
				{Field: FieldPreferredDate, Check: Optional(Date), Message: "Preferred date must be YYYY-MM-DD"},
			},
		},
		{
			Title:  "Review and submit",
			Fields: []string{FieldAgreeToTerms, FieldAllowContact, FieldIsAnonymous},
			Rules: []Rule{
				{Field: FieldAgreeToTerms, Check: True, Message: "You must agree to the terms and conditions"},
			},
		},
	}
}

// DonationDefaults are the initial donation wizard values.
func DonationDefaults() Values {
	return Values{
		FieldDonorName: "", FieldDonorEmail: "", FieldDonorPhone: "", FieldDonorAddress: "",
		FieldDonationType: "", FieldMonetaryAmount: "",
		FieldItemCategory: "", FieldItemDescription: "", FieldItemQuantity: "", FieldItemCondition: "",
		FieldOrphanageID: "", FieldOrphanageName: "", FieldLocation: "",
		FieldUrgencyLevel: "", FieldDeliveryMethod: "", FieldPreferredDate: "", FieldMessage: "",
		FieldAgreeToTerms: "false", FieldAllowContact: "false", FieldIsAnonymous: "false",
	}
}

// DonationRequest maps completed wizard values to the create-donation
// request: monetary becomes CASH with cashAmount, items becomes KIND
// with an itemDescription that folds in category, quantity and
// condition.
func DonationRequest(values Values, clientID string) (api.CreateDonationRequest, error) {
	request := api.CreateDonationRequest{
		ClientID:        clientID,
		OrphanageID:     values.Trimmed(FieldOrphanageID),
		AppointmentDate: values.Trimmed(FieldPreferredDate),
	}
	if request.OrphanageID == "" {
		return request, fmt.Errorf("donation has no orphanage")
	}
	switch values[FieldDonationType] {
	case DonationMonetary:
		amount, err := strconv.ParseFloat(values.Trimmed(FieldMonetaryAmount), 64)
		if err != nil || amount <= 0 {
			return request, fmt.Errorf("invalid donation amount %q", values[FieldMonetaryAmount])
		}
		request.DonationType = api.DonationCash
		request.CashAmount = &amount
	case DonationItems:
		request.DonationType = api.DonationKind
		request.ItemDescription = describeItems(values)
	default:
		return request, fmt.Errorf("unknown donation type %q", values[FieldDonationType])
	}
	return request, nil
}

func describeItems(values Values) string {
	var parts []string
	if quantity := values.Trimmed(FieldItemQuantity); quantity != "" {
		parts = append(parts, quantity+" x")
	}
	if category := values.Trimmed(FieldItemCategory); category != "" {
		parts = append(parts, "["+category+"]")
	}
	parts = append(parts, values.Trimmed(FieldItemDescription))
	if condition := values.Trimmed(FieldItemCondition); condition != "" {
		parts = append(parts, "(condition: "+condition+")")
	}
	return strings.Join(parts, " ")
}
