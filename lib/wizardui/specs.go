// Copyright 2026 The JALAI Authors
// SPDX-License-Identifier: Apache-2.0

package wizardui

import (
	"strings"

	"github.com/jalai-group/jalai/api"
	"github.com/jalai-group/jalai/form"
)

// DonationSpecs presents the donation wizard. orphanages feed the
// orphanage picker.
func DonationSpecs(orphanages []api.Orphanage) map[string]FieldSpec {
	orphanageChoices := make([]Choice, 0, len(orphanages))
	for _, orphanage := range orphanages {
		label := orphanage.Name
		if orphanage.Location != "" {
			label += " (" + orphanage.Location + ")"
		}
		orphanageChoices = append(orphanageChoices, Choice{Value: orphanage.ID, Label: label})
	}
	return map[string]FieldSpec{
		form.FieldDonorName:       {Label: "Full name"},
		form.FieldDonorEmail:      {Label: "Email", Placeholder: "you@example.com"},
		form.FieldDonorPhone:      {Label: "Phone"},
		form.FieldDonorAddress:    {Label: "Address (optional)"},
		form.FieldDonationType:    {Label: "Donation type", Kind: KindChoice, Choices: simpleChoices(form.DonationMonetary, form.DonationItems)},
		form.FieldMonetaryAmount:  {Label: "Amount (FCFA, monetary only)"},
		form.FieldItemCategory:    {Label: "Item category (items only)", Kind: KindChoice, Choices: simpleChoices(form.ItemCategories...)},
		form.FieldItemDescription: {Label: "Item description (items only)"},
		form.FieldItemQuantity:    {Label: "Quantity (optional)"},
		form.FieldItemCondition:   {Label: "Condition (optional)"},
		form.FieldOrphanageID:     {Label: "Orphanage", Kind: KindChoice, Choices: orphanageChoices, Placeholder: "type to search"},
		form.FieldLocation:        {Label: "Location (optional)"},
		form.FieldUrgencyLevel:    {Label: "Urgency (optional)", Kind: KindChoice, Choices: simpleChoices(form.UrgencyLevels...)},
		form.FieldDeliveryMethod:  {Label: "Delivery method (optional)", Kind: KindChoice, Choices: simpleChoices(form.DeliveryMethods...)},
		form.FieldPreferredDate:   {Label: "Preferred date (optional)", Placeholder: "YYYY-MM-DD"},
		form.FieldMessage:         {Label: "Message (optional)"},
		form.FieldAgreeToTerms:    {Label: "I agree to the terms and conditions", Kind: KindBool},
		form.FieldAllowContact:    {Label: "The orphanage may contact me", Kind: KindBool},
		form.FieldIsAnonymous:     {Label: "Donate anonymously", Kind: KindBool},
	}
}

// SignupSpecs presents the signup wizard.
func SignupSpecs(role api.Role) map[string]FieldSpec {
	name := "Full name"
	if role == api.RoleOrphanage {
		name = "Orphanage name"
	}
	return map[string]FieldSpec{
		form.FieldName:            {Label: name},
		form.FieldEmail:           {Label: "Email"},
		form.FieldPassword:        {Label: "Password", Kind: KindSecret},
		form.FieldConfirmPassword: {Label: "Confirm password", Kind: KindSecret},
		form.FieldPhone:           {Label: "Phone"},
		form.FieldLocation:        {Label: "Location"},
		form.FieldContactPerson:   {Label: "Contact person"},
		form.FieldDescription:     {Label: "Description (optional, markdown)"},
		form.FieldAgreeToTerms:    {Label: "I agree to the terms and conditions", Kind: KindBool},
	}
}

func simpleChoices(values ...string) []Choice {
	choices := make([]Choice, len(values))
	for index, value := range values {
		choices[index] = Choice{Value: value, Label: strings.ToUpper(value[:1]) + value[1:]}
	}
	return choices
}
