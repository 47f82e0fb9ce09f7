// Copyright 2026 The JALAI Authors
// SPDX-License-Identifier: Apache-2.0

package form

import (
	"fmt"

	"github.com/jalai-group/jalai/api"
)

// Signup wizard fields.
const (
	FieldName            = "name"
	FieldEmail           = "email"
	FieldPassword        = "password"
	FieldConfirmPassword = "confirmPassword"
	FieldPhone           = "phone"
	FieldContactPerson   = "contactPerson"
	FieldDescription     = "description"
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 8

// SignupSteps is the two-step registration wizard for role, which must
// be CLIENT or ORPHANAGE.
func SignupSteps(role api.Role) ([]Step, error) {
	nameMessage := "Full name is required"
	switch role {
	case api.RoleClient:
	case api.RoleOrphanage:
		nameMessage = "Orphanage name is required"
	default:
		return nil, fmt.Errorf("self-registration is not available for role %q", role)
	}

	account := Step{
		Title:  "Account",
		Fields: []string{FieldName, FieldEmail, FieldPassword, FieldConfirmPassword},
		Rules: []Rule{
			{Field: FieldName, Check: Required, Message: nameMessage},
			{Field: FieldName, Check: MinLength(2), Message: "Name must be at least 2 characters"},
			{Field: FieldEmail, Check: Required, Message: "Email is required"},
			{Field: FieldEmail, Check: Email, Message: "Please enter a valid email address"},
			{Field: FieldPassword, Check: MinLength(MinPasswordLength), Message: fmt.Sprintf("Password must be at least %d characters", MinPasswordLength)},
			{Field: FieldPassword, Check: LetterAndDigit, Message: "Password must contain a letter and a digit"},
			{Field: FieldConfirmPassword, Check: Matches(FieldPassword), Message: "Passwords do not match"},
		},
	}
	contact := Step{
		Title:  "Contact",
		Fields: []string{FieldPhone, FieldLocation},
		Rules: []Rule{
			{Field: FieldPhone, Check: Required, Message: "Phone number is required"},
			{Field: FieldLocation, Check: Required, Message: "Location is required"},
		},
	}
	if role == api.RoleOrphanage {
		contact.Fields = append(contact.Fields, FieldContactPerson, FieldDescription)
		contact.Rules = append(contact.Rules,
			Rule{Field: FieldContactPerson, Check: Required, Message: "Contact person is required"})
	}
	contact.Fields = append(contact.Fields, FieldAgreeToTerms)
	contact.Rules = append(contact.Rules,
		Rule{Field: FieldAgreeToTerms, Check: True, Message: "You must agree to the terms and conditions"})

	return []Step{account, contact}, nil
}

// SignupDefaults are the initial signup wizard values.
func SignupDefaults() Values {
	return Values{
		FieldName: "", FieldEmail: "", FieldPassword: "", FieldConfirmPassword: "",
		FieldPhone: "", FieldLocation: "", FieldContactPerson: "", FieldDescription: "",
		FieldAgreeToTerms: "false",
	}
}

// SignupFields maps completed wizard values to the registration body
// for role. Orphanages send phoneNumber; clients send phone.
func SignupFields(values Values, role api.Role) map[string]any {
	fields := map[string]any{
		"name":     values.Trimmed(FieldName),
		"email":    values.Trimmed(FieldEmail),
		"password": values[FieldPassword],
		"location": values.Trimmed(FieldLocation),
	}
	if role == api.RoleOrphanage {
		fields["phoneNumber"] = values.Trimmed(FieldPhone)
		fields["contactPerson"] = values.Trimmed(FieldContactPerson)
		if description := values.Trimmed(FieldDescription); description != "" {
			fields["description"] = description
		}
		return fields
	}
	fields["phone"] = values.Trimmed(FieldPhone)
	return fields
}
