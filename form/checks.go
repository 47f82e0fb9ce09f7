// Copyright 2026 The JALAI Authors
// SPDX-License-Identifier: Apache-2.0

package form

import (
	"net/mail"
	"slices"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// Required accepts any value that is not blank.
func Required(value string, _ Values) bool { return strings.TrimSpace(value) != "" }

// Email accepts a single bare address of the form local@domain.tld.
// Display names ("Amina <amina@example.com>") are rejected.
func Email(value string, _ Values) bool {
	value = strings.TrimSpace(value)
	address, err := mail.ParseAddress(value)
	if err != nil || address.Address != value {
		return false
	}
	_, domain, _ := strings.Cut(value, "@")
	dot := strings.LastIndex(domain, ".")
	return dot > 0 && dot < len(domain)-1
}

// True accepts "true", for checkboxes that must be ticked.
func True(value string, _ Values) bool { return value == "true" }

// PositiveNumber accepts a finite decimal number greater than zero.
func PositiveNumber(value string, _ Values) bool {
	number, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	return err == nil && number > 0 && number < 1e15
}

// Date accepts YYYY-MM-DD.
func Date(value string, _ Values) bool {
	_, err := time.Parse(time.DateOnly, strings.TrimSpace(value))
	return err == nil
}

// MinLength accepts values of at least n characters.
func MinLength(n int) Check {
	return func(value string, _ Values) bool { return len([]rune(value)) >= n }
}

// OneOf accepts one of the allowed values.
func OneOf(allowed ...string) Check {
	return func(value string, _ Values) bool { return slices.Contains(allowed, value) }
}

// Optional applies check only when value is non-blank.
func Optional(check Check) Check {
	return func(value string, values Values) bool {
		return strings.TrimSpace(value) == "" || check(value, values)
	}
}

// Matches accepts value when it equals the other field.
func Matches(other string) Check {
	return func(value string, values Values) bool { return value == values[other] }
}

// LetterAndDigit accepts values containing at least one letter and one
// digit.
func LetterAndDigit(value string, _ Values) bool {
	var letter, digit bool
	for _, r := range value {
		switch {
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return letter && digit
}

// FieldEquals is a When condition that holds while field has value.
func FieldEquals(field, value string) func(Values) bool {
	return func(values Values) bool { return values[field] == value }
}
