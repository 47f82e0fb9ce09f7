// Copyright 2026 The JALAI Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"errors"
	"fmt"
)

// ErrorCategory classifies command errors so scripts can react to the
// exit status without parsing messages.
type ErrorCategory string

const (
	// CategoryValidation: bad input. Fix it and retry.
	CategoryValidation ErrorCategory = "validation"

	// CategoryUnauthorized: no session, or the session expired. Run
	// "jalai login".
	CategoryUnauthorized ErrorCategory = "unauthorized"

	// CategoryForbidden: the signed-in role may not do this, or the
	// account is pending approval.
	CategoryForbidden ErrorCategory = "forbidden"

	// CategoryNotFound: a referenced resource does not exist.
	CategoryNotFound ErrorCategory = "not_found"

	// CategoryConflict: the operation conflicts with current state,
	// e.g. confirming a donation that is already completed.
	CategoryConflict ErrorCategory = "conflict"

	// CategoryTransient: the backend is unreachable or failing. Retry
	// later.
	CategoryTransient ErrorCategory = "transient"

	// CategoryInternal: anything else.
	CategoryInternal ErrorCategory = "internal"
)

// exitCodes maps categories to process exit statuses. 1 is reserved
// for internal errors and uncategorized failures.
var exitCodes = map[ErrorCategory]int{
	CategoryInternal:     1,
	CategoryValidation:   2,
	CategoryUnauthorized: 3,
	CategoryForbidden:    4,
	CategoryNotFound:     5,
	CategoryConflict:     6,
	CategoryTransient:    7,
}

// ToolError is a categorized command error. It wraps the underlying
// error so errors.Is and errors.As still see the full chain.
type ToolError struct {
	Category ErrorCategory
	Err      error
}

func (e *ToolError) Error() string { return e.Err.Error() }

func (e *ToolError) Unwrap() error { return e.Err }

// ExitCode returns the exit status for the category.
func (e *ToolError) ExitCode() int {
	if code, ok := exitCodes[e.Category]; ok {
		return code
	}
	return 1
}

func newToolError(category ErrorCategory, format string, args []any) *ToolError {
	return &ToolError{Category: category, Err: fmt.Errorf(format, args...)}
}

// Validation creates a validation error: the caller provided bad input.
func Validation(format string, args ...any) *ToolError {
	return newToolError(CategoryValidation, format, args)
}

// Unauthorized creates an error telling the caller to sign in.
func Unauthorized(format string, args ...any) *ToolError {
	return newToolError(CategoryUnauthorized, format, args)
}

// Forbidden creates a forbidden error: the caller lacks permission.
func Forbidden(format string, args ...any) *ToolError {
	return newToolError(CategoryForbidden, format, args)
}

// NotFound creates a not-found error.
func NotFound(format string, args ...any) *ToolError {
	return newToolError(CategoryNotFound, format, args)
}

// Conflict creates a conflict error.
func Conflict(format string, args ...any) *ToolError {
	return newToolError(CategoryConflict, format, args)
}

// Transient creates a transient error that may succeed on retry.
func Transient(format string, args ...any) *ToolError {
	return newToolError(CategoryTransient, format, args)
}

// Internal creates an internal error.
func Internal(format string, args ...any) *ToolError {
	return newToolError(CategoryInternal, format, args)
}

// Category returns the category of the first ToolError in err's
// chain, or CategoryInternal.
func Category(err error) ErrorCategory {
	var toolError *ToolError
	if errors.As(err, &toolError) {
		return toolError.Category
	}
	return CategoryInternal
}
