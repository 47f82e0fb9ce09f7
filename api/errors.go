// Copyright 2026 The JALAI Authors
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"errors"
	"fmt"
	"maps"
	"net/http"
	"slices"
	"strings"
)

var (
	// ErrNetwork wraps transport failures: the request never produced
	// an HTTP response.
	ErrNetwork = errors.New("unable to connect to server")

	// ErrSessionExpired means the refresh exchange failed or the
	// retried request was rejected. Local credentials have been
	// cleared and the user must sign in again.
	ErrSessionExpired = errors.New("authentication failed, please log in again")

	// ErrUnauthorized, ErrForbidden, ErrNotFound and ErrConflict match
	// an *Error with the corresponding status through errors.Is.
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("access denied")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
)

// Error is a non-2xx response from the backend. The JSON fields mirror
// the backend's error body; any of them may be empty.
type Error struct {
	StatusCode int `json:"-"`

	// Method and Path identify the request that failed.
	Method string `json:"-"`
	Path   string `json:"-"`

	Message          string            `json:"message"`
	Code             string            `json:"errorCode"`
	Kind             string            `json:"error"`
	ServerPath       string            `json:"path"`
	ValidationErrors map[string]string `json:"validationErrors"`

	// Body holds the raw body when it was not a JSON error object.
	Body string `json:"-"`
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// Is lets errors.Is match status sentinels.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	case ErrForbidden:
		return e.StatusCode == http.StatusForbidden
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrConflict:
		return e.StatusCode == http.StatusConflict
	}
	return false
}

// Detail renders the message plus any field-level validation errors,
// one per line, sorted by field.
func (e *Error) Detail() string {
	if len(e.ValidationErrors) == 0 {
		return e.Error()
	}
	var builder strings.Builder
	builder.WriteString(e.Error())
	for _, field := range slices.Sorted(maps.Keys(e.ValidationErrors)) {
		fmt.Fprintf(&builder, "\n  %s: %s", field, e.ValidationErrors[field])
	}
	return builder.String()
}

// DecodeError is returned when a successful response body cannot be
// decoded into the shape the caller asked for.
type DecodeError struct {
	Method      string
	Path        string
	ContentType string
	Reason      string
	Err         error
}

func (e *DecodeError) Error() string {
	message := fmt.Sprintf("decoding response from %s %s: %s", e.Method, e.Path, e.Reason)
	if e.Err != nil {
		message += ": " + e.Err.Error()
	}
	return message
}

func (e *DecodeError) Unwrap() error { return e.Err }

// RawResponse is a successful response whose body is not JSON. Pass a
// **RawResponse as the out argument of Do to receive it.
type RawResponse struct {
	StatusCode  int
	ContentType string
	Body        []byte
}
