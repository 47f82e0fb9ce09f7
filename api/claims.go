// Copyright 2026 The JALAI Authors
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims is what the client can read from an access token without
// the signing key. The claims are informational: the server remains
// the only authority on validity.
type TokenClaims struct {
	Subject   string
	Email     string
	Role      Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Expired reports whether the token's exp is at or before now.
func (t TokenClaims) Expired(now time.Time) bool {
	return !t.ExpiresAt.IsZero() && !now.Before(t.ExpiresAt)
}

// ErrOpaqueToken is returned when a token is not a JWT.
var ErrOpaqueToken = errors.New("access token is not a JWT")

// InspectToken parses an access token's claims without verifying the
// signature.
func InspectToken(token string) (TokenClaims, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return TokenClaims{}, fmt.Errorf("%w: %w", ErrOpaqueToken, err)
	}

	var result TokenClaims
	result.Subject, _ = claims.GetSubject()
	if issued, err := claims.GetIssuedAt(); err == nil && issued != nil {
		result.IssuedAt = issued.Time
	}
	if expires, err := claims.GetExpirationTime(); err == nil && expires != nil {
		result.ExpiresAt = expires.Time
	}
	if email, ok := claims["email"].(string); ok {
		result.Email = email
	}
	for _, key := range []string{"userType", "role"} {
		if value, ok := claims[key].(string); ok {
			if role, ok := ParseRole(value); ok {
				result.Role = role
				break
			}
		}
	}
	return result, nil
}
