// Copyright 2026 The JALAI Authors
// SPDX-License-Identifier: Apache-2.0

package mockapi

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/jalai-group/jalai/api"
)

// accessClaims is the access token payload.
type accessClaims struct {
	Email    string   `json:"email"`
	UserType api.Role `json:"userType"`
	jwt.RegisteredClaims
}

var errInvalidToken = errors.New("invalid or expired token")

// issueAccess signs an HS256 access token for user.
func (s *Server) issueAccess(user api.User) (string, error) {
	now := s.clock.Now()
	claims := accessClaims{
		Email:    user.Email,
		UserType: user.UserType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    "jalai-mock-api",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
			ID:        uuid.NewString(),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("signing access token: %w", err)
	}
	return signed, nil
}

// verifyAccess validates signature and expiry against the server clock.
func (s *Server) verifyAccess(token string) (*accessClaims, error) {
	claims := &accessClaims{}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.clock.Now),
		jwt.WithExpirationRequired(),
	)
	_, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) { return s.secret, nil })
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errInvalidToken, err)
	}
	return claims, nil
}

// issueRefresh mints an opaque refresh token for userID. Caller holds
// the store lock.
func (s *Server) issueRefresh(userID string) string {
	token := uuid.NewString()
	s.store.refresh[token] = refreshGrant{userID: userID, expires: s.clock.Now().Add(s.refreshTTL)}
	return token
}

// credentials issues a fresh token pair. Caller holds the store lock.
func (s *Server) credentials(user api.User) (api.Credentials, error) {
	access, err := s.issueAccess(user)
	if err != nil {
		return api.Credentials{}, err
	}
	return api.Credentials{AccessToken: access, RefreshToken: s.issueRefresh(user.ID)}, nil
}

// revokeRefresh drops every refresh token of userID. Caller holds the
// store lock.
func (s *Server) revokeRefresh(userID string) {
	for token, grant := range s.store.refresh {
		if grant.userID == userID {
			delete(s.store.refresh, token)
		}
	}
}

// expiresIn is the access token lifetime in seconds for auth responses.
func (s *Server) expiresIn() int64 { return int64(s.accessTTL / time.Second) }
