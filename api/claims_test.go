// Copyright 2026 The JALAI Authors
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestInspectToken(t *testing.T) {
	issued := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":      "u1",
		"email":    "ada@example.com",
		"userType": "ADMIN",
		"iat":      issued.Unix(),
		"exp":      issued.Add(15 * time.Minute).Unix(),
	})
	signed, err := token.SignedString([]byte("some-key-the-client-never-sees"))
	if err != nil {
		t.Fatal(err)
	}

	claims, err := InspectToken(signed)
	if err != nil {
		t.Fatalf("InspectToken: %v", err)
	}
	if claims.Subject != "u1" || claims.Email != "ada@example.com" || claims.Role != RoleAdmin {
		t.Errorf("claims = %+v", claims)
	}
	if !claims.ExpiresAt.Equal(issued.Add(15 * time.Minute)) {
		t.Errorf("ExpiresAt = %v", claims.ExpiresAt)
	}
	if claims.Expired(issued.Add(time.Minute)) {
		t.Error("token reported expired too early")
	}
	if !claims.Expired(issued.Add(15 * time.Minute)) {
		t.Error("token not expired at exp")
	}
}

func TestInspectOpaqueToken(t *testing.T) {
	if _, err := InspectToken("not-a-jwt"); !errors.Is(err, ErrOpaqueToken) {
		t.Fatalf("err = %v, want ErrOpaqueToken", err)
	}
}
