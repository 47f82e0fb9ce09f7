// Copyright 2026 The JALAI Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/jalai-group/jalai/internal/mockapi"
	"github.com/jalai-group/jalai/lib/clock"
)

// Backend is a running mock backend.
type Backend struct {
	Server *mockapi.Server
	Clock  *clock.FakeClock
	// URL is the API base, ending in /api.
	URL string
}

// BackendEpoch is the fake clock's starting time.
var BackendEpoch = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// MockBackend starts a seeded mock backend for the duration of the
// test. Access tokens live 15 minutes on the returned clock.
func MockBackend(t testing.TB) *Backend {
	t.Helper()
	fake := clock.Fake(BackendEpoch)
	server, err := mockapi.New(mockapi.Options{
		Clock:     fake,
		Secret:    []byte("jalai-test-signing-key-0123456789"),
		AccessTTL: 15 * time.Minute,
		HashCost:  bcrypt.MinCost,
	})
	if err != nil {
		t.Fatalf("starting mock backend: %v", err)
	}
	httpServer := httptest.NewServer(server)
	t.Cleanup(httpServer.Close)
	return &Backend{Server: server, Clock: fake, URL: httpServer.URL + "/api"}
}
