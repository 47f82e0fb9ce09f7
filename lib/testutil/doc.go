// Copyright 2026 The JALAI Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers.
//
// [MockBackend] starts the in-memory backend from internal/mockapi on
// an httptest server with a fake clock and cheap password hashing, and
// returns the API base URL. Tests that exercise the client end to end
// (session, views, CLI commands) use it instead of hand-written
// handlers.
//
// [Receive] and [Closed] bound channel waits so a hung server or
// callback fails the test instead of stalling it. [UniqueEmail] gives
// each registration its own address.
package testutil
