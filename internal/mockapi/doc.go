// Copyright 2026 The JALAI Authors
// SPDX-License-Identifier: Apache-2.0

// Package mockapi is an in-memory stand-in for the JALAI backend. It
// serves the same REST surface under /api that the client in package
// api consumes: JWT bearer auth with rotating refresh tokens, the
// public catalog, donations, commerce, notifications, admin views and
// image uploads.
//
// The server is deterministic enough for tests: seeded records have
// fixed IDs, the clock is injectable, and access tokens expire on the
// injected clock so refresh behavior can be driven by advancing it.
// It is also run standalone by cmd/jalai-mock-api for local
// development of the CLI.
package mockapi
