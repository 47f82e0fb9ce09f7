// Copyright 2026 The JALAI Authors
// SPDX-License-Identifier: Apache-2.0

// Package service runs HTTP servers with a context-driven lifecycle:
// Serve binds, signals readiness, and drains in-flight requests when
// its context is cancelled. cmd/jalai-mock-api serves the mock backend
// through it, and tests bind port 0 and read the resolved address
// once Ready is closed.
package service
