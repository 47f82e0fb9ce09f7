// Copyright 2026 The JALAI Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"testing"
	"time"
)

// Receive returns the next value sent on ch. The test fails if ch is
// closed first or nothing arrives within timeout; what names the
// awaited event in the failure.
//
//	err := testutil.Receive(t, serveDone, 5*time.Second, "server shutdown")
func Receive[T any](t testing.TB, ch <-chan T, timeout time.Duration, what string) T {
	t.Helper()
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case value, ok := <-ch:
		if !ok {
			t.Fatalf("%s: channel closed", what)
		}
		return value
	case <-timer.C:
		t.Fatalf("%s: nothing received within %v", what, timeout)
	}
	var zero T
	return zero
}

// Closed waits for a signal channel such as HTTPServer.Ready to close.
func Closed(t testing.TB, ch <-chan struct{}, timeout time.Duration, what string) {
	t.Helper()
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-ch:
	case <-timer.C:
		t.Fatalf("%s: not closed within %v", what, timeout)
	}
}
