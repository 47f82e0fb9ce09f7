// Copyright 2026 The JALAI Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"testing"
	"time"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func TestFakeClockAdvance(t *testing.T) {
	clock := Fake(epoch)
	clock.Advance(5 * time.Minute)
	if got, want := clock.Now(), epoch.Add(5*time.Minute); !got.Equal(want) {
		t.Fatalf("Now() = %v, want %v", got, want)
	}
}

func TestFakeClockAfterFiresAtDeadline(t *testing.T) {
	clock := Fake(epoch)
	channel := clock.After(3 * time.Second)

	clock.Advance(2 * time.Second)
	select {
	case <-channel:
		t.Fatal("After fired early")
	default:
	}

	clock.Advance(time.Second)
	select {
	case fired := <-channel:
		if !fired.Equal(epoch.Add(3 * time.Second)) {
			t.Errorf("fired at %v", fired)
		}
	default:
		t.Fatal("After did not fire at deadline")
	}
	if clock.PendingWaiters() != 0 {
		t.Errorf("PendingWaiters() = %d, want 0", clock.PendingWaiters())
	}
}

func TestFakeClockAfterNonPositive(t *testing.T) {
	clock := Fake(epoch)
	select {
	case <-clock.After(0):
	default:
		t.Fatal("After(0) should fire immediately")
	}
}

func TestFakeClockSetBackwardsDoesNotFire(t *testing.T) {
	clock := Fake(epoch)
	channel := clock.After(time.Minute)
	clock.Set(epoch.Add(-time.Hour))
	select {
	case <-channel:
		t.Fatal("waiter fired when time moved backwards")
	default:
	}
}
