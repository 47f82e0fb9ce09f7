// Copyright 2026 The JALAI Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock abstracts wall time so cache expiry, debug log
// timestamps, and token expiry displays can be tested
// deterministically. Production code injects Real(); tests inject
// Fake().
package clock

import (
	"sync"
	"time"
)

// Clock is the subset of the time package JALAI components use.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// After returns a channel that receives the current time after d
	// elapses. If d <= 0 the channel receives immediately.
	After(d time.Duration) <-chan time.Time
}

// Real returns a Clock backed by the time package.
func Real() Clock { return realClock{} }

type realClock struct{}

func (realClock) Now() time.Time                         { return time.Now() }
func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// Fake returns a FakeClock frozen at initial.
func Fake(initial time.Time) *FakeClock {
	return &FakeClock{current: initial}
}

// FakeClock is a deterministic Clock. Time moves only when Advance or
// Set is called; pending After channels fire when their deadline is
// reached. Safe for concurrent use.
type FakeClock struct {
	mu      sync.Mutex
	current time.Time
	waiters []fakeWaiter
}

type fakeWaiter struct {
	deadline time.Time
	channel  chan time.Time
}

// Now returns the fake time.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// After registers a waiter that fires once the clock reaches now+d.
func (c *FakeClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	channel := make(chan time.Time, 1)
	if d <= 0 {
		channel <- c.current
		return channel
	}
	c.waiters = append(c.waiters, fakeWaiter{deadline: c.current.Add(d), channel: channel})
	return channel
}

// Advance moves the clock forward by d and fires due waiters.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setLocked(c.current.Add(d))
}

// Set moves the clock to t, which may be in the past. Waiters only fire
// when time moves forward past their deadline.
func (c *FakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setLocked(t)
}

// PendingWaiters returns the number of After channels not yet fired.
func (c *FakeClock) PendingWaiters() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.waiters)
}

func (c *FakeClock) setLocked(t time.Time) {
	c.current = t
	remaining := c.waiters[:0]
	for _, waiter := range c.waiters {
		if !t.Before(waiter.deadline) {
			waiter.channel <- t
			continue
		}
		remaining = append(remaining, waiter)
	}
	c.waiters = remaining
}
