// Copyright 2026 The JALAI Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/jalai-group/jalai/lib/clock"
)

// DebugLogCapacity is the number of auth debug entries retained.
const DebugLogCapacity = 20

// DebugEntry is one auth event.
type DebugEntry struct {
	Time    time.Time      `json:"timestamp"`
	Level   string         `json:"level"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
}

// DebugLog is a bounded log of auth events kept under KeyAuthLogs in an
// ephemeral Storage. Oldest entries are dropped first.
type DebugLog struct {
	storage Storage
	clock   clock.Clock

	mu sync.Mutex
}

// NewDebugLog returns a DebugLog over storage. A nil clock uses the
// wall clock.
func NewDebugLog(storage Storage, c clock.Clock) *DebugLog {
	if c == nil {
		c = clock.Real()
	}
	return &DebugLog{storage: storage, clock: c}
}

// Append records an entry, stamping it if Time is zero.
func (d *DebugLog) Append(entry DebugEntry) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if entry.Time.IsZero() {
		entry.Time = d.clock.Now().UTC()
	}
	entries, err := d.entriesLocked()
	if err != nil {
		// Unreadable history is replaced rather than blocking new entries.
		entries = nil
	}
	entries = append(entries, entry)
	if len(entries) > DebugLogCapacity {
		entries = entries[len(entries)-DebugLogCapacity:]
	}
	encoded, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encoding auth log: %w", err)
	}
	return d.storage.Set(KeyAuthLogs, string(encoded))
}

// Entries returns the retained entries, oldest first.
func (d *DebugLog) Entries() ([]DebugEntry, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.entriesLocked()
}

// Clear drops every entry.
func (d *DebugLog) Clear() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.storage.Remove(KeyAuthLogs)
}

func (d *DebugLog) entriesLocked() ([]DebugEntry, error) {
	raw, ok, err := d.storage.Get(KeyAuthLogs)
	if err != nil || !ok || raw == "" {
		return nil, err
	}
	var entries []DebugEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, fmt.Errorf("decoding auth log: %w", err)
	}
	return entries, nil
}
