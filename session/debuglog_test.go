// Copyright 2026 The JALAI Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/jalai-group/jalai/api"
	"github.com/jalai-group/jalai/lib/clock"
)

func TestDebugLogKeepsLastTwenty(t *testing.T) {
	fake := clock.Fake(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	log := NewDebugLog(NewMemoryStorage(), fake)
	for index := range 25 {
		if err := log.Append(DebugEntry{Level: "INFO", Message: fmt.Sprintf("event %d", index)}); err != nil {
			t.Fatal(err)
		}
		fake.Advance(time.Second)
	}
	entries, err := log.Entries()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != DebugLogCapacity {
		t.Fatalf("len = %d, want %d", len(entries), DebugLogCapacity)
	}
	if entries[0].Message != "event 5" || entries[19].Message != "event 24" {
		t.Errorf("window = %q..%q", entries[0].Message, entries[19].Message)
	}
	if !entries[0].Time.Equal(time.Date(2026, 3, 1, 9, 0, 5, 0, time.UTC)) {
		t.Errorf("first timestamp = %v", entries[0].Time)
	}

	if err := log.Clear(); err != nil {
		t.Fatal(err)
	}
	if entries, _ := log.Entries(); len(entries) != 0 {
		t.Errorf("after Clear: %d entries", len(entries))
	}
}

func TestDebugLogReplacesGarbage(t *testing.T) {
	storage := NewMemoryStorage()
	storage.Set(KeyAuthLogs, "nope")
	log := NewDebugLog(storage, nil)
	if _, err := log.Entries(); err == nil {
		t.Error("expected decode error")
	}
	if err := log.Append(DebugEntry{Message: "fresh"}); err != nil {
		t.Fatal(err)
	}
	entries, err := log.Entries()
	if err != nil || len(entries) != 1 {
		t.Fatalf("entries = %v, %v", entries, err)
	}
}

func TestDebugLogHandler(t *testing.T) {
	debugLog := NewDebugLog(NewMemoryStorage(), nil)
	handler := NewDebugLogHandler(slog.DiscardHandler, debugLog, slog.LevelInfo)
	logger := slog.New(handler)

	logger.Info("unrelated", "path", "/products")
	logger.Debug("below level", api.LogScopeKey, api.LogScopeAuth)
	logger.Info("login succeeded", api.LogScopeKey, api.LogScopeAuth, "email", "amina@example.com")
	logger.With(api.LogScopeKey, api.LogScopeAuth).WithGroup("refresh").
		Warn("refresh failed", "error", errors.New("revoked"))

	entries, err := debugLog.Entries()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %+v", entries)
	}
	if entries[0].Message != "login succeeded" || entries[0].Data["email"] != "amina@example.com" {
		t.Errorf("first = %+v", entries[0])
	}
	if _, ok := entries[0].Data[api.LogScopeKey]; ok {
		t.Error("scope attribute should not be copied into data")
	}
	if entries[1].Level != "WARN" || entries[1].Data["refresh.error"] != "revoked" {
		t.Errorf("second = %+v", entries[1])
	}
	if !handler.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("handler should be enabled at its level")
	}
}
