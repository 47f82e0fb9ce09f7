// Copyright 2026 The JALAI Authors
// SPDX-License-Identifier: Apache-2.0

package wizardui

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/jalai-group/jalai/form"
	"github.com/jalai-group/jalai/lib/tui"
)

func TestStatusHandlerFallsBackWithoutWizard(t *testing.T) {
	var buffer bytes.Buffer
	handler := NewStatusHandler(slog.NewTextHandler(&buffer, &slog.HandlerOptions{Level: slog.LevelDebug}), slog.LevelWarn)
	logger := slog.New(handler).With("component", "api")

	logger.Debug("request sent", "path", "/api/donations")
	if !strings.Contains(buffer.String(), "request sent") || !strings.Contains(buffer.String(), "component=api") {
		t.Fatalf("fallback output = %q", buffer.String())
	}
	if !handler.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("detached handler should follow the fallback's level")
	}
}

func TestStatusLineShowsAndFades(t *testing.T) {
	model, _ := newDonationModel(t, func(context.Context, form.Values) error { return nil })

	updated, cmd := model.Update(statusMsg{Summary: "refreshing access token", Level: slog.LevelWarn})
	model = updated.(Model)
	if cmd == nil {
		t.Fatal("status message did not schedule a fade")
	}
	if !strings.Contains(tui.Strip(model.View()), "refreshing access token") {
		t.Fatal("status line not shown")
	}

	// A newer record supersedes the pending fade of the first.
	updated, _ = model.Update(statusMsg{Summary: "request failed", Level: slog.LevelError})
	model = updated.(Model)
	updated, _ = model.Update(statusFadeMsg{sequence: 1})
	model = updated.(Model)
	if !strings.Contains(tui.Strip(model.View()), "request failed") {
		t.Fatal("stale fade cleared the newer record")
	}

	updated, _ = model.Update(statusFadeMsg{sequence: 2})
	model = updated.(Model)
	if strings.Contains(tui.Strip(model.View()), "request failed") {
		t.Error("status line not cleared after fade")
	}
}
