// Copyright 2026 The JALAI Authors
// SPDX-License-Identifier: Apache-2.0

package wizardui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// statusMsg delivers a log record to the wizard's status line.
type statusMsg struct {
	Summary string
	Level   slog.Level
}

// statusFadeMsg clears the status line if no newer record arrived.
type statusFadeMsg struct{ sequence int }

// statusFadeDelay is how long a record stays on the status line.
const statusFadeDelay = 5 * time.Second

// StatusHandler is a slog.Handler that writes to a fallback handler
// until a wizard is running, then routes records at or above level to
// the wizard's status line instead. While a wizard owns the terminal,
// records below level are dropped so they do not tear the screen.
//
// Handlers derived via WithAttrs/WithGroup share the attached program.
type StatusHandler struct {
	fallback slog.Handler
	level    slog.Level
	program  *atomic.Pointer[tea.Program]
	attrs    []slog.Attr
}

// NewStatusHandler returns a handler forwarding to fallback while no
// wizard is attached.
func NewStatusHandler(fallback slog.Handler, level slog.Level) *StatusHandler {
	return &StatusHandler{
		fallback: fallback,
		level:    level,
		program:  &atomic.Pointer[tea.Program]{},
	}
}

func (handler *StatusHandler) attach(program *tea.Program) { handler.program.Store(program) }
func (handler *StatusHandler) detach()                     { handler.program.Store(nil) }

// Enabled implements slog.Handler.
func (handler *StatusHandler) Enabled(ctx context.Context, level slog.Level) bool {
	if handler.program.Load() != nil {
		return level >= handler.level
	}
	return handler.fallback.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (handler *StatusHandler) Handle(ctx context.Context, record slog.Record) error {
	program := handler.program.Load()
	if program == nil {
		return handler.fallback.Handle(ctx, record)
	}
	if record.Level < handler.level {
		return nil
	}

	var parts []string
	for _, attr := range handler.attrs {
		parts = append(parts, fmt.Sprintf("%s=%s", attr.Key, attr.Value))
	}
	record.Attrs(func(attr slog.Attr) bool {
		parts = append(parts, fmt.Sprintf("%s=%s", attr.Key, attr.Value))
		return true
	})
	summary := record.Message
	if len(parts) > 0 {
		summary += " (" + strings.Join(parts, ", ") + ")"
	}
	// Send blocks until the program reads it; never call it from
	// inside Update.
	go program.Send(statusMsg{Summary: summary, Level: record.Level})
	return nil
}

// WithAttrs implements slog.Handler.
func (handler *StatusHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	derived := *handler
	derived.fallback = handler.fallback.WithAttrs(attrs)
	derived.attrs = append(append([]slog.Attr(nil), handler.attrs...), attrs...)
	return &derived
}

// WithGroup implements slog.Handler. Groups only affect the fallback;
// the status line shows flat key=value pairs.
func (handler *StatusHandler) WithGroup(name string) slog.Handler {
	derived := *handler
	derived.fallback = handler.fallback.WithGroup(name)
	return &derived
}
