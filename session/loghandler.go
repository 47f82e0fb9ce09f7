// Copyright 2026 The JALAI Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/jalai-group/jalai/api"
)

// DebugLogHandler is a slog.Handler that forwards every record to next
// and additionally appends records tagged scope=auth to a DebugLog.
//
// Handlers derived via WithAttrs/WithGroup share the DebugLog, and a
// scope attribute bound with WithAttrs is honored by the derived
// handler.
type DebugLogHandler struct {
	next   slog.Handler
	log    *DebugLog
	level  slog.Level
	attrs  []slog.Attr
	groups []string
	auth   bool
}

// NewDebugLogHandler tees next into log for auth-scoped records at or
// above level.
func NewDebugLogHandler(next slog.Handler, log *DebugLog, level slog.Level) *DebugLogHandler {
	return &DebugLogHandler{next: next, log: log, level: level}
}

func (handler *DebugLogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= handler.level || handler.next.Enabled(ctx, level)
}

func (handler *DebugLogHandler) Handle(ctx context.Context, record slog.Record) error {
	var errs []error
	if handler.next.Enabled(ctx, record.Level) {
		errs = append(errs, handler.next.Handle(ctx, record))
	}
	if record.Level < handler.level {
		return errors.Join(errs...)
	}

	auth := handler.auth
	data := make(map[string]any)
	for _, attr := range handler.attrs {
		handler.collect(data, attr)
	}
	record.Attrs(func(attr slog.Attr) bool {
		if isAuthScope(attr) {
			auth = true
			return true
		}
		handler.collect(data, attr)
		return true
	})
	if !auth {
		return errors.Join(errs...)
	}
	if len(data) == 0 {
		data = nil
	}
	errs = append(errs, handler.log.Append(DebugEntry{
		Time:    record.Time.UTC(),
		Level:   record.Level.String(),
		Message: record.Message,
		Data:    data,
	}))
	return errors.Join(errs...)
}

func (handler *DebugLogHandler) collect(data map[string]any, attr slog.Attr) {
	attr.Value = attr.Value.Resolve()
	if attr.Key == "" || attr.Key == api.LogScopeKey {
		return
	}
	key := attr.Key
	if len(handler.groups) > 0 {
		key = strings.Join(handler.groups, ".") + "." + key
	}
	switch attr.Value.Kind() {
	case slog.KindAny:
		if err, ok := attr.Value.Any().(error); ok {
			data[key] = err.Error()
			return
		}
		data[key] = attr.Value.Any()
	case slog.KindGroup:
		data[key] = attr.Value.String()
	default:
		data[key] = attr.Value.Any()
	}
}

func (handler *DebugLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	derived := *handler
	derived.next = handler.next.WithAttrs(attrs)
	derived.attrs = append([]slog.Attr(nil), handler.attrs...)
	for _, attr := range attrs {
		if isAuthScope(attr) {
			derived.auth = true
			continue
		}
		derived.attrs = append(derived.attrs, attr)
	}
	return &derived
}

func (handler *DebugLogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return handler
	}
	derived := *handler
	derived.next = handler.next.WithGroup(name)
	derived.groups = append(append([]string(nil), handler.groups...), name)
	return &derived
}

func isAuthScope(attr slog.Attr) bool {
	return attr.Key == api.LogScopeKey && attr.Value.Resolve().String() == api.LogScopeAuth
}
