// Copyright 2026 The JALAI Authors
// SPDX-License-Identifier: Apache-2.0

// Package tui provides the shared terminal presentation layer for the
// jalai CLI: the color theme, styled status badges, fuzzy matching for
// pickers, markdown rendering for product and orphanage descriptions,
// JSON syntax highlighting, and ANSI-aware text helpers.
//
// Views (dashboards, the donation wizard) import this package for a
// consistent look. Each view owns its own data and layout.
package tui
