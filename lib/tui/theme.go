// Copyright 2026 The JALAI Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme is the color palette for jalai terminal output. Colors are
// ANSI 256-color codes.
type Theme struct {
	NormalText lipgloss.Color
	FaintText  lipgloss.Color

	SelectedBackground lipgloss.Color
	SelectedForeground lipgloss.Color

	// Lifecycle states shared by donations, orders and approvals.
	StatusPending   lipgloss.Color
	StatusActive    lipgloss.Color
	StatusDone      lipgloss.Color
	StatusCancelled lipgloss.Color

	// Role badges.
	RoleAdmin     lipgloss.Color
	RoleClient    lipgloss.Color
	RoleOrphanage lipgloss.Color

	HeaderForeground lipgloss.Color
	BorderColor      lipgloss.Color
	HelpText         lipgloss.Color
	ErrorText        lipgloss.Color
	Accent           lipgloss.Color

	// Fuzzy match highlighting.
	MatchForeground lipgloss.Color
}

// StatusColor maps a backend status string to a color. Unknown values
// are faint.
func (theme Theme) StatusColor(status string) lipgloss.Color {
	switch strings.ToUpper(status) {
	case "PENDING", "PENDING_APPROVAL":
		return theme.StatusPending
	case "CONFIRMED", "IN_PROGRESS", "PROCESSING", "SHIPPED", "APPROVED", "ACTIVE":
		return theme.StatusActive
	case "COMPLETED", "DELIVERED", "PAID":
		return theme.StatusDone
	case "CANCELLED", "REJECTED", "REFUNDED", "FAILED":
		return theme.StatusCancelled
	default:
		return theme.FaintText
	}
}

// RoleColor maps a user type to its badge color.
func (theme Theme) RoleColor(role string) lipgloss.Color {
	switch strings.ToUpper(role) {
	case "ADMIN":
		return theme.RoleAdmin
	case "CLIENT":
		return theme.RoleClient
	case "ORPHANAGE":
		return theme.RoleOrphanage
	default:
		return theme.FaintText
	}
}

// Badge renders text as a bold colored label.
func (theme Theme) Badge(text string, color lipgloss.Color) string {
	return lipgloss.NewStyle().Bold(true).Foreground(color).Render(text)
}

// Header renders a section title.
func (theme Theme) Header(text string) string {
	return lipgloss.NewStyle().Bold(true).Foreground(theme.HeaderForeground).Render(text)
}

// Faint renders secondary text.
func (theme Theme) Faint(text string) string {
	return lipgloss.NewStyle().Foreground(theme.FaintText).Render(text)
}

// Error renders an error line.
func (theme Theme) Error(text string) string {
	return lipgloss.NewStyle().Foreground(theme.ErrorText).Render(text)
}

// Panel frames content with a rounded border and a title line.
func (theme Theme) Panel(title, content string, width int) string {
	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.BorderColor).
		Padding(0, 1)
	if width > 4 {
		style = style.Width(width - 2)
	}
	if title != "" {
		content = theme.Header(title) + "\n" + content
	}
	return style.Render(content)
}

// DefaultTheme targets 256-color terminals with a dark background.
var DefaultTheme = Theme{
	NormalText: lipgloss.Color("252"),
	FaintText:  lipgloss.Color("245"),

	SelectedBackground: lipgloss.Color("236"),
	SelectedForeground: lipgloss.Color("255"),

	StatusPending:   lipgloss.Color("220"), // amber
	StatusActive:    lipgloss.Color("75"),  // blue
	StatusDone:      lipgloss.Color("114"), // green
	StatusCancelled: lipgloss.Color("196"), // red

	RoleAdmin:     lipgloss.Color("141"), // purple
	RoleClient:    lipgloss.Color("75"),
	RoleOrphanage: lipgloss.Color("209"), // warm orange

	HeaderForeground: lipgloss.Color("255"),
	BorderColor:      lipgloss.Color("240"),
	HelpText:         lipgloss.Color("241"),
	ErrorText:        lipgloss.Color("203"),
	Accent:           lipgloss.Color("208"),

	MatchForeground: lipgloss.Color("214"),
}
