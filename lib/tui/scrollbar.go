// Copyright 2026 The JALAI Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// RenderScrollbar produces a one-column scrollbar of height rows for a
// list of totalItems with visibleItems on screen starting at
// scrollOffset. When everything fits the thumb spans the full height.
func RenderScrollbar(theme Theme, height, totalItems, visibleItems, scrollOffset int, focused bool) string {
	if height <= 0 {
		return ""
	}

	thumbColor := theme.BorderColor
	if focused {
		thumbColor = theme.Accent
	}
	trackStyle := lipgloss.NewStyle().Foreground(theme.BorderColor)
	thumbStyle := lipgloss.NewStyle().Foreground(thumbColor)

	lines := make([]string, height)
	if totalItems <= visibleItems || totalItems <= 0 {
		for index := range lines {
			lines[index] = thumbStyle.Render("┃")
		}
		return strings.Join(lines, "\n")
	}

	thumbSize := max(height*visibleItems/totalItems, 1)
	scrollableRange := totalItems - visibleItems
	trackRange := height - thumbSize
	thumbOffset := 0
	if trackRange > 0 {
		thumbOffset = min(scrollOffset*trackRange/scrollableRange, trackRange)
	}

	for index := range lines {
		if index >= thumbOffset && index < thumbOffset+thumbSize {
			lines[index] = thumbStyle.Render("┃")
		} else {
			lines[index] = trackStyle.Render("│")
		}
	}
	return strings.Join(lines, "\n")
}
