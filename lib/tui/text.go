// Copyright 2026 The JALAI Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// Truncate shortens s to width visible cells, ending with an ellipsis
// when cut. Escape sequences are preserved.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if ansi.StringWidth(s) <= width {
		return s
	}
	return ansi.Truncate(s, width-1, "…")
}

// PadRight pads s with spaces to width visible cells.
func PadRight(s string, width int) string {
	gap := width - ansi.StringWidth(s)
	if gap <= 0 {
		return s
	}
	return s + strings.Repeat(" ", gap)
}

// Wrap word-wraps s to width cells.
func Wrap(s string, width int) string {
	if width <= 0 {
		return s
	}
	return ansi.Wordwrap(s, width, "")
}

// Excerpt returns the first maxLines non-blank lines of body, each
// truncated to maxWidth.
func Excerpt(body string, maxWidth, maxLines int) []string {
	var result []string
	for line := range strings.SplitSeq(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		result = append(result, Truncate(trimmed, maxWidth))
		if len(result) >= maxLines {
			break
		}
	}
	return result
}

// Width returns the visible width of s.
func Width(s string) int { return ansi.StringWidth(s) }

// Strip removes escape sequences from s.
func Strip(s string) string { return ansi.Strip(s) }
