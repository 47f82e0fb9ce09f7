// Copyright 2026 The JALAI Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"strings"
	"testing"
)

func TestRenderMarkdownPlain(t *testing.T) {
	input := "# Hope House\n\nWe care for **forty** children\nin Douala.\n\n- school fees\n- meals\n\n1. visit\n2. donate\n"
	output := RenderMarkdown(input, DefaultTheme, 80, false)

	for _, want := range []string{"Hope House", "We care for forty children in Douala.", "• school fees", "• meals", "1. visit", "2. donate"} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q:\n%s", want, output)
		}
	}
	if strings.Contains(output, "\x1b[") {
		t.Error("plain rendering contains escape sequences")
	}
}

func TestRenderMarkdownWraps(t *testing.T) {
	input := strings.Repeat("word ", 40)
	output := RenderMarkdown(input, DefaultTheme, 30, false)
	for _, line := range strings.Split(output, "\n") {
		if Width(line) > 30 {
			t.Errorf("line wider than 30: %q", line)
		}
	}
}

func TestRenderMarkdownEmpty(t *testing.T) {
	if RenderMarkdown("  \n", DefaultTheme, 80, true) != "" {
		t.Error("blank input should render empty")
	}
}

func TestWriteJSONPlain(t *testing.T) {
	var builder strings.Builder
	if err := WriteJSON(&builder, map[string]int{"totalDonations": 3}, false); err != nil {
		t.Fatal(err)
	}
	if builder.String() != "{\n  \"totalDonations\": 3\n}\n" {
		t.Errorf("got %q", builder.String())
	}
}

func TestHighlightUnknownLanguage(t *testing.T) {
	if Highlight("plain", "") != "plain" {
		t.Error("empty language should pass through")
	}
}
