// Copyright 2026 The JALAI Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

var (
	markdownParser     goldmark.Markdown
	markdownParserOnce sync.Once
)

func getMarkdownParser() goldmark.Markdown {
	markdownParserOnce.Do(func() {
		markdownParser = goldmark.New(goldmark.WithExtensions(extension.GFM))
	})
	return markdownParser
}

// RenderMarkdown renders product and orphanage descriptions for the
// terminal: paragraphs reflowed to width, headings bold, lists
// bulleted, fenced code highlighted. Colors are forced to ANSI256 when
// color is true and stripped otherwise.
func RenderMarkdown(input string, theme Theme, width int, color bool) string {
	if strings.TrimSpace(input) == "" {
		return ""
	}
	source := []byte(input)
	document := getMarkdownParser().Parser().Parse(text.NewReader(source))

	profile := termenv.Ascii
	if color {
		profile = termenv.ANSI256
	}
	lipRenderer := lipgloss.NewRenderer(io.Discard, termenv.WithProfile(profile))
	lipRenderer.SetColorProfile(profile)

	renderer := &markdownRenderer{
		source:   source,
		theme:    theme,
		width:    max(width, 20),
		color:    color,
		renderer: lipRenderer,
	}
	ast.Walk(document, renderer.walk)
	return strings.TrimRight(renderer.output.String(), "\n")
}

type markdownRenderer struct {
	source   []byte
	theme    Theme
	width    int
	color    bool
	renderer *lipgloss.Renderer

	output strings.Builder
	inline strings.Builder

	bold   int
	italic int

	// listDepth counts open lists; ordered[i] holds the next number for
	// ordered lists, or 0 for bullets.
	ordered []int
	bullet  string
}

func (r *markdownRenderer) style() lipgloss.Style { return r.renderer.NewStyle() }

func (r *markdownRenderer) flush(prefix string) {
	content := strings.TrimSpace(r.inline.String())
	r.inline.Reset()
	if content == "" {
		return
	}
	indent := strings.Repeat("  ", max(len(r.ordered)-1, 0))
	lead := indent + prefix
	wrapped := Wrap(content, r.width-Width(lead))
	continuation := strings.Repeat(" ", Width(lead))
	for index, line := range strings.Split(wrapped, "\n") {
		if index == 0 {
			r.output.WriteString(lead)
		} else {
			r.output.WriteString(continuation)
		}
		r.output.WriteString(line)
		r.output.WriteString("\n")
	}
}

func (r *markdownRenderer) walk(node ast.Node, entering bool) (ast.WalkStatus, error) {
	switch n := node.(type) {
	case *ast.Heading:
		if entering {
			r.bold++
			return ast.WalkContinue, nil
		}
		r.bold--
		r.flush("")
		r.output.WriteString("\n")

	case *ast.Paragraph:
		if !entering {
			r.flush(r.takeBullet())
			if len(r.ordered) == 0 {
				r.output.WriteString("\n")
			}
		}

	case *ast.TextBlock:
		if !entering {
			r.flush(r.takeBullet())
		}

	case *ast.List:
		if entering {
			start := 0
			if n.IsOrdered() {
				start = n.Start
			}
			r.ordered = append(r.ordered, start)
			return ast.WalkContinue, nil
		}
		r.ordered = r.ordered[:len(r.ordered)-1]
		if len(r.ordered) == 0 {
			r.output.WriteString("\n")
		}

	case *ast.ListItem:
		if entering {
			top := len(r.ordered) - 1
			if r.ordered[top] > 0 {
				r.bullet = fmt.Sprintf("%d. ", r.ordered[top])
				r.ordered[top]++
			} else {
				r.bullet = "• "
			}
		}

	case *ast.Emphasis:
		if entering {
			if n.Level >= 2 {
				r.bold++
			} else {
				r.italic++
			}
			return ast.WalkContinue, nil
		}
		if n.Level >= 2 {
			r.bold--
		} else {
			r.italic--
		}

	case *ast.CodeSpan:
		if entering {
			var code strings.Builder
			for child := n.FirstChild(); child != nil; child = child.NextSibling() {
				if segment, ok := child.(*ast.Text); ok {
					code.Write(segment.Segment.Value(r.source))
				}
			}
			r.inline.WriteString(r.style().Foreground(r.theme.Accent).Render(code.String()))
			return ast.WalkSkipChildren, nil
		}

	case *ast.FencedCodeBlock:
		if entering {
			r.flush("")
			var code strings.Builder
			lines := n.Lines()
			for index := range lines.Len() {
				segment := lines.At(index)
				code.Write(segment.Value(r.source))
			}
			language := string(n.Language(r.source))
			body := strings.TrimRight(code.String(), "\n")
			if r.color {
				body = Highlight(body, language)
			}
			for _, line := range strings.Split(body, "\n") {
				r.output.WriteString("    " + line + "\n")
			}
			r.output.WriteString("\n")
			return ast.WalkSkipChildren, nil
		}

	case *ast.ThematicBreak:
		if entering {
			r.output.WriteString(r.style().Foreground(r.theme.BorderColor).Render(strings.Repeat("─", r.width)) + "\n\n")
		}

	case *ast.Text:
		if entering {
			value := string(n.Segment.Value(r.source))
			r.inline.WriteString(r.styleText(value))
			if n.SoftLineBreak() || n.HardLineBreak() {
				r.inline.WriteString(" ")
			}
		}

	case *ast.AutoLink:
		if entering {
			r.inline.WriteString(r.style().Underline(true).Render(string(n.URL(r.source))))
			return ast.WalkSkipChildren, nil
		}
	}
	return ast.WalkContinue, nil
}

func (r *markdownRenderer) takeBullet() string {
	bullet := r.bullet
	r.bullet = ""
	if bullet == "" && len(r.ordered) > 0 {
		return "  "
	}
	return bullet
}

func (r *markdownRenderer) styleText(value string) string {
	if r.bold == 0 && r.italic == 0 {
		return value
	}
	style := r.style()
	if r.bold > 0 {
		style = style.Bold(true).Foreground(r.theme.HeaderForeground)
	}
	if r.italic > 0 {
		style = style.Italic(true)
	}
	return style.Render(value)
}
