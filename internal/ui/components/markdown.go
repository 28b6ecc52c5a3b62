// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// =============================================================================
// MARKDOWN RENDERER
// =============================================================================

// Markdown renders answer text with glamour. The underlying renderer is
// rebuilt only when the style or wrap width changes.
type Markdown struct {
	style    string
	width    int
	renderer *glamour.TermRenderer
	cache    map[string]string
}

// NewMarkdown creates a renderer for a glamour standard style ("dark", "light", ...).
func NewMarkdown(style string, width int) *Markdown {
	m := &Markdown{}
	m.Configure(style, width)
	return m
}

// Configure updates style and width, rebuilding the renderer if either changed.
func (m *Markdown) Configure(style string, width int) {
	if width < 20 {
		width = 20
	}
	if m.renderer != nil && style == m.style && width == m.width {
		return
	}
	m.style = style
	m.width = width
	m.cache = make(map[string]string)

	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		m.renderer = nil
		return
	}
	m.renderer = r
}

// Width returns the wrap width.
func (m *Markdown) Width() int {
	return m.width
}

// Render converts markdown to styled terminal text. Rendering failures fall
// back to word-wrapped plain text.
func (m *Markdown) Render(text string) string {
	if out, ok := m.cache[text]; ok {
		return out
	}

	out := ""
	if m.renderer != nil {
		if rendered, err := m.renderer.Render(text); err == nil {
			out = strings.Trim(rendered, "\n")
		}
	}
	if out == "" {
		out = wordWrap(text, m.width)
	}
	m.cache[text] = out
	return out
}
