// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/docchat-tui/internal/model"
	"github.com/jeranaias/docchat-tui/internal/ui/styles"
	"github.com/jeranaias/docchat-tui/internal/util"
)

// sourceSnippetRunes bounds each quoted source when sources are expanded.
const sourceSnippetRunes = 600

// =============================================================================
// MESSAGE VIEW
// =============================================================================

// MessageView renders transcript entries.
type MessageView struct {
	Width         int
	ShowSources   bool
	ExpandSources bool
	ShowTimestamp bool

	theme *styles.Theme
	md    *Markdown
}

// NewMessageView creates a MessageView that renders answers with md.
func NewMessageView(theme *styles.Theme, md *Markdown) *MessageView {
	return &MessageView{
		Width:         80,
		ShowTimestamp: true,
		theme:         theme,
		md:            md,
	}
}

// RenderTranscript renders every message separated by blank lines.
func (v *MessageView) RenderTranscript(messages []model.Message) string {
	parts := make([]string, 0, len(messages))
	for _, msg := range messages {
		parts = append(parts, v.Render(msg))
	}
	return strings.Join(parts, "\n\n")
}

// Render renders a single message.
func (v *MessageView) Render(msg model.Message) string {
	switch {
	case msg.IsUser():
		return v.renderUser(msg)
	case msg.IsAssistant() && msg.Content == model.ErrorReply:
		return v.renderError(msg)
	default:
		return v.renderAssistant(msg)
	}
}

func (v *MessageView) contentWidth() int {
	w := v.Width - 8
	if w < 20 {
		w = 20
	}
	return w
}

func (v *MessageView) renderUser(msg model.Message) string {
	wrapped := wordWrap(msg.Content, v.contentWidth()-4)
	bubble := v.theme.UserBubble.Render(wrapped)
	return lipgloss.JoinVertical(lipgloss.Left,
		v.header(v.theme.UserLabel, "you", msg.Timestamp),
		bubble,
	)
}

func (v *MessageView) renderAssistant(msg model.Message) string {
	body := v.md.Render(msg.Content)
	parts := []string{
		v.header(v.theme.AssistantLabel, "assistant", msg.Timestamp),
		v.theme.AssistantBubble.Render(body),
	}
	if v.ShowSources && msg.HasSources() {
		parts = append(parts, v.renderSources(msg.Sources))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (v *MessageView) renderError(msg model.Message) string {
	return lipgloss.JoinVertical(lipgloss.Left,
		v.header(v.theme.AssistantLabel, "assistant", msg.Timestamp),
		v.theme.ErrorBubble.Render(styles.StatusIndicators.Error+" "+msg.Content),
	)
}

func (v *MessageView) header(label lipgloss.Style, role string, ts time.Time) string {
	h := label.Render(role)
	if v.ShowTimestamp && !ts.IsZero() {
		h += " " + v.theme.Timestamp.Render(formatClock(ts))
	}
	return h
}

// renderSources shows a count, or each snippet with highlighted metadata when expanded.
func (v *MessageView) renderSources(sources []model.Source) string {
	title := v.theme.SourceHeader.Render(fmt.Sprintf("Sources (%d)", len(sources)))
	if !v.ExpandSources {
		return v.theme.SourceBox.Render(title + v.theme.Muted.Render("  ctrl+x to expand"))
	}

	width := v.contentWidth() - 4
	lines := []string{title}
	for i, src := range sources {
		label := fmt.Sprintf("[%d]", i+1)
		if page, ok := src.Page(); ok {
			label += fmt.Sprintf(" page %d", page)
		}
		lines = append(lines, "", v.theme.SourceHeader.Render(label))

		snippet := util.TruncateRunes(strings.TrimSpace(src.Content), sourceSnippetRunes)
		lines = append(lines, v.theme.SourceText.Render(wordWrap(snippet, width)))

		if len(src.Metadata) > 0 {
			lines = append(lines, HighlightJSON(src.Metadata, v.theme.ChromaStyle(), v.theme.HasTrueColor))
		}
	}
	return v.theme.SourceBox.Render(strings.Join(lines, "\n"))
}

// =============================================================================
// EMPTY STATE
// =============================================================================

// RenderEmptyState renders the placeholder shown when the transcript is empty.
func RenderEmptyState(theme *styles.Theme, doc model.Document, width int) string {
	text := "Select a document to start asking questions."
	if !doc.IsZero() {
		text = "Ask a question about " + doc.DisplayName() + "."
	}
	return theme.EmptyState.Width(width).Render(text)
}
