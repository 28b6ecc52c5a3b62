// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/jeranaias/docchat-tui/internal/model"
	"github.com/jeranaias/docchat-tui/internal/ui/styles"
)

func newView() *MessageView {
	theme := styles.NewTheme(model.ThemeDark)
	v := NewMessageView(theme, NewMarkdown(theme.GlamourStyle(), 60))
	v.Width = 80
	return v
}

func TestWordWrap(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		width int
		want  string
	}{
		{"fits", "hello world", 20, "hello world"},
		{"wraps", "hello world again", 11, "hello world\nagain"},
		{"keeps breaks", "a\n\nb", 10, "a\n\nb"},
		{"long word", "abcdefghij", 4, "abcd\nefgh\nij"},
		{"zero width", "abc", 0, "abc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := wordWrap(tt.text, tt.width); got != tt.want {
				t.Errorf("wordWrap(%q, %d) = %q, want %q", tt.text, tt.width, got, tt.want)
			}
		})
	}
}

func TestWordWrap_WideRunes(t *testing.T) {
	out := wordWrap("日本語のテキストです", 6)
	for _, line := range strings.Split(out, "\n") {
		if w := runewidth.StringWidth(line); w > 6 {
			t.Errorf("line %q is %d columns wide", line, w)
		}
	}
}

func TestMessageView_User(t *testing.T) {
	v := newView()
	out := v.Render(model.NewUserMessage("What is on page two?"))
	if !strings.Contains(out, "you") || !strings.Contains(out, "What is on page two?") {
		t.Errorf("unexpected user render: %q", out)
	}
}

func TestMessageView_ErrorReply(t *testing.T) {
	v := newView()
	out := v.Render(model.NewErrorMessage())
	if !strings.Contains(out, model.ErrorReply) || !strings.Contains(out, styles.StatusIndicators.Error) {
		t.Errorf("error reply should render with indicator: %q", out)
	}
}

func TestMessageView_Sources(t *testing.T) {
	msg := model.NewAssistantMessage("Answer", []model.Source{
		{Content: "first snippet", Metadata: map[string]any{"page": float64(2)}},
		{Content: "second snippet"},
	})

	tests := []struct {
		name        string
		show        bool
		expand      bool
		wantCount   bool
		wantSnippet bool
	}{
		{"hidden", false, false, false, false},
		{"collapsed", true, false, true, false},
		{"expanded", true, true, true, true},
		{"expand without show", false, true, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newView()
			v.ShowSources = tt.show
			v.ExpandSources = tt.expand
			out := v.Render(msg)

			if got := strings.Contains(out, "Sources (2)"); got != tt.wantCount {
				t.Errorf("sources count shown = %v, want %v", got, tt.wantCount)
			}
			if got := strings.Contains(out, "first snippet"); got != tt.wantSnippet {
				t.Errorf("snippet shown = %v, want %v", got, tt.wantSnippet)
			}
			if tt.wantSnippet && !strings.Contains(out, "page 2") {
				t.Error("expanded source should show its page")
			}
		})
	}
}

func TestMessageView_NoSourcesBlockWithoutSources(t *testing.T) {
	v := newView()
	v.ShowSources = true
	out := v.Render(model.NewAssistantMessage("Answer", nil))
	if strings.Contains(out, "Sources (") {
		t.Error("message without sources should not render a sources block")
	}
}

func TestMarkdown_CachesAndReconfigures(t *testing.T) {
	md := NewMarkdown("dark", 40)
	first := md.Render("**bold** text")
	if !strings.Contains(first, "bold") {
		t.Fatalf("render lost content: %q", first)
	}
	if md.Render("**bold** text") != first {
		t.Error("second render should hit the cache")
	}

	md.Configure("dark", 5)
	if md.Width() != 20 {
		t.Errorf("width should be clamped to 20, got %d", md.Width())
	}
}

func TestHighlightJSON(t *testing.T) {
	out := HighlightJSON(map[string]any{"page": 3, "source": "report.pdf"}, "catppuccin-mocha", false)
	if !strings.Contains(out, "page") || !strings.Contains(out, "report.pdf") {
		t.Errorf("highlighted JSON lost content: %q", out)
	}
	if HighlightJSON(func() {}, "monokai", false) != "" {
		t.Error("unmarshalable value should render empty")
	}
}

func TestHeader(t *testing.T) {
	theme := styles.NewTheme(model.ThemeDark)
	h := NewHeader(theme)
	h.Width = 100
	h.Health = model.HealthUnreachable

	out := h.View()
	if !strings.Contains(out, "no document") || !strings.Contains(out, "unreachable") {
		t.Errorf("unexpected header: %q", out)
	}

	h.Document = model.Document{Name: strings.Repeat("long-name-", 20) + ".pdf", Path: "/x.pdf"}
	out = h.View()
	if lipgloss.Width(out) > 100 {
		t.Errorf("header is %d columns, want <= 100", lipgloss.Width(out))
	}
	if !strings.Contains(out, "...") {
		t.Error("long document name should be truncated")
	}
}

func TestToastManager(t *testing.T) {
	m := NewToastManager()
	m.AddStatus("one")
	m.AddSuccess("two")
	m.AddError("three")
	m.AddError("four")

	toasts := m.Toasts()
	if len(toasts) != 3 {
		t.Fatalf("expected 3 toasts, got %d", len(toasts))
	}
	if toasts[0].Message != "four" {
		t.Errorf("newest toast should be first, got %q", toasts[0].Message)
	}

	if !m.Tick(time.Now()) {
		t.Error("fresh toasts should survive a tick")
	}
	if m.Tick(time.Now().Add(time.Minute)) {
		t.Error("all toasts should expire after a minute")
	}
}

func TestRenderToastStack(t *testing.T) {
	if RenderToastStack(nil, 80) != "" {
		t.Error("empty stack should render nothing")
	}
	out := RenderToastStack([]Toast{NewToast(ToastKindError, "upload failed")}, 80)
	if !strings.Contains(out, "upload failed") || !strings.Contains(out, styles.StatusIndicators.Error) {
		t.Errorf("unexpected toast: %q", out)
	}
}

func TestRenderEmptyState(t *testing.T) {
	theme := styles.NewTheme(model.ThemeDark)
	if out := RenderEmptyState(theme, model.Document{}, 60); !strings.Contains(out, "Select a document") {
		t.Errorf("unexpected empty state: %q", out)
	}
	doc := model.Document{Name: "a.pdf", Path: "/a.pdf"}
	if out := RenderEmptyState(theme, doc, 60); !strings.Contains(out, "a.pdf") {
		t.Errorf("empty state should name the document: %q", out)
	}
}
