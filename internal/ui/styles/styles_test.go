// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/docchat-tui/internal/model"
)

func TestNewTheme(t *testing.T) {
	theme := NewTheme(model.ThemeDark)
	if theme == nil {
		t.Fatal("NewTheme() returned nil")
	}
	if !theme.IsDark() {
		t.Error("expected dark mode")
	}
	if !lipgloss.HasDarkBackground() {
		t.Error("lipgloss should assume a dark background")
	}

	styles := []struct {
		name  string
		style lipgloss.Style
	}{
		{"Header", theme.Header},
		{"Pane", theme.Pane},
		{"UserBubble", theme.UserBubble},
		{"AssistantBubble", theme.AssistantBubble},
		{"ErrorBubble", theme.ErrorBubble},
		{"SourceBox", theme.SourceBox},
		{"InputContainer", theme.InputContainer},
		{"StatusBar", theme.StatusBar},
	}
	for _, s := range styles {
		if !strings.Contains(s.style.Render("test"), "test") {
			t.Errorf("%s style should render its content", s.name)
		}
	}
}

func TestApply(t *testing.T) {
	theme := NewTheme(model.ThemeDark)
	defer lipgloss.SetHasDarkBackground(true)

	theme.Apply(model.ThemeLight)
	if theme.IsDark() {
		t.Error("expected light mode after Apply")
	}
	if lipgloss.HasDarkBackground() {
		t.Error("lipgloss should assume a light background")
	}
	if theme.GlamourStyle() != "light" || theme.ChromaStyle() != "catppuccin-latte" {
		t.Errorf("got glamour=%q chroma=%q", theme.GlamourStyle(), theme.ChromaStyle())
	}

	theme.Apply(model.Theme("bogus"))
	if theme.Mode != model.ThemeDark {
		t.Errorf("unknown mode should fall back to dark, got %q", theme.Mode)
	}
}

func TestHealthBadge(t *testing.T) {
	theme := NewTheme(model.ThemeDark)

	tests := []struct {
		health model.Health
		want   lipgloss.Style
	}{
		{model.HealthHealthy, theme.BadgeHealthy},
		{model.HealthUnreachable, theme.BadgeUnreachable},
		{model.HealthChecking, theme.BadgeChecking},
		{model.Health("degraded"), theme.BadgeChecking},
	}
	for _, tt := range tests {
		got := theme.HealthBadge(tt.health).Render(string(tt.health))
		want := tt.want.Render(string(tt.health))
		if got != want {
			t.Errorf("HealthBadge(%q) rendered %q, want %q", tt.health, got, want)
		}
	}
}

func TestGetLayoutMode(t *testing.T) {
	tests := []struct {
		width int
		want  LayoutMode
	}{
		{40, LayoutNarrow},
		{79, LayoutNarrow},
		{80, LayoutMedium},
		{129, LayoutMedium},
		{130, LayoutWide},
		{200, LayoutWide},
	}
	theme := NewTheme(model.ThemeDark)
	for _, tt := range tests {
		theme.SetSize(tt.width, 40)
		if got := theme.GetLayoutMode(); got != tt.want {
			t.Errorf("width %d: got %v, want %v", tt.width, got, tt.want)
		}
	}
}

func TestStatusHelpers(t *testing.T) {
	tests := []struct {
		name      string
		rendered  string
		indicator string
	}{
		{"success", RenderSuccess("done"), StatusIndicators.Success},
		{"error", RenderError("failed"), StatusIndicators.Error},
		{"warning", RenderWarning("careful"), StatusIndicators.Warning},
		{"info", RenderInfo("note"), StatusIndicators.Info},
		{"status false", RenderStatus(false, "x"), StatusIndicators.Error},
	}
	for _, tt := range tests {
		if !strings.Contains(tt.rendered, tt.indicator) {
			t.Errorf("%s: %q missing indicator %q", tt.name, tt.rendered, tt.indicator)
		}
	}
}

func TestSpinnerConfig(t *testing.T) {
	if got := DotsSpinner.Duration(); got != time.Second/6 {
		t.Errorf("Duration() = %v", got)
	}
	if got := (SpinnerConfig{}).Duration(); got != time.Second {
		t.Errorf("zero FPS should fall back to one second, got %v", got)
	}
	b := LineSpinner.Bubble()
	if len(b.Frames) != 4 || b.FPS != time.Second/10 {
		t.Errorf("Bubble() = %+v", b)
	}
}
