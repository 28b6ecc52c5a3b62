// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/jeranaias/docchat-tui/internal/model"
)

// Theme holds all the styled components for the application.
//
// Colors are lipgloss AdaptiveColors; the user's dark/light choice is applied
// by telling lipgloss which background to assume, then rebuilding the styles.
type Theme struct {
	Mode         model.Theme
	HasTrueColor bool
	ColorProfile termenv.Profile

	// Layout dimensions
	Width  int
	Height int

	// ==========================================================================
	// APPLICATION CONTAINER STYLES
	// ==========================================================================

	App       lipgloss.Style
	Container lipgloss.Style

	// ==========================================================================
	// HEADER STYLES
	// ==========================================================================

	Header           lipgloss.Style
	HeaderBrand      lipgloss.Style
	BadgeDocument    lipgloss.Style
	BadgeNoDocument  lipgloss.Style
	BadgeHealthy     lipgloss.Style
	BadgeUnreachable lipgloss.Style
	BadgeChecking    lipgloss.Style
	BadgeTheme       lipgloss.Style

	// ==========================================================================
	// PANE STYLES
	// ==========================================================================

	Pane        lipgloss.Style
	PaneFocused lipgloss.Style
	PaneTitle   lipgloss.Style

	DocItem         lipgloss.Style
	DocItemSelected lipgloss.Style
	DocItemActive   lipgloss.Style
	DocMeta         lipgloss.Style

	SettingLabel   lipgloss.Style
	SettingValue   lipgloss.Style
	SettingFocused lipgloss.Style

	// ==========================================================================
	// MESSAGE STYLES
	// ==========================================================================

	UserLabel       lipgloss.Style
	AssistantLabel  lipgloss.Style
	UserBubble      lipgloss.Style
	AssistantBubble lipgloss.Style
	ErrorBubble     lipgloss.Style
	Timestamp       lipgloss.Style

	SourceBox    lipgloss.Style
	SourceHeader lipgloss.Style
	SourceText   lipgloss.Style

	EmptyState lipgloss.Style

	// ==========================================================================
	// INPUT AREA STYLES
	// ==========================================================================

	InputContainer lipgloss.Style
	InputDisabled  lipgloss.Style
	InputPrompt    lipgloss.Style

	// ==========================================================================
	// SPINNER AND STATUS STYLES
	// ==========================================================================

	Spinner      lipgloss.Style
	ThinkingText lipgloss.Style

	StatusBar    lipgloss.Style
	ShortcutKey  lipgloss.Style
	ShortcutDesc lipgloss.Style
	Muted        lipgloss.Style

	// ==========================================================================
	// ACCESSIBILITY: Status indicator styles with shapes and high contrast
	// ==========================================================================

	SuccessStyle lipgloss.Style
	ErrorStyle   lipgloss.Style
	WarningStyle lipgloss.Style
	InfoStyle    lipgloss.Style
	LinkStyle    lipgloss.Style
}

// NewTheme creates a theme for the given mode.
func NewTheme(mode model.Theme) *Theme {
	colorProfile := termenv.ColorProfile()
	t := &Theme{
		HasTrueColor: colorProfile == termenv.TrueColor,
		ColorProfile: colorProfile,
	}
	t.Apply(mode)
	return t
}

// Apply switches the theme mode and rebuilds every style.
func (t *Theme) Apply(mode model.Theme) {
	if mode != model.ThemeLight {
		mode = model.ThemeDark
	}
	t.Mode = mode
	lipgloss.SetHasDarkBackground(mode.IsDark())
	t.initStyles()
}

// IsDark reports whether the dark palette is active.
func (t *Theme) IsDark() bool {
	return t.Mode.IsDark()
}

// GlamourStyle names the glamour style matching the mode.
func (t *Theme) GlamourStyle() string {
	if t.IsDark() {
		return "dark"
	}
	return "light"
}

// ChromaStyle names the chroma style matching the mode.
func (t *Theme) ChromaStyle() string {
	if t.IsDark() {
		return "catppuccin-mocha"
	}
	return "catppuccin-latte"
}

// initStyles initializes all the lip gloss styles.
func (t *Theme) initStyles() {
	t.App = lipgloss.NewStyle()
	t.Container = lipgloss.NewStyle().Padding(0, 1)

	// Header
	t.Header = lipgloss.NewStyle().
		Background(SurfaceDim).
		Padding(0, 1)

	t.HeaderBrand = lipgloss.NewStyle().
		Bold(true).
		Foreground(Cyan)

	badge := lipgloss.NewStyle().Padding(0, 1).Bold(true)
	t.BadgeDocument = badge.Foreground(TextInverse).Background(Cyan)
	t.BadgeNoDocument = badge.Foreground(TextSecondary).Background(Overlay).Bold(false).Italic(true)
	t.BadgeHealthy = badge.Foreground(TextInverse).Background(Emerald)
	t.BadgeUnreachable = badge.Foreground(TextInverse).Background(Rose)
	t.BadgeChecking = badge.Foreground(TextInverse).Background(Amber)
	t.BadgeTheme = badge.Foreground(TextPrimary).Background(SurfaceBright).Bold(false)

	// Panes
	t.Pane = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.PaneFocused = t.Pane.BorderForeground(FocusRing)

	t.PaneTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Purple).
		MarginBottom(1)

	t.DocItem = lipgloss.NewStyle().
		Foreground(TextPrimary).
		PaddingLeft(2)

	t.DocItemSelected = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Background(SelectionBg).
		Bold(true).
		PaddingLeft(1).
		BorderStyle(lipgloss.NormalBorder()).
		BorderLeft(true).
		BorderForeground(Cyan)

	t.DocItemActive = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)

	t.DocMeta = lipgloss.NewStyle().
		Foreground(TextMuted).
		PaddingLeft(2)

	t.SettingLabel = lipgloss.NewStyle().
		Foreground(TextSecondary)

	t.SettingValue = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Bold(true)

	t.SettingFocused = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)

	// Messages
	t.UserLabel = lipgloss.NewStyle().
		Foreground(UserBubbleBorder).
		Bold(true)

	t.AssistantLabel = lipgloss.NewStyle().
		Foreground(Purple).
		Bold(true)

	t.UserBubble = lipgloss.NewStyle().
		Foreground(UserBubbleFg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(UserBubbleBorder).
		Padding(0, 1).
		MarginLeft(4)

	t.AssistantBubble = lipgloss.NewStyle().
		Foreground(AssistantBubbleFg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(AssistantBubbleBorder).
		Padding(0, 1).
		MarginRight(4)

	t.ErrorBubble = t.AssistantBubble.
		Foreground(ErrorBubbleFg).
		BorderForeground(Rose)

	t.Timestamp = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	t.SourceBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderLeft(true).
		BorderForeground(SourceBorder).
		PaddingLeft(1).
		MarginLeft(2)

	t.SourceHeader = lipgloss.NewStyle().
		Foreground(Amber).
		Bold(true)

	t.SourceText = lipgloss.NewStyle().
		Foreground(TextSecondary)

	t.EmptyState = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true).
		Align(lipgloss.Center)

	// Input area
	t.InputContainer = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Cyan).
		Padding(0, 1)

	t.InputDisabled = t.InputContainer.
		BorderForeground(Overlay).
		Foreground(TextMuted)

	t.InputPrompt = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)

	// Spinner and status
	t.Spinner = lipgloss.NewStyle().
		Foreground(Purple)

	t.ThinkingText = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Italic(true)

	t.StatusBar = lipgloss.NewStyle().
		Background(SurfaceDim).
		Foreground(TextSecondary).
		Padding(0, 1)

	t.ShortcutKey = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)

	t.ShortcutDesc = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.Muted = lipgloss.NewStyle().
		Foreground(TextMuted)

	// Accessibility
	t.SuccessStyle = lipgloss.NewStyle().
		Foreground(SuccessHighContrast).
		Bold(true)

	t.ErrorStyle = lipgloss.NewStyle().
		Foreground(ErrorHighContrast).
		Bold(true)

	t.WarningStyle = lipgloss.NewStyle().
		Foreground(WarningHighContrast).
		Bold(true)

	t.InfoStyle = lipgloss.NewStyle().
		Foreground(InfoHighContrast).
		Bold(true)

	t.LinkStyle = lipgloss.NewStyle().
		Foreground(LinkColor).
		Underline(true)
}

// HealthBadge returns the badge style for a backend status.
func (t *Theme) HealthBadge(h model.Health) lipgloss.Style {
	switch {
	case h.IsHealthy():
		return t.BadgeHealthy
	case h == model.HealthUnreachable:
		return t.BadgeUnreachable
	default:
		return t.BadgeChecking
	}
}

// SetSize updates the theme dimensions for responsive layouts.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

// GetLayoutMode returns the current layout mode based on width.
func (t *Theme) GetLayoutMode() LayoutMode {
	if t.Width < 80 {
		return LayoutNarrow
	}
	if t.Width < 130 {
		return LayoutMedium
	}
	return LayoutWide
}

// LayoutMode represents the current responsive layout mode.
type LayoutMode int

const (
	LayoutNarrow LayoutMode = iota // transcript only, sidebar toggled
	LayoutMedium                   // sidebar + transcript
	LayoutWide                     // sidebar + transcript + preview
)
