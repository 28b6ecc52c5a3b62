// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/docchat-tui/internal/model"
	"github.com/jeranaias/docchat-tui/internal/ui/styles"
	"github.com/jeranaias/docchat-tui/internal/util"
)

// =============================================================================
// HEADER COMPONENT
// =============================================================================

// Header shows the brand, the active document, backend health and theme.
type Header struct {
	Width    int
	Document model.Document
	Health   model.Health
	Version  string

	theme *styles.Theme
}

// NewHeader creates a new header.
func NewHeader(theme *styles.Theme) *Header {
	return &Header{Width: 80, theme: theme}
}

// View renders the header on one line, truncating the document name to fit.
func (h *Header) View() string {
	brand := h.theme.HeaderBrand.Render("docchat")
	if h.Version != "" {
		brand += h.theme.Muted.Render(" v" + h.Version)
	}

	health := h.theme.HealthBadge(h.Health).Render(healthIndicator(h.Health) + " " + h.Health.String())
	theme := h.theme.BadgeTheme.Render(string(h.theme.Mode))

	right := lipgloss.JoinHorizontal(lipgloss.Center, health, " ", theme)

	// Space left for the document badge: brand, two gaps, badge padding.
	room := h.Width - lipgloss.Width(brand) - lipgloss.Width(right) - 6
	doc := h.documentBadge(room)

	left := lipgloss.JoinHorizontal(lipgloss.Center, brand, "  ", doc)
	gap := h.Width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	return h.theme.Header.Width(h.Width).Render(left + strings.Repeat(" ", gap) + right)
}

func (h *Header) documentBadge(room int) string {
	if h.Document.IsZero() {
		return h.theme.BadgeNoDocument.Render("no document")
	}
	name := h.Document.DisplayName()
	if room > 0 {
		name = util.TruncateWidth(name, room)
	}
	return h.theme.BadgeDocument.Render(name)
}

func healthIndicator(h model.Health) string {
	switch {
	case h.IsHealthy():
		return styles.StatusIndicators.Success
	case h == model.HealthUnreachable:
		return styles.StatusIndicators.Error
	default:
		return styles.StatusIndicators.Pending
	}
}
