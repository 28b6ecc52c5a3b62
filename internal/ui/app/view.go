// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/docchat-tui/internal/ui/components"
	"github.com/jeranaias/docchat-tui/internal/ui/styles"
	"github.com/jeranaias/docchat-tui/internal/util"
)

const (
	sidebarWidth    = 34
	previewWidth    = 38
	composerLines   = 3
	paneChrome      = 2 // rounded border, top and bottom
	paneHPadding    = 4 // border plus one column of padding on each side
	minViewportRows = 3
)

// =============================================================================
// LAYOUT
// =============================================================================

func (m *Model) sidebarVisible() bool {
	if !m.showSidebar {
		return false
	}
	return m.theme.GetLayoutMode() != styles.LayoutNarrow || m.picking
}

func (m *Model) previewVisible() bool {
	return m.preview != nil && m.theme.GetLayoutMode() == styles.LayoutWide
}

func (m *Model) mainWidth() int {
	w := m.width
	if m.sidebarVisible() {
		w -= sidebarWidth
	}
	if m.previewVisible() {
		w -= previewWidth
	}
	if w < 20 {
		w = 20
	}
	return w
}

func (m *Model) bodyHeight() int {
	h := m.height - 1 - lipgloss.Height(m.help.View(m.keys))
	if h < minViewportRows+composerLines+2*paneChrome+1 {
		h = minViewportRows + composerLines + 2*paneChrome + 1
	}
	return h
}

// layout sizes every child for the current window.
func (m *Model) layout() {
	m.theme.SetSize(m.width, m.height)
	m.help.Width = m.width
	m.header.Width = m.width

	main := m.mainWidth()
	inner := main - paneHPadding

	m.composer.SetWidth(inner)
	m.composer.SetHeight(composerLines)

	// transcript pane: chrome + viewport + one status row
	rows := m.bodyHeight() - (composerLines + paneChrome) - paneChrome - 1
	if rows < minViewportRows {
		rows = minViewportRows
	}
	m.viewport.Width = inner
	m.viewport.Height = rows

	m.md.Configure(glamourStyle(m.cfg, m.theme), inner-6)
	m.msgs.Width = inner

	m.picker.Height = m.bodyHeight() - paneChrome - 2

	if m.focus == focusPreview && !m.previewVisible() {
		m.setFocus(focusComposer)
	}
	if (m.focus == focusDocuments || m.focus == focusSettings) && !m.sidebarVisible() {
		m.setFocus(focusComposer)
	}
	m.refreshTranscript(false)
}

// =============================================================================
// VIEW
// =============================================================================

// View renders the whole screen.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	m.header.Document = m.state.Active
	m.header.Health = m.state.Health

	var columns []string
	if m.sidebarVisible() {
		columns = append(columns, m.viewSidebar())
	}
	columns = append(columns, m.viewMain())
	if m.previewVisible() {
		columns = append(columns, m.viewPreview())
	}
	body := lipgloss.JoinHorizontal(lipgloss.Top, columns...)
	body = m.overlayToasts(body)

	return lipgloss.JoinVertical(lipgloss.Left,
		m.header.View(),
		body,
		m.help.View(m.keys),
	)
}

func (m Model) paneStyle(f focus, width, height int) lipgloss.Style {
	style := m.theme.Pane
	if m.focus == f {
		style = m.theme.PaneFocused
	}
	return style.Width(width - 2).Height(height - paneChrome)
}

func (m Model) viewSidebar() string {
	height := m.bodyHeight()
	inner := sidebarWidth - paneHPadding

	if m.picking {
		title := m.theme.PaneTitle.Render("Upload a PDF")
		hint := m.theme.Muted.Render("enter select  esc cancel")
		return m.paneStyle(focusDocuments, sidebarWidth, height).
			Render(lipgloss.JoinVertical(lipgloss.Left, title, m.picker.View(), hint))
	}

	settingsHeight := int(numSettingFields) + 2 + paneChrome
	docsHeight := height - settingsHeight
	if docsHeight < 5 {
		docsHeight = 5
	}

	docsTitle := m.theme.PaneTitle.Render(fmt.Sprintf("Documents (%d)", len(m.state.Documents)))
	docsBody := m.renderDocuments(inner, docsHeight-paneChrome-2)
	docs := m.paneStyle(focusDocuments, sidebarWidth, docsHeight).
		Render(lipgloss.JoinVertical(lipgloss.Left, docsTitle, docsBody))

	settingsTitle := m.theme.PaneTitle.Render("Settings")
	settings := m.paneStyle(focusSettings, sidebarWidth, settingsHeight).
		Render(lipgloss.JoinVertical(lipgloss.Left, settingsTitle, m.renderSettings(inner)))

	return lipgloss.JoinVertical(lipgloss.Left, docs, settings)
}

func (m Model) viewMain() string {
	width := m.mainWidth()
	composerHeight := composerLines + paneChrome
	transcriptHeight := m.bodyHeight() - composerHeight

	status := ""
	switch {
	case m.state.Loading:
		status = m.spinner.View() + " " + m.theme.ThinkingText.Render("Thinking...")
	case m.uploading:
		status = m.spinner.View() + " " + m.theme.ThinkingText.Render("Uploading...")
	case !m.viewport.AtBottom():
		status = m.theme.Muted.Render(fmt.Sprintf("%3.0f%%  PgDn for newer", m.viewport.ScrollPercent()*100))
	}

	transcript := m.paneStyle(focusTranscript, width, transcriptHeight).
		Render(lipgloss.JoinVertical(lipgloss.Left, m.viewport.View(), status))

	composerStyle := m.theme.InputContainer
	if !m.state.CanSend() {
		composerStyle = m.theme.InputDisabled
	} else if m.focus != focusComposer {
		composerStyle = composerStyle.BorderForeground(styles.Overlay)
	}
	composer := composerStyle.Width(width - 2).Render(m.composer.View())

	return lipgloss.JoinVertical(lipgloss.Left, transcript, composer)
}

func (m Model) viewPreview() string {
	inner := previewWidth - paneHPadding
	title := m.theme.PaneTitle.Render("Preview")

	var lines []string
	switch {
	case m.state.Active.IsZero():
		lines = append(lines, m.theme.Muted.Render("No document selected."))
	case m.paneLoading:
		lines = append(lines, m.theme.Muted.Render("Loading..."))
	default:
		lines = m.previewLines(inner)
	}

	return m.paneStyle(focusPreview, previewWidth, m.bodyHeight()).
		Render(lipgloss.JoinVertical(lipgloss.Left, append([]string{title}, lines...)...))
}

func (m Model) previewLines(width int) []string {
	p := m.pane
	row := func(label, value string) string {
		return m.theme.SettingLabel.Render(util.PadRight(label, 9)) +
			m.theme.SettingValue.Render(util.TruncateWidth(value, width-9))
	}

	lines := []string{row("Name", m.state.Active.DisplayName())}
	if info := p.Info; info != nil {
		if info.Title != "" {
			lines = append(lines, row("Title", info.Title))
		}
		if info.Author != "" {
			lines = append(lines, row("Author", info.Author))
		}
		if info.Subject != "" {
			lines = append(lines, row("Subject", info.Subject))
		}
		if info.PageCount != nil {
			lines = append(lines, row("Pages", fmt.Sprintf("%d", *info.PageCount)))
		}
		lines = append(lines, row("Size", util.FormatBytes(info.Size)))
		if !info.LastModified.IsZero() {
			lines = append(lines, row("Modified", util.FormatTime(info.LastModified.Time)))
		}
	} else if p.InfoErr != nil {
		lines = append(lines, m.theme.Muted.Render("Details unavailable."))
	}

	lines = append(lines, "")
	switch {
	case p.Available() && p.Probe.IsPDF:
		lines = append(lines, styles.RenderSuccess("Content available"))
	case p.Available():
		lines = append(lines, styles.RenderWarning("Served as "+p.Probe.ContentType))
	case p.ProbeErr != nil:
		lines = append(lines, styles.RenderError("Content unavailable"))
	}

	if p.URL != "" {
		lines = append(lines, "", m.theme.LinkStyle.Render(wrapURL(p.URL, width)))
		lines = append(lines, m.theme.Muted.Render("o opens in your viewer"))
	}
	return lines
}

// wrapURL hard-wraps a URL, which has no spaces to break on.
func wrapURL(url string, width int) string {
	if width <= 0 {
		return url
	}
	runes := []rune(url)
	var parts []string
	for len(runes) > width {
		parts = append(parts, string(runes[:width]))
		runes = runes[width:]
	}
	parts = append(parts, string(runes))
	return strings.Join(parts, "\n")
}

// overlayToasts replaces the bottom rows of body with the toast stack.
func (m Model) overlayToasts(body string) string {
	toasts := m.toasts.Toasts()
	if len(toasts) == 0 {
		return body
	}
	stack := components.RenderToastStack(toasts, m.width)
	bodyLines := strings.Split(body, "\n")
	stackLines := strings.Split(stack, "\n")
	if len(stackLines) >= len(bodyLines) {
		return body
	}
	bodyLines = append(bodyLines[:len(bodyLines)-len(stackLines)], stackLines...)
	return strings.Join(bodyLines, "\n")
}
