// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"strings"

	"github.com/jeranaias/docchat-tui/internal/util"
)

// cursorDocument returns the document under the list cursor.
func (m Model) cursorDocument() (int, bool) {
	if m.docCursor < 0 || m.docCursor >= len(m.state.Documents) {
		return 0, false
	}
	return m.docCursor, true
}

// clampDocCursor keeps the cursor inside the list.
func (m *Model) clampDocCursor() {
	n := len(m.state.Documents)
	switch {
	case n == 0:
		m.docCursor = 0
	case m.docCursor >= n:
		m.docCursor = n - 1
	case m.docCursor < 0:
		m.docCursor = 0
	}
}

// renderDocuments draws up to height rows of the document list, scrolled so
// the cursor stays visible.
func (m Model) renderDocuments(width, height int) string {
	docs := m.state.Documents
	if len(docs) == 0 {
		return m.theme.Muted.Render("No documents.\nPress u to upload one.")
	}
	if height < 1 {
		height = 1
	}

	start := 0
	if m.docCursor >= height {
		start = m.docCursor - height + 1
	}
	end := start + height
	if end > len(docs) {
		end = len(docs)
	}

	focused := m.focus == focusDocuments
	rows := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		doc := docs[i]
		size := ""
		if doc.Size != nil {
			size = util.FormatBytes(*doc.Size)
		}
		line := util.TruncateWidth(doc.DisplayName(), width-4-util.StringWidth(size)-1)
		if size != "" {
			line += " " + m.theme.Muted.Render(size)
		}

		marker := "  "
		if doc.Path == m.state.Active.Path {
			marker = m.theme.DocItemActive.Render("* ")
		}

		if focused && i == m.docCursor {
			rows = append(rows, m.theme.DocItemSelected.Render(marker+line))
		} else {
			rows = append(rows, marker+m.theme.DocItem.UnsetPaddingLeft().Render(line))
		}
	}
	return strings.Join(rows, "\n")
}
