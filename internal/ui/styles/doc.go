// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for docchat.
//
// All colors are lipgloss AdaptiveColors with a Light and a Dark variant.
// Theme.Apply selects the variant from the user's persisted theme flag rather
// than from terminal background detection, and rebuilds the styles.
//
// Status colors are always paired with an ASCII indicator ([OK], [X], [!])
// so state is readable without color.
//
// # Layout
//
// GetLayoutMode maps the terminal width to one of three layouts:
//
//   - LayoutNarrow: transcript only; the sidebar is shown on demand
//   - LayoutMedium: document/settings sidebar plus transcript
//   - LayoutWide: sidebar, transcript and preview pane
package styles
