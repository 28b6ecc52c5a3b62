// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package components provides the rendering pieces of the docchat TUI.

Components are plain renderers: they take model values and a *styles.Theme
and return strings. State and event handling live in package app.

# Display Components

Header (header.go) - Brand, active document badge, health badge and theme.
MessageView (message.go) - One transcript entry; assistant answers are
rendered as markdown and may carry a sources block.
Markdown (markdown.go) - Width- and theme-aware glamour renderer.
HighlightJSON (highlight.go) - Chroma highlighting for source metadata.

# Feedback

ToastManager (toast.go) - Auto-dismissing notifications for operation
results such as a failed upload or a completed export.
*/
package components
