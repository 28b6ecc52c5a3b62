// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes a session transcript to disk.
//
// Two formats are supported: Markdown, with YAML frontmatter and optional
// source quotes under each answer, and JSON, which always carries the full
// conversation including settings and sources.
//
//	conv := export.NewConversation(state.SessionID, state.Active, state.Settings, state.Messages)
//	path, err := export.Export(conv, "markdown", export.DefaultOptions())
package export
