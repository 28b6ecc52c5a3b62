// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"github.com/jeranaias/docchat-tui/internal/config"
	"github.com/jeranaias/docchat-tui/internal/preview"
	"github.com/jeranaias/docchat-tui/internal/session"
)

// =============================================================================
// SESSION MESSAGES
// =============================================================================

// StateMsg delivers a session snapshot.
type StateMsg struct {
	State session.State
}

// resultMsg reports a finished non-fatal controller operation along with the
// state right after it.
type resultMsg struct {
	Result session.Result
	State  session.State
}

// sendDoneMsg reports a finished exchange.
type sendDoneMsg struct {
	Result session.SendResult
	State  session.State
}

// =============================================================================
// PREVIEW MESSAGES
// =============================================================================

// previewMsg carries preview data for the document at Path.
type previewMsg struct {
	Path string
	Pane preview.Pane
}

// openedMsg reports the outcome of opening a document externally.
type openedMsg struct {
	Err error
}

// =============================================================================
// MISC MESSAGES
// =============================================================================

// exportDoneMsg reports a transcript export.
type exportDoneMsg struct {
	Path string
	Err  error
}

// ConfigReloadedMsg is sent by the config watcher.
type ConfigReloadedMsg struct {
	Config *config.Config
	Err    error
}
