// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/docchat-tui/internal/export"
	"github.com/jeranaias/docchat-tui/internal/model"
	"github.com/jeranaias/docchat-tui/internal/preview"
	"github.com/jeranaias/docchat-tui/internal/session"
)

// =============================================================================
// DEPENDENCIES
// =============================================================================

// Session is the part of *session.Controller the UI drives.
type Session interface {
	SessionID() string
	Snapshot() session.State
	Subscribe(fn session.Listener) (unsubscribe func())
	Initialize(ctx context.Context) session.Result
	SelectDocument(ctx context.Context, doc model.Document) session.Result
	RefreshDocuments(ctx context.Context, selectPath string) session.Result
	UploadFile(ctx context.Context, path string) session.Result
	Send(ctx context.Context, text string) session.SendResult
	ClearTranscript()
	UpdateSettings(fn func(*model.Settings))
	SetShowSources(show bool)
	ToggleTheme(ctx context.Context) session.Result
}

// Previewer loads preview pane data.
type Previewer interface {
	Load(ctx context.Context, doc model.Document) preview.Pane
	Open(doc model.Document) error
}

// Attach forwards every controller transition to the program and returns the
// unsubscribe function. Send runs on its own goroutine because controller
// mutations are also made from inside Update, where a blocking Send would
// deadlock.
func Attach(p *tea.Program, s Session) func() {
	return s.Subscribe(func(st session.State) {
		go p.Send(StateMsg{State: st})
	})
}

// =============================================================================
// COMMANDS
// =============================================================================

func initializeCmd(ctx context.Context, s Session) tea.Cmd {
	return func() tea.Msg {
		res := s.Initialize(ctx)
		return resultMsg{Result: res, State: s.Snapshot()}
	}
}

func selectCmd(ctx context.Context, s Session, doc model.Document) tea.Cmd {
	return func() tea.Msg {
		res := s.SelectDocument(ctx, doc)
		return resultMsg{Result: res, State: s.Snapshot()}
	}
}

func refreshCmd(ctx context.Context, s Session) tea.Cmd {
	return func() tea.Msg {
		res := s.RefreshDocuments(ctx, "")
		return resultMsg{Result: res, State: s.Snapshot()}
	}
}

func uploadCmd(ctx context.Context, s Session, path string) tea.Cmd {
	return func() tea.Msg {
		res := s.UploadFile(ctx, path)
		return resultMsg{Result: res, State: s.Snapshot()}
	}
}

func sendCmd(ctx context.Context, s Session, text string) tea.Cmd {
	return func() tea.Msg {
		res := s.Send(ctx, text)
		return sendDoneMsg{Result: res, State: s.Snapshot()}
	}
}

func toggleThemeCmd(ctx context.Context, s Session) tea.Cmd {
	return func() tea.Msg {
		res := s.ToggleTheme(ctx)
		return resultMsg{Result: res, State: s.Snapshot()}
	}
}

func previewCmd(ctx context.Context, p Previewer, doc model.Document) tea.Cmd {
	return func() tea.Msg {
		return previewMsg{Path: doc.Path, Pane: p.Load(ctx, doc)}
	}
}

func openCmd(p Previewer, doc model.Document) tea.Cmd {
	return func() tea.Msg {
		return openedMsg{Err: p.Open(doc)}
	}
}

func exportCmd(st session.State, opts *export.Options) tea.Cmd {
	return func() tea.Msg {
		conv := export.NewConversation(st.SessionID, st.Active, st.Settings, st.Messages)
		path, err := export.Export(conv, "markdown", opts)
		return exportDoneMsg{Path: path, Err: err}
	}
}
