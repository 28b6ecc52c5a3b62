// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/docchat-tui/internal/backend"
	"github.com/jeranaias/docchat-tui/internal/model"
	"github.com/jeranaias/docchat-tui/internal/preview"
	"github.com/jeranaias/docchat-tui/internal/session"
)

// =============================================================================
// FAKES
// =============================================================================

type fakeBackend struct {
	docs    []model.Document
	loadErr error
	answer  string
}

func (f *fakeBackend) Health(context.Context) (string, error) { return "healthy", nil }

func (f *fakeBackend) ListDocuments(context.Context) ([]model.Document, error) {
	return f.docs, nil
}

func (f *fakeBackend) LoadDocument(context.Context, string) error { return f.loadErr }

func (f *fakeBackend) UploadDocument(context.Context, string, io.Reader) (*backend.UploadResponse, error) {
	return nil, errors.New("not used")
}

func (f *fakeBackend) Chat(_ context.Context, message string, _ model.Settings) (*backend.ChatResponse, error) {
	return &backend.ChatResponse{Answer: f.answer + message}, nil
}

type fakePreview struct {
	opened []string
}

func (f *fakePreview) Load(_ context.Context, doc model.Document) preview.Pane {
	return preview.Pane{Document: doc, URL: "http://backend/pdf-content?path=" + doc.Path}
}

func (f *fakePreview) Open(doc model.Document) error {
	f.opened = append(f.opened, doc.Path)
	return nil
}

var docs = []model.Document{
	{Name: "a.pdf", Path: "/docs/a.pdf"},
	{Name: "b.pdf", Path: "/docs/b.pdf"},
}

func newTestModel(t *testing.T) (Model, *session.Controller, *fakeBackend) {
	t.Helper()
	fb := &fakeBackend{docs: docs, answer: "re: "}
	ctrl := session.NewController(fb, session.Config{})
	ctrl.Initialize(context.Background())

	m := New(Options{Session: ctrl, Preview: &fakePreview{}})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 140, Height: 40})
	return next.(Model), ctrl, fb
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func keyMsg(k tea.KeyType) tea.KeyMsg { return tea.KeyMsg{Type: k} }

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

// =============================================================================
// TESTS
// =============================================================================

func TestNew_NoDocument(t *testing.T) {
	m, _, _ := newTestModel(t)

	assert.False(t, m.State().HasActive())
	assert.Len(t, m.State().Documents, 2)
	assert.False(t, m.composer.Focused(), "composer must be disabled without a document")

	view := m.View()
	assert.Contains(t, view, "no document")
	assert.Contains(t, view, "healthy")
	assert.Contains(t, view, "Documents (2)")
}

func TestApplyState_IgnoresOlderSnapshot(t *testing.T) {
	m, ctrl, _ := newTestModel(t)
	stale := ctrl.Snapshot()

	ctrl.ClearTranscript()
	m, _ = update(t, m, StateMsg{State: ctrl.Snapshot()})
	current := m.State().Version

	m, _ = update(t, m, StateMsg{State: stale})
	assert.Equal(t, current, m.State().Version)
}

func TestSelectAndSend(t *testing.T) {
	m, _, _ := newTestModel(t)

	m.setFocus(focusDocuments)
	m, _ = update(t, m, keyMsg(tea.KeyDown))
	m, cmd := update(t, m, keyMsg(tea.KeyEnter))
	require.NotNil(t, cmd)

	m, _ = update(t, m, cmd())
	require.Equal(t, "/docs/b.pdf", m.State().Active.Path)
	assert.True(t, m.paneLoading, "selecting a document should load its preview")

	m.setFocus(focusComposer)
	assert.True(t, m.composer.Focused())

	m.composer.SetValue("what is this?")
	m, cmd = update(t, m, keyMsg(tea.KeyEnter))
	require.NotNil(t, cmd)
	assert.Empty(t, m.composer.Value(), "composer resets on send")

	m, _ = update(t, m, cmd())
	msgs := m.State().Messages
	require.Len(t, msgs, 2)
	assert.Equal(t, "what is this?", msgs[0].Content)
	assert.Equal(t, "re: what is this?", msgs[1].Content)
	assert.Contains(t, m.viewport.View(), "what is this?")
}

func TestSend_IgnoredWithoutDocument(t *testing.T) {
	m, _, _ := newTestModel(t)
	m.composer.SetValue("hello")

	m, cmd := update(t, m, keyMsg(tea.KeyEnter))
	assert.Nil(t, cmd)
	assert.Empty(t, m.State().Messages)
}

func TestSend_BlankIgnored(t *testing.T) {
	m, ctrl, _ := newTestModel(t)
	ctrl.SelectDocument(context.Background(), docs[0])
	m, _ = update(t, m, StateMsg{State: ctrl.Snapshot()})

	m.composer.SetValue("   \n  ")
	_, cmd := update(t, m, keyMsg(tea.KeyEnter))
	assert.Nil(t, cmd)
}

func TestSelectFailure_ShowsToastKeepsSelection(t *testing.T) {
	m, _, fb := newTestModel(t)
	fb.loadErr = errors.New("load exploded")

	m.setFocus(focusDocuments)
	m, cmd := update(t, m, keyMsg(tea.KeyEnter))
	m, _ = update(t, m, cmd())

	assert.Equal(t, "/docs/a.pdf", m.State().Active.Path)
	toasts := m.toasts.Toasts()
	require.Len(t, toasts, 1)
	assert.Contains(t, toasts[0].Message, "load exploded")
}

func TestSettingsAdjust(t *testing.T) {
	tests := []struct {
		name    string
		field   settingField
		presses []tea.KeyMsg
		check   func(t *testing.T, st session.State)
	}{
		{
			name:    "top k increments",
			field:   fieldTopK,
			presses: []tea.KeyMsg{keyMsg(tea.KeyRight)},
			check:   func(t *testing.T, st session.State) { assert.Equal(t, 5, st.Settings.TopK) },
		},
		{
			name:    "top k clamps high",
			field:   fieldTopK,
			presses: repeat(keyMsg(tea.KeyRight), 20),
			check:   func(t *testing.T, st session.State) { assert.Equal(t, model.TopKMax, st.Settings.TopK) },
		},
		{
			name:    "max tokens steps by 32",
			field:   fieldMaxTokens,
			presses: []tea.KeyMsg{keyMsg(tea.KeyLeft)},
			check:   func(t *testing.T, st session.State) { assert.Equal(t, 224, st.Settings.MaxTokens) },
		},
		{
			name:    "context chars clamps low",
			field:   fieldMaxContextChars,
			presses: repeat(keyMsg(tea.KeyLeft), 50),
			check: func(t *testing.T, st session.State) {
				assert.Equal(t, model.ContextCharsMin, st.Settings.MaxContextChars)
			},
		},
		{
			name:    "retrieval mode cycles",
			field:   fieldRetrievalMode,
			presses: []tea.KeyMsg{keyMsg(tea.KeyRight)},
			check:   func(t *testing.T, st session.State) { assert.Equal(t, model.RetrievalMMR, st.Settings.RetrievalMode) },
		},
		{
			name:    "show sources toggles",
			field:   fieldShowSources,
			presses: []tea.KeyMsg{keyMsg(tea.KeyEnter)},
			check:   func(t *testing.T, st session.State) { assert.True(t, st.ShowSources) },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _, _ := newTestModel(t)
			m.setFocus(focusSettings)
			m.settingCursor = int(tt.field)
			for _, k := range tt.presses {
				m, _ = update(t, m, k)
			}
			tt.check(t, m.State())
		})
	}
}

func repeat(k tea.KeyMsg, n int) []tea.KeyMsg {
	out := make([]tea.KeyMsg, n)
	for i := range out {
		out[i] = k
	}
	return out
}

func TestGlobalToggles(t *testing.T) {
	m, ctrl, _ := newTestModel(t)
	ctrl.SelectDocument(context.Background(), docs[0])
	ctrl.Send(context.Background(), "q")
	m, _ = update(t, m, StateMsg{State: ctrl.Snapshot()})
	require.Len(t, m.State().Messages, 2)

	m, _ = update(t, m, keyMsg(tea.KeyCtrlS))
	assert.True(t, m.State().ShowSources)

	m, _ = update(t, m, keyMsg(tea.KeyCtrlL))
	assert.Empty(t, m.State().Messages)
	assert.Equal(t, "/docs/a.pdf", m.State().Active.Path, "clearing keeps the document")

	m, cmd := update(t, m, keyMsg(tea.KeyCtrlT))
	require.NotNil(t, cmd)
	m, _ = update(t, m, cmd())
	assert.Equal(t, model.ThemeLight, m.State().Theme)
	assert.Equal(t, model.ThemeLight, m.theme.Mode)
}

func TestPreviewMsg_StaleIgnored(t *testing.T) {
	m, ctrl, _ := newTestModel(t)
	ctrl.SelectDocument(context.Background(), docs[0])
	m, _ = update(t, m, StateMsg{State: ctrl.Snapshot()})

	m, _ = update(t, m, previewMsg{Path: "/docs/b.pdf", Pane: preview.Pane{URL: "stale"}})
	assert.Empty(t, m.pane.URL)

	m, _ = update(t, m, previewMsg{Path: "/docs/a.pdf", Pane: preview.Pane{URL: "fresh"}})
	assert.Equal(t, "fresh", m.pane.URL)
	assert.False(t, m.paneLoading)
}

func TestOpenKey(t *testing.T) {
	m, ctrl, _ := newTestModel(t)
	fp := m.preview.(*fakePreview)
	ctrl.SelectDocument(context.Background(), docs[1])
	m, _ = update(t, m, StateMsg{State: ctrl.Snapshot()})

	m.setFocus(focusTranscript)
	_, cmd := update(t, m, runes("o"))
	require.NotNil(t, cmd)
	msg := cmd().(openedMsg)
	assert.NoError(t, msg.Err)
	assert.Equal(t, []string{"/docs/b.pdf"}, fp.opened)
}

func TestComposerKeysDoNotTriggerPaneBindings(t *testing.T) {
	m, ctrl, _ := newTestModel(t)
	ctrl.SelectDocument(context.Background(), docs[0])
	m, _ = update(t, m, StateMsg{State: ctrl.Snapshot()})

	m, cmd := update(t, m, runes("q"))
	if cmd != nil {
		_, isQuit := cmd().(tea.QuitMsg)
		assert.False(t, isQuit, "typing q in the composer must not quit")
	}
	assert.Equal(t, "q", m.composer.Value())
}

func TestExportWithoutMessages(t *testing.T) {
	m, _, _ := newTestModel(t)
	m, _ = update(t, m, keyMsg(tea.KeyCtrlE))
	toasts := m.toasts.Toasts()
	require.Len(t, toasts, 1)
	assert.True(t, strings.HasPrefix(toasts[0].Message, "Nothing to export"))
}

func TestExport(t *testing.T) {
	m, ctrl, _ := newTestModel(t)
	m.export.OutputDir = t.TempDir()
	ctrl.SelectDocument(context.Background(), docs[0])
	ctrl.Send(context.Background(), "q")
	m, _ = update(t, m, StateMsg{State: ctrl.Snapshot()})

	_, cmd := update(t, m, keyMsg(tea.KeyCtrlE))
	require.NotNil(t, cmd)
	done := cmd().(exportDoneMsg)
	require.NoError(t, done.Err)
	assert.True(t, strings.HasSuffix(done.Path, ".md"))
}
