// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jeranaias/docchat-tui/internal/config"
	"github.com/jeranaias/docchat-tui/internal/export"
	"github.com/jeranaias/docchat-tui/internal/model"
	"github.com/jeranaias/docchat-tui/internal/preview"
	"github.com/jeranaias/docchat-tui/internal/session"
	"github.com/jeranaias/docchat-tui/internal/ui/components"
	"github.com/jeranaias/docchat-tui/internal/ui/styles"
)

// =============================================================================
// FOCUS
// =============================================================================

type focus int

const (
	focusComposer focus = iota
	focusDocuments
	focusSettings
	focusTranscript
	focusPreview
)

// =============================================================================
// MODEL
// =============================================================================

// Options configures a Model.
type Options struct {
	Context   context.Context
	Session   Session
	Preview   Previewer
	Config    *config.Config
	Version   string
	ExportDir string
	Logger    *zap.Logger
}

// Model is the root Bubble Tea model.
type Model struct {
	ctx     context.Context
	session Session
	preview Previewer
	cfg     *config.Config
	version string
	export  *export.Options
	log     *zap.Logger

	keys   KeyMap
	help   help.Model
	theme  *styles.Theme
	md     *components.Markdown
	msgs   *components.MessageView
	header *components.Header
	toasts *components.ToastManager

	viewport viewport.Model
	composer textarea.Model
	spinner  spinner.Model
	picker   filepicker.Model

	state session.State

	focus         focus
	docCursor     int
	settingCursor int

	picking       bool
	uploading     bool
	spinning      bool
	toastTicking  bool
	expandSources bool
	showSidebar   bool

	pane        preview.Pane
	paneLoading bool

	width, height int
	ready         bool
}

// New creates the root model. The initial snapshot is taken from the session.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	st := opts.Session.Snapshot()
	theme := styles.NewTheme(st.Theme)
	md := components.NewMarkdown(glamourStyle(cfg, theme), 76)

	keys := DefaultKeyMap()

	ta := textarea.New()
	ta.Placeholder = "Ask a question about the document..."
	ta.ShowLineNumbers = false
	ta.Prompt = "> "
	ta.CharLimit = 0
	ta.SetHeight(3)
	ta.KeyMap.InsertNewline = keys.Newline
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = styles.DotsSpinner.Bubble()
	sp.Style = theme.Spinner

	fp := filepicker.New()
	fp.AllowedTypes = []string{".pdf"}
	fp.AutoHeight = false
	if wd, err := os.Getwd(); err == nil {
		fp.CurrentDirectory = wd
	}

	exportOpts := export.DefaultOptions()
	if opts.ExportDir != "" {
		exportOpts.OutputDir = opts.ExportDir
	}

	m := Model{
		ctx:         ctx,
		session:     opts.Session,
		preview:     opts.Preview,
		cfg:         cfg,
		version:     opts.Version,
		export:      exportOpts,
		log:         log.Named("ui"),
		keys:        keys,
		help:        help.New(),
		theme:       theme,
		md:          md,
		msgs:        components.NewMessageView(theme, md),
		header:      components.NewHeader(theme),
		toasts:      components.NewToastManager(),
		viewport:    viewport.New(80, 20),
		composer:    ta,
		spinner:     sp,
		picker:      fp,
		state:       st,
		showSidebar: true,
	}
	m.header.Version = opts.Version
	m.msgs.ShowSources = st.ShowSources
	m.syncComposer()
	m.refreshTranscript(true)
	return m
}

// glamourStyle resolves the configured markdown style against the theme.
func glamourStyle(cfg *config.Config, theme *styles.Theme) string {
	if cfg.UI.MarkdownStyle == "" || cfg.UI.MarkdownStyle == "auto" {
		return theme.GlamourStyle()
	}
	return cfg.UI.MarkdownStyle
}

// State returns the last applied snapshot.
func (m Model) State() session.State {
	return m.state
}

// Init starts the initial health and document fetch.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, initializeCmd(m.ctx, m.session))
}

// =============================================================================
// UPDATE
// =============================================================================

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.ready = true
		m.layout()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case StateMsg:
		return m, m.applyState(msg.State)

	case resultMsg:
		cmd := m.applyState(msg.State)
		return m, tea.Batch(cmd, m.handleResult(msg.Result))

	case sendDoneMsg:
		cmd := m.applyState(msg.State)
		if msg.Result.Outcome == session.SendDiscarded {
			m.toasts.AddStatus("Reply discarded: the conversation changed while waiting.")
			cmd = tea.Batch(cmd, m.startToasts())
		}
		return m, cmd

	case previewMsg:
		if msg.Path == m.state.Active.Path {
			m.pane = msg.Pane
			m.paneLoading = false
		}
		return m, nil

	case openedMsg:
		if msg.Err != nil {
			m.toasts.AddError("Could not open document: " + msg.Err.Error())
			return m, m.startToasts()
		}
		return m, nil

	case exportDoneMsg:
		if msg.Err != nil {
			m.toasts.AddError("Export failed: " + msg.Err.Error())
		} else {
			m.toasts.AddSuccess("Exported to " + msg.Path)
		}
		return m, m.startToasts()

	case ConfigReloadedMsg:
		return m, m.applyConfig(msg)

	case spinner.TickMsg:
		if !m.busy() {
			m.spinning = false
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case components.ToastTickMsg:
		if m.toasts.Tick(msg.Time) {
			return m, components.ToastTickCmd()
		}
		m.toastTicking = false
		return m, nil
	}

	if m.picking {
		return m.updatePicker(msg)
	}
	if m.focus == focusComposer {
		var cmd tea.Cmd
		m.composer, cmd = m.composer.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) busy() bool {
	return m.state.Loading || m.uploading
}

// applyState adopts a snapshot unless a newer one was already applied.
func (m *Model) applyState(st session.State) tea.Cmd {
	if st.Version < m.state.Version {
		return nil
	}
	prev := m.state
	m.state = st

	var cmds []tea.Cmd

	if st.Theme != m.theme.Mode {
		m.theme.Apply(st.Theme)
		m.md.Configure(glamourStyle(m.cfg, m.theme), m.md.Width())
		m.spinner.Style = m.theme.Spinner
		m.refreshTranscript(false)
	}

	messagesChanged := len(st.Messages) != len(prev.Messages) || lastID(st.Messages) != lastID(prev.Messages)
	if messagesChanged || st.ShowSources != prev.ShowSources {
		m.msgs.ShowSources = st.ShowSources
		m.refreshTranscript(messagesChanged)
	}

	if st.Active.Path != prev.Active.Path {
		for i, d := range st.Documents {
			if d.Path == st.Active.Path {
				m.docCursor = i
			}
		}
		m.pane = preview.Pane{}
		if m.preview != nil && !st.Active.IsZero() {
			m.paneLoading = true
			cmds = append(cmds, previewCmd(m.ctx, m.preview, st.Active))
		}
	}
	m.clampDocCursor()

	m.syncComposer()
	cmds = append(cmds, m.startSpinner())
	return tea.Batch(cmds...)
}

func lastID(msgs []model.Message) string {
	if len(msgs) == 0 {
		return ""
	}
	return msgs[len(msgs)-1].ID
}

// handleResult surfaces failed operations as toasts.
func (m *Model) handleResult(res session.Result) tea.Cmd {
	if res.Op == session.OpUpload {
		m.uploading = false
	}
	if res.OK() {
		if res.Op == session.OpUpload {
			m.toasts.AddSuccess("Uploaded " + m.state.Active.DisplayName())
			return m.startToasts()
		}
		return nil
	}

	m.log.Debug("operation failed", zap.Stringer("result", res))
	var text string
	switch res.Op {
	case session.OpInitialize:
		// The header already shows health; only list failures need a word.
		if m.state.Health == model.HealthUnreachable {
			return nil
		}
		text = "Could not load the document list."
	case session.OpSelect:
		text = "The backend could not load the document: " + res.Err.Error()
	case session.OpUpload:
		if errors.Is(res.Err, session.ErrUploadRejected) {
			text = "Upload rejected: " + res.Err.Error()
		} else {
			text = "Upload failed: " + res.Err.Error()
		}
	case session.OpRefresh:
		text = "Could not refresh documents: " + res.Err.Error()
	case session.OpTheme:
		text = "Theme applied but not saved: " + res.Err.Error()
	default:
		text = res.String()
	}
	m.toasts.AddError(text)
	return m.startToasts()
}

func (m *Model) applyConfig(msg ConfigReloadedMsg) tea.Cmd {
	if msg.Err != nil {
		m.toasts.AddError(fmt.Sprintf("Config reload failed: %v", msg.Err))
		return m.startToasts()
	}
	m.cfg = msg.Config
	m.md.Configure(glamourStyle(m.cfg, m.theme), m.md.Width())
	if m.cfg.UI.ShowSources != m.state.ShowSources {
		m.session.SetShowSources(m.cfg.UI.ShowSources)
	}
	m.refreshTranscript(false)
	m.toasts.AddStatus("Configuration reloaded")
	return tea.Batch(m.applyState(m.session.Snapshot()), m.startToasts())
}

func (m *Model) startSpinner() tea.Cmd {
	if !m.busy() || m.spinning {
		return nil
	}
	m.spinning = true
	return m.spinner.Tick
}

func (m *Model) startToasts() tea.Cmd {
	if m.toastTicking {
		return nil
	}
	m.toastTicking = true
	return components.ToastTickCmd()
}

// syncComposer enables the composer only when a question can be sent.
func (m *Model) syncComposer() {
	switch {
	case m.state.Active.IsZero():
		m.composer.Placeholder = "Select a document to start."
	case m.state.Loading:
		m.composer.Placeholder = "Waiting for the answer..."
	default:
		m.composer.Placeholder = "Ask a question about the document..."
	}
	if m.focus == focusComposer && m.state.CanSend() && !m.picking {
		m.composer.Focus()
	} else {
		m.composer.Blur()
	}
}

// refreshTranscript re-renders the transcript into the viewport.
func (m *Model) refreshTranscript(scrollToBottom bool) {
	if len(m.state.Messages) == 0 {
		m.viewport.SetContent(components.RenderEmptyState(m.theme, m.state.Active, m.viewport.Width))
	} else {
		m.viewport.SetContent(m.msgs.RenderTranscript(m.state.Messages))
	}
	if scrollToBottom {
		m.viewport.GotoBottom()
	}
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.ForceQuit) {
		return m, tea.Quit
	}
	if m.picking {
		if key.Matches(msg, m.keys.Cancel) {
			m.picking = false
			m.syncComposer()
			return m, nil
		}
		return m.updatePicker(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.layout()
		return m, nil

	case key.Matches(msg, m.keys.NextPane):
		m.cycleFocus(1)
		return m, nil

	case key.Matches(msg, m.keys.PrevPane):
		m.cycleFocus(-1)
		return m, nil

	case key.Matches(msg, m.keys.ToggleSources):
		m.session.SetShowSources(!m.state.ShowSources)
		return m, m.applyState(m.session.Snapshot())

	case key.Matches(msg, m.keys.ExpandSources):
		m.expandSources = !m.expandSources
		m.msgs.ExpandSources = m.expandSources
		m.refreshTranscript(false)
		return m, nil

	case key.Matches(msg, m.keys.ToggleTheme):
		return m, toggleThemeCmd(m.ctx, m.session)

	case key.Matches(msg, m.keys.Clear):
		m.session.ClearTranscript()
		return m, m.applyState(m.session.Snapshot())

	case key.Matches(msg, m.keys.Export):
		if len(m.state.Messages) == 0 {
			m.toasts.AddStatus("Nothing to export yet.")
			return m, m.startToasts()
		}
		return m, exportCmd(m.state, m.export)

	case key.Matches(msg, m.keys.Sidebar):
		m.showSidebar = !m.showSidebar
		if !m.showSidebar && (m.focus == focusDocuments || m.focus == focusSettings) {
			m.setFocus(focusComposer)
		}
		m.layout()
		return m, nil

	case key.Matches(msg, m.keys.PageUp):
		m.viewport.ViewUp()
		return m, nil

	case key.Matches(msg, m.keys.PageDown):
		m.viewport.ViewDown()
		return m, nil
	}

	switch m.focus {
	case focusComposer:
		return m.handleComposerKey(msg)
	case focusDocuments:
		return m.handleDocumentsKey(msg)
	case focusSettings:
		return m.handleSettingsKey(msg)
	default:
		return m.handleViewKey(msg)
	}
}

func (m Model) handleComposerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if !m.state.CanSend() {
		return m, nil
	}
	if key.Matches(msg, m.keys.Send) {
		text := m.composer.Value()
		if strings.TrimSpace(text) == "" {
			return m, nil
		}
		m.composer.Reset()
		return m, sendCmd(m.ctx, m.session, text)
	}
	var cmd tea.Cmd
	m.composer, cmd = m.composer.Update(msg)
	return m, cmd
}

func (m Model) handleDocumentsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		m.docCursor--
		m.clampDocCursor()
	case key.Matches(msg, m.keys.Down):
		m.docCursor++
		m.clampDocCursor()
	case key.Matches(msg, m.keys.Select):
		if i, ok := m.cursorDocument(); ok {
			return m, selectCmd(m.ctx, m.session, m.state.Documents[i])
		}
	case key.Matches(msg, m.keys.Upload):
		if m.uploading {
			return m, nil
		}
		m.picking = true
		m.syncComposer()
		m.layout()
		return m, m.picker.Init()
	case key.Matches(msg, m.keys.Refresh):
		return m, refreshCmd(m.ctx, m.session)
	default:
		return m.handleViewKey(msg)
	}
	return m, nil
}

func (m Model) handleSettingsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	field := settingField(m.settingCursor)
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.settingCursor > 0 {
			m.settingCursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.settingCursor < int(numSettingFields)-1 {
			m.settingCursor++
		}
	case key.Matches(msg, m.keys.Left):
		adjustSetting(m.session, field, -1, m.state)
		return m, m.applyState(m.session.Snapshot())
	case key.Matches(msg, m.keys.Right), key.Matches(msg, m.keys.Select):
		adjustSetting(m.session, field, 1, m.state)
		return m, m.applyState(m.session.Snapshot())
	default:
		return m.handleViewKey(msg)
	}
	return m, nil
}

// handleViewKey covers keys shared by the non-composer panes.
func (m Model) handleViewKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Open):
		if m.preview == nil || m.state.Active.IsZero() {
			return m, nil
		}
		return m, openCmd(m.preview, m.state.Active)
	case key.Matches(msg, m.keys.Cancel):
		m.setFocus(focusComposer)
	case m.focus == focusTranscript && key.Matches(msg, m.keys.Up):
		m.viewport.LineUp(1)
	case m.focus == focusTranscript && key.Matches(msg, m.keys.Down):
		m.viewport.LineDown(1)
	}
	return m, nil
}

func (m Model) updatePicker(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)

	if ok, path := m.picker.DidSelectFile(msg); ok {
		m.picking = false
		m.uploading = true
		m.syncComposer()
		m.layout()
		return m, tea.Batch(uploadCmd(m.ctx, m.session, path), m.startSpinner())
	}
	if ok, path := m.picker.DidSelectDisabledFile(msg); ok {
		m.toasts.AddError("Only PDF files can be uploaded: " + path)
		return m, tea.Batch(cmd, m.startToasts())
	}
	return m, cmd
}

// =============================================================================
// FOCUS
// =============================================================================

func (m *Model) focusOrder() []focus {
	order := []focus{focusComposer, focusTranscript}
	if m.sidebarVisible() {
		order = append([]focus{focusDocuments, focusSettings}, order...)
	}
	if m.previewVisible() {
		order = append(order, focusPreview)
	}
	return order
}

func (m *Model) cycleFocus(dir int) {
	order := m.focusOrder()
	idx := 0
	for i, f := range order {
		if f == m.focus {
			idx = i
		}
	}
	idx = (idx + dir + len(order)) % len(order)
	m.setFocus(order[idx])
}

func (m *Model) setFocus(f focus) {
	m.focus = f
	m.syncComposer()
}
