// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/unicode/norm"

	"github.com/jeranaias/docchat-tui/internal/backend"
	"github.com/jeranaias/docchat-tui/internal/model"
)

// ThemeKey is the preference key the theme flag is stored under.
const ThemeKey = "theme"

// ErrUploadRejected is returned when the backend answers an upload without a usable path.
var ErrUploadRejected = errors.New("upload rejected by backend")

// =============================================================================
// COLLABORATORS
// =============================================================================

// Backend is the subset of the backend client the controller needs.
type Backend interface {
	Health(ctx context.Context) (string, error)
	ListDocuments(ctx context.Context) ([]model.Document, error)
	LoadDocument(ctx context.Context, path string) error
	UploadDocument(ctx context.Context, filename string, r io.Reader) (*backend.UploadResponse, error)
	Chat(ctx context.Context, message string, settings model.Settings) (*backend.ChatResponse, error)
}

// Preferences is a small key-value store for client-local flags.
type Preferences interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// Listener receives a snapshot after every state transition.
// Listeners run on the goroutine that caused the transition and must not block.
type Listener func(State)

// =============================================================================
// CONTROLLER
// =============================================================================

// Config holds the initial values for a controller.
type Config struct {
	// Settings applied at session start (default: model.DefaultSettings()).
	Settings *model.Settings

	// ShowSources is the initial "show sources" toggle.
	ShowSources bool

	// Theme is used until a stored preference is found (default: dark).
	Theme model.Theme

	// Preferences persists the theme flag. Nil keeps it in memory only.
	Preferences Preferences

	// Logger for controller events (default: no-op).
	Logger *zap.Logger
}

// Controller owns the chat session: active document, transcript, loading flag,
// backend health, theme and settings. All methods are safe for concurrent use.
type Controller struct {
	mu sync.Mutex

	backend Backend
	prefs   Preferences
	log     *zap.Logger

	sessionID  string
	version    uint64
	epoch      uint64
	documents  []model.Document
	active     model.Document
	transcript *model.Transcript
	loading    bool
	health     model.Health
	theme      model.Theme
	showSource bool
	settings   model.Settings

	listeners []subscription
	nextSubID int
}

type subscription struct {
	id int
	fn Listener
}

// NewController creates a controller talking to the given backend.
func NewController(b Backend, cfg Config) *Controller {
	settings := model.DefaultSettings()
	if cfg.Settings != nil {
		settings = *cfg.Settings
	}

	theme := cfg.Theme
	if theme == "" {
		theme = model.ThemeDark
	}

	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	id := uuid.NewString()
	return &Controller{
		backend:    b,
		prefs:      cfg.Preferences,
		log:        log.Named("session").With(zap.String("session_id", id)),
		sessionID:  id,
		transcript: model.NewTranscript(),
		health:     model.HealthChecking,
		theme:      theme,
		showSource: cfg.ShowSources,
		settings:   settings,
	}
}

// SessionID returns the identifier of this session.
func (c *Controller) SessionID() string {
	return c.sessionID
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() State {
	docs := make([]model.Document, len(c.documents))
	copy(docs, c.documents)
	return State{
		SessionID:   c.sessionID,
		Version:     c.version,
		Epoch:       c.epoch,
		Documents:   docs,
		Active:      c.active,
		Messages:    c.transcript.Messages(),
		Loading:     c.loading,
		Health:      c.health,
		Theme:       c.theme,
		ShowSources: c.showSource,
		Settings:    c.settings,
	}
}

// =============================================================================
// OBSERVERS
// =============================================================================

// Subscribe registers a listener and returns a function that removes it.
func (c *Controller) Subscribe(fn Listener) (unsubscribe func()) {
	c.mu.Lock()
	c.nextSubID++
	id := c.nextSubID
	c.listeners = append(c.listeners, subscription{id: id, fn: fn})
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			for i, s := range c.listeners {
				if s.id == id {
					c.listeners = append(c.listeners[:i:i], c.listeners[i+1:]...)
					return
				}
			}
		})
	}
}

// notify bumps the version and delivers a snapshot to every listener outside the lock.
func (c *Controller) notify() {
	c.mu.Lock()
	c.version++
	snap := c.snapshotLocked()
	listeners := make([]Listener, len(c.listeners))
	for i, s := range c.listeners {
		listeners[i] = s.fn
	}
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(snap)
	}
}

// =============================================================================
// LIFECYCLE
// =============================================================================

// Initialize fetches health and the document list concurrently and loads the
// stored theme. Each part falls back independently: health becomes
// "unreachable", the list stays empty. The returned error is informational.
func (c *Controller) Initialize(ctx context.Context) Result {
	var (
		g         errgroup.Group
		healthErr error
		listErr   error
	)

	g.Go(func() error {
		status, err := c.backend.Health(ctx)
		healthErr = err

		c.mu.Lock()
		switch {
		case err != nil:
			c.health = model.HealthUnreachable
		case status == "":
			c.health = model.HealthUnreachable
		default:
			c.health = model.Health(status)
		}
		c.mu.Unlock()

		if err != nil {
			c.log.Warn("health check failed", zap.Error(err))
		}
		c.notify()
		return nil
	})

	g.Go(func() error {
		docs, err := c.backend.ListDocuments(ctx)
		listErr = err
		if err != nil {
			c.log.Warn("document list failed", zap.Error(err))
			return nil
		}

		c.mu.Lock()
		c.documents = docs
		c.mu.Unlock()
		c.notify()
		return nil
	})

	g.Go(func() error {
		c.loadTheme(ctx)
		return nil
	})

	_ = g.Wait()
	return Result{Op: OpInitialize, Err: errors.Join(healthErr, listErr)}
}

func (c *Controller) loadTheme(ctx context.Context) {
	if c.prefs == nil {
		return
	}
	value, ok, err := c.prefs.Get(ctx, ThemeKey)
	if err != nil {
		c.log.Warn("theme preference unreadable", zap.Error(err))
		return
	}
	if !ok {
		return
	}

	c.mu.Lock()
	c.theme = model.ParseTheme(value)
	c.mu.Unlock()
	c.notify()
}

// =============================================================================
// DOCUMENTS
// =============================================================================

// SelectDocument makes doc the active document, clears the transcript and tells
// the backend. A backend failure is reported but the selection stands.
func (c *Controller) SelectDocument(ctx context.Context, doc model.Document) Result {
	c.mu.Lock()
	c.activateLocked(doc)
	c.mu.Unlock()
	c.notify()

	c.log.Info("document selected", zap.String("path", doc.Path))
	if err := c.backend.LoadDocument(ctx, doc.Path); err != nil {
		c.log.Warn("load-pdf failed", zap.String("path", doc.Path), zap.Error(err))
		return Result{Op: OpSelect, Err: err}
	}
	return Result{Op: OpSelect}
}

// activateLocked switches the active document and starts a new epoch.
func (c *Controller) activateLocked(doc model.Document) {
	c.active = doc
	c.transcript.Clear()
	c.epoch++
}

// RefreshDocuments re-fetches the document list. When selectPath is non-empty and
// present in the new list, that document is selected. On failure the previous
// list is kept.
func (c *Controller) RefreshDocuments(ctx context.Context, selectPath string) Result {
	docs, err := c.backend.ListDocuments(ctx)
	if err != nil {
		c.log.Warn("document refresh failed", zap.Error(err))
		return Result{Op: OpRefresh, Err: err}
	}

	c.mu.Lock()
	c.documents = docs
	c.mu.Unlock()
	c.notify()

	if selectPath == "" {
		return Result{Op: OpRefresh}
	}
	if doc, ok := model.FindDocument(docs, selectPath); ok {
		return c.SelectDocument(ctx, doc)
	}
	return Result{Op: OpRefresh}
}

// Upload sends a document to the backend. On success the returned document
// becomes active, the transcript is cleared and the list is refreshed. On any
// failure the active document and transcript are left untouched.
func (c *Controller) Upload(ctx context.Context, filename string, r io.Reader) Result {
	resp, err := c.backend.UploadDocument(ctx, filename, r)
	if err != nil {
		c.log.Warn("upload failed", zap.String("file", filename), zap.Error(err))
		return Result{Op: OpUpload, Err: err}
	}
	if !resp.Success || resp.Path == "" {
		err := ErrUploadRejected
		if resp.Message != "" {
			err = fmt.Errorf("%w: %s", ErrUploadRejected, resp.Message)
		}
		c.log.Warn("upload rejected", zap.String("file", filename), zap.String("message", resp.Message))
		return Result{Op: OpUpload, Err: err}
	}

	c.mu.Lock()
	c.activateLocked(resp.Document())
	c.mu.Unlock()
	c.notify()
	c.log.Info("upload adopted", zap.String("path", resp.Path))

	if res := c.RefreshDocuments(ctx, resp.Path); !res.OK() {
		c.log.Debug("post-upload refresh incomplete", zap.Stringer("result", res))
	}
	return Result{Op: OpUpload}
}

// UploadFile opens a local file and uploads it under its base name.
func (c *Controller) UploadFile(ctx context.Context, path string) Result {
	f, err := os.Open(path)
	if err != nil {
		return Result{Op: OpUpload, Err: fmt.Errorf("open %s: %w", path, err)}
	}
	defer f.Close()
	return c.Upload(ctx, filepath.Base(path), f)
}

// =============================================================================
// CHAT
// =============================================================================

// Send submits a question about the active document. It is a no-op when the
// trimmed text is empty, a request is in flight, or no document is active.
// Otherwise the user message is appended at once and the reply (or the fixed
// error reply) is appended when the request resolves. Replies that arrive
// after the epoch changed are dropped. Loading is cleared in every case.
func (c *Controller) Send(ctx context.Context, text string) SendResult {
	text = strings.TrimSpace(norm.NFC.String(text))

	c.mu.Lock()
	if text == "" || c.loading || c.active.IsZero() {
		c.mu.Unlock()
		return SendResult{Result: Result{Op: OpSend}, Outcome: SendIgnored}
	}
	c.transcript.Append(model.NewUserMessage(text))
	c.loading = true
	epoch := c.epoch
	settings := c.settings
	c.mu.Unlock()
	c.notify()

	resp, err := c.backend.Chat(ctx, text, settings)

	var (
		reply   model.Message
		outcome = SendAnswered
	)
	if err != nil {
		c.log.Warn("chat failed", zap.Error(err))
		reply = model.NewErrorMessage()
		outcome = SendFailed
	} else {
		reply = model.NewAssistantMessage(resp.Answer, resp.Sources)
	}

	c.mu.Lock()
	c.loading = false
	if epoch != c.epoch {
		outcome = SendDiscarded
	} else {
		c.transcript.Append(reply)
	}
	c.mu.Unlock()
	c.notify()

	if outcome == SendDiscarded {
		c.log.Info("stale reply discarded", zap.Uint64("sent_epoch", epoch))
		return SendResult{Result: Result{Op: OpSend, Err: err}, Outcome: outcome}
	}
	return SendResult{Result: Result{Op: OpSend, Err: err}, Outcome: outcome, Reply: reply}
}

// ClearTranscript empties the transcript and starts a new epoch.
// The active document and settings are untouched.
func (c *Controller) ClearTranscript() {
	c.mu.Lock()
	c.transcript.Clear()
	c.epoch++
	c.mu.Unlock()
	c.notify()
}

// =============================================================================
// SETTINGS & PREFERENCES
// =============================================================================

// SetSettings replaces the settings used by subsequent chat requests.
func (c *Controller) SetSettings(s model.Settings) {
	c.mu.Lock()
	c.settings = s
	c.mu.Unlock()
	c.notify()
}

// UpdateSettings applies fn to the current settings. No validation is done.
func (c *Controller) UpdateSettings(fn func(*model.Settings)) {
	c.mu.Lock()
	fn(&c.settings)
	c.mu.Unlock()
	c.notify()
}

// SetShowSources toggles display of assistant sources.
func (c *Controller) SetShowSources(show bool) {
	c.mu.Lock()
	c.showSource = show
	c.mu.Unlock()
	c.notify()
}

// SetTheme applies and persists the theme. A persistence failure leaves the
// in-memory theme applied.
func (c *Controller) SetTheme(ctx context.Context, theme model.Theme) Result {
	c.mu.Lock()
	c.theme = theme
	c.mu.Unlock()
	c.notify()

	if c.prefs == nil {
		return Result{Op: OpTheme}
	}
	if err := c.prefs.Set(ctx, ThemeKey, string(theme)); err != nil {
		c.log.Warn("theme not persisted", zap.Error(err))
		return Result{Op: OpTheme, Err: err}
	}
	return Result{Op: OpTheme}
}

// ToggleTheme switches between dark and light.
func (c *Controller) ToggleTheme(ctx context.Context) Result {
	return c.SetTheme(ctx, c.Snapshot().Theme.Toggle())
}
