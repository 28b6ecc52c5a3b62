// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/docchat-tui/internal/model"
)

// isolateHome points the home directory at a temp dir and clears overrides.
func isolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	for _, key := range []string{"DOCCHAT_API_BASE", "VITE_API_BASE", "DOCCHAT_TIMEOUT", "DOCCHAT_THEME", "DOCCHAT_LOG_LEVEL"} {
		t.Setenv(key, "")
	}
	return home
}

// =============================================================================
// DEFAULTS
// =============================================================================

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "http://localhost:8000/api", cfg.Backend.APIBase)
	assert.Equal(t, time.Duration(0), cfg.Backend.Timeout())
	assert.Equal(t, model.DefaultSettings(), cfg.Chat.Settings())
	assert.Equal(t, "dark", cfg.UI.Theme)
	assert.False(t, cfg.UI.ShowSources)
	require.NoError(t, cfg.Validate())
}

func TestLoad_NoFileUsesDefaults(t *testing.T) {
	isolateHome(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default().Backend.APIBase, cfg.Backend.APIBase)
}

func TestLoadFromPath_TOML(t *testing.T) {
	isolateHome(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[backend]
api_base = "http://qa.internal:9000/api"
timeout_secs = 30

[chat]
top_k = 8
retrieval_mode = "mmr"

[ui]
theme = "light"
show_sources = true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)

	assert.Equal(t, "http://qa.internal:9000/api", cfg.Backend.APIBase)
	assert.Equal(t, 30*time.Second, cfg.Backend.Timeout())
	assert.Equal(t, 8, cfg.Chat.TopK)
	assert.Equal(t, model.RetrievalMMR, cfg.Chat.Settings().RetrievalMode)
	// Unset values fall back to defaults.
	assert.Equal(t, 256, cfg.Chat.MaxTokens)
	assert.Equal(t, 4000, cfg.Chat.MaxContextChars)
	assert.Equal(t, "light", cfg.UI.Theme)
	assert.True(t, cfg.UI.ShowSources)
	assert.Equal(t, "auto", cfg.UI.MarkdownStyle)
}

func TestLoadFromPath_JSON(t *testing.T) {
	isolateHome(t)
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"backend":{"api_base":"https://docs.example.com/api"}}`), 0600))

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, "https://docs.example.com/api", cfg.Backend.APIBase)
	assert.Equal(t, 4, cfg.Chat.TopK)
}

func TestLoadFromPath_Invalid(t *testing.T) {
	isolateHome(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[chat]\nretrieval_mode = \"random\"\n"), 0600))

	_, err := LoadFromPath(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat.retrieval_mode")
}

// =============================================================================
// VALIDATION
// =============================================================================

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(c *Config)
		wantField string
	}{
		{"valid defaults", func(c *Config) {}, ""},
		{"bad scheme", func(c *Config) { c.Backend.APIBase = "ftp://host/api" }, "backend.api_base"},
		{"unparsable url", func(c *Config) { c.Backend.APIBase = "http://[::1" }, "backend.api_base"},
		{"missing host", func(c *Config) { c.Backend.APIBase = "http:///api" }, "backend.api_base"},
		{"negative timeout", func(c *Config) { c.Backend.TimeoutSecs = -1 }, "backend.timeout_secs"},
		{"negative rate", func(c *Config) { c.Backend.RequestsPerSecond = -2 }, "backend.requests_per_second"},
		{"unknown mode", func(c *Config) { c.Chat.RetrievalMode = "random" }, "chat.retrieval_mode"},
		{"unknown theme", func(c *Config) { c.UI.Theme = "solarized" }, "ui.theme"},
		{"unknown markdown style", func(c *Config) { c.UI.MarkdownStyle = "fancy" }, "ui.markdown_style"},
		{"unknown log level", func(c *Config) { c.Logging.Level = "loud" }, "logging.level"},
		{"out of range chat values accepted", func(c *Config) { c.Chat.TopK = 50; c.Chat.MaxTokens = 1 }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()

			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			var verrs ValidateErrors
			require.True(t, errors.As(err, &verrs), "got %v", err)
			assert.Equal(t, tt.wantField, verrs[0].Field)
		})
	}
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

func TestApplyEnvOverrides(t *testing.T) {
	isolateHome(t)
	t.Setenv("DOCCHAT_API_BASE", "http://env:1234/api")
	t.Setenv("VITE_API_BASE", "http://vite:5173/api")
	t.Setenv("DOCCHAT_TIMEOUT", "15")
	t.Setenv("DOCCHAT_THEME", "LIGHT")
	t.Setenv("DOCCHAT_LOG_LEVEL", "debug")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	assert.Equal(t, "http://env:1234/api", cfg.Backend.APIBase)
	assert.Equal(t, 15, cfg.Backend.TimeoutSecs)
	assert.Equal(t, "light", cfg.UI.Theme)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestApplyEnvOverrides_ViteFallback(t *testing.T) {
	isolateHome(t)
	t.Setenv("VITE_API_BASE", "http://vite:5173/api")
	t.Setenv("DOCCHAT_TIMEOUT", "soon")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	assert.Equal(t, "http://vite:5173/api", cfg.Backend.APIBase)
	assert.Equal(t, 0, cfg.Backend.TimeoutSecs)
}

// =============================================================================
// GET / SET
// =============================================================================

func TestGetSet(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.Set("chat.top_k", "8"))
	require.NoError(t, cfg.Set("chat.show_context", "true"))
	require.NoError(t, cfg.Set("backend.requests_per_second", "2.5"))
	require.NoError(t, cfg.Set("ui.theme", "light"))
	require.NoError(t, cfg.Set("backend.timeout_secs", 20))

	v, err := cfg.Get("chat.top_k")
	require.NoError(t, err)
	assert.Equal(t, 8, v)

	assert.True(t, cfg.Chat.ShowContext)
	assert.Equal(t, 2.5, cfg.Backend.RequestsPerSecond)
	assert.Equal(t, "light", cfg.UI.Theme)
	assert.Equal(t, 20, cfg.Backend.TimeoutSecs)
}

func TestGetSet_Errors(t *testing.T) {
	cfg := Default()

	_, err := cfg.Get("backend.nope")
	assert.Error(t, err)
	_, err = cfg.Get("")
	assert.Error(t, err)
	assert.Error(t, cfg.Set("chat.top_k", "many"))
	assert.Error(t, cfg.Set("backend.api_base.host", "x"))
	assert.Error(t, cfg.Set("chat.top_k", nil))
}

func TestGetAllKeys_Resolve(t *testing.T) {
	cfg := Default()
	for _, key := range GetAllKeys() {
		_, err := cfg.Get(key)
		assert.NoError(t, err, key)
	}
}

// =============================================================================
// SAVE
// =============================================================================

func TestSaveTOML_RoundTrip(t *testing.T) {
	isolateHome(t)
	path := filepath.Join(t.TempDir(), "sub", "config.toml")

	cfg := Default()
	cfg.Backend.APIBase = "http://saved:8000/api"
	cfg.Chat.TopK = 7
	require.NoError(t, SaveTOML(cfg, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	if runtime.GOOS != "windows" {
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	}

	loaded, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, "http://saved:8000/api", loaded.Backend.APIBase)
	assert.Equal(t, 7, loaded.Chat.TopK)
}

// =============================================================================
// GLOBAL
// =============================================================================

// TestConfig_ConcurrentAccess tests that Global() and SetGlobal()
// can be safely called concurrently without race conditions.
// Run with: go test -race -v ./internal/config/
func TestConfig_ConcurrentAccess(t *testing.T) {
	isolateHome(t)
	ResetGlobalForTesting()
	defer ResetGlobalForTesting()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)

		go func() {
			defer wg.Done()
			c := Default()
			c.Chat.TopK = 9
			SetGlobal(c)
		}()

		go func() {
			defer wg.Done()
			if Global() == nil {
				t.Error("Global() returned nil")
			}
		}()
	}
	wg.Wait()
}

func TestGlobal_FallsBackOnInvalidFile(t *testing.T) {
	home := isolateHome(t)
	ResetGlobalForTesting()
	defer ResetGlobalForTesting()

	dir := filepath.Join(home, ".docchat")
	require.NoError(t, os.MkdirAll(dir, 0700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("[ui]\ntheme = \"purple\"\n"), 0600))

	cfg := Global()
	require.NotNil(t, cfg)
	assert.Equal(t, "dark", cfg.UI.Theme)
}

// =============================================================================
// WATCHER
// =============================================================================

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	isolateHome(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[chat]\ntop_k = 4\n"), 0600))

	reloaded := make(chan *Config, 4)
	w, err := NewWatcher(path, 20*time.Millisecond, func(cfg *Config, err error) {
		if err == nil {
			reloaded <- cfg
		}
	})
	require.NoError(t, err)
	require.NoError(t, w.Start())
	defer w.Close()

	require.NoError(t, os.WriteFile(path, []byte("[chat]\ntop_k = 6\n"), 0600))

	select {
	case cfg := <-reloaded:
		assert.Equal(t, 6, cfg.Chat.TopK)
	case <-time.After(3 * time.Second):
		t.Fatal("no reload after write")
	}
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(""), 0600))

	called := make(chan struct{}, 1)
	w, err := NewWatcher(path, 10*time.Millisecond, func(*Config, error) { called <- struct{}{} })
	require.NoError(t, err)
	require.NoError(t, w.Start())
	defer w.Close()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.toml"), []byte("x"), 0600))

	select {
	case <-called:
		t.Fatal("reload triggered by unrelated file")
	case <-time.After(200 * time.Millisecond):
	}
}
