// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// env.go - Wiring of config, logging, backend and session for every command.

package cli

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/jeranaias/docchat-tui/internal/backend"
	"github.com/jeranaias/docchat-tui/internal/config"
	"github.com/jeranaias/docchat-tui/internal/logging"
	"github.com/jeranaias/docchat-tui/internal/model"
	"github.com/jeranaias/docchat-tui/internal/session"
	"github.com/jeranaias/docchat-tui/internal/storage"
)

// Env holds the collaborators a command needs. Close releases them.
type Env struct {
	Config     *config.Config
	ConfigPath string // file to watch and save; may not exist yet
	Logger     *zap.Logger
	Client     *backend.Client

	prefs *storage.PreferenceStore
}

// LoadConfig loads the config named by --config, or the default file.
// --api overrides the backend root after environment overrides.
func LoadConfig(args Args) (*config.Config, string, error) {
	var (
		cfg  *config.Config
		path = args.ConfigPath
		err  error
	)

	if path != "" {
		cfg, err = config.LoadFromPath(path)
	} else {
		cfg, err = config.Load()
		path = defaultConfigPath()
	}
	if err != nil {
		return nil, path, err
	}

	if args.APIBase != "" {
		cfg.Backend.APIBase = args.APIBase
		if err := cfg.Validate(); err != nil {
			return nil, path, fmt.Errorf("invalid --api: %w", err)
		}
	}

	config.SetGlobal(cfg)
	return cfg, path, nil
}

// defaultConfigPath returns the TOML path, or the JSON one when only that exists.
func defaultConfigPath() string {
	tomlPath, err := config.ConfigPathTOML()
	if err != nil {
		return ""
	}
	if _, statErr := os.Stat(tomlPath); statErr == nil {
		return tomlPath
	}
	if jsonPath, err := config.ConfigPathJSON(); err == nil {
		if _, statErr := os.Stat(jsonPath); statErr == nil {
			return jsonPath
		}
	}
	return tomlPath
}

// NewEnv loads config and builds the logger and backend client.
// A logger that cannot open its file degrades to a no-op logger.
func NewEnv(args Args) (*Env, error) {
	if args.NoColor {
		ForceColorsEnabled(false)
	}

	cfg, path, err := LoadConfig(args)
	if err != nil {
		return nil, err
	}

	level := cfg.Logging.Level
	if args.Verbose {
		level = "debug"
	}
	logger, err := logging.New(logging.Options{Path: cfg.Logging.Path, Level: level})
	if err != nil {
		if !args.Quiet {
			fmt.Fprintf(os.Stderr, "%s logging disabled: %v\n", WarningStyle.Render("[WARN]"), err)
		}
		logger = logging.Nop()
	}

	client := backend.NewClientWithConfig(&backend.ClientConfig{
		BaseURL:           cfg.Backend.APIBase,
		Timeout:           cfg.Backend.Timeout(),
		RequestsPerSecond: cfg.Backend.RequestsPerSecond,
		Logger:            logger,
	})

	logger.Debug("environment ready",
		zap.String("api_base", client.BaseURL()),
		zap.String("config", path))

	return &Env{
		Config:     cfg,
		ConfigPath: path,
		Logger:     logger,
		Client:     client,
	}, nil
}

// Preferences opens the preference store once. It returns nil when the store
// cannot be opened; the theme then lives in memory only.
func (e *Env) Preferences() *storage.PreferenceStore {
	if e.prefs != nil {
		return e.prefs
	}
	prefs, err := storage.OpenPreferences(e.Config.Storage.PreferencesPath)
	if err != nil {
		e.Logger.Warn("preference store unavailable", zap.Error(err))
		return nil
	}
	e.prefs = prefs
	return prefs
}

// NewSession creates a controller seeded from config plus CLI overrides.
func (e *Env) NewSession(args Args) (*session.Controller, error) {
	settings := e.Config.Chat.Settings()
	if err := ApplySettings(&settings, args.Settings); err != nil {
		return nil, err
	}

	cfg := session.Config{
		Settings:    &settings,
		ShowSources: e.Config.UI.ShowSources || args.Sources,
		Theme:       model.ParseTheme(e.Config.UI.Theme),
		Logger:      e.Logger,
	}
	// A nil *PreferenceStore must not become a non-nil interface.
	if prefs := e.Preferences(); prefs != nil {
		cfg.Preferences = prefs
	}
	return session.NewController(e.Client, cfg), nil
}

// Close flushes the logger and closes the preference store.
func (e *Env) Close() {
	if e.prefs != nil {
		if err := e.prefs.Close(); err != nil {
			e.Logger.Warn("close preference store", zap.Error(err))
		}
	}
	_ = e.Logger.Sync()
}
