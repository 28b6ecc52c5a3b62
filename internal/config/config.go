// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides unified configuration loading and management for docchat.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// environment variable overrides, and validation.
//
// Configuration file locations (in order of precedence):
//   - ~/.docchat/config.toml
//   - ~/.docchat/config.json
//   - Built-in defaults
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/docchat-tui/internal/logging"
	"github.com/jeranaias/docchat-tui/internal/model"
	"github.com/jeranaias/docchat-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete docchat configuration.
type Config struct {
	// General settings
	Version string `toml:"version" json:"version"`

	// Backend connection
	Backend BackendConfig `toml:"backend" json:"backend"`

	// Initial retrieval settings for a new session
	Chat ChatConfig `toml:"chat" json:"chat"`

	// UI configuration
	UI UIConfig `toml:"ui" json:"ui"`

	// Logging configuration
	Logging LoggingConfig `toml:"logging" json:"logging"`

	// Storage configuration
	Storage StorageConfig `toml:"storage" json:"storage"`
}

// BackendConfig describes how to reach the question-answering service.
type BackendConfig struct {
	// APIBase is the API root including the /api prefix.
	APIBase string `toml:"api_base" json:"api_base"`

	// TimeoutSecs bounds each request. 0 leaves timing to the network stack.
	TimeoutSecs int `toml:"timeout_secs" json:"timeout_secs"`

	// RequestsPerSecond paces requests client-side. 0 means unlimited.
	RequestsPerSecond float64 `toml:"requests_per_second" json:"requests_per_second"`
}

// Timeout returns TimeoutSecs as a duration.
func (b BackendConfig) Timeout() time.Duration {
	return time.Duration(b.TimeoutSecs) * time.Second
}

// ChatConfig holds the settings applied at session start.
type ChatConfig struct {
	TopK            int    `toml:"top_k" json:"top_k"`
	RetrievalMode   string `toml:"retrieval_mode" json:"retrieval_mode"`
	MaxTokens       int    `toml:"max_tokens" json:"max_tokens"`
	MaxContextChars int    `toml:"max_context_chars" json:"max_context_chars"`
	ShowContext     bool   `toml:"show_context" json:"show_context"`
}

// Settings converts the config section to session settings.
func (c ChatConfig) Settings() model.Settings {
	return model.Settings{
		TopK:            c.TopK,
		RetrievalMode:   model.RetrievalMode(c.RetrievalMode),
		MaxTokens:       c.MaxTokens,
		MaxContextChars: c.MaxContextChars,
		ShowContext:     c.ShowContext,
	}
}

// UIConfig contains terminal UI preferences.
type UIConfig struct {
	// Theme is the fallback when no stored preference exists: "dark" or "light".
	Theme string `toml:"theme" json:"theme"`

	// ShowSources starts the session with source display enabled.
	ShowSources bool `toml:"show_sources" json:"show_sources"`

	// MarkdownStyle selects the glamour style: auto, dark, light, notty.
	MarkdownStyle string `toml:"markdown_style" json:"markdown_style"`

	// InfoCacheMinutes is how long document info stays cached in the preview pane.
	InfoCacheMinutes int `toml:"info_cache_minutes" json:"info_cache_minutes"`
}

// LoggingConfig controls the log file.
type LoggingConfig struct {
	Path  string `toml:"path" json:"path"`
	Level string `toml:"level" json:"level"`
}

// StorageConfig controls client-local persistence.
type StorageConfig struct {
	// PreferencesPath is the SQLite file holding the theme flag.
	PreferencesPath string `toml:"preferences_path" json:"preferences_path"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a configuration with sensible defaults.
func Default() *Config {
	dir, err := ConfigDir()
	if err != nil {
		dir = ".docchat"
	}
	settings := model.DefaultSettings()

	return &Config{
		Version: "1",
		Backend: BackendConfig{
			APIBase:           "http://localhost:8000/api",
			TimeoutSecs:       0,
			RequestsPerSecond: 0,
		},
		Chat: ChatConfig{
			TopK:            settings.TopK,
			RetrievalMode:   string(settings.RetrievalMode),
			MaxTokens:       settings.MaxTokens,
			MaxContextChars: settings.MaxContextChars,
			ShowContext:     settings.ShowContext,
		},
		UI: UIConfig{
			Theme:            string(model.ThemeDark),
			ShowSources:      false,
			MarkdownStyle:    "auto",
			InfoCacheMinutes: 5,
		},
		Logging: LoggingConfig{
			Path:  filepath.Join(dir, "logs", "docchat.log"),
			Level: "info",
		},
		Storage: StorageConfig{
			PreferencesPath: filepath.Join(dir, "prefs.db"),
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the docchat configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".docchat"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0700)
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the config file(s).
// Tries TOML first, then JSON, and falls back to defaults.
// Environment overrides are applied last.
func Load() (*Config, error) {
	if path, err := ConfigPathTOML(); err == nil {
		if _, statErr := os.Stat(path); statErr == nil {
			return LoadFromPath(path)
		}
	}

	if path, err := ConfigPathJSON(); err == nil {
		if _, statErr := os.Stat(path); statErr == nil {
			return LoadFromPath(path)
		}
	}

	cfg := Default()
	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML loads configuration from a TOML file into cfg.
func LoadTOML(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return fillDefaults(cfg)
}

// LoadJSON loads configuration from a JSON file into cfg.
func LoadJSON(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return fillDefaults(cfg)
}

// LoadFromPath loads configuration from a specific file path with full validation.
func LoadFromPath(path string) (*Config, error) {
	cfg := &Config{}

	if strings.HasSuffix(path, ".json") {
		if err := LoadJSON(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load JSON config from %s: %w", path, err)
		}
	} else {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
		}
	}

	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// fillDefaults fills in any missing values with defaults.
// Zero numeric chat settings are treated as unset.
func fillDefaults(cfg *Config) error {
	defaults := Default()

	if cfg.Version == "" {
		cfg.Version = defaults.Version
	}

	// Backend
	if cfg.Backend.APIBase == "" {
		cfg.Backend.APIBase = defaults.Backend.APIBase
	}

	// Chat
	if cfg.Chat.TopK == 0 {
		cfg.Chat.TopK = defaults.Chat.TopK
	}
	if cfg.Chat.RetrievalMode == "" {
		cfg.Chat.RetrievalMode = defaults.Chat.RetrievalMode
	}
	if cfg.Chat.MaxTokens == 0 {
		cfg.Chat.MaxTokens = defaults.Chat.MaxTokens
	}
	if cfg.Chat.MaxContextChars == 0 {
		cfg.Chat.MaxContextChars = defaults.Chat.MaxContextChars
	}

	// UI
	if cfg.UI.Theme == "" {
		cfg.UI.Theme = defaults.UI.Theme
	}
	if cfg.UI.MarkdownStyle == "" {
		cfg.UI.MarkdownStyle = defaults.UI.MarkdownStyle
	}
	if cfg.UI.InfoCacheMinutes == 0 {
		cfg.UI.InfoCacheMinutes = defaults.UI.InfoCacheMinutes
	}

	// Logging
	if cfg.Logging.Path == "" {
		cfg.Logging.Path = defaults.Logging.Path
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = defaults.Logging.Level
	}

	// Storage
	if cfg.Storage.PreferencesPath == "" {
		cfg.Storage.PreferencesPath = defaults.Storage.PreferencesPath
	}

	return nil
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML saves the configuration to a TOML file with 0600 permissions.
func SaveTOML(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var buf strings.Builder
	buf.WriteString("# docchat configuration file\n")
	buf.WriteString("# Generated by docchat - edit with care\n\n")

	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := util.AtomicWriteFile(path, []byte(buf.String()), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// SaveJSON saves the configuration to a JSON file with 0600 permissions.
func SaveJSON(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := util.AtomicWriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

var validMarkdownStyles = map[string]bool{
	"auto": true, "dark": true, "light": true, "notty": true,
}

// Validate validates the configuration and returns any errors.
// Chat numbers are not range-checked; the backend receives them as given.
func (c *Config) Validate() error {
	var errs ValidateErrors

	// Backend
	if u, err := url.Parse(c.Backend.APIBase); err != nil {
		errs = append(errs, ValidationError{"backend.api_base", fmt.Sprintf("invalid URL: %v", err)})
	} else if u.Scheme != "http" && u.Scheme != "https" {
		errs = append(errs, ValidationError{"backend.api_base", "scheme must be http or https"})
	} else if u.Host == "" {
		errs = append(errs, ValidationError{"backend.api_base", "missing host"})
	}
	if c.Backend.TimeoutSecs < 0 {
		errs = append(errs, ValidationError{"backend.timeout_secs", "must not be negative"})
	}
	if c.Backend.RequestsPerSecond < 0 {
		errs = append(errs, ValidationError{"backend.requests_per_second", "must not be negative"})
	}

	// Chat
	validMode := false
	for _, m := range model.RetrievalModes {
		if string(m) == c.Chat.RetrievalMode {
			validMode = true
			break
		}
	}
	if !validMode {
		errs = append(errs, ValidationError{"chat.retrieval_mode", fmt.Sprintf("unknown mode %q (want similarity or mmr)", c.Chat.RetrievalMode)})
	}

	// UI
	if c.UI.Theme != string(model.ThemeDark) && c.UI.Theme != string(model.ThemeLight) {
		errs = append(errs, ValidationError{"ui.theme", fmt.Sprintf("unknown theme %q (want dark or light)", c.UI.Theme)})
	}
	if !validMarkdownStyles[c.UI.MarkdownStyle] {
		errs = append(errs, ValidationError{"ui.markdown_style", fmt.Sprintf("unknown style %q", c.UI.MarkdownStyle)})
	}
	if c.UI.InfoCacheMinutes < 0 {
		errs = append(errs, ValidationError{"ui.info_cache_minutes", "must not be negative"})
	}

	// Logging
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		errs = append(errs, ValidationError{"logging.level", err.Error()})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - DOCCHAT_API_BASE: overrides backend.api_base
//   - VITE_API_BASE: same, honored when DOCCHAT_API_BASE is unset
//   - DOCCHAT_TIMEOUT: overrides backend.timeout_secs
//   - DOCCHAT_THEME: overrides ui.theme
//   - DOCCHAT_LOG_LEVEL: overrides logging.level
func (c *Config) ApplyEnvOverrides() {
	if base := os.Getenv("DOCCHAT_API_BASE"); base != "" {
		c.Backend.APIBase = base
	} else if base := os.Getenv("VITE_API_BASE"); base != "" {
		c.Backend.APIBase = base
	}

	if timeout := os.Getenv("DOCCHAT_TIMEOUT"); timeout != "" {
		if secs, err := strconv.Atoi(timeout); err == nil {
			c.Backend.TimeoutSecs = secs
		}
	}

	if theme := os.Getenv("DOCCHAT_THEME"); theme != "" {
		c.UI.Theme = strings.ToLower(theme)
	}

	if level := os.Getenv("DOCCHAT_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get retrieves a configuration value using dot notation (e.g., "backend.api_base").
func (c *Config) Get(key string) (interface{}, error) {
	field, err := c.lookup(key)
	if err != nil {
		return nil, err
	}
	return field.Interface(), nil
}

// Set sets a configuration value using dot notation (e.g., "chat.top_k").
// String values are converted to the field's type.
func (c *Config) Set(key string, value interface{}) error {
	field, err := c.lookup(key)
	if err != nil {
		return err
	}
	if !field.CanSet() {
		return fmt.Errorf("cannot set field: %s", key)
	}
	return setFieldValue(field, value)
}

// lookup walks the struct tree following a dot-notation key.
func (c *Config) lookup(key string) (reflect.Value, error) {
	if key == "" {
		return reflect.Value{}, errors.New("empty key")
	}
	parts := strings.Split(key, ".")

	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		fieldName := normalizeFieldName(part)
		field := v.FieldByNameFunc(func(name string) bool {
			return strings.EqualFold(name, fieldName)
		})
		if !field.IsValid() {
			return reflect.Value{}, fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}

		if i == len(parts)-1 {
			return field, nil
		}

		if field.Kind() != reflect.Struct {
			return reflect.Value{}, fmt.Errorf("field '%s' is not a struct", strings.Join(parts[:i+1], "."))
		}
		v = field
	}

	return reflect.Value{}, fmt.Errorf("invalid key: %s", key)
}

// normalizeFieldName converts a snake_case or kebab-case name to its Go field equivalent.
func normalizeFieldName(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-'
	})

	var result strings.Builder
	for _, part := range parts {
		if len(part) > 0 {
			result.WriteString(strings.ToUpper(string(part[0])))
			result.WriteString(strings.ToLower(part[1:]))
		}
	}
	return result.String()
}

// setFieldValue sets a reflect.Value from an interface{} value with type conversion.
func setFieldValue(field reflect.Value, value interface{}) error {
	if strVal, ok := value.(string); ok {
		switch field.Kind() {
		case reflect.String:
			field.SetString(strVal)
			return nil
		case reflect.Int, reflect.Int64:
			intVal, err := strconv.ParseInt(strVal, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer value: %v", err)
			}
			field.SetInt(intVal)
			return nil
		case reflect.Float64:
			floatVal, err := strconv.ParseFloat(strVal, 64)
			if err != nil {
				return fmt.Errorf("invalid float value: %v", err)
			}
			field.SetFloat(floatVal)
			return nil
		case reflect.Bool:
			lower := strings.ToLower(strVal)
			field.SetBool(lower == "1" || lower == "true" || lower == "yes")
			return nil
		}
	}

	if value == nil {
		return fmt.Errorf("cannot assign nil to %s", field.Type())
	}
	val := reflect.ValueOf(value)
	if val.Type().AssignableTo(field.Type()) {
		field.Set(val)
		return nil
	}
	if val.Type().ConvertibleTo(field.Type()) {
		field.Set(val.Convert(field.Type()))
		return nil
	}

	return fmt.Errorf("cannot assign %T to %s", value, field.Type())
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// GetAllKeys returns all configuration keys in dot notation.
func GetAllKeys() []string {
	return []string{
		"version",
		"backend.api_base",
		"backend.timeout_secs",
		"backend.requests_per_second",
		"chat.top_k",
		"chat.retrieval_mode",
		"chat.max_tokens",
		"chat.max_context_chars",
		"chat.show_context",
		"ui.theme",
		"ui.show_sources",
		"ui.markdown_style",
		"ui.info_cache_minutes",
		"logging.path",
		"logging.level",
		"storage.preferences_path",
	}
}

// Clone creates a copy of the configuration. Config holds no reference types.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// String returns a string representation of the config for debugging.
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c, "", "  ")
	return string(data)
}

// =============================================================================
// SINGLETON PATTERN (THREAD-SAFE)
// =============================================================================

var (
	globalConfig     *Config
	globalConfigOnce sync.Once
	globalConfigMu   sync.RWMutex
)

// Global returns the global configuration instance.
// Loads configuration on first access and falls back to defaults on error.
func Global() *Config {
	globalConfigOnce.Do(func() {
		cfg, err := Load()
		if err != nil || cfg == nil {
			cfg = Default()
		}
		globalConfigMu.Lock()
		globalConfig = cfg
		globalConfigMu.Unlock()
	})

	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return globalConfig
}

// ReloadGlobal reloads the global configuration from disk. Thread-safe.
func ReloadGlobal() error {
	cfg, err := Load()
	if err != nil {
		return err
	}
	SetGlobal(cfg)
	return nil
}

// SetGlobal sets the global configuration instance. Thread-safe.
func SetGlobal(cfg *Config) {
	globalConfigOnce.Do(func() {})
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}

// ResetGlobalForTesting resets the global config state for testing.
func ResetGlobalForTesting() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = nil
	globalConfigOnce = sync.Once{}
}
