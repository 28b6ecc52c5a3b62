// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "fmt"

// RetrievalMode selects how the backend picks context chunks.
type RetrievalMode string

const (
	RetrievalSimilarity RetrievalMode = "similarity"
	RetrievalMMR        RetrievalMode = "mmr"
)

// RetrievalModes lists the modes offered by the settings panel, in display order.
var RetrievalModes = []RetrievalMode{RetrievalSimilarity, RetrievalMMR}

// Label returns the settings panel label for the mode.
func (r RetrievalMode) Label() string {
	switch r {
	case RetrievalSimilarity:
		return "Similarity"
	case RetrievalMMR:
		return "MMR (Diverse)"
	default:
		return string(r)
	}
}

// Next returns the mode after r in RetrievalModes, wrapping around.
func (r RetrievalMode) Next() RetrievalMode {
	for i, m := range RetrievalModes {
		if m == r {
			return RetrievalModes[(i+1)%len(RetrievalModes)]
		}
	}
	return RetrievalModes[0]
}

// Widget bounds for the settings panel. The controller does not enforce them.
const (
	TopKMin = 1
	TopKMax = 10

	MaxTokensMin  = 32
	MaxTokensMax  = 2048
	MaxTokensStep = 32

	ContextCharsMin  = 500
	ContextCharsMax  = 20000
	ContextCharsStep = 500
)

// Settings are forwarded verbatim with every chat request.
type Settings struct {
	TopK            int           `json:"topK" toml:"top_k"`
	RetrievalMode   RetrievalMode `json:"retrievalMode" toml:"retrieval_mode"`
	MaxTokens       int           `json:"maxTokens" toml:"max_tokens"`
	MaxContextChars int           `json:"maxContextChars" toml:"max_context_chars"`
	ShowContext     bool          `json:"showContext" toml:"show_context"`
}

// DefaultSettings returns the values applied at session start.
func DefaultSettings() Settings {
	return Settings{
		TopK:            4,
		RetrievalMode:   RetrievalSimilarity,
		MaxTokens:       256,
		MaxContextChars: 4000,
		ShowContext:     false,
	}
}

// String renders the settings for status lines.
func (s Settings) String() string {
	return fmt.Sprintf("k=%d mode=%s tokens=%d context=%d", s.TopK, s.RetrievalMode, s.MaxTokens, s.MaxContextChars)
}

// Step moves value by delta steps of size step and clamps it to [lo, hi].
// Used by range widgets; values already outside the range are pulled back in.
func Step(value, delta, step, lo, hi int) int {
	v := value + delta*step
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// =============================================================================
// THEME
// =============================================================================

// Theme is the persisted light/dark preference.
type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// ParseTheme maps a stored flag to a Theme, defaulting to dark.
func ParseTheme(s string) Theme {
	if Theme(s) == ThemeLight {
		return ThemeLight
	}
	return ThemeDark
}

// Toggle returns the opposite theme.
func (t Theme) Toggle() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

// IsDark reports whether the theme is dark.
func (t Theme) IsDark() bool {
	return t != ThemeLight
}
