// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/jeranaias/docchat-tui/internal/model"
)

// SettingKeys lists the retrieval settings that can be changed from the CLI.
var SettingKeys = []string{"top_k", "retrieval_mode", "max_tokens", "max_context_chars", "show_context"}

var settingAliases = map[string]string{
	"k":           "top_k",
	"topk":        "top_k",
	"mode":        "retrieval_mode",
	"tokens":      "max_tokens",
	"maxtokens":   "max_tokens",
	"context":     "max_context_chars",
	"max_context": "max_context_chars",
}

// canonicalSetting resolves aliases and kebab-case names.
func canonicalSetting(key string) string {
	key = strings.ToLower(strings.ReplaceAll(strings.TrimSpace(key), "-", "_"))
	if alias, ok := settingAliases[key]; ok {
		return alias
	}
	return key
}

// ApplySetting parses value into the named field of s.
// Numbers are only checked for syntax; the backend receives them as given.
func ApplySetting(s *model.Settings, key, value string) error {
	key = canonicalSetting(key)
	value = strings.TrimSpace(value)

	switch key {
	case "top_k", "max_tokens", "max_context_chars":
		n, err := strconv.Atoi(value)
		if err != nil {
			return &ValidationError{Field: key, Value: value, Reason: "must be an integer"}
		}
		switch key {
		case "top_k":
			s.TopK = n
		case "max_tokens":
			s.MaxTokens = n
		default:
			s.MaxContextChars = n
		}
	case "retrieval_mode":
		mode := model.RetrievalMode(strings.ToLower(value))
		for _, m := range model.RetrievalModes {
			if m == mode {
				s.RetrievalMode = mode
				return nil
			}
		}
		return &ValidationError{Field: key, Value: value, Reason: "unknown mode", Example: "similarity or mmr"}
	case "show_context":
		b, err := ParseBoolString(value)
		if err != nil {
			return &ValidationError{Field: key, Value: value, Reason: "must be a boolean"}
		}
		s.ShowContext = b
	default:
		return &ValidationError{Field: "setting", Value: key, Reason: "unknown setting", Example: strings.Join(SettingKeys, ", ")}
	}
	return nil
}

// ApplySettings applies every override in a stable order.
func ApplySettings(s *model.Settings, overrides map[string]string) error {
	keys := make([]string, 0, len(overrides))
	for k := range overrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if err := ApplySetting(s, k, overrides[k]); err != nil {
			return err
		}
	}
	return nil
}

// formatSettings renders settings as aligned label/value lines.
func formatSettings(s model.Settings) string {
	rows := [][2]string{
		{"top_k", strconv.Itoa(s.TopK)},
		{"retrieval_mode", s.RetrievalMode.Label()},
		{"max_tokens", strconv.Itoa(s.MaxTokens)},
		{"max_context_chars", strconv.Itoa(s.MaxContextChars)},
		{"show_context", strconv.FormatBool(s.ShowContext)},
	}

	var b strings.Builder
	for _, r := range rows {
		fmt.Fprintf(&b, "  %s %s\n", RenderLabel(r[0]), ValueStyle.Render(r[1]))
	}
	return b.String()
}
