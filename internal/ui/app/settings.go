// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"fmt"
	"strings"

	"github.com/jeranaias/docchat-tui/internal/model"
	"github.com/jeranaias/docchat-tui/internal/session"
	"github.com/jeranaias/docchat-tui/internal/util"
)

// settingField is a row of the settings panel. Each row maps to one field of
// model.Settings, except show-sources which is a session display toggle.
type settingField int

const (
	fieldTopK settingField = iota
	fieldRetrievalMode
	fieldMaxTokens
	fieldMaxContextChars
	fieldShowContext
	fieldShowSources
	numSettingFields
)

func (f settingField) label() string {
	switch f {
	case fieldTopK:
		return "Top K"
	case fieldRetrievalMode:
		return "Retrieval"
	case fieldMaxTokens:
		return "Max tokens"
	case fieldMaxContextChars:
		return "Context chars"
	case fieldShowContext:
		return "Show context"
	case fieldShowSources:
		return "Show sources"
	default:
		return ""
	}
}

func (f settingField) value(st session.State) string {
	s := st.Settings
	switch f {
	case fieldTopK:
		return fmt.Sprintf("%d", s.TopK)
	case fieldRetrievalMode:
		return s.RetrievalMode.Label()
	case fieldMaxTokens:
		return fmt.Sprintf("%d", s.MaxTokens)
	case fieldMaxContextChars:
		return fmt.Sprintf("%d", s.MaxContextChars)
	case fieldShowContext:
		return onOff(s.ShowContext)
	case fieldShowSources:
		return onOff(st.ShowSources)
	default:
		return ""
	}
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

// adjustSetting moves a field by delta widget steps. Range fields clamp to
// their widget bounds; toggles and the mode selector ignore the sign.
func adjustSetting(s Session, f settingField, delta int, st session.State) {
	switch f {
	case fieldTopK:
		s.UpdateSettings(func(cfg *model.Settings) {
			cfg.TopK = model.Step(cfg.TopK, delta, 1, model.TopKMin, model.TopKMax)
		})
	case fieldRetrievalMode:
		s.UpdateSettings(func(cfg *model.Settings) {
			cfg.RetrievalMode = cfg.RetrievalMode.Next()
		})
	case fieldMaxTokens:
		s.UpdateSettings(func(cfg *model.Settings) {
			cfg.MaxTokens = model.Step(cfg.MaxTokens, delta, model.MaxTokensStep, model.MaxTokensMin, model.MaxTokensMax)
		})
	case fieldMaxContextChars:
		s.UpdateSettings(func(cfg *model.Settings) {
			cfg.MaxContextChars = model.Step(cfg.MaxContextChars, delta, model.ContextCharsStep, model.ContextCharsMin, model.ContextCharsMax)
		})
	case fieldShowContext:
		s.UpdateSettings(func(cfg *model.Settings) {
			cfg.ShowContext = !cfg.ShowContext
		})
	case fieldShowSources:
		s.SetShowSources(!st.ShowSources)
	}
}

// renderSettings draws the settings panel body.
func (m Model) renderSettings(width int) string {
	focused := m.focus == focusSettings
	labelWidth := 14
	if width < 24 {
		labelWidth = width - 10
	}
	var rows []string
	for f := settingField(0); f < numSettingFields; f++ {
		label := m.theme.SettingLabel.Render(util.PadRight(util.TruncateWidth(f.label(), labelWidth), labelWidth))
		value := f.value(m.state)
		if focused && int(f) == m.settingCursor {
			value = m.theme.SettingFocused.Render("< " + value + " >")
		} else {
			value = m.theme.SettingValue.Render(value)
		}
		rows = append(rows, label+value)
	}
	return strings.Join(rows, "\n")
}
