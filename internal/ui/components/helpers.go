// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
)

// =============================================================================
// SHARED HELPER FUNCTIONS
// =============================================================================

// wordWrap wraps text at width display columns, keeping existing line breaks.
// Words longer than width are hard-wrapped.
func wordWrap(text string, width int) string {
	if width <= 0 {
		return text
	}
	var out []string
	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			out = append(out, "")
			continue
		}
		var line strings.Builder
		lineWidth := 0
		for _, word := range words {
			for runewidth.StringWidth(word) > width {
				if lineWidth > 0 {
					out = append(out, line.String())
					line.Reset()
					lineWidth = 0
				}
				head := runewidth.Truncate(word, width, "")
				if head == "" {
					head = string([]rune(word)[:1])
				}
				out = append(out, head)
				word = word[len(head):]
			}
			w := runewidth.StringWidth(word)
			switch {
			case w == 0:
			case lineWidth == 0:
				line.WriteString(word)
				lineWidth = w
			case lineWidth+1+w <= width:
				line.WriteString(" ")
				line.WriteString(word)
				lineWidth += 1 + w
			default:
				out = append(out, line.String())
				line.Reset()
				line.WriteString(word)
				lineWidth = w
			}
		}
		if lineWidth > 0 {
			out = append(out, line.String())
		}
	}
	return strings.Join(out, "\n")
}

// formatClock formats a timestamp for message headers. Older messages include the date.
func formatClock(t time.Time) string {
	now := time.Now()
	if t.Year() == now.Year() && t.YearDay() == now.YearDay() {
		return t.Format("15:04")
	}
	return t.Format("Jan 2 15:04")
}
