// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/jeranaias/docchat-tui/internal/model"
	"github.com/jeranaias/docchat-tui/internal/util"
)

// sourcePreviewRunes bounds how much of each source snippet is quoted.
const sourcePreviewRunes = 400

// =============================================================================
// MARKDOWN EXPORTER
// =============================================================================

// MarkdownExporter exports conversations to Markdown format.
type MarkdownExporter struct {
	options *Options
}

// NewMarkdownExporter creates a new Markdown exporter.
func NewMarkdownExporter(opts *Options) *MarkdownExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &MarkdownExporter{options: opts}
}

// Export converts a conversation to Markdown format.
func (e *MarkdownExporter) Export(conv *Conversation) ([]byte, error) {
	if conv == nil {
		return nil, fmt.Errorf("conversation is nil")
	}
	if len(conv.Messages) == 0 {
		return nil, ErrEmpty
	}

	var sb strings.Builder
	title := conv.Title()

	// YAML frontmatter with metadata
	if e.options.IncludeMetadata {
		sb.WriteString("---\n")
		fmt.Fprintf(&sb, "title: %s\n", escapeYAML(title))
		fmt.Fprintf(&sb, "document: %s\n", escapeYAML(conv.Document.Path))
		fmt.Fprintf(&sb, "session: %s\n", escapeYAML(conv.SessionID))
		fmt.Fprintf(&sb, "messages: %d\n", len(conv.Messages))
		fmt.Fprintf(&sb, "top_k: %d\n", conv.Settings.TopK)
		fmt.Fprintf(&sb, "retrieval_mode: %s\n", escapeYAML(string(conv.Settings.RetrievalMode)))
		fmt.Fprintf(&sb, "max_tokens: %d\n", conv.Settings.MaxTokens)
		fmt.Fprintf(&sb, "max_context_chars: %d\n", conv.Settings.MaxContextChars)
		fmt.Fprintf(&sb, "exported: %s\n", conv.ExportedAt.Format(time.RFC3339))
		sb.WriteString("generator: docchat\n")
		sb.WriteString("---\n\n")
	}

	fmt.Fprintf(&sb, "# %s\n\n", escapeMarkdown(title))

	if e.options.IncludeMetadata {
		sb.WriteString("## Session Information\n\n")
		fmt.Fprintf(&sb, "- **Document**: `%s`\n", conv.Document.Path)
		if conv.Document.Size != nil {
			fmt.Fprintf(&sb, "- **Size**: %s\n", util.FormatBytes(*conv.Document.Size))
		}
		fmt.Fprintf(&sb, "- **Retrieval**: %s, top %d\n", conv.Settings.RetrievalMode.Label(), conv.Settings.TopK)
		fmt.Fprintf(&sb, "- **Messages**: %d\n", len(conv.Messages))
		fmt.Fprintf(&sb, "- **Exported**: %s\n", formatTimestamp(conv.ExportedAt))
		sb.WriteString("\n---\n\n")
	}

	sb.WriteString("## Conversation\n\n")

	for i, msg := range conv.Messages {
		label := formatRoleLabel(msg.Role)
		if e.options.IncludeTimestamps && !msg.Timestamp.IsZero() {
			fmt.Fprintf(&sb, "### %s <sub>%s</sub>\n\n", label, formatShortTimestamp(msg.Timestamp))
		} else {
			fmt.Fprintf(&sb, "### %s\n\n", label)
		}

		sb.WriteString(strings.TrimSpace(msg.Content))
		sb.WriteString("\n\n")

		if e.options.IncludeSources && msg.HasSources() {
			sb.WriteString(e.formatSources(msg.Sources))
			sb.WriteString("\n")
		}

		if i < len(conv.Messages)-1 {
			sb.WriteString("---\n\n")
		}
	}

	sb.WriteString("\n---\n\n")
	fmt.Fprintf(&sb, "*Exported from docchat on %s*\n",
		conv.ExportedAt.Format("January 2, 2006 at 3:04 PM"))

	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for Markdown.
func (e *MarkdownExporter) FileExtension() string {
	return ".md"
}

// MimeType returns the MIME type for Markdown.
func (e *MarkdownExporter) MimeType() string {
	return "text/markdown"
}

// =============================================================================
// FORMATTING HELPERS
// =============================================================================

func formatRoleLabel(role model.Role) string {
	switch role {
	case model.RoleUser:
		return "[User]"
	case model.RoleAssistant:
		return "[Assistant]"
	case "":
		return "Unknown"
	default:
		runes := []rune(string(role))
		return strings.ToUpper(string(runes[0])) + string(runes[1:])
	}
}

// formatSources renders sources as a collapsible block of quotes.
func (e *MarkdownExporter) formatSources(sources []model.Source) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "<details><summary>Sources (%d)</summary>\n\n", len(sources))
	for i, src := range sources {
		heading := fmt.Sprintf("Source %d", i+1)
		if page, ok := src.Page(); ok {
			heading += fmt.Sprintf(" (page %d)", page)
		}
		fmt.Fprintf(&sb, "**%s**\n\n", heading)
		for _, line := range strings.Split(util.TruncateRunes(strings.TrimSpace(src.Content), sourcePreviewRunes), "\n") {
			sb.WriteString("> ")
			sb.WriteString(line)
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("</details>\n")
	return sb.String()
}

// =============================================================================
// ESCAPING HELPERS
// =============================================================================

// escapeMarkdown escapes special Markdown characters in plain text.
func escapeMarkdown(s string) string {
	// Only escape characters that would break formatting in titles/headings
	s = strings.ReplaceAll(s, "#", "\\#")
	s = strings.ReplaceAll(s, "*", "\\*")
	s = strings.ReplaceAll(s, "_", "\\_")
	s = strings.ReplaceAll(s, "[", "\\[")
	s = strings.ReplaceAll(s, "]", "\\]")
	return s
}

// escapeYAML quotes a scalar when it contains YAML-significant characters.
func escapeYAML(s string) string {
	if strings.ContainsAny(s, ":#|>@`\"'[]{}!%&*\n\r\\") || strings.HasPrefix(s, " ") || strings.HasSuffix(s, " ") {
		s = strings.ReplaceAll(s, "\\", "\\\\")
		s = strings.ReplaceAll(s, "\"", "\\\"")
		s = strings.ReplaceAll(s, "\n", "\\n")
		s = strings.ReplaceAll(s, "\r", "\\r")
		return fmt.Sprintf("\"%s\"", s)
	}
	return s
}
