// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/jeranaias/docchat-tui/internal/model"
	"github.com/jeranaias/docchat-tui/internal/util"
)

// ErrEmpty is returned when there is nothing to export.
var ErrEmpty = errors.New("transcript has no messages")

// =============================================================================
// CONVERSATION
// =============================================================================

// Conversation is the exportable view of a session transcript.
type Conversation struct {
	SessionID  string          `json:"session_id"`
	Document   model.Document  `json:"document"`
	Settings   model.Settings  `json:"settings"`
	Messages   []model.Message `json:"messages"`
	ExportedAt time.Time       `json:"exported_at"`
}

// NewConversation builds a Conversation stamped with the current time.
func NewConversation(sessionID string, doc model.Document, settings model.Settings, messages []model.Message) *Conversation {
	return &Conversation{
		SessionID:  sessionID,
		Document:   doc,
		Settings:   settings,
		Messages:   messages,
		ExportedAt: time.Now(),
	}
}

// Title returns a heading for the export.
func (c *Conversation) Title() string {
	if name := strings.Join(strings.Fields(c.Document.DisplayName()), " "); name != "" {
		return "Questions about " + name
	}
	return "docchat conversation"
}

// =============================================================================
// EXPORT INTERFACE
// =============================================================================

// Exporter defines the interface for transcript exporters.
type Exporter interface {
	// Export converts a conversation to the target format and returns the content.
	Export(conv *Conversation) ([]byte, error)

	// FileExtension returns the appropriate file extension (e.g., ".md").
	FileExtension() string

	// MimeType returns the MIME type for the exported format.
	MimeType() string
}

// Options configures export behavior.
type Options struct {
	// OutputDir is the directory where files will be saved (default: ".").
	OutputDir string

	// OpenAfterExport opens the file in the default application.
	OpenAfterExport bool

	// IncludeMetadata includes the document and settings header.
	IncludeMetadata bool

	// IncludeTimestamps includes per-message timestamps.
	IncludeTimestamps bool

	// IncludeSources lists the sources under each assistant answer.
	IncludeSources bool
}

// DefaultOptions returns default export options.
func DefaultOptions() *Options {
	return &Options{
		OutputDir:         ".",
		IncludeMetadata:   true,
		IncludeTimestamps: true,
		IncludeSources:    true,
	}
}

// NewExporter returns the exporter for a format name: markdown/md or json.
func NewExporter(format string, opts *Options) (Exporter, error) {
	switch strings.ToLower(format) {
	case "markdown", "md":
		return NewMarkdownExporter(opts), nil
	case "json":
		return NewJSONExporter(opts), nil
	default:
		return nil, fmt.Errorf("unsupported export format: %s", format)
	}
}

// =============================================================================
// EXPORT FUNCTIONS
// =============================================================================

// ExportToFile exports a conversation using the given exporter and writes it
// atomically into opts.OutputDir. Returns the output file path.
func ExportToFile(conv *Conversation, exporter Exporter, opts *Options) (string, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	content, err := exporter.Export(conv)
	if err != nil {
		return "", fmt.Errorf("export failed: %w", err)
	}

	filename := fmt.Sprintf("docchat_%s_%s%s",
		sanitizeFilename(strings.TrimSuffix(conv.Document.DisplayName(), filepath.Ext(conv.Document.DisplayName()))),
		conv.ExportedAt.Format("20060102_150405"),
		exporter.FileExtension(),
	)

	dir := opts.OutputDir
	if dir == "" {
		dir = "."
	}
	outputPath := filepath.Join(dir, filename)
	if err := util.AtomicWriteFile(outputPath, content, 0644); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}

	if opts.OpenAfterExport {
		// The file exists either way; a viewer failure is not an export failure.
		_ = util.OpenExternal(outputPath)
	}

	return outputPath, nil
}

// Export is a convenience wrapper around NewExporter and ExportToFile.
func Export(conv *Conversation, format string, opts *Options) (string, error) {
	exporter, err := NewExporter(format, opts)
	if err != nil {
		return "", err
	}
	return ExportToFile(conv, exporter, opts)
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// sanitizeFilename removes or replaces characters that are invalid in filenames.
func sanitizeFilename(s string) string {
	const maxLen = 50
	runes := []rune(s)
	if len(runes) > maxLen {
		runes = runes[:maxLen]
	}

	result := make([]rune, 0, len(runes))
	for _, r := range runes {
		switch {
		case strings.ContainsRune(`/\:*?"<>|`, r):
			result = append(result, '-')
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			result = append(result, '_')
		case r < 32 || r == 127:
			result = append(result, '-')
		default:
			result = append(result, r)
		}
	}

	if len(result) == 0 {
		return "conversation"
	}
	return string(result)
}

// formatTimestamp formats a timestamp for display.
func formatTimestamp(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}

// formatShortTimestamp formats a timestamp for inline display.
func formatShortTimestamp(t time.Time) string {
	return t.Format("15:04:05")
}
