// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/docchat-tui/internal/model"
)

func sampleConversation() *Conversation {
	size := int64(2048)
	doc := model.Document{Name: "report.pdf", Path: "/data/report.pdf", Size: &size}
	answer := model.NewAssistantMessage("The total is **42**.", []model.Source{
		{Content: "Totals: 42", Metadata: map[string]any{"page": float64(3)}},
	})
	conv := NewConversation("sess-1", doc, model.DefaultSettings(), []model.Message{
		model.NewUserMessage("What is the total?"),
		answer,
	})
	conv.ExportedAt = time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)
	return conv
}

func TestMarkdownExport(t *testing.T) {
	out, err := NewMarkdownExporter(nil).Export(sampleConversation())
	require.NoError(t, err)
	md := string(out)

	assert.True(t, strings.HasPrefix(md, "---\n"))
	assert.Contains(t, md, "# Questions about report.pdf")
	assert.Contains(t, md, "### [User]")
	assert.Contains(t, md, "What is the total?")
	assert.Contains(t, md, "The total is **42**.")
	assert.Contains(t, md, "Source 1 (page 3)")
	assert.Contains(t, md, "> Totals: 42")
	assert.Contains(t, md, "retrieval_mode: similarity")
}

func TestMarkdownExport_OptionsOff(t *testing.T) {
	opts := &Options{}
	out, err := NewMarkdownExporter(opts).Export(sampleConversation())
	require.NoError(t, err)
	md := string(out)

	assert.False(t, strings.HasPrefix(md, "---\n"))
	assert.NotContains(t, md, "Sources (")
	assert.NotContains(t, md, "<sub>")
	assert.NotContains(t, md, "Session Information")
}

func TestMarkdownExport_YAMLInjection(t *testing.T) {
	conv := sampleConversation()
	conv.Document.Name = "evil\ninjected: true"
	conv.Document.Path = "/tmp/x\ninjected: true"

	out, err := NewMarkdownExporter(nil).Export(conv)
	require.NoError(t, err)

	for _, line := range strings.Split(string(out), "\n") {
		assert.NotEqual(t, "injected: true", line)
	}
}

func TestExport_Empty(t *testing.T) {
	conv := sampleConversation()
	conv.Messages = nil

	_, err := NewMarkdownExporter(nil).Export(conv)
	assert.ErrorIs(t, err, ErrEmpty)
	_, err = NewJSONExporter(nil).Export(conv)
	assert.ErrorIs(t, err, ErrEmpty)
	_, err = NewJSONExporter(nil).Export(nil)
	assert.Error(t, err)
}

func TestJSONExport(t *testing.T) {
	out, err := NewJSONExporter(nil).Export(sampleConversation())
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, "sess-1", decoded["session_id"])

	settings := decoded["settings"].(map[string]any)
	assert.Equal(t, float64(4), settings["topK"])

	msgs := decoded["messages"].([]any)
	require.Len(t, msgs, 2)
	assistant := msgs[1].(map[string]any)
	assert.Len(t, assistant["sources"], 1)
	_, hasSources := msgs[0].(map[string]any)["sources"]
	assert.False(t, hasSources)
}

func TestNewExporter(t *testing.T) {
	tests := []struct {
		format  string
		ext     string
		wantErr bool
	}{
		{"markdown", ".md", false},
		{"MD", ".md", false},
		{"json", ".json", false},
		{"html", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			e, err := NewExporter(tt.format, nil)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.ext, e.FileExtension())
		})
	}
}

func TestExportToFile(t *testing.T) {
	dir := t.TempDir()
	opts := DefaultOptions()
	opts.OutputDir = dir

	path, err := Export(sampleConversation(), "json", opts)
	require.NoError(t, err)
	assert.Equal(t, dir, filepath.Dir(path))
	assert.Equal(t, "docchat_report_20250304_050607.json", filepath.Base(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, json.Valid(data))
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"report", "report"},
		{"a/b\\c:d", "a-b-c-d"},
		{"two words", "two_words"},
		{"", "conversation"},
		{"bell\x07", "bell-"},
		{strings.Repeat("x", 80), strings.Repeat("x", 50)},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sanitizeFilename(tt.in), "input %q", tt.in)
	}
}
