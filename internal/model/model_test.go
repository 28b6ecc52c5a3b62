// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"encoding/json"
	"strings"
	"testing"
)

// =============================================================================
// MESSAGE TESTS
// =============================================================================

func TestNewUserMessage(t *testing.T) {
	msg := NewUserMessage("Hello")

	if msg.Role != RoleUser {
		t.Errorf("Role = %q, want 'user'", msg.Role)
	}
	if msg.Content != "Hello" {
		t.Errorf("Content = %q, want 'Hello'", msg.Content)
	}
	if msg.ID == "" {
		t.Error("ID should be generated")
	}
	if msg.Timestamp.IsZero() {
		t.Error("Timestamp should be set")
	}
}

func TestNewAssistantMessage_Sources(t *testing.T) {
	msg := NewAssistantMessage("answer", []Source{})
	if msg.HasSources() {
		t.Error("empty sources should not be attached")
	}
	if msg.Sources != nil {
		t.Error("empty sources should be stored as nil")
	}

	src := []Source{{Content: "chunk", Metadata: map[string]any{"page": 3.0}}}
	msg = NewAssistantMessage("answer", src)
	if !msg.HasSources() {
		t.Fatal("sources should be attached")
	}

	// The message keeps its own copy
	src[0].Content = "changed"
	if msg.Sources[0].Content != "chunk" {
		t.Error("sources should be copied")
	}
}

func TestNewErrorMessage(t *testing.T) {
	msg := NewErrorMessage()
	if !msg.IsAssistant() {
		t.Error("error reply should come from the assistant")
	}
	if msg.Content != "Error contacting server." {
		t.Errorf("Content = %q", msg.Content)
	}
}

func TestSource_Page(t *testing.T) {
	tests := []struct {
		name   string
		meta   map[string]any
		want   int
		wantOK bool
	}{
		{"json number", map[string]any{"page": 4.0}, 4, true},
		{"int", map[string]any{"page": 2}, 2, true},
		{"missing", map[string]any{"source": "a.pdf"}, 0, false},
		{"wrong type", map[string]any{"page": "two"}, 0, false},
		{"nil metadata", nil, 0, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := Source{Metadata: tc.meta}.Page()
			if got != tc.want || ok != tc.wantOK {
				t.Errorf("Page() = (%d, %v), want (%d, %v)", got, ok, tc.want, tc.wantOK)
			}
		})
	}
}

func TestRole_DisplayName(t *testing.T) {
	if RoleUser.DisplayName() != "You" {
		t.Errorf("user DisplayName = %q", RoleUser.DisplayName())
	}
	if RoleAssistant.DisplayName() != "Assistant" {
		t.Errorf("assistant DisplayName = %q", RoleAssistant.DisplayName())
	}
}

// =============================================================================
// TRANSCRIPT TESTS
// =============================================================================

func TestTranscript_AppendOnly(t *testing.T) {
	tr := NewTranscript()
	if !tr.IsEmpty() {
		t.Fatal("new transcript should be empty")
	}

	tr.Append(NewUserMessage("one"))
	tr.Append(NewAssistantMessage("two", nil))
	tr.Append(NewUserMessage("three"))

	msgs := tr.Messages()
	if len(msgs) != 3 {
		t.Fatalf("Len = %d, want 3", len(msgs))
	}
	for i, want := range []string{"one", "two", "three"} {
		if msgs[i].Content != want {
			t.Errorf("msgs[%d] = %q, want %q", i, msgs[i].Content, want)
		}
	}

	// Mutating the copy must not touch the transcript
	msgs[0].Content = "edited"
	if tr.Messages()[0].Content != "one" {
		t.Error("Messages() should return a copy")
	}

	last, ok := tr.Last()
	if !ok || last.Content != "three" {
		t.Errorf("Last() = %q, %v", last.Content, ok)
	}
	if tr.CountByRole(RoleUser) != 2 {
		t.Errorf("CountByRole(user) = %d, want 2", tr.CountByRole(RoleUser))
	}
}

func TestTranscript_Clear(t *testing.T) {
	tr := NewTranscript()
	tr.Append(NewUserMessage("hi"))
	tr.Clear()

	if tr.Len() != 0 {
		t.Errorf("Len after Clear = %d", tr.Len())
	}
	if _, ok := tr.Last(); ok {
		t.Error("Last() on empty transcript should report false")
	}
	if tr.Messages() != nil {
		t.Error("Messages() on empty transcript should be nil")
	}
}

// =============================================================================
// SETTINGS TESTS
// =============================================================================

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()
	if s.TopK != 4 || s.RetrievalMode != RetrievalSimilarity || s.MaxTokens != 256 ||
		s.MaxContextChars != 4000 || s.ShowContext {
		t.Errorf("unexpected defaults: %+v", s)
	}
}

func TestSettings_JSONKeys(t *testing.T) {
	data, err := json.Marshal(DefaultSettings())
	if err != nil {
		t.Fatal(err)
	}
	got := string(data)
	for _, key := range []string{`"topK":4`, `"retrievalMode":"similarity"`, `"maxTokens":256`, `"maxContextChars":4000`, `"showContext":false`} {
		if !strings.Contains(got, key) {
			t.Errorf("marshalled settings %s missing %s", got, key)
		}
	}
}

func TestStep(t *testing.T) {
	tests := []struct {
		name                       string
		value, delta, step, lo, hi int
		want                       int
	}{
		{"increment", 4, 1, 1, TopKMin, TopKMax, 5},
		{"clamp high", 10, 1, 1, TopKMin, TopKMax, 10},
		{"clamp low", 1, -1, 1, TopKMin, TopKMax, 1},
		{"token step", 256, 1, MaxTokensStep, MaxTokensMin, MaxTokensMax, 288},
		{"out of range pulled in", 50000, -1, ContextCharsStep, ContextCharsMin, ContextCharsMax, 20000},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Step(tc.value, tc.delta, tc.step, tc.lo, tc.hi); got != tc.want {
				t.Errorf("Step() = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestRetrievalMode_Next(t *testing.T) {
	if RetrievalSimilarity.Next() != RetrievalMMR {
		t.Error("similarity should cycle to mmr")
	}
	if RetrievalMMR.Next() != RetrievalSimilarity {
		t.Error("mmr should cycle to similarity")
	}
	if RetrievalMode("bogus").Next() != RetrievalSimilarity {
		t.Error("unknown mode should reset to the first mode")
	}
}

func TestTheme(t *testing.T) {
	if ParseTheme("light") != ThemeLight {
		t.Error("light should parse")
	}
	if ParseTheme("") != ThemeDark || ParseTheme("neon") != ThemeDark {
		t.Error("unknown flags should default to dark")
	}
	if ThemeDark.Toggle() != ThemeLight || ThemeLight.Toggle() != ThemeDark {
		t.Error("Toggle should flip the theme")
	}
}

// =============================================================================
// DOCUMENT TESTS
// =============================================================================

func TestFindDocument(t *testing.T) {
	docs := []Document{{Name: "A.pdf", Path: "/a"}, {Name: "B.pdf", Path: "/b"}}

	d, ok := FindDocument(docs, "/b")
	if !ok || d.Name != "B.pdf" {
		t.Errorf("FindDocument(/b) = %+v, %v", d, ok)
	}
	if _, ok := FindDocument(docs, "/c"); ok {
		t.Error("FindDocument(/c) should not match")
	}
}

func TestDocument_DisplayName(t *testing.T) {
	if (Document{Path: "/docs/report.pdf"}).DisplayName() != "report.pdf" {
		t.Error("DisplayName should fall back to the path base")
	}
	if (Document{Name: "Report", Path: "/x"}).DisplayName() != "Report" {
		t.Error("DisplayName should prefer the name")
	}
}

func TestHealth_String(t *testing.T) {
	if Health("").String() != "checking..." {
		t.Error("empty health should read as checking")
	}
	if !HealthHealthy.IsHealthy() || HealthUnreachable.IsHealthy() {
		t.Error("IsHealthy mismatch")
	}
}

func TestDocument_DecodesNaiveTimestamp(t *testing.T) {
	data := `[{"name":"a.pdf","path":"/docs/a.pdf","size":42,"lastModified":"2024-03-01T10:20:30.123456"},
	          {"name":"b.pdf","path":"/docs/b.pdf","lastModified":"2024-03-01T10:20:30Z"},
	          {"name":"c.pdf","path":"/docs/c.pdf"}]`

	var docs []Document
	if err := json.Unmarshal([]byte(data), &docs); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if len(docs) != 3 {
		t.Fatalf("len = %d, want 3", len(docs))
	}
	if docs[0].Size == nil || *docs[0].Size != 42 {
		t.Errorf("Size = %v, want 42", docs[0].Size)
	}
	if docs[0].LastModified == nil || docs[0].LastModified.Year() != 2024 {
		t.Errorf("LastModified = %v, want year 2024", docs[0].LastModified)
	}
	if docs[1].LastModified == nil || docs[1].LastModified.Hour() != 10 || docs[1].LastModified.Location().String() != "UTC" {
		t.Errorf("zoned LastModified = %v", docs[1].LastModified)
	}
	if docs[2].LastModified != nil || docs[2].Size != nil {
		t.Errorf("optional fields should stay nil: %+v", docs[2])
	}

	var bad Document
	if err := json.Unmarshal([]byte(`{"lastModified":"yesterday"}`), &bad); err == nil {
		t.Error("expected error for unrecognized timestamp")
	}
}
