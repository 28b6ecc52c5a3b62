// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Assistant"
	default:
		return string(r)
	}
}

// =============================================================================
// SOURCE TYPE
// =============================================================================

// Source is a snippet of document content the backend used as evidence for an answer.
type Source struct {
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata"`
}

// Page returns the "page" metadata entry if the backend supplied one.
func (s Source) Page() (int, bool) {
	v, ok := s.Metadata["page"]
	if !ok {
		return 0, false
	}
	switch p := v.(type) {
	case float64:
		return int(p), true
	case int:
		return p, true
	case int64:
		return int(p), true
	}
	return 0, false
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// ErrorReply is the assistant message appended when a chat request fails.
const ErrorReply = "Error contacting server."

// Message represents a single entry in the transcript.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Sources   []Source  `json:"sources,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewMessage creates a new message with a generated ID.
func NewMessage(role Role, content string) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// NewUserMessage creates a new user message.
func NewUserMessage(content string) Message {
	return NewMessage(RoleUser, content)
}

// NewAssistantMessage creates an assistant message carrying the answer and its sources.
// An empty sources slice is stored as nil so "no provenance" has a single representation.
func NewAssistantMessage(content string, sources []Source) Message {
	msg := NewMessage(RoleAssistant, content)
	if len(sources) > 0 {
		msg.Sources = append([]Source(nil), sources...)
	}
	return msg
}

// NewErrorMessage creates the fixed assistant reply used for failed exchanges.
func NewErrorMessage() Message {
	return NewMessage(RoleAssistant, ErrorReply)
}

// IsUser returns true if the message was written by the user.
func (m Message) IsUser() bool {
	return m.Role == RoleUser
}

// IsAssistant returns true if the message came from the backend.
func (m Message) IsAssistant() bool {
	return m.Role == RoleAssistant
}

// HasSources returns true if retrieval provenance is attached.
func (m Message) HasSources() bool {
	return len(m.Sources) > 0
}
