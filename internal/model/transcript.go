// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// =============================================================================
// TRANSCRIPT TYPE
// =============================================================================

// Transcript is the ordered, append-only sequence of messages for the active document.
// Messages are never edited or reordered; the only other mutation is Clear.
//
// Transcript is not safe for concurrent use; the session controller serializes access.
type Transcript struct {
	messages []Message
}

// NewTranscript creates an empty transcript.
func NewTranscript() *Transcript {
	return &Transcript{}
}

// Append adds a message to the end of the transcript.
func (t *Transcript) Append(msg Message) {
	t.messages = append(t.messages, msg)
}

// Clear removes every message.
func (t *Transcript) Clear() {
	t.messages = nil
}

// Len returns the number of messages.
func (t *Transcript) Len() int {
	return len(t.messages)
}

// IsEmpty returns true if there are no messages.
func (t *Transcript) IsEmpty() bool {
	return len(t.messages) == 0
}

// Last returns the most recent message, or false if the transcript is empty.
func (t *Transcript) Last() (Message, bool) {
	if len(t.messages) == 0 {
		return Message{}, false
	}
	return t.messages[len(t.messages)-1], true
}

// Messages returns a copy of the messages so callers cannot mutate history.
func (t *Transcript) Messages() []Message {
	if len(t.messages) == 0 {
		return nil
	}
	out := make([]Message, len(t.messages))
	copy(out, t.messages)
	return out
}

// CountByRole returns how many messages were sent by the given role.
func (t *Transcript) CountByRole(role Role) int {
	n := 0
	for _, m := range t.messages {
		if m.Role == role {
			n++
		}
	}
	return n
}
