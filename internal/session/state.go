// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"fmt"

	"github.com/jeranaias/docchat-tui/internal/model"
)

// =============================================================================
// STATE SNAPSHOT
// =============================================================================

// State is a point-in-time copy of the session, safe to read without locks.
type State struct {
	SessionID string

	// Version increases with every transition. Observers that receive
	// snapshots out of order keep the highest.
	Version uint64

	// Epoch advances whenever the conversation context is reset
	// (document switch, upload adoption, transcript clear).
	Epoch uint64

	Documents   []model.Document
	Active      model.Document
	Messages    []model.Message
	Loading     bool
	Health      model.Health
	Theme       model.Theme
	ShowSources bool
	Settings    model.Settings
}

// HasActive reports whether a document is selected.
func (s State) HasActive() bool {
	return !s.Active.IsZero()
}

// CanSend reports whether the composer should accept input.
func (s State) CanSend() bool {
	return s.HasActive() && !s.Loading
}

// =============================================================================
// RESULTS
// =============================================================================

// Op names a controller operation in a Result.
type Op string

const (
	OpInitialize Op = "initialize"
	OpSelect     Op = "select"
	OpUpload     Op = "upload"
	OpRefresh    Op = "refresh"
	OpSend       Op = "send"
	OpTheme      Op = "theme"
)

// Result reports the outcome of an operation whose failure is non-fatal.
// Callers may ignore it; the session state is already consistent either way.
type Result struct {
	Op  Op
	Err error
}

// OK returns true when the operation succeeded.
func (r Result) OK() bool {
	return r.Err == nil
}

func (r Result) String() string {
	if r.Err == nil {
		return string(r.Op) + ": ok"
	}
	return fmt.Sprintf("%s: %v", r.Op, r.Err)
}

// SendOutcome describes what happened to a Send call.
type SendOutcome int

const (
	// SendIgnored means the guard rejected the input; nothing was appended.
	SendIgnored SendOutcome = iota
	// SendAnswered means the backend's answer was appended.
	SendAnswered
	// SendFailed means the fixed error reply was appended.
	SendFailed
	// SendDiscarded means the reply arrived after the context was reset and was dropped.
	SendDiscarded
)

func (o SendOutcome) String() string {
	switch o {
	case SendIgnored:
		return "ignored"
	case SendAnswered:
		return "answered"
	case SendFailed:
		return "failed"
	case SendDiscarded:
		return "discarded"
	default:
		return "unknown"
	}
}

// SendResult is returned by Send.
type SendResult struct {
	Result
	Outcome SendOutcome
	// Reply is the appended assistant message for SendAnswered and SendFailed.
	Reply model.Message
}
