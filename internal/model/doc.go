// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for documents, transcripts and chat settings.
//
// This package defines the domain types shared by the backend client, the session
// controller and the presentation layer.
//
// # Key Types
//
//   - Document: A backend-enumerated document (name + path)
//   - Message: A single transcript entry with role, content and optional sources
//   - Source: Retrieval provenance attached to assistant answers
//   - Settings: Retrieval/generation parameters forwarded with every chat request
//   - Transcript: Append-only ordered message sequence
//
// # Usage
//
//	t := model.NewTranscript()
//	t.Append(model.NewUserMessage("What is this about?"))
//	settings := model.DefaultSettings()
//	settings.TopK = 8
package model
