// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session provides the chat session controller.
//
// The Controller holds the active document, the transcript, the loading flag,
// backend health, theme and retrieval settings, and issues backend requests in
// response to user actions. Presentation layers observe it through Subscribe
// and render State snapshots; they carry no business logic of their own.
//
// # Key Types
//
//   - Controller: the session state machine
//   - State: immutable snapshot handed to observers
//   - Result / SendResult: non-fatal outcomes callers may ignore
//
// # Usage
//
//	ctrl := session.NewController(client, session.Config{Preferences: store})
//	unsubscribe := ctrl.Subscribe(func(s session.State) { render(s) })
//	defer unsubscribe()
//
//	ctrl.Initialize(ctx)
//	ctrl.SelectDocument(ctx, doc)
//	res := ctrl.Send(ctx, "What is this about?")
//
// # Exchanges
//
// A chat exchange moves idle → awaiting-response → idle and can only start
// from idle. Each exchange is tagged with the epoch current at send time; the
// epoch advances on document switch, upload adoption and transcript clear, and
// a reply carrying an older epoch is dropped.
package session
