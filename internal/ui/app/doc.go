// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package app is the Bubble Tea presentation layer of docchat.
//
// The model renders session.State snapshots and turns key presses into
// controller calls. It holds no session data of its own beyond the last
// snapshot; every change goes through the controller.
//
// Blocking controller operations run inside tea.Cmds. Every transition is
// also pushed to the program by the listener installed with Attach, so the
// spinner, the user's own message and health updates appear before the
// command that caused them returns. Snapshots carry a version and older ones
// are dropped.
//
// # Layout
//
//	+--------------------------------------------------------------+
//	| docchat  [report.pdf]               [OK healthy] [dark]       |
//	+-------------+------------------------------+-----------------+
//	| Documents   | transcript viewport          | Preview         |
//	| Settings    |                              | (wide layout)   |
//	|             +------------------------------+                 |
//	|             | composer                     |                 |
//	+-------------+------------------------------+-----------------+
//	| key help                                                      |
package app
