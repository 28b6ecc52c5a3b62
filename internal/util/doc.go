// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared across docchat.
//
// # Key Functions
//
// String Utilities:
//   - TruncateRunes: UTF-8 safe truncation with ellipsis
//   - TruncateWidth, StringWidth, PadRight: terminal column aware helpers
//
// Formatting:
//   - FormatBytes, FormatTime: document metadata display
//
// File Operations:
//   - AtomicWriteFile: crash-safe file writing with fsync
package util
