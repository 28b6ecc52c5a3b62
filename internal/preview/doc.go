// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package preview gathers what the document preview pane shows: backend
// metadata for the active document (cached for a few minutes), the content
// URL, and a probe of the content endpoint. A terminal cannot embed a PDF
// viewer, so Open hands the content URL to the system's default application.
package preview
