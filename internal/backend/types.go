// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import (
	"io"

	"github.com/jeranaias/docchat-tui/internal/model"
)

// =============================================================================
// REQUEST TYPES
// =============================================================================

// LoadRequest is the body for POST /load-pdf.
type LoadRequest struct {
	PDFPath string `json:"pdf_path"`
}

// ChatRequest is the body for POST /chat.
type ChatRequest struct {
	Message  string         `json:"message"`
	Settings model.Settings `json:"settings"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// HealthResponse is the response from GET /health.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp,omitempty"`
	Version   string `json:"version,omitempty"`
}

// UploadResponse is the response from POST /upload-pdf.
type UploadResponse struct {
	Success bool   `json:"success"`
	Path    string `json:"path,omitempty"`
	Name    string `json:"name,omitempty"`
	Message string `json:"message,omitempty"`
}

// Document returns the uploaded document reference.
func (r UploadResponse) Document() model.Document {
	return model.Document{Name: r.Name, Path: r.Path}
}

// ChatResponse is the response from POST /chat.
type ChatResponse struct {
	Answer  string         `json:"answer"`
	Sources []model.Source `json:"sources"`
}

// Content is a streamed document body from GET /pdf-content.
// The caller must close Body.
type Content struct {
	Body          io.ReadCloser
	ContentType   string
	ContentLength int64
}

// errorBody covers both error shapes the backend emits ({"error"} and {"detail"}).
type errorBody struct {
	Error  string `json:"error"`
	Detail string `json:"detail"`
}

func (e errorBody) message() string {
	if e.Error != "" {
		return e.Error
	}
	return e.Detail
}
