// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package backend provides the HTTP client for the document question-answering service.
//
// The service owns retrieval, embeddings, the language model and document storage.
// This package only speaks its HTTP surface:
//
//	GET  /health                     -> {"status": "..."}
//	GET  /pdfs                       -> [{"name": "...", "path": "..."}]
//	POST /load-pdf     {"pdf_path"}  -> ignored
//	POST /upload-pdf   multipart file -> {"success": bool, "path": "...", "name": "..."}
//	POST /chat   {"message","settings"} -> {"answer": "...", "sources": [...]}
//	GET  /pdf-content?path=<escaped> -> document bytes
//	GET  /pdf-info/{name}            -> document metadata
//
// # Usage
//
//	client := backend.NewClientWithConfig(&backend.ClientConfig{
//	    BaseURL: "http://localhost:8000/api",
//	})
//	docs, err := client.ListDocuments(ctx)
//	resp, err := client.Chat(ctx, "What is this about?", model.DefaultSettings())
//
// No request is retried. Callers decide whether a failure is fatal.
package backend
