// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"bytes"
	"fmt"
	"path/filepath"
	"time"
)

// Document is a document enumerated by the backend. It is immutable from the client's
// perspective; selecting one makes it the active document.
type Document struct {
	Name         string     `json:"name"`
	Path         string     `json:"path"`
	Size         *int64     `json:"size,omitempty"`
	LastModified *Timestamp `json:"lastModified,omitempty"`
}

// DisplayName returns the name, falling back to the base of the path.
func (d Document) DisplayName() string {
	if d.Name != "" {
		return d.Name
	}
	if d.Path == "" {
		return ""
	}
	return filepath.Base(d.Path)
}

// IsZero returns true when no document is referenced.
func (d Document) IsZero() bool {
	return d.Path == ""
}

// FindDocument returns the document with the given path.
func FindDocument(docs []Document, path string) (Document, bool) {
	for _, d := range docs {
		if d.Path == path {
			return d, true
		}
	}
	return Document{}, false
}

// DocumentInfo is the detailed description returned by the backend's info endpoint.
type DocumentInfo struct {
	Name         string    `json:"name"`
	Path         string    `json:"path"`
	Size         int64     `json:"size"`
	LastModified Timestamp `json:"lastModified"`
	PageCount    *int      `json:"pageCount,omitempty"`
	Title        string    `json:"title,omitempty"`
	Author       string    `json:"author,omitempty"`
	Subject      string    `json:"subject,omitempty"`
}

// timestampLayouts are tried in order. The backend may omit the zone.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// Timestamp is a time that decodes both zoned and naive ISO-8601 strings.
// Naive values are read as local time.
type Timestamp struct {
	time.Time
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("timestamp: expected string, got %s", data)
	}
	raw := string(data[1 : len(data)-1])
	for _, layout := range timestampLayouts {
		parsed, err := time.ParseInLocation(layout, raw, time.Local)
		if err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("timestamp: unrecognized format %q", raw)
}

// MarshalJSON implements json.Marshaler.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.Time.Format(time.RFC3339Nano) + `"`), nil
}
