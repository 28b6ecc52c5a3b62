// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    zapcore.Level
		wantErr bool
	}{
		{"", zap.InfoLevel, false},
		{"debug", zap.DebugLevel, false},
		{"WARN", zap.WarnLevel, false},
		{"error", zap.ErrorLevel, false},
		{"loud", zap.InfoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestNew_WritesJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "docchat.log")

	logger, err := New(Options{Path: path, Level: "debug"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	logger.Named("session").Info("document selected", zap.String("path", "/a"))
	logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}

	var entry map[string]any
	line := bytes.SplitN(data, []byte("\n"), 2)[0]
	if err := json.Unmarshal(line, &entry); err != nil {
		t.Fatalf("log line is not JSON: %q", line)
	}
	if entry["message"] != "document selected" || entry["level"] != "INFO" || entry["path"] != "/a" {
		t.Errorf("unexpected entry: %v", entry)
	}
	if entry["logger"] != "session" {
		t.Errorf("logger = %v, want session", entry["logger"])
	}
}

func TestNew_RespectsLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docchat.log")

	logger, err := New(Options{Path: path, Level: "warn"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	logger.Info("hidden")
	logger.Sync()

	data, _ := os.ReadFile(path)
	if len(bytes.TrimSpace(data)) != 0 {
		t.Errorf("info entry written at warn level: %q", data)
	}
}

func TestNew_InvalidLevel(t *testing.T) {
	if _, err := New(Options{Path: filepath.Join(t.TempDir(), "x.log"), Level: "loud"}); err == nil {
		t.Error("expected error for invalid level")
	}
}
