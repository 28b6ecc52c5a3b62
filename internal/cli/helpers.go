// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// helpers.go - Small helpers shared by docchat commands.

package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jeranaias/docchat-tui/internal/model"
)

// maxStdinQuery bounds a question read from a pipe.
const maxStdinQuery = 64 * 1024

// formatDurationShort formats a short duration string.
func formatDurationShort(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%dm%ds", m, s)
}

// readQuery returns the question from args, or from stdin when it is piped.
func readQuery(args Args, stdin io.Reader) (string, error) {
	if strings.TrimSpace(args.Query) != "" {
		return args.Query, nil
	}
	if stdin == nil || IsTTY() {
		return "", nil
	}
	data, err := io.ReadAll(io.LimitReader(stdin, maxStdinQuery))
	if err != nil {
		return "", fmt.Errorf("read question from stdin: %w", err)
	}
	return string(data), nil
}

// resolveDocument picks a document by path, name, base name or 1-based index.
// An empty ref is accepted only when exactly one document exists.
func resolveDocument(docs []model.Document, ref string) (model.Document, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		switch len(docs) {
		case 0:
			return model.Document{}, &NotFoundError{Resource: "document", ID: "(backend lists none)"}
		case 1:
			return docs[0], nil
		default:
			return model.Document{}, &ValidationError{
				Field:   "doc",
				Reason:  fmt.Sprintf("%d documents available, choose one", len(docs)),
				Example: "docchat ask --doc report.pdf \"What is the conclusion?\"",
			}
		}
	}

	if d, ok := model.FindDocument(docs, ref); ok {
		return d, nil
	}
	for _, d := range docs {
		if strings.EqualFold(d.DisplayName(), ref) {
			return d, nil
		}
	}
	for _, d := range docs {
		if strings.EqualFold(filepath.Base(d.Path), ref) {
			return d, nil
		}
	}
	if n, err := strconv.Atoi(ref); err == nil && n >= 1 && n <= len(docs) {
		return docs[n-1], nil
	}
	return model.Document{}, &NotFoundError{Resource: "document", ID: ref}
}

// ValidateOutputPath cleans path and requires it to sit under home, cwd or temp.
func ValidateOutputPath(path string) (string, error) {
	if strings.Contains(path, "..") {
		return "", errors.New("path traversal not allowed")
	}

	abs, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("invalid path: %w", err)
	}

	home, _ := os.UserHomeDir()
	cwd, _ := os.Getwd()
	for _, dir := range []string{home, cwd, os.TempDir()} {
		if dir != "" && isPathWithinDir(abs, dir) {
			return abs, nil
		}
	}
	return "", fmt.Errorf("path must be within home, cwd, or temp directory")
}

// isPathWithinDir checks containment on path boundaries, so /home/userX is not under /home/user.
func isPathWithinDir(path, dir string) bool {
	cleanPath := filepath.Clean(path)
	cleanDir := filepath.Clean(dir)
	if cleanPath == cleanDir {
		return true
	}
	return strings.HasPrefix(cleanPath, cleanDir+string(filepath.Separator))
}
