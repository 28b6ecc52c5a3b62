// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// docs.go - Backend inspection commands: docs, health, upload, info.
//
// Examples:
//   docchat docs
//   docchat docs --filter annual --json
//   docchat health
//   docchat upload ~/papers/report.pdf
//   docchat info report.pdf
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/jeranaias/docchat-tui/internal/backend"
	"github.com/jeranaias/docchat-tui/internal/model"
	"github.com/jeranaias/docchat-tui/internal/util"
)

// withEnv runs fn with a fresh environment and an interrupt-aware context.
func withEnv(args Args, fn func(ctx context.Context, env *Env) error) error {
	env, err := NewEnv(args)
	if err != nil {
		return err
	}
	defer env.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return fn(ctx, env)
}

// =============================================================================
// DOCS
// =============================================================================

// HandleDocs lists the documents the backend knows about.
func HandleDocs(args Args) error {
	p := NewArgParser(args.Raw)
	filter := strings.ToLower(p.Flag("filter"))

	return withEnv(args, func(ctx context.Context, env *Env) error {
		return OutputJSON(args.JSON, "docs", func() (interface{}, error) {
			docs, err := env.Client.ListDocuments(ctx)
			if err != nil {
				return nil, NewCommandError("docs", "list", "could not fetch documents", err)
			}
			docs = filterDocuments(docs, filter)
			if !args.JSON {
				printDocumentTable(docs)
			}
			return docs, nil
		})
	})
}

// filterDocuments keeps documents whose name or path contains filter.
func filterDocuments(docs []model.Document, filter string) []model.Document {
	if filter == "" {
		return docs
	}
	out := make([]model.Document, 0, len(docs))
	for _, d := range docs {
		if strings.Contains(strings.ToLower(d.DisplayName()), filter) ||
			strings.Contains(strings.ToLower(d.Path), filter) {
			out = append(out, d)
		}
	}
	return out
}

func printDocumentTable(docs []model.Document) {
	if len(docs) == 0 {
		fmt.Println(DimStyle.Render("No documents."))
		return
	}
	fmt.Println(TitleStyle.Render(fmt.Sprintf("Documents (%d)", len(docs))))
	for i, d := range docs {
		size, modified := "-", "-"
		if d.Size != nil {
			size = util.FormatBytes(*d.Size)
		}
		if d.LastModified != nil {
			modified = util.FormatTime(d.LastModified.Time)
		}
		name := util.PadRight(util.TruncateWidth(d.DisplayName(), 40), 40)
		fmt.Printf("%3d. %s %10s  %s\n", i+1, name, size, DimStyle.Render(modified))
	}
}

// =============================================================================
// HEALTH
// =============================================================================

type healthResult struct {
	APIBase string `json:"api_base"`
	Status  string `json:"status"`
	Healthy bool   `json:"healthy"`
}

// HandleHealth checks the backend. An unhealthy backend is an error.
func HandleHealth(args Args) error {
	return withEnv(args, func(ctx context.Context, env *Env) error {
		status, err := env.Client.Health(ctx)
		h := model.Health(status)
		if err != nil || status == "" {
			h = model.HealthUnreachable
		}
		res := healthResult{APIBase: env.Client.BaseURL(), Status: h.String(), Healthy: h.IsHealthy()}

		if args.JSON {
			if printErr := NewJSONResponse("health", res).Print(); printErr != nil {
				return printErr
			}
		} else {
			fmt.Printf("%s %s\n", RenderLabel("Backend"), ValueStyle.Render(res.APIBase))
			fmt.Printf("%s %s\n", RenderLabel("Status"), RenderHealth(h))
		}

		if err != nil {
			return NewCommandError("health", "check", "backend unreachable", err)
		}
		if !h.IsHealthy() {
			return NewCommandError("health", "check", "backend reports "+h.String(), backend.ErrUnreachable)
		}
		return nil
	})
}

// =============================================================================
// UPLOAD
// =============================================================================

// HandleUpload sends a local PDF to the backend.
func HandleUpload(args Args) error {
	if args.File == "" {
		return ErrMissingArgument("file", "docchat upload ~/papers/report.pdf")
	}

	return withEnv(args, func(ctx context.Context, env *Env) error {
		return OutputJSON(args.JSON, "upload", func() (interface{}, error) {
			f, err := os.Open(args.File)
			if err != nil {
				return nil, fmt.Errorf("open %s: %w", args.File, err)
			}
			defer f.Close()

			resp, err := env.Client.UploadDocument(ctx, filepath.Base(args.File), f)
			if err != nil {
				return nil, NewCommandError("upload", "send", "upload failed", err)
			}
			if !resp.Success || resp.Path == "" {
				reason := "backend rejected the file"
				if resp.Message != "" {
					reason += ": " + resp.Message
				}
				return nil, NewCommandError("upload", "send", reason, nil)
			}

			doc := resp.Document()
			if !args.JSON {
				fmt.Printf("%s %s\n", SuccessStyle.Render("Uploaded"), doc.DisplayName())
				fmt.Printf("%s %s\n", RenderLabel("Path"), DimStyle.Render(doc.Path))
			}
			return doc, nil
		})
	})
}

// =============================================================================
// INFO
// =============================================================================

// HandleInfo prints the backend's details for one document.
func HandleInfo(args Args) error {
	if strings.TrimSpace(args.Query) == "" {
		return ErrMissingArgument("name", "docchat info report.pdf")
	}

	return withEnv(args, func(ctx context.Context, env *Env) error {
		return OutputJSON(args.JSON, "info", func() (interface{}, error) {
			name := args.Query
			if docs, err := env.Client.ListDocuments(ctx); err == nil {
				if d, resolveErr := resolveDocument(docs, name); resolveErr == nil {
					name = d.DisplayName()
				}
			}

			info, err := env.Client.DocumentInfo(ctx, name)
			if err != nil {
				if backend.IsNotFound(err) {
					return nil, &NotFoundError{Resource: "document", ID: name}
				}
				return nil, NewCommandError("info", "fetch", "could not fetch document info", err)
			}
			if !args.JSON {
				printDocumentInfo(info, env.Client.ContentURL(info.Path))
			}
			return info, nil
		})
	})
}

func printDocumentInfo(info *model.DocumentInfo, contentURL string) {
	fmt.Println(TitleStyle.Render(info.Name))
	rows := [][2]string{
		{"Path", info.Path},
		{"Size", util.FormatBytes(info.Size)},
		{"Modified", util.FormatTime(info.LastModified.Time)},
	}
	if info.PageCount != nil {
		rows = append(rows, [2]string{"Pages", fmt.Sprintf("%d", *info.PageCount)})
	}
	for _, r := range [][2]string{{"Title", info.Title}, {"Author", info.Author}, {"Subject", info.Subject}} {
		if r[1] != "" {
			rows = append(rows, r)
		}
	}
	rows = append(rows, [2]string{"Content URL", contentURL})

	for _, r := range rows {
		fmt.Printf("%s %s\n", RenderLabel(r[0]), ValueStyle.Render(r[1]))
	}
}
