// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// ask.go - Single question command handler for docchat.
//
// Command: ask [question]
//
// Examples:
//   docchat ask "What is the main conclusion?"
//   docchat ask --doc report.pdf --sources "Which methods were used?"
//   docchat ask --mode mmr --top-k 8 "Summarize chapter 2"
//   echo "What is the budget?" | docchat ask --doc 2 --json
//
// The question is sent exactly as the TUI would send it: the document is
// selected first (which tells the backend to load it), then the chat request
// carries the session settings.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/glamour"
	"go.uber.org/zap"

	"github.com/jeranaias/docchat-tui/internal/model"
	"github.com/jeranaias/docchat-tui/internal/session"
	"github.com/jeranaias/docchat-tui/internal/util"
)

// =============================================================================
// MARKDOWN RENDERING
// =============================================================================

var (
	markdownOnce     sync.Once
	markdownRenderer *glamour.TermRenderer
)

// newMarkdownRenderer builds a glamour renderer for the configured style.
// "auto" picks dark or light from the terminal background.
func newMarkdownRenderer(style string, width int) (*glamour.TermRenderer, error) {
	styleOpt := glamour.WithAutoStyle()
	if style != "" && style != "auto" {
		styleOpt = glamour.WithStandardStyle(style)
	}
	return glamour.NewTermRenderer(styleOpt, glamour.WithWordWrap(width))
}

// renderMarkdown renders content, or returns it unchanged when rendering
// is unavailable or stdout is not a terminal.
func renderMarkdown(style, content string) string {
	if !IsStdoutTTY() {
		return content
	}
	markdownOnce.Do(func() {
		r, err := newMarkdownRenderer(style, renderWidth())
		if err == nil {
			markdownRenderer = r
		}
	})
	if markdownRenderer == nil {
		return content
	}
	rendered, err := markdownRenderer.Render(content)
	if err != nil {
		return content
	}
	return rendered
}

// formatSources renders numbered source excerpts for the terminal.
func formatSources(sources []model.Source) string {
	if len(sources) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(SectionStyle.Render(fmt.Sprintf("Sources (%d)", len(sources))))
	b.WriteString("\n")
	for i, src := range sources {
		label := fmt.Sprintf("[%d]", i+1)
		if page, ok := src.Page(); ok {
			label += fmt.Sprintf(" page %d", page)
		}
		b.WriteString(HighlightStyle.Render(label))
		b.WriteString("\n")
		excerpt := util.TruncateRunes(strings.Join(strings.Fields(src.Content), " "), 300)
		b.WriteString(SourceStyle.Render(excerpt))
		b.WriteString("\n")
	}
	return b.String()
}

// =============================================================================
// ASK
// =============================================================================

// askResult is the --json payload of ask.
type askResult struct {
	Document   model.Document `json:"document"`
	Question   string         `json:"question"`
	Answer     string         `json:"answer"`
	Sources    []model.Source `json:"sources,omitempty"`
	Settings   model.Settings `json:"settings"`
	DurationMS int64          `json:"duration_ms"`
}

// HandleAsk answers one question about a document.
func HandleAsk(args Args) error {
	query, err := readQuery(args, os.Stdin)
	if err != nil {
		return err
	}
	if strings.TrimSpace(query) == "" {
		return ErrMissingArgument("question", `docchat ask "What is this document about?"`)
	}

	env, err := NewEnv(args)
	if err != nil {
		return err
	}
	defer env.Close()

	ctrl, err := env.NewSession(args)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	return runAsk(ctx, ctrl, env.Logger, env.Config.UI.MarkdownStyle, args, query)
}

// runAsk drives the controller through initialize, select and send.
func runAsk(ctx context.Context, ctrl *session.Controller, log *zap.Logger, style string, args Args, query string) error {
	if res := ctrl.Initialize(ctx); !res.OK() {
		st := ctrl.Snapshot()
		if st.Health == model.HealthUnreachable && len(st.Documents) == 0 {
			return NewCommandError("ask", "connect", "backend unreachable", res.Err)
		}
	}

	st := ctrl.Snapshot()
	doc, err := resolveDocument(st.Documents, args.Document)
	if err != nil {
		return err
	}

	// A failed load notification does not undo the selection.
	if res := ctrl.SelectDocument(ctx, doc); !res.OK() && !args.Quiet && !args.JSON {
		fmt.Fprintf(os.Stderr, "%s backend did not confirm loading %s: %v\n",
			WarningStyle.Render("[WARN]"), doc.DisplayName(), res.Err)
	}

	if !args.Quiet && !args.JSON {
		fmt.Fprintln(os.Stderr, DimStyle.Render("Asking about "+doc.DisplayName()+"..."))
	}

	start := time.Now()
	res := ctrl.Send(ctx, query)
	elapsed := time.Since(start)
	log.Debug("ask finished",
		zap.String("document", doc.Path),
		zap.Stringer("outcome", res.Outcome),
		zap.Duration("elapsed", elapsed))

	switch res.Outcome {
	case session.SendIgnored:
		return ErrMissingArgument("question", `docchat ask "What is this document about?"`)
	case session.SendFailed:
		return NewCommandError("ask", "send", model.ErrorReply, res.Err)
	case session.SendDiscarded:
		return NewCommandError("ask", "send", "reply discarded after the session changed", nil)
	}

	if args.JSON {
		return NewJSONResponse("ask", askResult{
			Document:   doc,
			Question:   query,
			Answer:     res.Reply.Content,
			Sources:    res.Reply.Sources,
			Settings:   ctrl.Snapshot().Settings,
			DurationMS: elapsed.Milliseconds(),
		}).Print()
	}

	fmt.Print(renderMarkdown(style, res.Reply.Content))
	if !strings.HasSuffix(res.Reply.Content, "\n") && !IsStdoutTTY() {
		fmt.Println()
	}
	if ctrl.Snapshot().ShowSources {
		fmt.Print(formatSources(res.Reply.Sources))
	}
	if args.Verbose {
		fmt.Fprintln(os.Stderr, DimStyle.Render(fmt.Sprintf("%s | %s", formatDurationShort(elapsed), ctrl.Snapshot().Settings)))
	}
	return nil
}
