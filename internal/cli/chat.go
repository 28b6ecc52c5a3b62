// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Interactive line-mode chat for docchat.
//
// Command: chat
//
// Examples:
//   docchat chat
//   docchat chat --doc report.pdf --sources
//
// Slash commands:
//   /docs, /ls            List documents
//   /use NAME|N           Select a document (clears the conversation)
//   /upload FILE          Upload a PDF and select it
//   /refresh              Re-fetch the document list
//   /clear, /c            Clear the conversation
//   /settings [KEY VAL]   Show or change retrieval settings
//   /sources [on|off]     Toggle source display
//   /theme                Toggle the stored dark/light preference
//   /health               Check the backend
//   /history              Show the conversation
//   /export [md|json]     Write the conversation to a file (--dir DIR)
//   /help, /?             Show commands
//   /quit, /exit, /q      Leave
//
// Ctrl+C while waiting for an answer cancels the request; Ctrl+C at the
// prompt or Ctrl+D exits.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/peterh/liner"
	"go.uber.org/zap"

	"github.com/jeranaias/docchat-tui/internal/config"
	"github.com/jeranaias/docchat-tui/internal/export"
	"github.com/jeranaias/docchat-tui/internal/model"
	"github.com/jeranaias/docchat-tui/internal/session"
	"github.com/jeranaias/docchat-tui/internal/util"
)

// =============================================================================
// INPUT HISTORY
// =============================================================================

// ChatCLI provides input history and line editing for interactive chat.
type ChatCLI struct {
	line        *liner.State
	historyFile string
}

// NewChatCLI creates a line editor with history loaded from the config dir.
func NewChatCLI() *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	configDir, err := config.ConfigDir()
	if err != nil {
		configDir = os.TempDir()
	}

	c := &ChatCLI{
		line:        line,
		historyFile: filepath.Join(configDir, "chat_history"),
	}
	c.line.SetCompleter(completeSlash)
	c.LoadHistory()
	return c
}

// LoadHistory loads command history from file.
func (c *ChatCLI) LoadHistory() {
	if f, err := os.Open(c.historyFile); err == nil {
		c.line.ReadHistory(f)
		f.Close()
	}
}

// ReadInput reads a line, adding non-empty input to history.
func (c *ChatCLI) ReadInput(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}
	return input, nil
}

// SaveHistory persists history with owner-only permissions.
func (c *ChatCLI) SaveHistory() {
	if err := config.EnsureConfigDir(); err != nil {
		return
	}
	f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()
	c.line.WriteHistory(f)
}

// Close saves history and restores the terminal.
func (c *ChatCLI) Close() {
	c.SaveHistory()
	c.line.Close()
}

// slashCommands is used for tab completion.
var slashCommands = []string{
	"/docs", "/use", "/upload", "/refresh", "/clear", "/settings", "/sources",
	"/theme", "/health", "/history", "/export", "/help", "/quit",
}

func completeSlash(line string) []string {
	if !strings.HasPrefix(line, "/") || strings.Contains(line, " ") {
		return nil
	}
	var out []string
	for _, c := range slashCommands {
		if strings.HasPrefix(c, line) {
			out = append(out, c)
		}
	}
	return out
}

// =============================================================================
// CHAT SESSION
// =============================================================================

// ChatSession binds the REPL to a session controller.
type ChatSession struct {
	Ctrl      *session.Controller
	Style     string // glamour style
	ExportDir string
	Quiet     bool
	Logger    *zap.Logger

	mu     sync.Mutex
	cancel context.CancelFunc

	started time.Time
	asked   int
}

// begin returns a context cancelled by Ctrl+C until end is called.
func (s *ChatSession) begin() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()
	return ctx
}

func (s *ChatSession) end() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.mu.Unlock()
}

// interrupt cancels the operation in flight. It reports whether one was running.
func (s *ChatSession) interrupt() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel == nil {
		return false
	}
	s.cancel()
	s.cancel = nil
	return true
}

// =============================================================================
// CHAT HANDLER
// =============================================================================

// HandleChatCommand runs the interactive chat loop.
func HandleChatCommand(args Args) error {
	if err := RequiresTTY("chat"); err != nil {
		return err
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

	cwd, _ := os.Getwd()
	s := &ChatSession{
		Ctrl:      ctrl,
		Style:     env.Config.UI.MarkdownStyle,
		ExportDir: cwd,
		Quiet:     args.Quiet,
		Logger:    env.Logger.Named("chat"),
		started:   time.Now(),
	}

	ctx := s.begin()
	ctrl.Initialize(ctx)
	s.end()

	st := ctrl.Snapshot()
	if args.Document != "" || len(st.Documents) == 1 {
		if err := s.use(args.Document); err != nil {
			printErr(err)
		}
	}

	if !s.Quiet {
		printWelcome(s)
	}

	input := NewChatCLI()
	defer input.Close()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		for range sigChan {
			if s.interrupt() {
				fmt.Fprintln(os.Stderr, "\n"+WarningStyle.Render("[Cancelled]"))
			}
		}
	}()

	for {
		line, err := input.ReadInput(PromptStyle.Render(promptText(s.Ctrl.Snapshot())))
		if err != nil {
			// Ctrl+C at the prompt (liner.ErrPromptAborted) or EOF.
			fmt.Println()
			printExitSummary(s)
			return nil
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			keepGoing, err := handleSlashCommand(line, s)
			if err != nil {
				printErr(err)
			}
			if !keepGoing {
				printExitSummary(s)
				return nil
			}
			continue
		}

		if strings.EqualFold(line, "exit") || strings.EqualFold(line, "quit") {
			printExitSummary(s)
			return nil
		}

		if err := processMessage(s, line); err != nil {
			printErr(err)
		}
	}
}

// promptText shows the active document in the prompt.
func promptText(st session.State) string {
	if !st.HasActive() {
		return "docchat> "
	}
	return util.TruncateWidth(st.Active.DisplayName(), 24) + "> "
}

func printErr(err error) {
	fmt.Fprintf(os.Stderr, "%s %v\n", ErrorStyle.Render("[Error]"), err)
}

// =============================================================================
// MESSAGE PROCESSING
// =============================================================================

// processMessage sends one question and prints the reply.
func processMessage(s *ChatSession, text string) error {
	if !s.Ctrl.Snapshot().HasActive() {
		return &ValidationError{Field: "document", Reason: "no document selected", Example: "/docs then /use 1"}
	}

	ctx := s.begin()
	defer s.end()

	if !s.Quiet {
		fmt.Fprintln(os.Stderr, DimStyle.Render("Thinking..."))
	}

	start := time.Now()
	res := s.Ctrl.Send(ctx, text)
	elapsed := time.Since(start)

	switch res.Outcome {
	case session.SendIgnored:
		return nil
	case session.SendDiscarded:
		fmt.Fprintln(os.Stderr, WarningStyle.Render("[Discarded] the conversation changed before the answer arrived"))
		return nil
	case session.SendFailed:
		s.Logger.Warn("chat request failed", zap.Error(res.Err))
		fmt.Println(ErrorStyle.Render(res.Reply.Content))
		return nil
	}

	s.asked++
	fmt.Print(renderMarkdown(s.Style, res.Reply.Content))
	if s.Ctrl.Snapshot().ShowSources {
		fmt.Print(formatSources(res.Reply.Sources))
	}
	if !s.Quiet {
		fmt.Fprintln(os.Stderr, DimStyle.Render(formatDurationShort(elapsed)))
	}
	return nil
}

// =============================================================================
// SLASH COMMANDS
// =============================================================================

// handleSlashCommand runs a slash command. It returns false to end the loop.
func handleSlashCommand(line string, s *ChatSession) (bool, error) {
	p := NewArgParser(strings.Fields(line))
	cmd := strings.ToLower(p.Subcommand())

	switch cmd {
	case "/quit", "/exit", "/q":
		return false, nil

	case "/help", "/h", "/?":
		printHelp()

	case "/docs", "/ls":
		printDocuments(s.Ctrl.Snapshot())

	case "/use", "/select":
		return true, s.use(JoinPositionalArgs(p, 1))

	case "/upload":
		path := JoinPositionalArgs(p, 1)
		if path == "" {
			return true, ErrMissingArgument("file", "/upload ~/papers/report.pdf")
		}
		ctx := s.begin()
		defer s.end()
		if res := s.Ctrl.UploadFile(ctx, path); !res.OK() {
			return true, res.Err
		}
		fmt.Println(SuccessStyle.Render("Uploaded") + " " + s.Ctrl.Snapshot().Active.DisplayName())

	case "/refresh":
		ctx := s.begin()
		defer s.end()
		res := s.Ctrl.RefreshDocuments(ctx, "")
		printDocuments(s.Ctrl.Snapshot())
		return true, res.Err

	case "/clear", "/c":
		s.Ctrl.ClearTranscript()
		fmt.Println(DimStyle.Render("Conversation cleared."))

	case "/settings", "/set":
		return true, settingsCommand(s, p)

	case "/sources":
		show := !s.Ctrl.Snapshot().ShowSources
		if v := p.Positional(1); v != "" {
			b, err := ParseBoolString(v)
			if err != nil {
				return true, err
			}
			show = b
		}
		s.Ctrl.SetShowSources(show)
		fmt.Printf("Sources %s\n", map[bool]string{true: "shown", false: "hidden"}[show])

	case "/theme":
		ctx := s.begin()
		defer s.end()
		res := s.Ctrl.ToggleTheme(ctx)
		fmt.Printf("Theme set to %s\n", s.Ctrl.Snapshot().Theme)
		return true, res.Err

	case "/health":
		ctx := s.begin()
		defer s.end()
		s.Ctrl.Initialize(ctx)
		fmt.Println(RenderHealth(s.Ctrl.Snapshot().Health))

	case "/history":
		printHistory(s.Ctrl.Snapshot())

	case "/export":
		return true, exportCommand(s, p)

	default:
		return true, fmt.Errorf("unknown command %s (try /help)", cmd)
	}
	return true, nil
}

// use selects a document by reference, refreshing the list when it is empty.
func (s *ChatSession) use(ref string) error {
	ctx := s.begin()
	defer s.end()

	docs := s.Ctrl.Snapshot().Documents
	if len(docs) == 0 {
		s.Ctrl.RefreshDocuments(ctx, "")
		docs = s.Ctrl.Snapshot().Documents
	}

	doc, err := resolveDocument(docs, ref)
	if err != nil {
		return err
	}
	res := s.Ctrl.SelectDocument(ctx, doc)
	fmt.Println(SuccessStyle.Render("Using") + " " + doc.DisplayName())
	if !res.OK() {
		fmt.Fprintf(os.Stderr, "%s backend did not confirm loading: %v\n", WarningStyle.Render("[WARN]"), res.Err)
	}
	return nil
}

// settingsCommand shows settings, or sets one: /settings KEY VALUE.
func settingsCommand(s *ChatSession, p *ArgParser) error {
	if p.PositionalCount() < 3 {
		if p.PositionalCount() == 2 {
			return ErrMissingArgument("value", "/settings top_k 6")
		}
		fmt.Print(formatSettings(s.Ctrl.Snapshot().Settings))
		return nil
	}

	var applyErr error
	s.Ctrl.UpdateSettings(func(st *model.Settings) {
		next := *st
		if applyErr = ApplySetting(&next, p.Positional(1), JoinPositionalArgs(p, 2)); applyErr == nil {
			*st = next
		}
	})
	if applyErr != nil {
		return applyErr
	}
	fmt.Print(formatSettings(s.Ctrl.Snapshot().Settings))
	return nil
}

// exportCommand writes the conversation: /export [md|json] [--dir DIR].
func exportCommand(s *ChatSession, p *ArgParser) error {
	format := p.Positional(1)
	if format == "" {
		format = "markdown"
	}

	dir := p.FlagOrDefault("dir", s.ExportDir)
	dir, err := ValidateOutputPath(dir)
	if err != nil {
		return err
	}

	st := s.Ctrl.Snapshot()
	conv := export.NewConversation(st.SessionID, st.Active, st.Settings, st.Messages)
	opts := export.DefaultOptions()
	opts.OutputDir = dir
	opts.OpenAfterExport = p.BoolFlag("open")

	path, err := export.Export(conv, format, opts)
	if err != nil {
		if errors.Is(err, export.ErrEmpty) {
			return &ValidationError{Field: "conversation", Reason: "nothing to export yet"}
		}
		return err
	}
	fmt.Println(SuccessStyle.Render("Exported") + " " + path)
	return nil
}

// =============================================================================
// OUTPUT
// =============================================================================

func printWelcome(s *ChatSession) {
	st := s.Ctrl.Snapshot()
	fmt.Println(TitleStyle.Render("docchat " + Version))
	fmt.Printf("%s %s\n", RenderLabel("Backend"), RenderHealth(st.Health))
	if st.HasActive() {
		fmt.Printf("%s %s\n", RenderLabel("Document"), ValueStyle.Render(st.Active.DisplayName()))
	} else {
		fmt.Printf("%s %s\n", RenderLabel("Documents"), ValueStyle.Render(fmt.Sprintf("%d available, pick one with /use", len(st.Documents))))
	}
	fmt.Println(DimStyle.Render("Type a question, /help for commands, Ctrl+D to exit."))
	fmt.Println()
}

func printHelp() {
	rows := [][2]string{
		{"/docs", "List documents"},
		{"/use NAME|N", "Select a document (clears the conversation)"},
		{"/upload FILE", "Upload a PDF and select it"},
		{"/refresh", "Re-fetch the document list"},
		{"/clear", "Clear the conversation"},
		{"/settings [KEY VAL]", "Show or change retrieval settings"},
		{"/sources [on|off]", "Toggle source display"},
		{"/theme", "Toggle the dark/light preference"},
		{"/health", "Check the backend"},
		{"/history", "Show the conversation"},
		{"/export [md|json]", "Save the conversation (--dir DIR, --open)"},
		{"/quit", "Leave"},
	}
	fmt.Println(SectionStyle.Render("Commands"))
	for _, r := range rows {
		fmt.Printf("  %s %s\n", RenderLabel(r[0], 22), r[1])
	}
}

func printDocuments(st session.State) {
	if len(st.Documents) == 0 {
		fmt.Println(DimStyle.Render("No documents. Upload one with /upload FILE."))
		return
	}
	for i, d := range st.Documents {
		marker := "  "
		if d.Path == st.Active.Path {
			marker = HighlightStyle.Render("* ")
		}
		size := ""
		if d.Size != nil {
			size = DimStyle.Render(" " + util.FormatBytes(*d.Size))
		}
		fmt.Printf("%s%2d. %s%s\n", marker, i+1, d.DisplayName(), size)
	}
}

func printHistory(st session.State) {
	if len(st.Messages) == 0 {
		fmt.Println(DimStyle.Render("No messages yet."))
		return
	}
	for _, m := range st.Messages {
		label := HighlightStyle.Render(m.Role.DisplayName())
		fmt.Printf("%s %s\n", label, DimStyle.Render(util.FormatTime(m.Timestamp)))
		fmt.Println(m.Content)
		fmt.Println()
	}
}

func printExitSummary(s *ChatSession) {
	if s.Quiet {
		return
	}
	fmt.Println(DimStyle.Render(fmt.Sprintf("%d question(s) in %s. Bye.",
		s.asked, formatDurationShort(time.Since(s.started).Round(time.Second)))))
}
