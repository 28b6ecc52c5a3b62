// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - CLI parsing and command routing for docchat.
package cli

import (
	"fmt"
	"os"
	"runtime"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdAsk
	CmdChat
	CmdDocs
	CmdHealth
	CmdUpload
	CmdInfo
	CmdConfig
	CmdVersion
	CmdHelp
)

var commandNames = map[Command]string{
	CmdTUI:     "tui",
	CmdAsk:     "ask",
	CmdChat:    "chat",
	CmdDocs:    "docs",
	CmdHealth:  "health",
	CmdUpload:  "upload",
	CmdInfo:    "info",
	CmdConfig:  "config",
	CmdVersion: "version",
	CmdHelp:    "help",
}

func (c Command) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return "unknown"
}

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Quiet      bool
	Verbose    bool
	JSON       bool   // Output in JSON format
	NoColor    bool   // Disable styled output
	ConfigPath string // Explicit config file (default: ~/.docchat/config.toml)
	APIBase    string // Overrides backend.api_base for this run

	// Command-specific
	Query      string
	Document   string // --doc: name or path of the document to ask about
	Sources    bool   // --sources: print the sources behind each answer
	File       string
	ConfigKey  string
	ConfigVal  string
	Subcommand string

	// Settings holds retrieval overrides keyed by setting name (top_k, retrieval_mode, ...).
	Settings map[string]string

	// Raw args (remaining after flag parsing)
	Raw []string
}

const usageText = `docchat - ask questions about your documents from the terminal

docchat talks to a document question-answering backend. Pick a PDF,
ask questions about it and read the answers with their sources.

Usage:
  docchat                      Start the TUI (default)
  docchat ask "question"       Ask a single question
  docchat chat                 Interactive line-mode chat
  docchat docs                 List documents known to the backend
  docchat health               Check backend health
  docchat upload FILE          Upload a PDF
  docchat info NAME            Show document details
  docchat config [show|get|set|path|reset|keys]
  docchat version              Show version
  docchat help                 Show this help

Global flags:
  --config PATH       Use a specific config file
  --api URL           Backend API root (e.g. http://localhost:8000/api)
  --json              Machine-readable output
  --no-color          Disable colors
  -q, --quiet         Minimal output
  -v, --verbose       Verbose output

Ask / chat flags:
  -d, --doc NAME      Document name or path (optional when only one exists)
  -s, --sources       Print sources under each answer
  --top-k N           Chunks to retrieve (1-10)
  --mode MODE         Retrieval mode: similarity or mmr
  --max-tokens N      Answer length limit
  --max-context N     Context character budget
  --show-context      Ask the backend to include context

TUI keys:
  enter send   alt+enter newline   tab switch pane   ctrl+t theme
  ctrl+s sources   ctrl+e export   ctrl+l clear   f1 help   ctrl+c quit

Environment:
  DOCCHAT_API_BASE    Backend API root (VITE_API_BASE is honored too)
  DOCCHAT_THEME       dark or light
  DOCCHAT_LOG_LEVEL   debug, info, warn, error
  NO_COLOR            Disable colors

Version: %s
`

// PrintUsage prints the usage/help text.
func PrintUsage() {
	fmt.Printf(usageText, Version)
}

// PrintVersion prints version information.
func PrintVersion() {
	fmt.Printf("docchat version %s\n", Version)
	fmt.Printf("  Git commit: %s\n", GitCommit)
	fmt.Printf("  Build date: %s\n", BuildDate)
	fmt.Printf("  Go:         %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// Parse parses os.Args and returns the command and args.
func Parse() (Command, Args) {
	return ParseArgs(os.Args[1:])
}

// ParseArgs parses the given arguments (without the program name).
func ParseArgs(argv []string) (Command, Args) {
	remaining, parsedArgs := parseGlobalFlags(argv)

	if len(remaining) == 0 {
		return CmdTUI, parsedArgs
	}

	cmd := strings.ToLower(remaining[0])
	remaining = remaining[1:]
	parsedArgs.Raw = remaining

	switch cmd {
	case "tui":
		return CmdTUI, parsedArgs

	case "ask", "a":
		parseAskArgs(&parsedArgs, remaining)
		return CmdAsk, parsedArgs

	case "chat", "repl":
		parseChatArgs(&parsedArgs, remaining)
		return CmdChat, parsedArgs

	case "docs", "documents", "ls":
		return CmdDocs, parsedArgs

	case "health", "status":
		return CmdHealth, parsedArgs

	case "upload", "up":
		if len(remaining) > 0 {
			parsedArgs.File = remaining[0]
		}
		return CmdUpload, parsedArgs

	case "info":
		parsedArgs.Query = strings.Join(remaining, " ")
		return CmdInfo, parsedArgs

	case "config":
		parseConfigArgs(&parsedArgs, remaining)
		return CmdConfig, parsedArgs

	case "version", "-V", "--version":
		return CmdVersion, parsedArgs

	case "help", "-h", "--help":
		return CmdHelp, parsedArgs

	default:
		// Unknown command; start the TUI and keep the args around.
		parsedArgs.Raw = append([]string{cmd}, remaining...)
		return CmdTUI, parsedArgs
	}
}

// parseGlobalFlags extracts global flags from args and returns remaining args.
func parseGlobalFlags(args []string) ([]string, Args) {
	var remaining []string
	parsedArgs := Args{
		Settings: make(map[string]string),
	}

	for i := 0; i < len(args); i++ {
		arg := args[i]

		switch arg {
		case "-q", "--quiet":
			parsedArgs.Quiet = true
		case "-v", "--verbose":
			parsedArgs.Verbose = true
		case "--json":
			parsedArgs.JSON = true
		case "--no-color":
			parsedArgs.NoColor = true
		case "--config":
			if i+1 < len(args) {
				i++
				parsedArgs.ConfigPath = args[i]
			}
		case "--api":
			if i+1 < len(args) {
				i++
				parsedArgs.APIBase = args[i]
			}
		default:
			switch {
			case strings.HasPrefix(arg, "--config="):
				parsedArgs.ConfigPath = strings.TrimPrefix(arg, "--config=")
			case strings.HasPrefix(arg, "--api="):
				parsedArgs.APIBase = strings.TrimPrefix(arg, "--api=")
			default:
				remaining = append(remaining, arg)
			}
		}
	}

	return remaining, parsedArgs
}

// settingFlags maps CLI flag names to setting keys.
var settingFlags = map[string]string{
	"--top-k":       "top_k",
	"-k":            "top_k",
	"--mode":        "retrieval_mode",
	"--max-tokens":  "max_tokens",
	"--max-context": "max_context_chars",
}

// parseSessionFlag consumes one ask/chat flag at remaining[i].
// It returns the index of the last consumed element and whether arg was a flag.
func parseSessionFlag(args *Args, remaining []string, i int) (int, bool) {
	arg := remaining[i]

	switch arg {
	case "-d", "--doc":
		if i+1 < len(remaining) {
			i++
			args.Document = remaining[i]
		}
		return i, true
	case "-s", "--sources":
		args.Sources = true
		return i, true
	case "--show-context":
		args.Settings["show_context"] = "true"
		return i, true
	}

	if key, ok := settingFlags[arg]; ok {
		if i+1 < len(remaining) {
			i++
			args.Settings[key] = remaining[i]
		}
		return i, true
	}

	if name, value, ok := strings.Cut(arg, "="); ok {
		if name == "--doc" {
			args.Document = value
			return i, true
		}
		if key, known := settingFlags[name]; known {
			args.Settings[key] = value
			return i, true
		}
	}

	return i, false
}

// parseAskArgs parses ask command specific arguments.
func parseAskArgs(args *Args, remaining []string) {
	var query []string

	for i := 0; i < len(remaining); i++ {
		next, isFlag := parseSessionFlag(args, remaining, i)
		if isFlag {
			i = next
			continue
		}
		if remaining[i] == "--" {
			query = append(query, remaining[i+1:]...)
			break
		}
		if !strings.HasPrefix(remaining[i], "-") {
			query = append(query, remaining[i])
		}
	}

	args.Query = strings.Join(query, " ")
}

// parseChatArgs parses chat command specific arguments.
func parseChatArgs(args *Args, remaining []string) {
	for i := 0; i < len(remaining); i++ {
		if next, isFlag := parseSessionFlag(args, remaining, i); isFlag {
			i = next
		}
	}
}

// parseConfigArgs parses config command specific arguments.
func parseConfigArgs(args *Args, remaining []string) {
	if len(remaining) > 0 {
		args.Subcommand = remaining[0]
		if len(remaining) > 1 {
			args.ConfigKey = remaining[1]
		}
		if len(remaining) > 2 {
			args.ConfigVal = strings.Join(remaining[2:], " ")
		}
	}
}

// =============================================================================
// SIMPLE HANDLERS
// =============================================================================

// HandleVersion prints version information.
func HandleVersion() {
	PrintVersion()
}

// HandleVersionWithJSON prints version information, as JSON when requested.
func HandleVersionWithJSON(args Args) {
	if args.JSON {
		NewJSONResponse("version", map[string]string{
			"version":    Version,
			"git_commit": GitCommit,
			"build_date": BuildDate,
			"go_version": runtime.Version(),
			"platform":   runtime.GOOS + "/" + runtime.GOARCH,
		}).Print()
		return
	}
	PrintVersion()
}

// HandleHelp prints the usage text.
func HandleHelp() {
	PrintUsage()
}
