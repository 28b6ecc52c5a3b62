// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides command-line parsing and the non-TUI commands of docchat.
//
// # Key Types
//
//   - Command: enumeration of the available commands
//   - Args: parsed global and command flags
//   - ArgParser: flag/positional splitter used by subcommands and slash commands
//   - Env: config, logger, backend client and preference store for one run
//
// # Usage
//
//	cmd, args := cli.Parse()
//	switch cmd {
//	case cli.CmdAsk:
//	    err = cli.HandleAsk(args)
//	case cli.CmdChat:
//	    err = cli.HandleChatCommand(args)
//	}
//	cli.HandleErrorAndExit(err, args.JSON)
//
// ask and chat drive the same session controller as the TUI. Every command
// accepts --json and prints a JSONResponse envelope on stdout.
package cli
