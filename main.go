// docchat - ask questions about your documents from the terminal.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jeranaias/docchat-tui/internal/cli"
	"github.com/jeranaias/docchat-tui/internal/config"
	"github.com/jeranaias/docchat-tui/internal/preview"
	"github.com/jeranaias/docchat-tui/internal/ui/app"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse()

	var err error
	switch cmd {
	case cli.CmdAsk:
		err = cli.HandleAsk(args)
	case cli.CmdChat:
		err = cli.HandleChatCommand(args)
	case cli.CmdDocs:
		err = cli.HandleDocs(args)
	case cli.CmdHealth:
		err = cli.HandleHealth(args)
	case cli.CmdUpload:
		err = cli.HandleUpload(args)
	case cli.CmdInfo:
		err = cli.HandleInfo(args)
	case cli.CmdConfig:
		err = cli.HandleConfig(args)
	case cli.CmdVersion:
		cli.HandleVersionWithJSON(args)
	case cli.CmdHelp:
		cli.HandleHelp()
	default:
		err = runTUI(args)
	}

	cli.HandleErrorAndExit(err, args.JSON)
}

// runTUI starts the TUI interface.
func runTUI(args cli.Args) error {
	if !cli.IsTTY() || !cli.IsStdoutTTY() {
		return fmt.Errorf("the TUI needs a terminal; try 'docchat ask' or 'docchat chat'")
	}

	env, err := cli.NewEnv(args)
	if err != nil {
		return err
	}
	defer env.Close()

	ctrl, err := env.NewSession(args)
	if err != nil {
		return err
	}

	ttl := time.Duration(env.Config.UI.InfoCacheMinutes) * time.Minute
	pv := preview.New(env.Client, ttl, env.Logger)

	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := app.New(app.Options{
		Context:   ctx,
		Session:   ctrl,
		Preview:   pv,
		Config:    env.Config,
		Version:   Version,
		ExportDir: cwd,
		Logger:    env.Logger,
	})

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	detach := app.Attach(p, ctrl)
	defer detach()

	if w := watchConfig(env, p); w != nil {
		defer w.Close()
	}

	env.Logger.Info("tui started", zap.String("session_id", ctrl.SessionID()))
	if _, err := p.Run(); err != nil && err != tea.ErrProgramKilled {
		return fmt.Errorf("error running docchat: %w", err)
	}
	return nil
}

// watchConfig forwards config file changes to the program. It returns nil
// when the file's directory cannot be watched.
func watchConfig(env *cli.Env, p *tea.Program) *config.Watcher {
	if env.ConfigPath == "" {
		return nil
	}

	w, err := config.NewWatcher(env.ConfigPath, 300*time.Millisecond, func(cfg *config.Config, err error) {
		p.Send(app.ConfigReloadedMsg{Config: cfg, Err: err})
	})
	if err != nil {
		env.Logger.Warn("config watcher unavailable", zap.Error(err))
		return nil
	}
	if err := w.Start(); err != nil {
		env.Logger.Debug("config directory not watched", zap.String("path", env.ConfigPath), zap.Error(err))
		w.Close()
		return nil
	}
	return w
}
