// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config.go - Config command implementation for docchat.
//
// Command: config [subcommand]
//
// Subcommands:
//   show (default)      Display the effective configuration
//   get <key>           Print one value
//   set <key> <value>   Set a value in the config file
//   keys                List all keys
//   reset               Reset the file to defaults
//   path                Show configuration file path
//
// Examples:
//   docchat config
//   docchat config get backend.api_base
//   docchat config set backend.api_base http://docs.internal:8000/api
//   docchat config set chat.retrieval_mode mmr
//   docchat config set ui.theme light
//
// "show" and "get" include environment overrides; "set" edits the file
// alone so that DOCCHAT_* variables are never written back.
package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/jeranaias/docchat-tui/internal/config"
)

// HandleConfig handles the "config" command.
func HandleConfig(args Args) error {
	path := args.ConfigPath
	if path == "" {
		path = defaultConfigPath()
	}

	switch args.Subcommand {
	case "", "show":
		return handleConfigShow(args, path)
	case "get":
		return handleConfigGet(args, path)
	case "set":
		return handleConfigSet(args, path)
	case "keys":
		return OutputJSON(args.JSON, "config keys", func() (interface{}, error) {
			keys := config.GetAllKeys()
			if !args.JSON {
				fmt.Println(strings.Join(keys, "\n"))
			}
			return keys, nil
		})
	case "reset":
		return handleConfigReset(args, path)
	case "path":
		return OutputJSON(args.JSON, "config path", func() (interface{}, error) {
			_, err := os.Stat(path)
			if !args.JSON {
				fmt.Println(path)
			}
			return map[string]interface{}{"path": path, "exists": err == nil}, nil
		})
	default:
		return &ValidationError{
			Field:   "subcommand",
			Value:   args.Subcommand,
			Reason:  "unknown config subcommand",
			Example: "show, get, set, keys, reset, path",
		}
	}
}

// loadForEdit reads the file at path without environment overrides.
// A missing file yields defaults.
func loadForEdit(path string) (*config.Config, error) {
	cfg := config.Default()
	if _, err := os.Stat(path); err != nil {
		return cfg, nil
	}
	if strings.HasSuffix(path, ".json") {
		return cfg, config.LoadJSON(cfg, path)
	}
	return cfg, config.LoadTOML(cfg, path)
}

// saveTo writes cfg in the format implied by the path extension.
func saveTo(cfg *config.Config, path string) error {
	if strings.HasSuffix(path, ".json") {
		return config.SaveJSON(cfg, path)
	}
	return config.SaveTOML(cfg, path)
}

func handleConfigShow(args Args, path string) error {
	cfg, _, err := LoadConfig(args)
	if err != nil {
		return err
	}

	return OutputJSON(args.JSON, "config show", func() (interface{}, error) {
		if !args.JSON {
			printConfig(cfg, path)
		}
		return map[string]interface{}{"path": path, "config": cfg}, nil
	})
}

// printConfig groups keys by section.
func printConfig(cfg *config.Config, path string) {
	fmt.Println(TitleStyle.Render("docchat configuration"))

	section := ""
	for _, key := range config.GetAllKeys() {
		head, name, ok := strings.Cut(key, ".")
		if !ok {
			head, name = "general", key
		}
		if head != section {
			section = head
			fmt.Println(SectionStyle.Render("[" + section + "]"))
		}
		val, err := cfg.Get(key)
		if err != nil {
			continue
		}
		fmt.Printf("  %s %s\n", RenderLabel(name+":", 22), HighlightStyle.Render(fmt.Sprint(val)))
	}

	fmt.Println()
	fmt.Println(RenderSeparator(41))
	fmt.Printf("Config file: %s\n", DimStyle.Render(path))
}

func handleConfigGet(args Args, path string) error {
	if args.ConfigKey == "" {
		return ErrMissingArgument("key", "docchat config get backend.api_base")
	}
	cfg, _, err := LoadConfig(args)
	if err != nil {
		return err
	}
	return OutputJSON(args.JSON, "config get", func() (interface{}, error) {
		val, err := cfg.Get(args.ConfigKey)
		if err != nil {
			return nil, &ValidationError{Field: "key", Value: args.ConfigKey, Reason: err.Error()}
		}
		if !args.JSON {
			fmt.Println(val)
		}
		return map[string]interface{}{"key": args.ConfigKey, "value": val}, nil
	})
}

func handleConfigSet(args Args, path string) error {
	if args.ConfigKey == "" {
		return ErrMissingArgument("key", "docchat config set <key> <value>")
	}
	if args.ConfigVal == "" {
		return ErrMissingArgument("value", fmt.Sprintf("docchat config set %s <value>", args.ConfigKey))
	}

	cfg, err := loadForEdit(path)
	if err != nil {
		return err
	}
	if err := cfg.Set(args.ConfigKey, args.ConfigVal); err != nil {
		return &ValidationError{Field: "key", Value: args.ConfigKey, Reason: err.Error()}
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := saveTo(cfg, path); err != nil {
		return err
	}

	return OutputJSON(args.JSON, "config set", func() (interface{}, error) {
		val, _ := cfg.Get(args.ConfigKey)
		if !args.JSON {
			fmt.Printf("%s %s = %v\n", SuccessStyle.Render("Set"), args.ConfigKey, val)
		}
		return map[string]interface{}{"key": args.ConfigKey, "value": val, "path": path}, nil
	})
}

func handleConfigReset(args Args, path string) error {
	if err := saveTo(config.Default(), path); err != nil {
		return err
	}
	return OutputJSON(args.JSON, "config reset", func() (interface{}, error) {
		if !args.JSON {
			fmt.Printf("%s %s\n", SuccessStyle.Render("Reset"), path)
		}
		return map[string]interface{}{"path": path}, nil
	})
}
