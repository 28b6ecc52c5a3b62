// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging builds the application's structured logger.
//
// Logs go to a rotating JSON file only. The terminal belongs to the TUI, so
// nothing is ever written to stdout or stderr from here.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options controls the file logger.
type Options struct {
	// Path of the log file (default: ~/.docchat/logs/docchat.log).
	Path string

	// Level is one of debug, info, warn, error (default: info).
	Level string

	// MaxSizeMB before rotation (default: 10).
	MaxSizeMB int

	// MaxBackups kept after rotation (default: 5).
	MaxBackups int

	// MaxAgeDays before old files are removed (default: 30).
	MaxAgeDays int
}

// DefaultPath returns ~/.docchat/logs/docchat.log.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".docchat", "logs", "docchat.log")
	}
	return filepath.Join(home, ".docchat", "logs", "docchat.log")
}

// ParseLevel maps a level name to a zap level.
func ParseLevel(name string) (zapcore.Level, error) {
	var level zapcore.Level
	if name == "" {
		return zap.InfoLevel, nil
	}
	if err := level.UnmarshalText([]byte(strings.ToLower(name))); err != nil {
		return zap.InfoLevel, fmt.Errorf("unknown log level %q", name)
	}
	return level, nil
}

// New creates a file-only JSON logger with rotation.
// The caller should defer logger.Sync().
func New(opts Options) (*zap.Logger, error) {
	if opts.Path == "" {
		opts.Path = DefaultPath()
	}
	if opts.MaxSizeMB <= 0 {
		opts.MaxSizeMB = 10
	}
	if opts.MaxBackups <= 0 {
		opts.MaxBackups = 5
	}
	if opts.MaxAgeDays <= 0 {
		opts.MaxAgeDays = 30
	}

	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(opts.Path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	rotator := &lumberjack.Logger{
		Filename:   opts.Path,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
		MaxAge:     opts.MaxAgeDays,
		Compress:   true,
	}

	return zap.New(newCore(zapcore.AddSync(rotator), level), zap.AddCaller()), nil
}

// newCore builds the JSON core used for every sink.
func newCore(ws zapcore.WriteSyncer, level zapcore.Level) zapcore.Core {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.MessageKey = "message"
	encoderConfig.LevelKey = "level"
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	return zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), ws, level)
}

// Nop returns a logger that discards everything.
func Nop() *zap.Logger {
	return zap.NewNop()
}
