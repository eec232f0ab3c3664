// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging sets up the structured logger for chatdesk.
//
// The TUI owns the terminal, so log records go to a file (by default
// ~/.chatdesk/chatdesk.log). One-shot CLI commands run with --verbose
// additionally mirror records to stderr.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Options configures the logger.
type Options struct {
	// Path is the log file. Empty disables file output.
	Path string

	// Level is one of debug, info, warn, error (default: info)
	Level string

	// Stderr mirrors records to stderr
	Stderr bool
}

var levelVar = new(slog.LevelVar)

// ParseLevel converts a level name to slog.Level.
// Unknown names map to info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// SetLevel changes the level of every logger created by Setup.
func SetLevel(name string) {
	levelVar.Set(ParseLevel(name))
}

// Setup builds the logger, installs it as slog.Default and returns it
// together with a closer for the log file.
func Setup(opts Options) (*slog.Logger, io.Closer, error) {
	levelVar.Set(ParseLevel(opts.Level))

	var writers []io.Writer
	var closer io.Closer = nopCloser{}

	if opts.Path != "" {
		if err := os.MkdirAll(filepath.Dir(opts.Path), 0755); err != nil {
			return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		f, err := os.OpenFile(opts.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file %s: %w", opts.Path, err)
		}
		writers = append(writers, f)
		closer = &fileCloser{f: f}
	}
	if opts.Stderr {
		writers = append(writers, os.Stderr)
	}

	var out io.Writer = io.Discard
	switch len(writers) {
	case 0:
	case 1:
		out = writers[0]
	default:
		out = io.MultiWriter(writers...)
	}

	logger := slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: levelVar}))
	slog.SetDefault(logger)
	logger.Debug("logger initialized", "path", opts.Path, "level", levelVar.Level().String())
	return logger, closer, nil
}

// Discard returns a logger that drops every record. Used by tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

type fileCloser struct {
	once sync.Once
	f    *os.File
}

func (c *fileCloser) Close() error {
	var err error
	c.once.Do(func() { err = c.f.Close() })
	return err
}
