// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// app.go - Command dispatch for chatdesk.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/chatdesk/internal/config"
	"github.com/jeranaias/chatdesk/internal/gateway"
	"github.com/jeranaias/chatdesk/internal/session"
)

// App carries the wiring shared by every non-TUI command.
type App struct {
	Config *config.Config

	// ConfigPath is the file config commands read and write
	ConfigPath string

	Client *gateway.Client
	Logger *slog.Logger

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Interactive is true when Stdin is a terminal and prompts are possible
	Interactive bool

	// Markdown renders message bodies with glamour when set
	Markdown bool

	// Width for markdown word wrap, 0 uses DefaultTerminalWidth
	Width int
}

// NewApp creates an App writing to the process streams. Markdown is
// enabled when stdout is a terminal.
func NewApp(cfg *config.Config, configPath string, client *gateway.Client, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}
	return &App{
		Config:      cfg,
		ConfigPath:  configPath,
		Client:      client,
		Logger:      logger,
		Stdin:       os.Stdin,
		Stdout:      os.Stdout,
		Stderr:      os.Stderr,
		Interactive: IsTTY(),
		Markdown:    IsStdoutTTY(),
		Width:       GetTerminalWidth(),
	}
}

// Run executes a parsed command. The TUI is started by the caller.
func (a *App) Run(ctx context.Context, cmd Command, args Args) error {
	a.Logger.Debug("running command", "command", cmd.String())

	switch cmd {
	case CmdAsk:
		return a.HandleAsk(ctx, args)
	case CmdChat:
		return a.HandleChat(ctx, args)
	case CmdModels:
		return a.HandleModels(ctx, args)
	case CmdConversations:
		return a.HandleConversations(ctx, args)
	case CmdShow:
		return a.HandleShow(ctx, args)
	case CmdDelete:
		return a.HandleDelete(ctx, args)
	case CmdUpload:
		return a.HandleUpload(ctx, args)
	case CmdHealth:
		return a.HandleHealth(ctx, args)
	case CmdExport:
		return a.HandleExport(ctx, args)
	case CmdConfig:
		return a.HandleConfig(args)
	case CmdVersion:
		return a.HandleVersion(args)
	case CmdHelp:
		PrintUsage(a.Stdout)
		return nil
	default:
		return fmt.Errorf("command %s is not handled by the command runner", cmd)
	}
}

// newController creates a session controller preferring the model named
// on the command line, then the configured default.
func (a *App) newController(args Args) *session.Controller {
	preferred := args.Model
	if preferred == "" && a.Config != nil {
		preferred = a.Config.DefaultModel
	}
	return session.NewController(a.Client, session.Options{
		PreferredModel: preferred,
		Logger:         a.Logger,
	})
}

// note writes a human-readable line that must not pollute JSON output.
func (a *App) note(args Args, format string, v ...interface{}) {
	if args.Quiet {
		return
	}
	w := a.Stdout
	if args.JSON {
		w = a.Stderr
	}
	fmt.Fprintf(w, format+"\n", v...)
}

// =============================================================================
// MARKDOWN
// =============================================================================

// renderMarkdown renders content for terminal display. Returns the
// original content when rendering is disabled or fails.
func (a *App) renderMarkdown(content string) string {
	if !a.Markdown {
		return content
	}
	width := a.Width
	if width <= 0 {
		width = DefaultTerminalWidth
	}
	if a.Config != nil && a.Config.UI.WordWrap > 0 && a.Config.UI.WordWrap < width {
		width = a.Config.UI.WordWrap
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		a.Logger.Debug("markdown renderer unavailable", "error", err)
		return content
	}
	out, err := renderer.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimRight(out, "\n")
}
