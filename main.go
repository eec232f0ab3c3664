// chatdesk - A terminal client for a multi-model chat backend.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/chatdesk/internal/cli"
	"github.com/jeranaias/chatdesk/internal/config"
	"github.com/jeranaias/chatdesk/internal/gateway"
	"github.com/jeranaias/chatdesk/internal/logging"
	"github.com/jeranaias/chatdesk/internal/session"
	"github.com/jeranaias/chatdesk/internal/ui/chat"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	// Sync version info with cli package
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	os.Exit(run(os.Args[1:]))
}

// run executes one invocation and returns the process exit code.
func run(argv []string) int {
	cmd, args, err := cli.Parse(argv)
	if err != nil {
		cli.DisplayError(os.Stderr, "chatdesk", err, args.JSON)
		return cli.GetExitCode(err)
	}

	cfg, configPath, err := loadConfig(args)
	if err != nil {
		cli.DisplayError(os.Stderr, cmd.String(), err, args.JSON)
		return cli.GetExitCode(err)
	}

	level := cfg.Log.Level
	if args.Verbose {
		level = "debug"
	}
	logger, closer, err := logging.Setup(logging.Options{
		Path:  cfg.LogPath(),
		Level: level,
		// the TUI owns the terminal
		Stderr: args.Verbose && cmd != cli.CmdTUI,
	})
	if err != nil {
		// logging is best effort; keep going without a file
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		logger, closer = logging.Discard(), io.NopCloser(nil)
	}
	defer closer.Close()
	slog.SetDefault(logger)

	client := gateway.NewClientWithConfig(&gateway.ClientConfig{
		BaseURL:           cfg.Backend.BaseURL(),
		Timeout:           cfg.Backend.Timeout(),
		RequestsPerSecond: cfg.Backend.RequestsPerSecond,
		UserAgent:         "chatdesk/" + Version,
		Logger:            logger,
	})
	logger.Info("starting", "command", cmd.String(), "backend", client.BaseURL(), "version", Version)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cmd == cli.CmdTUI {
		err = runTUI(ctx, cfg, configPath, client, args, logger)
	} else {
		err = cli.NewApp(cfg, configPath, client, logger).Run(ctx, cmd, args)
	}
	if err != nil {
		logger.Error("command failed", "command", cmd.String(), "error", err)
		cli.DisplayError(os.Stderr, cmd.String(), err, args.JSON)
		return cli.GetExitCode(err)
	}
	return cli.ExitSuccess
}

// loadConfig reads the config file named by --config, or the default
// one, then applies --url and --env.
func loadConfig(args cli.Args) (*config.Config, string, error) {
	path := args.ConfigPath
	var (
		cfg *config.Config
		err error
	)
	if path != "" {
		cfg, err = config.LoadFromPath(path)
	} else {
		path, _ = config.ConfigPath()
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, path, &cli.ConfigError{Path: path, Err: err}
	}

	if args.URL == "" && args.Env == "" {
		return cfg, path, nil
	}
	if args.URL != "" {
		cfg.Backend.URL = args.URL
	}
	if args.Env != "" {
		cfg.Backend.Environment = args.Env
	}
	if err := cfg.Validate(); err != nil {
		return nil, path, &cli.ConfigError{Err: err}
	}
	return cfg, path, nil
}

// =============================================================================
// TUI
// =============================================================================

// runTUI starts the full-screen interface and blocks until it exits.
func runTUI(ctx context.Context, cfg *config.Config, configPath string, client *gateway.Client, args cli.Args, logger *slog.Logger) error {
	if !cli.IsTTY() || !cli.IsStdoutTTY() {
		return cli.NewCommandError("tui", "a terminal is required", errors.New("stdin or stdout is not a terminal"))
	}

	preferred := args.Model
	if preferred == "" {
		preferred = cfg.DefaultModel
	}
	ctrl := session.NewController(client, session.Options{
		PreferredModel: preferred,
		Logger:         logger,
	})

	m := chat.New(chat.Options{
		Context:    ctx,
		Controller: ctrl,
		Config:     cfg,
		Logger:     logger,
		BackendURL: client.BaseURL(),
	})

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),       // Use alternate screen buffer
		tea.WithMouseCellMotion(), // Enable mouse support
		tea.WithContext(ctx),
	)

	cancel := chat.Bridge(ctrl, p.Send)
	defer cancel()

	if configPath != "" {
		watcher, err := config.Watch(configPath, func(next *config.Config) {
			p.Send(chat.ConfigReloadedMsg{Config: next})
		})
		if err != nil {
			logger.Warn("config watch unavailable", "path", configPath, "error", err)
		} else {
			defer watcher.Close()
		}
	}

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("error running chatdesk: %w", err)
	}
	return nil
}
