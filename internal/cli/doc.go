// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides command-line parsing and the non-TUI commands of
// chatdesk.
//
// # Key Types
//
//   - Command: Enumeration of all available CLI commands
//   - Args: Parsed command-line arguments with global and command-specific flags
//   - App: Shared wiring (config, gateway client, output streams) for commands
//
// # Usage
//
//	cmd, args, err := cli.Parse(os.Args[1:])
//	if err != nil {
//	    cli.DisplayError(os.Stderr, "", err, false)
//	    os.Exit(cli.GetExitCode(err))
//	}
//	if cmd != cli.CmdTUI {
//	    err = app.Run(ctx, cmd, args)
//	}
//
// All commands support --json. The ask and chat commands drive a
// session.Controller, so they follow the same send and reload sequence
// as the TUI.
package cli
