// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// confirm.go - Confirmation for destructive commands.
//
// Pattern:
//  1. --confirm proceeds without prompting
//  2. --json requires --confirm (no prompts in JSON mode)
//  3. A non-terminal stdin requires --confirm
//  4. Otherwise ask interactively

package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"
)

// ErrConfirmationRequired is returned when a prompt is impossible and
// --confirm was not given.
var ErrConfirmationRequired = errors.New("confirmation required: use --confirm")

// ConfirmationOptions carries the flags that decide whether to prompt.
type ConfirmationOptions struct {
	// ConfirmFlag indicates --confirm was passed
	ConfirmFlag bool
	// JSONMode indicates --json was passed
	JSONMode bool
}

// RequireConfirmation asks the user to confirm action. It returns false
// without error when the user declines.
func (a *App) RequireConfirmation(action string, opts ConfirmationOptions) (bool, error) {
	if opts.ConfirmFlag {
		return true, nil
	}
	if opts.JSONMode {
		return false, fmt.Errorf("%w in JSON mode", ErrConfirmationRequired)
	}
	if !a.Interactive || a.Stdin == nil {
		return false, fmt.Errorf("%w; stdin is not a terminal", ErrConfirmationRequired)
	}

	fmt.Fprintf(a.Stdout, "Are you sure you want to %s? [y/N]: ", action)

	reader := bufio.NewReader(a.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil && input == "" {
		return false, fmt.Errorf("failed to read confirmation: %w", err)
	}

	response := strings.ToLower(strings.TrimSpace(input))
	return response == "y" || response == "yes", nil
}
