// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the chatdesk TUI.

# Color System (colors.go)

Every color is a Lip Gloss AdaptiveColor with a light and a dark value.
Accents: Purple (assistant, focus), Cyan (user, keys), Emerald (ready,
attachments), Amber (busy), Rose (errors).

# Theme System (theme.go)

The Theme holds the lipgloss styles for every component. The mode comes
from the ui.theme config value:

	theme := styles.NewTheme(cfg.UI.Theme) // "auto", "dark" or "light"
	renderer, _ := glamour.NewTermRenderer(glamour.WithStandardStyle(theme.GlamourStyle()))

"auto" asks termenv whether the terminal background is dark. Explicit
modes are pushed to lipgloss so AdaptiveColor picks the matching side.
*/
package styles
