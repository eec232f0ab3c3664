// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/chatdesk/internal/ui/styles"
	"github.com/jeranaias/chatdesk/internal/util"
)

// =============================================================================
// HEADER - Title bar above the thread
// =============================================================================

// Header shows the brand, the active conversation title and the selected
// model on one line.
type Header struct {
	Brand string
	Title string
	Model string
	Width int
	theme *styles.Theme
}

// NewHeader creates a header.
func NewHeader(theme *styles.Theme) *Header {
	return &Header{Brand: "chatdesk", Width: 80, theme: theme}
}

// SetTheme switches styles.
func (h *Header) SetTheme(theme *styles.Theme) {
	h.theme = theme
}

// SetWidth updates the header width.
func (h *Header) SetWidth(width int) {
	h.Width = width
}

// View renders the header. The title is truncated first when space is short.
func (h *Header) View() string {
	inner := h.Width - 2
	brand := lipgloss.NewStyle().Bold(true).Foreground(styles.Cyan).Render(h.Brand)

	model := "no model selected"
	modelStyle := h.theme.StatusBusy
	if h.Model != "" {
		model = h.Model
		modelStyle = h.theme.HeaderModel
	}
	right := modelStyle.Render(util.TruncateWidth(model, inner/3))

	titleWidth := inner - lipgloss.Width(brand) - lipgloss.Width(right) - 4
	title := ""
	if titleWidth > 3 {
		title = h.theme.HeaderTitle.Render(util.TruncateWidth(h.Title, titleWidth))
	}

	left := brand
	if title != "" {
		left += h.theme.Dim.Render(" / ") + title
	}
	gap := inner - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	line := left + lipgloss.NewStyle().Width(gap).Render("") + right
	return h.theme.Header.Width(h.Width).MaxWidth(h.Width).Render(line)
}
