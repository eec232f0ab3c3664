// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/chatdesk/internal/ui/components"
	"github.com/jeranaias/chatdesk/internal/ui/styles"
	"github.com/jeranaias/chatdesk/internal/util"
)

// =============================================================================
// LAYOUT
// =============================================================================

// narrow reports whether the sidebar is folded away.
func (m *Model) narrow() bool {
	return m.theme.GetLayoutMode() == styles.LayoutNarrow
}

// sidebarWidth is the configured width, capped at half the window.
func (m *Model) sidebarWidth() int {
	w := m.cfg.UI.SidebarWidth
	if w < minSidebarWidth {
		w = minSidebarWidth
	}
	if w > m.width/2 {
		w = m.width / 2
	}
	return w
}

// layout sizes every component for the current window.
func (m *Model) layout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	m.theme.SetSize(m.width, m.height)
	m.header.SetWidth(m.width)
	m.status.SetWidth(m.width)
	m.picker.SetSize(m.width, m.height)
	m.upload.SetSize(m.width, m.height)
	m.help.Width = m.width - 4

	// header, banner row and status bar
	chrome := lipgloss.Height(m.header.View()) + 1 + 1
	bodyHeight := m.height - chrome
	if bodyHeight < minThreadHeight {
		bodyHeight = minThreadHeight
	}

	mainWidth := m.width
	if m.narrow() {
		m.sidebar.SetSize(m.width, bodyHeight)
	} else {
		sw := m.sidebarWidth()
		m.sidebar.SetSize(sw, bodyHeight)
		mainWidth -= sw
	}

	m.composer.SetWidth(mainWidth)
	threadHeight := bodyHeight - m.composer.Height()
	if threadHeight < minThreadHeight {
		threadHeight = minThreadHeight
	}
	m.thread.SetSize(mainWidth, threadHeight)
}

// =============================================================================
// VIEW
// =============================================================================

// View renders the chat screen.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	switch {
	case m.picker.IsVisible():
		return m.picker.View()
	case m.upload.IsVisible():
		return m.upload.View()
	case m.showHelp:
		return m.renderHelp()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.header.View(),
		m.renderBody(),
		m.renderBanner(),
		m.renderStatus(),
	)
}

// renderBody places the sidebar next to the thread and composer. On
// narrow terminals the focused sidebar replaces them instead.
func (m Model) renderBody() string {
	main := lipgloss.JoinVertical(lipgloss.Left, m.thread.View(), m.composer.View())
	if m.narrow() {
		if m.focus == focusSidebar {
			return m.sidebar.View()
		}
		return main
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, m.sidebar.View(), main)
}

// renderBanner shows, in priority order, a pending delete prompt, the
// session error, or the current notice. The row stays blank otherwise.
func (m Model) renderBanner() string {
	if m.pendingDelete != nil {
		title := util.TruncateWidth(m.pendingDelete.DisplayTitle(), m.width/2)
		text := fmt.Sprintf("Delete %q? y to confirm, any other key to cancel", title)
		return m.theme.NoticeBanner.Width(m.width).MaxWidth(m.width).Render(text)
	}
	if m.state.LastError != "" {
		return components.RenderErrorBanner(m.theme, m.state.LastError, m.width)
	}
	return m.toasts.View(m.theme, m.width)
}

// renderStatus fills the status bar from the current state.
func (m Model) renderStatus() string {
	m.status.Status = m.currentStatus()
	m.status.Model = ""
	if m.state.SelectedModel != nil {
		m.status.Model = m.state.SelectedModel.Label()
	}
	m.status.Backend = m.backend
	m.status.Spinner = m.spinner.Frame()

	bindings := m.keys.ShortHelp()
	if m.focus == focusSidebar {
		bindings = m.keys.sidebarHints()
	}
	m.status.Hints = hintsFor(bindings)
	return m.status.View()
}

// currentStatus derives the status bar state. Work in progress wins
// over errors so the user sees that something is still running.
func (m Model) currentStatus() components.Status {
	s := m.state
	switch {
	case m.sending():
		return components.StatusSending
	case s.Uploading || m.upload.Uploading():
		return components.StatusUploading
	case s.ModelsLoading || s.ConversationsLoading || s.DetailLoading:
		return components.StatusLoading
	case s.LastError != "":
		return components.StatusError
	case s.SelectedModel == nil:
		return components.StatusNoModel
	default:
		return components.StatusReady
	}
}

// renderHelp draws the full key list centered on screen.
func (m Model) renderHelp() string {
	m.help.ShowAll = true
	body := lipgloss.JoinVertical(lipgloss.Left,
		m.theme.DialogTitle.Render("Keyboard shortcuts"),
		"",
		m.help.View(m.keys),
		"",
		m.theme.DialogHint.Render("press any key to close"),
	)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.theme.Dialog.Render(body))
}

func hintsFor(bindings []key.Binding) []components.Hint {
	hints := make([]components.Hint, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		hints = append(hints, components.Hint{Key: h.Key, Desc: h.Desc})
	}
	return hints
}
