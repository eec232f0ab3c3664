// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/chatdesk/internal/model"
	"github.com/jeranaias/chatdesk/internal/ui/styles"
)

// Empty thread copy.
const (
	EmptyThreadTitle = "Start a conversation with your AI assistant"
	EmptyThreadHint  = "Choose a model with ctrl+o and send a message to begin"
	ThinkingText     = "Assistant is thinking"
	LoadingThread    = "Loading conversation..."
)

// =============================================================================
// THREAD VIEWPORT - Scrollable message thread
// =============================================================================

// Thread shows the active conversation in a scrollable viewport. It follows
// the bottom of the thread until the user scrolls up.
type Thread struct {
	viewport viewport.Model
	theme    *styles.Theme
	markdown *MarkdownRenderer

	messages []*model.Message
	width    int
	height   int
	ready    bool

	// wordWrap caps the markdown width, 0 follows the viewport
	wordWrap       int
	showTimestamps bool

	thinking   string // spinner frame + text while a send is in flight
	loading    bool
	autoScroll bool
}

// NewThread creates an empty thread.
func NewThread(theme *styles.Theme, markdown *MarkdownRenderer) *Thread {
	vp := viewport.New(80, 20)
	vp.Style = lipgloss.NewStyle()
	return &Thread{
		viewport:       vp,
		theme:          theme,
		markdown:       markdown,
		width:          80,
		height:         20,
		showTimestamps: true,
		autoScroll:     true,
	}
}

// SetSize updates the thread dimensions.
func (t *Thread) SetSize(width, height int) {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	t.width = width
	t.height = height
	t.viewport.Width = width
	t.viewport.Height = height
	t.ready = true
	t.refresh()
}

// SetTheme switches styles and re-renders.
func (t *Thread) SetTheme(theme *styles.Theme) {
	t.theme = theme
	t.refresh()
}

// SetWordWrap caps the markdown width; 0 follows the viewport.
func (t *Thread) SetWordWrap(width int) {
	t.wordWrap = width
	t.refresh()
}

// SetShowTimestamps toggles HH:MM in message headers.
func (t *Thread) SetShowTimestamps(show bool) {
	t.showTimestamps = show
	t.refresh()
}

// SetMessages replaces the displayed messages.
func (t *Thread) SetMessages(messages []*model.Message) {
	t.messages = messages
	t.refresh()
}

// SetLoading shows a placeholder while the detail fetch runs.
func (t *Thread) SetLoading(loading bool) {
	if t.loading == loading {
		return
	}
	t.loading = loading
	t.refresh()
}

// SetThinking shows an indicator under the last message; empty hides it.
func (t *Thread) SetThinking(text string) {
	if t.thinking == text {
		return
	}
	t.thinking = text
	t.refresh()
}

// contentWidth is the width markdown wraps to.
func (t *Thread) contentWidth() int {
	w := t.width - 2
	if t.wordWrap > 0 && t.wordWrap < w {
		w = t.wordWrap
	}
	return w
}

func (t *Thread) refresh() {
	t.viewport.SetContent(t.render())
	if t.autoScroll {
		t.viewport.GotoBottom()
	}
}

func (t *Thread) render() string {
	if len(t.messages) == 0 {
		switch {
		case t.loading:
			return t.theme.EmptyThread.Render(LoadingThread)
		case t.thinking != "":
			return t.theme.EmptyThread.Render(t.thinking)
		}
		title := t.theme.HeaderTitle.Render(EmptyThreadTitle)
		hint := t.theme.EmptyThread.Render(EmptyThreadHint)
		return lipgloss.Place(t.width, t.height, lipgloss.Center, lipgloss.Center,
			lipgloss.JoinVertical(lipgloss.Center, title, "", hint))
	}

	content := RenderMessages(t.messages, MessageOptions{
		Theme:          t.theme,
		Markdown:       t.markdown,
		Width:          t.contentWidth(),
		ShowTimestamps: t.showTimestamps,
	})
	if t.thinking != "" {
		content += "\n\n" + t.theme.AssistantRole.Render(model.RoleAssistant.DisplayName()) +
			"\n" + t.theme.EmptyThread.Render(t.thinking)
	}
	return content
}

// =============================================================================
// SCROLLING
// =============================================================================

// ScrollToBottom jumps to the end and resumes following new content.
func (t *Thread) ScrollToBottom() {
	t.viewport.GotoBottom()
	t.autoScroll = true
}

// ScrollToTop jumps to the start.
func (t *Thread) ScrollToTop() {
	t.viewport.GotoTop()
	t.autoScroll = false
}

// AtBottom reports whether the last line is visible.
func (t *Thread) AtBottom() bool {
	return t.viewport.AtBottom()
}

// Following reports whether new content scrolls into view.
func (t *Thread) Following() bool {
	return t.autoScroll
}

// Update handles scroll keys and the mouse wheel.
func (t *Thread) Update(msg tea.Msg) (*Thread, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "pgup":
			t.viewport.HalfViewUp()
		case "pgdown":
			t.viewport.HalfViewDown()
		case "ctrl+home":
			t.ScrollToTop()
			return t, nil
		case "ctrl+end":
			t.ScrollToBottom()
			return t, nil
		default:
			return t, nil
		}
	case tea.MouseMsg:
		var cmd tea.Cmd
		t.viewport, cmd = t.viewport.Update(msg)
		t.autoScroll = t.viewport.AtBottom()
		return t, cmd
	default:
		return t, nil
	}
	t.autoScroll = t.viewport.AtBottom()
	return t, nil
}

// View renders the thread with a scroll hint when not at the bottom.
func (t *Thread) View() string {
	if !t.ready {
		return ""
	}
	view := t.viewport.View()
	if !t.viewport.AtBottom() && len(t.messages) > 0 {
		pct := int(t.viewport.ScrollPercent() * 100)
		hint := t.theme.Dim.Render(fmt.Sprintf("-- %d%% -- ctrl+end to follow", pct))
		lines := strings.Split(view, "\n")
		if len(lines) > 0 {
			lines[len(lines)-1] = hint
		}
		view = strings.Join(lines, "\n")
	}
	return view
}

// Content returns the rendered thread without viewport clipping.
func (t *Thread) Content() string {
	return t.render()
}
