// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/chatdesk/internal/ui/styles"
)

// Composer placeholders.
const (
	ComposerPlaceholder   = "Message chatdesk... (Enter to send, Alt+Enter for newline)"
	ComposerNoModel       = "Select a model with ctrl+o to start chatting"
	ComposerSending       = "Waiting for the reply..."
	composerMaxLines      = 6
	composerCharLimit     = 16000
	composerMinInputWidth = 10
)

// =============================================================================
// COMPOSER - Multi-line message input
// =============================================================================

// Composer is the message input. Enter is left to the parent so it can
// send; Alt+Enter, Shift+Enter and ctrl+j insert a newline. While disabled
// it ignores keys and shows why.
type Composer struct {
	input    textarea.Model
	theme    *styles.Theme
	width    int
	focused  bool
	disabled bool
	reason   string

	// attachment is the staged file chip, empty when none
	attachment string
}

// NewComposer creates a focused composer.
func NewComposer(theme *styles.Theme) *Composer {
	ta := textarea.New()
	ta.Placeholder = ComposerPlaceholder
	ta.ShowLineNumbers = false
	ta.Prompt = "> "
	ta.CharLimit = composerCharLimit
	ta.SetHeight(1)
	ta.KeyMap.InsertNewline = key.NewBinding(
		key.WithKeys("alt+enter", "shift+enter", "ctrl+j"),
		key.WithHelp("alt+enter", "newline"),
	)
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Prompt = lipgloss.NewStyle().Foreground(styles.Cyan).Bold(true)
	ta.FocusedStyle.Placeholder = lipgloss.NewStyle().Foreground(styles.TextMuted).Italic(true)
	ta.BlurredStyle.Placeholder = ta.FocusedStyle.Placeholder

	c := &Composer{input: ta, theme: theme, width: 80}
	c.Focus()
	return c
}

// Focus focuses the input.
func (c *Composer) Focus() tea.Cmd {
	c.focused = true
	if c.disabled {
		return nil
	}
	return c.input.Focus()
}

// Blur removes focus.
func (c *Composer) Blur() {
	c.focused = false
	c.input.Blur()
}

// Focused reports whether the composer has focus.
func (c *Composer) Focused() bool {
	return c.focused
}

// SetTheme switches styles.
func (c *Composer) SetTheme(theme *styles.Theme) {
	c.theme = theme
}

// SetWidth sets the outer width including the border.
func (c *Composer) SetWidth(width int) {
	c.width = width
	inner := width - 2
	if inner < composerMinInputWidth {
		inner = composerMinInputWidth
	}
	c.input.SetWidth(inner)
}

// SetDisabled blocks input and replaces the placeholder with reason. The
// typed text is kept.
func (c *Composer) SetDisabled(disabled bool, reason string) {
	c.disabled = disabled
	c.reason = reason
	if disabled {
		c.input.Blur()
		c.input.Placeholder = reason
		return
	}
	c.input.Placeholder = ComposerPlaceholder
	if c.focused {
		c.input.Focus()
	}
}

// Disabled reports whether input is blocked.
func (c *Composer) Disabled() bool {
	return c.disabled
}

// SetAttachment shows label above the input; empty hides it.
func (c *Composer) SetAttachment(label string) {
	c.attachment = label
}

// Value returns the typed text.
func (c *Composer) Value() string {
	return c.input.Value()
}

// SetValue replaces the typed text.
func (c *Composer) SetValue(s string) {
	c.input.SetValue(s)
	c.resize()
}

// Reset clears the typed text.
func (c *Composer) Reset() {
	c.input.Reset()
	c.resize()
}

// resize grows the input with its content up to composerMaxLines.
func (c *Composer) resize() {
	lines := strings.Count(c.input.Value(), "\n") + 1
	if lines > composerMaxLines {
		lines = composerMaxLines
	}
	c.input.SetHeight(lines)
}

// Update forwards keys to the textarea unless disabled.
func (c *Composer) Update(msg tea.Msg) (*Composer, tea.Cmd) {
	if c.disabled {
		if _, ok := msg.(tea.KeyMsg); ok {
			return c, nil
		}
	}
	var cmd tea.Cmd
	c.input, cmd = c.input.Update(msg)
	c.resize()
	return c, cmd
}

// Height is the rendered height including border and attachment chip.
func (c *Composer) Height() int {
	return lipgloss.Height(c.View())
}

// View renders the attachment chip and the bordered input.
func (c *Composer) View() string {
	style := c.theme.InputContainer
	switch {
	case c.disabled:
		style = c.theme.InputDisabled
	case c.focused:
		style = c.theme.InputFocused
	}
	box := style.Width(c.width - 2).Render(c.input.View())
	if c.attachment == "" {
		return box
	}
	chip := c.theme.AttachmentChip.Render(c.attachment)
	return lipgloss.JoinVertical(lipgloss.Left, chip, box)
}
