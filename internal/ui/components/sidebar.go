// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"time"

	"github.com/jeranaias/chatdesk/internal/model"
	"github.com/jeranaias/chatdesk/internal/ui/styles"
	"github.com/jeranaias/chatdesk/internal/util"
)

// Sidebar placeholders.
const (
	SidebarEmpty   = "No conversations yet"
	SidebarLoading = "Loading conversations..."
	sidebarHeading = "Conversations"
	newChatLabel   = "+ New chat"
)

// =============================================================================
// SIDEBAR - Conversation list
// =============================================================================

// Sidebar lists conversations in backend order. Each entry takes two
// lines: the title and its last update date. Row 0 is the "New chat"
// action; conversation i is row i+1.
type Sidebar struct {
	theme *styles.Theme

	conversations []model.ConversationSummary
	activeID      string
	loading       bool

	cursor int
	offset int // first visible conversation

	width   int
	height  int
	focused bool

	// now is the reference for "Today"; tests pin it
	now func() time.Time
}

// NewSidebar creates an empty sidebar.
func NewSidebar(theme *styles.Theme) *Sidebar {
	return &Sidebar{theme: theme, width: 30, height: 20, now: time.Now}
}

// SetTheme switches styles.
func (s *Sidebar) SetTheme(theme *styles.Theme) {
	s.theme = theme
}

// SetSize sets the outer size including the border.
func (s *Sidebar) SetSize(width, height int) {
	s.width = width
	s.height = height
	s.clampOffset()
}

// SetFocused marks the sidebar as receiving navigation keys.
func (s *Sidebar) SetFocused(focused bool) {
	s.focused = focused
}

// Focused reports whether the sidebar has focus.
func (s *Sidebar) Focused() bool {
	return s.focused
}

// SetLoading shows the loading placeholder.
func (s *Sidebar) SetLoading(loading bool) {
	s.loading = loading
}

// SetConversations replaces the list. The cursor stays on the same
// conversation id when it is still present.
func (s *Sidebar) SetConversations(convs []model.ConversationSummary, activeID string) {
	var cursorID string
	if c, ok := s.Selected(); ok {
		cursorID = c.ID
	}
	s.conversations = convs
	s.activeID = activeID

	switch {
	case cursorID != "" && s.indexOf(cursorID) >= 0:
		s.cursor = s.indexOf(cursorID) + 1
	case s.cursor > len(convs):
		s.cursor = len(convs)
	}
	s.clampOffset()
}

// SetActive marks the open conversation.
func (s *Sidebar) SetActive(id string) {
	s.activeID = id
}

func (s *Sidebar) indexOf(id string) int {
	for i, c := range s.conversations {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// Len returns the number of conversations.
func (s *Sidebar) Len() int {
	return len(s.conversations)
}

// =============================================================================
// NAVIGATION
// =============================================================================

// Cursor returns the highlighted row; 0 is "New chat".
func (s *Sidebar) Cursor() int {
	return s.cursor
}

// OnNewChat reports whether the cursor is on the "New chat" row.
func (s *Sidebar) OnNewChat() bool {
	return s.cursor == 0
}

// Selected returns the conversation under the cursor.
func (s *Sidebar) Selected() (model.ConversationSummary, bool) {
	if s.cursor < 1 || s.cursor > len(s.conversations) {
		return model.ConversationSummary{}, false
	}
	return s.conversations[s.cursor-1], true
}

// MoveUp moves the cursor one row up.
func (s *Sidebar) MoveUp() {
	if s.cursor > 0 {
		s.cursor--
	}
	s.clampOffset()
}

// MoveDown moves the cursor one row down.
func (s *Sidebar) MoveDown() {
	if s.cursor < len(s.conversations) {
		s.cursor++
	}
	s.clampOffset()
}

// MoveToActive puts the cursor on the open conversation, or "New chat".
func (s *Sidebar) MoveToActive() {
	s.cursor = s.indexOf(s.activeID) + 1
	s.clampOffset()
}

// visibleCount is how many conversations fit below the heading rows.
func (s *Sidebar) visibleCount() int {
	// border (2) + heading + new chat + blank line
	rows := s.height - 5
	if rows < 2 {
		return 1
	}
	return rows / 2
}

func (s *Sidebar) clampOffset() {
	idx := s.cursor - 1
	if idx < 0 {
		idx = 0
	}
	visible := s.visibleCount()
	if idx < s.offset {
		s.offset = idx
	}
	if idx >= s.offset+visible {
		s.offset = idx - visible + 1
	}
	if maxOffset := len(s.conversations) - visible; s.offset > maxOffset {
		s.offset = maxOffset
	}
	if s.offset < 0 {
		s.offset = 0
	}
}

// =============================================================================
// RENDERING
// =============================================================================

// View renders the bordered list.
func (s *Sidebar) View() string {
	inner := s.width - 4 // border + padding
	if inner < 4 {
		inner = 4
	}

	var b strings.Builder
	b.WriteString(s.theme.SidebarHeading.Render(util.TruncateWidth(sidebarHeading, inner)))
	b.WriteString("\n")
	b.WriteString(s.row(newChatLabel, inner, s.cursor == 0, s.activeID == ""))
	b.WriteString("\n\n")

	switch {
	case s.loading && len(s.conversations) == 0:
		b.WriteString(s.theme.SidebarPlaceholder.Render(SidebarLoading))
	case len(s.conversations) == 0:
		b.WriteString(s.theme.SidebarPlaceholder.Render(SidebarEmpty))
	default:
		end := s.offset + s.visibleCount()
		if end > len(s.conversations) {
			end = len(s.conversations)
		}
		now := s.now()
		for i := s.offset; i < end; i++ {
			c := s.conversations[i]
			if i > s.offset {
				b.WriteString("\n")
			}
			b.WriteString(s.row(c.DisplayTitle(), inner, s.cursor == i+1, c.ID == s.activeID))
			b.WriteString("\n")
			b.WriteString(s.theme.SidebarDate.Render("  " + util.TruncateWidth(util.FormatDate(c.UpdatedAt.Time, now), inner-2)))
		}
	}

	style := s.theme.Sidebar
	if s.focused {
		style = s.theme.SidebarFocused
	}
	return style.
		Width(s.width - 2).
		Height(s.height - 2).
		MaxHeight(s.height).
		Render(b.String())
}

func (s *Sidebar) row(text string, width int, cursor, active bool) string {
	marker := "  "
	if active {
		marker = "* "
	}
	line := util.PadRight(marker+text, width)
	switch {
	case cursor && s.focused:
		return s.theme.SidebarCursor.Render(line)
	case active:
		return s.theme.SidebarActive.Render(line)
	default:
		return s.theme.SidebarItem.Render(line)
	}
}

// Width returns the outer width.
func (s *Sidebar) Width() int {
	return s.width
}
