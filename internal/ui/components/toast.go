// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/chatdesk/internal/ui/styles"
	"github.com/jeranaias/chatdesk/internal/util"
)

// =============================================================================
// TOASTS - One-line notices above the input
// =============================================================================

// ToastKind selects the notice color.
type ToastKind int

const (
	ToastInfo ToastKind = iota
	ToastSuccess
	ToastError
)

// DefaultToastDuration is how long success and info notices stay.
const DefaultToastDuration = 4 * time.Second

// Toast is a transient notice. Errors from the session are not toasts;
// they stay in the error banner until dismissed.
type Toast struct {
	ID      int
	Message string
	Kind    ToastKind
	Expires time.Time
}

// ToastExpiredMsg removes the toast with ID.
type ToastExpiredMsg struct {
	ID int
}

// Toasts holds the current notice. A new notice replaces the old one.
type Toasts struct {
	current *Toast
	nextID  int
	now     func() time.Time
}

// NewToasts creates an empty notice holder.
func NewToasts() *Toasts {
	return &Toasts{now: time.Now}
}

// Show replaces the current notice and returns the command that expires it.
func (t *Toasts) Show(kind ToastKind, message string) tea.Cmd {
	t.nextID++
	id := t.nextID
	t.current = &Toast{
		ID:      id,
		Message: message,
		Kind:    kind,
		Expires: t.now().Add(DefaultToastDuration),
	}
	return tea.Tick(DefaultToastDuration, func(time.Time) tea.Msg {
		return ToastExpiredMsg{ID: id}
	})
}

// Expire removes the notice if it is still the one with id.
func (t *Toasts) Expire(id int) {
	if t.current != nil && t.current.ID == id {
		t.current = nil
	}
}

// Current returns the visible notice.
func (t *Toasts) Current() (Toast, bool) {
	if t.current == nil {
		return Toast{}, false
	}
	return *t.current, true
}

// Clear removes the notice.
func (t *Toasts) Clear() {
	t.current = nil
}

// View renders the notice as a single line of width columns.
func (t *Toasts) View(theme *styles.Theme, width int) string {
	if t.current == nil {
		return ""
	}
	switch t.current.Kind {
	case ToastError:
		return RenderErrorBanner(theme, t.current.Message, width)
	case ToastSuccess:
		return theme.NoticeBanner.Width(width).MaxWidth(width).
			Render(util.TruncateWidth(styles.StatusIndicators.Success+" "+t.current.Message, width-2))
	default:
		return theme.NoticeBanner.Width(width).MaxWidth(width).
			Render(util.TruncateWidth(styles.StatusIndicators.Info+" "+t.current.Message, width-2))
	}
}

// RenderErrorBanner renders the session error with its dismiss hint.
func RenderErrorBanner(theme *styles.Theme, message string, width int) string {
	const hint = "  (esc to dismiss)"
	text := util.TruncateWidth(styles.StatusIndicators.Error+" "+util.FirstLine(message), width-2-len(hint)) + hint
	return theme.ErrorBanner.Width(width).MaxWidth(width).Render(text)
}
