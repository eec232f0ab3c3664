// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/chatdesk/internal/ui/styles"
	"github.com/jeranaias/chatdesk/internal/util"
)

// =============================================================================
// STATUS
// =============================================================================

// Status is the session activity shown at the left of the status bar.
type Status int

const (
	StatusReady Status = iota
	StatusLoading
	StatusSending
	StatusUploading
	StatusNoModel
	StatusError
)

// String returns the display string for the status.
func (s Status) String() string {
	switch s {
	case StatusReady:
		return "Ready"
	case StatusLoading:
		return "Loading..."
	case StatusSending:
		return "Sending..."
	case StatusUploading:
		return "Uploading..."
	case StatusNoModel:
		return "No model"
	case StatusError:
		return "Error"
	default:
		return "Unknown"
	}
}

// Icon returns a shape so the state is readable without color.
func (s Status) Icon() string {
	switch s {
	case StatusReady:
		return styles.StatusIndicators.Success
	case StatusLoading, StatusSending, StatusUploading:
		return styles.StatusIndicators.Pending
	case StatusNoModel:
		return styles.StatusIndicators.Warning
	case StatusError:
		return styles.StatusIndicators.Error
	default:
		return "?"
	}
}

// Busy reports whether the status has a running operation.
func (s Status) Busy() bool {
	return s == StatusLoading || s == StatusSending || s == StatusUploading
}

// =============================================================================
// STATUS BAR
// =============================================================================

// Hint is one key hint in the status bar.
type Hint struct {
	Key  string
	Desc string
}

// StatusBar is the bottom line: status, model, backend and key hints.
type StatusBar struct {
	Status  Status
	Model   string
	Backend string
	Spinner string // current spinner frame while busy
	Hints   []Hint
	Width   int
	theme   *styles.Theme
}

// NewStatusBar creates a status bar.
func NewStatusBar(theme *styles.Theme) *StatusBar {
	return &StatusBar{Status: StatusReady, Width: 80, theme: theme}
}

// SetTheme switches styles.
func (s *StatusBar) SetTheme(theme *styles.Theme) {
	s.theme = theme
}

// SetWidth sets the bar width.
func (s *StatusBar) SetWidth(width int) {
	s.Width = width
}

// View renders the bar. Narrow terminals drop the backend and hints.
func (s *StatusBar) View() string {
	sep := s.theme.StatusHint.Render(" | ")

	status := s.Status.Icon() + " " + s.Status.String()
	if s.Status.Busy() && s.Spinner != "" {
		status = s.Spinner + " " + s.Status.String()
	}
	var statusStyle lipgloss.Style
	switch {
	case s.Status == StatusReady:
		statusStyle = s.theme.StatusReady
	case s.Status.Busy() || s.Status == StatusNoModel:
		statusStyle = s.theme.StatusBusy
	default:
		statusStyle = s.theme.StatusError
	}

	left := []string{statusStyle.Render(status)}
	if s.Model != "" {
		left = append(left, s.theme.HeaderModel.Render(s.Model))
	}
	if s.Width >= 100 && s.Backend != "" {
		left = append(left, s.theme.StatusHint.Render(s.Backend))
	}
	leftStr := strings.Join(left, sep)

	right := ""
	if s.Width >= 60 {
		right = s.renderHints()
	}

	inner := s.Width - 2
	gap := inner - lipgloss.Width(leftStr) - lipgloss.Width(right)
	if gap < 1 {
		right = ""
		gap = inner - lipgloss.Width(leftStr)
		if gap < 0 {
			leftStr = util.TruncateWidth(strings.Join([]string{status, s.Model}, " | "), inner)
			gap = 0
		}
	}
	line := leftStr + strings.Repeat(" ", gap) + right
	return s.theme.StatusBar.Width(s.Width).MaxWidth(s.Width).Render(line)
}

func (s *StatusBar) renderHints() string {
	parts := make([]string, 0, len(s.Hints))
	for _, h := range s.Hints {
		parts = append(parts, s.theme.StatusKey.Render(h.Key)+" "+s.theme.StatusHint.Render(h.Desc))
	}
	return strings.Join(parts, "  ")
}
