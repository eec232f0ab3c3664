// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// =============================================================================
// THEME MODE
// =============================================================================

// Mode selects how the background is determined.
type Mode string

const (
	ModeAuto  Mode = "auto"
	ModeDark  Mode = "dark"
	ModeLight Mode = "light"
)

// ParseMode maps a config value to a Mode. Unknown values fall back to auto.
func ParseMode(s string) Mode {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeDark:
		return ModeDark
	case ModeLight:
		return ModeLight
	default:
		return ModeAuto
	}
}

// =============================================================================
// THEME
// =============================================================================

// Theme holds the styled components for the application.
type Theme struct {
	Mode         Mode
	IsDark       bool
	ColorProfile termenv.Profile

	// Layout dimensions
	Width  int
	Height int

	// Header
	Header      lipgloss.Style
	HeaderTitle lipgloss.Style
	HeaderModel lipgloss.Style

	// Sidebar
	Sidebar            lipgloss.Style
	SidebarFocused     lipgloss.Style
	SidebarHeading     lipgloss.Style
	SidebarItem        lipgloss.Style
	SidebarCursor      lipgloss.Style
	SidebarActive      lipgloss.Style
	SidebarDate        lipgloss.Style
	SidebarPlaceholder lipgloss.Style

	// Thread
	UserRole      lipgloss.Style
	AssistantRole lipgloss.Style
	SystemRole    lipgloss.Style
	MessageMeta   lipgloss.Style
	MessageBody   lipgloss.Style
	EmptyThread   lipgloss.Style

	// Input
	InputContainer lipgloss.Style
	InputFocused   lipgloss.Style
	InputDisabled  lipgloss.Style
	AttachmentChip lipgloss.Style

	// Status bar
	StatusBar   lipgloss.Style
	StatusReady lipgloss.Style
	StatusBusy  lipgloss.Style
	StatusError lipgloss.Style
	StatusKey   lipgloss.Style
	StatusHint  lipgloss.Style

	// Banners and dialogs
	ErrorBanner  lipgloss.Style
	NoticeBanner lipgloss.Style
	Dialog       lipgloss.Style
	DialogTitle  lipgloss.Style
	DialogHint   lipgloss.Style
	DialogError  lipgloss.Style
	PickerItem   lipgloss.Style
	PickerCursor lipgloss.Style
	PickerDesc   lipgloss.Style

	Dim lipgloss.Style
}

// NewTheme creates a theme for the given config value ("auto", "dark" or
// "light"). Explicit modes override background detection for lipgloss.
func NewTheme(mode string) *Theme {
	m := ParseMode(mode)
	isDark := true
	switch m {
	case ModeDark:
		isDark = true
	case ModeLight:
		isDark = false
	default:
		isDark = termenv.HasDarkBackground()
	}
	lipgloss.SetHasDarkBackground(isDark)

	t := &Theme{
		Mode:         m,
		IsDark:       isDark,
		ColorProfile: termenv.ColorProfile(),
	}
	t.initStyles()
	return t
}

// GlamourStyle names the glamour standard style matching the background.
func (t *Theme) GlamourStyle() string {
	if t.ColorProfile == termenv.Ascii {
		return "notty"
	}
	if t.IsDark {
		return "dark"
	}
	return "light"
}

func (t *Theme) initStyles() {
	t.Header = lipgloss.NewStyle().
		Background(SurfaceDim).
		Padding(0, 1)
	t.HeaderTitle = lipgloss.NewStyle().Bold(true).Foreground(TextPrimary)
	t.HeaderModel = lipgloss.NewStyle().Foreground(Cyan)

	t.Sidebar = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)
	t.SidebarFocused = t.Sidebar.BorderForeground(FocusRing)
	t.SidebarHeading = lipgloss.NewStyle().Bold(true).Foreground(Purple)
	t.SidebarItem = lipgloss.NewStyle().Foreground(TextPrimary)
	t.SidebarCursor = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Background(SelectionBg).
		Bold(true)
	t.SidebarActive = lipgloss.NewStyle().
		Foreground(Purple).
		Background(ActiveBg)
	t.SidebarDate = lipgloss.NewStyle().Foreground(TextMuted)
	t.SidebarPlaceholder = lipgloss.NewStyle().Foreground(TextMuted).Italic(true)

	t.UserRole = lipgloss.NewStyle().Bold(true).Foreground(UserRoleFg)
	t.AssistantRole = lipgloss.NewStyle().Bold(true).Foreground(AssistantRoleFg)
	t.SystemRole = lipgloss.NewStyle().Bold(true).Foreground(SystemRoleFg)
	t.MessageMeta = lipgloss.NewStyle().Foreground(TextMuted)
	t.MessageBody = lipgloss.NewStyle().Foreground(TextPrimary)
	t.EmptyThread = lipgloss.NewStyle().Foreground(TextSecondary).Italic(true)

	t.InputContainer = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay)
	t.InputFocused = t.InputContainer.BorderForeground(FocusRing)
	t.InputDisabled = t.InputContainer.BorderForeground(OverlayDim).Foreground(TextMuted)
	t.AttachmentChip = lipgloss.NewStyle().
		Foreground(AttachmentFg).
		Background(AttachmentBg).
		Padding(0, 1)

	t.StatusBar = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Background(SurfaceDim).
		Padding(0, 1)
	t.StatusReady = lipgloss.NewStyle().Foreground(Emerald).Bold(true)
	t.StatusBusy = lipgloss.NewStyle().Foreground(Amber).Bold(true)
	t.StatusError = lipgloss.NewStyle().Foreground(Rose).Bold(true)
	t.StatusKey = lipgloss.NewStyle().Foreground(Cyan).Bold(true)
	t.StatusHint = lipgloss.NewStyle().Foreground(TextMuted)

	t.ErrorBanner = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(Rose).
		Padding(0, 1)
	t.NoticeBanner = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(Emerald).
		Padding(0, 1)
	t.Dialog = lipgloss.NewStyle().
		Background(Surface).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Purple).
		Padding(1, 2)
	t.DialogTitle = lipgloss.NewStyle().Bold(true).Foreground(Purple)
	t.DialogHint = lipgloss.NewStyle().Foreground(TextMuted)
	t.DialogError = lipgloss.NewStyle().Foreground(Rose)
	t.PickerItem = lipgloss.NewStyle().Foreground(TextPrimary)
	t.PickerCursor = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(Purple)
	t.PickerDesc = lipgloss.NewStyle().Foreground(TextMuted)

	t.Dim = lipgloss.NewStyle().Foreground(TextMuted)
}

// SetSize updates the theme dimensions for responsive layouts.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

// GetLayoutMode returns the current layout mode based on width.
func (t *Theme) GetLayoutMode() LayoutMode {
	if t.Width < 60 {
		return LayoutNarrow
	}
	if t.Width < 100 {
		return LayoutMedium
	}
	return LayoutWide
}

// LayoutMode represents the current responsive layout mode.
type LayoutMode int

const (
	LayoutNarrow LayoutMode = iota // < 60 columns, sidebar hidden
	LayoutMedium                   // 60-100 columns
	LayoutWide                     // > 100 columns
)
