// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/chatdesk/internal/attachment"
	"github.com/jeranaias/chatdesk/internal/ui/styles"
	"github.com/jeranaias/chatdesk/internal/util"
)

// =============================================================================
// UPLOAD DIALOG
// =============================================================================

// UploadRequestedMsg asks the parent to upload the file at Path. The path
// has passed the local type and size checks.
type UploadRequestedMsg struct {
	Path string
}

// UploadDialogClosedMsg is emitted when the dialog is dismissed.
type UploadDialogClosedMsg struct{}

// UploadDialog asks for a file path and checks it before upload. It stays
// open while the upload runs and shows the backend's error on failure.
type UploadDialog struct {
	input     textinput.Model
	theme     *styles.Theme
	visible   bool
	uploading bool
	err       string
	width     int
	height    int

	// stat is os.Stat; tests replace it
	stat func(string) (os.FileInfo, error)
}

// NewUploadDialog creates a hidden dialog.
func NewUploadDialog(theme *styles.Theme) *UploadDialog {
	ti := textinput.New()
	ti.Placeholder = "path/to/document.pdf"
	ti.Prompt = "File: "
	ti.CharLimit = 1024
	ti.PromptStyle = lipgloss.NewStyle().Foreground(styles.Cyan).Bold(true)
	ti.PlaceholderStyle = lipgloss.NewStyle().Foreground(styles.TextMuted).Italic(true)
	return &UploadDialog{input: ti, theme: theme, stat: os.Stat}
}

// SetTheme switches styles.
func (d *UploadDialog) SetTheme(theme *styles.Theme) {
	d.theme = theme
}

// SetSize sets the area the dialog is centered in.
func (d *UploadDialog) SetSize(width, height int) {
	d.width = width
	d.height = height
}

// Show opens the dialog with an empty path.
func (d *UploadDialog) Show() tea.Cmd {
	d.visible = true
	d.uploading = false
	d.err = ""
	d.input.SetValue("")
	return d.input.Focus()
}

// Hide closes the dialog.
func (d *UploadDialog) Hide() {
	d.visible = false
	d.uploading = false
	d.input.Blur()
}

// IsVisible reports whether the dialog is open.
func (d *UploadDialog) IsVisible() bool {
	return d.visible
}

// Uploading reports whether an upload started from the dialog is running.
func (d *UploadDialog) Uploading() bool {
	return d.uploading
}

// SetError shows a failure and lets the user try another path.
func (d *UploadDialog) SetError(msg string) {
	d.uploading = false
	d.err = msg
}

// Error returns the message currently shown.
func (d *UploadDialog) Error() string {
	return d.err
}

// SetValue sets the path field.
func (d *UploadDialog) SetValue(path string) {
	d.input.SetValue(path)
}

// Validate expands "~", then checks that path is a regular file with an
// allowed extension and size.
func (d *UploadDialog) Validate(path string) (string, error) {
	path = strings.TrimSpace(path)
	path = strings.Trim(path, `"'`)
	if path == "" {
		return "", errors.New("enter a file path")
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	info, err := d.stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("file not found: %s", path)
		}
		return "", err
	}
	if info.IsDir() {
		return "", fmt.Errorf("%s is a directory", path)
	}
	if err := attachment.CheckUpload(path, info.Size()); err != nil {
		return "", err
	}
	return path, nil
}

// Update handles typing, submit and dismiss.
func (d *UploadDialog) Update(msg tea.Msg) (*UploadDialog, tea.Cmd) {
	if !d.visible {
		return d, nil
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "esc":
			d.Hide()
			return d, func() tea.Msg { return UploadDialogClosedMsg{} }
		case "enter":
			if d.uploading {
				return d, nil
			}
			path, err := d.Validate(d.input.Value())
			if err != nil {
				d.err = err.Error()
				return d, nil
			}
			d.err = ""
			d.uploading = true
			return d, func() tea.Msg { return UploadRequestedMsg{Path: path} }
		}
		if d.uploading {
			return d, nil
		}
	}

	var cmd tea.Cmd
	d.input, cmd = d.input.Update(msg)
	return d, cmd
}

// View renders the dialog centered in its area.
func (d *UploadDialog) View() string {
	if !d.visible {
		return ""
	}

	boxWidth := 64
	if d.width > 0 && d.width-8 < boxWidth {
		boxWidth = d.width - 8
	}
	if boxWidth < 30 {
		boxWidth = 30
	}
	d.input.Width = boxWidth - 14

	formats := strings.ToUpper(strings.Join(trimDots(attachment.AllowedExtensions), ", "))
	parts := []string{
		d.theme.DialogTitle.Render("Upload file"),
		"",
		d.input.View(),
		"",
		d.theme.DialogHint.Render(fmt.Sprintf("Supported formats: %s (max %s)",
			formats, util.FormatBytes(attachment.MaxUploadSize))),
		d.theme.DialogHint.Render("The file's content is included with your next message."),
	}
	if d.uploading {
		parts = append(parts, "", d.theme.StatusBusy.Render("Uploading..."))
	}
	if d.err != "" {
		parts = append(parts, "", d.theme.DialogError.Width(boxWidth-6).Render(styles.StatusIndicators.Error+" "+d.err))
	}
	parts = append(parts, "", d.theme.DialogHint.Render("Enter upload | Esc cancel"))

	box := d.theme.Dialog.Width(boxWidth).Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
	if d.width > 0 && d.height > 0 {
		return lipgloss.Place(d.width, d.height, lipgloss.Center, lipgloss.Center, box)
	}
	return box
}

func trimDots(exts []string) []string {
	out := make([]string, len(exts))
	for i, e := range exts {
		out[i] = strings.TrimPrefix(e, ".")
	}
	return out
}
