// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/chatdesk/internal/model"
	"github.com/jeranaias/chatdesk/internal/ui/styles"
	"github.com/jeranaias/chatdesk/internal/util"
)

// AttachmentMarker is shown next to messages sent with a file.
const AttachmentMarker = "📎"

// =============================================================================
// MARKDOWN RENDERER
// =============================================================================

// MarkdownRenderer renders assistant replies with glamour. The underlying
// renderer is rebuilt only when the width or style changes.
type MarkdownRenderer struct {
	style    string
	width    int
	renderer *glamour.TermRenderer
	failed   bool
}

// NewMarkdownRenderer creates a renderer using a glamour standard style
// name ("dark", "light", "notty").
func NewMarkdownRenderer(style string) *MarkdownRenderer {
	return &MarkdownRenderer{style: style}
}

// SetStyle switches the glamour style.
func (r *MarkdownRenderer) SetStyle(style string) {
	if style == r.style {
		return
	}
	r.style = style
	r.renderer = nil
	r.failed = false
}

// Render renders content wrapped to width. On any glamour failure the
// content is returned as-is.
func (r *MarkdownRenderer) Render(content string, width int) string {
	if width < 20 {
		width = 20
	}
	if r.renderer == nil || r.width != width {
		if r.failed && r.width == width {
			return content
		}
		r.width = width
		tr, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(r.style),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			r.failed = true
			r.renderer = nil
			return content
		}
		r.failed = false
		r.renderer = tr
	}
	out, err := r.renderer.Render(content)
	if err != nil {
		return content
	}
	return strings.Trim(out, "\n")
}

// =============================================================================
// MESSAGE RENDERING
// =============================================================================

// MessageOptions controls how a message is drawn.
type MessageOptions struct {
	Theme          *styles.Theme
	Markdown       *MarkdownRenderer
	Width          int
	ShowTimestamps bool
}

// MessageMeta is the "14:02 · gpt-4 · 📎" suffix of a message header.
// Empty parts are omitted.
func MessageMeta(m *model.Message, showTimestamps bool) string {
	var parts []string
	if showTimestamps {
		if clock := util.FormatClock(m.Timestamp.Time); clock != "" {
			parts = append(parts, clock)
		}
	}
	if m.Role == model.RoleAssistant && m.ModelUsed != "" {
		parts = append(parts, m.ModelUsed)
	}
	if m.HasAttachment() {
		parts = append(parts, AttachmentMarker)
	}
	return strings.Join(parts, " · ")
}

// RenderMessage draws one message: a header line with the role and meta,
// then the body. Assistant bodies are markdown; user text keeps its line
// breaks.
func RenderMessage(m *model.Message, opts MessageOptions) string {
	theme := opts.Theme
	width := opts.Width
	if width < 20 {
		width = 20
	}

	var roleStyle lipgloss.Style
	switch m.Role {
	case model.RoleUser:
		roleStyle = theme.UserRole
	case model.RoleAssistant:
		roleStyle = theme.AssistantRole
	default:
		roleStyle = theme.SystemRole
	}
	header := roleStyle.Render(m.Role.DisplayName())
	if meta := MessageMeta(m, opts.ShowTimestamps); meta != "" {
		header += theme.MessageMeta.Render(" · " + meta)
	}

	var body string
	if m.Role == model.RoleAssistant && opts.Markdown != nil {
		body = opts.Markdown.Render(m.Content, width)
	} else {
		body = theme.MessageBody.Width(width).Render(m.Content)
	}
	return header + "\n" + body
}

// RenderMessages joins rendered messages with a blank line between them.
func RenderMessages(messages []*model.Message, opts MessageOptions) string {
	parts := make([]string, 0, len(messages))
	for _, m := range messages {
		if m == nil {
			continue
		}
		parts = append(parts, RenderMessage(m, opts))
	}
	return strings.Join(parts, "\n\n")
}
