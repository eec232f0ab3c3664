// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/chatdesk/internal/model"
	"github.com/jeranaias/chatdesk/internal/ui/styles"
	"github.com/jeranaias/chatdesk/internal/util"
)

const pickerMaxItems = 10

// =============================================================================
// MODEL PICKER
// =============================================================================

// ModelChosenMsg is emitted when the user picks a model.
type ModelChosenMsg struct {
	Model model.ModelDescriptor
}

// PickerClosedMsg is emitted when the picker is dismissed without a choice.
type PickerClosedMsg struct{}

// ModelPicker is an overlay listing models by display name, filtered as
// the user types.
type ModelPicker struct {
	input    textinput.Model
	theme    *styles.Theme
	models   []model.ModelDescriptor
	current  *model.ModelDescriptor
	filtered []int
	selected int
	visible  bool
	width    int
	height   int
}

// NewModelPicker creates a hidden picker.
func NewModelPicker(theme *styles.Theme) *ModelPicker {
	ti := textinput.New()
	ti.Placeholder = "Filter models..."
	ti.Prompt = "> "
	ti.CharLimit = 100
	ti.PromptStyle = lipgloss.NewStyle().Foreground(styles.Cyan).Bold(true)
	ti.PlaceholderStyle = lipgloss.NewStyle().Foreground(styles.TextMuted).Italic(true)
	return &ModelPicker{input: ti, theme: theme}
}

// SetTheme switches styles.
func (p *ModelPicker) SetTheme(theme *styles.Theme) {
	p.theme = theme
}

// SetSize sets the area the picker is centered in.
func (p *ModelPicker) SetSize(width, height int) {
	p.width = width
	p.height = height
}

// SetModels replaces the list and marks the current selection.
func (p *ModelPicker) SetModels(models []model.ModelDescriptor, current *model.ModelDescriptor) {
	p.models = models
	p.current = current
	p.updateFiltered()
}

// Show opens the picker with the cursor on the current model.
func (p *ModelPicker) Show() tea.Cmd {
	p.visible = true
	p.input.SetValue("")
	p.updateFiltered()
	p.selected = 0
	if p.current != nil {
		for i, idx := range p.filtered {
			if p.models[idx].Same(*p.current) {
				p.selected = i
				break
			}
		}
	}
	return p.input.Focus()
}

// Hide closes the picker.
func (p *ModelPicker) Hide() {
	p.visible = false
	p.input.Blur()
}

// IsVisible reports whether the picker is open.
func (p *ModelPicker) IsVisible() bool {
	return p.visible
}

// Highlighted returns the model under the cursor.
func (p *ModelPicker) Highlighted() (model.ModelDescriptor, bool) {
	if p.selected < 0 || p.selected >= len(p.filtered) {
		return model.ModelDescriptor{}, false
	}
	return p.models[p.filtered[p.selected]], true
}

func (p *ModelPicker) updateFiltered() {
	targets := make([]string, len(p.models))
	for i, m := range p.models {
		targets[i] = m.Label() + " " + m.Key()
	}
	matches := FuzzyFilter(strings.TrimSpace(p.input.Value()), targets)
	p.filtered = p.filtered[:0]
	for _, m := range matches {
		p.filtered = append(p.filtered, m.Index)
	}
	if p.selected >= len(p.filtered) {
		p.selected = len(p.filtered) - 1
	}
	if p.selected < 0 {
		p.selected = 0
	}
}

// Update handles navigation, filtering and selection.
func (p *ModelPicker) Update(msg tea.Msg) (*ModelPicker, tea.Cmd) {
	if !p.visible {
		return p, nil
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "esc", "ctrl+o":
			p.Hide()
			return p, func() tea.Msg { return PickerClosedMsg{} }
		case "enter":
			chosen, ok := p.Highlighted()
			if !ok {
				return p, nil
			}
			p.Hide()
			return p, func() tea.Msg { return ModelChosenMsg{Model: chosen} }
		case "up", "ctrl+p", "shift+tab":
			if p.selected > 0 {
				p.selected--
			}
			return p, nil
		case "down", "ctrl+n", "tab":
			if p.selected < len(p.filtered)-1 {
				p.selected++
			}
			return p, nil
		}
	}

	previous := p.input.Value()
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	if p.input.Value() != previous {
		p.selected = 0
		p.updateFiltered()
	}
	return p, cmd
}

// View renders the picker box centered in its area.
func (p *ModelPicker) View() string {
	if !p.visible {
		return ""
	}

	boxWidth := 60
	if p.width > 0 && p.width-8 < boxWidth {
		boxWidth = p.width - 8
	}
	if boxWidth < 30 {
		boxWidth = 30
	}
	inner := boxWidth - 6
	p.input.Width = inner - 3

	var items []string
	start := 0
	if p.selected >= pickerMaxItems {
		start = p.selected - pickerMaxItems + 1
	}
	for i := start; i < len(p.filtered) && i < start+pickerMaxItems; i++ {
		items = append(items, p.renderItem(p.models[p.filtered[i]], i == p.selected, inner))
	}
	list := strings.Join(items, "\n")
	switch {
	case len(p.models) == 0:
		list = p.theme.DialogHint.Render("No models available")
	case len(p.filtered) == 0:
		list = p.theme.DialogHint.Render("No matching models")
	case len(p.filtered) > pickerMaxItems:
		list += "\n" + p.theme.DialogHint.Render(fmt.Sprintf("%d of %d models", pickerMaxItems, len(p.filtered)))
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		p.theme.DialogTitle.Render("Select model"),
		"",
		p.input.View(),
		"",
		list,
		"",
		p.theme.DialogHint.Render("Up/Down navigate | Enter select | Esc close"),
	)
	box := p.theme.Dialog.Width(boxWidth).Render(content)
	if p.width > 0 && p.height > 0 {
		return lipgloss.Place(p.width, p.height, lipgloss.Center, lipgloss.Center, box)
	}
	return box
}

func (p *ModelPicker) renderItem(m model.ModelDescriptor, selected bool, width int) string {
	marker := "  "
	if p.current != nil && m.Same(*p.current) {
		marker = "* "
	}
	name := marker + m.Label()
	if selected {
		return p.theme.PickerCursor.Render(util.PadRight(name+"  "+m.Key(), width))
	}
	line := p.theme.PickerItem.Render(name) + "  " + p.theme.PickerDesc.Render(m.Key())
	if m.Description != "" {
		rest := width - util.StringWidth(name) - util.StringWidth(m.Key()) - 5
		if rest > 8 {
			line += p.theme.PickerDesc.Render(" - " + util.TruncateWidth(m.Description, rest))
		}
	}
	return line
}
