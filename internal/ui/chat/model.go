// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/chatdesk/internal/config"
	"github.com/jeranaias/chatdesk/internal/gateway"
	"github.com/jeranaias/chatdesk/internal/model"
	"github.com/jeranaias/chatdesk/internal/session"
	"github.com/jeranaias/chatdesk/internal/ui/components"
	"github.com/jeranaias/chatdesk/internal/ui/styles"
)

// =============================================================================
// FOCUS
// =============================================================================

// focusArea is the pane receiving keys.
type focusArea int

const (
	focusInput focusArea = iota
	focusSidebar
)

const (
	minSidebarWidth = 16
	minThreadHeight = 3
)

// =============================================================================
// MODEL
// =============================================================================

// Options configures the chat screen.
type Options struct {
	// Context bounds every backend call (default: context.Background())
	Context context.Context

	Controller *session.Controller
	Config     *config.Config

	// Logger (default: slog.Default())
	Logger *slog.Logger

	// BackendURL is shown in the status bar on wide terminals
	BackendURL string

	// ExportDir receives conversation exports (default: ".")
	ExportDir string
}

// Model is the Bubble Tea model for the chat screen: the conversation
// sidebar, the thread, the composer and their overlays.
type Model struct {
	ctx     context.Context
	ctrl    *session.Controller
	cfg     *config.Config
	logger  *slog.Logger
	backend string
	export  string

	// state is the last controller snapshot applied
	state session.State
	keys  KeyMap

	theme     *styles.Theme
	themeName string
	markdown  *components.MarkdownRenderer
	header    *components.Header
	sidebar   *components.Sidebar
	thread    *components.Thread
	composer  *components.Composer
	picker    *components.ModelPicker
	upload    *components.UploadDialog
	status    *components.StatusBar
	toasts    *components.Toasts
	spinner   components.Spinner
	help      help.Model

	width  int
	height int
	focus  focusArea

	showHelp bool
	quitting bool

	// pendingDelete is the conversation waiting for y/n
	pendingDelete *model.ConversationSummary

	// pending echoes the send in flight under the thread of pendingConv
	pending     string
	pendingConv string
	pendingFile bool
	pendingAt   time.Time
}

// New creates the chat screen. Call Init through tea.Program to load
// models and conversations.
func New(opts Options) Model {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if opts.ExportDir == "" {
		opts.ExportDir = "."
	}

	theme := styles.NewTheme(cfg.UI.Theme)
	markdown := components.NewMarkdownRenderer(theme.GlamourStyle())

	m := Model{
		ctx:       ctx,
		ctrl:      opts.Controller,
		cfg:       cfg,
		logger:    logger.With("component", "tui"),
		backend:   opts.BackendURL,
		export:    opts.ExportDir,
		state:     opts.Controller.Snapshot(),
		keys:      DefaultKeyMap(),
		theme:     theme,
		themeName: cfg.UI.Theme,
		markdown:  markdown,
		header:    components.NewHeader(theme),
		sidebar:   components.NewSidebar(theme),
		thread:    components.NewThread(theme, markdown),
		composer:  components.NewComposer(theme),
		picker:    components.NewModelPicker(theme),
		upload:    components.NewUploadDialog(theme),
		status:    components.NewStatusBar(theme),
		toasts:    components.NewToasts(),
		spinner:   components.NewSpinner(),
		help:      help.New(),
		focus:     focusInput,
	}
	m.thread.SetWordWrap(cfg.UI.WordWrap)
	m.thread.SetShowTimestamps(cfg.UI.ShowTimestamps)
	m.sync()
	return m
}

// Init loads models and conversations and starts the cursor blink.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		initCmd(m.ctx, m.ctrl),
		m.composer.Focus(),
		tea.SetWindowTitle("chatdesk"),
	)
}

// State returns the last applied controller snapshot.
func (m Model) State() session.State {
	return m.state
}

// =============================================================================
// UPDATE
// =============================================================================

// Update handles Bubble Tea messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.thread, cmd = m.thread.Update(msg)
		return m, cmd

	case StateMsg:
		cmd := m.applyState(msg.State)
		return m, cmd

	case opResultMsg:
		return m.handleResult(msg)

	case ConfigReloadedMsg:
		m.applyConfig(msg.Config)
		cmd := m.toasts.Show(components.ToastInfo, "Configuration reloaded")
		return m, cmd

	case components.ModelChosenMsg:
		focus := m.setFocus(focusInput)
		return m, tea.Batch(selectModelCmd(m.ctrl, msg.Model.Provider, msg.Model.Name), focus)

	case components.PickerClosedMsg, components.UploadDialogClosedMsg:
		cmd := m.setFocus(focusInput)
		return m, cmd

	case components.UploadRequestedMsg:
		spin := m.spinner.Start()
		return m, tea.Batch(uploadCmd(m.ctx, m.ctrl, msg.Path), spin)

	case components.ToastExpiredMsg:
		m.toasts.Expire(msg.ID)
		return m, nil

	case exportResultMsg:
		if msg.err != nil {
			m.logger.Warn("export failed", "error", msg.err)
			cmd := m.toasts.Show(components.ToastError, "Export failed: "+msg.err.Error())
			return m, cmd
		}
		m.logger.Info("conversation exported", "path", msg.path)
		cmd := m.toasts.Show(components.ToastSuccess, "Exported to "+msg.path)
		return m, cmd

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.syncThinking()
		return m, cmd
	}

	// Cursor blink and other component traffic
	var cmd tea.Cmd
	switch {
	case m.picker.IsVisible():
		m.picker, cmd = m.picker.Update(msg)
	case m.upload.IsVisible():
		m.upload, cmd = m.upload.Update(msg)
	default:
		m.composer, cmd = m.composer.Update(msg)
	}
	return m, cmd
}

// handleKey routes a key to the open overlay, the global bindings, or
// the focused pane, in that order.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		m.quitting = true
		return m, tea.Quit
	}

	var cmd tea.Cmd
	switch {
	case m.picker.IsVisible():
		m.picker, cmd = m.picker.Update(msg)
		return m, cmd
	case m.upload.IsVisible():
		m.upload, cmd = m.upload.Update(msg)
		return m, cmd
	case m.showHelp:
		m.showHelp = false
		return m, nil
	case m.pendingDelete != nil:
		target := *m.pendingDelete
		m.pendingDelete = nil
		if key.Matches(msg, m.keys.Confirm) {
			spin := m.spinner.Start()
			return m, tea.Batch(deleteCmd(m.ctx, m.ctrl, target.ID, target.DisplayTitle()), spin)
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.Dismiss):
		if m.state.LastError != "" {
			return m, dismissCmd(m.ctrl)
		}
		if m.focus == focusSidebar {
			cmd = m.setFocus(focusInput)
		}
		return m, cmd

	case key.Matches(msg, m.keys.ToggleFocus):
		next := focusSidebar
		if m.focus == focusSidebar {
			next = focusInput
		} else {
			m.sidebar.MoveToActive()
		}
		cmd = m.setFocus(next)
		return m, cmd

	case key.Matches(msg, m.keys.NewChat):
		cmd = m.setFocus(focusInput)
		return m, tea.Batch(newChatCmd(m.ctrl), cmd)

	case key.Matches(msg, m.keys.PickModel):
		return m.openPicker()

	case key.Matches(msg, m.keys.Upload):
		return m.openUpload()

	case key.Matches(msg, m.keys.DiscardUpload):
		if m.state.StagedAttachment == nil {
			return m, nil
		}
		return m, discardCmd(m.ctrl)

	case key.Matches(msg, m.keys.Export):
		if conv := m.state.ActiveConversation; conv == nil || conv.IsEmpty() {
			cmd = m.toasts.Show(components.ToastInfo, "Nothing to export yet")
			return m, cmd
		}
		return m, exportCmd(m.state.ActiveConversation, m.export)

	case key.Matches(msg, m.keys.Reload):
		spin := m.spinner.Start()
		return m, tea.Batch(reloadCmd(m.ctx, m.ctrl), spin)

	case key.Matches(msg, m.keys.PageUp, m.keys.PageDown, m.keys.Top, m.keys.Bottom):
		m.thread, cmd = m.thread.Update(msg)
		return m, cmd
	}

	if m.focus == focusSidebar {
		return m.handleSidebarKey(msg)
	}
	return m.handleInputKey(msg)
}

// handleSidebarKey moves the cursor, opens and deletes conversations.
func (m Model) handleSidebarKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		m.sidebar.MoveUp()
	case key.Matches(msg, m.keys.Down):
		m.sidebar.MoveDown()
	case key.Matches(msg, m.keys.Open):
		if m.sidebar.OnNewChat() {
			focus := m.setFocus(focusInput)
			return m, tea.Batch(newChatCmd(m.ctrl), focus)
		}
		if c, ok := m.sidebar.Selected(); ok {
			focus := m.setFocus(focusInput)
			spin := m.spinner.Start()
			return m, tea.Batch(selectConversationCmd(m.ctx, m.ctrl, c.ID), focus, spin)
		}
	case key.Matches(msg, m.keys.Delete):
		if c, ok := m.sidebar.Selected(); ok {
			m.pendingDelete = &c
		}
	case msg.String() == "n":
		focus := m.setFocus(focusInput)
		return m, tea.Batch(newChatCmd(m.ctrl), focus)
	}
	return m, nil
}

// handleInputKey sends on enter and forwards everything else to the
// composer.
func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Send) {
		return m.submit()
	}

	before := m.composer.Height()
	var cmd tea.Cmd
	m.composer, cmd = m.composer.Update(msg)
	if m.composer.Height() != before {
		m.layout()
	}
	return m, cmd
}

// submit starts a send of the composer text. The text is echoed under
// the thread until the backend reply replaces it.
func (m Model) submit() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.composer.Value())
	if text == "" || m.pending != "" || m.state.InFlight {
		return m, nil
	}
	if m.state.SelectedModel == nil {
		// the controller reports the missing model in the error banner
		return m, sendCmd(m.ctx, m.ctrl, text)
	}

	m.pending = text
	m.pendingConv = m.state.ActiveConversationID
	m.pendingFile = m.state.StagedAttachment != nil
	m.pendingAt = time.Now()
	m.composer.Reset()
	m.thread.ScrollToBottom()
	spin := m.spinner.Start()
	m.sync()
	return m, tea.Batch(sendCmd(m.ctx, m.ctrl, text), spin)
}

// openPicker shows the model picker on the current selection.
func (m Model) openPicker() (tea.Model, tea.Cmd) {
	if len(m.state.Models) == 0 {
		text := "No models available"
		if m.state.ModelsLoading {
			text = "Models are still loading"
		}
		cmd := m.toasts.Show(components.ToastInfo, text)
		return m, cmd
	}
	m.picker.SetModels(m.state.Models, m.state.SelectedModel)
	m.composer.Blur()
	return m, m.picker.Show()
}

// openUpload shows the attach dialog when no request is running.
func (m Model) openUpload() (tea.Model, tea.Cmd) {
	if !m.state.CanUpload() || m.pending != "" {
		cmd := m.toasts.Show(components.ToastInfo, "Wait for the current request to finish")
		return m, cmd
	}
	m.composer.Blur()
	return m, m.upload.Show()
}

// handleResult applies the snapshot of a finished controller call and
// reports the outcome.
func (m Model) handleResult(msg opResultMsg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	if msg.err != nil {
		m.logger.Debug("operation failed", "op", msg.op.String(), "error", msg.err)
	}

	switch msg.op {
	case opSend:
		m.pending, m.pendingConv, m.pendingFile = "", "", false
		switch {
		case msg.err == nil, errors.Is(msg.err, session.ErrRefreshFailed):
			m.thread.ScrollToBottom()
		case errors.Is(msg.err, session.ErrEmptyMessage):
		default:
			// give the text back so the user can retry
			if m.composer.Value() == "" {
				m.composer.SetValue(msg.text)
			}
		}

	case opUpload:
		if errors.Is(msg.err, session.ErrUploadDiscarded) {
			m.upload.Hide()
			cmds = append(cmds, m.toasts.Show(components.ToastInfo, "Conversation changed; "+msg.subject+" was not attached"))
			break
		}
		if msg.err != nil {
			m.upload.SetError(gateway.UserMessage(msg.err, msg.err.Error()))
			break
		}
		m.upload.Hide()
		cmds = append(cmds,
			m.toasts.Show(components.ToastSuccess, "Attached "+msg.subject),
			m.setFocus(focusInput))

	case opDelete:
		if msg.err == nil {
			cmds = append(cmds, m.toasts.Show(components.ToastSuccess, fmt.Sprintf("Deleted %q", msg.subject)))
		}

	case opSelectModel:
		if msg.err != nil {
			cmds = append(cmds, m.toasts.Show(components.ToastError, msg.err.Error()))
		}

	case opDiscard:
		cmds = append(cmds, m.toasts.Show(components.ToastInfo, "Attachment removed"))
	}

	cmds = append(cmds, m.applyState(msg.state))
	return m, tea.Batch(cmds...)
}

// =============================================================================
// STATE SYNC
// =============================================================================

// applyState adopts s unless a newer snapshot is already shown, then
// pushes the state into every component.
func (m *Model) applyState(s session.State) tea.Cmd {
	if s.Version >= m.state.Version {
		changed := s.ActiveConversationID != m.state.ActiveConversationID
		m.state = s
		if changed {
			m.thread.ScrollToBottom()
		}
	}
	return m.sync()
}

// sync pushes the current state into the components and starts or
// stops the spinner.
func (m *Model) sync() tea.Cmd {
	s := m.state

	m.sidebar.SetLoading(s.ConversationsLoading && len(s.Conversations) == 0)
	m.sidebar.SetConversations(s.Conversations, s.ActiveConversationID)
	if m.picker.IsVisible() {
		m.picker.SetModels(s.Models, s.SelectedModel)
	}

	m.header.Title = s.ActiveTitle()
	m.header.Model = ""
	if s.SelectedModel != nil {
		m.header.Model = s.SelectedModel.Label()
	}

	m.syncComposer()

	messages := s.Messages()
	if m.pending != "" && m.pendingConv == s.ActiveConversationID {
		messages = append(append([]*model.Message(nil), messages...), &model.Message{
			Role:           model.RoleUser,
			Content:        m.pending,
			Timestamp:      model.Timestamp{Time: m.pendingAt},
			FileAttachment: model.AttachmentFlag(m.pendingFile),
		})
	}
	m.thread.SetLoading(s.DetailLoading && m.pending == "" && !s.InFlight)
	m.thread.SetMessages(messages)

	var cmd tea.Cmd
	if m.busy() {
		cmd = m.spinner.Start()
	} else {
		m.spinner.Stop()
	}
	m.syncThinking()
	m.layout()
	return cmd
}

func (m *Model) syncComposer() {
	s := m.state
	switch {
	case s.SelectedModel == nil && s.ModelsLoading:
		m.composer.SetDisabled(true, "Loading models...")
	case s.SelectedModel == nil:
		m.composer.SetDisabled(true, components.ComposerNoModel)
	case s.InFlight || m.pending != "":
		m.composer.SetDisabled(true, components.ComposerSending)
	default:
		m.composer.SetDisabled(false, "")
	}

	label := ""
	if s.StagedAttachment != nil {
		label = s.StagedAttachment.Label()
	}
	m.composer.SetAttachment(label)
}

// syncThinking refreshes the elapsed time under the thread.
func (m *Model) syncThinking() {
	thinking := ""
	if m.sending() && m.pendingConv == m.state.ActiveConversationID {
		thinking = m.spinner.Label(components.ThinkingText)
	}
	m.thread.SetThinking(thinking)
}

func (m *Model) sending() bool {
	return m.pending != "" || m.state.InFlight
}

func (m *Model) busy() bool {
	s := m.state
	return m.sending() || s.Uploading || s.ModelsLoading || s.ConversationsLoading ||
		s.DetailLoading || m.upload.Uploading()
}

// setFocus moves key focus between the sidebar and the composer.
func (m *Model) setFocus(f focusArea) tea.Cmd {
	m.focus = f
	m.sidebar.SetFocused(f == focusSidebar)
	if f == focusSidebar {
		m.composer.Blur()
		return nil
	}
	return m.composer.Focus()
}

// applyConfig adopts settings changed on disk.
func (m *Model) applyConfig(cfg *config.Config) {
	if cfg == nil {
		return
	}
	m.cfg = cfg
	if cfg.UI.Theme != m.themeName {
		m.themeName = cfg.UI.Theme
		m.theme = styles.NewTheme(cfg.UI.Theme)
		m.markdown.SetStyle(m.theme.GlamourStyle())
		m.header.SetTheme(m.theme)
		m.sidebar.SetTheme(m.theme)
		m.thread.SetTheme(m.theme)
		m.composer.SetTheme(m.theme)
		m.picker.SetTheme(m.theme)
		m.upload.SetTheme(m.theme)
		m.status.SetTheme(m.theme)
	}
	m.thread.SetWordWrap(cfg.UI.WordWrap)
	m.thread.SetShowTimestamps(cfg.UI.ShowTimestamps)
	m.layout()
}
