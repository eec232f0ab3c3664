// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/chatdesk/internal/config"
	"github.com/jeranaias/chatdesk/internal/logging"
	"github.com/jeranaias/chatdesk/internal/model"
	"github.com/jeranaias/chatdesk/internal/session"
	"github.com/jeranaias/chatdesk/internal/ui/components"
)

func TestMain(m *testing.M) {
	lipgloss.SetColorProfile(termenv.Ascii)
	os.Exit(m.Run())
}

// =============================================================================
// FAKE BACKEND
// =============================================================================

type fakeBackend struct {
	mu sync.Mutex

	models  []model.ModelDescriptor
	convs   []*model.ConversationDetail // newest first
	sendErr error
	deleted []string
	sent    []string
	nextID  int
}

func newFakeBackend() *fakeBackend {
	now := time.Now()
	return &fakeBackend{
		models: []model.ModelDescriptor{
			{Provider: "openai", Name: "gpt-4", DisplayName: "GPT-4"},
			{Provider: "anthropic", Name: "claude-3", DisplayName: "Claude 3"},
		},
		convs: []*model.ConversationDetail{
			{
				ID: "c1", Title: "Travel plans",
				UpdatedAt: model.Timestamp{Time: now},
				Messages: []*model.Message{
					{ID: "m1", Role: model.RoleUser, Content: "Where should I go?"},
					{ID: "m2", Role: model.RoleAssistant, Content: "Try Lisbon.", ModelUsed: "gpt-4"},
				},
			},
			{
				ID: "c2", Title: "Recipes",
				UpdatedAt: model.Timestamp{Time: now.Add(-time.Hour)},
			},
		},
	}
}

func (f *fakeBackend) find(id string) (int, *model.ConversationDetail) {
	for i, c := range f.convs {
		if c.ID == id {
			return i, c
		}
	}
	return -1, nil
}

func (f *fakeBackend) ListModels(ctx context.Context) ([]model.ModelDescriptor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.ModelDescriptor(nil), f.models...), nil
}

func (f *fakeBackend) ListConversations(ctx context.Context) ([]model.ConversationSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.ConversationSummary, 0, len(f.convs))
	for _, c := range f.convs {
		out = append(out, c.Summary())
	}
	return out, nil
}

func (f *fakeBackend) GetConversation(ctx context.Context, id string) (*model.ConversationDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, c := f.find(id)
	if c == nil {
		return nil, fmt.Errorf("conversation %s not found", id)
	}
	out := *c
	out.Messages = append([]*model.Message(nil), c.Messages...)
	return &out, nil
}

func (f *fakeBackend) DeleteConversation(ctx context.Context, id string) (*model.Ack, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i, c := f.find(id)
	if c == nil {
		return nil, fmt.Errorf("conversation %s not found", id)
	}
	f.convs = append(f.convs[:i], f.convs[i+1:]...)
	f.deleted = append(f.deleted, id)
	return &model.Ack{Message: "deleted"}, nil
}

func (f *fakeBackend) SendMessage(ctx context.Context, conversationID, text, provider, modelName string, fileContent *string) (*model.ChatResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	i, c := f.find(conversationID)
	if c == nil {
		return nil, fmt.Errorf("conversation %s not found", conversationID)
	}
	f.convs = append(f.convs[:i], f.convs[i+1:]...)
	return f.reply(c, text, modelName, fileContent), nil
}

func (f *fakeBackend) SendStandaloneMessage(ctx context.Context, text, provider, modelName string, fileContent *string) (*model.ChatResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	f.nextID++
	c := &model.ConversationDetail{ID: fmt.Sprintf("new-%d", f.nextID), Title: text}
	return f.reply(c, text, modelName, fileContent), nil
}

// reply appends the exchange and moves c to the top. Callers hold f.mu.
func (f *fakeBackend) reply(c *model.ConversationDetail, text, modelName string, fileContent *string) *model.ChatResponse {
	f.sent = append(f.sent, text)
	answer := &model.Message{ID: fmt.Sprintf("a-%d", len(f.sent)), Role: model.RoleAssistant, Content: "echo: " + text, ModelUsed: modelName}
	c.Messages = append(c.Messages,
		&model.Message{ID: fmt.Sprintf("u-%d", len(f.sent)), Role: model.RoleUser, Content: text, FileAttachment: fileContent != nil},
		answer)
	c.UpdatedAt = model.Timestamp{Time: time.Now()}
	f.convs = append([]*model.ConversationDetail{c}, f.convs...)
	return &model.ChatResponse{ConversationID: c.ID, Message: answer}
}

func (f *fakeBackend) UploadFile(ctx context.Context, r io.Reader, filename string) (*model.UploadResult, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return &model.UploadResult{Filename: filename, Type: "txt", Content: string(data), Size: int64(len(data))}, nil
}

func (f *fakeBackend) Deleted() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deleted...)
}

func (f *fakeBackend) Sent() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sent...)
}

// =============================================================================
// HELPERS
// =============================================================================

func newTestModel(t *testing.T, backend *fakeBackend) (Model, *session.Controller) {
	t.Helper()
	cfg := config.Default()
	cfg.UI.Theme = "dark"
	ctrl := session.NewController(backend, session.Options{Logger: logging.Discard()})
	m := New(Options{
		Controller: ctrl,
		Config:     cfg,
		Logger:     logging.Discard(),
		BackendURL: "http://localhost:5669",
	})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = next.(Model)
	return drive(t, m, m.Init()), ctrl
}

// exec runs c, giving up on commands that wait, such as ticks.
func exec(c tea.Cmd) (tea.Msg, bool) {
	ch := make(chan tea.Msg, 1)
	go func() { ch <- c() }()
	select {
	case msg := <-ch:
		return msg, true
	case <-time.After(250 * time.Millisecond):
		return nil, false
	}
}

// drive runs cmd and every command it leads to, feeding results back
// into the model. Timers are dropped.
func drive(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0; steps++ {
		require.Less(t, steps, 200, "command loop did not settle")
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		msg, ok := exec(c)
		if !ok {
			continue
		}
		switch msg := msg.(type) {
		case tea.BatchMsg:
			queue = append(queue, msg...)
			continue
		case spinner.TickMsg, components.ToastExpiredMsg, tea.QuitMsg, nil:
			continue
		}
		next, more := m.Update(msg)
		m = next.(Model)
		queue = append(queue, more)
	}
	return m
}

func press(t *testing.T, m Model, msgs ...tea.KeyMsg) Model {
	t.Helper()
	for _, k := range msgs {
		next, cmd := m.Update(k)
		m = drive(t, next.(Model), cmd)
	}
	return m
}

func typeText(t *testing.T, m Model, text string) Model {
	t.Helper()
	return press(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
}

func runeKey(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyTab   = tea.KeyMsg{Type: tea.KeyTab}
	keyEsc   = tea.KeyMsg{Type: tea.KeyEsc}
	keyDown  = tea.KeyMsg{Type: tea.KeyDown}
)

// =============================================================================
// TESTS
// =============================================================================

func TestInitLoadsModelsAndConversations(t *testing.T) {
	m, _ := newTestModel(t, newFakeBackend())

	s := m.State()
	assert.Len(t, s.Models, 2)
	require.NotNil(t, s.SelectedModel)
	assert.Len(t, s.Conversations, 2)
	assert.False(t, m.composer.Disabled())

	view := m.View()
	assert.Contains(t, view, "Travel plans")
	assert.Contains(t, view, "Recipes")
	assert.Contains(t, view, components.EmptyThreadTitle)
}

func TestSendStartsConversation(t *testing.T) {
	backend := newFakeBackend()
	m, _ := newTestModel(t, backend)

	m = typeText(t, m, "hello there")
	next, cmd := m.Update(keyEnter)
	m = next.(Model)

	// echoed while the request runs
	assert.Equal(t, "", m.composer.Value())
	assert.True(t, m.composer.Disabled())
	assert.Contains(t, m.thread.Content(), "hello there")
	assert.Equal(t, components.StatusSending, m.currentStatus())

	m = drive(t, m, cmd)

	assert.Equal(t, []string{"hello there"}, backend.Sent())
	s := m.State()
	assert.Equal(t, "new-1", s.ActiveConversationID)
	assert.Len(t, s.Conversations, 3)
	assert.Equal(t, "new-1", s.Conversations[0].ID)
	assert.Contains(t, m.thread.Content(), "echo: hello there")
	assert.False(t, m.composer.Disabled())
	assert.Empty(t, m.pending)
}

func TestEnterIgnoresBlankInput(t *testing.T) {
	backend := newFakeBackend()
	m, _ := newTestModel(t, backend)

	m = typeText(t, m, "   ")
	m = press(t, m, keyEnter)

	assert.Empty(t, backend.Sent())
	assert.Empty(t, m.State().LastError)
}

func TestSendFailureRestoresDraftAndShowsBanner(t *testing.T) {
	backend := newFakeBackend()
	backend.sendErr = errors.New("backend down")
	m, _ := newTestModel(t, backend)

	m = typeText(t, m, "retry me")
	m = press(t, m, keyEnter)

	assert.Equal(t, "retry me", m.composer.Value())
	require.NotEmpty(t, m.State().LastError)
	assert.Contains(t, m.View(), "esc to dismiss")

	m = press(t, m, keyEsc)
	assert.Empty(t, m.State().LastError)
}

func TestSendWithoutModelReportsError(t *testing.T) {
	backend := newFakeBackend()
	backend.models = nil
	m, _ := newTestModel(t, backend)

	assert.Nil(t, m.State().SelectedModel)
	assert.True(t, m.composer.Disabled())
	assert.Equal(t, components.StatusNoModel, m.currentStatus())

	m.composer.SetValue("hi")
	m = press(t, m, keyEnter)

	assert.Empty(t, backend.Sent())
	assert.Equal(t, "Please select a model first", m.State().LastError)
}

func TestSidebarOpensConversation(t *testing.T) {
	m, _ := newTestModel(t, newFakeBackend())

	m = press(t, m, keyTab)
	assert.Equal(t, focusSidebar, m.focus)

	m = press(t, m, keyDown, keyEnter)

	s := m.State()
	assert.Equal(t, "c1", s.ActiveConversationID)
	require.NotNil(t, s.ActiveConversation)
	assert.Contains(t, m.thread.Content(), "Try Lisbon.")
	assert.Equal(t, focusInput, m.focus)
	assert.Contains(t, m.header.Title, "Travel plans")
}

func TestSidebarNewChatRow(t *testing.T) {
	m, _ := newTestModel(t, newFakeBackend())
	m = press(t, m, keyTab, keyDown, keyEnter)
	require.Equal(t, "c1", m.State().ActiveConversationID)

	m = press(t, m, keyTab)
	m.sidebar.MoveUp()
	m.sidebar.MoveUp()
	require.True(t, m.sidebar.OnNewChat())
	m = press(t, m, keyEnter)

	assert.Empty(t, m.State().ActiveConversationID)
	assert.Contains(t, m.thread.Content(), components.EmptyThreadTitle)
}

func TestDeleteAsksForConfirmation(t *testing.T) {
	backend := newFakeBackend()
	m, _ := newTestModel(t, backend)

	m = press(t, m, keyTab, keyDown, keyDown, runeKey("d"))
	require.NotNil(t, m.pendingDelete)
	assert.Equal(t, "c2", m.pendingDelete.ID)
	assert.Contains(t, m.View(), `Delete "Recipes"?`)

	// anything but y cancels
	m = press(t, m, runeKey("n"))
	assert.Nil(t, m.pendingDelete)
	assert.Empty(t, backend.Deleted())

	m = press(t, m, runeKey("d"), runeKey("y"))
	assert.Equal(t, []string{"c2"}, backend.Deleted())
	assert.Len(t, m.State().Conversations, 1)
	toast, ok := m.toasts.Current()
	require.True(t, ok)
	assert.Contains(t, toast.Message, "Recipes")
}

func TestModelPickerSelectsModel(t *testing.T) {
	m, _ := newTestModel(t, newFakeBackend())
	require.Equal(t, "openai", m.State().SelectedModel.Provider)

	m = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlO})
	require.True(t, m.picker.IsVisible())

	m = typeText(t, m, "claude")
	m = press(t, m, keyEnter)

	assert.False(t, m.picker.IsVisible())
	require.NotNil(t, m.State().SelectedModel)
	assert.Equal(t, "claude-3", m.State().SelectedModel.Name)
	assert.Contains(t, m.View(), "Claude 3")
}

func TestModelPickerWithoutModels(t *testing.T) {
	backend := newFakeBackend()
	backend.models = nil
	m, _ := newTestModel(t, backend)

	m = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlO})
	assert.False(t, m.picker.IsVisible())
	toast, ok := m.toasts.Current()
	require.True(t, ok)
	assert.Equal(t, "No models available", toast.Message)
}

func TestUploadStagesAttachment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("meeting notes"), 0o644))

	backend := newFakeBackend()
	m, ctrl := newTestModel(t, backend)

	m = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlL})
	require.True(t, m.upload.IsVisible())

	m.upload.SetValue(path)
	m = press(t, m, keyEnter)

	assert.False(t, m.upload.IsVisible())
	staged := m.State().StagedAttachment
	require.NotNil(t, staged)
	assert.Equal(t, "notes.txt", staged.Filename)
	assert.Contains(t, m.composer.View(), "notes.txt")

	// the attachment goes out with the next message and is cleared
	m = typeText(t, m, "summarize")
	m = press(t, m, keyEnter)
	assert.Nil(t, m.State().StagedAttachment)
	assert.Nil(t, ctrl.Snapshot().StagedAttachment)
	assert.Equal(t, []string{"summarize"}, backend.Sent())
}

func TestUploadRejectsUnsupportedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "image.png")
	require.NoError(t, os.WriteFile(path, []byte("png"), 0o644))

	m, _ := newTestModel(t, newFakeBackend())
	m = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlL})
	m.upload.SetValue(path)
	m = press(t, m, keyEnter)

	assert.True(t, m.upload.IsVisible())
	assert.NotEmpty(t, m.upload.Error())
	assert.Nil(t, m.State().StagedAttachment)

	m = press(t, m, keyEsc)
	assert.False(t, m.upload.IsVisible())
	assert.Equal(t, focusInput, m.focus)
}

func TestUploadForPreviousConversationIsReported(t *testing.T) {
	m, ctrl := newTestModel(t, newFakeBackend())
	m = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlL})
	require.True(t, m.upload.IsVisible())

	next, _ := m.Update(opResultMsg{
		op:      opUpload,
		state:   ctrl.Snapshot(),
		err:     session.ErrUploadDiscarded,
		subject: "notes.txt",
	})
	m = next.(Model)

	assert.False(t, m.upload.IsVisible())
	assert.Empty(t, m.upload.Error())
	toast, ok := m.toasts.Current()
	require.True(t, ok)
	assert.Equal(t, "Conversation changed; notes.txt was not attached", toast.Message)
	assert.Nil(t, m.State().StagedAttachment)
}

func TestDiscardAttachment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("text"), 0o644))

	m, _ := newTestModel(t, newFakeBackend())
	m = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlL})
	m.upload.SetValue(path)
	m = press(t, m, keyEnter)
	require.NotNil(t, m.State().StagedAttachment)

	m = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlX})
	assert.Nil(t, m.State().StagedAttachment)
	assert.NotContains(t, m.composer.View(), "notes.txt")
}

func TestStaleSnapshotIgnored(t *testing.T) {
	m, _ := newTestModel(t, newFakeBackend())

	newer := m.State()
	newer.Version += 10
	newer.LastError = "newer"
	next, _ := m.Update(StateMsg{State: newer})
	m = next.(Model)

	older := newer
	older.Version -= 5
	older.LastError = "older"
	next, _ = m.Update(StateMsg{State: older})
	m = next.(Model)

	assert.Equal(t, "newer", m.State().LastError)
}

func TestBridgeDeliversSnapshots(t *testing.T) {
	ctrl := session.NewController(newFakeBackend(), session.Options{Logger: logging.Discard()})
	got := make(chan tea.Msg, 8)
	cancel := Bridge(ctrl, func(msg tea.Msg) { got <- msg })
	defer cancel()

	ctrl.NewChat()

	select {
	case msg := <-got:
		state, ok := msg.(StateMsg)
		require.True(t, ok)
		assert.NotZero(t, state.State.Version)
	case <-time.After(2 * time.Second):
		t.Fatal("no snapshot delivered")
	}
}

func TestExportWritesActiveConversation(t *testing.T) {
	m, _ := newTestModel(t, newFakeBackend())
	m.export = t.TempDir()

	ctrlS := tea.KeyMsg{Type: tea.KeyCtrlS}
	m = press(t, m, ctrlS)
	toast, ok := m.toasts.Current()
	require.True(t, ok)
	assert.Equal(t, "Nothing to export yet", toast.Message)

	m = press(t, m, keyTab, keyDown, keyEnter)
	require.Equal(t, "c1", m.State().ActiveConversationID)
	m = press(t, m, ctrlS)

	toast, ok = m.toasts.Current()
	require.True(t, ok)
	assert.Contains(t, toast.Message, "Exported to ")

	matches, err := filepath.Glob(filepath.Join(m.export, "conversation_Travel_plans_*.md"))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), "# Travel plans")
	assert.Contains(t, string(data), "Try Lisbon.")
}

func TestConfigReloadApplied(t *testing.T) {
	m, _ := newTestModel(t, newFakeBackend())

	cfg := config.Default()
	cfg.UI.Theme = "light"
	cfg.UI.ShowTimestamps = true
	next, _ := m.Update(ConfigReloadedMsg{Config: cfg})
	m = next.(Model)

	assert.Equal(t, "light", m.themeName)
	assert.False(t, m.theme.IsDark)
	toast, ok := m.toasts.Current()
	require.True(t, ok)
	assert.Equal(t, "Configuration reloaded", toast.Message)
}

func TestNarrowLayoutFoldsSidebar(t *testing.T) {
	m, _ := newTestModel(t, newFakeBackend())
	next, _ := m.Update(tea.WindowSizeMsg{Width: 50, Height: 30})
	m = next.(Model)

	assert.NotContains(t, m.View(), "Travel plans")

	m = press(t, m, keyTab)
	assert.Contains(t, m.View(), "Travel plans")
}

func TestHelpOverlay(t *testing.T) {
	m, _ := newTestModel(t, newFakeBackend())

	m = press(t, m, tea.KeyMsg{Type: tea.KeyF1})
	view := m.View()
	assert.Contains(t, view, "Keyboard shortcuts")
	assert.Contains(t, view, "send")

	m = press(t, m, runeKey("x"))
	assert.False(t, m.showHelp)
	assert.Empty(t, m.composer.Value())
}

func TestQuit(t *testing.T) {
	m, _ := newTestModel(t, newFakeBackend())
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	m = next.(Model)

	require.NotNil(t, cmd)
	_, ok := cmd().(tea.QuitMsg)
	assert.True(t, ok)
	assert.Empty(t, m.View())
}

func TestOpNames(t *testing.T) {
	for o := opInit; o <= opDiscard; o++ {
		assert.NotEqual(t, "unknown", o.String(), "op %d", o)
	}
	assert.True(t, strings.HasPrefix(op(99).String(), "unknown"))
}
