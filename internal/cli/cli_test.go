// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/chatdesk/internal/attachment"
	"github.com/jeranaias/chatdesk/internal/config"
	"github.com/jeranaias/chatdesk/internal/gateway"
	"github.com/jeranaias/chatdesk/internal/logging"
	"github.com/jeranaias/chatdesk/internal/model"
	"github.com/jeranaias/chatdesk/internal/session"
)

func TestMain(m *testing.M) {
	ForceColorsEnabled(false)
	lipgloss.SetColorProfile(termenv.Ascii)
	os.Exit(m.Run())
}

// =============================================================================
// FAKE BACKEND
// =============================================================================

// fakeBackend is a small in-memory chat backend.
type fakeBackend struct {
	mu       sync.Mutex
	models   []model.ModelDescriptor
	order    []string
	convs    map[string]*model.ConversationDetail
	requests []string
	sent     []model.ChatRequest
	uploads  []string
	nextID   int
	health   string
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		models: []model.ModelDescriptor{
			{Provider: "openai", Name: "gpt-4", DisplayName: "GPT-4"},
			{Provider: "openai", Name: "gpt-3.5-turbo", DisplayName: "GPT-3.5 Turbo"},
			{Provider: "anthropic", Name: "claude-3-haiku", DisplayName: "Claude 3 Haiku"},
		},
		convs:  make(map[string]*model.ConversationDetail),
		health: "healthy",
	}
}

func (b *fakeBackend) addConversation(id, title string, msgs ...*model.Message) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.order = append(b.order, id)
	b.convs[id] = &model.ConversationDetail{ID: id, Title: title, Messages: msgs}
}

func (b *fakeBackend) requestLog() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.requests...)
}

func (b *fakeBackend) sentRequests() []model.ChatRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]model.ChatRequest(nil), b.sent...)
}

func (b *fakeBackend) uploadedFiles() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.uploads...)
}

func (b *fakeBackend) setHealth(status string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.health = status
}

func (b *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.requests = append(b.requests, r.Method+" "+r.URL.Path)

	path := r.URL.Path
	switch {
	case r.Method == http.MethodGet && path == "/health":
		writeJSON(w, 200, map[string]interface{}{
			"status":           b.health,
			"version":          "1.2.3",
			"models_available": map[string]bool{"openai": true, "anthropic": false},
		})

	case r.Method == http.MethodGet && path == "/chat/models":
		writeJSON(w, 200, b.models)

	case r.Method == http.MethodGet && path == "/chat/conversations":
		list := make([]model.ConversationSummary, 0, len(b.order))
		for _, id := range b.order {
			list = append(list, b.convs[id].Summary())
		}
		writeJSON(w, 200, list)

	case r.Method == http.MethodPost && path == "/chat/message":
		b.nextID++
		id := fmt.Sprintf("c%d", b.nextID)
		b.order = append([]string{id}, b.order...)
		b.convs[id] = &model.ConversationDetail{ID: id, Title: "New Chat"}
		b.reply(w, r, id)

	case r.Method == http.MethodPost && path == "/chat/upload":
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			writeJSON(w, 400, map[string]string{"detail": "bad form"})
			return
		}
		f, hdr, err := r.FormFile("file")
		if err != nil {
			writeJSON(w, 400, map[string]string{"detail": "missing file"})
			return
		}
		data, _ := io.ReadAll(f)
		b.uploads = append(b.uploads, hdr.Filename)
		writeJSON(w, 200, model.UploadResult{
			Filename: hdr.Filename,
			Type:     strings.TrimPrefix(filepath.Ext(hdr.Filename), "."),
			Content:  string(data),
			Size:     int64(len(data)),
		})

	case strings.HasPrefix(path, "/chat/conversations/"):
		rest := strings.TrimPrefix(path, "/chat/conversations/")
		id, suffix, _ := strings.Cut(rest, "/")
		conv, ok := b.convs[id]
		if !ok {
			writeJSON(w, 404, map[string]string{"detail": "Conversation not found"})
			return
		}
		switch {
		case r.Method == http.MethodGet && suffix == "":
			writeJSON(w, 200, conv)
		case r.Method == http.MethodDelete && suffix == "":
			delete(b.convs, id)
			for i, o := range b.order {
				if o == id {
					b.order = append(b.order[:i], b.order[i+1:]...)
					break
				}
			}
			writeJSON(w, 200, map[string]string{"message": "Conversation deleted"})
		case r.Method == http.MethodPost && suffix == "messages":
			b.reply(w, r, id)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}

	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

// reply appends the user message and a canned assistant reply. Caller holds mu.
func (b *fakeBackend) reply(w http.ResponseWriter, r *http.Request, id string) {
	var req model.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, 422, map[string]string{"detail": "bad body"})
		return
	}
	b.sent = append(b.sent, req)

	conv := b.convs[id]
	conv.Messages = append(conv.Messages,
		&model.Message{ID: fmt.Sprintf("u%d", len(conv.Messages)), Role: model.RoleUser, Content: req.Message,
			FileAttachment: model.AttachmentFlag(req.FileContent != nil)},
		&model.Message{ID: fmt.Sprintf("a%d", len(conv.Messages)), Role: model.RoleAssistant,
			Content: "echo: " + req.Message, ModelUsed: req.ModelName},
	)
	writeJSON(w, 200, model.ChatResponse{ConversationID: id, Message: conv.Messages[len(conv.Messages)-1]})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// newTestApp wires an App to a fake backend with buffered output.
func newTestApp(t *testing.T, backend *fakeBackend) (*App, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	server := httptest.NewServer(backend)
	t.Cleanup(server.Close)

	var stdout, stderr bytes.Buffer
	app := &App{
		Config:     config.Default(),
		ConfigPath: filepath.Join(t.TempDir(), "config.toml"),
		Client:     gateway.NewClientWithConfig(&gateway.ClientConfig{BaseURL: server.URL, Logger: logging.Discard()}),
		Logger:     logging.Discard(),
		Stdout:     &stdout,
		Stderr:     &stderr,
	}
	return app, &stdout, &stderr
}

// =============================================================================
// PARSER TESTS
// =============================================================================

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		argv     []string
		wantCmd  Command
		validate func(*testing.T, Args)
	}{
		{
			name:    "no args starts tui",
			argv:    nil,
			wantCmd: CmdTUI,
		},
		{
			name:    "global flags anywhere",
			argv:    []string{"models", "--url", "http://h:1", "--json", "-v", "--env=production"},
			wantCmd: CmdModels,
			validate: func(t *testing.T, a Args) {
				assert.Equal(t, "http://h:1", a.URL)
				assert.Equal(t, "production", a.Env)
				assert.True(t, a.JSON)
				assert.True(t, a.Verbose)
			},
		},
		{
			name:    "ask with flags",
			argv:    []string{"ask", "what", "is", "this", "--file", "a.txt", "-c", "c1", "--model=openai/gpt-4"},
			wantCmd: CmdAsk,
			validate: func(t *testing.T, a Args) {
				assert.Equal(t, "what is this", a.Query)
				assert.Equal(t, "a.txt", a.File)
				assert.Equal(t, "c1", a.ConversationID)
				assert.Equal(t, "openai/gpt-4", a.Model)
			},
		},
		{
			name:    "ls alias",
			argv:    []string{"ls"},
			wantCmd: CmdConversations,
		},
		{
			name:    "delete with confirm",
			argv:    []string{"rm", "--confirm", "c9"},
			wantCmd: CmdDelete,
			validate: func(t *testing.T, a Args) {
				assert.Equal(t, "c9", a.ConversationID)
				assert.True(t, a.Confirm)
			},
		},
		{
			name:    "config set joins value",
			argv:    []string{"config", "set", "backend.url", "http://x:2"},
			wantCmd: CmdConfig,
			validate: func(t *testing.T, a Args) {
				assert.Equal(t, "set", a.Subcommand)
				assert.Equal(t, "backend.url", a.ConfigKey)
				assert.Equal(t, "http://x:2", a.ConfigVal)
			},
		},
		{
			name:    "export with format and output",
			argv:    []string{"export", "c3", "--format", "json", "-o", "out"},
			wantCmd: CmdExport,
			validate: func(t *testing.T, a Args) {
				assert.Equal(t, "c3", a.ConversationID)
				assert.Equal(t, "json", a.Format)
				assert.Equal(t, "out", a.Output)
			},
		},
		{
			name:    "upload path",
			argv:    []string{"upload", "notes.pdf"},
			wantCmd: CmdUpload,
			validate: func(t *testing.T, a Args) {
				assert.Equal(t, "notes.pdf", a.File)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, args, err := Parse(tt.argv)
			require.NoError(t, err)
			assert.Equal(t, tt.wantCmd, cmd)
			if tt.validate != nil {
				tt.validate(t, args)
			}
		})
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		argv []string
	}{
		{"ask without question", []string{"ask"}},
		{"show without id", []string{"show"}},
		{"delete without id", []string{"delete", "--confirm"}},
		{"upload without path", []string{"upload"}},
		{"export without id", []string{"export", "--format", "md"}},
		{"flag without value", []string{"--url"}},
		{"unknown ask flag", []string{"ask", "--bogus", "hi"}},
		{"unknown command", []string{"frobnicate"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Parse(tt.argv)
			require.Error(t, err)
			assert.Equal(t, ExitUsageError, GetExitCode(err))
		})
	}
}

func TestParse_UnknownCommandSuggests(t *testing.T) {
	_, _, err := Parse([]string{"modles"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chatdesk models")
}

func TestSuggestCommand(t *testing.T) {
	assert.Equal(t, "health", SuggestCommand("helth"))
	assert.Equal(t, "upload", SuggestCommand("uplod"))
	assert.Equal(t, "", SuggestCommand("x"))
	assert.Equal(t, "", SuggestCommand("completely-different"))
}

// =============================================================================
// EXIT CODES
// =============================================================================

func TestGetExitCode(t *testing.T) {
	notFound := newFakeBackend()
	app, _, _ := newTestApp(t, notFound)
	_, err404 := app.Client.GetConversation(context.Background(), "missing")
	require.Error(t, err404)

	unreachable := gateway.NewClientWithConfig(&gateway.ClientConfig{BaseURL: "http://127.0.0.1:1", Logger: logging.Discard()})
	_, errDial := unreachable.ListModels(context.Background())
	require.Error(t, errDial)

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"validation", NewValidationError("x", "y", "bad"), ExitUsageError},
		{"unsupported type", attachment.ErrUnsupportedType, ExitUsageError},
		{"no model", session.ErrNoModelSelected, ExitUsageError},
		{"config", &ConfigError{Path: "p", Err: errors.New("boom")}, ExitConfigError},
		{"config validation", config.ValidateErrors{{Field: "a", Message: "b"}}, ExitConfigError},
		{"local not found", ErrNotFound("file", "x"), ExitNotFoundError},
		{"backend 404", err404, ExitNotFoundError},
		{"transport", errDial, ExitNetworkError},
		{"generic", errors.New("boom"), ExitGeneralError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetExitCode(tt.err))
		})
	}
}

func TestDisplayError_JSON(t *testing.T) {
	var buf bytes.Buffer
	DisplayError(&buf, "show", ErrNotFound("file", "x.txt"), true)

	var resp JSONResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Contains(t, *resp.Error, "x.txt")
	assert.Equal(t, "show", resp.Command)
}

// =============================================================================
// ONE-SHOT COMMANDS
// =============================================================================

func TestHandleModels_MarksDefault(t *testing.T) {
	app, stdout, _ := newTestApp(t, newFakeBackend())

	require.NoError(t, app.Run(context.Background(), CmdModels, Args{}))

	var marked string
	for _, line := range strings.Split(stdout.String(), "\n") {
		if strings.HasPrefix(line, "* ") {
			marked = line
		}
	}
	assert.Contains(t, marked, "openai/gpt-3.5-turbo")
}

func TestHandleModels_ConfiguredDefault(t *testing.T) {
	app, stdout, _ := newTestApp(t, newFakeBackend())
	app.Config.DefaultModel = "anthropic/claude-3-haiku"

	require.NoError(t, app.Run(context.Background(), CmdModels, Args{JSON: true}))

	var resp struct {
		Success bool          `json:"success"`
		Data    ModelListData `json:"data"`
	}
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Len(t, resp.Data.Models, 3)
	assert.Equal(t, "anthropic/claude-3-haiku", resp.Data.Default)
}

func TestHandleConversations(t *testing.T) {
	backend := newFakeBackend()
	app, stdout, _ := newTestApp(t, backend)

	require.NoError(t, app.Run(context.Background(), CmdConversations, Args{}))
	assert.Contains(t, stdout.String(), "No conversations yet")

	stdout.Reset()
	backend.addConversation("c1", "First")
	backend.addConversation("c2", "")
	require.NoError(t, app.Run(context.Background(), CmdConversations, Args{}))

	out := stdout.String()
	assert.Less(t, strings.Index(out, "First"), strings.Index(out, "New Chat"), "backend order is preserved")
}

func TestHandleShow(t *testing.T) {
	backend := newFakeBackend()
	backend.addConversation("c1", "Physics",
		&model.Message{Role: model.RoleUser, Content: "why is the sky blue", FileAttachment: true},
		&model.Message{Role: model.RoleAssistant, Content: "Rayleigh scattering", ModelUsed: "gpt-4"},
	)
	app, stdout, _ := newTestApp(t, backend)

	require.NoError(t, app.Run(context.Background(), CmdShow, Args{ConversationID: "c1"}))

	out := stdout.String()
	assert.Contains(t, out, "Physics")
	assert.Contains(t, out, "You · 📎")
	assert.Contains(t, out, "Assistant · gpt-4")
	assert.Contains(t, out, "Rayleigh scattering")
}

func TestHandleShow_NotFound(t *testing.T) {
	app, _, _ := newTestApp(t, newFakeBackend())

	err := app.Run(context.Background(), CmdShow, Args{ConversationID: "nope"})
	require.Error(t, err)
	assert.Equal(t, ExitNotFoundError, GetExitCode(err))
	assert.Equal(t, "Conversation not found", gateway.UserMessage(err, ""))
}

func TestHandleExport(t *testing.T) {
	backend := newFakeBackend()
	backend.addConversation("c1", "Physics",
		&model.Message{Role: model.RoleUser, Content: "why is the sky blue"},
		&model.Message{Role: model.RoleAssistant, Content: "Rayleigh scattering", ModelUsed: "gpt-4"},
	)

	t.Run("markdown file", func(t *testing.T) {
		app, stdout, _ := newTestApp(t, backend)
		dir := t.TempDir()

		require.NoError(t, app.Run(context.Background(), CmdExport, Args{ConversationID: "c1", Output: dir}))

		matches, err := filepath.Glob(filepath.Join(dir, "conversation_Physics_*.md"))
		require.NoError(t, err)
		require.Len(t, matches, 1)
		data, err := os.ReadFile(matches[0])
		require.NoError(t, err)
		assert.Contains(t, string(data), "Rayleigh scattering")
		assert.Contains(t, stdout.String(), "Exported to")
	})

	t.Run("json to stdout", func(t *testing.T) {
		app, stdout, _ := newTestApp(t, backend)

		require.NoError(t, app.Run(context.Background(), CmdExport, Args{ConversationID: "c1", Format: "json", Output: "-"}))

		var detail model.ConversationDetail
		require.NoError(t, json.Unmarshal(stdout.Bytes(), &detail))
		assert.Equal(t, "c1", detail.ID)
		assert.Len(t, detail.Messages, 2)
	})

	t.Run("unknown format", func(t *testing.T) {
		app, _, _ := newTestApp(t, backend)

		err := app.Run(context.Background(), CmdExport, Args{ConversationID: "c1", Format: "html"})
		require.Error(t, err)
		assert.Equal(t, ExitUsageError, GetExitCode(err))
	})

	t.Run("missing conversation", func(t *testing.T) {
		app, _, _ := newTestApp(t, backend)

		err := app.Run(context.Background(), CmdExport, Args{ConversationID: "nope", Output: t.TempDir()})
		require.Error(t, err)
		assert.Equal(t, ExitNotFoundError, GetExitCode(err))
	})
}

func TestHandleDelete(t *testing.T) {
	t.Run("requires confirm when not interactive", func(t *testing.T) {
		backend := newFakeBackend()
		backend.addConversation("c1", "One")
		app, _, _ := newTestApp(t, backend)

		err := app.Run(context.Background(), CmdDelete, Args{ConversationID: "c1"})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrConfirmationRequired)
		assert.NotContains(t, backend.requestLog(), "DELETE /chat/conversations/c1")
	})

	t.Run("interactive yes", func(t *testing.T) {
		backend := newFakeBackend()
		backend.addConversation("c1", "One")
		app, stdout, _ := newTestApp(t, backend)
		app.Interactive = true
		app.Stdin = strings.NewReader("y\n")

		require.NoError(t, app.Run(context.Background(), CmdDelete, Args{ConversationID: "c1"}))
		assert.Contains(t, backend.requestLog(), "DELETE /chat/conversations/c1")
		assert.Contains(t, stdout.String(), "Deleted conversation c1")
	})

	t.Run("interactive no", func(t *testing.T) {
		backend := newFakeBackend()
		backend.addConversation("c1", "One")
		app, stdout, _ := newTestApp(t, backend)
		app.Interactive = true
		app.Stdin = strings.NewReader("n\n")

		require.NoError(t, app.Run(context.Background(), CmdDelete, Args{ConversationID: "c1"}))
		assert.NotContains(t, backend.requestLog(), "DELETE /chat/conversations/c1")
		assert.Contains(t, stdout.String(), "Cancelled.")
	})

	t.Run("confirm flag", func(t *testing.T) {
		backend := newFakeBackend()
		backend.addConversation("c1", "One")
		app, _, _ := newTestApp(t, backend)

		require.NoError(t, app.Run(context.Background(), CmdDelete, Args{ConversationID: "c1", Confirm: true}))
		assert.Contains(t, backend.requestLog(), "DELETE /chat/conversations/c1")
	})
}

func TestHandleUpload(t *testing.T) {
	dir := t.TempDir()

	t.Run("rejected locally", func(t *testing.T) {
		backend := newFakeBackend()
		app, _, _ := newTestApp(t, backend)
		path := filepath.Join(dir, "image.png")
		require.NoError(t, os.WriteFile(path, []byte("png"), 0600))

		err := app.Run(context.Background(), CmdUpload, Args{File: path})
		assert.ErrorIs(t, err, attachment.ErrUnsupportedType)
		assert.Empty(t, backend.requestLog())
	})

	t.Run("missing file", func(t *testing.T) {
		app, _, _ := newTestApp(t, newFakeBackend())
		err := app.Run(context.Background(), CmdUpload, Args{File: filepath.Join(dir, "nope.txt")})
		assert.Equal(t, ExitNotFoundError, GetExitCode(err))
	})

	t.Run("uploads text", func(t *testing.T) {
		backend := newFakeBackend()
		app, stdout, _ := newTestApp(t, backend)
		path := filepath.Join(dir, "notes.txt")
		require.NoError(t, os.WriteFile(path, []byte("hello   upload\nworld"), 0600))

		require.NoError(t, app.Run(context.Background(), CmdUpload, Args{File: path}))
		assert.Equal(t, []string{"notes.txt"}, backend.uploadedFiles())
		out := stdout.String()
		assert.Contains(t, out, "notes.txt")
		assert.Contains(t, out, "Ready to send")
		assert.Contains(t, out, "hello upload world")
	})
}

func TestHandleHealth(t *testing.T) {
	backend := newFakeBackend()
	app, stdout, _ := newTestApp(t, backend)

	require.NoError(t, app.Run(context.Background(), CmdHealth, Args{}))
	out := stdout.String()
	assert.Contains(t, out, "[OK]")
	assert.Contains(t, out, "1.2.3")
	assert.Less(t, strings.Index(out, "anthropic"), strings.Index(out, "openai"))

	backend.setHealth("degraded")
	err := app.Run(context.Background(), CmdHealth, Args{})
	require.Error(t, err)
	assert.Equal(t, ExitGeneralError, GetExitCode(err))
}

func TestHandleConfig(t *testing.T) {
	app, stdout, _ := newTestApp(t, newFakeBackend())

	require.NoError(t, app.Run(context.Background(), CmdConfig, Args{Subcommand: "path"}))
	assert.Equal(t, app.ConfigPath+"\n", stdout.String())

	stdout.Reset()
	require.NoError(t, app.Run(context.Background(), CmdConfig, Args{
		Subcommand: "set", ConfigKey: "ui.sidebar_width", ConfigVal: "42",
	}))
	saved, err := config.ReadFile(app.ConfigPath)
	require.NoError(t, err)
	assert.Equal(t, 42, saved.UI.SidebarWidth)

	err = app.Run(context.Background(), CmdConfig, Args{
		Subcommand: "set", ConfigKey: "ui.sidebar_width", ConfigVal: "5",
	})
	require.Error(t, err)
	assert.Equal(t, ExitConfigError, GetExitCode(err))

	err = app.Run(context.Background(), CmdConfig, Args{Subcommand: "get", ConfigKey: "nope.key"})
	assert.Equal(t, ExitUsageError, GetExitCode(err))

	stdout.Reset()
	require.NoError(t, app.Run(context.Background(), CmdConfig, Args{Subcommand: "get", ConfigKey: "backend.url"}))
	assert.Equal(t, config.DefaultBackendURL+"\n", stdout.String())
}

func TestHandleVersion_JSON(t *testing.T) {
	app, stdout, _ := newTestApp(t, newFakeBackend())

	require.NoError(t, app.Run(context.Background(), CmdVersion, Args{JSON: true}))

	var resp struct {
		Data VersionData `json:"data"`
	}
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &resp))
	assert.Equal(t, Version, resp.Data.Version)
	assert.NotEmpty(t, resp.Data.GoVersion)
}

// =============================================================================
// ASK
// =============================================================================

func TestHandleAsk_Standalone(t *testing.T) {
	backend := newFakeBackend()
	app, stdout, stderr := newTestApp(t, backend)

	require.NoError(t, app.Run(context.Background(), CmdAsk, Args{Query: "hello there"}))

	assert.Equal(t, "echo: hello there\n", stdout.String())
	assert.Contains(t, stderr.String(), "conversation c1")

	require.Len(t, backend.sentRequests(), 1)
	assert.Nil(t, backend.sentRequests()[0].ConversationID)
	assert.Nil(t, backend.sentRequests()[0].FileContent)
	assert.Equal(t, "gpt-3.5-turbo", backend.sentRequests()[0].ModelName)
	assert.Contains(t, backend.requestLog(), "GET /chat/conversations/c1")
}

func TestHandleAsk_ExistingConversationWithFile(t *testing.T) {
	backend := newFakeBackend()
	backend.addConversation("c7", "Ongoing")
	app, _, _ := newTestApp(t, backend)

	path := filepath.Join(t.TempDir(), "doc.txt")
	require.NoError(t, os.WriteFile(path, []byte("document body"), 0600))

	require.NoError(t, app.Run(context.Background(), CmdAsk, Args{
		ConversationID: "c7",
		File:           path,
		Model:          "anthropic/claude-3-haiku",
		JSON:           true,
	}))

	require.Len(t, backend.sentRequests(), 1)
	sent := backend.sentRequests()[0]
	require.NotNil(t, sent.ConversationID)
	assert.Equal(t, "c7", *sent.ConversationID)
	require.NotNil(t, sent.FileContent)
	assert.Equal(t, "document body", *sent.FileContent)
	assert.Equal(t, defaultFileQuestion, sent.Message)
	assert.Equal(t, "anthropic", sent.ModelProvider)
	assert.Contains(t, backend.requestLog(), "POST /chat/conversations/c7/messages")
}

func TestHandleAsk_JSONOutput(t *testing.T) {
	app, stdout, _ := newTestApp(t, newFakeBackend())

	require.NoError(t, app.Run(context.Background(), CmdAsk, Args{Query: "ping", JSON: true}))

	var resp struct {
		Success bool    `json:"success"`
		Data    AskData `json:"data"`
	}
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "c1", resp.Data.ConversationID)
	assert.Equal(t, "openai/gpt-3.5-turbo", resp.Data.Model)
	require.NotNil(t, resp.Data.Reply)
	assert.Equal(t, "echo: ping", resp.Data.Reply.Content)
}

func TestHandleAsk_UnknownModel(t *testing.T) {
	backend := newFakeBackend()
	app, _, _ := newTestApp(t, backend)

	err := app.Run(context.Background(), CmdAsk, Args{Query: "hi", Model: "openai/gpt-9"})
	require.Error(t, err)
	assert.ErrorIs(t, err, session.ErrUnknownModel)
	assert.Equal(t, ExitUsageError, GetExitCode(err))
	assert.Empty(t, backend.sentRequests())
}

func TestHandleAsk_NoModels(t *testing.T) {
	backend := newFakeBackend()
	backend.models = nil
	app, _, _ := newTestApp(t, backend)

	err := app.Run(context.Background(), CmdAsk, Args{Query: "hi"})
	assert.ErrorIs(t, err, session.ErrNoModelSelected)
	assert.Empty(t, backend.sentRequests())
}

// =============================================================================
// CHAT REPL
// =============================================================================

func newTestChat(t *testing.T, backend *fakeBackend) (*chatSession, *bytes.Buffer) {
	t.Helper()
	app, stdout, _ := newTestApp(t, backend)
	ctrl := app.newController(Args{})
	require.NoError(t, ctrl.Initialize(context.Background()))
	return newChatSession(app, ctrl), stdout
}

func TestChat_SendAndFollowUp(t *testing.T) {
	backend := newFakeBackend()
	cs, stdout := newTestChat(t, backend)
	ctx := context.Background()

	more, err := cs.handleLine(ctx, "first question")
	require.NoError(t, err)
	assert.True(t, more)
	assert.Contains(t, stdout.String(), "echo: first question")

	_, err = cs.handleLine(ctx, "second question")
	require.NoError(t, err)

	require.Len(t, backend.sentRequests(), 2)
	assert.Nil(t, backend.sentRequests()[0].ConversationID)
	require.NotNil(t, backend.sentRequests()[1].ConversationID)
	assert.Equal(t, "c1", *backend.sentRequests()[1].ConversationID)
}

func TestChat_ListOpenNew(t *testing.T) {
	backend := newFakeBackend()
	backend.addConversation("c1", "Alpha", &model.Message{Role: model.RoleUser, Content: "alpha message"})
	backend.addConversation("c2", "Beta")
	cs, stdout := newTestChat(t, backend)
	ctx := context.Background()

	_, err := cs.handleLine(ctx, "/list")
	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "  1  Alpha")

	_, err = cs.handleLine(ctx, "/open 1")
	require.NoError(t, err)
	assert.Equal(t, "c1", cs.ctrl.Snapshot().ActiveConversationID)
	assert.Contains(t, stdout.String(), "alpha message")

	_, err = cs.handleLine(ctx, "/open 9")
	assert.Error(t, err)

	_, err = cs.handleLine(ctx, "/new")
	require.NoError(t, err)
	assert.False(t, cs.ctrl.Snapshot().HasActiveConversation())
}

func TestChat_ModelUploadDrop(t *testing.T) {
	backend := newFakeBackend()
	cs, stdout := newTestChat(t, backend)
	ctx := context.Background()

	_, err := cs.handleLine(ctx, "/model")
	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "* openai/gpt-3.5-turbo")

	_, err = cs.handleLine(ctx, "/model anthropic/claude-3-haiku")
	require.NoError(t, err)
	assert.Equal(t, "claude-3-haiku", cs.ctrl.Snapshot().SelectedModel.Name)

	_, err = cs.handleLine(ctx, "/model nope/nope")
	assert.ErrorIs(t, err, session.ErrUnknownModel)

	path := filepath.Join(t.TempDir(), "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("attached"), 0600))
	_, err = cs.handleLine(ctx, "/upload "+path)
	require.NoError(t, err)
	require.NotNil(t, cs.ctrl.Snapshot().StagedAttachment)
	assert.Contains(t, cs.prompt(), "📎")

	_, err = cs.handleLine(ctx, "/drop")
	require.NoError(t, err)
	assert.Nil(t, cs.ctrl.Snapshot().StagedAttachment)
}

func TestChat_DeleteAndQuit(t *testing.T) {
	backend := newFakeBackend()
	backend.addConversation("c1", "Gone soon")
	cs, _ := newTestChat(t, backend)
	ctx := context.Background()

	_, err := cs.handleLine(ctx, "/delete 1")
	require.NoError(t, err)
	assert.Empty(t, cs.ctrl.Snapshot().Conversations)

	_, err = cs.handleLine(ctx, "/bogus")
	assert.Error(t, err)

	more, err := cs.handleLine(ctx, "/quit")
	require.NoError(t, err)
	assert.False(t, more)

	more, _ = cs.handleLine(ctx, "exit")
	assert.False(t, more)
}
