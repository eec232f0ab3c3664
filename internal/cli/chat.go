// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Interactive chat command for chatdesk.
//
// Command: chat
// Short:   Line-based chat with history
//
// Interactive Commands (during chat):
//
//	/new                Start a new chat (next message creates it)
//	/list, /ls          List conversations with their numbers
//	/open N             Open conversation N from the last list
//	/model [P/N]        Show models or switch model
//	/upload PATH        Upload a document for the next message
//	/drop               Discard the staged document
//	/delete N           Delete conversation N
//	/reload             Refresh conversations and the open thread
//	/help, /h           Show available commands
//	/quit, /q           Exit chat
//	Ctrl+C              Cancel the current request
//	Ctrl+D              Exit chat
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/peterh/liner"

	"github.com/jeranaias/chatdesk/internal/config"
	"github.com/jeranaias/chatdesk/internal/gateway"
	"github.com/jeranaias/chatdesk/internal/model"
	"github.com/jeranaias/chatdesk/internal/session"
	"github.com/jeranaias/chatdesk/internal/util"
)

// =============================================================================
// INPUT HISTORY
// =============================================================================

// ChatCLI provides input history and line editing for interactive chat.
type ChatCLI struct {
	line        *liner.State
	historyFile string
}

// NewChatCLI creates a ChatCLI and loads the history file, if any.
func NewChatCLI(historyFile string) *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	c := &ChatCLI{line: line, historyFile: historyFile}
	c.LoadHistory()
	return c
}

// LoadHistory loads command history from file.
func (c *ChatCLI) LoadHistory() {
	if c.historyFile == "" {
		return
	}
	if f, err := os.Open(c.historyFile); err == nil {
		c.line.ReadHistory(f)
		f.Close()
	}
}

// ReadInput reads a line of input with the given prompt.
func (c *ChatCLI) ReadInput(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}
	return input, nil
}

// SaveHistory persists command history with 0600 permissions.
func (c *ChatCLI) SaveHistory() {
	if c.historyFile == "" {
		return
	}
	var buf strings.Builder
	if _, err := c.line.WriteHistory(&buf); err != nil {
		return
	}
	_ = util.AtomicWriteFile(c.historyFile, []byte(buf.String()), 0600)
}

// Close saves history and closes the liner.
func (c *ChatCLI) Close() {
	c.SaveHistory()
	c.line.Close()
}

// =============================================================================
// CHAT SESSION
// =============================================================================

// chatSession holds REPL state around a session controller.
type chatSession struct {
	app  *App
	ctrl *session.Controller
	out  io.Writer

	// listed is the conversation list as last printed, for /open N
	listed []model.ConversationSummary
}

func newChatSession(app *App, ctrl *session.Controller) *chatSession {
	return &chatSession{app: app, ctrl: ctrl, out: app.Stdout}
}

// HandleChat starts the interactive REPL.
func (a *App) HandleChat(ctx context.Context, args Args) error {
	if err := RequiresTTY("chat"); err != nil {
		return err
	}

	ctrl := a.newController(args)
	cs := newChatSession(a, ctrl)

	if err := ctrl.Initialize(ctx); err != nil {
		fmt.Fprintf(a.Stderr, "%s %s\n", WarningStyle.Render("[WARN]"), describeError(err))
	}
	if !args.Quiet {
		cs.printWelcome()
	}

	historyFile, err := config.HistoryPath()
	if err != nil {
		historyFile = ""
	}
	input := NewChatCLI(historyFile)
	defer input.Close()

	for {
		line, err := input.ReadInput(promptStyle.Render(cs.prompt()))
		if err != nil {
			// Ctrl+C at the prompt, Ctrl+D or a closed stdin all exit
			fmt.Fprintln(cs.out)
			return nil
		}

		more, err := cs.runWithInterrupt(ctx, line)
		if err != nil {
			fmt.Fprintf(a.Stderr, "%s %s\n", ErrorStyle.Render("[Error]"), describeError(err))
		}
		if !more {
			return nil
		}
	}
}

// runWithInterrupt handles one line with Ctrl+C cancelling the request.
func (cs *chatSession) runWithInterrupt(ctx context.Context, line string) (bool, error) {
	reqCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()
	more, err := cs.handleLine(reqCtx, line)
	if errors.Is(reqCtx.Err(), context.Canceled) && ctx.Err() == nil {
		fmt.Fprintln(cs.out, WarningStyle.Render("[Cancelled]"))
		return more, nil
	}
	return more, err
}

func (cs *chatSession) prompt() string {
	snap := cs.ctrl.Snapshot()
	name := "no model"
	if snap.SelectedModel != nil {
		name = snap.SelectedModel.Name
	}
	if snap.StagedAttachment != nil {
		return fmt.Sprintf("chatdesk (%s) 📎> ", name)
	}
	return fmt.Sprintf("chatdesk (%s)> ", name)
}

func (cs *chatSession) printWelcome() {
	snap := cs.ctrl.Snapshot()
	fmt.Fprintln(cs.out, TitleStyle.Render("chatdesk")+" "+DimStyle.Render(cs.app.Client.BaseURL()))
	if snap.SelectedModel != nil {
		fmt.Fprintf(cs.out, "%s%s\n", RenderLabel("Model"), snap.SelectedModel.Label())
	} else {
		fmt.Fprintf(cs.out, "%s%s\n", RenderLabel("Model"), WarningStyle.Render("none available"))
	}
	fmt.Fprintf(cs.out, "%s%d\n", RenderLabel("Conversations"), len(snap.Conversations))
	fmt.Fprintln(cs.out, DimStyle.Render("Type a message, or /help for commands."))
	fmt.Fprintln(cs.out)
}

// handleLine processes one line of input. It returns false when the user
// asked to quit.
func (cs *chatSession) handleLine(ctx context.Context, line string) (bool, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return true, nil
	}
	if strings.EqualFold(line, "exit") || strings.EqualFold(line, "quit") {
		return false, nil
	}
	if strings.HasPrefix(line, "/") {
		return cs.handleSlashCommand(ctx, line)
	}
	return true, cs.send(ctx, line)
}

// send sends a message and prints the reply.
func (cs *chatSession) send(ctx context.Context, text string) error {
	err := cs.ctrl.SendMessage(ctx, text)
	if err != nil {
		if errors.Is(err, session.ErrNoModelSelected) {
			return errors.New("please select a model first (/model)")
		}
		return err
	}

	snap := cs.ctrl.Snapshot()
	if snap.ActiveConversation == nil {
		return nil
	}
	if reply := snap.ActiveConversation.GetLastAssistantMessage(); reply != nil {
		fmt.Fprintln(cs.out)
		cs.app.printMessage(reply)
	}
	return nil
}

// =============================================================================
// SLASH COMMANDS
// =============================================================================

func (cs *chatSession) handleSlashCommand(ctx context.Context, line string) (bool, error) {
	fields := strings.Fields(line)
	cmd := strings.ToLower(fields[0])
	arg := strings.TrimSpace(strings.TrimPrefix(line, fields[0]))

	switch cmd {
	case "/quit", "/q", "/exit":
		return false, nil

	case "/help", "/h", "/?":
		cs.printHelp()

	case "/new", "/n":
		cs.ctrl.NewChat()
		fmt.Fprintln(cs.out, DimStyle.Render("New chat. Your next message starts a conversation."))

	case "/list", "/ls":
		return true, cs.listConversations(ctx)

	case "/open", "/o":
		conv, err := cs.pick(arg)
		if err != nil {
			return true, err
		}
		if err := cs.ctrl.SelectConversation(ctx, conv.ID); err != nil {
			return true, err
		}
		cs.printThread()

	case "/delete", "/del":
		conv, err := cs.pick(arg)
		if err != nil {
			return true, err
		}
		if err := cs.ctrl.DeleteConversation(ctx, conv.ID); err != nil {
			return true, err
		}
		cs.listed = nil
		fmt.Fprintf(cs.out, "%s Deleted %q\n", SuccessStyle.Render("[OK]"), conv.DisplayTitle())

	case "/model", "/m":
		return true, cs.model(arg)

	case "/upload", "/u":
		return true, cs.upload(ctx, arg)

	case "/drop":
		cs.ctrl.DiscardAttachment()
		fmt.Fprintln(cs.out, DimStyle.Render("Attachment discarded"))

	case "/reload", "/r":
		if err := cs.ctrl.Reload(ctx); err != nil {
			return true, err
		}
		fmt.Fprintln(cs.out, DimStyle.Render("Reloaded"))

	default:
		return true, fmt.Errorf("unknown command %s (try /help)", cmd)
	}
	return true, nil
}

func (cs *chatSession) printHelp() {
	rows := [][2]string{
		{"/new", "Start a new chat"},
		{"/list", "List conversations"},
		{"/open N", "Open conversation N"},
		{"/delete N", "Delete conversation N"},
		{"/model [P/N]", "Show or switch model"},
		{"/upload PATH", "Attach a .pdf or .txt to the next message"},
		{"/drop", "Discard the attachment"},
		{"/reload", "Refresh from the backend"},
		{"/quit", "Exit"},
	}
	for _, r := range rows {
		fmt.Fprintf(cs.out, "  %s %s\n", util.PadRight(r[0], 14), DimStyle.Render(r[1]))
	}
}

func (cs *chatSession) listConversations(ctx context.Context) error {
	if err := cs.ctrl.Reload(ctx); err != nil && len(cs.ctrl.Snapshot().Conversations) == 0 {
		return err
	}
	snap := cs.ctrl.Snapshot()
	cs.listed = snap.Conversations
	if len(cs.listed) == 0 {
		fmt.Fprintln(cs.out, DimStyle.Render("No conversations yet"))
		return nil
	}
	for i, c := range cs.listed {
		marker := "  "
		if c.ID == snap.ActiveConversationID {
			marker = HighlightStyle.Render("* ")
		}
		fmt.Fprintf(cs.out, "%s%3d  %s\n", marker, i+1, util.TruncateWidth(c.DisplayTitle(), 60))
	}
	return nil
}

// pick resolves a 1-based index into the last printed list.
func (cs *chatSession) pick(arg string) (model.ConversationSummary, error) {
	if len(cs.listed) == 0 {
		cs.listed = cs.ctrl.Snapshot().Conversations
	}
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 || n > len(cs.listed) {
		return model.ConversationSummary{}, fmt.Errorf("expected a number from /list, got %q", arg)
	}
	return cs.listed[n-1], nil
}

func (cs *chatSession) printThread() {
	snap := cs.ctrl.Snapshot()
	fmt.Fprintln(cs.out, TitleStyle.Render(snap.ActiveTitle()))
	msgs := snap.Messages()
	if len(msgs) == 0 {
		fmt.Fprintln(cs.out, DimStyle.Render("No messages yet"))
		return
	}
	for _, m := range msgs {
		cs.app.printMessage(m)
	}
}

func (cs *chatSession) model(arg string) error {
	snap := cs.ctrl.Snapshot()
	if arg == "" {
		if len(snap.Models) == 0 {
			fmt.Fprintln(cs.out, DimStyle.Render("No models available"))
			return nil
		}
		for _, m := range snap.Models {
			marker := "  "
			if snap.SelectedModel != nil && snap.SelectedModel.Same(m) {
				marker = HighlightStyle.Render("* ")
			}
			fmt.Fprintf(cs.out, "%s%s %s\n", marker, util.PadRight(m.Key(), 36), DimStyle.Render(m.Label()))
		}
		return nil
	}

	provider, name, err := model.ParseModelKey(arg)
	if err != nil {
		return err
	}
	if err := cs.ctrl.SelectModel(provider, name); err != nil {
		return fmt.Errorf("%w: %s", err, arg)
	}
	fmt.Fprintf(cs.out, "Model: %s\n", arg)
	return nil
}

func (cs *chatSession) upload(ctx context.Context, path string) error {
	if path == "" {
		return ErrMissingArgument("path", "/upload ./notes.txt")
	}
	f, name, err := openUpload(path)
	if err != nil {
		return err
	}
	defer f.Close()

	staged, err := cs.ctrl.UploadAndStage(ctx, f, name)
	if err != nil {
		return errors.New(gateway.UserMessage(err, "Failed to upload file"))
	}
	fmt.Fprintln(cs.out, staged.Label())
	return nil
}
