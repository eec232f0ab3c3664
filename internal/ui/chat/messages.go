// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// messages.go - Bubble Tea messages and the commands that produce them.
//
// Every controller call runs inside a tea.Cmd so the event loop never
// blocks on the backend. Each command reports back with an opResultMsg
// carrying the snapshot taken when the call returned.
package chat

import (
	"context"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/chatdesk/internal/config"
	"github.com/jeranaias/chatdesk/internal/export"
	"github.com/jeranaias/chatdesk/internal/model"
	"github.com/jeranaias/chatdesk/internal/session"
)

// =============================================================================
// PUBLIC MESSAGES
// =============================================================================

// StateMsg delivers a published controller snapshot. Snapshots older
// than the one already shown are ignored.
type StateMsg struct {
	State session.State
}

// ConfigReloadedMsg is sent when the config file changed on disk.
type ConfigReloadedMsg struct {
	Config *config.Config
}

// Bridge forwards controller snapshots to send, usually tea.Program.Send.
// Program.Send blocks until the event loop reads the message, and
// publishes can happen on the loop itself, so each send runs in its own
// goroutine. Version ordering in Update drops any that arrive late.
func Bridge(ctrl *session.Controller, send func(tea.Msg)) (cancel func()) {
	return ctrl.Subscribe(func(s session.State) {
		go send(StateMsg{State: s})
	})
}

// =============================================================================
// OPERATION RESULTS
// =============================================================================

// op names the controller call behind an opResultMsg.
type op int

const (
	opInit op = iota
	opSelectConversation
	opNewChat
	opSelectModel
	opDelete
	opReload
	opDismiss
	opSend
	opUpload
	opDiscard
)

func (o op) String() string {
	switch o {
	case opInit:
		return "init"
	case opSelectConversation:
		return "select-conversation"
	case opNewChat:
		return "new-chat"
	case opSelectModel:
		return "select-model"
	case opDelete:
		return "delete"
	case opReload:
		return "reload"
	case opDismiss:
		return "dismiss"
	case opSend:
		return "send"
	case opUpload:
		return "upload"
	case opDiscard:
		return "discard"
	default:
		return "unknown"
	}
}

// opResultMsg reports a finished controller call.
type opResultMsg struct {
	op    op
	state session.State
	err   error

	// text is the message body for sends, restored to the composer on failure
	text string

	// subject is the filename for uploads or the conversation title for deletes
	subject string
}

// =============================================================================
// COMMAND CREATORS
// =============================================================================

func result(ctrl *session.Controller, o op, err error) opResultMsg {
	return opResultMsg{op: o, state: ctrl.Snapshot(), err: err}
}

// initCmd loads the model and conversation lists.
func initCmd(ctx context.Context, ctrl *session.Controller) tea.Cmd {
	return func() tea.Msg {
		return result(ctrl, opInit, ctrl.Initialize(ctx))
	}
}

// selectConversationCmd makes id active and fetches its thread.
func selectConversationCmd(ctx context.Context, ctrl *session.Controller, id string) tea.Cmd {
	return func() tea.Msg {
		return result(ctrl, opSelectConversation, ctrl.SelectConversation(ctx, id))
	}
}

// newChatCmd clears the active conversation.
func newChatCmd(ctrl *session.Controller) tea.Cmd {
	return func() tea.Msg {
		ctrl.NewChat()
		return result(ctrl, opNewChat, nil)
	}
}

// selectModelCmd picks the model used for the next send.
func selectModelCmd(ctrl *session.Controller, provider, name string) tea.Cmd {
	return func() tea.Msg {
		return result(ctrl, opSelectModel, ctrl.SelectModel(provider, name))
	}
}

// deleteCmd deletes a conversation and reloads the list.
func deleteCmd(ctx context.Context, ctrl *session.Controller, id, title string) tea.Cmd {
	return func() tea.Msg {
		msg := result(ctrl, opDelete, ctrl.DeleteConversation(ctx, id))
		msg.subject = title
		return msg
	}
}

// reloadCmd refreshes the list and the active thread.
func reloadCmd(ctx context.Context, ctrl *session.Controller) tea.Cmd {
	return func() tea.Msg {
		return result(ctrl, opReload, ctrl.Reload(ctx))
	}
}

// dismissCmd clears the error banner.
func dismissCmd(ctrl *session.Controller) tea.Cmd {
	return func() tea.Msg {
		ctrl.DismissError()
		return result(ctrl, opDismiss, nil)
	}
}

// sendCmd sends text with the selected model and staged attachment.
func sendCmd(ctx context.Context, ctrl *session.Controller, text string) tea.Cmd {
	return func() tea.Msg {
		msg := result(ctrl, opSend, ctrl.SendMessage(ctx, text))
		msg.text = text
		return msg
	}
}

// uploadCmd opens path and stages its extracted text.
func uploadCmd(ctx context.Context, ctrl *session.Controller, path string) tea.Cmd {
	return func() tea.Msg {
		name := filepath.Base(path)
		f, err := os.Open(path)
		if err != nil {
			msg := result(ctrl, opUpload, err)
			msg.subject = name
			return msg
		}
		defer f.Close()

		_, err = ctrl.UploadAndStage(ctx, f, name)
		msg := result(ctrl, opUpload, err)
		msg.subject = name
		return msg
	}
}

// discardCmd drops the staged attachment.
func discardCmd(ctrl *session.Controller) tea.Cmd {
	return func() tea.Msg {
		ctrl.DiscardAttachment()
		return result(ctrl, opDiscard, nil)
	}
}

// exportResultMsg reports a finished export.
type exportResultMsg struct {
	path string
	err  error
}

// exportCmd writes conv as Markdown under dir.
func exportCmd(conv *model.ConversationDetail, dir string) tea.Cmd {
	return func() tea.Msg {
		opts := export.DefaultOptions()
		opts.OutputDir = dir
		path, err := export.ExportToFile(conv, export.NewMarkdownExporter(opts), opts)
		return exportResultMsg{path: path, err: err}
	}
}
