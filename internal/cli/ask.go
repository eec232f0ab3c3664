// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// ask.go - One-shot question command for chatdesk.
//
// Command: ask
// Short:   Send one message and print the reply
//
// Examples:
//
//	chatdesk ask "What is a monad?"
//	chatdesk ask "Summarize this" --file report.pdf
//	chatdesk ask "And the second part?" --conversation 5f1c...
//	chatdesk ask --model anthropic/claude-3-haiku "Hello"
//
// Without --conversation the message is sent standalone and the backend
// creates a new conversation, whose id is printed after the reply.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/jeranaias/chatdesk/internal/model"
	"github.com/jeranaias/chatdesk/internal/session"
)

// defaultFileQuestion is sent when ask is given a file but no question.
const defaultFileQuestion = "Please summarize the attached document."

// HandleAsk runs the ask command through a session controller so it
// follows the same send and reload sequence as the interactive clients.
func (a *App) HandleAsk(ctx context.Context, args Args) error {
	ctrl := a.newController(args)

	if err := ctrl.Initialize(ctx); err != nil {
		if len(ctrl.Snapshot().Models) == 0 {
			return NewCommandError("ask", "could not load models", err)
		}
		a.Logger.Warn("initialize incomplete", "error", err)
	}

	if args.Model != "" {
		provider, name, err := model.ParseModelKey(args.Model)
		if err != nil {
			return NewValidationErrorWithExample("model", args.Model, "expected provider/name", "openai/gpt-4")
		}
		if err := ctrl.SelectModel(provider, name); err != nil {
			return fmt.Errorf("%w: %s (see chatdesk models)", err, args.Model)
		}
	}

	if args.ConversationID != "" {
		if err := ctrl.SelectConversation(ctx, args.ConversationID); err != nil {
			return err
		}
	}

	if args.File != "" {
		f, name, err := openUpload(args.File)
		if err != nil {
			return err
		}
		staged, err := ctrl.UploadAndStage(ctx, f, name)
		f.Close()
		if err != nil {
			return err
		}
		a.note(args, "%s", DimStyle.Render(staged.Label()))
	}

	query := args.Query
	if query == "" && args.File != "" {
		query = defaultFileQuestion
	}

	sendErr := ctrl.SendMessage(ctx, query)
	snap := ctrl.Snapshot()
	if sendErr != nil {
		if errors.Is(sendErr, session.ErrRefreshFailed) && snap.ActiveConversationID != "" {
			a.note(args, "%s message sent to conversation %s but the reply could not be loaded",
				WarningStyle.Render("[WARN]"), snap.ActiveConversationID)
		}
		return sendErr
	}

	var reply *model.Message
	if snap.ActiveConversation != nil {
		reply = snap.ActiveConversation.GetLastAssistantMessage()
	}
	modelKey := ""
	if snap.SelectedModel != nil {
		modelKey = snap.SelectedModel.Key()
	}

	if args.JSON {
		return NewJSONResponse("ask", AskData{
			ConversationID: snap.ActiveConversationID,
			Model:          modelKey,
			Reply:          reply,
		}).Print(a.Stdout)
	}

	if reply == nil {
		a.note(args, "No reply in conversation %s", snap.ActiveConversationID)
		return nil
	}
	fmt.Fprintln(a.Stdout, a.renderMarkdown(reply.Content))
	if !args.Quiet {
		fmt.Fprintln(a.Stderr)
		fmt.Fprintln(a.Stderr, DimStyle.Render(fmt.Sprintf("%s · conversation %s", modelKey, snap.ActiveConversationID)))
	}
	return nil
}
