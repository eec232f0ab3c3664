// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/jeranaias/chatdesk/internal/attachment"
	"github.com/jeranaias/chatdesk/internal/gateway"
	"github.com/jeranaias/chatdesk/internal/model"
)

// =============================================================================
// SEND
// =============================================================================

// SendMessage sends text with the selected model and the staged
// attachment, if any. Without an active conversation the backend creates
// one and it becomes active. On success the staged attachment is cleared
// and both the list and the thread are reloaded from the backend; nothing
// is appended locally.
//
// If the user switched conversations while the send ran, the newer
// selection wins: only the list is reloaded and the active conversation,
// its thread and its staging are left alone.
func (c *Controller) SendMessage(ctx context.Context, text string) error {
	text = strings.TrimSpace(norm.NFC.String(text))

	var (
		selected    model.ModelDescriptor
		activeID    string
		startEpoch  uint64
		fileContent *string
		precondErr  error
	)
	c.update(func(s *State) {
		switch {
		case s.SelectedModel == nil:
			precondErr = ErrNoModelSelected
			s.LastError = msgNoModel
			return
		case text == "":
			precondErr = ErrEmptyMessage
			return
		case s.InFlight:
			precondErr = ErrSendInFlight
			return
		}
		selected = *s.SelectedModel
		activeID = s.ActiveConversationID
		startEpoch = c.epoch
		if staged, ok := c.staging.Current(); ok {
			content := staged.Content
			fileContent = &content
		}
		s.InFlight = true
		s.LastError = ""
	})
	if precondErr != nil {
		return precondErr
	}

	log := c.logger.With("provider", selected.Provider, "model", selected.Name)
	log.Debug("sending message", "conversation_id", activeID, "attachment", fileContent != nil)

	var resp *model.ChatResponse
	var err error
	if activeID != "" {
		resp, err = c.gw.SendMessage(ctx, activeID, text, selected.Provider, selected.Name, fileContent)
	} else {
		resp, err = c.gw.SendStandaloneMessage(ctx, text, selected.Provider, selected.Name, fileContent)
	}
	if err != nil {
		c.update(func(s *State) {
			s.InFlight = false
			s.LastError = gateway.UserMessage(err, msgSend)
		})
		log.Warn("send failed", "conversation_id", activeID, "error", err)
		return err
	}

	convID := resp.ConversationID
	if convID == "" {
		convID = activeID
	}

	// A standalone reply's conversation becomes active, unless the user
	// selected another conversation or started a new chat meanwhile. Then
	// the thread is reloaded only if it is still the one the reply went to.
	var (
		epoch    uint64
		movedOn  bool
		detailID = convID
	)
	c.update(func(s *State) {
		if c.epoch != startEpoch {
			movedOn = true
			epoch = c.epoch
			if s.ActiveConversationID != convID {
				detailID = ""
			}
			return
		}
		c.staging.Clear()
		if s.ActiveConversationID != convID {
			c.epoch++
			s.ActiveConversationID = convID
			s.ActiveConversation = nil
		}
		epoch = c.epoch
	})
	log.Info("message sent", "conversation_id", convID, "promoted", activeID == "" && !movedOn)
	if movedOn {
		log.Debug("selection changed during send", "conversation_id", convID, "reload_thread", detailID != "")
	}

	refreshErr := c.refresh(ctx, epoch, detailID)
	c.update(func(s *State) {
		s.InFlight = false
	})
	if refreshErr != nil {
		return fmt.Errorf("%w: %w", ErrRefreshFailed, refreshErr)
	}
	return nil
}

// =============================================================================
// ATTACHMENTS
// =============================================================================

// UploadAndStage uploads a document and stages the extracted text for the
// next send. On failure the current staging is left untouched. An upload
// that finishes after the active conversation changed is not staged and
// ErrUploadDiscarded is returned.
func (c *Controller) UploadAndStage(ctx context.Context, r io.Reader, filename string) (*attachment.StagedAttachment, error) {
	var epoch uint64
	c.update(func(s *State) {
		s.Uploading = true
		s.LastError = ""
		epoch = c.epoch
	})

	result, err := c.gw.UploadFile(ctx, r, filename)
	if err != nil {
		c.update(func(s *State) {
			s.Uploading = false
			s.LastError = gateway.UserMessage(err, msgUpload)
		})
		c.logger.Warn("upload failed", "filename", filename, "error", err)
		return nil, err
	}

	staged := attachment.FromUpload(result)
	var stale bool
	c.update(func(s *State) {
		s.Uploading = false
		if c.epoch != epoch {
			stale = true
			return
		}
		c.staging.Stage(staged)
	})
	if stale {
		c.logger.Debug("dropping upload for a conversation no longer active", "filename", staged.Filename)
		return nil, ErrUploadDiscarded
	}
	c.logger.Info("attachment staged", "filename", staged.Filename, "size", staged.Size)
	return &staged, nil
}

// DiscardAttachment drops the staged attachment without sending it.
func (c *Controller) DiscardAttachment() {
	c.update(func(s *State) {
		c.staging.Clear()
	})
}
