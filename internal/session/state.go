// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"github.com/jeranaias/chatdesk/internal/attachment"
	"github.com/jeranaias/chatdesk/internal/model"
)

// =============================================================================
// STATE SNAPSHOT
// =============================================================================

// State is a point-in-time copy of the session. Snapshots share message
// pointers with the controller; messages are never mutated after decode.
type State struct {
	// Version increases with every published mutation
	Version uint64

	Models        []model.ModelDescriptor
	Conversations []model.ConversationSummary

	// ActiveConversationID is empty when no conversation is selected
	ActiveConversationID string

	// ActiveConversation is nil until the detail for ActiveConversationID
	// has loaded. When set, its ID equals ActiveConversationID.
	ActiveConversation *model.ConversationDetail

	SelectedModel    *model.ModelDescriptor
	StagedAttachment *attachment.StagedAttachment

	// InFlight is true while a send and its reload are running
	InFlight bool

	// Uploading is true while a document upload is running
	Uploading bool

	ConversationsLoading bool
	ModelsLoading        bool
	DetailLoading        bool

	// LastError is the most recent user-facing failure, empty when none
	LastError string
}

// HasActiveConversation reports whether a conversation is selected.
func (s State) HasActiveConversation() bool {
	return s.ActiveConversationID != ""
}

// CanSend reports whether the input should accept a send.
func (s State) CanSend() bool {
	return s.SelectedModel != nil && !s.InFlight
}

// CanUpload reports whether the upload action should be offered.
func (s State) CanUpload() bool {
	return !s.InFlight && !s.Uploading
}

// Messages returns the active thread, or nil.
func (s State) Messages() []*model.Message {
	if s.ActiveConversation == nil {
		return nil
	}
	return s.ActiveConversation.Messages
}

// ActiveTitle returns the title shown above the thread.
func (s State) ActiveTitle() string {
	if s.ActiveConversation != nil && s.ActiveConversation.Title != "" {
		return s.ActiveConversation.Title
	}
	for _, c := range s.Conversations {
		if c.ID == s.ActiveConversationID {
			return c.DisplayTitle()
		}
	}
	return model.DefaultConversationTitle
}

// clone copies the slices and pointed-to structs so the snapshot is not
// affected by later controller mutations.
func (s State) clone() State {
	out := s
	if s.Models != nil {
		out.Models = append([]model.ModelDescriptor(nil), s.Models...)
	}
	if s.Conversations != nil {
		out.Conversations = append([]model.ConversationSummary(nil), s.Conversations...)
	}
	if s.ActiveConversation != nil {
		detail := *s.ActiveConversation
		detail.Messages = append([]*model.Message(nil), s.ActiveConversation.Messages...)
		out.ActiveConversation = &detail
	}
	if s.SelectedModel != nil {
		selected := *s.SelectedModel
		out.SelectedModel = &selected
	}
	if s.StagedAttachment != nil {
		staged := *s.StagedAttachment
		out.StagedAttachment = &staged
	}
	return out
}
