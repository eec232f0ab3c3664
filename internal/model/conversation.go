// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures exchanged with the chat backend.
package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// DefaultConversationTitle is the title the backend gives new conversations.
const DefaultConversationTitle = "New Chat"

// =============================================================================
// TIMESTAMP
// =============================================================================

// Timestamp is a time.Time that tolerates the backend's datetime encodings.
// The backend emits ISO-8601 values that may lack a zone designator; those
// are interpreted as UTC.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("timestamp: unrecognized format %q", s)
}

// MarshalJSON implements json.Marshaler.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.UTC().Format(time.RFC3339Nano))
}

// =============================================================================
// CONVERSATION TYPES
// =============================================================================

// ConversationSummary is one entry of the conversation list.
// The list order is defined by the backend and never re-sorted.
type ConversationSummary struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	UpdatedAt     Timestamp `json:"updated_at"`
	CreatedAt     Timestamp `json:"created_at"`
	ModelProvider string    `json:"model_provider,omitempty"`
	ModelName     string    `json:"model_name,omitempty"`
}

// DisplayTitle returns the title, or the default title when blank.
func (c ConversationSummary) DisplayTitle() string {
	if c.Title == "" {
		return DefaultConversationTitle
	}
	return c.Title
}

// ConversationDetail is a conversation with its full message thread.
type ConversationDetail struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Messages      []*Message `json:"messages"`
	CreatedAt     Timestamp  `json:"created_at"`
	UpdatedAt     Timestamp  `json:"updated_at"`
	ModelProvider string     `json:"model_provider,omitempty"`
	ModelName     string     `json:"model_name,omitempty"`
}

// MessageCount returns the number of messages.
func (c *ConversationDetail) MessageCount() int {
	if c == nil {
		return 0
	}
	return len(c.Messages)
}

// IsEmpty returns true if there are no messages.
func (c *ConversationDetail) IsEmpty() bool {
	return c.MessageCount() == 0
}

// GetLastMessage returns the most recent message, or nil if empty.
func (c *ConversationDetail) GetLastMessage() *Message {
	if c.IsEmpty() {
		return nil
	}
	return c.Messages[len(c.Messages)-1]
}

// GetLastAssistantMessage returns the most recent assistant message.
func (c *ConversationDetail) GetLastAssistantMessage() *Message {
	if c == nil {
		return nil
	}
	for i := len(c.Messages) - 1; i >= 0; i-- {
		if c.Messages[i].Role == RoleAssistant {
			return c.Messages[i]
		}
	}
	return nil
}

// Summary reduces the detail to its list entry.
func (c *ConversationDetail) Summary() ConversationSummary {
	return ConversationSummary{
		ID:            c.ID,
		Title:         c.Title,
		UpdatedAt:     c.UpdatedAt,
		CreatedAt:     c.CreatedAt,
		ModelProvider: c.ModelProvider,
		ModelName:     c.ModelName,
	}
}

// Ack is the backend's acknowledgement for operations without a payload.
type Ack struct {
	Message string `json:"message"`
}
