// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures exchanged with the chat backend.
package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Assistant"
	case RoleSystem:
		return "System"
	default:
		return string(r)
	}
}

// =============================================================================
// ATTACHMENT FLAG
// =============================================================================

// AttachmentFlag records whether a message was sent with a file.
// The backend echoes the attached content as a string; older builds send
// a boolean. Both decode to the same flag.
type AttachmentFlag bool

// UnmarshalJSON implements json.Unmarshaler.
func (f *AttachmentFlag) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*f = false
	case bytes.Equal(data, []byte("true")):
		*f = true
	case bytes.Equal(data, []byte("false")):
		*f = false
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("file_attachment: %w", err)
		}
		*f = s != ""
	default:
		return fmt.Errorf("file_attachment: unexpected value %s", data)
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (f AttachmentFlag) MarshalJSON() ([]byte, error) {
	return json.Marshal(bool(f))
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message represents a single message in a conversation.
type Message struct {
	ID             string         `json:"id"`
	Role           Role           `json:"role"`
	Content        string         `json:"content"`
	Timestamp      Timestamp      `json:"timestamp"`
	FileAttachment AttachmentFlag `json:"file_attachment,omitempty"`
	ModelUsed      string         `json:"model_used,omitempty"`
}

// HasAttachment reports whether the message carried a file.
func (m *Message) HasAttachment() bool {
	return bool(m.FileAttachment)
}

// Preview returns a truncated preview of the message content.
// Uses rune-based truncation to handle Unicode correctly.
func (m *Message) Preview(maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	runes := []rune(m.Content)
	if len(runes) <= maxLen {
		return m.Content
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// =============================================================================
// WIRE PAYLOADS
// =============================================================================

// ChatRequest is the body of both send endpoints.
// ConversationID and FileContent serialize as null when absent.
type ChatRequest struct {
	Message        string  `json:"message"`
	ModelProvider  string  `json:"model_provider"`
	ModelName      string  `json:"model_name"`
	ConversationID *string `json:"conversation_id"`
	FileContent    *string `json:"file_content"`
}

// ChatResponse is returned by both send endpoints.
type ChatResponse struct {
	ConversationID string   `json:"conversation_id"`
	Message        *Message `json:"message"`
}

// UploadResult is the backend's parse of an uploaded document.
type UploadResult struct {
	Filename string `json:"filename"`
	Type     string `json:"type"`
	Content  string `json:"content"`
	Size     int64  `json:"size"`
}
