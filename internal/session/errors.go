// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import "errors"

// Local precondition failures. No network call is made when one of these
// is returned.
var (
	ErrNoModelSelected = errors.New("no model selected")
	ErrEmptyMessage    = errors.New("message is empty")
	ErrSendInFlight    = errors.New("a message is already being sent")
	ErrUnknownModel    = errors.New("unknown model")
)

// ErrRefreshFailed wraps the reload error after a send that the backend
// did accept. The message exists server-side; the local view is stale
// until the next select or reload.
var ErrRefreshFailed = errors.New("message sent but refresh failed")

// ErrUploadDiscarded is returned when the active conversation changed
// while an upload ran. The upload succeeded but nothing was staged.
var ErrUploadDiscarded = errors.New("conversation changed during upload; attachment discarded")

// User-facing fallbacks used when an error carries no text of its own.
const (
	msgLoadConversations = "Failed to load conversations"
	msgLoadModels        = "Failed to load models"
	msgLoadConversation  = "Failed to load conversation"
	msgSend              = "Failed to send message"
	msgUpload            = "Failed to upload file"
	msgDelete            = "Failed to delete conversation"
	msgNoModel           = "Please select a model first"
)
