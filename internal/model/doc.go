// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures exchanged with the chat backend.
//
// The types mirror the backend's JSON wire format (snake_case field names)
// and are treated as immutable once received: the client never edits,
// merges or re-sorts them.
//
// # Key Types
//
//   - ModelDescriptor: An LLM the backend can route to, keyed by provider/name
//   - ConversationSummary: One entry of the sidebar list
//   - ConversationDetail: A conversation with its ordered messages
//   - Message: Single message with role, content, timestamp and metadata
//   - ChatRequest / ChatResponse: Send payloads
//   - UploadResult: Extracted content of an uploaded document
//
// # Usage
//
// Pick the default model from a freshly fetched list:
//
//	models, _ := gw.ListModels(ctx)
//	if def, ok := model.PickDefault(models); ok {
//	    fmt.Println("using", def.Key())
//	}
package model
