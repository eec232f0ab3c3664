// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package gateway provides the HTTP client for the chat backend.
//
// The client is a thin typed wrapper: one method per backend capability,
// each a single request/response pair. It holds no session state and is
// safe for concurrent use. Every failure is reported as a *GatewayError,
// whether the backend answered with a non-2xx status or the request never
// completed.
//
// # Key Types
//
//   - Client: HTTP client for the backend API
//   - ClientConfig: Base URL, timeout, request pacing, logger
//   - GatewayError: Normalized error with status, server detail and cause
//
// # Usage
//
//	client := gateway.NewClient("http://localhost:5669")
//	models, err := client.ListModels(ctx)
//	if err != nil {
//	    fmt.Println(gateway.UserMessage(err, "Failed to load models"))
//	}
//
// Send into a new conversation; the backend creates it and returns the id:
//
//	resp, err := client.SendStandaloneMessage(ctx, "Hello", "openai", "gpt-4o", nil)
//	fmt.Println(resp.ConversationID)
//
// # Retries
//
// Nothing is retried automatically. Reads are safe to repeat, but a send
// or upload may already have created a conversation or message on the
// server, so the decision belongs to the caller.
package gateway
