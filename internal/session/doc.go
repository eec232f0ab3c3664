// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session owns the client-side conversation state.
//
// The Controller decides when a conversation is created, how a send is
// sequenced (send, then reload the authoritative list and thread), and
// when a staged attachment is consumed or dropped. The TUI, the REPL and
// the one-shot commands all drive the same Controller and render from its
// snapshots.
//
// # Key Types
//
//   - Controller: Serializes intents against the backend Gateway
//   - Gateway: The backend operations the controller needs
//   - State: Immutable snapshot published after every mutation
//
// # Usage
//
//	ctrl := session.NewController(client, session.Options{})
//	cancel := ctrl.Subscribe(func(s session.State) { render(s) })
//	defer cancel()
//
//	_ = ctrl.Initialize(ctx)
//	if err := ctrl.SendMessage(ctx, "Hello"); err != nil {
//	    fmt.Println(ctrl.Snapshot().LastError)
//	}
//
// # Concurrency
//
// Every method may be called from any goroutine. Network calls run outside
// the controller's lock. Switching conversations bumps a selection epoch;
// a detail fetch that resolves after a newer switch is dropped rather than
// cancelled.
package session
