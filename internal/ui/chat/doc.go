// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package chat is the full-screen chat interface of chatdesk.

The Model composes the components package into one screen:

	header     brand, conversation title, selected model
	sidebar    "+ New chat" and the conversation list, newest first
	thread     the active conversation, markdown rendered
	composer   multi-line input with the staged attachment chip
	banner     error (esc to dismiss), delete prompt or notice
	status     status, model, backend and key hints

The model picker (ctrl+o), the attach dialog (ctrl+l) and the help
overlay (F1) replace the screen while open.

# State flow

All session state lives in a session.Controller. The Model never
mutates it directly: every intent runs as a tea.Cmd calling the
controller, and the resulting snapshot comes back either as the
command's result or through Bridge as a StateMsg. Snapshots carry a
version, so a late one never overwrites a newer one.

While a send is running its text is echoed under the thread with a
thinking indicator. The echo is dropped once the backend reply has
been reloaded.
*/
package chat
