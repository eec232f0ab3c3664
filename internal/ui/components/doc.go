// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package components provides the widgets of the chatdesk TUI.

Each widget owns its layout and rendering and is driven by the chat model
in package chat; none of them talk to the backend.

  - Sidebar: conversation list with dates, "New chat" row, placeholders
  - Thread: scrollable message thread (bubbles viewport)
  - MarkdownRenderer: glamour rendering of assistant replies
  - Composer: multi-line input (bubbles textarea) with attachment chip
  - ModelPicker: fuzzy-filtered model overlay
  - UploadDialog: file path prompt with local type and size checks
  - Header, StatusBar, Spinner, Toasts

Dialogs report results as tea messages (ModelChosenMsg,
UploadRequestedMsg) so the parent decides which controller call to make.
*/
package components
