// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes a conversation fetched from the backend to a
// Markdown or JSON file. It is used by "chatdesk export" and by the
// export key in the chat screen.
package export
