// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared by the CLI and the TUI.
//
// # Key Functions
//
// Display:
//   - TruncateRunes: UTF-8 safe truncation with ellipsis
//   - TruncateWidth, PadRight, StringWidth: terminal column aware helpers
//   - FirstLine: single-line preview of multi-line text
//   - FormatBytes, FormatClock, FormatDate: humanized sizes and times
//
// File Operations:
//   - AtomicWriteFile: crash-safe file writing with fsync
//
// # Usage
//
//	title := util.TruncateWidth(conv.Title, sidebarWidth-2)
//	err := util.AtomicWriteFile(path, data, 0600)
package util
