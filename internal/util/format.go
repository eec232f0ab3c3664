// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"fmt"
	"time"
)

// FormatBytes renders a byte count as B, KB or MB.
func FormatBytes(n int64) string {
	const unit = 1024
	switch {
	case n < unit:
		return fmt.Sprintf("%d B", n)
	case n < unit*unit:
		return fmt.Sprintf("%.1f KB", float64(n)/unit)
	default:
		return fmt.Sprintf("%.1f MB", float64(n)/(unit*unit))
	}
}

// FormatClock renders a timestamp as local HH:MM. Zero times render empty.
func FormatClock(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format("15:04")
}

// FormatDate renders a timestamp as a local calendar date, or "Today".
func FormatDate(t time.Time, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	local := t.Local()
	n := now.Local()
	if local.Year() == n.Year() && local.YearDay() == n.YearDay() {
		return "Today"
	}
	return local.Format("Jan 2, 2006")
}
