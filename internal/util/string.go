// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// Summarize returns s unchanged when it has at most limit runes. Longer
// strings are cut to keep runes followed by ellipsis. Counting is done on
// runes so multi-byte characters are never split.
func Summarize(s string, limit, keep int, ellipsis string) string {
	if limit < 0 || keep < 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	if keep > len(runes) {
		keep = len(runes)
	}
	return string(runes[:keep]) + ellipsis
}

// FitWidth truncates s so that it occupies at most width terminal cells,
// ending with "…" when anything was dropped. Wide runes count as two cells.
func FitWidth(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return runewidth.Truncate(s, width, "…")
}

// PadWidth pads s with spaces to exactly width cells, truncating first when
// it is wider.
func PadWidth(s string, width int) string {
	s = FitWidth(s, width)
	return runewidth.FillRight(s, width)
}

// StringWidth returns the number of terminal cells s occupies.
func StringWidth(s string) int {
	return runewidth.StringWidth(s)
}

// FirstLine returns the text before the first newline with surrounding
// whitespace removed.
func FirstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
