// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strings"
	"time"

	"github.com/jeranaias/chatdesk/internal/util"
)

const (
	// UntitledLabel is shown for conversations with no name and no messages.
	UntitledLabel = "Untitled conversation"

	// titleLimit is the longest derived title kept as is.
	titleLimit = 100

	// titleKeep is how many characters of a long title survive the cut.
	titleKeep = 97

	titleEllipsis = "…"
)

// =============================================================================
// CONVERSATION TYPE
// =============================================================================

// Conversation is an ordered thread of messages. The ID is the creation time
// in Unix milliseconds and doubles as the sort key.
type Conversation struct {
	ID       int64     `json:"id" yaml:"id"`
	Name     string    `json:"name,omitempty" yaml:"name,omitempty"`
	Messages []Message `json:"messages" yaml:"messages"`
}

// Title returns the explicit name if set, otherwise a summary of the first
// message.
func (c Conversation) Title() string {
	if c.Name != "" {
		return c.Name
	}
	if len(c.Messages) == 0 {
		return UntitledLabel
	}
	return Summarize(c.Messages[0].Text)
}

// CreatedAt returns the creation time encoded in the ID.
func (c Conversation) CreatedAt() time.Time {
	return time.UnixMilli(c.ID)
}

// IsEmpty returns true if the conversation has no messages.
func (c Conversation) IsEmpty() bool {
	return len(c.Messages) == 0
}

// LastBotMessage returns the most recent bot message.
func (c Conversation) LastBotMessage() (Message, bool) {
	for i := len(c.Messages) - 1; i >= 0; i-- {
		if c.Messages[i].IsBot() {
			return c.Messages[i], true
		}
	}
	return Message{}, false
}

// Clone returns a copy whose message slice does not alias c.
func (c Conversation) Clone() Conversation {
	out := c
	out.Messages = make([]Message, len(c.Messages))
	copy(out.Messages, c.Messages)
	return out
}

// =============================================================================
// DISPLAY HELPERS
// =============================================================================

// Summarize turns message text into a sidebar title. Whitespace is trimmed
// and text longer than 100 characters keeps its first 97 followed by "…".
func Summarize(text string) string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return UntitledLabel
	}
	return util.Summarize(trimmed, titleLimit, titleKeep, titleEllipsis)
}

// FormatDate renders a conversation ID relative to now: the clock time for
// today, "Yesterday" and "Day before yesterday" for the two previous calendar
// days, and the ISO date otherwise.
func FormatDate(id int64, now time.Time) string {
	created := time.UnixMilli(id).In(now.Location())

	switch calendarDaysBetween(created, now) {
	case 0:
		return created.Format("15:04")
	case 1:
		return "Yesterday"
	case 2:
		return "Day before yesterday"
	default:
		return created.Format("2006-01-02")
	}
}

// calendarDaysBetween counts midnights crossed going from a to b. A negative
// result means a is after b.
func calendarDaysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	da := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	db := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da).Hours() / 24)
}
