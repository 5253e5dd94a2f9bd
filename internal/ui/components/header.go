// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/chatdesk/internal/ui/styles"
)

// =============================================================================
// HEADER COMPONENT
// =============================================================================

// DefaultTitle is the application title shown in the header.
const DefaultTitle = "🤖 My AI Chatbot"

// Header is the title bar with the theme and voice badges.
type Header struct {
	Title string
	Width int
	Voice bool
	theme *styles.Theme
}

// NewHeader creates a Header with the default title.
func NewHeader(theme *styles.Theme) *Header {
	return &Header{
		Title: DefaultTitle,
		Width: 80,
		theme: theme,
	}
}

// SetWidth updates the header width.
func (h *Header) SetWidth(width int) {
	h.Width = width
}

// View renders the header on a single line.
func (h *Header) View() string {
	title := h.theme.Header.Render(h.Title)

	voice := "🔇 voice off"
	if h.Voice {
		voice = "🔊 voice on"
	}
	badges := h.theme.Badge.Render(h.theme.ModeBadge()) + h.theme.Badge.Render(voice)

	gap := h.Width - lipgloss.Width(title) - lipgloss.Width(badges)
	if gap < 1 {
		return title
	}
	return title + strings.Repeat(" ", gap) + badges
}
