// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/chatdesk/internal/logger"
	"github.com/jeranaias/chatdesk/internal/model"
	"github.com/jeranaias/chatdesk/internal/ui/styles"
)

// =============================================================================
// THREAD COMPONENT
// =============================================================================

// EmptyThreadText is shown for a conversation without messages.
const EmptyThreadText = "Say hello, or press ctrl+o to read a file."

// Thread renders the messages of one conversation. User messages sit on the
// right, bot messages on the left as markdown.
type Thread struct {
	Width int

	theme    *styles.Theme
	renderer *glamour.TermRenderer
	// renderer is rebuilt when either changes
	rendererWidth int
	rendererStyle string
}

// NewThread creates a Thread.
func NewThread(theme *styles.Theme) *Thread {
	return &Thread{Width: 80, theme: theme}
}

// SetWidth updates the available width.
func (t *Thread) SetWidth(width int) {
	t.Width = width
}

// Render lays out every message of conv.
func (t *Thread) Render(conv model.Conversation) string {
	if len(conv.Messages) == 0 {
		return t.theme.Empty.Render(EmptyThreadText)
	}

	blocks := make([]string, 0, len(conv.Messages))
	for _, msg := range conv.Messages {
		blocks = append(blocks, t.RenderMessage(msg))
	}
	return strings.Join(blocks, "\n\n")
}

// RenderMessage renders a single message with its sender label.
func (t *Thread) RenderMessage(msg model.Message) string {
	bubbleWidth := t.bubbleWidth()
	label := t.theme.Sender.Render(msg.Sender.DisplayName())

	var body string
	if msg.IsUser() {
		body = t.theme.UserBubble.Render(
			lipgloss.NewStyle().Width(min(bubbleWidth-4, lipgloss.Width(msg.Text))).Render(msg.Text),
		)
	} else {
		body = t.theme.BotBubble.Render(t.markdown(msg.Text, bubbleWidth-4))
	}

	parts := []string{label, body}
	if msg.ImageURL != "" {
		parts = append(parts, t.theme.Attachment.Render("🖼 "+msg.ImageURL))
	}

	align := lipgloss.Left
	if msg.IsUser() {
		align = lipgloss.Right
	}
	block := lipgloss.JoinVertical(align, parts...)
	return lipgloss.PlaceHorizontal(t.Width, align, block)
}

func (t *Thread) bubbleWidth() int {
	w := t.Width * 3 / 4
	if w < 20 {
		w = 20
	}
	return w
}

// markdown renders text through glamour, falling back to the raw text.
func (t *Thread) markdown(text string, width int) string {
	if width < 10 {
		width = 10
	}
	style := t.theme.GlamourStyle()
	if t.renderer == nil || t.rendererWidth != width || t.rendererStyle != style {
		r, err := glamour.NewTermRenderer(
			glamour.WithStylePath(style),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			logger.Debug("markdown renderer unavailable", "error", err)
			return text
		}
		t.renderer, t.rendererWidth, t.rendererStyle = r, width, style
	}

	out, err := t.renderer.Render(text)
	if err != nil {
		return text
	}
	return strings.Trim(out, "\n")
}
