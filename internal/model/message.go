// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// =============================================================================
// SENDER TYPE
// =============================================================================

// Sender identifies who produced a message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// String returns the string representation of the sender.
func (s Sender) String() string {
	return string(s)
}

// Role maps the sender to the role name used by the chat endpoint.
func (s Sender) Role() string {
	if s == SenderUser {
		return "user"
	}
	return "assistant"
}

// DisplayName returns a human-readable name for the sender.
func (s Sender) DisplayName() string {
	switch s {
	case SenderUser:
		return "You"
	case SenderBot:
		return "Bot"
	default:
		return string(s)
	}
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message is a single entry in a conversation. Messages are never edited
// after they are appended.
type Message struct {
	Sender Sender `json:"sender" yaml:"sender"`
	Text   string `json:"text" yaml:"text"`

	// ImageURL points at an uploaded image shown next to the message.
	ImageURL string `json:"image_url,omitempty" yaml:"image_url,omitempty"`
}

// UserMessage creates a message sent by the user.
func UserMessage(text string) Message {
	return Message{Sender: SenderUser, Text: text}
}

// BotMessage creates a message produced by the bot.
func BotMessage(text string) Message {
	return Message{Sender: SenderBot, Text: text}
}

// IsUser returns true if the user sent this message.
func (m Message) IsUser() bool {
	return m.Sender == SenderUser
}

// IsBot returns true if the bot produced this message.
func (m Message) IsBot() bool {
	return m.Sender == SenderBot
}
