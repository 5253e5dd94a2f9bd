// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package store owns the in-memory conversation list.
//
// State is an immutable value. Every change is a pure reducer that takes the
// last committed State and returns a new one; Store applies reducers one at a
// time under its lock, so two completions racing on the same conversation
// both land.
package store

import (
	"github.com/jeranaias/chatdesk/internal/model"
)

// =============================================================================
// STATE
// =============================================================================

// State is a snapshot of everything the front ends render. Values returned
// by Store never change after they are handed out.
type State struct {
	// Conversations in creation order.
	Conversations []model.Conversation

	// CurrentID is the selected conversation, 0 when none.
	CurrentID int64

	VoiceEnabled bool
	DarkMode     bool

	// Pending counts in-flight chat and extraction requests.
	Pending int
}

// Loading reports whether any request is in flight.
func (s State) Loading() bool {
	return s.Pending > 0
}

// Find returns the conversation with the given id and its index.
func (s State) Find(id int64) (model.Conversation, int) {
	for i, c := range s.Conversations {
		if c.ID == id {
			return c, i
		}
	}
	return model.Conversation{}, -1
}

// Current returns the selected conversation. ok is false when nothing is
// selected or the selection points at a missing id.
func (s State) Current() (model.Conversation, bool) {
	if s.CurrentID == 0 {
		return model.Conversation{}, false
	}
	c, i := s.Find(s.CurrentID)
	return c, i >= 0
}

// =============================================================================
// REDUCERS
// =============================================================================

// WithConversation returns s with an empty conversation added and selected.
func (s State) WithConversation(id int64) State {
	convs := make([]model.Conversation, len(s.Conversations), len(s.Conversations)+1)
	copy(convs, s.Conversations)
	s.Conversations = append(convs, model.Conversation{ID: id})
	s.CurrentID = id
	return s
}

// WithMessage returns s with msg appended to conversation id. Unknown ids
// leave s unchanged.
func (s State) WithMessage(id int64, msg model.Message) State {
	return s.updateConversation(id, func(c model.Conversation) model.Conversation {
		msgs := make([]model.Message, len(c.Messages), len(c.Messages)+1)
		copy(msgs, c.Messages)
		c.Messages = append(msgs, msg)
		return c
	})
}

// WithName returns s with conversation id renamed. An empty name or an
// unknown id leaves s unchanged.
func (s State) WithName(id int64, name string) State {
	if name == "" {
		return s
	}
	return s.updateConversation(id, func(c model.Conversation) model.Conversation {
		c.Name = name
		return c
	})
}

// WithCurrent returns s pointing at id. The id is not validated.
func (s State) WithCurrent(id int64) State {
	s.CurrentID = id
	return s
}

// WithPending returns s with the in-flight counter moved by delta, never
// below zero.
func (s State) WithPending(delta int) State {
	s.Pending += delta
	if s.Pending < 0 {
		s.Pending = 0
	}
	return s
}

// WithVoice returns s with voice output switched on or off.
func (s State) WithVoice(on bool) State {
	s.VoiceEnabled = on
	return s
}

// WithDarkMode returns s with the dark theme switched on or off.
func (s State) WithDarkMode(on bool) State {
	s.DarkMode = on
	return s
}

// updateConversation copies the conversation list with fn applied to the
// entry for id.
func (s State) updateConversation(id int64, fn func(model.Conversation) model.Conversation) State {
	_, idx := s.Find(id)
	if idx < 0 {
		return s
	}
	convs := make([]model.Conversation, len(s.Conversations))
	copy(convs, s.Conversations)
	convs[idx] = fn(convs[idx])
	s.Conversations = convs
	return s
}
