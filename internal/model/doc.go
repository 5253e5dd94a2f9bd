// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
//
// # Key Types
//
//   - Conversation: a saved chat thread keyed by its creation time in ms
//   - Message: one entry in a thread, sent by the user or the bot
//   - Sender: who produced a message, mapped to a chat API role
//
// # Usage
//
//	conv := model.Conversation{ID: time.Now().UnixMilli()}
//	conv.Messages = append(conv.Messages, model.UserMessage("Hello!"))
//	fmt.Println(conv.Title(), model.FormatDate(conv.ID, time.Now()))
package model
