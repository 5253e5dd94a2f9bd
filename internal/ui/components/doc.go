// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual building blocks of the chatdesk
// TUI: the header bar, the conversation sidebar and the message thread.
//
// Components hold only view state. Conversation data is handed to them by
// the chat model from store snapshots.
package components
