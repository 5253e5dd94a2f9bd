// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package chat provides the Bubble Tea model of the chatdesk TUI.

The screen is a conversation sidebar beside the message thread, with an
input bar below. All conversation data lives in the store; the model only
keeps view state and pulls a fresh snapshot after every change.

# Sending and uploading

Sends and uploads are split in two. The user message (or the "Reading file"
trace) is recorded immediately so it shows on the next frame, then the
network or extraction work runs in a tea.Cmd and its result arrives as a
message:

	p, ok := dispatcher.Begin(text)   // Update
	return m, completeSend(ctx, d, p) // runs off the event loop

# Keys

tab moves between the input and the sidebar, ctrl+f searches conversations,
ctrl+n starts a new one, ctrl+o opens the file picker, ctrl+y copies the
last reply, ctrl+t toggles the theme and ctrl+q quits. Lines starting with
"/" are slash commands; tab completes them.
*/
package chat
