// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/jeranaias/chatdesk/internal/dispatch"
	"github.com/jeranaias/chatdesk/internal/extract"
)

// =============================================================================
// MESSAGES
// =============================================================================

// replyMsg carries a finished send.
type replyMsg struct {
	result dispatch.Result
}

// uploadMsg carries a finished upload.
type uploadMsg struct {
	result extract.Result
}

// SettingsMsg applies settings changed outside the TUI, such as a reloaded
// config file.
type SettingsMsg struct {
	Dark  bool
	Voice bool
}
