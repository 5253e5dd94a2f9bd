// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling of the chatdesk TUI.
//
// Colors are Lip Gloss AdaptiveColors. The dark/light toggle flips the
// renderer's background flag so every adaptive color follows it, then the
// theme rebuilds its styles.
//
// # Usage
//
//	theme := styles.NewTheme(styles.DetectDark("auto"))
//	header := theme.Header.Render("🤖 My AI Chatbot")
//	theme.SetDark(!theme.IsDark)
package styles
