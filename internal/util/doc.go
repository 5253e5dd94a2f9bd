// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared by chatdesk packages.
//
// # Key Functions
//
//   - AtomicWriteFile: crash-safe file writing with fsync and rename
//   - Summarize: rune-aware cut with a custom ellipsis
//   - FitWidth: display-width truncation for terminal cells
//
// # Usage
//
//	title := util.Summarize(text, 100, 97, "…")
//	cell := util.FitWidth(title, 24)
//	err := util.AtomicWriteFile(path, data, 0644)
package util
