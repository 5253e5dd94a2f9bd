// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands provides the slash command table shared by the TUI and
// the plain REPL.
//
// The registry maps names and aliases to an Action; front ends parse a line,
// switch on the action and run their own handler.
//
//	parser := commands.NewParser(commands.NewRegistry())
//	res := parser.Parse("/rename \"Trip notes\"")
//	if res.IsCommand && res.Error == nil {
//	    switch res.Action() { ... }
//	}
package commands
