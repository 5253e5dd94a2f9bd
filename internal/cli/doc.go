// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli wires chatdesk together and exposes it as a cobra command.
//
// The root command starts the Bubble Tea interface when stdin and stdout
// are terminals, and a line-mode REPL otherwise or with --plain. Both front
// ends share one App: the store, the dispatcher and the file bridge.
//
// # Commands
//
//	chatdesk                  start chatting
//	chatdesk --plain          line-mode REPL
//	chatdesk config init      write a default config file
//	chatdesk config show      print the effective configuration
//	chatdesk config path      print the config file path
//	chatdesk version          print version information
package cli
