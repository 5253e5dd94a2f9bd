// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config loads chatdesk settings.
//
// Settings come from, in increasing precedence:
//   - built-in defaults
//   - ~/.chatdesk/config.toml (or the path given with --config)
//   - a .env file in the working directory
//   - CHATDESK_* environment variables
//   - command-line flags, applied by the cli package
//
// # Usage
//
//	cfg, err := config.Load()
//	client := chatapi.NewClient(chatapi.Config{Endpoint: cfg.Chat.Endpoint})
//
//	w, err := config.Watch(path, func(cfg *config.Config) { app.ApplyConfig(cfg) })
//	defer w.Close()
package config
