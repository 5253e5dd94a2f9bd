// chatdesk - a terminal chat client for a remote assistant.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import "github.com/jeranaias/chatdesk/internal/cli"

func main() {
	cli.Execute()
}
