// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chatapi is the HTTP client for the remote chat endpoint.
//
// The endpoint accepts a POST of {"messages":[{"role","content"}...]} and
// answers with {"response": "..."} on success or {"error": "..."} when the
// backend rejected the request. There is no streaming and no authentication.
//
// # Usage
//
//	client := chatapi.NewClient(chatapi.DefaultConfig())
//	reply, err := client.Chat(ctx, chatapi.Request{Messages: turns})
//	switch {
//	case err != nil:
//	    // transport or decoding failure, see ErrConnection / ErrInvalidResponse
//	case reply.Error != "":
//	    // backend refused the request
//	default:
//	    fmt.Println(reply.Response)
//	}
package chatapi
