// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chatapi

// Role names understood by the endpoint.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one entry of the outbound message list.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is the body posted to the endpoint.
type Request struct {
	Messages []Turn `json:"messages"`
}

// Reply is the decoded endpoint answer. Exactly one of the fields is
// expected to be set; a reply with neither is treated as an error by callers.
type Reply struct {
	Response string `json:"response,omitempty"`
	Error    string `json:"error,omitempty"`
}

// OK reports whether the reply carries a usable response.
func (r *Reply) OK() bool {
	return r != nil && r.Response != ""
}
