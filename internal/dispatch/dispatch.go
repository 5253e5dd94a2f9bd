// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package dispatch turns user input into a chat request and records the
// answer in the conversation store.
//
// A send moves through idle, sending and then success or error before
// returning to idle. Begin performs the synchronous half (append the user
// message and raise the loading flag) so a front end can redraw before
// Complete blocks on the network.
package dispatch

import (
	"context"
	"strings"
	"time"

	"github.com/jeranaias/chatdesk/internal/chatapi"
	"github.com/jeranaias/chatdesk/internal/logger"
	"github.com/jeranaias/chatdesk/internal/model"
	"github.com/jeranaias/chatdesk/internal/speech"
	"github.com/jeranaias/chatdesk/internal/store"
)

// Default request shaping.
const (
	DefaultSystemPrompt = "You are a professional, clear and neutral assistant who answers " +
		"any kind of user simply, without assuming programming knowledge."
	DefaultModeTag = "[mode: fun] "
)

// Bot texts for failed sends.
const (
	ErrorPrefix       = "❌ Error: "
	ConnectionFailure = "❌ Could not connect to the server."
	emptyReply        = "the server returned an empty reply"
)

// ChatClient is the remote endpoint. *chatapi.Client satisfies it.
type ChatClient interface {
	Chat(ctx context.Context, req chatapi.Request) (*chatapi.Reply, error)
}

// Outcome is how a send ended.
type Outcome int

const (
	// OutcomeSkipped means the input was blank and nothing happened.
	OutcomeSkipped Outcome = iota
	OutcomeReplied
	OutcomeRemoteError
	OutcomeConnectionError
)

// String returns a short name for logs.
func (o Outcome) String() string {
	switch o {
	case OutcomeSkipped:
		return "skipped"
	case OutcomeReplied:
		return "replied"
	case OutcomeRemoteError:
		return "remote_error"
	case OutcomeConnectionError:
		return "connection_error"
	default:
		return "unknown"
	}
}

// Result describes a finished send.
type Result struct {
	Outcome        Outcome
	ConversationID int64

	// Message is the bot message that was appended.
	Message model.Message
}

// Pending is a send whose user message is recorded but whose reply has not
// arrived yet.
type Pending struct {
	ConversationID int64
	Request        chatapi.Request
}

// Options configures a Dispatcher.
type Options struct {
	// SystemPrompt opens every request. Defaults to DefaultSystemPrompt.
	SystemPrompt string

	// ModeTag prefixes the newest user turn. Defaults to DefaultModeTag;
	// set NoModeTag to send the text untouched.
	ModeTag   string
	NoModeTag bool

	// Timeout bounds each request. Zero applies none.
	Timeout time.Duration

	// Speaker reads replies aloud when voice is enabled. Nil disables it.
	Speaker speech.Speaker
}

// Dispatcher sends messages on behalf of the front ends.
type Dispatcher struct {
	store  *store.Store
	client ChatClient
	opts   Options
}

// New creates a dispatcher.
func New(st *store.Store, client ChatClient, opts Options) *Dispatcher {
	if opts.SystemPrompt == "" {
		opts.SystemPrompt = DefaultSystemPrompt
	}
	if opts.NoModeTag {
		opts.ModeTag = ""
	} else if opts.ModeTag == "" {
		opts.ModeTag = DefaultModeTag
	}
	return &Dispatcher{store: st, client: client, opts: opts}
}

// Begin records input as a user message and builds the request for it.
// Blank input returns ok == false and changes nothing. The conversation is
// created when none is selected.
func (d *Dispatcher) Begin(input string) (p *Pending, ok bool) {
	if strings.TrimSpace(input) == "" {
		return nil, false
	}

	id := d.store.EnsureCurrent()
	history, _ := d.store.Conversation(id)

	d.store.AppendMessage(id, model.UserMessage(input))
	d.store.BeginRequest()

	return &Pending{
		ConversationID: id,
		Request:        d.buildRequest(history.Messages, input),
	}, true
}

// Complete submits p and appends the bot's answer, or an error message, to
// the conversation. The loading flag is always lowered.
func (d *Dispatcher) Complete(ctx context.Context, p *Pending) Result {
	defer d.store.EndRequest()

	if d.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.opts.Timeout)
		defer cancel()
	}

	res := Result{ConversationID: p.ConversationID}
	reply, err := d.client.Chat(ctx, p.Request)

	switch {
	case err != nil:
		logger.Warn("chat request failed", "conversation", p.ConversationID, "error", err)
		res.Outcome = OutcomeConnectionError
		res.Message = model.BotMessage(ConnectionFailure)
	case reply.OK():
		res.Outcome = OutcomeReplied
		res.Message = model.BotMessage(reply.Response)
	default:
		reason := emptyReply
		if reply != nil && reply.Error != "" {
			reason = reply.Error
		}
		logger.Info("chat endpoint returned an error", "conversation", p.ConversationID, "error", reason)
		res.Outcome = OutcomeRemoteError
		res.Message = model.BotMessage(ErrorPrefix + reason)
	}

	d.store.AppendMessage(p.ConversationID, res.Message)

	if res.Outcome == OutcomeReplied {
		d.speak(res.Message.Text)
	}
	return res
}

// Send runs Begin and Complete back to back.
func (d *Dispatcher) Send(ctx context.Context, input string) Result {
	p, ok := d.Begin(input)
	if !ok {
		return Result{Outcome: OutcomeSkipped}
	}
	return d.Complete(ctx, p)
}

// buildRequest lays out the system prompt, the prior history and the new
// user turn.
func (d *Dispatcher) buildRequest(history []model.Message, input string) chatapi.Request {
	turns := make([]chatapi.Turn, 0, len(history)+2)
	turns = append(turns, chatapi.Turn{Role: chatapi.RoleSystem, Content: d.opts.SystemPrompt})
	for _, m := range history {
		turns = append(turns, chatapi.Turn{Role: m.Sender.Role(), Content: m.Text})
	}
	turns = append(turns, chatapi.Turn{Role: chatapi.RoleUser, Content: d.opts.ModeTag + input})
	return chatapi.Request{Messages: turns}
}

// speak reads text aloud when voice is on and nothing else is playing.
func (d *Dispatcher) speak(text string) {
	if d.opts.Speaker == nil || !d.store.Snapshot().VoiceEnabled || d.opts.Speaker.Speaking() {
		return
	}
	if err := d.opts.Speaker.Speak(text); err != nil {
		logger.Debug("voice output skipped", "error", err)
	}
}
