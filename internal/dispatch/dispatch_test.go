// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/chatdesk/internal/chatapi"
	"github.com/jeranaias/chatdesk/internal/model"
	"github.com/jeranaias/chatdesk/internal/store"
)

// =============================================================================
// FAKES
// =============================================================================

type fakeClient struct {
	mu       sync.Mutex
	requests []chatapi.Request
	reply    *chatapi.Reply
	err      error
}

func (f *fakeClient) Chat(_ context.Context, req chatapi.Request) (*chatapi.Reply, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	return f.reply, f.err
}

func (f *fakeClient) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

type fakeSpeaker struct {
	mu       sync.Mutex
	spoken   []string
	speaking bool
}

func (f *fakeSpeaker) Speak(text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.spoken = append(f.spoken, text)
	return nil
}

func (f *fakeSpeaker) Speaking() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.speaking
}

func messagesOf(t *testing.T, st *store.Store, id int64) []model.Message {
	t.Helper()
	conv, ok := st.Conversation(id)
	require.True(t, ok, "conversation %d missing", id)
	return conv.Messages
}

// =============================================================================
// SEND
// =============================================================================

func TestSend_BlankInputDoesNothing(t *testing.T) {
	st := store.New(store.Options{})
	client := &fakeClient{reply: &chatapi.Reply{Response: "x"}}
	d := New(st, client, Options{})

	for _, in := range []string{"", "   ", "\n\t"} {
		res := d.Send(context.Background(), in)
		assert.Equal(t, OutcomeSkipped, res.Outcome)
	}

	assert.Equal(t, 0, client.calls())
	assert.Empty(t, st.Snapshot().Conversations)
	assert.Zero(t, st.Version())
}

func TestSend_Reply(t *testing.T) {
	st := store.New(store.Options{})
	client := &fakeClient{reply: &chatapi.Reply{Response: "hi"}}
	d := New(st, client, Options{})

	res := d.Send(context.Background(), "hello")

	assert.Equal(t, OutcomeReplied, res.Outcome)
	assert.Equal(t, []model.Message{model.UserMessage("hello"), model.BotMessage("hi")},
		messagesOf(t, st, res.ConversationID))
	assert.False(t, st.Snapshot().Loading())
	assert.Equal(t, res.ConversationID, st.Snapshot().CurrentID)
}

func TestSend_RequestLayout(t *testing.T) {
	st := store.New(store.Options{})
	client := &fakeClient{reply: &chatapi.Reply{Response: "first answer"}}
	d := New(st, client, Options{SystemPrompt: "sys"})

	d.Send(context.Background(), "one")
	d.Send(context.Background(), "two")

	require.Equal(t, 2, client.calls())
	assert.Equal(t, []chatapi.Turn{
		{Role: "system", Content: "sys"},
		{Role: "user", Content: "one"},
		{Role: "assistant", Content: "first answer"},
		{Role: "user", Content: "[mode: fun] two"},
	}, client.requests[1].Messages)
}

func TestSend_NoModeTag(t *testing.T) {
	st := store.New(store.Options{})
	client := &fakeClient{reply: &chatapi.Reply{Response: "ok"}}
	d := New(st, client, Options{NoModeTag: true})

	d.Send(context.Background(), "plain")

	msgs := client.requests[0].Messages
	assert.Equal(t, "plain", msgs[len(msgs)-1].Content)
	assert.Equal(t, DefaultSystemPrompt, msgs[0].Content)
}

func TestSend_RemoteError(t *testing.T) {
	st := store.New(store.Options{})
	d := New(st, &fakeClient{reply: &chatapi.Reply{Error: "bad"}}, Options{})

	res := d.Send(context.Background(), "hello")

	assert.Equal(t, OutcomeRemoteError, res.Outcome)
	assert.Equal(t, "❌ Error: bad", res.Message.Text)
	assert.Contains(t, messagesOf(t, st, res.ConversationID)[1].Text, "bad")
}

func TestSend_EmptyReplyIsAnError(t *testing.T) {
	st := store.New(store.Options{})
	d := New(st, &fakeClient{reply: &chatapi.Reply{}}, Options{})

	res := d.Send(context.Background(), "hello")

	assert.Equal(t, OutcomeRemoteError, res.Outcome)
	assert.Contains(t, res.Message.Text, ErrorPrefix)
}

func TestSend_NilReplyIsAnError(t *testing.T) {
	st := store.New(store.Options{})
	d := New(st, &fakeClient{}, Options{})

	res := d.Send(context.Background(), "hello")

	assert.Equal(t, OutcomeRemoteError, res.Outcome)
	assert.Equal(t, ErrorPrefix+emptyReply, res.Message.Text)
	assert.False(t, st.Snapshot().Loading())
}

func TestSend_ConnectionError(t *testing.T) {
	st := store.New(store.Options{})
	d := New(st, &fakeClient{err: errors.New("dial tcp: refused")}, Options{})

	res := d.Send(context.Background(), "hello")

	assert.Equal(t, OutcomeConnectionError, res.Outcome)
	msgs := messagesOf(t, st, res.ConversationID)
	require.Len(t, msgs, 2)
	assert.Equal(t, ConnectionFailure, msgs[1].Text)
	assert.False(t, st.Snapshot().Loading())
}

func TestSend_UsesSelectedConversation(t *testing.T) {
	st := store.New(store.Options{})
	first := st.CreateConversation()
	st.CreateConversation()
	st.SelectConversation(first)
	d := New(st, &fakeClient{reply: &chatapi.Reply{Response: "ok"}}, Options{})

	res := d.Send(context.Background(), "hello")

	assert.Equal(t, first, res.ConversationID)
	assert.Len(t, st.Snapshot().Conversations, 2)
}

// =============================================================================
// BEGIN / COMPLETE
// =============================================================================

func TestBegin_RecordsBeforeReply(t *testing.T) {
	st := store.New(store.Options{})
	client := &fakeClient{reply: &chatapi.Reply{Response: "later"}}
	d := New(st, client, Options{})

	p, ok := d.Begin("question")
	require.True(t, ok)

	assert.True(t, st.Snapshot().Loading())
	assert.Len(t, messagesOf(t, st, p.ConversationID), 1)
	assert.Equal(t, 0, client.calls())

	d.Complete(context.Background(), p)
	assert.False(t, st.Snapshot().Loading())
	assert.Len(t, messagesOf(t, st, p.ConversationID), 2)
}

func TestComplete_ConcurrentSendsKeepEveryMessage(t *testing.T) {
	st := store.New(store.Options{})
	d := New(st, &fakeClient{reply: &chatapi.Reply{Response: "ok"}}, Options{})

	p1, _ := d.Begin("a")
	p2, _ := d.Begin("b")

	var wg sync.WaitGroup
	for _, p := range []*Pending{p1, p2} {
		wg.Add(1)
		go func(p *Pending) {
			defer wg.Done()
			d.Complete(context.Background(), p)
		}(p)
	}
	wg.Wait()

	msgs := messagesOf(t, st, p1.ConversationID)
	assert.Len(t, msgs, 4)
	assert.False(t, st.Snapshot().Loading())
}

// =============================================================================
// VOICE
// =============================================================================

func TestSend_SpeaksWhenVoiceEnabled(t *testing.T) {
	st := store.New(store.Options{})
	st.SetVoice(true)
	spk := &fakeSpeaker{}
	d := New(st, &fakeClient{reply: &chatapi.Reply{Response: "spoken"}}, Options{Speaker: spk})

	d.Send(context.Background(), "hello")

	assert.Equal(t, []string{"spoken"}, spk.spoken)
}

func TestSend_SilentWhenVoiceDisabledOrBusy(t *testing.T) {
	st := store.New(store.Options{})
	spk := &fakeSpeaker{}
	d := New(st, &fakeClient{reply: &chatapi.Reply{Response: "quiet"}}, Options{Speaker: spk})

	d.Send(context.Background(), "hello")
	assert.Empty(t, spk.spoken)

	st.SetVoice(true)
	spk.speaking = true
	d.Send(context.Background(), "again")
	assert.Empty(t, spk.spoken)
}

func TestSend_ErrorsAreNotSpoken(t *testing.T) {
	st := store.New(store.Options{})
	st.SetVoice(true)
	spk := &fakeSpeaker{}
	d := New(st, &fakeClient{reply: &chatapi.Reply{Error: "nope"}}, Options{Speaker: spk})

	d.Send(context.Background(), "hello")

	assert.Empty(t, spk.spoken)
}

// =============================================================================
// END TO END WITH HTTP
// =============================================================================

func TestSend_AgainstHTTPEndpoint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chatapi.Request
		json.NewDecoder(r.Body).Decode(&req)
		last := req.Messages[len(req.Messages)-1]
		json.NewEncoder(w).Encode(map[string]string{"response": "echo: " + last.Content})
	}))
	defer srv.Close()

	st := store.New(store.Options{})
	d := New(st, chatapi.NewClient(chatapi.Config{Endpoint: srv.URL}), Options{})

	res := d.Send(context.Background(), "ping")

	assert.Equal(t, OutcomeReplied, res.Outcome)
	assert.Equal(t, "echo: [mode: fun] ping", res.Message.Text)
}

func TestSend_HTTPEndpointDown(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	st := store.New(store.Options{})
	d := New(st, chatapi.NewClient(chatapi.Config{Endpoint: url}), Options{})

	res := d.Send(context.Background(), "ping")

	assert.Equal(t, OutcomeConnectionError, res.Outcome)
	assert.Equal(t, ConnectionFailure, res.Message.Text)
}
