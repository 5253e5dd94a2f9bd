// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/chatdesk/internal/config"
)

func TestNewApp_InMemory(t *testing.T) {
	srv := newEchoServer(t)
	cfg := testConfig(srv.URL)
	cfg.Voice.Enabled = true

	app := newTestApp(t, cfg)

	assert.Equal(t, srv.URL, app.Client.Endpoint())
	assert.True(t, app.Store.Snapshot().VoiceEnabled)
	assert.Empty(t, app.Store.Snapshot().Conversations)
	assert.Nil(t, app.archive)
}

func TestNewApp_PersistRoundTrip(t *testing.T) {
	srv := newEchoServer(t)
	cfg := testConfig(srv.URL)
	cfg.Storage.Persist = true
	cfg.Storage.Path = filepath.Join(t.TempDir(), "conversations.db")

	first, err := NewApp(cfg)
	require.NoError(t, err)
	first.Dispatcher.Send(context.Background(), "remember me")
	conv, ok := first.Store.Snapshot().Current()
	require.True(t, ok)
	first.Store.RenameConversation(conv.ID, "Saved")
	require.NoError(t, first.Close())
	require.NoError(t, first.Close(), "closing twice is harmless")

	second := newTestApp(t, cfg)

	state := second.Store.Snapshot()
	require.Len(t, state.Conversations, 1)
	assert.Equal(t, conv.ID, state.CurrentID)
	assert.Equal(t, "Saved", state.Conversations[0].Name)
	require.Len(t, state.Conversations[0].Messages, 2)
	assert.Equal(t, "echo: remember me", state.Conversations[0].Messages[1].Text)
}

func TestApp_ApplyConfig(t *testing.T) {
	srv := newEchoServer(t)
	app := newTestApp(t, testConfig(srv.URL))
	app.Store.SetDarkMode(true)

	next := testConfig(srv.URL)
	next.Voice.Enabled = true
	next.UI.Theme = "light"
	state := app.ApplyConfig(next)
	assert.True(t, state.VoiceEnabled)
	assert.False(t, state.DarkMode)

	next = testConfig(srv.URL)
	next.UI.Theme = "auto"
	next.Voice.Enabled = false
	state = app.ApplyConfig(next)
	assert.False(t, state.VoiceEnabled)
	assert.False(t, state.DarkMode, "auto keeps the current palette")
}

func TestApp_ApplyConfigKeepsSessionToggles(t *testing.T) {
	srv := newEchoServer(t)
	app := newTestApp(t, testConfig(srv.URL))
	app.Store.SetDarkMode(true)

	app.Store.SetVoice(true)
	app.Store.SetDarkMode(false)

	// An edit to an unrelated setting leaves voice and theme alone.
	next := testConfig(srv.URL)
	next.Chat.SystemPrompt = "be brief"
	state := app.ApplyConfig(next)
	assert.True(t, state.VoiceEnabled)
	assert.False(t, state.DarkMode)

	next = testConfig(srv.URL)
	next.Voice.Enabled = true
	state = app.ApplyConfig(next)
	assert.True(t, state.VoiceEnabled)

	app.Store.SetVoice(false)
	next = testConfig(srv.URL)
	next.Voice.Enabled = true
	state = app.ApplyConfig(next)
	assert.False(t, state.VoiceEnabled, "unchanged file value keeps the toggle")
}

func TestWatchConfig_MissingDirectory(t *testing.T) {
	stop := watchConfig(filepath.Join(t.TempDir(), "absent", "config.toml"), func(*config.Config) {
		t.Error("no reload expected")
	})
	stop()
}
