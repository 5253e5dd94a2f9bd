// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/chatdesk/internal/chatapi"
	"github.com/jeranaias/chatdesk/internal/dispatch"
	"github.com/jeranaias/chatdesk/internal/extract"
	"github.com/jeranaias/chatdesk/internal/model"
	"github.com/jeranaias/chatdesk/internal/store"
	"github.com/jeranaias/chatdesk/internal/ui/components"
	"github.com/jeranaias/chatdesk/internal/ui/styles"
)

// =============================================================================
// FAKES AND HELPERS
// =============================================================================

type fakeClient struct {
	mu    sync.Mutex
	reply *chatapi.Reply
	err   error
}

func (f *fakeClient) Chat(_ context.Context, _ chatapi.Request) (*chatapi.Reply, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reply, f.err
}

type fakeClipboard struct {
	text string
	err  error
}

func (f *fakeClipboard) write(s string) error {
	if f.err != nil {
		return f.err
	}
	f.text = s
	return nil
}

type harness struct {
	store     *store.Store
	client    *fakeClient
	clipboard *fakeClipboard
	model     Model
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	st := store.New(store.Options{})
	client := &fakeClient{reply: &chatapi.Reply{Response: "hi"}}
	clip := &fakeClipboard{}

	m := New(Options{
		Store:      st,
		Dispatcher: dispatch.New(st, client, dispatch.Options{}),
		Bridge:     extract.New(st, extract.Options{}),
		Theme:      styles.NewTheme(true),
		ExportDir:  t.TempDir(),
		Clipboard:  clip.write,
	})
	h := &harness{store: st, client: client, clipboard: clip, model: m}
	h.send(tea.WindowSizeMsg{Width: 120, Height: 40})
	return h
}

// send feeds msg to the model and returns the command it produced.
func (h *harness) send(msg tea.Msg) tea.Cmd {
	next, cmd := h.model.Update(msg)
	h.model = next.(Model)
	return cmd
}

func (h *harness) key(t tea.KeyType) tea.Cmd {
	return h.send(tea.KeyMsg{Type: t})
}

func (h *harness) typeText(s string) {
	h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

// submit types s and presses enter, then delivers every reply or upload
// result the resulting commands produce.
func (h *harness) submit(s string) {
	h.typeText(s)
	h.deliver(h.key(tea.KeyEnter))
}

// deliver runs cmd and feeds back the results of sends and uploads.
func (h *harness) deliver(cmd tea.Cmd) {
	for _, msg := range runCmd(cmd) {
		switch msg.(type) {
		case replyMsg, uploadMsg:
			h.send(msg)
		}
	}
}

// runCmd executes cmd and any batch it expands to. Commands that block
// longer than a second, such as cursor blinks, are dropped.
func runCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()

	var msg tea.Msg
	select {
	case msg = <-done:
	case <-time.After(time.Second):
		return nil
	}

	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, runCmd(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func (h *harness) current(t *testing.T) model.Conversation {
	t.Helper()
	conv, ok := h.store.Snapshot().Current()
	require.True(t, ok, "no current conversation")
	return conv
}

// =============================================================================
// SENDING
// =============================================================================

func TestSend_AppendsUserAndBotMessages(t *testing.T) {
	h := newHarness(t)

	h.typeText("hello")
	cmd := h.key(tea.KeyEnter)

	conv := h.current(t)
	require.Len(t, conv.Messages, 1)
	assert.Equal(t, model.UserMessage("hello"), conv.Messages[0])
	assert.True(t, h.store.Snapshot().Loading())
	assert.Contains(t, h.model.View(), LoadingText)
	assert.Equal(t, "", h.model.InputValue())

	h.deliver(cmd)

	conv = h.current(t)
	require.Len(t, conv.Messages, 2)
	assert.Equal(t, model.BotMessage("hi"), conv.Messages[1])
	assert.False(t, h.store.Snapshot().Loading())
	assert.NotContains(t, h.model.View(), LoadingText)
}

func TestSend_BlankInputDoesNothing(t *testing.T) {
	h := newHarness(t)
	before := h.store.Version()

	h.typeText("   ")
	cmd := h.key(tea.KeyEnter)

	assert.Nil(t, cmd)
	assert.Empty(t, h.store.Snapshot().Conversations)
	assert.Equal(t, before, h.store.Version())
}

func TestSend_ConnectionFailureShownInStatus(t *testing.T) {
	h := newHarness(t)
	h.client.err = errors.New("dial tcp: refused")

	h.submit("hello")

	conv := h.current(t)
	require.Len(t, conv.Messages, 2)
	assert.Equal(t, dispatch.ConnectionFailure, conv.Messages[1].Text)
	assert.Equal(t, dispatch.ConnectionFailure, h.model.Status())
}

// =============================================================================
// SIDEBAR
// =============================================================================

func TestNewConversationAndSidebarSelection(t *testing.T) {
	h := newHarness(t)
	h.submit("first chat")
	first := h.current(t).ID

	h.key(tea.KeyCtrlN)
	second := h.current(t).ID
	assert.NotEqual(t, first, second)
	assert.Len(t, h.store.Snapshot().Conversations, 2)

	// tab to the sidebar, move to the first conversation and open it
	h.key(tea.KeyTab)
	assert.Equal(t, focusSidebar, h.model.focus)
	h.key(tea.KeyUp)
	h.key(tea.KeyEnter)

	assert.Equal(t, first, h.store.Snapshot().CurrentID)
	assert.Equal(t, focusInput, h.model.focus)
}

func TestSearchFiltersSidebar(t *testing.T) {
	h := newHarness(t)
	h.submit("alpha notes")
	h.key(tea.KeyCtrlN)
	h.submit("Beta plans")

	h.key(tea.KeyCtrlF)
	assert.Equal(t, focusSearch, h.model.focus)
	h.typeText("BET")

	items := h.model.sidebar.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "Beta plans", items[0].Title())

	h.key(tea.KeyEsc)
	assert.Len(t, h.model.sidebar.Items(), 2)
	assert.Equal(t, focusInput, h.model.focus)
}

func TestRenameShortcutPrefillsInput(t *testing.T) {
	h := newHarness(t)
	h.submit("hello")

	h.key(tea.KeyCtrlR)
	assert.Equal(t, `/rename "hello"`, h.model.InputValue())
}

// =============================================================================
// SLASH COMMANDS
// =============================================================================

func TestCommand_Rename(t *testing.T) {
	h := newHarness(t)
	h.submit("hello")

	h.submit(`/rename "Trip notes"`)
	assert.Equal(t, "Trip notes", h.current(t).Name)
	assert.Contains(t, h.model.View(), "Trip notes")
}

func TestCommand_Select(t *testing.T) {
	h := newHarness(t)
	h.submit("one")
	first := h.current(t).ID
	h.key(tea.KeyCtrlN)

	h.submit("/select " + formatID(first))
	assert.Equal(t, first, h.store.Snapshot().CurrentID)

	h.submit("/select 42")
	assert.Equal(t, first, h.store.Snapshot().CurrentID)
	assert.Contains(t, h.model.Status(), "No conversation with id 42")
}

func TestCommand_Unknown(t *testing.T) {
	h := newHarness(t)
	h.submit("/nope")
	assert.Contains(t, h.model.Status(), "unknown command")
	assert.Empty(t, h.store.Snapshot().Conversations)
}

func TestCommand_VoiceAndTheme(t *testing.T) {
	h := newHarness(t)

	h.submit("/voice on")
	assert.True(t, h.store.Snapshot().VoiceEnabled)
	h.submit("/voice")
	assert.False(t, h.store.Snapshot().VoiceEnabled)

	h.submit("/theme light")
	assert.False(t, h.model.theme.IsDark)
	assert.False(t, h.store.Snapshot().DarkMode)

	h.key(tea.KeyCtrlT)
	assert.True(t, h.model.theme.IsDark)
	assert.True(t, h.store.Snapshot().DarkMode)

	h.submit("/theme purple")
	assert.Contains(t, h.model.Status(), "expected dark or light")
}

func TestCommand_Upload(t *testing.T) {
	h := newHarness(t)
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello file"), 0o600))

	h.submit("/upload " + path)

	conv := h.current(t)
	require.Len(t, conv.Messages, 2)
	assert.Equal(t, extract.ReadingPrefix+"notes.txt", conv.Messages[0].Text)
	assert.Equal(t, extract.TextPrefix+"hello file", conv.Messages[1].Text)
	assert.False(t, h.store.Snapshot().Loading())
}

func TestCommand_UploadMissingFile(t *testing.T) {
	h := newHarness(t)
	h.submit("/upload /definitely/not/here.txt")

	assert.Empty(t, h.store.Snapshot().Conversations)
	assert.True(t, strings.HasPrefix(h.model.Status(), extract.ReadFailurePrefix))
}

func TestCommand_Export(t *testing.T) {
	h := newHarness(t)
	h.submit("hello")

	dir := t.TempDir()
	h.submit("/export json " + dir)
	require.True(t, strings.HasPrefix(h.model.Status(), "Exported to "), h.model.Status())

	path := strings.TrimPrefix(h.model.Status(), "Exported to ")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"hello"`)
}

func TestCommand_Help(t *testing.T) {
	h := newHarness(t)
	h.submit("/help")
	view := h.model.View()
	assert.Contains(t, view, "/rename <name>")
	assert.Contains(t, view, ".docx")

	h.key(tea.KeyEsc)
	assert.NotContains(t, h.model.View(), "/rename <name>")
}

func TestTabCompletesCommands(t *testing.T) {
	h := newHarness(t)
	h.typeText("/ren")
	h.key(tea.KeyTab)
	assert.Equal(t, "/rename ", h.model.InputValue())
	assert.Equal(t, focusInput, h.model.focus)
}

// =============================================================================
// CLIPBOARD AND SETTINGS
// =============================================================================

func TestCopyLastReply(t *testing.T) {
	h := newHarness(t)
	h.key(tea.KeyCtrlY)
	assert.Equal(t, "No conversation to copy from", h.model.Status())

	h.submit("hello")
	h.key(tea.KeyCtrlY)
	assert.Equal(t, "hi", h.clipboard.text)
	assert.Contains(t, h.model.Status(), "Copied reply")

	h.clipboard.err = errors.New("no clipboard utility")
	h.submit("/copy")
	assert.Contains(t, h.model.Status(), "no clipboard utility")
}

func TestSettingsMsg(t *testing.T) {
	h := newHarness(t)
	h.send(SettingsMsg{Dark: false, Voice: true})

	assert.False(t, h.model.theme.IsDark)
	snap := h.store.Snapshot()
	assert.True(t, snap.VoiceEnabled)
	assert.False(t, snap.DarkMode)
	assert.Contains(t, h.model.View(), "voice on")
}

func TestView_Layout(t *testing.T) {
	h := newHarness(t)
	view := h.model.View()

	assert.Contains(t, view, components.DefaultTitle)
	assert.Contains(t, view, components.SidebarTitle)
	assert.Contains(t, view, components.EmptyThreadText)
}

// =============================================================================
// HELPERS
// =============================================================================

func TestCommonPrefix(t *testing.T) {
	assert.Equal(t, "/voice o", commonPrefix([]string{"/voice on", "/voice off"}))
	assert.Equal(t, "", commonPrefix(nil))
	assert.Equal(t, "café", commonPrefix([]string{"café au lait", "café noir"}))
}
