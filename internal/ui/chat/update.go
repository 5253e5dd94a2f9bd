// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/chatdesk/internal/commands"
	"github.com/jeranaias/chatdesk/internal/dispatch"
	"github.com/jeranaias/chatdesk/internal/extract"
	"github.com/jeranaias/chatdesk/internal/logger"
)

// =============================================================================
// UPDATE
// =============================================================================

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case replyMsg:
		return m.handleReply(msg)

	case uploadMsg:
		return m.handleUpload(msg)

	case SettingsMsg:
		return m.handleSettings(msg)

	case spinner.TickMsg:
		if !m.store.Snapshot().Loading() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	if m.focus == focusPicker {
		return m.updatePicker(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.layout()
	m.rerender()
	return m, nil
}

func (m Model) handleReply(msg replyMsg) (tea.Model, tea.Cmd) {
	switch msg.result.Outcome {
	case dispatch.OutcomeConnectionError, dispatch.OutcomeRemoteError:
		m.setStatus(msg.result.Message.Text, true)
	}
	m.refresh()
	return m, nil
}

func (m Model) handleUpload(msg uploadMsg) (tea.Model, tea.Cmd) {
	if msg.result.Err != nil {
		m.setStatus(msg.result.Message.Text, true)
	}
	m.refresh()
	return m, nil
}

func (m Model) handleSettings(msg SettingsMsg) (tea.Model, tea.Cmd) {
	m.store.SetVoice(msg.Voice)
	if msg.Dark != m.theme.IsDark {
		m.applyTheme(msg.Dark)
	}
	m.refresh()
	return m, nil
}

// =============================================================================
// KEYS
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}

	if m.showHelp {
		m.showHelp = false
		m.rerender()
		if key.Matches(msg, m.keys.Cancel) {
			return m, nil
		}
	}

	if m.focus == focusPicker {
		if key.Matches(msg, m.keys.Cancel) {
			m.focus = focusInput
			m.clearStatus()
			return m, m.input.Focus()
		}
		return m.updatePicker(msg)
	}

	switch {
	case key.Matches(msg, m.keys.New):
		return m.newConversation()
	case key.Matches(msg, m.keys.Search):
		return m.focusSearch()
	case key.Matches(msg, m.keys.Theme):
		return m.toggleTheme()
	case key.Matches(msg, m.keys.Copy):
		return m.copyLastReply()
	case key.Matches(msg, m.keys.Upload):
		return m.openPicker()
	case key.Matches(msg, m.keys.Rename):
		return m.prepareRename()
	case key.Matches(msg, m.keys.PageUp):
		m.viewport.HalfViewUp()
		return m, nil
	case key.Matches(msg, m.keys.PageDown):
		m.viewport.HalfViewDown()
		return m, nil
	}

	switch m.focus {
	case focusSidebar:
		return m.handleSidebarKey(msg)
	case focusSearch:
		return m.handleSearchKey(msg)
	default:
		return m.handleInputKey(msg)
	}
}

func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Send):
		return m.submit()
	case key.Matches(msg, m.keys.Focus):
		if commands.IsCommand(m.input.Value()) {
			return m.completeInput()
		}
		return m.focusSidebar()
	case key.Matches(msg, m.keys.Cancel):
		m.clearStatus()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleSidebarKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		m.sidebar.MoveUp()
	case key.Matches(msg, m.keys.Down):
		m.sidebar.MoveDown()
	case key.Matches(msg, m.keys.Send):
		if c, ok := m.sidebar.Highlighted(); ok {
			m.store.SelectConversation(c.ID)
			m.refresh()
		}
		return m.focusInput()
	case key.Matches(msg, m.keys.Focus), key.Matches(msg, m.keys.Cancel):
		return m.focusInput()
	}
	return m, nil
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.sidebar.ClearSearch()
		m.refresh()
		return m.focusInput()
	case key.Matches(msg, m.keys.Send), key.Matches(msg, m.keys.Focus):
		m.sidebar.BlurSearch()
		return m.focusSidebar()
	case msg.Type == tea.KeyUp:
		m.sidebar.MoveUp()
		return m, nil
	case msg.Type == tea.KeyDown:
		m.sidebar.MoveDown()
		return m, nil
	}

	changed, cmd := m.sidebar.UpdateSearch(msg)
	if changed {
		m.refresh()
	}
	return m, cmd
}

// =============================================================================
// FOCUS
// =============================================================================

func (m Model) focusInput() (tea.Model, tea.Cmd) {
	m.focus = focusInput
	m.sidebar.Focused = false
	m.sidebar.BlurSearch()
	return m, m.input.Focus()
}

func (m Model) focusSidebar() (tea.Model, tea.Cmd) {
	m.focus = focusSidebar
	m.sidebar.Focused = true
	m.input.Blur()
	return m, nil
}

func (m Model) focusSearch() (tea.Model, tea.Cmd) {
	m.focus = focusSearch
	m.sidebar.Focused = true
	m.input.Blur()
	return m, m.sidebar.FocusSearch()
}

// =============================================================================
// ACTIONS
// =============================================================================

// submit sends the input line or runs it as a slash command.
func (m Model) submit() (tea.Model, tea.Cmd) {
	value := m.input.Value()
	m.input.Reset()
	m.clearStatus()

	if commands.IsCommand(value) {
		return m.runCommand(value)
	}

	p, ok := m.dispatcher.Begin(value)
	if !ok {
		return m, nil
	}
	m.refresh()
	return m, tea.Batch(m.spinner.Tick, completeSend(m.ctx, m.dispatcher, p))
}

func completeSend(ctx context.Context, d *dispatch.Dispatcher, p *dispatch.Pending) tea.Cmd {
	return func() tea.Msg {
		return replyMsg{result: d.Complete(ctx, p)}
	}
}

// startUpload reads path and hands it to the bridge.
func (m Model) startUpload(path string) (tea.Model, tea.Cmd) {
	f, err := extract.FileFromPath(path)
	if err != nil {
		logger.Warn("upload rejected", "path", path, "error", err)
		m.setStatus(extract.ReadFailurePrefix+err.Error(), true)
		return m, nil
	}

	p := m.bridge.Begin(f)
	m.refresh()
	return m, tea.Batch(m.spinner.Tick, completeUpload(m.ctx, m.bridge, p))
}

func completeUpload(ctx context.Context, b *extract.Bridge, p *extract.Pending) tea.Cmd {
	return func() tea.Msg {
		return uploadMsg{result: b.Complete(ctx, p)}
	}
}

func (m Model) newConversation() (tea.Model, tea.Cmd) {
	m.store.CreateConversation()
	m.sidebar.ClearSearch()
	m.refresh()
	m.sidebar.HighlightCurrent()
	return m.focusInput()
}

func (m Model) toggleTheme() (tea.Model, tea.Cmd) {
	m.applyTheme(m.store.ToggleDarkMode())
	m.setStatus("Theme: "+m.theme.ModeBadge(), false)
	return m, nil
}

// applyTheme switches the palette and redraws everything styled by it.
func (m *Model) applyTheme(dark bool) {
	m.store.SetDarkMode(dark)
	m.theme.SetDark(dark)
	m.spinner.Style = m.theme.Loading
	m.rerender()
}

func (m Model) copyLastReply() (tea.Model, tea.Cmd) {
	conv, ok := m.current()
	if !ok {
		m.setStatus("No conversation to copy from", true)
		return m, nil
	}
	reply, ok := conv.LastBotMessage()
	if !ok || reply.Text == "" {
		m.setStatus("No reply to copy", true)
		return m, nil
	}
	if err := m.clipboard(reply.Text); err != nil {
		logger.Warn("clipboard write failed", "error", err)
		m.setStatus("Failed to copy: "+err.Error(), true)
		return m, nil
	}
	m.setStatus(fmt.Sprintf("Copied reply to clipboard (%d chars)", len([]rune(reply.Text))), false)
	return m, nil
}

func (m Model) openPicker() (tea.Model, tea.Cmd) {
	fp := filepicker.New()
	fp.AllowedTypes = extract.UploadExtensions()
	fp.CurrentDirectory = m.startDir
	fp.AutoHeight = false
	fp.Height = m.viewport.Height - 1
	fp.ShowHidden = false

	m.picker = fp
	m.focus = focusPicker
	m.input.Blur()
	m.setStatus("Choose a file to read (esc to cancel)", false)
	return m, m.picker.Init()
}

func (m Model) updatePicker(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)

	if ok, path := m.picker.DidSelectFile(msg); ok {
		m.focus = focusInput
		m.clearStatus()
		next, uploadCmd := m.startUpload(path)
		nm := next.(Model)
		return nm, tea.Batch(cmd, nm.input.Focus(), uploadCmd)
	}
	if ok, _ := m.picker.DidSelectDisabledFile(msg); ok {
		m.setStatus(extract.UnsupportedText, true)
	}
	return m, cmd
}

// prepareRename selects the highlighted conversation and pre-fills the
// input with a rename command.
func (m Model) prepareRename() (tea.Model, tea.Cmd) {
	target, ok := m.current()
	if m.focus == focusSidebar || m.focus == focusSearch {
		target, ok = m.sidebar.Highlighted()
	}
	if !ok {
		m.setStatus("No conversation to rename", true)
		return m, nil
	}

	m.store.SelectConversation(target.ID)
	m.refresh()
	m.input.SetValue(`/rename "` + strings.ReplaceAll(target.Title(), `"`, `\"`) + `"`)
	m.input.CursorEnd()
	return m.focusInput()
}

// completeInput completes a slash command in place.
func (m Model) completeInput() (tea.Model, tea.Cmd) {
	candidates := m.completer.Line(m.input.Value())
	switch len(candidates) {
	case 0:
		m.setStatus("No completions", false)
	case 1:
		m.input.SetValue(candidates[0] + " ")
		m.input.CursorEnd()
		m.clearStatus()
	default:
		m.input.SetValue(commonPrefix(candidates))
		m.input.CursorEnd()
		m.setStatus(strings.Join(candidates, "  "), false)
	}
	return m, textinput.Blink
}

func commonPrefix(values []string) string {
	if len(values) == 0 {
		return ""
	}
	prefix := []rune(values[0])
	for _, v := range values[1:] {
		for !strings.HasPrefix(v, string(prefix)) {
			prefix = prefix[:len(prefix)-1]
		}
	}
	return string(prefix)
}
