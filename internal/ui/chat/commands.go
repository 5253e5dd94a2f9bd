// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/chatdesk/internal/commands"
	"github.com/jeranaias/chatdesk/internal/export"
	"github.com/jeranaias/chatdesk/internal/extract"
	"github.com/jeranaias/chatdesk/internal/logger"
)

// =============================================================================
// SLASH COMMANDS
// =============================================================================

// runCommand executes a slash command line.
func (m Model) runCommand(line string) (tea.Model, tea.Cmd) {
	res := m.parser.Parse(line)
	if res.Error != nil {
		m.setStatus(res.Error.Error(), true)
		return m, nil
	}

	logger.Debug("slash command", "command", res.Command.Name, "args", len(res.Args))

	switch res.Action() {
	case commands.ActionHelp:
		m.showHelp = true
		return m, nil

	case commands.ActionNew:
		return m.newConversation()

	case commands.ActionRename:
		conv, ok := m.current()
		if !ok {
			m.setStatus("No conversation to rename", true)
			return m, nil
		}
		name := strings.TrimSpace(strings.Join(res.Args, " "))
		if name == "" {
			m.setStatus("Name cannot be empty", true)
			return m, nil
		}
		m.store.RenameConversation(conv.ID, name)
		m.setStatus("Renamed to "+name, false)

	case commands.ActionSelect:
		id, err := res.IntArg(0)
		if err != nil {
			m.setStatus(err.Error(), true)
			return m, nil
		}
		if _, ok := m.store.Conversation(id); !ok {
			m.setStatus("No conversation with id "+formatID(id), true)
			return m, nil
		}
		m.store.SelectConversation(id)

	case commands.ActionList:
		m.sidebar.SetQuery(strings.Join(res.Args, " "))
		m.refresh()
		m.setStatus(fmt.Sprintf("%d conversation(s)", len(m.sidebar.Items())), false)
		return m.focusSidebar()

	case commands.ActionUpload:
		return m.startUpload(strings.Join(res.Args, " "))

	case commands.ActionVoice:
		on, err := commands.Toggle(res.Arg(0), "on", "off", !m.store.Snapshot().VoiceEnabled)
		if err != nil {
			m.setStatus(err.Error(), true)
			return m, nil
		}
		m.store.SetVoice(on)
		if on {
			m.setStatus("Voice on", false)
		} else {
			m.setStatus("Voice off", false)
		}

	case commands.ActionTheme:
		dark, err := commands.Toggle(res.Arg(0), "dark", "light", !m.theme.IsDark)
		if err != nil {
			m.setStatus(err.Error(), true)
			return m, nil
		}
		m.applyTheme(dark)
		m.setStatus("Theme: "+m.theme.ModeBadge(), false)

	case commands.ActionCopy:
		return m.copyLastReply()

	case commands.ActionExport:
		return m.exportCurrent(res.Arg(0), res.Arg(1))

	case commands.ActionQuit:
		return m, tea.Quit
	}

	m.refresh()
	return m, nil
}

func (m Model) exportCurrent(format, dir string) (tea.Model, tea.Cmd) {
	conv, ok := m.current()
	if !ok || conv.IsEmpty() {
		m.setStatus("No conversation to export", true)
		return m, nil
	}

	if dir == "" {
		dir = m.exportDir
	}
	path, err := export.ExportAs(conv, format, dir)
	if err != nil {
		logger.Warn("export failed", "conversation", conv.ID, "error", err)
		m.setStatus(err.Error(), true)
		return m, nil
	}
	m.setStatus("Exported to "+path, false)
	return m, nil
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

// helpText lists the slash commands and key bindings.
func (m Model) helpText() string {
	var b strings.Builder
	b.WriteString(m.registry.HelpText())
	b.WriteString("\nKeys:\n")
	for _, group := range m.keys.FullHelp() {
		for _, binding := range group {
			h := binding.Help()
			fmt.Fprintf(&b, "  %-8s %s\n", h.Key, h.Desc)
		}
	}
	b.WriteString("\nFile types: ")
	b.WriteString(strings.Join(slices.Sorted(slices.Values(extract.UploadExtensions())), " "))
	return b.String()
}
