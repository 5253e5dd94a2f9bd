// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/chatdesk/internal/util"
)

// =============================================================================
// VIEW
// =============================================================================

// View renders the screen: header, sidebar beside the thread, loading line,
// input bar and status line.
func (m Model) View() string {
	header := m.header.View()
	main := lipgloss.JoinVertical(lipgloss.Left,
		m.renderMain(),
		m.renderLoading(),
		m.renderInput(),
	)
	body := lipgloss.JoinHorizontal(lipgloss.Top, m.sidebar.View(), main)
	return lipgloss.JoinVertical(lipgloss.Left, header, body, m.renderStatus())
}

// renderMain shows the thread, the help page or the file picker.
func (m Model) renderMain() string {
	style := lipgloss.NewStyle().
		Width(m.viewport.Width).
		Height(m.viewport.Height).
		MaxHeight(m.viewport.Height)

	switch {
	case m.focus == focusPicker:
		title := m.theme.SidebarTitle.Render("Choose a file to read")
		return style.Render(lipgloss.JoinVertical(lipgloss.Left, title, m.picker.View()))
	case m.showHelp:
		return style.Render(m.theme.Muted.Render(m.helpText()))
	default:
		return m.viewport.View()
	}
}

func (m Model) renderLoading() string {
	if !m.store.Snapshot().Loading() {
		return ""
	}
	return m.spinner.View() + " " + m.theme.Loading.Render(LoadingText)
}

func (m Model) renderInput() string {
	style := m.theme.Input
	if m.focus == focusInput {
		style = m.theme.InputFocused
	}
	return style.Width(m.viewport.Width - 2).Render(m.input.View())
}

func (m Model) renderStatus() string {
	if m.status == "" {
		return m.theme.Status.Render(m.help.View(m.keys))
	}
	text := util.FitWidth(strings.ReplaceAll(m.status, "\n", " "), m.width-2)
	if m.statusErr {
		return m.theme.Status.Render(m.theme.Error.Render(text))
	}
	return m.theme.Status.Render(m.theme.Success.Render(text))
}
