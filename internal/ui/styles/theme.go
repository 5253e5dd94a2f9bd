// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds every style the chat view renders with.
type Theme struct {
	IsDark       bool
	ColorProfile termenv.Profile

	// Layout
	App    lipgloss.Style
	Header lipgloss.Style
	Badge  lipgloss.Style
	Status lipgloss.Style

	// Sidebar
	Sidebar        lipgloss.Style
	SidebarFocused lipgloss.Style
	SidebarTitle   lipgloss.Style
	SidebarItem    lipgloss.Style
	SidebarCurrent lipgloss.Style
	SidebarCursor  lipgloss.Style
	SidebarDate    lipgloss.Style
	SidebarHint    lipgloss.Style
	SearchPrompt   lipgloss.Style

	// Thread
	UserBubble lipgloss.Style
	BotBubble  lipgloss.Style
	Sender     lipgloss.Style
	Attachment lipgloss.Style
	Loading    lipgloss.Style
	Empty      lipgloss.Style

	// Input
	Input        lipgloss.Style
	InputFocused lipgloss.Style

	// Feedback
	Error   lipgloss.Style
	Success lipgloss.Style
	Muted   lipgloss.Style
}

// DetectDark resolves a theme setting. "auto" asks the terminal.
func DetectDark(setting string) bool {
	switch strings.ToLower(setting) {
	case "dark":
		return true
	case "light":
		return false
	default:
		return termenv.HasDarkBackground()
	}
}

// NewTheme creates a theme for a dark or light background.
func NewTheme(dark bool) *Theme {
	t := &Theme{ColorProfile: termenv.ColorProfile()}
	t.SetDark(dark)
	return t
}

// SetDark switches the palette and rebuilds the styles.
func (t *Theme) SetDark(dark bool) {
	t.IsDark = dark
	lipgloss.SetHasDarkBackground(dark)
	t.initStyles()
}

// GlamourStyle names the markdown style matching the palette.
func (t *Theme) GlamourStyle() string {
	if t.IsDark {
		return "dark"
	}
	return "light"
}

// ModeBadge returns the icon shown for the current palette.
func (t *Theme) ModeBadge() string {
	if t.IsDark {
		return "🌙 dark"
	}
	return "☀ light"
}

func (t *Theme) initStyles() {
	t.App = lipgloss.NewStyle().Foreground(TextPrimary)

	t.Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(Cyan).
		Padding(0, 1)

	t.Badge = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Padding(0, 1)

	t.Status = lipgloss.NewStyle().
		Foreground(TextMuted).
		Padding(0, 1)

	t.Sidebar = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.SidebarFocused = t.Sidebar.
		BorderForeground(Purple)

	t.SidebarTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Purple).
		MarginBottom(1)

	t.SidebarItem = lipgloss.NewStyle().
		Foreground(TextPrimary)

	t.SidebarCurrent = lipgloss.NewStyle().
		Bold(true).
		Foreground(Cyan)

	t.SidebarCursor = lipgloss.NewStyle().
		Background(SurfaceBright)

	t.SidebarDate = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.SidebarHint = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	t.SearchPrompt = lipgloss.NewStyle().
		Foreground(Cyan)

	t.UserBubble = lipgloss.NewStyle().
		Foreground(UserBubbleFg).
		Background(UserBubbleBg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(UserBubbleBorder).
		Padding(0, 1)

	t.BotBubble = lipgloss.NewStyle().
		Foreground(BotBubbleFg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(BotBubbleBorder).
		Padding(0, 1)

	t.Sender = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextSecondary)

	t.Attachment = lipgloss.NewStyle().
		Foreground(Cyan).
		Underline(true)

	t.Loading = lipgloss.NewStyle().
		Foreground(Amber).
		Italic(true)

	t.Empty = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true).
		Padding(1, 2)

	t.Input = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.InputFocused = t.Input.
		BorderForeground(Cyan)

	t.Error = lipgloss.NewStyle().Foreground(Rose)
	t.Success = lipgloss.NewStyle().Foreground(Emerald)
	t.Muted = lipgloss.NewStyle().Foreground(TextMuted)
}
