// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/chatdesk/internal/model"
	"github.com/jeranaias/chatdesk/internal/ui/styles"
	"github.com/jeranaias/chatdesk/internal/util"
)

// =============================================================================
// SIDEBAR COMPONENT
// =============================================================================

// SidebarTitle heads the conversation list.
const SidebarTitle = "Previous conversations"

// Sidebar lists conversations with a search field above them.
type Sidebar struct {
	Width   int
	Height  int
	Focused bool

	// Now stamps the date labels. Defaults to time.Now.
	Now func() time.Time

	theme     *styles.Theme
	items     []model.Conversation
	currentID int64
	cursor    int
	offset    int
	search    textinput.Model
	searching bool
}

// NewSidebar creates an empty sidebar.
func NewSidebar(theme *styles.Theme) *Sidebar {
	ti := textinput.New()
	ti.Placeholder = "Search conversations"
	ti.Prompt = "🔍 "
	ti.CharLimit = 100

	return &Sidebar{
		Width:  32,
		Height: 20,
		theme:  theme,
		search: ti,
	}
}

// SetSize sets the outer dimensions, border included.
func (s *Sidebar) SetSize(width, height int) {
	s.Width = width
	s.Height = height
	s.search.Width = s.innerWidth() - 4
}

// SetItems replaces the listed conversations. The cursor stays on the same
// conversation when it is still listed.
func (s *Sidebar) SetItems(items []model.Conversation, currentID int64) {
	var keep int64
	if c, ok := s.Highlighted(); ok {
		keep = c.ID
	}
	s.items = items
	s.currentID = currentID

	s.cursor = 0
	for i, c := range items {
		if c.ID == keep {
			s.cursor = i
			break
		}
	}
	s.clampOffset()
}

// Items returns the listed conversations.
func (s *Sidebar) Items() []model.Conversation {
	return s.items
}

// Highlighted returns the conversation under the cursor.
func (s *Sidebar) Highlighted() (model.Conversation, bool) {
	if s.cursor < 0 || s.cursor >= len(s.items) {
		return model.Conversation{}, false
	}
	return s.items[s.cursor], true
}

// MoveUp moves the cursor one row up.
func (s *Sidebar) MoveUp() {
	if s.cursor > 0 {
		s.cursor--
		s.clampOffset()
	}
}

// MoveDown moves the cursor one row down.
func (s *Sidebar) MoveDown() {
	if s.cursor < len(s.items)-1 {
		s.cursor++
		s.clampOffset()
	}
}

// HighlightCurrent puts the cursor on the selected conversation.
func (s *Sidebar) HighlightCurrent() {
	for i, c := range s.items {
		if c.ID == s.currentID {
			s.cursor = i
			s.clampOffset()
			return
		}
	}
}

// =============================================================================
// SEARCH
// =============================================================================

// FocusSearch starts editing the search term.
func (s *Sidebar) FocusSearch() tea.Cmd {
	s.searching = true
	return s.search.Focus()
}

// BlurSearch stops editing the search term and keeps it.
func (s *Sidebar) BlurSearch() {
	s.searching = false
	s.search.Blur()
}

// ClearSearch empties the search term and stops editing it.
func (s *Sidebar) ClearSearch() {
	s.search.Reset()
	s.BlurSearch()
}

// Searching reports whether the search field has focus.
func (s *Sidebar) Searching() bool {
	return s.searching
}

// SetQuery replaces the search term.
func (s *Sidebar) SetQuery(term string) {
	s.search.SetValue(term)
}

// Query returns the current search term.
func (s *Sidebar) Query() string {
	return s.search.Value()
}

// UpdateSearch feeds msg to the search field and reports whether the term
// changed.
func (s *Sidebar) UpdateSearch(msg tea.Msg) (bool, tea.Cmd) {
	before := s.search.Value()
	var cmd tea.Cmd
	s.search, cmd = s.search.Update(msg)
	return s.search.Value() != before, cmd
}

// =============================================================================
// RENDERING
// =============================================================================

func (s *Sidebar) innerWidth() int {
	w := s.Width - 4 // border + padding
	if w < 8 {
		w = 8
	}
	return w
}

// listHeight is the number of rows available for conversations.
func (s *Sidebar) listHeight() int {
	// border(2) + title and margin(2) + search(1) + hint(1) + slack(1)
	h := s.Height - 7
	if h < 1 {
		h = 1
	}
	return h
}

func (s *Sidebar) clampOffset() {
	rows := s.listHeight()
	if s.cursor < s.offset {
		s.offset = s.cursor
	}
	if s.cursor >= s.offset+rows {
		s.offset = s.cursor - rows + 1
	}
	if s.offset < 0 {
		s.offset = 0
	}
}

// View renders the sidebar.
func (s *Sidebar) View() string {
	t := s.theme
	inner := s.innerWidth()
	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}

	var b strings.Builder
	b.WriteString(t.SidebarTitle.Render(util.FitWidth(SidebarTitle, inner)))
	b.WriteString("\n")

	if s.searching || s.Query() != "" {
		b.WriteString(s.search.View())
	} else {
		b.WriteString(t.SidebarHint.Render(util.FitWidth("ctrl+f search", inner)))
	}
	b.WriteString("\n")

	rows := s.listHeight()
	switch {
	case len(s.items) == 0 && s.Query() != "":
		b.WriteString(t.Muted.Render("No matches"))
		rows--
	case len(s.items) == 0:
		b.WriteString(t.Muted.Render("No conversations yet"))
		rows--
	}

	end := s.offset + rows
	if end > len(s.items) {
		end = len(s.items)
	}
	for i := s.offset; i < end; i++ {
		b.WriteString(s.renderItem(s.items[i], i == s.cursor, inner, now))
		if i < end-1 {
			b.WriteString("\n")
		}
	}

	padding := rows - (end - s.offset)
	if len(s.items) == 0 {
		padding = rows
	}
	b.WriteString(strings.Repeat("\n", padding+1))
	b.WriteString(t.SidebarHint.Render(util.FitWidth("ctrl+n new conversation", inner)))

	style := t.Sidebar
	if s.Focused {
		style = t.SidebarFocused
	}
	return style.Width(s.Width - 2).Render(b.String())
}

func (s *Sidebar) renderItem(c model.Conversation, highlighted bool, width int, now time.Time) string {
	t := s.theme
	date := model.FormatDate(c.ID, now)

	marker := "  "
	if c.ID == s.currentID {
		marker = "▸ "
	}
	titleWidth := width - util.StringWidth(marker) - util.StringWidth(date) - 1
	if titleWidth < 1 {
		titleWidth = 1
	}
	title := util.PadWidth(util.FitWidth(util.FirstLine(c.Title()), titleWidth), titleWidth)

	style := t.SidebarItem
	if c.ID == s.currentID {
		style = t.SidebarCurrent
	}
	line := style.Render(marker+title) + " " + t.SidebarDate.Render(date)
	if highlighted && s.Focused {
		line = t.SidebarCursor.Render(line)
	}
	return line
}
