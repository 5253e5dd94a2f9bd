// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"slices"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/chatdesk/internal/commands"
	"github.com/jeranaias/chatdesk/internal/dispatch"
	"github.com/jeranaias/chatdesk/internal/extract"
	"github.com/jeranaias/chatdesk/internal/model"
	"github.com/jeranaias/chatdesk/internal/store"
	"github.com/jeranaias/chatdesk/internal/ui/components"
	"github.com/jeranaias/chatdesk/internal/ui/styles"
)

// =============================================================================
// MODEL
// =============================================================================

// focus is the region receiving key presses.
type focus int

const (
	focusInput focus = iota
	focusSidebar
	focusSearch
	focusPicker
)

// Layout constants.
const (
	DefaultSidebarWidth = 32
	headerHeight        = 1
	statusHeight        = 1
	loadingHeight       = 1
	inputHeight         = 3 // bordered single line
)

// LoadingText is shown while a request is in flight.
const LoadingText = "⏳ The bot is thinking..."

// Options wires the model to the rest of the application.
type Options struct {
	Store      *store.Store
	Dispatcher *dispatch.Dispatcher
	Bridge     *extract.Bridge
	Theme      *styles.Theme

	// Registry defaults to commands.NewRegistry().
	Registry *commands.Registry

	SidebarWidth int

	// ExportDir is the default /export target. Empty means the working
	// directory.
	ExportDir string

	// StartDir is where the file picker opens. Empty means the working
	// directory.
	StartDir string

	// Context bounds every request. Defaults to context.Background().
	Context context.Context

	// Clipboard defaults to clipboard.WriteAll.
	Clipboard func(string) error
}

// Model is the Bubble Tea model of the chat screen.
type Model struct {
	store      *store.Store
	dispatcher *dispatch.Dispatcher
	bridge     *extract.Bridge
	theme      *styles.Theme
	registry   *commands.Registry
	parser     *commands.Parser
	completer  *commands.Completer
	ctx        context.Context
	clipboard  func(string) error

	keys     KeyMap
	help     help.Model
	header   *components.Header
	sidebar  *components.Sidebar
	thread   *components.Thread
	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model
	picker   filepicker.Model

	focus        focus
	showHelp     bool
	width        int
	height       int
	sidebarWidth int
	exportDir    string
	startDir     string

	status    string
	statusErr bool

	// renderedVersion is the store version shown in the viewport.
	renderedVersion uint64
	renderedDark    bool
	rendered        bool
}

// New creates the chat model.
func New(opts Options) Model {
	if opts.Registry == nil {
		opts.Registry = commands.NewRegistry()
	}
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	if opts.Clipboard == nil {
		opts.Clipboard = clipboard.WriteAll
	}
	if opts.SidebarWidth <= 0 {
		opts.SidebarWidth = DefaultSidebarWidth
	}
	if opts.StartDir == "" {
		opts.StartDir = "."
	}

	// the store owns the dark mode flag from here on
	opts.Store.SetDarkMode(opts.Theme.IsDark)

	ti := textinput.New()
	ti.Placeholder = "Type a message or /help"
	ti.Prompt = "> "
	ti.CharLimit = 0
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = opts.Theme.Loading

	completer := commands.NewCompleter(opts.Registry)

	m := Model{
		store:        opts.Store,
		dispatcher:   opts.Dispatcher,
		bridge:       opts.Bridge,
		theme:        opts.Theme,
		registry:     opts.Registry,
		parser:       commands.NewParser(opts.Registry),
		completer:    completer,
		ctx:          opts.Context,
		clipboard:    opts.Clipboard,
		keys:         DefaultKeyMap(),
		help:         help.New(),
		header:       components.NewHeader(opts.Theme),
		sidebar:      components.NewSidebar(opts.Theme),
		thread:       components.NewThread(opts.Theme),
		viewport:     viewport.New(80, 20),
		input:        ti,
		spinner:      sp,
		sidebarWidth: opts.SidebarWidth,
		exportDir:    opts.ExportDir,
		startDir:     opts.StartDir,
		width:        80,
		height:       24,
	}
	completer.ConversationsFn = m.conversationIDs
	m.layout()
	m.refresh()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// =============================================================================
// STATE SYNC
// =============================================================================

// refresh pulls the latest snapshot into the components. The thread is
// re-rendered only when the store or the palette changed.
func (m *Model) refresh() {
	snap := m.store.Snapshot()
	version := m.store.Version()

	m.header.Voice = snap.VoiceEnabled
	m.sidebar.SetItems(slices.Collect(m.store.FilterConversations(m.sidebar.Query())), snap.CurrentID)

	if m.rendered && version == m.renderedVersion && m.theme.IsDark == m.renderedDark {
		return
	}
	conv, _ := snap.Current()
	m.viewport.SetContent(m.thread.Render(conv))
	m.viewport.GotoBottom()
	m.renderedVersion = version
	m.renderedDark = m.theme.IsDark
	m.rendered = true
}

// rerender forces the thread to be rendered again on the next refresh.
func (m *Model) rerender() {
	m.rendered = false
	m.refresh()
}

// layout sizes every component from the window size.
func (m *Model) layout() {
	sw := m.sidebarWidth
	if sw > m.width/3 {
		sw = m.width / 3
	}
	bodyHeight := m.height - headerHeight - statusHeight
	if bodyHeight < inputHeight+loadingHeight+1 {
		bodyHeight = inputHeight + loadingHeight + 1
	}
	mainWidth := m.width - sw
	if mainWidth < 20 {
		mainWidth = 20
	}

	m.header.SetWidth(m.width)
	m.sidebar.SetSize(sw, bodyHeight)
	m.thread.SetWidth(mainWidth - 1)
	m.viewport.Width = mainWidth
	m.viewport.Height = bodyHeight - inputHeight - loadingHeight
	m.input.Width = mainWidth - 4 - len(m.input.Prompt) - 1
	m.help.Width = m.width
	m.picker.Height = m.viewport.Height - 1
}

// setStatus shows a one-line notice in the status bar.
func (m *Model) setStatus(text string, isErr bool) {
	m.status = text
	m.statusErr = isErr
}

func (m *Model) clearStatus() {
	m.status = ""
	m.statusErr = false
}

func (m Model) conversationIDs() []string {
	snap := m.store.Snapshot()
	ids := make([]string, 0, len(snap.Conversations))
	for _, c := range snap.Conversations {
		ids = append(ids, formatID(c.ID))
	}
	return ids
}

// current returns the selected conversation.
func (m Model) current() (model.Conversation, bool) {
	return m.store.Snapshot().Current()
}

// =============================================================================
// ACCESSORS
// =============================================================================

// Status returns the status bar text.
func (m Model) Status() string {
	return m.status
}

// InputValue returns the text in the input bar.
func (m Model) InputValue() string {
	return m.input.Value()
}
