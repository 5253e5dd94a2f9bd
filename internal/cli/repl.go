// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/glamour"
	"github.com/fatih/color"
	"github.com/peterh/liner"

	"github.com/jeranaias/chatdesk/internal/commands"
	"github.com/jeranaias/chatdesk/internal/config"
	"github.com/jeranaias/chatdesk/internal/dispatch"
	"github.com/jeranaias/chatdesk/internal/export"
	"github.com/jeranaias/chatdesk/internal/extract"
	"github.com/jeranaias/chatdesk/internal/logger"
	"github.com/jeranaias/chatdesk/internal/model"
	"github.com/jeranaias/chatdesk/internal/ui/styles"
)

// Prompt is shown before each REPL line.
const Prompt = "you> "

// =============================================================================
// LINE INPUT
// =============================================================================

// lineReader reads one line of input per call.
type lineReader interface {
	ReadLine(prompt string) (string, error)
	Close()
}

// historyReader provides line editing, history and tab completion.
type historyReader struct {
	line        *liner.State
	historyFile string
}

func newHistoryReader(completer *commands.Completer) *historyReader {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)
	line.SetCompleter(completer.Line)

	configDir, err := config.ConfigDir()
	if err != nil {
		configDir = os.TempDir()
	}
	r := &historyReader{
		line:        line,
		historyFile: filepath.Join(configDir, "chat_history"),
	}
	if f, err := os.Open(r.historyFile); err == nil {
		r.line.ReadHistory(f)
		f.Close()
	}
	return r
}

func (r *historyReader) ReadLine(prompt string) (string, error) {
	input, err := r.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		r.line.AppendHistory(input)
	}
	return input, nil
}

// Close saves history with owner-only permissions and restores the
// terminal.
func (r *historyReader) Close() {
	defer r.line.Close()

	if err := os.MkdirAll(filepath.Dir(r.historyFile), 0o700); err != nil {
		return
	}
	f, err := os.OpenFile(r.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return
	}
	defer f.Close()
	r.line.WriteHistory(f)
}

// scanReader reads piped input without prompting.
type scanReader struct {
	scanner *bufio.Scanner
}

func (r *scanReader) ReadLine(string) (string, error) {
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return r.scanner.Text(), nil
}

func (r *scanReader) Close() {}

// =============================================================================
// SESSION
// =============================================================================

// Session executes REPL lines against the shared app and prints the
// results.
type Session struct {
	app       *App
	out       io.Writer
	registry  *commands.Registry
	parser    *commands.Parser
	completer *commands.Completer

	// Markdown renders bot replies through glamour.
	Markdown bool
	// ExportDir is the default /export target.
	ExportDir string
	// Clipboard defaults to clipboard.WriteAll.
	Clipboard func(string) error
	// Now is used for list dates. Defaults to time.Now.
	Now func() time.Time

	renderer     *glamour.TermRenderer
	rendererDark bool

	userLabel func(a ...interface{}) string
	botLabel  func(a ...interface{}) string
	muted     func(a ...interface{}) string
	success   func(a ...interface{}) string
	failure   func(a ...interface{}) string
}

// NewSession creates a session that writes to out.
func NewSession(app *App, out io.Writer) *Session {
	registry := commands.NewRegistry()
	s := &Session{
		app:       app,
		out:       out,
		registry:  registry,
		parser:    commands.NewParser(registry),
		completer: commands.NewCompleter(registry),
		Clipboard: clipboard.WriteAll,
		Now:       time.Now,
		userLabel: color.New(color.FgGreen, color.Bold).SprintFunc(),
		botLabel:  color.New(color.FgCyan, color.Bold).SprintFunc(),
		muted:     color.New(color.FgHiBlack).SprintFunc(),
		success:   color.New(color.FgGreen).SprintFunc(),
		failure:   color.New(color.FgRed).SprintFunc(),
	}
	s.completer.ConversationsFn = s.conversationIDs
	return s
}

// Banner prints the greeting shown when the REPL starts.
func (s *Session) Banner() {
	fmt.Fprintf(s.out, "%s %s\n", s.botLabel("chatdesk"), Version)
	fmt.Fprintln(s.out, s.muted("Connected to "+s.app.Client.Endpoint()+". Type /help for commands, /quit to leave."))
}

// Handle runs one input line and reports whether the session should end.
func (s *Session) Handle(ctx context.Context, line string) (quit bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return false
	}
	if commands.IsCommand(trimmed) {
		return s.runCommand(ctx, trimmed)
	}
	s.send(ctx, line)
	return false
}

func (s *Session) send(ctx context.Context, text string) {
	fmt.Fprintln(s.out, s.muted("⏳ The bot is thinking..."))
	res := s.app.Dispatcher.Send(ctx, text)
	if res.Outcome == dispatch.OutcomeSkipped {
		return
	}
	s.printMessage(res.Message)
}

// =============================================================================
// SLASH COMMANDS
// =============================================================================

func (s *Session) runCommand(ctx context.Context, line string) bool {
	res := s.parser.Parse(line)
	if res.Error != nil {
		s.fail(res.Error)
		return false
	}
	st := s.app.Store

	switch res.Action() {
	case commands.ActionHelp:
		fmt.Fprint(s.out, s.registry.HelpText())
		fmt.Fprintln(s.out, "\nFile types: "+strings.Join(slices.Sorted(slices.Values(extract.UploadExtensions())), " "))

	case commands.ActionNew:
		id := st.CreateConversation()
		s.ok("Started conversation " + formatID(id))

	case commands.ActionRename:
		conv, ok := st.Snapshot().Current()
		if !ok {
			s.fail(errors.New("no conversation to rename"))
			return false
		}
		name := strings.TrimSpace(strings.Join(res.Args, " "))
		if name == "" {
			s.fail(errors.New("name cannot be empty"))
			return false
		}
		st.RenameConversation(conv.ID, name)
		s.ok("Renamed to " + name)

	case commands.ActionSelect:
		id, err := res.IntArg(0)
		if err != nil {
			s.fail(err)
			return false
		}
		conv, ok := st.Conversation(id)
		if !ok {
			s.fail(fmt.Errorf("no conversation with id %s", formatID(id)))
			return false
		}
		st.SelectConversation(id)
		s.printThread(conv)

	case commands.ActionList:
		s.printList(strings.Join(res.Args, " "))

	case commands.ActionUpload:
		s.upload(ctx, strings.Join(res.Args, " "))

	case commands.ActionVoice:
		on, err := commands.Toggle(res.Arg(0), "on", "off", !st.Snapshot().VoiceEnabled)
		if err != nil {
			s.fail(err)
			return false
		}
		st.SetVoice(on)
		if on {
			s.ok("Voice on")
		} else {
			s.ok("Voice off")
		}

	case commands.ActionTheme:
		dark, err := commands.Toggle(res.Arg(0), "dark", "light", !st.Snapshot().DarkMode)
		if err != nil {
			s.fail(err)
			return false
		}
		st.SetDarkMode(dark)
		s.ok("Theme: " + styles.NewTheme(dark).ModeBadge())

	case commands.ActionCopy:
		conv, _ := st.Snapshot().Current()
		msg, ok := conv.LastBotMessage()
		if !ok {
			s.fail(errors.New("no reply to copy"))
			return false
		}
		if err := s.Clipboard(msg.Text); err != nil {
			s.fail(fmt.Errorf("copy failed: %w", err))
			return false
		}
		s.ok(fmt.Sprintf("Copied reply to clipboard (%d chars)", len([]rune(msg.Text))))

	case commands.ActionExport:
		conv, ok := st.Snapshot().Current()
		if !ok || conv.IsEmpty() {
			s.fail(errors.New("no conversation to export"))
			return false
		}
		dir := res.Arg(1)
		if dir == "" {
			dir = s.ExportDir
		}
		path, err := export.ExportAs(conv, res.Arg(0), dir)
		if err != nil {
			logger.Warn("export failed", "conversation", conv.ID, "error", err)
			s.fail(err)
			return false
		}
		s.ok("Exported to " + path)

	case commands.ActionQuit:
		return true
	}
	return false
}

func (s *Session) upload(ctx context.Context, path string) {
	f, err := extract.FileFromPath(path)
	if err != nil {
		s.fail(errors.New(extract.ReadFailurePrefix + err.Error()))
		return
	}
	fmt.Fprintln(s.out, s.muted(extract.ReadingPrefix+f.Name))
	res := s.app.Bridge.Ingest(ctx, f)
	s.printMessage(res.Message)
}

// =============================================================================
// OUTPUT
// =============================================================================

func (s *Session) printList(term string) {
	now := s.Now()
	currentID := s.app.Store.Snapshot().CurrentID

	n := 0
	for conv := range s.app.Store.FilterConversations(term) {
		marker := " "
		if conv.ID == currentID {
			marker = "*"
		}
		fmt.Fprintf(s.out, "%s %s  %-20s %s\n",
			marker, formatID(conv.ID), model.FormatDate(conv.ID, now), conv.Title())
		n++
	}
	switch {
	case n > 0:
	case term != "":
		fmt.Fprintln(s.out, s.muted("No matches"))
	default:
		fmt.Fprintln(s.out, s.muted("No conversations yet"))
	}
}

func (s *Session) printThread(conv model.Conversation) {
	fmt.Fprintln(s.out, s.botLabel("── "+conv.Title()+" ──"))
	for _, msg := range conv.Messages {
		s.printMessage(msg)
	}
}

func (s *Session) printMessage(msg model.Message) {
	if msg.IsUser() {
		fmt.Fprintf(s.out, "%s %s\n", s.userLabel(msg.Sender.DisplayName()+":"), msg.Text)
		return
	}
	fmt.Fprintf(s.out, "%s %s\n", s.botLabel(msg.Sender.DisplayName()+":"), s.render(msg.Text))
}

// render formats bot text as markdown when enabled, falling back to the
// raw text on any renderer error.
func (s *Session) render(text string) string {
	if !s.Markdown {
		return text
	}
	dark := s.app.Store.Snapshot().DarkMode
	if s.renderer == nil || s.rendererDark != dark {
		r, err := glamour.NewTermRenderer(
			glamour.WithStylePath(styles.NewTheme(dark).GlamourStyle()),
			glamour.WithWordWrap(GetTerminalWidth()-4),
		)
		if err != nil {
			logger.Debug("markdown renderer unavailable", "error", err)
			return text
		}
		s.renderer = r
		s.rendererDark = dark
	}
	out, err := s.renderer.Render(text)
	if err != nil {
		return text
	}
	return "\n" + strings.TrimRight(out, "\n")
}

func (s *Session) ok(text string) {
	fmt.Fprintln(s.out, s.success(text))
}

func (s *Session) fail(err error) {
	fmt.Fprintln(s.out, s.failure(err.Error()))
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func (s *Session) conversationIDs() []string {
	convs := s.app.Store.Snapshot().Conversations
	ids := make([]string, 0, len(convs))
	for i := len(convs) - 1; i >= 0; i-- {
		ids = append(ids, formatID(convs[i].ID))
	}
	return ids
}

// =============================================================================
// RUN
// =============================================================================

// runREPL reads lines until /quit, EOF or ctrl+c at the prompt. Ctrl+c
// while a request is in flight cancels only that request.
func runREPL(ctx context.Context, app *App, configPath string, in io.Reader, out io.Writer) error {
	app.Store.SetDarkMode(styles.DetectDark(app.Config.UI.Theme))
	s := NewSession(app, out)
	s.Markdown = ColorsEnabled() && out == io.Writer(os.Stdout)

	stop := watchConfig(configPath, func(next *config.Config) {
		app.ApplyConfig(next)
		logger.Info("config reloaded", "path", configPath)
	})
	defer stop()

	var reader lineReader
	if in == io.Reader(os.Stdin) && IsTTY() {
		reader = newHistoryReader(s.completer)
	} else {
		reader = &scanReader{scanner: bufio.NewScanner(in)}
	}
	defer reader.Close()

	s.Banner()
	for {
		line, err := reader.ReadLine(Prompt)
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, liner.ErrPromptAborted) {
				return err
			}
			fmt.Fprintln(out)
			return nil
		}

		reqCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
		quit := s.Handle(reqCtx, line)
		stop()
		if quit {
			return nil
		}
	}
}
