// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"iter"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/cases"

	"github.com/jeranaias/chatdesk/internal/logger"
	"github.com/jeranaias/chatdesk/internal/model"
)

// Archive receives every conversation that changes. It is optional; nil
// keeps state in memory only.
type Archive interface {
	SaveConversation(conv model.Conversation) error
}

// Options configures a Store.
type Options struct {
	// Initial is the starting state, e.g. conversations restored from disk.
	Initial State

	// Archive persists changed conversations when non-nil.
	Archive Archive

	// Clock supplies conversation ids. Defaults to time.Now.
	Clock func() time.Time
}

// Store is the single owner of State. All methods are safe for concurrent
// use.
type Store struct {
	mu      sync.Mutex
	state   State
	version uint64
	lastID  int64
	clock   func() time.Time
	archive Archive
	fold    cases.Caser
}

// New creates a store from opts.
func New(opts Options) *Store {
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	s := &Store{
		state:   opts.Initial,
		clock:   clock,
		archive: opts.Archive,
		fold:    cases.Fold(),
	}
	for _, c := range opts.Initial.Conversations {
		if c.ID > s.lastID {
			s.lastID = c.ID
		}
	}
	return s
}

// =============================================================================
// READS
// =============================================================================

// Snapshot returns the last committed state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Version increases on every committed change. Front ends compare it to
// decide whether to redraw.
func (s *Store) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// Conversation returns a copy of the conversation with the given id. The
// caller may modify its messages without touching the store.
func (s *Store) Conversation(id int64) (model.Conversation, bool) {
	c, i := s.Snapshot().Find(id)
	if i < 0 {
		return model.Conversation{}, false
	}
	return c.Clone(), true
}

// FilterConversations yields the conversations whose title contains term,
// ignoring case, in creation order. An empty term yields all of them. The
// sequence reads the state committed when it is called and can be ranged
// over any number of times.
func (s *Store) FilterConversations(term string) iter.Seq[model.Conversation] {
	convs := s.Snapshot().Conversations
	needle := s.foldString(term)

	return func(yield func(model.Conversation) bool) {
		for _, c := range convs {
			if needle != "" && !strings.Contains(s.foldString(c.Title()), needle) {
				continue
			}
			if !yield(c) {
				return
			}
		}
	}
}

// foldString case-folds v. cases.Caser is stateful so access is serialized.
func (s *Store) foldString(v string) string {
	if v == "" {
		return ""
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fold.String(v)
}

// =============================================================================
// WRITES
// =============================================================================

// CreateConversation adds an empty conversation, selects it and returns its
// id. Ids come from the clock in milliseconds and are strictly increasing.
func (s *Store) CreateConversation() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextIDLocked()
	s.commitLocked(s.state.WithConversation(id), id)
	logger.Debug("conversation created", "conversation", id)
	return id
}

// EnsureCurrent returns the selected conversation id, creating one when the
// selection is empty or stale.
func (s *Store) EnsureCurrent() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.state.Current(); ok {
		return s.state.CurrentID
	}
	id := s.nextIDLocked()
	s.commitLocked(s.state.WithConversation(id), id)
	logger.Debug("conversation created lazily", "conversation", id)
	return id
}

// AppendMessage adds msg to the end of conversation id. Unknown ids are
// ignored.
func (s *Store) AppendMessage(id int64, msg model.Message) {
	s.apply(id, func(st State) State { return st.WithMessage(id, msg) })
}

// RenameConversation sets the name of conversation id when name is not
// empty.
func (s *Store) RenameConversation(id int64, name string) {
	s.apply(id, func(st State) State { return st.WithName(id, name) })
}

// SelectConversation makes id current without checking that it exists.
func (s *Store) SelectConversation(id int64) {
	s.apply(0, func(st State) State { return st.WithCurrent(id) })
}

// BeginRequest marks one more request in flight.
func (s *Store) BeginRequest() {
	s.apply(0, func(st State) State { return st.WithPending(1) })
}

// EndRequest marks one request as finished.
func (s *Store) EndRequest() {
	s.apply(0, func(st State) State { return st.WithPending(-1) })
}

// SetVoice switches voice output.
func (s *Store) SetVoice(on bool) {
	s.apply(0, func(st State) State { return st.WithVoice(on) })
}

// ToggleVoice flips voice output and returns the new setting.
func (s *Store) ToggleVoice() bool {
	var on bool
	s.apply(0, func(st State) State {
		on = !st.VoiceEnabled
		return st.WithVoice(on)
	})
	return on
}

// SetDarkMode switches the theme.
func (s *Store) SetDarkMode(on bool) {
	s.apply(0, func(st State) State { return st.WithDarkMode(on) })
}

// ToggleDarkMode flips the theme and returns the new setting.
func (s *Store) ToggleDarkMode() bool {
	var on bool
	s.apply(0, func(st State) State {
		on = !st.DarkMode
		return st.WithDarkMode(on)
	})
	return on
}

// apply runs reducer against the committed state. changed names the
// conversation to hand to the archive, 0 for none.
func (s *Store) apply(changed int64, reducer func(State) State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commitLocked(reducer(s.state), changed)
}

func (s *Store) commitLocked(next State, changed int64) {
	s.state = next
	s.version++

	if s.archive == nil || changed == 0 {
		return
	}
	conv, idx := next.Find(changed)
	if idx < 0 {
		return
	}
	if err := s.archive.SaveConversation(conv); err != nil {
		logger.Warn("failed to archive conversation", "conversation", changed, "error", err)
	}
}

// nextIDLocked returns the clock in ms, bumped past the previous id when two
// conversations are created within the same millisecond.
func (s *Store) nextIDLocked() int64 {
	id := s.clock().UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return id
}
