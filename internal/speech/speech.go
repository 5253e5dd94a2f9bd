// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package speech reads bot replies aloud through the platform's speech
// synthesizer command.
package speech

import (
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/jeranaias/chatdesk/internal/logger"
)

// Errors returned by Speak.
var (
	ErrBusy        = errors.New("speech already in progress")
	ErrUnavailable = errors.New("no speech synthesizer available")
)

// Speaker is the voice output used by the dispatcher.
type Speaker interface {
	// Speak starts reading text and returns without waiting for it to end.
	Speak(text string) error

	// Speaking reports whether an utterance is still playing.
	Speaking() bool
}

// DefaultCommand returns the synthesizer for the current platform.
func DefaultCommand() (string, []string) {
	switch runtime.GOOS {
	case "darwin":
		return "say", nil
	default:
		return "espeak", []string{"-v", "en"}
	}
}

// CommandSpeaker runs an external program with the text as its last
// argument. One utterance plays at a time.
type CommandSpeaker struct {
	command string
	args    []string

	speaking atomic.Bool

	mu  sync.Mutex
	cmd *exec.Cmd
}

// NewCommandSpeaker creates a speaker. An empty command selects the
// platform default.
func NewCommandSpeaker(command string, args []string) *CommandSpeaker {
	if command == "" {
		command, args = DefaultCommand()
	}
	return &CommandSpeaker{command: command, args: args}
}

// Speaking reports whether an utterance is still playing.
func (s *CommandSpeaker) Speaking() bool {
	return s.speaking.Load()
}

// Speak starts the synthesizer. It returns ErrBusy while a previous
// utterance is playing.
func (s *CommandSpeaker) Speak(text string) error {
	if !s.speaking.CompareAndSwap(false, true) {
		return ErrBusy
	}

	path, err := exec.LookPath(s.command)
	if err != nil {
		s.speaking.Store(false)
		return fmt.Errorf("%w: %s", ErrUnavailable, s.command)
	}

	args := append(append([]string{}, s.args...), text)
	cmd := exec.Command(path, args...)
	if err := cmd.Start(); err != nil {
		s.speaking.Store(false)
		return fmt.Errorf("failed to start %s: %w", s.command, err)
	}

	s.mu.Lock()
	s.cmd = cmd
	s.mu.Unlock()

	go func() {
		if err := cmd.Wait(); err != nil {
			logger.Debug("speech ended with error", "command", s.command, "error", err)
		}
		s.mu.Lock()
		s.cmd = nil
		s.mu.Unlock()
		s.speaking.Store(false)
	}()
	return nil
}

// Stop interrupts the current utterance, if any.
func (s *CommandSpeaker) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cmd != nil && s.cmd.Process != nil {
		s.cmd.Process.Kill()
	}
}
