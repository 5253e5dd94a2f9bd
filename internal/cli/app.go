// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/jeranaias/chatdesk/internal/chatapi"
	"github.com/jeranaias/chatdesk/internal/config"
	"github.com/jeranaias/chatdesk/internal/dispatch"
	"github.com/jeranaias/chatdesk/internal/extract"
	"github.com/jeranaias/chatdesk/internal/logger"
	"github.com/jeranaias/chatdesk/internal/speech"
	"github.com/jeranaias/chatdesk/internal/storage"
	"github.com/jeranaias/chatdesk/internal/store"
	"github.com/jeranaias/chatdesk/internal/ui/styles"
)

// =============================================================================
// APP
// =============================================================================

// App holds everything both front ends share.
type App struct {
	Config     *config.Config
	Store      *store.Store
	Client     *chatapi.Client
	Dispatcher *dispatch.Dispatcher
	Bridge     *extract.Bridge
	Speaker    *speech.CommandSpeaker

	archive *storage.Archive

	mu      sync.Mutex
	applied *config.Config
}

// NewApp builds the application from cfg. With storage.persist set, saved
// conversations are loaded and every change is written back.
func NewApp(cfg *config.Config) (*App, error) {
	initial := store.State{VoiceEnabled: cfg.Voice.Enabled}
	storeOpts := store.Options{}

	var archive *storage.Archive
	if cfg.Storage.Persist {
		path := cfg.Storage.Path
		if path == "" {
			path = storage.DefaultPath()
		}
		a, err := storage.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open conversation archive: %w", err)
		}
		convs, err := a.LoadAll()
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("load conversations: %w", err)
		}
		initial.Conversations = convs
		if n := len(convs); n > 0 {
			initial.CurrentID = convs[n-1].ID
		}
		archive = a
		storeOpts.Archive = a
		logger.Info("conversation archive opened", "path", path, "conversations", len(convs))
	}
	storeOpts.Initial = initial
	st := store.New(storeOpts)

	// The request timeout is enforced per send by the dispatcher.
	client := chatapi.NewClient(chatapi.Config{
		Endpoint:  cfg.Chat.Endpoint,
		UserAgent: "chatdesk/" + Version,
	})

	speaker := speech.NewCommandSpeaker(cfg.Voice.Command, cfg.Voice.Args)

	disp := dispatch.New(st, client, dispatch.Options{
		SystemPrompt: cfg.Chat.SystemPrompt,
		ModeTag:      cfg.Chat.ModeTag,
		NoModeTag:    cfg.Chat.DisableModeTag,
		Timeout:      cfg.Chat.RequestTimeout(),
		Speaker:      speaker,
	})

	bridgeOpts := extract.Options{
		PDF:      extract.FitzPDF{},
		Word:     extract.DocxReader{},
		Language: cfg.OCR.Language,
	}
	if cfg.OCR.APIKey != "" {
		bridgeOpts.OCR = extract.NewVisionOCR(extract.VisionConfig{
			BaseURL: cfg.OCR.BaseURL,
			APIKey:  cfg.OCR.APIKey,
			Model:   cfg.OCR.Model,
		})
	} else {
		logger.Debug("image OCR disabled, no API key configured")
	}

	logger.Debug("app ready", "endpoint", client.Endpoint(), "persist", cfg.Storage.Persist)

	return &App{
		Config:     cfg,
		Store:      st,
		Client:     client,
		Dispatcher: disp,
		Bridge:     extract.New(st, bridgeOpts),
		Speaker:    speaker,
		archive:    archive,
		applied:    cfg,
	}, nil
}

// ApplyConfig updates the runtime settings a reloaded config may change and
// returns the resulting state. A setting is applied only when its value in
// cfg differs from the previously applied config, so a toggle made in the
// running session survives unrelated edits. An "auto" theme keeps the
// current palette. Everything else takes effect on the next start.
func (a *App) ApplyConfig(cfg *config.Config) store.State {
	a.mu.Lock()
	prev := a.applied
	a.applied = cfg
	a.mu.Unlock()

	if prev == nil || cfg.Voice.Enabled != prev.Voice.Enabled {
		a.Store.SetVoice(cfg.Voice.Enabled)
	}
	if prev == nil || cfg.UI.Theme != prev.UI.Theme {
		switch cfg.UI.Theme {
		case "dark", "light":
			a.Store.SetDarkMode(styles.DetectDark(cfg.UI.Theme))
		}
	}
	return a.Store.Snapshot()
}

// Close stops speech and closes the archive.
func (a *App) Close() error {
	a.Speaker.Stop()
	if a.archive == nil {
		return nil
	}
	if err := a.archive.Close(); err != nil && !errors.Is(err, storage.ErrClosed) {
		return err
	}
	return nil
}

// watchConfig calls onChange with every reload of path until stop is called.
// A missing config directory just disables reloading.
func watchConfig(path string, onChange func(*config.Config)) (stop func()) {
	w, err := config.Watch(path, onChange)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Debug("config watch disabled", "path", path, "error", err)
		} else {
			logger.Warn("config watch disabled", "path", path, "error", err)
		}
		return func() {}
	}
	return func() { w.Close() }
}
