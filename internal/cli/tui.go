// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/chatdesk/internal/config"
	"github.com/jeranaias/chatdesk/internal/ui/chat"
	"github.com/jeranaias/chatdesk/internal/ui/styles"
)

// runTUI runs the full-screen interface until the user quits. Edits to the
// config file are pushed into the running program.
func runTUI(ctx context.Context, app *App, configPath string) error {
	cfg := app.Config
	theme := styles.NewTheme(styles.DetectDark(cfg.UI.Theme))

	m := chat.New(chat.Options{
		Store:        app.Store,
		Dispatcher:   app.Dispatcher,
		Bridge:       app.Bridge,
		Theme:        theme,
		SidebarWidth: cfg.UI.SidebarWidth,
		Context:      ctx,
	})

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	stop := watchConfig(configPath, func(next *config.Config) {
		state := app.ApplyConfig(next)
		p.Send(chat.SettingsMsg{Dark: state.DarkMode, Voice: state.VoiceEnabled})
	})
	defer stop()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run interface: %w", err)
	}
	return nil
}
