// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestDetectDark_Explicit(t *testing.T) {
	if !DetectDark("dark") {
		t.Error("DetectDark(dark) = false")
	}
	if DetectDark("LIGHT") {
		t.Error("DetectDark(LIGHT) = true")
	}
}

func TestTheme_SetDark(t *testing.T) {
	theme := NewTheme(true)
	if !theme.IsDark || !lipgloss.HasDarkBackground() {
		t.Fatal("NewTheme(true) did not select the dark palette")
	}
	if theme.GlamourStyle() != "dark" {
		t.Errorf("GlamourStyle() = %q, want dark", theme.GlamourStyle())
	}

	theme.SetDark(false)
	if theme.IsDark || lipgloss.HasDarkBackground() {
		t.Error("SetDark(false) did not switch to light")
	}
	if theme.GlamourStyle() != "light" {
		t.Errorf("GlamourStyle() = %q, want light", theme.GlamourStyle())
	}
	if theme.ModeBadge() != "☀ light" {
		t.Errorf("ModeBadge() = %q", theme.ModeBadge())
	}
}

func TestTheme_StylesRender(t *testing.T) {
	theme := NewTheme(false)
	out := theme.UserBubble.Render("hello")
	if out == "" {
		t.Error("UserBubble rendered nothing")
	}
}
