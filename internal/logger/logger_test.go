// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]log.Level{
		"debug":   log.DebugLevel,
		"INFO":    log.InfoLevel,
		"warn":    log.WarnLevel,
		"warning": log.WarnLevel,
		"error":   log.ErrorLevel,
		"bogus":   log.InfoLevel,
		"":        log.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), "ParseLevel(%q)", in)
	}
}

func TestConfigure_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "chatdesk.log")
	require.NoError(t, Configure("debug", path))
	t.Cleanup(func() {
		Close()
		Logger = log.New(os.Stderr)
	})

	Debug("dispatch", "conversation", 42)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "dispatch")
	assert.Contains(t, string(data), "conversation=42")
}

func TestConfigure_LevelFiltersMessages(t *testing.T) {
	require.NoError(t, Configure("error", ""))
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() { Logger = log.New(os.Stderr) })

	Info("hidden")
	Error("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestFor_SharesLevel(t *testing.T) {
	require.NoError(t, Configure("warn", ""))
	t.Cleanup(func() { Logger = log.New(os.Stderr) })

	l := For("ocr")
	assert.Equal(t, log.WarnLevel, l.GetLevel())
	assert.Equal(t, "ocr", l.GetPrefix())
}
