// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// PARSER TESTS
// =============================================================================

func TestIsCommand(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"/help", true},
		{"/rename trip", true},
		{"  /help", true},
		{"hello", false},
		{"hello /help", false},
		{"", false},
		{"/", true},
	}

	for _, tc := range tests {
		got := IsCommand(tc.input)
		if got != tc.want {
			t.Errorf("IsCommand(%q) = %v, want %v", tc.input, got, tc.want)
		}
	}
}

func TestExtractCommandName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"/help", "/help"},
		{"/rename trip", "/rename"},
		{"  /help  ", "/help"},
		{"hello", ""},
		{"/", "/"},
	}

	for _, tc := range tests {
		got := ExtractCommandName(tc.input)
		if got != tc.want {
			t.Errorf("ExtractCommandName(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestSplitCommandLine(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{`/rename trip`, []string{"/rename", "trip"}},
		{`/rename "trip notes"`, []string{"/rename", "trip notes"}},
		{`/rename 'it\'s here'`, []string{"/rename", "it's here"}},
		{`/upload  a.txt   b.txt`, []string{"/upload", "a.txt", "b.txt"}},
		{`/rename ""`, []string{"/rename", ""}},
		{`/rename "café ☕"`, []string{"/rename", "café ☕"}},
		{``, nil},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, splitCommandLine(tc.input), "input %q", tc.input)
	}
}

func TestParser_Parse(t *testing.T) {
	p := NewParser(NewRegistry())

	t.Run("plain text", func(t *testing.T) {
		res := p.Parse("hello there")
		assert.False(t, res.IsCommand)
		assert.Nil(t, res.Command)
		assert.Equal(t, ActionNone, res.Action())
	})

	t.Run("command with quoted args", func(t *testing.T) {
		res := p.Parse(`/rename "Trip notes"`)
		require.NoError(t, res.Error)
		assert.True(t, res.IsCommand)
		assert.Equal(t, ActionRename, res.Action())
		assert.Equal(t, "Trip notes", res.Arg(0))
		assert.Equal(t, `"Trip notes"`, res.RawArgs)
	})

	t.Run("alias and case", func(t *testing.T) {
		assert.Equal(t, ActionQuit, p.Parse("/Q").Action())
		assert.Equal(t, ActionHelp, p.Parse("/?").Action())
	})

	t.Run("unknown", func(t *testing.T) {
		res := p.Parse("/nope")
		assert.True(t, res.IsCommand)
		assert.True(t, errors.Is(res.Error, ErrUnknownCommand))
	})

	t.Run("missing required arg", func(t *testing.T) {
		res := p.Parse("/select")
		assert.True(t, errors.Is(res.Error, ErrMissingArgs))
		assert.Contains(t, res.Error.Error(), "/select <id>")
	})

	t.Run("optional arg", func(t *testing.T) {
		res := p.Parse("/voice")
		assert.NoError(t, res.Error)
		assert.Equal(t, "", res.Arg(0))
	})
}

func TestParseResult_IntArg(t *testing.T) {
	p := NewParser(NewRegistry())

	id, err := p.Parse("/select 1718000000000").IntArg(0)
	require.NoError(t, err)
	assert.Equal(t, int64(1718000000000), id)

	_, err = p.Parse("/select abc").IntArg(0)
	assert.ErrorContains(t, err, `invalid id "abc"`)

	_, err = p.Parse("/select 1").IntArg(3)
	assert.True(t, errors.Is(err, ErrMissingArgs))
}

// =============================================================================
// REGISTRY TESTS
// =============================================================================

func TestRegistry_Builtins(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{"/help", "/new", "/rename", "/select", "/list", "/upload", "/voice", "/theme", "/copy", "/export", "/quit"} {
		assert.NotNil(t, r.Get(name), name)
	}

	all := r.All()
	for i := 1; i < len(all); i++ {
		assert.Less(t, all[i-1].Name, all[i].Name)
	}
	assert.Contains(t, r.Names(), "/exit")
}

func TestRegistry_HelpText(t *testing.T) {
	r := NewRegistry()
	r.Register(&Command{Name: "/secret", Usage: "/secret", Hidden: true})

	help := r.HelpText()
	assert.True(t, strings.HasPrefix(help, "Commands:\n"))
	assert.Contains(t, help, "/rename <name>")
	assert.Contains(t, help, "Toggle spoken replies")
	assert.NotContains(t, help, "/secret")
}

// =============================================================================
// COMPLETION TESTS
// =============================================================================

func TestCompleter_Commands(t *testing.T) {
	c := NewCompleter(NewRegistry())

	got := c.Complete("/re", 3)
	require.Len(t, got, 1)
	assert.Equal(t, "/rename", got[0].Value)

	assert.Nil(t, c.Complete("hello", 5))
	assert.NotEmpty(t, c.Complete("/", 1))
}

func TestCompleter_Args(t *testing.T) {
	c := NewCompleter(NewRegistry())
	c.ConversationsFn = func() []string { return []string{"1718000000000", "1719000000000"} }

	got := c.Complete("/export j", 9)
	require.Len(t, got, 1)
	assert.Equal(t, "json", got[0].Value)

	assert.Len(t, c.Complete("/select 171", 11), 2)
	assert.Len(t, c.Complete("/theme ", 7), 2)
	assert.Nil(t, c.Complete("/copy x", 7))
}

func TestCompleter_Files(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".hidden"), []byte("x"), 0o600))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o700))

	c := NewCompleter(NewRegistry())
	input := "/upload " + dir + string(os.PathSeparator)
	got := c.Complete(input, len(input))

	var values []string
	for _, comp := range got {
		values = append(values, comp.Value)
	}
	assert.Contains(t, values, filepath.Join(dir, "notes.txt"))
	assert.Contains(t, values, filepath.Join(dir, "nested")+string(os.PathSeparator))
	assert.NotContains(t, values, filepath.Join(dir, ".hidden"))
}

func TestCompleter_Line(t *testing.T) {
	c := NewCompleter(NewRegistry())

	assert.Equal(t, []string{"/rename"}, c.Line("/ren"))
	assert.Equal(t, []string{"/voice on", "/voice off"}, c.Line("/voice "))
	assert.Equal(t, []string{"/export yaml"}, c.Line("/export y"))
}

func TestToggle(t *testing.T) {
	v, err := Toggle("", "on", "off", true)
	require.NoError(t, err)
	assert.True(t, v)

	v, err = Toggle("OFF", "on", "off", true)
	require.NoError(t, err)
	assert.False(t, v)

	_, err = Toggle("maybe", "on", "off", true)
	assert.Error(t, err)
}
