// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// =============================================================================
// COMPLETER
// =============================================================================

// Completion is a single completion candidate.
type Completion struct {
	Value       string
	Display     string
	Description string
	Score       int
}

// Completer handles tab completion for commands and arguments.
type Completer struct {
	registry *Registry

	// Set by the front end for context-specific completions.
	ConversationsFn func() []string             // Returns conversation IDs
	FilesFn         func(prefix string) []string // Returns matching files
}

// NewCompleter creates a new completer with the given registry.
func NewCompleter(registry *Registry) *Completer {
	return &Completer{
		registry: registry,
	}
}

// Complete returns completions for the given input at the cursor position.
func (c *Completer) Complete(input string, cursorPos int) []Completion {
	if cursorPos >= 0 && cursorPos < len(input) {
		input = input[:cursorPos]
	}

	trimmed := strings.TrimLeft(input, " ")
	if !strings.HasPrefix(trimmed, "/") {
		return nil
	}

	parts := splitCommandLine(trimmed)
	if len(parts) == 0 {
		return c.completeCommands("")
	}

	// Still typing the command name
	if len(parts) == 1 && !strings.HasSuffix(trimmed, " ") {
		return c.completeCommands(parts[0])
	}

	cmd := c.registry.Get(parts[0])
	if cmd == nil {
		return nil
	}

	argIndex := len(parts) - 2
	partial := ""
	if strings.HasSuffix(trimmed, " ") {
		argIndex++
	} else {
		partial = parts[len(parts)-1]
	}

	return c.completeArg(cmd, argIndex, partial)
}

// Line completes a whole input line, returning candidate full lines.
// Suited to line editors that replace the buffer wholesale.
func (c *Completer) Line(line string) []string {
	completions := c.Complete(line, len(line))
	if len(completions) == 0 {
		return nil
	}

	head := ""
	if strings.HasSuffix(line, " ") {
		head = line
	} else if i := strings.LastIndex(line, " "); i >= 0 {
		head = line[:i+1]
	}

	out := make([]string, 0, len(completions))
	for _, comp := range completions {
		value := comp.Value
		if strings.ContainsRune(value, ' ') {
			value = `"` + value + `"`
		}
		out = append(out, head+value)
	}
	return out
}

// =============================================================================
// COMMAND COMPLETION
// =============================================================================

func (c *Completer) completeCommands(partial string) []Completion {
	var completions []Completion

	partial = strings.ToLower(partial)

	for _, cmd := range c.registry.All() {
		if cmd.Hidden {
			continue
		}
		if strings.HasPrefix(cmd.Name, partial) {
			completions = append(completions, Completion{
				Value:       cmd.Name,
				Display:     cmd.Name,
				Description: cmd.Description,
				Score:       calculateScore(cmd.Name, partial),
			})
			continue
		}
		for _, alias := range cmd.Aliases {
			if strings.HasPrefix(alias, partial) {
				completions = append(completions, Completion{
					Value:       alias,
					Display:     alias + " → " + cmd.Name,
					Description: cmd.Description,
					Score:       calculateScore(alias, partial) - 10,
				})
			}
		}
	}

	sortCompletions(completions)
	return completions
}

func (c *Completer) completeArg(cmd *Command, argIndex int, partial string) []Completion {
	if argIndex < 0 || argIndex >= len(cmd.Args) {
		return nil
	}

	arg := cmd.Args[argIndex]

	switch arg.Type {
	case ArgTypeFile:
		if c.FilesFn != nil {
			return c.completeFromList(c.FilesFn(partial), partial)
		}
		return c.defaultFileCompletion(partial)
	case ArgTypeEnum:
		return c.completeFromList(arg.Values, partial)
	case ArgTypeConversation:
		if c.ConversationsFn == nil {
			return nil
		}
		return c.completeFromList(c.ConversationsFn(), partial)
	default:
		return nil
	}
}

func (c *Completer) defaultFileCompletion(partial string) []Completion {
	var completions []Completion

	dir := filepath.Dir(partial)
	prefix := filepath.Base(partial)
	switch {
	case partial == "":
		dir, prefix = ".", ""
	case strings.HasSuffix(partial, string(os.PathSeparator)):
		dir, prefix = partial, ""
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	lower := strings.ToLower(prefix)
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(strings.ToLower(name), lower) {
			continue
		}
		// Skip hidden files unless asked for
		if strings.HasPrefix(name, ".") && !strings.HasPrefix(prefix, ".") {
			continue
		}

		path := name
		if dir != "." {
			path = filepath.Join(dir, name)
		}
		score := calculateScore(name, lower)
		desc := "file"
		if entry.IsDir() {
			path += string(os.PathSeparator)
			score += 5
			desc = "directory"
		}

		completions = append(completions, Completion{
			Value:       path,
			Display:     name,
			Description: desc,
			Score:       score,
		})
	}

	sortCompletions(completions)
	if len(completions) > 20 {
		completions = completions[:20]
	}
	return completions
}

func (c *Completer) completeFromList(values []string, partial string) []Completion {
	var completions []Completion
	lower := strings.ToLower(partial)
	for _, v := range values {
		if strings.HasPrefix(strings.ToLower(v), lower) {
			completions = append(completions, Completion{
				Value:   v,
				Display: v,
				Score:   calculateScore(v, lower),
			})
		}
	}
	sortCompletions(completions)
	return completions
}

// =============================================================================
// HELPERS
// =============================================================================

// calculateScore ranks a candidate; higher is better.
func calculateScore(value, partial string) int {
	value = strings.ToLower(value)
	partial = strings.ToLower(partial)

	score := 100
	if value == partial {
		return score + 100
	}
	if strings.HasPrefix(value, partial) {
		score += 50
		score += 20 - len(value)
	}
	score -= len(value) / 2
	return score
}

// sortCompletions sorts by score (descending), then alphabetically.
func sortCompletions(completions []Completion) {
	sort.Slice(completions, func(i, j int) bool {
		if completions[i].Score != completions[j].Score {
			return completions[i].Score > completions[j].Score
		}
		return completions[i].Value < completions[j].Value
	})
}
