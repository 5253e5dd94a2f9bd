// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"fmt"
	"sort"
	"strings"
)

// =============================================================================
// COMMAND DEFINITION
// =============================================================================

// Action identifies what a command does. Front ends switch on it; the
// registry itself carries no behavior so the TUI and the REPL share one table.
type Action int

const (
	ActionNone Action = iota
	ActionHelp
	ActionNew
	ActionRename
	ActionSelect
	ActionList
	ActionUpload
	ActionVoice
	ActionTheme
	ActionCopy
	ActionExport
	ActionQuit
)

// Command represents a slash command that can be executed.
type Command struct {
	// Name is the primary command name (e.g., "/help")
	Name string

	// Aliases are alternative names (e.g., "/h", "/?")
	Aliases []string

	// Action is dispatched by the front end
	Action Action

	// Description is shown in help and completion
	Description string

	// Usage shows argument syntax (e.g., "/rename <name>")
	Usage string

	// Args defines the expected arguments
	Args []ArgDef

	// Hidden commands don't appear in help
	Hidden bool
}

// ArgDef defines an argument for a command.
type ArgDef struct {
	Name     string
	Required bool
	Type     ArgType
	// Values for enum types
	Values []string
}

// ArgType indicates what kind of completion to provide.
type ArgType int

const (
	ArgTypeString       ArgType = iota // Free-form string
	ArgTypeFile                        // File path
	ArgTypeEnum                        // One of predefined values
	ArgTypeConversation                // Conversation ID
)

// MinArgs returns the number of required arguments.
func (c *Command) MinArgs() int {
	n := 0
	for _, a := range c.Args {
		if a.Required {
			n++
		}
	}
	return n
}

// =============================================================================
// COMMAND REGISTRY
// =============================================================================

// Registry holds all registered commands.
type Registry struct {
	commands map[string]*Command
	aliases  map[string]*Command
}

// NewRegistry creates a new command registry with all built-in commands.
func NewRegistry() *Registry {
	r := &Registry{
		commands: make(map[string]*Command),
		aliases:  make(map[string]*Command),
	}
	r.registerBuiltins()
	return r
}

// Register adds a command to the registry.
func (r *Registry) Register(cmd *Command) {
	r.commands[cmd.Name] = cmd
	for _, alias := range cmd.Aliases {
		r.aliases[alias] = cmd
	}
}

// Get retrieves a command by name or alias. Lookup is case-insensitive.
func (r *Registry) Get(name string) *Command {
	name = strings.ToLower(name)
	if cmd, ok := r.commands[name]; ok {
		return cmd
	}
	if cmd, ok := r.aliases[name]; ok {
		return cmd
	}
	return nil
}

// All returns all registered commands sorted by name.
func (r *Registry) All() []*Command {
	cmds := make([]*Command, 0, len(r.commands))
	for _, cmd := range r.commands {
		cmds = append(cmds, cmd)
	}
	sort.Slice(cmds, func(i, j int) bool { return cmds[i].Name < cmds[j].Name })
	return cmds
}

// Names returns every command name and alias, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.commands)+len(r.aliases))
	for name := range r.commands {
		names = append(names, name)
	}
	for alias := range r.aliases {
		names = append(names, alias)
	}
	sort.Strings(names)
	return names
}

// HelpText renders the visible commands as a two-column listing.
func (r *Registry) HelpText() string {
	var b strings.Builder
	b.WriteString("Commands:\n")
	width := 0
	cmds := r.All()
	for _, cmd := range cmds {
		if len(cmd.Usage) > width {
			width = len(cmd.Usage)
		}
	}
	for _, cmd := range cmds {
		if cmd.Hidden {
			continue
		}
		fmt.Fprintf(&b, "  %-*s  %s\n", width, cmd.Usage, cmd.Description)
	}
	return b.String()
}

// =============================================================================
// BUILT-IN COMMANDS
// =============================================================================

// ExportFormats lists the formats accepted by /export.
var ExportFormats = []string{"md", "json", "yaml"}

func (r *Registry) registerBuiltins() {
	r.Register(&Command{
		Name:        "/help",
		Aliases:     []string{"/h", "/?"},
		Action:      ActionHelp,
		Description: "Show available commands",
		Usage:       "/help",
	})
	r.Register(&Command{
		Name:        "/new",
		Aliases:     []string{"/n"},
		Action:      ActionNew,
		Description: "Start a new conversation",
		Usage:       "/new",
	})
	r.Register(&Command{
		Name:        "/rename",
		Action:      ActionRename,
		Description: "Rename the current conversation",
		Usage:       "/rename <name>",
		Args:        []ArgDef{{Name: "name", Required: true, Type: ArgTypeString}},
	})
	r.Register(&Command{
		Name:        "/select",
		Aliases:     []string{"/open"},
		Action:      ActionSelect,
		Description: "Switch to a conversation by ID",
		Usage:       "/select <id>",
		Args:        []ArgDef{{Name: "id", Required: true, Type: ArgTypeConversation}},
	})
	r.Register(&Command{
		Name:        "/list",
		Aliases:     []string{"/ls"},
		Action:      ActionList,
		Description: "List conversations, optionally filtered",
		Usage:       "/list [term]",
		Args:        []ArgDef{{Name: "term", Type: ArgTypeString}},
	})
	r.Register(&Command{
		Name:        "/upload",
		Aliases:     []string{"/u"},
		Action:      ActionUpload,
		Description: "Read a file into the conversation",
		Usage:       "/upload <path>",
		Args:        []ArgDef{{Name: "path", Required: true, Type: ArgTypeFile}},
	})
	r.Register(&Command{
		Name:        "/voice",
		Action:      ActionVoice,
		Description: "Toggle spoken replies",
		Usage:       "/voice [on|off]",
		Args:        []ArgDef{{Name: "state", Type: ArgTypeEnum, Values: []string{"on", "off"}}},
	})
	r.Register(&Command{
		Name:        "/theme",
		Action:      ActionTheme,
		Description: "Toggle dark mode",
		Usage:       "/theme [dark|light]",
		Args:        []ArgDef{{Name: "theme", Type: ArgTypeEnum, Values: []string{"dark", "light"}}},
	})
	r.Register(&Command{
		Name:        "/copy",
		Action:      ActionCopy,
		Description: "Copy the last bot reply to the clipboard",
		Usage:       "/copy",
	})
	r.Register(&Command{
		Name:        "/export",
		Action:      ActionExport,
		Description: "Export the current conversation",
		Usage:       "/export [md|json|yaml] [dir]",
		Args: []ArgDef{
			{Name: "format", Type: ArgTypeEnum, Values: ExportFormats},
			{Name: "dir", Type: ArgTypeFile},
		},
	})
	r.Register(&Command{
		Name:        "/quit",
		Aliases:     []string{"/q", "/exit"},
		Action:      ActionQuit,
		Description: "Exit",
		Usage:       "/quit",
	})
}
