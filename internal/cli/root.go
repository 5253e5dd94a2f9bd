// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"os"
	"runtime"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/jeranaias/chatdesk/internal/config"
	"github.com/jeranaias/chatdesk/internal/logger"
)

// Build information, set with -ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// rootOptions are the persistent flags.
type rootOptions struct {
	configPath string
	endpoint   string
	plain      bool
	voice      bool
	logLevel   string
	logFile    string
}

// NewRootCmd builds the chatdesk command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "chatdesk",
		Short: "Chat with an AI assistant from the terminal",
		Long: `chatdesk is a terminal chat client for a remote chat endpoint.

Conversations are listed in a sidebar and can be searched, renamed and
exported. Text, PDF, Word and image files can be read into a conversation,
and replies can be spoken aloud.

Quick Start:
  chatdesk                         # start chatting
  chatdesk --plain                 # line-mode REPL
  chatdesk --endpoint URL          # use another chat endpoint
  chatdesk config init             # write ~/.chatdesk/config.toml`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd, opts)
		},
	}
	root.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "config file (default ~/.chatdesk/config.toml)")
	flags.StringVar(&opts.endpoint, "endpoint", "", "chat endpoint URL")
	flags.BoolVar(&opts.plain, "plain", false, "use the line-mode REPL instead of the full-screen interface")
	flags.BoolVar(&opts.voice, "voice", false, "read replies aloud")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.StringVar(&opts.logFile, "log-file", "", "write logs to this file")

	root.AddCommand(newConfigCmd(opts), newVersionCmd())
	return root
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// CHAT
// =============================================================================

func runChat(cmd *cobra.Command, opts *rootOptions) error {
	path, err := opts.resolveConfigPath()
	if err != nil {
		return err
	}
	cfg, err := config.LoadFromPath(path)
	if err != nil {
		return err
	}
	opts.applyFlags(cmd, cfg)

	interactive := !opts.plain && Interactive()

	// The full-screen interface owns the terminal, so logs go to a file.
	logFile := cfg.Log.File
	if logFile == "" && interactive {
		logFile = config.DefaultLogFile()
	}
	if err := logger.Configure(cfg.Log.Level, logFile); err != nil {
		return fmt.Errorf("configure logging: %w", err)
	}
	defer logger.Close()

	app, err := NewApp(cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	logger.Debug("chatdesk starting", "version", Version, "endpoint", cfg.Chat.Endpoint, "interactive", interactive)

	if interactive {
		return runTUI(cmd.Context(), app, path)
	}
	return runREPL(cmd.Context(), app, path, cmd.InOrStdin(), cmd.OutOrStdout())
}

func (o *rootOptions) resolveConfigPath() (string, error) {
	if o.configPath != "" {
		return o.configPath, nil
	}
	return config.ConfigPath()
}

// applyFlags lets explicitly set flags override the file and environment.
func (o *rootOptions) applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("endpoint") {
		cfg.Chat.Endpoint = o.endpoint
	}
	if flags.Changed("voice") {
		cfg.Voice.Enabled = o.voice
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = o.logLevel
	}
	if flags.Changed("log-file") {
		cfg.Log.File = o.logFile
	}
}

// =============================================================================
// CONFIG
// =============================================================================

func newConfigCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := opts.resolveConfigPath()
			if err != nil {
				return err
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			} else if err != nil && !errors.Is(err, os.ErrNotExist) {
				return err
			}
			if err := config.SaveTOML(config.Default(), path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := opts.resolveConfigPath()
			if err != nil {
				return err
			}
			cfg, err := config.LoadFromPath(path)
			if err != nil {
				return err
			}
			opts.applyFlags(cmd, cfg)
			if cfg.OCR.APIKey != "" {
				cfg.OCR.APIKey = "********"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "# %s\n", path)
			return toml.NewEncoder(cmd.OutOrStdout()).Encode(cfg)
		},
	}

	pathCmd := &cobra.Command{
		Use:   "path",
		Short: "Print the configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := opts.resolveConfigPath()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}

	cmd.AddCommand(initCmd, showCmd, pathCmd)
	return cmd
}

// =============================================================================
// VERSION
// =============================================================================

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "chatdesk %s\n", Version)
			fmt.Fprintf(out, "  commit:  %s\n", GitCommit)
			fmt.Fprintf(out, "  built:   %s\n", BuildDate)
			fmt.Fprintf(out, "  go:      %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
		},
	}
}
