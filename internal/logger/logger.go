// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logger provides the process-wide structured logger for chatdesk.
//
// Output defaults to stderr at info level. The full-screen UI redirects it to
// a file through Configure so log lines never land on the alternate screen.
package logger

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

// Logger is the global logger instance used throughout chatdesk.
var Logger *log.Logger

// output is the writer behind Logger, kept so component loggers share it.
var output io.Writer = os.Stderr

// closer releases the log file opened by Configure, if any.
var closer io.Closer

func init() {
	Logger = log.New(os.Stderr)
	Logger.SetTimeFormat("")
	Logger.SetLevel(log.InfoLevel)
}

// Configure sets the level and destination of the global logger. An empty
// level falls back to CHATDESK_LOG_LEVEL and then to info. An empty file
// keeps stderr. The file is opened in append mode with owner-only access.
func Configure(level string, file string) error {
	if level == "" {
		level = strings.ToLower(os.Getenv("CHATDESK_LOG_LEVEL"))
	}

	var out io.Writer = os.Stderr
	var c io.Closer
	if file != "" {
		if err := os.MkdirAll(filepath.Dir(file), 0700); err != nil {
			return err
		}
		f, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return err
		}
		out, c = f, f
	}

	if closer != nil {
		closer.Close()
	}
	output, closer = out, c

	Logger = log.NewWithOptions(out, log.Options{
		ReportTimestamp: file != "",
		TimeFormat:      "2006-01-02 15:04:05",
	})
	Logger.SetLevel(ParseLevel(level))
	return nil
}

// SetOutput redirects the global logger, mainly for tests.
func SetOutput(w io.Writer) {
	output = w
	Logger.SetOutput(w)
}

// Close releases the log file opened by Configure.
func Close() error {
	if closer == nil {
		return nil
	}
	err := closer.Close()
	closer = nil
	return err
}

// ParseLevel converts a level name to a log level. Unknown names map to info.
func ParseLevel(level string) log.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return log.DebugLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	case "fatal":
		return log.FatalLevel
	default:
		return log.InfoLevel
	}
}

// Debug logs a debug message with optional key-value pairs.
func Debug(msg interface{}, keyvals ...interface{}) {
	Logger.Debug(msg, keyvals...)
}

// Info logs an info message with optional key-value pairs.
func Info(msg interface{}, keyvals ...interface{}) {
	Logger.Info(msg, keyvals...)
}

// Warn logs a warning message with optional key-value pairs.
func Warn(msg interface{}, keyvals ...interface{}) {
	Logger.Warn(msg, keyvals...)
}

// Error logs an error message with optional key-value pairs.
func Error(msg interface{}, keyvals ...interface{}) {
	Logger.Error(msg, keyvals...)
}

// For returns a logger tagged with a component prefix that shares the global
// destination and level.
func For(component string) *log.Logger {
	styles := log.DefaultStyles()
	styles.Keys["conversation"] = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	styles.Keys["error"] = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	styles.Values["error"] = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))

	l := log.NewWithOptions(output, log.Options{
		Prefix: component,
	})
	l.SetStyles(styles)
	l.SetLevel(Logger.GetLevel())
	return l
}
