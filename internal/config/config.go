// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete chatdesk configuration.
type Config struct {
	Chat    ChatConfig    `toml:"chat"`
	OCR     OCRConfig     `toml:"ocr"`
	Voice   VoiceConfig   `toml:"voice"`
	UI      UIConfig      `toml:"ui"`
	Storage StorageConfig `toml:"storage"`
	Log     LogConfig     `toml:"log"`
}

// ChatConfig describes the remote chat endpoint and request shaping.
type ChatConfig struct {
	// Endpoint receives the POSTed conversation.
	Endpoint string `toml:"endpoint"`
	// SystemPrompt opens every request.
	SystemPrompt string `toml:"system_prompt"`
	// ModeTag prefixes the newest user turn. Set DisableModeTag to send
	// user text untouched.
	ModeTag        string `toml:"mode_tag"`
	DisableModeTag bool   `toml:"disable_mode_tag"`
	// RequestTimeoutSecs bounds each request; 0 waits indefinitely.
	RequestTimeoutSecs int `toml:"request_timeout_secs"`
}

// OCRConfig configures image transcription over an OpenAI-compatible API.
type OCRConfig struct {
	BaseURL string `toml:"base_url"`
	APIKey  string `toml:"api_key"`
	Model   string `toml:"model"`
	// Language is a three-letter code such as "eng".
	Language string `toml:"language"`
}

// VoiceConfig configures spoken replies.
type VoiceConfig struct {
	// Enabled is the initial state of the voice toggle.
	Enabled bool `toml:"enabled"`
	// Command is the synthesizer; empty picks the platform default.
	Command string   `toml:"command"`
	Args    []string `toml:"args"`
}

// UIConfig configures the terminal interface.
type UIConfig struct {
	// Theme is "dark", "light" or "auto".
	Theme        string `toml:"theme"`
	SidebarWidth int    `toml:"sidebar_width"`
}

// StorageConfig controls the optional conversation archive.
type StorageConfig struct {
	// Persist keeps conversations across runs. Off by default.
	Persist bool   `toml:"persist"`
	Path    string `toml:"path"`
}

// LogConfig configures the log destination.
type LogConfig struct {
	Level string `toml:"level"`
	// File receives logs; empty uses chatdesk.log in the config directory
	// for the full-screen UI and stderr otherwise.
	File string `toml:"file"`
}

// RequestTimeout returns the chat timeout as a duration.
func (c *ChatConfig) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSecs) * time.Second
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default values.
const (
	DefaultEndpoint     = "http://127.0.0.1:5000/api/chat"
	DefaultSystemPrompt = "You are a professional, clear and neutral assistant who answers " +
		"any kind of user simply, without assuming programming knowledge."
	DefaultModeTag      = "[mode: fun] "
	DefaultOCRModel     = "gpt-4o-mini"
	DefaultOCRLanguage  = "eng"
	DefaultTheme        = "auto"
	DefaultSidebarWidth = 32
	DefaultLogLevel     = "info"
)

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Chat: ChatConfig{
			Endpoint:     DefaultEndpoint,
			SystemPrompt: DefaultSystemPrompt,
			ModeTag:      DefaultModeTag,
		},
		OCR: OCRConfig{
			Model:    DefaultOCRModel,
			Language: DefaultOCRLanguage,
		},
		UI: UIConfig{
			Theme:        DefaultTheme,
			SidebarWidth: DefaultSidebarWidth,
		},
		Log: LogConfig{
			Level: DefaultLogLevel,
		},
	}
}

// fillDefaults restores defaults for keys left empty by a partial file.
func fillDefaults(cfg *Config) {
	def := Default()
	if cfg.Chat.Endpoint == "" {
		cfg.Chat.Endpoint = def.Chat.Endpoint
	}
	if cfg.Chat.SystemPrompt == "" {
		cfg.Chat.SystemPrompt = def.Chat.SystemPrompt
	}
	if cfg.Chat.ModeTag == "" && !cfg.Chat.DisableModeTag {
		cfg.Chat.ModeTag = def.Chat.ModeTag
	}
	if cfg.OCR.Model == "" {
		cfg.OCR.Model = def.OCR.Model
	}
	if cfg.OCR.Language == "" {
		cfg.OCR.Language = def.OCR.Language
	}
	if cfg.UI.Theme == "" {
		cfg.UI.Theme = def.UI.Theme
	}
	if cfg.UI.SidebarWidth == 0 {
		cfg.UI.SidebarWidth = def.UI.SidebarWidth
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = def.Log.Level
	}
}

// =============================================================================
// PATHS
// =============================================================================

// ConfigDir returns ~/.chatdesk.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".chatdesk"), nil
}

// ConfigPath returns ~/.chatdesk/config.toml.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// DefaultLogFile returns ~/.chatdesk/chatdesk.log.
func DefaultLogFile() string {
	dir, err := ConfigDir()
	if err != nil {
		return "chatdesk.log"
	}
	return filepath.Join(dir, "chatdesk.log")
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads the default config file if it exists and applies .env and
// environment overrides.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath reads the config file at path. A missing file yields the
// defaults; a malformed one is an error.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); err == nil {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, err
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}

	LoadDotEnv()
	cfg.ApplyEnvOverrides()
	fillDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML decodes path over cfg. Unknown keys are rejected so typos do not
// go unnoticed.
func LoadTOML(cfg *Config, path string) error {
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("unknown config keys: %s", strings.Join(keys, ", "))
	}
	fillDefaults(cfg)
	return nil
}

// LoadDotEnv loads .env from the working directory without overriding
// variables that are already set.
func LoadDotEnv() {
	_ = godotenv.Load()
}

// SaveTOML writes cfg to path with owner-only permissions.
func SaveTOML(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	if err := os.Chmod(path, 0600); err != nil {
		return fmt.Errorf("failed to set config file permissions: %w", err)
	}

	fmt.Fprintln(file, "# chatdesk configuration file")
	fmt.Fprintln(file, "")

	if err := toml.NewEncoder(file).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies CHATDESK_* variables. OPENAI_API_KEY and
// OPENAI_BASE_URL fill the OCR settings when the file leaves them empty.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("CHATDESK_ENDPOINT"); v != "" {
		c.Chat.Endpoint = v
	}
	if v := os.Getenv("CHATDESK_SYSTEM_PROMPT"); v != "" {
		c.Chat.SystemPrompt = v
	}
	if v := os.Getenv("CHATDESK_TIMEOUT"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil {
			c.Chat.RequestTimeoutSecs = secs
		}
	}
	if v := os.Getenv("CHATDESK_VOICE"); v != "" {
		c.Voice.Enabled = parseBool(v)
	}
	if v := os.Getenv("CHATDESK_THEME"); v != "" {
		c.UI.Theme = v
	}
	if v := os.Getenv("CHATDESK_PERSIST"); v != "" {
		c.Storage.Persist = parseBool(v)
	}
	if v := os.Getenv("CHATDESK_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("CHATDESK_OCR_API_KEY"); v != "" {
		c.OCR.APIKey = v
	} else if v := os.Getenv("OPENAI_API_KEY"); v != "" && c.OCR.APIKey == "" {
		c.OCR.APIKey = v
	}
	if v := os.Getenv("CHATDESK_OCR_BASE_URL"); v != "" {
		c.OCR.BaseURL = v
	} else if v := os.Getenv("OPENAI_BASE_URL"); v != "" && c.OCR.BaseURL == "" {
		c.OCR.BaseURL = v
	}
	if v := os.Getenv("CHATDESK_OCR_MODEL"); v != "" {
		c.OCR.Model = v
	}
}

func parseBool(v string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return strings.EqualFold(strings.TrimSpace(v), "yes") || strings.EqualFold(strings.TrimSpace(v), "on")
	}
	return b
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// Validate checks the configuration and returns every problem found.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if u, err := url.Parse(c.Chat.Endpoint); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, ValidationError{
			Field:   "chat.endpoint",
			Message: fmt.Sprintf("invalid URL '%s', must be http(s)://host/path", c.Chat.Endpoint),
		})
	}
	if c.Chat.RequestTimeoutSecs < 0 {
		errs = append(errs, ValidationError{Field: "chat.request_timeout_secs", Message: "must not be negative"})
	}
	if c.OCR.BaseURL != "" {
		if u, err := url.Parse(c.OCR.BaseURL); err != nil || u.Host == "" {
			errs = append(errs, ValidationError{Field: "ocr.base_url", Message: fmt.Sprintf("invalid URL '%s'", c.OCR.BaseURL)})
		}
	}
	switch strings.ToLower(c.UI.Theme) {
	case "dark", "light", "auto":
	default:
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: dark, light, auto", c.UI.Theme),
		})
	}
	if c.UI.SidebarWidth < 16 || c.UI.SidebarWidth > 80 {
		errs = append(errs, ValidationError{Field: "ui.sidebar_width", Message: "must be between 16 and 80"})
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, ValidationError{
			Field:   "log.level",
			Message: fmt.Sprintf("invalid level '%s', must be one of: debug, info, warn, error", c.Log.Level),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
