// Copyright (c) 2024-2025 ip-repo
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/ip-repo/ollama-st-app/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete application configuration.
type Config struct {
	// Ollama endpoint and model selection
	Ollama OllamaConfig `toml:"ollama"`

	// Conversation store location
	Store StoreConfig `toml:"store"`

	// Terminal UI settings
	UI UIConfig `toml:"ui"`
}

// OllamaConfig contains Ollama endpoint configuration.
type OllamaConfig struct {
	// URL is the base URL of the Ollama server
	URL string `toml:"url"`
	// DefaultModel is selected at startup when the server offers it.
	// Empty means "first allowed model".
	DefaultModel string `toml:"default_model"`
	// DeniedModels lists model families excluded from the selectable set.
	// Matching is against the name portion before the ":" tag separator.
	DeniedModels []string `toml:"denied_models"`
	// SystemMessage is prepended to every new conversation. Empty disables it.
	SystemMessage string `toml:"system_message"`
	// StreamDelayMS is the pause between emitted reply chunks in milliseconds.
	StreamDelayMS int `toml:"stream_delay_ms"`
}

// StoreConfig contains conversation store configuration.
type StoreConfig struct {
	// ChatsFile is the path of the JSON document holding all conversations.
	// Empty means <config dir>/chats.json.
	ChatsFile string `toml:"chats_file"`
	// WatchFile enables reloading the store when the file changes on disk.
	WatchFile bool `toml:"watch_file"`
}

// UIConfig contains terminal UI configuration.
type UIConfig struct {
	// RenderMarkdown enables markdown rendering of assistant replies
	RenderMarkdown bool `toml:"render_markdown"`
	// Theme is the UI theme: "dark" or "light"
	Theme string `toml:"theme"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Ollama: OllamaConfig{
			URL:           "http://127.0.0.1:11434",
			DefaultModel:  "",
			DeniedModels:  []string{},
			SystemMessage: "",
			StreamDelayMS: 20,
		},
		Store: StoreConfig{
			ChatsFile: "",
			WatchFile: true,
		},
		UI: UIConfig{
			RenderMarkdown: true,
			Theme:          "dark",
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the application configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".ollama-chat"), nil
}

// ConfigPath returns the path to the TOML config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// DefaultChatsPath returns the default conversation store path.
func DefaultChatsPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "chats.json"), nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the default config file location.
// A missing file is not an error: defaults are used. Environment overrides
// are applied last.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath loads configuration from a specific TOML file path with full
// validation. A missing file falls back to defaults.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if _, statErr := os.Stat(path); statErr == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config file %s: %w", path, err)
		}
	}

	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// ApplyEnvOverrides applies environment variable overrides to the config.
//
//	OLLAMA_CHAT_URL          - Ollama server URL
//	OLLAMA_CHAT_MODEL        - default model
//	OLLAMA_CHAT_FILE         - conversation store path
//	OLLAMA_CHAT_STREAM_DELAY - inter-chunk delay in milliseconds
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("OLLAMA_CHAT_URL"); v != "" {
		c.Ollama.URL = v
	}
	if v := os.Getenv("OLLAMA_CHAT_MODEL"); v != "" {
		c.Ollama.DefaultModel = v
	}
	if v := os.Getenv("OLLAMA_CHAT_FILE"); v != "" {
		c.Store.ChatsFile = v
	}
	if v := os.Getenv("OLLAMA_CHAT_STREAM_DELAY"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil {
			c.Ollama.StreamDelayMS = ms
		}
	}
}

// SetDefaults fills in values that cannot be zero.
func (c *Config) SetDefaults() {
	if c.Ollama.URL == "" {
		c.Ollama.URL = Default().Ollama.URL
	}
	if c.Ollama.StreamDelayMS < 0 {
		c.Ollama.StreamDelayMS = 0
	}
	if c.Store.ChatsFile == "" {
		if path, err := DefaultChatsPath(); err == nil {
			c.Store.ChatsFile = path
		}
	}
	if c.UI.Theme == "" {
		c.UI.Theme = "dark"
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Ollama.URL)
	if err != nil {
		return fmt.Errorf("ollama url %q is not a valid URL: %w", c.Ollama.URL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("ollama url %q must use http or https", c.Ollama.URL)
	}
	if u.Host == "" {
		return fmt.Errorf("ollama url %q has no host", c.Ollama.URL)
	}

	if c.Store.ChatsFile == "" {
		return fmt.Errorf("chats file path is empty")
	}

	switch c.UI.Theme {
	case "dark", "light":
	default:
		return fmt.Errorf("theme %q is not supported (use dark or light)", c.UI.Theme)
	}

	for _, name := range c.Ollama.DeniedModels {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("denied_models contains an empty entry")
		}
	}

	return nil
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save writes the configuration to the default config file location.
func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveToPath(path)
}

// SaveToPath writes the configuration as TOML to the given path.
func (c *Config) SaveToPath(path string) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
