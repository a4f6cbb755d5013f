// Copyright (c) 2024-2025 ip-repo
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for the chat
// engine.
//
// Configuration lives in a single TOML file with sensible defaults and
// environment variable overrides. The zero configuration (no file at all)
// produces a working setup that talks to a local Ollama server.
//
// # Key Types
//
//   - Config: the complete application configuration
//   - OllamaConfig: endpoint and model selection settings
//   - StoreConfig: conversation store location
//   - UIConfig: terminal front end settings
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Ollama.URL)
package config
