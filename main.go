// Copyright (c) 2024-2025 ip-repo
// SPDX-License-Identifier: AGPL-3.0-or-later

// Command ollama-st-app is a single-user terminal chat front end for a
// locally hosted Ollama endpoint.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ip-repo/ollama-st-app/internal/config"
	"github.com/ip-repo/ollama-st-app/internal/ollama"
	"github.com/ip-repo/ollama-st-app/internal/session"
	"github.com/ip-repo/ollama-st-app/internal/store"
	"github.com/ip-repo/ollama-st-app/internal/ui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to config.toml (default: ~/.ollama-chat/config.toml)")
	chatsPath := flag.String("chats", "", "path to the conversations JSON file")
	serverURL := flag.String("url", "", "Ollama server URL")
	modelName := flag.String("model", "", "model to select at startup")
	flag.Parse()

	var cfg *config.Config
	var err error
	if *configPath != "" {
		cfg, err = config.LoadFromPath(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}

	// First run: persist the effective defaults so there is a file to edit.
	if *configPath == "" {
		if path, pathErr := config.ConfigPath(); pathErr == nil {
			if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
				if saveErr := cfg.Save(); saveErr != nil {
					fmt.Fprintln(os.Stderr, "warning: could not write default config:", saveErr)
				}
			}
		}
	}

	// Flags win over file and environment.
	if *chatsPath != "" {
		cfg.Store.ChatsFile = *chatsPath
	}
	if *serverURL != "" {
		cfg.Ollama.URL = *serverURL
	}
	if *modelName != "" {
		cfg.Ollama.DefaultModel = *modelName
	}

	client := ollama.NewClientWithConfig(&ollama.ClientConfig{
		BaseURL:     cfg.Ollama.URL,
		StreamDelay: time.Duration(cfg.Ollama.StreamDelayMS) * time.Millisecond,
	})

	st, err := store.Open(cfg.Store.ChatsFile)
	if err != nil {
		return err
	}

	// Discovery degrades to the sentinel model on failure; the session is
	// still usable for browsing saved conversations.
	discoverCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	models := client.AllowedModels(discoverCtx, cfg.Ollama.DeniedModels)
	cancel()

	ctrl := session.New(st, client, models)
	if cfg.Ollama.DefaultModel != "" {
		for _, name := range models {
			if name == cfg.Ollama.DefaultModel {
				ctrl.SetModel(name)
				break
			}
		}
	}

	checkServer := func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		return client.CheckRunning(ctx)
	}

	program := tea.NewProgram(
		ui.New(ctrl, cfg.UI.Theme, cfg.UI.RenderMarkdown, cfg.Ollama.SystemMessage, checkServer),
		tea.WithAltScreen(),
	)

	ctrl.SetStreamListener(func(fragment string) {
		program.Send(ui.StreamTokenMsg{Token: fragment})
	})

	if cfg.Store.WatchFile {
		watcher, err := st.Watch(200*time.Millisecond, func() {
			program.Send(ui.StoreChangedMsg{})
		})
		if err == nil {
			defer watcher.Close()
		}
	}

	_, err = program.Run()
	return err
}
